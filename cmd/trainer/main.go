// Package main provides the offline trainer for the chase win-probability model.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/chase-predictor/internal/config"
	"github.com/yourusername/chase-predictor/internal/database"
	"github.com/yourusername/chase-predictor/internal/datasource"
	"github.com/yourusername/chase-predictor/internal/health"
	applogger "github.com/yourusername/chase-predictor/internal/logger"
	"github.com/yourusername/chase-predictor/internal/repository"
	"github.com/yourusername/chase-predictor/internal/scheduler"
	"github.com/yourusername/chase-predictor/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile     string
	matchesPath    string
	deliveriesPath string
	artifactPath   string
	cronSpec       string
	healthAddr     string
	runNow         bool

	logger *logrus.Logger
	cfg    *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", config.DefaultPath, "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&matchesPath, "matches", "", "Matches table path or URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&deliveriesPath, "deliveries", "", "Deliveries table path or URL (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&artifactPath, "output", "o", "", "Artifact path (overrides config)")

	scheduleCmd.Flags().StringVar(&cronSpec, "cron", "", "Cron expression (overrides training.schedule)")
	scheduleCmd.Flags().StringVar(&healthAddr, "health-addr", ":8081", "Address for the health endpoints")
	scheduleCmd.Flags().BoolVar(&runNow, "run-now", false, "Train once before waiting for the first tick")
}

var rootCmd = &cobra.Command{
	Use:   "trainer",
	Short: "Train the chase win-probability model",
	Long:  `Build the training frame from historical match and delivery tables, fit the model and persist the artifact.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
	SilenceUsage: true,
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Run one training pass",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, cleanup, err := newTrainingService(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		report, err := svc.Run(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("Model %s written to %s\n", report.ModelVersion, report.ArtifactPath)
		fmt.Printf("  Rows:                %d (%d wins)\n", report.Rows, report.PositiveRows)
		fmt.Printf("  Validation accuracy: %.4f\n", report.ValidationAccuracy)
		return nil
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Re-train periodically on a cron schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		spec := cronSpec
		if spec == "" {
			spec = cfg.Training.Schedule
		}
		if spec == "" {
			return fmt.Errorf("no schedule: set training.schedule or pass --cron")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, cleanup, err := newTrainingService(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		job := scheduler.JobFunc(func(ctx context.Context) error {
			_, err := svc.Run(ctx)
			return err
		})

		sched := scheduler.NewScheduler(logger)
		sched.SetJobTimeout(cfg.Training.JobTimeout())
		if _, err := sched.ScheduleTraining(spec, job); err != nil {
			return err
		}

		hs := health.NewServer(health.Config{
			ServiceName: "chase-trainer",
			Version:     Version,
			Commit:      GitCommit,
			Addr:        healthAddr,
			Logger:      logger,
		})
		if err := hs.Start(ctx); err != nil {
			return err
		}

		if runNow {
			if err := job.Run(ctx); err != nil {
				logger.WithError(err).Error("Initial training run failed")
			}
		}

		if err := sched.Start(); err != nil {
			return err
		}
		hs.SetReady(true)
		logger.WithField("next_run", sched.GetNextRun()).Info("Waiting for scheduled runs")

		<-ctx.Done()
		logger.Info("Shutdown signal received")
		hs.SetReady(false)
		return sched.Stop()
	},
}

var versionCmd = &cobra.Command{
	Use:               "version",
	Short:             "Print version information",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("trainer %s (%s)\n", Version, GitCommit)
	},
}

func main() {
	rootCmd.AddCommand(trainCmd, scheduleCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() error {
	var err error
	cfg, err = config.LoadAndValidate(configFile)
	if err != nil {
		return err
	}

	if matchesPath != "" {
		cfg.Training.MatchesPath = matchesPath
	}
	if deliveriesPath != "" {
		cfg.Training.DeliveriesPath = deliveriesPath
	}
	if artifactPath != "" {
		cfg.Model.ArtifactPath = artifactPath
	}

	logger = applogger.NewLogger(cfg.App.LogLevel)
	logger.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
	}).Info("Trainer starting")
	return nil
}

func newTrainingService(ctx context.Context) (*service.TrainingService, func(), error) {
	httpCfg := datasource.DefaultHTTPClientConfig()
	httpCfg.Timeout = time.Duration(cfg.Training.HTTPTimeoutSeconds) * time.Second
	httpCfg.MaxRetries = cfg.Training.HTTPMaxRetries

	factory := datasource.NewFactory(httpCfg, logger)
	loader := datasource.NewLoader(factory, logger)
	cleanup := func() { _ = factory.Close() }

	var repo repository.ModelRepository
	if cfg.Database.Enabled {
		db, err := database.Initialize(ctx, cfg)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to connect to registry database: %w", err)
		}
		repos, err := repository.NewRepositories(db)
		if err != nil {
			db.Close()
			cleanup()
			return nil, nil, err
		}
		repo = repos.Model
		cleanup = func() {
			_ = factory.Close()
			db.Close()
		}
		logger.Info("Model registry connected")
	}

	opts := service.TrainingOptionsFromConfig(cfg)
	return service.NewTrainingService(loader, repo, opts, logger), cleanup, nil
}
