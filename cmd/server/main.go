// Package main provides the HTTP server for chase win-probability predictions.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/chase-predictor/internal/api"
	"github.com/yourusername/chase-predictor/internal/config"
	"github.com/yourusername/chase-predictor/internal/database"
	"github.com/yourusername/chase-predictor/internal/health"
	applogger "github.com/yourusername/chase-predictor/internal/logger"
	"github.com/yourusername/chase-predictor/internal/metrics"
	"github.com/yourusername/chase-predictor/internal/ml"
	"github.com/yourusername/chase-predictor/internal/models"
	"github.com/yourusername/chase-predictor/internal/repository"
	"github.com/yourusername/chase-predictor/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile   string
	artifactPath string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", config.DefaultPath, "Path to configuration file")
	rootCmd.Flags().StringVarP(&artifactPath, "model", "m", "", "Artifact path (overrides config and registry)")
}

var rootCmd = &cobra.Command{
	Use:          "server",
	Short:        "Serve chase win-probability predictions over HTTP",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("server %s (%s)\n", Version, GitCommit)
	},
}

func main() {
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadAndValidate(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := applogger.NewLogger(cfg.App.LogLevel)
	log.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"version":     Version,
	}).Info("Chase predictor server starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		db    *database.DB
		repos *repository.Repositories
	)
	if cfg.Database.Enabled {
		db, err = database.Initialize(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to registry database: %w", err)
		}
		defer db.Close()

		repos, err = repository.NewRepositories(db)
		if err != nil {
			return fmt.Errorf("failed to initialize repositories: %w", err)
		}
	}

	path := resolveArtifactPath(ctx, cfg, repos, log)
	model, err := ml.InitShared(path)
	if err != nil {
		return fmt.Errorf("failed to load model artifact %s: %w", path, err)
	}
	applogger.NewMLLogger(log).LogModelLoaded(path, model.Version(), model.Info.TrainingRows, model.Info.ValidationAccuracy)
	metrics.SetModelInfo(model.Info.Name, model.Version())

	cities := cfg.Cities
	if len(cities) == 0 {
		cities = model.Categories("city")
		log.WithField("cities", len(cities)).Info("No cities configured, offering the cities seen in training")
	}

	var cache *ml.PredictionCache
	if cfg.Cache.Enabled {
		cache = ml.NewPredictionCache(cfg.Cache.TTL(), cfg.Cache.MaxSize)
	}
	cached := ml.NewCachedModel(ml.Shared(), cache, log)
	inference := service.NewInferenceService(cached, cfg.Teams, log)

	healthCfg := health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Logger:      log,
		Model:       cached,
	}
	if db != nil {
		healthCfg.DB = db
	}
	hs := health.NewServer(healthCfg)

	srv, err := api.NewServer(api.Options{
		Host:              cfg.Server.Host,
		Port:              cfg.Server.Port,
		ReadTimeout:       cfg.Server.ReadTimeout(),
		WriteTimeout:      cfg.Server.WriteTimeout(),
		RateLimitEnabled:  cfg.RateLimit.Enabled,
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
		MetricsEnabled:    cfg.Metrics.Enabled,
		MetricsPath:       cfg.Metrics.Path,
		Teams:             cfg.Teams,
		Cities:            cities,
	}, inference, hs, log)
	if err != nil {
		return err
	}

	if err := srv.Start(); err != nil {
		return err
	}
	hs.SetReady(true)

	var serveErr error
	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case serveErr = <-srv.Errors():
		log.WithError(serveErr).Error("HTTP server stopped unexpectedly")
	}
	hs.SetReady(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		log.WithError(err).Error("Error during server shutdown")
	}

	if serveErr != nil {
		return fmt.Errorf("http server: %w", serveErr)
	}
	log.Info("Chase predictor server shut down")
	return nil
}

// resolveArtifactPath picks the artifact to serve: the --model flag, then the
// registry's active record when enabled, then the configured path
func resolveArtifactPath(ctx context.Context, cfg *config.Config, repos *repository.Repositories, log *logrus.Logger) string {
	if artifactPath != "" {
		return artifactPath
	}
	if !cfg.Model.UseRegistry || repos == nil {
		return cfg.Model.ArtifactPath
	}

	record, err := repos.Model.GetActive(ctx, cfg.Model.Name)
	switch {
	case err == nil:
		log.WithFields(logrus.Fields{
			"record_id":     record.ID,
			"model_version": record.Version,
		}).Info("Using active model from registry")
		return record.Path
	case errors.Is(err, models.ErrNotFound):
		log.WithField("model", cfg.Model.Name).Warn("No active model in registry, using configured artifact")
	default:
		log.WithError(err).Warn("Registry lookup failed, using configured artifact")
	}
	return cfg.Model.ArtifactPath
}
