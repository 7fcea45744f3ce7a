// Package config provides configuration management for the chase predictor.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Training  TrainingConfig  `mapstructure:"training" validate:"required"`
	Model     ModelConfig     `mapstructure:"model" validate:"required"`
	Cache     CacheConfig     `mapstructure:"cache"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Secrets   SecretsConfig   `mapstructure:"secrets"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Teams     []string        `mapstructure:"teams" validate:"dive,required"`
	Cities    []string        `mapstructure:"cities" validate:"dive,required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ServerConfig represents the HTTP serving configuration
type ServerConfig struct {
	Host                   string `mapstructure:"host"`
	Port                   int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadTimeoutSeconds     int    `mapstructure:"read_timeout_seconds" validate:"gt=0"`
	WriteTimeoutSeconds    int    `mapstructure:"write_timeout_seconds" validate:"gt=0"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`
}

// TrainingConfig represents the offline training run
type TrainingConfig struct {
	MatchesPath        string  `mapstructure:"matches_path" validate:"required"`
	DeliveriesPath     string  `mapstructure:"deliveries_path" validate:"required"`
	TestFraction       float64 `mapstructure:"test_fraction" validate:"gt=0,lt=1"`
	Seed               int64   `mapstructure:"seed"`
	C                  float64 `mapstructure:"c" validate:"gt=0"`
	MaxIter            int     `mapstructure:"max_iter" validate:"gt=0"`
	Tol                float64 `mapstructure:"tol" validate:"gt=0"`
	Schedule           string  `mapstructure:"schedule" validate:"omitempty,cron"`
	HTTPTimeoutSeconds int     `mapstructure:"http_timeout_seconds" validate:"gt=0"`
	HTTPMaxRetries     int     `mapstructure:"http_max_retries" validate:"gte=0"`
	JobTimeoutMinutes  int     `mapstructure:"job_timeout_minutes" validate:"gt=0"`
}

// ModelConfig locates the artifact shared by the trainer and the server
type ModelConfig struct {
	Name         string `mapstructure:"name" validate:"required"`
	ArtifactPath string `mapstructure:"artifact_path" validate:"required"`
	UseRegistry  bool   `mapstructure:"use_registry"`
}

// CacheConfig represents the prediction cache
type CacheConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	TTLSeconds int  `mapstructure:"ttl_seconds" validate:"gte=0"`
	MaxSize    int  `mapstructure:"max_size" validate:"gte=0"`
}

// RateLimitConfig represents the per-process request limit
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gte=0"`
	Burst             int     `mapstructure:"burst" validate:"gte=0"`
}

// DatabaseConfig represents the optional model registry database
type DatabaseConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host" validate:"required_if=Enabled true"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required_if=Enabled true"`
	User           string `mapstructure:"user" validate:"required_if=Enabled true"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"gte=0"`
	MinConnections int    `mapstructure:"min_connections" validate:"gte=0"`
}

// SecretsConfig points at an AWS Secrets Manager secret overlaid on the config
type SecretsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Region     string `mapstructure:"region" validate:"required_if=Enabled true"`
	SecretName string `mapstructure:"secret_name" validate:"required_if=Enabled true"`
}

// MetricsConfig represents metrics exposure
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Address returns host:port for the HTTP listener
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// ReadTimeout returns the read timeout as a duration
func (s ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the write timeout as a duration
func (s ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutSeconds) * time.Second
}

// ShutdownTimeout returns the graceful shutdown window as a duration
func (s ServerConfig) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSeconds) * time.Second
}

// TTL returns the cache entry lifetime
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// JobTimeout bounds a scheduled training run
func (t TrainingConfig) JobTimeout() time.Duration {
	return time.Duration(t.JobTimeoutMinutes) * time.Minute
}

// ReportPath returns where the trainer writes its JSON report
func (m ModelConfig) ReportPath() string {
	return m.ArtifactPath + ".report.json"
}
