// Package config handles application configuration loading and validation using Viper.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config represents the application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig selects the relational store and the optional Redis cache.
type DatabaseConfig struct {
	Driver      string         `mapstructure:"driver"` // sqlite or postgres
	AutoMigrate bool           `mapstructure:"auto_migrate"`
	SQLite      SQLiteConfig   `mapstructure:"sqlite"`
	Postgres    PostgresConfig `mapstructure:"postgres"`
	Redis       RedisConfig    `mapstructure:"redis"`
}

// SQLiteConfig contains the SQLite database file settings.
type SQLiteConfig struct {
	Path        string `mapstructure:"path"`
	BusyTimeout int    `mapstructure:"busy_timeout"` // milliseconds
}

// PostgresConfig contains PostgreSQL database connection and pool settings.
type PostgresConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Database        string `mapstructure:"database"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// RedisConfig contains Redis cache connection settings. An empty host disables caching.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// EngineConfig contains the accounting engine settings.
type EngineConfig struct {
	Timezone           string `mapstructure:"timezone"` // IANA name used for calendar days
	DefaultWeeklyGoal  int    `mapstructure:"default_weekly_goal"`
	DefaultMonthlyGoal int    `mapstructure:"default_monthly_goal"`
	SummaryCacheTTL    int    `mapstructure:"summary_cache_ttl"` // seconds
}

// MetricsConfig contains metrics exporter settings.
type MetricsConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig contains Prometheus metrics exporter settings.
type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig contains application logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// NotifyConfig contains badge unlock webhook settings.
type NotifyConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
	Channel    string `mapstructure:"channel"`
	Username   string `mapstructure:"username"`
	Enabled    bool   `mapstructure:"enabled"`
	Timeout    int    `mapstructure:"timeout"` // seconds
}

// CatalogConfig points at the YAML seed file for plants, badges and demo users.
type CatalogConfig struct {
	SeedPath string `mapstructure:"seed_path"`
}

// Load reads configuration from file and environment variables.
// A missing config file is not an error when configPath is empty; defaults
// and environment variables are enough to run against SQLite.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/plantquest/")
	}

	// Server configuration
	_ = v.BindEnv("server.port", "SERVER_PORT")
	_ = v.BindEnv("server.environment", "SERVER_ENVIRONMENT")

	// Database configuration
	_ = v.BindEnv("database.driver", "DATABASE_DRIVER")
	_ = v.BindEnv("database.auto_migrate", "DATABASE_AUTO_MIGRATE")
	_ = v.BindEnv("database.sqlite.path", "SQLITE_PATH")
	_ = v.BindEnv("database.sqlite.busy_timeout", "SQLITE_BUSY_TIMEOUT")

	// PostgreSQL configuration
	_ = v.BindEnv("database.postgres.host", "POSTGRES_HOST")
	_ = v.BindEnv("database.postgres.port", "POSTGRES_PORT")
	_ = v.BindEnv("database.postgres.database", "POSTGRES_DB")
	_ = v.BindEnv("database.postgres.user", "POSTGRES_USER")
	_ = v.BindEnv("database.postgres.password", "POSTGRES_PASSWORD")
	_ = v.BindEnv("database.postgres.ssl_mode", "POSTGRES_SSL_MODE")
	_ = v.BindEnv("database.postgres.max_open_conns", "POSTGRES_MAX_OPEN_CONNS")
	_ = v.BindEnv("database.postgres.max_idle_conns", "POSTGRES_MAX_IDLE_CONNS")
	_ = v.BindEnv("database.postgres.conn_max_lifetime", "POSTGRES_CONN_MAX_LIFETIME")

	// Redis configuration
	_ = v.BindEnv("database.redis.host", "REDIS_HOST")
	_ = v.BindEnv("database.redis.port", "REDIS_PORT")
	_ = v.BindEnv("database.redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("database.redis.db", "REDIS_DB")
	_ = v.BindEnv("database.redis.pool_size", "REDIS_POOL_SIZE")

	// Engine configuration
	_ = v.BindEnv("engine.timezone", "ENGINE_TIMEZONE")
	_ = v.BindEnv("engine.default_weekly_goal", "ENGINE_DEFAULT_WEEKLY_GOAL")
	_ = v.BindEnv("engine.default_monthly_goal", "ENGINE_DEFAULT_MONTHLY_GOAL")
	_ = v.BindEnv("engine.summary_cache_ttl", "ENGINE_SUMMARY_CACHE_TTL")

	// Metrics configuration
	_ = v.BindEnv("metrics.prometheus.enabled", "METRICS_PROMETHEUS_ENABLED")
	_ = v.BindEnv("metrics.prometheus.path", "METRICS_PROMETHEUS_PATH")

	// Logging configuration
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
	_ = v.BindEnv("logging.format", "LOG_FORMAT")
	_ = v.BindEnv("logging.output", "LOG_OUTPUT")

	// Notification configuration
	_ = v.BindEnv("notify.webhook_url", "NOTIFY_WEBHOOK_URL")
	_ = v.BindEnv("notify.channel", "NOTIFY_CHANNEL")
	_ = v.BindEnv("notify.username", "NOTIFY_USERNAME")
	_ = v.BindEnv("notify.enabled", "NOTIFY_ENABLED")
	_ = v.BindEnv("notify.timeout", "NOTIFY_TIMEOUT")

	// Catalog configuration
	_ = v.BindEnv("catalog.seed_path", "CATALOG_SEED_PATH")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.environment", "development")
	v.SetDefault("database.driver", DriverSQLite)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.sqlite.path", "plantquest.db")
	v.SetDefault("database.sqlite.busy_timeout", 5000)
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.ssl_mode", "disable")
	v.SetDefault("database.postgres.max_open_conns", 25)
	v.SetDefault("database.postgres.max_idle_conns", 5)
	v.SetDefault("database.postgres.conn_max_lifetime", 300)
	v.SetDefault("database.redis.port", 6379)
	v.SetDefault("database.redis.pool_size", 10)
	v.SetDefault("engine.timezone", "UTC")
	v.SetDefault("engine.default_weekly_goal", 30)
	v.SetDefault("engine.default_monthly_goal", 120)
	v.SetDefault("engine.summary_cache_ttl", 300)
	v.SetDefault("metrics.prometheus.enabled", true)
	v.SetDefault("metrics.prometheus.path", "/metrics")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("notify.username", "PlantQuest")
	v.SetDefault("notify.timeout", 5)
	v.SetDefault("catalog.seed_path", "config/catalog.yaml")
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.SQLite.Path == "" {
			return fmt.Errorf("database.sqlite.path is required")
		}
	case DriverPostgres:
		if c.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required")
		}
		if c.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required")
		}
		if c.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required")
		}
	default:
		return fmt.Errorf("unsupported database.driver %q (valid: sqlite, postgres)", c.Database.Driver)
	}
	if _, err := c.Engine.GetLocation(); err != nil {
		return fmt.Errorf("invalid engine.timezone %q: %w", c.Engine.Timezone, err)
	}
	if c.Engine.DefaultWeeklyGoal < 0 || c.Engine.DefaultMonthlyGoal < 0 {
		return fmt.Errorf("engine goals must not be negative")
	}
	if c.Notify.Enabled && c.Notify.WebhookURL == "" {
		return fmt.Errorf("notify.webhook_url is required when notify.enabled is true")
	}

	return nil
}

// GetLocation returns the timezone that defines calendar days.
func (c *EngineConfig) GetLocation() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

// SummaryTTL returns the summary cache TTL as a duration.
func (c *EngineConfig) SummaryTTL() time.Duration {
	return time.Duration(c.SummaryCacheTTL) * time.Second
}

// PostgresDSN builds the lib/pq style connection string used by gorm.
func (c *PostgresConfig) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// PostgresURL builds the URL form used by golang-migrate.
func (c *PostgresConfig) PostgresURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// RedisAddr returns host:port for the Redis client.
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
