// Package repository provides data access layer using GORM for database operations.
package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Ramouth/BiomeQuest-sub000/internal/config"
	"github.com/Ramouth/BiomeQuest-sub000/internal/models"
	"github.com/Ramouth/BiomeQuest-sub000/pkg/logger"
)

// ErrNotFound is returned (wrapped) when a lookup matches no row.
var ErrNotFound = gorm.ErrRecordNotFound

// DB holds the database connection. A DB returned by Transaction is bound
// to that transaction, so repositories built from it share the transaction.
type DB struct {
	*gorm.DB
}

// NewDB creates a new database connection for the configured driver.
func NewDB(cfg *config.DatabaseConfig, log *logger.Logger) (*DB, error) {
	// Configure GORM logger
	gormLogLevel := gormlogger.Warn
	if log.IsDebug() {
		gormLogLevel = gormlogger.Info
	}

	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLogLevel),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err = gorm.Open(postgres.Open(cfg.Postgres.PostgresDSN()), gormConfig)
	case config.DriverSQLite, "":
		db, err = gorm.Open(sqlite.Open(SQLiteDSN(cfg.SQLite.Path, cfg.SQLite.BusyTimeout)), gormConfig)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if cfg.Driver == config.DriverPostgres {
		sqlDB.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.Postgres.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second)
	}

	// Test connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	event := log.Info().Str("driver", cfg.Driver)
	if cfg.Driver == config.DriverPostgres {
		event = event.Str("host", cfg.Postgres.Host).Int("port", cfg.Postgres.Port).Str("database", cfg.Postgres.Database)
	} else {
		event = event.Str("path", cfg.SQLite.Path)
	}
	event.Msg("Connected to database")

	return &DB{db}, nil
}

// SQLiteDSN appends the connection options the engine relies on: a busy
// timeout, foreign keys, and BEGIN IMMEDIATE so that concurrent writers for
// the same user queue on the write lock instead of failing on upgrade.
func SQLiteDSN(path string, busyTimeoutMS int) string {
	if busyTimeoutMS <= 0 {
		busyTimeoutMS = 5000
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_busy_timeout=%d&_txlock=immediate&_foreign_keys=on", path, sep, busyTimeoutMS)
}

// AutoMigrate runs database migrations for all models.
func (db *DB) AutoMigrate() error {
	return db.DB.AutoMigrate(
		&models.User{},
		&models.Plant{},
		&models.UserPlant{},
		&models.ConsumptionLog{},
		&models.Badge{},
		&models.UserBadge{},
	)
}

// Transaction runs fn inside a database transaction bound to ctx. Returning
// an error, panicking or cancelling ctx rolls everything back.
func (db *DB) Transaction(ctx context.Context, fn func(tx *DB) error) error {
	return db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&DB{tx})
	})
}

// Close closes the database connection.
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Health checks if the database is healthy.
func (db *DB) Health(ctx context.Context) error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
