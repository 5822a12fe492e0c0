// Package migrations applies the versioned SQL schema with golang-migrate.
// The files mirror the tables gorm's AutoMigrate creates for the models.
package migrations

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // registers postgres://
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"  // registers sqlite3://
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/Ramouth/BiomeQuest-sub000/internal/config"
	"github.com/Ramouth/BiomeQuest-sub000/pkg/logger"
)

//go:embed sql/sqlite/*.sql sql/postgres/*.sql
var files embed.FS

// Migrator applies schema migrations for one database.
type Migrator struct {
	m   *migrate.Migrate
	log *logger.Logger
}

// DatabaseURL returns the golang-migrate URL for the configured driver.
func DatabaseURL(cfg *config.DatabaseConfig) (string, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return cfg.Postgres.PostgresURL(), nil
	case config.DriverSQLite, "":
		path := cfg.SQLite.Path
		if i := strings.Index(path, "?"); i >= 0 {
			path = path[:i]
		}
		return "sqlite3://" + path, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// New opens a migrator for the configured database.
func New(cfg *config.DatabaseConfig, log *logger.Logger) (*Migrator, error) {
	dir := "sql/sqlite"
	if cfg.Driver == config.DriverPostgres {
		dir = "sql/postgres"
	}

	src, err := iofs.New(files, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open migration files: %w", err)
	}

	url, err := DatabaseURL(cfg)
	if err != nil {
		return nil, err
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize migrations: %w", err)
	}

	return &Migrator{m: m, log: log}, nil
}

// Up applies all pending migrations.
func (mg *Migrator) Up() error {
	if err := mg.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	mg.logVersion("Migrations applied")
	return nil
}

// Down rolls back steps migrations.
func (mg *Migrator) Down(steps int) error {
	if steps <= 0 {
		steps = 1
	}
	if err := mg.m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}
	mg.logVersion("Migrations rolled back")
	return nil
}

// Version returns the current schema version. A database without any
// applied migration reports version 0.
func (mg *Migrator) Version() (uint, bool, error) {
	version, dirty, err := mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (mg *Migrator) logVersion(msg string) {
	version, dirty, err := mg.Version()
	if err != nil {
		mg.log.Warn().Err(err).Msg("Failed to read schema version")
		return
	}
	mg.log.Info().Uint("version", version).Bool("dirty", dirty).Msg(msg)
}

// Close releases the source and database handles.
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}
