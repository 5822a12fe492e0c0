package migrations

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramouth/BiomeQuest-sub000/internal/config"
	"github.com/Ramouth/BiomeQuest-sub000/internal/models"
	"github.com/Ramouth/BiomeQuest-sub000/internal/repository"
	"github.com/Ramouth/BiomeQuest-sub000/pkg/logger"
)

func sqliteConfig(t *testing.T) *config.DatabaseConfig {
	t.Helper()
	return &config.DatabaseConfig{
		Driver: config.DriverSQLite,
		SQLite: config.SQLiteConfig{
			Path:        filepath.Join(t.TempDir(), "migrate.db"),
			BusyTimeout: 5000,
		},
	}
}

func TestDatabaseURL(t *testing.T) {
	url, err := DatabaseURL(&config.DatabaseConfig{
		Driver: config.DriverSQLite,
		SQLite: config.SQLiteConfig{Path: "/var/lib/plantquest/data.db"},
	})
	require.NoError(t, err)
	assert.Equal(t, "sqlite3:///var/lib/plantquest/data.db", url)

	_, err = DatabaseURL(&config.DatabaseConfig{Driver: "mysql"})
	assert.Error(t, err)
}

func TestMigrator_UpThenDown(t *testing.T) {
	cfg := sqliteConfig(t)

	mg, err := New(cfg, logger.Nop())
	require.NoError(t, err)

	require.NoError(t, mg.Up())
	version, dirty, err := mg.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	// A second Up is a no-op.
	require.NoError(t, mg.Up())
	require.NoError(t, mg.Close())

	// The migrated schema must be usable through the gorm repositories.
	db, err := repository.NewDB(cfg, logger.Nop())
	require.NoError(t, err)

	ctx := context.Background()
	user := &models.User{Username: "alice", WeeklyGoal: 50}
	require.NoError(t, repository.NewUserRepository(db).Create(ctx, user))
	plant := &models.Plant{Name: "Kale", PointsForNew: 5, PointsForRepeat: 1, IsActive: true}
	require.NoError(t, repository.NewPlantRepository(db).Create(ctx, plant))

	consumption := repository.NewConsumptionRepository(db)
	first, err := consumption.IncrementUserPlant(ctx, user.ID, plant.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 1, first.TimesEaten)
	require.NoError(t, db.Close())

	mg, err = New(cfg, logger.Nop())
	require.NoError(t, err)
	defer mg.Close()

	require.NoError(t, mg.Down(1))
	version, _, err = mg.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(0), version)
}
