// Package repotest opens throwaway SQLite databases for tests.
package repotest

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Ramouth/BiomeQuest-sub000/internal/models"
	"github.com/Ramouth/BiomeQuest-sub000/internal/repository"
)

// NewDB creates a migrated SQLite database in a temporary directory. A file
// database is used instead of :memory: because every pooled connection must
// see the same data when tests log concurrently.
func NewDB(t *testing.T) *repository.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "plantquest_test.db")
	gdb, err := gorm.Open(sqlite.Open(repository.SQLiteDSN(path, 10000)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	db := &repository.DB{DB: gdb}
	if err := db.AutoMigrate(); err != nil {
		t.Fatalf("Failed to auto-migrate tables: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

// CreateUser inserts a user with the given weekly and monthly goals.
func CreateUser(t *testing.T, db *repository.DB, username string, weeklyGoal, monthlyGoal int) *models.User {
	t.Helper()

	user := &models.User{Username: username, WeeklyGoal: weeklyGoal, MonthlyGoal: monthlyGoal}
	if err := repository.NewUserRepository(db).Create(context.Background(), user); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// CreatePlant inserts an active plant with the given point values.
func CreatePlant(t *testing.T, db *repository.DB, name string, pointsForNew, pointsForRepeat int) *models.Plant {
	t.Helper()

	plant := &models.Plant{
		Name:             name,
		PointsForNew:     pointsForNew,
		PointsForRepeat:  pointsForRepeat,
		FirstTimeMessage: "New plant: " + name + "!",
		RepeatMessage:    name + " again, nice.",
		IsActive:         true,
	}
	if err := repository.NewPlantRepository(db).Create(context.Background(), plant); err != nil {
		t.Fatalf("Failed to create test plant: %v", err)
	}
	return plant
}

// CreateBadge inserts an active badge unlocked at pointsRequired.
func CreateBadge(t *testing.T, db *repository.DB, name string, pointsRequired int) *models.Badge {
	t.Helper()

	badge := &models.Badge{
		Name:           name,
		Emoji:          "🌱",
		PointsRequired: pointsRequired,
		SortOrder:      pointsRequired,
		IsActive:       true,
	}
	if err := repository.NewBadgeRepository(db).Create(context.Background(), badge); err != nil {
		t.Fatalf("Failed to create test badge: %v", err)
	}
	return badge
}

// CreateLog appends a raw log row, bypassing the recorder. Summary tests use
// it to place logs on specific days.
func CreateLog(t *testing.T, db *repository.DB, userID, plantID uint, points int, firstTime bool, at time.Time) *models.ConsumptionLog {
	t.Helper()

	entry := &models.ConsumptionLog{
		UserID:       userID,
		PlantID:      plantID,
		PointsEarned: points,
		IsFirstTime:  firstTime,
		LoggedAt:     at,
	}
	if err := repository.NewConsumptionRepository(db).CreateLog(context.Background(), entry); err != nil {
		t.Fatalf("Failed to create test log: %v", err)
	}
	return entry
}
