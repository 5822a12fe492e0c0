package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Ramouth/BiomeQuest-sub000/internal/models"
)

// ConsumptionRepository handles the consumption log and the per-user plant
// aggregate. Writes are expected to run on a transaction-bound DB.
type ConsumptionRepository struct {
	db *DB
}

// NewConsumptionRepository creates a new consumption repository.
func NewConsumptionRepository(db *DB) *ConsumptionRepository {
	return &ConsumptionRepository{db: db}
}

// IncrementUserPlant inserts the (user, plant) row with times_eaten = 1 or,
// when it already exists, increments times_eaten. The row is read back
// afterwards so the caller sees the post-increment count; a count of 1 means
// this call created the row. The unique index makes this safe against
// concurrent writers for the same pair.
func (r *ConsumptionRepository) IncrementUserPlant(ctx context.Context, userID, plantID uint, at time.Time) (*models.UserPlant, error) {
	row := models.UserPlant{
		UserID:       userID,
		PlantID:      plantID,
		TimesEaten:   1,
		FirstEatenAt: at.UTC(),
	}

	err := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "plant_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"times_eaten": gorm.Expr("user_plants.times_eaten + 1"),
			}),
		}).
		Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user plant (%d, %d): %w", userID, plantID, err)
	}

	return r.GetUserPlant(ctx, userID, plantID)
}

// GetUserPlant retrieves the aggregate row for a (user, plant) pair.
func (r *ConsumptionRepository) GetUserPlant(ctx context.Context, userID, plantID uint) (*models.UserPlant, error) {
	var row models.UserPlant
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND plant_id = ?", userID, plantID).
		First(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user plant (%d, %d): %w", userID, plantID, err)
	}
	return &row, nil
}

// CreateLog appends an immutable consumption log entry.
func (r *ConsumptionRepository) CreateLog(ctx context.Context, entry *models.ConsumptionLog) error {
	entry.LoggedAt = entry.LoggedAt.UTC()
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create consumption log: %w", err)
	}
	return nil
}

// SumPoints returns the sum of points_earned over all of a user's logs.
// This is the canonical point total.
func (r *ConsumptionRepository) SumPoints(ctx context.Context, userID uint) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.ConsumptionLog{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(points_earned), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum points for user %d: %w", userID, err)
	}
	return int(total), nil
}

// CountLogs returns how many logs a user has.
func (r *ConsumptionRepository) CountLogs(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ConsumptionLog{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count logs for user %d: %w", userID, err)
	}
	return count, nil
}

// CountPlantPairLogs returns how many logs exist for a (user, plant) pair.
func (r *ConsumptionRepository) CountPlantPairLogs(ctx context.Context, userID, plantID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ConsumptionLog{}).
		Where("user_id = ? AND plant_id = ?", userID, plantID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count logs for (%d, %d): %w", userID, plantID, err)
	}
	return count, nil
}

// CountDistinctPlants returns how many different plants a user has logged.
func (r *ConsumptionRepository) CountDistinctPlants(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserPlant{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count plants for user %d: %w", userID, err)
	}
	return count, nil
}

// GetLogsByDateRange retrieves a user's logs with logged_at in [start, end),
// oldest first, with the plant preloaded.
func (r *ConsumptionRepository) GetLogsByDateRange(ctx context.Context, userID uint, start, end time.Time) ([]models.ConsumptionLog, error) {
	var logs []models.ConsumptionLog
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND logged_at >= ? AND logged_at < ?", userID, start.UTC(), end.UTC()).
		Preload("Plant").
		Order("logged_at ASC, id ASC").
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get logs for user %d: %w", userID, err)
	}
	return logs, nil
}

// GetTopPlants returns a user's plants ordered by times_eaten, most eaten
// first; ties go to the plant discovered earlier.
func (r *ConsumptionRepository) GetTopPlants(ctx context.Context, userID uint, limit int) ([]models.UserPlant, error) {
	var rows []models.UserPlant
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Plant").
		Order("times_eaten DESC, first_eaten_at ASC, id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get top plants for user %d: %w", userID, err)
	}
	return rows, nil
}
