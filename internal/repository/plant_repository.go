package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"github.com/Ramouth/BiomeQuest-sub000/internal/models"
)

// PlantRepository resolves catalog plants.
type PlantRepository struct {
	db *DB
}

// NewPlantRepository creates a new plant repository.
func NewPlantRepository(db *DB) *PlantRepository {
	return &PlantRepository{db: db}
}

// Create creates a new plant.
func (r *PlantRepository) Create(ctx context.Context, plant *models.Plant) error {
	if err := r.db.WithContext(ctx).Create(plant).Error; err != nil {
		return fmt.Errorf("failed to create plant: %w", err)
	}
	return nil
}

// GetByID retrieves a plant by ID, active or not.
func (r *PlantRepository) GetByID(ctx context.Context, id uint) (*models.Plant, error) {
	var plant models.Plant
	if err := r.db.WithContext(ctx).First(&plant, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get plant by id %d: %w", id, err)
	}
	return &plant, nil
}

// ListActive returns the active catalog ordered by name.
func (r *PlantRepository) ListActive(ctx context.Context) ([]models.Plant, error) {
	var plants []models.Plant
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&plants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list plants: %w", err)
	}
	return plants, nil
}

// SetActive soft-enables or soft-disables a plant. Plants are never deleted
// because logs keep referencing them.
func (r *PlantRepository) SetActive(ctx context.Context, id uint, active bool) error {
	result := r.db.WithContext(ctx).Model(&models.Plant{}).Where("id = ?", id).Update("is_active", active)
	if result.Error != nil {
		return fmt.Errorf("failed to update plant %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update plant %d: %w", id, ErrNotFound)
	}
	return nil
}

// UpsertByName creates the plant or refreshes its point values and messages.
// Existing logs keep the points they were created with.
func (r *PlantRepository) UpsertByName(ctx context.Context, plant *models.Plant) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"points_for_new", "points_for_repeat", "first_time_message", "repeat_message", "is_active", "updated_at",
			}),
		}).
		Create(plant).Error
	if err != nil {
		return fmt.Errorf("failed to upsert plant %s: %w", plant.Name, err)
	}
	return nil
}
