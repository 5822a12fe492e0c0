package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Ramouth/BiomeQuest-sub000/internal/models"
)

// UserRepository handles user-related database operations.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get user by id %d: %w", id, err)
	}
	return &user, nil
}

// GetByIDForUpdate retrieves a user by ID and locks the row until the
// surrounding transaction ends. Same-user writers queue on the lock, so each
// one sees every earlier log when it sums points. SQLite has no row locks and
// serializes writers with BEGIN IMMEDIATE instead; its dialect drops the clause.
func (r *UserRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Scopes(lockForUpdate).First(&user, id).Error; err != nil {
		return nil, fmt.Errorf("failed to lock user %d: %w", id, err)
	}
	return &user, nil
}

func lockForUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
}

// UpdateStreak persists the streak columns of user. Other columns are left
// untouched so a concurrent goal change is not overwritten.
func (r *UserRepository) UpdateStreak(ctx context.Context, user *models.User) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"last_log_date":  user.LastLogDate,
			"current_streak": user.CurrentStreak,
			"longest_streak": user.LongestStreak,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update streak for user %d: %w", user.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("failed to update streak for user %d: %w", user.ID, ErrNotFound)
	}
	return nil
}

// UpsertByUsername creates the user or refreshes its goals when the username
// already exists. Streak state is never touched.
func (r *UserRepository) UpsertByUsername(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoUpdates: clause.AssignmentColumns([]string{"weekly_goal", "monthly_goal", "updated_at"}),
		}).
		Create(user).Error
	if err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", user.Username, err)
	}
	return nil
}
