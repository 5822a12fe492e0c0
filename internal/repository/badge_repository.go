package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"github.com/Ramouth/BiomeQuest-sub000/internal/models"
)

// BadgeRepository handles badge-related database operations.
type BadgeRepository struct {
	db *DB
}

// NewBadgeRepository creates a new badge repository.
func NewBadgeRepository(db *DB) *BadgeRepository {
	return &BadgeRepository{db: db}
}

// Create creates a new badge in the database.
func (r *BadgeRepository) Create(ctx context.Context, badge *models.Badge) error {
	if err := r.db.WithContext(ctx).Create(badge).Error; err != nil {
		return fmt.Errorf("failed to create badge: %w", err)
	}
	return nil
}

// ListActive retrieves the active badge catalog, cheapest threshold first.
func (r *BadgeRepository) ListActive(ctx context.Context) ([]models.Badge, error) {
	var badges []models.Badge
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("points_required ASC, sort_order ASC, id ASC").
		Find(&badges).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	return badges, nil
}

// GetUnlockable returns the active badges whose threshold is within
// totalPoints and which the user has not unlocked yet, ordered by ascending
// points_required.
func (r *BadgeRepository) GetUnlockable(ctx context.Context, userID uint, totalPoints int) ([]models.Badge, error) {
	var badges []models.Badge
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND points_required <= ?", true, totalPoints).
		Where("NOT EXISTS (SELECT 1 FROM user_badges ub WHERE ub.badge_id = badges.id AND ub.user_id = ?)", userID).
		Order("points_required ASC, sort_order ASC, id ASC").
		Find(&badges).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get unlockable badges for user %d: %w", userID, err)
	}
	return badges, nil
}

// Unlock records that userID unlocked badgeID. It reports true only when this
// call inserted the row; a duplicate is swallowed by the (user_id, badge_id)
// unique index and reported as false, never as an error.
func (r *BadgeRepository) Unlock(ctx context.Context, userID, badgeID uint, at time.Time) (bool, error) {
	userBadge := &models.UserBadge{
		UserID:     userID,
		BadgeID:    badgeID,
		UnlockedAt: at.UTC(),
	}
	result := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
			DoNothing: true,
		}).
		Create(userBadge)
	if result.Error != nil {
		return false, fmt.Errorf("failed to unlock badge %d for user %d: %w", badgeID, userID, result.Error)
	}
	return result.RowsAffected == 1, nil
}

// GetUserBadges retrieves all badges unlocked by a user with badge details preloaded.
func (r *BadgeRepository) GetUserBadges(ctx context.Context, userID uint) ([]models.UserBadge, error) {
	var userBadges []models.UserBadge
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Badge").
		Order("unlocked_at ASC, id ASC").
		Find(&userBadges).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get badges for user %d: %w", userID, err)
	}
	return userBadges, nil
}

// GetUserBadgeCount returns the total number of badges a user has unlocked.
func (r *BadgeRepository) GetUserBadgeCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserBadge{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// GetBadgeHoldersCount returns the number of users who unlocked a badge.
func (r *BadgeRepository) GetBadgeHoldersCount(ctx context.Context, badgeID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserBadge{}).
		Where("badge_id = ?", badgeID).
		Count(&count).Error
	return count, err
}

// UpsertByName creates the badge or refreshes its catalog fields.
// Existing unlocks are never revoked.
func (r *BadgeRepository) UpsertByName(ctx context.Context, badge *models.Badge) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"description", "emoji", "points_required", "sort_order", "is_active", "updated_at",
			}),
		}).
		Create(badge).Error
	if err != nil {
		return fmt.Errorf("failed to upsert badge %s: %w", badge.Name, err)
	}
	return nil
}
