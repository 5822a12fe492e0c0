// Package badges provides badge unlocking and badge catalog services.
package badges

import (
	"context"

	prommetrics "github.com/Ramouth/BiomeQuest-sub000/internal/metrics"
	"github.com/Ramouth/BiomeQuest-sub000/internal/models"
	"github.com/Ramouth/BiomeQuest-sub000/internal/repository"
	"github.com/Ramouth/BiomeQuest-sub000/pkg/logger"
)

// BadgeRepository interface for badge catalog reads.
type BadgeRepository interface {
	ListActive(ctx context.Context) ([]models.Badge, error)
	GetUserBadges(ctx context.Context, userID uint) ([]models.UserBadge, error)
	GetBadgeHoldersCount(ctx context.Context, badgeID uint) (int64, error)
}

// Service serves the badge catalog and per-user unlocks.
type Service struct {
	badgeRepo BadgeRepository
	log       *logger.Logger
}

// NewService creates a new badge service.
func NewService(badgeRepo *repository.BadgeRepository, log *logger.Logger) *Service {
	return &Service{badgeRepo: badgeRepo, log: log}
}

// NewServiceWithInterfaces creates a new badge service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(badgeRepo BadgeRepository, log *logger.Logger) *Service {
	return &Service{badgeRepo: badgeRepo, log: log}
}

// GetUserBadges retrieves all badges unlocked by a user, oldest unlock first.
func (s *Service) GetUserBadges(ctx context.Context, userID uint) ([]models.UserBadge, error) {
	return s.badgeRepo.GetUserBadges(ctx, userID)
}

// GetBadgeCatalog retrieves all active badges.
func (s *Service) GetBadgeCatalog(ctx context.Context) ([]models.Badge, error) {
	return s.badgeRepo.ListActive(ctx)
}

// RefreshHolderGauges updates the holder gauge of each given badge.
// It is called after unlocks commit.
func (s *Service) RefreshHolderGauges(ctx context.Context, badges []models.Badge) {
	for _, badge := range badges {
		count, err := s.badgeRepo.GetBadgeHoldersCount(ctx, badge.ID)
		if err != nil {
			s.log.Warn().Err(err).Str("badge", badge.Name).Msg("Failed to count badge holders")
			continue
		}
		prommetrics.SetActiveBadgeHolders(badge.Name, int(count))
	}
}
