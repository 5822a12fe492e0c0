package badges

import (
	"context"
	"fmt"
	"time"

	"github.com/Ramouth/BiomeQuest-sub000/internal/models"
	"github.com/Ramouth/BiomeQuest-sub000/pkg/logger"
)

// UnlockRepository is the slice of badge persistence the evaluator needs.
// Implementations must make Unlock at-most-once per (user, badge).
type UnlockRepository interface {
	GetUnlockable(ctx context.Context, userID uint, totalPoints int) ([]models.Badge, error)
	Unlock(ctx context.Context, userID, badgeID uint, at time.Time) (bool, error)
}

// Evaluator unlocks threshold badges.
type Evaluator struct {
	log *logger.Logger
}

// NewEvaluator creates a new badge evaluator.
func NewEvaluator(log *logger.Logger) *Evaluator {
	return &Evaluator{log: log}
}

// Evaluate unlocks every active badge whose threshold is within totalPoints
// and returns the ones this call unlocked, cheapest first. Badges unlocked
// earlier, or concurrently by another request, are not returned, so calling
// it again with the same total is a no-op.
func (e *Evaluator) Evaluate(ctx context.Context, repo UnlockRepository, userID uint, totalPoints int, at time.Time) ([]models.Badge, error) {
	candidates, err := repo.GetUnlockable(ctx, userID, totalPoints)
	if err != nil {
		return nil, fmt.Errorf("failed to get unlockable badges: %w", err)
	}

	unlocked := make([]models.Badge, 0, len(candidates))
	for _, badge := range candidates {
		inserted, err := repo.Unlock(ctx, userID, badge.ID, at)
		if err != nil {
			return nil, fmt.Errorf("failed to unlock badge %s: %w", badge.Name, err)
		}
		if !inserted {
			e.log.Debug().
				Uint("user_id", userID).
				Str("badge", badge.Name).
				Msg("Badge already unlocked, skipping")
			continue
		}

		e.log.Info().
			Uint("user_id", userID).
			Str("badge", badge.Name).
			Int("points_required", badge.PointsRequired).
			Int("total_points", totalPoints).
			Msg("Badge unlocked")
		unlocked = append(unlocked, badge)
	}

	return unlocked, nil
}
