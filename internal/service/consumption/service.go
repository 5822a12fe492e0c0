// Package consumption records plant logs: points, first-time detection,
// streaks and badge unlocks, committed atomically.
package consumption

import (
	"context"
	"errors"
	"fmt"
	"time"

	prommetrics "github.com/Ramouth/BiomeQuest-sub000/internal/metrics"
	"github.com/Ramouth/BiomeQuest-sub000/internal/models"
	"github.com/Ramouth/BiomeQuest-sub000/internal/repository"
	"github.com/Ramouth/BiomeQuest-sub000/internal/service/badges"
	"github.com/Ramouth/BiomeQuest-sub000/internal/service/streak"
	"github.com/Ramouth/BiomeQuest-sub000/pkg/logger"
)

// Sentinel errors returned by LogPlant.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrPlantNotFound = errors.New("plant not found")
)

// Clock returns the current time.
type Clock func() time.Time

// CacheInvalidator drops cached summaries of a user.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, userID uint)
}

// Notifier announces badge unlocks.
type Notifier interface {
	BadgesUnlocked(ctx context.Context, username string, totalPoints int, badges []models.Badge)
}

// HolderGauges refreshes per-badge holder counts.
type HolderGauges interface {
	RefreshHolderGauges(ctx context.Context, badges []models.Badge)
}

// PlantInfo is the plant part of a log result.
type PlantInfo struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// LogResult is returned to the caller of LogPlant.
type LogResult struct {
	PointsEarned int            `json:"points_earned"`
	IsFirstTime  bool           `json:"is_first_time"`
	Message      string         `json:"message"`
	Plant        PlantInfo      `json:"plant"`
	TotalPoints  int            `json:"total_points"`
	Streak       streak.Result  `json:"streak"`
	NewBadges    []models.Badge `json:"new_badges"`
	LoggedAt     time.Time      `json:"logged_at"`
}

// Service orchestrates a plant log.
type Service struct {
	db        *repository.DB
	recorder  *Recorder
	tracker   *streak.Tracker
	evaluator *badges.Evaluator
	cache     CacheInvalidator
	notifier  Notifier
	gauges    HolderGauges
	now       Clock
	log       *logger.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock.
func WithClock(now Clock) Option {
	return func(s *Service) { s.now = now }
}

// WithCacheInvalidator invalidates cached summaries after each committed log.
func WithCacheInvalidator(c CacheInvalidator) Option {
	return func(s *Service) { s.cache = c }
}

// WithNotifier announces badge unlocks after commit.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithHolderGauges refreshes badge holder gauges after commit.
func WithHolderGauges(g HolderGauges) Option {
	return func(s *Service) { s.gauges = g }
}

// NewService creates a new consumption service. Calendar days for streaks
// are decided in loc.
func NewService(db *repository.DB, loc *time.Location, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		db:        db,
		recorder:  NewRecorder(),
		tracker:   streak.NewTracker(loc, log),
		evaluator: badges.NewEvaluator(log),
		now:       time.Now,
		log:       log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LogPlant records that userID ate plantID now. Recording, the streak
// update and badge unlocks share one transaction; on any error nothing is
// persisted. Cache invalidation, metrics and notifications run only after
// the commit.
func (s *Service) LogPlant(ctx context.Context, userID, plantID uint) (*LogResult, error) {
	start := time.Now()
	at := s.now()

	var (
		rec       *Recording
		streakRes *streak.Result
		unlocked  []models.Badge
	)
	err := s.db.Transaction(ctx, func(tx *repository.DB) error {
		var err error
		rec, err = s.recorder.RecordConsumption(ctx, tx, userID, plantID, at)
		if err != nil {
			return err
		}

		streakRes, err = s.tracker.Update(ctx, repository.NewUserRepository(tx), userID, at)
		if err != nil {
			return err
		}

		unlocked, err = s.evaluator.Evaluate(ctx, repository.NewBadgeRepository(tx), userID, rec.TotalPoints, at)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			prommetrics.RecordLogFailure("user_not_found")
			return nil, err
		case errors.Is(err, ErrPlantNotFound):
			prommetrics.RecordLogFailure("plant_not_found")
			return nil, err
		default:
			prommetrics.RecordLogFailure("internal")
			s.log.Error().Err(err).Uint("user_id", userID).Uint("plant_id", plantID).Msg("Failed to log plant")
			return nil, fmt.Errorf("failed to log plant: %w", err)
		}
	}

	prommetrics.RecordPlantLogged(rec.IsFirstTime, rec.PointsEarned)
	prommetrics.RecordStreakUpdate(streakRes.Outcome)
	for _, b := range unlocked {
		prommetrics.RecordBadgeUnlocked(b.Name)
	}
	prommetrics.ObserveLogDuration(time.Since(start).Seconds())

	// The log is committed; a client that goes away now must not leave
	// stale summaries behind.
	postCtx := context.WithoutCancel(ctx)
	if s.cache != nil {
		s.cache.Invalidate(postCtx, userID)
	}
	if len(unlocked) > 0 {
		if s.gauges != nil {
			s.gauges.RefreshHolderGauges(postCtx, unlocked)
		}
		if s.notifier != nil {
			s.notifier.BadgesUnlocked(postCtx, rec.User.Username, rec.TotalPoints, unlocked)
		}
	}

	s.log.Info().
		Uint("user_id", userID).
		Str("plant", rec.Plant.Name).
		Bool("first_time", rec.IsFirstTime).
		Int("points", rec.PointsEarned).
		Int("total_points", rec.TotalPoints).
		Int("streak", streakRes.CurrentStreak).
		Int("new_badges", len(unlocked)).
		Msg("Plant logged")

	return &LogResult{
		PointsEarned: rec.PointsEarned,
		IsFirstTime:  rec.IsFirstTime,
		Message:      rec.Message,
		Plant:        PlantInfo{ID: rec.Plant.ID, Name: rec.Plant.Name},
		TotalPoints:  rec.TotalPoints,
		Streak:       *streakRes,
		NewBadges:    unlocked,
		LoggedAt:     rec.Log.LoggedAt,
	}, nil
}
