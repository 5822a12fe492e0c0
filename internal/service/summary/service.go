// Package summary provides the read-only aggregation queries behind the
// tracker dashboards: daily, weekly and monthly summaries, top plants and
// lifetime stats.
package summary

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Ramouth/BiomeQuest-sub000/internal/cache"
	"github.com/Ramouth/BiomeQuest-sub000/internal/models"
	"github.com/Ramouth/BiomeQuest-sub000/internal/repository"
	"github.com/Ramouth/BiomeQuest-sub000/internal/service/streak"
	"github.com/Ramouth/BiomeQuest-sub000/pkg/logger"
)

// Window sizes of the rolling summaries, today included.
const (
	WeeklyDays  = 7
	MonthlyDays = 30
)

// Bounds of the top plants limit.
const (
	DefaultTopPlantsLimit = 5
	MaxTopPlantsLimit     = 50
)

// ErrInvalidDate is returned for dates not in YYYY-MM-DD form.
var ErrInvalidDate = errors.New("invalid date")

// ConsumptionRepository interface for consumption reads.
type ConsumptionRepository interface {
	GetLogsByDateRange(ctx context.Context, userID uint, start, end time.Time) ([]models.ConsumptionLog, error)
	GetTopPlants(ctx context.Context, userID uint, limit int) ([]models.UserPlant, error)
	SumPoints(ctx context.Context, userID uint) (int, error)
	CountLogs(ctx context.Context, userID uint) (int64, error)
	CountDistinctPlants(ctx context.Context, userID uint) (int64, error)
}

// UserRepository interface for user reads.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// BadgeRepository interface for badge reads.
type BadgeRepository interface {
	GetUserBadgeCount(ctx context.Context, userID uint) (int64, error)
}

// LogEntry is one consumption log in a daily summary.
type LogEntry struct {
	ID           uint      `json:"id"`
	PlantID      uint      `json:"plant_id"`
	PlantName    string    `json:"plant_name"`
	PointsEarned int       `json:"points_earned"`
	IsFirstTime  bool      `json:"is_first_time"`
	LoggedAt     time.Time `json:"logged_at"`
}

// Daily summarizes one calendar day.
type Daily struct {
	UserID       uint       `json:"user_id"`
	Date         string     `json:"date"`
	PlantsLogged int        `json:"plants_logged"`
	PointsEarned int        `json:"points_earned"`
	Logs         []LogEntry `json:"logs"`
}

// DayTotal is one day of a period summary.
type DayTotal struct {
	Date   string `json:"date"`
	Logs   int    `json:"logs"`
	Points int    `json:"points"`
}

// Period summarizes a rolling window of calendar days ending today.
type Period struct {
	UserID       uint       `json:"user_id"`
	Period       string     `json:"period"`
	StartDate    string     `json:"start_date"`
	EndDate      string     `json:"end_date"`
	Days         []DayTotal `json:"days"`
	TotalLogs    int        `json:"total_logs"`
	TotalPoints  int        `json:"total_points"`
	UniquePlants int        `json:"unique_plants"`
	Goal         int        `json:"goal"`
	Progress     int        `json:"progress"`
}

// TopPlant is one row of the most eaten plants of a user.
type TopPlant struct {
	PlantID      uint      `json:"plant_id"`
	Name         string    `json:"name"`
	TimesEaten   int       `json:"times_eaten"`
	FirstEatenAt time.Time `json:"first_eaten_at"`
}

// Stats are the lifetime totals of a user.
type Stats struct {
	UserID        uint   `json:"user_id"`
	Username      string `json:"username"`
	TotalPoints   int    `json:"total_points"`
	TotalLogs     int64  `json:"total_logs"`
	UniquePlants  int64  `json:"unique_plants"`
	CurrentStreak int    `json:"current_streak"`
	LongestStreak int    `json:"longest_streak"`
	BadgeCount    int64  `json:"badge_count"`
}

// Service answers aggregation queries, optionally through a cache.
type Service struct {
	consumptionRepo ConsumptionRepository
	userRepo        UserRepository
	badgeRepo       BadgeRepository
	cache           cache.Cache
	ttl             time.Duration
	loc             *time.Location
	now             func() time.Time
	log             *logger.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithCache enables summary caching. A nil cache leaves caching off.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.ttl = ttl
	}
}

// WithClock overrides the clock used to decide "today".
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new summary service with concrete repository types.
func NewService(
	consumptionRepo *repository.ConsumptionRepository,
	userRepo *repository.UserRepository,
	badgeRepo *repository.BadgeRepository,
	loc *time.Location,
	log *logger.Logger,
	opts ...Option,
) *Service {
	return NewServiceWithInterfaces(consumptionRepo, userRepo, badgeRepo, loc, log, opts...)
}

// NewServiceWithInterfaces creates a new summary service with interface dependencies (useful for testing).
func NewServiceWithInterfaces(
	consumptionRepo ConsumptionRepository,
	userRepo UserRepository,
	badgeRepo BadgeRepository,
	loc *time.Location,
	log *logger.Logger,
	opts ...Option,
) *Service {
	if loc == nil {
		loc = time.UTC
	}
	s := &Service{
		consumptionRepo: consumptionRepo,
		userRepo:        userRepo,
		badgeRepo:       badgeRepo,
		loc:             loc,
		now:             time.Now,
		log:             log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today returns the current calendar date in the engine timezone.
func (s *Service) Today() string {
	return streak.CalendarDate(s.now(), s.loc)
}

// ParseDate validates a YYYY-MM-DD date.
func (s *Service) ParseDate(date string) (time.Time, error) {
	day, err := time.ParseInLocation(streak.DateLayout, date, s.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q, expected YYYY-MM-DD", ErrInvalidDate, date)
	}
	return day, nil
}

// Daily returns the logs of one calendar day.
func (s *Service) Daily(ctx context.Context, userID uint, date string) (*Daily, error) {
	start, err := s.ParseDate(date)
	if err != nil {
		return nil, err
	}

	return cachedLoad(ctx, s, userID, "daily", date, func() (*Daily, error) {
		logs, err := s.consumptionRepo.GetLogsByDateRange(ctx, userID, start, start.AddDate(0, 0, 1))
		if err != nil {
			return nil, fmt.Errorf("failed to get daily logs: %w", err)
		}

		daily := &Daily{UserID: userID, Date: date, Logs: make([]LogEntry, 0, len(logs))}
		for _, l := range logs {
			daily.PlantsLogged++
			daily.PointsEarned += l.PointsEarned
			daily.Logs = append(daily.Logs, LogEntry{
				ID:           l.ID,
				PlantID:      l.PlantID,
				PlantName:    l.Plant.Name,
				PointsEarned: l.PointsEarned,
				IsFirstTime:  l.IsFirstTime,
				LoggedAt:     l.LoggedAt.In(s.loc),
			})
		}
		return daily, nil
	})
}

// Weekly summarizes the last 7 calendar days ending on today.
func (s *Service) Weekly(ctx context.Context, userID uint, today string) (*Period, error) {
	return s.period(ctx, userID, "weekly", WeeklyDays, today, func(u *models.User) int { return u.WeeklyGoal })
}

// Monthly summarizes the last 30 calendar days ending on today.
func (s *Service) Monthly(ctx context.Context, userID uint, today string) (*Period, error) {
	return s.period(ctx, userID, "monthly", MonthlyDays, today, func(u *models.User) int { return u.MonthlyGoal })
}

func (s *Service) period(ctx context.Context, userID uint, name string, days int, today string, goalOf func(*models.User) int) (*Period, error) {
	end, err := s.ParseDate(today)
	if err != nil {
		return nil, err
	}
	end = end.AddDate(0, 0, 1)
	start := end.AddDate(0, 0, -days)

	return cachedLoad(ctx, s, userID, name, today, func() (*Period, error) {
		goal := 0
		user, err := s.userRepo.GetByID(ctx, userID)
		switch {
		case err == nil:
			goal = goalOf(user)
		case !errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("failed to get user: %w", err)
		}

		logs, err := s.consumptionRepo.GetLogsByDateRange(ctx, userID, start, end)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s logs: %w", name, err)
		}

		p := &Period{
			UserID:    userID,
			Period:    name,
			StartDate: start.Format(streak.DateLayout),
			EndDate:   today,
			Days:      make([]DayTotal, days),
			Goal:      goal,
		}
		index := make(map[string]int, days)
		for i := 0; i < days; i++ {
			date := start.AddDate(0, 0, i).Format(streak.DateLayout)
			p.Days[i] = DayTotal{Date: date}
			index[date] = i
		}

		plants := make(map[uint]struct{})
		for _, l := range logs {
			if i, ok := index[streak.CalendarDate(l.LoggedAt, s.loc)]; ok {
				p.Days[i].Logs++
				p.Days[i].Points += l.PointsEarned
			}
			p.TotalLogs++
			p.TotalPoints += l.PointsEarned
			plants[l.PlantID] = struct{}{}
		}
		p.UniquePlants = len(plants)
		p.Progress = Progress(p.TotalPoints, p.Goal)

		return p, nil
	})
}

// Progress returns points as a percentage of goal, rounded and capped at 100.
// A goal of zero yields 0.
func Progress(points, goal int) int {
	if goal <= 0 {
		return 0
	}
	pct := int(math.Round(float64(points) / float64(goal) * 100))
	return min(100, max(0, pct))
}

// ClampLimit bounds a top plants limit to [1, MaxTopPlantsLimit].
func ClampLimit(limit int) int {
	return min(MaxTopPlantsLimit, max(1, limit))
}

// TopPlants returns the user's most eaten plants.
func (s *Service) TopPlants(ctx context.Context, userID uint, limit int) ([]TopPlant, error) {
	limit = ClampLimit(limit)

	return cachedLoad(ctx, s, userID, "top", fmt.Sprint(limit), func() ([]TopPlant, error) {
		rows, err := s.consumptionRepo.GetTopPlants(ctx, userID, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to get top plants: %w", err)
		}

		top := make([]TopPlant, 0, len(rows))
		for _, r := range rows {
			top = append(top, TopPlant{
				PlantID:      r.PlantID,
				Name:         r.Plant.Name,
				TimesEaten:   r.TimesEaten,
				FirstEatenAt: r.FirstEatenAt.In(s.loc),
			})
		}
		return top, nil
	})
}

// Stats returns lifetime totals. Total points are the sum over the logs.
func (s *Service) Stats(ctx context.Context, userID uint) (*Stats, error) {
	return cachedLoad(ctx, s, userID, "stats", "", func() (*Stats, error) {
		stats := &Stats{UserID: userID}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			user, err := s.userRepo.GetByID(gctx, userID)
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to get user: %w", err)
			}
			stats.Username = user.Username
			stats.CurrentStreak = user.CurrentStreak
			stats.LongestStreak = user.LongestStreak
			return nil
		})
		g.Go(func() (err error) {
			stats.TotalPoints, err = s.consumptionRepo.SumPoints(gctx, userID)
			return err
		})
		g.Go(func() (err error) {
			stats.TotalLogs, err = s.consumptionRepo.CountLogs(gctx, userID)
			return err
		})
		g.Go(func() (err error) {
			stats.UniquePlants, err = s.consumptionRepo.CountDistinctPlants(gctx, userID)
			return err
		})
		g.Go(func() (err error) {
			stats.BadgeCount, err = s.badgeRepo.GetUserBadgeCount(gctx, userID)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}

		return stats, nil
	})
}
