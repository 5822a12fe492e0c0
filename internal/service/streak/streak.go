// Package streak maintains consecutive-day logging streaks.
package streak

import (
	"context"
	"errors"
	"fmt"
	"time"

	prommetrics "github.com/Ramouth/BiomeQuest-sub000/internal/metrics"
	"github.com/Ramouth/BiomeQuest-sub000/internal/models"
	"github.com/Ramouth/BiomeQuest-sub000/internal/repository"
	"github.com/Ramouth/BiomeQuest-sub000/pkg/logger"
)

// DateLayout is the format of users.last_log_date.
const DateLayout = "2006-01-02"

// UserRepository is the slice of user persistence the tracker needs.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	UpdateStreak(ctx context.Context, user *models.User) error
}

// State is the streak portion of a user row.
type State struct {
	LastLogDate   *string
	CurrentStreak int
	LongestStreak int
}

// Result is what a streak update reports back to the caller.
type Result struct {
	CurrentStreak int    `json:"current_streak"`
	LongestStreak int    `json:"longest_streak"`
	Outcome       string `json:"-"`
}

// Changed reports whether the update wrote new streak values.
func (r Result) Changed() bool {
	return r.Outcome != prommetrics.StreakUnchanged && r.Outcome != prommetrics.StreakSkipped
}

// Advance applies a log made on calendar day today to s.
// A log on the same day, or on a day before the last logged one, leaves the
// state untouched. An unparsable last date restarts the streak.
func Advance(s State, today string) (State, string) {
	if s.LastLogDate == nil || *s.LastLogDate == "" {
		next := State{LastLogDate: &today, CurrentStreak: 1, LongestStreak: max(s.LongestStreak, 1)}
		return next, prommetrics.StreakStarted
	}

	days, err := DaysBetween(*s.LastLogDate, today)
	if err != nil {
		return State{LastLogDate: &today, CurrentStreak: 1, LongestStreak: max(s.LongestStreak, 1)}, prommetrics.StreakReset
	}
	if days <= 0 {
		return s, prommetrics.StreakUnchanged
	}

	if days == 1 {
		current := s.CurrentStreak + 1
		return State{LastLogDate: &today, CurrentStreak: current, LongestStreak: max(s.LongestStreak, current)}, prommetrics.StreakExtended
	}

	return State{LastLogDate: &today, CurrentStreak: 1, LongestStreak: max(s.LongestStreak, 1)}, prommetrics.StreakReset
}

// DaysBetween returns the number of calendar days from one YYYY-MM-DD date to another.
func DaysBetween(from, to string) (int, error) {
	a, err := time.Parse(DateLayout, from)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", from, err)
	}
	b, err := time.Parse(DateLayout, to)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", to, err)
	}
	// Both parse as UTC midnight, so the difference is a whole number of days.
	return int(b.Sub(a).Hours() / 24), nil
}

// CalendarDate formats t as the calendar day it falls on in loc.
func CalendarDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

// Tracker updates user streaks.
type Tracker struct {
	loc *time.Location
	log *logger.Logger
}

// NewTracker creates a tracker that decides calendar days in loc.
func NewTracker(loc *time.Location, log *logger.Logger) *Tracker {
	if loc == nil {
		loc = time.UTC
	}
	return &Tracker{loc: loc, log: log}
}

// Update advances the streak of userID for a log made at at. A missing user
// is not an error: the update is skipped and logged so that the surrounding
// log request still succeeds.
func (t *Tracker) Update(ctx context.Context, users UserRepository, userID uint, at time.Time) (*Result, error) {
	user, err := users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			t.log.Warn().Uint("user_id", userID).Msg("Streak update skipped, user not found")
			return &Result{Outcome: prommetrics.StreakSkipped}, nil
		}
		return nil, fmt.Errorf("failed to load user for streak: %w", err)
	}

	today := CalendarDate(at, t.loc)
	if last := user.LastLogDate; last != nil && *last != "" {
		if _, err := time.Parse(DateLayout, *last); err != nil {
			t.log.Warn().
				Uint("user_id", userID).
				Str("last_log_date", *last).
				Msg("Invalid last log date, restarting streak")
		}
	}
	next, outcome := Advance(State{
		LastLogDate:   user.LastLogDate,
		CurrentStreak: user.CurrentStreak,
		LongestStreak: user.LongestStreak,
	}, today)

	result := &Result{
		CurrentStreak: next.CurrentStreak,
		LongestStreak: next.LongestStreak,
		Outcome:       outcome,
	}
	if !result.Changed() {
		return result, nil
	}

	user.LastLogDate = next.LastLogDate
	user.CurrentStreak = next.CurrentStreak
	user.LongestStreak = next.LongestStreak
	if err := users.UpdateStreak(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			t.log.Warn().Uint("user_id", userID).Msg("Streak update skipped, user disappeared")
			return &Result{Outcome: prommetrics.StreakSkipped}, nil
		}
		return nil, fmt.Errorf("failed to persist streak: %w", err)
	}

	t.log.Debug().
		Uint("user_id", userID).
		Str("date", today).
		Str("outcome", outcome).
		Int("current_streak", next.CurrentStreak).
		Int("longest_streak", next.LongestStreak).
		Msg("Streak updated")

	return result, nil
}
