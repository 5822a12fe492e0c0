// Package models defines domain models for the plant diversity tracker.
package models

import (
	"time"
)

// User represents a tracker account and its streak state.
//
// Total points are not stored here; they are always derived from the
// consumption log.
type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Username      string    `gorm:"uniqueIndex;not null;size:255" json:"username"`
	LastLogDate   *string   `gorm:"column:last_log_date;size:10" json:"last_log_date"` // YYYY-MM-DD in the engine timezone
	CurrentStreak int       `gorm:"column:current_streak;not null;default:0" json:"current_streak"`
	LongestStreak int       `gorm:"column:longest_streak;not null;default:0" json:"longest_streak"`
	WeeklyGoal    int       `gorm:"column:weekly_goal;not null;default:0" json:"weekly_goal"`
	MonthlyGoal   int       `gorm:"column:monthly_goal;not null;default:0" json:"monthly_goal"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model.
func (User) TableName() string {
	return "users"
}
