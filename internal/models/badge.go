package models

import (
	"time"
)

// Badge is unlocked once a user's cumulative points reach PointsRequired.
type Badge struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"uniqueIndex;not null;size:100" json:"name"`
	Description    string    `gorm:"type:text" json:"description"`
	Emoji          string    `gorm:"size:50" json:"emoji"`
	PointsRequired int       `gorm:"column:points_required;not null;index" json:"points_required"`
	SortOrder      int       `gorm:"column:sort_order;not null;default:0" json:"sort_order"`
	IsActive       bool      `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName specifies the table name for Badge model.
func (Badge) TableName() string {
	return "badges"
}

// UserBadge records that a user unlocked a badge. The (user_id, badge_id)
// unique index is what makes an unlock happen at most once.
type UserBadge struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_user_badge" json:"user_id"`
	User       User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	BadgeID    uint      `gorm:"not null;uniqueIndex:idx_user_badge" json:"badge_id"`
	Badge      Badge     `gorm:"foreignKey:BadgeID" json:"badge,omitempty"`
	UnlockedAt time.Time `gorm:"column:unlocked_at;not null" json:"unlocked_at"`
}

// TableName specifies the table name for UserBadge model.
func (UserBadge) TableName() string {
	return "user_badges"
}
