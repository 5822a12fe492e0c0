package models

import (
	"time"
)

// ConsumptionLog is one immutable logging action. It is the only source of
// truth for point totals and summaries.
type ConsumptionLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index:idx_logs_user_time,priority:1" json:"user_id"`
	User         User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	PlantID      uint      `gorm:"not null;index" json:"plant_id"`
	Plant        Plant     `gorm:"foreignKey:PlantID" json:"plant,omitempty"`
	PointsEarned int       `gorm:"column:points_earned;not null" json:"points_earned"`
	IsFirstTime  bool      `gorm:"column:is_first_time;not null" json:"is_first_time"`
	LoggedAt     time.Time `gorm:"column:logged_at;not null;index:idx_logs_user_time,priority:2" json:"logged_at"`
}

// TableName specifies the table name for ConsumptionLog model.
func (ConsumptionLog) TableName() string {
	return "consumption_logs"
}
