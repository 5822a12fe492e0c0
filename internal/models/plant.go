package models

import (
	"time"
)

// Plant is a catalog entry that can be logged.
type Plant struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"uniqueIndex;not null;size:100" json:"name"`
	PointsForNew     int       `gorm:"column:points_for_new;not null" json:"points_for_new"`
	PointsForRepeat  int       `gorm:"column:points_for_repeat;not null" json:"points_for_repeat"`
	FirstTimeMessage string    `gorm:"column:first_time_message;type:text" json:"first_time_message"`
	RepeatMessage    string    `gorm:"column:repeat_message;type:text" json:"repeat_message"`
	IsActive         bool      `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TableName specifies the table name for Plant model.
func (Plant) TableName() string {
	return "plants"
}

// UserPlant aggregates how often a user has eaten a plant.
// TimesEaten always equals the number of consumption logs for the pair.
type UserPlant struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;uniqueIndex:idx_user_plant" json:"user_id"`
	User         User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	PlantID      uint      `gorm:"not null;uniqueIndex:idx_user_plant" json:"plant_id"`
	Plant        Plant     `gorm:"foreignKey:PlantID" json:"plant,omitempty"`
	TimesEaten   int       `gorm:"column:times_eaten;not null;default:0" json:"times_eaten"`
	FirstEatenAt time.Time `gorm:"column:first_eaten_at;not null" json:"first_eaten_at"`
}

// TableName specifies the table name for UserPlant model.
func (UserPlant) TableName() string {
	return "user_plants"
}
