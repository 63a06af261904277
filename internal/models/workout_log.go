package models

import "time"

// WorkoutLog records a completed exercise with the calories computed at log time.
type WorkoutLog struct {
	BaseModel

	AccountID       string    `gorm:"type:uuid;not null;index" json:"account_id"`
	Exercise        string    `gorm:"size:64;not null" json:"exercise"`
	DurationMinutes float64   `gorm:"not null" json:"duration_minutes"`
	WeightKg        float64   `gorm:"not null" json:"weight_kg"`
	CaloriesBurned  float64   `gorm:"not null" json:"calories_burned"`
	PerformedAt     time.Time `gorm:"index" json:"performed_at"`
}
