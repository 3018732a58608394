package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProgressLog is one day's weigh-in and plan adherence for a user.
// LogDate is stored as YYYY-MM-DD so it sorts as text.
type ProgressLog struct {
	ID             uuid.UUID `gorm:"type:uuid;primarykey" json:"id"`
	UserID         string    `gorm:"size:64;not null;uniqueIndex:idx_progress_user_date" json:"user_id"`
	LogDate        string    `gorm:"size:10;not null;uniqueIndex:idx_progress_user_date" json:"log_date"`
	WeightKg       float64   `gorm:"not null" json:"weight_kg"`
	AdherenceScore float64   `gorm:"not null" json:"adherence_score"`
	Notes          string    `gorm:"type:text" json:"notes,omitempty"`
	EnergyLevel    *int      `json:"energy_level,omitempty"`
	HungerLevel    *int      `json:"hunger_level,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName returns the table name for the ProgressLog model
func (ProgressLog) TableName() string {
	return "progress_logs"
}

// BeforeCreate assigns an id when the caller did not
func (p *ProgressLog) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
