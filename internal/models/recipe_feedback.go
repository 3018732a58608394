package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RecipeFeedback holds one like/dislike outcome per (user, recipe) pair
type RecipeFeedback struct {
	ID        uuid.UUID `gorm:"type:uuid;primarykey" json:"id"`
	UserID    string    `gorm:"size:64;not null;uniqueIndex:idx_feedback_user_recipe" json:"user_id"`
	RecipeID  string    `gorm:"size:128;not null;uniqueIndex:idx_feedback_user_recipe" json:"recipe_id"`
	Liked     bool      `gorm:"not null" json:"liked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for the RecipeFeedback model
func (RecipeFeedback) TableName() string {
	return "recipe_feedback"
}

// BeforeCreate assigns an id when the caller did not
func (f *RecipeFeedback) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// UserPreference stores per-user personalization settings
type UserPreference struct {
	UserID          string    `gorm:"primaryKey;size:64" json:"user_id"`
	RegionalProfile string    `gorm:"size:64;not null;default:'global'" json:"regional_profile"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName returns the table name for the UserPreference model
func (UserPreference) TableName() string {
	return "user_preferences"
}
