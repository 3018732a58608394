package models

import (
	"time"

	pgvector "github.com/pgvector/pgvector-go"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/types"
)

// RecipeEmbedding is one indexed recipe in the pgvector-backed index
type RecipeEmbedding struct {
	RecipeID      string           `gorm:"primaryKey;size:128" json:"recipe_id"`
	Title         string           `gorm:"size:255;not null" json:"title"`
	Ingredients   JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Instructions  string           `gorm:"type:text" json:"instructions"`
	KcalTotal     float64          `gorm:"type:float;not null" json:"kcal_total"`
	ProteinGTotal float64          `gorm:"type:float;not null" json:"protein_g_total"`
	CarbsGTotal   float64          `gorm:"type:float;not null" json:"carbs_g_total"`
	FatGTotal     float64          `gorm:"type:float;not null" json:"fat_g_total"`
	DietaryTags   JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"dietary_tags"`
	AllergenTags  JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"allergen_tags"`
	PrepTimeMin   int              `gorm:"not null;default:30" json:"prep_time_min"`
	CookingSkill  int              `gorm:"not null;default:2" json:"cooking_skill"`
	Embedding     pgvector.Vector  `gorm:"type:vector" json:"-"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// TableName returns the table name for the RecipeEmbedding model
func (RecipeEmbedding) TableName() string {
	return "recipe_embeddings"
}

// NewRecipeEmbedding builds a row from an index record and its vector
func NewRecipeEmbedding(rec types.RecipeRecord, vec []float32) RecipeEmbedding {
	return RecipeEmbedding{
		RecipeID:      rec.RecipeID,
		Title:         rec.Title,
		Ingredients:   JSONBStringArray(rec.Ingredients),
		Instructions:  rec.Instructions,
		KcalTotal:     rec.KcalTotal,
		ProteinGTotal: rec.ProteinGTotal,
		CarbsGTotal:   rec.CarbsGTotal,
		FatGTotal:     rec.FatGTotal,
		DietaryTags:   JSONBStringArray(rec.DietaryTags),
		AllergenTags:  JSONBStringArray(rec.AllergenTags),
		PrepTimeMin:   rec.PrepTimeMin,
		CookingSkill:  rec.CookingSkill,
		Embedding:     pgvector.NewVector(vec),
	}
}

// Record converts the row back into index metadata
func (r RecipeEmbedding) Record() types.RecipeRecord {
	return types.RecipeRecord{
		RecipeID:      r.RecipeID,
		Title:         r.Title,
		Ingredients:   []string(r.Ingredients),
		Instructions:  r.Instructions,
		KcalTotal:     r.KcalTotal,
		ProteinGTotal: r.ProteinGTotal,
		CarbsGTotal:   r.CarbsGTotal,
		FatGTotal:     r.FatGTotal,
		DietaryTags:   []string(r.DietaryTags),
		AllergenTags:  []string(r.AllergenTags),
		PrepTimeMin:   r.PrepTimeMin,
		CookingSkill:  r.CookingSkill,
	}
}
