package types

// MealType is one of the four daily meal slots
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnacks    MealType = "snacks"
)

// MealOrder is the fixed slot order used by the assembler
var MealOrder = []MealType{MealBreakfast, MealLunch, MealDinner, MealSnacks}

// NutritionStatus marks whether a meal's numbers came from the index
type NutritionStatus string

const (
	NutritionIndexed NutritionStatus = "INDEXED_RECIPE"
	NutritionMissing NutritionStatus = "MISSING_NUTRITION"
)

const (
	// ProvenanceDeterministic tags plans built only from indexed numbers
	ProvenanceDeterministic = "DETERMINISTIC_ENGINE_AND_INDEXED_RECIPES"
	// PlanVersion is the plan format version
	PlanVersion = "1.0"
)

// Nutrition holds the four tracked macro values
type Nutrition struct {
	Kcal     float64 `json:"kcal"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// MealSlotAssignment is one chosen recipe in a plan
type MealSlotAssignment struct {
	MealType        MealType        `json:"meal_type"`
	RecipeID        string          `json:"recipe_id"`
	RecipeTitle     string          `json:"recipe_title"`
	PortionSize     string          `json:"portion_size"`
	Multiplier      float64         `json:"portion_multiplier"`
	Ingredients     []string        `json:"ingredients"`
	Instructions    string          `json:"instructions"`
	Kcal            float64         `json:"kcal"`
	ProteinG        float64         `json:"protein_g"`
	CarbsG          float64         `json:"carbs_g"`
	FatG            float64         `json:"fat_g"`
	NutritionStatus NutritionStatus `json:"nutrition_status"`
}

// SourceCitation links a meal back to the indexed recipe it came from
type SourceCitation struct {
	MealType             MealType `json:"meal_type"`
	RecipeID             string   `json:"recipe_id"`
	SourceDocID          string   `json:"source_doc_id"`
	SourceSnippetExcerpt string   `json:"source_snippet_excerpt"`
}

// DailyMealPlan is the assembled plan for one day
type DailyMealPlan struct {
	PlanID              string               `json:"plan_id"`
	UserID              string               `json:"user_id"`
	Date                string               `json:"date"`
	Meals               []MealSlotAssignment `json:"meals"`
	TotalNutrition      Nutrition            `json:"total_nutrition"`
	NutritionProvenance string               `json:"nutrition_provenance"`
	PlanVersion         string               `json:"plan_version"`
	Sources             []SourceCitation     `json:"sources"`
	CoverageGaps        []MealType           `json:"coverage_gaps,omitempty"`
}

// RecipeIDs returns the recipe ids of the plan's meals in slot order
func (p *DailyMealPlan) RecipeIDs() []string {
	ids := make([]string, 0, len(p.Meals))
	for _, m := range p.Meals {
		ids = append(ids, m.RecipeID)
	}
	return ids
}
