package types

// RecipeRecord is the metadata stored alongside each embedding in the
// vector index. Nutrition totals are per full recipe, not per serving.
type RecipeRecord struct {
	RecipeID      string   `json:"recipe_id"`
	Title         string   `json:"title"`
	Ingredients   []string `json:"ingredients"`
	Instructions  string   `json:"instructions"`
	KcalTotal     float64  `json:"kcal_total"`
	ProteinGTotal float64  `json:"protein_g_total"`
	CarbsGTotal   float64  `json:"carbs_g_total"`
	FatGTotal     float64  `json:"fat_g_total"`
	DietaryTags   []string `json:"dietary_tags"`
	AllergenTags  []string `json:"allergen_tags"`
	PrepTimeMin   int      `json:"prep_time_min"`
	CookingSkill  int      `json:"cooking_skill"`
}

// HasTag reports whether the recipe carries the dietary tag
func (r RecipeRecord) HasTag(tag string) bool {
	for _, t := range r.DietaryTags {
		if t == tag {
			return true
		}
	}
	return false
}

// ScoreBreakdown records how a candidate's score was produced
type ScoreBreakdown struct {
	Strategy           string             `json:"strategy"`
	SemanticSimilarity float64            `json:"semantic_similarity"`
	CalorieProximity   float64            `json:"calorie_proximity"`
	DietaryMatch       float64            `json:"dietary_match"`
	SkillMatch         float64            `json:"skill_match,omitempty"`
	PrepTime           float64            `json:"prep_time,omitempty"`
	RecencyPenalty     float64            `json:"recency_penalty"`
	Weights            map[string]float64 `json:"weights"`
	PreferenceBoost    float64            `json:"preference_boost"`
	RegionalBoost      float64            `json:"regional_boost"`
	OriginalScore      float64            `json:"original_score"`
	TotalScore         float64            `json:"total_score"`
}

// RecipeCandidate is a recipe scored for one meal slot during a single
// retrieval call. Breakdown is nil unless debug output was requested.
type RecipeCandidate struct {
	RecipeRecord
	Score     float64         `json:"score"`
	Rank      int             `json:"rank"`
	Rationale string          `json:"rationale,omitempty"`
	Breakdown *ScoreBreakdown `json:"score_breakdown,omitempty"`
}
