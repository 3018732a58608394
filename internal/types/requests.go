package types

// DailyPlanRequest is the request body for generating a daily plan
type DailyPlanRequest struct {
	Profile          UserProfile    `json:"profile" binding:"required"`
	ActivityOverride *ActivityLevel `json:"activity_override,omitempty"`
	RecentlyUsed     []string       `json:"recently_used,omitempty"`
	Seed             *int64         `json:"seed,omitempty"`
	Strategy         string         `json:"strategy,omitempty" binding:"omitempty,oneof=simple advanced"`
}

// WeeklyPlanRequest is the request body for generating a weekly plan.
// ActivityPattern maps lowercase day names to rest, light, moderate,
// active or very_active.
type WeeklyPlanRequest struct {
	Profile          UserProfile       `json:"profile" binding:"required"`
	StartDate        string            `json:"start_date,omitempty"`
	ActivityPattern  map[string]string `json:"activity_pattern,omitempty"`
	MaxRecipeRepeats int               `json:"max_recipe_repeats,omitempty" binding:"omitempty,min=1,max=7"`
	Seed             *int64            `json:"seed,omitempty"`
}

// FeedbackRequest is the request body for recipe feedback
type FeedbackRequest struct {
	RecipeID string `json:"recipe_id" binding:"required"`
	Liked    *bool  `json:"liked" binding:"required"`
}

// RegionalProfileRequest updates the user's regional cuisine preference
type RegionalProfileRequest struct {
	RegionalProfile string `json:"regional_profile" binding:"required"`
}

// PreferenceResponse is the API view of a user's preference state
type PreferenceResponse struct {
	LikedRecipeIDs    []string `json:"liked_recipe_ids"`
	DislikedRecipeIDs []string `json:"disliked_recipe_ids"`
	RegionalProfile   string   `json:"regional_profile"`
}
