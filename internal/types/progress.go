package types

// ProgressLogRequest is the request body for recording a day's progress
type ProgressLogRequest struct {
	Date           string  `json:"date" binding:"required"`
	WeightKg       float64 `json:"weight_kg" binding:"required,gt=0"`
	AdherenceScore float64 `json:"adherence_score" binding:"gte=0,lte=1"`
	Notes          string  `json:"notes,omitempty"`
	EnergyLevel    *int    `json:"energy_level,omitempty" binding:"omitempty,min=1,max=5"`
	HungerLevel    *int    `json:"hunger_level,omitempty" binding:"omitempty,min=1,max=5"`
}

// ProgressAnalysisRequest asks for an analysis of the last Days of logs
// against the goal in Profile
type ProgressAnalysisRequest struct {
	Profile UserProfile `json:"profile"`
	Days    int         `json:"days,omitempty" binding:"omitempty,min=1,max=365"`
}

// ProgressAnalysis compares logged weight change with the profile's goal
// rate and suggests a calorie change when adherence is good but progress
// is off track.
type ProgressAnalysis struct {
	UserID              string   `json:"user_id"`
	PeriodDays          int      `json:"analysis_period_days"`
	Logs                int      `json:"num_logs"`
	StartingWeightKg    float64  `json:"starting_weight"`
	CurrentWeightKg     float64  `json:"current_weight"`
	WeightChangeKg      float64  `json:"total_weight_change"`
	ActualRateKgPerWeek float64  `json:"actual_rate_kg_per_week"`
	GoalRateKgPerWeek   float64  `json:"goal_rate_kg_per_week"`
	AverageAdherence    float64  `json:"average_adherence"`
	AdherenceTrend      string   `json:"adherence_trend"`
	Status              string   `json:"progress_status"`
	Recommendation      string   `json:"recommendation"`
	CurrentTargetKcal   float64  `json:"current_target_kcal"`
	AdjustmentNeeded    bool     `json:"calorie_adjustment_needed"`
	SuggestedKcalChange *int     `json:"suggested_calorie_change,omitempty"`
	NewTargetKcal       *float64 `json:"new_target_kcal,omitempty"`
}

// FeedbackStats summarizes a user's recipe feedback. Diversity is the
// share of the minority outcome, 0 when every vote agrees.
type FeedbackStats struct {
	UserID          string  `json:"user_id"`
	TotalLiked      int     `json:"total_liked"`
	TotalDisliked   int     `json:"total_disliked"`
	TotalFeedback   int     `json:"total_feedback"`
	Diversity       float64 `json:"preference_diversity_score"`
	RegionalProfile string  `json:"regional_profile"`
}
