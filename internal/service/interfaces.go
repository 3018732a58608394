package service

import (
	"context"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/models"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/planner"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/types"
)

// IPlanService defines the interface for meal plan generation
type IPlanService interface {
	GenerateDailyPlan(ctx context.Context, req PlanRequest) (*PlanResponse, error)
	GenerateWeeklyPlan(ctx context.Context, req types.WeeklyPlanRequest) (*planner.WeeklyPlan, error)
}

// IPreferenceService defines the interface for feedback and preference state
type IPreferenceService interface {
	SubmitFeedback(ctx context.Context, userID, recipeID string, liked bool) (*models.RecipeFeedback, error)
	GetPreferences(ctx context.Context, userID string) (types.UserPreferenceState, error)
	UpdateRegionalProfile(ctx context.Context, userID, profile string) error
	ListFeedback(ctx context.Context, userID string) ([]models.RecipeFeedback, error)
	FeedbackStats(ctx context.Context, userID string) (types.FeedbackStats, error)
	DeleteFeedback(ctx context.Context, userID, recipeID string) error
	DeleteAllFeedback(ctx context.Context, userID string) (int64, error)
}

// IRecipeService defines the interface for reading indexed recipes
type IRecipeService interface {
	GetRecipe(ctx context.Context, recipeID string) (*types.RecipeRecord, error)
}

// IProgressService defines the interface for progress tracking
type IProgressService interface {
	LogProgress(ctx context.Context, userID string, req types.ProgressLogRequest) (*models.ProgressLog, error)
	History(ctx context.Context, userID string, days int) ([]models.ProgressLog, error)
	Analyze(ctx context.Context, userID string, profile types.UserProfile, days int) (*types.ProgressAnalysis, error)
}

// PreferenceSource supplies personalization state to the plan service
type PreferenceSource interface {
	GetPreferences(ctx context.Context, userID string) (types.UserPreferenceState, error)
}
