package api

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/models"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/planner"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/service"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/types"
)

// MockPlanService is a mock implementation of service.IPlanService
type MockPlanService struct {
	mock.Mock
}

func (m *MockPlanService) GenerateDailyPlan(ctx context.Context, req service.PlanRequest) (*service.PlanResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PlanResponse), args.Error(1)
}

func (m *MockPlanService) GenerateWeeklyPlan(ctx context.Context, req types.WeeklyPlanRequest) (*planner.WeeklyPlan, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*planner.WeeklyPlan), args.Error(1)
}

// MockPreferenceService is a mock implementation of service.IPreferenceService
type MockPreferenceService struct {
	mock.Mock
}

func (m *MockPreferenceService) SubmitFeedback(ctx context.Context, userID, recipeID string, liked bool) (*models.RecipeFeedback, error) {
	args := m.Called(ctx, userID, recipeID, liked)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RecipeFeedback), args.Error(1)
}

func (m *MockPreferenceService) GetPreferences(ctx context.Context, userID string) (types.UserPreferenceState, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(types.UserPreferenceState), args.Error(1)
}

func (m *MockPreferenceService) UpdateRegionalProfile(ctx context.Context, userID, profile string) error {
	args := m.Called(ctx, userID, profile)
	return args.Error(0)
}

func (m *MockPreferenceService) ListFeedback(ctx context.Context, userID string) ([]models.RecipeFeedback, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RecipeFeedback), args.Error(1)
}

func (m *MockPreferenceService) FeedbackStats(ctx context.Context, userID string) (types.FeedbackStats, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(types.FeedbackStats), args.Error(1)
}

func (m *MockPreferenceService) DeleteFeedback(ctx context.Context, userID, recipeID string) error {
	args := m.Called(ctx, userID, recipeID)
	return args.Error(0)
}

func (m *MockPreferenceService) DeleteAllFeedback(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockRecipeService is a mock implementation of service.IRecipeService
type MockRecipeService struct {
	mock.Mock
}

func (m *MockRecipeService) GetRecipe(ctx context.Context, recipeID string) (*types.RecipeRecord, error) {
	args := m.Called(ctx, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.RecipeRecord), args.Error(1)
}

// MockProgressService is a mock implementation of service.IProgressService
type MockProgressService struct {
	mock.Mock
}

func (m *MockProgressService) LogProgress(ctx context.Context, userID string, req types.ProgressLogRequest) (*models.ProgressLog, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProgressLog), args.Error(1)
}

func (m *MockProgressService) History(ctx context.Context, userID string, days int) ([]models.ProgressLog, error) {
	args := m.Called(ctx, userID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ProgressLog), args.Error(1)
}

func (m *MockProgressService) Analyze(ctx context.Context, userID string, profile types.UserProfile, days int) (*types.ProgressAnalysis, error) {
	args := m.Called(ctx, userID, profile, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ProgressAnalysis), args.Error(1)
}
