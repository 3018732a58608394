package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/metrics"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/models"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/types"
)

var (
	// ErrInvalidFeedback is returned for feedback without a user or recipe
	ErrInvalidFeedback = errors.New("invalid feedback")
	// ErrFeedbackNotFound is returned when deleting feedback that does not exist
	ErrFeedbackNotFound = errors.New("feedback not found")
)

// DefaultPreferenceTTL is how long a cached preference state stays valid
const DefaultPreferenceTTL = 300 * time.Second

// PreferenceService stores recipe feedback and serves the derived
// preference state, cached in Redis when a client is configured.
type PreferenceService struct {
	db      *gorm.DB
	redis   *redis.Client
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// Ensure PreferenceService implements IPreferenceService
var _ IPreferenceService = (*PreferenceService)(nil)

// NewPreferenceService creates a PreferenceService. client may be nil.
func NewPreferenceService(db *gorm.DB, client *redis.Client, ttl time.Duration, m *metrics.Metrics, logger *zap.Logger) *PreferenceService {
	if ttl <= 0 {
		ttl = DefaultPreferenceTTL
	}
	return &PreferenceService{db: db, redis: client, ttl: ttl, metrics: m, logger: logger}
}

func preferenceKey(userID string) string {
	return "preferences:" + userID
}

// SubmitFeedback records a like or dislike. A later submission for the
// same recipe replaces the earlier one.
func (s *PreferenceService) SubmitFeedback(ctx context.Context, userID, recipeID string, liked bool) (*models.RecipeFeedback, error) {
	userID = strings.TrimSpace(userID)
	recipeID = strings.TrimSpace(recipeID)
	if userID == "" || recipeID == "" {
		return nil, fmt.Errorf("%w: user_id and recipe_id are required", ErrInvalidFeedback)
	}

	fb := &models.RecipeFeedback{UserID: userID, RecipeID: recipeID, Liked: liked}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "recipe_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"liked", "updated_at"}),
	}).Create(fb).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save feedback: %w", err)
	}
	// The upsert keeps the original row id
	var saved models.RecipeFeedback
	if err := s.db.WithContext(ctx).First(&saved, "user_id = ? AND recipe_id = ?", userID, recipeID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload feedback: %w", err)
	}

	s.invalidate(ctx, userID)
	s.metrics.IncFeedback(liked)
	s.logger.Info("recorded recipe feedback",
		zap.String("user_id", userID),
		zap.String("recipe_id", recipeID),
		zap.Bool("liked", liked))
	return &saved, nil
}

// GetPreferences returns the user's liked and disliked recipes and
// regional profile. Users without history get an empty global state.
func (s *PreferenceService) GetPreferences(ctx context.Context, userID string) (types.UserPreferenceState, error) {
	if cached, ok := s.readCache(ctx, userID); ok {
		return cached, nil
	}

	var feedback []models.RecipeFeedback
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).Find(&feedback).Error; err != nil {
		return types.UserPreferenceState{}, fmt.Errorf("failed to load feedback: %w", err)
	}

	state := types.NewUserPreferenceState()
	for _, fb := range feedback {
		if fb.Liked {
			state.LikedRecipeIDs[fb.RecipeID] = struct{}{}
		} else {
			state.DislikedRecipeIDs[fb.RecipeID] = struct{}{}
		}
	}

	var pref models.UserPreference
	err := s.db.WithContext(ctx).First(&pref, "user_id = ?", userID).Error
	switch {
	case err == nil:
		state.RegionalProfile = pref.RegionalProfile
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return types.UserPreferenceState{}, fmt.Errorf("failed to load user preferences: %w", err)
	}

	s.writeCache(ctx, userID, state)
	return state, nil
}

// UpdateRegionalProfile sets the cuisine region boosted during ranking
func (s *PreferenceService) UpdateRegionalProfile(ctx context.Context, userID, profile string) error {
	profile = types.NormalizeRegionalProfile(profile)
	if userID == "" || profile == "" {
		return fmt.Errorf("%w: user_id and regional_profile are required", ErrInvalidFeedback)
	}

	pref := &models.UserPreference{UserID: userID, RegionalProfile: profile}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"regional_profile", "updated_at"}),
	}).Create(pref).Error
	if err != nil {
		return fmt.Errorf("failed to save regional profile: %w", err)
	}

	s.invalidate(ctx, userID)
	return nil
}

// ListFeedback returns the user's feedback, newest first
func (s *PreferenceService) ListFeedback(ctx context.Context, userID string) ([]models.RecipeFeedback, error) {
	var feedback []models.RecipeFeedback
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Order("recipe_id").
		Find(&feedback).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	return feedback, nil
}

// FeedbackStats counts the user's likes and dislikes
func (s *PreferenceService) FeedbackStats(ctx context.Context, userID string) (types.FeedbackStats, error) {
	state, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return types.FeedbackStats{}, err
	}

	stats := types.FeedbackStats{
		UserID:          userID,
		TotalLiked:      len(state.LikedRecipeIDs),
		TotalDisliked:   len(state.DislikedRecipeIDs),
		RegionalProfile: state.RegionalProfile,
	}
	stats.TotalFeedback = stats.TotalLiked + stats.TotalDisliked
	if stats.TotalFeedback > 0 {
		minority := min(stats.TotalLiked, stats.TotalDisliked)
		stats.Diversity = math.Round(float64(minority)/float64(stats.TotalFeedback)*100) / 100
	}
	return stats, nil
}

// DeleteFeedback removes the user's feedback for one recipe
func (s *PreferenceService) DeleteFeedback(ctx context.Context, userID, recipeID string) error {
	recipeID = strings.TrimSpace(recipeID)
	if userID == "" || recipeID == "" {
		return fmt.Errorf("%w: user_id and recipe_id are required", ErrInvalidFeedback)
	}

	res := s.db.WithContext(ctx).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(&models.RecipeFeedback{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete feedback: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrFeedbackNotFound, recipeID)
	}

	s.invalidate(ctx, userID)
	s.logger.Info("deleted recipe feedback", zap.String("user_id", userID), zap.String("recipe_id", recipeID))
	return nil
}

// DeleteAllFeedback removes every feedback row for the user and returns
// how many were deleted. The regional profile is kept.
func (s *PreferenceService) DeleteAllFeedback(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, fmt.Errorf("%w: user_id is required", ErrInvalidFeedback)
	}

	res := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.RecipeFeedback{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete feedback: %w", res.Error)
	}

	s.invalidate(ctx, userID)
	s.logger.Info("deleted all recipe feedback", zap.String("user_id", userID), zap.Int64("deleted", res.RowsAffected))
	return res.RowsAffected, nil
}

// ToResponse converts a preference state to its API view with sorted ids
func ToResponse(state types.UserPreferenceState) types.PreferenceResponse {
	return types.PreferenceResponse{
		LikedRecipeIDs:    sortedKeys(state.LikedRecipeIDs),
		DislikedRecipeIDs: sortedKeys(state.DislikedRecipeIDs),
		RegionalProfile:   state.RegionalProfile,
	}
}

// FromResponse is the inverse of ToResponse
func FromResponse(r types.PreferenceResponse) types.UserPreferenceState {
	state := types.NewUserPreferenceState()
	for _, id := range r.LikedRecipeIDs {
		state.LikedRecipeIDs[id] = struct{}{}
	}
	for _, id := range r.DislikedRecipeIDs {
		state.DislikedRecipeIDs[id] = struct{}{}
	}
	if r.RegionalProfile != "" {
		state.RegionalProfile = r.RegionalProfile
	}
	return state
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s *PreferenceService) readCache(ctx context.Context, userID string) (types.UserPreferenceState, bool) {
	if s.redis == nil {
		return types.UserPreferenceState{}, false
	}
	data, err := s.redis.Get(ctx, preferenceKey(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("preference cache read failed", zap.Error(err))
		}
		return types.UserPreferenceState{}, false
	}
	var resp types.PreferenceResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		s.logger.Warn("discarding malformed cached preferences", zap.String("user_id", userID))
		return types.UserPreferenceState{}, false
	}
	return FromResponse(resp), true
}

func (s *PreferenceService) writeCache(ctx context.Context, userID string, state types.UserPreferenceState) {
	if s.redis == nil {
		return
	}
	payload, err := json.Marshal(ToResponse(state))
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, preferenceKey(userID), payload, s.ttl).Err(); err != nil {
		s.logger.Warn("preference cache write failed", zap.Error(err))
	}
}

func (s *PreferenceService) invalidate(ctx context.Context, userID string) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, preferenceKey(userID)).Err(); err != nil {
		s.logger.Warn("preference cache invalidation failed", zap.Error(err))
	}
}
