package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/models"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/nutrition"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/types"
)

var (
	// ErrInvalidProgress is returned for a progress log that cannot be stored
	ErrInvalidProgress = errors.New("invalid progress log")
	// ErrInsufficientProgress is returned when there is too little history to analyze
	ErrInsufficientProgress = nutrition.ErrInsufficientProgress
)

const (
	// DefaultHistoryDays is the window returned by History
	DefaultHistoryDays = 90
	// DefaultAnalysisDays is the window used by Analyze
	DefaultAnalysisDays = 30
)

// ProgressService records daily weigh-ins and adherence and analyzes them
// against the user's goal
type ProgressService struct {
	db     *gorm.DB
	calc   *nutrition.Calculator
	now    func() time.Time
	logger *zap.Logger
}

// Ensure ProgressService implements IProgressService
var _ IProgressService = (*ProgressService)(nil)

// NewProgressService creates a ProgressService
func NewProgressService(db *gorm.DB, calc *nutrition.Calculator, logger *zap.Logger) *ProgressService {
	return &ProgressService{db: db, calc: calc, now: time.Now, logger: logger}
}

// LogProgress stores the day's entry. A second entry for the same date
// replaces the first.
func (s *ProgressService) LogProgress(ctx context.Context, userID string, req types.ProgressLogRequest) (*models.ProgressLog, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user_id is required", ErrInvalidProgress)
	}
	date, err := time.Parse(startDateLayout, strings.TrimSpace(req.Date))
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidProgress)
	}
	if req.WeightKg <= 0 || req.AdherenceScore < 0 || req.AdherenceScore > 1 {
		return nil, fmt.Errorf("%w: weight_kg must be positive and adherence_score within [0,1]", ErrInvalidProgress)
	}

	entry := &models.ProgressLog{
		UserID:         userID,
		LogDate:        date.Format(startDateLayout),
		WeightKg:       req.WeightKg,
		AdherenceScore: req.AdherenceScore,
		Notes:          strings.TrimSpace(req.Notes),
		EnergyLevel:    req.EnergyLevel,
		HungerLevel:    req.HungerLevel,
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "log_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"weight_kg", "adherence_score", "notes", "energy_level", "hunger_level", "updated_at",
		}),
	}).Create(entry).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save progress log: %w", err)
	}

	var saved models.ProgressLog
	if err := s.db.WithContext(ctx).First(&saved, "user_id = ? AND log_date = ?", userID, entry.LogDate).Error; err != nil {
		return nil, fmt.Errorf("failed to reload progress log: %w", err)
	}

	s.logger.Info("recorded progress",
		zap.String("user_id", userID),
		zap.String("date", saved.LogDate),
		zap.Float64("weight_kg", saved.WeightKg))
	return &saved, nil
}

// History returns the user's logs from the last days days, oldest first.
// A non-positive days uses DefaultHistoryDays.
func (s *ProgressService) History(ctx context.Context, userID string, days int) ([]models.ProgressLog, error) {
	if days <= 0 {
		days = DefaultHistoryDays
	}
	cutoff := s.now().AddDate(0, 0, -days).Format(startDateLayout)

	var logs []models.ProgressLog
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND log_date >= ?", userID, cutoff).
		Order("log_date ASC").
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load progress history: %w", err)
	}
	return logs, nil
}

// Analyze compares the recent weight trend with the profile's goal rate.
// The profile is clamped the same way plan requests are.
func (s *ProgressService) Analyze(ctx context.Context, userID string, profile types.UserProfile, days int) (*types.ProgressAnalysis, error) {
	if days <= 0 {
		days = DefaultAnalysisDays
	}
	profile.UserID = userID
	profile = normalizeProfile(profile, s.logger.With(zap.String("user_id", userID)))

	logs, err := s.History(ctx, userID, days)
	if err != nil {
		return nil, err
	}

	points := make([]nutrition.ProgressPoint, 0, len(logs))
	for _, l := range logs {
		date, err := time.Parse(startDateLayout, l.LogDate)
		if err != nil {
			s.logger.Warn("skipping progress log with malformed date",
				zap.String("user_id", userID), zap.String("date", l.LogDate))
			continue
		}
		points = append(points, nutrition.ProgressPoint{Date: date, WeightKg: l.WeightKg, Adherence: l.AdherenceScore})
	}

	analysis, err := s.calc.AnalyzeProgress(profile, points)
	if err != nil {
		s.logger.Info("not enough progress data to analyze",
			zap.String("user_id", userID), zap.Int("logs", len(points)))
		return nil, err
	}

	s.logger.Info("analyzed progress",
		zap.String("user_id", userID),
		zap.String("status", analysis.Status),
		zap.Float64("average_adherence", analysis.AverageAdherence),
		zap.Bool("adjustment_needed", analysis.AdjustmentNeeded))
	return &analysis, nil
}
