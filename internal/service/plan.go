package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/metrics"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/nutrition"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/planner"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/retrieval"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/scoring"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/types"
	planvalidator "github.com/pageza/alchemorsel-v2/mealplanner/internal/validator"
)

// ErrInvalidRequest is returned when a planning request fails validation
var ErrInvalidRequest = errors.New("invalid plan request")

const startDateLayout = "2006-01-02"

// PlanRequest is the input to a daily planning run
type PlanRequest struct {
	Profile          types.UserProfile
	ActivityOverride *types.ActivityLevel
	RecentlyUsed     []string
	// Preferences overrides the stored preference state when set
	Preferences *types.UserPreferenceState
	Seed        *int64
	Strategy    string
	Debug       bool
}

// PlanResponse is a daily plan with the inputs that produced it
type PlanResponse struct {
	Plan       *types.DailyMealPlan                       `json:"plan"`
	Targets    types.NutritionTargets                     `json:"nutrition_targets"`
	Validation planvalidator.Report                       `json:"validation"`
	Fallbacks  map[types.MealType][]string                `json:"fallbacks,omitempty"`
	Candidates map[types.MealType][]types.RecipeCandidate `json:"candidates,omitempty"`
}

// PlanConfig holds the plan service settings
type PlanConfig struct {
	Strategy           string
	TopPickProbability float64
}

// PlanService computes targets, retrieves candidates per slot, assembles
// and validates the plan.
type PlanService struct {
	calc      *nutrition.Calculator
	retriever planner.SlotRetriever
	validator *planvalidator.Validator
	weekly    *planner.WeeklyPlanner
	prefs     PreferenceSource
	cfg       PlanConfig
	validate  *validator.Validate
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// Ensure PlanService implements IPlanService
var _ IPlanService = (*PlanService)(nil)

// NewPlanService creates a PlanService. prefs may be nil, in which case
// plans are only personalized from the request.
func NewPlanService(
	calc *nutrition.Calculator,
	retriever planner.SlotRetriever,
	v *planvalidator.Validator,
	prefs PreferenceSource,
	cfg PlanConfig,
	m *metrics.Metrics,
	logger *zap.Logger,
) *PlanService {
	if cfg.TopPickProbability <= 0 {
		cfg.TopPickProbability = planner.DefaultTopPickProbability
	}
	return &PlanService{
		calc:      calc,
		retriever: retriever,
		validator: v,
		weekly:    planner.NewWeeklyPlanner(calc, retriever, cfg.TopPickProbability, logger),
		prefs:     prefs,
		cfg:       cfg,
		validate:  validator.New(),
		metrics:   m,
		logger:    logger,
	}
}

// GenerateDailyPlan builds one day's plan. Slots without candidates are
// reported as coverage gaps rather than failing the request; validation
// findings are returned in the response and never fail it.
func (s *PlanService) GenerateDailyPlan(ctx context.Context, req PlanRequest) (*PlanResponse, error) {
	profile := req.Profile
	if req.ActivityOverride != nil {
		profile = profile.WithActivity(*req.ActivityOverride)
	}

	profile, strategy, err := s.checkRequest(profile, req.Strategy)
	if err != nil {
		s.metrics.IncPlan("daily", "invalid")
		return nil, err
	}

	log := s.logger.With(zap.String("user_id", profile.UserID))

	targets := s.calc.Calculate(profile)
	if targets.Infeasible {
		log.Warn("macro targets infeasible, carbs clamped to zero",
			zap.Float64("raw_carbs_g", targets.RawCarbsG))
	}

	base := retrieval.Request{
		DietPref:         profile.DietPref,
		Allergens:        profile.Allergies,
		HealthConditions: profile.HealthConditions,
		UserSkill:        profile.CookingSkill,
		MaxPrepTime:      profile.MaxPrepTimeMin,
		RecentlyUsed:     req.RecentlyUsed,
		Preferences:      s.preferences(ctx, profile.UserID, req.Preferences),
		Strategy:         strategy,
		Debug:            req.Debug,
	}
	results, err := planner.RetrieveSlots(ctx, s.retriever, base, targets.MealSplits)
	if err != nil {
		s.metrics.IncPlan("daily", "error")
		log.Error("failed to retrieve candidates", zap.Error(err))
		return nil, fmt.Errorf("failed to retrieve candidates: %w", err)
	}

	candidates := results.Candidates()
	for _, meal := range types.MealOrder {
		res := results[meal]
		if res == nil {
			continue
		}
		if res.TimedOut {
			log.Warn("retrieval timed out for slot", zap.String("meal_type", string(meal)))
		}
		if len(res.Candidates) == 0 {
			s.metrics.IncCoverageGap(string(meal))
		}
	}

	opts := []planner.AssemblerOption{planner.WithTopPickProbability(s.cfg.TopPickProbability)}
	if req.Seed != nil {
		opts = append(opts, planner.WithSeed(*req.Seed))
	}
	plan := planner.NewAssembler(s.logger, opts...).Assemble(profile.UserID, candidates, targets.MealSplits)

	report := s.validator.Validate(plan, targets, candidates)

	status := "ok"
	switch {
	case len(plan.CoverageGaps) > 0:
		status = "partial"
	case !report.Valid():
		status = "invalid"
	}
	s.metrics.IncPlan("daily", status)

	resp := &PlanResponse{Plan: plan, Targets: targets, Validation: report}
	if req.Debug {
		resp.Candidates = candidates
		resp.Fallbacks = make(map[types.MealType][]string)
		for meal, res := range results {
			if res != nil && len(res.Fallbacks) > 0 {
				resp.Fallbacks[meal] = res.Fallbacks
			}
		}
	}

	log.Info("generated daily plan",
		zap.String("plan_id", plan.PlanID),
		zap.Int("meals", len(plan.Meals)),
		zap.Int("coverage_gaps", len(plan.CoverageGaps)),
		zap.Bool("valid", report.Valid()))
	return resp, nil
}

// GenerateWeeklyPlan plans seven days starting at req.StartDate, or today
func (s *PlanService) GenerateWeeklyPlan(ctx context.Context, req types.WeeklyPlanRequest) (*planner.WeeklyPlan, error) {
	profile, strategy, err := s.checkRequest(req.Profile, "")
	if err != nil {
		s.metrics.IncPlan("weekly", "invalid")
		return nil, err
	}

	in := planner.WeeklyInput{
		Profile:          profile,
		MaxRecipeRepeats: req.MaxRecipeRepeats,
		Seed:             req.Seed,
		Strategy:         strategy,
	}

	if req.StartDate != "" {
		start, err := time.Parse(startDateLayout, req.StartDate)
		if err != nil {
			s.metrics.IncPlan("weekly", "invalid")
			return nil, fmt.Errorf("%w: start_date must be YYYY-MM-DD", ErrInvalidRequest)
		}
		in.StartDate = start
	}

	if len(req.ActivityPattern) > 0 {
		in.ActivityPattern = planner.DefaultActivityPattern()
		for day, level := range req.ActivityPattern {
			day = strings.ToLower(strings.TrimSpace(day))
			if _, ok := in.ActivityPattern[day]; !ok {
				s.metrics.IncPlan("weekly", "invalid")
				return nil, fmt.Errorf("%w: unknown day %q", ErrInvalidRequest, day)
			}
			activity := nutrition.DayActivity(strings.ToLower(strings.TrimSpace(level)))
			if _, ok := nutrition.ActivityLevelFor(activity); !ok {
				s.metrics.IncPlan("weekly", "invalid")
				return nil, fmt.Errorf("%w: unknown activity %q for %s", ErrInvalidRequest, level, day)
			}
			in.ActivityPattern[day] = activity
		}
	}

	in.Preferences = s.preferences(ctx, profile.UserID, nil)

	plan, err := s.weekly.Generate(ctx, in)
	if err != nil {
		s.metrics.IncPlan("weekly", "error")
		return nil, fmt.Errorf("failed to generate weekly plan: %w", err)
	}
	s.metrics.IncPlan("weekly", "ok")
	return plan, nil
}

// checkRequest clamps the profile and resolves the scoring strategy.
// Only input that survives clamping and still fails validation, or an
// unknown strategy, is rejected.
func (s *PlanService) checkRequest(profile types.UserProfile, requested string) (types.UserProfile, string, error) {
	profile = normalizeProfile(profile, s.logger.With(zap.String("user_id", profile.UserID)))
	if err := s.validate.Struct(profile); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			return profile, "", fmt.Errorf("%w: invalid profile fields: %s", ErrInvalidRequest, strings.Join(fields, ", "))
		}
		return profile, "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	strategy := requested
	if strategy == "" {
		strategy = s.cfg.Strategy
	}
	if _, err := scoring.ByName(strategy); err != nil {
		return profile, "", fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return profile, strategy, nil
}

// preferences returns the explicit state, else the stored one. Lookup
// failures degrade to an unpersonalized plan.
func (s *PlanService) preferences(ctx context.Context, userID string, explicit *types.UserPreferenceState) *types.UserPreferenceState {
	if explicit != nil {
		return explicit
	}
	if s.prefs == nil || userID == "" {
		return nil
	}
	state, err := s.prefs.GetPreferences(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to load preferences, planning without personalization",
			zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	return &state
}
