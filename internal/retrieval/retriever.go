// Package retrieval finds and ranks recipe candidates for a single meal slot.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/embedding"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/health"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/metrics"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/scoring"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/types"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/vectorindex"
)

var (
	// ErrNoCandidates is returned when nothing survives the fallback ladder
	ErrNoCandidates = errors.New("no candidates for meal slot")
	// ErrRetrieval wraps embedding and index failures
	ErrRetrieval = errors.New("retrieval failed")
)

// Fallback steps, in the order they are tried
const (
	FallbackDropRecency   = "drop_recency"
	FallbackRelaxPrepTime = "relax_prep_time"
	FallbackUnfiltered    = "unfiltered"
)

const (
	maxRecentlyUsed = 100
	maxSkill        = 5
)

// Config holds the retrieval constants
type Config struct {
	TopK                    int
	MaxCandidatesForScoring int
	PrepTimeFlexibility     float64
	SearchTimeout           time.Duration
	RecencyPenalty          float64
	SkillPenaltyPerLevel    float64
	Preferences             scoring.PreferenceWeights
}

// DefaultConfig returns the standard retrieval constants
func DefaultConfig() Config {
	return Config{
		TopK:                    3,
		MaxCandidatesForScoring: 30,
		PrepTimeFlexibility:     1.5,
		SearchTimeout:           2 * time.Second,
		RecencyPenalty:          scoring.DefaultRecencyPenalty,
		SkillPenaltyPerLevel:    scoring.DefaultSkillPenaltyPerLevel,
		Preferences:             scoring.DefaultPreferenceWeights(),
	}
}

// Request describes one meal slot to fill
type Request struct {
	MealType         types.MealType
	TargetKcal       float64
	DietPref         types.DietaryPreference
	Allergens        []string
	HealthConditions []string
	UserSkill        int
	MaxPrepTime      *int
	RecentlyUsed     []string
	// Preferences enables the personalization pass when non-empty
	Preferences *types.UserPreferenceState
	TopK        int
	Strategy    string
	Debug       bool
}

// Result is the ranked candidate list for one slot
type Result struct {
	MealType   types.MealType
	Candidates []types.RecipeCandidate
	// Fallbacks lists the relaxation steps applied, in order
	Fallbacks []string
	// TimedOut is set when the embedding or search deadline was hit
	TimedOut bool
}

// Retriever runs the filter, fallback and scoring pipeline over an index
type Retriever struct {
	index    vectorindex.Index
	embedder embedding.Provider
	health   *health.Engine
	cfg      Config
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewRetriever creates a retriever
func NewRetriever(index vectorindex.Index, embedder embedding.Provider, rules *health.Engine, cfg Config, m *metrics.Metrics, logger *zap.Logger) *Retriever {
	if rules == nil {
		rules = health.NewEngine(logger)
	}
	return &Retriever{
		index:    index,
		embedder: embedder,
		health:   rules,
		cfg:      cfg,
		metrics:  m,
		logger:   logger,
	}
}

// QueryText builds the text embedded for a slot search
func QueryText(meal types.MealType, required scoring.TagSet) string {
	parts := append([]string{string(meal)}, required.Sorted()...)
	return strings.Join(parts, " ")
}

func (r *Retriever) strategy(name string) (scoring.Strategy, error) {
	s, err := scoring.ByName(name)
	if err != nil {
		return nil, err
	}
	if adv, ok := s.(*scoring.AdvancedStrategy); ok {
		adv.RecencyPenalty = r.cfg.RecencyPenalty
		adv.SkillPenaltyPerLevel = r.cfg.SkillPenaltyPerLevel
	}
	return s, nil
}

// normalize clamps out-of-range inputs to usable values
func (r *Retriever) normalize(req Request) Request {
	log := r.logger.With(zap.String("meal_type", string(req.MealType)))

	if req.UserSkill < 0 || req.UserSkill > maxSkill {
		log.Warn("cooking skill out of range, clamping", zap.Int("skill", req.UserSkill))
		req.UserSkill = max(0, min(maxSkill, req.UserSkill))
	}
	if req.MaxPrepTime != nil && *req.MaxPrepTime <= 0 {
		log.Warn("non-positive max prep time, ignoring", zap.Int("max_prep_time", *req.MaxPrepTime))
		req.MaxPrepTime = nil
	}
	if len(req.RecentlyUsed) > maxRecentlyUsed {
		log.Warn("recently used list too large, truncating", zap.Int("size", len(req.RecentlyUsed)))
		req.RecentlyUsed = req.RecentlyUsed[:maxRecentlyUsed]
	}
	if req.TopK <= 0 {
		if req.TopK < 0 {
			log.Warn("negative top_k, using default", zap.Int("top_k", req.TopK))
		}
		req.TopK = r.cfg.TopK
	}
	return req
}

// Retrieve returns the top candidates for one meal slot. A timeout yields an
// empty result with TimedOut set rather than an error.
func (r *Retriever) Retrieve(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	req = r.normalize(req)

	strategy, err := r.strategy(req.Strategy)
	if err != nil {
		return nil, err
	}
	defer func() {
		r.metrics.ObserveRetrieval(strategy.Name(), time.Since(start))
	}()

	personalize := req.Preferences != nil && !req.Preferences.IsEmpty()
	k := req.TopK
	if personalize {
		k = req.TopK * 2
	}

	res, err := r.retrieve(ctx, req, strategy, k)
	if err != nil || res.TimedOut {
		return res, err
	}

	if personalize {
		res.Candidates = r.personalize(res.Candidates, *req.Preferences, req.Debug)
		if len(res.Candidates) > req.TopK {
			res.Candidates = res.Candidates[:req.TopK]
		}
	}

	r.logger.Debug("retrieved candidates",
		zap.String("meal_type", string(req.MealType)),
		zap.String("strategy", strategy.Name()),
		zap.Int("candidates", len(res.Candidates)),
		zap.Strings("fallbacks", res.Fallbacks))
	return res, nil
}

func (r *Retriever) retrieve(ctx context.Context, req Request, strategy scoring.Strategy, topK int) (*Result, error) {
	res := &Result{MealType: req.MealType, Candidates: []types.RecipeCandidate{}}
	required := scoring.RequiredTags(req.DietPref)

	hits, err := r.search(ctx, req, strategy.Name(), required, topK)
	if err != nil {
		if isTimeout(err) {
			r.logger.Warn("retrieval timed out, returning no candidates",
				zap.String("meal_type", string(req.MealType)), zap.Error(err))
			res.TimedOut = true
			return res, nil
		}
		return nil, err
	}

	initial := excludeAllergens(hits, req.Allergens)
	recent := req.RecentlyUsed
	maxPrep := req.MaxPrepTime
	rules := r.health.ApplicableRules(req.HealthConditions)

	filtered := r.applyConstraints(initial, rules, maxPrep)
	if len(filtered) == 0 {
		log := r.logger.With(zap.String("meal_type", string(req.MealType)))
		log.Warn("no candidates after filtering, applying fallbacks")

		if len(recent) > 0 {
			recent = nil
			res.Fallbacks = append(res.Fallbacks, FallbackDropRecency)
			r.metrics.IncFallback(FallbackDropRecency)
			log.Warn("fallback: dropping recency constraint")
			filtered = r.applyConstraints(initial, rules, maxPrep)
		}

		if len(filtered) == 0 && maxPrep != nil {
			relaxed := int(float64(*maxPrep) * 1.5)
			maxPrep = &relaxed
			res.Fallbacks = append(res.Fallbacks, FallbackRelaxPrepTime)
			r.metrics.IncFallback(FallbackRelaxPrepTime)
			log.Warn("fallback: relaxing max prep time", zap.Int("max_prep_time", relaxed))
			filtered = r.applyConstraints(initial, rules, maxPrep)
		}

		if len(filtered) == 0 {
			res.Fallbacks = append(res.Fallbacks, FallbackUnfiltered)
			r.metrics.IncFallback(FallbackUnfiltered)
			log.Warn("fallback: using initial candidates without soft constraints")
			filtered = initial
		}
	}

	if len(filtered) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoCandidates, req.MealType)
	}

	recentSet := scoring.NewTagSet(recent...)
	candidates := make([]types.RecipeCandidate, 0, len(filtered))
	for _, h := range filtered {
		scored := strategy.Score(scoring.Input{
			Record:       h.Record,
			Cosine:       h.Similarity,
			TargetKcal:   req.TargetKcal,
			RequiredTags: required,
			UserSkill:    req.UserSkill,
			MaxPrepTime:  maxPrep,
			RecentlyUsed: recentSet.Has(h.ID),
		})

		c := types.RecipeCandidate{
			RecipeRecord: h.Record,
			Score:        scored.Score,
			Rank:         h.rank,
			Rationale:    scored.Rationale,
		}
		if req.Debug {
			b := scored.Breakdown
			c.Breakdown = &b
		}
		candidates = append(candidates, c)
	}

	sortCandidates(candidates)
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	res.Candidates = candidates
	return res, nil
}

// rankedHit is an index hit with its 1-based retrieval rank
type rankedHit struct {
	vectorindex.Hit
	rank int
}

func (r *Retriever) search(ctx context.Context, req Request, strategyName string, required scoring.TagSet, topK int) ([]rankedHit, error) {
	if r.cfg.SearchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.SearchTimeout)
		defer cancel()
	}

	vec, err := r.embedder.Embed(ctx, QueryText(req.MealType, required))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to embed query: %w", ErrRetrieval, err)
	}

	filter := &vectorindex.Filter{ExcludeAllergens: req.Allergens}
	n := min(topK*3, r.cfg.MaxCandidatesForScoring)
	if strategyName == scoring.StrategySimple {
		n = topK * 5
		filter.AnyDietaryTags = required.Sorted()
	}

	hits, err := r.index.Search(ctx, vec, n, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to search index: %w", ErrRetrieval, err)
	}

	out := make([]rankedHit, 0, len(hits))
	for i, h := range hits {
		out = append(out, rankedHit{Hit: h, rank: i + 1})
	}
	return out, nil
}

// applyConstraints runs the soft filters: health avoid tags and prep time
func (r *Retriever) applyConstraints(hits []rankedHit, rules []health.Rule, maxPrep *int) []rankedHit {
	out := make([]rankedHit, 0, len(hits))
	for _, h := range hits {
		if !health.Allows(h.Record, rules) {
			continue
		}
		if maxPrep != nil && float64(h.Record.PrepTimeMin) > float64(*maxPrep)*r.cfg.PrepTimeFlexibility {
			continue
		}
		out = append(out, h)
	}
	return out
}

func (r *Retriever) personalize(candidates []types.RecipeCandidate, prefs types.UserPreferenceState, debug bool) []types.RecipeCandidate {
	for i := range candidates {
		c := &candidates[i]
		adj := scoring.AdjustForPreferences(c.Score, c.RecipeRecord, prefs, r.cfg.Preferences)
		c.Rationale = scoring.AnnotateRationale(c.Rationale, adj, prefs.RegionalProfile)
		if debug && c.Breakdown != nil {
			c.Breakdown.OriginalScore = round3(c.Score)
			c.Breakdown.PreferenceBoost = round3(adj.PreferenceBoost)
			c.Breakdown.RegionalBoost = round3(adj.RegionalBoost)
			c.Breakdown.TotalScore = round3(adj.Score)
		}
		c.Score = adj.Score
	}
	sortCandidates(candidates)
	return candidates
}

// excludeAllergens is the hard allergen filter. It never relaxes.
func excludeAllergens(hits []rankedHit, allergens []string) []rankedHit {
	if len(allergens) == 0 {
		return hits
	}
	exclude := make(map[string]struct{}, len(allergens))
	for _, a := range allergens {
		exclude[strings.ToLower(strings.TrimSpace(a))] = struct{}{}
	}

	out := make([]rankedHit, 0, len(hits))
	for _, h := range hits {
		ok := true
		for _, tag := range h.Record.AllergenTags {
			if _, hit := exclude[strings.ToLower(strings.TrimSpace(tag))]; hit {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, h)
		}
	}
	return out
}

// sortCandidates orders by score, breaking ties by retrieval rank
func sortCandidates(c []types.RecipeCandidate) {
	sort.SliceStable(c, func(i, j int) bool {
		if c[i].Score != c[j].Score {
			return c[i].Score > c[j].Score
		}
		return c[i].Rank < c[j].Rank
	})
}

func isTimeout(err error) bool {
	return errors.Is(err, embedding.ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
