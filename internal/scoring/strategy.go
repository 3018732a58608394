package scoring

import (
	"fmt"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/types"
)

const (
	// StrategySimple is the three-term base retrieval ranking
	StrategySimple = "simple"
	// StrategyAdvanced is the five-term ranking with recency penalty
	StrategyAdvanced = "advanced"
)

// DefaultRecencyPenalty is subtracted from recently used recipes
const DefaultRecencyPenalty = 0.3

// Input is everything a strategy needs to score one recipe
type Input struct {
	Record       types.RecipeRecord
	Cosine       float64
	TargetKcal   float64
	RequiredTags TagSet
	UserSkill    int
	MaxPrepTime  *int
	RecentlyUsed bool
}

// Result is a scored recipe
type Result struct {
	Score     float64
	Breakdown types.ScoreBreakdown
	Rationale string
}

// Strategy combines component scores into one ranking score
type Strategy interface {
	Name() string
	Score(in Input) Result
}

// SimpleWeights are the base retrieval weights
type SimpleWeights struct {
	Semantic float64
	Calorie  float64
	Tag      float64
}

// SimpleStrategy is a weighted sum of semantic, calorie and tag scores
type SimpleStrategy struct {
	Weights SimpleWeights
}

// NewSimpleStrategy returns the 0.6 / 0.3 / 0.1 strategy
func NewSimpleStrategy() *SimpleStrategy {
	return &SimpleStrategy{Weights: SimpleWeights{Semantic: 0.6, Calorie: 0.3, Tag: 0.1}}
}

// Name implements Strategy
func (s *SimpleStrategy) Name() string { return StrategySimple }

// Score implements Strategy
func (s *SimpleStrategy) Score(in Input) Result {
	semantic := SemanticScore(in.Cosine)
	calorie := CalorieProximity(in.Record.KcalTotal, in.TargetKcal)
	tag := TagMatch(in.Record.DietaryTags, in.RequiredTags)

	total := s.Weights.Semantic*semantic + s.Weights.Calorie*calorie + s.Weights.Tag*tag

	return Result{
		Score: total,
		Breakdown: types.ScoreBreakdown{
			Strategy:           StrategySimple,
			SemanticSimilarity: round3(semantic),
			CalorieProximity:   round3(calorie),
			DietaryMatch:       round3(tag),
			Weights: map[string]float64{
				"semantic": s.Weights.Semantic,
				"calorie":  s.Weights.Calorie,
				"dietary":  s.Weights.Tag,
			},
			OriginalScore: round3(total),
			TotalScore:    round3(total),
		},
		Rationale: Rationale(RationaleInput{
			Semantic:     semantic,
			Calorie:      calorie,
			Dietary:      tag,
			RecipeKcal:   in.Record.KcalTotal,
			TargetKcal:   in.TargetKcal,
			RecipeTags:   in.Record.DietaryTags,
			RequiredTags: in.RequiredTags,
		}),
	}
}

// AdvancedWeights are the personalized path weights
type AdvancedWeights struct {
	Semantic float64
	Calorie  float64
	Dietary  float64
	Skill    float64
	PrepTime float64
}

// AdvancedStrategy adds skill and prep-time suitability and a flat recency
// penalty to the simple terms.
type AdvancedStrategy struct {
	Weights              AdvancedWeights
	RecencyPenalty       float64
	SkillPenaltyPerLevel float64
}

// NewAdvancedStrategy returns the 0.40 / 0.25 / 0.15 / 0.10 / 0.10 strategy
func NewAdvancedStrategy() *AdvancedStrategy {
	return &AdvancedStrategy{
		Weights: AdvancedWeights{
			Semantic: 0.40,
			Calorie:  0.25,
			Dietary:  0.15,
			Skill:    0.10,
			PrepTime: 0.10,
		},
		RecencyPenalty:       DefaultRecencyPenalty,
		SkillPenaltyPerLevel: DefaultSkillPenaltyPerLevel,
	}
}

// Name implements Strategy
func (s *AdvancedStrategy) Name() string { return StrategyAdvanced }

// Score implements Strategy
func (s *AdvancedStrategy) Score(in Input) Result {
	semantic := SemanticScore(in.Cosine)
	calorie := CalorieProximity(in.Record.KcalTotal, in.TargetKcal)
	dietary := TagMatch(in.Record.DietaryTags, in.RequiredTags)
	skill := SkillMatch(in.Record.CookingSkill, in.UserSkill, s.SkillPenaltyPerLevel)
	prep := PrepTimeScore(in.Record.PrepTimeMin, in.MaxPrepTime)

	penalty := 0.0
	if in.RecentlyUsed {
		penalty = s.RecencyPenalty
	}

	total := s.Weights.Semantic*semantic +
		s.Weights.Calorie*calorie +
		s.Weights.Dietary*dietary +
		s.Weights.Skill*skill +
		s.Weights.PrepTime*prep
	total -= penalty
	if total < 0 {
		total = 0
	}

	return Result{
		Score: total,
		Breakdown: types.ScoreBreakdown{
			Strategy:           StrategyAdvanced,
			SemanticSimilarity: round3(semantic),
			CalorieProximity:   round3(calorie),
			DietaryMatch:       round3(dietary),
			SkillMatch:         round3(skill),
			PrepTime:           round3(prep),
			RecencyPenalty:     round3(penalty),
			Weights: map[string]float64{
				"semantic":  s.Weights.Semantic,
				"calorie":   s.Weights.Calorie,
				"dietary":   s.Weights.Dietary,
				"skill":     s.Weights.Skill,
				"prep_time": s.Weights.PrepTime,
			},
			OriginalScore: round3(total),
			TotalScore:    round3(total),
		},
		Rationale: Rationale(RationaleInput{
			Semantic:     semantic,
			Calorie:      calorie,
			Dietary:      dietary,
			Skill:        &skill,
			PrepTimeMin:  &in.Record.PrepTimeMin,
			RecipeKcal:   in.Record.KcalTotal,
			TargetKcal:   in.TargetKcal,
			RecipeTags:   in.Record.DietaryTags,
			RequiredTags: in.RequiredTags,
			RecentlyUsed: penalty > 0,
		}),
	}
}

// ByName returns the strategy registered under name
func ByName(name string) (Strategy, error) {
	switch name {
	case StrategySimple:
		return NewSimpleStrategy(), nil
	case StrategyAdvanced, "":
		return NewAdvancedStrategy(), nil
	default:
		return nil, fmt.Errorf("unknown scoring strategy %q", name)
	}
}
