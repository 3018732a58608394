package nutrition

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/types"
)

// ErrInsufficientProgress is returned when fewer than two logs exist
var ErrInsufficientProgress = errors.New("at least two progress logs are required")

// Progress statuses
const (
	ProgressOnTrack = "on_track"
	ProgressTooSlow = "too_slow"
	ProgressTooFast = "too_fast"
	ProgressGaining = "gaining"
	ProgressLosing  = "losing"
)

// Adherence trends
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

const (
	progressTolerance  = 0.3
	maintenanceBand    = 0.2
	lowAdherence       = 0.6
	trendWindow        = 7
	trendDelta         = 0.1
	maxDailyAdjustment = 300.0
	adjustmentStep     = 50.0
	minKcalFemale      = 1200.0
	minKcalOther       = 1500.0
	maxKcal            = 4000.0
)

// ProgressPoint is one logged day
type ProgressPoint struct {
	Date      time.Time
	WeightKg  float64
	Adherence float64
}

// AnalyzeProgress compares the weight trend in points with the profile's
// goal rate. points may be in any order.
func (c *Calculator) AnalyzeProgress(p types.UserProfile, points []ProgressPoint) (types.ProgressAnalysis, error) {
	if len(points) < 2 {
		return types.ProgressAnalysis{}, ErrInsufficientProgress
	}
	sorted := append([]ProgressPoint(nil), points...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	first, last := sorted[0], sorted[len(sorted)-1]
	days := int(last.Date.Sub(first.Date).Hours() / 24)
	if days < 1 {
		days = 1
	}
	change := last.WeightKg - first.WeightKg
	rate := change / (float64(days) / 7)

	adherence := make([]float64, len(sorted))
	for i, pt := range sorted {
		adherence[i] = pt.Adherence
	}
	avg := mean(adherence)

	status, recommendation := EvaluateProgress(rate, p.GoalRateKgPerWeek, avg)
	current := c.Calculate(p).TargetKcal

	out := types.ProgressAnalysis{
		UserID:              p.UserID,
		PeriodDays:          days,
		Logs:                len(sorted),
		StartingWeightKg:    first.WeightKg,
		CurrentWeightKg:     last.WeightKg,
		WeightChangeKg:      round2(change),
		ActualRateKgPerWeek: round2(rate),
		GoalRateKgPerWeek:   p.GoalRateKgPerWeek,
		AverageAdherence:    round2(avg),
		AdherenceTrend:      AdherenceTrend(adherence),
		Status:              status,
		Recommendation:      recommendation,
		CurrentTargetKcal:   math.Round(current),
	}
	if delta, target, ok := CalorieAdjustment(p.Sex, current, rate, p.GoalRateKgPerWeek, avg, status); ok {
		out.AdjustmentNeeded = true
		out.SuggestedKcalChange = &delta
		out.NewTargetKcal = &target
	}
	return out, nil
}

// EvaluateProgress classifies a weekly weight change rate against the goal
// rate. Goals are signed: negative for loss, zero for maintenance.
func EvaluateProgress(actual, goal, adherence float64) (string, string) {
	slow := "Progress is slower than expected. Consider adjusting calories."
	if adherence < lowAdherence {
		slow = "Progress is slow. Focus on sticking to your meal plan."
	}

	switch {
	case goal == 0:
		switch {
		case math.Abs(actual) < maintenanceBand:
			return ProgressOnTrack, "Weight is stable. Keep going."
		case actual > 0:
			return ProgressGaining, "Weight is trending up. Consider reducing calories slightly."
		default:
			return ProgressLosing, "Weight is trending down. Consider increasing calories slightly."
		}
	case goal < 0:
		tol := -goal * progressTolerance
		switch {
		case actual > goal+tol:
			return ProgressTooSlow, slow
		case actual < goal-tol:
			return ProgressTooFast, "Weight is dropping faster than recommended. Consider eating a little more."
		}
		return ProgressOnTrack, "On track for your weight loss goal."
	default:
		tol := goal * progressTolerance
		switch {
		case actual < goal-tol:
			return ProgressTooSlow, slow
		case actual > goal+tol:
			return ProgressTooFast, "Weight is rising faster than recommended. Consider eating a little less."
		}
		return ProgressOnTrack, "On track for your weight gain goal."
	}
}

// AdherenceTrend compares the mean of the last week of scores with the
// first week. Fewer than a week of scores is always stable.
func AdherenceTrend(scores []float64) string {
	if len(scores) < trendWindow {
		return TrendStable
	}
	early := mean(scores[:trendWindow])
	recent := mean(scores[len(scores)-trendWindow:])
	switch {
	case recent > early+trendDelta:
		return TrendImproving
	case recent < early-trendDelta:
		return TrendDeclining
	}
	return TrendStable
}

// CalorieAdjustment suggests a daily calorie change that closes the gap
// between the actual and goal rates. It returns false when adherence is
// too low to trust the data, when progress is on track, or when the change
// rounds below one step.
func CalorieAdjustment(sex types.Sex, currentKcal, actual, goal, adherence float64, status string) (int, float64, bool) {
	if adherence < lowAdherence || status == ProgressOnTrack {
		return 0, 0, false
	}

	daily := -(actual - goal) * kcalPerKgFat / 7
	daily = math.Max(-maxDailyAdjustment, math.Min(maxDailyAdjustment, daily))
	change := math.Round(daily/adjustmentStep) * adjustmentStep
	target := currentKcal + change

	floor := minKcalOther
	if sex == types.SexFemale {
		floor = minKcalFemale
	}
	switch {
	case target < floor:
		target = floor
		change = target - currentKcal
	case target > maxKcal:
		target = maxKcal
		change = target - currentKcal
	}

	if math.Abs(change) < adjustmentStep {
		return 0, 0, false
	}
	return int(math.Round(change)), math.Round(target), true
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	var sum float64
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
