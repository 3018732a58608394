package planner

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/retrieval"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/types"
)

// SlotRetriever finds candidates for one meal slot
type SlotRetriever interface {
	Retrieve(ctx context.Context, req retrieval.Request) (*retrieval.Result, error)
}

// DayResults holds the retrieval outcome of every slot in a day. A slot
// that ran out of candidates has an empty Result.
type DayResults map[types.MealType]*retrieval.Result

// Candidates returns the ranked candidate lists keyed by slot
func (d DayResults) Candidates() map[types.MealType][]types.RecipeCandidate {
	out := make(map[types.MealType][]types.RecipeCandidate, len(d))
	for meal, res := range d {
		if res != nil {
			out[meal] = res.Candidates
		}
	}
	return out
}

// RetrieveSlots runs one retrieval per slot concurrently. base supplies the
// user constraints; MealType and TargetKcal are set from splits.
// Exhausted slots are not errors; any other failure cancels the rest.
func RetrieveSlots(ctx context.Context, r SlotRetriever, base retrieval.Request, splits map[types.MealType]float64) (DayResults, error) {
	meals := make([]types.MealType, 0, len(types.MealOrder))
	for _, meal := range types.MealOrder {
		if _, ok := splits[meal]; ok {
			meals = append(meals, meal)
		}
	}

	results := make([]*retrieval.Result, len(meals))
	g, ctx := errgroup.WithContext(ctx)
	for i, meal := range meals {
		req := base
		req.MealType = meal
		req.TargetKcal = splits[meal]

		g.Go(func() error {
			res, err := r.Retrieve(ctx, req)
			if errors.Is(err, retrieval.ErrNoCandidates) {
				results[i] = &retrieval.Result{MealType: meal, Candidates: []types.RecipeCandidate{}}
				return nil
			}
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(DayResults, len(meals))
	for i, meal := range meals {
		out[meal] = results[i]
	}
	return out, nil
}
