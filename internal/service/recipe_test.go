package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/types"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/vectorindex"
)

type failingIndex struct{ vectorindex.Index }

func (failingIndex) Get(ctx context.Context, id string) (types.RecipeRecord, bool, error) {
	return types.RecipeRecord{}, false, errors.New("connection reset")
}

func TestGetRecipe(t *testing.T) {
	ctx := context.Background()
	idx := vectorindex.NewFlatIndex(2, nil, zap.NewNop())
	require.NoError(t, idx.Add(ctx, "dal-001", []float32{1, 0}, types.RecipeRecord{
		Title:       "Red Lentil Dal",
		DietaryTags: []string{"indian", "vegan"},
	}))
	svc := NewRecipeService(idx, zap.NewNop())

	rec, err := svc.GetRecipe(ctx, " dal-001 ")
	require.NoError(t, err)
	assert.Equal(t, "dal-001", rec.RecipeID)
	assert.Equal(t, "Red Lentil Dal", rec.Title)

	_, err = svc.GetRecipe(ctx, "missing")
	assert.ErrorIs(t, err, ErrRecipeNotFound)

	_, err = svc.GetRecipe(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestGetRecipeWrapsIndexErrors(t *testing.T) {
	svc := NewRecipeService(failingIndex{}, zap.NewNop())

	_, err := svc.GetRecipe(context.Background(), "r1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRecipeNotFound)
	assert.Contains(t, err.Error(), "connection reset")
}
