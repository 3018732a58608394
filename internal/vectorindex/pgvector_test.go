package vectorindex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/testhelpers"
)

func TestPgvectorIndex(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	idx := NewPgvectorIndex(db, 2, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, idx.Add(ctx, "a", []float32{1, 0}, rec("a", []string{"vegan"}, nil)))
	require.NoError(t, idx.Add(ctx, "b", []float32{0.8, 0.6}, rec("b", []string{"vegetarian"}, []string{"dairy"})))
	require.NoError(t, idx.Add(ctx, "c", []float32{0, 1}, rec("c", nil, []string{"nuts"})))

	hits, err := idx.Search(ctx, []float32{1, 0}, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(hits))
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)

	hits, err = idx.Search(ctx, []float32{1, 0}, 10, &Filter{ExcludeAllergens: []string{"dairy"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, ids(hits))

	hits, err = idx.Search(ctx, []float32{1, 0}, 10, &Filter{AnyDietaryTags: []string{"vegetarian"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, ids(hits))

	require.NoError(t, idx.Add(ctx, "a", []float32{0, 1}, rec("a", []string{"keto"}, nil)))
	got, ok, err := idx.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"keto"}, got.DietaryTags)

	n, err := idx.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.NoError(t, idx.Reload(ctx))

	require.NoError(t, idx.AddAll(ctx, []Item{
		{ID: "d", Vector: []float32{1, 1}, Record: rec("d", []string{"vegan"}, nil)},
		{ID: "d", Vector: []float32{1, 1}, Record: rec("d", []string{"paleo"}, nil)},
		{ID: "b", Vector: []float32{0.8, 0.6}, Record: rec("b", []string{"keto"}, nil)},
	}))
	n, err = idx.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	got, _, err = idx.Get(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, []string{"paleo"}, got.DietaryTags)
}
