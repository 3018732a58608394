package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-v2/mealplanner/config"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/vectorindex"
)

const recipesJSON = `[
  {"recipe_id": "r1", "title": "Lentil Soup", "ingredients": ["lentils", "carrot"], "instructions": "Simmer.",
   "kcal_total": 420, "protein_g_total": 24, "carbs_g_total": 60, "fat_g_total": 8,
   "dietary_tags": ["vegan"], "allergen_tags": []},
  {"recipe_id": "r2", "title": "Missing Macros", "ingredients": ["water"], "instructions": "Boil.",
   "kcal_total": 10}
]`

func TestRunIndexesIntoFlatSnapshot(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "recipes.json")
	require.NoError(t, os.WriteFile(input, []byte(recipesJSON), 0644))

	cfg := &config.Config{
		Embedding: config.EmbeddingConfig{Dimension: 16, Timeout: time.Second},
		Index:     config.IndexConfig{Backend: "flat", SnapshotPath: filepath.Join(dir, "index.json")},
	}

	report, err := run(context.Background(), cfg, input, 8, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Accepted)
	assert.Equal(t, 1, report.Rejected)

	idx := vectorindex.NewFlatIndex(16, vectorindex.FileSnapshotStore{Path: cfg.Index.SnapshotPath}, zap.NewNop())
	require.NoError(t, idx.Reload(context.Background()))
	rec, ok, err := idx.Get(context.Background(), "r1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Lentil Soup", rec.Title)
}

func TestReadRecipesErrors(t *testing.T) {
	_, err := readRecipes(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "failed to read")

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"not": "an array"}`), 0644))
	_, err = readRecipes(bad)
	assert.ErrorContains(t, err, "failed to decode")
}
