// Package vectorindex stores recipe embeddings with their metadata and
// answers nearest-neighbour queries over them.
package vectorindex

import (
	"context"
	"errors"
	"strings"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/types"
)

var (
	// ErrDimensionMismatch is returned when a vector has the wrong length
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	// ErrSnapshotNotFound is returned by a SnapshotStore with nothing saved
	ErrSnapshotNotFound = errors.New("index snapshot not found")
)

// Hit is one search result. Similarity is the raw cosine in [-1,1].
type Hit struct {
	ID         string
	Similarity float64
	Record     types.RecipeRecord
}

// Filter carries optional hints for the index. Backends may ignore them,
// so callers still post-filter anything correctness depends on.
type Filter struct {
	ExcludeAllergens []string
	// AnyDietaryTags keeps recipes carrying at least one of the tags.
	AnyDietaryTags []string
}

// Index is a searchable store of recipe embeddings. Implementations are
// safe for concurrent Search and Get while Add or Reload runs.
type Index interface {
	Add(ctx context.Context, id string, vec []float32, rec types.RecipeRecord) error
	Search(ctx context.Context, query []float32, topK int, filter *Filter) ([]Hit, error)
	Get(ctx context.Context, id string) (types.RecipeRecord, bool, error)
	Persist(ctx context.Context) error
	Reload(ctx context.Context) error
	Len(ctx context.Context) (int, error)
}

// Item is one recipe handed to AddAll
type Item struct {
	ID     string
	Vector []float32
	Record types.RecipeRecord
}

// BatchAdder is implemented by indexes that can add many recipes in one
// step. Either every item is added or none is.
type BatchAdder interface {
	AddAll(ctx context.Context, items []Item) error
}

// matches applies a filter to a record in memory
func (f *Filter) matches(rec types.RecipeRecord) bool {
	if f == nil {
		return true
	}
	if len(f.ExcludeAllergens) > 0 {
		for _, a := range rec.AllergenTags {
			for _, ex := range f.ExcludeAllergens {
				if strings.EqualFold(a, strings.TrimSpace(ex)) {
					return false
				}
			}
		}
	}
	if len(f.AnyDietaryTags) > 0 {
		for _, want := range f.AnyDietaryTags {
			if rec.HasTag(want) {
				return true
			}
		}
		return false
	}
	return true
}
