package vectorindex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/embedding"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/types"
)

type entry struct {
	ID        string             `json:"id"`
	Embedding []float32          `json:"embedding"`
	Record    types.RecipeRecord `json:"record"`
}

// snapshot is immutable once published
type snapshot struct {
	entries []entry
	byID    map[string]int
}

type snapshotFile struct {
	Dimension int     `json:"dimension"`
	Entries   []entry `json:"entries"`
}

var _ BatchAdder = (*FlatIndex)(nil)

// FlatIndex is an exact in-memory index. Readers see a published snapshot
// without locking; writers copy, modify and swap it under a mutex.
type FlatIndex struct {
	dim     int
	store   SnapshotStore
	logger  *zap.Logger
	current atomic.Pointer[snapshot]
	writeMu sync.Mutex
}

// NewFlatIndex creates an empty index. store may be nil, in which case
// Persist and Reload are no-ops.
func NewFlatIndex(dim int, store SnapshotStore, logger *zap.Logger) *FlatIndex {
	idx := &FlatIndex{dim: dim, store: store, logger: logger}
	idx.current.Store(&snapshot{byID: map[string]int{}})
	return idx
}

// Add inserts or replaces a recipe
func (f *FlatIndex) Add(ctx context.Context, id string, vec []float32, rec types.RecipeRecord) error {
	return f.AddAll(ctx, []Item{{ID: id, Vector: vec, Record: rec}})
}

// AddAll inserts or replaces every item and publishes one new snapshot.
// A later item with the same id wins.
func (f *FlatIndex) AddAll(ctx context.Context, items []Item) error {
	for _, it := range items {
		if len(it.Vector) != f.dim {
			return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(it.Vector), f.dim)
		}
		if it.ID == "" {
			return errors.New("recipe id is required")
		}
	}
	if len(items) == 0 {
		return nil
	}

	f.writeMu.Lock()
	defer f.writeMu.Unlock()

	old := f.current.Load()
	next := &snapshot{
		entries: make([]entry, len(old.entries), len(old.entries)+len(items)),
		byID:    make(map[string]int, len(old.byID)+len(items)),
	}
	copy(next.entries, old.entries)
	for k, v := range old.byID {
		next.byID[k] = v
	}

	for _, it := range items {
		rec := it.Record
		rec.RecipeID = it.ID
		next.put(entry{ID: it.ID, Embedding: append([]float32(nil), it.Vector...), Record: rec})
	}

	f.current.Store(next)
	return nil
}

// put replaces the entry with the same id or appends a new one
func (s *snapshot) put(e entry) {
	if pos, ok := s.byID[e.ID]; ok {
		s.entries[pos] = e
		return
	}
	s.byID[e.ID] = len(s.entries)
	s.entries = append(s.entries, e)
}

// Search returns the topK most similar recipes that pass the filter.
// Equal similarities keep insertion order.
func (f *FlatIndex) Search(ctx context.Context, query []float32, topK int, filter *Filter) ([]Hit, error) {
	if len(query) != f.dim {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(query), f.dim)
	}
	if topK <= 0 {
		return []Hit{}, nil
	}

	snap := f.current.Load()
	hits := make([]Hit, 0, len(snap.entries))
	for i, e := range snap.entries {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if !filter.matches(e.Record) {
			continue
		}
		hits = append(hits, Hit{
			ID:         e.ID,
			Similarity: embedding.Cosine(query, e.Embedding),
			Record:     e.Record,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// Get returns the metadata for id
func (f *FlatIndex) Get(ctx context.Context, id string) (types.RecipeRecord, bool, error) {
	snap := f.current.Load()
	pos, ok := snap.byID[id]
	if !ok {
		return types.RecipeRecord{}, false, nil
	}
	return snap.entries[pos].Record, true, nil
}

// Len returns the number of indexed recipes
func (f *FlatIndex) Len(ctx context.Context) (int, error) {
	return len(f.current.Load().entries), nil
}

// Persist writes the current snapshot to the store
func (f *FlatIndex) Persist(ctx context.Context) error {
	if f.store == nil {
		return nil
	}

	snap := f.current.Load()
	data, err := json.Marshal(snapshotFile{Dimension: f.dim, Entries: snap.entries})
	if err != nil {
		return fmt.Errorf("failed to encode index snapshot: %w", err)
	}
	if err := f.store.Save(ctx, data); err != nil {
		return fmt.Errorf("failed to save index snapshot: %w", err)
	}

	f.logger.Info("persisted vector index", zap.Int("recipes", len(snap.entries)))
	return nil
}

// Reload replaces the in-memory contents with the stored snapshot
func (f *FlatIndex) Reload(ctx context.Context) error {
	if f.store == nil {
		return nil
	}

	data, err := f.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load index snapshot: %w", err)
	}

	var file snapshotFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to decode index snapshot: %w", err)
	}
	if file.Dimension != f.dim {
		return fmt.Errorf("%w: snapshot has %d, index has %d", ErrDimensionMismatch, file.Dimension, f.dim)
	}

	next := &snapshot{
		entries: make([]entry, 0, len(file.Entries)),
		byID:    make(map[string]int, len(file.Entries)),
	}
	for _, e := range file.Entries {
		if len(e.Embedding) != f.dim {
			return fmt.Errorf("%w: recipe %s", ErrDimensionMismatch, e.ID)
		}
		next.put(e)
	}
	if dups := len(file.Entries) - len(next.entries); dups > 0 {
		f.logger.Warn("dropped duplicate recipes from index snapshot", zap.Int("duplicates", dups))
	}

	f.writeMu.Lock()
	f.current.Store(next)
	f.writeMu.Unlock()

	f.logger.Info("reloaded vector index", zap.Int("recipes", len(next.entries)))
	return nil
}
