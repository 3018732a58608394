package ingestion

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/embedding"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/types"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/vectorindex"
)

// DefaultBatchSize is the number of recipes embedded per provider call
const DefaultBatchSize = 32

// Report summarizes one indexing run
type Report struct {
	Accepted int      `json:"accepted"`
	Rejected int      `json:"rejected"`
	Errors   []string `json:"errors,omitempty"`
	Warnings int      `json:"warnings"`
}

// Indexer embeds normalized recipes and stores them in an index
type Indexer struct {
	pre       *Preprocessor
	provider  embedding.Provider
	index     vectorindex.Index
	batchSize int
	logger    *zap.Logger
}

// NewIndexer creates an indexer. A non-positive batchSize uses the default.
func NewIndexer(pre *Preprocessor, provider embedding.Provider, index vectorindex.Index, batchSize int, logger *zap.Logger) *Indexer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Indexer{
		pre:       pre,
		provider:  provider,
		index:     index,
		batchSize: batchSize,
		logger:    logger,
	}
}

// EmbeddingText is the text a recipe is embedded from
func EmbeddingText(rec types.RecipeRecord) string {
	return fmt.Sprintf("%s. Ingredients: %s", rec.Title, strings.Join(rec.Ingredients, ", "))
}

// IndexAll normalizes, embeds and adds every recipe, then persists the
// index. Invalid recipes are counted as rejected and skipped; embedding or
// storage failures abort the run.
func (ix *Indexer) IndexAll(ctx context.Context, raws []RawRecipe) (Report, error) {
	var report Report
	records := make([]types.RecipeRecord, 0, len(raws))
	for _, raw := range raws {
		rec, warnings, err := ix.pre.Normalize(raw)
		if err != nil {
			report.Rejected++
			report.Errors = append(report.Errors, err.Error())
			ix.logger.Warn("rejected recipe", zap.String("recipe_id", raw.RecipeID), zap.Error(err))
			continue
		}
		report.Warnings += len(warnings)
		records = append(records, rec)
	}

	items := make([]vectorindex.Item, 0, len(records))
	for start := 0; start < len(records); start += ix.batchSize {
		end := min(start+ix.batchSize, len(records))
		batch := records[start:end]

		texts := make([]string, len(batch))
		for i, rec := range batch {
			texts[i] = EmbeddingText(rec)
		}
		vecs, err := ix.provider.EmbedBatch(ctx, texts)
		if err != nil {
			return report, fmt.Errorf("failed to embed recipes: %w", err)
		}
		if len(vecs) != len(batch) {
			return report, fmt.Errorf("failed to embed recipes: got %d vectors for %d texts", len(vecs), len(batch))
		}

		for i, rec := range batch {
			items = append(items, vectorindex.Item{ID: rec.RecipeID, Vector: vecs[i], Record: rec})
		}
		ix.logger.Debug("embedded batch", zap.Int("size", len(batch)), zap.Int("embedded", len(items)))
	}

	if err := ix.add(ctx, items); err != nil {
		return report, err
	}
	report.Accepted = len(items)

	if err := ix.index.Persist(ctx); err != nil {
		return report, fmt.Errorf("failed to persist index: %w", err)
	}

	ix.logger.Info("indexing complete",
		zap.Int("accepted", report.Accepted),
		zap.Int("rejected", report.Rejected),
		zap.Int("warnings", report.Warnings))
	return report, nil
}

// add stores the items in one step when the index supports it
func (ix *Indexer) add(ctx context.Context, items []vectorindex.Item) error {
	if len(items) == 0 {
		return nil
	}
	if batch, ok := ix.index.(vectorindex.BatchAdder); ok {
		if err := batch.AddAll(ctx, items); err != nil {
			return fmt.Errorf("failed to add recipes: %w", err)
		}
		return nil
	}
	for _, it := range items {
		if err := ix.index.Add(ctx, it.ID, it.Vector, it.Record); err != nil {
			return fmt.Errorf("failed to add recipe %s: %w", it.ID, err)
		}
	}
	return nil
}
