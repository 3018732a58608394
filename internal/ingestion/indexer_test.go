package ingestion

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/embedding"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/types"
	"github.com/pageza/alchemorsel-v2/mealplanner/internal/vectorindex"
)

type failingProvider struct{ embedding.Provider }

func (failingProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("provider unavailable")
}

// MockIndex is a mock implementation of vectorindex.Index
type MockIndex struct {
	mock.Mock
}

func (m *MockIndex) Add(ctx context.Context, id string, vec []float32, rec types.RecipeRecord) error {
	return m.Called(ctx, id, vec, rec).Error(0)
}

func (m *MockIndex) Search(ctx context.Context, query []float32, topK int, filter *vectorindex.Filter) ([]vectorindex.Hit, error) {
	args := m.Called(ctx, query, topK, filter)
	return args.Get(0).([]vectorindex.Hit), args.Error(1)
}

func (m *MockIndex) Get(ctx context.Context, id string) (types.RecipeRecord, bool, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(types.RecipeRecord), args.Bool(1), args.Error(2)
}

func (m *MockIndex) Persist(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockIndex) Reload(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockIndex) Len(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockBatchIndex also implements vectorindex.BatchAdder
type MockBatchIndex struct {
	MockIndex
}

func (m *MockBatchIndex) AddAll(ctx context.Context, items []vectorindex.Item) error {
	return m.Called(ctx, items).Error(0)
}

func TestEmbeddingText(t *testing.T) {
	rec := types.RecipeRecord{Title: "Tofu Stir Fry", Ingredients: []string{"tofu", "rice", "broccoli"}}
	assert.Equal(t, "Tofu Stir Fry. Ingredients: tofu, rice, broccoli", EmbeddingText(rec))
}

func TestIndexAllAddsValidRecipesAndPersists(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()
	path := filepath.Join(t.TempDir(), "index.json")
	provider := embedding.NewHashingProvider(16)
	idx := vectorindex.NewFlatIndex(16, vectorindex.FileSnapshotStore{Path: path}, logger)

	bad := validRaw("bad")
	bad.KcalTotal = nil
	raws := []RawRecipe{validRaw("r1"), bad, validRaw("r2"), validRaw("r3")}

	ix := NewIndexer(NewPreprocessor(logger), provider, idx, 2, logger)
	report, err := ix.IndexAll(ctx, raws)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Accepted)
	assert.Equal(t, 1, report.Rejected)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "bad")

	n, err := idx.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	reloaded := vectorindex.NewFlatIndex(16, vectorindex.FileSnapshotStore{Path: path}, logger)
	require.NoError(t, reloaded.Reload(ctx))
	got, ok, err := reloaded.Get(ctx, "r2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Overnight Oats", got.Title)
}

func TestIndexAllEmbedsTitleAndIngredients(t *testing.T) {
	ctx := context.Background()
	provider := embedding.NewHashingProvider(16)
	idx := vectorindex.NewFlatIndex(16, nil, zap.NewNop())

	ix := NewIndexer(NewPreprocessor(zap.NewNop()), provider, idx, 0, zap.NewNop())
	_, err := ix.IndexAll(ctx, []RawRecipe{validRaw("r1")})
	require.NoError(t, err)

	want, err := provider.Embed(ctx, "Overnight Oats. Ingredients: oats, almond milk, chia seeds, berries")
	require.NoError(t, err)

	hits, err := idx.Search(ctx, want, 1, nil)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
}

func TestIndexAllReturnsProviderErrors(t *testing.T) {
	idx := vectorindex.NewFlatIndex(16, nil, zap.NewNop())
	ix := NewIndexer(NewPreprocessor(zap.NewNop()), failingProvider{}, idx, 0, zap.NewNop())

	report, err := ix.IndexAll(context.Background(), []RawRecipe{validRaw("r1")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to embed recipes")
	assert.Zero(t, report.Accepted)
}

func TestIndexAllAddsInOneStepWhenSupported(t *testing.T) {
	ctx := context.Background()
	idx := new(MockBatchIndex)
	idx.On("AddAll", mock.Anything, mock.MatchedBy(func(items []vectorindex.Item) bool {
		return len(items) == 3 && items[0].ID == "r1" && items[2].ID == "r3"
	})).Return(nil).Once()
	idx.On("Persist", mock.Anything).Return(nil).Once()

	ix := NewIndexer(NewPreprocessor(zap.NewNop()), embedding.NewHashingProvider(16), idx, 2, zap.NewNop())
	report, err := ix.IndexAll(ctx, []RawRecipe{validRaw("r1"), validRaw("r2"), validRaw("r3")})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Accepted)

	idx.AssertExpectations(t)
	idx.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestIndexAllFallsBackToSingleAdds(t *testing.T) {
	ctx := context.Background()
	idx := new(MockIndex)
	idx.On("Add", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Times(2)
	idx.On("Persist", mock.Anything).Return(nil).Once()

	ix := NewIndexer(NewPreprocessor(zap.NewNop()), embedding.NewHashingProvider(16), idx, 0, zap.NewNop())
	report, err := ix.IndexAll(ctx, []RawRecipe{validRaw("r1"), validRaw("r2")})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Accepted)
	idx.AssertExpectations(t)
}

func TestIndexAllReportsStorageErrors(t *testing.T) {
	idx := new(MockBatchIndex)
	idx.On("AddAll", mock.Anything, mock.Anything).Return(errors.New("disk full")).Once()

	ix := NewIndexer(NewPreprocessor(zap.NewNop()), embedding.NewHashingProvider(16), idx, 0, zap.NewNop())
	report, err := ix.IndexAll(context.Background(), []RawRecipe{validRaw("r1")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to add recipes")
	assert.Zero(t, report.Accepted)
	idx.AssertNotCalled(t, "Persist", mock.Anything)
}
