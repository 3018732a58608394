package vectorindex

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/types"
)

func rec(id string, tags, allergens []string) types.RecipeRecord {
	return types.RecipeRecord{
		RecipeID:     id,
		Title:        "Recipe " + id,
		KcalTotal:    400,
		DietaryTags:  tags,
		AllergenTags: allergens,
	}
}

func seededIndex(t *testing.T, store SnapshotStore) *FlatIndex {
	t.Helper()
	idx := NewFlatIndex(2, store, zap.NewNop())
	ctx := context.Background()
	require.NoError(t, idx.Add(ctx, "a", []float32{1, 0}, rec("a", []string{"vegan"}, nil)))
	require.NoError(t, idx.Add(ctx, "b", []float32{0.8, 0.6}, rec("b", []string{"vegetarian"}, []string{"dairy"})))
	require.NoError(t, idx.Add(ctx, "c", []float32{0, 1}, rec("c", nil, []string{"nuts"})))
	return idx
}

func TestFlatIndexSearchOrdersBySimilarity(t *testing.T) {
	idx := seededIndex(t, nil)

	hits, err := idx.Search(context.Background(), []float32{1, 0}, 3, nil)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, "a", hits[0].ID)
	assert.Equal(t, "b", hits[1].ID)
	assert.Equal(t, "c", hits[2].ID)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
	assert.InDelta(t, 0.8, hits[1].Similarity, 1e-6)
}

func TestFlatIndexSearchTruncatesAndKeepsInsertionOrderOnTies(t *testing.T) {
	idx := NewFlatIndex(2, nil, zap.NewNop())
	ctx := context.Background()
	for _, id := range []string{"x", "y", "z"} {
		require.NoError(t, idx.Add(ctx, id, []float32{1, 1}, rec(id, nil, nil)))
	}

	hits, err := idx.Search(ctx, []float32{1, 1}, 2, nil)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "x", hits[0].ID)
	assert.Equal(t, "y", hits[1].ID)
}

func TestFlatIndexFilters(t *testing.T) {
	idx := seededIndex(t, nil)
	ctx := context.Background()

	hits, err := idx.Search(ctx, []float32{1, 0}, 10, &Filter{ExcludeAllergens: []string{" Dairy "}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c"}, ids(hits))

	hits, err = idx.Search(ctx, []float32{1, 0}, 10, &Filter{AnyDietaryTags: []string{"vegetarian", "vegan"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(hits))
}

func TestFlatIndexAddReplacesAndValidates(t *testing.T) {
	idx := seededIndex(t, nil)
	ctx := context.Background()

	updated := rec("a", []string{"keto"}, nil)
	require.NoError(t, idx.Add(ctx, "a", []float32{0, 1}, updated))

	n, _ := idx.Len(ctx)
	assert.Equal(t, 3, n)

	got, ok, err := idx.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"keto"}, got.DietaryTags)

	_, ok, _ = idx.Get(ctx, "missing")
	assert.False(t, ok)

	assert.ErrorIs(t, idx.Add(ctx, "d", []float32{1}, rec("d", nil, nil)), ErrDimensionMismatch)
	_, err = idx.Search(ctx, []float32{1, 0, 0}, 1, nil)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestFlatIndexAddAllPublishesOnce(t *testing.T) {
	idx := seededIndex(t, nil)
	ctx := context.Background()
	before := idx.current.Load()

	err := idx.AddAll(ctx, []Item{
		{ID: "d", Vector: []float32{1, 1}, Record: rec("d", nil, nil)},
		{ID: "a", Vector: []float32{0, 1}, Record: rec("a", []string{"keto"}, nil)},
		{ID: "d", Vector: []float32{1, 1}, Record: rec("d", []string{"paleo"}, nil)},
	})
	require.NoError(t, err)

	after := idx.current.Load()
	assert.NotSame(t, before, after)
	assert.Len(t, before.entries, 3, "published snapshots are never mutated")

	n, _ := idx.Len(ctx)
	assert.Equal(t, 4, n)
	got, _, _ := idx.Get(ctx, "d")
	assert.Equal(t, []string{"paleo"}, got.DietaryTags)
	got, _, _ = idx.Get(ctx, "a")
	assert.Equal(t, []string{"keto"}, got.DietaryTags)

	err = idx.AddAll(ctx, []Item{
		{ID: "e", Vector: []float32{1, 0}, Record: rec("e", nil, nil)},
		{ID: "f", Vector: []float32{1}, Record: rec("f", nil, nil)},
	})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	_, ok, _ := idx.Get(ctx, "e")
	assert.False(t, ok)
	assert.Same(t, after, idx.current.Load())
}

func TestFlatIndexReloadDropsDuplicateIDs(t *testing.T) {
	store := FileSnapshotStore{Path: filepath.Join(t.TempDir(), "dups.json")}
	ctx := context.Background()
	data := `{"dimension":2,"entries":[
		{"id":"a","embedding":[1,0],"record":{"recipe_id":"a","dietary_tags":["vegan"]}},
		{"id":"b","embedding":[0,1],"record":{"recipe_id":"b"}},
		{"id":"a","embedding":[0,1],"record":{"recipe_id":"a","dietary_tags":["keto"]}}
	]}`
	require.NoError(t, store.Save(ctx, []byte(data)))

	idx := NewFlatIndex(2, store, zap.NewNop())
	require.NoError(t, idx.Reload(ctx))

	n, _ := idx.Len(ctx)
	assert.Equal(t, 2, n)
	got, ok, _ := idx.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, []string{"keto"}, got.DietaryTags)

	hits, err := idx.Search(ctx, []float32{0, 1}, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids(hits))
}

func TestFlatIndexPersistReloadFile(t *testing.T) {
	store := FileSnapshotStore{Path: filepath.Join(t.TempDir(), "idx", "snapshot.json")}
	idx := seededIndex(t, store)
	ctx := context.Background()

	require.NoError(t, idx.Persist(ctx))

	fresh := NewFlatIndex(2, store, zap.NewNop())
	require.NoError(t, fresh.Reload(ctx))

	n, _ := fresh.Len(ctx)
	assert.Equal(t, 3, n)
	got, ok, _ := fresh.Get(ctx, "b")
	assert.True(t, ok)
	assert.Equal(t, []string{"dairy"}, got.AllergenTags)

	wrongDim := NewFlatIndex(3, store, zap.NewNop())
	assert.ErrorIs(t, wrongDim.Reload(ctx), ErrDimensionMismatch)
}

func TestFlatIndexReloadMissingSnapshot(t *testing.T) {
	store := FileSnapshotStore{Path: filepath.Join(t.TempDir(), "none.json")}
	err := NewFlatIndex(2, store, zap.NewNop()).Reload(context.Background())
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func TestFlatIndexConcurrentReadsDuringWrites(t *testing.T) {
	idx := seededIndex(t, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				id := fmt.Sprintf("w%d-%d", w, i)
				assert.NoError(t, idx.Add(ctx, id, []float32{float32(i), 1}, rec(id, nil, nil)))
			}
		}(w)
	}
	for r := 0; r < 8; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				hits, err := idx.Search(ctx, []float32{1, 0}, 5, nil)
				assert.NoError(t, err)
				assert.NotEmpty(t, hits)
			}
		}()
	}
	wg.Wait()

	n, _ := idx.Len(ctx)
	assert.Equal(t, 203, n)
}

// MockS3 is a mock implementation of S3API
type MockS3 struct {
	mock.Mock
	saved []byte
}

func (m *MockS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	args := m.Called(*params.Bucket, *params.Key)
	body, _ := io.ReadAll(params.Body)
	m.saved = body
	return &s3.PutObjectOutput{}, args.Error(0)
}

func (m *MockS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(*params.Bucket, *params.Key)
	if err := args.Error(0); err != nil {
		return nil, err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(m.saved))}, nil
}

func TestFlatIndexPersistReloadS3(t *testing.T) {
	client := new(MockS3)
	client.On("PutObject", "recipes", "indexes/flat.json").Return(nil)
	client.On("GetObject", "recipes", "indexes/flat.json").Return(nil)

	store := S3SnapshotStore{Client: client, Bucket: "recipes", Key: "indexes/flat.json"}
	ctx := context.Background()

	require.NoError(t, seededIndex(t, store).Persist(ctx))

	fresh := NewFlatIndex(2, store, zap.NewNop())
	require.NoError(t, fresh.Reload(ctx))
	n, _ := fresh.Len(ctx)
	assert.Equal(t, 3, n)
	client.AssertExpectations(t)
}

func TestS3SnapshotStoreMissingKey(t *testing.T) {
	client := new(MockS3)
	client.On("GetObject", "recipes", "missing").Return(&s3types.NoSuchKey{})

	_, err := S3SnapshotStore{Client: client, Bucket: "recipes", Key: "missing"}.Load(context.Background())
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}

func ids(hits []Hit) []string {
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.ID)
	}
	return out
}
