package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashingProviderIsDeterministic(t *testing.T) {
	p := NewHashingProvider(64)
	ctx := context.Background()

	a, err := p.Embed(ctx, "Breakfast vegan oats")
	require.NoError(t, err)
	b, err := p.Embed(ctx, "breakfast VEGAN oats")
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.Equal(t, a, b)
}

func TestHashingProviderNormalizes(t *testing.T) {
	vec, err := NewHashingProvider(128).Embed(context.Background(), "grilled salmon with rice")
	require.NoError(t, err)

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
}

func TestHashingProviderEmptyText(t *testing.T) {
	vec, err := NewHashingProvider(16).Embed(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, make([]float32, 16), vec)
}

func TestHashingProviderSimilarity(t *testing.T) {
	p := NewHashingProvider(256)
	ctx := context.Background()

	query, _ := p.Embed(ctx, "breakfast vegan")
	near, _ := p.Embed(ctx, "Vegan breakfast bowl")
	far, _ := p.Embed(ctx, "beef stew dinner")

	assert.Greater(t, Cosine(query, near), Cosine(query, far))
}

func TestHashingProviderBatch(t *testing.T) {
	p := NewHashingProvider(32)
	vecs, err := p.EmbedBatch(context.Background(), []string{"a b", "c d"})
	require.NoError(t, err)
	assert.Len(t, vecs, 2)

	single, _ := p.Embed(context.Background(), "c d")
	assert.Equal(t, single, vecs[1])
}

func TestHashingProviderHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewHashingProvider(8).Embed(ctx, "anything")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, -1.0, Cosine([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Equal(t, 0.0, Cosine([]float32{1}, []float32{1, 0}))
	assert.Equal(t, 0.0, Cosine([]float32{0, 0}, []float32{1, 0}))
}
