package embedding

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-v2/mealplanner/internal/testhelpers"
)

func TestCachedProviderHitsRedis(t *testing.T) {
	client := testhelpers.SetupTestRedis(t)
	ctx := context.Background()

	inner := new(MockProvider)
	inner.On("Embed", mock.Anything, "snacks vegan").Return([]float32{0.6, 0.8}, nil).Once()

	p := NewCachedProvider(inner, client, time.Minute, zap.NewNop())

	first, err := p.Embed(ctx, "snacks vegan")
	require.NoError(t, err)
	second, err := p.Embed(ctx, "snacks vegan")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	inner.AssertNumberOfCalls(t, "Embed", 1)

	ttl, err := client.TTL(ctx, p.key("snacks vegan")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
