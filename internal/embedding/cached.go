package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CachedProvider stores embeddings in Redis keyed by a hash of the text.
// Cache failures are logged and fall through to the wrapped provider.
type CachedProvider struct {
	next   Provider
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedProvider wraps next with a Redis cache
func NewCachedProvider(next Provider, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedProvider {
	return &CachedProvider{next: next, redis: client, ttl: ttl, logger: logger}
}

// Dimension implements Provider
func (c *CachedProvider) Dimension() int { return c.next.Dimension() }

func (c *CachedProvider) key(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("embedding:%d:%s", c.next.Dimension(), hex.EncodeToString(sum[:]))
}

// Embed implements Provider
func (c *CachedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	key := c.key(text)

	data, err := c.redis.Get(ctx, key).Bytes()
	if err == nil {
		var vec []float32
		if err := json.Unmarshal(data, &vec); err == nil && len(vec) == c.next.Dimension() {
			return vec, nil
		}
		c.logger.Warn("discarding malformed cached embedding", zap.String("key", key))
	} else if err != redis.Nil {
		c.logger.Warn("embedding cache read failed", zap.Error(err))
	}

	vec, err := c.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(vec); err == nil {
		if err := c.redis.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Warn("embedding cache write failed", zap.Error(err))
		}
	}
	return vec, nil
}

// EmbedBatch implements Provider
func (c *CachedProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, c, texts)
}
