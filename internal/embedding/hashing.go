package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// HashingProvider is a deterministic bag-of-features embedder. Words and
// character trigrams are hashed into Dimension buckets with a signed
// contribution, and the result is L2-normalized. It needs no model files,
// so it backs local development, tests and offline indexing.
type HashingProvider struct {
	dim int
}

// NewHashingProvider creates a provider producing vectors of length dim
func NewHashingProvider(dim int) *HashingProvider {
	if dim <= 0 {
		dim = 384
	}
	return &HashingProvider{dim: dim}
}

// Dimension implements Provider
func (h *HashingProvider) Dimension() int { return h.dim }

// Embed implements Provider
func (h *HashingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vec := make([]float32, h.dim)
	for _, word := range tokenize(text) {
		h.add(vec, "w:"+word, 1.0)

		padded := "^" + word + "$"
		runes := []rune(padded)
		for i := 0; i+3 <= len(runes); i++ {
			h.add(vec, "t:"+string(runes[i:i+3]), 0.5)
		}
	}

	normalize(vec)
	return vec, nil
}

// EmbedBatch implements Provider
func (h *HashingProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return embedEach(ctx, h, texts)
}

func (h *HashingProvider) add(vec []float32, feature string, weight float32) {
	hasher := fnv.New64a()
	hasher.Write([]byte(feature))
	sum := hasher.Sum64()

	bucket := int(sum % uint64(h.dim))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	vec[bucket] += weight
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
}

func normalize(vec []float32) {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
}
