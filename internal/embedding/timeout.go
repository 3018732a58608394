package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// TimeoutProvider bounds every call to the wrapped provider
type TimeoutProvider struct {
	next    Provider
	timeout time.Duration
}

// WithTimeout wraps next so that calls fail with ErrTimeout after d.
// A non-positive d disables the bound.
func WithTimeout(next Provider, d time.Duration) Provider {
	if d <= 0 {
		return next
	}
	return &TimeoutProvider{next: next, timeout: d}
}

// Dimension implements Provider
func (t *TimeoutProvider) Dimension() int { return t.next.Dimension() }

// Embed implements Provider
func (t *TimeoutProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	type result struct {
		vec []float32
		err error
	}
	done := make(chan result, 1)
	go func() {
		vec, err := t.next.Embed(ctx, text)
		done <- result{vec, err}
	}()

	select {
	case r := <-done:
		if r.err != nil && errors.Is(r.err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, r.err)
		}
		return r.vec, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ctx.Err()
	}
}

// EmbedBatch implements Provider
func (t *TimeoutProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout*time.Duration(max(1, len(texts))))
	defer cancel()

	out, err := t.next.EmbedBatch(ctx, texts)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return out, err
}
