// Package embedding provides decorators shared by embedding service adapters.
package embedding

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// DefaultCallTimeout bounds every external embedding call.
const DefaultCallTimeout = 30 * time.Second

// Ensure RateLimited implements the interface.
var _ driven.EmbeddingService = (*RateLimited)(nil)

// RateLimited throttles calls to another EmbeddingService with a token bucket
// and bounds each call with a timeout. Waiting for a token counts against the timeout.
type RateLimited struct {
	next    driven.EmbeddingService
	bucket  *rate.Limiter
	timeout time.Duration
}

// NewRateLimited wraps next. A non-positive rps disables throttling and a
// non-positive timeout uses DefaultCallTimeout.
func NewRateLimited(next driven.EmbeddingService, rps float64, timeout time.Duration) *RateLimited {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	return &RateLimited{
		next:    next,
		bucket:  rate.NewLimiter(limit, 1),
		timeout: timeout,
	}
}

// Embed generates a vector embedding for the given text.
func (r *RateLimited) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel, err := r.acquire(ctx)
	defer cancel()
	if err != nil {
		return nil, err
	}
	return r.next.Embed(ctx, text)
}

// EmbedBatch generates embeddings for multiple texts as one throttled call.
func (r *RateLimited) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, cancel, err := r.acquire(ctx)
	defer cancel()
	if err != nil {
		return nil, err
	}
	return r.next.EmbedBatch(ctx, texts)
}

// Dimensions returns the wrapped service's vector size.
func (r *RateLimited) Dimensions() int {
	return r.next.Dimensions()
}

// ModelName returns the wrapped service's model name.
func (r *RateLimited) ModelName() string {
	return r.next.ModelName()
}

// Ping checks the wrapped service under the same timeout, without consuming a token.
func (r *RateLimited) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.next.Ping(ctx)
}

// Close releases the wrapped service.
func (r *RateLimited) Close() error {
	return r.next.Close()
}

// acquire waits for a token under the call timeout.
// The returned cancel func must always be called.
func (r *RateLimited) acquire(ctx context.Context) (context.Context, context.CancelFunc, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	if err := r.bucket.Wait(ctx); err != nil {
		return ctx, cancel, fmt.Errorf("embedding rate limit: %w", err)
	}
	return ctx, cancel, nil
}
