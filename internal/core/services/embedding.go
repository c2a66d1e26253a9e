package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// DefaultProbeTimeout bounds the single embedding call that decides the mode.
const DefaultProbeTimeout = 10 * time.Second

// probeText is embedded once to prove the provider works end to end.
const probeText = "test"

// EmbeddingResolver decides, once per process, whether retrieval ranks by
// vector similarity or keyword overlap.
//
// It starts Unresolved. The first Resolve probes the embedding service and
// commits to Vector on success or Keyword on any failure. The mode never
// changes again unless an operator calls Reresolve.
type EmbeddingResolver struct {
	service      driven.EmbeddingService
	probeTimeout time.Duration

	// resolveMu serialises resolution so concurrent callers share one probe.
	resolveMu sync.Mutex

	mu         sync.RWMutex
	mode       domain.EmbeddingMode
	dimensions int
}

// NewEmbeddingResolver creates a resolver. service may be nil, in which case
// the resolver settles on keyword mode without probing.
func NewEmbeddingResolver(service driven.EmbeddingService, probeTimeout time.Duration) *EmbeddingResolver {
	if probeTimeout <= 0 {
		probeTimeout = DefaultProbeTimeout
	}
	return &EmbeddingResolver{
		service:      service,
		probeTimeout: probeTimeout,
		mode:         domain.EmbeddingModeUnresolved,
	}
}

// Mode returns the current state without resolving.
func (r *EmbeddingResolver) Mode() domain.EmbeddingMode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mode
}

// Dimensions returns the vector size observed by the probe, or 0 outside vector mode.
func (r *EmbeddingResolver) Dimensions() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dimensions
}

// Resolve returns the mode, probing the provider first if still unresolved.
// Callers arriving during a probe wait for its outcome.
func (r *EmbeddingResolver) Resolve(ctx context.Context) domain.EmbeddingMode {
	if mode := r.Mode(); mode.IsResolved() {
		return mode
	}

	r.resolveMu.Lock()
	defer r.resolveMu.Unlock()

	if mode := r.Mode(); mode.IsResolved() {
		return mode
	}
	return r.resolveLocked(ctx)
}

// Reresolve forgets the current mode and probes again.
// Chunks embedded under a previous mode are kept as they are.
func (r *EmbeddingResolver) Reresolve(ctx context.Context) domain.EmbeddingMode {
	r.resolveMu.Lock()
	defer r.resolveMu.Unlock()

	previous := r.Mode()
	r.setMode(domain.EmbeddingModeUnresolved, 0)

	mode := r.resolveLocked(ctx)
	switch {
	case previous == domain.EmbeddingModeVector && mode == domain.EmbeddingModeKeyword:
		logger.Warn("embedding mode downgraded from vector to keyword")
	case previous == domain.EmbeddingModeKeyword && mode == domain.EmbeddingModeVector:
		logger.Info("embedding mode upgraded from keyword to vector")
	}
	return mode
}

// Embed embeds texts in vector mode. In keyword mode it returns
// domain.ErrProviderUnavailable without contacting the provider.
func (r *EmbeddingResolver) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if r.Resolve(ctx) != domain.EmbeddingModeVector {
		return nil, domain.ErrProviderUnavailable
	}

	embeddings, err := r.service.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
	}
	if len(embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: expected %d embeddings, got %d",
			domain.ErrProviderUnavailable, len(texts), len(embeddings))
	}
	return embeddings, nil
}

// resolveLocked probes the provider. Caller must hold resolveMu.
func (r *EmbeddingResolver) resolveLocked(ctx context.Context) domain.EmbeddingMode {
	if r.service == nil {
		logger.Info("no embedding provider configured, using keyword retrieval")
		r.setMode(domain.EmbeddingModeKeyword, 0)
		return domain.EmbeddingModeKeyword
	}

	probeCtx, cancel := context.WithTimeout(ctx, r.probeTimeout)
	defer cancel()

	start := time.Now()
	embedding, err := r.service.Embed(probeCtx, probeText)
	if err == nil && len(embedding) == 0 {
		err = fmt.Errorf("empty probe embedding")
	}
	if err != nil {
		logger.Warn("embedding provider %s unavailable, falling back to keyword retrieval: %v",
			r.service.ModelName(), err)
		r.setMode(domain.EmbeddingModeKeyword, 0)
		return domain.EmbeddingModeKeyword
	}

	logger.Info("using embedding model %s (%d dimensions)", r.service.ModelName(), len(embedding))
	logger.Debug("embedding probe took %v", time.Since(start))
	r.setMode(domain.EmbeddingModeVector, len(embedding))
	return domain.EmbeddingModeVector
}

func (r *EmbeddingResolver) setMode(mode domain.EmbeddingMode, dimensions int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mode = mode
	r.dimensions = dimensions
}
