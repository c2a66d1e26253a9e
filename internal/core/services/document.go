package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService chunks, embeds and ranks documents over a ChunkStore.
type DocumentService struct {
	store    driven.ChunkStore
	pipeline driven.PostProcessorPipeline
	resolver *EmbeddingResolver
}

// NewDocumentService creates a new document service.
func NewDocumentService(
	store driven.ChunkStore,
	pipeline driven.PostProcessorPipeline,
	resolver *EmbeddingResolver,
) *DocumentService {
	return &DocumentService{
		store:    store,
		pipeline: pipeline,
		resolver: resolver,
	}
}

// Insert chunks text, embeds the chunks in vector mode and appends them.
// Embedding happens before the store is locked. A chunk whose embedding
// fails is stored without one.
func (s *DocumentService) Insert(ctx context.Context, text, source string, fp domain.Fingerprint) (int, error) {
	if s.store.HasFingerprint(ctx, fp) {
		return 0, nil
	}

	texts, err := s.pipeline.Process(ctx, text)
	if err != nil {
		return 0, fmt.Errorf("chunk %s: %w", source, err)
	}

	chunks := make([]domain.Chunk, len(texts))
	for i, t := range texts {
		chunks[i] = domain.Chunk{Text: t, Source: source}
	}

	if s.resolver.Resolve(ctx) == domain.EmbeddingModeVector {
		s.embedChunks(ctx, chunks)
	}

	n, err := s.store.Append(ctx, fp, chunks)
	if err != nil {
		return 0, fmt.Errorf("store %s: %w", source, err)
	}
	return n, nil
}

// embedChunks fills in embeddings, one batch call first and then chunk by
// chunk if the batch fails.
func (s *DocumentService) embedChunks(ctx context.Context, chunks []domain.Chunk) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	embeddings, err := s.resolver.Embed(ctx, texts)
	if err == nil {
		for i := range chunks {
			chunks[i].Embedding = embeddings[i]
		}
		return
	}
	logger.Debug("batch embedding of %d chunks failed, retrying individually: %v", len(chunks), err)

	for i := range chunks {
		embedding, err := s.resolver.Embed(ctx, texts[i:i+1])
		if err != nil {
			logger.Warn("embedding chunk %d of %s failed, storing without embedding: %v",
				i, chunks[i].Source, err)
			continue
		}
		chunks[i].Embedding = embedding[0]
	}
}

// Query ranks stored chunks against text and returns at most limit of them.
// An empty store or a non-positive limit yields an empty result.
func (s *DocumentService) Query(ctx context.Context, text string, limit int) ([]domain.ScoredChunk, error) {
	if limit <= 0 {
		return []domain.ScoredChunk{}, nil
	}

	snapshot := s.store.Snapshot(ctx)
	if len(snapshot) == 0 {
		return []domain.ScoredChunk{}, nil
	}

	var ranked []domain.ScoredChunk
	switch s.resolver.Resolve(ctx) {
	case domain.EmbeddingModeVector:
		embeddings, err := s.resolver.Embed(ctx, []string{text})
		if err != nil {
			return nil, fmt.Errorf("embed query: %w", err)
		}
		ranked = rankByVector(snapshot, embeddings[0])
	case domain.EmbeddingModeKeyword:
		ranked = rankByKeyword(snapshot, text)
	default:
		return nil, errors.New("embedding mode unresolved")
	}

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	if ranked == nil {
		ranked = []domain.ScoredChunk{}
	}
	return ranked, nil
}

// Stats returns the number of chunks and indexed file versions.
func (s *DocumentService) Stats(ctx context.Context) (chunks, files int) {
	return s.store.Stats(ctx)
}
