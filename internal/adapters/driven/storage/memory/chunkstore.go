// Package memory provides in-memory implementations of the storage ports.
package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is an append-only in-memory implementation of driven.ChunkStore.
// It is created empty and lives for the whole process.
type ChunkStore struct {
	mu           sync.RWMutex
	chunks       []domain.Chunk
	fingerprints map[domain.Fingerprint]struct{}
}

// NewChunkStore creates a new empty chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		fingerprints: make(map[domain.Fingerprint]struct{}),
	}
}

// HasFingerprint reports whether a file version has already been indexed.
func (s *ChunkStore) HasFingerprint(_ context.Context, fp domain.Fingerprint) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.fingerprints[fp]
	return ok
}

// Append records fp and appends chunks under the write lock.
// A fingerprint recorded by a concurrent caller wins; the loser appends nothing.
func (s *ChunkStore) Append(ctx context.Context, fp domain.Fingerprint, chunks []domain.Chunk) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.fingerprints[fp]; ok {
		return 0, nil
	}
	s.chunks = append(s.chunks, chunks...)
	s.fingerprints[fp] = struct{}{}
	return len(chunks), nil
}

// Snapshot returns the chunks in insertion order.
// The slice is capped at its length, so later appends never write into it.
func (s *ChunkStore) Snapshot(_ context.Context) []domain.Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chunks[:len(s.chunks):len(s.chunks)]
}

// Stats returns the number of chunks and recorded fingerprints.
func (s *ChunkStore) Stats(_ context.Context) (chunks, files int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks), len(s.fingerprints)
}
