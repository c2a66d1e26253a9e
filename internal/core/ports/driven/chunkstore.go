package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// ChunkStore holds indexed chunks and the fingerprints of the file versions
// they came from. Chunks are only ever appended.
type ChunkStore interface {
	// HasFingerprint reports whether a file version has already been indexed.
	HasFingerprint(ctx context.Context, fp domain.Fingerprint) bool

	// Append atomically records fp and appends chunks.
	// If fp is already recorded nothing is appended and 0 is returned.
	Append(ctx context.Context, fp domain.Fingerprint, chunks []domain.Chunk) (int, error)

	// Snapshot returns the chunks in insertion order.
	// The returned slice is safe to read while other goroutines append.
	Snapshot(ctx context.Context) []domain.Chunk

	// Stats returns the number of chunks and recorded fingerprints.
	Stats(ctx context.Context) (chunks, files int)
}
