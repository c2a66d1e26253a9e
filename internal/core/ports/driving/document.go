package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// DocumentService indexes document text and ranks stored chunks against queries.
type DocumentService interface {
	// Insert chunks, embeds and stores the text of one file version.
	// Returns 0 if the fingerprint has already been indexed.
	Insert(ctx context.Context, text, source string, fp domain.Fingerprint) (int, error)

	// Query returns up to limit chunks ranked by relevance to text.
	Query(ctx context.Context, text string, limit int) ([]domain.ScoredChunk, error)

	// Stats returns the number of chunks and indexed file versions.
	Stats(ctx context.Context) (chunks, files int)
}
