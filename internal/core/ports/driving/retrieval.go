package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// RetrievalService answers similarity queries and reports index statistics.
type RetrievalService interface {
	// Retrieve returns at most req.Limit() chunks visible to req.UserID.
	// The result is never nil.
	Retrieve(ctx context.Context, req domain.RetrieveRequest) ([]domain.RetrievedChunk, error)

	// Statistics summarises the index.
	Statistics(ctx context.Context) domain.Statistics

	// Scan runs one ingestion pass over the data directory.
	Scan(ctx context.Context) (domain.ScanReport, error)
}
