package services

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalService answers tenant-filtered queries over the document index.
type RetrievalService struct {
	docs        driving.DocumentService
	scanner     *Scanner
	dataDir     string
	serviceName string
}

// NewRetrievalService creates a retrieval service over docs, scanning dataDir.
func NewRetrievalService(docs driving.DocumentService, scanner *Scanner, dataDir, serviceName string) *RetrievalService {
	if serviceName == "" {
		serviceName = domain.DefaultServiceName
	}
	return &RetrievalService{
		docs:        docs,
		scanner:     scanner,
		dataDir:     dataDir,
		serviceName: serviceName,
	}
}

// Retrieve returns the chunks most relevant to req.Query that req.UserID may see.
//
// With a tenant, 3x the requested number of candidates are ranked before
// filtering, so fewer than k results may come back when most candidates
// belong to other tenants.
func (s *RetrievalService) Retrieve(ctx context.Context, req domain.RetrieveRequest) ([]domain.RetrievedChunk, error) {
	limit := req.Limit()

	candidates, err := s.docs.Query(ctx, req.Query, req.CandidateLimit())
	if err != nil {
		return nil, err
	}

	results := make([]domain.RetrievedChunk, 0, min(limit, len(candidates)))
	for _, c := range candidates {
		if len(results) == limit {
			break
		}
		if !c.Chunk.VisibleTo(req.UserID) {
			continue
		}
		results = append(results, domain.RetrievedChunk{Text: c.Chunk.Text, Source: c.Chunk.Source})
	}

	logger.Debug("retrieve %q k=%d user=%q: %d candidates, %d results",
		req.Query, limit, req.UserID, len(candidates), len(results))
	return results, nil
}

// Statistics summarises the index.
func (s *RetrievalService) Statistics(ctx context.Context) domain.Statistics {
	chunks, files := s.docs.Stats(ctx)
	return domain.Statistics{
		Status:           domain.StatusUp,
		Service:          s.serviceName,
		DocumentsIndexed: chunks,
		UniqueFiles:      files,
		DataDir:          s.dataDir,
	}
}

// Scan runs one ingestion pass over the data directory.
func (s *RetrievalService) Scan(ctx context.Context) (domain.ScanReport, error) {
	return s.scanner.ScanWithReport(ctx, s.dataDir)
}
