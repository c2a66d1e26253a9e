package mcp

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

var (
	_ driving.RetrievalService = (*mockRetrievalService)(nil)
	_ driving.Scheduler        = (*mockScheduler)(nil)
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results []domain.RetrievedChunk
	stats   domain.Statistics
	report  domain.ScanReport
	err     error

	lastRequest domain.RetrieveRequest
}

func (m *mockRetrievalService) Retrieve(_ context.Context, req domain.RetrieveRequest) ([]domain.RetrievedChunk, error) {
	m.lastRequest = req
	if m.err != nil {
		return nil, m.err
	}
	if m.results == nil {
		return []domain.RetrievedChunk{}, nil
	}
	return m.results, nil
}

func (m *mockRetrievalService) Statistics(_ context.Context) domain.Statistics {
	return m.stats
}

func (m *mockRetrievalService) Scan(_ context.Context) (domain.ScanReport, error) {
	return m.report, m.err
}

// mockScheduler is a mock implementation of driving.Scheduler.
type mockScheduler struct {
	history []domain.TaskResult
	err     error

	lastLimit int
}

func (m *mockScheduler) Start(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (m *mockScheduler) Trigger() {}

func (m *mockScheduler) Stop() error { return nil }

func (m *mockScheduler) History(_ context.Context, limit int) ([]domain.TaskResult, error) {
	m.lastLimit = limit
	return m.history, m.err
}

func intPtr(n int) *int { return &n }
