package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// mockEmbeddingService implements driven.EmbeddingService for testing.
type mockEmbeddingService struct {
	embedFunc      func(ctx context.Context, text string) ([]float32, error)
	embedBatchFunc func(ctx context.Context, texts []string) ([][]float32, error)
	model          string

	embedCalls atomic.Int32
	batchCalls atomic.Int32
}

var _ driven.EmbeddingService = (*mockEmbeddingService)(nil)

func (m *mockEmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	m.embedCalls.Add(1)
	if m.embedFunc != nil {
		return m.embedFunc(ctx, text)
	}
	return vocabEmbedding(text), nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.batchCalls.Add(1)
	if m.embedBatchFunc != nil {
		return m.embedBatchFunc(ctx, texts)
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = vocabEmbedding(t)
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int { return len(testVocab) }

func (m *mockEmbeddingService) ModelName() string {
	if m.model == "" {
		return "mock-embed"
	}
	return m.model
}

func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }

func (m *mockEmbeddingService) Close() error { return nil }

// testVocab fixes the axes of vocabEmbedding.
var testVocab = []string{"test", "cat", "dog", "fish", "bird"}

// vocabEmbedding counts vocabulary words, one dimension per word, plus a
// constant so no vector is all zeros.
func vocabEmbedding(text string) []float32 {
	v := make([]float32, len(testVocab)+1)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		for i, word := range testVocab {
			if w == word {
				v[i]++
			}
		}
	}
	v[len(testVocab)] = 0.01
	return v
}

var errMockProvider = errors.New("provider down")

func failingEmbeddingService() *mockEmbeddingService {
	return &mockEmbeddingService{
		embedFunc: func(context.Context, string) ([]float32, error) {
			return nil, errMockProvider
		},
	}
}

// mockFileSource implements driven.FileSource over a fixed file list.
type mockFileSource struct {
	files    []domain.FileInfo
	contents map[string]string
	readErr  map[string]error
}

var _ driven.FileSource = (*mockFileSource)(nil)

func (m *mockFileSource) Walk(ctx context.Context, _ string, fn driven.WalkFunc) error {
	for _, f := range m.files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func (m *mockFileSource) ReadFile(_ context.Context, path string) ([]byte, error) {
	if err, ok := m.readErr[path]; ok {
		return nil, err
	}
	return []byte(m.contents[path]), nil
}

// mockScanRunner implements ScanRunner for scheduler tests.
type mockScanRunner struct {
	mu     sync.Mutex
	calls  int
	report domain.ScanReport
	err    error
}

func (m *mockScanRunner) Scan(_ context.Context) (domain.ScanReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.report, m.err
}

func (m *mockScanRunner) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func intPtr(n int) *int { return &n }
