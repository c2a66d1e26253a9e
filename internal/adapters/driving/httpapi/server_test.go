package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-rag/internal/connectors/filesystem"
	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/services"
	"github.com/custodia-labs/sercha-rag/internal/logger"
	"github.com/custodia-labs/sercha-rag/internal/normalisers"
	"github.com/custodia-labs/sercha-rag/internal/postprocessors"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results []domain.RetrievedChunk
	stats   domain.Statistics
	err     error

	lastRequest domain.RetrieveRequest
}

func (m *mockRetrievalService) Retrieve(_ context.Context, req domain.RetrieveRequest) ([]domain.RetrievedChunk, error) {
	m.lastRequest = req
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func (m *mockRetrievalService) Statistics(_ context.Context) domain.Statistics {
	return m.stats
}

func (m *mockRetrievalService) Scan(_ context.Context) (domain.ScanReport, error) {
	return domain.ScanReport{}, nil
}

func intPtr(n int) *int { return &n }

func quietLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })
	return &buf
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_Retrieve(t *testing.T) {
	quietLogs(t)
	mock := &mockRetrievalService{
		results: []domain.RetrievedChunk{{Text: "hello world", Source: "u1/a.txt"}},
	}
	h := NewServer(mock, ":0").Handler()

	rec := do(t, h, http.MethodPost, "/v1/retrieve", `{"query":"hello","k":1,"userId":"u1"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `[{"text":"hello world","source":"u1/a.txt"}]`, rec.Body.String())
	assert.Equal(t, domain.RetrieveRequest{Query: "hello", K: intPtr(1), UserID: "u1"}, mock.lastRequest)
}

func TestServer_Retrieve_EmptyResult(t *testing.T) {
	quietLogs(t)
	h := NewServer(&mockRetrievalService{results: []domain.RetrievedChunk{}}, ":0").Handler()

	rec := do(t, h, http.MethodPost, "/v1/retrieve", `{"query":"anything"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestServer_Retrieve_MalformedBody(t *testing.T) {
	quietLogs(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `not json`},
		{name: "empty body", body: ``},
		{name: "array", body: `["query"]`},
		{name: "k is a string", body: `{"query":"x","k":"three"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockRetrievalService{}
			h := NewServer(mock, ":0").Handler()

			rec := do(t, h, http.MethodPost, "/v1/retrieve", tt.body)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Contains(t, resp["error"], domain.ErrMalformedRequest.Error())
			assert.Empty(t, mock.lastRequest.Query)
		})
	}
}

func TestServer_Retrieve_ServiceError(t *testing.T) {
	quietLogs(t)
	h := NewServer(&mockRetrievalService{err: errors.New("embed query: provider down")}, ":0").Handler()

	rec := do(t, h, http.MethodPost, "/v1/retrieve", `{"query":"x"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"embed query: provider down"}`, rec.Body.String())
}

func TestServer_Statistics(t *testing.T) {
	quietLogs(t)
	stats := domain.Statistics{
		Status:           domain.StatusUp,
		Service:          domain.DefaultServiceName,
		DocumentsIndexed: 7,
		UniqueFiles:      2,
		DataDir:          "./data/user-uploads",
	}
	h := NewServer(&mockRetrievalService{stats: stats}, ":0").Handler()

	for _, path := range []string{"/v1/statistics", "/health"} {
		t.Run(path, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, path, "")

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{
				"status": "UP",
				"service": "Pathway RAG Processor",
				"documents_indexed": 7,
				"unique_files": 2,
				"data_dir": "./data/user-uploads"
			}`, rec.Body.String())
		})
	}
}

func TestServer_NotFound(t *testing.T) {
	quietLogs(t)
	h := NewServer(&mockRetrievalService{}, ":0").Handler()

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/"},
		{http.MethodGet, "/v1/retrieve"},
		{http.MethodPost, "/health"},
		{http.MethodPost, "/v1/statistics"},
		{http.MethodPut, "/v1/retrieve"},
		{http.MethodDelete, "/health"},
		{http.MethodGet, "/v1/statistics/"},
		{http.MethodPost, "/v2/retrieve"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, "")

			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Empty(t, rec.Body.String())
		})
	}
}

func TestServer_LogsRequests(t *testing.T) {
	logs := quietLogs(t)
	h := NewServer(&mockRetrievalService{}, ":0").Handler()

	do(t, h, http.MethodGet, "/missing", "")

	assert.Contains(t, logs.String(), "GET /missing 404")
}

func TestServer_Serve_Shutdown(t *testing.T) {
	quietLogs(t)
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewServer(&mockRetrievalService{}, listener.Addr().String()).Serve(ctx, listener) }()

	resp, err := http.Get("http://" + listener.Addr().String() + "/health")
	require.NoError(t, err)
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

// TestServer_EndToEnd drives the handler over a real index built from a directory.
// newIndexedRetrieval scans files (relative path to content) into a real retrieval service.
func newIndexedRetrieval(t *testing.T, files map[string]string) (*services.RetrievalService, string) {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	store := memory.NewChunkStore()
	pipeline, err := postprocessors.NewDefaultPipeline(domain.DefaultMaxChunkChars)
	require.NoError(t, err)
	resolver := services.NewEmbeddingResolver(nil, time.Second)
	docs := services.NewDocumentService(store, pipeline, resolver)
	scanner := services.NewScanner(filesystem.New(), normalisers.NewDefaultRegistry(), store, docs)
	retrieval := services.NewRetrievalService(docs, scanner, root, "")
	_, err = retrieval.Scan(context.Background())
	require.NoError(t, err)
	return retrieval, root
}

func TestServer_EndToEnd(t *testing.T) {
	quietLogs(t)
	retrieval, root := newIndexedRetrieval(t, map[string]string{
		"u1/a.txt": "hello world",
		"u2/b.txt": "hello there",
	})

	server := httptest.NewServer(NewServer(retrieval, "").Handler())
	defer server.Close()

	resp, err := http.Post(server.URL+"/v1/retrieve", "application/json",
		strings.NewReader(`{"query":"hello","k":1,"userId":"u1"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	var results []domain.RetrievedChunk
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&results))
	assert.Equal(t, []domain.RetrievedChunk{{Text: "hello world", Source: "u1/a.txt"}}, results)

	statsResp, err := http.Get(server.URL + "/v1/statistics")
	require.NoError(t, err)
	defer statsResp.Body.Close()

	var stats domain.Statistics
	require.NoError(t, json.NewDecoder(statsResp.Body).Decode(&stats))
	assert.Equal(t, 2, stats.DocumentsIndexed)
	assert.Equal(t, 2, stats.UniqueFiles)
	assert.Equal(t, root, stats.DataDir)
}

func TestServer_EndToEnd_K(t *testing.T) {
	quietLogs(t)
	retrieval, _ := newIndexedRetrieval(t, map[string]string{
		"f0.txt": "hello",
		"f1.txt": "hello",
		"f2.txt": "hello",
		"f3.txt": "hello",
	})
	server := httptest.NewServer(NewServer(retrieval, "").Handler())
	defer server.Close()

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "omitted k uses default", body: `{"query":"hello"}`, want: domain.DefaultRetrieveK},
		{name: "zero k", body: `{"query":"hello","k":0}`, want: 0},
		{name: "zero k with user", body: `{"query":"hello","k":0,"userId":"u1"}`, want: 0},
		{name: "negative k", body: `{"query":"hello","k":-1}`, want: 0},
		{name: "float k", body: `{"query":"hello","k":2.0}`, want: 2},
		{name: "k above index size", body: `{"query":"hello","k":10}`, want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(server.URL+"/v1/retrieve", "application/json", strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()

			require.Equal(t, http.StatusOK, resp.StatusCode)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			var results []domain.RetrievedChunk
			require.NoError(t, json.Unmarshal(body, &results))
			assert.NotNil(t, results, "response must be a JSON array, got %s", body)
			assert.Len(t, results, tt.want)
		})
	}
}
