package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query  string `json:"query" jsonschema:"free-text query to match against indexed documents"`
	K      *int   `json:"k,omitempty" jsonschema:"maximum number of passages to return (default 3)"`
	UserID string `json:"user_id,omitempty" jsonschema:"tenant whose documents may be returned alongside global ones"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Results []domain.RetrievedChunk `json:"results"`
	Count   int                     `json:"count"`
}

// StatisticsInput is the empty input schema for the statistics tool.
type StatisticsInput struct{}

// ScanInput is the empty input schema for the scan tool.
type ScanInput struct{}

// ScanOutput is the output schema for the scan tool.
type ScanOutput struct {
	FilesSeen    int `json:"files_seen"`
	FilesIndexed int `json:"files_indexed"`
	FilesSkipped int `json:"files_skipped"`
	FilesFailed  int `json:"files_failed"`
	NewChunks    int `json:"new_chunks"`
}

// ScanHistoryInput is the input schema for the scan_history tool.
type ScanHistoryInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of runs to return (default 10)"`
}

// ScanRun describes one background scan.
type ScanRun struct {
	RunID      string    `json:"run_id"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	NewChunks  int       `json:"new_chunks"`
}

// ScanHistoryOutput is the output schema for the scan_history tool.
type ScanHistoryOutput struct {
	Runs []ScanRun `json:"runs"`
}

// defaultHistoryLimit is used when scan_history is called without a limit.
const defaultHistoryLimit = 10

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Retrieve the passages most relevant to a query, optionally limited to one tenant",
	}, s.handleRetrieve)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "statistics",
		Description: "Report how many chunks and files are indexed",
	}, s.handleStatistics)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "scan",
		Description: "Index new or modified files in the upload directory now",
	}, s.handleScan)

	if s.ports.Scheduler != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "scan_history",
			Description: "List recent background scans, newest first",
		}, s.handleScanHistory)
	}
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	req := domain.RetrieveRequest{
		Query:  input.Query,
		K:      input.K,
		UserID: input.UserID,
	}

	results, err := s.ports.Retrieval.Retrieve(ctx, req)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	return nil, RetrieveOutput{Results: results, Count: len(results)}, nil
}

// handleStatistics handles the statistics tool invocation.
func (s *Server) handleStatistics(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ StatisticsInput,
) (*mcp.CallToolResult, domain.Statistics, error) {
	return nil, s.ports.Retrieval.Statistics(ctx), nil
}

// handleScan handles the scan tool invocation.
func (s *Server) handleScan(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ScanInput,
) (*mcp.CallToolResult, ScanOutput, error) {
	report, err := s.ports.Retrieval.Scan(ctx)
	if err != nil {
		return nil, ScanOutput{}, err
	}

	return nil, ScanOutput{
		FilesSeen:    report.FilesSeen,
		FilesIndexed: report.FilesIndexed,
		FilesSkipped: report.FilesSkipped,
		FilesFailed:  report.FilesFailed,
		NewChunks:    report.NewChunks,
	}, nil
}

// handleScanHistory handles the scan_history tool invocation.
func (s *Server) handleScanHistory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ScanHistoryInput,
) (*mcp.CallToolResult, ScanHistoryOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	results, err := s.ports.Scheduler.History(ctx, limit)
	if err != nil {
		return nil, ScanHistoryOutput{}, err
	}

	runs := make([]ScanRun, 0, len(results))
	for _, r := range results {
		runs = append(runs, ScanRun{
			RunID:      r.RunID,
			StartedAt:  r.StartedAt,
			DurationMS: r.Duration().Milliseconds(),
			Success:    r.Success,
			Error:      r.Error,
			NewChunks:  r.ItemsProcessed,
		})
	}
	return nil, ScanHistoryOutput{Runs: runs}, nil
}
