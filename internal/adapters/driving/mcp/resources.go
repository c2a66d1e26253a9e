package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// uriScheme is the custom URI scheme for resources.
const uriScheme = "sercha-rag://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "statistics",
		Name:        "statistics",
		Description: "Index statistics: chunk and file counts and the upload directory",
		MIMEType:    "application/json",
	}, s.handleStatisticsResource)
}

// handleStatisticsResource returns the current index statistics as JSON.
func (s *Server) handleStatisticsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(s.ports.Retrieval.Statistics(ctx), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling statistics: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
