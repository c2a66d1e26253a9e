package mcp

import (
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Retrieval answers queries and reports index statistics.
	Retrieval driving.RetrievalService

	// Scheduler reports background scan history. Optional: the scan_history
	// tool is only registered when it is set.
	Scheduler driving.Scheduler
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
