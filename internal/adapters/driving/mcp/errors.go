// Package mcp provides an MCP (Model Context Protocol) server adapter for the retrieval service.
// It lets AI assistants query indexed documents as tools instead of over plain HTTP.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")
