// Package domain defines the core business entities for the retrieval service.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Chunk: A bounded passage of indexed text and its provenance
//   - Fingerprint: The identity of one version of a file on disk
//   - RetrievedChunk: The outward-facing shape of a query hit
//   - EmbeddingMode: The process-wide choice between vector and keyword ranking
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
