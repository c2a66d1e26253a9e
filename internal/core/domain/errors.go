package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrProviderUnavailable indicates the embedding capability could not be reached.
	// It downgrades the process to keyword mode and is never fatal.
	ErrProviderUnavailable = errors.New("embedding provider unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrFileRead indicates a single file could not be read during a scan.
	// The scan skips the file and continues.
	ErrFileRead = errors.New("file read error")

	// ErrUnsupportedFileType indicates a file extension the scanner does not index.
	// Scanners treat it as a silent skip, not a failure.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrMalformedRequest indicates a query request body that could not be decoded.
	ErrMalformedRequest = errors.New("malformed request")
)
