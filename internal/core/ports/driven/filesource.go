package driven

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// WalkFunc is called for every regular file under a walked root.
// Returning an error stops the walk and is returned from Walk.
type WalkFunc func(file domain.FileInfo) error

// FileSource enumerates and reads uploaded documents.
type FileSource interface {
	// Walk visits every regular file under root, recursively.
	// The root directory is created if it does not exist.
	Walk(ctx context.Context, root string, fn WalkFunc) error

	// ReadFile returns the raw bytes of a file found by Walk.
	ReadFile(ctx context.Context, path string) ([]byte, error)
}
