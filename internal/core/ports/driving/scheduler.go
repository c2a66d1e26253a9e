package driving

import (
	"context"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Scheduler runs the background directory scan.
type Scheduler interface {
	// Start begins running scheduled tasks.
	// Blocks until context is cancelled or an error occurs.
	Start(ctx context.Context) error

	// Trigger requests an extra run as soon as possible.
	// Requests made while a run is pending are coalesced.
	Trigger()

	// Stop gracefully stops all running tasks.
	Stop() error

	// History returns up to limit recent scan results, newest first.
	// A non-positive limit returns everything retained.
	History(ctx context.Context, limit int) ([]domain.TaskResult, error)
}
