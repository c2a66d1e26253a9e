package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Scanner walks the upload directory and inserts new file versions.
type Scanner struct {
	source      driven.FileSource
	normalisers driven.NormaliserRegistry
	store       driven.ChunkStore
	docs        driving.DocumentService
}

// NewScanner creates a new scanner. Only files a normaliser supports are indexed.
func NewScanner(
	source driven.FileSource,
	normalisers driven.NormaliserRegistry,
	store driven.ChunkStore,
	docs driving.DocumentService,
) *Scanner {
	return &Scanner{
		source:      source,
		normalisers: normalisers,
		store:       store,
		docs:        docs,
	}
}

// Scan indexes every new supported file under root and returns the number of new chunks.
func (s *Scanner) Scan(ctx context.Context, root string) (int, error) {
	report, err := s.ScanWithReport(ctx, root)
	return report.NewChunks, err
}

// ScanWithReport indexes every new supported file under root.
// Per-file failures are logged and counted, never returned.
// An error is returned only if the walk itself fails or ctx is cancelled.
func (s *Scanner) ScanWithReport(ctx context.Context, root string) (domain.ScanReport, error) {
	var report domain.ScanReport
	logger.Section("Scan " + root)

	err := s.source.Walk(ctx, root, func(file domain.FileInfo) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		report.FilesSeen++

		n, err := s.scanFile(ctx, file)
		switch {
		case errors.Is(err, errSkipped), errors.Is(err, domain.ErrUnsupportedFileType):
			report.FilesSkipped++
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			report.FilesFailed++
			logger.Error("error processing %s: %v", file.Source, err)
		default:
			report.FilesIndexed++
			report.NewChunks += n
			logger.Info("indexed %s (%d chunks)", file.Source, n)
		}
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("scan %s: %w", root, err)
	}

	if report.NewChunks > 0 {
		logger.Info("total new chunks indexed: %d", report.NewChunks)
	}
	logger.Debug("scan of %s: seen=%d indexed=%d skipped=%d failed=%d",
		root, report.FilesSeen, report.FilesIndexed, report.FilesSkipped, report.FilesFailed)

	return report, nil
}

// errSkipped marks a file that needs no work: already indexed or blank.
var errSkipped = errors.New("skipped")

func (s *Scanner) scanFile(ctx context.Context, file domain.FileInfo) (int, error) {
	normaliser, ok := s.normalisers.Get(file.Name)
	if !ok {
		return 0, domain.ErrUnsupportedFileType
	}

	fp := file.Fingerprint()
	if s.store.HasFingerprint(ctx, fp) {
		return 0, errSkipped
	}

	raw, err := s.source.ReadFile(ctx, file.Path)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrFileRead, err)
	}

	text, err := normaliser.Normalise(ctx, raw)
	if err != nil {
		return 0, fmt.Errorf("normalise: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		// Not recorded, so the file is picked up once it has content
		return 0, errSkipped
	}

	n, err := s.docs.Insert(ctx, text, file.Source, fp)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		// Another pass indexed this version first
		return 0, errSkipped
	}
	return n, nil
}
