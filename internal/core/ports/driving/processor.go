package driving

import (
	"context"

	"github.com/dockeep/dockeep/internal/core/domain"
)

// ProgressFunc receives batch progress after each completed document,
// as a monotonically non-decreasing fraction in (0,1].
type ProgressFunc func(fraction float64)

// Ingestor brings external files into the library and drives the
// per-document processing state machine.
type Ingestor interface {
	// Ingest copies a file into library storage, fingerprints it
	// best-effort, and creates a Pending record.
	Ingest(ctx context.Context, sourcePath string) (*domain.DocumentRecord, error)

	// ProcessPending sequentially analyses every Pending record in
	// ingestion order. Per-document failures mark that record Error and
	// the batch continues.
	ProcessPending(ctx context.Context, onProgress ProgressFunc) error

	// Reanalyze runs the same per-document pipeline on one existing
	// record, as a single-item batch.
	Reanalyze(ctx context.Context, documentID string) error

	// Cancel requests that the running batch stop at the next document
	// boundary. Remaining documents stay Pending.
	Cancel()
}
