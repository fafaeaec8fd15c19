package driving

import (
	"context"

	"github.com/dockeep/dockeep/internal/core/domain"
)

// Library manages the document collection outside the processing pipeline.
type Library interface {
	// List returns all records sorted by creation time.
	List(ctx context.Context) ([]domain.DocumentRecord, error)

	// Get retrieves a record by ID.
	Get(ctx context.Context, documentID string) (*domain.DocumentRecord, error)

	// Rename changes a document's display name and stored file name.
	Rename(ctx context.Context, documentID, newName string) error

	// Delete removes the record, its chunks, and the stored bytes.
	Delete(ctx context.Context, documentID string) error

	// PruneOrphans deletes stored files that no record references,
	// returning how many were removed. Per-file failures are skipped.
	PruneOrphans(ctx context.Context) (int, error)
}
