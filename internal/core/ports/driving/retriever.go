package driving

import (
	"context"

	"github.com/dockeep/dockeep/internal/core/domain"
)

// Retriever answers semantic queries over the indexed library.
type Retriever interface {
	// Retrieve returns the chunks most similar to the query, best first.
	// Returns an empty list when the embedding provider is unavailable.
	Retrieve(ctx context.Context, query string, opts domain.RetrieveOptions) ([]domain.RetrievalHit, error)
}

// DuplicateScanner runs the multi-tier duplicate detection pipeline.
type DuplicateScanner interface {
	// Scan recomputes duplicate groups from scratch over the whole
	// library.
	Scan(ctx context.Context) (*domain.ScanResult, error)

	// Clean re-runs detection and deletes every delete candidate,
	// returning the count actually deleted.
	Clean(ctx context.Context) (int, error)
}
