package driven

import (
	"context"

	"github.com/dockeep/dockeep/internal/core/domain"
)

// Classifier infers a title, category, emoji, tags and confidence from a
// document's text preview.
//
// The external model implementation must be treated as unreliable: callers
// fall back to the local keyword heuristic on any failure.
type Classifier interface {
	// Classify categorises the given text preview.
	Classify(ctx context.Context, preview string) (*domain.Classification, error)
}
