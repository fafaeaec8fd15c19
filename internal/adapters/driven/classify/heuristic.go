// Package classify provides document categorisation: an adapter for an
// OpenAI-compatible chat model and the local keyword heuristic it falls
// back to.
package classify

import (
	"context"
	"strings"

	"github.com/dockeep/dockeep/internal/core/domain"
	"github.com/dockeep/dockeep/internal/core/ports/driven"
)

// Ensure Heuristic implements the interface.
var _ driven.Classifier = (*Heuristic)(nil)

// heuristicConfidence is deliberately low; keyword matching is a guess.
const heuristicConfidence = 0.3

// Heuristic is the local fallback classifier: keyword matching on the
// preview, with the first non-empty line as the title. It never fails.
type Heuristic struct{}

// NewHeuristic creates the heuristic classifier.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

// Classify categorises the preview by keyword. The error is always nil.
func (h *Heuristic) Classify(_ context.Context, preview string) (*domain.Classification, error) {
	lower := strings.ToLower(preview)

	cls := &domain.Classification{
		Title:      firstLine(preview),
		Category:   domain.FallbackCategory,
		Emoji:      domain.FallbackEmoji,
		Confidence: heuristicConfidence,
	}

	switch {
	case strings.Contains(lower, "abstract") && strings.Contains(lower, "introduction"):
		cls.Category = "Scientific Paper"
		cls.Emoji = "🔬"
		cls.Tags = []string{"paper", "research"}
	case strings.Contains(lower, "receipt") || strings.Contains(lower, "total"):
		cls.Category = "Receipt"
		cls.Emoji = "🧾"
		cls.Tags = []string{"receipt", "finance"}
	}

	return cls, nil
}

// firstLine returns the first non-empty line of text, trimmed, bounded to
// a sensible title length.
func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		const maxTitle = 120
		runes := []rune(line)
		if len(runes) > maxTitle {
			return string(runes[:maxTitle])
		}
		return line
	}
	return ""
}
