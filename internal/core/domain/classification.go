package domain

// Classification is the result of categorising a document from its text
// preview, produced either by the external model or the local heuristic.
type Classification struct {
	// Title is the inferred human-readable title.
	Title string

	// Category is the inferred category name.
	Category string

	// Emoji is a single-glyph visual hint for the category.
	Emoji string

	// Tags are up to five suggested labels.
	Tags []string

	// Confidence is the classifier's confidence in [0,1].
	Confidence float64
}

// Fallback values used when a document cannot be analysed at all.
const (
	FallbackCategory = "Uncategorized"
	FallbackEmoji    = "📄"
)
