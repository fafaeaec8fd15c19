package driven

import "context"

// TextExtractor pulls text out of a stored document, page by page.
// Two independent implementations are tried in sequence (primary, then
// fallback); either may legitimately return no text for a given document.
type TextExtractor interface {
	// Name identifies the extractor in logs.
	Name() string

	// ExtractPages returns up to maxPages page texts from the stored
	// file, in page order. An empty result is not an error; it means
	// this extractor cannot read the document.
	ExtractPages(ctx context.Context, storedPath string, maxPages int) ([]string, error)
}
