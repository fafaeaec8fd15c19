package extract

import (
	"context"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/dockeep/dockeep/internal/core/ports/driven"
)

// Ensure Plain implements the interface.
var _ driven.TextExtractor = (*Plain)(nil)

// plainPageRunes is how many runes make up one pseudo-page of a plain
// text file. Plain files have no page structure, so extraction windows
// stand in for pages.
const plainPageRunes = 4000

// Plain reads text files directly. It is the fallback extractor, used
// when the PDF reader yields nothing.
type Plain struct{}

// NewPlain creates the plain-text extractor.
func NewPlain() *Plain {
	return &Plain{}
}

// Name identifies the extractor in logs.
func (e *Plain) Name() string {
	return "plaintext"
}

// ExtractPages splits the file into pseudo-pages of plainPageRunes runes,
// returning at most maxPages of them. Binary content yields no pages;
// that is not an error.
func (e *Plain) ExtractPages(ctx context.Context, storedPath string, maxPages int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(storedPath)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, nil
	}

	runes := []rune(string(data))
	var pages []string
	for start := 0; start < len(runes) && len(pages) < maxPages; start += plainPageRunes {
		end := start + plainPageRunes
		if end > len(runes) {
			end = len(runes)
		}
		pages = append(pages, string(runes[start:end]))
	}

	return pages, nil
}
