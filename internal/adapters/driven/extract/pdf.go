// Package extract provides the text extractors tried during document
// analysis: a PDF page reader and a plain-text fallback.
package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/dockeep/dockeep/internal/core/ports/driven"
)

// Ensure PDF implements the interface.
var _ driven.TextExtractor = (*PDF)(nil)

// PDF extracts page text from PDF documents. It is the primary extractor.
type PDF struct{}

// NewPDF creates the PDF extractor.
func NewPDF() *PDF {
	return &PDF{}
}

// Name identifies the extractor in logs.
func (e *PDF) Name() string {
	return "pdf"
}

// ExtractPages returns up to maxPages page texts in page order. Pages the
// reader cannot decode contribute empty strings; a document that is not a
// PDF at all returns an error, which callers treat as "try the fallback".
func (e *PDF) ExtractPages(ctx context.Context, storedPath string, maxPages int) ([]string, error) {
	f, reader, err := pdf.Open(storedPath)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	total := reader.NumPage()
	if total > maxPages {
		total = maxPages
	}

	pages := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Malformed page, not a malformed document
			pages = append(pages, "")
			continue
		}
		pages = append(pages, strings.TrimSpace(text))
	}

	return pages, nil
}
