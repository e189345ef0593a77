// Package pdftext extracts the embedded text layer from PDF bytes.
// It is the first rung of the parse ladder: fast, local, and sufficient for
// born-digital documents. Scanned documents yield little or no text here and
// escalate to the remote document-parse service.
package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/docsight-io/docsight-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.NativeExtractor = (*Extractor)(nil)

// Extractor reads the PDF text layer.
type Extractor struct{}

// New creates a new PDF text extractor.
func New() *Extractor {
	return &Extractor{}
}

// ExtractText returns the text layer of up to maxPages pages, with a
// "=== Page N ===" marker preceding each page. Pages that fail to decode
// individually are skipped.
func (e *Extractor) ExtractText(ctx context.Context, data []byte, maxPages int) (string, int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, fmt.Errorf("open pdf: %w", err)
	}

	total := reader.NumPage()
	pages := total
	if maxPages > 0 && pages > maxPages {
		pages = maxPages
	}

	var sb strings.Builder
	for i := 1; i <= pages; i++ {
		if err := ctx.Err(); err != nil {
			return "", 0, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		fmt.Fprintf(&sb, "=== Page %d ===\n%s\n", i, text)
	}

	return sb.String(), pages, nil
}

// PageCount reports the total number of pages in the document.
func (e *Extractor) PageCount(data []byte) (int, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	return reader.NumPage(), nil
}
