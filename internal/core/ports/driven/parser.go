package driven

import (
	"context"

	"github.com/docsight-io/docsight-cli/internal/core/domain"
)

// NativeExtractor extracts the embedded text layer from document bytes.
// This is the first rung of the parse ladder: it is cheap, local, and
// sufficient for born-digital PDFs.
type NativeExtractor interface {
	// ExtractText returns the text layer and the number of pages read,
	// bounded by maxPages. Scanned documents typically return very little
	// text; the parse service decides whether to escalate.
	ExtractText(ctx context.Context, data []byte, maxPages int) (string, int, error)
}

// DocumentParser wraps the remote document-parse/OCR service. It returns raw
// text plus structured elements (tables, charts, headings) with page
// attribution. Optional - when nil, scanned documents fall back to local OCR.
type DocumentParser interface {
	// Parse submits document bytes for structuring.
	Parse(ctx context.Context, data []byte, opts ParseOptions) (*ParseResult, error)

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ParseOptions controls a remote parse request.
type ParseOptions struct {
	// ForceOCR requests OCR even when a text layer exists, enabling table
	// structure recognition on image-based pages.
	ForceOCR bool

	// Formats lists the requested output representations, e.g.
	// "text", "html", "markdown". Empty means the service default.
	Formats []string

	// Coordinates requests bounding-box metadata for each element.
	Coordinates bool
}

// ParseResult is the structured output of a remote parse.
type ParseResult struct {
	// Text is the full extracted text.
	Text string

	// PageCount is the number of pages the service processed.
	PageCount int

	// Elements are the structured elements in document order.
	Elements []domain.Element
}

// PageImage is a rendered page bitmap handed to the OCR engine.
// Pixels are 8-bit RGB with no alpha channel, row-major.
type PageImage struct {
	Width  int
	Height int
	Pixels []byte
}

// PageRenderer rasterises document pages for the local OCR fallback.
type PageRenderer interface {
	// PageCount reports the number of pages in the document.
	PageCount(ctx context.Context, data []byte) (int, error)

	// Render rasterises the given 0-based page at the given scale factor.
	Render(ctx context.Context, data []byte, page int, scale float64) (*PageImage, error)
}

// OCREngine recognises text on a rendered page bitmap. It is the last rung
// of the parse ladder, injected explicitly so tests can substitute a stub.
type OCREngine interface {
	// RecognisePage returns the recognised text fragments for one page,
	// joined with newlines, for the given language set.
	RecognisePage(ctx context.Context, img *PageImage, languages []string) (string, error)
}
