package driving

import (
	"context"

	"github.com/docsight-io/docsight-cli/internal/core/domain"
)

// ParseRequest configures one document parse.
type ParseRequest struct {
	// Data is the raw document bytes.
	Data []byte

	// ForceOCR escalates straight to the document-parse service, enabling
	// table structure recognition even when a text layer exists.
	ForceOCR bool

	// MaxPages bounds native text extraction. Zero means the configured
	// default.
	MaxPages int
}

// ParseOutcome is the result of running the parse ladder. A parse that
// failed at every rung yields empty Text and zero PageCount; callers treat
// empty text as a hard failure for ingestion.
type ParseOutcome struct {
	// Text is the extracted text with page markers.
	Text string

	// PageCount is the number of pages processed.
	PageCount int

	// Elements are structured elements, present only when the remote
	// document-parse service handled the request.
	Elements []domain.Element
}

// ParseService runs the document parse fallback ladder: native text layer,
// then the remote document-parse service, then local OCR over rendered
// pages. It never returns an error; failure collapses to an empty outcome.
type ParseService interface {
	Parse(ctx context.Context, req ParseRequest) *ParseOutcome
}
