package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/docsight-io/docsight-cli/internal/core/ports/driven"
	"github.com/docsight-io/docsight-cli/internal/core/ports/driving"
	"github.com/docsight-io/docsight-cli/internal/logger"
)

// Ensure ParseService implements the interface.
var _ driving.ParseService = (*ParseService)(nil)

// minNativeChars is the minimum amount of text the native layer must yield
// before it is trusted. Scanned documents typically produce less; anything
// below this escalates to the next ladder rung.
const minNativeChars = 100

// defaultMaxPages bounds native text extraction when the caller does not set
// a limit.
const defaultMaxPages = 5

// ocrRenderScale is the rasterisation scale for the local OCR fallback.
// Doubling the resolution measurably improves recognition on dense tables.
const ocrRenderScale = 2.0

// remoteParseTimeout bounds one remote document-parse request.
const remoteParseTimeout = 60 * time.Second

// ocrPageTimeout bounds recognition of a single rendered page.
const ocrPageTimeout = 30 * time.Second

// ParseService implements the document parse fallback ladder: native text
// layer, remote document-parse service, local OCR over rendered pages. Every
// collaborator is optional; a rung whose collaborator is nil is skipped.
type ParseService struct {
	native    driven.NativeExtractor
	parser    driven.DocumentParser
	renderer  driven.PageRenderer
	ocr       driven.OCREngine
	languages []string
}

// NewParseService creates a parse service. All collaborators are optional
// (can be nil); with none available every parse yields an empty outcome.
func NewParseService(
	native driven.NativeExtractor,
	parser driven.DocumentParser,
	renderer driven.PageRenderer,
	ocr driven.OCREngine,
) *ParseService {
	return &ParseService{
		native:    native,
		parser:    parser,
		renderer:  renderer,
		ocr:       ocr,
		languages: []string{"eng"},
	}
}

// SetLanguages overrides the OCR language set.
func (s *ParseService) SetLanguages(languages []string) {
	if len(languages) > 0 {
		s.languages = languages
	}
}

// Parse runs the ladder. It never returns an error: a document that defeats
// every rung produces an empty outcome, which callers treat as a failed
// parse.
func (s *ParseService) Parse(ctx context.Context, req driving.ParseRequest) *driving.ParseOutcome {
	logger.Section("Document Parse")
	logger.Debug("Input: %d bytes, forceOCR=%t", len(req.Data), req.ForceOCR)

	if len(req.Data) == 0 {
		logger.Warn("Empty input, nothing to parse")
		return &driving.ParseOutcome{}
	}

	maxPages := req.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	// Rung 1: native text layer. Skipped when OCR is forced, since the
	// caller wants table structure recognition regardless of text presence.
	if !req.ForceOCR {
		if outcome := s.tryNative(ctx, req.Data, maxPages); outcome != nil {
			return outcome
		}
	}

	// Rung 2: remote document-parse service.
	if outcome := s.tryRemote(ctx, req.Data); outcome != nil {
		return outcome
	}

	// Rung 3: local OCR over rendered pages.
	if outcome := s.tryLocalOCR(ctx, req.Data); outcome != nil {
		return outcome
	}

	logger.Warn("All parse rungs failed, returning empty outcome")
	return &driving.ParseOutcome{}
}

// tryNative extracts the embedded text layer. Returns nil to escalate.
func (s *ParseService) tryNative(ctx context.Context, data []byte, maxPages int) *driving.ParseOutcome {
	if s.native == nil {
		logger.Debug("Native extractor unavailable, escalating")
		return nil
	}

	text, pages, err := s.native.ExtractText(ctx, data, maxPages)
	if err != nil {
		logger.Warn("Native extraction failed: %v, escalating", err)
		return nil
	}

	if len(strings.TrimSpace(text)) < minNativeChars {
		logger.Info("Native text layer too thin (%d chars < %d), escalating",
			len(strings.TrimSpace(text)), minNativeChars)
		return nil
	}

	logger.Info("Native extraction: %d chars over %d pages", len(text), pages)
	return &driving.ParseOutcome{Text: text, PageCount: pages}
}

// tryRemote submits the document to the remote parse service. Returns nil to
// escalate.
func (s *ParseService) tryRemote(ctx context.Context, data []byte) *driving.ParseOutcome {
	if s.parser == nil {
		logger.Debug("Document-parse service unavailable, escalating")
		return nil
	}

	reqCtx, cancel := context.WithTimeout(ctx, remoteParseTimeout)
	defer cancel()

	result, err := s.parser.Parse(reqCtx, data, driven.ParseOptions{
		ForceOCR: true,
		Formats:  []string{"text", "html", "markdown"},
	})
	if err != nil {
		logger.Warn("Remote parse failed: %v, escalating", err)
		return nil
	}

	if strings.TrimSpace(result.Text) == "" {
		logger.Warn("Remote parse returned no text, escalating")
		return nil
	}

	logger.Info("Remote parse: %d chars, %d pages, %d elements",
		len(result.Text), result.PageCount, len(result.Elements))
	return &driving.ParseOutcome{
		Text:      result.Text,
		PageCount: result.PageCount,
		Elements:  result.Elements,
	}
}

// tryLocalOCR rasterises pages and recognises them one at a time. Pages that
// fail individually are skipped; the outcome carries whatever was recognised.
func (s *ParseService) tryLocalOCR(ctx context.Context, data []byte) *driving.ParseOutcome {
	if s.renderer == nil || s.ocr == nil {
		logger.Debug("Local OCR unavailable (renderer=%t, engine=%t)",
			s.renderer != nil, s.ocr != nil)
		return nil
	}

	pageCount, err := s.renderer.PageCount(ctx, data)
	if err != nil {
		logger.Warn("Page count failed: %v", err)
		return nil
	}
	logger.Debug("Local OCR: %d pages at scale %.1f", pageCount, ocrRenderScale)

	var sb strings.Builder
	recognised := 0
	for page := 0; page < pageCount; page++ {
		text, err := s.ocrPage(ctx, data, page)
		if err != nil {
			logger.Warn("OCR page %d failed: %v, skipping", page+1, err)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		fmt.Fprintf(&sb, "=== Page %d ===\n%s\n", page+1, text)
		recognised++
	}

	if sb.Len() == 0 {
		logger.Warn("Local OCR recognised no text")
		return nil
	}

	logger.Info("Local OCR: %d of %d pages recognised", recognised, pageCount)
	return &driving.ParseOutcome{Text: sb.String(), PageCount: pageCount}
}

// ocrPage renders and recognises a single page under its own timeout.
func (s *ParseService) ocrPage(ctx context.Context, data []byte, page int) (string, error) {
	pageCtx, cancel := context.WithTimeout(ctx, ocrPageTimeout)
	defer cancel()

	img, err := s.renderer.Render(pageCtx, data, page, ocrRenderScale)
	if err != nil {
		return "", fmt.Errorf("render: %w", err)
	}

	text, err := s.ocr.RecognisePage(pageCtx, img, s.languages)
	if err != nil {
		return "", fmt.Errorf("recognise: %w", err)
	}

	return text, nil
}
