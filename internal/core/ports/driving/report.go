package driving

import (
	"context"

	"github.com/docsight-io/docsight-cli/internal/core/domain"
)

// AssembleRequest carries everything the report assembler needs.
type AssembleRequest struct {
	// Fields is the extraction result to build the report from.
	Fields domain.ExtractionResult

	// FieldOrder lists field names in presentation order. Usually the
	// template order.
	FieldOrder []string

	// Sections names the report sections to generate, in order. Unknown
	// section names are silently skipped.
	Sections []string

	// CompanyID scopes retrieval grounding and report persistence.
	// Empty disables both.
	CompanyID string

	// UseRetrieval enables retrieval-augmented grounding when a company
	// scope is present.
	UseRetrieval bool

	// References maps reference file names to their extracted text. Each
	// is truncated by the assembler to bound token usage.
	References map[string]string
}

// ReportAssembler combines extracted fields, retrieved context and reference
// text into one structured report via the language model.
type ReportAssembler interface {
	// Assemble produces the report. When no usable field values exist it
	// returns a deterministic no-data report without calling the model.
	// A model failure is returned as an error for the caller to decide
	// whether to retry.
	Assemble(ctx context.Context, req AssembleRequest) (*domain.Report, error)
}
