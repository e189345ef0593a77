package driving

import (
	"context"

	"github.com/docsight-io/docsight-cli/internal/core/domain"
)

// FieldExtractor turns raw document text and an extraction template into a
// complete name-to-value map. Every requested field is present in the
// result; unresolved fields carry the domain.NoData sentinel.
type FieldExtractor interface {
	// Extract resolves all template fields in one batched model call, with
	// a deterministic local fallback when the model is unavailable.
	Extract(ctx context.Context, text string, template *domain.Template, elements []domain.Element) (domain.ExtractionResult, error)

	// ExtractInto resolves only the template fields missing from existing
	// and merges the new values in. Fields that already hold real values
	// are never re-extracted or overwritten.
	ExtractInto(ctx context.Context, text string, template *domain.Template, elements []domain.Element, existing domain.ExtractionResult) (domain.ExtractionResult, error)
}

// ContextRetriever assembles a token-budgeted grounding context for a query
// from previously stored document chunks.
type ContextRetriever interface {
	// Retrieve embeds the query, searches the vector store within the given
	// scope, and packs the top hits into a context string whose total token
	// count never exceeds tokenBudget. When retrieval is impossible it
	// returns the "no relevant context found" sentinel, not an error.
	Retrieve(ctx context.Context, query string, scope RetrievalScope, tokenBudget int) (string, error)
}

// RetrievalScope restricts retrieval to a company and optionally a source
// type. The zero value means no restriction.
type RetrievalScope struct {
	CompanyID  string
	SourceType domain.SourceType
}
