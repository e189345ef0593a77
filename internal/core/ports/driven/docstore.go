package driven

import (
	"context"

	"github.com/docsight-io/docsight-cli/internal/core/domain"
)

// DocumentStore persists companies, documents, chunks, extracted fields and
// reports. Backed by SQLite for metadata storage.
type DocumentStore interface {
	// SaveCompany stores a company record.
	SaveCompany(ctx context.Context, company *domain.Company) error

	// GetCompany retrieves a company by ID.
	GetCompany(ctx context.Context, id string) (*domain.Company, error)

	// ListCompanies returns stored companies, newest first.
	ListCompanies(ctx context.Context, limit int) ([]domain.Company, error)

	// SaveDocument stores a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// ListDocuments returns documents for a company.
	ListDocuments(ctx context.Context, companyID string) ([]domain.Document, error)

	// SaveChunks stores chunks for a document.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetChunks retrieves all chunks for a document, ordered by index.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// SaveFields persists extracted field values for a company, honouring
	// the merge rule: an existing real value is never overwritten by a
	// sentinel or blank value.
	SaveFields(ctx context.Context, companyID string, fields domain.ExtractionResult) error

	// GetFields retrieves the stored field map for a company.
	GetFields(ctx context.Context, companyID string) (domain.ExtractionResult, error)

	// SaveReport stores an assembled report.
	SaveReport(ctx context.Context, report *domain.Report) error

	// DeleteDocument removes a document and its chunks.
	DeleteDocument(ctx context.Context, id string) error
}
