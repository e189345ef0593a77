package driven

import (
	"context"

	"github.com/docsight-io/docsight-cli/internal/core/domain"
)

// VectorStore persists chunk embeddings and performs similarity search.
// Writes are append-only batched inserts: there is no update or
// compare-and-swap, duplicate ingestion produces duplicate rows, and a read
// immediately after a write is not guaranteed to see it.
type VectorStore interface {
	// InsertBatch stores a batch of embedding rows.
	InsertBatch(ctx context.Context, rows []VectorRow) error

	// Search returns ranked rows by similarity to the query vector,
	// honouring the threshold, limit, and optional scope filters.
	Search(ctx context.Context, query []float32, opts VectorSearchOptions) ([]domain.RetrievedChunk, error)

	// Ping validates the store is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// VectorRow is one embedding record.
type VectorRow struct {
	// CompanyID scopes the row to its owning company.
	CompanyID string

	// SourceType tags the row as main or reference material.
	SourceType domain.SourceType

	// ChunkIndex is the chunk's ordinal within its document.
	ChunkIndex int

	// Text is the chunk text, truncated by the adapter if the store imposes
	// a length limit.
	Text string

	// Embedding is the vector representation.
	Embedding []float32

	// TokenCount is the chunk's token count, used for retrieval budgeting.
	TokenCount int
}

// VectorSearchOptions configures a similarity search.
type VectorSearchOptions struct {
	// CompanyID restricts results to one company. Empty means no filter.
	CompanyID string

	// SourceType restricts results to main or reference rows. Empty means
	// no filter.
	SourceType domain.SourceType

	// Threshold is the minimum similarity for a row to be returned.
	Threshold float64

	// Limit caps the number of returned rows.
	Limit int
}
