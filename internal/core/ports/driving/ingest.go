package driving

import (
	"context"

	"github.com/docsight-io/docsight-cli/internal/core/domain"
)

// IngestOptions configures one ingestion run.
type IngestOptions struct {
	// CompanyID attaches the document to an existing company. Empty creates
	// a new company record.
	CompanyID string

	// SourceType marks the document as main or reference material.
	// Defaults to main.
	SourceType domain.SourceType

	// ForceOCR skips the native text layer and goes straight to the
	// document-parse service.
	ForceOCR bool

	// MaxPages bounds native text extraction. Zero means the configured
	// default.
	MaxPages int
}

// IngestFile is one input to a batch ingestion.
type IngestFile struct {
	// Name is the original file name, recorded on the document.
	Name string

	// Data is the raw file bytes.
	Data []byte
}

// IngestResult is the per-item outcome of an ingestion. In a batch, every
// input produces exactly one result; a failed item never aborts the others.
type IngestResult struct {
	// Name echoes the input file name.
	Name string

	// DocumentID is the stored document, empty on failure.
	DocumentID string

	// CompanyID is the owning company, empty on failure.
	CompanyID string

	// PageCount is the number of pages parsed.
	PageCount int

	// ChunkCount is the number of chunks produced.
	ChunkCount int

	// EmbeddingsStored reports whether vectors reached the vector store.
	// False when the embedding service or vector store was unavailable.
	EmbeddingsStored bool

	// Err is the failure for this item, nil on success.
	Err error
}

// IngestService runs the ingestion pipeline: parse, persist, chunk, embed,
// store vectors.
type IngestService interface {
	// Ingest processes a single file.
	Ingest(ctx context.Context, file IngestFile, opts IngestOptions) IngestResult

	// IngestBatch processes files sequentially with per-item isolation:
	// the result slice always has one entry per input.
	IngestBatch(ctx context.Context, files []IngestFile, opts IngestOptions) []IngestResult
}
