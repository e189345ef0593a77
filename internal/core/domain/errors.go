package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrLLMUnavailable indicates the language-model service is not
	// configured or unreachable. Extraction degrades to the local keyword
	// fallback; report assembly fails.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. Ingestion stores the document without vectors and
	// retrieval is disabled.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorStoreUnavailable indicates the vector store is not
	// configured. Retrieval-grounded report assembly is disabled.
	ErrVectorStoreUnavailable = errors.New("vector store unavailable")

	// ErrParserUnavailable indicates the remote document-parse service is
	// not configured or unreachable.
	ErrParserUnavailable = errors.New("document parser unavailable")

	// ErrOCRUnavailable indicates the local OCR fallback is not configured.
	ErrOCRUnavailable = errors.New("OCR engine unavailable")

	// ErrEmptyDocument indicates parsing produced no text at all. This is a
	// hard failure for ingestion.
	ErrEmptyDocument = errors.New("no text could be extracted from document")

	// ErrNoExtractedData indicates report assembly was requested with no
	// usable (non-sentinel) field values.
	ErrNoExtractedData = errors.New("no extracted data available")
)
