package domain

// Chunk represents a contiguous token-bounded slice of a document's text.
// Consecutive chunks overlap by a configured token count so no semantic unit
// is fully lost at a boundary. Chunks are never mutated after creation.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// Index is the ordinal position within the document.
	Index int

	// StartToken and EndToken are the token offsets of this chunk within
	// the document's tokenisation. EndToken is exclusive.
	StartToken int
	EndToken   int

	// TokenCount is the number of tokens in this chunk. When the tokeniser
	// was unavailable this is an approximation (len(text)/4).
	TokenCount int

	// Text is the decoded chunk text.
	Text string

	// Embedding is the vector representation, set at ingestion time.
	Embedding []float32

	// EmbeddingModel identifies the model that produced the embedding.
	EmbeddingModel string
}

// RetrievedChunk is one ranked similarity-search hit. It is consumed by the
// retriever and never persisted.
type RetrievedChunk struct {
	// Text is the stored chunk text.
	Text string

	// Similarity is the cosine similarity to the query (0-1).
	Similarity float64

	// TokenCount is the stored token count of the chunk.
	TokenCount int

	// ChunkIndex is the chunk's ordinal within its document, used as the
	// deterministic tie-break when similarities are equal.
	ChunkIndex int

	// DocumentID links back to the owning document.
	DocumentID string
}
