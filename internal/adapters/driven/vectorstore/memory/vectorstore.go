// Package memory provides an in-memory vector store with brute-force cosine
// similarity search. Used for testing and for running without a remote
// vector backend.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/docsight-io/docsight-cli/internal/core/domain"
	"github.com/docsight-io/docsight-cli/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory implementation of driven.VectorStore.
type VectorStore struct {
	mu   sync.RWMutex
	rows []driven.VectorRow
}

// NewVectorStore creates a new in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{}
}

// InsertBatch appends rows. Duplicate inserts produce duplicate rows, the
// same as the remote backend.
func (s *VectorStore) InsertBatch(_ context.Context, rows []driven.VectorRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, rows...)
	return nil
}

// Search scans all rows, scoring by cosine similarity.
func (s *VectorStore) Search(
	_ context.Context, query []float32, opts driven.VectorSearchOptions,
) ([]domain.RetrievedChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []domain.RetrievedChunk
	for _, row := range s.rows {
		if opts.CompanyID != "" && row.CompanyID != opts.CompanyID {
			continue
		}
		if opts.SourceType != "" && row.SourceType != opts.SourceType {
			continue
		}

		sim := cosineSimilarity(query, row.Embedding)
		if sim < opts.Threshold {
			continue
		}

		results = append(results, domain.RetrievedChunk{
			Text:       row.Text,
			Similarity: sim,
			TokenCount: row.TokenCount,
			ChunkIndex: row.ChunkIndex,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}

	return results, nil
}

// Ping always succeeds.
func (s *VectorStore) Ping(_ context.Context) error {
	return nil
}

// Close releases nothing.
func (s *VectorStore) Close() error {
	return nil
}

// Len returns the number of stored rows.
func (s *VectorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched lengths or zero vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
