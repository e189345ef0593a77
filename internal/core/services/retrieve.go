package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/docsight-io/docsight-cli/internal/core/domain"
	"github.com/docsight-io/docsight-cli/internal/core/ports/driven"
	"github.com/docsight-io/docsight-cli/internal/core/ports/driving"
	"github.com/docsight-io/docsight-cli/internal/logger"
)

// Ensure RetrieveService implements the interface.
var _ driving.ContextRetriever = (*RetrieveService)(nil)

// NoRelevantContext is returned when retrieval is impossible or yields no
// hits. Callers treat it as "proceed without grounding", never as an error.
const NoRelevantContext = "no relevant context found"

// retrievalThreshold is the minimum cosine similarity for a chunk to be
// considered relevant.
const retrievalThreshold = 0.5

// retrievalLimit caps how many candidates are fetched before budgeting.
const retrievalLimit = 10

// defaultTokenBudget is used when the caller passes a non-positive budget.
const defaultTokenBudget = 2000

// contextSeparator joins the packed chunks in the final context string.
const contextSeparator = "\n\n---\n\n"

// RetrieveService assembles token-budgeted grounding context from the vector
// store. Both collaborators are optional; without them every query returns
// the no-context sentinel.
type RetrieveService struct {
	embedder driven.EmbeddingService
	vectors  driven.VectorStore
}

// NewRetrieveService creates a retrieve service. Both parameters are
// optional (can be nil).
func NewRetrieveService(embedder driven.EmbeddingService, vectors driven.VectorStore) *RetrieveService {
	return &RetrieveService{embedder: embedder, vectors: vectors}
}

// Retrieve embeds the query, searches within scope, and packs the hits into
// a context string bounded by tokenBudget. Failures degrade to the sentinel.
func (s *RetrieveService) Retrieve(
	ctx context.Context, query string, scope driving.RetrievalScope, tokenBudget int,
) (string, error) {
	logger.Section("Context Retrieval")
	logger.Debug("Query: %q, company=%q, source=%q, budget=%d",
		query, scope.CompanyID, scope.SourceType, tokenBudget)

	if s.embedder == nil || s.vectors == nil {
		logger.Debug("Retrieval unavailable: embedder=%t, vector store=%t",
			s.embedder != nil, s.vectors != nil)
		return NoRelevantContext, nil
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return NoRelevantContext, nil
	}

	if tokenBudget <= 0 {
		tokenBudget = defaultTokenBudget
	}

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		logger.Warn("Query embedding failed: %v", err)
		return NoRelevantContext, nil
	}

	hits, err := s.vectors.Search(ctx, embedding, driven.VectorSearchOptions{
		CompanyID:  scope.CompanyID,
		SourceType: scope.SourceType,
		Threshold:  retrievalThreshold,
		Limit:      retrievalLimit,
	})
	if err != nil {
		logger.Warn("Vector search failed: %v", err)
		return NoRelevantContext, nil
	}
	if len(hits) == 0 {
		logger.Debug("No hits above threshold %.2f", retrievalThreshold)
		return NoRelevantContext, nil
	}
	logger.Debug("Candidates: %d", len(hits))

	packed := packByBudget(hits, tokenBudget)
	if len(packed) == 0 {
		logger.Debug("No candidate fits the %d-token budget", tokenBudget)
		return NoRelevantContext, nil
	}

	pieces := make([]string, len(packed))
	for i, c := range packed {
		pieces[i] = fmt.Sprintf("[similarity: %.3f]\n%s", c.Similarity, c.Text)
	}
	logger.Info("Packed %d of %d chunks into context", len(packed), len(hits))
	return strings.Join(pieces, contextSeparator), nil
}

// packByBudget orders candidates by similarity (chunk index breaks ties) and
// greedily takes whole candidates until one would overflow the token budget.
// Chunks are never split, and packing stops at the first overflow rather than
// reaching past it for smaller chunks.
func packByBudget(hits []domain.RetrievedChunk, budget int) []domain.RetrievedChunk {
	sorted := make([]domain.RetrievedChunk, len(hits))
	copy(sorted, hits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Similarity != sorted[j].Similarity {
			return sorted[i].Similarity > sorted[j].Similarity
		}
		return sorted[i].ChunkIndex < sorted[j].ChunkIndex
	})

	var packed []domain.RetrievedChunk
	used := 0
	for _, c := range sorted {
		cost := c.TokenCount
		if cost <= 0 {
			cost = len(c.Text) / 4
		}
		if used+cost > budget {
			break
		}
		packed = append(packed, c)
		used += cost
	}

	return packed
}
