package services

import (
	"context"
	"strings"

	"github.com/docsight-io/docsight-cli/internal/core/domain"
	"github.com/docsight-io/docsight-cli/internal/core/ports/driven"
	"github.com/docsight-io/docsight-cli/internal/core/ports/driving"
)

// --- Mock implementations shared across service tests ---

// mockLLM implements driven.LLMService with a scripted response.
type mockLLM struct {
	response string
	err      error

	chatCalls    int
	lastMessages []driven.ChatMessage
	lastOpts     driven.ChatOptions
}

func (m *mockLLM) Generate(_ context.Context, _ string, _ driven.GenerateOptions) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLM) Chat(_ context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	m.chatCalls++
	m.lastMessages = messages
	m.lastOpts = opts
	if m.err != nil {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// userPrompt returns the content of the last user message sent to Chat.
func (m *mockLLM) userPrompt() string {
	for _, msg := range m.lastMessages {
		if msg.Role == "user" {
			return msg.Content
		}
	}
	return ""
}

// mockEmbedder implements driven.EmbeddingService for testing.
type mockEmbedder struct {
	embedding []float32
	err       error

	embedCalls int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	m.embedCalls++
	if m.err != nil {
		return nil, m.err
	}
	return m.embedding, nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.embedCalls++
	if m.err != nil {
		return nil, m.err
	}
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = m.embedding
	}
	return result, nil
}

func (m *mockEmbedder) Dimensions() int              { return len(m.embedding) }
func (m *mockEmbedder) ModelName() string            { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockVectorStore implements driven.VectorStore with canned search hits.
type mockVectorStore struct {
	hits      []domain.RetrievedChunk
	searchErr error
	insertErr error

	inserted []driven.VectorRow
	lastOpts driven.VectorSearchOptions
}

func (m *mockVectorStore) InsertBatch(_ context.Context, rows []driven.VectorRow) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.inserted = append(m.inserted, rows...)
	return nil
}

func (m *mockVectorStore) Search(_ context.Context, _ []float32, opts driven.VectorSearchOptions) ([]domain.RetrievedChunk, error) {
	m.lastOpts = opts
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if opts.Limit > 0 && len(m.hits) > opts.Limit {
		return m.hits[:opts.Limit], nil
	}
	return m.hits, nil
}

func (m *mockVectorStore) Ping(_ context.Context) error { return nil }
func (m *mockVectorStore) Close() error                 { return nil }

// stubParser implements driving.ParseService with per-call outcomes keyed by
// a marker in the input bytes.
type stubParser struct {
	outcomes map[string]*driving.ParseOutcome
	lastReq  driving.ParseRequest
}

func (s *stubParser) Parse(_ context.Context, req driving.ParseRequest) *driving.ParseOutcome {
	s.lastReq = req
	if out, ok := s.outcomes[string(req.Data)]; ok {
		return out
	}
	return &driving.ParseOutcome{}
}

// stubRetriever implements driving.ContextRetriever with canned responses
// keyed by query substring.
type stubRetriever struct {
	responses map[string]string
	queries   []string
}

func (s *stubRetriever) Retrieve(_ context.Context, query string, _ driving.RetrievalScope, _ int) (string, error) {
	s.queries = append(s.queries, query)
	for key, resp := range s.responses {
		if strings.Contains(query, key) {
			return resp, nil
		}
	}
	return NoRelevantContext, nil
}

// dictEncoder is a deterministic word-level Encoder for chunker stubs.
type dictEncoder struct {
	words []string
	index map[string]int
}

func newDictEncoder() *dictEncoder {
	return &dictEncoder{index: make(map[string]int)}
}

func (e *dictEncoder) Encode(text string) []int {
	fields := strings.Fields(text)
	tokens := make([]int, 0, len(fields))
	for _, w := range fields {
		id, ok := e.index[w]
		if !ok {
			id = len(e.words)
			e.words = append(e.words, w)
			e.index[w] = id
		}
		tokens = append(tokens, id)
	}
	return tokens
}

func (e *dictEncoder) Decode(tokens []int) string {
	words := make([]string, 0, len(tokens))
	for _, id := range tokens {
		if id >= 0 && id < len(e.words) {
			words = append(words, e.words[id])
		}
	}
	return strings.Join(words, " ")
}
