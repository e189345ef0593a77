// Package supabase provides a VectorStore adapter backed by a Supabase
// (PostgREST + pgvector) instance. Rows are inserted through the REST
// endpoint and searched through a match_documents RPC function.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/docsight-io/docsight-cli/internal/core/domain"
	"github.com/docsight-io/docsight-cli/internal/core/ports/driven"
	"github.com/docsight-io/docsight-cli/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultTable   = "document_embeddings"
	DefaultRPC     = "match_documents"
	DefaultTimeout = 30 * time.Second

	// maxTextLength bounds stored chunk text, in runes. Longer text is
	// truncated on insert; the source of truth stays in the document store.
	maxTextLength = 5000
)

// Config holds configuration for the Supabase vector store.
type Config struct {
	// URL is the Supabase project URL (required).
	URL string

	// APIKey is the service or anon key (required).
	APIKey string

	// Table is the embeddings table name (default: document_embeddings).
	Table string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Store talks to the Supabase REST API.
type Store struct {
	client *http.Client
	url    string
	apiKey string
	table  string
}

// insertRow is the REST insert payload for one embedding.
type insertRow struct {
	CompanyID  string    `json:"company_id"`
	SourceType string    `json:"source_type"`
	ChunkIndex int       `json:"chunk_index"`
	Text       string    `json:"chunk_text"`
	Embedding  []float32 `json:"embedding"`
	TokenCount int       `json:"token_count"`
}

// matchRequest is the match_documents RPC payload.
type matchRequest struct {
	QueryEmbedding   []float32 `json:"query_embedding"`
	MatchThreshold   float64   `json:"match_threshold"`
	MatchCount       int       `json:"match_count"`
	FilterCompanyID  string    `json:"filter_company_id,omitempty"`
	FilterSourceType string    `json:"filter_source_type,omitempty"`
}

// matchRow is one match_documents result row.
type matchRow struct {
	Text       string  `json:"chunk_text"`
	Similarity float64 `json:"similarity"`
	ChunkIndex int     `json:"chunk_index"`
	TokenCount int     `json:"token_count"`
	DocumentID string  `json:"document_id"`
}

// New creates a new Supabase vector store.
func New(cfg Config) (*Store, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("supabase: URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("supabase: API key is required")
	}
	if cfg.Table == "" {
		cfg.Table = DefaultTable
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Store{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		url:    cfg.URL,
		apiKey: cfg.APIKey,
		table:  cfg.Table,
	}, nil
}

// InsertBatch stores a batch of embedding rows in one REST call.
func (s *Store) InsertBatch(ctx context.Context, rows []driven.VectorRow) error {
	if len(rows) == 0 {
		return nil
	}

	payload := make([]insertRow, 0, len(rows))
	for _, row := range rows {
		payload = append(payload, insertRow{
			CompanyID:  row.CompanyID,
			SourceType: string(row.SourceType),
			ChunkIndex: row.ChunkIndex,
			Text:       truncateRunes(row.Text, maxTextLength),
			Embedding:  row.Embedding,
			TokenCount: row.TokenCount,
		})
	}

	if _, err := s.post(ctx, "/rest/v1/"+s.table, payload, map[string]string{
		"Prefer": "return=minimal",
	}); err != nil {
		return err
	}

	logger.Debug("Supabase insert: %d rows into %s", len(rows), s.table)
	return nil
}

// Search ranks rows by similarity via the match_documents RPC.
func (s *Store) Search(ctx context.Context, query []float32, opts driven.VectorSearchOptions) ([]domain.RetrievedChunk, error) {
	if len(query) == 0 {
		return nil, fmt.Errorf("supabase: empty query vector")
	}

	req := matchRequest{
		QueryEmbedding:   query,
		MatchThreshold:   opts.Threshold,
		MatchCount:       opts.Limit,
		FilterCompanyID:  opts.CompanyID,
		FilterSourceType: string(opts.SourceType),
	}

	body, err := s.post(ctx, "/rest/v1/rpc/"+DefaultRPC, req, nil)
	if err != nil {
		return nil, err
	}

	var rows []matchRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	chunks := make([]domain.RetrievedChunk, 0, len(rows))
	for _, row := range rows {
		chunks = append(chunks, domain.RetrievedChunk{
			Text:       row.Text,
			Similarity: row.Similarity,
			ChunkIndex: row.ChunkIndex,
			TokenCount: row.TokenCount,
			DocumentID: row.DocumentID,
		})
	}
	return chunks, nil
}

// post sends one authenticated JSON request and returns the response body.
func (s *Store) post(ctx context.Context, path string, payload any, headers map[string]string) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("supabase error (status %d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// Ping validates the REST endpoint is reachable and the key is accepted.
func (s *Store) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url+"/rest/v1/"+s.table+"?limit=1", http.NoBody)
	if err != nil {
		return fmt.Errorf("supabase: failed to create ping request: %w", err)
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("supabase: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("supabase: API returned status %d", resp.StatusCode)
	}
	return nil
}

// Close releases resources.
func (s *Store) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

// truncateRunes bounds s to n runes without splitting a character.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
