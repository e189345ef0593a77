package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsight-io/docsight-cli/internal/core/domain"
	"github.com/docsight-io/docsight-cli/internal/core/ports/driven"
)

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{APIKey: "key"})
	assert.Error(t, err)

	_, err = New(Config{URL: "http://localhost"})
	assert.Error(t, err)
}

func TestInsertBatch(t *testing.T) {
	var gotPath, gotAPIKey, gotAuth, gotPrefer string
	var gotRows []map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAPIKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")
		gotPrefer = r.Header.Get("Prefer")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRows))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	store, err := New(Config{URL: server.URL, APIKey: "key"})
	require.NoError(t, err)

	err = store.InsertBatch(context.Background(), []driven.VectorRow{
		{
			CompanyID:  "c1",
			SourceType: domain.SourceMain,
			ChunkIndex: 3,
			Text:       "chunk text",
			Embedding:  []float32{0.1, 0.2},
			TokenCount: 42,
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "/rest/v1/document_embeddings", gotPath)
	assert.Equal(t, "key", gotAPIKey)
	assert.Equal(t, "Bearer key", gotAuth)
	assert.Equal(t, "return=minimal", gotPrefer)

	require.Len(t, gotRows, 1)
	assert.Equal(t, "c1", gotRows[0]["company_id"])
	assert.Equal(t, "main", gotRows[0]["source_type"])
	assert.Equal(t, float64(3), gotRows[0]["chunk_index"])
	assert.Equal(t, "chunk text", gotRows[0]["chunk_text"])
	assert.Equal(t, float64(42), gotRows[0]["token_count"])
}

func TestInsertBatch_TruncatesLongText(t *testing.T) {
	var gotRows []map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRows))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	store, err := New(Config{URL: server.URL, APIKey: "key"})
	require.NoError(t, err)

	err = store.InsertBatch(context.Background(), []driven.VectorRow{
		{Text: strings.Repeat("x", maxTextLength+100), Embedding: []float32{1}},
	})
	require.NoError(t, err)

	require.Len(t, gotRows, 1)
	assert.Len(t, gotRows[0]["chunk_text"], maxTextLength)
}

func TestInsertBatch_TruncationIsRuneSafe(t *testing.T) {
	var gotRows []map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRows))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	store, err := New(Config{URL: server.URL, APIKey: "key"})
	require.NoError(t, err)

	// Multibyte text must be cut on a rune boundary, never mid-character.
	err = store.InsertBatch(context.Background(), []driven.VectorRow{
		{Text: strings.Repeat("매", maxTextLength+10), Embedding: []float32{1}},
	})
	require.NoError(t, err)

	require.Len(t, gotRows, 1)
	text, ok := gotRows[0]["chunk_text"].(string)
	require.True(t, ok)
	assert.True(t, utf8.ValidString(text))
	assert.Equal(t, maxTextLength, utf8.RuneCountInString(text))
}

func TestInsertBatch_EmptySkipsRequest(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))
	defer server.Close()

	store, err := New(Config{URL: server.URL, APIKey: "key"})
	require.NoError(t, err)

	require.NoError(t, store.InsertBatch(context.Background(), nil))
	assert.False(t, called)
}

func TestSearch(t *testing.T) {
	var gotPath string
	var gotReq map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		require.NoError(t, json.NewEncoder(w).Encode([]map[string]any{
			{
				"chunk_text":  "top hit",
				"similarity":  0.91,
				"chunk_index": 2,
				"token_count": 120,
				"document_id": "d1",
			},
			{
				"chunk_text":  "second hit",
				"similarity":  0.72,
				"chunk_index": 0,
				"token_count": 80,
				"document_id": "d1",
			},
		}))
	}))
	defer server.Close()

	store, err := New(Config{URL: server.URL, APIKey: "key"})
	require.NoError(t, err)

	chunks, err := store.Search(context.Background(), []float32{0.5, 0.5}, driven.VectorSearchOptions{
		CompanyID:  "c1",
		SourceType: domain.SourceReference,
		Threshold:  0.5,
		Limit:      10,
	})
	require.NoError(t, err)

	assert.Equal(t, "/rest/v1/rpc/match_documents", gotPath)
	assert.Equal(t, 0.5, gotReq["match_threshold"])
	assert.Equal(t, float64(10), gotReq["match_count"])
	assert.Equal(t, "c1", gotReq["filter_company_id"])
	assert.Equal(t, "reference", gotReq["filter_source_type"])

	require.Len(t, chunks, 2)
	assert.Equal(t, "top hit", chunks[0].Text)
	assert.Equal(t, 0.91, chunks[0].Similarity)
	assert.Equal(t, 2, chunks[0].ChunkIndex)
	assert.Equal(t, 120, chunks[0].TokenCount)
	assert.Equal(t, "d1", chunks[0].DocumentID)
}

func TestSearch_OmitsEmptyFilters(t *testing.T) {
	var gotReq map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		require.NoError(t, json.NewEncoder(w).Encode([]map[string]any{}))
	}))
	defer server.Close()

	store, err := New(Config{URL: server.URL, APIKey: "key"})
	require.NoError(t, err)

	_, err = store.Search(context.Background(), []float32{1}, driven.VectorSearchOptions{Threshold: 0.5, Limit: 10})
	require.NoError(t, err)

	assert.NotContains(t, gotReq, "filter_company_id")
	assert.NotContains(t, gotReq, "filter_source_type")
}

func TestSearch_EmptyQuery(t *testing.T) {
	store, err := New(Config{URL: "http://localhost:1", APIKey: "key"})
	require.NoError(t, err)

	_, err = store.Search(context.Background(), nil, driven.VectorSearchOptions{})
	assert.Error(t, err)
}

func TestSearch_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"JWT expired"}`))
	}))
	defer server.Close()

	store, err := New(Config{URL: server.URL, APIKey: "stale"})
	require.NoError(t, err)

	_, err = store.Search(context.Background(), []float32{1}, driven.VectorSearchOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte("[]"))
	}))
	defer server.Close()

	store, err := New(Config{URL: server.URL, APIKey: "key"})
	require.NoError(t, err)

	assert.NoError(t, store.Ping(context.Background()))
}

func TestPing_Unreachable(t *testing.T) {
	store, err := New(Config{URL: "http://localhost:1", APIKey: "key"})
	require.NoError(t, err)

	assert.Error(t, store.Ping(context.Background()))
}
