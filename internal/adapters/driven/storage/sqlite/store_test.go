package sqlite

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsight-io/docsight-cli/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "docsight-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

// createTestCompany creates a company to satisfy foreign key constraints.
func createTestCompany(t *testing.T, store *Store, id string) {
	t.Helper()
	err := store.SaveCompany(context.Background(), &domain.Company{
		ID:        id,
		Name:      "Company " + id,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	})
	require.NoError(t, err)
}

// createTestDocument creates a document to satisfy foreign key constraints.
func createTestDocument(t *testing.T, store *Store, docID, companyID string) {
	t.Helper()
	err := store.SaveDocument(context.Background(), &domain.Document{
		ID:         docID,
		CompanyID:  companyID,
		FileName:   docID + ".pdf",
		SourceType: domain.SourceMain,
		Content:    "content of " + docID,
		PageCount:  1,
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	})
	require.NoError(t, err)
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestNewStore_MigrationsIdempotent(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "docsight-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Opening a second time must not re-run applied migrations.
	store, err = NewStore(tempDir)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func TestCompany_SaveAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	company := &domain.Company{
		ID:        "c1",
		Name:      "Acme Robotics",
		Industry:  "Industrial Automation",
		CreatedAt: now,
	}
	require.NoError(t, store.SaveCompany(ctx, company))

	got, err := store.GetCompany(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Acme Robotics", got.Name)
	assert.Equal(t, "Industrial Automation", got.Industry)
	assert.True(t, got.CreatedAt.Equal(now))
}

func TestCompany_GetNotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.GetCompany(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCompany_UpsertKeepsCreatedAt(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	created := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	require.NoError(t, store.SaveCompany(ctx, &domain.Company{ID: "c1", Name: "Old Name", CreatedAt: created}))
	require.NoError(t, store.SaveCompany(ctx, &domain.Company{ID: "c1", Name: "New Name", CreatedAt: time.Now().UTC()}))

	got, err := store.GetCompany(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "New Name", got.Name)
	assert.True(t, got.CreatedAt.Equal(created))
}

func TestListCompanies_NewestFirst(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i, id := range []string{"c1", "c2", "c3"} {
		require.NoError(t, store.SaveCompany(ctx, &domain.Company{
			ID:        id,
			Name:      "Company " + id,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	companies, err := store.ListCompanies(ctx, 0)
	require.NoError(t, err)
	require.Len(t, companies, 3)
	assert.Equal(t, "c3", companies[0].ID)
	assert.Equal(t, "c1", companies[2].ID)

	limited, err := store.ListCompanies(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "c3", limited[0].ID)
}

func TestDocument_SaveAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	createTestCompany(t, store, "c1")

	doc := &domain.Document{
		ID:         "d1",
		CompanyID:  "c1",
		FileName:   "report.pdf",
		SourceType: domain.SourceMain,
		Content:    "=== Page 1 ===\nAcme Robotics annual report",
		PageCount:  12,
		Elements: []domain.Element{
			{Kind: domain.ElementTable, Category: "table", Page: 3, Text: "Revenue 100"},
		},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.SaveDocument(ctx, doc))

	got, err := store.GetDocument(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", got.FileName)
	assert.Equal(t, domain.SourceMain, got.SourceType)
	assert.Equal(t, 12, got.PageCount)
	require.Len(t, got.Elements, 1)
	assert.Equal(t, domain.ElementTable, got.Elements[0].Kind)
	assert.Equal(t, 3, got.Elements[0].Page)
}

func TestDocument_GetNotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.GetDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListDocuments_ScopedToCompany(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	createTestCompany(t, store, "c1")
	createTestCompany(t, store, "c2")
	createTestDocument(t, store, "d1", "c1")
	createTestDocument(t, store, "d2", "c1")
	createTestDocument(t, store, "d3", "c2")

	docs, err := store.ListDocuments(ctx, "c1")
	require.NoError(t, err)
	assert.Len(t, docs, 2)

	docs, err = store.ListDocuments(ctx, "c2")
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestChunks_SaveAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	createTestCompany(t, store, "c1")
	createTestDocument(t, store, "d1", "c1")

	chunks := []domain.Chunk{
		{ID: "ch2", DocumentID: "d1", Index: 1, StartToken: 450, EndToken: 950, TokenCount: 500, Text: "second", Embedding: []float32{0.3, 0.4}, EmbeddingModel: "test-model"},
		{ID: "ch1", DocumentID: "d1", Index: 0, StartToken: 0, EndToken: 500, TokenCount: 500, Text: "first", Embedding: []float32{0.1, 0.2}, EmbeddingModel: "test-model"},
	}
	require.NoError(t, store.SaveChunks(ctx, chunks))

	got, err := store.GetChunks(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Ordered by position regardless of insert order.
	assert.Equal(t, "ch1", got[0].ID)
	assert.Equal(t, "first", got[0].Text)
	assert.Equal(t, []float32{0.1, 0.2}, got[0].Embedding)
	assert.Equal(t, "ch2", got[1].ID)
	assert.Equal(t, 450, got[1].StartToken)
	assert.Equal(t, "test-model", got[1].EmbeddingModel)
}

func TestChunks_EmptyBatchIsNoOp(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	assert.NoError(t, store.SaveChunks(context.Background(), nil))
}

func TestDeleteDocument_CascadesChunks(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	createTestCompany(t, store, "c1")
	createTestDocument(t, store, "d1", "c1")
	require.NoError(t, store.SaveChunks(ctx, []domain.Chunk{
		{ID: "ch1", DocumentID: "d1", Index: 0, Text: "chunk"},
	}))

	require.NoError(t, store.DeleteDocument(ctx, "d1"))

	_, err := store.GetDocument(ctx, "d1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	chunks, err := store.GetChunks(ctx, "d1")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestFields_SaveAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	createTestCompany(t, store, "c1")

	fields := domain.ExtractionResult{
		"Company Name": "Acme Robotics",
		"Revenue":      domain.NoData,
	}
	require.NoError(t, store.SaveFields(ctx, "c1", fields))

	got, err := store.GetFields(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Acme Robotics", got["Company Name"])
	assert.Equal(t, domain.NoData, got["Revenue"])
}

func TestFields_MergeNeverDowngrades(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	createTestCompany(t, store, "c1")

	require.NoError(t, store.SaveFields(ctx, "c1", domain.ExtractionResult{
		"Revenue": "120M USD",
		"CEO":     domain.NoData,
	}))

	// A sentinel must not overwrite a real value; a real value fills a
	// sentinel slot.
	require.NoError(t, store.SaveFields(ctx, "c1", domain.ExtractionResult{
		"Revenue": domain.NoData,
		"CEO":     "Jane Doe",
	}))

	got, err := store.GetFields(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "120M USD", got["Revenue"])
	assert.Equal(t, "Jane Doe", got["CEO"])
}

func TestFields_EmptyCompany(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	got, err := store.GetFields(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReport_SaveAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	report := &domain.Report{
		ID:        "r1",
		CompanyID: "c1",
		Sections:  []string{"Executive Summary", "Financial Analysis"},
		Content:   "# Executive Summary\nStrong year. [source: main document]",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.SaveReport(ctx, report))

	got, err := store.GetReport(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, report.Sections, got.Sections)
	assert.Equal(t, report.Content, got.Content)
}

func TestReport_GetNotFound(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.GetReport(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
