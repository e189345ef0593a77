package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/docsight-io/docsight-cli/internal/chunker"
	"github.com/docsight-io/docsight-cli/internal/core/domain"
	"github.com/docsight-io/docsight-cli/internal/core/ports/driven"
	"github.com/docsight-io/docsight-cli/internal/core/ports/driving"
	"github.com/docsight-io/docsight-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// embedBatchSize caps the number of texts sent in one embedding request.
const embedBatchSize = 100

// insertBatchSize caps the number of rows sent in one vector store insert.
const insertBatchSize = 100

// embedRequestsPerSecond throttles embedding calls to stay inside provider
// rate limits during large batch ingestions.
const embedRequestsPerSecond = 2

// IngestService runs the ingestion pipeline: parse, persist, chunk, embed,
// store vectors. The embedding service and vector store are optional; when
// either is nil, documents are stored without vectors and the result records
// EmbeddingsStored=false.
type IngestService struct {
	parser     driving.ParseService
	docStore   driven.DocumentStore
	embedder   driven.EmbeddingService
	vectors    driven.VectorStore
	splitter   *chunker.Chunker
	embedLimit *rate.Limiter
}

// NewIngestService creates an ingest service. The embedder and vectors
// parameters are optional (can be nil).
func NewIngestService(
	parser driving.ParseService,
	docStore driven.DocumentStore,
	embedder driven.EmbeddingService,
	vectors driven.VectorStore,
	splitter *chunker.Chunker,
) *IngestService {
	return &IngestService{
		parser:     parser,
		docStore:   docStore,
		embedder:   embedder,
		vectors:    vectors,
		splitter:   splitter,
		embedLimit: rate.NewLimiter(rate.Limit(embedRequestsPerSecond), 1),
	}
}

// Ingest processes a single file through the full pipeline.
func (s *IngestService) Ingest(ctx context.Context, file driving.IngestFile, opts driving.IngestOptions) driving.IngestResult {
	logger.Section("Ingest")
	logger.Debug("File: %s (%d bytes)", file.Name, len(file.Data))

	result := driving.IngestResult{Name: file.Name}

	sourceType := opts.SourceType
	if sourceType == "" {
		sourceType = domain.SourceMain
	}
	if !sourceType.IsValid() {
		result.Err = fmt.Errorf("%w: unknown source type %q", domain.ErrInvalidInput, opts.SourceType)
		return result
	}

	if s.parser == nil || s.docStore == nil || s.splitter == nil {
		result.Err = errors.New("ingest service not fully configured")
		return result
	}

	// Parse. An empty outcome means every ladder rung failed; that is a
	// hard failure for this item.
	outcome := s.parser.Parse(ctx, driving.ParseRequest{
		Data:     file.Data,
		ForceOCR: opts.ForceOCR,
		MaxPages: opts.MaxPages,
	})
	if strings.TrimSpace(outcome.Text) == "" {
		logger.Warn("No text extracted from %s", file.Name)
		result.Err = fmt.Errorf("%s: %w", file.Name, domain.ErrEmptyDocument)
		return result
	}
	result.PageCount = outcome.PageCount

	companyID, err := s.resolveCompany(ctx, opts.CompanyID, file.Name)
	if err != nil {
		result.Err = err
		return result
	}
	result.CompanyID = companyID

	doc := &domain.Document{
		ID:         uuid.NewString(),
		CompanyID:  companyID,
		FileName:   file.Name,
		SourceType: sourceType,
		Content:    outcome.Text,
		PageCount:  outcome.PageCount,
		Elements:   outcome.Elements,
		CreatedAt:  time.Now(),
	}
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		result.Err = fmt.Errorf("save document: %w", err)
		return result
	}
	result.DocumentID = doc.ID
	logger.Info("Stored document %s (%d pages, %d elements)",
		doc.ID, doc.PageCount, len(doc.Elements))

	chunks := s.splitter.Split(outcome.Text)
	for i := range chunks {
		chunks[i].ID = uuid.NewString()
		chunks[i].DocumentID = doc.ID
	}
	if err := s.docStore.SaveChunks(ctx, chunks); err != nil {
		result.Err = fmt.Errorf("save chunks: %w", err)
		return result
	}
	result.ChunkCount = len(chunks)
	logger.Info("Stored %d chunks", len(chunks))

	// Embedding is best-effort: an unavailable embedding service or vector
	// store degrades the result, it does not fail the ingestion.
	result.EmbeddingsStored = s.embedAndStore(ctx, companyID, sourceType, chunks)

	return result
}

// IngestBatch processes files sequentially. Every input yields exactly one
// result; one item's failure never aborts the rest.
func (s *IngestService) IngestBatch(ctx context.Context, files []driving.IngestFile, opts driving.IngestOptions) []driving.IngestResult {
	logger.Section("Batch Ingest")
	logger.Info("Processing %d files", len(files))

	results := make([]driving.IngestResult, 0, len(files))
	sharedOpts := opts
	for _, file := range files {
		result := s.Ingest(ctx, file, sharedOpts)
		if result.Err != nil {
			logger.Warn("Item %s failed: %v", file.Name, result.Err)
		} else if sharedOpts.CompanyID == "" && result.CompanyID != "" {
			// Files in one batch belong to one company: the first
			// successful item creates it, the rest attach to it.
			sharedOpts.CompanyID = result.CompanyID
		}
		results = append(results, result)
	}

	return results
}

// resolveCompany returns the company to attach the document to, creating a
// new record when no ID was given.
func (s *IngestService) resolveCompany(ctx context.Context, companyID, fileName string) (string, error) {
	if companyID != "" {
		if _, err := s.docStore.GetCompany(ctx, companyID); err != nil {
			return "", fmt.Errorf("company %s: %w", companyID, err)
		}
		return companyID, nil
	}

	name := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	if name == "" {
		name = "untitled"
	}
	company := &domain.Company{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now(),
	}
	if err := s.docStore.SaveCompany(ctx, company); err != nil {
		return "", fmt.Errorf("save company: %w", err)
	}
	logger.Info("Created company %s (%s)", company.ID, company.Name)
	return company.ID, nil
}

// embedAndStore generates embeddings for chunks and inserts them into the
// vector store. Returns true only when every row was stored.
func (s *IngestService) embedAndStore(ctx context.Context, companyID string, sourceType domain.SourceType, chunks []domain.Chunk) bool {
	if s.embedder == nil || s.vectors == nil {
		logger.Debug("Embedding skipped: embedder=%t, vector store=%t",
			s.embedder != nil, s.vectors != nil)
		return false
	}
	if len(chunks) == 0 {
		return false
	}

	model := s.embedder.ModelName()
	rows := make([]driven.VectorRow, 0, len(chunks))

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := min(start+embedBatchSize, len(chunks))
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}

		if err := s.embedLimit.Wait(ctx); err != nil {
			logger.Warn("Embedding cancelled: %v", err)
			return false
		}
		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			logger.Warn("Embedding failed: %v (document stored without vectors)", err)
			return false
		}
		if len(vectors) != len(batch) {
			logger.Warn("Embedding count mismatch: %d vectors for %d chunks", len(vectors), len(batch))
			return false
		}

		for i := range batch {
			batch[i].Embedding = vectors[i]
			batch[i].EmbeddingModel = model
			rows = append(rows, driven.VectorRow{
				CompanyID:  companyID,
				SourceType: sourceType,
				ChunkIndex: batch[i].Index,
				Text:       batch[i].Text,
				Embedding:  vectors[i],
				TokenCount: batch[i].TokenCount,
			})
		}
	}

	for start := 0; start < len(rows); start += insertBatchSize {
		end := min(start+insertBatchSize, len(rows))
		if err := s.vectors.InsertBatch(ctx, rows[start:end]); err != nil {
			logger.Warn("Vector insert failed: %v (document stored without vectors)", err)
			return false
		}
	}

	logger.Info("Stored %d embedding rows", len(rows))
	return true
}
