// Package memory provides in-memory implementations of storage ports,
// used for testing and as fallbacks when persistent storage is unavailable.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/docsight-io/docsight-cli/internal/core/domain"
	"github.com/docsight-io/docsight-cli/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu        sync.RWMutex
	companies map[string]domain.Company
	documents map[string]domain.Document
	chunks    map[string][]domain.Chunk
	fields    map[string]domain.ExtractionResult
	reports   map[string]domain.Report
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		companies: make(map[string]domain.Company),
		documents: make(map[string]domain.Document),
		chunks:    make(map[string][]domain.Chunk),
		fields:    make(map[string]domain.ExtractionResult),
		reports:   make(map[string]domain.Report),
	}
}

// SaveCompany stores or updates a company.
func (s *DocumentStore) SaveCompany(_ context.Context, company *domain.Company) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.companies[company.ID] = *company
	return nil
}

// GetCompany retrieves a company by ID.
func (s *DocumentStore) GetCompany(_ context.Context, id string) (*domain.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	company, ok := s.companies[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &company, nil
}

// ListCompanies returns stored companies, newest first.
func (s *DocumentStore) ListCompanies(_ context.Context, limit int) ([]domain.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Company, 0, len(s.companies))
	for id := range s.companies {
		result = append(result, s.companies[id])
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// SaveDocument stores or updates a document.
func (s *DocumentStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[doc.ID] = *doc
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// ListDocuments returns documents for a company.
func (s *DocumentStore) ListDocuments(_ context.Context, companyID string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Document
	for id := range s.documents {
		doc := s.documents[id]
		if doc.CompanyID == companyID {
			result = append(result, doc)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// SaveChunks stores chunks for a document.
func (s *DocumentStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	docID := chunks[0].DocumentID
	stored := make([]domain.Chunk, len(chunks))
	copy(stored, chunks)
	s.chunks[docID] = stored
	return nil
}

// GetChunks retrieves all chunks for a document, ordered by index.
func (s *DocumentStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunks, ok := s.chunks[documentID]
	if !ok {
		return nil, nil
	}
	result := make([]domain.Chunk, len(chunks))
	copy(result, chunks)
	sort.Slice(result, func(i, j int) bool {
		return result[i].Index < result[j].Index
	})
	return result, nil
}

// SaveFields merges extracted fields into the company's stored map. Existing
// real values are never overwritten by sentinel or blank values.
func (s *DocumentStore) SaveFields(_ context.Context, companyID string, fields domain.ExtractionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.fields[companyID]
	if !ok {
		current = domain.ExtractionResult{}
		s.fields[companyID] = current
	}
	current.Merge(fields)
	return nil
}

// GetFields retrieves the stored field map for a company.
func (s *DocumentStore) GetFields(_ context.Context, companyID string) (domain.ExtractionResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := domain.ExtractionResult{}
	for name, value := range s.fields[companyID] {
		result[name] = value
	}
	return result, nil
}

// SaveReport stores an assembled report.
func (s *DocumentStore) SaveReport(_ context.Context, report *domain.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.ID] = *report
	return nil
}

// GetReport retrieves a report by ID.
func (s *DocumentStore) GetReport(_ context.Context, id string) (*domain.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.reports[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &report, nil
}

// DeleteDocument removes a document and its chunks.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.documents, id)
	delete(s.chunks, id)
	return nil
}
