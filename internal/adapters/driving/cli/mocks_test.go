package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/docsight-io/docsight-cli/internal/core/domain"
	"github.com/docsight-io/docsight-cli/internal/core/ports/driving"
)

// mockIngest is a test double for driving.IngestService.
type mockIngest struct {
	lastFiles []driving.IngestFile
	lastOpts  driving.IngestOptions
	results   []driving.IngestResult
}

func (m *mockIngest) Ingest(_ context.Context, file driving.IngestFile, opts driving.IngestOptions) driving.IngestResult {
	results := m.IngestBatch(context.Background(), []driving.IngestFile{file}, opts)
	return results[0]
}

func (m *mockIngest) IngestBatch(_ context.Context, files []driving.IngestFile, opts driving.IngestOptions) []driving.IngestResult {
	m.lastFiles = files
	m.lastOpts = opts
	if m.results != nil {
		return m.results
	}
	out := make([]driving.IngestResult, len(files))
	for i, f := range files {
		out[i] = driving.IngestResult{
			Name:             f.Name,
			DocumentID:       "doc-" + f.Name,
			CompanyID:        "company-1",
			PageCount:        1,
			ChunkCount:       2,
			EmbeddingsStored: true,
		}
	}
	return out
}

// mockExtractor is a test double for driving.FieldExtractor.
type mockExtractor struct {
	lastText     string
	lastNames    []string
	lastExisting domain.ExtractionResult
	result       domain.ExtractionResult
	err          error
}

func (m *mockExtractor) Extract(_ context.Context, text string, template *domain.Template, _ []domain.Element) (domain.ExtractionResult, error) {
	m.lastText = text
	m.lastNames = template.Names()
	return m.result, m.err
}

func (m *mockExtractor) ExtractInto(_ context.Context, text string, template *domain.Template, _ []domain.Element, existing domain.ExtractionResult) (domain.ExtractionResult, error) {
	m.lastText = text
	m.lastNames = template.Names()
	m.lastExisting = existing
	return m.result, m.err
}

// mockRetriever is a test double for driving.ContextRetriever.
type mockRetriever struct {
	lastQuery  string
	lastScope  driving.RetrievalScope
	lastBudget int
	response   string
	err        error
}

func (m *mockRetriever) Retrieve(_ context.Context, query string, scope driving.RetrievalScope, budget int) (string, error) {
	m.lastQuery = query
	m.lastScope = scope
	m.lastBudget = budget
	return m.response, m.err
}

// mockAssembler is a test double for driving.ReportAssembler.
type mockAssembler struct {
	lastReq driving.AssembleRequest
	report  *domain.Report
	err     error
}

func (m *mockAssembler) Assemble(_ context.Context, req driving.AssembleRequest) (*domain.Report, error) {
	m.lastReq = req
	return m.report, m.err
}

// execute runs the root command with args and captures output. Service vars
// are restored after the test.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

// withServices swaps the package-level services for the test.
func withServices(t *testing.T, deps Deps) {
	t.Helper()

	origIngest := ingestService
	origExtract := extractService
	origRetrieve := retrieveService
	origReport := reportService
	origStore := docStore
	t.Cleanup(func() {
		ingestService = origIngest
		extractService = origExtract
		retrieveService = origRetrieve
		reportService = origReport
		docStore = origStore
	})

	SetServices(deps)
}
