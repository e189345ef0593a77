package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docsight-io/docsight-cli/internal/core/domain"
	"github.com/docsight-io/docsight-cli/internal/core/ports/driven"
	"github.com/docsight-io/docsight-cli/internal/core/ports/driving"
	"github.com/docsight-io/docsight-cli/internal/logger"
)

// Ensure AssembleService implements the interface.
var _ driving.ReportAssembler = (*AssembleService)(nil)

// assembleTemperature allows some synthesis latitude while keeping figures
// stable.
const assembleTemperature = 0.4

// assembleMaxTokens bounds the generated report.
const assembleMaxTokens = 2000

// topicQueryBudget is the token budget for each grounding retrieval.
const topicQueryBudget = 1000

// maxGroundingContexts caps how many retrieved contexts enter the prompt.
const maxGroundingContexts = 2

// referenceTruncateChars bounds each reference document excerpt.
const referenceTruncateChars = 2000

const assembleSystemPrompt = `You are a business analyst writing a structured company report in markdown. ` +
	`Write a "## <section name>" heading for every requested section, in the order given, following each section's guideline. ` +
	`Tag every sentence with exactly one provenance marker:
- ` + domain.TagPrimary + ` for facts taken directly from the extracted company data
- [source: reference - <file name>] for facts from a named reference document
- ` + domain.TagInference + ` for inferences you draw from the company data
- [source: model background knowledge, as of your knowledge cutoff] for general background knowledge
- ` + domain.TagSynthesis + ` for judgments combining company data with background knowledge
Never invent figures. Where data is missing, state that it is unavailable.`

// AssembleService builds the final report from extracted fields, retrieved
// context and reference excerpts. The retriever and document store are
// optional; the LLM is required for any report with actual data.
type AssembleService struct {
	llm       driven.LLMService
	retriever driving.ContextRetriever
	docStore  driven.DocumentStore
}

// NewAssembleService creates an assemble service. The retriever and docStore
// parameters are optional (can be nil).
func NewAssembleService(
	llm driven.LLMService,
	retriever driving.ContextRetriever,
	docStore driven.DocumentStore,
) *AssembleService {
	return &AssembleService{
		llm:       llm,
		retriever: retriever,
		docStore:  docStore,
	}
}

// Assemble produces the report. A request with no usable field values yields
// a deterministic no-data report without touching the model; a model failure
// is returned as an error.
func (s *AssembleService) Assemble(ctx context.Context, req driving.AssembleRequest) (*domain.Report, error) {
	logger.Section("Report Assembly")

	// Unknown section names are skipped, never rejected; a request naming
	// only unknown sections still assembles under the general writing rules.
	sections := s.resolveSections(req.Sections)
	sectionNames := make([]string, len(sections))
	for i, sec := range sections {
		sectionNames[i] = sec.Name
	}
	logger.Debug("Sections: %v", sectionNames)

	order := req.FieldOrder
	if len(order) == 0 {
		order = make([]string, 0, len(req.Fields))
		for name := range req.Fields {
			order = append(order, name)
		}
		sort.Strings(order)
	}

	available := req.Fields.Available(order)
	missing := req.Fields.Missing(order)
	logger.Debug("Fields: %d available, %d missing", len(available), len(missing))

	report := &domain.Report{
		ID:        uuid.NewString(),
		CompanyID: req.CompanyID,
		Sections:  sectionNames,
		CreatedAt: time.Now(),
	}

	if len(available) == 0 {
		logger.Info("No usable field data, producing no-data report")
		report.Content = noDataReport(sectionNames)
		s.persist(ctx, report)
		return report, nil
	}

	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}

	contexts := s.gatherContexts(ctx, req)
	prompt := s.buildPrompt(req, order, missing, sections, contexts)

	content, err := s.llm.Chat(ctx, []driven.ChatMessage{
		{Role: "system", Content: assembleSystemPrompt},
		{Role: "user", Content: prompt},
	}, driven.ChatOptions{
		MaxTokens:   assembleMaxTokens,
		Temperature: assembleTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("assemble report: %w", err)
	}

	report.Content = content
	if untagged := report.UntaggedSentences(); len(untagged) > 0 {
		logger.Warn("%d sentences carry no provenance tag", len(untagged))
	}

	s.persist(ctx, report)
	logger.Info("Report assembled: %d sections, %d chars", len(sectionNames), len(content))
	return report, nil
}

// resolveSections maps requested names to catalogue entries, skipping
// unknown names. An empty request selects the full catalogue.
func (s *AssembleService) resolveSections(requested []string) []sectionSpec {
	if len(requested) == 0 {
		return reportSections
	}

	var out []sectionSpec
	for _, name := range requested {
		sec, ok := sectionByName(name)
		if !ok {
			logger.Debug("Unknown section %q, skipping", name)
			continue
		}
		out = append(out, sec)
	}
	return out
}

// gatherContexts runs the grounding retrievals: one topic query per major
// report concern, keeping the first few that return real context.
func (s *AssembleService) gatherContexts(ctx context.Context, req driving.AssembleRequest) []string {
	if !req.UseRetrieval || req.CompanyID == "" || s.retriever == nil {
		return nil
	}

	subject := req.Fields["Company Name"]
	if subject == "" || subject == domain.NoData {
		subject = "the company"
	}

	queries := []string{
		subject + " financial performance and profitability",
		subject + " business structure, products and services",
		subject + " competitors and market position",
		subject + " risk factors and threats",
	}

	scope := driving.RetrievalScope{CompanyID: req.CompanyID}
	seen := make(map[string]bool)
	var contexts []string
	for _, q := range queries {
		if len(contexts) >= maxGroundingContexts {
			break
		}
		text, err := s.retriever.Retrieve(ctx, q, scope, topicQueryBudget)
		if err != nil || text == NoRelevantContext || text == "" {
			continue
		}
		if seen[text] {
			continue
		}
		seen[text] = true
		contexts = append(contexts, text)
	}

	logger.Debug("Grounding contexts: %d", len(contexts))
	return contexts
}

// buildPrompt assembles the user prompt from field data, grounding context,
// reference excerpts, and the section guidelines.
func (s *AssembleService) buildPrompt(
	req driving.AssembleRequest, order, missing []string,
	sections []sectionSpec, contexts []string,
) string {
	var sb strings.Builder

	sb.WriteString("Extracted company data:\n")
	for _, name := range order {
		if v, ok := req.Fields[name]; ok && v != "" && v != domain.NoData {
			fmt.Fprintf(&sb, "- %s: %s\n", name, v)
		}
	}
	if len(missing) > 0 {
		fmt.Fprintf(&sb, "\nFields with no data (do not estimate these): %s\n",
			strings.Join(missing, ", "))
	}

	for i, c := range contexts {
		fmt.Fprintf(&sb, "\nRetrieved context %d:\n%s\n", i+1, c)
	}

	if len(req.References) > 0 {
		names := make([]string, 0, len(req.References))
		for name := range req.References {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&sb, "\nReference document %q:\n%s\n",
				name, truncateRunes(req.References[name], referenceTruncateChars))
		}
	}

	if len(sections) == 0 {
		sb.WriteString("\nWrite a concise report from the data above.\n")
		return sb.String()
	}

	sb.WriteString("\nWrite the following sections:\n")
	for _, sec := range sections {
		fmt.Fprintf(&sb, "## %s - %s\n", sec.Name, sec.Guideline)
	}

	return sb.String()
}

// noDataReport is the deterministic output when no field holds a real value.
func noDataReport(sectionNames []string) string {
	var sb strings.Builder
	sb.WriteString("# Company Report\n\n")
	sb.WriteString("No extracted field data is available for this company.\n\n")
	sb.WriteString("Requested sections:\n")
	for _, name := range sectionNames {
		fmt.Fprintf(&sb, "- %s\n", name)
	}
	sb.WriteString("\nIngest a main document and run field extraction, then assemble the report again.\n")
	return sb.String()
}

// persist stores the report when a company scope and store are present.
// Storage failure is logged, not returned: the assembled report is still
// useful to the caller.
func (s *AssembleService) persist(ctx context.Context, report *domain.Report) {
	if s.docStore == nil || report.CompanyID == "" {
		return
	}
	if err := s.docStore.SaveReport(ctx, report); err != nil {
		logger.Warn("Report not persisted: %v", err)
	}
}
