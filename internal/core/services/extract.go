package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/docsight-io/docsight-cli/internal/core/domain"
	"github.com/docsight-io/docsight-cli/internal/core/ports/driven"
	"github.com/docsight-io/docsight-cli/internal/core/ports/driving"
	"github.com/docsight-io/docsight-cli/internal/logger"
)

// Ensure ExtractService implements the interface.
var _ driving.FieldExtractor = (*ExtractService)(nil)

// extractTemperature keeps field extraction close to deterministic.
const extractTemperature = 0.1

// extractMaxTokens bounds the extraction response. One line per field fits
// comfortably.
const extractMaxTokens = 800

// textPrefixWithTables is how much raw text accompanies structured tables in
// the prompt. Tables carry the dense facts, so the raw excerpt can be short.
const textPrefixWithTables = 2000

// textPrefixPlain is the raw text excerpt length when no structured elements
// are available.
const textPrefixPlain = 4000

const extractSystemPrompt = `You are a precise information extraction assistant. ` +
	`Extract the requested fields from the document excerpt. ` +
	`Respond with exactly one line per field, in the format [Field Name]: value. ` +
	`Use the field names exactly as given. ` +
	`If a field cannot be determined from the excerpt, answer exactly "` + domain.NoData + `". ` +
	`Never invent values.`

// ExtractService resolves extraction templates against document text. The
// LLM service is optional: when nil (or failing), extraction degrades to the
// deterministic keyword fallback.
type ExtractService struct {
	llm driven.LLMService
}

// NewExtractService creates an extract service. The llm parameter is
// optional (can be nil).
func NewExtractService(llm driven.LLMService) *ExtractService {
	return &ExtractService{llm: llm}
}

// Extract resolves every template field. The returned map has exactly one
// entry per requested field; unresolved fields carry the sentinel.
func (s *ExtractService) Extract(
	ctx context.Context, text string, template *domain.Template, elements []domain.Element,
) (domain.ExtractionResult, error) {
	logger.Section("Field Extraction")

	result := domain.ExtractionResult{}
	if template == nil || template.Len() == 0 {
		logger.Debug("Empty template, nothing to extract")
		return result, nil
	}
	names := template.Names()
	logger.Debug("Fields requested: %v", names)

	if strings.TrimSpace(text) == "" && len(elements) == 0 {
		logger.Warn("No text to extract from")
		s.backfill(result, names)
		return result, nil
	}

	modelAnswered := false
	if s.llm != nil {
		response, err := s.llm.Chat(ctx, []driven.ChatMessage{
			{Role: "system", Content: extractSystemPrompt},
			{Role: "user", Content: s.buildPrompt(text, template, elements)},
		}, driven.ChatOptions{
			MaxTokens:   extractMaxTokens,
			Temperature: extractTemperature,
		})
		if err != nil {
			logger.Warn("LLM extraction failed: %v (using keyword fallback)", err)
		} else {
			parseFieldLines(response, names, result)
			modelAnswered = true
			logger.Debug("LLM resolved %d of %d fields", len(result.Available(names)), len(names))
		}
	} else {
		logger.Debug("LLM unavailable, using keyword fallback only")
	}

	// The keyword scan is strictly a degradation path: a successful model
	// response is authoritative, and fields it left out or declared missing
	// stay unresolved rather than being second-guessed by regex.
	if !modelAnswered {
		s.keywordFallback(text, names, result)
	}
	s.backfill(result, names)

	logger.Info("Extraction complete: %d resolved, %d missing",
		len(result.Available(names)), len(result.Missing(names)))
	return result, nil
}

// ExtractInto resolves only the fields missing from existing and merges the
// new values in. Fields already holding real values are never re-extracted.
func (s *ExtractService) ExtractInto(
	ctx context.Context, text string, template *domain.Template, elements []domain.Element,
	existing domain.ExtractionResult,
) (domain.ExtractionResult, error) {
	if existing == nil {
		existing = domain.ExtractionResult{}
	}
	if template == nil || template.Len() == 0 {
		return existing, nil
	}

	missing := existing.Missing(template.Names())
	if len(missing) == 0 {
		logger.Debug("All fields already resolved, skipping extraction")
		return existing, nil
	}
	logger.Debug("Re-extracting %d missing fields: %v", len(missing), missing)

	byName := make(map[string]domain.FieldRequest, template.Len())
	for _, f := range template.Fields() {
		byName[f.Name] = f
	}
	sub := domain.NewTemplate()
	for _, name := range missing {
		sub.Add(byName[name])
	}

	fresh, err := s.Extract(ctx, text, sub, elements)
	if err != nil {
		return existing, err
	}
	existing.Merge(fresh)
	return existing, nil
}

// buildPrompt assembles the extraction prompt. When structured tables are
// available they take priority over raw text, since the parse service's
// tables hold the figures in a form the model reads reliably.
func (s *ExtractService) buildPrompt(text string, template *domain.Template, elements []domain.Element) string {
	var sb strings.Builder

	var tables, charts, headings []domain.Element
	for _, el := range elements {
		switch el.Kind {
		case domain.ElementTable:
			tables = append(tables, el)
		case domain.ElementChart:
			charts = append(charts, el)
		case domain.ElementHeading:
			headings = append(headings, el)
		}
	}

	if len(headings) > 0 {
		sb.WriteString("Document outline:\n")
		for _, h := range headings {
			if t := h.BestText(); t != "" {
				fmt.Fprintf(&sb, "- %s (page %d)\n", strings.TrimSpace(t), h.Page)
			}
		}
		sb.WriteString("\n")
	}

	prefix := textPrefixPlain
	if len(tables) > 0 {
		prefix = textPrefixWithTables

		sb.WriteString("Tables:\n")
		for _, t := range tables {
			if body := t.BestText(); body != "" {
				fmt.Fprintf(&sb, "%s\n\n", strings.TrimSpace(body))
			}
		}
		for _, c := range charts {
			if body := c.BestText(); body != "" {
				fmt.Fprintf(&sb, "Chart (page %d): %s\n", c.Page, strings.TrimSpace(body))
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Document excerpt:\n")
	sb.WriteString(truncateRunes(text, prefix))
	sb.WriteString("\n\nExtract the following fields:\n")
	for _, f := range template.Fields() {
		fmt.Fprintf(&sb, "[%s] (%s)\n", f.Name, f.Type)
	}

	return sb.String()
}

// parseFieldLines maps "[Field]: value" response lines onto the requested
// names. Exact name matches are taken first; otherwise a substring match in
// either direction is accepted. The first value wins per field, so a field
// whose name is a prefix of another ("Operating Profit" vs "Operating Profit
// Margin") is never clobbered by the longer field's line. A sentinel answer
// resolves the field to the sentinel.
func parseFieldLines(response string, names []string, result domain.ExtractionResult) {
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		idx := strings.Index(line, ":")
		if idx <= 0 {
			continue
		}

		key := strings.TrimSpace(line[:idx])
		key = strings.Trim(key, "[]*- ")
		value := strings.TrimSpace(line[idx+1:])
		if key == "" || value == "" {
			continue
		}

		name, ok := matchFieldName(key, names)
		if !ok {
			continue
		}
		if _, taken := result[name]; taken {
			continue
		}
		if strings.EqualFold(value, domain.NoData) {
			result[name] = domain.NoData
			continue
		}
		result[name] = value
	}
}

// matchFieldName resolves a response key to a requested field name: exact
// case-insensitive match first, then substring containment either way.
func matchFieldName(key string, names []string) (string, bool) {
	for _, name := range names {
		if strings.EqualFold(key, name) {
			return name, true
		}
	}
	keyLower := strings.ToLower(key)
	for _, name := range names {
		nameLower := strings.ToLower(name)
		if strings.Contains(keyLower, nameLower) || strings.Contains(nameLower, keyLower) {
			return name, true
		}
	}
	return "", false
}

// keywordFallback scans the raw text for "<keyword>: value" patterns using
// each field's synonym set. Only fields still unresolved are touched.
func (s *ExtractService) keywordFallback(text string, names []string, result domain.ExtractionResult) {
	if strings.TrimSpace(text) == "" {
		return
	}

	for _, name := range names {
		if v, ok := result[name]; ok && v != "" && v != domain.NoData {
			continue
		}

		for _, kw := range synonymsFor(name) {
			pattern, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(kw) + `[:\s]*([^\n]+)`)
			if err != nil {
				continue
			}
			m := pattern.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			value := strings.TrimSpace(m[1])
			value = strings.Trim(value, "*|")
			value = strings.TrimSpace(value)
			// Single characters are punctuation noise, not values.
			if len([]rune(value)) > 1 {
				logger.Debug("Keyword fallback resolved %q via %q", name, kw)
				result[name] = value
				break
			}
		}
	}
}

// backfill stamps the sentinel onto every still-unresolved field so the
// result is total over the requested names.
func (s *ExtractService) backfill(result domain.ExtractionResult, names []string) {
	for _, name := range names {
		if v, ok := result[name]; !ok || v == "" {
			result[name] = domain.NoData
		}
	}
}

// truncateRunes bounds s to n runes without splitting a character.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
