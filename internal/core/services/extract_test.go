package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsight-io/docsight-cli/internal/core/domain"
)

func financialTemplate() *domain.Template {
	return domain.NewTemplate(
		domain.FieldRequest{Name: "Company Name", Type: domain.FieldText},
		domain.FieldRequest{Name: "Revenue", Type: domain.FieldNumber},
		domain.FieldRequest{Name: "Operating Profit", Type: domain.FieldNumber},
		domain.FieldRequest{Name: "Operating Profit Margin", Type: domain.FieldNumber},
	)
}

func TestExtract_BatchedResponseMapsAllFields(t *testing.T) {
	llm := &mockLLM{response: strings.Join([]string{
		"[Company Name]: Acme Industrial",
		"[Revenue]: 1.2B USD",
		"[Operating Profit]: 43M USD",
		"[Operating Profit Margin]: 17.6%",
	}, "\n")}
	svc := NewExtractService(llm)

	result, err := svc.Extract(context.Background(), "some document text", financialTemplate(), nil)
	require.NoError(t, err)

	assert.Equal(t, "Acme Industrial", result["Company Name"])
	assert.Equal(t, "1.2B USD", result["Revenue"])
	assert.Equal(t, "43M USD", result["Operating Profit"])
	assert.Equal(t, "17.6%", result["Operating Profit Margin"])
	assert.Equal(t, 1, llm.chatCalls, "all fields resolve in one model call")
	assert.Equal(t, 0.1, llm.lastOpts.Temperature)
	assert.Equal(t, 800, llm.lastOpts.MaxTokens)
}

func TestExtract_PrefixFieldNamesDoNotCollide(t *testing.T) {
	// "Operating Profit" must take its own line's value even though its name
	// is a substring of "Operating Profit Margin".
	llm := &mockLLM{response: strings.Join([]string{
		"[Operating Profit]: 43M USD",
		"[Operating Profit Margin]: 17.6%",
	}, "\n")}
	svc := NewExtractService(llm)

	template := domain.NewTemplate(
		domain.FieldRequest{Name: "Operating Profit", Type: domain.FieldNumber},
		domain.FieldRequest{Name: "Operating Profit Margin", Type: domain.FieldNumber},
	)
	result, err := svc.Extract(context.Background(), "text", template, nil)
	require.NoError(t, err)

	assert.Equal(t, "43M USD", result["Operating Profit"])
	assert.Equal(t, "17.6%", result["Operating Profit Margin"])
}

func TestExtract_SentinelBackfill(t *testing.T) {
	llm := &mockLLM{response: "[Company Name]: Acme Industrial"}
	svc := NewExtractService(llm)

	result, err := svc.Extract(context.Background(), "text without figures", financialTemplate(), nil)
	require.NoError(t, err)

	require.Len(t, result, 4)
	assert.Equal(t, "Acme Industrial", result["Company Name"])
	assert.Equal(t, domain.NoData, result["Revenue"])
	assert.Equal(t, domain.NoData, result["Operating Profit"])
	assert.Equal(t, domain.NoData, result["Operating Profit Margin"])
}

func TestExtract_ModelOmissionBackfillsSentinel(t *testing.T) {
	// A successful model response is authoritative: a field it omits is
	// backfilled with the sentinel, not rescued by the keyword scan, even
	// when the raw text carries a matching labelled line.
	llm := &mockLLM{response: "[Revenue]: 100 million"}
	svc := NewExtractService(llm)

	template := domain.NewTemplate(
		domain.FieldRequest{Name: "Revenue", Type: domain.FieldNumber},
		domain.FieldRequest{Name: "CEO", Type: domain.FieldText},
	)
	result, err := svc.Extract(context.Background(),
		"CEO: Jane Smith\nRevenue: 100 million", template, nil)
	require.NoError(t, err)

	assert.Equal(t, "100 million", result["Revenue"])
	assert.Equal(t, domain.NoData, result["CEO"])
}

func TestExtract_SentinelAnswerStaysSentinel(t *testing.T) {
	// The model explicitly declaring a field missing is a resolution, not an
	// invitation to regex-scan the text for it.
	llm := &mockLLM{response: "[Revenue]: " + domain.NoData}
	svc := NewExtractService(llm)

	template := domain.NewTemplate(domain.FieldRequest{Name: "Revenue", Type: domain.FieldNumber})
	result, err := svc.Extract(context.Background(),
		"Financial highlights\nRevenue: 1,204 million USD\nCosts: 900", template, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.NoData, result["Revenue"])
}

func TestExtract_KeywordFallbackUsesSynonyms(t *testing.T) {
	svc := NewExtractService(nil)

	template := domain.NewTemplate(domain.FieldRequest{Name: "Revenue", Type: domain.FieldNumber})
	result, err := svc.Extract(context.Background(),
		"Income statement\nNet sales: 840 million USD", template, nil)
	require.NoError(t, err)

	assert.Equal(t, "840 million USD", result["Revenue"])
}

func TestExtract_NilLLMFallsBackLocally(t *testing.T) {
	svc := NewExtractService(nil)

	result, err := svc.Extract(context.Background(),
		"Company Name: Acme Industrial\nnothing else here", financialTemplate(), nil)
	require.NoError(t, err)

	assert.Equal(t, "Acme Industrial", result["Company Name"])
	assert.Equal(t, domain.NoData, result["Operating Profit"])
}

func TestExtract_LLMErrorDegradesToFallback(t *testing.T) {
	llm := &mockLLM{err: errors.New("rate limited")}
	svc := NewExtractService(llm)

	template := domain.NewTemplate(domain.FieldRequest{Name: "CEO", Type: domain.FieldText})
	result, err := svc.Extract(context.Background(), "CEO: J. Doe", template, nil)

	require.NoError(t, err, "a model failure must not fail the extraction")
	assert.Equal(t, "J. Doe", result["CEO"])
}

func TestExtract_EmptyTemplate(t *testing.T) {
	llm := &mockLLM{}
	svc := NewExtractService(llm)

	result, err := svc.Extract(context.Background(), "text", domain.NewTemplate(), nil)
	require.NoError(t, err)

	assert.Empty(t, result)
	assert.Zero(t, llm.chatCalls)
}

func TestExtract_EmptyText(t *testing.T) {
	llm := &mockLLM{}
	svc := NewExtractService(llm)

	result, err := svc.Extract(context.Background(), "   ", financialTemplate(), nil)
	require.NoError(t, err)

	assert.Zero(t, llm.chatCalls)
	for _, name := range financialTemplate().Names() {
		assert.Equal(t, domain.NoData, result[name])
	}
}

func TestExtract_TablesTakePromptPriority(t *testing.T) {
	llm := &mockLLM{response: "[Revenue]: 55M"}
	svc := NewExtractService(llm)

	elements := []domain.Element{
		{Kind: domain.ElementHeading, Page: 1, Text: "Financial Results"},
		{Kind: domain.ElementTable, Page: 2, SemanticMarkup: "| Revenue | 55M |", Text: "Revenue 55M"},
		{Kind: domain.ElementChart, Page: 3, Text: "Revenue trend 2021-2024"},
	}
	text := strings.Repeat("filler text ", 1000)

	template := domain.NewTemplate(domain.FieldRequest{Name: "Revenue", Type: domain.FieldNumber})
	_, err := svc.Extract(context.Background(), text, template, elements)
	require.NoError(t, err)

	prompt := llm.userPrompt()
	assert.Contains(t, prompt, "| Revenue | 55M |", "table semantic markup enters the prompt")
	assert.Contains(t, prompt, "Revenue trend 2021-2024")
	assert.Contains(t, prompt, "Financial Results")

	// With tables present, the raw excerpt shrinks to the short prefix.
	excerpt := prompt[strings.Index(prompt, "Document excerpt:"):]
	assert.Less(t, len(excerpt), 2500)
}

func TestExtract_PlainTextGetsLongerPrefix(t *testing.T) {
	llm := &mockLLM{response: ""}
	svc := NewExtractService(llm)

	text := strings.Repeat("x", 10000)
	template := domain.NewTemplate(domain.FieldRequest{Name: "Revenue", Type: domain.FieldNumber})
	_, err := svc.Extract(context.Background(), text, template, nil)
	require.NoError(t, err)

	prompt := llm.userPrompt()
	assert.Contains(t, prompt, strings.Repeat("x", 4000))
	assert.NotContains(t, prompt, strings.Repeat("x", 4001))
}

func TestExtractInto_PreservesExistingValues(t *testing.T) {
	// The model would happily return a new revenue figure, but the existing
	// real value must survive.
	llm := &mockLLM{response: "[Revenue]: 999B\n[CEO]: J. Doe"}
	svc := NewExtractService(llm)

	template := domain.NewTemplate(
		domain.FieldRequest{Name: "Revenue", Type: domain.FieldNumber},
		domain.FieldRequest{Name: "CEO", Type: domain.FieldText},
	)
	existing := domain.ExtractionResult{"Revenue": "1.2B USD", "CEO": domain.NoData}

	result, err := svc.ExtractInto(context.Background(), "text", template, nil, existing)
	require.NoError(t, err)

	assert.Equal(t, "1.2B USD", result["Revenue"])
	assert.Equal(t, "J. Doe", result["CEO"])

	// Only the missing field should have been requested.
	prompt := llm.userPrompt()
	assert.Contains(t, prompt, "[CEO]")
	assert.NotContains(t, prompt, "[Revenue]")
}

func TestExtractInto_AllResolvedSkipsModel(t *testing.T) {
	llm := &mockLLM{}
	svc := NewExtractService(llm)

	template := domain.NewTemplate(domain.FieldRequest{Name: "Revenue", Type: domain.FieldNumber})
	existing := domain.ExtractionResult{"Revenue": "1.2B USD"}

	result, err := svc.ExtractInto(context.Background(), "text", template, nil, existing)
	require.NoError(t, err)

	assert.Zero(t, llm.chatCalls)
	assert.Equal(t, "1.2B USD", result["Revenue"])
}

func TestParseFieldLines_Formats(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		expected string
	}{
		{"bracketed", "[Revenue]: 100", "100"},
		{"plain", "Revenue: 100", "100"},
		{"bulleted", "- Revenue: 100", "100"},
		{"case insensitive", "[revenue]: 100", "100"},
		{"value with colon", "[Revenue]: USD: 100", "USD: 100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := domain.ExtractionResult{}
			parseFieldLines(tt.line, []string{"Revenue"}, result)
			assert.Equal(t, tt.expected, result["Revenue"])
		})
	}
}

func TestParseFieldLines_SkipsGarbage(t *testing.T) {
	result := domain.ExtractionResult{}
	parseFieldLines("no colon here\n: empty key\n[Unknown Field]: 7",
		[]string{"Revenue"}, result)
	assert.Empty(t, result)
}

func TestParseFieldLines_SentinelLineResolves(t *testing.T) {
	// A sentinel answer takes the field; a later real value does not reopen it.
	result := domain.ExtractionResult{}
	parseFieldLines("[Revenue]: "+domain.NoData+"\n[Revenue]: 100",
		[]string{"Revenue"}, result)
	assert.Equal(t, domain.NoData, result["Revenue"])
}
