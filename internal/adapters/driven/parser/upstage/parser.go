// Package upstage provides a document-parse adapter using the Upstage
// Document AI API. It structures scanned or complex documents into text,
// HTML and markdown representations with per-element page attribution.
package upstage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/docsight-io/docsight-cli/internal/core/domain"
	"github.com/docsight-io/docsight-cli/internal/core/ports/driven"
	"github.com/docsight-io/docsight-cli/internal/logger"
)

// Ensure Parser implements the interface.
var _ driven.DocumentParser = (*Parser)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.upstage.ai/v1"
	DefaultModel   = "document-parse"
	DefaultTimeout = 60 * time.Second
)

// Config holds configuration for the Upstage parser.
type Config struct {
	// APIKey is the Upstage API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.upstage.ai/v1).
	BaseURL string

	// Model is the parse model to use (default: document-parse).
	Model string

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// Parser submits documents to the Upstage document-parse endpoint.
type Parser struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// parseResponse is the document-parse response format.
type parseResponse struct {
	Content struct {
		Text     string `json:"text"`
		HTML     string `json:"html"`
		Markdown string `json:"markdown"`
	} `json:"content"`
	Elements []struct {
		Category string `json:"category"`
		Page     int    `json:"page"`
		Content  struct {
			Text     string `json:"text"`
			HTML     string `json:"html"`
			Markdown string `json:"markdown"`
		} `json:"content"`
	} `json:"elements"`
	Usage struct {
		Pages int `json:"pages"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// New creates a new Upstage parser.
func New(cfg Config) (*Parser, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("upstage: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Parser{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
	}, nil
}

// Parse submits document bytes for structuring.
func (p *Parser) Parse(ctx context.Context, data []byte, opts driven.ParseOptions) (*driven.ParseResult, error) {
	body, contentType, err := buildRequestBody(data, p.model, opts)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		p.baseURL+"/document-ai/document-parse",
		body,
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var parsed parseResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if parsed.Error != nil {
		return nil, fmt.Errorf("upstage error: %s", parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstage error (status %d): %s", resp.StatusCode, string(respBody))
	}

	result := &driven.ParseResult{
		Text:      parsed.Content.Text,
		PageCount: parsed.Usage.Pages,
		Elements:  make([]domain.Element, 0, len(parsed.Elements)),
	}
	if result.Text == "" {
		result.Text = parsed.Content.Markdown
	}

	for _, el := range parsed.Elements {
		result.Elements = append(result.Elements, domain.Element{
			Kind:           domain.ClassifyCategory(el.Category),
			Category:       el.Category,
			Page:           el.Page,
			Text:           el.Content.Text,
			Markup:         el.Content.HTML,
			SemanticMarkup: el.Content.Markdown,
		})
	}

	logger.Debug("Upstage parse: %d pages, %d elements", result.PageCount, len(result.Elements))
	return result, nil
}

// buildRequestBody assembles the multipart form for one parse request.
func buildRequestBody(data []byte, model string, opts driven.ParseOptions) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("document", "document.pdf")
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("write document: %w", err)
	}

	fields := map[string]string{
		"model": model,
		"ocr":   "auto",
	}
	if opts.ForceOCR {
		fields["ocr"] = "force"
	}
	if len(opts.Formats) > 0 {
		formats, err := json.Marshal(opts.Formats)
		if err != nil {
			return nil, "", fmt.Errorf("marshal formats: %w", err)
		}
		fields["output_formats"] = string(formats)
	}
	if opts.Coordinates {
		fields["coordinates"] = "true"
	}

	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return &buf, writer.FormDataContentType(), nil
}

// Ping validates the service is reachable. The parse endpoint has no health
// route, so this sends an empty request and accepts any non-5xx response as
// proof of reachability.
func (p *Parser) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/document-ai/document-parse", http.NoBody)
	if err != nil {
		return fmt.Errorf("upstage: failed to create ping request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("upstage: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("upstage: API returned status %d", resp.StatusCode)
	}
	return nil
}

// Close releases resources.
func (p *Parser) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
