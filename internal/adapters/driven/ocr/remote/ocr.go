// Package remote provides an OCR engine adapter backed by an HTTP
// recognition service. It is the last rung of the parse ladder, used when
// both the native text layer and the document-parse service fail.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/docsight-io/docsight-cli/internal/core/ports/driven"
)

// Ensure Engine implements the interface.
var _ driven.OCREngine = (*Engine)(nil)

// DefaultTimeout bounds one page recognition request.
const DefaultTimeout = 30 * time.Second

// Config holds configuration for the remote OCR engine.
type Config struct {
	// Endpoint is the recognition service URL (required).
	Endpoint string

	// APIKey authenticates requests, sent as X-API-Key. Optional for
	// self-hosted services.
	APIKey string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Engine recognises page bitmaps via the remote service.
type Engine struct {
	client   *http.Client
	endpoint string
	apiKey   string
}

// recogniseResponse is the recognition response format.
type recogniseResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// New creates a new remote OCR engine.
func New(cfg Config) (*Engine, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("ocr: endpoint is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Engine{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
	}, nil
}

// RecognisePage encodes the bitmap as PNG and submits it for recognition.
func (e *Engine) RecognisePage(ctx context.Context, img *driven.PageImage, languages []string) (string, error) {
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return "", fmt.Errorf("ocr: empty page image")
	}

	encoded, err := encodePNG(img)
	if err != nil {
		return "", fmt.Errorf("encode page: %w", err)
	}

	endpoint := e.endpoint
	if len(languages) > 0 {
		endpoint += "?languages=" + url.QueryEscape(strings.Join(languages, "+"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "image/png")
	if e.apiKey != "" {
		req.Header.Set("X-API-Key", e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ocr error (status %d): %s", resp.StatusCode, string(body))
	}

	var recognised recogniseResponse
	if err := json.Unmarshal(body, &recognised); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if recognised.Error != "" {
		return "", fmt.Errorf("ocr error: %s", recognised.Error)
	}

	return recognised.Text, nil
}

// encodePNG converts the raw RGB bitmap into PNG bytes.
func encodePNG(img *driven.PageImage) ([]byte, error) {
	if len(img.Pixels) < img.Width*img.Height*3 {
		return nil, fmt.Errorf("pixel buffer too small: %d bytes for %dx%d", len(img.Pixels), img.Width, img.Height)
	}

	rgba := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			offset := (y*img.Width + x) * 3
			rgba.SetRGBA(x, y, color.RGBA{
				R: img.Pixels[offset],
				G: img.Pixels[offset+1],
				B: img.Pixels[offset+2],
				A: 0xff,
			})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, rgba); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
