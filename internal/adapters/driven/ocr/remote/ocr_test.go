package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docsight-io/docsight-cli/internal/core/ports/driven"
)

func testImage(width, height int) *driven.PageImage {
	return &driven.PageImage{
		Width:  width,
		Height: height,
		Pixels: make([]byte, width*height*3),
	}
}

func TestNew_RequiresEndpoint(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestRecognisePage_SendsPNG(t *testing.T) {
	var gotContentType, gotAPIKey, gotLanguages string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotAPIKey = r.Header.Get("X-API-Key")
		gotLanguages = r.URL.Query().Get("languages")

		var err error
		gotBody, err = io.ReadAll(r.Body)
		require.NoError(t, err)

		require.NoError(t, json.NewEncoder(w).Encode(map[string]string{
			"text": "recognised text",
		}))
	}))
	defer server.Close()

	engine, err := New(Config{Endpoint: server.URL, APIKey: "key"})
	require.NoError(t, err)

	text, err := engine.RecognisePage(context.Background(), testImage(4, 3), []string{"eng", "kor"})
	require.NoError(t, err)

	assert.Equal(t, "recognised text", text)
	assert.Equal(t, "image/png", gotContentType)
	assert.Equal(t, "key", gotAPIKey)
	assert.Equal(t, "eng+kor", gotLanguages)

	decoded, err := png.Decode(bytes.NewReader(gotBody))
	require.NoError(t, err)
	bounds := decoded.Bounds()
	assert.Equal(t, 4, bounds.Dx())
	assert.Equal(t, 3, bounds.Dy())
}

func TestRecognisePage_NoLanguages(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		require.NoError(t, json.NewEncoder(w).Encode(map[string]string{"text": "t"}))
	}))
	defer server.Close()

	engine, err := New(Config{Endpoint: server.URL})
	require.NoError(t, err)

	_, err = engine.RecognisePage(context.Background(), testImage(2, 2), nil)
	require.NoError(t, err)
	assert.Empty(t, gotQuery)
}

func TestRecognisePage_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	engine, err := New(Config{Endpoint: server.URL})
	require.NoError(t, err)

	_, err = engine.RecognisePage(context.Background(), testImage(2, 2), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestRecognisePage_ErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(map[string]string{
			"error": "unsupported image",
		}))
	}))
	defer server.Close()

	engine, err := New(Config{Endpoint: server.URL})
	require.NoError(t, err)

	_, err = engine.RecognisePage(context.Background(), testImage(2, 2), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported image")
}

func TestRecognisePage_EmptyImage(t *testing.T) {
	engine, err := New(Config{Endpoint: "http://localhost:1"})
	require.NoError(t, err)

	_, err = engine.RecognisePage(context.Background(), nil, nil)
	assert.Error(t, err)

	_, err = engine.RecognisePage(context.Background(), &driven.PageImage{}, nil)
	assert.Error(t, err)
}

func TestRecognisePage_TruncatedPixels(t *testing.T) {
	engine, err := New(Config{Endpoint: "http://localhost:1"})
	require.NoError(t, err)

	img := &driven.PageImage{Width: 10, Height: 10, Pixels: make([]byte, 5)}
	_, err = engine.RecognisePage(context.Background(), img, nil)
	assert.Error(t, err)
}
