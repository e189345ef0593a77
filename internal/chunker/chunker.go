// Package chunker splits document text into overlapping token-bounded chunks.
package chunker

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/docsight-io/docsight-cli/internal/core/domain"
)

// DefaultMaxTokens is the default chunk size in tokens.
const DefaultMaxTokens = 500

// DefaultOverlapTokens is the default overlap between consecutive chunks.
const DefaultOverlapTokens = 50

// encodingName is the BPE encoding used by the embedding models we target.
const encodingName = "cl100k_base"

// charsPerToken is the approximation used when no tokeniser is available.
const charsPerToken = 4

// Encoder tokenises and detokenises text. Satisfied by tiktoken; tests can
// substitute a deterministic stub.
type Encoder interface {
	Encode(text string) []int
	Decode(tokens []int) string
}

// Chunker produces overlapping token windows over text. Splitting is
// deterministic: the same text and parameters always yield the same chunks.
type Chunker struct {
	maxTokens     int
	overlapTokens int
	enc           Encoder
}

// Option configures the chunker.
type Option func(*Chunker)

// WithEncoder sets the token encoder. When not set, the chunker loads the
// tiktoken encoding and falls back to character windows if that fails.
func WithEncoder(enc Encoder) Option {
	return func(c *Chunker) {
		c.enc = enc
	}
}

// tiktokenEncoder adapts tiktoken to the Encoder interface.
type tiktokenEncoder struct {
	tk *tiktoken.Tiktoken
}

func (e tiktokenEncoder) Encode(text string) []int {
	return e.tk.Encode(text, nil, nil)
}

func (e tiktokenEncoder) Decode(tokens []int) string {
	return e.tk.Decode(tokens)
}

// New creates a chunker. Requires 0 < overlapTokens < maxTokens.
func New(maxTokens, overlapTokens int, opts ...Option) (*Chunker, error) {
	if maxTokens <= 0 {
		return nil, fmt.Errorf("chunker: max tokens must be positive, got %d", maxTokens)
	}
	if overlapTokens <= 0 || overlapTokens >= maxTokens {
		return nil, fmt.Errorf("chunker: overlap must be in (0, %d), got %d", maxTokens, overlapTokens)
	}

	c := &Chunker{
		maxTokens:     maxTokens,
		overlapTokens: overlapTokens,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.enc == nil {
		// Tokeniser setup can fail when the BPE vocabulary is not cached
		// locally. That is not fatal: Split degrades to character windows.
		if tk, err := tiktoken.GetEncoding(encodingName); err == nil {
			c.enc = tiktokenEncoder{tk: tk}
		}
	}

	return c, nil
}

// Split chunks text into overlapping windows. Empty text yields an empty
// slice, not an error. Chunk IDs and document references are left for the
// caller to fill in.
func (c *Chunker) Split(text string) []domain.Chunk {
	if text == "" {
		return []domain.Chunk{}
	}
	if c.enc == nil {
		return c.splitByCharacters(text)
	}

	tokens := c.enc.Encode(text)
	step := c.maxTokens - c.overlapTokens

	chunks := make([]domain.Chunk, 0, len(tokens)/step+1)
	for start := 0; start < len(tokens); start += step {
		end := start + c.maxTokens
		if end > len(tokens) {
			end = len(tokens)
		}

		window := tokens[start:end]
		chunks = append(chunks, domain.Chunk{
			Index:      len(chunks),
			StartToken: start,
			EndToken:   end,
			TokenCount: len(window),
			Text:       c.enc.Decode(window),
		})
	}

	return chunks
}

// splitByCharacters is the fallback when no tokeniser is available. It uses
// character windows scaled by the chars-per-token approximation and reports
// approximate token counts.
func (c *Chunker) splitByCharacters(text string) []domain.Chunk {
	chunkSize := c.maxTokens * charsPerToken
	overlap := c.overlapTokens * charsPerToken
	step := chunkSize - overlap

	runes := []rune(text)
	chunks := make([]domain.Chunk, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}

		window := string(runes[start:end])
		chunks = append(chunks, domain.Chunk{
			Index:      len(chunks),
			StartToken: start / charsPerToken,
			EndToken:   end / charsPerToken,
			TokenCount: len(window) / charsPerToken,
			Text:       window,
		})
	}

	return chunks
}

// CountTokens returns the token count of text, approximated by length when
// no tokeniser is available.
func (c *Chunker) CountTokens(text string) int {
	if c.enc == nil {
		return len(text) / charsPerToken
	}
	return len(c.enc.Encode(text))
}
