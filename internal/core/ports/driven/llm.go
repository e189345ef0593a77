package driven

import "context"

// LLMService provides language model completions for field extraction and
// report assembly. This is an optional service - when nil, extraction falls
// back to deterministic keyword matching and report assembly is disabled.
//
// Implementations may include:
//   - OpenAI (gpt-4o, gpt-4o-mini)
//   - Azure OpenAI or compatible APIs via a custom base URL
//   - Local models via inference servers
type LLMService interface {
	// Generate produces a text completion from a single user prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Chat conducts a conversation, typically a system instruction plus a
	// user prompt. Extraction and assembly both use this form.
	Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test
	// request. Used at startup to decide whether LLM features are enabled.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatOptions configures chat behaviour.
type ChatOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}
