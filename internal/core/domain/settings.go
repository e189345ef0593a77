package domain

// AIProvider identifies which backend serves LLM or embedding requests.
type AIProvider string

// Supported AI providers.
const (
	// AIProviderOpenAI uses the OpenAI API (or a compatible endpoint).
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderOllama uses a local Ollama server.
	AIProviderOllama AIProvider = "ollama"
)

// LLMSettings configures the language model service.
type LLMSettings struct {
	Provider AIProvider
	APIKey   string
	BaseURL  string
	Model    string
}

// IsConfigured returns true when the settings name a usable provider.
// OpenAI needs an API key; Ollama only needs the provider selected.
func (s *LLMSettings) IsConfigured() bool {
	switch s.Provider {
	case AIProviderOpenAI:
		return s.APIKey != ""
	case AIProviderOllama:
		return true
	default:
		return false
	}
}

// EmbeddingSettings configures the embedding service.
type EmbeddingSettings struct {
	Provider   AIProvider
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
}

// IsConfigured returns true when the settings name a usable provider.
func (s *EmbeddingSettings) IsConfigured() bool {
	switch s.Provider {
	case AIProviderOpenAI:
		return s.APIKey != ""
	case AIProviderOllama:
		return true
	default:
		return false
	}
}

// EmbeddingDimensions returns the known vector sizes per embedding model.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		"nomic-embed-text":       768,
		"mxbai-embed-large":      1024,
	}
}

// ParserSettings configures the remote document-parse service.
type ParserSettings struct {
	APIKey  string
	BaseURL string
}

// IsConfigured returns true when an API key is present.
func (s *ParserSettings) IsConfigured() bool {
	return s.APIKey != ""
}

// OCRSettings configures the local OCR fallback service.
type OCRSettings struct {
	Endpoint  string
	APIKey    string
	Languages []string
}

// IsConfigured returns true when an endpoint is present.
func (s *OCRSettings) IsConfigured() bool {
	return s.Endpoint != ""
}

// VectorStoreSettings configures the remote vector store.
type VectorStoreSettings struct {
	URL    string
	APIKey string
	Table  string
}

// IsConfigured returns true when both URL and key are present.
func (s *VectorStoreSettings) IsConfigured() bool {
	return s.URL != "" && s.APIKey != ""
}
