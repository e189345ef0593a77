// Package file provides TOML-backed configuration for the CLI.
// Configuration lives at ~/.docsight/config.toml; environment variables
// overlay the file so API keys never need to be written to disk.
package file

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/docsight-io/docsight-cli/internal/core/domain"
)

// Default configuration values.
const (
	DefaultLLMProvider       = "openai"
	DefaultLLMModel          = "gpt-4o-mini"
	DefaultEmbeddingProvider = "openai"
	DefaultEmbeddingModel    = "text-embedding-3-small"
	DefaultOCRLanguages      = "eng"
)

// Config is the full CLI configuration.
type Config struct {
	LLM         LLMConfig         `toml:"llm"`
	Embedding   EmbeddingConfig   `toml:"embedding"`
	Parser      ParserConfig      `toml:"parser"`
	OCR         OCRConfig         `toml:"ocr"`
	VectorStore VectorStoreConfig `toml:"vector_store"`
	Storage     StorageConfig     `toml:"storage"`

	path string
}

// LLMConfig configures the language model backend.
type LLMConfig struct {
	Provider string `toml:"provider"`
	APIKey   string `toml:"api_key,omitempty"`
	BaseURL  string `toml:"base_url,omitempty"`
	Model    string `toml:"model"`
}

// EmbeddingConfig configures the embedding backend.
type EmbeddingConfig struct {
	Provider   string `toml:"provider"`
	APIKey     string `toml:"api_key,omitempty"`
	BaseURL    string `toml:"base_url,omitempty"`
	Model      string `toml:"model"`
	Dimensions int    `toml:"dimensions,omitempty"`
}

// ParserConfig configures the remote document-parse service.
type ParserConfig struct {
	APIKey  string `toml:"api_key,omitempty"`
	BaseURL string `toml:"base_url,omitempty"`
}

// OCRConfig configures the OCR fallback service.
type OCRConfig struct {
	Endpoint  string   `toml:"endpoint,omitempty"`
	APIKey    string   `toml:"api_key,omitempty"`
	Languages []string `toml:"languages,omitempty"`
}

// VectorStoreConfig configures the remote vector store.
type VectorStoreConfig struct {
	URL    string `toml:"url,omitempty"`
	APIKey string `toml:"api_key,omitempty"`
	Table  string `toml:"table,omitempty"`
}

// StorageConfig configures local metadata storage.
type StorageConfig struct {
	DataDir string `toml:"data_dir,omitempty"`
}

// Load reads configuration from configDir, applies defaults and overlays
// environment variables. If configDir is empty, defaults to ~/.docsight.
// A missing config file is not an error; defaults apply.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".docsight")
	}

	// Ensure directory exists
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	cfg := &Config{
		path: filepath.Join(configDir, "config.toml"),
	}

	data, err := os.ReadFile(cfg.path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

// Save persists the configuration to disk with restricted permissions.
func (c *Config) Save() error {
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(c.path, data, 0600)
}

// Path returns the configuration file path.
func (c *Config) Path() string {
	return c.path
}

// applyDefaults fills unset values.
func (c *Config) applyDefaults() {
	if c.LLM.Provider == "" {
		c.LLM.Provider = DefaultLLMProvider
	}
	if c.LLM.Model == "" {
		c.LLM.Model = DefaultLLMModel
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = DefaultEmbeddingProvider
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = DefaultEmbeddingModel
	}
	if len(c.OCR.Languages) == 0 {
		c.OCR.Languages = strings.Split(DefaultOCRLanguages, ",")
	}
}

// applyEnv overlays environment variables onto the loaded file. Only keys
// that are set in the environment take effect.
func (c *Config) applyEnv() {
	overlay(&c.LLM.Provider, "DOCSIGHT_LLM_PROVIDER")
	overlay(&c.LLM.APIKey, "OPENAI_API_KEY")
	overlay(&c.LLM.BaseURL, "DOCSIGHT_LLM_BASE_URL")
	overlay(&c.LLM.Model, "DOCSIGHT_LLM_MODEL")

	overlay(&c.Embedding.Provider, "DOCSIGHT_EMBEDDING_PROVIDER")
	overlay(&c.Embedding.APIKey, "OPENAI_API_KEY")
	overlay(&c.Embedding.BaseURL, "DOCSIGHT_EMBEDDING_BASE_URL")
	overlay(&c.Embedding.Model, "DOCSIGHT_EMBEDDING_MODEL")

	overlay(&c.Parser.APIKey, "UPSTAGE_API_KEY")
	overlay(&c.Parser.BaseURL, "UPSTAGE_BASE_URL")

	overlay(&c.OCR.Endpoint, "OCR_ENDPOINT")
	overlay(&c.OCR.APIKey, "OCR_API_KEY")

	overlay(&c.VectorStore.URL, "SUPABASE_URL")
	overlay(&c.VectorStore.APIKey, "SUPABASE_KEY")
}

// overlay replaces dst with the environment value when set.
func overlay(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// LLMSettings converts to the domain settings type.
func (c *Config) LLMSettings() domain.LLMSettings {
	return domain.LLMSettings{
		Provider: domain.AIProvider(c.LLM.Provider),
		APIKey:   c.LLM.APIKey,
		BaseURL:  c.LLM.BaseURL,
		Model:    c.LLM.Model,
	}
}

// EmbeddingSettings converts to the domain settings type.
func (c *Config) EmbeddingSettings() domain.EmbeddingSettings {
	return domain.EmbeddingSettings{
		Provider:   domain.AIProvider(c.Embedding.Provider),
		APIKey:     c.Embedding.APIKey,
		BaseURL:    c.Embedding.BaseURL,
		Model:      c.Embedding.Model,
		Dimensions: c.Embedding.Dimensions,
	}
}

// ParserSettings converts to the domain settings type.
func (c *Config) ParserSettings() domain.ParserSettings {
	return domain.ParserSettings{
		APIKey:  c.Parser.APIKey,
		BaseURL: c.Parser.BaseURL,
	}
}

// OCRSettings converts to the domain settings type.
func (c *Config) OCRSettings() domain.OCRSettings {
	return domain.OCRSettings{
		Endpoint:  c.OCR.Endpoint,
		APIKey:    c.OCR.APIKey,
		Languages: c.OCR.Languages,
	}
}

// VectorStoreSettings converts to the domain settings type.
func (c *Config) VectorStoreSettings() domain.VectorStoreSettings {
	return domain.VectorStoreSettings{
		URL:    c.VectorStore.URL,
		APIKey: c.VectorStore.APIKey,
		Table:  c.VectorStore.Table,
	}
}
