// Command docsight is the entry point for the document analysis CLI.
// It wires configuration, storage and the AI backends into the core
// services, degrading gracefully when optional backends are missing.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/docsight-io/docsight-cli/internal/adapters/driven/ai"
	"github.com/docsight-io/docsight-cli/internal/adapters/driven/config/file"
	"github.com/docsight-io/docsight-cli/internal/adapters/driven/ocr/remote"
	"github.com/docsight-io/docsight-cli/internal/adapters/driven/parser/pdftext"
	"github.com/docsight-io/docsight-cli/internal/adapters/driven/parser/upstage"
	"github.com/docsight-io/docsight-cli/internal/adapters/driven/renderer/poppler"
	"github.com/docsight-io/docsight-cli/internal/adapters/driven/storage/sqlite"
	vectormem "github.com/docsight-io/docsight-cli/internal/adapters/driven/vectorstore/memory"
	"github.com/docsight-io/docsight-cli/internal/adapters/driven/vectorstore/supabase"
	"github.com/docsight-io/docsight-cli/internal/adapters/driving/cli"
	"github.com/docsight-io/docsight-cli/internal/chunker"
	"github.com/docsight-io/docsight-cli/internal/core/ports/driven"
	"github.com/docsight-io/docsight-cli/internal/core/services"
	"github.com/docsight-io/docsight-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A .env in the working directory is a convenience for development;
	// its absence is not an error.
	_ = godotenv.Load()

	cfg, err := file.Load("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := sqlite.NewStore(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening metadata store: %w", err)
	}
	defer store.Close()

	llm := buildLLM(cfg)
	embedder := buildEmbedder(cfg)
	vectors := buildVectorStore(cfg)

	parseService := services.NewParseService(
		pdftext.New(),
		buildRemoteParser(cfg),
		buildRenderer(),
		buildOCR(cfg),
	)
	parseService.SetLanguages(cfg.OCR.Languages)

	splitter, err := chunker.New(chunker.DefaultMaxTokens, chunker.DefaultOverlapTokens)
	if err != nil {
		return fmt.Errorf("creating chunker: %w", err)
	}

	retrieveService := services.NewRetrieveService(embedder, vectors)

	cli.SetServices(cli.Deps{
		Ingest:   services.NewIngestService(parseService, store, embedder, vectors, splitter),
		Extract:  services.NewExtractService(llm),
		Retrieve: retrieveService,
		Report:   services.NewAssembleService(llm, retrieveService, store),
		DocStore: store,
	})
	cli.SetVersion(version)

	return cli.Execute()
}

// buildLLM validates the configured LLM backend. Returns nil when none is
// configured or the backend is unreachable; extraction then falls back to
// keyword matching and report assembly refuses with a clear error.
func buildLLM(cfg *file.Config) driven.LLMService {
	settings := cfg.LLMSettings()
	llm, err := ai.CreateAndValidateLLMService(&settings)
	if err != nil {
		logger.Warn("LLM unavailable: %v", err)
		return nil
	}
	if llm == nil {
		return nil
	}
	return llm
}

// buildEmbedder validates the configured embedding backend. Returns nil when
// unavailable; ingestion then stores documents without vectors.
func buildEmbedder(cfg *file.Config) driven.EmbeddingService {
	settings := cfg.EmbeddingSettings()
	embedder, err := ai.CreateAndValidateEmbeddingService(&settings)
	if err != nil {
		logger.Warn("Embedding service unavailable: %v", err)
		return nil
	}
	if embedder == nil {
		return nil
	}
	return embedder
}

// buildVectorStore prefers the configured remote store, falling back to an
// in-process store that lives only for this invocation.
func buildVectorStore(cfg *file.Config) driven.VectorStore {
	settings := cfg.VectorStoreSettings()
	if !settings.IsConfigured() {
		logger.Debug("Vector store not configured, using in-memory store")
		return vectormem.NewVectorStore()
	}

	store, err := supabase.New(supabase.Config{
		URL:    settings.URL,
		APIKey: settings.APIKey,
		Table:  settings.Table,
	})
	if err != nil {
		logger.Warn("Vector store unavailable: %v", err)
		return vectormem.NewVectorStore()
	}
	return store
}

// buildRemoteParser returns the document-parse adapter when configured.
func buildRemoteParser(cfg *file.Config) driven.DocumentParser {
	settings := cfg.ParserSettings()
	if !settings.IsConfigured() {
		return nil
	}

	parser, err := upstage.New(upstage.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
	})
	if err != nil {
		logger.Warn("Document-parse service unavailable: %v", err)
		return nil
	}
	return parser
}

// buildRenderer returns the poppler page renderer when the tools are
// installed.
func buildRenderer() driven.PageRenderer {
	if err := poppler.CheckAvailable(); err != nil {
		logger.Debug("OCR rendering disabled: %v", err)
		return nil
	}
	return poppler.New()
}

// buildOCR returns the OCR engine when an endpoint is configured.
func buildOCR(cfg *file.Config) driven.OCREngine {
	settings := cfg.OCRSettings()
	if !settings.IsConfigured() {
		return nil
	}

	engine, err := remote.New(remote.Config{
		Endpoint: settings.Endpoint,
		APIKey:   settings.APIKey,
	})
	if err != nil {
		logger.Warn("OCR engine unavailable: %v", err)
		return nil
	}
	return engine
}
