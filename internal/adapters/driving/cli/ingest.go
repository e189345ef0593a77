package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/docsight-io/docsight-cli/internal/core/domain"
	"github.com/docsight-io/docsight-cli/internal/core/ports/driving"
)

var (
	ingestCompanyID string
	ingestReference bool
	ingestForceOCR  bool
	ingestMaxPages  int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Ingest documents for analysis",
	Long: `Parses documents, stores their text and chunks, and embeds the chunks
for retrieval. Multiple files are processed as one batch: a failure in one
file never aborts the others, and files without --company share the company
created for the first successful file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestCompanyID, "company", "c", "", "attach documents to an existing company")
	ingestCmd.Flags().BoolVar(&ingestReference, "reference", false, "ingest as reference material instead of a main document")
	ingestCmd.Flags().BoolVar(&ingestForceOCR, "force-ocr", false, "skip the native text layer and force OCR parsing")
	ingestCmd.Flags().IntVar(&ingestMaxPages, "max-pages", 0, "limit native text extraction to N pages")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	files := make([]driving.IngestFile, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		files = append(files, driving.IngestFile{
			Name: filepath.Base(path),
			Data: data,
		})
	}

	sourceType := domain.SourceMain
	if ingestReference {
		sourceType = domain.SourceReference
	}

	opts := driving.IngestOptions{
		CompanyID:  ingestCompanyID,
		SourceType: sourceType,
		ForceOCR:   ingestForceOCR,
		MaxPages:   ingestMaxPages,
	}

	results := ingestService.IngestBatch(context.Background(), files, opts)

	failed := 0
	for _, result := range results {
		if result.Err != nil {
			failed++
			cmd.Printf("  %s: FAILED (%v)\n", result.Name, result.Err)
			continue
		}

		cmd.Printf("  %s: %d pages, %d chunks", result.Name, result.PageCount, result.ChunkCount)
		if !result.EmbeddingsStored {
			cmd.Printf(" (embeddings unavailable)")
		}
		cmd.Println()
		cmd.Printf("    Document: %s\n", result.DocumentID)
		cmd.Printf("    Company:  %s\n", result.CompanyID)
	}

	cmd.Printf("\nIngested %d of %d files.\n", len(results)-failed, len(results))
	if failed == len(results) {
		return errors.New("all files failed to ingest")
	}
	return nil
}
