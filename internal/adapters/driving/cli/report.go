package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/docsight-io/docsight-cli/internal/core/domain"
	"github.com/docsight-io/docsight-cli/internal/core/ports/driving"
)

var (
	reportSectionNames []string
	reportNoRAG        bool
	reportOut          string
)

var reportCmd = &cobra.Command{
	Use:   "report [company-id]",
	Short: "Assemble a business analysis report",
	Long: `Combines the company's extracted fields, retrieved document context and
reference material into a structured markdown report. Every sentence carries
a provenance tag naming where its content came from.

Without --section all standard sections are generated.`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringArrayVarP(&reportSectionNames, "section", "s", nil, "section to generate (repeatable)")
	reportCmd.Flags().BoolVar(&reportNoRAG, "no-rag", false, "disable retrieval-augmented grounding")
	reportCmd.Flags().StringVarP(&reportOut, "out", "o", "", "write the report to a file instead of stdout")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	if reportService == nil {
		return errors.New("report service not configured")
	}
	if docStore == nil {
		return errors.New("document store not configured")
	}

	companyID := args[0]
	ctx := context.Background()

	fields, err := docStore.GetFields(ctx, companyID)
	if err != nil {
		return fmt.Errorf("failed to load fields: %w", err)
	}

	references, err := loadReferences(ctx, companyID)
	if err != nil {
		return err
	}

	report, err := reportService.Assemble(ctx, driving.AssembleRequest{
		Fields:       fields,
		FieldOrder:   fieldOrder(fields),
		Sections:     reportSectionNames,
		CompanyID:    companyID,
		UseRetrieval: !reportNoRAG,
		References:   references,
	})
	if err != nil {
		return fmt.Errorf("report assembly failed: %w", err)
	}

	if reportOut != "" {
		if err := os.WriteFile(reportOut, []byte(report.Content), 0644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		cmd.Printf("Report written to %s\n", reportOut)
		return nil
	}

	cmd.Println(report.Content)
	return nil
}

// loadReferences collects the text of the company's reference documents,
// keyed by file name.
func loadReferences(ctx context.Context, companyID string) (map[string]string, error) {
	docs, err := docStore.ListDocuments(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	references := make(map[string]string)
	for i := range docs {
		if docs[i].SourceType == domain.SourceReference {
			references[docs[i].FileName] = docs[i].Content
		}
	}
	return references, nil
}

// fieldOrder presents known profile fields in template order, then any
// remaining fields alphabetically.
func fieldOrder(fields domain.ExtractionResult) []string {
	var order []string
	seen := make(map[string]bool)
	for _, name := range defaultTemplate().Names() {
		if _, ok := fields[name]; ok {
			order = append(order, name)
			seen[name] = true
		}
	}
	for _, name := range sortedFieldNames(fields) {
		if !seen[name] {
			order = append(order, name)
		}
	}
	return order
}
