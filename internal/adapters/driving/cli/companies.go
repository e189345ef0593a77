package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var companiesLimit int

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List stored companies",
	RunE:  runCompanies,
}

var companiesDocsCmd = &cobra.Command{
	Use:   "docs [company-id]",
	Short: "List a company's ingested documents",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompaniesDocs,
}

func init() {
	companiesCmd.Flags().IntVarP(&companiesLimit, "limit", "n", 20, "maximum number of companies to list")
	companiesCmd.AddCommand(companiesDocsCmd)
	rootCmd.AddCommand(companiesCmd)
}

func runCompanies(cmd *cobra.Command, _ []string) error {
	if docStore == nil {
		return errors.New("document store not configured")
	}

	companies, err := docStore.ListCompanies(context.Background(), companiesLimit)
	if err != nil {
		return fmt.Errorf("failed to list companies: %w", err)
	}

	if len(companies) == 0 {
		cmd.Println("No companies stored. Ingest a document first.")
		return nil
	}

	cmd.Println("Companies:")
	cmd.Println()
	for i := range companies {
		cmd.Printf("  %s\n", companies[i].ID)
		cmd.Printf("    Name: %s\n", companies[i].Name)
		if companies[i].Industry != "" {
			cmd.Printf("    Industry: %s\n", companies[i].Industry)
		}
		cmd.Printf("    Created: %s\n", companies[i].CreatedAt.Format("2006-01-02 15:04:05"))
		cmd.Println()
	}

	return nil
}

func runCompaniesDocs(cmd *cobra.Command, args []string) error {
	if docStore == nil {
		return errors.New("document store not configured")
	}

	companyID := args[0]
	docs, err := docStore.ListDocuments(context.Background(), companyID)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Printf("No documents found for company: %s\n", companyID)
		return nil
	}

	cmd.Printf("Documents for company %s:\n\n", companyID)
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    File: %s (%s)\n", docs[i].FileName, docs[i].SourceType)
		cmd.Printf("    Pages: %d\n", docs[i].PageCount)
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}
