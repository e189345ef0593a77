package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docsight-io/docsight-cli/internal/core/domain"
	"github.com/docsight-io/docsight-cli/internal/core/ports/driving"
)

var (
	queryCompanyID string
	querySource    string
	queryBudget    int
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Retrieve document context for a query",
	Long: `Embeds the query, searches the stored chunk vectors and prints the
packed context that report generation would ground on. Useful for checking
what the retriever can see before assembling a report.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryCompanyID, "company", "c", "", "restrict retrieval to one company")
	queryCmd.Flags().StringVar(&querySource, "source", "", "restrict retrieval to a source type (main or reference)")
	queryCmd.Flags().IntVarP(&queryBudget, "budget", "b", 1000, "token budget for the packed context")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if retrieveService == nil {
		return errors.New("retrieve service not configured")
	}

	scope := driving.RetrievalScope{CompanyID: queryCompanyID}
	if querySource != "" {
		sourceType := domain.SourceType(querySource)
		if !sourceType.IsValid() {
			return fmt.Errorf("invalid source type %q (want main or reference)", querySource)
		}
		scope.SourceType = sourceType
	}

	packed, err := retrieveService.Retrieve(context.Background(), args[0], scope, queryBudget)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	cmd.Println(packed)
	return nil
}
