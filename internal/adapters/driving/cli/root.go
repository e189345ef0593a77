// Package cli implements the docsight command line interface. Commands are
// thin adapters over the core services; each guards against its service
// being absent so partial wiring degrades with a clear message instead of a
// panic.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/docsight-io/docsight-cli/internal/core/ports/driven"
	"github.com/docsight-io/docsight-cli/internal/core/ports/driving"
	"github.com/docsight-io/docsight-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services wired in by main. Nil services disable their commands.
var (
	ingestService   driving.IngestService
	extractService  driving.FieldExtractor
	retrieveService driving.ContextRetriever
	reportService   driving.ReportAssembler
	docStore        driven.DocumentStore
)

// verbose enables debug logging.
var verbose bool

var rootCmd = &cobra.Command{
	Use:   "docsight",
	Short: "Analyse company documents and generate business reports",
	Long: `docsight ingests company documents (PDF reports, filings), extracts
structured fields from them, and assembles grounded business analysis
reports with provenance-tagged content.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug output")
}

// Deps carries the wired services from main.
type Deps struct {
	Ingest   driving.IngestService
	Extract  driving.FieldExtractor
	Retrieve driving.ContextRetriever
	Report   driving.ReportAssembler
	DocStore driven.DocumentStore
}

// SetServices wires the core services into the command tree.
func SetServices(deps Deps) {
	ingestService = deps.Ingest
	extractService = deps.Extract
	retrieveService = deps.Retrieve
	reportService = deps.Report
	docStore = deps.DocStore
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
