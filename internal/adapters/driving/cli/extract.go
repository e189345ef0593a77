package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docsight-io/docsight-cli/internal/core/domain"
)

var (
	extractFields []string
	extractJSON   bool
)

var extractCmd = &cobra.Command{
	Use:   "extract [doc-id]",
	Short: "Extract structured fields from an ingested document",
	Long: `Resolves a set of named fields from a stored document in one batched
model call, with a deterministic keyword fallback when the model is
unavailable. Extracted values accumulate on the owning company: a field that
already holds a real value is never re-extracted or overwritten.

Fields are given as "Name" or "Name:number"; without --field a standard
company profile template is used.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringArrayVarP(&extractFields, "field", "f", nil, `field to extract, as "Name" or "Name:number"`)
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if extractService == nil {
		return errors.New("extract service not configured")
	}
	if docStore == nil {
		return errors.New("document store not configured")
	}

	ctx := context.Background()
	doc, err := docStore.GetDocument(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	template, err := buildTemplate(extractFields)
	if err != nil {
		return err
	}

	existing, err := docStore.GetFields(ctx, doc.CompanyID)
	if err != nil {
		return fmt.Errorf("failed to load stored fields: %w", err)
	}

	result, err := extractService.ExtractInto(ctx, doc.Content, template, doc.Elements, existing)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	if err := docStore.SaveFields(ctx, doc.CompanyID, result); err != nil {
		return fmt.Errorf("failed to save fields: %w", err)
	}

	if extractJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	names := template.Names()
	cmd.Printf("Fields for %s:\n\n", doc.FileName)
	for _, name := range names {
		cmd.Printf("  %-24s %s\n", name+":", result[name])
	}

	missing := result.Missing(names)
	if len(missing) > 0 {
		cmd.Printf("\n%d of %d fields unresolved.\n", len(missing), len(names))
	}
	return nil
}

// buildTemplate turns --field specs into a template, defaulting to the
// standard company profile.
func buildTemplate(specs []string) (*domain.Template, error) {
	if len(specs) == 0 {
		return defaultTemplate(), nil
	}

	template := domain.NewTemplate()
	for _, spec := range specs {
		name, kind, hasType := strings.Cut(spec, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("invalid field spec %q", spec)
		}

		fieldType := domain.FieldText
		if hasType {
			fieldType = domain.FieldType(strings.TrimSpace(kind))
			if !fieldType.IsValid() {
				return nil, fmt.Errorf("invalid field type in %q (want text or number)", spec)
			}
		}

		template.Add(domain.FieldRequest{Name: name, Type: fieldType})
	}
	return template, nil
}

// defaultTemplate is the standard company profile extracted when no --field
// flags are given.
func defaultTemplate() *domain.Template {
	return domain.NewTemplate(
		domain.FieldRequest{Name: "Company Name", Type: domain.FieldText},
		domain.FieldRequest{Name: "CEO", Type: domain.FieldText},
		domain.FieldRequest{Name: "Founded", Type: domain.FieldText},
		domain.FieldRequest{Name: "Industry", Type: domain.FieldText},
		domain.FieldRequest{Name: "Headquarters", Type: domain.FieldText},
		domain.FieldRequest{Name: "Employees", Type: domain.FieldNumber},
		domain.FieldRequest{Name: "Revenue", Type: domain.FieldNumber},
		domain.FieldRequest{Name: "Operating Profit", Type: domain.FieldNumber},
		domain.FieldRequest{Name: "Net Profit", Type: domain.FieldNumber},
		domain.FieldRequest{Name: "Total Assets", Type: domain.FieldNumber},
		domain.FieldRequest{Name: "Market Share", Type: domain.FieldNumber},
	)
}

// sortedFieldNames returns map keys in stable order for display.
func sortedFieldNames(fields domain.ExtractionResult) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
