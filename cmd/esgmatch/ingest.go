package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/esgmatch/internal/taxonomy"
	"github.com/steveyegge/esgmatch/internal/taxonomy/source"
)

var ingestOutput string

var ingestCmd = &cobra.Command{
	Use:   "ingest <file.csv...>",
	Short: "Convert vendor CSV exports into a taxonomy document",
	Long: `Parse one or more vendor taxonomy CSV exports and merge them into a single
JSON taxonomy document.

Each CSV starts with explanation rows and a header row, which are skipped.
Rows without a field ID or field name are ignored. The merged document is
checked by loading it into an index before it is written, so duplicate field
IDs are reported here rather than at chat time.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := source.Merge(args)
		if err != nil {
			return err
		}

		idx, err := taxonomy.Load(doc.Records(), taxonomy.WithVersion(doc.Version))
		if err != nil {
			return fmt.Errorf("merged taxonomy is invalid: %w", err)
		}

		if err := source.WriteDocumentFile(ingestOutput, doc); err != nil {
			return err
		}

		stats := idx.Stats()
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Fprintf(cmd.OutOrStdout(), "%s Wrote %s: %d fields, %d pillars, %d issues from %d file(s)\n",
			green("✓"), ingestOutput, stats.TotalFields, stats.TotalPillars, stats.TotalIssues, len(doc.SourceFiles))
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestOutput, "output", "o", "data/esg_taxonomy.json", "output document path")
	rootCmd.AddCommand(ingestCmd)
}
