package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	statsSearch string
	statsLimit  int
	statsJSON   bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show taxonomy statistics",
	Long: `Show field, pillar and issue counts for the configured taxonomy.

With --search, list fields whose name or hierarchy contains the query instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := loadIndex()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		if statsSearch != "" {
			fields := idx.Search(statsSearch, statsLimit)
			if statsJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(fields)
			}
			if len(fields) == 0 {
				fmt.Fprintf(out, "No fields match %q.\n", statsSearch)
				return nil
			}
			for _, f := range fields {
				fmt.Fprintf(out, "%-30s %s\n", f.FieldID, f.FieldName)
			}
			return nil
		}

		stats := idx.Stats()
		if statsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		}

		bold := color.New(color.Bold).SprintFunc()
		version := idx.Version()
		if version == "" {
			version = "unversioned"
		}
		fmt.Fprintf(out, "%s %s (%s)\n", bold("Taxonomy:"), idx.Source(), version)
		fmt.Fprintf(out, "  Fields:  %d\n", stats.TotalFields)
		fmt.Fprintf(out, "  Pillars: %d (%s)\n", stats.TotalPillars, strings.Join(stats.Pillars, ", "))
		fmt.Fprintf(out, "  Issues:  %d\n", stats.TotalIssues)
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVarP(&statsSearch, "search", "s", "", "list fields matching a substring")
	statsCmd.Flags().IntVarP(&statsLimit, "limit", "n", 20, "maximum search results")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print as JSON")
	rootCmd.AddCommand(statsCmd)
}
