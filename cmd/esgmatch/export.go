package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/steveyegge/esgmatch/internal/report"
	"github.com/steveyegge/esgmatch/internal/storage"
)

var (
	exportFormat string
	exportOutput string
	exportRender bool
)

var exportCmd = &cobra.Command{
	Use:   "export <session-id>",
	Short: "Export a saved preference profile",
	Long: `Export a saved preference profile as Markdown or JSON.

The Markdown report groups topics by interest and lists the recorded fields by
importance. The JSON document carries the same data for downstream tools.
Use --render to format Markdown for the terminal.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := report.Format(exportFormat)
		if !format.IsValid() {
			return fmt.Errorf("invalid format %q (want md or json)", exportFormat)
		}
		if exportRender && format != report.FormatMarkdown {
			return fmt.Errorf("--render only applies to the md format")
		}

		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		profile, err := store.GetProfile(ctx, args[0])
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("no saved profile for session %s", args[0])
			}
			return err
		}

		data, err := report.Export(profile, format)
		if err != nil {
			return err
		}
		if exportRender {
			rendered, err := report.Render(string(data), 0)
			if err != nil {
				return err
			}
			data = []byte(rendered)
		}

		if exportOutput == "" || exportOutput == "-" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(exportOutput, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", exportOutput, err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", exportOutput)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", string(report.FormatMarkdown), "output format (md, json)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
	exportCmd.Flags().BoolVar(&exportRender, "render", false, "render Markdown for the terminal")
	rootCmd.AddCommand(exportCmd)
}
