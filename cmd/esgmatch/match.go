package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/esgmatch/internal/matcher"
)

var (
	matchTopK     int
	matchKeywords bool
	matchExplain  bool
	matchJSON     bool
)

var matchCmd = &cobra.Command{
	Use:   "match <text...>",
	Short: "Rank taxonomy fields against free text",
	Long: `Score every taxonomy field against the given text and print the best matches.

With --keywords each argument is treated as a separate keyword; otherwise the
arguments are joined into one utterance. Results below the configured min_score
are marked low confidence.

Examples:
  esgmatch match "our CO2 footprint"
  esgmatch match --keywords water stress --explain`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := loadIndex()
		if err != nil {
			return err
		}
		m, err := newMatcher(idx)
		if err != nil {
			return fmt.Errorf("failed to create matcher: %w", err)
		}

		topK := matchTopK
		if !cmd.Flags().Changed("top-k") {
			topK = cfg.Conversation.TopK
		}

		var matches []matcher.Match
		if matchKeywords {
			matches, err = m.FindByKeywords(args, topK)
		} else {
			matches, err = m.FindMatches(strings.Join(args, " "), topK)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if matchJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(matches)
		}

		green := color.New(color.FgGreen).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()
		for i, match := range matches {
			score := fmt.Sprintf("%5.1f", match.Score)
			if match.LowConfidence {
				score = gray(score)
			} else {
				score = green(score)
			}
			fmt.Fprintf(out, "%2d. %s  %s\n", i+1, score, matcher.FormatContext(match.Field))
			if matchExplain {
				for _, c := range match.Breakdown {
					detail := ""
					if c.Detail != "" {
						detail = " (" + c.Detail + ")"
					}
					fmt.Fprintf(out, "      %+5.1f %s%s\n", c.Points, c.Rule, detail)
				}
			}
		}
		return nil
	},
}

func init() {
	matchCmd.Flags().IntVarP(&matchTopK, "top-k", "k", 5, "number of results")
	matchCmd.Flags().BoolVar(&matchKeywords, "keywords", false, "treat each argument as a keyword")
	matchCmd.Flags().BoolVar(&matchExplain, "explain", false, "show the scoring breakdown")
	matchCmd.Flags().BoolVar(&matchJSON, "json", false, "print results as JSON")
	rootCmd.AddCommand(matchCmd)
}
