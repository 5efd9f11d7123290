package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/esgmatch/internal/types"
)

var (
	topicsIntros  bool
	topicsFocused bool
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List conversation topics in visit order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		idx, err := loadIndex()
		if err != nil {
			return err
		}
		intros := topicsIntros || cfg.Conversation.PillarIntros
		focused := topicsFocused || cfg.Conversation.Focused
		nav := newNavigator(idx, intros, focused)

		out := cmd.OutOrStdout()
		bold := color.New(color.Bold).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()
		for i, t := range nav.Topics() {
			if t.Kind == types.TopicPillarIntro {
				fmt.Fprintf(out, "%3d. %s %s\n", i+1, bold(t.Name), gray("("+t.ID+")"))
				continue
			}
			fmt.Fprintf(out, "%3d.   %s / %s %s\n", i+1, t.Pillar, t.Name, gray("("+t.ID+")"))
			if len(t.SubIssues) > 0 {
				fmt.Fprintf(out, "         %s\n", gray(fmt.Sprintf("%d sub-issue(s)", len(t.SubIssues))))
			}
		}
		return nil
	},
}

func init() {
	topicsCmd.Flags().BoolVar(&topicsIntros, "intros", false, "include pillar introductions")
	topicsCmd.Flags().BoolVar(&topicsFocused, "focused", false, "focused mode (implies --intros)")
	rootCmd.AddCommand(topicsCmd)
}
