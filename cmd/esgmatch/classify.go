package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/steveyegge/esgmatch/internal/conversation"
	"github.com/steveyegge/esgmatch/internal/interest"
)

var classifyTopic string

var classifyCmd = &cobra.Command{
	Use:   "classify <text...>",
	Short: "Classify interest and commitment for one utterance",
	Long: `Run the configured interest classifier and the commitment detector on a
single utterance, without starting a conversation.

The topic defaults to the first conversation topic; --topic selects another
by ID (see 'esgmatch topics').`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		idx, err := loadIndex()
		if err != nil {
			return err
		}
		nav := newNavigator(idx, cfg.Conversation.PillarIntros, cfg.Conversation.Focused)

		topics := nav.Topics()
		if len(topics) == 0 {
			return fmt.Errorf("taxonomy %s has no topics", cfg.Taxonomy)
		}
		topic := topics[0]
		if classifyTopic != "" {
			t, ok := nav.Topic(classifyTopic)
			if !ok {
				return fmt.Errorf("unknown topic %q", classifyTopic)
			}
			topic = t
		}

		classifier, err := newClassifier(ctx)
		if err != nil {
			return err
		}
		utterance := strings.Join(args, " ")
		level, err := classifier.Classify(ctx, interest.Topic{
			ID:          topic.ID,
			Name:        topic.Name,
			Description: topic.Description,
		}, utterance)
		if err != nil {
			return fmt.Errorf("classification failed: %w", err)
		}
		commitment := conversation.DetectCommitment(utterance)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Topic:      %s\n", topic.Name)
		fmt.Fprintf(out, "Interest:   %s\n", level)
		fmt.Fprintf(out, "Commitment: %s\n", describeCommitment(commitment))
		return nil
	},
}

func describeCommitment(c conversation.Commitment) string {
	switch {
	case c.Detected:
		return fmt.Sprintf("%s (%q)", c.Polarity, c.Phrase)
	case c.Hedge != "":
		return fmt.Sprintf("none (%q vetoed by hedge %q)", c.Phrase, c.Hedge)
	default:
		return "none"
	}
}

func init() {
	classifyCmd.Flags().StringVarP(&classifyTopic, "topic", "t", "", "topic ID to classify against")
	rootCmd.AddCommand(classifyCmd)
}
