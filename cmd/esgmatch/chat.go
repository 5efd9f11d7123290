package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/steveyegge/esgmatch/internal/events"
	"github.com/steveyegge/esgmatch/internal/repl"
	"github.com/steveyegge/esgmatch/internal/storage"
)

var (
	chatPlain   bool
	chatIntros  bool
	chatFocused bool
	chatNoSave  bool
	chatHistory string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive preference conversation",
	Long: `Start an interactive conversation that walks through ESG topics one at a
time and records the taxonomy fields you commit to.

Each topic closes when you commit ("that one resonates", "not for me") or after
a few turns without a clear answer. When every topic is closed the preference
profile is printed and saved, and can be re-exported with 'esgmatch export'.

Type '/help' in the chat for available commands.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		idx, err := loadIndex()
		if err != nil {
			return err
		}

		var store storage.Storage
		if !chatNoSave {
			store, err = openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()
		}

		focused := chatFocused || cfg.Conversation.Focused
		intros := chatIntros || cfg.Conversation.PillarIntros
		nav := newNavigator(idx, intros, focused)

		var rec events.Recorder
		if store != nil {
			rec = store
		}
		tracker, err := newTracker(ctx, idx, nav, rec)
		if err != nil {
			return err
		}

		r, err := repl.New(&repl.Config{
			Tracker:     tracker,
			Store:       store,
			Out:         cmd.OutOrStdout(),
			HistoryFile: chatHistory,
			Plain:       chatPlain,
		})
		if err != nil {
			return fmt.Errorf("failed to create REPL: %w", err)
		}
		return r.Run(ctx)
	},
}

func init() {
	chatCmd.Flags().BoolVar(&chatPlain, "plain", false, "print Markdown without terminal rendering")
	chatCmd.Flags().BoolVar(&chatIntros, "intros", false, "open each pillar with a general introduction topic")
	chatCmd.Flags().BoolVar(&chatFocused, "focused", false, "skip issues not mentioned during a pillar introduction (implies --intros)")
	chatCmd.Flags().BoolVar(&chatNoSave, "no-save", false, "do not record events or save the profile")
	chatCmd.Flags().StringVar(&chatHistory, "history", "", "file to persist input history in")
	rootCmd.AddCommand(chatCmd)
}
