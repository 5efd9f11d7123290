package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/steveyegge/esgmatch/internal/events"
	"github.com/steveyegge/esgmatch/internal/storage"
)

var (
	sessionsLimit     int
	sessionsShowLimit int
	sessionsShowType  string
	pruneDryRun       bool
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect saved sessions and their event trail",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved profiles, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		infos, err := store.ListProfiles(ctx, sessionsLimit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(infos) == 0 {
			fmt.Fprintln(out, "No saved profiles.")
			return nil
		}

		cyan := color.New(color.FgCyan).SprintFunc()
		for _, info := range infos {
			fmt.Fprintf(out, "%s  %s  %d field(s), %d/%d topics, taxonomy %s\n",
				cyan(info.SessionID),
				info.CompletedAt.Local().Format("2006-01-02 15:04"),
				info.FieldCount, info.TopicsExplored, info.TopicsTotal, info.TaxonomyVersion)
		}
		return nil
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show the event trail of a session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := events.EventFilter{SessionID: args[0], Limit: sessionsShowLimit}
		if sessionsShowType != "" {
			filter.Type = events.EventType(sessionsShowType)
			if !filter.Type.IsValid() {
				return fmt.Errorf("unknown event type %q", sessionsShowType)
			}
		}

		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		evs, err := store.GetEvents(ctx, filter)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(evs) == 0 {
			fmt.Fprintf(out, "No events for session %s.\n", args[0])
			return nil
		}

		gray := color.New(color.FgHiBlack).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		for _, ev := range evs {
			sev := string(ev.Severity)
			switch ev.Severity {
			case events.SeverityWarning:
				sev = yellow(sev)
			case events.SeverityError:
				sev = red(sev)
			}
			topic := ""
			if ev.TopicID != "" {
				topic = " [" + ev.TopicID + "]"
			}
			fmt.Fprintf(out, "%s %-7s %-20s%s %s\n",
				gray(ev.Timestamp.Local().Format("15:04:05")), sev, ev.Type, topic, ev.Message)
		}
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a saved profile and its events",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.DeleteProfile(ctx, args[0]); err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("no saved profile for session %s", args[0])
			}
			return err
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Fprintf(cmd.OutOrStdout(), "%s Deleted session %s\n", green("✓"), args[0])
		return nil
	},
}

var sessionsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete events past their retention period",
	Long: `Delete conversation events older than the configured retention period.

Error events are kept for the longer error retention period. Retention is set
under events: in the config file or with ESGMATCH_EVENT_RETENTION_DAYS and
ESGMATCH_EVENT_ERROR_RETENTION_DAYS.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer store.Close()

		out := cmd.OutOrStdout()
		retention := cfg.Events
		cutoff, errorCutoff := retention.Cutoffs(time.Now())
		fmt.Fprintf(out, "Retention: %s\n", retention.String())

		if pruneDryRun {
			counts, err := store.GetEventCounts(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Would prune events before %s (errors before %s); %d event(s) stored\n",
				cutoff.Format(time.RFC3339), errorCutoff.Format(time.RFC3339), counts.TotalEvents)
			return nil
		}

		deleted, err := store.CleanupEventsOlderThan(ctx, cutoff, errorCutoff, retention.BatchSize)
		if err != nil {
			return err
		}
		if retention.Vacuum && deleted > 0 {
			if err := store.VacuumDatabase(ctx); err != nil {
				return err
			}
		}

		counts, err := store.GetEventCounts(ctx)
		if err != nil {
			return err
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Fprintf(out, "%s Pruned %d event(s); %d remaining\n", green("✓"), deleted, counts.TotalEvents)
		if len(counts.EventsBySeverity) > 0 {
			fmt.Fprintf(out, "  by severity: %s\n", formatCounts(counts.EventsBySeverity))
		}
		return nil
	},
}

// formatCounts renders a count map as "a=1, b=2" in key order
func formatCounts(m map[string]int) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, m[k])
	}
	return strings.Join(parts, ", ")
}

func init() {
	sessionsListCmd.Flags().IntVarP(&sessionsLimit, "limit", "n", 20, "maximum profiles to list (0 for all)")
	sessionsShowCmd.Flags().IntVarP(&sessionsShowLimit, "limit", "n", 0, "maximum events to show (0 for all)")
	sessionsShowCmd.Flags().StringVar(&sessionsShowType, "type", "", "only show events of this type")
	sessionsPruneCmd.Flags().BoolVar(&pruneDryRun, "dry-run", false, "report cutoffs without deleting")

	sessionsCmd.AddCommand(sessionsListCmd, sessionsShowCmd, sessionsDeleteCmd, sessionsPruneCmd)
	rootCmd.AddCommand(sessionsCmd)
}
