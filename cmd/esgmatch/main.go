package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/steveyegge/esgmatch/internal/ai"
	"github.com/steveyegge/esgmatch/internal/config"
	"github.com/steveyegge/esgmatch/internal/conversation"
	"github.com/steveyegge/esgmatch/internal/events"
	"github.com/steveyegge/esgmatch/internal/interest"
	"github.com/steveyegge/esgmatch/internal/logging"
	"github.com/steveyegge/esgmatch/internal/matcher"
	"github.com/steveyegge/esgmatch/internal/navigator"
	"github.com/steveyegge/esgmatch/internal/storage"
	"github.com/steveyegge/esgmatch/internal/taxonomy"
	"github.com/steveyegge/esgmatch/internal/taxonomy/source"
	"github.com/steveyegge/esgmatch/internal/types"
)

var (
	// Global flags
	configPath   string
	taxonomyPath string
	dbPath       string
	logLevel     string
	logFormat    string

	// cfg is the effective configuration, set before any command runs
	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "esgmatch",
	Short: "ESG preference discovery and taxonomy matching",
	Long: `esgmatch helps investors articulate their ESG (Environmental, Social,
Governance) priorities through a guided conversation, and maps free text onto
fields of an ESG data taxonomy.

Run 'esgmatch chat' to start a conversation.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg = loaded
		logging.Init(cfg.Log.Format, cfg.Log.Level)
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default "+config.DefaultPath+")")
	flags.StringVar(&taxonomyPath, "taxonomy", "", "taxonomy JSON document or CSV export")
	flags.StringVar(&dbPath, "db", "", "SQLite database for saved profiles")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&logFormat, "log-format", "", "log format: text or json")
}

// loadConfig resolves file, environment and flag settings, in that order of precedence
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	c, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := c.ApplyEnv(); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("taxonomy") {
		c.Taxonomy = taxonomyPath
	}
	if flags.Changed("db") {
		c.Database = dbPath
	}
	if flags.Changed("log-level") {
		c.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		c.Log.Format = logFormat
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return c, nil
}

// loadIndex loads the configured taxonomy
func loadIndex() (*taxonomy.Index, error) {
	idx, err := source.LoadIndex(cfg.Taxonomy)
	if err != nil {
		return nil, fmt.Errorf("failed to load taxonomy %s: %w", cfg.Taxonomy, err)
	}
	return idx, nil
}

// openStore opens the configured database
func openStore(ctx context.Context) (storage.Storage, error) {
	store, err := storage.NewStorage(ctx, &storage.Config{Path: cfg.Database})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Database, err)
	}
	return store, nil
}

// newMatcher builds the matcher from the configured scoring table
func newMatcher(idx *taxonomy.Index) (*matcher.Matcher, error) {
	return matcher.New(idx, cfg.Matcher)
}

// newNavigator builds the topic navigator; focused implies pillar intros
func newNavigator(idx *taxonomy.Index, intros, focused bool) *navigator.Navigator {
	var opts []navigator.Option
	if focused {
		opts = append(opts, navigator.WithFocus())
	} else if intros {
		opts = append(opts, navigator.WithPillarIntros())
	}
	return navigator.New(idx, opts...)
}

// newClassifier returns the configured interest classifier
func newClassifier(ctx context.Context) (interest.Classifier, error) {
	provider := cfg.Classifier.Provider
	if provider == config.ClassifierKeyword {
		return interest.NewKeywordClassifier(), nil
	}
	completer, err := ai.NewCompleter(ctx, provider, cfg.Classifier.APIKey(), cfg.Classifier.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s classifier: %w", provider, err)
	}
	return ai.NewClassifier(ai.NewResilient(completer, ai.DefaultRetryConfig())), nil
}

// newTracker wires the conversation tracker. rec may be nil.
func newTracker(ctx context.Context, idx *taxonomy.Index, nav *navigator.Navigator, rec events.Recorder) (*conversation.Tracker, error) {
	m, err := newMatcher(idx)
	if err != nil {
		return nil, fmt.Errorf("failed to create matcher: %w", err)
	}
	classifier, err := newClassifier(ctx)
	if err != nil {
		return nil, err
	}

	opts := []conversation.Option{
		conversation.WithConfig(conversation.Config{
			CommitThreshold: cfg.Conversation.CommitThreshold,
			TurnCeiling:     cfg.Conversation.TurnCeiling,
			MatchTopK:       cfg.Conversation.TopK,
			Importance:      types.ImportanceHigh,
		}),
		conversation.WithClassifier(classifier),
	}
	if rec != nil {
		opts = append(opts, conversation.WithRecorder(rec))
	}
	return conversation.NewTracker(idx, m, nav, opts...)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
