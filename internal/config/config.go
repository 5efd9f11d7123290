// Package config loads esgmatch settings from an optional YAML file and
// ESGMATCH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/steveyegge/esgmatch/internal/matcher"
)

// Classifier names
const (
	ClassifierKeyword   = "keyword"
	ClassifierAnthropic = "anthropic"
	ClassifierGemini    = "gemini"
)

// DefaultPath is the config file read when no --config flag is given
const DefaultPath = ".esgmatch/config.yaml"

// Config is the full esgmatch configuration
type Config struct {
	// Taxonomy is the path of the taxonomy JSON document
	Taxonomy string `yaml:"taxonomy"`
	// Database is the SQLite file saved profiles and events go to
	Database string `yaml:"database"`

	Log          LogConfig            `yaml:"log"`
	Classifier   ClassifierConfig     `yaml:"classifier"`
	Conversation ConversationConfig   `yaml:"conversation"`
	Matcher      matcher.Config       `yaml:"matcher"`
	Events       EventRetentionConfig `yaml:"events"`
}

// LogConfig selects the slog handler
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn or error
	Format string `yaml:"format"` // text or json
}

// ClassifierConfig selects the interest classifier
type ClassifierConfig struct {
	Provider string `yaml:"provider"` // keyword, anthropic or gemini
	Model    string `yaml:"model"`    // empty selects the provider default

	// API keys are only read from the environment
	AnthropicAPIKey string `yaml:"-"`
	GeminiAPIKey    string `yaml:"-"`
}

// APIKey returns the key for the configured provider
func (c ClassifierConfig) APIKey() string {
	switch c.Provider {
	case ClassifierAnthropic:
		return c.AnthropicAPIKey
	case ClassifierGemini:
		return c.GeminiAPIKey
	}
	return ""
}

// ConversationConfig tunes the conversation tracker and topic navigator
type ConversationConfig struct {
	CommitThreshold float64 `yaml:"commit_threshold"`
	TurnCeiling     int     `yaml:"turn_ceiling"`
	TopK            int     `yaml:"top_k"`
	PillarIntros    bool    `yaml:"pillar_intros"`
	Focused         bool    `yaml:"focused"` // implies pillar_intros
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Taxonomy: "data/esg_taxonomy.json",
		Database: ".esgmatch/esgmatch.db",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Classifier: ClassifierConfig{
			Provider: ClassifierKeyword,
		},
		Conversation: ConversationConfig{
			CommitThreshold: 6.0,
			TurnCeiling:     3,
			TopK:            5,
		},
		Matcher: matcher.DefaultConfig(),
		Events:  DefaultEventRetentionConfig(),
	}
}

// Load reads the YAML file at path over the defaults. A missing file is not an
// error; an empty path reads DefaultPath.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment.
//
// Environment variables:
//   - ESGMATCH_TAXONOMY, ESGMATCH_DB: file paths
//   - ESGMATCH_LOG_LEVEL, ESGMATCH_LOG_FORMAT: logging
//   - ESGMATCH_CLASSIFIER: keyword, anthropic or gemini
//   - ESGMATCH_MODEL: model name for the AI classifier
//   - ESGMATCH_TOP_K, ESGMATCH_MIN_SCORE: matcher result size and confidence floor
//   - ESGMATCH_COMMIT_THRESHOLD, ESGMATCH_TURN_CEILING: tracker tuning
//   - ESGMATCH_FOCUSED: skip issues not mentioned during a pillar introduction
//   - ESGMATCH_EVENT_*: event retention (see EventRetentionConfig)
//   - ANTHROPIC_API_KEY, GEMINI_API_KEY: provider credentials
func (c *Config) ApplyEnv() error {
	for _, s := range []struct {
		key  string
		dest *string
	}{
		{"ESGMATCH_TAXONOMY", &c.Taxonomy},
		{"ESGMATCH_DB", &c.Database},
		{"ESGMATCH_LOG_LEVEL", &c.Log.Level},
		{"ESGMATCH_LOG_FORMAT", &c.Log.Format},
		{"ESGMATCH_CLASSIFIER", &c.Classifier.Provider},
		{"ESGMATCH_MODEL", &c.Classifier.Model},
		{"ANTHROPIC_API_KEY", &c.Classifier.AnthropicAPIKey},
		{"GEMINI_API_KEY", &c.Classifier.GeminiAPIKey},
	} {
		if err := parseEnvString(s.key, s.dest); err != nil {
			return err
		}
	}

	if err := parseEnvInt("ESGMATCH_TOP_K", &c.Conversation.TopK); err != nil {
		return err
	}
	if err := parseEnvFloat("ESGMATCH_MIN_SCORE", &c.Matcher.MinScore); err != nil {
		return err
	}
	if err := parseEnvFloat("ESGMATCH_COMMIT_THRESHOLD", &c.Conversation.CommitThreshold); err != nil {
		return err
	}
	if err := parseEnvInt("ESGMATCH_TURN_CEILING", &c.Conversation.TurnCeiling); err != nil {
		return err
	}
	if err := parseEnvBool("ESGMATCH_FOCUSED", &c.Conversation.Focused); err != nil {
		return err
	}
	return c.Events.applyEnv()
}

// Validate checks if the configuration has valid values
func (c *Config) Validate() error {
	if c.Taxonomy == "" {
		return fmt.Errorf("taxonomy path cannot be empty")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level %q (want debug, info, warn or error)", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q (want text or json)", c.Log.Format)
	}

	switch c.Classifier.Provider {
	case ClassifierKeyword:
	case ClassifierAnthropic, ClassifierGemini:
		if c.Classifier.APIKey() == "" {
			return fmt.Errorf("%s classifier requires an API key (set %s)",
				c.Classifier.Provider, apiKeyEnv(c.Classifier.Provider))
		}
	default:
		return fmt.Errorf("invalid classifier %q (want %s, %s or %s)",
			c.Classifier.Provider, ClassifierKeyword, ClassifierAnthropic, ClassifierGemini)
	}

	if c.Conversation.CommitThreshold < 0 {
		return fmt.Errorf("commit_threshold must be non-negative (got %v)", c.Conversation.CommitThreshold)
	}
	if c.Conversation.TurnCeiling < 1 {
		return fmt.Errorf("turn_ceiling must be >= 1 (got %d)", c.Conversation.TurnCeiling)
	}
	if c.Conversation.TopK < 1 {
		return fmt.Errorf("top_k must be >= 1 (got %d)", c.Conversation.TopK)
	}

	if err := c.Matcher.Validate(); err != nil {
		return fmt.Errorf("invalid matcher configuration: %w", err)
	}
	if err := c.Events.Validate(); err != nil {
		return fmt.Errorf("invalid event retention configuration: %w", err)
	}
	return nil
}

func apiKeyEnv(provider string) string {
	if provider == ClassifierGemini {
		return "GEMINI_API_KEY"
	}
	return "ANTHROPIC_API_KEY"
}
