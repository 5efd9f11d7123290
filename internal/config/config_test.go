package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable ApplyEnv reads so the host environment
// cannot leak into a test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ESGMATCH_TAXONOMY", "ESGMATCH_DB", "ESGMATCH_LOG_LEVEL", "ESGMATCH_LOG_FORMAT",
		"ESGMATCH_CLASSIFIER", "ESGMATCH_MODEL", "ESGMATCH_TOP_K", "ESGMATCH_MIN_SCORE",
		"ESGMATCH_COMMIT_THRESHOLD", "ESGMATCH_TURN_CEILING", "ESGMATCH_FOCUSED",
		"ESGMATCH_EVENT_RETENTION_DAYS", "ESGMATCH_EVENT_ERROR_RETENTION_DAYS",
		"ESGMATCH_EVENT_CLEANUP_BATCH_SIZE", "ESGMATCH_EVENT_CLEANUP_VACUUM",
		"ANTHROPIC_API_KEY", "GEMINI_API_KEY",
	} {
		t.Setenv(key, "")
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5, cfg.Conversation.TopK)
	assert.Equal(t, 3.0, cfg.Matcher.MinScore)
	assert.Equal(t, 6.0, cfg.Conversation.CommitThreshold)
	assert.Equal(t, 3, cfg.Conversation.TurnCeiling)
	assert.Equal(t, ClassifierKeyword, cfg.Classifier.Provider)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
taxonomy: /srv/taxonomy.json
log:
  level: debug
conversation:
  turn_ceiling: 4
  focused: true
matcher:
  min_score: 1.5
  stop_words: [the, a]
events:
  retention_days: 7
`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/taxonomy.json", cfg.Taxonomy)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format, "unset keys keep defaults")
	assert.Equal(t, 4, cfg.Conversation.TurnCeiling)
	assert.Equal(t, 5, cfg.Conversation.TopK)
	assert.True(t, cfg.Conversation.Focused)
	assert.Equal(t, 1.5, cfg.Matcher.MinScore)
	assert.Equal(t, []string{"the", "a"}, cfg.Matcher.StopWords)
	assert.NotEmpty(t, cfg.Matcher.Themes)
	assert.Equal(t, 7, cfg.Events.RetentionDays)
	assert.Equal(t, 90, cfg.Events.ErrorRetentionDays)
	assert.NoError(t, cfg.Validate())
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("conversation: [unclosed"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name:    "no environment variables keeps defaults",
			envVars: map[string]string{},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
		{
			name: "overrides",
			envVars: map[string]string{
				"ESGMATCH_TAXONOMY":             "tax.json",
				"ESGMATCH_DB":                   "x.db",
				"ESGMATCH_LOG_FORMAT":           "json",
				"ESGMATCH_CLASSIFIER":           "gemini",
				"ESGMATCH_MODEL":                "gemini-2.0-flash",
				"GEMINI_API_KEY":                "g-key",
				"ESGMATCH_TOP_K":                "8",
				"ESGMATCH_MIN_SCORE":            "2.5",
				"ESGMATCH_COMMIT_THRESHOLD":     "4",
				"ESGMATCH_TURN_CEILING":         "5",
				"ESGMATCH_FOCUSED":              "true",
				"ESGMATCH_EVENT_CLEANUP_VACUUM": "true",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "tax.json", cfg.Taxonomy)
				assert.Equal(t, "x.db", cfg.Database)
				assert.Equal(t, "json", cfg.Log.Format)
				assert.Equal(t, ClassifierGemini, cfg.Classifier.Provider)
				assert.Equal(t, "gemini-2.0-flash", cfg.Classifier.Model)
				assert.Equal(t, "g-key", cfg.Classifier.APIKey())
				assert.Equal(t, 8, cfg.Conversation.TopK)
				assert.Equal(t, 2.5, cfg.Matcher.MinScore)
				assert.Equal(t, 4.0, cfg.Conversation.CommitThreshold)
				assert.Equal(t, 5, cfg.Conversation.TurnCeiling)
				assert.True(t, cfg.Conversation.Focused)
				assert.True(t, cfg.Events.Vacuum)
				assert.NoError(t, cfg.Validate())
			},
		},
		{
			name:    "invalid int value",
			envVars: map[string]string{"ESGMATCH_TOP_K": "many"},
			wantErr: true,
		},
		{
			name:    "invalid float value",
			envVars: map[string]string{"ESGMATCH_MIN_SCORE": "high"},
			wantErr: true,
		},
		{
			name:    "invalid bool value",
			envVars: map[string]string{"ESGMATCH_FOCUSED": "maybe"},
			wantErr: true,
		},
		{
			name:    "invalid retention value",
			envVars: map[string]string{"ESGMATCH_EVENT_RETENTION_DAYS": "week"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}
			cfg := Default()
			err := cfg.ApplyEnv()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"empty taxonomy", func(c *Config) { c.Taxonomy = "" }, false},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, false},
		{"upper-case log level", func(c *Config) { c.Log.Level = "DEBUG" }, true},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, false},
		{"unknown classifier", func(c *Config) { c.Classifier.Provider = "oracle" }, false},
		{"anthropic without key", func(c *Config) { c.Classifier.Provider = ClassifierAnthropic }, false},
		{"anthropic with key", func(c *Config) {
			c.Classifier.Provider = ClassifierAnthropic
			c.Classifier.AnthropicAPIKey = "k"
		}, true},
		{"gemini with anthropic key only", func(c *Config) {
			c.Classifier.Provider = ClassifierGemini
			c.Classifier.AnthropicAPIKey = "k"
		}, false},
		{"negative threshold", func(c *Config) { c.Conversation.CommitThreshold = -1 }, false},
		{"zero threshold", func(c *Config) { c.Conversation.CommitThreshold = 0 }, true},
		{"zero ceiling", func(c *Config) { c.Conversation.TurnCeiling = 0 }, false},
		{"zero top k", func(c *Config) { c.Conversation.TopK = 0 }, false},
		{"negative min score", func(c *Config) { c.Matcher.MinScore = -0.5 }, false},
		{"zero theme bonus", func(c *Config) { c.Matcher.Themes[0].Bonus = 0 }, false},
		{"error retention shorter", func(c *Config) { c.Events.ErrorRetentionDays = 10 }, false},
		{"tiny batch", func(c *Config) { c.Events.BatchSize = 10 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestEventRetentionCutoffs(t *testing.T) {
	now := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)
	regular, errorCutoff := DefaultEventRetentionConfig().Cutoffs(now)
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), regular)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), errorCutoff)
	assert.Contains(t, DefaultEventRetentionConfig().String(), "RetentionDays: 30")
}
