package config

import (
	"fmt"
	"time"
)

// EventRetentionConfig holds configuration for pruning stored conversation events
type EventRetentionConfig struct {
	// RetentionDays is how long info and warning events are kept.
	// Default: 30, Range: 1-365
	RetentionDays int `yaml:"retention_days"`

	// ErrorRetentionDays is how long error events are kept.
	// Must be >= RetentionDays.
	// Default: 90, Range: 1-730
	ErrorRetentionDays int `yaml:"error_retention_days"`

	// BatchSize is the number of events deleted per statement.
	// Default: 1000, Range: 100-10000
	BatchSize int `yaml:"batch_size"`

	// Vacuum runs VACUUM after pruning to reclaim disk space.
	// Default: false
	Vacuum bool `yaml:"vacuum"`
}

// DefaultEventRetentionConfig returns the default event retention configuration
func DefaultEventRetentionConfig() EventRetentionConfig {
	return EventRetentionConfig{
		RetentionDays:      30,
		ErrorRetentionDays: 90,
		BatchSize:          1000,
		Vacuum:             false,
	}
}

// Validate checks if the configuration has valid values
func (c EventRetentionConfig) Validate() error {
	if c.RetentionDays < 1 || c.RetentionDays > 365 {
		return fmt.Errorf("retention_days must be between 1 and 365 (got %d)", c.RetentionDays)
	}
	if c.ErrorRetentionDays < 1 || c.ErrorRetentionDays > 730 {
		return fmt.Errorf("error_retention_days must be between 1 and 730 (got %d)", c.ErrorRetentionDays)
	}
	if c.ErrorRetentionDays < c.RetentionDays {
		return fmt.Errorf("error_retention_days (%d) must be >= retention_days (%d)",
			c.ErrorRetentionDays, c.RetentionDays)
	}
	if c.BatchSize < 100 || c.BatchSize > 10000 {
		return fmt.Errorf("batch_size must be between 100 and 10000 (got %d)", c.BatchSize)
	}
	return nil
}

// Cutoffs returns the timestamps before which regular and error events may be deleted
func (c EventRetentionConfig) Cutoffs(now time.Time) (regular, errorCutoff time.Time) {
	return now.AddDate(0, 0, -c.RetentionDays), now.AddDate(0, 0, -c.ErrorRetentionDays)
}

// String returns a human-readable representation of the config
func (c EventRetentionConfig) String() string {
	return fmt.Sprintf(
		"EventRetentionConfig{RetentionDays: %d, ErrorRetentionDays: %d, BatchSize: %d, Vacuum: %t}",
		c.RetentionDays, c.ErrorRetentionDays, c.BatchSize, c.Vacuum,
	)
}

func (c *EventRetentionConfig) applyEnv() error {
	if err := parseEnvInt("ESGMATCH_EVENT_RETENTION_DAYS", &c.RetentionDays); err != nil {
		return err
	}
	if err := parseEnvInt("ESGMATCH_EVENT_ERROR_RETENTION_DAYS", &c.ErrorRetentionDays); err != nil {
		return err
	}
	if err := parseEnvInt("ESGMATCH_EVENT_CLEANUP_BATCH_SIZE", &c.BatchSize); err != nil {
		return err
	}
	return parseEnvBool("ESGMATCH_EVENT_CLEANUP_VACUUM", &c.Vacuum)
}
