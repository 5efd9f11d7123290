// Package storage is the persistence collaborator for completed conversations.
package storage

import (
	"context"
	"time"

	"github.com/steveyegge/esgmatch/internal/conversation"
	"github.com/steveyegge/esgmatch/internal/events"
	"github.com/steveyegge/esgmatch/internal/storage/sqlite"
)

// ErrNotFound is returned when a saved profile does not exist
var ErrNotFound = sqlite.ErrNotFound

// Storage persists preference profiles and the conversation audit trail
type Storage interface {
	// Conversation events
	events.EventStore

	// Profiles
	SaveProfile(ctx context.Context, p *conversation.Profile) error
	GetProfile(ctx context.Context, sessionID string) (*conversation.Profile, error)
	ListProfiles(ctx context.Context, limit int) ([]*sqlite.ProfileInfo, error)
	DeleteProfile(ctx context.Context, sessionID string) error

	// Retention
	CleanupEventsOlderThan(ctx context.Context, cutoff, errorCutoff time.Time, batchSize int) (int, error)
	GetEventCounts(ctx context.Context) (*sqlite.EventCounts, error)
	VacuumDatabase(ctx context.Context) error

	// Lifecycle
	Close() error
}

// Config holds database configuration
type Config struct {
	// Path is the SQLite database file path.
	// The special value ":memory:" creates an in-memory database (useful for tests).
	Path string
}

// DefaultPath is used when Config.Path is empty
const DefaultPath = ".esgmatch/esgmatch.db"

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{Path: DefaultPath}
}

// NewStorage opens the SQLite storage backend
func NewStorage(ctx context.Context, cfg *Config) (Storage, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	s, err := sqlite.New(ctx, path)
	if err != nil {
		return nil, err
	}
	return s, nil
}
