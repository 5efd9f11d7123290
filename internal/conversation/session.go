package conversation

import (
	"time"

	"github.com/google/uuid"

	"github.com/steveyegge/esgmatch/internal/priorities"
	"github.com/steveyegge/esgmatch/internal/types"
)

// Session is the mutable state of one user dialogue. It is owned by the caller
// and mutated only through Tracker methods; it must not be shared between
// concurrent conversations.
type Session struct {
	ID        string
	StartedAt time.Time

	CurrentTopic  string
	TurnCounts    map[string]int
	AskedSubtopic map[string]bool
	Committed     map[string]bool

	mentioned map[string][]string
	states    map[string]TopicState
	interest  map[string]types.InterestLevel
	polarity  map[string]Polarity
	notes     map[string]string
	order     []string // topics in the order they were first discussed

	Ledger *priorities.Ledger
}

func newSession(fields priorities.FieldLookup) *Session {
	return &Session{
		ID:            uuid.New().String(),
		StartedAt:     time.Now(),
		TurnCounts:    make(map[string]int),
		AskedSubtopic: make(map[string]bool),
		Committed:     make(map[string]bool),
		mentioned:     make(map[string][]string),
		states:        make(map[string]TopicState),
		interest:      make(map[string]types.InterestLevel),
		polarity:      make(map[string]Polarity),
		notes:         make(map[string]string),
		Ledger:        priorities.NewLedger(fields),
	}
}

// IsCommitted reports whether topicID is closed
func (s *Session) IsCommitted(topicID string) bool {
	return s.Committed[topicID]
}

// Mentions returns the names extracted from free text while topicID was current,
// in first-mention order.
func (s *Session) Mentions(topicID string) []string {
	return append([]string(nil), s.mentioned[topicID]...)
}

// State returns the state of topicID
func (s *Session) State(topicID string) TopicState {
	if st, ok := s.states[topicID]; ok {
		return st
	}
	return StateNotStarted
}

// Interest returns the last classified interest for topicID
func (s *Session) Interest(topicID string) (types.InterestLevel, bool) {
	lvl, ok := s.interest[topicID]
	return lvl, ok
}

// Discussed returns topic IDs in the order they were first discussed
func (s *Session) Discussed() []string {
	return append([]string(nil), s.order...)
}

func (s *Session) mention(topicID string, names ...string) {
	existing := s.mentioned[topicID]
outer:
	for _, name := range names {
		for _, e := range existing {
			if e == name {
				continue outer
			}
		}
		existing = append(existing, name)
	}
	if len(existing) > 0 {
		s.mentioned[topicID] = existing
	}
}
