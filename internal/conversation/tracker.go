// Package conversation tracks a multi-turn ESG preference dialogue: which topic
// is current, how many turns it has taken, whether the user committed, and
// when to move on.
//
// Every topic is guaranteed to close: a commitment phrase closes it at once,
// and without one the turn ceiling closes it anyway.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/steveyegge/esgmatch/internal/events"
	"github.com/steveyegge/esgmatch/internal/interest"
	"github.com/steveyegge/esgmatch/internal/matcher"
	"github.com/steveyegge/esgmatch/internal/navigator"
	"github.com/steveyegge/esgmatch/internal/taxonomy"
	"github.com/steveyegge/esgmatch/internal/textutil"
	"github.com/steveyegge/esgmatch/internal/types"
)

// Config holds tracker tuning
type Config struct {
	// CommitThreshold is the matcher score a field must exceed to be recorded
	CommitThreshold float64
	// TurnCeiling closes a topic after this many turns without commitment
	TurnCeiling int
	// MatchTopK bounds how many matcher results are considered per turn
	MatchTopK int
	// Importance is written to the ledger for committed matches
	Importance types.Importance
}

const (
	DefaultCommitThreshold = 6.0
	DefaultTurnCeiling     = 3
	DefaultMatchTopK       = 5
)

// DefaultConfig returns the standard tracker settings
func DefaultConfig() Config {
	return Config{
		CommitThreshold: DefaultCommitThreshold,
		TurnCeiling:     DefaultTurnCeiling,
		MatchTopK:       DefaultMatchTopK,
		Importance:      types.ImportanceHigh,
	}
}

// Validate checks if the configuration has valid values
func (c Config) Validate() error {
	if c.CommitThreshold < 0 {
		return fmt.Errorf("commit_threshold must be non-negative (got %v)", c.CommitThreshold)
	}
	if c.TurnCeiling < 1 {
		return fmt.Errorf("turn_ceiling must be >= 1 (got %d)", c.TurnCeiling)
	}
	if c.MatchTopK < 1 {
		return fmt.Errorf("match_top_k must be >= 1 (got %d)", c.MatchTopK)
	}
	if !c.Importance.IsValid() {
		return fmt.Errorf("invalid importance %q", c.Importance)
	}
	return nil
}

// TurnResult reports what one user turn did
type TurnResult struct {
	CommitmentDetected bool
	IsLooping          bool // the turn ceiling closed the topic
	ShouldMoveOn       bool // CommitmentDetected || IsLooping, or the topic was already closed
	MatchedFields      []matcher.Match

	SubtopicRequested bool // the caller should ask the subtopic question now
	Polarity          Polarity
	Interest          types.InterestLevel
	State             TopicState
	Turn              int
}

// Option configures a Tracker
type Option func(*Tracker)

// WithConfig overrides DefaultConfig
func WithConfig(cfg Config) Option {
	return func(t *Tracker) { t.cfg = cfg }
}

// WithClassifier sets the interest classifier (default: keyword heuristic)
func WithClassifier(c interest.Classifier) Option {
	return func(t *Tracker) { t.classifier = c }
}

// WithRecorder sends conversation events to rec
func WithRecorder(rec events.Recorder) Option {
	return func(t *Tracker) { t.recorder = rec }
}

// WithLogger sets the logger (default: slog.Default())
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// Tracker drives sessions. It holds only read-only collaborators, so one Tracker
// may serve many sessions; each Session must stay with one goroutine.
type Tracker struct {
	index      *taxonomy.Index
	matcher    *matcher.Matcher
	navigator  *navigator.Navigator
	classifier interest.Classifier
	recorder   events.Recorder
	logger     *slog.Logger
	cfg        Config
	now        func() time.Time
}

// NewTracker wires a tracker over a loaded taxonomy
func NewTracker(idx *taxonomy.Index, m *matcher.Matcher, nav *navigator.Navigator, opts ...Option) (*Tracker, error) {
	if idx == nil || m == nil || nav == nil {
		return nil, errors.New("taxonomy index, matcher and navigator are required")
	}
	t := &Tracker{
		index:      idx,
		matcher:    m,
		navigator:  nav,
		classifier: interest.NewKeywordClassifier(),
		logger:     slog.Default(),
		cfg:        DefaultConfig(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	if err := t.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid tracker config: %w", err)
	}
	return t, nil
}

// Navigator returns the topic navigator
func (t *Tracker) Navigator() *navigator.Navigator { return t.navigator }

// Config returns the tracker configuration
func (t *Tracker) Config() Config { return t.cfg }

// NewSession starts an empty session
func (t *Tracker) NewSession(ctx context.Context) *Session {
	s := newSession(t.index)
	t.record(ctx, s, events.NewSessionStartedEvent(s.ID, "Conversation started"), nil)
	return s
}

// ProcessTurn applies one user utterance to topicID.
//
// Turns on a closed topic change nothing and report ShouldMoveOn. Switching to a
// different topic resets its turn count before the turn is counted. The matcher
// runs on every turn; only a commitment writes its candidates to the ledger.
func (t *Tracker) ProcessTurn(ctx context.Context, s *Session, topicID, utterance string) (TurnResult, error) {
	if s == nil {
		return TurnResult{}, errors.New("session is required")
	}
	if topicID == "" {
		return TurnResult{}, errors.New("topic id is required")
	}

	if s.IsCommitted(topicID) {
		return TurnResult{ShouldMoveOn: true, State: StateCommitted, Turn: s.TurnCounts[topicID]}, nil
	}

	topic := t.topic(topicID)
	if s.CurrentTopic != topicID {
		if err := t.startTopic(ctx, s, topic); err != nil {
			return TurnResult{}, err
		}
	}

	s.TurnCounts[topicID]++
	turn := s.TurnCounts[topicID]

	matches, err := t.matcher.FindMatches(utterance, t.cfg.MatchTopK)
	if err != nil {
		return TurnResult{}, fmt.Errorf("failed to match utterance: %w", err)
	}
	candidates := t.candidates(matches)
	s.mention(topicID, t.mentionedNames(topic, utterance, candidates)...)

	result := TurnResult{
		Turn:          turn,
		MatchedFields: candidates,
		Interest:      t.classify(ctx, s, topic, utterance),
	}

	commitment := DetectCommitment(utterance)
	switch {
	case commitment.Detected:
		if err := t.commit(ctx, s, topic, turn, utterance, commitment, candidates); err != nil {
			return TurnResult{}, err
		}
		result.CommitmentDetected = true
		result.Polarity = commitment.Polarity
		if commitment.Polarity == PolarityNegative {
			result.Interest = types.InterestLow
		}

	case turn >= t.cfg.TurnCeiling:
		if err := t.transitionState(ctx, s, topicID, StateCommitted, TriggerTurnCeiling); err != nil {
			return TurnResult{}, err
		}
		result.IsLooping = true
		s.notes[topicID] = utterance
		t.logger.InfoContext(ctx, "turn ceiling reached, moving on",
			"session", s.ID, "topic", topicID, "turns", turn)
		event, err := events.NewLoopEscapeEvent(s.ID, topicID,
			fmt.Sprintf("No commitment after %d turns on %s", turn, topic.Name),
			events.LoopEscapeData{Turns: turn, Ceiling: t.cfg.TurnCeiling})
		t.record(ctx, s, event, err)

	case result.Interest == types.InterestHigh && s.State(topicID) == StateInProgress && !s.AskedSubtopic[topicID]:
		if err := t.transitionState(ctx, s, topicID, StateAwaitingSubtopic, TriggerHighInterest); err != nil {
			return TurnResult{}, err
		}
		s.AskedSubtopic[topicID] = true
		result.SubtopicRequested = true
		event, err := events.NewSubtopicRequestedEvent(s.ID, topicID,
			"Asking which aspects of "+topic.Name+" matter most",
			events.SubtopicRequestedData{SubIssues: topic.SubIssues})
		t.record(ctx, s, event, err)
	}

	s.interest[topicID] = result.Interest
	result.State = s.State(topicID)
	result.ShouldMoveOn = result.CommitmentDetected || result.IsLooping

	event, err := events.NewTurnProcessedEvent(s.ID, topicID, "Turn processed", events.TurnProcessedData{
		Turn:              turn,
		Utterance:         utterance,
		State:             string(result.State),
		Interest:          string(result.Interest),
		CandidateFieldIDs: fieldIDs(candidates),
	})
	t.record(ctx, s, event, err)

	return result, nil
}

func (t *Tracker) startTopic(ctx context.Context, s *Session, topic navigator.Topic) error {
	s.CurrentTopic = topic.ID
	s.TurnCounts[topic.ID] = 0

	if s.State(topic.ID) != StateNotStarted {
		// returning to a topic left open earlier
		return nil
	}
	if err := t.transitionState(ctx, s, topic.ID, StateInProgress, TriggerTopicStarted); err != nil {
		return err
	}
	s.order = append(s.order, topic.ID)

	event, err := events.NewTopicStartedEvent(s.ID, topic.ID, "Started topic "+topic.Name,
		events.TopicStartedData{TopicName: topic.Name, Kind: string(topic.Kind)})
	t.record(ctx, s, event, err)
	return nil
}

func (t *Tracker) commit(ctx context.Context, s *Session, topic navigator.Topic, turn int, utterance string, c Commitment, candidates []matcher.Match) error {
	if err := t.transitionState(ctx, s, topic.ID, StateCommitted, TriggerCommitment); err != nil {
		return err
	}
	s.polarity[topic.ID] = c.Polarity
	s.notes[topic.ID] = utterance

	notes := ""
	if c.Polarity == PolarityNegative {
		notes = "negative commitment: " + c.Phrase
	}
	var recorded []string
	for _, m := range candidates {
		if err := s.Ledger.AddWithNotes(m.Field.FieldID, t.cfg.Importance, utterance, notes); err != nil {
			return fmt.Errorf("failed to record priority %s: %w", m.Field.FieldID, err)
		}
		recorded = append(recorded, m.Field.FieldID)

		t.logger.DebugContext(ctx, "priority recorded",
			"session", s.ID, "topic", topic.ID, "field_id", m.Field.FieldID, "score", m.Score)
		event, err := events.NewPriorityRecordedEvent(s.ID, topic.ID, "Recorded "+m.Field.FieldName,
			events.PriorityRecordedData{FieldID: m.Field.FieldID, Importance: string(t.cfg.Importance), Score: m.Score})
		t.record(ctx, s, event, err)
	}

	event, err := events.NewCommitmentEvent(s.ID, topic.ID,
		fmt.Sprintf("Commitment on %s (%s)", topic.Name, c.Phrase),
		events.CommitmentData{Turn: turn, Phrase: c.Phrase, Polarity: string(c.Polarity), RecordedFieldIDs: recorded})
	t.record(ctx, s, event, err)
	return nil
}

// classify asks the interest classifier and falls back to MEDIUM on failure.
func (t *Tracker) classify(ctx context.Context, s *Session, topic navigator.Topic, utterance string) types.InterestLevel {
	lvl, err := t.classifier.Classify(ctx, interest.Topic{ID: topic.ID, Name: topic.Name, Description: topic.Description}, utterance)
	if err == nil && !lvl.IsValid() {
		err = fmt.Errorf("classifier returned invalid interest level %q", lvl)
	}
	if err != nil {
		t.logger.WarnContext(ctx, "interest classification failed, defaulting to MEDIUM",
			"session", s.ID, "topic", topic.ID, "error", err)
		event, evErr := events.NewClassifierFallbackEvent(s.ID, topic.ID, "Interest classifier failed",
			events.ClassifierFallbackData{Error: err.Error(), Fallback: string(types.InterestMedium)})
		t.record(ctx, s, event, evErr)
		return types.InterestMedium
	}
	return lvl
}

func (t *Tracker) candidates(matches []matcher.Match) []matcher.Match {
	var out []matcher.Match
	for _, m := range matches {
		if m.Score > t.cfg.CommitThreshold {
			out = append(out, m)
		}
	}
	return out
}

// mentionedNames extracts the child names of topic found in the utterance or
// among the candidate fields: issues for a pillar intro, sub-issues for an issue.
func (t *Tracker) mentionedNames(topic navigator.Topic, utterance string, candidates []matcher.Match) []string {
	tokens := textutil.Tokens(utterance)
	var names []string

	switch topic.Kind {
	case types.TopicPillarIntro:
		for _, node := range t.navigator.Issues(topic.Pillar) {
			if textutil.ContainsText(tokens, node.Name) {
				names = append(names, node.Name)
			}
		}
		for _, m := range candidates {
			if m.Field.Pillar == topic.Pillar && m.Field.Issue != "" {
				names = append(names, m.Field.Issue)
			}
		}
	default:
		for _, sub := range topic.SubIssues {
			if textutil.ContainsText(tokens, sub) {
				names = append(names, sub)
			}
		}
		for _, m := range candidates {
			if m.Field.HasSubIssue() && strings.EqualFold(m.Field.Issue, topic.Issue) {
				names = append(names, m.Field.SubIssue)
			}
		}
	}
	return names
}

// topic resolves topicID, treating IDs unknown to the navigator as ad-hoc issue topics
func (t *Tracker) topic(topicID string) navigator.Topic {
	if topic, ok := t.navigator.Topic(topicID); ok {
		return topic
	}
	return navigator.Topic{ID: topicID, Kind: types.TopicIssue, Name: topicID, Description: topicID}
}

// record sends an event to the recorder. Recording failures never fail a turn.
func (t *Tracker) record(ctx context.Context, s *Session, event *events.ConversationEvent, buildErr error) {
	if t.recorder == nil {
		return
	}
	if buildErr != nil {
		t.logger.WarnContext(ctx, "failed to build conversation event", "session", s.ID, "error", buildErr)
		return
	}
	if err := t.recorder.RecordEvent(ctx, event); err != nil {
		t.logger.WarnContext(ctx, "failed to record conversation event",
			"session", s.ID, "type", string(event.Type), "error", err)
	}
}

// MarkSubtopicAsked records that the subtopic question for topicID was issued.
// The flag is set once and never cleared; closed topics are left untouched.
func (t *Tracker) MarkSubtopicAsked(s *Session, topicID string) {
	if s.IsCommitted(topicID) || s.AskedSubtopic[topicID] {
		return
	}
	s.AskedSubtopic[topicID] = true
}

// NextTopic returns the next open topic, or ok=false when every topic is closed
func (t *Tracker) NextTopic(s *Session) (topicID string, ok bool) {
	return t.navigator.NextTopic(s)
}

// Complete records that the session ran out of topics
func (t *Tracker) Complete(ctx context.Context, s *Session) {
	t.record(ctx, s, events.NewSessionCompletedEvent(s.ID,
		fmt.Sprintf("Conversation completed with %d priorities", s.Ledger.Len())), nil)
}

func fieldIDs(matches []matcher.Match) []string {
	ids := make([]string, 0, len(matches))
	for _, m := range matches {
		ids = append(ids, m.Field.FieldID)
	}
	return ids
}
