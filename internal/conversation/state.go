package conversation

import (
	"context"
	"fmt"
	"log/slog"
)

// TopicState is the per-topic conversation state.
//
// State Flow:
// - not_started → in_progress when the topic becomes current
// - in_progress → awaiting_subtopic on HIGH interest, once per topic
// - in_progress / awaiting_subtopic → committed on a commitment phrase or the turn ceiling
type TopicState string

const (
	StateNotStarted       TopicState = "not_started"
	StateInProgress       TopicState = "in_progress"
	StateAwaitingSubtopic TopicState = "awaiting_subtopic"
	StateCommitted        TopicState = "committed"
)

// IsValid checks if the state value is valid
func (s TopicState) IsValid() bool {
	switch s {
	case StateNotStarted, StateInProgress, StateAwaitingSubtopic, StateCommitted:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition can leave s
func (s TopicState) IsTerminal() bool {
	return s == StateCommitted
}

// Trigger types for state transitions
const (
	TriggerTopicStarted = "topic_started"
	TriggerHighInterest = "high_interest"
	TriggerCommitment   = "commitment"
	TriggerTurnCeiling  = "turn_ceiling"
)

var validTransitions = map[TopicState][]TopicState{
	StateNotStarted:       {StateInProgress},
	StateInProgress:       {StateAwaitingSubtopic, StateCommitted},
	StateAwaitingSubtopic: {StateCommitted},
}

// CanTransition reports whether from → to is a legal edge
func CanTransition(from, to TopicState) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// transitionState moves topicID to toState and logs the transition.
// Committing also marks the topic closed on the session.
func (t *Tracker) transitionState(ctx context.Context, s *Session, topicID string, toState TopicState, trigger string) error {
	fromState := s.State(topicID)
	if !CanTransition(fromState, toState) {
		return fmt.Errorf("invalid state transition for topic %s: %s → %s (trigger: %s)", topicID, fromState, toState, trigger)
	}

	s.states[topicID] = toState
	if toState == StateCommitted {
		s.Committed[topicID] = true
	}

	t.logger.LogAttrs(ctx, slog.LevelDebug, "topic state transition",
		slog.String("session", s.ID),
		slog.String("topic", topicID),
		slog.String("from", string(fromState)),
		slog.String("to", string(toState)),
		slog.String("trigger", trigger),
	)
	return nil
}
