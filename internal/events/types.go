package events

import (
	"context"
	"time"
)

// EventType represents the type of event that occurred during a conversation.
type EventType string

const (
	// EventTypeSessionStarted indicates a new conversation session was created
	EventTypeSessionStarted EventType = "session_started"
	// EventTypeTopicStarted indicates a topic became the current topic
	EventTypeTopicStarted EventType = "topic_started"
	// EventTypeTurnProcessed indicates a user turn was processed on a topic
	EventTypeTurnProcessed EventType = "turn_processed"
	// EventTypeCommitmentDetected indicates a commitment phrase closed a topic
	EventTypeCommitmentDetected EventType = "commitment_detected"
	// EventTypeLoopEscape indicates the turn ceiling closed a topic without commitment
	EventTypeLoopEscape EventType = "loop_escape"
	// EventTypeSubtopicRequested indicates the subtopic question was issued for a topic
	EventTypeSubtopicRequested EventType = "subtopic_requested"
	// EventTypePriorityRecorded indicates a field was written to the priority ledger
	EventTypePriorityRecorded EventType = "priority_recorded"
	// EventTypeClassifierFallback indicates the interest classifier failed and MEDIUM was used
	EventTypeClassifierFallback EventType = "classifier_fallback"
	// EventTypeSessionCompleted indicates every topic was exhausted
	EventTypeSessionCompleted EventType = "session_completed"
)

// IsValid checks if the event type value is valid
func (t EventType) IsValid() bool {
	switch t {
	case EventTypeSessionStarted, EventTypeTopicStarted, EventTypeTurnProcessed,
		EventTypeCommitmentDetected, EventTypeLoopEscape, EventTypeSubtopicRequested,
		EventTypePriorityRecorded, EventTypeClassifierFallback, EventTypeSessionCompleted:
		return true
	}
	return false
}

// EventSeverity represents the severity level of an event.
type EventSeverity string

const (
	// SeverityInfo indicates informational events
	SeverityInfo EventSeverity = "info"
	// SeverityWarning indicates potentially problematic events
	SeverityWarning EventSeverity = "warning"
	// SeverityError indicates error events
	SeverityError EventSeverity = "error"
)

// ConversationEvent is one entry of a session's audit trail.
type ConversationEvent struct {
	// ID is the unique identifier for this event
	ID string `json:"id"`
	// Type is the type of event
	Type EventType `json:"type"`
	// Timestamp is when the event occurred
	Timestamp time.Time `json:"timestamp"`
	// SessionID is the conversation session the event belongs to
	SessionID string `json:"session_id"`
	// TopicID is the topic being discussed, empty for session-level events
	TopicID string `json:"topic_id,omitempty"`
	// Severity is the severity level of this event
	Severity EventSeverity `json:"severity"`
	// Message is a human-readable description of the event
	Message string `json:"message"`
	// Data contains structured, type-specific data (must be JSON-serializable)
	Data map[string]interface{} `json:"data,omitempty"`
}

// TopicStartedData contains structured data for topic start events.
type TopicStartedData struct {
	// TopicName is the display name of the topic
	TopicName string `json:"topic_name"`
	// Kind is "pillar_intro" or "issue"
	Kind string `json:"kind"`
}

// TurnProcessedData contains structured data for processed turns.
type TurnProcessedData struct {
	// Turn is the 1-based turn number on the topic
	Turn int `json:"turn"`
	// Utterance is the verbatim user statement
	Utterance string `json:"utterance"`
	// State is the topic state after the turn
	State string `json:"state"`
	// Interest is the classified interest level, if classification ran
	Interest string `json:"interest,omitempty"`
	// CandidateFieldIDs are fields that scored above the commit threshold
	CandidateFieldIDs []string `json:"candidate_field_ids,omitempty"`
}

// CommitmentData contains structured data for commitment events.
type CommitmentData struct {
	// Turn is the turn on which commitment was detected
	Turn int `json:"turn"`
	// Phrase is the commitment phrase that matched
	Phrase string `json:"phrase"`
	// Polarity is "positive" or "negative"
	Polarity string `json:"polarity"`
	// RecordedFieldIDs are the fields written to the ledger
	RecordedFieldIDs []string `json:"recorded_field_ids,omitempty"`
}

// LoopEscapeData contains structured data for loop escape events.
type LoopEscapeData struct {
	// Turns is the number of turns spent on the topic
	Turns int `json:"turns"`
	// Ceiling is the configured turn ceiling
	Ceiling int `json:"ceiling"`
}

// SubtopicRequestedData contains structured data for subtopic question events.
type SubtopicRequestedData struct {
	// SubIssues are the sub-issues offered to the user
	SubIssues []string `json:"sub_issues,omitempty"`
}

// PriorityRecordedData contains structured data for ledger writes.
type PriorityRecordedData struct {
	// FieldID is the recorded taxonomy field
	FieldID string `json:"field_id"`
	// Importance is the recorded importance level
	Importance string `json:"importance"`
	// Score is the matcher score that qualified the field
	Score float64 `json:"score"`
}

// ClassifierFallbackData contains structured data for classifier failures.
type ClassifierFallbackData struct {
	// Error is the classifier error message
	Error string `json:"error"`
	// Fallback is the interest level used instead
	Fallback string `json:"fallback"`
}

// Recorder accepts conversation events. Implementations must be safe to call
// from the goroutine running the conversation.
type Recorder interface {
	RecordEvent(ctx context.Context, event *ConversationEvent) error
}

// EventStore defines the interface for storing and retrieving conversation events.
type EventStore interface {
	Recorder

	// GetEvents retrieves events matching the given filter
	GetEvents(ctx context.Context, filter EventFilter) ([]*ConversationEvent, error)
}

// EventFilter defines criteria for filtering events.
type EventFilter struct {
	// SessionID filters events by session
	SessionID string
	// TopicID filters events by topic
	TopicID string
	// Type filters events by event type
	Type EventType
	// AfterTime filters events that occurred after this time
	AfterTime time.Time
	// Limit limits the number of events returned
	Limit int
}

// RecorderFunc adapts a function to the Recorder interface
type RecorderFunc func(ctx context.Context, event *ConversationEvent) error

// RecordEvent calls f
func (f RecorderFunc) RecordEvent(ctx context.Context, event *ConversationEvent) error {
	return f(ctx, event)
}
