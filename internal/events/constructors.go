package events

import (
	"time"

	"github.com/google/uuid"
)

// newEvent fills the common fields of a ConversationEvent.
func newEvent(eventType EventType, sessionID, topicID string, severity EventSeverity, message string) *ConversationEvent {
	return &ConversationEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
		SessionID: sessionID,
		TopicID:   topicID,
		Severity:  severity,
		Message:   message,
	}
}

// NewSessionStartedEvent creates a session start event.
func NewSessionStartedEvent(sessionID, message string) *ConversationEvent {
	return newEvent(EventTypeSessionStarted, sessionID, "", SeverityInfo, message)
}

// NewSessionCompletedEvent creates a session completion event.
func NewSessionCompletedEvent(sessionID, message string) *ConversationEvent {
	return newEvent(EventTypeSessionCompleted, sessionID, "", SeverityInfo, message)
}

// NewTopicStartedEvent creates a topic start event with type-safe data.
func NewTopicStartedEvent(sessionID, topicID, message string, data TopicStartedData) (*ConversationEvent, error) {
	event := newEvent(EventTypeTopicStarted, sessionID, topicID, SeverityInfo, message)
	if err := event.setData(data); err != nil {
		return nil, err
	}
	return event, nil
}

// NewTurnProcessedEvent creates a turn event with type-safe data.
func NewTurnProcessedEvent(sessionID, topicID, message string, data TurnProcessedData) (*ConversationEvent, error) {
	event := newEvent(EventTypeTurnProcessed, sessionID, topicID, SeverityInfo, message)
	if err := event.setData(data); err != nil {
		return nil, err
	}
	return event, nil
}

// NewCommitmentEvent creates a commitment event with type-safe data.
func NewCommitmentEvent(sessionID, topicID, message string, data CommitmentData) (*ConversationEvent, error) {
	event := newEvent(EventTypeCommitmentDetected, sessionID, topicID, SeverityInfo, message)
	if err := event.setData(data); err != nil {
		return nil, err
	}
	return event, nil
}

// NewLoopEscapeEvent creates a loop escape event with type-safe data.
// Loop escapes are warnings: the topic closed without a clear answer.
func NewLoopEscapeEvent(sessionID, topicID, message string, data LoopEscapeData) (*ConversationEvent, error) {
	event := newEvent(EventTypeLoopEscape, sessionID, topicID, SeverityWarning, message)
	if err := event.setData(data); err != nil {
		return nil, err
	}
	return event, nil
}

// NewSubtopicRequestedEvent creates a subtopic question event with type-safe data.
func NewSubtopicRequestedEvent(sessionID, topicID, message string, data SubtopicRequestedData) (*ConversationEvent, error) {
	event := newEvent(EventTypeSubtopicRequested, sessionID, topicID, SeverityInfo, message)
	if err := event.setData(data); err != nil {
		return nil, err
	}
	return event, nil
}

// NewPriorityRecordedEvent creates a ledger write event with type-safe data.
func NewPriorityRecordedEvent(sessionID, topicID, message string, data PriorityRecordedData) (*ConversationEvent, error) {
	event := newEvent(EventTypePriorityRecorded, sessionID, topicID, SeverityInfo, message)
	if err := event.setData(data); err != nil {
		return nil, err
	}
	return event, nil
}

// NewClassifierFallbackEvent creates a classifier failure event with type-safe data.
func NewClassifierFallbackEvent(sessionID, topicID, message string, data ClassifierFallbackData) (*ConversationEvent, error) {
	event := newEvent(EventTypeClassifierFallback, sessionID, topicID, SeverityWarning, message)
	if err := event.setData(data); err != nil {
		return nil, err
	}
	return event, nil
}
