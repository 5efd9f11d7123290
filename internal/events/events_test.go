package events

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTypeIsValid(t *testing.T) {
	tests := []struct {
		name     string
		et       EventType
		expected bool
	}{
		{"topic started", EventTypeTopicStarted, true},
		{"loop escape", EventTypeLoopEscape, true},
		{"priority recorded", EventTypePriorityRecorded, true},
		{"unknown", EventType("file_modified"), false},
		{"empty", EventType(""), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.et.IsValid())
		})
	}
}

func TestCommitmentEventRoundTrip(t *testing.T) {
	event, err := NewCommitmentEvent("s1", "environmental_water_management", "committed", CommitmentData{
		Turn:             2,
		Phrase:           "resonate",
		Polarity:         "positive",
		RecordedFieldIDs: []string{"ENV002"},
	})
	require.NoError(t, err)

	_, err = uuid.Parse(event.ID)
	assert.NoError(t, err)
	assert.Equal(t, EventTypeCommitmentDetected, event.Type)
	assert.Equal(t, SeverityInfo, event.Severity)
	assert.False(t, event.Timestamp.IsZero())

	data, err := event.GetCommitmentData()
	require.NoError(t, err)
	assert.Equal(t, 2, data.Turn)
	assert.Equal(t, []string{"ENV002"}, data.RecordedFieldIDs)
}

func TestLoopEscapeIsWarning(t *testing.T) {
	event, err := NewLoopEscapeEvent("s1", "t1", "ceiling reached", LoopEscapeData{Turns: 3, Ceiling: 3})
	require.NoError(t, err)
	assert.Equal(t, SeverityWarning, event.Severity)

	data, err := event.GetLoopEscapeData()
	require.NoError(t, err)
	assert.Equal(t, 3, data.Turns)
}

func TestEventIDsAreUnique(t *testing.T) {
	a := NewSessionStartedEvent("s1", "start")
	b := NewSessionStartedEvent("s1", "start")
	assert.NotEqual(t, a.ID, b.ID)
	assert.Empty(t, a.TopicID)
}

func TestRecorderFunc(t *testing.T) {
	var got []*ConversationEvent
	rec := RecorderFunc(func(_ context.Context, e *ConversationEvent) error {
		got = append(got, e)
		return nil
	})
	require.NoError(t, rec.RecordEvent(context.Background(), NewSessionCompletedEvent("s1", "done")))
	require.Len(t, got, 1)
	assert.Equal(t, EventTypeSessionCompleted, got[0].Type)
}
