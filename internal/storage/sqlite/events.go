package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/steveyegge/esgmatch/internal/events"
)

// RecordEvent stores a conversation event
func (s *SQLiteStorage) RecordEvent(ctx context.Context, event *events.ConversationEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if !event.Type.IsValid() {
		return fmt.Errorf("invalid event type: %s", event.Type)
	}

	data := event.Data
	if data == nil {
		data = map[string]interface{}{}
	}
	dataJSON, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO conversation_events (
			id, type, timestamp, session_id, topic_id, severity, message, data
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		event.ID,
		string(event.Type),
		formatTime(event.Timestamp),
		event.SessionID,
		event.TopicID,
		string(event.Severity),
		event.Message,
		string(dataJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to store event (type=%s, session=%s): %w", event.Type, event.SessionID, err)
	}
	return nil
}

// GetEvents retrieves events matching filter in the order they occurred
func (s *SQLiteStorage) GetEvents(ctx context.Context, filter events.EventFilter) ([]*events.ConversationEvent, error) {
	query := `
		SELECT id, type, timestamp, session_id, topic_id, severity, message, data
		FROM conversation_events
		WHERE 1=1
	`
	args := []interface{}{}

	if filter.SessionID != "" {
		query += " AND session_id = ?"
		args = append(args, filter.SessionID)
	}
	if filter.TopicID != "" {
		query += " AND topic_id = ?"
		args = append(args, filter.TopicID)
	}
	if filter.Type != "" {
		query += " AND type = ?"
		args = append(args, string(filter.Type))
	}
	if !filter.AfterTime.IsZero() {
		query += " AND timestamp > ?"
		args = append(args, formatTime(filter.AfterTime))
	}

	query += " ORDER BY timestamp ASC, rowid ASC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]*events.ConversationEvent, error) {
	var result []*events.ConversationEvent

	for rows.Next() {
		var (
			event               events.ConversationEvent
			eventType, severity string
			timestamp, dataJSON string
		)
		err := rows.Scan(
			&event.ID,
			&eventType,
			&timestamp,
			&event.SessionID,
			&event.TopicID,
			&severity,
			&event.Message,
			&dataJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		event.Type = events.EventType(eventType)
		event.Severity = events.EventSeverity(severity)
		if event.Timestamp, err = parseTime(timestamp); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(dataJSON), &event.Data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event data: %w", err)
		}
		if len(event.Data) == 0 {
			event.Data = nil
		}

		result = append(result, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}

	return result, nil
}
