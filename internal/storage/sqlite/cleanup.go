package sqlite

import (
	"context"
	"fmt"
	"time"
)

// EventCounts holds event count statistics
type EventCounts struct {
	TotalEvents      int
	EventsBySession  map[string]int
	EventsBySeverity map[string]int
	EventsByType     map[string]int
}

// CleanupEventsOlderThan deletes events from before cutoff in batches of
// batchSize and returns how many were removed. Error events are kept until
// they are older than errorCutoff as well.
func (s *SQLiteStorage) CleanupEventsOlderThan(ctx context.Context, cutoff, errorCutoff time.Time, batchSize int) (int, error) {
	if batchSize < 1 {
		return 0, fmt.Errorf("batch size must be at least 1")
	}

	total := 0
	deleted, err := s.deleteEventsBatch(ctx, cutoff, []string{"info", "warning"}, batchSize)
	total += deleted
	if err != nil {
		return total, fmt.Errorf("failed to delete old events: %w", err)
	}

	deleted, err = s.deleteEventsBatch(ctx, errorCutoff, []string{"error"}, batchSize)
	total += deleted
	if err != nil {
		return total, fmt.Errorf("failed to delete old error events: %w", err)
	}
	return total, nil
}

func (s *SQLiteStorage) deleteEventsBatch(ctx context.Context, cutoff time.Time, severities []string, batchSize int) (int, error) {
	placeholders := ""
	args := []interface{}{formatTime(cutoff)}
	for i, sev := range severities {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += "?"
		args = append(args, sev)
	}
	args = append(args, batchSize)

	query := fmt.Sprintf(`
		DELETE FROM conversation_events
		WHERE id IN (
			SELECT id FROM conversation_events
			WHERE timestamp < ?
			AND severity IN (%s)
			ORDER BY timestamp ASC
			LIMIT ?
		)
	`, placeholders)

	total := 0
	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		default:
		}

		result, err := s.db.ExecContext(ctx, query, args...)
		if err != nil {
			return total, fmt.Errorf("failed to execute delete: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("failed to get rows affected: %w", err)
		}
		total += int(n)

		if n < int64(batchSize) {
			return total, nil
		}
	}
}

// GetEventCounts reports how many events are stored, grouped three ways
func (s *SQLiteStorage) GetEventCounts(ctx context.Context) (*EventCounts, error) {
	counts := &EventCounts{}

	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM conversation_events").Scan(&counts.TotalEvents)
	if err != nil {
		return nil, fmt.Errorf("failed to get total event count: %w", err)
	}

	if counts.EventsBySession, err = s.countBy(ctx, "session_id"); err != nil {
		return nil, err
	}
	if counts.EventsBySeverity, err = s.countBy(ctx, "severity"); err != nil {
		return nil, err
	}
	if counts.EventsByType, err = s.countBy(ctx, "type"); err != nil {
		return nil, err
	}
	return counts, nil
}

// countBy groups events by column, which must be a trusted column name
func (s *SQLiteStorage) countBy(ctx context.Context, column string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s, COUNT(*)
		FROM conversation_events
		GROUP BY %s
	`, column, column))
	if err != nil {
		return nil, fmt.Errorf("failed to query events by %s: %w", column, err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string]int)
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("failed to scan %s count: %w", column, err)
		}
		out[key] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s counts: %w", column, err)
	}
	return out, nil
}

// VacuumDatabase runs VACUUM to reclaim disk space
func (s *SQLiteStorage) VacuumDatabase(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	return nil
}
