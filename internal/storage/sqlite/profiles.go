package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/steveyegge/esgmatch/internal/conversation"
)

// ProfileInfo is the listing row for a saved profile
type ProfileInfo struct {
	SessionID       string
	StartedAt       time.Time
	CompletedAt     time.Time
	TaxonomyVersion string
	FieldCount      int
	TopicsExplored  int
	TopicsTotal     int
}

// SaveProfile stores p, replacing any earlier profile for the same session
func (s *SQLiteStorage) SaveProfile(ctx context.Context, p *conversation.Profile) error {
	if p == nil || p.SessionID == "" {
		return fmt.Errorf("profile must have a session ID")
	}

	priorities, err := json.Marshal(p.Priorities)
	if err != nil {
		return fmt.Errorf("failed to marshal priorities: %w", err)
	}
	summary, err := json.Marshal(p.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	progress, err := json.Marshal(p.Progress)
	if err != nil {
		return fmt.Errorf("failed to marshal progress: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM profiles WHERE session_id = ?`, p.SessionID); err != nil {
		return fmt.Errorf("failed to replace profile %s: %w", p.SessionID, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO profiles (
			session_id, started_at, completed_at, taxonomy_version,
			field_count, topics_explored, topics_total,
			priorities, summary, progress
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.SessionID,
		formatTime(p.StartedAt),
		formatTime(p.CompletedAt),
		p.TaxonomyVersion,
		len(p.Priorities),
		p.Summary.TopicsExplored,
		p.Summary.TopicsTotal,
		string(priorities),
		string(summary),
		string(progress),
	)
	if err != nil {
		return fmt.Errorf("failed to store profile %s: %w", p.SessionID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetProfile loads the profile saved for sessionID
func (s *SQLiteStorage) GetProfile(ctx context.Context, sessionID string) (*conversation.Profile, error) {
	var (
		p                             conversation.Profile
		startedAt, completedAt        string
		priorities, summary, progress string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT session_id, started_at, completed_at, taxonomy_version,
		       priorities, summary, progress
		FROM profiles
		WHERE session_id = ?
	`, sessionID).Scan(
		&p.SessionID,
		&startedAt,
		&completedAt,
		&p.TaxonomyVersion,
		&priorities,
		&summary,
		&progress,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile %s: %w", sessionID, err)
	}

	if p.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, err
	}
	if p.CompletedAt, err = parseTime(completedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(priorities), &p.Priorities); err != nil {
		return nil, fmt.Errorf("failed to unmarshal priorities: %w", err)
	}
	if err := json.Unmarshal([]byte(summary), &p.Summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}
	if err := json.Unmarshal([]byte(progress), &p.Progress); err != nil {
		return nil, fmt.Errorf("failed to unmarshal progress: %w", err)
	}
	return &p, nil
}

// ListProfiles returns saved profiles, most recently completed first.
// A limit of zero or less returns all of them.
func (s *SQLiteStorage) ListProfiles(ctx context.Context, limit int) ([]*ProfileInfo, error) {
	query := `
		SELECT session_id, started_at, completed_at, taxonomy_version,
		       field_count, topics_explored, topics_total
		FROM profiles
		ORDER BY completed_at DESC, session_id ASC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*ProfileInfo
	for rows.Next() {
		var info ProfileInfo
		var startedAt, completedAt string
		if err := rows.Scan(
			&info.SessionID,
			&startedAt,
			&completedAt,
			&info.TaxonomyVersion,
			&info.FieldCount,
			&info.TopicsExplored,
			&info.TopicsTotal,
		); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		if info.StartedAt, err = parseTime(startedAt); err != nil {
			return nil, err
		}
		if info.CompletedAt, err = parseTime(completedAt); err != nil {
			return nil, err
		}
		result = append(result, &info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profiles: %w", err)
	}
	return result, nil
}

// DeleteProfile removes the profile and the events of sessionID
func (s *SQLiteStorage) DeleteProfile(ctx context.Context, sessionID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM profiles WHERE session_id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete profile %s: %w", sessionID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, sessionID)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM conversation_events WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete events of %s: %w", sessionID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
