package session

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/halbot/hal-advisor/internal/db"
)

// Store persists conversation turns.
type Store struct {
	db *db.DB
}

// NewStore creates a new session store.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// AppendTurns writes one or more turns in a single transaction, so a
// user/assistant pair is either fully recorded or not at all.
func (s *Store) AppendTurns(ctx context.Context, turns ...Turn) error {
	if len(turns) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, t := range turns {
		if t.ID == "" {
			t.ID = uuid.New().String()
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = time.Now().UTC()
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO turns (id, session_id, role, content, resolved_content, intent, confidence, escalated, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.SessionID, t.Role, t.Content, t.ResolvedContent, t.Intent, t.Confidence, t.Escalated, t.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting turn: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing turns: %w", err)
	}
	return nil
}

// GetRecent returns up to n most recent turns for a session, oldest first.
func (s *Store) GetRecent(ctx context.Context, sessionID string, n int) ([]Turn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, role, content, resolved_content, intent, confidence, escalated, created_at
		 FROM turns WHERE session_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT ?`,
		sessionID, n,
	)
	if err != nil {
		return nil, fmt.Errorf("querying turns: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Role, &t.Content, &t.ResolvedContent, &t.Intent, &t.Confidence, &t.Escalated, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse into chronological order.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// LastActivity returns the timestamp of the most recent turn, or zero time
// if the session has no history.
func (s *Store) LastActivity(ctx context.Context, sessionID string) (time.Time, error) {
	var ts time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT created_at FROM turns WHERE session_id = ? ORDER BY created_at DESC LIMIT 1`,
		sessionID,
	).Scan(&ts)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("querying last activity: %w", err)
	}
	return ts, nil
}

// Clear removes all turns for a session.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM turns WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("clearing session %s: %w", sessionID, err)
	}
	return nil
}
