// Package analytics records student feedback and aggregates conversation
// statistics for the admin dashboard.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/halbot/hal-advisor/internal/db"
)

// Feedback is one thumbs-up/down rating on an answer.
type Feedback struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id,omitempty"`
	UserQuery   string    `json:"user_query"`
	BotResponse string    `json:"bot_response"`
	Rating      int       `json:"rating"` // 1 = helpful, 2 = not helpful
	Comment     string    `json:"comment,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Stats summarizes conversation quality over the full turn log.
type Stats struct {
	TotalTurns         int            `json:"total_turns"`
	TotalSessions      int            `json:"total_sessions"`
	EscalationRate     float64        `json:"escalation_rate"`
	AverageConfidence  float64        `json:"average_confidence"`
	IntentDistribution map[string]int `json:"intent_distribution"`
	HelpfulRatings     int            `json:"helpful_ratings"`
	UnhelpfulRatings   int            `json:"unhelpful_ratings"`
}

// Store persists feedback and computes stats.
type Store struct {
	db *db.DB
}

func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// SaveFeedback records one rating.
func (s *Store) SaveFeedback(ctx context.Context, f Feedback) (Feedback, error) {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback (id, session_id, user_query, bot_response, rating, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.SessionID, f.UserQuery, f.BotResponse, f.Rating, f.Comment, f.CreatedAt,
	)
	if err != nil {
		return Feedback{}, fmt.Errorf("saving feedback: %w", err)
	}
	return f, nil
}

// ListFeedback returns the most recent feedback entries, newest first.
func (s *Store) ListFeedback(ctx context.Context, limit int) ([]Feedback, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, user_query, bot_response, rating, comment, created_at
		FROM feedback ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing feedback: %w", err)
	}
	defer rows.Close()

	var out []Feedback
	for rows.Next() {
		var f Feedback
		if err := rows.Scan(&f.ID, &f.SessionID, &f.UserQuery, &f.BotResponse, &f.Rating, &f.Comment, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning feedback: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Stats aggregates over user turns and feedback. Assistant turns carry no
// intent or confidence and are excluded from the averages.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{IntentDistribution: make(map[string]int)}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT session_id),
		       COALESCE(AVG(escalated), 0), COALESCE(AVG(confidence), 0)
		FROM turns WHERE role = 'user'`,
	).Scan(&st.TotalTurns, &st.TotalSessions, &st.EscalationRate, &st.AverageConfidence)
	if err != nil {
		return nil, fmt.Errorf("aggregating turns: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT intent, COUNT(*) FROM turns
		WHERE role = 'user' AND intent != ''
		GROUP BY intent`)
	if err != nil {
		return nil, fmt.Errorf("aggregating intents: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var label string
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			return nil, fmt.Errorf("scanning intent count: %w", err)
		}
		st.IntentDistribution[label] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	err = s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(rating = 1), 0), COALESCE(SUM(rating = 2), 0) FROM feedback`,
	).Scan(&st.HelpfulRatings, &st.UnhelpfulRatings)
	if err != nil {
		return nil, fmt.Errorf("aggregating feedback: %w", err)
	}

	return st, nil
}
