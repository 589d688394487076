package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/halbot/hal-advisor/internal/db"
	"github.com/halbot/hal-advisor/internal/session"
)

func setupStore(t *testing.T) (*Store, *session.Store) {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database), session.NewStore(database)
}

func seedTurns(t *testing.T, turns *session.Store) {
	t.Helper()
	ctx := context.Background()
	err := turns.AppendTurns(ctx,
		session.Turn{SessionID: "s1", Role: session.RoleUser, Content: "q1", Intent: "prerequisite_inquiry", Confidence: 0.9},
		session.Turn{SessionID: "s1", Role: session.RoleAssistant, Content: "a1"},
		session.Turn{SessionID: "s1", Role: session.RoleUser, Content: "q2", Intent: "prerequisite_inquiry", Confidence: 0.7},
		session.Turn{SessionID: "s1", Role: session.RoleAssistant, Content: "a2"},
		session.Turn{SessionID: "s2", Role: session.RoleUser, Content: "q3", Intent: "policy_inquiry", Confidence: 0.2, Escalated: true},
		session.Turn{SessionID: "s2", Role: session.RoleAssistant, Content: "a3"},
	)
	if err != nil {
		t.Fatalf("AppendTurns: %v", err)
	}
}

func TestStats(t *testing.T) {
	store, turns := setupStore(t)
	seedTurns(t, turns)

	if _, err := store.SaveFeedback(context.Background(), Feedback{UserQuery: "q1", BotResponse: "a1", Rating: 1}); err != nil {
		t.Fatalf("SaveFeedback: %v", err)
	}
	if _, err := store.SaveFeedback(context.Background(), Feedback{UserQuery: "q3", BotResponse: "a3", Rating: 2}); err != nil {
		t.Fatalf("SaveFeedback: %v", err)
	}

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}

	if stats.TotalTurns != 3 {
		t.Errorf("TotalTurns = %d, want 3 (user turns only)", stats.TotalTurns)
	}
	if stats.TotalSessions != 2 {
		t.Errorf("TotalSessions = %d, want 2", stats.TotalSessions)
	}
	if math.Abs(stats.EscalationRate-1.0/3.0) > 1e-9 {
		t.Errorf("EscalationRate = %v, want 1/3", stats.EscalationRate)
	}
	if math.Abs(stats.AverageConfidence-0.6) > 1e-9 {
		t.Errorf("AverageConfidence = %v, want 0.6", stats.AverageConfidence)
	}
	if stats.IntentDistribution["prerequisite_inquiry"] != 2 || stats.IntentDistribution["policy_inquiry"] != 1 {
		t.Errorf("IntentDistribution = %v", stats.IntentDistribution)
	}
	if stats.HelpfulRatings != 1 || stats.UnhelpfulRatings != 1 {
		t.Errorf("ratings = %d/%d, want 1/1", stats.HelpfulRatings, stats.UnhelpfulRatings)
	}
}

func TestStatsEmptyDatabase(t *testing.T) {
	store, _ := setupStore(t)

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalTurns != 0 || stats.EscalationRate != 0 || stats.AverageConfidence != 0 {
		t.Errorf("empty stats = %+v", stats)
	}
}

func TestListFeedbackNewestFirst(t *testing.T) {
	store, _ := setupStore(t)
	ctx := context.Background()

	for _, q := range []string{"first", "second"} {
		if _, err := store.SaveFeedback(ctx, Feedback{UserQuery: q, BotResponse: "a", Rating: 1}); err != nil {
			t.Fatalf("SaveFeedback: %v", err)
		}
	}

	entries, err := store.ListFeedback(ctx, 10)
	if err != nil {
		t.Fatalf("ListFeedback: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
}

func TestFeedbackRoute(t *testing.T) {
	store, _ := setupStore(t)
	r := chi.NewRouter()
	RegisterRoutes(r, store)

	body, _ := json.Marshal(Feedback{UserQuery: "q", BotResponse: "a", Rating: 1, Comment: "great"})
	req := httptest.NewRequest(http.MethodPost, "/api/feedback", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var saved Feedback
	if err := json.Unmarshal(rec.Body.Bytes(), &saved); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if saved.ID == "" {
		t.Error("saved feedback has no ID")
	}
}

func TestFeedbackRouteRejectsBadRating(t *testing.T) {
	store, _ := setupStore(t)
	r := chi.NewRouter()
	RegisterRoutes(r, store)

	body, _ := json.Marshal(Feedback{UserQuery: "q", BotResponse: "a", Rating: 5})
	req := httptest.NewRequest(http.MethodPost, "/api/feedback", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestStatsRoute(t *testing.T) {
	store, turns := setupStore(t)
	seedTurns(t, turns)
	r := chi.NewRouter()
	RegisterRoutes(r, store)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var stats Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decoding stats: %v", err)
	}
	if stats.TotalTurns != 3 {
		t.Errorf("TotalTurns = %d, want 3", stats.TotalTurns)
	}
}
