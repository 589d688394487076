package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/halbot/hal-advisor/internal/answer"
	"github.com/halbot/hal-advisor/internal/confidence"
	"github.com/halbot/hal-advisor/internal/config"
	"github.com/halbot/hal-advisor/internal/db"
	"github.com/halbot/hal-advisor/internal/handoff"
	"github.com/halbot/hal-advisor/internal/intent"
	"github.com/halbot/hal-advisor/internal/llm"
	"github.com/halbot/hal-advisor/internal/resolver"
	"github.com/halbot/hal-advisor/internal/retrieval"
	"github.com/halbot/hal-advisor/internal/session"
	"github.com/halbot/hal-advisor/internal/vectordb"
)

// fakeLLM answers every generation call with a fixed string.
type fakeLLM struct {
	response string
	err      error
	calls    int
}

func (f *fakeLLM) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{Content: f.response}, nil
}

func (f *fakeLLM) Name() string { return "fake" }

// fakeVector returns results keyed by substring match on the query.
type fakeVector struct {
	byQuery map[string][]vectordb.SearchResult
	err     error
}

func (f *fakeVector) AddDocuments(ctx context.Context, docs []vectordb.Document) error { return nil }

func (f *fakeVector) Search(ctx context.Context, query string, limit int, filter *vectordb.SearchFilter) ([]vectordb.SearchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	q := strings.ToLower(query)
	for key, results := range f.byQuery {
		if strings.Contains(q, key) {
			return results, nil
		}
	}
	return nil, nil
}

func (f *fakeVector) Reset(ctx context.Context) error               { return nil }
func (f *fakeVector) Persist(ctx context.Context, dir string) error { return nil }
func (f *fakeVector) Load(ctx context.Context, dir string) error    { return nil }
func (f *fakeVector) Count() int                                    { return 0 }

func courseHit(code, name, content string, sim float32) vectordb.SearchResult {
	return vectordb.SearchResult{
		Document: vectordb.Document{
			ID:      "course_" + code,
			Content: content,
			Metadata: vectordb.DocumentMetadata{
				Source: vectordb.SourceCourse,
				Code:   code,
				Name:   name,
			},
		},
		Similarity: sim,
	}
}

// cmpeCorpus gives "cmpe 131" queries a strong, unambiguous result set.
func cmpeCorpus() map[string][]vectordb.SearchResult {
	return map[string][]vectordb.SearchResult{
		"cmpe 131": {
			courseHit("CMPE 131", "Software Engineering I", "CMPE 131: Software Engineering I. Prerequisite: CMPE 126.", 0.92),
			courseHit("CMPE 126", "Algorithms and Data Structures", "CMPE 126: Algorithms and Data Structures. Prerequisite: CMPE 50.", 0.60),
			courseHit("CMPE 135", "Object-Oriented Design", "CMPE 135: Object-Oriented Design. Prerequisite: CMPE 131.", 0.55),
		},
		"cmpe 135": {
			courseHit("CMPE 135", "Object-Oriented Design", "CMPE 135: Object-Oriented Design. Prerequisite: CMPE 131.", 0.90),
			courseHit("CMPE 131", "Software Engineering I", "CMPE 131: Software Engineering I. Prerequisite: CMPE 126.", 0.58),
		},
	}
}

func newTestPipeline(t *testing.T, gen *fakeLLM, vector vectordb.VectorStore) *Pipeline {
	t.Helper()
	cfg := config.DefaultConfig()

	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	scorer, err := confidence.NewScorer(cfg.Confidence, cfg.Retrieval.TopK)
	if err != nil {
		t.Fatalf("NewScorer: %v", err)
	}

	return New(
		intent.NewClassifier(nil, "", cfg.Handoff.HumanRequestPhrases),
		resolver.New(),
		retrieval.NewRanker(vector, cfg.Retrieval),
		scorer,
		handoff.NewDecider(cfg.Handoff, cfg.Confidence),
		answer.NewGenerator(gen, "test-model"),
		session.NewManager(session.NewStore(database), cfg.Session.HistoryWindow, time.Duration(cfg.Session.TimeoutMinutes)*time.Minute),
		cfg.Session.MaxMessageLen,
	)
}

func TestPrerequisiteQuestionAnswersWithCourseCard(t *testing.T) {
	gen := &fakeLLM{response: "CMPE 131 requires CMPE 126 (Algorithms and Data Structures)."}
	p := newTestPipeline(t, gen, &fakeVector{byQuery: cmpeCorpus()})

	res, err := p.HandleTurn(context.Background(), "s1", "What are the prerequisites for CMPE 131?")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}

	if res.IntentLabel != intent.LabelPrerequisite {
		t.Errorf("IntentLabel = %s, want prerequisite_inquiry", res.IntentLabel)
	}
	if res.ResolvedQuery != "What are the prerequisites for CMPE 131?" {
		t.Errorf("ResolvedQuery = %q, want unchanged", res.ResolvedQuery)
	}
	if res.ConfidenceScore < 0.7 {
		t.Errorf("ConfidenceScore = %v, want >= 0.7", res.ConfidenceScore)
	}
	if res.Escalate {
		t.Errorf("Escalate = true (reason %s), want plain answer", res.Reason)
	}
	found := false
	for _, card := range res.CourseCards {
		if card.Code == "CMPE 131" {
			found = true
		}
	}
	if !found {
		t.Errorf("no course card for CMPE 131 in %v", res.CourseCards)
	}
}

func TestFollowUpSwitchesActiveEntity(t *testing.T) {
	gen := &fakeLLM{response: "CMPE 135 requires CMPE 131."}
	p := newTestPipeline(t, gen, &fakeVector{byQuery: cmpeCorpus()})
	ctx := context.Background()

	if _, err := p.HandleTurn(ctx, "s1", "What are the prerequisites for CMPE 131?"); err != nil {
		t.Fatalf("first turn: %v", err)
	}

	res, err := p.HandleTurn(ctx, "s1", "What about CMPE 135?")
	if err != nil {
		t.Fatalf("second turn: %v", err)
	}
	if res.IntentLabel != intent.LabelPrerequisite {
		t.Errorf("IntentLabel = %s, want inherited prerequisite_inquiry", res.IntentLabel)
	}
	if res.ResolvedQuery != "What about CMPE 135?" {
		t.Errorf("ResolvedQuery = %q, want unchanged (explicit code)", res.ResolvedQuery)
	}

	// The next pronoun should now bind to CMPE 135.
	res, err = p.HandleTurn(ctx, "s1", "how many units is it?")
	if err != nil {
		t.Fatalf("third turn: %v", err)
	}
	if !strings.Contains(res.ResolvedQuery, "CMPE 135") {
		t.Errorf("ResolvedQuery = %q, want it resolved to CMPE 135", res.ResolvedQuery)
	}
}

func TestSensitiveTopicSkipsGenerator(t *testing.T) {
	gen := &fakeLLM{response: "should never be used"}
	p := newTestPipeline(t, gen, &fakeVector{byQuery: cmpeCorpus()})

	res, err := p.HandleTurn(context.Background(), "s1", "I'm on academic probation, what do I do?")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if !res.Escalate || res.Reason != handoff.ReasonSensitiveTopic {
		t.Errorf("result = %+v, want sensitive_topic escalation", res)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times on an escalated turn, want 0", gen.calls)
	}
	if !strings.Contains(res.Answer, "advisor") {
		t.Errorf("escalation answer = %q, want handoff message", res.Answer)
	}
}

func TestBarePronounWithEmptyHistoryEscalatesLow(t *testing.T) {
	gen := &fakeLLM{response: "should never be used"}
	p := newTestPipeline(t, gen, &fakeVector{byQuery: map[string][]vectordb.SearchResult{
		"it": {courseHit("CMPE 131", "Software Engineering I", "CMPE 131.", 0.25)},
	}})

	res, err := p.HandleTurn(context.Background(), "s1", "it")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if res.Breakdown.ResolutionScore != 0.3 {
		t.Errorf("ResolutionScore = %v, want 0.3", res.Breakdown.ResolutionScore)
	}
	if res.ResolvedQuery != "it" {
		t.Errorf("ResolvedQuery = %q, want unchanged", res.ResolvedQuery)
	}
	if res.ConfidenceScore >= 0.4 {
		t.Errorf("ConfidenceScore = %v, want < 0.4", res.ConfidenceScore)
	}
	if !res.Escalate || res.Reason != handoff.ReasonLowConfidence {
		t.Errorf("result = %+v, want low_confidence escalation", res)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times, want 0", gen.calls)
	}
}

func TestHumanRequestEscalatesDespitePerfectRetrieval(t *testing.T) {
	gen := &fakeLLM{response: "should never be used"}
	p := newTestPipeline(t, gen, &fakeVector{byQuery: map[string][]vectordb.SearchResult{
		"": cmpeCorpus()["cmpe 131"], // match every query
	}})

	res, err := p.HandleTurn(context.Background(), "s1", "I want to talk to a human")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if !res.Escalate || res.Reason != handoff.ReasonHumanRequested {
		t.Errorf("result = %+v, want user_requested_human escalation", res)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times, want 0", gen.calls)
	}
}

func TestEmptyRetrievalEscalates(t *testing.T) {
	gen := &fakeLLM{response: "should never be used"}
	p := newTestPipeline(t, gen, &fakeVector{})

	res, err := p.HandleTurn(context.Background(), "s1", "tell me about underwater basket weaving at SJSU")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if !res.Escalate || res.Reason != handoff.ReasonNoDocuments {
		t.Errorf("result = %+v, want no_relevant_documents escalation", res)
	}
}

func TestVectorStoreFailureEscalatesInsteadOfErroring(t *testing.T) {
	gen := &fakeLLM{response: "should never be used"}
	p := newTestPipeline(t, gen, &fakeVector{err: errors.New("index offline")})

	res, err := p.HandleTurn(context.Background(), "s1", "What are the prerequisites for CMPE 131?")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if !res.Escalate || res.Reason != handoff.ReasonNoDocuments {
		t.Errorf("result = %+v, want no_relevant_documents escalation on store failure", res)
	}
}

func TestGreetingShortCircuits(t *testing.T) {
	gen := &fakeLLM{response: "should never be used"}
	p := newTestPipeline(t, gen, &fakeVector{})

	res, err := p.HandleTurn(context.Background(), "s1", "hello")
	if err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if res.IntentLabel != intent.LabelGreeting || res.Escalate {
		t.Errorf("result = %+v, want greeting answer", res)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times, want 0", gen.calls)
	}
}

func TestEmptyMessageRejected(t *testing.T) {
	p := newTestPipeline(t, &fakeLLM{}, &fakeVector{})

	_, err := p.HandleTurn(context.Background(), "s1", "   ")
	if !IsContentError(err) {
		t.Errorf("err = %v, want ContentError", err)
	}
}

func TestOversizedMessageRejected(t *testing.T) {
	p := newTestPipeline(t, &fakeLLM{}, &fakeVector{})

	_, err := p.HandleTurn(context.Background(), "s1", strings.Repeat("a", 2001))
	if !IsContentError(err) {
		t.Errorf("err = %v, want ContentError", err)
	}
}

func TestGenerationFailureLeavesNoTurnBehind(t *testing.T) {
	gen := &fakeLLM{err: errors.New("model overloaded")}
	p := newTestPipeline(t, gen, &fakeVector{byQuery: cmpeCorpus()})
	ctx := context.Background()

	if _, err := p.HandleTurn(ctx, "s1", "What are the prerequisites for CMPE 131?"); err == nil {
		t.Fatal("HandleTurn succeeded with a failing generator")
	}

	sc, err := p.sessions.Context(ctx, "s1")
	if err != nil {
		t.Fatalf("Context: %v", err)
	}
	if len(sc.Turns) != 0 {
		t.Errorf("aborted turn left %d turns in history, want 0", len(sc.Turns))
	}
}

func TestTurnsAreRecorded(t *testing.T) {
	gen := &fakeLLM{response: "CMPE 131 requires CMPE 126."}
	p := newTestPipeline(t, gen, &fakeVector{byQuery: cmpeCorpus()})
	ctx := context.Background()

	if _, err := p.HandleTurn(ctx, "s1", "What are the prerequisites for CMPE 131?"); err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}

	sc, err := p.sessions.Context(ctx, "s1")
	if err != nil {
		t.Fatalf("Context: %v", err)
	}
	if len(sc.Turns) != 2 {
		t.Fatalf("got %d turns, want user+assistant pair", len(sc.Turns))
	}
	if sc.Turns[0].Role != session.RoleUser || sc.Turns[0].Intent != string(intent.LabelPrerequisite) {
		t.Errorf("user turn = %+v", sc.Turns[0])
	}
	if sc.Turns[1].Role != session.RoleAssistant {
		t.Errorf("assistant turn = %+v", sc.Turns[1])
	}
}

func TestClearSession(t *testing.T) {
	gen := &fakeLLM{response: "CMPE 131 requires CMPE 126."}
	p := newTestPipeline(t, gen, &fakeVector{byQuery: cmpeCorpus()})
	ctx := context.Background()

	if _, err := p.HandleTurn(ctx, "s1", "What are the prerequisites for CMPE 131?"); err != nil {
		t.Fatalf("HandleTurn: %v", err)
	}
	if err := p.ClearSession(ctx, "s1"); err != nil {
		t.Fatalf("ClearSession: %v", err)
	}

	sc, _ := p.sessions.Context(ctx, "s1")
	if len(sc.Turns) != 0 || sc.ActiveEntity != "" {
		t.Errorf("session not cleared: %+v", sc)
	}
}
