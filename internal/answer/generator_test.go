package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/halbot/hal-advisor/internal/handoff"
	"github.com/halbot/hal-advisor/internal/llm"
	"github.com/halbot/hal-advisor/internal/vectordb"
)

type fakeProvider struct {
	response   string
	err        error
	lastPrompt string
}

func (f *fakeProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	for _, m := range req.Messages {
		if m.Role == llm.RoleUser {
			f.lastPrompt = m.Content
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{Content: f.response}, nil
}

func (f *fakeProvider) Name() string { return "fake" }

func courseDoc(code, name, content string) vectordb.SearchResult {
	return vectordb.SearchResult{
		Document: vectordb.Document{
			ID:      "course_" + code,
			Content: content,
			Metadata: vectordb.DocumentMetadata{
				Source: vectordb.SourceCourse,
				Code:   code,
				Name:   name,
				URL:    "https://catalog.example.edu/" + code,
			},
		},
		Similarity: 0.9,
	}
}

func TestPromptContainsOnlyQueryAndDocuments(t *testing.T) {
	p := &fakeProvider{response: "CMPE 131 requires CMPE 126."}
	g := NewGenerator(p, "test-model")

	docs := []vectordb.SearchResult{
		courseDoc("CMPE 131", "Software Engineering I", "CMPE 131: Software Engineering I. Prerequisite: CMPE 126."),
	}
	_, err := g.Generate(context.Background(), "What are the prerequisites for CMPE 131?", docs, handoff.Decision{State: handoff.StateAnswer})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if !strings.Contains(p.lastPrompt, "What are the prerequisites for CMPE 131?") {
		t.Error("prompt missing the resolved question")
	}
	if !strings.Contains(p.lastPrompt, "Prerequisite: CMPE 126.") {
		t.Error("prompt missing retrieved document content")
	}
}

func TestCourseCardExtraction(t *testing.T) {
	p := &fakeProvider{response: "To take CMPE 131 you first need CMPE 126. CMPE 999 is unrelated."}
	g := NewGenerator(p, "test-model")

	docs := []vectordb.SearchResult{
		courseDoc("CMPE 131", "Software Engineering I", "CMPE 131: Software Engineering I. Prerequisite: CMPE 126."),
		courseDoc("CMPE 126", "Algorithms and Data Structures", "CMPE 126: Algorithms and Data Structures. Prerequisite: CMPE 50."),
	}
	res, err := g.Generate(context.Background(), "prereqs for CMPE 131", docs, handoff.Decision{State: handoff.StateAnswer})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(res.CourseCards) != 2 {
		t.Fatalf("got %d cards, want 2 (CMPE 999 was not retrieved)", len(res.CourseCards))
	}
	if res.CourseCards[0].Code != "CMPE 131" || res.CourseCards[1].Code != "CMPE 126" {
		t.Errorf("cards = %v, want CMPE 131 then CMPE 126", res.CourseCards)
	}
	if res.CourseCards[0].Name != "Software Engineering I" {
		t.Errorf("card name = %q", res.CourseCards[0].Name)
	}
}

func TestCardOnlyForRetrievedCourses(t *testing.T) {
	cards := ExtractCourseCards("You should take CS 146.", nil)
	if len(cards) != 0 {
		t.Errorf("got %d cards with no retrieved docs, want 0", len(cards))
	}
}

func TestCaveatFooterAppended(t *testing.T) {
	p := &fakeProvider{response: "Probably 17 units."}
	g := NewGenerator(p, "test-model")

	res, err := g.Generate(context.Background(), "max units?", nil, handoff.Decision{State: handoff.StateCaveat})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.Contains(res.Text, "moderately confident") {
		t.Errorf("caveat answer missing footer: %q", res.Text)
	}
}

func TestPlainAnswerHasNoFooter(t *testing.T) {
	p := &fakeProvider{response: "17 units."}
	g := NewGenerator(p, "test-model")

	res, _ := g.Generate(context.Background(), "max units?", nil, handoff.Decision{State: handoff.StateAnswer})
	if strings.Contains(res.Text, "moderately confident") {
		t.Errorf("plain answer got a caveat footer: %q", res.Text)
	}
}

func TestProviderErrorSurfaces(t *testing.T) {
	p := &fakeProvider{err: errors.New("model overloaded")}
	g := NewGenerator(p, "test-model")

	if _, err := g.Generate(context.Background(), "q", nil, handoff.Decision{State: handoff.StateAnswer}); err == nil {
		t.Fatal("Generate returned nil error, want failure")
	}
}

func TestFirstSentence(t *testing.T) {
	got := firstSentence("CMPE 131: Software Engineering I. Prerequisite: CMPE 126.")
	want := "CMPE 131: Software Engineering I."
	if got != want {
		t.Errorf("firstSentence = %q, want %q", got, want)
	}
}
