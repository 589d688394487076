package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/halbot/hal-advisor/internal/db"
	"github.com/halbot/hal-advisor/internal/vectordb"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestSaveAndGetCourse(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	saved, err := store.SaveCourse(ctx, Course{
		Code:          "CMPE 131",
		Name:          "Software Engineering I",
		Prerequisites: "CMPE 126 or CS 146 with a grade of C- or better",
		Units:         3,
	})
	if err != nil {
		t.Fatalf("SaveCourse: %v", err)
	}
	if saved.ID == "" {
		t.Error("ID should be auto-generated")
	}

	got, err := store.GetCourse(ctx, "CMPE 131")
	if err != nil {
		t.Fatalf("GetCourse: %v", err)
	}
	if got == nil {
		t.Fatal("GetCourse returned nil")
	}
	if got.Name != "Software Engineering I" {
		t.Errorf("Name = %q", got.Name)
	}
}

func TestSaveCourseUpsertsByCode(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if _, err := store.SaveCourse(ctx, Course{Code: "CMPE 131", Name: "Old Name", Units: 3}); err != nil {
		t.Fatalf("SaveCourse: %v", err)
	}
	if _, err := store.SaveCourse(ctx, Course{Code: "CMPE 131", Name: "New Name", Units: 3}); err != nil {
		t.Fatalf("SaveCourse upsert: %v", err)
	}

	courses, err := store.ListCourses(ctx)
	if err != nil {
		t.Fatalf("ListCourses: %v", err)
	}
	if len(courses) != 1 {
		t.Fatalf("got %d courses, want 1", len(courses))
	}
	if courses[0].Name != "New Name" {
		t.Errorf("Name = %q, want New Name", courses[0].Name)
	}
}

func TestGetCourseNotFound(t *testing.T) {
	store := setupTestStore(t)
	got, err := store.GetCourse(context.Background(), "CS 999")
	if err != nil {
		t.Fatalf("GetCourse: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing course, got %+v", got)
	}
}

func TestListPoliciesByCategory(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for _, p := range []Policy{
		{Category: "enrollment", Question: "How do I add a class?", Answer: "Use the portal."},
		{Category: "refunds", Question: "When do I get a refund?", Answer: "Before the drop deadline."},
	} {
		if _, err := store.SavePolicy(ctx, p); err != nil {
			t.Fatalf("SavePolicy: %v", err)
		}
	}

	got, err := store.ListPolicies(ctx, "refunds")
	if err != nil {
		t.Fatalf("ListPolicies: %v", err)
	}
	if len(got) != 1 || got[0].Category != "refunds" {
		t.Errorf("filtered list = %+v", got)
	}
}

func TestCourseDocument(t *testing.T) {
	c := Course{
		ID:            "1",
		Code:          "CMPE 131",
		Name:          "Software Engineering I",
		Prerequisites: "CMPE 126",
		Units:         3,
	}
	doc := c.Document()

	if doc.ID != "course_1" {
		t.Errorf("ID = %q", doc.ID)
	}
	if doc.Metadata.Source != vectordb.SourceCourse {
		t.Errorf("Source = %q", doc.Metadata.Source)
	}
	if doc.Metadata.Code != "CMPE 131" {
		t.Errorf("Code = %q", doc.Metadata.Code)
	}
	if !strings.Contains(doc.Content, "Prerequisites: CMPE 126") {
		t.Errorf("content missing prerequisites: %q", doc.Content)
	}
}

func TestDeadlineDocument(t *testing.T) {
	d := Deadline{
		ID:           "7",
		Semester:     "Spring 2026",
		DeadlineType: "drop_classes",
		DueDate:      time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		Description:  "Last day to drop without a W grade",
	}
	doc := d.Document()

	if doc.Metadata.Source != vectordb.SourceDeadline {
		t.Errorf("Source = %q", doc.Metadata.Source)
	}
	if !strings.Contains(doc.Content, "February 10, 2026") {
		t.Errorf("content missing formatted date: %q", doc.Content)
	}
}

// fakeVector records added documents without embedding anything.
type fakeVector struct {
	docs  []vectordb.Document
	reset bool
}

func (f *fakeVector) AddDocuments(_ context.Context, docs []vectordb.Document) error {
	f.docs = append(f.docs, docs...)
	return nil
}
func (f *fakeVector) Search(context.Context, string, int, *vectordb.SearchFilter) ([]vectordb.SearchResult, error) {
	return nil, nil
}
func (f *fakeVector) Reset(context.Context) error { f.reset = true; f.docs = nil; return nil }
func (f *fakeVector) Persist(context.Context, string) error { return nil }
func (f *fakeVector) Load(context.Context, string) error    { return nil }
func (f *fakeVector) Count() int                            { return len(f.docs) }

func TestIndexAll(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if _, err := store.SaveCourse(ctx, Course{Code: "CMPE 131", Name: "Software Engineering I", Units: 3}); err != nil {
		t.Fatalf("SaveCourse: %v", err)
	}
	if _, err := store.SaveAdvisor(ctx, Advisor{Name: "Jane Rivera", LastNameStart: "A", LastNameEnd: "L"}); err != nil {
		t.Fatalf("SaveAdvisor: %v", err)
	}
	if _, err := store.SavePolicy(ctx, Policy{Category: "enrollment", Question: "q", Answer: "a"}); err != nil {
		t.Fatalf("SavePolicy: %v", err)
	}

	vec := &fakeVector{}
	var ticks int
	n, err := NewIndexer(store, vec).IndexAll(ctx, func() { ticks++ })
	if err != nil {
		t.Fatalf("IndexAll: %v", err)
	}
	if n != 3 || len(vec.docs) != 3 {
		t.Errorf("indexed %d docs, store has %d, want 3", n, len(vec.docs))
	}
	if !vec.reset {
		t.Error("IndexAll should reset the vector store first")
	}
	if ticks != 3 {
		t.Errorf("progress ticks = %d, want 3", ticks)
	}
}

func TestCourseRoutes(t *testing.T) {
	store := setupTestStore(t)
	r := chi.NewRouter()
	RegisterRoutes(r, store)

	body, _ := json.Marshal(Course{Code: "CMPE 131", Name: "Software Engineering I", Units: 3})
	req := httptest.NewRequest(http.MethodPut, "/api/courses", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT /api/courses = %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/courses", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/courses = %d", rec.Code)
	}
	var courses []Course
	if err := json.Unmarshal(rec.Body.Bytes(), &courses); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(courses) != 1 || courses[0].Code != "CMPE 131" {
		t.Errorf("courses = %+v", courses)
	}
}

func TestSaveCourseValidation(t *testing.T) {
	store := setupTestStore(t)
	r := chi.NewRouter()
	RegisterRoutes(r, store)

	req := httptest.NewRequest(http.MethodPut, "/api/courses", strings.NewReader(`{"name":"missing code"}`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
