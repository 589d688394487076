package knowledge

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes mounts the knowledge-base admin endpoints on the given router.
func RegisterRoutes(r chi.Router, store *Store) {
	r.Get("/api/courses", listCoursesHandler(store))
	r.Put("/api/courses", saveCourseHandler(store))
	r.Delete("/api/courses/{id}", deleteCourseHandler(store))
	r.Get("/api/advisors", listAdvisorsHandler(store))
	r.Put("/api/advisors", saveAdvisorHandler(store))
	r.Get("/api/policies", listPoliciesHandler(store))
	r.Put("/api/policies", savePolicyHandler(store))
	r.Get("/api/deadlines", listDeadlinesHandler(store))
	r.Put("/api/deadlines", saveDeadlineHandler(store))
}

func listCoursesHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		courses, err := store.ListCourses(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if courses == nil {
			courses = []Course{}
		}
		writeJSON(w, http.StatusOK, courses)
	}
}

func saveCourseHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var c Course
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
			return
		}
		if c.Code == "" || c.Name == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "code and name are required"})
			return
		}
		saved, err := store.SaveCourse(r.Context(), c)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, saved)
	}
}

func deleteCourseHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.DeleteCourse(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func listAdvisorsHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		advisors, err := store.ListAdvisors(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if advisors == nil {
			advisors = []Advisor{}
		}
		writeJSON(w, http.StatusOK, advisors)
	}
}

func saveAdvisorHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var a Advisor
		if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
			return
		}
		if a.Name == "" || a.LastNameStart == "" || a.LastNameEnd == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name, last_name_start, and last_name_end are required"})
			return
		}
		saved, err := store.SaveAdvisor(r.Context(), a)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, saved)
	}
}

func listPoliciesHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		policies, err := store.ListPolicies(r.Context(), r.URL.Query().Get("category"))
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if policies == nil {
			policies = []Policy{}
		}
		writeJSON(w, http.StatusOK, policies)
	}
}

func savePolicyHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p Policy
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
			return
		}
		if p.Category == "" || p.Question == "" || p.Answer == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category, question, and answer are required"})
			return
		}
		saved, err := store.SavePolicy(r.Context(), p)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, saved)
	}
}

func listDeadlinesHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deadlines, err := store.ListDeadlines(r.Context())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		if deadlines == nil {
			deadlines = []Deadline{}
		}
		writeJSON(w, http.StatusOK, deadlines)
	}
}

func saveDeadlineHandler(store *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var d Deadline
		if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
			return
		}
		if d.Semester == "" || d.DeadlineType == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "semester and deadline_type are required"})
			return
		}
		saved, err := store.SaveDeadline(r.Context(), d)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, saved)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
