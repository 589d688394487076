package server

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/halbot/hal-advisor/internal/intent"
	"github.com/halbot/hal-advisor/internal/pipeline"
	"github.com/halbot/hal-advisor/internal/quickreplies"
)

// markdown renders answers to HTML for the chat widget.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// chatRequest is the POST /api/chat body.
type chatRequest struct {
	SessionID string `json:"session_id"` // empty for new sessions
	Message   string `json:"message"`
}

// chatResponse wraps the pipeline result for the web client.
type chatResponse struct {
	SessionID string `json:"session_id"`
	*pipeline.TurnResult
	AnswerHTML   string   `json:"answer_html"`
	QuickReplies []string `json:"quick_replies,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	result, err := s.pipe.HandleTurn(r.Context(), req.SessionID, req.Message)
	if err != nil {
		if pipeline.IsContentError(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		log.Printf("server: chat turn failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to process message"})
		return
	}

	writeJSON(w, http.StatusOK, s.buildChatResponse(r, req.SessionID, req.Message, result))
}

func (s *Server) buildChatResponse(r *http.Request, sessionID, message string, result *pipeline.TurnResult) chatResponse {
	return chatResponse{
		SessionID:    sessionID,
		TurnResult:   result,
		AnswerHTML:   renderHTML(result.Answer),
		QuickReplies: s.suggester.Suggest(r.Context(), result.IntentLabel, message, result.Answer),
	}
}

func (s *Server) handleQuickReplies(w http.ResponseWriter, r *http.Request) {
	label := intent.Label(r.URL.Query().Get("intent"))
	if label == "" {
		label = intent.LabelGreeting
	}
	writeJSON(w, http.StatusOK, map[string][]string{"quick_replies": quickreplies.Defaults(label)})
}

func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.pipe.ClearSession(r.Context(), id); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// renderHTML converts a markdown answer to HTML. On a render failure the
// client falls back to the plain-text answer.
func renderHTML(md string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		log.Printf("server: markdown render: %v", err)
		return ""
	}
	return buf.String()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
