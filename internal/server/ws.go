package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/halbot/hal-advisor/internal/pipeline"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsRequest is the incoming WebSocket message format.
type wsRequest struct {
	Type      string `json:"type"`       // "message" or "clear"
	SessionID string `json:"session_id"` // empty for new sessions
	Content   string `json:"content"`
}

// wsError is the outgoing error frame.
type wsError struct {
	Type      string `json:"type"` // always "error"
	SessionID string `json:"session_id"`
	Content   string `json:"content"`
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("server: websocket read: %v", err)
			}
			return
		}

		var req wsRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			s.sendWSError(conn, "", "invalid message format")
			continue
		}

		switch req.Type {
		case "message":
			s.handleWSMessage(conn, r, req)
		case "clear":
			if err := s.pipe.ClearSession(r.Context(), req.SessionID); err != nil {
				s.sendWSError(conn, req.SessionID, "failed to clear session: "+err.Error())
			}
		default:
			s.sendWSError(conn, req.SessionID, "unknown message type: "+req.Type)
		}
	}
}

func (s *Server) handleWSMessage(conn *websocket.Conn, r *http.Request, req wsRequest) {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	result, err := s.pipe.HandleTurn(r.Context(), sessionID, req.Content)
	if err != nil {
		if pipeline.IsContentError(err) {
			s.sendWSError(conn, sessionID, err.Error())
			return
		}
		log.Printf("server: websocket turn failed: %v", err)
		s.sendWSError(conn, sessionID, "failed to process message")
		return
	}

	resp := struct {
		Type string `json:"type"` // always "response"
		chatResponse
	}{
		Type:         "response",
		chatResponse: s.buildChatResponse(r, sessionID, req.Content, result),
	}
	if err := conn.WriteJSON(resp); err != nil {
		log.Printf("server: websocket write: %v", err)
	}
}

func (s *Server) sendWSError(conn *websocket.Conn, sessionID, message string) {
	if err := conn.WriteJSON(wsError{Type: "error", SessionID: sessionID, Content: message}); err != nil {
		log.Printf("server: websocket write error: %v", err)
	}
}
