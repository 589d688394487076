package session

import "time"

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single message in a conversation. Turns are immutable once
// appended and owned exclusively by the session they belong to.
type Turn struct {
	ID              string    `json:"id"`
	SessionID       string    `json:"session_id"`
	Role            Role      `json:"role"`
	Content         string    `json:"content"`
	ResolvedContent string    `json:"resolved_content,omitempty"`
	Intent          string    `json:"intent,omitempty"`
	Confidence      float64   `json:"confidence,omitempty"`
	Escalated       bool      `json:"escalated,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Context is the conversation state handed to the classifier and resolver:
// a bounded window of recent turns plus the active-entity slot used for
// pronoun resolution. The active entity is written only by the context
// resolver; nothing else may touch it.
type Context struct {
	SessionID    string
	Turns        []Turn
	ActiveEntity string
}

// LastIntent returns the intent label recorded on the most recent user
// turn, or "" for a fresh session. Follow-up questions inherit it.
func (c *Context) LastIntent() string {
	for i := len(c.Turns) - 1; i >= 0; i-- {
		if c.Turns[i].Role == RoleUser && c.Turns[i].Intent != "" {
			return c.Turns[i].Intent
		}
	}
	return ""
}
