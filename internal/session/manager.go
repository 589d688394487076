package session

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Manager owns conversation state: turn history, the per-session
// active-entity slot, and per-session mutual exclusion. Overlapping
// pipeline runs for the same session are serialized; different sessions
// proceed fully in parallel.
type Manager struct {
	store   *Store
	window  int
	timeout time.Duration

	mu       sync.Mutex
	locks    map[string]*sync.Mutex
	entities map[string]string
}

// NewManager creates a session manager. window bounds the turn history
// handed to the pipeline; timeout is the inactivity period after which a
// session starts fresh.
func NewManager(store *Store, window int, timeout time.Duration) *Manager {
	return &Manager{
		store:    store,
		window:   window,
		timeout:  timeout,
		locks:    make(map[string]*sync.Mutex),
		entities: make(map[string]string),
	}
}

// Lock acquires the mutual-exclusion scope for one full pipeline run.
// The returned function releases it.
func (m *Manager) Lock(sessionID string) func() {
	m.mu.Lock()
	l, ok := m.locks[sessionID]
	if !ok {
		l = &sync.Mutex{}
		m.locks[sessionID] = l
	}
	m.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Context loads the conversation state for a session. An expired session
// is cleared and starts fresh.
func (m *Manager) Context(ctx context.Context, sessionID string) (*Context, error) {
	last, err := m.store.LastActivity(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("checking session activity: %w", err)
	}
	if !last.IsZero() && time.Since(last) > m.timeout {
		if err := m.Clear(ctx, sessionID); err != nil {
			return nil, err
		}
	}

	turns, err := m.store.GetRecent(ctx, sessionID, m.window)
	if err != nil {
		return nil, fmt.Errorf("loading session history: %w", err)
	}

	m.mu.Lock()
	entity := m.entities[sessionID]
	m.mu.Unlock()

	return &Context{
		SessionID:    sessionID,
		Turns:        turns,
		ActiveEntity: entity,
	}, nil
}

// Commit atomically appends the completed turn pair and stores the
// session's active entity for the next turn. Nothing is written if the
// pipeline was aborted mid-run.
func (m *Manager) Commit(ctx context.Context, sc *Context, turns ...Turn) error {
	if err := m.store.AppendTurns(ctx, turns...); err != nil {
		return err
	}

	m.mu.Lock()
	if sc.ActiveEntity == "" {
		delete(m.entities, sc.SessionID)
	} else {
		m.entities[sc.SessionID] = sc.ActiveEntity
	}
	m.mu.Unlock()
	return nil
}

// Clear wipes a session's history and active entity.
func (m *Manager) Clear(ctx context.Context, sessionID string) error {
	if err := m.store.Clear(ctx, sessionID); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.entities, sessionID)
	m.mu.Unlock()
	return nil
}
