package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/halbot/hal-advisor/internal/db"
)

func setupManager(t *testing.T, window int, timeout time.Duration) *Manager {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewManager(NewStore(database), window, timeout)
}

func TestAppendAndGetRecent(t *testing.T) {
	m := setupManager(t, 8, time.Hour)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Minute)
	for i, content := range []string{"first", "second", "third"} {
		err := m.store.AppendTurns(ctx, Turn{
			SessionID: "s1",
			Role:      RoleUser,
			Content:   content,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("AppendTurns: %v", err)
		}
	}

	turns, err := m.store.GetRecent(ctx, "s1", 2)
	if err != nil {
		t.Fatalf("GetRecent: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("got %d turns, want 2", len(turns))
	}
	// Oldest first within the window.
	if turns[0].Content != "second" || turns[1].Content != "third" {
		t.Errorf("window = [%s, %s], want [second, third]", turns[0].Content, turns[1].Content)
	}
}

func TestContextCarriesActiveEntity(t *testing.T) {
	m := setupManager(t, 8, time.Hour)
	ctx := context.Background()

	sc, err := m.Context(ctx, "s1")
	if err != nil {
		t.Fatalf("Context: %v", err)
	}
	if sc.ActiveEntity != "" {
		t.Errorf("fresh session has active entity %q", sc.ActiveEntity)
	}

	sc.ActiveEntity = "CMPE 131"
	err = m.Commit(ctx, sc,
		Turn{SessionID: "s1", Role: RoleUser, Content: "What are the prerequisites for CMPE 131?"},
		Turn{SessionID: "s1", Role: RoleAssistant, Content: "CMPE 126 or CS 146."},
	)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	sc2, err := m.Context(ctx, "s1")
	if err != nil {
		t.Fatalf("Context: %v", err)
	}
	if sc2.ActiveEntity != "CMPE 131" {
		t.Errorf("ActiveEntity = %q, want CMPE 131", sc2.ActiveEntity)
	}
	if len(sc2.Turns) != 2 {
		t.Errorf("got %d turns, want 2", len(sc2.Turns))
	}
}

func TestSessionExpiryStartsFresh(t *testing.T) {
	m := setupManager(t, 8, time.Minute)
	ctx := context.Background()

	sc, _ := m.Context(ctx, "s1")
	sc.ActiveEntity = "CMPE 131"
	err := m.Commit(ctx, sc, Turn{
		SessionID: "s1",
		Role:      RoleUser,
		Content:   "old message",
		CreatedAt: time.Now().UTC().Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	sc2, err := m.Context(ctx, "s1")
	if err != nil {
		t.Fatalf("Context: %v", err)
	}
	if len(sc2.Turns) != 0 {
		t.Errorf("expired session returned %d turns, want 0", len(sc2.Turns))
	}
	if sc2.ActiveEntity != "" {
		t.Errorf("expired session kept active entity %q", sc2.ActiveEntity)
	}
}

func TestClear(t *testing.T) {
	m := setupManager(t, 8, time.Hour)
	ctx := context.Background()

	sc, _ := m.Context(ctx, "s1")
	sc.ActiveEntity = "CMPE 131"
	if err := m.Commit(ctx, sc, Turn{SessionID: "s1", Role: RoleUser, Content: "hello"}); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := m.Clear(ctx, "s1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	sc2, _ := m.Context(ctx, "s1")
	if len(sc2.Turns) != 0 || sc2.ActiveEntity != "" {
		t.Errorf("Clear left state behind: %+v", sc2)
	}
}

func TestPerSessionLockSerializes(t *testing.T) {
	m := setupManager(t, 8, time.Hour)

	var inCritical, maxInCritical int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := m.Lock("shared")
			defer unlock()

			mu.Lock()
			inCritical++
			if inCritical > maxInCritical {
				maxInCritical = inCritical
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inCritical--
			mu.Unlock()
		}()
	}
	wg.Wait()

	if maxInCritical != 1 {
		t.Errorf("lock admitted %d goroutines at once", maxInCritical)
	}
}

func TestDifferentSessionsDoNotBlock(t *testing.T) {
	m := setupManager(t, 8, time.Hour)

	unlockA := m.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := m.Lock("b")
		unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on session b blocked behind session a")
	}
}
