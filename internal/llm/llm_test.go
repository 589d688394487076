package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/halbot/hal-advisor/internal/config"
)

func TestNewProviderUnsupported(t *testing.T) {
	if _, err := NewProvider("bard", "model"); err == nil {
		t.Error("expected error for unsupported provider")
	}
}

func TestNewProviderOllamaNeedsNoKey(t *testing.T) {
	p, err := NewProvider(config.ProviderOllama, "llama3.1:8b")
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if p.Name() != "ollama" {
		t.Errorf("Name = %q, want ollama", p.Name())
	}
}

func TestNewProviderMissingKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewProvider(config.ProviderOpenAI, "gpt-4o"); err == nil {
		t.Error("expected error when OPENAI_API_KEY is unset")
	}
}

func TestOllamaComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %q, want /api/chat", r.URL.Path)
		}
		var req ollamaChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Stream {
			t.Error("stream should be disabled")
		}
		if req.Format != "json" {
			t.Errorf("format = %q, want json", req.Format)
		}
		json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: ollamaMessage{Role: "assistant", Content: `{"ok":true}`},
			Model:   req.Model,
			Done:    true,
		})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3.1:8b")
	resp, err := p.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
		JSONMode: true,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != `{"ok":true}` {
		t.Errorf("Content = %q", resp.Content)
	}
}

func TestOllamaCompleteServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "nope")
	if _, err := p.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	}); err == nil {
		t.Error("expected error on non-200 response")
	}
}
