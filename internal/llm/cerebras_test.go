package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/HamzaHassanain/Interviewer-AIi/internal/store"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *CerebrasClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewCerebrasClient("test-key", "gpt-oss-120b")
	c.BaseURL = srv.URL
	return c
}

func TestChatMapsRolesAndReturnsReply(t *testing.T) {
	var got chatCompletionsRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(chatCompletionsResponse{
			Choices: []chatChoice{{Message: chatMessage{Role: "assistant", Content: "  What is the complexity?  "}}},
		})
	})

	reply, err := c.Chat(context.Background(), []store.Entry{
		{Role: store.RoleModel, Text: "greeting"},
		{Role: store.RoleUser, Text: "I would use a hash map"},
	})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply != "What is the complexity?" {
		t.Fatalf("expected trimmed reply, got %q", reply)
	}

	if len(got.Messages) != 3 {
		t.Fatalf("expected system + 2 turns, got %v", got.Messages)
	}
	if got.Messages[0].Role != "system" || !strings.Contains(got.Messages[0].Content, "interviewer") {
		t.Fatalf("expected system framing first, got %+v", got.Messages[0])
	}
	if got.Messages[1].Role != "assistant" {
		t.Fatalf("model turn must map to assistant, got %q", got.Messages[1].Role)
	}
	if got.Messages[2].Role != "user" || got.Messages[2].Content != "I would use a hash map" {
		t.Fatalf("user turn must come last, got %+v", got.Messages[2])
	}
	if got.Model != "gpt-oss-120b" {
		t.Fatalf("expected model id forwarded, got %q", got.Model)
	}
}

func TestChatHTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})
	if _, err := c.Chat(context.Background(), []store.Entry{{Role: store.RoleUser, Text: "x"}}); err == nil {
		t.Fatalf("expected error on non-2xx status")
	}
}

func TestChatEmptyChoices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chatCompletionsResponse{})
	})
	if _, err := c.Chat(context.Background(), []store.Entry{{Role: store.RoleUser, Text: "x"}}); err == nil {
		t.Fatalf("expected error on empty choices")
	}
}

func TestChatRequiresKeyAndTurns(t *testing.T) {
	c := NewCerebrasClient("", "")
	if _, err := c.Chat(context.Background(), []store.Entry{{Role: store.RoleUser, Text: "x"}}); err == nil {
		t.Fatalf("expected error on missing key")
	}
	c = NewCerebrasClient("key", "")
	if _, err := c.Chat(context.Background(), nil); err == nil {
		t.Fatalf("expected error on no turns")
	}
}
