package stt

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.Handler) *AssemblyAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewAssemblyAIClient("test-key")
	c.BaseURL = srv.URL
	c.PollInterval = 5 * time.Millisecond
	return c
}

func TestTranscribeUploadCreatePoll(t *testing.T) {
	var polls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/upload", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "test-key" {
			t.Errorf("missing auth header")
		}
		if ct := r.Header.Get("Content-Type"); ct != "audio/wav" {
			t.Errorf("expected audio/wav content type, got %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if len(body) != 4 {
			t.Errorf("expected 4 audio bytes, got %d", len(body))
		}
		_ = json.NewEncoder(w).Encode(uploadResponse{UploadURL: "https://cdn.example/upload/abc"})
	})
	mux.HandleFunc("/v2/transcript", func(w http.ResponseWriter, r *http.Request) {
		var tr transcriptRequest
		_ = json.NewDecoder(r.Body).Decode(&tr)
		if tr.AudioURL != "https://cdn.example/upload/abc" {
			t.Errorf("expected upload url forwarded, got %q", tr.AudioURL)
		}
		_ = json.NewEncoder(w).Encode(transcriptResponse{ID: "job-1", Status: "queued"})
	})
	mux.HandleFunc("/v2/transcript/job-1", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&polls, 1) < 3 {
			_ = json.NewEncoder(w).Encode(transcriptResponse{ID: "job-1", Status: "processing"})
			return
		}
		_ = json.NewEncoder(w).Encode(transcriptResponse{ID: "job-1", Status: "completed", Text: " what is two sum "})
	})

	c := newTestClient(t, mux)
	text, err := c.Transcribe(context.Background(), []byte{1, 2, 3, 4}, "audio/wav")
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if text != "what is two sum" {
		t.Fatalf("expected trimmed transcript, got %q", text)
	}
	if atomic.LoadInt32(&polls) < 3 {
		t.Fatalf("expected polling until completed, got %d polls", polls)
	}
}

func TestTranscribeJobError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/upload", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(uploadResponse{UploadURL: "https://cdn.example/u"})
	})
	mux.HandleFunc("/v2/transcript", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(transcriptResponse{ID: "job-2", Status: "queued"})
	})
	mux.HandleFunc("/v2/transcript/job-2", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(transcriptResponse{ID: "job-2", Status: "error", Error: "audio too short"})
	})

	c := newTestClient(t, mux)
	if _, err := c.Transcribe(context.Background(), []byte{1}, "audio/wav"); err == nil {
		t.Fatalf("expected job error surfaced")
	}
}

func TestTranscribeUploadRejected(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	if _, err := c.Transcribe(context.Background(), []byte{1}, "audio/wav"); err == nil {
		t.Fatalf("expected upload rejection")
	}
}

func TestTranscribeContextCancelDuringPoll(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/upload", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(uploadResponse{UploadURL: "https://cdn.example/u"})
	})
	mux.HandleFunc("/v2/transcript", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(transcriptResponse{ID: "job-3", Status: "queued"})
	})
	mux.HandleFunc("/v2/transcript/job-3", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(transcriptResponse{ID: "job-3", Status: "processing"})
	})

	c := newTestClient(t, mux)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := c.Transcribe(ctx, []byte{1}, "audio/wav"); err == nil {
		t.Fatalf("expected context cancellation surfaced")
	}
}

func TestTranscribeValidation(t *testing.T) {
	c := NewAssemblyAIClient("")
	if _, err := c.Transcribe(context.Background(), []byte{1}, "audio/wav"); err == nil {
		t.Fatalf("expected error on missing key")
	}
	c = NewAssemblyAIClient("key")
	if _, err := c.Transcribe(context.Background(), nil, "audio/wav"); err == nil {
		t.Fatalf("expected error on empty audio")
	}
}
