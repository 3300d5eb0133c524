package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Persistent store keys shared between the agent and the coordinator daemon.
const (
	KeyAPIKey              = "apiKey"
	KeyVoiceName           = "voiceName"
	KeyInterviewActive     = "isInterviewActive"
	KeyConversationHistory = "conversationHistory"
	KeyInterviewStats      = "interviewStats"
)

// Transcript roles. Entries alternate in practice but the structure does not
// enforce alternation; insertion order is significant because the history is
// replayed verbatim as model context.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Entry is one turn of the persisted conversation.
type Entry struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// Stats summarizes the running interview; reset whenever the history clears.
type Stats struct {
	Turns      int       `json:"turns"`
	StartedAt  time.Time `json:"startedAt"`
	LastTurnAt time.Time `json:"lastTurnAt"`
}

// Store is eventually consistent key-value storage. There are no transactional
// guarantees: the history is a single shared value and concurrent writers
// (e.g. two agents on one database) race last-writer-wins.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// History loads the ordered transcript. A missing key is an empty transcript.
func History(ctx context.Context, s Store) ([]Entry, error) {
	raw, ok, err := s.Get(ctx, KeyConversationHistory)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("decode history: %w", err)
	}
	return entries, nil
}

// SaveHistory persists the whole transcript array.
func SaveHistory(ctx context.Context, s Store, entries []Entry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	return s.Set(ctx, KeyConversationHistory, string(raw))
}

// AppendTurns loads the transcript, appends the given entries in order, and
// persists the whole array back.
func AppendTurns(ctx context.Context, s Store, turns ...Entry) error {
	entries, err := History(ctx, s)
	if err != nil {
		return err
	}
	entries = append(entries, turns...)
	return SaveHistory(ctx, s, entries)
}

// ClearConversation removes the transcript and its stats together.
func ClearConversation(ctx context.Context, s Store) error {
	if err := s.Delete(ctx, KeyConversationHistory); err != nil {
		return err
	}
	return s.Delete(ctx, KeyInterviewStats)
}

// SetInterviewActive persists the session flag that survives reloads.
func SetInterviewActive(ctx context.Context, s Store, active bool) error {
	v := "false"
	if active {
		v = "true"
	}
	return s.Set(ctx, KeyInterviewActive, v)
}

// InterviewActive reads the session flag; absent means inactive.
func InterviewActive(ctx context.Context, s Store) (bool, error) {
	raw, ok, err := s.Get(ctx, KeyInterviewActive)
	if err != nil {
		return false, err
	}
	return ok && raw == "true", nil
}

// LoadStats returns the current interview stats, zero-valued when absent.
func LoadStats(ctx context.Context, s Store) (Stats, error) {
	raw, ok, err := s.Get(ctx, KeyInterviewStats)
	if err != nil || !ok || raw == "" {
		return Stats{}, err
	}
	var st Stats
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return Stats{}, fmt.Errorf("decode stats: %w", err)
	}
	return st, nil
}

// SaveStats persists the interview stats.
func SaveStats(ctx context.Context, s Store, st Stats) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	return s.Set(ctx, KeyInterviewStats, string(raw))
}

// Memory is an in-process Store used in tests and as a fallback when no
// database path is configured.
type Memory struct {
	mu sync.Mutex
	m  map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{m: make(map[string]string)}
}

func (s *Memory) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *Memory) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *Memory) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}
