package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/supabase-community/supabase-go"

	"github.com/HamzaHassanain/Interviewer-AIi/internal/store"
)

// Supabase uploads finished interview transcripts to a storage bucket. The
// upload is best-effort: callers log failures and move on.
type Supabase struct {
	client *supabase.Client
	bucket string
}

// NewSupabase constructs the archive client.
func NewSupabase(url, serviceKey, bucket string) (*Supabase, error) {
	client, err := supabase.NewClient(url, serviceKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return &Supabase{client: client, bucket: bucket}, nil
}

// Archive serializes the transcript and uploads it under a timestamped key.
func (s *Supabase) Archive(_ context.Context, entries []store.Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	key := fmt.Sprintf("transcripts/%s-%s.json",
		time.Now().UTC().Format("20060102-150405"), uuid.NewString()[:8])
	if _, err := s.client.Storage.UploadFile(s.bucket, key, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("upload transcript: %w", err)
	}
	return nil
}
