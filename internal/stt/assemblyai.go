package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// AssemblyAIClient transcribes finalized audio blobs through the AssemblyAI
// prerecorded API: upload the bytes, create a transcript job, poll until done.
type AssemblyAIClient struct {
	HTTPClient *http.Client
	APIKey     string
	BaseURL    string

	// PollInterval between job status checks.
	PollInterval time.Duration
}

type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type transcriptRequest struct {
	AudioURL string `json:"audio_url"`
}

type transcriptResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Text   string `json:"text"`
	Error  string `json:"error"`
}

// NewAssemblyAIClient constructs a transcription client.
func NewAssemblyAIClient(apiKey string) *AssemblyAIClient {
	return &AssemblyAIClient{
		HTTPClient:   &http.Client{Timeout: 60 * time.Second},
		APIKey:       apiKey,
		BaseURL:      "https://api.assemblyai.com",
		PollInterval: time.Second,
	}
}

// Transcribe uploads the audio and blocks until the transcript job completes
// or ctx ends. mimeType travels as the upload content type; the service
// detects the container itself.
func (c *AssemblyAIClient) Transcribe(ctx context.Context, audioBytes []byte, mimeType string) (string, error) {
	if c.APIKey == "" {
		return "", fmt.Errorf("assemblyai api key missing")
	}
	if len(audioBytes) == 0 {
		return "", fmt.Errorf("assemblyai: empty audio")
	}

	uploadURL, err := c.upload(ctx, audioBytes, mimeType)
	if err != nil {
		return "", err
	}
	id, err := c.createTranscript(ctx, uploadURL)
	if err != nil {
		return "", err
	}
	return c.awaitTranscript(ctx, id)
}

func (c *AssemblyAIClient) upload(ctx context.Context, audioBytes []byte, mimeType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v2/upload", bytes.NewReader(audioBytes))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", c.APIKey)
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", mimeType)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("assemblyai upload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("assemblyai upload: status=%d body=%s", resp.StatusCode, string(b))
	}
	var ur uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return "", fmt.Errorf("assemblyai upload: decode: %w", err)
	}
	if ur.UploadURL == "" {
		return "", fmt.Errorf("assemblyai upload: missing upload_url")
	}
	return ur.UploadURL, nil
}

func (c *AssemblyAIClient) createTranscript(ctx context.Context, audioURL string) (string, error) {
	body, _ := json.Marshal(transcriptRequest{AudioURL: audioURL})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v2/transcript", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("assemblyai create transcript: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("assemblyai create transcript: status=%d body=%s", resp.StatusCode, string(b))
	}
	var tr transcriptResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("assemblyai create transcript: decode: %w", err)
	}
	if tr.ID == "" {
		return "", fmt.Errorf("assemblyai create transcript: missing id")
	}
	return tr.ID, nil
}

func (c *AssemblyAIClient) awaitTranscript(ctx context.Context, id string) (string, error) {
	interval := c.PollInterval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
			tr, err := c.pollTranscript(ctx, id)
			if err != nil {
				return "", err
			}
			switch tr.Status {
			case "completed":
				return strings.TrimSpace(tr.Text), nil
			case "error":
				return "", fmt.Errorf("assemblyai transcript failed: %s", tr.Error)
			}
			// queued / processing: keep polling
		}
	}
}

func (c *AssemblyAIClient) pollTranscript(ctx context.Context, id string) (transcriptResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/v2/transcript/"+id, nil)
	if err != nil {
		return transcriptResponse{}, err
	}
	req.Header.Set("Authorization", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return transcriptResponse{}, fmt.Errorf("assemblyai poll: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return transcriptResponse{}, fmt.Errorf("assemblyai poll: status=%d body=%s", resp.StatusCode, string(b))
	}
	var tr transcriptResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return transcriptResponse{}, fmt.Errorf("assemblyai poll: decode: %w", err)
	}
	return tr, nil
}
