package bridge

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/HamzaHassanain/Interviewer-AIi/internal/audio"
)

var (
	// ErrTransport covers both legs of a remote failure: the bridge could not
	// reach the daemon, or the daemon's adapter call failed/rejected.
	ErrTransport = errors.New("bridge transport failure")
	// ErrMalformedResponse means the daemon answered success but the expected
	// payload field was missing.
	ErrMalformedResponse = errors.New("malformed bridge response")
)

// Client is the unprivileged side of the messaging bridge. One request is in
// flight at a time (the session machine guarantees that upstream); the client
// serializes calls anyway so a stray caller cannot interleave frames.
type Client struct {
	url string

	mu   sync.Mutex
	conn *websocket.Conn
}

// NewClient prepares a client for the given ws:// bridge URL. Connect must be
// called before the first request.
func NewClient(url string) *Client {
	return &Client{url: url}
}

// Connect dials the coordinator daemon. Calling Connect on a connected client
// is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		return nil
	}
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, resp, err := dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("%w: dial %s: status %d: %v", ErrTransport, c.url, resp.StatusCode, err)
		}
		return fmt.Errorf("%w: dial %s: %v", ErrTransport, c.url, err)
	}
	c.conn = conn
	return nil
}

// Close tears down the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Call sends one request and waits for its one correlated response. There is
// no timeout beyond the context: a hung remote call leaves the caller (and the
// UI) waiting, which is a known gap, not a guarantee.
func (c *Client) Call(ctx context.Context, req Request) (Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return Response{}, fmt.Errorf("%w: not connected", ErrTransport)
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if deadline, okd := ctx.Deadline(); okd {
		_ = c.conn.SetReadDeadline(deadline)
		defer func() { _ = c.conn.SetReadDeadline(time.Time{}) }()
	}
	if err := c.conn.WriteJSON(req); err != nil {
		return Response{}, fmt.Errorf("%w: write: %v", ErrTransport, err)
	}
	for {
		var resp Response
		if err := c.conn.ReadJSON(&resp); err != nil {
			return Response{}, fmt.Errorf("%w: read: %v", ErrTransport, err)
		}
		if resp.ID != req.ID {
			// Stale frame from an aborted exchange, or the daemon rejecting a
			// frame it could not parse; keep waiting for ours.
			continue
		}
		return resp, nil
	}
}

// Notify is the at-most-once, failure-ignored send used for best-effort
// signals (e.g. telling a possibly-gone peer that the interview stopped). It
// never surfaces transport failures.
func (c *Client) Notify(action Action) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		log.Printf("bridge: notify %s skipped, not connected", action)
		return
	}
	if err := c.conn.WriteJSON(Request{ID: uuid.NewString(), Action: action}); err != nil {
		log.Printf("bridge: notify %s failed: %v", action, err)
	}
}

// StartInterview marks the interview active on the daemon side.
func (c *Client) StartInterview(ctx context.Context) error {
	resp, err := c.Call(ctx, Request{Action: ActionInterviewStart})
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%w: %s", ErrTransport, resp.Error)
	}
	return nil
}

// StopInterview clears the active flag and triggers the transcript archive.
func (c *Client) StopInterview(ctx context.Context) error {
	resp, err := c.Call(ctx, Request{Action: ActionInterviewStop})
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("%w: %s", ErrTransport, resp.Error)
	}
	return nil
}

// NotifyStopped is the fire-and-forget variant of StopInterview.
func (c *Client) NotifyStopped() {
	c.Notify(ActionInterviewStop)
}

// SpeechToText ships a finalized audio blob across the bridge and returns the
// transcribed text.
func (c *Client) SpeechToText(ctx context.Context, blob audio.Blob) (string, error) {
	encoded, err := audio.EncodeTransport(blob.Data)
	if err != nil {
		return "", err
	}
	resp, err := c.Call(ctx, Request{Action: ActionSpeechToText, AudioBlob: encoded, MimeType: blob.MimeType})
	if err != nil {
		return "", err
	}
	if !resp.Success {
		return "", fmt.Errorf("%w: %s", ErrTransport, resp.Error)
	}
	if resp.Text == "" {
		return "", fmt.Errorf("%w: missing text payload", ErrMalformedResponse)
	}
	return resp.Text, nil
}

// SendChat sends one user message; the daemon composes the persisted history
// around it.
func (c *Client) SendChat(ctx context.Context, message string) (string, error) {
	resp, err := c.Call(ctx, Request{Action: ActionSendChatMessage, Message: message})
	if err != nil {
		return "", err
	}
	if !resp.Success {
		return "", fmt.Errorf("%w: %s", ErrTransport, resp.Error)
	}
	if resp.Text == "" {
		return "", fmt.Errorf("%w: missing text payload", ErrMalformedResponse)
	}
	return resp.Text, nil
}

// TextToSpeech returns the raw synthesized PCM for text.
func (c *Client) TextToSpeech(ctx context.Context, text string) ([]byte, error) {
	resp, err := c.Call(ctx, Request{Action: ActionTextToSpeech, Text: text})
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: %s", ErrTransport, resp.Error)
	}
	if resp.AudioData == "" {
		return nil, fmt.Errorf("%w: missing audio payload", ErrMalformedResponse)
	}
	blob, err := audio.DecodeTransport(resp.AudioData, "audio/pcm")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return blob.Data, nil
}
