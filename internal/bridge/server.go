package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/HamzaHassanain/Interviewer-AIi/internal/audio"
	"github.com/HamzaHassanain/Interviewer-AIi/internal/store"
)

// Adapter is the external service capability contract. The bridge never
// builds vendor-specific request bodies itself; these three calls are all it
// needs.
type Adapter interface {
	Transcribe(ctx context.Context, audioBytes []byte, mimeType string) (string, error)
	Chat(ctx context.Context, turns []store.Entry) (string, error)
	Synthesize(ctx context.Context, text, voiceHint string) ([]byte, error)
}

// Archiver receives the finished transcript when an interview stops. Upload
// failures are logged, never surfaced.
type Archiver interface {
	Archive(ctx context.Context, entries []store.Entry) error
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  65536,
	WriteBufferSize: 65536,
	CheckOrigin: func(r *http.Request) bool {
		// Bridge binds to loopback; the daemon is not exposed publicly.
		return true
	},
}

// Server is the privileged side of the messaging bridge. It holds the
// adapter (and through it the API credentials) and the persistent store, and
// answers every request with exactly one response.
type Server struct {
	adapter      Adapter
	store        store.Store
	archiver     Archiver // optional
	defaultVoice string
}

// NewServer constructs a bridge server. archiver may be nil.
func NewServer(adapter Adapter, st store.Store, archiver Archiver, defaultVoice string) *Server {
	return &Server{adapter: adapter, store: st, archiver: archiver, defaultVoice: defaultVoice}
}

// ServeWebSocket upgrades the connection and relays request/response frames
// until the peer goes away.
func (s *Server) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("bridge: ws upgrade error: %v", err)
		return
	}
	defer func() { _ = conn.Close() }()

	for {
		mt, data, rerr := conn.ReadMessage()
		if rerr != nil {
			if !websocket.IsCloseError(rerr, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("bridge: ws read error: %v", rerr)
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		var req Request
		if jerr := json.Unmarshal(data, &req); jerr != nil {
			_ = conn.WriteJSON(fail("", fmt.Sprintf("malformed request: %v", jerr)))
			continue
		}
		resp := s.Dispatch(r.Context(), req)
		if werr := conn.WriteJSON(resp); werr != nil {
			log.Printf("bridge: ws write error: %v", werr)
			return
		}
	}
}

// Dispatch routes a single request through the closed action set and returns
// its one response.
func (s *Server) Dispatch(ctx context.Context, req Request) Response {
	switch req.Action {
	case ActionInterviewStart:
		return s.interviewStart(ctx, req)
	case ActionInterviewStop:
		return s.interviewStop(ctx, req)
	case ActionSpeechToText:
		return s.speechToText(ctx, req)
	case ActionTextToSpeech:
		return s.textToSpeech(ctx, req)
	case ActionSendChatMessage:
		return s.sendChatMessage(ctx, req)
	default:
		return fail(req.ID, fmt.Sprintf("unknown action %q", string(req.Action)))
	}
}

func (s *Server) interviewStart(ctx context.Context, req Request) Response {
	if err := store.SetInterviewActive(ctx, s.store, true); err != nil {
		return failErr(req.ID, err)
	}
	log.Printf("bridge: interview started")
	return ok(req.ID)
}

func (s *Server) interviewStop(ctx context.Context, req Request) Response {
	if err := store.SetInterviewActive(ctx, s.store, false); err != nil {
		return failErr(req.ID, err)
	}
	if s.archiver != nil {
		entries, err := store.History(ctx, s.store)
		if err != nil {
			log.Printf("bridge: load history for archive: %v", err)
		} else if len(entries) > 0 {
			if err := s.archiver.Archive(ctx, entries); err != nil {
				log.Printf("bridge: transcript archive failed: %v", err)
			}
		}
	}
	log.Printf("bridge: interview stopped")
	return ok(req.ID)
}

func (s *Server) speechToText(ctx context.Context, req Request) Response {
	blob, err := audio.DecodeTransport(req.AudioBlob, req.MimeType)
	if err != nil {
		return failErr(req.ID, err)
	}
	text, err := s.adapter.Transcribe(ctx, blob.Data, blob.MimeType)
	if err != nil {
		return failErr(req.ID, fmt.Errorf("transcription failed: %w", err))
	}
	if strings.TrimSpace(text) == "" {
		return fail(req.ID, "transcription returned no text")
	}
	return okText(req.ID, text)
}

func (s *Server) textToSpeech(ctx context.Context, req Request) Response {
	if strings.TrimSpace(req.Text) == "" {
		return fail(req.ID, "textToSpeech requires text")
	}
	voice := s.defaultVoice
	if v, found, err := s.store.Get(ctx, store.KeyVoiceName); err == nil && found && v != "" {
		voice = v
	}
	pcm, err := s.adapter.Synthesize(ctx, req.Text, voice)
	if err != nil {
		return failErr(req.ID, fmt.Errorf("synthesis failed: %w", err))
	}
	if len(pcm) == 0 {
		return fail(req.ID, "synthesis returned no audio")
	}
	encoded, err := audio.EncodeTransport(pcm)
	if err != nil {
		return failErr(req.ID, err)
	}
	return okAudio(req.ID, encoded)
}

func (s *Server) sendChatMessage(ctx context.Context, req Request) Response {
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return fail(req.ID, "sendChatMessage requires a message")
	}
	// Replay the persisted transcript as model context. The in-flight user
	// message rides along but is persisted only by the agent after success.
	turns, err := store.History(ctx, s.store)
	if err != nil {
		return failErr(req.ID, err)
	}
	turns = append(turns, store.Entry{Role: store.RoleUser, Text: msg})
	reply, err := s.adapter.Chat(ctx, turns)
	if err != nil {
		return failErr(req.ID, fmt.Errorf("chat failed: %w", err))
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return fail(req.ID, "chat returned no reply")
	}
	return okText(req.ID, reply)
}
