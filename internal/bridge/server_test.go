package bridge

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/HamzaHassanain/Interviewer-AIi/internal/store"
)

type fakeAdapter struct {
	transcript    string
	transcribeErr error
	lastMime      string
	lastAudio     []byte

	reply     string
	chatErr   error
	chatTurns []store.Entry

	pcm       []byte
	synthErr  error
	lastVoice string
	lastText  string
}

func (a *fakeAdapter) Transcribe(_ context.Context, audioBytes []byte, mimeType string) (string, error) {
	a.lastAudio = audioBytes
	a.lastMime = mimeType
	return a.transcript, a.transcribeErr
}

func (a *fakeAdapter) Chat(_ context.Context, turns []store.Entry) (string, error) {
	a.chatTurns = turns
	return a.reply, a.chatErr
}

func (a *fakeAdapter) Synthesize(_ context.Context, text, voiceHint string) ([]byte, error) {
	a.lastText = text
	a.lastVoice = voiceHint
	return a.pcm, a.synthErr
}

type fakeArchiver struct {
	entries []store.Entry
	err     error
	calls   int
}

func (a *fakeArchiver) Archive(_ context.Context, entries []store.Entry) error {
	a.calls++
	a.entries = entries
	return a.err
}

func TestDispatchUnknownAction(t *testing.T) {
	s := NewServer(&fakeAdapter{}, store.NewMemory(), nil, "aura-2-thalia-en")
	resp := s.Dispatch(context.Background(), Request{ID: "r1", Action: "makeCoffee"})
	if resp.Success {
		t.Fatalf("unknown action must fail")
	}
	if resp.ID != "r1" {
		t.Fatalf("response must echo the request id, got %q", resp.ID)
	}
	if resp.Error == "" {
		t.Fatalf("expected descriptive error")
	}
}

func TestDispatchInterviewStartStop(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	arch := &fakeArchiver{}
	s := NewServer(&fakeAdapter{}, st, arch, "aura-2-thalia-en")

	if resp := s.Dispatch(ctx, Request{Action: ActionInterviewStart}); !resp.Success {
		t.Fatalf("interviewStart failed: %s", resp.Error)
	}
	active, err := store.InterviewActive(ctx, st)
	if err != nil || !active {
		t.Fatalf("expected active flag set, got %v %v", active, err)
	}

	seedErr := store.SaveHistory(ctx, st, []store.Entry{{Role: store.RoleModel, Text: "greeting"}})
	if seedErr != nil {
		t.Fatalf("seed: %v", seedErr)
	}
	if resp := s.Dispatch(ctx, Request{Action: ActionInterviewStop}); !resp.Success {
		t.Fatalf("interviewStop failed: %s", resp.Error)
	}
	active, _ = store.InterviewActive(ctx, st)
	if active {
		t.Fatalf("expected active flag cleared")
	}
	if arch.calls != 1 || len(arch.entries) != 1 {
		t.Fatalf("expected transcript archived once, got %d calls", arch.calls)
	}
}

func TestDispatchInterviewStopArchiveFailureIsSwallowed(t *testing.T) {
	st := store.NewMemory()
	_ = store.SaveHistory(context.Background(), st, []store.Entry{{Role: store.RoleUser, Text: "x"}})
	arch := &fakeArchiver{err: errors.New("bucket gone")}
	s := NewServer(&fakeAdapter{}, st, arch, "")

	resp := s.Dispatch(context.Background(), Request{Action: ActionInterviewStop})
	if !resp.Success {
		t.Fatalf("archive failure must not fail the stop: %s", resp.Error)
	}
	if arch.calls != 1 {
		t.Fatalf("expected archive attempted")
	}
}

func TestDispatchSpeechToText(t *testing.T) {
	adapter := &fakeAdapter{transcript: "what is two sum"}
	s := NewServer(adapter, store.NewMemory(), nil, "")
	wav := []byte{'R', 'I', 'F', 'F', 0, 0, 0, 0}
	req := Request{
		Action:    ActionSpeechToText,
		AudioBlob: base64.StdEncoding.EncodeToString(wav),
		MimeType:  "audio/wav",
	}

	resp := s.Dispatch(context.Background(), req)
	if !resp.Success {
		t.Fatalf("speechToText failed: %s", resp.Error)
	}
	if resp.Text != "what is two sum" {
		t.Fatalf("expected transcript, got %q", resp.Text)
	}
	if adapter.lastMime != "audio/wav" || len(adapter.lastAudio) != len(wav) {
		t.Fatalf("decoded blob not forwarded: mime=%q len=%d", adapter.lastMime, len(adapter.lastAudio))
	}
}

func TestDispatchSpeechToTextRejectsBadPayload(t *testing.T) {
	s := NewServer(&fakeAdapter{}, store.NewMemory(), nil, "")
	cases := []Request{
		{Action: ActionSpeechToText, AudioBlob: "", MimeType: "audio/wav"},
		{Action: ActionSpeechToText, AudioBlob: "AAAA", MimeType: ""},
		{Action: ActionSpeechToText, AudioBlob: "not!!base64", MimeType: "audio/wav"},
	}
	for i, req := range cases {
		if resp := s.Dispatch(context.Background(), req); resp.Success {
			t.Fatalf("case %d: expected failure", i)
		}
	}
}

func TestDispatchSpeechToTextEmptyTranscript(t *testing.T) {
	s := NewServer(&fakeAdapter{transcript: "  "}, store.NewMemory(), nil, "")
	req := Request{
		Action:    ActionSpeechToText,
		AudioBlob: base64.StdEncoding.EncodeToString([]byte{1}),
		MimeType:  "audio/wav",
	}
	if resp := s.Dispatch(context.Background(), req); resp.Success {
		t.Fatalf("blank transcript must fail")
	}
}

func TestDispatchSendChatMessageComposesHistory(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	_ = store.SaveHistory(ctx, st, []store.Entry{
		{Role: store.RoleModel, Text: "greeting"},
		{Role: store.RoleUser, Text: "first answer"},
	})
	adapter := &fakeAdapter{reply: "tell me more"}
	s := NewServer(adapter, st, nil, "")

	resp := s.Dispatch(ctx, Request{Action: ActionSendChatMessage, Message: "second answer"})
	if !resp.Success {
		t.Fatalf("sendChatMessage failed: %s", resp.Error)
	}
	if resp.Text != "tell me more" {
		t.Fatalf("expected reply, got %q", resp.Text)
	}
	if len(adapter.chatTurns) != 3 {
		t.Fatalf("expected history + in-flight message, got %v", adapter.chatTurns)
	}
	last := adapter.chatTurns[2]
	if last.Role != store.RoleUser || last.Text != "second answer" {
		t.Fatalf("in-flight message must be last, got %+v", last)
	}
	// The daemon only composes context; persisting the turn is the agent's job.
	entries, _ := store.History(ctx, st)
	if len(entries) != 2 {
		t.Fatalf("daemon must not persist turns, got %v", entries)
	}
}

func TestDispatchSendChatMessageRequiresMessage(t *testing.T) {
	s := NewServer(&fakeAdapter{}, store.NewMemory(), nil, "")
	if resp := s.Dispatch(context.Background(), Request{Action: ActionSendChatMessage, Message: "  "}); resp.Success {
		t.Fatalf("blank message must fail")
	}
}

func TestDispatchTextToSpeech(t *testing.T) {
	adapter := &fakeAdapter{pcm: []byte{7, 7, 7}}
	s := NewServer(adapter, store.NewMemory(), nil, "aura-2-thalia-en")

	resp := s.Dispatch(context.Background(), Request{Action: ActionTextToSpeech, Text: "hello there"})
	if !resp.Success {
		t.Fatalf("textToSpeech failed: %s", resp.Error)
	}
	decoded, err := base64.StdEncoding.DecodeString(resp.AudioData)
	if err != nil || len(decoded) != 3 {
		t.Fatalf("expected base64 pcm payload, got %q (%v)", resp.AudioData, err)
	}
	if adapter.lastVoice != "aura-2-thalia-en" {
		t.Fatalf("expected default voice, got %q", adapter.lastVoice)
	}
}

func TestDispatchTextToSpeechVoiceOverrideFromStore(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	_ = st.Set(ctx, store.KeyVoiceName, "aura-2-orion-en")
	adapter := &fakeAdapter{pcm: []byte{1}}
	s := NewServer(adapter, st, nil, "aura-2-thalia-en")

	if resp := s.Dispatch(ctx, Request{Action: ActionTextToSpeech, Text: "hi"}); !resp.Success {
		t.Fatalf("textToSpeech failed: %s", resp.Error)
	}
	if adapter.lastVoice != "aura-2-orion-en" {
		t.Fatalf("expected stored voice override, got %q", adapter.lastVoice)
	}
}

func TestDispatchTextToSpeechFailures(t *testing.T) {
	s := NewServer(&fakeAdapter{synthErr: errors.New("quota")}, store.NewMemory(), nil, "")
	if resp := s.Dispatch(context.Background(), Request{Action: ActionTextToSpeech, Text: ""}); resp.Success {
		t.Fatalf("blank text must fail")
	}
	if resp := s.Dispatch(context.Background(), Request{Action: ActionTextToSpeech, Text: "x"}); resp.Success {
		t.Fatalf("synthesis error must fail")
	}
	empty := NewServer(&fakeAdapter{pcm: nil}, store.NewMemory(), nil, "")
	if resp := empty.Dispatch(context.Background(), Request{Action: ActionTextToSpeech, Text: "x"}); resp.Success {
		t.Fatalf("empty synthesis output must fail")
	}
}
