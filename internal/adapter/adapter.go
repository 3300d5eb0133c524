package adapter

import (
	"context"

	"github.com/HamzaHassanain/Interviewer-AIi/internal/config"
	"github.com/HamzaHassanain/Interviewer-AIi/internal/llm"
	"github.com/HamzaHassanain/Interviewer-AIi/internal/store"
	"github.com/HamzaHassanain/Interviewer-AIi/internal/stt"
	"github.com/HamzaHassanain/Interviewer-AIi/internal/tts"
)

// Services bundles the three external capabilities the bridge dispatches to:
// transcribe, chat and synthesize. Each is an independent vendor client; this
// is the only place that knows which vendor backs which capability.
type Services struct {
	STT *stt.AssemblyAIClient
	LLM *llm.CerebrasClient
	TTS *tts.DeepgramClient
}

// New wires the vendor clients from configuration.
func New(cfg config.Config) *Services {
	return &Services{
		STT: stt.NewAssemblyAIClient(cfg.AssemblyAIKey),
		LLM: llm.NewCerebrasClient(cfg.CerebrasKey, cfg.CerebrasModelID),
		TTS: tts.NewDeepgramClient(cfg.DeepgramKey, cfg.VoiceName),
	}
}

func (s *Services) Transcribe(ctx context.Context, audioBytes []byte, mimeType string) (string, error) {
	return s.STT.Transcribe(ctx, audioBytes, mimeType)
}

func (s *Services) Chat(ctx context.Context, turns []store.Entry) (string, error) {
	return s.LLM.Chat(ctx, turns)
}

func (s *Services) Synthesize(ctx context.Context, text, voiceHint string) ([]byte, error) {
	return s.TTS.Synthesize(ctx, text, voiceHint)
}
