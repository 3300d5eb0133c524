package convo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/HamzaHassanain/Interviewer-AIi/internal/audio"
	"github.com/HamzaHassanain/Interviewer-AIi/internal/bridge"
	"github.com/HamzaHassanain/Interviewer-AIi/internal/events"
	"github.com/HamzaHassanain/Interviewer-AIi/internal/session"
	"github.com/HamzaHassanain/Interviewer-AIi/internal/store"
)

// Remote is the slice of the bridge the coordinator needs: one chat round
// trip and one synthesis round trip.
type Remote interface {
	SendChat(ctx context.Context, message string) (string, error)
	TextToSpeech(ctx context.Context, text string) ([]byte, error)
}

// Player plays a WAV buffer and returns exactly once, on playback completion
// or playback error.
type Player interface {
	Play(ctx context.Context, wav []byte) error
}

// Coordinator turns a transcribed utterance into a spoken AI reply and keeps
// the persisted transcript current. Every failure path lands the session
// machine back in Ready.
type Coordinator struct {
	machine *session.Machine
	remote  Remote
	st      store.Store
	player  Player
	sink    events.Sink
}

// NewCoordinator wires the coordinator to its collaborators.
func NewCoordinator(machine *session.Machine, remote Remote, st store.Store, player Player, sink events.Sink) *Coordinator {
	return &Coordinator{machine: machine, remote: remote, st: st, player: player, sink: sink}
}

// ProcessTranscript sends the transcribed user text through the bridge, and on
// success appends the user turn and the model turn (in that order) to the
// persisted transcript, then speaks the reply. On failure nothing is appended
// and the machine returns to Ready.
func (c *Coordinator) ProcessTranscript(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		c.machine.Reset()
		return fmt.Errorf("empty transcript")
	}

	reply, err := c.remote.SendChat(ctx, text)
	if err != nil {
		c.fail(err)
		return err
	}
	reply = strings.TrimSpace(reply)

	if err := store.AppendTurns(ctx, c.st,
		store.Entry{Role: store.RoleUser, Text: text},
		store.Entry{Role: store.RoleModel, Text: reply},
	); err != nil {
		c.fail(err)
		return err
	}
	c.bumpStats(ctx)

	return c.SynthesizeAndPlay(ctx, reply)
}

// SynthesizeAndPlay enters AiSpeaking before issuing the synthesis call, so
// the UI already shows "speaking" while the network round trip is
// outstanding. Raw PCM from the service is wrapped in a WAV container and
// played; the machine returns to Ready unconditionally afterwards.
func (c *Coordinator) SynthesizeAndPlay(ctx context.Context, text string) error {
	if err := c.machine.BeginSpeaking(); err != nil {
		return err
	}

	pcm, err := c.remote.TextToSpeech(ctx, text)
	if err != nil {
		c.fail(err)
		return err
	}

	wav, err := audio.WrapPCMAsWAV(pcm, audio.DefaultSynthesisRate, audio.DefaultSynthesisChannels, audio.DefaultSynthesisBits)
	if err != nil {
		c.machine.Reset()
		c.sink.Error(events.CodePlaybackFailure, err.Error())
		return err
	}

	playErr := c.player.Play(ctx, wav)
	c.machine.Reset()
	if playErr != nil {
		c.sink.Error(events.CodePlaybackFailure, playErr.Error())
		return fmt.Errorf("play reply: %w", playErr)
	}
	return nil
}

// FirstTurnPrompt opens a freshly started session with a fixed interview
// framing instruction built from the current problem. The instruction itself
// is not persisted; only the model's greeting lands in the transcript, which
// is then spoken.
func (c *Coordinator) FirstTurnPrompt(ctx context.Context, problemTitle, problemURL string) error {
	prompt := fmt.Sprintf(
		"You are a mock technical interviewer. The candidate has opened the coding problem %q (%s). "+
			"Greet the candidate briefly, ask them to talk through their approach out loud, and do not "+
			"reveal the solution. Keep every reply short and conversational, it will be spoken aloud.",
		problemTitle, problemURL)

	reply, err := c.remote.SendChat(ctx, prompt)
	if err != nil {
		c.fail(err)
		return err
	}
	reply = strings.TrimSpace(reply)

	if err := store.AppendTurns(ctx, c.st, store.Entry{Role: store.RoleModel, Text: reply}); err != nil {
		c.fail(err)
		return err
	}
	if err := store.SaveStats(ctx, c.st, store.Stats{StartedAt: time.Now()}); err != nil {
		log.Printf("convo: save stats: %v", err)
	}

	return c.SynthesizeAndPlay(ctx, reply)
}

// ResetConversation clears the persisted transcript and its stats. Used on
// explicit request and at the start of every fresh interview.
func (c *Coordinator) ResetConversation(ctx context.Context) error {
	if err := store.ClearConversation(ctx, c.st); err != nil {
		return fmt.Errorf("reset conversation: %w", err)
	}
	return nil
}

func (c *Coordinator) bumpStats(ctx context.Context) {
	st, err := store.LoadStats(ctx, c.st)
	if err != nil {
		log.Printf("convo: load stats: %v", err)
		return
	}
	st.Turns++
	st.LastTurnAt = time.Now()
	if err := store.SaveStats(ctx, c.st, st); err != nil {
		log.Printf("convo: save stats: %v", err)
	}
}

// fail surfaces a remote/storage failure and forces the machine to Ready.
func (c *Coordinator) fail(err error) {
	code := events.CodeTransportFailure
	if errors.Is(err, bridge.ErrMalformedResponse) {
		code = events.CodeMalformedResponse
	}
	c.sink.Error(code, err.Error())
	c.machine.Reset()
}
