package agent

import (
	"context"
	"errors"
	"log"

	"github.com/HamzaHassanain/Interviewer-AIi/internal/audio"
	"github.com/HamzaHassanain/Interviewer-AIi/internal/bridge"
	"github.com/HamzaHassanain/Interviewer-AIi/internal/capture"
	"github.com/HamzaHassanain/Interviewer-AIi/internal/convo"
	"github.com/HamzaHassanain/Interviewer-AIi/internal/events"
	"github.com/HamzaHassanain/Interviewer-AIi/internal/session"
	"github.com/HamzaHassanain/Interviewer-AIi/internal/store"
)

// Remote is everything the agent context asks of the coordinator daemon.
type Remote interface {
	convo.Remote
	SpeechToText(ctx context.Context, blob audio.Blob) (string, error)
	StartInterview(ctx context.Context) error
	StopInterview(ctx context.Context) error
	NotifyStopped()
}

// Agent is the page-context orchestrator: it owns the session machine, the
// capture pipeline and the conversation coordinator, and drives one full
// capture -> transcribe -> reply -> playback cycle per click pair.
type Agent struct {
	machine  *session.Machine
	pipeline *capture.Pipeline
	coord    *convo.Coordinator
	remote   Remote
	st       store.Store
	sink     events.Sink
}

// New assembles an agent from its collaborators.
func New(machine *session.Machine, pipeline *capture.Pipeline, coord *convo.Coordinator, remote Remote, st store.Store, sink events.Sink) *Agent {
	return &Agent{machine: machine, pipeline: pipeline, coord: coord, remote: remote, st: st, sink: sink}
}

// State exposes the current session state for UI rendering.
func (a *Agent) State() session.State {
	return a.machine.State()
}

// HandleClick is the single trigger-control entry point. A click starts
// recording from Ready, completes the turn from Recording, and is ignored in
// every other state, which keeps at most one utterance in flight.
func (a *Agent) HandleClick(ctx context.Context) {
	switch a.machine.State() {
	case session.StateReady:
		if err := a.pipeline.Start(ctx); err != nil {
			log.Printf("agent: start recording: %v", err)
		}
	case session.StateRecording:
		a.completeTurn(ctx)
	default:
		log.Printf("agent: click ignored in state %s", a.machine.State())
	}
}

// completeTurn stops capture, transcribes the blob remotely and hands the
// text to the coordinator.
func (a *Agent) completeTurn(ctx context.Context) {
	blob, err := a.pipeline.Stop(ctx)
	if err != nil {
		// The pipeline already logged, surfaced and reset as appropriate;
		// a stop with no active capture is silent by contract.
		if !errors.Is(err, capture.ErrNoActiveRecording) {
			log.Printf("agent: stop recording: %v", err)
		}
		return
	}

	text, err := a.remote.SpeechToText(ctx, blob)
	if err != nil {
		code := events.CodeTransportFailure
		if errors.Is(err, bridge.ErrMalformedResponse) {
			code = events.CodeMalformedResponse
		}
		a.sink.Error(code, err.Error())
		a.machine.Reset()
		return
	}

	if err := a.coord.ProcessTranscript(ctx, text); err != nil {
		log.Printf("agent: process transcript: %v", err)
	}
}

// StartInterview begins a fresh session: marks it active, clears any previous
// transcript and delivers the opening framing prompt for the current problem.
func (a *Agent) StartInterview(ctx context.Context, problemTitle, problemURL string) error {
	if err := a.remote.StartInterview(ctx); err != nil {
		a.sink.Error(events.CodeTransportFailure, err.Error())
		return err
	}
	if err := a.coord.ResetConversation(ctx); err != nil {
		log.Printf("agent: reset conversation: %v", err)
	}
	return a.coord.FirstTurnPrompt(ctx, problemTitle, problemURL)
}

// StopInterview ends the session. The daemon notification is best-effort: the
// peer may already be gone, and an already-dispatched remote call cannot be
// aborted, only future transitions are prevented.
func (a *Agent) StopInterview(ctx context.Context) {
	a.pipeline.Abort()
	if err := store.SetInterviewActive(ctx, a.st, false); err != nil {
		log.Printf("agent: clear interview flag: %v", err)
	}
	a.remote.NotifyStopped()
}

// Resume reports whether a previous session was still active, so the UI can
// be restored after a reload.
func (a *Agent) Resume(ctx context.Context) bool {
	active, err := store.InterviewActive(ctx, a.st)
	if err != nil {
		log.Printf("agent: read interview flag: %v", err)
		return false
	}
	return active
}
