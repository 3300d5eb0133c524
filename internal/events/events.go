package events

import (
	"log"

	"github.com/HamzaHassanain/Interviewer-AIi/internal/session"
)

// Code classifies user-visible failures.
type Code string

const (
	CodePermissionDenied  Code = "permission_denied"
	CodeCaptureFailure    Code = "capture_failure"
	CodeEmptyCapture      Code = "empty_capture"
	CodeTransportFailure  Code = "transport_failure"
	CodeMalformedResponse Code = "malformed_response"
	CodePlaybackFailure   Code = "playback_failure"
)

// Sink receives state changes and user-visible errors from the agent pipeline.
// Implementations render notifications; the pipeline never blocks on them.
type Sink interface {
	StateChanged(state session.State)
	Error(code Code, detail string)
}

// LogSink writes events to the process log. Used by the CLI agent and as a
// default when no UI is attached.
type LogSink struct{}

func (LogSink) StateChanged(state session.State) {
	a := session.AffordanceFor(state)
	log.Printf("session state: %s (control %q enabled=%v)", state, a.Label, a.Enabled)
}

func (LogSink) Error(code Code, detail string) {
	log.Printf("error [%s]: %s", code, detail)
}
