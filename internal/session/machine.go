package session

import (
	"errors"
	"fmt"
	"sync"
)

// State models the capture-button lifecycle for one interview turn.
type State string

const (
	StateReady      State = "ready"
	StateRecording  State = "recording"
	StateProcessing State = "processing"
	StateAiSpeaking State = "ai_speaking"
)

// ErrTransition is returned when a requested transition is not legal from the
// current state. Callers treat it as "ignore the click", not as a fault.
var ErrTransition = errors.New("illegal session transition")

// Machine owns the single session state per agent context. All transitions go
// through its guarded methods; reads and UI affordances derive from State().
type Machine struct {
	mu       sync.Mutex
	state    State
	onChange func(State)
}

// NewMachine returns a machine in StateReady. onChange, if non-nil, is invoked
// after every effective state change, outside the machine's lock.
func NewMachine(onChange func(State)) *Machine {
	return &Machine{state: StateReady, onChange: onChange}
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// StartRecording moves Ready -> Recording.
func (m *Machine) StartRecording() error {
	return m.transition(StateRecording, StateReady)
}

// BeginProcessing moves Recording -> Processing.
func (m *Machine) BeginProcessing() error {
	return m.transition(StateProcessing, StateRecording)
}

// BeginSpeaking moves into AiSpeaking. Legal from Processing (reply ready for a
// spoken turn) and from Ready (the opening greeting of a fresh session, which
// plays before any user speech).
func (m *Machine) BeginSpeaking() error {
	return m.transition(StateAiSpeaking, StateProcessing, StateReady)
}

// Reset forces the machine back to Ready from any state. Every caught failure
// in capture, transcription, chat, synthesis or playback ends here so the UI is
// never stranded in a non-Ready state.
func (m *Machine) Reset() {
	m.mu.Lock()
	if m.state == StateReady {
		m.mu.Unlock()
		return
	}
	m.state = StateReady
	cb := m.onChange
	m.mu.Unlock()
	if cb != nil {
		cb(StateReady)
	}
}

func (m *Machine) transition(to State, from ...State) error {
	m.mu.Lock()
	legal := false
	for _, f := range from {
		if m.state == f {
			legal = true
			break
		}
	}
	if !legal {
		cur := m.state
		m.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrTransition, cur, to)
	}
	m.state = to
	cb := m.onChange
	m.mu.Unlock()
	if cb != nil {
		cb(to)
	}
	return nil
}

// Affordance describes what the trigger control should present for a state.
type Affordance struct {
	Label   string
	Enabled bool
}

// AffordanceFor is the pure state -> UI mapping. Processing and AiSpeaking
// disable the control so at most one capture/playback cycle is in flight.
func AffordanceFor(s State) Affordance {
	switch s {
	case StateRecording:
		return Affordance{Label: "Stop Recording", Enabled: true}
	case StateProcessing:
		return Affordance{Label: "Processing...", Enabled: false}
	case StateAiSpeaking:
		return Affordance{Label: "AI Speaking...", Enabled: false}
	default:
		return Affordance{Label: "Start Recording", Enabled: true}
	}
}
