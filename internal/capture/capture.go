package capture

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/HamzaHassanain/Interviewer-AIi/internal/audio"
	"github.com/HamzaHassanain/Interviewer-AIi/internal/events"
	"github.com/HamzaHassanain/Interviewer-AIi/internal/session"
)

var (
	// ErrPermissionDenied means microphone access was refused. Terminal for
	// the attempt; the user must retry.
	ErrPermissionDenied = errors.New("microphone permission denied")
	// ErrEmptyCapture means a recording finalized with zero audio bytes.
	ErrEmptyCapture = errors.New("recording produced no audio")
	// ErrNoActiveRecording is returned by Stop when nothing is being captured.
	ErrNoActiveRecording = errors.New("no active recording")
)

// Config describes how the microphone should be captured. Noise suppression
// and echo cancellation are preferences; backends without those toggles
// ignore them. The sample rate is a quality tradeoff, not a correctness
// contract.
type Config struct {
	SampleRate       int
	Channels         int
	NoiseSuppression bool
	EchoCancellation bool
}

// DefaultConfig is mono 16 kHz speech capture with cleanup preferences on.
func DefaultConfig() Config {
	return Config{SampleRate: 16000, Channels: 1, NoiseSuppression: true, EchoCancellation: true}
}

// Stream is a live microphone capture. Chunks delivers buffered audio on a
// periodic flush (~1s); Err delivers at most one device error. Close stops
// capture and releases the device, after which both channels close.
type Stream interface {
	Chunks() <-chan []byte
	Err() <-chan error
	Close() error
}

// Device creates microphone capture streams. Probe requests access and
// immediately releases the device without retaining a stream.
type Device interface {
	Probe(ctx context.Context) error
	Open(ctx context.Context, cfg Config) (Stream, error)
}

// Pipeline turns a microphone stream into a finalized audio blob. It drives
// the session machine through Recording and into Processing, and guarantees
// the device is released on every path, success or failure.
type Pipeline struct {
	machine *session.Machine
	device  Device
	sink    events.Sink
	cfg     Config

	mu     sync.Mutex
	active *activeCapture
}

type activeCapture struct {
	stream Stream

	mu     sync.Mutex
	chunks [][]byte

	done chan struct{}
}

// New constructs a capture pipeline around the given device.
func New(machine *session.Machine, device Device, sink events.Sink, cfg Config) *Pipeline {
	if cfg.SampleRate <= 0 {
		cfg = DefaultConfig()
	}
	return &Pipeline{machine: machine, device: device, sink: sink, cfg: cfg}
}

// RequestPermission probes microphone access without retaining a stream and
// without touching session state.
func (p *Pipeline) RequestPermission(ctx context.Context) error {
	if err := p.device.Probe(ctx); err != nil {
		p.sink.Error(events.CodePermissionDenied, err.Error())
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	return nil
}

// Start transitions Ready -> Recording and begins buffering audio chunks. A
// device error during capture forces the machine back to Ready and surfaces
// the error.
func (p *Pipeline) Start(ctx context.Context) error {
	if err := p.machine.StartRecording(); err != nil {
		return err
	}
	stream, err := p.device.Open(ctx, p.cfg)
	if err != nil {
		p.machine.Reset()
		p.sink.Error(events.CodePermissionDenied, err.Error())
		return fmt.Errorf("open microphone: %w", err)
	}
	ac := &activeCapture{stream: stream, done: make(chan struct{})}
	p.mu.Lock()
	p.active = ac
	p.mu.Unlock()
	go p.collect(ac)
	return nil
}

// collect buffers incoming chunks until the stream closes or errors. The
// chunk channel is drained to the end even after the error channel closes, so
// audio buffered at close time is never dropped.
func (p *Pipeline) collect(ac *activeCapture) {
	defer close(ac.done)
	chunkCh := ac.stream.Chunks()
	errCh := ac.stream.Err()
	for {
		select {
		case chunk, ok := <-chunkCh:
			if !ok {
				return
			}
			if len(chunk) == 0 {
				continue
			}
			buf := make([]byte, len(chunk))
			copy(buf, chunk)
			ac.mu.Lock()
			ac.chunks = append(ac.chunks, buf)
			ac.mu.Unlock()
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err == nil {
				continue
			}
			// Device failed mid-recording. Only the goroutine that still owns
			// the capture cleans up; if Stop already claimed it, let Stop run.
			if !p.claim(ac) {
				return
			}
			log.Printf("capture: device error: %v", err)
			_ = ac.stream.Close()
			p.machine.Reset()
			p.sink.Error(events.CodeCaptureFailure, err.Error())
			return
		}
	}
}

// claim removes ac from the pipeline if it is still the active capture.
func (p *Pipeline) claim(ac *activeCapture) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active != ac {
		return false
	}
	p.active = nil
	return true
}

// Stop transitions Recording -> Processing, finalizes the buffered chunks
// into a single WAV-tagged blob and releases the microphone. Calling Stop
// with no active capture is a warning-level no-op: state is untouched and no
// user-visible error is raised.
func (p *Pipeline) Stop(ctx context.Context) (audio.Blob, error) {
	p.mu.Lock()
	ac := p.active
	p.active = nil
	p.mu.Unlock()
	if ac == nil {
		log.Printf("capture: stop requested with no active recording")
		return audio.Blob{}, ErrNoActiveRecording
	}

	if err := p.machine.BeginProcessing(); err != nil {
		// The device-error path already reset the machine; nothing to finalize.
		_ = ac.stream.Close()
		return audio.Blob{}, err
	}

	_ = ac.stream.Close()
	<-ac.done

	ac.mu.Lock()
	chunks := ac.chunks
	ac.chunks = nil
	ac.mu.Unlock()

	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	if len(chunks) == 0 || total == 0 {
		p.machine.Reset()
		p.sink.Error(events.CodeEmptyCapture, "recording produced no audio, try again")
		return audio.Blob{}, ErrEmptyCapture
	}

	pcm := make([]byte, 0, total)
	for _, c := range chunks {
		pcm = append(pcm, c...)
	}
	wav, err := audio.WrapPCMAsWAV(pcm, p.cfg.SampleRate, p.cfg.Channels, 16)
	if err != nil {
		p.machine.Reset()
		p.sink.Error(events.CodeCaptureFailure, err.Error())
		return audio.Blob{}, fmt.Errorf("finalize capture: %w", err)
	}
	return audio.Blob{Data: wav, MimeType: "audio/wav"}, nil
}

// Abort discards any in-progress capture, releases the device and returns the
// machine to Ready. Used when the interview stops or the agent shuts down.
func (p *Pipeline) Abort() {
	p.mu.Lock()
	ac := p.active
	p.active = nil
	p.mu.Unlock()
	if ac != nil {
		_ = ac.stream.Close()
		<-ac.done
	}
	p.machine.Reset()
}

// Active reports whether a capture is currently running.
func (p *Pipeline) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active != nil
}
