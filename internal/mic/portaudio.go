package mic

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/HamzaHassanain/Interviewer-AIi/internal/capture"
)

// flushInterval bounds how long samples sit in the stream buffer before they
// are handed to the pipeline as a chunk.
const flushInterval = time.Second

// PortAudio implements capture.Device on the default system microphone.
// Noise-suppression and echo-cancellation preferences are accepted but
// PortAudio exposes no such toggles, so they are left to the OS input stack.
type PortAudio struct{}

// New returns a PortAudio-backed microphone device.
func New() *PortAudio { return &PortAudio{} }

// Probe opens and immediately releases the default input stream. It requests
// access without retaining anything, so a denial shows up here instead of
// mid-recording.
func (PortAudio) Probe(_ context.Context) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("portaudio init: %w", err)
	}
	defer func() { _ = portaudio.Terminate() }()
	buf := make([]int16, 64)
	stream, err := portaudio.OpenDefaultStream(1, 0, 16000, len(buf), buf)
	if err != nil {
		return fmt.Errorf("open default input: %w", err)
	}
	return stream.Close()
}

// Open starts capturing and returns a stream delivering ~1s chunks of 16-bit
// little-endian PCM.
func (PortAudio) Open(_ context.Context, cfg capture.Config) (capture.Stream, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}
	// 100ms read frames; chunks flush on the 1s boundary.
	frames := cfg.SampleRate / 10
	if frames <= 0 {
		frames = 1600
	}
	buf := make([]int16, frames*cfg.Channels)
	stream, err := portaudio.OpenDefaultStream(cfg.Channels, 0, float64(cfg.SampleRate), frames, buf)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("open default input: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return nil, fmt.Errorf("start input stream: %w", err)
	}

	s := &paStream{
		stream: stream,
		buf:    buf,
		chunks: make(chan []byte, 8),
		errs:   make(chan error, 1),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go s.loop()
	return s, nil
}

type paStream struct {
	stream *portaudio.Stream
	buf    []int16

	chunks chan []byte
	errs   chan error

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func (s *paStream) Chunks() <-chan []byte { return s.chunks }
func (s *paStream) Err() <-chan error     { return s.errs }

func (s *paStream) loop() {
	defer close(s.done)
	defer close(s.chunks)
	defer close(s.errs)

	var pending []byte
	lastFlush := time.Now()
	for {
		select {
		case <-s.stop:
			if len(pending) > 0 {
				s.chunks <- pending
			}
			return
		default:
		}
		if err := s.stream.Read(); err != nil {
			select {
			case <-s.stop:
				// Close aborted the read; flush what we have.
				if len(pending) > 0 {
					s.chunks <- pending
				}
			default:
				s.errs <- fmt.Errorf("microphone read: %w", err)
			}
			return
		}
		start := len(pending)
		pending = append(pending, make([]byte, len(s.buf)*2)...)
		out := pending[start:]
		for i, v := range s.buf {
			u := uint16(v)
			out[2*i] = byte(u)
			out[2*i+1] = byte(u >> 8)
		}
		if time.Since(lastFlush) >= flushInterval {
			s.chunks <- pending
			pending = nil
			lastFlush = time.Now()
		}
	}
}

// Close stops capture, releases the device and closes both channels.
func (s *paStream) Close() error {
	s.stopOnce.Do(func() {
		close(s.stop)
		_ = s.stream.Abort()
	})
	<-s.done
	err := s.stream.Close()
	_ = portaudio.Terminate()
	return err
}
