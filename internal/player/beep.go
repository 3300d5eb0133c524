package player

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
)

// Beep plays WAV buffers through the system output device. Play resolves
// exactly once per call, on completion or error, so callers can await
// playback without event-handler chains.
type Beep struct {
	mu       sync.Mutex
	initRate beep.SampleRate
}

// NewBeep returns an uninitialized player; the speaker is initialized lazily
// from the first buffer's sample rate.
func NewBeep() *Beep { return &Beep{} }

// Play decodes and plays wavBytes, blocking until playback ends. A canceled
// context clears the speaker and returns the context error.
func (b *Beep) Play(ctx context.Context, wavBytes []byte) error {
	streamer, format, err := wav.Decode(bytes.NewReader(wavBytes))
	if err != nil {
		return fmt.Errorf("decode wav: %w", err)
	}
	defer streamer.Close()

	b.mu.Lock()
	if b.initRate != format.SampleRate {
		if err := speaker.Init(format.SampleRate, format.SampleRate.N(100*time.Millisecond)); err != nil {
			b.mu.Unlock()
			return fmt.Errorf("init speaker: %w", err)
		}
		b.initRate = format.SampleRate
	}
	b.mu.Unlock()

	done := make(chan struct{})
	speaker.Play(beep.Seq(streamer, beep.Callback(func() { close(done) })))

	select {
	case <-ctx.Done():
		speaker.Clear()
		return ctx.Err()
	case <-done:
		return nil
	}
}
