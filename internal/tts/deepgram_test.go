package tts

import (
	"context"
	"testing"
)

func TestSynthesizeValidation(t *testing.T) {
	c := NewDeepgramClient("", "")
	if _, err := c.Synthesize(context.Background(), "hello", ""); err == nil {
		t.Fatalf("expected error on missing key")
	}
	c = NewDeepgramClient("key", "")
	if _, err := c.Synthesize(context.Background(), "", ""); err == nil {
		t.Fatalf("expected error on empty text")
	}
}

func TestSpeakCallbackCollectsBinary(t *testing.T) {
	var got []byte
	cb := &speakCallback{onBinary: func(data []byte) error {
		got = append(got, data...)
		return nil
	}}
	if err := cb.Binary([]byte{1, 2}); err != nil {
		t.Fatalf("binary: %v", err)
	}
	if err := cb.Binary([]byte{3}); err != nil {
		t.Fatalf("binary: %v", err)
	}
	if len(got) != 3 || got[2] != 3 {
		t.Fatalf("expected collected audio, got %v", got)
	}
}

func TestDefaultVoice(t *testing.T) {
	c := NewDeepgramClient("key", "")
	if c.model != "aura-2-thalia-en" {
		t.Fatalf("expected default voice, got %s", c.model)
	}
	c = NewDeepgramClient("key", "aura-2-orion-en")
	if c.model != "aura-2-orion-en" {
		t.Fatalf("expected configured voice, got %s", c.model)
	}
}
