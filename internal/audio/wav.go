package audio

import (
	"encoding/binary"
	"fmt"
)

// Default format of synthesized speech as delivered by the TTS service
// (headerless linear16 PCM). This is an assumption, not a negotiated value: if
// the service changes its output format, playback will be pitch/speed
// distorted rather than fail.
const (
	DefaultSynthesisRate     = 24000
	DefaultSynthesisChannels = 1
	DefaultSynthesisBits     = 16
)

// wavHeaderSize is the canonical RIFF/WAVE/fmt/data header length.
const wavHeaderSize = 44

// WrapPCMAsWAV prefixes raw PCM samples with a minimal 44-byte WAV header,
// producing a directly playable container. All multi-byte fields are
// little-endian. Parameters are validated up front so a malformed container is
// never produced.
func WrapPCMAsWAV(pcm []byte, sampleRate, channels, bitsPerSample int) ([]byte, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("wav: sample rate must be positive, got %d", sampleRate)
	}
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("wav: channel count must be 1 or 2, got %d", channels)
	}
	if bitsPerSample != 8 && bitsPerSample != 16 {
		return nil, fmt.Errorf("wav: bits per sample must be 8 or 16, got %d", bitsPerSample)
	}

	dataLen := len(pcm)
	blockAlign := channels * bitsPerSample / 8
	byteRate := sampleRate * blockAlign

	out := make([]byte, wavHeaderSize+dataLen)
	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], uint32(36+dataLen))
	copy(out[8:12], "WAVE")
	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], 16) // fmt chunk size
	binary.LittleEndian.PutUint16(out[20:22], 1)  // PCM
	binary.LittleEndian.PutUint16(out[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:36], uint16(bitsPerSample))
	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], uint32(dataLen))
	copy(out[wavHeaderSize:], pcm)
	return out, nil
}
