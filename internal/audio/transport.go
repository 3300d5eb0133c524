package audio

import (
	"encoding/base64"
	"fmt"
)

// Blob is a finalized audio buffer tagged with its codec, the unit that
// crosses the messaging bridge.
type Blob struct {
	Data     []byte
	MimeType string
}

// EncodeTransport base64-encodes a binary blob for message passing across
// context boundaries.
func EncodeTransport(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("audio: cannot encode empty blob")
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// DecodeTransport is the inverse of EncodeTransport. It fails on malformed
// base64 and on a missing MIME type, since a blob without its codec tag is
// unusable downstream.
func DecodeTransport(encoded, mimeType string) (Blob, error) {
	if mimeType == "" {
		return Blob{}, fmt.Errorf("audio: missing mime type")
	}
	if encoded == "" {
		return Blob{}, fmt.Errorf("audio: empty transport string")
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Blob{}, fmt.Errorf("audio: malformed base64: %w", err)
	}
	return Blob{Data: data, MimeType: mimeType}, nil
}
