// Package stt provides the speech-to-text client used to transcribe
// recorded clips from web and speaker clients.
//
// The client uploads whole audio clips to the OpenAI transcription API;
// there is no streaming recognition. The conversation pipeline consumes
// the Transcriber interface; the Mock implementation backs the tests.
package stt

import (
	"context"
	"strings"
)

// Transcriber converts a recorded audio clip to text.
// All implementations must satisfy this interface.
type Transcriber interface {
	// Transcribe converts the audio bytes to text. The format hint is a
	// container extension (webm, ogg, mp4, wav, mp3) used to name the
	// uploaded file. An empty transcript is a valid result.
	Transcribe(ctx context.Context, audio []byte, format string) (string, error)

	// Health checks provider connectivity and API key validity.
	Health(ctx context.Context) error

	// Close releases any resources held by the provider.
	Close() error
}

// ExtensionFromMIME maps a declared MIME type to the container extension
// used as the upload format hint. Unknown or empty types default to webm,
// which is what browser recorders produce.
func ExtensionFromMIME(mime string) string {
	if mime == "" {
		return "webm"
	}
	m := strings.ToLower(mime)
	switch {
	case strings.Contains(m, "webm"):
		return "webm"
	case strings.Contains(m, "ogg"):
		return "ogg"
	case strings.Contains(m, "mp4"), strings.Contains(m, "m4a"), strings.Contains(m, "mpeg"):
		return "mp4"
	case strings.Contains(m, "wav"):
		return "wav"
	case strings.Contains(m, "mp3"):
		return "mp3"
	default:
		return "webm"
	}
}
