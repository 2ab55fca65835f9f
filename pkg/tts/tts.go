// Package tts provides the text-to-speech client that renders assistant
// replies as audio.
//
// The client speaks the OpenAI speech API and returns one encoded audio
// buffer per reply; there is no streaming synthesis. The conversation
// pipeline consumes the Provider interface; the Mock implementation
// backs the tests.
//
// Example usage:
//
//	provider, _ := tts.NewOpenAI(
//	    tts.WithAPIKey(os.Getenv("OPENAI_API_KEY")),
//	    tts.WithVoice(tts.VoiceAlloy),
//	)
//	defer provider.Close()
//
//	result, _ := provider.Synthesize(ctx, "Chào bạn!")
//	// result.Audio contains opus audio bytes
package tts

import (
	"context"
	"time"
)

// Provider defines the TTS provider interface.
// All implementations must satisfy this interface.
type Provider interface {
	// Synthesize converts text to audio, returning the complete audio buffer.
	Synthesize(ctx context.Context, text string) (*AudioResult, error)

	// Health checks provider connectivity and API key validity.
	Health(ctx context.Context) error

	// Close releases any resources held by the provider.
	Close() error
}

// AudioResult represents a complete audio synthesis result.
type AudioResult struct {
	// Audio contains the raw audio data in the specified format.
	Audio []byte

	// Format is the audio container/codec (e.g. opus, mp3).
	Format Format

	// CharCount is the number of characters synthesized.
	CharCount int

	// LatencyMs is the round-trip time in milliseconds.
	LatencyMs int64
}

// Format identifies the synthesized audio codec.
type Format string

const (
	// FormatOpus is the pipeline's fixed output codec.
	FormatOpus Format = "opus"

	// FormatMP3 is available for clients that cannot play opus.
	FormatMP3 Format = "mp3"

	// FormatWAV is uncompressed PCM in a WAV container.
	FormatWAV Format = "wav"
)

// OpenAI voice options.
const (
	VoiceAlloy   = "alloy"   // Neutral voice
	VoiceEcho    = "echo"    // Male voice
	VoiceFable   = "fable"   // British accent
	VoiceOnyx    = "onyx"    // Deep male voice
	VoiceNova    = "nova"    // Female voice
	VoiceShimmer = "shimmer" // Soft female voice
)

// OpenAI model options.
const (
	ModelTTS1    = "tts-1"           // Standard quality, faster
	ModelTTS1HD  = "tts-1-hd"        // Higher quality, slower
	ModelMiniTTS = "gpt-4o-mini-tts" // Default for this backend
)

// EstimateDuration approximates playback length from character count,
// assuming natural Vietnamese speech pacing.
func EstimateDuration(charCount int) time.Duration {
	return time.Duration(charCount) * 60 * time.Millisecond
}
