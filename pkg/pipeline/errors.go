package pipeline

import "errors"

// Validation errors: required input was absent. Nothing is recorded in
// the conversation store when these are returned.
var (
	// ErrEmptyAudio is returned when the voice flow receives no audio bytes.
	ErrEmptyAudio = errors.New("pipeline: audio payload is empty")

	// ErrEmptyText is returned when the text flow receives no text.
	ErrEmptyText = errors.New("pipeline: text is empty")
)

// ErrAudioTooShort is returned when a clip is below MinAudioBytes.
// Clips that small reliably fail to transcribe usefully, so they are
// rejected before the transcription call. This is the caller's fault,
// not the server's; the HTTP layer reports it as a 4xx.
var ErrAudioTooShort = errors.New("pipeline: audio too short to transcribe, speak a little longer")

// IsClientError reports whether the error is a validation or domain
// error the caller can fix, as opposed to an upstream service failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrEmptyAudio) ||
		errors.Is(err, ErrEmptyText) ||
		errors.Is(err, ErrAudioTooShort)
}
