package pipeline

// VoiceRequest is a recorded clip to run through the full
// transcribe-respond-synthesize pipeline.
type VoiceRequest struct {
	// Audio is the raw recorded clip.
	Audio []byte

	// MIMEType is the declared content type of the clip (may be empty).
	MIMEType string

	// DeviceID identifies the conversation context. The HTTP layer
	// defaults it to convo.DefaultDevice when the caller omits it.
	DeviceID string
}

// TextRequest is typed input that skips transcription and runs the
// respond-synthesize suffix.
type TextRequest struct {
	// Text is the user's message.
	Text string

	// DeviceID identifies the conversation context.
	DeviceID string
}

// Result is the outcome of one pipeline run.
type Result struct {
	// UserText is the transcript (voice flow) or the supplied text.
	UserText string `json:"user_text"`

	// AssistantText is the generated or canned reply.
	AssistantText string `json:"assistant_text"`

	// AudioURL is the servable path of the synthesized reply audio.
	AudioURL string `json:"tts_url"`

	// DeviceID is the conversation context the run used.
	DeviceID string `json:"device_id"`
}
