// Package pipeline orchestrates the conversation flow: transcribe the
// user's speech (voice flow only), generate a reply with per-device
// short-term memory and a deterministic creator-question override, then
// synthesize and persist the reply audio.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/ntquoc/robot5320/pkg/chat"
	"github.com/ntquoc/robot5320/pkg/convo"
	"github.com/ntquoc/robot5320/pkg/intent"
	"github.com/ntquoc/robot5320/pkg/stt"
	"github.com/ntquoc/robot5320/pkg/tts"
)

// MinAudioBytes is the smallest clip the voice flow accepts. Clips
// below this reliably transcribe to nothing useful.
const MinAudioBytes = 2000

// Deps are the collaborators an Orchestrator composes.
type Deps struct {
	Store       *convo.Store
	Transcriber stt.Transcriber
	Completer   chat.Completer
	Synthesizer tts.Provider
	Sink        *Sink

	// Timeout bounds one full pipeline run. Zero means no deadline.
	Timeout time.Duration

	// Logger defaults to slog.Default when nil.
	Logger *slog.Logger
}

// Orchestrator runs the voice and text conversation flows.
//
// Failure policy: the first failing stage aborts the run. Turns already
// appended to the store are kept, not rolled back — if synthesis fails
// after a successful chat call, the exchange still happened and the
// history stays ahead of what the caller received. A retried question
// then answers consistently.
type Orchestrator struct {
	store   *convo.Store
	stt     stt.Transcriber
	chat    chat.Completer
	tts     tts.Provider
	sink    *Sink
	timeout time.Duration
	logger  *slog.Logger
}

// New creates an Orchestrator from its collaborators.
func New(deps Deps) *Orchestrator {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		store:   deps.Store,
		stt:     deps.Transcriber,
		chat:    deps.Completer,
		tts:     deps.Synthesizer,
		sink:    deps.Sink,
		timeout: deps.Timeout,
		logger:  logger.With("component", "pipeline"),
	}
}

// Voice runs the full pipeline on a recorded clip.
func (o *Orchestrator) Voice(ctx context.Context, req VoiceRequest) (*Result, error) {
	if len(req.Audio) == 0 {
		return nil, ErrEmptyAudio
	}
	if len(req.Audio) < MinAudioBytes {
		return nil, ErrAudioTooShort
	}

	ctx, cancel := o.withDeadline(ctx)
	defer cancel()

	format := stt.ExtensionFromMIME(req.MIMEType)
	userText, err := o.stt.Transcribe(ctx, req.Audio, format)
	if err != nil {
		return nil, err
	}

	o.logger.Debug("transcript received",
		"device", req.DeviceID,
		"format", format,
		"chars", len(userText),
	)

	return o.finish(ctx, req.DeviceID, userText)
}

// Text runs the respond-synthesize pipeline on typed input.
func (o *Orchestrator) Text(ctx context.Context, req TextRequest) (*Result, error) {
	if req.Text == "" {
		return nil, ErrEmptyText
	}

	ctx, cancel := o.withDeadline(ctx)
	defer cancel()

	return o.finish(ctx, req.DeviceID, req.Text)
}

// Reset clears the device's conversation history.
func (o *Orchestrator) Reset(deviceID string) {
	o.store.Reset(deviceID)
	o.logger.Info("conversation reset", "device", deviceID)
}

// finish is the common suffix of both flows: record the user turn,
// resolve a reply (canned or model-generated), record it, then
// synthesize and persist the audio.
func (o *Orchestrator) finish(ctx context.Context, deviceID, userText string) (*Result, error) {
	reply, err := o.converse(ctx, deviceID, userText)
	if err != nil {
		return nil, err
	}

	audio, err := o.tts.Synthesize(ctx, reply)
	if err != nil {
		return nil, err
	}

	url, err := o.sink.Store(audio.Audio)
	if err != nil {
		return nil, err
	}

	o.logger.Info("pipeline complete",
		"device", deviceID,
		"user_chars", len(userText),
		"reply_chars", len(reply),
		"audio_bytes", len(audio.Audio),
	)

	return &Result{
		UserText:      userText,
		AssistantText: reply,
		AudioURL:      url,
		DeviceID:      deviceID,
	}, nil
}

// converse holds the device's session lock across the whole
// append-detect-respond-append window so concurrent requests for one
// device cannot interleave turns.
func (o *Orchestrator) converse(ctx context.Context, deviceID, userText string) (string, error) {
	unlock := o.store.Lock(deviceID)
	defer unlock()

	o.store.Append(deviceID, convo.RoleUser, userText)

	// Deterministic override: the creator question never reaches the model.
	if answer, ok := intent.Detect(userText); ok {
		o.store.Append(deviceID, convo.RoleAssistant, answer)
		o.logger.Debug("intent override", "device", deviceID)
		return answer, nil
	}

	history := o.store.History(deviceID)
	messages := make([]chat.Message, 0, len(history)+1)
	messages = append(messages, chat.NewSystemMessage(chat.SystemPrompt))
	for _, turn := range history {
		messages = append(messages, chat.Message{Role: chat.Role(turn.Role), Content: turn.Content})
	}

	completion, err := o.chat.Complete(ctx, messages)
	if err != nil {
		return "", err
	}

	reply := completion.Content
	o.store.Append(deviceID, convo.RoleAssistant, reply)
	return reply, nil
}

// withDeadline derives the per-run context. Cancellation propagates to
// every stage client, so not-yet-issued calls are skipped and in-flight
// HTTP calls are abandoned.
func (o *Orchestrator) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.timeout)
}
