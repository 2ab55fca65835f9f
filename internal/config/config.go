// Package config provides environment-derived configuration for the
// robot5320 backend.
package config

import (
	"errors"
	"os"
	"time"
)

// Defaults for the HTTP server and pipeline.
const (
	DefaultPort     = "3000"
	DefaultAudioDir = "./tts"
	DefaultWebDir   = "./web"
	DefaultTimeout  = 60 * time.Second
)

// ErrMissingAPIKey is returned by Load when OPENAI_API_KEY is not set.
var ErrMissingAPIKey = errors.New("config: OPENAI_API_KEY environment variable is required")

// Config holds the full backend configuration.
type Config struct {
	// Port is the HTTP listen port.
	Port string

	// OpenAIKey authenticates the transcription, chat, and speech clients.
	OpenAIKey string

	// AudioDir is where synthesized audio artifacts are written.
	AudioDir string

	// WebDir is the directory of static web assets.
	WebDir string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// Model overrides. Empty means the client's default.
	ChatModel string
	STTModel  string
	TTSModel  string
	TTSVoice  string

	// PipelineTimeout bounds one full transcribe-respond-synthesize run.
	PipelineTimeout time.Duration
}

// Load builds a Config from the environment.
// It fails only when the OpenAI API key is absent; everything else
// falls back to a default.
func Load() (*Config, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, ErrMissingAPIKey
	}

	return &Config{
		Port:            Env("PORT", DefaultPort),
		OpenAIKey:       key,
		AudioDir:        Env("AUDIO_DIR", DefaultAudioDir),
		WebDir:          Env("WEB_DIR", DefaultWebDir),
		LogLevel:        Env("LOG_LEVEL", "info"),
		ChatModel:       os.Getenv("CHAT_MODEL"),
		STTModel:        os.Getenv("STT_MODEL"),
		TTSModel:        os.Getenv("TTS_MODEL"),
		TTSVoice:        os.Getenv("TTS_VOICE"),
		PipelineTimeout: EnvDuration("PIPELINE_TIMEOUT", DefaultTimeout),
	}, nil
}

// Env returns the value of the environment variable key.
// Falls back to the provided default if not set.
func Env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// EnvDuration returns the environment variable parsed as a duration.
// Falls back to the provided default if unset or unparsable.
func EnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
