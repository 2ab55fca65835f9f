package config

import (
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	t.Run("missing API key", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		if _, err := Load(); err == nil {
			t.Error("expected error without OPENAI_API_KEY")
		}
	})

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-test")
		t.Setenv("PORT", "")
		t.Setenv("AUDIO_DIR", "")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Port != DefaultPort {
			t.Errorf("expected port %s, got %s", DefaultPort, cfg.Port)
		}
		if cfg.AudioDir != DefaultAudioDir {
			t.Errorf("expected audio dir %s, got %s", DefaultAudioDir, cfg.AudioDir)
		}
		if cfg.PipelineTimeout != DefaultTimeout {
			t.Errorf("expected timeout %v, got %v", DefaultTimeout, cfg.PipelineTimeout)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-test")
		t.Setenv("PORT", "8080")
		t.Setenv("PIPELINE_TIMEOUT", "15s")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Port != "8080" {
			t.Errorf("expected port 8080, got %s", cfg.Port)
		}
		if cfg.PipelineTimeout != 15*time.Second {
			t.Errorf("expected 15s timeout, got %v", cfg.PipelineTimeout)
		}
	})
}

func TestEnvDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "bogus")
	if d := EnvDuration("TEST_DURATION", time.Second); d != time.Second {
		t.Errorf("expected fallback on bad value, got %v", d)
	}
}
