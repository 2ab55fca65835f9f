package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ntquoc/robot5320/pkg/chat"
	"github.com/ntquoc/robot5320/pkg/convo"
	"github.com/ntquoc/robot5320/pkg/intent"
	"github.com/ntquoc/robot5320/pkg/pipeline"
	"github.com/ntquoc/robot5320/pkg/stt"
	"github.com/ntquoc/robot5320/pkg/tts"
)

func newTestServer(t *testing.T) (*Server, *convo.Store, *chat.Mock) {
	t.Helper()

	audioDir := t.TempDir()
	sink, err := pipeline.NewSink(audioDir, "opus")
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}

	store := convo.NewStore()
	chatMock := chat.NewMock("Chào bạn!")
	orch := pipeline.New(pipeline.Deps{
		Store:       store,
		Transcriber: stt.NewMock("hello"),
		Completer:   chatMock,
		Synthesizer: tts.NewMock(),
		Sink:        sink,
		Timeout:     5 * time.Second,
	})

	return New(Options{Pipeline: orch, AudioDir: audioDir}), store, chatMock
}

func voiceRequest(t *testing.T, audio []byte, mime string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(map[string][]string)
	h["Content-Disposition"] = []string{`form-data; name="audio"; filename="clip.webm"`}
	h["Content-Type"] = []string{mime}
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	part.Write(audio)
	w.Close()
	return &buf, w.FormDataContentType()
}

func decodeJSON(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.NewDecoder(body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestRootMarker(t *testing.T) {
	s, _, _ := newTestServer(t)

	resp, err := s.App().Test(httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "backend OK") {
		t.Errorf("unexpected marker: %q", body)
	}
}

func TestVoiceEndpoint(t *testing.T) {
	t.Run("missing audio", func(t *testing.T) {
		s, store, _ := newTestServer(t)

		req := httptest.NewRequest("POST", "/api/voice", strings.NewReader(""))
		resp, err := s.App().Test(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != 400 {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
		if store.Len("web") != 0 {
			t.Error("missing audio must not mutate the store")
		}
	})

	t.Run("audio too short", func(t *testing.T) {
		s, _, _ := newTestServer(t)

		buf, contentType := voiceRequest(t, make([]byte, 100), "audio/webm")
		req := httptest.NewRequest("POST", "/api/voice", buf)
		req.Header.Set("Content-Type", contentType)

		resp, err := s.App().Test(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != 400 {
			t.Errorf("domain error must map to 400, got %d", resp.StatusCode)
		}
		out := decodeJSON(t, resp.Body)
		if out["error"] == "" {
			t.Error("expected error message")
		}
	})

	t.Run("valid clip", func(t *testing.T) {
		s, _, _ := newTestServer(t)

		buf, contentType := voiceRequest(t, make([]byte, 4096), "audio/webm")
		req := httptest.NewRequest("POST", "/api/voice", buf)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("x-device-id", "speaker-9")

		resp, err := s.App().Test(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != 200 {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		out := decodeJSON(t, resp.Body)
		if out["user_text"] != "hello" {
			t.Errorf("unexpected user_text: %v", out["user_text"])
		}
		if out["assistant_text"] != "Chào bạn!" {
			t.Errorf("unexpected assistant_text: %v", out["assistant_text"])
		}
		if url, _ := out["tts_url"].(string); !strings.HasPrefix(url, "/tts/") {
			t.Errorf("unexpected tts_url: %v", out["tts_url"])
		}
		if out["device_id"] != "speaker-9" {
			t.Errorf("unexpected device_id: %v", out["device_id"])
		}
	})
}

func TestTextEndpoint(t *testing.T) {
	t.Run("missing text", func(t *testing.T) {
		s, _, _ := newTestServer(t)

		req := httptest.NewRequest("POST", "/api/text", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.App().Test(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != 400 {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("defaults device to web", func(t *testing.T) {
		s, _, _ := newTestServer(t)

		req := httptest.NewRequest("POST", "/api/text", strings.NewReader(`{"text":"xin chào"}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.App().Test(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != 200 {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		out := decodeJSON(t, resp.Body)
		if out["user_text"] != "xin chào" {
			t.Errorf("unexpected user_text: %v", out["user_text"])
		}
		if out["device_id"] != convo.DefaultDevice {
			t.Errorf("expected device_id web, got %v", out["device_id"])
		}
	})

	t.Run("creator question bypasses chat", func(t *testing.T) {
		s, _, chatMock := newTestServer(t)

		req := httptest.NewRequest("POST", "/api/text", strings.NewReader(`{"text":"who made you?"}`))
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.App().Test(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		out := decodeJSON(t, resp.Body)
		if out["assistant_text"] != intent.CreatorAnswer {
			t.Errorf("expected canned answer, got %v", out["assistant_text"])
		}
		if chatMock.CallCount("Complete") != 0 {
			t.Error("chat must not be called for the creator question")
		}
	})
}

func TestResetEndpoint(t *testing.T) {
	s, store, _ := newTestServer(t)

	store.Append("speaker-1", convo.RoleUser, "hello")

	req := httptest.NewRequest("POST", "/api/reset", nil)
	req.Header.Set("x-device-id", "speaker-1")

	resp, err := s.App().Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	out := decodeJSON(t, resp.Body)
	if out["ok"] != true {
		t.Errorf("expected ok true, got %v", out["ok"])
	}
	if store.Len("speaker-1") != 0 {
		t.Error("expected empty history after reset")
	}
}

func TestServedAudioIsRetrievable(t *testing.T) {
	s, _, _ := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/text", strings.NewReader(`{"text":"xin chào"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.App().Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	out := decodeJSON(t, resp.Body)
	url, _ := out["tts_url"].(string)

	audioResp, err := s.App().Test(httptest.NewRequest("GET", url, nil))
	if err != nil {
		t.Fatalf("fetch artifact: %v", err)
	}
	if audioResp.StatusCode != 200 {
		t.Errorf("expected artifact to be servable, got %d", audioResp.StatusCode)
	}
	data, _ := io.ReadAll(audioResp.Body)
	if len(data) == 0 {
		t.Error("expected artifact bytes")
	}
}

func TestUpstreamErrorIs500(t *testing.T) {
	audioDir := t.TempDir()
	sink, _ := pipeline.NewSink(audioDir, "opus")
	orch := pipeline.New(pipeline.Deps{
		Store:       convo.NewStore(),
		Transcriber: stt.NewMock("hello"),
		Completer:   chat.WithError(&chat.APIError{StatusCode: 429, Message: "quota"}),
		Synthesizer: tts.NewMock(),
		Sink:        sink,
	})
	s := New(Options{Pipeline: orch, AudioDir: audioDir})

	req := httptest.NewRequest("POST", "/api/text", strings.NewReader(`{"text":"hi"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.App().Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != 500 {
		t.Errorf("upstream failure must map to 500, got %d", resp.StatusCode)
	}
	out := decodeJSON(t, resp.Body)
	if msg, _ := out["error"].(string); !strings.Contains(msg, "quota") {
		t.Errorf("expected underlying message surfaced, got %v", out["error"])
	}
}
