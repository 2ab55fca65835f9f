package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClientComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected /chat/completions, got %s", r.URL.Path)
		}
		if r.Method != "POST" {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("expected Bearer test-key, got %s", auth)
		}

		var reqBody struct {
			Model    string    `json:"model"`
			Messages []Message `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if reqBody.Model != "gpt-4.1-mini" {
			t.Errorf("expected gpt-4.1-mini, got %s", reqBody.Model)
		}
		if len(reqBody.Messages) != 2 || reqBody.Messages[0].Role != RoleSystem {
			t.Errorf("expected system message first, got %v", reqBody.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":    "test-id",
			"model": "gpt-4.1-mini",
			"choices": []map[string]interface{}{
				{
					"message":       map[string]string{"role": "assistant", "content": "Chào bạn!"},
					"finish_reason": "stop",
				},
			},
			"usage": map[string]int{
				"prompt_tokens":     12,
				"completion_tokens": 4,
				"total_tokens":      16,
			},
		})
	}))
	defer server.Close()

	client, err := NewClient(
		WithBaseURL(server.URL),
		WithAPIKey("test-key"),
	)
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	defer client.Close()

	resp, err := client.Complete(context.Background(), []Message{
		NewSystemMessage(SystemPrompt),
		NewUserMessage("xin chào"),
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	if resp.Content != "Chào bạn!" {
		t.Errorf("unexpected content: %s", resp.Content)
	}
	if resp.Usage.TotalTokens != 16 {
		t.Errorf("expected 16 tokens, got %d", resp.Usage.TotalTokens)
	}
}

func TestClientCompleteEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"model": "gpt-4.1-mini",
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": ""}},
			},
		})
	}))
	defer server.Close()

	client, _ := NewClient(WithBaseURL(server.URL), WithAPIKey("test-key"))
	defer client.Close()

	resp, err := client.Complete(context.Background(), []Message{NewUserMessage("hi")})
	if err != nil {
		t.Fatalf("empty content must not be an error: %v", err)
	}
	if resp.Content != "" {
		t.Errorf("expected empty content, got %q", resp.Content)
	}
}

func TestClientCompleteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{
				"message": "Incorrect API key provided",
				"type":    "invalid_request_error",
				"code":    "invalid_api_key",
			},
		})
	}))
	defer server.Close()

	client, _ := NewClient(WithBaseURL(server.URL), WithAPIKey("bad-key"))
	defer client.Close()

	_, err := client.Complete(context.Background(), []Message{NewUserMessage("hi")})
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != 401 {
		t.Errorf("expected 401, got %d", apiErr.StatusCode)
	}
	if apiErr.Code != "invalid_api_key" {
		t.Errorf("expected invalid_api_key, got %s", apiErr.Code)
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"model": "gpt-4.1-mini",
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "ok"}},
			},
		})
	}))
	defer server.Close()

	client, _ := NewClient(
		WithBaseURL(server.URL),
		WithAPIKey("test-key"),
		WithRetry(3, time.Millisecond),
	)
	defer client.Close()

	resp, err := client.Complete(context.Background(), []Message{NewUserMessage("hi")})
	if err != nil {
		t.Fatalf("expected success after retries: %v", err)
	}
	if resp.Content != "ok" {
		t.Errorf("unexpected content: %s", resp.Content)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient(); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
}
