package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/ntquoc/robot5320/internal/httpc"
)

const providerOpenAI = "openai"

// OpenAI implements Transcriber for the OpenAI transcription API.
type OpenAI struct {
	baseURL string
	config  *Config
	client  *http.Client
	logger  *slog.Logger
}

// NewOpenAI creates a new OpenAI transcription client.
func NewOpenAI(opts ...Option) (*OpenAI, error) {
	cfg := DefaultConfig()
	cfg.Apply(opts...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := cfg.HTTPClient
	if client == nil {
		client = httpc.NewClient(cfg.Timeout)
	}

	return &OpenAI{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		config:  cfg,
		client:  client,
		logger:  cfg.Logger.With("component", "stt.openai"),
	}, nil
}

// Transcribe uploads the clip and returns the transcript text.
// A missing text field in the response is returned as an empty string.
func (o *OpenAI) Transcribe(ctx context.Context, audio []byte, format string) (string, error) {
	start := time.Now()

	body, contentType, err := o.buildForm(audio, format)
	if err != nil {
		return "", WrapError(providerOpenAI, fmt.Errorf("build form: %w", err))
	}

	resp, err := o.doWithRetry(ctx, body, contentType)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", o.parseError(resp)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", WrapError(providerOpenAI, fmt.Errorf("decode response: %w", err))
	}

	o.logger.Debug("transcribed audio",
		"bytes", len(audio),
		"format", format,
		"chars", len(result.Text),
		"latency_ms", time.Since(start).Milliseconds(),
	)

	return result.Text, nil
}

// Health checks API connectivity and key validity.
func (o *OpenAI) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", o.baseURL+"/models", nil)
	if err != nil {
		return WrapError(providerOpenAI, err)
	}
	req.Header.Set("Authorization", "Bearer "+o.config.APIKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return WrapError(providerOpenAI, fmt.Errorf("health check: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return o.parseError(resp)
	}
	return nil
}

// Close releases resources.
func (o *OpenAI) Close() error {
	o.client.CloseIdleConnections()
	return nil
}

// buildForm assembles the multipart upload: model, language, and the
// clip named input.<format> so the API can pick a decoder.
func (o *OpenAI) buildForm(audio []byte, format string) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("model", o.config.Model); err != nil {
		return nil, "", err
	}
	if o.config.Language != "" {
		if err := w.WriteField("language", o.config.Language); err != nil {
			return nil, "", err
		}
	}

	part, err := w.CreateFormFile("file", "input."+format)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(audio); err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// doWithRetry performs the upload with retry on rate limits and 5xx.
func (o *OpenAI) doWithRetry(ctx context.Context, body []byte, contentType string) (*http.Response, error) {
	url := o.baseURL + "/audio/transcriptions"
	var lastErr error

	for attempt := 0; attempt <= o.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(o.config.RetryDelay * time.Duration(attempt)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
		if err != nil {
			return nil, WrapError(providerOpenAI, fmt.Errorf("create request: %w", err))
		}
		req.Header.Set("Authorization", "Bearer "+o.config.APIKey)
		req.Header.Set("Content-Type", contentType)

		resp, err := o.client.Do(req)
		if err != nil {
			lastErr = WrapError(providerOpenAI, err)
			continue
		}

		if resp.StatusCode == 429 || resp.StatusCode >= 500 {
			lastErr = o.parseError(resp)
			resp.Body.Close()
			o.logger.Warn("retrying transcription",
				"attempt", attempt+1,
				"status", resp.StatusCode,
			)
			continue
		}

		return resp, nil
	}

	return nil, lastErr
}

// parseError reads and parses an error response.
func (o *OpenAI) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    string `json:"code"`
		} `json:"error"`
	}

	message := string(body)
	code := ""
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
		code = errResp.Error.Code
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    message,
		Code:       code,
	}
}

// Verify OpenAI implements Transcriber at compile time.
var _ Transcriber = (*OpenAI)(nil)
