package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/mealvoice/server/internal/config"
)

// OpenAITranscriber uploads clips to an OpenAI-compatible
// audio/transcriptions endpoint as multipart form data.
type OpenAITranscriber struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewOpenAITranscriber(cfg *config.Config) *OpenAITranscriber {
	timeoutSeconds := cfg.SpeechTimeoutSeconds
	if timeoutSeconds <= 0 {
		timeoutSeconds = 30
	}

	baseURL := strings.TrimRight(cfg.OpenAIBaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	model := cfg.SpeechModel
	if model == "" {
		model = "whisper-1"
	}

	return &OpenAITranscriber{
		apiKey:  cfg.OpenAIAPIKey,
		model:   model,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
	}
}

func (t *OpenAITranscriber) Transcribe(ctx context.Context, audio []byte, format string) (Result, error) {
	if format == "" {
		format = "webm"
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	filePart, err := writer.CreateFormFile("file", "audio."+format)
	if err != nil {
		return Result{}, err
	}
	if _, err := filePart.Write(audio); err != nil {
		return Result{}, err
	}
	if err := writer.WriteField("model", t.model); err != nil {
		return Result{}, err
	}
	if err := writer.Close(); err != nil {
		return Result{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return Result{}, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+t.apiKey)
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		return Result{}, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, &TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, &TransportError{
			Status: resp.StatusCode,
			Body:   string(responseBody),
		}
	}

	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(responseBody, &parsed); err != nil {
		return Result{}, &TransportError{
			Err: fmt.Errorf("decode transcription response: %w", err),
		}
	}

	return Result{
		Text: parsed.Text,
		Raw:  json.RawMessage(responseBody),
	}, nil
}
