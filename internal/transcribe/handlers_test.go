package transcribe

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mealvoice/server/internal/blob"
	"github.com/mealvoice/server/internal/speech"
)

type stubTranscriber struct {
	result speech.Result
	err    error
	calls  int
	audio  []byte
	format string
}

func (s *stubTranscriber) Transcribe(ctx context.Context, audio []byte, format string) (speech.Result, error) {
	s.calls++
	s.audio = audio
	s.format = format
	return s.result, s.err
}

func postTranscribe(t *testing.T, service *Service, body string) *httptest.ResponseRecorder {
	t.Helper()
	handler := NewHandler(service)
	req := httptest.NewRequest(http.MethodPost, "/v1/transcribe", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.HandleTranscribe(rec, req)
	return rec
}

func TestHandleTranscribePassesProviderJSONThrough(t *testing.T) {
	raw := json.RawMessage(`{"text":"two eggs and toast","duration":3.1}`)
	stub := &stubTranscriber{result: speech.Result{Text: "two eggs and toast", Raw: raw}}
	service := NewService(stub, nil, 0, nil)

	audio := base64.StdEncoding.EncodeToString([]byte("clip-bytes"))
	rec := postTranscribe(t, service, fmt.Sprintf(`{"audio": %q, "format": "m4a"}`, audio))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if rec.Body.String() != string(raw) {
		t.Errorf("body = %s, want provider JSON verbatim", rec.Body.String())
	}
	if string(stub.audio) != "clip-bytes" {
		t.Errorf("provider received %q", stub.audio)
	}
	if stub.format != "m4a" {
		t.Errorf("format = %q", stub.format)
	}
}

func TestHandleTranscribeDefaultsFormatToWebm(t *testing.T) {
	stub := &stubTranscriber{result: speech.Result{Text: "oatmeal"}}
	service := NewService(stub, nil, 0, nil)

	audio := base64.StdEncoding.EncodeToString([]byte("clip"))
	rec := postTranscribe(t, service, fmt.Sprintf(`{"audio": %q}`, audio))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if stub.format != "webm" {
		t.Errorf("format = %q, want webm", stub.format)
	}
}

func TestHandleTranscribeBadBase64FailsBeforeProviderCall(t *testing.T) {
	stub := &stubTranscriber{}
	service := NewService(stub, nil, 0, nil)

	rec := postTranscribe(t, service, `{"audio": "not-base64!!!", "format": "webm"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid_audio") {
		t.Errorf("body = %s", rec.Body.String())
	}
	if stub.calls != 0 {
		t.Errorf("provider called %d times, want 0", stub.calls)
	}
}

func TestHandleTranscribeEmptyAudioIs400(t *testing.T) {
	service := NewService(&stubTranscriber{}, nil, 0, nil)

	rec := postTranscribe(t, service, `{"audio": "", "format": "webm"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleTranscribeOversizeClipIs413(t *testing.T) {
	stub := &stubTranscriber{}
	service := NewService(stub, nil, 8, nil)

	audio := base64.StdEncoding.EncodeToString([]byte("way more than eight bytes"))
	rec := postTranscribe(t, service, fmt.Sprintf(`{"audio": %q}`, audio))

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
	if stub.calls != 0 {
		t.Errorf("provider called %d times, want 0", stub.calls)
	}
}

func TestHandleTranscribeRelaysUpstreamStatusAndBody(t *testing.T) {
	stub := &stubTranscriber{err: &speech.TransportError{Status: 429, Body: "rate limited"}}
	service := NewService(stub, nil, 0, nil)

	audio := base64.StdEncoding.EncodeToString([]byte("clip"))
	rec := postTranscribe(t, service, fmt.Sprintf(`{"audio": %q}`, audio))

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "rate limited") {
		t.Errorf("body = %s, want upstream body relayed", rec.Body.String())
	}
}

func TestHandleTranscribeNetworkFailureIs502(t *testing.T) {
	stub := &stubTranscriber{err: &speech.TransportError{Err: fmt.Errorf("dial tcp: timeout")}}
	service := NewService(stub, nil, 0, nil)

	audio := base64.StdEncoding.EncodeToString([]byte("clip"))
	rec := postTranscribe(t, service, fmt.Sprintf(`{"audio": %q}`, audio))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "upstream_unavailable") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestServiceArchivesClipBestEffort(t *testing.T) {
	dir := t.TempDir()
	store, err := blob.NewLocalStore(dir)
	if err != nil {
		t.Fatal(err)
	}

	stub := &stubTranscriber{result: speech.Result{Text: "soup"}}
	service := NewService(stub, store, 0, nil)

	if _, err := service.Transcribe(context.Background(), base64.StdEncoding.EncodeToString([]byte("clip")), "webm"); err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
}
