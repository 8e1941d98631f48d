package speech

import (
	"context"
	"encoding/json"
	"fmt"
)

// MockTranscriber returns a canned transcript for local development.
type MockTranscriber struct{}

func NewMockTranscriber() *MockTranscriber {
	return &MockTranscriber{}
}

func (t *MockTranscriber) Transcribe(ctx context.Context, audio []byte, format string) (Result, error) {
	_ = ctx

	text := fmt.Sprintf("mock transcript of a %d byte %s clip", len(audio), format)
	raw, _ := json.Marshal(map[string]string{"text": text})
	return Result{Text: text, Raw: raw}, nil
}
