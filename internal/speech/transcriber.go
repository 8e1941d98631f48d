// Package speech abstracts the speech-to-text backend used for voice
// meal logging.
package speech

import (
	"context"
	"encoding/json"
	"fmt"
)

// Result is the provider's transcription payload. Raw carries the
// provider JSON verbatim for pass-through responses; Text is the one
// field every provider must supply.
type Result struct {
	Text string
	Raw  json.RawMessage
}

// Transcriber converts an audio clip into text. Transport failures are
// returned as *TransportError so callers can surface the upstream status
// and body verbatim.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, format string) (Result, error)
}

// TransportError reports a failed exchange with the transcription
// provider. Status is 0 when no response was received.
type TransportError struct {
	Status int
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("transcription upstream returned status %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("transcription request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
