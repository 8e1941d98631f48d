package speech

import (
	"strings"

	"github.com/mealvoice/server/internal/config"
)

const (
	ModeMock   = "mock"
	ModeOpenAI = "openai"
)

// NewTranscriber builds the transcriber selected by SPEECH_MODE. Unknown
// or empty modes fall back to the mock.
func NewTranscriber(cfg *config.Config) Transcriber {
	mode := strings.ToLower(strings.TrimSpace(cfg.SpeechMode))
	switch mode {
	case ModeOpenAI:
		return NewOpenAITranscriber(cfg)
	default:
		return NewMockTranscriber()
	}
}
