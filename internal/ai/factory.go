package ai

import (
	"context"
	"strings"

	"github.com/mealvoice/server/internal/config"
)

const (
	ModeMock   = "mock"
	ModeOpenAI = "openai"
	ModeGemini = "gemini"
)

// NewProvider builds the estimation provider selected by AI_MODE.
// Unknown or empty modes fall back to the mock.
func NewProvider(ctx context.Context, cfg *config.Config) (Provider, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.AIMode))
	if mode == "" {
		mode = ModeMock
	}

	switch mode {
	case ModeOpenAI:
		return NewOpenAIProvider(cfg), nil
	case ModeGemini:
		return NewGeminiProvider(ctx, cfg)
	default:
		return NewMockProvider(), nil
	}
}
