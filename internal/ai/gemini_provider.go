package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/mealvoice/server/internal/config"
	"github.com/mealvoice/server/internal/nutrition"
)

// GeminiProvider runs the estimation contract against Google Gemini.
type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiProvider(ctx context.Context, cfg *config.Config) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	modelName := cfg.GeminiModel
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(float32(cfg.AITemperature))
	if cfg.AIMaxOutputTokens > 0 {
		model.SetMaxOutputTokens(int32(cfg.AIMaxOutputTokens))
	}
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemContract)},
	}

	return &GeminiProvider{client: client, model: model}, nil
}

func (p *GeminiProvider) EstimateNutrition(ctx context.Context, mealText string) (nutrition.Response, error) {
	resp, err := p.model.GenerateContent(ctx, genai.Text(mealText))
	if err != nil {
		return nutrition.Response{}, &TransportError{Err: err}
	}

	content, err := extractText(resp)
	if err != nil {
		return nutrition.Response{}, &SchemaError{Err: err}
	}

	estimate, err := nutrition.Decode([]byte(content))
	if err != nil {
		return nutrition.Response{}, &SchemaError{Err: err, Raw: content}
	}
	return estimate, nil
}

// Close releases the underlying API client.
func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("response contains no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	content := strings.TrimSpace(sb.String())
	if content == "" {
		return "", fmt.Errorf("candidate contains no text parts")
	}
	return content, nil
}
