package service

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"github.com/sistira/sistira/config"
	"google.golang.org/api/option"
)

// GenerateOptions bound a single completion call.
type GenerateOptions struct {
	Temperature     float32
	MaxOutputTokens int32
}

// TextGenerator is the black-box text-completion capability the
// correction engine grades against. Implementations may fail with
// transport or quota errors; the returned text is free-form.
type TextGenerator interface {
	Complete(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

type geminiTextGenerator struct {
	client    *genai.Client
	modelName string
}

func NewGeminiTextGenerator(cfg *config.Config) (TextGenerator, error) {
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. Text generation will be non-functional.")
		return &geminiTextGenerator{client: nil, modelName: cfg.GeminiModel}, nil
	}
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	return &geminiTextGenerator{client: client, modelName: cfg.GeminiModel}, nil
}

func (g *geminiTextGenerator) Complete(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	if g.client == nil {
		return "", fmt.Errorf("gemini client not initialized")
	}

	model := g.client.GenerativeModel(g.modelName)
	model.SetTemperature(opts.Temperature)
	if opts.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(opts.MaxOutputTokens)
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		log.Error().Err(err).Str("model", g.modelName).Msg("Gemini API error")
		return "", err
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		log.Warn().Msg("Gemini returned no candidates or parts in response.")
		return "", fmt.Errorf("gemini returned no content")
	}

	fullResponseText := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			fullResponseText += string(txt)
		}
	}
	if fullResponseText == "" {
		return "", fmt.Errorf("gemini returned no text content")
	}
	return fullResponseText, nil
}
