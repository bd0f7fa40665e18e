package generator

import (
	"context"
	"errors"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIGenerator implements TextGenerator using the official openai-go
// SDK (chat completions). DeepSeek and other OpenAI-compatible endpoints
// are reached through BaseURL.
type OpenAIGenerator struct {
	client      openai.Client
	model       string
	maxTokens   int
	temperature float64
}

func newOpenAI(settings Settings) (*OpenAIGenerator, error) {
	if settings.APIKey == "" {
		return nil, errors.New("openai api key missing; provide generator.api_key")
	}
	opts := []option.RequestOption{option.WithAPIKey(settings.APIKey)}
	if settings.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(settings.BaseURL))
	}
	if settings.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(settings.Timeout))
	}
	return &OpenAIGenerator{
		client:      openai.NewClient(opts...),
		model:       settings.Model,
		maxTokens:   settings.MaxTokens,
		temperature: settings.Temperature,
	}, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(prompt),
		},
	}
	if g.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(g.maxTokens))
	}
	if g.temperature > 0 {
		params.Temperature = openai.Float(g.temperature)
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}
