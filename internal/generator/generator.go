// Package generator abstracts the external text-generation capability.
// The workflow depends only on the TextGenerator interface; concrete
// backends (OpenAI-compatible, Anthropic) and the transport retry policy
// live here, outside the workflow core.
package generator

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// TextGenerator produces free text for a prompt. Implementations may
// block on network I/O and must honor ctx cancellation. An empty result
// with a nil error is treated by callers as a failure.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a plain function to TextGenerator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// ErrEmptyCompletion is returned when a backend answers with no usable
// text.
var ErrEmptyCompletion = errors.New("generator: empty completion")

// Settings configures a concrete backend.
type Settings struct {
	Provider    string        `yaml:"provider"` // "openai" or "anthropic"
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url,omitempty"`
	MaxTokens   int           `yaml:"max_tokens,omitempty"`
	Temperature float64       `yaml:"temperature,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
}

// systemPrompt frames every request; the original used a single writing
// assistant persona for all three stages.
const systemPrompt = "你是一位专业的写作助手，擅长生成专业、清晰、连贯的内容。"

// New builds a backend for the configured provider.
func New(settings Settings) (TextGenerator, error) {
	if settings.Model == "" {
		return nil, errors.New("generator model is required")
	}
	switch settings.Provider {
	case "", "openai", "deepseek":
		return newOpenAI(settings)
	case "anthropic":
		return newAnthropic(settings)
	default:
		return nil, fmt.Errorf("unsupported generator provider %q", settings.Provider)
	}
}
