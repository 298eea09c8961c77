package insight

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/fyrsmithlabs/gridpulse/internal/config"
)

// Completer produces a text completion for a prompt. It exists so the
// service can be tested without a live provider.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// openAICompleter adapts a langchaingo OpenAI model to Completer.
type openAICompleter struct {
	llm *openai.LLM
}

// NewCompleter builds a Completer against the configured provider.
//
// The client also accepts any OpenAI-compatible endpoint via BaseURL.
// An empty API key gets a placeholder so construction never fails at
// startup; the first Ask will surface the provider's auth error as a
// degraded answer instead.
func NewCompleter(cfg config.LLMConfig) (Completer, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = "placeholder"
	}

	opts := []openai.Option{
		openai.WithToken(apiKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, openai.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating llm client: %w", err)
	}

	return &openAICompleter{llm: llm}, nil
}

func (c *openAICompleter) Complete(ctx context.Context, prompt string) (string, error) {
	// Low temperature keeps the analysis grounded in the table.
	return llms.GenerateFromSinglePrompt(ctx, c.llm, prompt, llms.WithTemperature(0.1))
}
