package llm

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"news-quiz/config"
)

// Request is a single chat-style completion request: one system instruction
// and one user message.
type Request struct {
	Model      string
	System     string
	User       string
	JSONOutput bool
}

type TokenUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
	TotalTokens  int64 `json:"total_tokens"`
}

// Response carries the model's free text output.
type Response struct {
	Text      string
	Model     string
	Usage     TokenUsage
	LatencyMs int64
}

// Completer sends exactly one request to a language model endpoint.
// Implementations must not retry.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, req Request) (*Response, error)

func (f CompleterFunc) Complete(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

// NewFromConfig builds the configured backend. API keys are read from the
// environment.
func NewFromConfig(ctx context.Context, cfg config.LLMConfig, httpClient *http.Client) (Completer, error) {
	switch cfg.Provider {
	case "google":
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY environment variable is not set")
		}
		return NewGeminiCompleter(ctx, apiKey)
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		return NewOpenAICompleter(OpenAIConfig{
			APIKey:  apiKey,
			BaseURL: cfg.BaseURL,
		}, httpClient), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

func since(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
