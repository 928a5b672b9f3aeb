package engine

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
)

// LLM is a named chat-completion client. It satisfies discovery.Completer.
type LLM struct {
	name        string
	client      *llm.Client
	temperature float64
	maxTokens   int
}

// LLMOptions configures a single model endpoint.
type LLMOptions struct {
	APIBase      string
	APIKey       string
	FallbackKeys []string
	Model        string
	Temperature  float64
	MaxTokens    int
}

// NewLLM builds a go-kit llm client for one model. name labels its error logs.
func NewLLM(name string, o LLMOptions) *LLM {
	client := llm.NewClient(o.APIBase, o.APIKey, o.Model,
		llm.WithFallbackKeys(o.FallbackKeys),
		llm.WithMaxTokens(o.MaxTokens),
		llm.WithTemperature(o.Temperature),
		llm.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
	)
	return &LLM{name: name, client: client, temperature: o.Temperature, maxTokens: o.MaxTokens}
}

// Complete sends a system+user prompt pair and returns the response with code fences removed.
func (l *LLM) Complete(ctx context.Context, system, prompt string) (string, error) {
	metrics.LLMCalls.Add(1)
	resp, err := l.client.Complete(ctx, system, prompt,
		llm.WithChatTemperature(l.temperature),
		llm.WithChatMaxTokens(l.maxTokens),
	)
	if err != nil {
		metrics.LLMErrors.Add(1)
		slog.Warn("llm call failed", slog.String("model", l.name), slog.Any("error", err))
		return "", err
	}
	return stripFences(resp), nil
}

// stripFences removes markdown code fences from LLM output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
