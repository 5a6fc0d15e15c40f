// Package llm wraps the chat-style text generation backends behind one interface.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"diderot/internal/config"
	"diderot/internal/core"
	"diderot/internal/logger"
	"diderot/internal/metrics"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a chat prompt.
type Message struct {
	Role    string
	Content string
}

// Request is a single chat completion request.
type Request struct {
	Stage       string    // Pipeline stage issuing the call, used for logs and metrics
	Model       string    // Optional override of the client's model
	Messages    []Message // System and user turns
	Temperature float64
	MaxTokens   int
}

// TextGenerator produces a single text completion for a request.
type TextGenerator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a function to TextGenerator.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// ErrEmptyResponse is returned when a backend answers with no text.
var ErrEmptyResponse = errors.New("empty response from model")

// Prompt builds a request with a system instruction and a user message.
func Prompt(stage, system, user string, temperature float64, maxTokens int) Request {
	msgs := []Message{{Role: RoleSystem, Content: system}}
	if user != "" {
		msgs = append(msgs, Message{Role: RoleUser, Content: user})
	}
	return Request{
		Stage:       stage,
		Messages:    msgs,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}
}

// splitSystem separates system turns from the conversation for backends that take
// the system instruction out of band.
func splitSystem(msgs []Message) (string, []Message) {
	var system []string
	rest := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		rest = append(rest, m)
	}
	return strings.Join(system, "\n\n"), rest
}

// retryDelay is the base wait between retried calls.
var retryDelay = 2 * time.Second

// chain wraps base so every attempt, retries included, is paced and bounded.
func chain(base TextGenerator, cfg *config.Config, m *metrics.Metrics) TextGenerator {
	gen := WithTimeout(base, cfg.AITimeout())
	gen = WithRateLimit(gen, cfg.AI.RequestsPerMinute)
	gen = WithRetry(gen, cfg.AI.MaxRetries, retryDelay)
	return WithMetrics(gen, m)
}

// NewClient builds the configured backend wrapped with timeout, retries, pacing and metrics.
func NewClient(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (TextGenerator, error) {
	key := cfg.APIKey()
	if key == "" {
		return nil, fmt.Errorf("%w: %s API key is required", core.ErrConfiguration, cfg.AI.Provider)
	}
	if cfg.AI.Model == "" {
		return nil, fmt.Errorf("%w: model identifier is required", core.ErrConfiguration)
	}

	var (
		base TextGenerator
		err  error
	)
	switch cfg.AI.Provider {
	case "openai", "":
		base = NewOpenAIClient(key, cfg.AI.Model, cfg.AI.OpenAI.BaseURL)
	case "gemini":
		base, err = NewGeminiClient(ctx, key, cfg.AI.Model)
	case "anthropic":
		base = NewAnthropicClient(key, cfg.AI.Model)
	default:
		return nil, fmt.Errorf("%w: unsupported AI provider %q", core.ErrConfiguration, cfg.AI.Provider)
	}
	if err != nil {
		return nil, err
	}

	gen := chain(base, cfg, m)

	logger.Info("Text generation client ready", "provider", cfg.AI.Provider, "model", cfg.AI.Model)
	return gen, nil
}
