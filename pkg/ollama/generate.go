package ollama

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ollama/ollama/api"
	"golang.org/x/time/rate"

	"github.com/wing0907/lawai-engine/engine/domain"
)

// Strategy is one way of turning a system/user prompt pair into text.
// The generator walks its strategies in order and keeps the first that
// succeeds; chat-template models prefer the chat endpoint, base models
// only answer the plain one.
type Strategy interface {
	Name() string
	Generate(ctx context.Context, system, user string, maxTokens int) (string, error)
}

// Generator runs an ordered strategy chain against one model.
type Generator struct {
	strategies []Strategy
	limiter    *rate.Limiter
}

// NewGenerator builds the default chat-then-plain chain for a model.
// rps <= 0 disables rate limiting.
func NewGenerator(client *api.Client, model string, rps float64) *Generator {
	return NewGeneratorWith(rps,
		&chatStrategy{client: client, model: model},
		&plainStrategy{client: client, model: model},
	)
}

// NewGeneratorWith builds a generator over an explicit strategy chain.
func NewGeneratorWith(rps float64, strategies ...Strategy) *Generator {
	var lim *rate.Limiter
	if rps > 0 {
		lim = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return &Generator{strategies: strategies, limiter: lim}
}

// Generate tries each strategy in order and returns the first non-empty
// answer. Every failure is kept, typed by strategy, and joined under
// ErrGenerationExhausted when the whole chain fails.
func (g *Generator) Generate(ctx context.Context, system, user string, maxTokens int) (string, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}
	var failures []error
	for _, s := range g.strategies {
		text, err := s.Generate(ctx, system, user, maxTokens)
		if err != nil {
			failures = append(failures, &domain.StrategyError{Strategy: s.Name(), Err: err})
			continue
		}
		if strings.TrimSpace(text) == "" {
			failures = append(failures, &domain.StrategyError{
				Strategy: s.Name(), Err: errors.New("empty completion"),
			})
			continue
		}
		return strings.TrimSpace(text), nil
	}
	failures = append([]error{domain.ErrGenerationExhausted}, failures...)
	return "", errors.Join(failures...)
}

type chatStrategy struct {
	client *api.Client
	model  string
}

func (s *chatStrategy) Name() string { return "chat" }

func (s *chatStrategy) Generate(ctx context.Context, system, user string, maxTokens int) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model: s.model,
		Messages: []api.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream:  &stream,
		Options: genOptions(maxTokens),
	}
	var b strings.Builder
	err := s.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		b.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}
	return b.String(), nil
}

// plainStrategy flattens the prompt the way chat-template-less models
// expect: system, blank line, user, trailing blank line.
type plainStrategy struct {
	client *api.Client
	model  string
}

func (s *plainStrategy) Name() string { return "plain" }

func (s *plainStrategy) Generate(ctx context.Context, system, user string, maxTokens int) (string, error) {
	stream := false
	req := &api.GenerateRequest{
		Model:   s.model,
		Prompt:  system + "\n\n" + user + "\n\n",
		Stream:  &stream,
		Options: genOptions(maxTokens),
	}
	var b strings.Builder
	err := s.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		b.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return b.String(), nil
}

func genOptions(maxTokens int) map[string]any {
	return map[string]any{
		"temperature": 0.0,
		"num_predict": maxTokens,
	}
}
