package ai

import (
	"context"
	"strings"
	"time"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider is a chat-style model backend.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// Completer turns a single prompt into generated text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type CompleterFunc func(ctx context.Context, prompt string) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// ProviderCompleter sends each prompt as one user message and bounds every
// call by Timeout.
type ProviderCompleter struct {
	Name     string
	Provider Provider
	Timeout  time.Duration
}

func NewProviderCompleter(name string, p Provider, timeout time.Duration) *ProviderCompleter {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ProviderCompleter{Name: name, Provider: p, Timeout: timeout}
}

func (c *ProviderCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	out, err := c.Provider.Chat(ctx, []Message{{Role: "user", Content: prompt}})
	if err != nil {
		return "", Classify(c.Name, err)
	}
	if strings.TrimSpace(out) == "" {
		return "", &Error{Kind: KindMalformed, Provider: c.Name, Err: errEmptyOutput}
	}
	return out, nil
}
