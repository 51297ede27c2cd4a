package main

import (
	"context"
	"errors"
	"strings"

	"github.com/suPer8Hu/diy-assistant/internal/ai"
	"github.com/suPer8Hu/diy-assistant/internal/config"
)

var errNoProvider = errors.New("no text-completion provider configured")

func newRegistry(cfg config.Config) *ai.Registry {
	reg := ai.NewRegistry()

	reg.Register("ollama", func(ctx context.Context, model string) (ai.Provider, error) {
		if m := strings.TrimSpace(model); m != "" {
			return ai.NewOllamaProvider(cfg.OllamaBaseURL, m), nil
		}
		return ai.NewOllamaProvider(cfg.OllamaBaseURL, cfg.OllamaModel), nil
	})
	reg.Register("openrouter", func(ctx context.Context, model string) (ai.Provider, error) {
		if cfg.OpenRouterAPIKey == "" {
			return nil, errors.New("OPENROUTER_API_KEY is required")
		}
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.OpenRouterModel
		}
		return ai.NewOpenRouterProvider(cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, m,
			cfg.OpenRouterSiteURL, cfg.OpenRouterAppName), nil
	})
	reg.Register("gemini", func(ctx context.Context, model string) (ai.Provider, error) {
		if cfg.GeminiAPIKey == "" {
			return nil, errors.New("GEMINI_API_KEY is required")
		}
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.GeminiModel
		}
		return ai.NewGeminiProvider(cfg.GeminiAPIKey, m), nil
	})
	return reg
}

// newCompleter resolves the configured provider. With no usable provider the
// server still runs: every completion fails and callers fall back.
func newCompleter(ctx context.Context, cfg config.Config, reg *ai.Registry) (ai.Completer, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.AIProvider))
	if name == "" || name == "none" {
		return unavailable(name), nil
	}
	p, err := reg.Get(ctx, name, "")
	if err != nil {
		return unavailable(name), err
	}
	return ai.NewProviderCompleter(name, p, cfg.AITimeout), nil
}

func unavailable(name string) ai.Completer {
	return ai.CompleterFunc(func(ctx context.Context, prompt string) (string, error) {
		return "", &ai.Error{Kind: ai.KindUnavailable, Provider: name, Err: errNoProvider}
	})
}
