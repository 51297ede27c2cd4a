// Package plan turns a project idea into an ordered step list and a
// material list using a text-completion backend.
package plan

import (
	"context"
	"fmt"
	"strings"

	"github.com/suPer8Hu/diy-assistant/internal/ai"
)

const stepsPrompt = `You are an expert in DIY home improvement.
Write a numbered, step-by-step procedure for the following project.
Put exactly one step per line and do not add any other text.

Project: %s
Description: %s`

const materialsPrompt = `You are an expert in DIY home improvement.
List the materials and tools needed for the following project.
Put exactly one item per line and do not add any other text.

Project: %s
Description: %s`

type Generator struct {
	completer ai.Completer
}

func NewGenerator(c ai.Completer) *Generator {
	return &Generator{completer: c}
}

// GenerateSteps returns step descriptions in the order the model produced them.
func (g *Generator) GenerateSteps(ctx context.Context, title, description string) ([]string, error) {
	return g.generate(ctx, stepsPrompt, title, description)
}

func (g *Generator) GenerateMaterials(ctx context.Context, title, description string) ([]string, error) {
	return g.generate(ctx, materialsPrompt, title, description)
}

func (g *Generator) generate(ctx context.Context, tmpl, title, description string) ([]string, error) {
	if g == nil || g.completer == nil {
		return nil, nil
	}
	out, err := g.completer.Complete(ctx, BuildPrompt(tmpl, title, description))
	if err != nil {
		return nil, err
	}
	return ParseLines(out), nil
}

func BuildPrompt(tmpl, title, description string) string {
	description = strings.TrimSpace(description)
	if description == "" {
		description = "(none)"
	}
	return fmt.Sprintf(tmpl, strings.TrimSpace(title), description)
}

// ParseLines splits raw model output into trimmed, non-empty lines.
func ParseLines(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
