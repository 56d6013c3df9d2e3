package analyzer

import (
	"context"
	"strings"
)

// MockLLM is a placeholder client for dry runs and tests; it never calls an
// external model.
type MockLLM struct {
	InputTokens  int64
	OutputTokens int64
}

func (m MockLLM) Complete(_ context.Context, prompt string) (Result, error) {
	var sb strings.Builder
	sb.WriteString("# Executive Brief (dry run)\n\n")
	sb.WriteString("**Status**: Under review\n\n")
	sb.WriteString("## What & Why\n\n")
	sb.WriteString("Generated without calling a model. Prompt follows for inspection:\n\n")
	sb.WriteString("```\n")
	sb.WriteString(prompt)
	sb.WriteString("\n```\n")
	return Result{
		Analysis: sb.String(),
		Usage: TokenUsage{
			InputTokens:  m.InputTokens,
			OutputTokens: m.OutputTokens,
			Model:        "mock",
		},
	}, nil
}
