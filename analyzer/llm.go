package analyzer

import "context"

// TokenUsage is the accounting receipt returned alongside generated text.
type TokenUsage struct {
	InputTokens  int64  `json:"input_tokens"`
	OutputTokens int64  `json:"output_tokens"`
	Model        string `json:"model"`
}

// Result is one completed text-generation call.
type Result struct {
	Analysis string
	Usage    TokenUsage
}

// LLMClient abstracts the text-generation collaborator so it can be swapped
// or mocked. The pipeline treats it as an opaque document -> (text, receipt)
// function.
type LLMClient interface {
	Complete(ctx context.Context, prompt string) (Result, error)
}

// LLMSettings carries the base configuration for a concrete client.
type LLMSettings struct {
	Model   string
	APIKey  string
	BaseURL string
}
