package analyzer

import (
	"context"
	"errors"
	"time"

	"patch_monitor/patchwork"
)

// Analyzer drives engagement extraction, context assembly and the
// text-generation call for one series. Now is the injected clock used for
// day-difference math; nil means the wall clock.
type Analyzer struct {
	LLM LLMClient
	Now func() time.Time
}

func NewAnalyzer(llm LLMClient) (*Analyzer, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	return &Analyzer{LLM: llm}, nil
}

// Analyze produces the engagement summary, assembles the patchset context
// and submits it for text generation.
func (a *Analyzer) Analyze(ctx context.Context, series patchwork.Series, patches []patchwork.Patch, comments [][]patchwork.Comment, opts ContextOptions) (Result, Engagement, error) {
	eng := a.AnalyzeEngagement(series, patches, comments)
	doc := BuildContext(series, patches, comments, eng, opts)
	prompt := BuildPrompt(series.Name, doc)

	res, err := a.LLM.Complete(ctx, prompt)
	if err != nil {
		return Result{}, eng, err
	}
	return res, eng, nil
}
