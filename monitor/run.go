package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"patch_monitor/analyzer"
	"patch_monitor/patchwork"
)

// Tracker is the slice of the patchwork client the orchestrator needs.
type Tracker interface {
	PatchContent(ctx context.Context, id int) (patchwork.Patch, error)
	PatchComments(ctx context.Context, id int) []patchwork.Comment
}

// SeriesReport is one successfully analyzed series.
type SeriesReport struct {
	Series     patchwork.Series
	Engagement analyzer.Engagement
	Analysis   string
	Usage      analyzer.TokenUsage
	Path       string
}

// Failure records a series that could not be completed, with the reason.
type Failure struct {
	Series patchwork.Series
	Reason string
}

// BatchReport aggregates one batch run. Token totals cover successful
// analyses only.
type BatchReport struct {
	Reports           []SeriesReport
	Failures          []Failure
	TotalInputTokens  int64
	TotalOutputTokens int64
}

// Runner processes series one at a time: fetch patches, analyze, generate.
// One series' failure never aborts the batch.
type Runner struct {
	Tracker  Tracker
	Analyzer *analyzer.Analyzer
	Opts     analyzer.ContextOptions
	Out      io.Writer
}

func (r *Runner) printf(format string, args ...any) {
	if r.Out != nil {
		fmt.Fprintf(r.Out, format, args...)
	}
}

// FetchPatches retrieves up to the configured maximum of a series' patches.
// Individual fetch failures are logged and dropped; the returned slice may
// be empty.
func (r *Runner) FetchPatches(ctx context.Context, series patchwork.Series) []patchwork.Patch {
	refs := series.Patches
	if len(refs) > r.Opts.MaxPatches {
		refs = refs[:r.Opts.MaxPatches]
	}
	var patches []patchwork.Patch
	for _, ref := range refs {
		patch, err := r.Tracker.PatchContent(ctx, ref.ID)
		if err != nil {
			log.Printf("[monitor] failed to fetch patch %d: %v", ref.ID, err)
			continue
		}
		patches = append(patches, patch)
	}
	return patches
}

// fetchComments collects per-patch discussion when enabled; nil otherwise.
// The lists are shared between engagement analysis and context assembly so
// each patch's comments are fetched exactly once.
func (r *Runner) fetchComments(ctx context.Context, patches []patchwork.Patch) [][]patchwork.Comment {
	if !r.Opts.IncludeComments {
		return nil
	}
	comments := make([][]patchwork.Comment, len(patches))
	for i, p := range patches {
		comments[i] = r.Tracker.PatchComments(ctx, p.ID)
	}
	return comments
}

// AnalyzeSeries runs the full pipeline for one series.
func (r *Runner) AnalyzeSeries(ctx context.Context, series patchwork.Series) (SeriesReport, error) {
	patches := r.FetchPatches(ctx, series)
	if len(patches) == 0 {
		return SeriesReport{}, errors.New("no patches available")
	}
	comments := r.fetchComments(ctx, patches)

	res, eng, err := r.Analyzer.Analyze(ctx, series, patches, comments, r.Opts)
	if err != nil {
		return SeriesReport{}, err
	}
	return SeriesReport{
		Series:     series,
		Engagement: eng,
		Analysis:   res.Analysis,
		Usage:      res.Usage,
	}, nil
}

// Run processes each series independently and aggregates the results. The
// input is assumed already filtered to pending series.
func (r *Runner) Run(ctx context.Context, series []patchwork.Series) BatchReport {
	var report BatchReport
	for i, s := range series {
		r.printf("\n[%d/%d] Analyzing: %s\n", i+1, len(series), s.Name)

		rep, err := r.AnalyzeSeries(ctx, s)
		if err != nil {
			r.printf("  failed: %v\n", err)
			report.Failures = append(report.Failures, Failure{Series: s, Reason: err.Error()})
			continue
		}
		report.Reports = append(report.Reports, rep)
		report.TotalInputTokens += rep.Usage.InputTokens
		report.TotalOutputTokens += rep.Usage.OutputTokens
		r.printf("  tokens: %d in / %d out\n", rep.Usage.InputTokens, rep.Usage.OutputTokens)
	}
	return report
}
