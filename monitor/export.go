package monitor

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"patch_monitor/analyzer"
	"patch_monitor/patchwork"
)

// The JSON export schema is consumed by an external display layer and is
// additive-only: new fields may be added, existing names and types must not
// change.

type ExportTokenUsage struct {
	TotalInputTokens  int64  `json:"total_input_tokens"`
	TotalOutputTokens int64  `json:"total_output_tokens"`
	Model             string `json:"model"`
	AnalysisCount     int    `json:"analysis_count"`
}

type ExportMetadata struct {
	GeneratedAt     string            `json:"generated_at"`
	Project         string            `json:"project"`
	DaysBack        int               `json:"days_back"`
	IncludeResolved bool              `json:"include_applied"`
	TotalSeries     int               `json:"total_series"`
	AnalysisMethod  string            `json:"analysis_method,omitempty"`
	TokenUsage      *ExportTokenUsage `json:"token_usage,omitempty"`
}

type ExportSubmitter struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ExportEndorsements struct {
	SignedOffBy int `json:"signed_off_by"`
	AckedBy     int `json:"acked_by"`
	ReviewedBy  int `json:"reviewed_by"`
	TestedBy    int `json:"tested_by"`
}

type ExportEngagement struct {
	Version          int                `json:"version"`
	DaysSincePosting int                `json:"days_since_posting"`
	Endorsements     ExportEndorsements `json:"endorsements"`
}

type ExportAnalysis struct {
	Status  string `json:"status"`
	Summary string `json:"summary"`
}

type ExportSeries struct {
	ID           int              `json:"id"`
	Name         string           `json:"name"`
	Date         string           `json:"date"`
	Submitter    ExportSubmitter  `json:"submitter"`
	TotalPatches int              `json:"total_patches"`
	WebURL       string           `json:"web_url"`
	Engagement   ExportEngagement `json:"engagement"`
	Analysis     *ExportAnalysis  `json:"analysis,omitempty"`
}

type Export struct {
	Metadata    ExportMetadata `json:"metadata"`
	PatchSeries []ExportSeries `json:"patch_series"`
}

func exportEngagement(eng analyzer.Engagement) ExportEngagement {
	return ExportEngagement{
		Version:          eng.Version,
		DaysSincePosting: eng.DaysSincePosting,
		Endorsements: ExportEndorsements{
			SignedOffBy: len(eng.Endorsements.SignedOffBy),
			AckedBy:     len(eng.Endorsements.AckedBy),
			ReviewedBy:  len(eng.Endorsements.ReviewedBy),
			TestedBy:    len(eng.Endorsements.TestedBy),
		},
	}
}

func exportSeries(s patchwork.Series, eng analyzer.Engagement) ExportSeries {
	return ExportSeries{
		ID:           s.ID,
		Name:         s.Name,
		Date:         s.Date.UTC().Format(time.RFC3339),
		Submitter:    ExportSubmitter{Name: orUnknown(s.Submitter.Name), Email: s.Submitter.Email},
		TotalPatches: s.Total,
		WebURL:       s.WebURL,
		Engagement:   exportEngagement(eng),
	}
}

// BuildExport assembles the JSON export for a completed batch run.
func BuildExport(report BatchReport, days int, model string, now time.Time) Export {
	exp := Export{
		Metadata: ExportMetadata{
			GeneratedAt:    now.Format(time.RFC3339),
			Project:        "rust-for-linux",
			DaysBack:       days,
			TotalSeries:    len(report.Reports),
			AnalysisMethod: "llm_bulk",
		},
	}
	if len(report.Reports) > 0 {
		exp.Metadata.TokenUsage = &ExportTokenUsage{
			TotalInputTokens:  report.TotalInputTokens,
			TotalOutputTokens: report.TotalOutputTokens,
			Model:             model,
			AnalysisCount:     len(report.Reports),
		}
	}
	for _, rep := range report.Reports {
		es := exportSeries(rep.Series, rep.Engagement)
		es.Analysis = &ExportAnalysis{
			Status:  DeriveStatus(rep.Analysis),
			Summary: rep.Analysis,
		}
		exp.PatchSeries = append(exp.PatchSeries, es)
	}
	return exp
}

// BuildEngagementExport assembles the engagement-only export (no analysis
// text, no token usage) used by the export command.
func BuildEngagementExport(entries []ExportSeries, days int, includeResolved bool, now time.Time) Export {
	return Export{
		Metadata: ExportMetadata{
			GeneratedAt:     now.Format(time.RFC3339),
			Project:         "rust-for-linux",
			DaysBack:        days,
			IncludeResolved: includeResolved,
			TotalSeries:     len(entries),
		},
		PatchSeries: entries,
	}
}

// EngagementEntry pairs a series with its computed engagement for the plain
// export path.
func EngagementEntry(s patchwork.Series, eng analyzer.Engagement) ExportSeries {
	return exportSeries(s, eng)
}

// WriteExport saves the export as indented JSON.
func WriteExport(path string, exp Export) error {
	raw, err := json.MarshalIndent(exp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal export: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// DeriveStatus keyword-scans the generated analysis for a coarse status
// label, defaulting to "Under Review".
func DeriveStatus(analysis string) string {
	lower := strings.ToLower(analysis)
	switch {
	case strings.Contains(lower, "ready"):
		return "Ready"
	case strings.Contains(lower, "stall"):
		return "Stalled"
	case strings.Contains(lower, "strategic"):
		return "Strategic Development"
	default:
		return "Under Review"
	}
}
