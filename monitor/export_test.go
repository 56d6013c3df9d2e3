package monitor

import (
	"encoding/json"
	"testing"
	"time"

	"patch_monitor/analyzer"
	"patch_monitor/patchwork"
)

func TestBuildExportAggregatesTokens(t *testing.T) {
	report := BatchReport{
		Reports: []SeriesReport{
			{
				Series:     testSeries(1, 1),
				Engagement: analyzer.Engagement{Version: 3, DaysSincePosting: 5},
				Analysis:   "This series looks ready for merge.",
				Usage:      analyzer.TokenUsage{InputTokens: 800, OutputTokens: 75, Model: "gpt-4o-mini"},
			},
			{
				Series:     testSeries(2, 2),
				Engagement: analyzer.Engagement{Version: 1, DaysSincePosting: 40},
				Analysis:   "Progress has stalled with no recent activity.",
				Usage:      analyzer.TokenUsage{InputTokens: 1200, OutputTokens: 125, Model: "gpt-4o-mini"},
			},
		},
		TotalInputTokens:  2000,
		TotalOutputTokens: 200,
	}

	exp := BuildExport(report, 14, "gpt-4o-mini", time.Date(2025, 8, 27, 0, 0, 0, 0, time.UTC))

	if exp.Metadata.TokenUsage == nil {
		t.Fatal("token usage metadata missing")
	}
	if exp.Metadata.TokenUsage.TotalInputTokens != 2000 {
		t.Errorf("total input = %d, want 2000", exp.Metadata.TokenUsage.TotalInputTokens)
	}
	if exp.Metadata.TokenUsage.TotalOutputTokens != 200 {
		t.Errorf("total output = %d, want 200", exp.Metadata.TokenUsage.TotalOutputTokens)
	}
	if exp.Metadata.TokenUsage.AnalysisCount != 2 {
		t.Errorf("analysis count = %d, want 2", exp.Metadata.TokenUsage.AnalysisCount)
	}
	if got := exp.PatchSeries[0].Analysis.Status; got != "Ready" {
		t.Errorf("first status = %q, want Ready", got)
	}
	if got := exp.PatchSeries[1].Analysis.Status; got != "Stalled" {
		t.Errorf("second status = %q, want Stalled", got)
	}
}

func TestBuildExportWithoutSuccesses(t *testing.T) {
	exp := BuildExport(BatchReport{}, 14, "gpt-4o-mini", time.Now())
	if exp.Metadata.TokenUsage != nil {
		t.Error("no successes should omit token usage metadata")
	}
	if exp.Metadata.TotalSeries != 0 {
		t.Errorf("total series = %d, want 0", exp.Metadata.TotalSeries)
	}
}

// Field names in the export are load-bearing for external consumers; the
// schema may grow but never rename.
func TestExportSchemaFieldNames(t *testing.T) {
	series := patchwork.Series{
		ID:        958022,
		Name:      "[v3] rust: kernel: device abstractions",
		Date:      time.Date(2025, 4, 29, 10, 0, 0, 0, time.UTC),
		Submitter: patchwork.Submitter{Name: "Alice Author", Email: "alice@rust-project.org"},
		Total:     2,
		WebURL:    "https://patchwork.kernel.org/project/rust-for-linux/list/?series=958022",
	}
	eng := analyzer.Engagement{
		Version:          3,
		DaysSincePosting: 12,
		Endorsements: analyzer.Endorsements{
			SignedOffBy: []string{"Alice Author"},
			ReviewedBy:  []string{"Bob Reviewer"},
		},
	}

	exp := BuildEngagementExport(
		[]ExportSeries{EngagementEntry(series, eng)},
		90, false, time.Date(2025, 8, 27, 0, 0, 0, 0, time.UTC),
	)
	raw, err := json.Marshal(exp)
	if err != nil {
		t.Fatal(err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatal(err)
	}
	meta, ok := decoded["metadata"].(map[string]any)
	if !ok {
		t.Fatal("metadata object missing")
	}
	for _, key := range []string{"generated_at", "project", "days_back", "include_applied", "total_series"} {
		if _, ok := meta[key]; !ok {
			t.Errorf("metadata missing field %q", key)
		}
	}

	list, ok := decoded["patch_series"].([]any)
	if !ok || len(list) != 1 {
		t.Fatal("patch_series array missing")
	}
	entry := list[0].(map[string]any)
	for _, key := range []string{"id", "name", "date", "submitter", "total_patches", "web_url", "engagement"} {
		if _, ok := entry[key]; !ok {
			t.Errorf("series entry missing field %q", key)
		}
	}
	engObj := entry["engagement"].(map[string]any)
	endors := engObj["endorsements"].(map[string]any)
	for _, key := range []string{"signed_off_by", "acked_by", "reviewed_by", "tested_by"} {
		if _, ok := endors[key]; !ok {
			t.Errorf("endorsements missing field %q", key)
		}
	}
	if endors["signed_off_by"].(float64) != 1 {
		t.Errorf("signed_off_by = %v, want 1", endors["signed_off_by"])
	}
}

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		analysis string
		want     string
	}{
		{"The series is ready for merge.", "Ready"},
		{"Work appears stalled since June.", "Stalled"},
		{"A strategic advance for the project.", "Strategic Development"},
		{"Nothing remarkable here.", "Under Review"},
	}
	for _, tc := range cases {
		if got := DeriveStatus(tc.analysis); got != tc.want {
			t.Errorf("DeriveStatus(%q) = %q, want %q", tc.analysis, got, tc.want)
		}
	}
}
