package monitor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ReportDir returns (and creates) the dated output directory for one run.
func ReportDir(base string, now time.Time) (string, error) {
	dir := filepath.Join(base, now.Format("2006-01-02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	return dir, nil
}

// WriteSeriesReport saves one analysis as series-<id>.md with a metadata
// header, and records the path on the report.
func WriteSeriesReport(dir string, rep *SeriesReport, now time.Time) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# Analysis: %s\n\n", rep.Series.Name)
	fmt.Fprintf(&b, "**Generated**: %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Series ID**: %d\n", rep.Series.ID)
	fmt.Fprintf(&b, "**Author**: %s\n", orUnknown(rep.Series.Submitter.Name))
	fmt.Fprintf(&b, "**Date**: %s\n", rep.Series.Date.UTC().Format("2006-01-02"))
	fmt.Fprintf(&b, "**Patches**: %d\n", rep.Series.Total)
	fmt.Fprintf(&b, "**Patchwork URL**: %s\n", rep.Series.WebURL)
	fmt.Fprintf(&b, "**Tokens**: %d in / %d out (%s)\n\n", rep.Usage.InputTokens, rep.Usage.OutputTokens, rep.Usage.Model)
	b.WriteString("---\n\n")
	b.WriteString(rep.Analysis)

	path := filepath.Join(dir, fmt.Sprintf("series-%d.md", rep.Series.ID))
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	rep.Path = path
	return nil
}

// WriteSummary saves the combined batch summary enumerating failures and
// successes with per-series links.
func WriteSummary(dir string, days int, report BatchReport, now time.Time) (string, error) {
	var b strings.Builder
	b.WriteString("# Rust for Linux Patch Analysis Summary\n\n")
	fmt.Fprintf(&b, "**Generated**: %s\n", now.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Period**: Last %d days\n", days)
	total := len(report.Reports) + len(report.Failures)
	fmt.Fprintf(&b, "**Analyzed**: %d/%d series\n", len(report.Reports), total)
	fmt.Fprintf(&b, "**Tokens**: %d in / %d out\n\n", report.TotalInputTokens, report.TotalOutputTokens)

	if len(report.Failures) > 0 {
		fmt.Fprintf(&b, "## Failed Analyses (%d)\n\n", len(report.Failures))
		for _, f := range report.Failures {
			fmt.Fprintf(&b, "- **%s**: %s\n", f.Series.Name, f.Reason)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Successful Analyses (%d)\n\n", len(report.Reports))
	for _, rep := range report.Reports {
		fmt.Fprintf(&b, "### %s\n\n", rep.Series.Name)
		fmt.Fprintf(&b, "- **Author**: %s\n", orUnknown(rep.Series.Submitter.Name))
		fmt.Fprintf(&b, "- **Date**: %s\n", rep.Series.Date.UTC().Format("2006-01-02"))
		fmt.Fprintf(&b, "- **Patches**: %d\n", rep.Series.Total)
		if rep.Path != "" {
			fmt.Fprintf(&b, "- **Report**: [%s](%s)\n", rep.Path, filepath.Base(rep.Path))
		}
		fmt.Fprintf(&b, "- **Patchwork**: %s\n\n", rep.Series.WebURL)
	}

	path := filepath.Join(dir, "summary.md")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write summary: %w", err)
	}
	return path, nil
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
