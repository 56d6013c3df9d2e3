package analyzer

import (
	"regexp"
	"strconv"
	"time"

	"patch_monitor/patchwork"
)

// Engagement is the derived review-maturity summary for one series.
// Computed once per analysis; never mutated afterward.
type Engagement struct {
	Version               int
	DaysSincePosting      int
	DaysSinceLastActivity int
	CommentCount          int
	Endorsements          Endorsements
}

// versionRe matches a version token such as "v3", "[v7]" or "PATCH v12".
// The leading boundary keeps a "v" inside an ordinary word from matching.
var versionRe = regexp.MustCompile(`(?i)(?:^|[^a-z])\[?v(\d+)\]?`)

// Version infers the series version from its title, defaulting to 1 when no
// version token is present.
func Version(title string) int {
	m := versionRe.FindStringSubmatch(title)
	if m == nil {
		return 1
	}
	v, err := strconv.Atoi(m[1])
	if err != nil || v < 1 {
		return 1
	}
	return v
}

// daysBetween returns the whole-day difference between now and then,
// truncated toward the past. Both instants are normalized to UTC first.
func daysBetween(now, then time.Time) int {
	d := now.UTC().Sub(then.UTC())
	if d < 0 {
		return 0
	}
	return int(d.Hours() / 24)
}

// AnalyzeEngagement combines version inference, endorsement extraction and
// recency arithmetic into one summary. patches may be a strict subset of the
// series' declared total; comments is per-patch discussion aligned with
// patches and may be nil when comment fetching is disabled. A patch with no
// usable content simply contributes nothing.
func (a *Analyzer) AnalyzeEngagement(series patchwork.Series, patches []patchwork.Patch, comments [][]patchwork.Comment) Engagement {
	now := a.now()

	eng := Engagement{
		Version:          Version(series.Name),
		DaysSincePosting: daysBetween(now, series.Date),
	}

	for _, p := range patches {
		eng.Endorsements.Merge(ParseEndorsements(p.Content))
	}

	lastActivity := series.Date
	for _, list := range comments {
		eng.CommentCount += len(list)
		for _, c := range list {
			if !c.Date.IsZero() && c.Date.After(lastActivity) {
				lastActivity = c.Date
			}
		}
	}
	eng.DaysSinceLastActivity = daysBetween(now, lastActivity)

	return eng
}

func (a *Analyzer) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now().UTC()
}
