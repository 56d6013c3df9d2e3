package analyzer

import (
	"fmt"
	"strings"

	"patch_monitor/patchwork"
)

// Markers emitted in place of discussion when there is none to show. The two
// states are deliberately distinct: absent comments and unfetched comments
// must stay distinguishable in the assembled document.
const (
	noCommentsMarker  = "<!-- No comments found for this patch -->"
	notFetchedMarker  = "<!-- Comments not fetched (--no-comments flag used) -->"
	maxNamesInContext = 5
)

// ContextOptions bound the assembled document.
type ContextOptions struct {
	MaxPatches      int
	MaxPatchChars   int
	MaxCommentChars int
	MaxComments     int
	IncludeComments bool
}

// BuildContext renders a series, its fetched patches and the engagement
// summary into the fixed patchset document submitted for text generation.
// The element order and nesting are a versioned schema; changing them is a
// breaking change guarded by the golden-master test.
//
// comments is per-patch discussion aligned with patches; it is ignored when
// IncludeComments is false. Patches beyond MaxPatches are omitted entirely.
func BuildContext(series patchwork.Series, patches []patchwork.Patch, comments [][]patchwork.Comment, eng Engagement, opts ContextOptions) string {
	analyzed := len(patches)
	if analyzed > opts.MaxPatches {
		analyzed = opts.MaxPatches
	}

	var patchesXML []string
	for i, patch := range patches[:analyzed] {
		var b strings.Builder
		fmt.Fprintf(&b, "    <patch id=\"%d\" name=\"%s\">\n", i+1, patch.Name)
		b.WriteString("      <content>\n")
		b.WriteString(truncate(patch.Content, opts.MaxPatchChars))
		b.WriteString("\n      </content>\n")
		b.WriteString("      <comments>\n")
		b.WriteString(commentsBlock(i, comments, opts))
		b.WriteString("\n      </comments>\n")
		b.WriteString("    </patch>")
		patchesXML = append(patchesXML, b.String())
	}

	var doc strings.Builder
	doc.WriteString("<patchset>\n")
	doc.WriteString("  <metadata>\n")
	fmt.Fprintf(&doc, "    <title>%s</title>\n", series.Name)
	fmt.Fprintf(&doc, "    <author name=\"%s\" email=\"%s\"/>\n", series.Submitter.Name, series.Submitter.Email)
	fmt.Fprintf(&doc, "    <date>%s</date>\n", series.Date.UTC().Format("2006-01-02"))
	fmt.Fprintf(&doc, "    <total_patches>%d</total_patches>\n", series.Total)
	fmt.Fprintf(&doc, "    <analyzed_patches>%d</analyzed_patches>\n", analyzed)
	fmt.Fprintf(&doc, "    <patchwork_url>%s</patchwork_url>\n", series.WebURL)
	doc.WriteString("  </metadata>\n\n")
	doc.WriteString(engagementBlock(eng))
	doc.WriteString("\n\n  <patches>\n")
	doc.WriteString(strings.Join(patchesXML, "\n"))
	doc.WriteString("\n  </patches>\n")
	doc.WriteString("</patchset>")
	return doc.String()
}

func commentsBlock(idx int, comments [][]patchwork.Comment, opts ContextOptions) string {
	if !opts.IncludeComments {
		return "        " + notFetchedMarker
	}
	var list []patchwork.Comment
	if idx < len(comments) {
		list = comments[idx]
	}
	if len(list) == 0 {
		return "        " + noCommentsMarker
	}
	if len(list) > opts.MaxComments {
		list = list[:opts.MaxComments]
	}

	blocks := make([]string, 0, len(list))
	for _, c := range list {
		day := "Unknown"
		if !c.Date.IsZero() {
			day = c.Date.UTC().Format("2006-01-02")
		}
		author := c.Submitter.Name
		if author == "" {
			author = "Unknown"
		}
		blocks = append(blocks, fmt.Sprintf("        <comment author=\"%s\" date=\"%s\">\n%s\n        </comment>",
			author, day, truncate(c.Content, opts.MaxCommentChars)))
	}
	return strings.Join(blocks, "\n")
}

func engagementBlock(eng Engagement) string {
	var b strings.Builder
	b.WriteString("  <engagement_analysis>\n")
	b.WriteString("    <version_info>\n")
	fmt.Fprintf(&b, "      <current_version>%d</current_version>\n", eng.Version)
	fmt.Fprintf(&b, "      <days_since_posting>%d</days_since_posting>\n", eng.DaysSincePosting)
	b.WriteString("    </version_info>\n")
	b.WriteString("    <endorsements>\n")
	fmt.Fprintf(&b, "      <signed_off_by count=\"%d\">%s</signed_off_by>\n",
		len(eng.Endorsements.SignedOffBy), joinNames(eng.Endorsements.SignedOffBy))
	fmt.Fprintf(&b, "      <acked_by count=\"%d\">%s</acked_by>\n",
		len(eng.Endorsements.AckedBy), joinNames(eng.Endorsements.AckedBy))
	fmt.Fprintf(&b, "      <reviewed_by count=\"%d\">%s</reviewed_by>\n",
		len(eng.Endorsements.ReviewedBy), joinNames(eng.Endorsements.ReviewedBy))
	fmt.Fprintf(&b, "      <tested_by count=\"%d\">%s</tested_by>\n",
		len(eng.Endorsements.TestedBy), joinNames(eng.Endorsements.TestedBy))
	b.WriteString("    </endorsements>\n")
	b.WriteString("    <activity_indicators>\n")
	fmt.Fprintf(&b, "      <comment_count>%d</comment_count>\n", eng.CommentCount)
	fmt.Fprintf(&b, "      <days_since_last_activity>%d</days_since_last_activity>\n", eng.DaysSinceLastActivity)
	b.WriteString("    </activity_indicators>\n")
	b.WriteString("  </engagement_analysis>")
	return b.String()
}

// joinNames caps the names shown in the document; the count attribute stays
// exact regardless.
func joinNames(names []string) string {
	if len(names) > maxNamesInContext {
		names = names[:maxNamesInContext]
	}
	return strings.Join(names, ", ")
}

// truncate cuts s to at most max characters. A bare prefix cut, no ellipsis;
// the downstream model tolerates an abrupt end.
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
