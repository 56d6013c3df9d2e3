package analyzer

import (
	"fmt"
	"strings"
)

// BuildPrompt wraps the assembled patchset document with the analysis
// instructions. The request format is stable; downstream golden tests check
// its key elements.
func BuildPrompt(seriesName, context string) string {
	var b strings.Builder
	b.WriteString("Analyze this Rust for Linux kernel patchset and provide a comprehensive markdown report.\n\n")
	b.WriteString(context)
	b.WriteString("\n\n<analysis_request>\n")
	b.WriteString("  <output_format>markdown</output_format>\n")
	b.WriteString("  <target_audience>Director of Engineering familiar with Linux kernel development and Rust-for-Linux strategy,\n")
	b.WriteString("  but potentially unfamiliar with specific subsystems</target_audience>\n\n")
	b.WriteString("  <role>You are a technical adviser providing succinct executive briefings. The director needs to understand\n")
	b.WriteString("  what matters, why it matters, and be able to explain it to stakeholders. Assume deep kernel knowledge but\n")
	b.WriteString("  explain subsystem-specific details.</role>\n\n")
	b.WriteString("  <engagement_guidance>\n")
	b.WriteString("    <status_indicators>\n")
	b.WriteString("      - High version (v5+) + recent + many acks = \"Ready for merge\"\n")
	b.WriteString("      - Recent high version + endorsements + minimal discussion = \"Mature/stable\"\n")
	b.WriteString("      - Old posting (30+ days) + no acks + no activity = \"Stalled\"\n")
	b.WriteString("      - Recent v1 + active discussion = \"Early development\"\n")
	b.WriteString("      - Quality concerns in comments = \"Needs attention\"\n")
	b.WriteString("    </status_indicators>\n")
	b.WriteString("  </engagement_guidance>\n\n")
	b.WriteString("  <format_requirements>\n")
	b.WriteString("    <structure>\n")
	fmt.Fprintf(&b, "      # Executive Brief: %s\n\n", seriesName)
	b.WriteString("      **Status**: [Ready for merge | Under review | Stalled | Quality concerns | Strategic development]\n")
	b.WriteString("      **Significance**: [Major advance | Incremental improvement | Bug fix | Infrastructure | Experiment]\n\n")
	b.WriteString("      ## What & Why\n")
	b.WriteString("      [2-3 sentences: what this does and why it matters to Rust-for-Linux]\n\n")
	b.WriteString("      ## Technical Context (expand if subsystem explanation needed)\n")
	b.WriteString("      [Subsystem-specific details, architecture differences, interaction with existing C code]\n\n")
	b.WriteString("      ## Issues & Conflicts (only if present)\n")
	b.WriteString("      [Problems requiring director attention: quality concerns, community conflicts, blocking issues]\n\n")
	b.WriteString("      ## Stakeholder Summary (if strategically significant)\n")
	b.WriteString("      [Key talking points for external discussions]\n")
	b.WriteString("    </structure>\n\n")
	b.WriteString("    <guidelines>\n")
	b.WriteString("      - Skip sections that don't contain meaningful information\n")
	b.WriteString("      - Focus on what requires director attention or stakeholder communication\n")
	b.WriteString("      - Be succinct except in Technical Context where detail helps\n")
	b.WriteString("      - Highlight strategic advances in Rust-for-Linux adoption\n")
	b.WriteString("      - Flag quality issues, conflicts, or unusual patterns\n")
	b.WriteString("    </guidelines>\n")
	b.WriteString("  </format_requirements>\n")
	b.WriteString("</analysis_request>\n\n")
	b.WriteString("Provide an executive brief following the structure above, including only sections with meaningful content.\n")
	return b.String()
}
