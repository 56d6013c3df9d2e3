package analyzer

import "strings"

// Endorsements holds the named attributions found in patch text, one ordered
// set per kind. Names are deduplicated case-sensitively in first-seen order.
// The zero value is a valid, empty set.
type Endorsements struct {
	SignedOffBy []string
	AckedBy     []string
	ReviewedBy  []string
	TestedBy    []string
}

// add appends name to set unless it is already present.
func add(set []string, name string) []string {
	for _, existing := range set {
		if existing == name {
			return set
		}
	}
	return append(set, name)
}

// Merge folds other into e, preserving first-seen order across both.
func (e *Endorsements) Merge(other Endorsements) {
	for _, n := range other.SignedOffBy {
		e.SignedOffBy = add(e.SignedOffBy, n)
	}
	for _, n := range other.AckedBy {
		e.AckedBy = add(e.AckedBy, n)
	}
	for _, n := range other.ReviewedBy {
		e.ReviewedBy = add(e.ReviewedBy, n)
	}
	for _, n := range other.TestedBy {
		e.TestedBy = add(e.TestedBy, n)
	}
}

// ParseEndorsements scans patch text line by line for the four kernel
// attribution trailers and collects the display names. Malformed lines
// contribute nothing; nothing here ever fails.
func ParseEndorsements(content string) Endorsements {
	var e Endorsements
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)

		var set *[]string
		switch {
		case strings.HasPrefix(lower, "signed-off-by:"):
			set = &e.SignedOffBy
		case strings.HasPrefix(lower, "acked-by:"):
			set = &e.AckedBy
		case strings.HasPrefix(lower, "reviewed-by:"):
			set = &e.ReviewedBy
		case strings.HasPrefix(lower, "tested-by:"):
			set = &e.TestedBy
		default:
			continue
		}

		if name := extractName(line); name != "" {
			*set = add(*set, name)
		}
	}
	return e
}

// extractName pulls the display name out of a trailer line like
// "Acked-by: John Doe <john@example.com>". The email segment, when present,
// is dropped even when it abuts the name with no space. An unparsable line
// yields "".
func extractName(line string) string {
	colon := strings.Index(line, ":")
	if colon == -1 {
		return ""
	}
	field := strings.TrimSpace(line[colon+1:])
	if lt := strings.Index(field, "<"); lt != -1 && strings.Contains(field[lt:], ">") {
		field = strings.TrimSpace(field[:lt])
	}
	return field
}
