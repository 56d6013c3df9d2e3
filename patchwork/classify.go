package patchwork

import "strings"

// ClassifierPolicy holds the thresholds for the pending/resolved heuristic.
type ClassifierPolicy struct {
	// ResolvedFraction is the strict majority cutoff: a series is resolved
	// when more than this fraction of the inspected states look applied.
	ResolvedFraction float64 `yaml:"resolved_fraction"`
	// InspectPatches caps how many leading patch refs are inspected.
	InspectPatches int `yaml:"inspect_patches"`
}

// DefaultClassifierPolicy returns the stock heuristic parameters.
func DefaultClassifierPolicy() ClassifierPolicy {
	return ClassifierPolicy{ResolvedFraction: 0.5, InspectPatches: 3}
}

// resolvedStates are lifecycle states that indicate the tracker already
// considers a patch dealt with.
var resolvedStates = map[string]bool{
	"accepted":   true,
	"committed":  true,
	"superseded": true,
}

// Resolved decides whether a series looks already applied/merged/superseded
// from the patch refs returned inline with the series listing. The tracker
// exposes no reliable applied flag, so this is a heuristic; when in doubt it
// errs toward pending so live work is never silently dropped.
func (p ClassifierPolicy) Resolved(refs []PatchRef) bool {
	if len(refs) == 0 {
		return true // nothing to track
	}

	// Pull-request roundups are a durable tracker idiom for completed work.
	first := strings.ToLower(refs[0].Name)
	if strings.Contains(first, "[git,pull]") || strings.Contains(first, "git pull") {
		return true
	}

	limit := p.InspectPatches
	if limit <= 0 {
		limit = 3
	}
	if limit > len(refs) {
		limit = len(refs)
	}

	var states []string
	for _, ref := range refs[:limit] {
		if ref.State != "" {
			states = append(states, strings.ToLower(ref.State))
		}
	}
	if len(states) == 0 {
		// Absence of negative evidence defaults to still live.
		return false
	}

	applied := 0
	for _, s := range states {
		if resolvedStates[s] {
			applied++
		}
	}
	return float64(applied) > float64(len(states))*p.ResolvedFraction
}
