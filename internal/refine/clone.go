// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package refine

import (
	"strings"
	"unicode"

	"github.com/pdiddy/idea-engine/pkg/types"
)

// CloneThreshold is the token Jaccard similarity above which an idea's
// funding target + mechanism counts as substantially equivalent to the
// benchmark's reference description. The criterion is lexical and
// rule-based so rejection decisions are deterministic and testable: an
// idea is a clone when similarity exceeds the threshold, or when the
// normalized benchmark family name appears verbatim in the funding target.
const CloneThreshold = 0.5

// isBenchmarkClone compares the idea against the benchmark intervention
// itself, never against other generated ideas. It assumes idea.Benchmark
// has already been normalized.
func (v *Validator) isBenchmarkClone(idea types.Idea) bool {
	target := normalizeText(idea.FundingTarget)

	// Proposing to fund the benchmark by name is always a clone
	// ("fund GiveWell top charities" for a DALY idea).
	if containsPhrase(target, normalizeText(idea.Benchmark.Name)) {
		return true
	}
	// Family names like "Humane League / ACE" also match on either half.
	for _, part := range strings.Split(idea.Benchmark.Name, "/") {
		if containsPhrase(target, normalizeText(part)) {
			return true
		}
	}

	ideaTokens := tokenSet(idea.FundingTarget + " " + idea.Mechanism)
	benchTokens := tokenSet(idea.Benchmark.Description)
	return jaccard(ideaTokens, benchTokens) > v.cfg.CloneThreshold
}

// containsPhrase reports whether phrase occurs in text on word boundaries.
// Both arguments must already be normalized. Matching inside longer words
// does not count: the name half "ace" must not match "replace".
func containsPhrase(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	return strings.Contains(" "+text+" ", " "+phrase+" ")
}

// tokenSet returns the set of normalized tokens of length >= 3.
func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, f := range strings.Fields(normalizeText(s)) {
		if len(f) >= 3 {
			set[f] = true
		}
	}
	return set
}

// jaccard computes |a ∩ b| / |a ∪ b| over token sets.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for tok := range a {
		if b[tok] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// normalizeText lowercases and strips punctuation, collapsing whitespace.
func normalizeText(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
