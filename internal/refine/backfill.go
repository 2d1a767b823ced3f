// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package refine

import (
	"fmt"
	"strings"

	"github.com/pdiddy/idea-engine/pkg/types"
)

// doerMarkers flag evidence items that describe actors who could carry an
// idea out. Doer backfill draws only on items carrying one of these.
var doerMarkers = []string{
	"charity", "charities", "organization", "organisation", "institute",
	"initiative", "foundation", "fund", "agency", "university", "ngo",
	"coalition", "lab", "startup",
}

// backfill fills each gap using only material present in the evidence
// context. When no supporting evidence exists for a required field the
// idea is rejected rather than filled with unsupported content; this is
// the hard invariant protecting against fabrication.
func (v *Validator) backfill(idea *types.Idea, gaps []gap, ectx *types.EvidenceContext) types.RejectionReason {
	if len(gaps) == 0 {
		return ""
	}

	support := supportingItems(*idea, ectx)

	for _, g := range gaps {
		switch g {
		case gapCitations:
			for _, item := range support {
				if len(idea.Citations) >= minCitations {
					break
				}
				if !containsString(idea.Citations, item.ID) {
					idea.Citations = append(idea.Citations, item.ID)
				}
			}
			if len(idea.Citations) < minCitations {
				return types.ReasonInsufficientSupport
			}

		case gapBotec:
			if len(support) == 0 {
				return types.ReasonInsufficientSupport
			}
			idea.Botec = botecFromEvidence(*idea, support)

		case gapDoers:
			doer, ok := doerFromEvidence(support)
			if !ok {
				return types.ReasonInsufficientSupport
			}
			idea.Doers = []types.Doer{doer}

		case gapNovelty:
			if len(support) == 0 {
				return types.ReasonInsufficientSupport
			}
			idea.NoveltyRationale = fmt.Sprintf(
				"Not currently funded at scale per %q (%s); the %s mechanism removes the adoption barrier described there.",
				support[0].Title, support[0].SourceName, idea.Mechanism)

		case gapVerification:
			// A pass/fail criterion is directly computable from the
			// idea's own quantified impact; no citation needed, but an
			// unquantified idea with no supporting evidence cannot be
			// made checkable.
			if strings.TrimSpace(idea.Impact.Quantity) == "" {
				return types.ReasonMissingVerification
			}
			idea.VerificationPlan = fmt.Sprintf(
				"Pass if independently measured %s impact reaches %s within 3 years of funding; fail otherwise.",
				idea.Impact.Metric, idea.Impact.Quantity)
		}
	}

	return ""
}

// supportingItems returns context items with lexical overlap to the idea,
// in context order (tier-first). Only these may back filled-in fields.
func supportingItems(idea types.Idea, ectx *types.EvidenceContext) []types.ScoredItem {
	ideaTokens := tokenSet(idea.FundingTarget + " " + idea.Mechanism + " " + idea.NoveltyRationale)
	var out []types.ScoredItem
	for _, item := range ectx.Items {
		itemTokens := tokenSet(item.Title + " " + item.Summary)
		overlap := 0
		for tok := range ideaTokens {
			if itemTokens[tok] {
				overlap++
			}
		}
		if overlap >= 2 {
			out = append(out, item)
		}
	}
	return out
}

// botecFromEvidence assembles a minimal BOTEC whose assumptions each cite
// a supporting item. The point estimate restates the idea's own claim;
// sensitivity spans the benchmark's reference range.
func botecFromEvidence(idea types.Idea, support []types.ScoredItem) types.BOTEC {
	n := len(support)
	if n > 3 {
		n = 3
	}
	assumptions := make([]types.Assumption, 0, n)
	for i := 0; i < n; i++ {
		assumptions = append(assumptions, types.Assumption{
			Name:       fmt.Sprintf("evidence_%d", i+1),
			Value:      support[i].Title,
			CitationID: support[i].ID,
		})
	}
	return types.BOTEC{
		Assumptions:   assumptions,
		Formula:       "expected_impact / total_cost",
		PointEstimate: fmt.Sprintf("%s per %s at cost %s", idea.Impact.Quantity, idea.Impact.Metric, idea.Cost),
		SensitivityLow: fmt.Sprintf("%.2f %s", idea.Benchmark.Range.Low,
			idea.Benchmark.Range.Unit),
		SensitivityHigh: fmt.Sprintf("%.2f %s", idea.Benchmark.Range.High,
			idea.Benchmark.Range.Unit),
	}
}

// doerFromEvidence derives an unscored doer archetype from the first
// supporting item that describes an actor. Returns false when the context
// carries no doer-related evidence.
func doerFromEvidence(support []types.ScoredItem) (types.Doer, bool) {
	for _, item := range support {
		text := strings.ToLower(item.Title + " " + item.Summary)
		for _, marker := range doerMarkers {
			if strings.Contains(text, marker) {
				return types.Doer{
					Archetype: fmt.Sprintf("operator of the kind described in %q (%s)", item.Title, item.SourceName),
				}, true
			}
		}
	}
	return types.Doer{}, false
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
