// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package refine is the correctness gate between synthesis and the idea
// catalog. Each draft idea runs through an explicit per-idea state machine:
//
//	draft → checking_schema → checking_benchmark → checking_novelty →
//	backfilling → validated | rejected
//
// so every transition and its invariant is independently testable.
// Validation of one idea never depends on another's outcome.
// See docs/ARCHITECTURE.md § Refinement Validator.
package refine

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/idea-engine/internal/benchmark"
	"github.com/pdiddy/idea-engine/pkg/types"
)

// state names the validator's per-idea FSM states.
type state string

const (
	stateCheckingSchema    state = "checking_schema"
	stateCheckingBenchmark state = "checking_benchmark"
	stateCheckingNovelty   state = "checking_novelty"
	stateBackfilling       state = "backfilling"
	stateValidated         state = "validated"
	stateRejected          state = "rejected"
)

// gap identifies a missing non-critical field routed to backfilling.
type gap int

const (
	gapBotec gap = iota
	gapDoers
	gapNovelty
	gapVerification
	gapCitations
)

// minCitations is the floor every validated idea must meet.
const minCitations = 2

// Validator applies the two-pass correctness gate. It holds only read-only
// state, so one Validator safely serves concurrent runs.
type Validator struct {
	registry *benchmark.Registry
	cfg      types.ValidationConfig
}

// NewValidator returns a Validator with config defaults applied.
func NewValidator(registry *benchmark.Registry, cfg types.ValidationConfig) *Validator {
	if cfg.CloneThreshold <= 0 {
		cfg.CloneThreshold = CloneThreshold
	}
	return &Validator{registry: registry, cfg: cfg}
}

// Validate runs every draft through the FSM, fanning out per idea since
// validations are independent and side-effect-free on shared state. Output
// preserves input order; every returned idea is terminal (validated or
// rejected). The only error is context cancellation.
func (v *Validator) Validate(ctx context.Context, ideas []types.Idea, ectx *types.EvidenceContext) ([]types.Idea, error) {
	out := make([]types.Idea, len(ideas))

	g, gctx := errgroup.WithContext(ctx)
	if v.cfg.Parallelism > 0 {
		g.SetLimit(v.cfg.Parallelism)
	}
	for i := range ideas {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = v.ValidateIdea(ideas[i], ectx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("validation aborted: %w", err)
	}
	return out, nil
}

// ValidateIdea drives one idea through the state machine to a terminal
// status. The input is taken by value; the caller's copy is never mutated.
// An idea the synthesizer already rejected passes through unchanged, so
// its reason code survives into the run record.
func (v *Validator) ValidateIdea(idea types.Idea, ectx *types.EvidenceContext) types.Idea {
	if idea.Status == types.StatusRejected {
		return idea
	}

	st := stateCheckingSchema
	var gaps []gap

	for {
		switch st {
		case stateCheckingSchema:
			var reason types.RejectionReason
			gaps, reason = v.checkSchema(&idea, ectx)
			if reason != "" {
				return reject(idea, reason)
			}
			st = stateCheckingBenchmark

		case stateCheckingBenchmark:
			entry, err := v.registry.Lookup(idea.Impact.Metric)
			if err != nil {
				// Fatal to the idea, not to the process.
				return reject(idea, types.ReasonUnknownMetric)
			}
			// Benchmark selection is deterministic policy, not a creative
			// decision: mismatches are corrected in place, never left to
			// the generator's choice.
			idea.Benchmark = entry
			st = stateCheckingNovelty

		case stateCheckingNovelty:
			if v.isBenchmarkClone(idea) {
				return reject(idea, types.ReasonBenchmarkClone)
			}
			st = stateBackfilling

		case stateBackfilling:
			if reason := v.backfill(&idea, gaps, ectx); reason != "" {
				return reject(idea, reason)
			}
			st = stateValidated

		case stateValidated:
			idea.Status = types.StatusValidated
			idea.Rejection = ""
			return idea

		case stateRejected:
			// Unreachable: rejections return directly. Kept so the switch
			// covers every state.
			return idea
		}
	}
}

// checkSchema verifies required fields and typing. Missing soft fields
// (BOTEC, doers, novelty rationale, verification plan, citation count) are
// routed to backfilling; a hard defect returns a rejection reason.
func (v *Validator) checkSchema(idea *types.Idea, ectx *types.EvidenceContext) ([]gap, types.RejectionReason) {
	if strings.TrimSpace(idea.FundingTarget) == "" || strings.TrimSpace(idea.Mechanism) == "" {
		return nil, types.ReasonSchemaViolation
	}
	if _, err := types.ParseMetric(string(idea.Impact.Metric)); err != nil {
		return nil, types.ReasonUnknownMetric
	}

	// Citations must come from the supplied context: an idea citing
	// anything else fabricated its support.
	for _, id := range idea.Citations {
		if !ectx.Contains(id) {
			return nil, types.ReasonInsufficientSupport
		}
	}

	var gaps []gap
	if idea.Botec.IsZero() {
		gaps = append(gaps, gapBotec)
	}
	if len(idea.Doers) == 0 {
		gaps = append(gaps, gapDoers)
	}
	if strings.TrimSpace(idea.NoveltyRationale) == "" {
		gaps = append(gaps, gapNovelty)
	}
	if !isCheckablePlan(idea.VerificationPlan) {
		gaps = append(gaps, gapVerification)
	}
	if len(idea.Citations) < minCitations {
		gaps = append(gaps, gapCitations)
	}
	return gaps, ""
}

// isCheckablePlan reports whether a verification plan states a pass/fail
// criterion rather than a vague intention. The test is lexical: the plan
// must quantify something (a digit) and carry comparative or pass/fail
// phrasing.
func isCheckablePlan(plan string) bool {
	p := strings.ToLower(plan)
	if !strings.ContainsAny(p, "0123456789") {
		return false
	}
	markers := []string{"pass", "fail", "at least", "reach", "exceed", ">=", "within", "by 20", "below", "above"}
	for _, m := range markers {
		if strings.Contains(p, m) {
			return true
		}
	}
	return false
}

func reject(idea types.Idea, reason types.RejectionReason) types.Idea {
	idea.Status = types.StatusRejected
	idea.Rejection = reason
	return idea
}
