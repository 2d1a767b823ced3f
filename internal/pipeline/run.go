// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline orchestrates one run: evidence context build, idea
// synthesis, refinement validation, catalog assembly. Runs share only the
// read-only benchmark registry and evidence pool, so concurrent runs need
// no locking. See docs/ARCHITECTURE.md § Pipeline Interface.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/pdiddy/idea-engine/internal/catalog"
	"github.com/pdiddy/idea-engine/internal/evidence"
	"github.com/pdiddy/idea-engine/internal/refine"
	"github.com/pdiddy/idea-engine/internal/synthesis"
	"github.com/pdiddy/idea-engine/pkg/types"
)

// ErrNoValidIdeas reports a run in which every candidate was rejected.
// A run returns a non-empty catalog or fails with an explicit reason,
// never a silent empty success.
var ErrNoValidIdeas = errors.New("no ideas survived validation")

// Runner wires the pipeline stages for repeated runs. All fields are
// read-only after construction.
type Runner struct {
	Builder   *evidence.Builder
	Engine    *synthesis.Engine
	Validator *refine.Validator
}

// Result is the outcome of one completed run.
type Result struct {
	// RunID identifies the run in logs and the catalog store.
	RunID string

	// Context is the evidence context the run was generated against.
	Context types.EvidenceContext

	// Catalog holds the validated ideas in validation order.
	Catalog *catalog.Catalog

	// Rejected holds rejected ideas with reason codes for observability.
	Rejected []types.Idea
}

// Run executes the pipeline for one goal. The run is abortable between
// stages: an idea either completes validation or is discarded, so a
// cancelled run never leaves partially validated ideas in the catalog.
// Stage-level failures (insufficient evidence, synthesis unavailable)
// abort the run; idea-level failures only drop that candidate.
func (r *Runner) Run(ctx context.Context, w io.Writer, goal string, metricHint types.Metric, pool []types.EvidenceItem) (*Result, error) {
	runID := uuid.NewString()

	ectx, err := r.Builder.Build(goal, pool, metricHint)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "run %s: context built (%d items)\n", runID, len(ectx.Items))

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run cancelled before synthesis: %w", err)
	}

	candidates, err := r.Engine.Generate(ctx, runID, ectx)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "run %s: %d candidate idea(s) synthesized\n", runID, len(candidates))

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run cancelled before validation: %w", err)
	}

	terminal, err := r.Validator.Validate(ctx, candidates, &ectx)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:   runID,
		Context: ectx,
		Catalog: catalog.New(),
	}
	for _, idea := range terminal {
		switch idea.Status {
		case types.StatusValidated:
			if err := result.Catalog.Add(idea); err != nil {
				return nil, err
			}
		case types.StatusRejected:
			fmt.Fprintf(w, "run %s: rejected %s (%s): %s\n", runID, idea.ID, idea.Rejection, idea.FundingTarget)
			result.Rejected = append(result.Rejected, idea)
		}
	}

	fmt.Fprintf(w, "run %s: %d validated, %d rejected\n", runID, result.Catalog.Len(), len(result.Rejected))

	if result.Catalog.Len() == 0 {
		return nil, fmt.Errorf("%w: %d candidate(s) rejected", ErrNoValidIdeas, len(result.Rejected))
	}
	return result, nil
}
