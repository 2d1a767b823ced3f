// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// IdeaStatus tracks an idea through the pipeline. Ideas are created in
// draft by the synthesis engine and reach a terminal state only through
// the refinement validator.
type IdeaStatus string

const (
	StatusDraft     IdeaStatus = "draft"
	StatusValidated IdeaStatus = "validated"
	StatusRejected  IdeaStatus = "rejected"
)

// RejectionReason is the reason code attached to a rejected idea.
type RejectionReason string

const (
	// ReasonSchemaViolation marks output that stayed malformed after retries.
	ReasonSchemaViolation RejectionReason = "schema_violation"

	// ReasonBenchmarkClone marks an idea substantially equivalent to the
	// benchmark intervention for its metric.
	ReasonBenchmarkClone RejectionReason = "benchmark_clone"

	// ReasonInsufficientSupport marks a required field that could not be
	// backfilled from the evidence context.
	ReasonInsufficientSupport RejectionReason = "insufficient_support"

	// ReasonUnknownMetric marks a metric outside the closed enum.
	ReasonUnknownMetric RejectionReason = "unknown_metric"

	// ReasonMissingVerification marks a verification plan with no
	// checkable pass/fail criterion.
	ReasonMissingVerification RejectionReason = "missing_verification"
)

// Assumption is one named parameter of a BOTEC. Assumptions that are not
// directly computable must cite an evidence item from the context the idea
// was generated against; no assumption may originate elsewhere.
type Assumption struct {
	// Name identifies the parameter (e.g. "cost_per_dose").
	Name string `json:"name" yaml:"name"`

	// Value is the assumed value as text, unit included where helpful.
	Value string `json:"value" yaml:"value"`

	// CitationID is the evidence item backing the assumption. Empty only
	// for directly computable values.
	CitationID string `json:"citation_id,omitempty" yaml:"citation_id,omitempty"`
}

// BOTEC is a back-of-the-envelope calculation: explicit assumptions, a
// symbolic formula over them, a point estimate, and a sensitivity range.
type BOTEC struct {
	Assumptions []Assumption `json:"assumptions" yaml:"assumptions"`

	// Formula is a symbolic expression over assumption names
	// (e.g. "people_reached * effect_size / total_cost").
	Formula string `json:"formula" yaml:"formula"`

	// PointEstimate is the central estimate in the metric's native unit.
	PointEstimate string `json:"point_estimate" yaml:"point_estimate"`

	// SensitivityLow and SensitivityHigh bound the estimate.
	SensitivityLow  string `json:"sensitivity_low" yaml:"sensitivity_low"`
	SensitivityHigh string `json:"sensitivity_high" yaml:"sensitivity_high"`
}

// IsZero reports whether the BOTEC carries no content at all.
func (b BOTEC) IsZero() bool {
	return len(b.Assumptions) == 0 && b.Formula == "" && b.PointEstimate == ""
}

// Doer is a candidate implementer: either a named person/org with a fit
// score, or an archetype description with no score.
type Doer struct {
	// Name is the person or organization. Empty for archetypes.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Score is a fit score between 0.0 and 1.0 for named doers.
	Score float64 `json:"score,omitempty" yaml:"score,omitempty"`

	// Archetype describes the kind of doer needed when none is named
	// (e.g. "biosecurity policy entrepreneur with procurement experience").
	Archetype string `json:"archetype,omitempty" yaml:"archetype,omitempty"`
}

// ExpectedImpact quantifies an idea's impact in its native metric.
type ExpectedImpact struct {
	// Metric is the impact metric, fixed to one benchmark family.
	Metric Metric `json:"metric" yaml:"metric"`

	// Quantity is the expected impact magnitude as text (ranges allowed).
	Quantity string `json:"quantity" yaml:"quantity"`
}

// Idea is a standardized funding claim: fund X via mechanism Y, expect
// impact Z at cost C, yielding cost-effectiveness vs. benchmark B.
// Every field serializes losslessly for JSON/CSV/Markdown export.
type Idea struct {
	// ID is assigned by the synthesis engine within a run.
	ID string `json:"id" yaml:"id"`

	// RunID links the idea to the pipeline run that produced it.
	RunID string `json:"run_id" yaml:"run_id"`

	// FundingTarget is what gets funded (program, technology, org).
	FundingTarget string `json:"funding_target" yaml:"funding_target"`

	// Mechanism is the funding lever (AMC, prize, milestone contract,
	// purchase guarantee, pooled procurement, direct grant, ...).
	Mechanism string `json:"mechanism" yaml:"mechanism"`

	// Impact is the expected impact in the idea's native metric.
	Impact ExpectedImpact `json:"expected_impact" yaml:"expected_impact"`

	// Cost is the total cost estimate (USD, ranges allowed).
	Cost string `json:"cost" yaml:"cost"`

	// Benchmark is the canonical benchmark for the idea's metric. The
	// validator normalizes it; the generator's choice is never trusted.
	Benchmark BenchmarkEntry `json:"benchmark" yaml:"benchmark"`

	// CostEffectiveness compares the idea to its benchmark in the native
	// metric, no cross-metric conversion.
	CostEffectiveness string `json:"cost_effectiveness_ratio" yaml:"cost_effectiveness_ratio"`

	// Botec is the supporting back-of-the-envelope calculation.
	Botec BOTEC `json:"botec" yaml:"botec"`

	// VerificationPlan states an independently checkable pass/fail
	// criterion for whether the idea worked.
	VerificationPlan string `json:"verification_plan" yaml:"verification_plan"`

	// Doers lists candidate implementers or an archetype.
	Doers []Doer `json:"doers" yaml:"doers"`

	// NoveltyRationale explains why the idea is not already being done,
	// typically by naming the adoption barrier the mechanism removes.
	NoveltyRationale string `json:"novelty_rationale" yaml:"novelty_rationale"`

	// Citations references evidence items from the run's context, at
	// least two per validated idea.
	Citations []string `json:"citations" yaml:"citations"`

	// Status is draft, validated, or rejected.
	Status IdeaStatus `json:"status" yaml:"status"`

	// Rejection carries the reason code for rejected ideas.
	Rejection RejectionReason `json:"rejection_reason,omitempty" yaml:"rejection_reason,omitempty"`
}
