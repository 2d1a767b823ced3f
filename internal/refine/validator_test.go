// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package refine

import (
	"context"
	"testing"

	"github.com/pdiddy/idea-engine/internal/benchmark"
	"github.com/pdiddy/idea-engine/pkg/types"
)

// --- fixtures ---

func testValidator() *Validator {
	return NewValidator(benchmark.Default(), types.ValidationConfig{})
}

func testEvidenceContext() *types.EvidenceContext {
	return &types.EvidenceContext{
		Goal: "reduce malaria deaths",
		Items: []types.ScoredItem{
			{
				EvidenceItem: types.EvidenceItem{
					ID: "ev-1", SourceName: "Open Philanthropy",
					Title:   "Malaria vaccine cold chain constraints",
					Summary: "Charity programs struggle with cold chain logistics for malaria vaccine deployment.",
					Tier:    types.TierPrimary,
				},
			},
			{
				EvidenceItem: types.EvidenceItem{
					ID: "ev-2", SourceName: "IHME",
					Title:   "Cold chain financing gap",
					Summary: "Financing for cold chain equipment remains a barrier for malaria vaccine rollout.",
					Tier:    types.TierData,
				},
			},
			{
				EvidenceItem: types.EvidenceItem{
					ID: "ev-3", SourceName: "EA Forum",
					Title:   "Shrimp welfare stunning interventions",
					Summary: "Electrical stunning adoption in shrimp supply chains.",
					Tier:    types.TierCommentary,
				},
			},
		},
		Budget: 12000,
	}
}

// validDraft is a fully populated draft that should validate unchanged.
func validDraft() types.Idea {
	return types.Idea{
		ID:            "abc123def456",
		RunID:         "run-1",
		FundingTarget: "Cold chain equipment leasing for malaria vaccine clinics",
		Mechanism:     "pooled procurement",
		Impact:        types.ExpectedImpact{Metric: types.MetricDALY, Quantity: "50000 DALYs averted"},
		Cost:          "$20M",
		Benchmark:     types.BenchmarkEntry{Metric: types.MetricDALY, Name: "GiveWell top charities"},
		Botec: types.BOTEC{
			Assumptions:   []types.Assumption{{Name: "clinics_reached", Value: "500", CitationID: "ev-1"}},
			Formula:       "clinics_reached * dalys_per_clinic / total_cost",
			PointEstimate: "400 usd per DALY",
		},
		VerificationPlan: "Pass if 500 clinics reach cold-chain uptime of at least 95% within 2 years.",
		Doers:            []types.Doer{{Name: "Example Health Logistics", Score: 0.7}},
		NoveltyRationale: "No buyer aggregates clinic cold chain demand today.",
		Citations:        []string{"ev-1", "ev-2"},
		Status:           types.StatusDraft,
	}
}

// --- ValidateIdea ---

func TestValidateIdeaHappyPath(t *testing.T) {
	v := testValidator()
	got := v.ValidateIdea(validDraft(), testEvidenceContext())

	if got.Status != types.StatusValidated {
		t.Fatalf("status = %s (%s), want validated", got.Status, got.Rejection)
	}
	if got.Rejection != "" {
		t.Errorf("validated idea carries rejection reason %q", got.Rejection)
	}
}

func TestValidateIdeaNormalizesBenchmark(t *testing.T) {
	idea := validDraft()
	idea.Benchmark = types.BenchmarkEntry{Metric: types.MetricDALY, Name: "some invented benchmark"}

	v := testValidator()
	got := v.ValidateIdea(idea, testEvidenceContext())

	if got.Status != types.StatusValidated {
		t.Fatalf("status = %s (%s), want validated", got.Status, got.Rejection)
	}
	if got.Benchmark.Name != "GiveWell top charities" {
		t.Errorf("benchmark name = %q, want canonical entry", got.Benchmark.Name)
	}
	if got.Benchmark.Description == "" || got.Benchmark.Range.Unit != "usd_per_daly" {
		t.Error("benchmark not replaced by full registry entry")
	}
}

func TestValidateIdeaRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.Idea)
		want   types.RejectionReason
	}{
		{
			name:   "empty funding target",
			mutate: func(i *types.Idea) { i.FundingTarget = "  " },
			want:   types.ReasonSchemaViolation,
		},
		{
			name:   "empty mechanism",
			mutate: func(i *types.Idea) { i.Mechanism = "" },
			want:   types.ReasonSchemaViolation,
		},
		{
			name:   "metric outside the enum",
			mutate: func(i *types.Idea) { i.Impact.Metric = "QALY" },
			want:   types.ReasonUnknownMetric,
		},
		{
			name:   "citation not in context",
			mutate: func(i *types.Idea) { i.Citations = []string{"ev-1", "ev-999"} },
			want:   types.ReasonInsufficientSupport,
		},
		{
			name: "vague plan and unquantified impact",
			mutate: func(i *types.Idea) {
				i.VerificationPlan = "We will monitor progress closely."
				i.Impact.Quantity = ""
			},
			want: types.ReasonMissingVerification,
		},
	}

	v := testValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idea := validDraft()
			tt.mutate(&idea)
			got := v.ValidateIdea(idea, testEvidenceContext())
			if got.Status != types.StatusRejected {
				t.Fatalf("status = %s, want rejected", got.Status)
			}
			if got.Rejection != tt.want {
				t.Errorf("rejection = %s, want %s", got.Rejection, tt.want)
			}
		})
	}
}

func TestValidateIdeaPassesThroughRejectedInput(t *testing.T) {
	idea := validDraft()
	idea.Status = types.StatusRejected
	idea.Rejection = types.ReasonUnknownMetric

	v := testValidator()
	got := v.ValidateIdea(idea, testEvidenceContext())

	if got.Status != types.StatusRejected || got.Rejection != types.ReasonUnknownMetric {
		t.Errorf("got %s (%s), want the upstream rejection preserved", got.Status, got.Rejection)
	}
}

func TestValidateIdeaDoesNotMutateInput(t *testing.T) {
	idea := validDraft()
	idea.Benchmark.Name = "wrong name"

	v := testValidator()
	_ = v.ValidateIdea(idea, testEvidenceContext())

	if idea.Benchmark.Name != "wrong name" || idea.Status != types.StatusDraft {
		t.Error("caller's copy was mutated")
	}
}

// --- Validate ---

func TestValidatePreservesOrder(t *testing.T) {
	clone := validDraft()
	clone.FundingTarget = "Fund GiveWell top charities directly"

	badMetric := validDraft()
	badMetric.Impact.Metric = "QALY"

	drafts := []types.Idea{validDraft(), clone, badMetric, validDraft()}

	v := testValidator()
	out, err := v.Validate(context.Background(), drafts, testEvidenceContext())
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(drafts) {
		t.Fatalf("got %d results, want %d", len(out), len(drafts))
	}

	wantStatus := []types.IdeaStatus{
		types.StatusValidated, types.StatusRejected, types.StatusRejected, types.StatusValidated,
	}
	wantReason := []types.RejectionReason{
		"", types.ReasonBenchmarkClone, types.ReasonUnknownMetric, "",
	}
	for i := range out {
		if out[i].Status != wantStatus[i] {
			t.Errorf("out[%d].Status = %s, want %s", i, out[i].Status, wantStatus[i])
		}
		if out[i].Rejection != wantReason[i] {
			t.Errorf("out[%d].Rejection = %s, want %s", i, out[i].Rejection, wantReason[i])
		}
	}
}

func TestValidateMixedBatch(t *testing.T) {
	clone := validDraft()
	clone.FundingTarget = "Fund GiveWell top charities directly"

	badMetric := validDraft()
	badMetric.Impact.Metric = "QALY"

	badCitation := validDraft()
	badCitation.Citations = []string{"ev-1", "ev-999"}

	noMechanism := validDraft()
	noMechanism.Mechanism = ""

	vaguePlan := validDraft()
	vaguePlan.VerificationPlan = "We will monitor progress closely."
	vaguePlan.Impact.Quantity = ""

	drafts := []types.Idea{
		validDraft(), clone, validDraft(), badMetric, validDraft(),
		badCitation, validDraft(), noMechanism, validDraft(), vaguePlan,
	}

	v := testValidator()
	out, err := v.Validate(context.Background(), drafts, testEvidenceContext())
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(drafts) {
		t.Fatalf("got %d results, want %d", len(out), len(drafts))
	}

	validated := 0
	reasons := map[types.RejectionReason]int{}
	for _, idea := range out {
		switch idea.Status {
		case types.StatusValidated:
			validated++
		case types.StatusRejected:
			reasons[idea.Rejection]++
		default:
			t.Errorf("idea %s left in status %s", idea.ID, idea.Status)
		}
	}
	if validated != 5 {
		t.Errorf("validated = %d, want 5", validated)
	}
	for _, reason := range []types.RejectionReason{
		types.ReasonBenchmarkClone, types.ReasonUnknownMetric,
		types.ReasonInsufficientSupport, types.ReasonSchemaViolation,
		types.ReasonMissingVerification,
	} {
		if reasons[reason] != 1 {
			t.Errorf("rejections with reason %s = %d, want 1", reason, reasons[reason])
		}
	}
}

func TestValidateWithParallelismLimit(t *testing.T) {
	v := NewValidator(benchmark.Default(), types.ValidationConfig{Parallelism: 2})

	drafts := make([]types.Idea, 8)
	for i := range drafts {
		drafts[i] = validDraft()
	}
	out, err := v.Validate(context.Background(), drafts, testEvidenceContext())
	if err != nil {
		t.Fatal(err)
	}
	for i, idea := range out {
		if idea.Status != types.StatusValidated {
			t.Errorf("out[%d].Status = %s, want validated", i, idea.Status)
		}
	}
}

func TestValidateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v := testValidator()
	_, err := v.Validate(ctx, []types.Idea{validDraft()}, testEvidenceContext())
	if err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

// --- isCheckablePlan ---

func TestIsCheckablePlan(t *testing.T) {
	tests := []struct {
		name string
		plan string
		want bool
	}{
		{"pass criterion with number", "Pass if coverage reaches 80% by 2028.", true},
		{"threshold phrasing", "At least 10000 doses delivered within 18 months.", true},
		{"no quantity", "Pass if the program succeeds.", false},
		{"quantity but no criterion", "Roughly 12 partner meetings are planned.", false},
		{"empty plan", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isCheckablePlan(tt.plan); got != tt.want {
				t.Errorf("isCheckablePlan(%q) = %v, want %v", tt.plan, got, tt.want)
			}
		})
	}
}
