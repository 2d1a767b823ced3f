// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "testing"

func TestParseMetric(t *testing.T) {
	for _, m := range Metrics() {
		got, err := ParseMetric(string(m))
		if err != nil || got != m {
			t.Errorf("ParseMetric(%s) = %s, %v", m, got, err)
		}
	}

	for _, bad := range []string{"QALY", "daly", "", "log income"} {
		if _, err := ParseMetric(bad); err == nil {
			t.Errorf("ParseMetric(%q) accepted an invalid metric", bad)
		}
	}
}

func TestBOTECIsZero(t *testing.T) {
	if !(BOTEC{}).IsZero() {
		t.Error("empty BOTEC should be zero")
	}
	if (BOTEC{Formula: "a / b"}).IsZero() {
		t.Error("BOTEC with a formula is not zero")
	}
	if (BOTEC{Assumptions: []Assumption{{Name: "n"}}}).IsZero() {
		t.Error("BOTEC with assumptions is not zero")
	}
}

func TestEvidenceContextLookup(t *testing.T) {
	ctx := EvidenceContext{
		Items: []ScoredItem{
			{EvidenceItem: EvidenceItem{ID: "a"}},
			{EvidenceItem: EvidenceItem{ID: "b"}},
		},
	}
	if !ctx.Contains("a") || ctx.Contains("z") {
		t.Error("Contains misreports membership")
	}
	if item := ctx.Item("b"); item == nil || item.ID != "b" {
		t.Errorf("Item(b) = %+v", item)
	}
}
