// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package benchmark

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/idea-engine/pkg/types"
)

func TestDefaultCoversEveryMetric(t *testing.T) {
	r := Default()
	for _, metric := range types.Metrics() {
		e, err := r.Lookup(metric)
		if err != nil {
			t.Fatalf("Lookup(%s): %v", metric, err)
		}
		if e.Name == "" || e.Description == "" {
			t.Errorf("entry for %s missing name or description", metric)
		}
		if e.Range.Unit == "" {
			t.Errorf("entry for %s missing range unit", metric)
		}
	}
}

func TestLookupUnknownMetric(t *testing.T) {
	r := Default()
	_, err := r.Lookup(types.Metric("QALY"))
	if !errors.Is(err, ErrUnknownMetric) {
		t.Fatalf("expected ErrUnknownMetric, got %v", err)
	}
}

func TestDefaultRanges(t *testing.T) {
	tests := []struct {
		metric    types.Metric
		low, high float64
		unit      string
	}{
		{types.MetricDALY, 100, 500, "usd_per_daly"},
		{types.MetricWALY, 0.01, 1.0, "usd_per_animal_year"},
		{types.MetricWELBY, 50, 1000, "usd_per_welby"},
		{types.MetricLogIncome, 1.0, 1.0, "relative_effect"},
		{types.MetricCO2, 5, 100, "usd_per_tco2e"},
	}

	r := Default()
	for _, tt := range tests {
		t.Run(string(tt.metric), func(t *testing.T) {
			e, err := r.Lookup(tt.metric)
			if err != nil {
				t.Fatal(err)
			}
			if e.Range.Low != tt.low || e.Range.High != tt.high {
				t.Errorf("range = [%v, %v], want [%v, %v]", e.Range.Low, e.Range.High, tt.low, tt.high)
			}
			if e.Range.Unit != tt.unit {
				t.Errorf("unit = %q, want %q", e.Range.Unit, tt.unit)
			}
		})
	}
}

func TestIsValidMapping(t *testing.T) {
	r := Default()

	tests := []struct {
		name   string
		metric types.Metric
		bench  string
		want   bool
	}{
		{"exact match", types.MetricDALY, "GiveWell top charities", true},
		{"case insensitive", types.MetricDALY, "givewell TOP charities", true},
		{"surrounding whitespace", types.MetricCO2, "  Frontier climate ", true},
		{"wrong benchmark for metric", types.MetricDALY, "GiveDirectly", false},
		{"empty name", types.MetricWALY, "", false},
		{"unknown metric", types.Metric("QALY"), "GiveWell top charities", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.IsValidMapping(tt.metric, tt.bench); got != tt.want {
				t.Errorf("IsValidMapping(%s, %q) = %v, want %v", tt.metric, tt.bench, got, tt.want)
			}
		})
	}
}

func TestEntriesOrder(t *testing.T) {
	entries := Default().Entries()
	metrics := types.Metrics()
	if len(entries) != len(metrics) {
		t.Fatalf("got %d entries, want %d", len(entries), len(metrics))
	}
	for i, e := range entries {
		if e.Metric != metrics[i] {
			t.Errorf("entries[%d].Metric = %s, want %s", i, e.Metric, metrics[i])
		}
	}
}

func TestDiscountSchedule(t *testing.T) {
	if Discount.UpTo50Years != 0.0 {
		t.Errorf("UpTo50Years = %v, want 0", Discount.UpTo50Years)
	}
	if Discount.Beyond50Year != 0.02 {
		t.Errorf("Beyond50Year = %v, want 0.02", Discount.Beyond50Year)
	}
}

// --- Load ---

func writeTable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "benchmarks.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const validTable = `
- metric: DALY
  name: GiveWell top charities
  range: {low: 100, high: 500, unit: usd_per_daly}
  description: Proven global health interventions.
- metric: WALY
  name: Humane League / ACE
  range: {low: 0.01, high: 1.0, unit: usd_per_animal_year}
  description: Corporate animal welfare campaigns.
- metric: WELBY
  name: StrongMinds-like
  range: {low: 50, high: 1000, unit: usd_per_welby}
  description: Group psychotherapy for depression.
- metric: log_income
  name: GiveDirectly
  range: {low: 1.0, high: 1.0, unit: relative_effect}
  description: Unconditional cash transfers.
- metric: CO2
  name: Frontier climate
  range: {low: 5, high: 100, unit: usd_per_tco2e}
  description: Advance market commitments for carbon removal.
`

func TestLoadValidTable(t *testing.T) {
	r, err := Load(writeTable(t, validTable))
	if err != nil {
		t.Fatal(err)
	}
	e, err := r.Lookup(types.MetricWELBY)
	if err != nil {
		t.Fatal(err)
	}
	if e.Name != "StrongMinds-like" {
		t.Errorf("Name = %q, want StrongMinds-like", e.Name)
	}
}

func TestLoadRejectsIncompleteTable(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing metric",
			content: `
- metric: DALY
  name: GiveWell top charities
  range: {low: 100, high: 500, unit: usd_per_daly}
  description: Proven global health interventions.
`,
			wantErr: "no entry for metric",
		},
		{
			name:    "duplicate metric",
			content: validTable + "\n- metric: DALY\n  name: Other\n  range: {low: 1, high: 2, unit: u}\n  description: Dup.\n",
			wantErr: "duplicate entry",
		},
		{
			name:    "unknown metric",
			content: validTable + "\n- metric: QALY\n  name: Other\n  range: {low: 1, high: 2, unit: u}\n  description: Bad.\n",
			wantErr: "unknown metric",
		},
		{
			name: "missing description",
			content: strings.Replace(validTable,
				"  description: Proven global health interventions.\n", "", 1),
			wantErr: "missing name or description",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeTable(t, tt.content))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
