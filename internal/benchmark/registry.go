// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package benchmark holds the static metric-to-benchmark registry.
// Each metric maps to exactly one benchmark family; the registry performs
// no metric-to-metric conversion and exposes none.
// See docs/ARCHITECTURE.md § Benchmark Registry.
package benchmark

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/idea-engine/pkg/types"
)

// ErrUnknownMetric reports a lookup outside the closed metric enum. With a
// validated configuration this indicates a bug; callers treat it as fatal
// to the idea, not to the process.
var ErrUnknownMetric = errors.New("unknown metric")

// Registry is the process-wide metric-to-benchmark table. It is loaded
// once at startup and read-only thereafter, so concurrent runs share it
// without locking.
type Registry struct {
	entries map[types.Metric]types.BenchmarkEntry
}

// Discount is the fixed discounting policy: 0% up to 50 years, 2% beyond.
var Discount = types.DiscountSchedule{UpTo50Years: 0.0, Beyond50Year: 0.02}

// defaultEntries is the built-in five-row benchmark table. Ranges are
// indicative, in each metric's native unit, and used for comparison only.
var defaultEntries = []types.BenchmarkEntry{
	{
		Metric: types.MetricDALY,
		Name:   "GiveWell top charities",
		Range:  types.ReferenceRange{Low: 100, High: 500, Unit: "usd_per_daly"},
		Description: "Direct delivery of proven global health interventions through " +
			"GiveWell top charities: insecticide-treated malaria nets, seasonal malaria " +
			"chemoprevention, vitamin A supplementation, and vaccination incentives.",
	},
	{
		Metric: types.MetricWALY,
		Name:   "Humane League / ACE",
		Range:  types.ReferenceRange{Low: 0.01, High: 1.0, Unit: "usd_per_animal_year"},
		Description: "Corporate animal welfare campaigns in the style of The Humane " +
			"League and ACE-recommended charities: cage-free and broiler welfare " +
			"commitments secured through corporate outreach and pressure campaigns.",
	},
	{
		Metric: types.MetricWELBY,
		Name:   "StrongMinds-like",
		Range:  types.ReferenceRange{Low: 50, High: 1000, Unit: "usd_per_welby"},
		Description: "Group interpersonal psychotherapy for depression delivered by " +
			"lay community workers in low-income countries, in the style of StrongMinds.",
	},
	{
		Metric: types.MetricLogIncome,
		Name:   "GiveDirectly",
		Range:  types.ReferenceRange{Low: 1.0, High: 1.0, Unit: "relative_effect"},
		Description: "Unconditional cash transfers to people in extreme poverty " +
			"delivered via mobile money, in the style of GiveDirectly.",
	},
	{
		Metric: types.MetricCO2,
		Name:   "Frontier climate",
		Range:  types.ReferenceRange{Low: 5, High: 100, Unit: "usd_per_tco2e"},
		Description: "Advance market commitments for permanent carbon removal in the " +
			"style of Frontier: pooled purchase agreements for durable CO2 removal.",
	},
}

// Default returns a registry built from the embedded benchmark table.
func Default() *Registry {
	r, err := newRegistry(defaultEntries)
	if err != nil {
		// The embedded table is validated by tests; a failure here is a
		// build defect.
		panic(err)
	}
	return r
}

// Load reads a benchmark table from a YAML file. The table must cover
// every metric exactly once.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading benchmark table: %w", err)
	}
	var entries []types.BenchmarkEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing benchmark table: %w", err)
	}
	return newRegistry(entries)
}

func newRegistry(entries []types.BenchmarkEntry) (*Registry, error) {
	m := make(map[types.Metric]types.BenchmarkEntry, len(entries))
	for _, e := range entries {
		if _, err := types.ParseMetric(string(e.Metric)); err != nil {
			return nil, fmt.Errorf("benchmark table: %w", err)
		}
		if _, dup := m[e.Metric]; dup {
			return nil, fmt.Errorf("benchmark table: duplicate entry for metric %s", e.Metric)
		}
		if e.Name == "" || e.Description == "" {
			return nil, fmt.Errorf("benchmark table: entry for %s missing name or description", e.Metric)
		}
		m[e.Metric] = e
	}
	for _, metric := range types.Metrics() {
		if _, ok := m[metric]; !ok {
			return nil, fmt.Errorf("benchmark table: no entry for metric %s", metric)
		}
	}
	return &Registry{entries: m}, nil
}

// Lookup returns the canonical benchmark for a metric.
func (r *Registry) Lookup(metric types.Metric) (types.BenchmarkEntry, error) {
	e, ok := r.entries[metric]
	if !ok {
		return types.BenchmarkEntry{}, fmt.Errorf("%w: %q", ErrUnknownMetric, metric)
	}
	return e, nil
}

// IsValidMapping reports whether name is the canonical benchmark for metric.
// Comparison is case-insensitive on the benchmark family name.
func (r *Registry) IsValidMapping(metric types.Metric, name string) bool {
	e, ok := r.entries[metric]
	if !ok {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(name), e.Name)
}

// Entries returns every benchmark entry in metric declaration order.
func (r *Registry) Entries() []types.BenchmarkEntry {
	out := make([]types.BenchmarkEntry, 0, len(r.entries))
	for _, metric := range types.Metrics() {
		if e, ok := r.entries[metric]; ok {
			out = append(out, e)
		}
	}
	return out
}
