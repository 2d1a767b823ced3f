// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// Metric is the closed set of impact metrics. Each metric is bound to
// exactly one benchmark family and is never converted to another metric.
type Metric string

const (
	MetricDALY      Metric = "DALY"       // disability-adjusted life years
	MetricWALY      Metric = "WALY"       // welfare-adjusted life years (animals)
	MetricWELBY     Metric = "WELBY"      // wellbeing-adjusted life years
	MetricLogIncome Metric = "log_income" // log-income doublings
	MetricCO2       Metric = "CO2"        // tonnes CO2-equivalent averted
)

// Metrics lists every valid metric in declaration order.
func Metrics() []Metric {
	return []Metric{MetricDALY, MetricWALY, MetricWELBY, MetricLogIncome, MetricCO2}
}

// ParseMetric validates a metric string against the closed enum.
func ParseMetric(s string) (Metric, error) {
	for _, m := range Metrics() {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// ReferenceRange is the indicative cost-effectiveness range of a benchmark,
// expressed in the benchmark's native unit. Ranges are for comparison only.
type ReferenceRange struct {
	// Low is the optimistic end of the range.
	Low float64 `json:"low" yaml:"low"`

	// High is the pessimistic end of the range.
	High float64 `json:"high" yaml:"high"`

	// Unit names the native unit (e.g. "usd_per_daly").
	Unit string `json:"unit" yaml:"unit"`
}

// BenchmarkEntry maps one metric to its canonical benchmark family.
// Entries are static and read-only after registry initialization.
type BenchmarkEntry struct {
	// Metric is the impact metric this benchmark anchors.
	Metric Metric `json:"metric" yaml:"metric"`

	// Name is the benchmark family (e.g. "GiveWell top charities").
	Name string `json:"name" yaml:"name"`

	// Range is the indicative cost-effectiveness range.
	Range ReferenceRange `json:"range" yaml:"range"`

	// Description characterizes the benchmark intervention itself. The
	// validator compares candidate ideas against it when rejecting
	// benchmark clones.
	Description string `json:"description" yaml:"description"`
}

// DiscountSchedule is the fixed time-discounting policy surfaced to
// synthesis prompts: 0% up to 50 years out, 2% thereafter. The core never
// computes net present values; the schedule is policy text for generation.
type DiscountSchedule struct {
	UpTo50Years  float64 `json:"up_to_50y" yaml:"up_to_50y"`
	Beyond50Year float64 `json:"beyond_50y" yaml:"beyond_50y"`
}
