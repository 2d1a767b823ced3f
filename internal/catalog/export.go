// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/idea-engine/pkg/types"
)

const exportLimit = 100000

// Export writes the catalog (or a filtered subset) to
// catalogDir/export/ideas.<format>. Supported formats: yaml, json, csv,
// markdown. Every idea field is serialized so downstream renderers lose
// nothing.
func (s *Store) Export(ctx context.Context, format string, opts QueryOptions) (string, error) {
	opts.MaxResults = exportLimit
	ideas, err := s.Retrieve(ctx, opts)
	if err != nil {
		return "", fmt.Errorf("querying for export: %w", err)
	}

	dir := filepath.Join(s.catalogDir, exportDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}

	var ext string
	switch format {
	case "yaml", "":
		ext = "yaml"
	case "json":
		ext = "json"
	case "csv":
		ext = "csv"
	case "markdown":
		ext = "md"
	default:
		return "", fmt.Errorf("unsupported format %q: use yaml, json, csv, or markdown", format)
	}

	path := filepath.Join(dir, "ideas."+ext)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	switch ext {
	case "yaml":
		err = writeYAML(f, ideas)
	case "json":
		err = writeJSON(f, ideas)
	case "csv":
		err = WriteCSV(f, ideas)
	case "md":
		err = WriteMarkdown(f, ideas)
	}
	if err != nil {
		return "", err
	}
	return path, nil
}

func writeYAML(w io.Writer, ideas []types.Idea) error {
	data, err := yaml.Marshal(ideas)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = w.Write(data)
	return err
}

func writeJSON(w io.Writer, ideas []types.Idea) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ideas)
}

// csvHeader lists every idea field; nested structures are JSON-encoded in
// their cell so the record stays lossless.
var csvHeader = []string{
	"id", "run_id", "funding_target", "mechanism", "metric",
	"expected_impact_quantity", "cost", "benchmark_name",
	"cost_effectiveness_ratio", "botec", "verification_plan", "doers",
	"novelty_rationale", "citations", "status", "rejection_reason",
}

// WriteCSV renders ideas as CSV with one row per idea.
func WriteCSV(w io.Writer, ideas []types.Idea) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, idea := range ideas {
		botecJSON, _ := json.Marshal(idea.Botec)
		doersJSON, _ := json.Marshal(idea.Doers)
		record := []string{
			idea.ID, idea.RunID, idea.FundingTarget, idea.Mechanism,
			string(idea.Impact.Metric), idea.Impact.Quantity, idea.Cost,
			idea.Benchmark.Name, idea.CostEffectiveness, string(botecJSON),
			idea.VerificationPlan, string(doersJSON), idea.NoveltyRationale,
			strings.Join(idea.Citations, ";"), string(idea.Status),
			string(idea.Rejection),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing CSV record for %s: %w", idea.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMarkdown renders ideas as a readable Markdown report.
func WriteMarkdown(w io.Writer, ideas []types.Idea) error {
	fmt.Fprintf(w, "# Funding ideas\n\n")
	for i, idea := range ideas {
		fmt.Fprintf(w, "## %d. %s\n\n", i+1, idea.FundingTarget)
		fmt.Fprintf(w, "**Mechanism:** %s\n\n", idea.Mechanism)
		fmt.Fprintf(w, "**Expected impact:** %s (%s)\n\n", idea.Impact.Quantity, idea.Impact.Metric)
		fmt.Fprintf(w, "**Cost:** %s\n\n", idea.Cost)
		fmt.Fprintf(w, "**Benchmark:** %s | **CE vs benchmark:** %s\n\n",
			idea.Benchmark.Name, idea.CostEffectiveness)
		if !idea.Botec.IsZero() {
			fmt.Fprintf(w, "**BOTEC:** `%s` → %s (range %s to %s)\n\n",
				idea.Botec.Formula, idea.Botec.PointEstimate,
				idea.Botec.SensitivityLow, idea.Botec.SensitivityHigh)
			for _, a := range idea.Botec.Assumptions {
				fmt.Fprintf(w, "- %s = %s", a.Name, a.Value)
				if a.CitationID != "" {
					fmt.Fprintf(w, " [%s]", a.CitationID)
				}
				fmt.Fprintln(w)
			}
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "**Verification:** %s\n\n", idea.VerificationPlan)
		if len(idea.Doers) > 0 {
			fmt.Fprintf(w, "**Doers:**\n")
			for _, d := range idea.Doers {
				if d.Name != "" {
					fmt.Fprintf(w, "- %s (%.2f)\n", d.Name, d.Score)
				} else {
					fmt.Fprintf(w, "- %s\n", d.Archetype)
				}
			}
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "**Why novel:** %s\n\n", idea.NoveltyRationale)
		fmt.Fprintf(w, "**Citations:** %s\n\n", strings.Join(idea.Citations, ", "))
	}
	fmt.Fprintf(w, "---\n%d idea(s)\n", len(ideas))
	return nil
}
