// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/idea-engine/internal/benchmark"
	"github.com/pdiddy/idea-engine/internal/catalog"
	"github.com/pdiddy/idea-engine/internal/evidence"
	"github.com/pdiddy/idea-engine/internal/pipeline"
	"github.com/pdiddy/idea-engine/internal/refine"
	"github.com/pdiddy/idea-engine/internal/synthesis"
	"github.com/pdiddy/idea-engine/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate [goal]",
	Short: "Run the idea generation pipeline for a goal",
	Long: `Generate builds a prioritized evidence context for the goal, synthesizes
candidate ideas through the generative backend, validates them (benchmark
normalization, evidence-bound backfill, benchmark-clone rejection), and
saves the run to the catalog.

The run either yields a non-empty validated catalog or fails with one
explicit reason.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	goal := args[0]
	metricFlag, _ := cmd.Flags().GetString("metric")
	rigorFlag, _ := cmd.Flags().GetString("rigor")
	numIdeas, _ := cmd.Flags().GetInt("num-ideas")
	evidenceDir, _ := cmd.Flags().GetString("evidence-dir")
	catalogDir, _ := cmd.Flags().GetString("catalog-dir")
	benchmarksFile, _ := cmd.Flags().GetString("benchmarks")
	model, _ := cmd.Flags().GetString("model")
	apiKeyFlag, _ := cmd.Flags().GetString("api-key")
	charBudget, _ := cmd.Flags().GetInt("char-budget")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	var metricHint types.Metric
	if metricFlag != "" {
		m, err := types.ParseMetric(metricFlag)
		if err != nil {
			return err
		}
		metricHint = m
	}

	rigor := types.RigorMode(rigorFlag)
	if rigor != types.RigorStandard && rigor != types.RigorDeep {
		return fmt.Errorf("invalid rigor %q: use standard or deep", rigorFlag)
	}

	apiKey := secretDefault("anthropic-api-key", apiKeyFlag)
	if apiKey == "" {
		return fmt.Errorf("no API key: pass --api-key or create .secrets/anthropic-api-key")
	}

	registry := benchmark.Default()
	if benchmarksFile != "" {
		var err error
		registry, err = benchmark.Load(benchmarksFile)
		if err != nil {
			return err
		}
	}

	pool, err := evidence.LoadPool(evidenceDir)
	if err != nil {
		return err
	}
	if len(pool) == 0 {
		return fmt.Errorf("evidence pool is empty: run 'idea-engine ingest' first")
	}

	backend := &synthesis.ClaudeBackend{APIKey: apiKey, Model: model}
	runner := &pipeline.Runner{
		Builder: evidence.NewBuilder(types.ContextConfig{CharBudget: charBudget}),
		Engine: synthesis.NewEngine(backend, registry, types.SynthesisConfig{
			AIConfig: types.AIConfig{Model: model, RequestTimeout: timeout},
			NumIdeas: numIdeas,
			Rigor:    rigor,
		}),
		Validator: refine.NewValidator(registry, types.ValidationConfig{}),
	}

	result, err := runner.Run(context.Background(), os.Stdout, goal, metricHint, pool)
	if err != nil {
		return err
	}

	store, err := catalog.NewStore(types.CatalogConfig{CatalogDir: catalogDir})
	if err != nil {
		return err
	}
	defer store.Close()

	terminal := append(result.Catalog.Ideas(), result.Rejected...)
	run := catalog.RunRecord{
		ID:        result.RunID,
		Goal:      goal,
		Metric:    metricHint,
		Rigor:     rigor,
		CreatedAt: time.Now(),
	}
	if err := store.SaveRun(context.Background(), run, terminal); err != nil {
		return err
	}

	fmt.Printf("\nrun %s saved: %d validated idea(s) in catalog\n", result.RunID, result.Catalog.Len())
	return nil
}

func init() {
	generateCmd.Flags().String("metric", "", "metric hint: DALY, WALY, WELBY, log_income, or CO2")
	generateCmd.Flags().String("rigor", "standard", "rigor mode: standard or deep")
	generateCmd.Flags().Int("num-ideas", 10, "number of candidate ideas to request")
	generateCmd.Flags().String("evidence-dir", "evidence", "directory of evidence pool artifacts")
	generateCmd.Flags().String("catalog-dir", "catalog", "base directory for the idea catalog")
	generateCmd.Flags().String("benchmarks", "", "path to a benchmark table YAML (default: built-in table)")
	generateCmd.Flags().String("model", "claude-sonnet-4-5-20250929", "AI model identifier")
	generateCmd.Flags().String("api-key", "", "AI API key (default: .secrets/anthropic-api-key)")
	generateCmd.Flags().Int("char-budget", 12000, "evidence context character budget")
	generateCmd.Flags().Duration("timeout", 5*time.Minute, "generative request timeout")

	rootCmd.AddCommand(generateCmd)
}
