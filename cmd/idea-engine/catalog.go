// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/idea-engine/internal/catalog"
	"github.com/pdiddy/idea-engine/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Query and export the idea catalog",
}

var catalogRetrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Retrieve ideas from the catalog",
	Long: `Retrieve queries the catalog. With a query argument, results are ranked
by full-text relevance over funding target, mechanism, and novelty
rationale. Without one, results are filtered by the structured flags
only. Only validated ideas are returned unless --status says otherwise.`,
	RunE: runCatalogRetrieve,
}

func runCatalogRetrieve(cmd *cobra.Command, args []string) error {
	opts, err := queryOptions(cmd, args)
	if err != nil {
		return err
	}

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	ideas, err := store.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}
	if len(ideas) == 0 {
		fmt.Println("No ideas found.")
		return nil
	}

	return catalog.WriteMarkdown(os.Stdout, ideas)
}

var catalogExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog to a file",
	Long: `Export writes the catalog to <catalog-dir>/export/ideas.<ext> in the
requested format: yaml, json, csv, or markdown. The same filters as
retrieve apply.`,
	RunE: runCatalogExport,
}

func runCatalogExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	opts, err := queryOptions(cmd, args)
	if err != nil {
		return err
	}

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	path, err := store.Export(context.Background(), format, opts)
	if err != nil {
		return err
	}

	fmt.Println("Exported to", path)
	return nil
}

var catalogStoreCmd = &cobra.Command{
	Use:   "store [ideas.yaml]",
	Short: "Import terminal ideas from a YAML file into the catalog",
	Long: `Store imports a YAML file of terminal (validated or rejected) ideas,
for example a previous export, into the catalog index as one run. Draft
ideas are refused.`,
	Args: cobra.ExactArgs(1),
	RunE: runCatalogStore,
}

func runCatalogStore(cmd *cobra.Command, args []string) error {
	goal, _ := cmd.Flags().GetString("goal")
	runID, _ := cmd.Flags().GetString("run")
	if runID == "" {
		return fmt.Errorf("--run is required")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	var ideas []types.Idea
	if err := yaml.Unmarshal(data, &ideas); err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}
	if len(ideas) == 0 {
		return fmt.Errorf("%s contains no ideas", args[0])
	}
	for i := range ideas {
		ideas[i].RunID = runID
	}

	store, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	run := catalog.RunRecord{ID: runID, Goal: goal, CreatedAt: time.Now()}
	if err := store.SaveRun(context.Background(), run, ideas); err != nil {
		return err
	}

	fmt.Printf("Imported %d idea(s) as run %s\n", len(ideas), runID)
	return nil
}

func openStore(cmd *cobra.Command) (*catalog.Store, error) {
	catalogDir, _ := cmd.Flags().GetString("catalog-dir")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	return catalog.NewStore(types.CatalogConfig{
		CatalogDir: catalogDir,
		MaxResults: maxResults,
	})
}

func queryOptions(cmd *cobra.Command, args []string) (catalog.QueryOptions, error) {
	metricFlag, _ := cmd.Flags().GetString("metric")
	statusFlag, _ := cmd.Flags().GetString("status")
	runID, _ := cmd.Flags().GetString("run")
	maxResults, _ := cmd.Flags().GetInt("max-results")

	opts := catalog.QueryOptions{
		RunID:      runID,
		Status:     types.IdeaStatus(statusFlag),
		MaxResults: maxResults,
	}
	if len(args) > 0 {
		opts.Query = args[0]
	}
	if metricFlag != "" {
		m, err := types.ParseMetric(metricFlag)
		if err != nil {
			return catalog.QueryOptions{}, err
		}
		opts.Metric = m
	}
	return opts, nil
}

func addCatalogQueryFlags(cmd *cobra.Command) {
	cmd.Flags().String("catalog-dir", "catalog", "base directory for the idea catalog")
	cmd.Flags().String("metric", "", "filter by metric: DALY, WALY, WELBY, log_income, or CO2")
	cmd.Flags().String("status", "", "filter by status: validated (default) or rejected")
	cmd.Flags().String("run", "", "filter by run ID")
	cmd.Flags().Int("max-results", 0, "maximum results (default 20)")
}

func init() {
	addCatalogQueryFlags(catalogRetrieveCmd)
	addCatalogQueryFlags(catalogExportCmd)
	catalogExportCmd.Flags().String("format", "yaml", "export format: yaml, json, csv, or markdown")

	catalogStoreCmd.Flags().String("catalog-dir", "catalog", "base directory for the idea catalog")
	catalogStoreCmd.Flags().Int("max-results", 0, "maximum results (default 20)")
	catalogStoreCmd.Flags().String("run", "", "run ID to file the imported ideas under")
	catalogStoreCmd.Flags().String("goal", "", "goal statement recorded for the imported run")

	catalogCmd.AddCommand(catalogStoreCmd)
	catalogCmd.AddCommand(catalogRetrieveCmd)
	catalogCmd.AddCommand(catalogExportCmd)
	rootCmd.AddCommand(catalogCmd)
}
