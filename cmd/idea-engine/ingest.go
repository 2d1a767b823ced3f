// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/idea-engine/internal/evidence"
	"github.com/pdiddy/idea-engine/internal/ingest"
	"github.com/pdiddy/idea-engine/pkg/types"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch whitelisted sources into the evidence pool",
	Long: `Ingest fetches metadata-only items (title, summary, url, timestamp) from
the whitelisted RSS/Atom sources and, when topics are given, from arXiv
and the WHO Global Health Observatory. Items are deduplicated and written
to the evidence pool as per-source YAML artifacts. Priority tiers come
from the whitelist ranking.`,
	RunE: runIngest,
}

func runIngest(cmd *cobra.Command, args []string) error {
	topics, _ := cmd.Flags().GetString("topics")
	evidenceDir, _ := cmd.Flags().GetString("evidence-dir")
	maxItems, _ := cmd.Flags().GetInt("max-items")
	only, _ := cmd.Flags().GetString("sources")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	cfg := types.IngestConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: "idea-engine/" + version,
		},
		MaxItemsPerSource: maxItems,
		EvidenceDir:       evidenceDir,
		InterSourceDelay:  time.Second,
	}

	sources := ingest.DefaultSources(topics)
	if only != "" {
		sources = filterSources(sources, strings.Split(only, ","))
		if len(sources) == 0 {
			return fmt.Errorf("no whitelisted source matches %q (known: %s)",
				only, strings.Join(ingest.SourceIDs(), ", "))
		}
	}

	items, summary, err := ingest.FetchAll(context.Background(), sources, cfg, os.Stdout)
	if err != nil {
		return err
	}

	// One artifact file per source, replacing earlier ingestions.
	bySource := make(map[string][]types.EvidenceItem)
	var order []string
	for _, item := range items {
		if _, ok := bySource[item.SourceID]; !ok {
			order = append(order, item.SourceID)
		}
		bySource[item.SourceID] = append(bySource[item.SourceID], item)
	}
	for _, sourceID := range order {
		if err := evidence.WriteSourceItems(evidenceDir, sourceID, bySource[sourceID]); err != nil {
			return err
		}
	}

	fmt.Printf("\n%d items ingested", summary.Fetched)
	if summary.DupsRemoved > 0 {
		fmt.Printf(" (%d duplicates removed)", summary.DupsRemoved)
	}
	if summary.Failed > 0 {
		fmt.Printf(", %d source(s) failed", summary.Failed)
	}
	fmt.Println()
	return nil
}

func filterSources(sources []ingest.Source, ids []string) []ingest.Source {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[strings.TrimSpace(id)] = true
	}
	var out []ingest.Source
	for _, s := range sources {
		if want[s.ID()] {
			out = append(out, s)
		}
	}
	return out
}

func init() {
	ingestCmd.Flags().String("topics", "", "comma-separated topics for the arXiv and WHO GHO adapters (omit to skip both)")
	ingestCmd.Flags().String("evidence-dir", "evidence", "directory for evidence pool artifacts")
	ingestCmd.Flags().Int("max-items", 10, "maximum items per source")
	ingestCmd.Flags().String("sources", "", "comma-separated whitelist slugs to ingest (default: all)")
	ingestCmd.Flags().Duration("timeout", 30*time.Second, "HTTP request timeout")

	rootCmd.AddCommand(ingestCmd)
}
