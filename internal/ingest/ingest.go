// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest fetches metadata-only items from the whitelisted sources
// and normalizes them into evidence items. The core pipeline treats this
// package as its I/O adapter: it only ever sees the normalized output.
// See docs/ARCHITECTURE.md § Ingestion.
package ingest

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/pdiddy/idea-engine/pkg/types"
)

// Source fetches items from one whitelisted origin. Each adapter (RSS,
// arXiv) implements this interface.
type Source interface {
	// ID returns the whitelist slug.
	ID() string

	// Name returns the human-readable source name.
	Name() string

	// Tier returns the source's fixed priority tier.
	Tier() types.PriorityTier

	// Fetch returns normalized, metadata-only items.
	Fetch(ctx context.Context, cfg types.IngestConfig) ([]types.EvidenceItem, error)
}

// Summary holds counts from an ingestion run.
type Summary struct {
	Fetched     int
	DupsRemoved int
	Failed      int
}

// FetchAll fetches every source in order, deduplicates across sources, and
// reports per-source failures as warnings without aborting the run. The
// inter-source delay keeps request rates polite.
func FetchAll(ctx context.Context, sources []Source, cfg types.IngestConfig, w io.Writer) ([]types.EvidenceItem, Summary, error) {
	if len(sources) == 0 {
		return nil, Summary{}, fmt.Errorf("no sources configured")
	}

	var all []types.EvidenceItem
	var summary Summary

	for i, src := range sources {
		if i > 0 && cfg.InterSourceDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, summary, ctx.Err()
			case <-time.After(cfg.InterSourceDelay):
			}
		}

		items, err := src.Fetch(ctx, cfg)
		if err != nil {
			fmt.Fprintf(w, "warning: source %s failed: %v\n", src.ID(), err)
			summary.Failed++
			continue
		}
		fmt.Fprintf(w, "fetched %s (%d items)\n", src.ID(), len(items))
		all = append(all, items...)
	}

	deduped, removed := Deduplicate(all)
	summary.Fetched = len(deduped)
	summary.DupsRemoved = removed
	return deduped, summary, nil
}

// Deduplicate drops items sharing a URL or a normalized title, keeping the
// first occurrence (whitelist order, so higher-tier sources win).
func Deduplicate(items []types.EvidenceItem) ([]types.EvidenceItem, int) {
	seen := make(map[string]bool)
	var out []types.EvidenceItem
	removed := 0

	for _, item := range items {
		urlKey := "url:" + item.URL
		titleKey := "title:" + normalizeTitle(item.Title)
		if seen[urlKey] || (titleKey != "title:" && seen[titleKey]) {
			removed++
			continue
		}
		seen[urlKey] = true
		if titleKey != "title:" {
			seen[titleKey] = true
		}
		out = append(out, item)
	}
	return out, removed
}

// normalizeTitle returns a lowercased, punctuation-stripped title.
func normalizeTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// summaryLimit caps stored summaries; items are metadata-only.
const summaryLimit = 1000

// newItem builds a normalized EvidenceItem for a source. The ID is the
// first 12 hex characters of SHA-256 over the URL, stable across
// re-ingestions of the same item.
func newItem(src Source, title, summary, url string, published time.Time) types.EvidenceItem {
	if len(summary) > summaryLimit {
		summary = summary[:summaryLimit]
	}
	h := sha256.Sum256([]byte(url))
	return types.EvidenceItem{
		ID:          fmt.Sprintf("%x", h)[:12],
		SourceID:    src.ID(),
		SourceName:  src.Name(),
		Title:       strings.TrimSpace(title),
		Summary:     strings.TrimSpace(summary),
		URL:         url,
		PublishedAt: published,
		Tier:        src.Tier(),
	}
}
