// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/idea-engine/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// ArxivSource queries the arXiv API for the configured topics. Preprints
// are a data-repository source: tier 2.
type ArxivSource struct {
	topics string
	Client *http.Client
}

// NewArxivSource returns an arXiv adapter biased toward topics
// (comma-separated).
func NewArxivSource(topics string) *ArxivSource {
	return &ArxivSource{topics: topics}
}

func (a *ArxivSource) ID() string               { return "arxiv" }
func (a *ArxivSource) Name() string             { return "arXiv" }
func (a *ArxivSource) Tier() types.PriorityTier { return types.TierData }

// Fetch queries arXiv sorted by relevance and returns normalized items.
func (a *ArxivSource) Fetch(ctx context.Context, cfg types.IngestConfig) ([]types.EvidenceItem, error) {
	q := buildArxivQuery(a.topics)
	if q == "" {
		return nil, fmt.Errorf("empty arXiv query")
	}

	limit := cfg.MaxItemsPerSource
	if limit <= 0 {
		limit = 10
	}

	url := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=relevance&sortOrder=descending",
		arxivAPIBase, q, limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	client := a.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	var items []types.EvidenceItem
	for _, entry := range feed.Entries {
		if entry.ID == "" {
			continue
		}
		published := time.Time{}
		if t, parseErr := time.Parse(time.RFC3339, entry.Published); parseErr == nil {
			published = t
		}
		items = append(items, newItem(a, entry.Title, entry.Summary, entry.ID, published))
	}
	return items, nil
}

// buildArxivQuery joins comma-separated topics into an all-fields query.
func buildArxivQuery(topics string) string {
	var parts []string
	for _, topic := range strings.Split(topics, ",") {
		topic = strings.TrimSpace(topic)
		if topic == "" {
			continue
		}
		terms := strings.Fields(topic)
		parts = append(parts, "all:"+strings.Join(terms, "+"))
	}
	return strings.Join(parts, "+OR+")
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string `xml:"id"`
	Title     string `xml:"title"`
	Summary   string `xml:"summary"`
	Published string `xml:"published"`
}
