// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/idea-engine/pkg/types"
)

// ghoAPIBase is the WHO Global Health Observatory OData endpoint. Declared
// as a var so tests can substitute an httptest server.
var ghoAPIBase = "https://ghoapi.azureedge.net/ghoapi/api"

// WHOGHOSource searches WHO GHO indicators matching the configured topics.
// Indicator metadata is a data-repository source: tier 2.
type WHOGHOSource struct {
	topics string
	Client *http.Client
}

// NewWHOGHOSource returns a GHO adapter filtering indicators on topics
// (comma-separated keywords).
func NewWHOGHOSource(topics string) *WHOGHOSource {
	return &WHOGHOSource{topics: topics}
}

func (g *WHOGHOSource) ID() string               { return "who-gho" }
func (g *WHOGHOSource) Name() string             { return "WHO GHO" }
func (g *WHOGHOSource) Tier() types.PriorityTier { return types.TierData }

// ghoIndicatorList is the OData envelope around the indicator table.
type ghoIndicatorList struct {
	Value []ghoIndicator `json:"value"`
}

type ghoIndicator struct {
	Code  string `json:"IndicatorCode"`
	Title string `json:"IndicatorName"`
}

// Fetch downloads the full indicator table and keeps indicators whose code
// or name contains one of the topic keywords. The item URL is the OData
// filter query for that indicator's data, so every item links to the
// underlying measurements.
func (g *WHOGHOSource) Fetch(ctx context.Context, cfg types.IngestConfig) ([]types.EvidenceItem, error) {
	keywords := splitKeywords(g.topics)
	if len(keywords) == 0 {
		return nil, fmt.Errorf("empty GHO indicator query")
	}

	limit := cfg.MaxItemsPerSource
	if limit <= 0 {
		limit = 10
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ghoAPIBase+"/Indicator", nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	client := g.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GHO API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GHO API returned HTTP %d", resp.StatusCode)
	}

	var list ghoIndicatorList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("parsing GHO response: %w", err)
	}

	var items []types.EvidenceItem
	for _, ind := range list.Value {
		if ind.Code == "" || !matchesKeyword(ind, keywords) {
			continue
		}
		dataURL := fmt.Sprintf("%s/%s", ghoAPIBase, url.PathEscape(ind.Code))
		summary := fmt.Sprintf("WHO GHO indicator %s: %s", ind.Code, ind.Title)
		items = append(items, newItem(g, ind.Title, summary, dataURL, time.Time{}))
		if len(items) >= limit {
			break
		}
	}
	return items, nil
}

// splitKeywords lowercases comma-separated topics into match keywords.
func splitKeywords(topics string) []string {
	var out []string
	for _, t := range strings.Split(topics, ",") {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// matchesKeyword reports whether an indicator's code or name contains any
// keyword, case-insensitively.
func matchesKeyword(ind ghoIndicator, keywords []string) bool {
	code := strings.ToLower(ind.Code)
	title := strings.ToLower(ind.Title)
	for _, kw := range keywords {
		if strings.Contains(code, kw) || strings.Contains(title, kw) {
			return true
		}
	}
	return false
}
