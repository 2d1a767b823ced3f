// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the idea-engine pipeline.
// See docs/ARCHITECTURE.md § Pipeline Interface, § Data Structures.
package types

import "time"

// PriorityTier ranks evidence sources. Lower values outrank higher ones:
// primary research organizations come first, then data repositories, then
// commentary. The tier is fixed by the source whitelist, never inferred
// from content.
type PriorityTier int

const (
	TierPrimary    PriorityTier = 1 // primary research orgs (Open Phil, Rethink Priorities, ...)
	TierData       PriorityTier = 2 // data repositories (WHO GHO, IHME, Our World in Data, arXiv)
	TierCommentary PriorityTier = 3 // commentary and newsletters
)

// EvidenceItem is the normalized record of one ingested source item.
// Items are metadata-only (no full text) and immutable once ingested:
// the ingestion adapter creates them, downstream stages read them.
type EvidenceItem struct {
	// ID is a stable identifier derived from the item URL, consistent
	// across re-ingestions of the same item.
	ID string `json:"id" yaml:"id"`

	// SourceID is the whitelist slug of the originating source (e.g. "open-philanthropy").
	SourceID string `json:"source_id" yaml:"source_id"`

	// SourceName is the human-readable source name.
	SourceName string `json:"source_name" yaml:"source_name"`

	// Title is the item title as published.
	Title string `json:"title" yaml:"title"`

	// Summary is the item summary or abstract, truncated at ingestion.
	Summary string `json:"summary" yaml:"summary"`

	// URL is the canonical link to the item.
	URL string `json:"url" yaml:"url"`

	// PublishedAt is the publication timestamp reported by the source.
	PublishedAt time.Time `json:"published_at" yaml:"published_at"`

	// Tier is the priority tier inherited from the source whitelist.
	Tier PriorityTier `json:"tier" yaml:"tier"`
}

// ScoredItem is an EvidenceItem with the relevance score assigned by the
// context builder. The score is kept for observability; ordering inside a
// context is tier-first, then score.
type ScoredItem struct {
	EvidenceItem `yaml:",inline"`

	// Score combines tier weight, lexical relevance to the goal, and
	// recency decay. Deterministic for identical inputs.
	Score float64 `json:"score" yaml:"score"`
}

// EvidenceContext is the ordered, size-bounded selection of evidence handed
// to synthesis and validation. Once the budget forces truncation, no
// higher-tier item ever appears after a lower-tier one.
type EvidenceContext struct {
	// Goal is the goal statement the context was built for.
	Goal string `json:"goal" yaml:"goal"`

	// Metric is the optional metric hint used to bias relevance. Empty
	// when the caller gave none.
	Metric Metric `json:"metric,omitempty" yaml:"metric,omitempty"`

	// Items holds the selected evidence in context order.
	Items []ScoredItem `json:"items" yaml:"items"`

	// Budget is the character budget the selection was made under.
	Budget int `json:"budget" yaml:"budget"`
}

// Item returns the context item with the given ID, or nil.
func (c *EvidenceContext) Item(id string) *ScoredItem {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return &c.Items[i]
		}
	}
	return nil
}

// Contains reports whether the context includes an item with the given ID.
func (c *EvidenceContext) Contains(id string) bool {
	return c.Item(id) != nil
}
