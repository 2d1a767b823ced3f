// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import "github.com/pdiddy/idea-engine/pkg/types"

// whitelistEntry is one row of the fixed source whitelist. The tier
// ranking is part of the whitelist, never derived from content: primary
// research orgs, then data repositories, then commentary.
type whitelistEntry struct {
	ID   string
	Name string
	URL  string
	Tier types.PriorityTier
}

// feedWhitelist is the fixed set of RSS/Atom sources.
var feedWhitelist = []whitelistEntry{
	// Primary research organizations.
	{ID: "open-philanthropy", Name: "Open Philanthropy", URL: "https://www.openphilanthropy.org/feed/", Tier: types.TierPrimary},
	{ID: "rethink-priorities", Name: "Rethink Priorities", URL: "https://rethinkpriorities.org/blog?format=rss", Tier: types.TierPrimary},
	{ID: "cgd", Name: "CGD", URL: "https://www.cgdev.org/rss.xml", Tier: types.TierPrimary},
	{ID: "animal-charity-evaluators", Name: "Animal Charity Evaluators", URL: "https://animalcharityevaluators.org/blog/feed/", Tier: types.TierPrimary},
	{ID: "wild-animal-initiative", Name: "Wild Animal Initiative", URL: "https://www.wildanimalinitiative.org/blog?format=rss", Tier: types.TierPrimary},

	// Data repositories.
	{ID: "our-world-in-data", Name: "Our World in Data", URL: "https://ourworldindata.org/feed", Tier: types.TierData},
	{ID: "ihme", Name: "IHME", URL: "https://www.healthdata.org/rss.xml", Tier: types.TierData},

	// Commentary.
	{ID: "ea-forum", Name: "EA Forum", URL: "https://forum.effectivealtruism.org/posts.rss", Tier: types.TierCommentary},
	{ID: "astral-codex-ten", Name: "Astral Codex Ten", URL: "https://astralcodexten.substack.com/feed", Tier: types.TierCommentary},
	{ID: "asterisk-magazine", Name: "Asterisk Magazine", URL: "https://asteriskmag.com/feed.xml", Tier: types.TierCommentary},
	{ID: "marginal-revolution", Name: "Marginal Revolution", URL: "https://marginalrevolution.com/feed", Tier: types.TierCommentary},
	{ID: "slow-boring", Name: "Slow Boring", URL: "https://www.slowboring.com/feed", Tier: types.TierCommentary},
}

// DefaultSources returns the full whitelist as source adapters: every feed
// source plus the topic-driven search adapters (arXiv, WHO GHO). Topics
// may be empty, in which case the search adapters are omitted.
func DefaultSources(topics string) []Source {
	sources := make([]Source, 0, len(feedWhitelist)+2)
	for _, e := range feedWhitelist {
		sources = append(sources, NewFeedSource(e))
	}
	if topics != "" {
		sources = append(sources, NewArxivSource(topics))
		sources = append(sources, NewWHOGHOSource(topics))
	}
	return sources
}

// SourceIDs lists the whitelist slugs in whitelist order.
func SourceIDs() []string {
	ids := make([]string, 0, len(feedWhitelist))
	for _, e := range feedWhitelist {
		ids = append(ids, e.ID)
	}
	return ids
}
