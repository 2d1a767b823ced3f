// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package evidence

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/pdiddy/idea-engine/pkg/types"
)

// ErrInsufficientEvidence reports that too few relevant items exist for the
// requested goal and metric. Callers must not proceed to synthesis;
// broadening the goal or ingesting more sources is the recovery path.
var ErrInsufficientEvidence = errors.New("insufficient evidence")

// tierWeights biases selection toward higher-priority sources. Weights
// only break ties inside the score; ordering across tiers is enforced
// structurally by tier-first selection.
var tierWeights = map[types.PriorityTier]float64{
	types.TierPrimary:    0.3,
	types.TierData:       0.2,
	types.TierCommentary: 0.1,
}

// metricKeywords biases relevance when the caller supplies a metric hint.
// Keywords are matched against item titles and summaries.
var metricKeywords = map[types.Metric][]string{
	types.MetricDALY:      {"daly", "dalys", "health", "disease", "malaria", "vaccination", "mortality", "pandemic"},
	types.MetricWALY:      {"waly", "walys", "animal", "animals", "welfare", "broiler", "cage-free", "farmed", "shrimp"},
	types.MetricWELBY:     {"welby", "wellbeing", "well-being", "mental", "depression", "psychotherapy", "happiness"},
	types.MetricLogIncome: {"income", "cash", "transfer", "poverty", "earnings", "wages", "growth"},
	types.MetricCO2:       {"co2", "carbon", "climate", "emissions", "tco2e", "decarbonization", "removal"},
}

// itemOverhead approximates the per-item formatting cost when the context
// is rendered into a prompt.
const itemOverhead = 32

// Builder assembles evidence contexts. A Builder is stateless apart from
// its configuration; Build is deterministic for identical inputs so that
// downstream synthesis failures reproduce for debugging.
type Builder struct {
	cfg types.ContextConfig

	// now is the clock used for recency decay. Tests pin it.
	now func() time.Time
}

// NewBuilder returns a Builder with config defaults applied.
func NewBuilder(cfg types.ContextConfig) *Builder {
	if cfg.CharBudget <= 0 {
		cfg.CharBudget = 12000
	}
	if cfg.MinItems <= 0 {
		cfg.MinItems = 2
	}
	if cfg.RecencyWindow <= 0 {
		cfg.RecencyWindow = 2 * 365 * 24 * time.Hour
	}
	return &Builder{cfg: cfg, now: time.Now}
}

// Build scores the pool against the goal and optional metric hint, then
// selects items tier-first under the character budget. Once the budget
// forces truncation no higher-tier item ever follows a lower-tier one.
// Items with no lexical relevance to the goal or metric are excluded
// entirely; fewer than MinItems relevant items is ErrInsufficientEvidence.
func (b *Builder) Build(goal string, pool []types.EvidenceItem, metricHint types.Metric) (types.EvidenceContext, error) {
	goalTokens := tokenize(goal)
	if len(goalTokens) == 0 {
		return types.EvidenceContext{}, fmt.Errorf("empty goal statement")
	}

	now := b.now()
	var scored []types.ScoredItem
	for _, item := range pool {
		rel := relevance(item, goalTokens, metricHint)
		if rel == 0 {
			continue
		}
		score := rel + tierWeights[item.Tier] + recencyBoost(item.PublishedAt, now, b.cfg.RecencyWindow)
		scored = append(scored, types.ScoredItem{EvidenceItem: item, Score: score})
	}

	if len(scored) < b.cfg.MinItems {
		return types.EvidenceContext{}, fmt.Errorf(
			"%w: %d relevant item(s) for goal %q (metric %q), need %d",
			ErrInsufficientEvidence, len(scored), goal, metricHint, b.cfg.MinItems)
	}

	// Tier-first ordering; inside a tier by score, then recency, then ID
	// so equal inputs always yield the same context.
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Tier != scored[j].Tier {
			return scored[i].Tier < scored[j].Tier
		}
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if !scored[i].PublishedAt.Equal(scored[j].PublishedAt) {
			return scored[i].PublishedAt.After(scored[j].PublishedAt)
		}
		return scored[i].ID < scored[j].ID
	})

	ctx := types.EvidenceContext{
		Goal:   goal,
		Metric: metricHint,
		Budget: b.cfg.CharBudget,
	}
	used := 0
	for _, s := range scored {
		cost := len(s.Title) + len(s.Summary) + len(s.URL) + itemOverhead
		if used+cost > b.cfg.CharBudget {
			break
		}
		ctx.Items = append(ctx.Items, s)
		used += cost
	}

	if len(ctx.Items) < b.cfg.MinItems {
		return types.EvidenceContext{}, fmt.Errorf(
			"%w: budget %d admits only %d item(s), need %d",
			ErrInsufficientEvidence, b.cfg.CharBudget, len(ctx.Items), b.cfg.MinItems)
	}

	return ctx, nil
}

// relevance measures lexical overlap between an item and the goal, plus a
// keyword boost for the metric hint. Zero means the item is off-topic.
func relevance(item types.EvidenceItem, goalTokens []string, metric types.Metric) float64 {
	text := strings.ToLower(item.Title + " " + item.Summary)

	matched := 0
	for _, tok := range goalTokens {
		if strings.Contains(text, tok) {
			matched++
		}
	}
	score := float64(matched) / float64(len(goalTokens))

	if metric != "" {
		hits := 0
		kws := metricKeywords[metric]
		for _, kw := range kws {
			if strings.Contains(text, kw) {
				hits++
			}
		}
		if len(kws) > 0 {
			score += 0.5 * float64(hits) / float64(len(kws))
		}
	}

	return score
}

// recencyBoost adds up to 0.2 for items published inside the window,
// decaying linearly with age.
func recencyBoost(published, now time.Time, window time.Duration) float64 {
	if published.IsZero() {
		return 0
	}
	age := now.Sub(published)
	if age < 0 || age > window {
		return 0
	}
	return 0.2 * (1.0 - float64(age)/float64(window))
}

// stopwords are dropped from goal tokenization.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "for": true, "from": true, "in": true,
	"of": true, "on": true, "or": true, "the": true, "to": true, "via": true,
	"with": true, "reduce": true, "improve": true, "increase": true,
}

// tokenize lowercases, strips punctuation, and drops stopwords and tokens
// shorter than three characters.
func tokenize(s string) []string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	var out []string
	for _, f := range strings.Fields(b.String()) {
		if len(f) < 3 || stopwords[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}
