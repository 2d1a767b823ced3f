// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "idea-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 2).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// RequestTimeout bounds a single generative call. Exceeding it is a
	// backend failure, never a silent empty result.
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout"`
}

// IngestConfig holds settings for the source ingestion stage.
type IngestConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxItemsPerSource caps how many items each source contributes (default 10).
	MaxItemsPerSource int `json:"max_items_per_source" yaml:"max_items_per_source"`

	// EvidenceDir is the directory for ingested evidence artifacts.
	EvidenceDir string `json:"evidence_dir" yaml:"evidence_dir"`

	// InterSourceDelay is the delay between fetches from different sources (default 1s).
	InterSourceDelay time.Duration `json:"inter_source_delay" yaml:"inter_source_delay"`
}

// ContextConfig holds settings for the evidence context builder.
type ContextConfig struct {
	// CharBudget is the context size budget in characters (default 12000).
	CharBudget int `json:"char_budget" yaml:"char_budget"`

	// MinItems is the minimum number of relevant items required before
	// synthesis may proceed (default 2).
	MinItems int `json:"min_items" yaml:"min_items"`

	// RecencyWindow is the window inside which items get a recency boost
	// (default 2 years).
	RecencyWindow time.Duration `json:"recency_window" yaml:"recency_window"`
}

// RigorMode selects the synthesis effort level.
type RigorMode string

const (
	// RigorStandard issues a single generation pass.
	RigorStandard RigorMode = "standard"

	// RigorDeep adds a second, stricter pass with a larger evidence budget
	// and lower temperature, trading latency and cost for precision.
	RigorDeep RigorMode = "deep"
)

// SynthesisConfig holds settings for the idea synthesis stage.
type SynthesisConfig struct {
	AIConfig `yaml:",inline"`

	// NumIdeas is the number of candidate ideas requested per run (default 10).
	NumIdeas int `json:"num_ideas" yaml:"num_ideas"`

	// Rigor selects standard or deep generation.
	Rigor RigorMode `json:"rigor" yaml:"rigor"`
}

// ValidationConfig holds settings for the refinement validator.
type ValidationConfig struct {
	// CloneThreshold is the Jaccard similarity above which an idea counts
	// as a benchmark clone (default 0.5).
	CloneThreshold float64 `json:"clone_threshold" yaml:"clone_threshold"`

	// Parallelism bounds concurrent per-idea validation. Zero means one
	// goroutine per idea.
	Parallelism int `json:"parallelism" yaml:"parallelism"`
}

// CatalogConfig holds settings for the idea catalog store.
type CatalogConfig struct {
	// CatalogDir is the base directory for the catalog (contains index/, export/).
	CatalogDir string `json:"catalog_dir" yaml:"catalog_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Ingest     IngestConfig     `json:"ingest" yaml:"ingest"`
	Context    ContextConfig    `json:"context" yaml:"context"`
	Synthesis  SynthesisConfig  `json:"synthesis" yaml:"synthesis"`
	Validation ValidationConfig `json:"validation" yaml:"validation"`
	Catalog    CatalogConfig    `json:"catalog" yaml:"catalog"`
}
