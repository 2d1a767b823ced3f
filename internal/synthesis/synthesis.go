// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package synthesis generates candidate funding ideas from an evidence
// context through an opaque generative backend.
// See docs/ARCHITECTURE.md § Idea Synthesis.
package synthesis

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pdiddy/idea-engine/internal/benchmark"
	"github.com/pdiddy/idea-engine/pkg/types"
)

// ErrSynthesisUnavailable reports that the generative backend failed or
// kept returning malformed structure after bounded retries. Partial
// results are discarded rather than silently truncated.
var ErrSynthesisUnavailable = errors.New("synthesis unavailable")

// CompletionRequest carries one generative call.
type CompletionRequest struct {
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// TextBackend abstracts the generative text model: given a prompt and
// constraints it returns structured text or fails. Implementations must
// have no side effects on caller state beyond the return value. Tests
// supply a mock; production uses ClaudeBackend.
type TextBackend interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Generation temperatures per pass. The deep pass trades latency and cost
// for precision with less sampling randomness.
const (
	standardTemperature = 0.6
	deepTemperature     = 0.2

	standardMaxTokens = 4096
	deepMaxTokens     = 8192

	// standardSummaryLimit truncates evidence summaries in the standard
	// pass; the deep pass renders them in full (its larger budget).
	standardSummaryLimit = 400
)

// Engine produces draft Ideas from a goal and evidence context.
type Engine struct {
	backend  TextBackend
	registry *benchmark.Registry
	cfg      types.SynthesisConfig
}

// NewEngine returns an Engine with config defaults applied.
func NewEngine(backend TextBackend, registry *benchmark.Registry, cfg types.SynthesisConfig) *Engine {
	if cfg.NumIdeas <= 0 {
		cfg.NumIdeas = 10
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 2
	}
	if cfg.Rigor == "" {
		cfg.Rigor = types.RigorStandard
	}
	return &Engine{backend: backend, registry: registry, cfg: cfg}
}

// Generate issues one constrained generative request for the full idea
// schema and, in deep mode, a second stricter pass over the first pass's
// output. Candidates with a metric outside the closed enum or missing core
// fields come back already rejected with a reason code rather than
// silently dropped; everything else is a draft.
func (e *Engine) Generate(ctx context.Context, runID string, ectx types.EvidenceContext) ([]types.Idea, error) {
	if e.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.RequestTimeout)
		defer cancel()
	}

	prompt, err := renderIdeaPrompt(ectx, e.registry, e.cfg.NumIdeas, e.cfg.Rigor == types.RigorDeep)
	if err != nil {
		return nil, fmt.Errorf("rendering synthesis prompt: %w", err)
	}

	raw, err := e.completeWithRetry(ctx, CompletionRequest{
		Prompt:      prompt,
		Temperature: standardTemperature,
		MaxTokens:   standardMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	if e.cfg.Rigor == types.RigorDeep {
		refinePrompt, err := renderDeepPrompt(ectx, e.registry, raw)
		if err != nil {
			return nil, fmt.Errorf("rendering deep pass prompt: %w", err)
		}
		raw, err = e.completeWithRetry(ctx, CompletionRequest{
			Prompt:      refinePrompt,
			Temperature: deepTemperature,
			MaxTokens:   deepMaxTokens,
		})
		if err != nil {
			return nil, err
		}
	}

	ideas := convertCandidates(raw, runID, e.cfg.NumIdeas)
	return ideas, nil
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// completeWithRetry calls the backend and re-parses until it returns a
// decodable candidate list or retries are exhausted. A call error and a
// structurally unparseable response both count as failed attempts.
func (e *Engine) completeWithRetry(ctx context.Context, req CompletionRequest) ([]rawIdea, error) {
	var lastErr error
	for attempt := 0; attempt <= e.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrSynthesisUnavailable, ctx.Err())
			case <-time.After(backoff):
			}
		}

		text, err := e.backend.Complete(ctx, req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %v", ErrSynthesisUnavailable, err)
			}
			continue
		}

		candidates, err := decodeCandidates(text)
		if err != nil {
			lastErr = err
			continue
		}
		return candidates, nil
	}
	return nil, fmt.Errorf("%w: after %d retries: %v", ErrSynthesisUnavailable, e.cfg.MaxRetries, lastErr)
}

// rawIdea is one candidate as emitted by the backend.
type rawIdea struct {
	FundingTarget     string       `json:"funding_target"`
	Mechanism         string       `json:"mechanism"`
	Metric            string       `json:"metric"`
	ImpactQuantity    string       `json:"expected_impact_quantity"`
	Cost              string       `json:"cost"`
	BenchmarkName     string       `json:"benchmark_name"`
	CostEffectiveness string       `json:"cost_effectiveness"`
	Botec             types.BOTEC  `json:"botec"`
	VerificationPlan  string       `json:"verification_plan"`
	Doers             []types.Doer `json:"doers"`
	NoveltyRationale  string       `json:"novelty_rationale"`
	Citations         []string     `json:"citations"`
}

// decodeCandidates parses the backend response as a JSON array, tolerating
// surrounding prose by extracting the outermost bracket pair.
func decodeCandidates(text string) ([]rawIdea, error) {
	var out []rawIdea
	if err := json.Unmarshal([]byte(text), &out); err == nil {
		return out, nil
	}

	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("response contains no JSON array")
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("parsing candidate JSON: %w", err)
	}
	return out, nil
}

// convertCandidates turns raw candidates into Ideas. A candidate without
// both a funding target and mechanism, or with a metric outside the closed
// enum, cannot be repaired by backfilling; it is returned already rejected
// with its reason code so the run records the loss instead of hiding it.
// Everything else becomes a draft, so missing soft fields can be
// backfilled by the validator instead of lost here.
func convertCandidates(raw []rawIdea, runID string, limit int) []types.Idea {
	var ideas []types.Idea
	for _, r := range raw {
		if len(ideas) >= limit {
			break
		}

		idea := types.Idea{
			ID:            ideaID(runID, r.FundingTarget, r.Mechanism),
			RunID:         runID,
			FundingTarget: strings.TrimSpace(r.FundingTarget),
			Mechanism:     strings.TrimSpace(r.Mechanism),
			Impact: types.ExpectedImpact{
				Metric:   types.Metric(strings.TrimSpace(r.Metric)),
				Quantity: r.ImpactQuantity,
			},
			Cost:              r.Cost,
			CostEffectiveness: r.CostEffectiveness,
			Botec:             r.Botec,
			VerificationPlan:  r.VerificationPlan,
			Doers:             r.Doers,
			NoveltyRationale:  r.NoveltyRationale,
			Citations:         r.Citations,
			Status:            types.StatusDraft,
		}

		metric, err := types.ParseMetric(strings.TrimSpace(r.Metric))
		switch {
		case idea.FundingTarget == "" || idea.Mechanism == "":
			idea.Status = types.StatusRejected
			idea.Rejection = types.ReasonSchemaViolation
		case err != nil:
			idea.Status = types.StatusRejected
			idea.Rejection = types.ReasonUnknownMetric
		default:
			idea.Benchmark = types.BenchmarkEntry{Metric: metric, Name: strings.TrimSpace(r.BenchmarkName)}
		}
		ideas = append(ideas, idea)
	}
	return ideas
}

// ideaID generates a deterministic ID from run, target, and mechanism so
// re-validation of the same candidate is traceable across passes.
func ideaID(runID, target, mechanism string) string {
	h := sha256.New()
	h.Write([]byte(runID))
	h.Write([]byte(target))
	h.Write([]byte(mechanism))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}
