// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"

	"github.com/pdiddy/idea-engine/internal/benchmark"
	"github.com/pdiddy/idea-engine/pkg/types"
)

// ideaPromptTmpl is the prompt sent to the generative backend for the first
// synthesis pass. It walks the model through the reasoning pipeline and
// pins the output to the exact idea schema. Selection is cause-neutral:
// ideas compete on expected value, never on a predetermined cause area.
var ideaPromptTmpl = template.Must(template.New("synthesis").Parse(`You are an idea generator optimizing for the wellbeing of all sentient beings. Selection must be cause-neutral: do not pre-filter toward any cause area.

Follow this reasoning pipeline per idea:
(1) Problem sizing: quantify the problem in orders of magnitude.
(2) Leading solutions: scan the evidence items supplied below.
(3) Cruxes: identify the binding constraints on development or adoption.
(4) Mechanism design: propose a specific lever (AMC, prize, milestone contract, purchase guarantee, pooled procurement, direct grant).
(5) Verification: define a binary, independently checkable measure of success.
(6) Light BOTEC: native-metric cost-effectiveness vs. the fixed benchmark; no cross-metric conversion; discount 0% up to 50 years, 2% thereafter.

Benchmarks are fixed per metric; use exactly this mapping, never substitute:
{{range .Benchmarks}}- {{.Metric}}: {{.Name}} ({{.Range.Low}}-{{.Range.High}} {{.Range.Unit}})
{{end}}
Goal: {{.Goal}}

Evidence items (cite by id; use ONLY these, at least 2 citations per idea):
{{.Evidence}}

Generate {{.NumIdeas}} ideas. Respond with a JSON array only, no text outside it. Each element:
{"funding_target": string, "mechanism": string, "metric": one of "DALY"|"WALY"|"WELBY"|"log_income"|"CO2", "expected_impact_quantity": string, "cost": string (USD, ranges ok), "benchmark_name": string (the fixed benchmark for the metric), "cost_effectiveness": string (vs. benchmark, native metric), "botec": {"assumptions": [{"name": string, "value": string, "citation_id": evidence id}], "formula": string, "point_estimate": string, "sensitivity_low": string, "sensitivity_high": string}, "verification_plan": string (pass/fail criterion), "doers": [{"name": string, "score": 0.0-1.0} or {"archetype": string}], "novelty_rationale": string (the adoption barrier this removes), "citations": [evidence ids, >= 2]}

Do not propose funding the benchmark intervention itself; ideas indistinguishable from the benchmark will be rejected.`))

// deepPromptTmpl drives the second pass in deep rigor mode. It re-presents
// the first pass's output with the full evidence and asks for stricter,
// corrected candidates in the same schema.
var deepPromptTmpl = template.Must(template.New("deep").Parse(`You previously generated candidate funding ideas. Re-derive each one with stricter rigor:
- Recompute every BOTEC from cited evidence only; drop assumptions you cannot cite.
- Tighten verification plans to a single binary criterion.
- Replace any idea that merely restates its benchmark intervention.
- Keep the fixed metric-to-benchmark mapping:
{{range .Benchmarks}}- {{.Metric}}: {{.Name}}
{{end}}
Goal: {{.Goal}}

Evidence items (cite by id; use ONLY these):
{{.Evidence}}

Previous candidates:
{{.Previous}}

Respond with the corrected JSON array only, same schema as before, no text outside it.`))

type promptData struct {
	Goal       string
	Evidence   string
	NumIdeas   int
	Benchmarks []types.BenchmarkEntry
	Previous   string
}

// renderIdeaPrompt renders the first-pass prompt. In deep mode evidence
// summaries are included in full; the standard pass truncates them.
func renderIdeaPrompt(ectx types.EvidenceContext, reg *benchmark.Registry, numIdeas int, deep bool) (string, error) {
	limit := standardSummaryLimit
	if deep {
		limit = 0
	}
	var buf bytes.Buffer
	err := ideaPromptTmpl.Execute(&buf, promptData{
		Goal:       ectx.Goal,
		Evidence:   renderEvidence(ectx, limit),
		NumIdeas:   numIdeas,
		Benchmarks: reg.Entries(),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// renderDeepPrompt renders the second-pass prompt around the first pass's
// raw candidates.
func renderDeepPrompt(ectx types.EvidenceContext, reg *benchmark.Registry, previous []rawIdea) (string, error) {
	prevJSON, err := json.MarshalIndent(previous, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling previous candidates: %w", err)
	}
	var buf bytes.Buffer
	err = deepPromptTmpl.Execute(&buf, promptData{
		Goal:       ectx.Goal,
		Evidence:   renderEvidence(ectx, 0),
		Benchmarks: reg.Entries(),
		Previous:   string(prevJSON),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// renderEvidence formats context items for the prompt. summaryLimit of
// zero means no truncation.
func renderEvidence(ectx types.EvidenceContext, summaryLimit int) string {
	var b strings.Builder
	for _, item := range ectx.Items {
		summary := item.Summary
		if summaryLimit > 0 && len(summary) > summaryLimit {
			summary = summary[:summaryLimit] + "..."
		}
		fmt.Fprintf(&b, "- [%s] %s\n  %s\n  Source: %s (%s, tier %d)\n",
			item.ID, item.Title, summary, item.URL, item.SourceName, item.Tier)
	}
	return b.String()
}

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// ClaudeBackend calls the Claude Messages API. It satisfies TextBackend;
// any provider can be substituted without touching pipeline logic.
type ClaudeBackend struct {
	APIKey string
	Model  string
	Client *http.Client
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
	Messages    []claudeMessage `json:"messages"`
}

// claudeMessage is a single message in the Claude API conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

// claudeContent is a content block in the Claude API response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Complete sends one completion request and returns the first text block.
func (c *ClaudeBackend) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	reqBody := claudeRequest{
		Model:       c.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Messages: []claudeMessage{
			{Role: "user", Content: req.Prompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding Claude response: %w", err)
	}

	for _, block := range cResp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in Claude API response")
}
