// Package analysis adapts the LLM backend to the pipeline: structured fact
// extraction from vendor mail and synthesis of the comparison narrative.
package analysis

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aoi-dev/vendormail/internal/domain"
	"github.com/aoi-dev/vendormail/internal/llm"
	"github.com/aoi-dev/vendormail/internal/prompts"
	"github.com/aoi-dev/vendormail/internal/sanitize"
)

const analyzeTimeout = 60 * time.Second

var tagRegex = regexp.MustCompile(`<[^>]*>`)

// StripMarkup removes HTML-ish tags by replacing <...> spans with a space,
// then normalizes whitespace. Vendor mail is frequently HTML.
func StripMarkup(s string) string {
	return sanitize.Clean(tagRegex.ReplaceAllString(s, " "))
}

// EmailAnalyzer extracts the five-field fact set from one vendor mail.
type EmailAnalyzer struct {
	provider llm.Provider
	model    string
	logger   *slog.Logger
}

func NewEmailAnalyzer(provider llm.Provider, model string, logger *slog.Logger) *EmailAnalyzer {
	return &EmailAnalyzer{
		provider: provider,
		model:    model,
		logger:   logger,
	}
}

// Analyze never returns an error for a failed extraction: one vendor's broken
// mail or a flaky backend must not abort the rest of the batch, so failures
// map to the analysis-error sentinel and a logged warning. An empty body
// short-circuits to the no-information sentinel without a backend call.
func (a *EmailAnalyzer) Analyze(ctx context.Context, mailText string) (domain.AnalysisResult, error) {
	plain := StripMarkup(mailText)
	if plain == "" {
		return domain.EmptyResult(), nil
	}

	ctx, cancel := context.WithTimeout(ctx, analyzeTimeout)
	defer cancel()

	req := &llm.CompletionRequest{
		Model: a.model,
		Messages: []llm.Message{
			{Role: "system", Content: prompts.Analyze},
			{Role: "user", Content: plain},
		},
		MaxTokens:   800,
		Temperature: 0.1,
		JSONMode:    true,
	}

	resp, err := a.provider.Complete(ctx, req)
	if err != nil {
		a.logger.Warn("mail analysis failed, falling back to error sentinel", "error", err)
		return domain.ErrorResult(), nil
	}

	result, ok := parseAnalysis(resp.Content)
	if !ok {
		a.logger.Warn("mail analysis response unparseable, falling back to error sentinel",
			"content_length", len(resp.Content))
		return domain.ErrorResult(), nil
	}
	return result, nil
}

// parseAnalysis decodes the model response. JSON decode is the primary path;
// per-field regex extraction is the degraded fallback for responses that wrap
// or mangle the JSON.
func parseAnalysis(content string) (domain.AnalysisResult, bool) {
	content = stripFences(strings.TrimSpace(content))

	var raw struct {
		Price      string `json:"price"`
		Conditions string `json:"conditions"`
		AgeRange   string `json:"ageRange"`
		AddedValue string `json:"addedValue"`
		NextAction string `json:"nextAction"`
	}
	// A decode that yields no fields at all ("null", "{}", all-empty values)
	// is a contentless response, not a no-information extraction; it falls
	// through to the fallback and from there to the error sentinel.
	if err := json.Unmarshal([]byte(content), &raw); err == nil && anyField(
		raw.Price, raw.Conditions, raw.AgeRange, raw.AddedValue, raw.NextAction) {
		return domain.AnalysisResult{
			Price:      orNoInformation(raw.Price),
			Conditions: orNoInformation(raw.Conditions),
			AgeRange:   orNoInformation(raw.AgeRange),
			AddedValue: orNoInformation(raw.AddedValue),
			NextAction: orNoInformation(raw.NextAction),
		}, true
	}

	return extractFields(content)
}

var fieldRegexes = map[string]*regexp.Regexp{
	"price":      regexp.MustCompile(`"price"\s*:\s*"([^"]*)"`),
	"conditions": regexp.MustCompile(`"conditions"\s*:\s*"([^"]*)"`),
	"ageRange":   regexp.MustCompile(`"ageRange"\s*:\s*"([^"]*)"`),
	"addedValue": regexp.MustCompile(`"addedValue"\s*:\s*"([^"]*)"`),
	"nextAction": regexp.MustCompile(`"nextAction"\s*:\s*"([^"]*)"`),
}

func extractFields(content string) (domain.AnalysisResult, bool) {
	fields := make(map[string]string, len(fieldRegexes))
	matched := false
	for name, re := range fieldRegexes {
		if m := re.FindStringSubmatch(content); m != nil && strings.TrimSpace(m[1]) != "" {
			fields[name] = m[1]
			matched = true
		}
	}
	if !matched {
		return domain.AnalysisResult{}, false
	}
	return domain.AnalysisResult{
		Price:      orNoInformation(fields["price"]),
		Conditions: orNoInformation(fields["conditions"]),
		AgeRange:   orNoInformation(fields["ageRange"]),
		AddedValue: orNoInformation(fields["addedValue"]),
		NextAction: orNoInformation(fields["nextAction"]),
	}, true
}

func anyField(fields ...string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return true
		}
	}
	return false
}

func orNoInformation(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.NoInformation
	}
	return s
}

// stripFences unwraps markdown-fenced responses (```json ... ```).
func stripFences(content string) string {
	if !strings.HasPrefix(content, "```") {
		return content
	}
	lines := strings.Split(content, "\n")
	var inner []string
	in := false
	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			in = !in
			continue
		}
		if in {
			inner = append(inner, line)
		}
	}
	return strings.Join(inner, "\n")
}
