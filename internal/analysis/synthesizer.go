package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aoi-dev/vendormail/internal/domain"
	"github.com/aoi-dev/vendormail/internal/llm"
	"github.com/aoi-dev/vendormail/internal/prompts"
)

const synthesizeTimeout = 2 * time.Minute

// ComparisonSynthesizer produces the narrative assessment across all known
// vendors, choosing the prompt by vendor count.
type ComparisonSynthesizer struct {
	provider llm.Provider
	model    string
	logger   *slog.Logger
}

func NewComparisonSynthesizer(provider llm.Provider, model string, logger *slog.Logger) *ComparisonSynthesizer {
	return &ComparisonSynthesizer{
		provider: provider,
		model:    model,
		logger:   logger,
	}
}

// Synthesize returns the narrative for the full vendor list. Zero vendors
// yields the fixed no-vendors sentinel without a backend call; a backend
// failure yields the fixed comparison-failed sentinel. The caller can always
// persist the returned text.
func (s *ComparisonSynthesizer) Synthesize(ctx context.Context, vendors []domain.Vendor) string {
	if len(vendors) == 0 {
		return domain.NarrativeNoVendors
	}

	system := prompts.CompareMulti
	if len(vendors) == 1 {
		system = prompts.CompareSingle
	}

	ctx, cancel := context.WithTimeout(ctx, synthesizeTimeout)
	defer cancel()

	req := &llm.CompletionRequest{
		Model: s.model,
		Messages: []llm.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: FormatVendors(vendors)},
		},
		MaxTokens:   2048,
		Temperature: 0.7,
	}

	resp, err := s.provider.Complete(ctx, req)
	if err != nil {
		s.logger.Warn("comparison synthesis failed, falling back to sentinel narrative",
			"vendors", len(vendors), "error", err)
		return domain.NarrativeFailed
	}

	narrative := strings.TrimSpace(resp.Content)
	if narrative == "" {
		s.logger.Warn("comparison synthesis returned empty narrative", "vendors", len(vendors))
		return domain.NarrativeFailed
	}
	return narrative
}

// FormatVendors renders the vendor fact sets as the user content of the
// comparison prompt.
func FormatVendors(vendors []domain.Vendor) string {
	var b strings.Builder
	for i, v := range vendors {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "業者%d: %s\n", i+1, v.VendorEmail)
		fmt.Fprintf(&b, "分析日時: %s\n", v.AnalyzedAt.Format("2006-01-02 15:04"))
		fmt.Fprintf(&b, "金額: %s\n", v.Analysis.Price)
		fmt.Fprintf(&b, "条件: %s\n", v.Analysis.Conditions)
		fmt.Fprintf(&b, "対応年齢: %s\n", v.Analysis.AgeRange)
		fmt.Fprintf(&b, "付加価値: %s\n", v.Analysis.AddedValue)
		fmt.Fprintf(&b, "次のアクション: %s\n", v.Analysis.NextAction)
	}
	return b.String()
}
