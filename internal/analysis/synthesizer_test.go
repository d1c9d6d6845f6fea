package analysis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoi-dev/vendormail/internal/domain"
	"github.com/aoi-dev/vendormail/internal/prompts"
)

func vendor(email, price string) domain.Vendor {
	return domain.Vendor{
		VendorEmail: email,
		Analysis: domain.AnalysisResult{
			Price:      price,
			Conditions: domain.NoInformation,
			AgeRange:   "3歳から",
			AddedValue: domain.NoInformation,
			NextAction: domain.NoInformation,
		},
		AnalyzedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSynthesizeNoVendors(t *testing.T) {
	provider := &fakeProvider{content: "should not be called"}
	synth := NewComparisonSynthesizer(provider, "test-model", testLogger())

	got := synth.Synthesize(context.Background(), nil)
	assert.Equal(t, domain.NarrativeNoVendors, got)
	assert.Empty(t, provider.calls)
}

func TestSynthesizeSingleVendorUsesSinglePrompt(t *testing.T) {
	provider := &fakeProvider{content: "この業者は信頼できます。"}
	synth := NewComparisonSynthesizer(provider, "test-model", testLogger())

	got := synth.Synthesize(context.Background(), []domain.Vendor{vendor("vendorA@example.com", "5000円")})
	assert.Equal(t, "この業者は信頼できます。", got)

	require.Len(t, provider.calls, 1)
	req := provider.calls[0]
	require.Len(t, req.Messages, 2)
	assert.Equal(t, prompts.CompareSingle, req.Messages[0].Content)
	assert.Contains(t, req.Messages[1].Content, "vendorA@example.com")
	assert.Contains(t, req.Messages[1].Content, "5000円")
}

func TestSynthesizeMultiVendorUsesMultiPrompt(t *testing.T) {
	provider := &fakeProvider{content: "業者Aをおすすめします。"}
	synth := NewComparisonSynthesizer(provider, "test-model", testLogger())

	vendors := []domain.Vendor{
		vendor("vendorA@example.com", "5000円"),
		vendor("vendorB@example.com", "8000円"),
	}
	got := synth.Synthesize(context.Background(), vendors)
	assert.Equal(t, "業者Aをおすすめします。", got)

	require.Len(t, provider.calls, 1)
	req := provider.calls[0]
	assert.Equal(t, prompts.CompareMulti, req.Messages[0].Content)
	assert.Contains(t, req.Messages[1].Content, "vendorA@example.com")
	assert.Contains(t, req.Messages[1].Content, "vendorB@example.com")
}

func TestSynthesizeProviderFailureYieldsSentinel(t *testing.T) {
	provider := &fakeProvider{err: errors.New("timeout")}
	synth := NewComparisonSynthesizer(provider, "test-model", testLogger())

	got := synth.Synthesize(context.Background(), []domain.Vendor{vendor("vendorA@example.com", "5000円")})
	assert.Equal(t, domain.NarrativeFailed, got)
}

func TestSynthesizeEmptyNarrativeYieldsSentinel(t *testing.T) {
	provider := &fakeProvider{content: "   \n"}
	synth := NewComparisonSynthesizer(provider, "test-model", testLogger())

	got := synth.Synthesize(context.Background(), []domain.Vendor{vendor("vendorA@example.com", "5000円")})
	assert.Equal(t, domain.NarrativeFailed, got)
}

func TestFormatVendorsListsEveryField(t *testing.T) {
	out := FormatVendors([]domain.Vendor{vendor("vendorA@example.com", "5000円")})
	for _, want := range []string{"業者1", "vendorA@example.com", "金額: 5000円", "条件:", "対応年齢: 3歳から", "付加価値:", "次のアクション:", "分析日時: 2025-06-01"} {
		assert.Contains(t, out, want)
	}
}
