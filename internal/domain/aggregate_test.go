package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func sampleResult(price string) AnalysisResult {
	return AnalysisResult{
		Price:      price,
		Conditions: "前日までの予約が必要",
		AgeRange:   "3歳から12歳",
		AddedValue: NoInformation,
		NextAction: "見積もりを依頼する",
	}
}

func TestMergeAppendsNewVendor(t *testing.T) {
	agg := NewVendorComparison("agg-1", "user@example.com")

	err := agg.Merge("vendorA@example.com", sampleResult("5000円"), testNow)
	require.NoError(t, err)

	require.Len(t, agg.Vendors, 1)
	assert.Equal(t, "vendorA@example.com", agg.Vendors[0].VendorEmail)
	assert.Equal(t, "5000円", agg.Vendors[0].Analysis.Price)
	assert.Equal(t, testNow, agg.Vendors[0].AnalyzedAt)
}

func TestMergeReplacesKnownVendorCaseInsensitive(t *testing.T) {
	agg := NewVendorComparison("agg-1", "user@example.com")

	require.NoError(t, agg.Merge("Vendor@X.com", sampleResult("5000円"), testNow))
	later := testNow.Add(time.Hour)
	require.NoError(t, agg.Merge("vendor@x.com", sampleResult("6000円"), later))

	require.Len(t, agg.Vendors, 1)
	assert.Equal(t, "6000円", agg.Vendors[0].Analysis.Price)
	assert.Equal(t, later, agg.Vendors[0].AnalyzedAt)
	// The first-seen spelling of the address is kept.
	assert.Equal(t, "Vendor@X.com", agg.Vendors[0].VendorEmail)
}

func TestMergeIdempotent(t *testing.T) {
	agg := NewVendorComparison("agg-1", "user@example.com")
	result := sampleResult("5000円")

	require.NoError(t, agg.Merge("vendorA@example.com", result, testNow))
	first := *agg
	firstVendors := append([]Vendor(nil), agg.Vendors...)

	require.NoError(t, agg.Merge("vendorA@example.com", result, testNow))
	assert.Equal(t, first.ID, agg.ID)
	assert.Equal(t, firstVendors, agg.Vendors)
}

func TestMergeRejectsEmptyVendorEmail(t *testing.T) {
	agg := NewVendorComparison("agg-1", "user@example.com")

	for _, email := range []string{"", "   ", "\x00\x1f"} {
		err := agg.Merge(email, sampleResult("5000円"), testNow)
		assert.ErrorIs(t, err, ErrEmptyVendorEmail)
	}
	assert.Empty(t, agg.Vendors)
}

func TestMergeSanitizesVendorEmail(t *testing.T) {
	agg := NewVendorComparison("agg-1", "user@example.com")

	require.NoError(t, agg.Merge("  vendorA@example.com\n", sampleResult("5000円"), testNow))
	require.NoError(t, agg.Merge("VENDORA@EXAMPLE.COM", sampleResult("7000円"), testNow))

	require.Len(t, agg.Vendors, 1)
	assert.Equal(t, "vendorA@example.com", agg.Vendors[0].VendorEmail)
	assert.Equal(t, "7000円", agg.Vendors[0].Analysis.Price)
}

func TestPartitionKeyDerivedFromUserKey(t *testing.T) {
	agg := NewVendorComparison("agg-1", "  User@Example.com ")
	assert.Equal(t, "User@Example.com", agg.UserEmailAddress)
	assert.Equal(t, agg.UserEmailAddress, agg.PartitionKey())
}

func TestFindVendor(t *testing.T) {
	agg := NewVendorComparison("agg-1", "user@example.com")
	require.NoError(t, agg.Merge("vendorA@example.com", sampleResult("5000円"), testNow))

	assert.NotNil(t, agg.FindVendor("VendorA@Example.COM"))
	assert.Nil(t, agg.FindVendor("vendorB@example.com"))
}

func TestNewVendorComparisonInitialNarrative(t *testing.T) {
	agg := NewVendorComparison("agg-1", "user@example.com")
	assert.Equal(t, NarrativeNoVendors, agg.ComparisonNarrative)
}
