// Package domain holds the per-user aggregate document and the merge rules
// that keep vendor entries unique inside it.
package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/aoi-dev/vendormail/internal/sanitize"
)

// Field sentinels used by the analysis layer. Kept in Japanese to match the
// documents already in the store.
const (
	NoInformation = "情報なし"
	AnalysisError = "分析エラー"
)

// Narrative sentinels. The no-vendors text is also the initial narrative of a
// freshly created aggregate.
const (
	NarrativeNoVendors = "比較対象の業者がありません"
	NarrativeFailed    = "業者比較の生成に失敗しました"
)

// ErrEmptyVendorEmail is returned by Merge when the vendor address sanitizes
// to nothing. The orchestrator filters these entries out before merging.
var ErrEmptyVendorEmail = errors.New("vendor email is empty after sanitization")

// AnalysisResult is the structured extraction from one vendor email.
// Absent information carries the NoInformation sentinel rather than "".
type AnalysisResult struct {
	Price      string `json:"price"`
	Conditions string `json:"conditions"`
	AgeRange   string `json:"ageRange"`
	AddedValue string `json:"addedValue"`
	NextAction string `json:"nextAction"`
}

// ErrorResult returns a result with every field set to the analysis-error
// sentinel.
func ErrorResult() AnalysisResult {
	return AnalysisResult{
		Price:      AnalysisError,
		Conditions: AnalysisError,
		AgeRange:   AnalysisError,
		AddedValue: AnalysisError,
		NextAction: AnalysisError,
	}
}

// EmptyResult returns a result with every field set to the no-information
// sentinel.
func EmptyResult() AnalysisResult {
	return AnalysisResult{
		Price:      NoInformation,
		Conditions: NoInformation,
		AgeRange:   NoInformation,
		AddedValue: NoInformation,
		NextAction: NoInformation,
	}
}

// Vendor is one vendor's latest analyzed offer within an aggregate.
type Vendor struct {
	VendorEmail string         `json:"vendorEmail"`
	Analysis    AnalysisResult `json:"analysisResult"`
	AnalyzedAt  time.Time      `json:"analyzedTime"`
}

// VendorComparison is the single per-user aggregate document: every known
// vendor's facts plus the latest comparison narrative. Field names mirror the
// persisted JSON layout.
type VendorComparison struct {
	ID                  string   `json:"id"`
	UserEmailAddress    string   `json:"userEMailAddress"`
	Vendors             []Vendor `json:"vendorAnalysisList"`
	ComparisonNarrative string   `json:"comparisonNarrative"`
}

// NewVendorComparison creates an empty aggregate for the given user key.
// The ID is assigned once and never changes afterwards.
func NewVendorComparison(id, userKey string) *VendorComparison {
	return &VendorComparison{
		ID:                  id,
		UserEmailAddress:    sanitize.Clean(userKey),
		ComparisonNarrative: NarrativeNoVendors,
	}
}

// PartitionKey is the store routing key. It is always derived from the user
// key so the two cannot drift apart.
func (c *VendorComparison) PartitionKey() string {
	return c.UserEmailAddress
}

// Merge integrates one vendor's fact set. Identity is the sanitized vendor
// email compared case-insensitively: a known vendor has its facts and
// timestamp replaced, an unknown one is appended. Merging the same pair twice
// leaves the aggregate unchanged apart from the timestamp.
func (c *VendorComparison) Merge(vendorEmail string, result AnalysisResult, now time.Time) error {
	email := sanitize.Clean(vendorEmail)
	if email == "" {
		return ErrEmptyVendorEmail
	}

	key := strings.ToLower(email)
	for i := range c.Vendors {
		if strings.ToLower(c.Vendors[i].VendorEmail) == key {
			c.Vendors[i].Analysis = result
			c.Vendors[i].AnalyzedAt = now
			return nil
		}
	}

	c.Vendors = append(c.Vendors, Vendor{
		VendorEmail: email,
		Analysis:    result,
		AnalyzedAt:  now,
	})
	return nil
}

// FindVendor returns the entry matching the address case-insensitively, or
// nil if the vendor is unknown.
func (c *VendorComparison) FindVendor(vendorEmail string) *Vendor {
	key := strings.ToLower(sanitize.Clean(vendorEmail))
	for i := range c.Vendors {
		if strings.ToLower(c.Vendors[i].VendorEmail) == key {
			return &c.Vendors[i]
		}
	}
	return nil
}
