// Package pipeline drives one run per delivered batch: load or create the
// user's aggregate, analyze and merge each vendor mail with per-vendor
// failure isolation, synthesize the comparison narrative, persist.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rs/xid"

	"github.com/aoi-dev/vendormail/internal/domain"
	"github.com/aoi-dev/vendormail/internal/sanitize"
	"github.com/aoi-dev/vendormail/internal/store"
)

// ErrMissingUserKey aborts a run whose first document carries no usable user
// key. The batch is invalid; no store access happens.
var ErrMissingUserKey = errors.New("pipeline: batch has no user key")

// ErrEmptyBatch is returned for a delivery with no documents.
var ErrEmptyBatch = errors.New("pipeline: batch has no documents")

// Batch is one at-least-once delivery from the ingestion boundary.
type Batch struct {
	Documents []SourceDocument `json:"documents"`
}

// SourceDocument is one received-mail document inside a batch.
type SourceDocument struct {
	DocumentID    string        `json:"documentId"`
	UserKey       string        `json:"userKey"`
	VendorEntries []VendorEntry `json:"vendorEntries"`
}

// VendorEntry is one raw vendor mail.
type VendorEntry struct {
	VendorEmail    string    `json:"vendorEmail"`
	VendorMailText string    `json:"vendorMailText"`
	ReceivedAt     time.Time `json:"receivedAt"`
}

// Analyzer extracts a fact set from one vendor mail. Implementations degrade
// to sentinel fact sets instead of failing where they can; an error here
// still only skips the one vendor.
type Analyzer interface {
	Analyze(ctx context.Context, mailText string) (domain.AnalysisResult, error)
}

// Synthesizer produces the comparison narrative for the full vendor list.
type Synthesizer interface {
	Synthesize(ctx context.Context, vendors []domain.Vendor) string
}

// VendorStatus classifies the outcome of one vendor entry in a run.
type VendorStatus int

const (
	VendorMerged VendorStatus = iota
	VendorSkipped
	VendorFailed
)

func (s VendorStatus) String() string {
	switch s {
	case VendorMerged:
		return "merged"
	case VendorSkipped:
		return "skipped"
	case VendorFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// VendorOutcome records what happened to one vendor entry.
type VendorOutcome struct {
	DocumentID  string
	VendorEmail string
	Status      VendorStatus
	Reason      string
}

// RunSummary describes one completed pipeline run.
type RunSummary struct {
	AggregateID string
	UserKey     string
	Created     bool
	Outcomes    []VendorOutcome
}

// Merged returns how many vendors were merged in this run.
func (s *RunSummary) Merged() int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Status == VendorMerged {
			n++
		}
	}
	return n
}

// Pipeline is the batch orchestrator. One run mutates one in-memory
// aggregate; vendor processing is sequential, so the merge step needs no
// locking. Concurrent runs for different users are fine; the delivery
// mechanism serializes runs per user key.
type Pipeline struct {
	analyzer Analyzer
	synth    Synthesizer
	store    store.AggregateStore
	logger   *slog.Logger
	location *time.Location
	now      func() time.Time
	newID    func() string
}

func New(analyzer Analyzer, synth Synthesizer, st store.AggregateStore, logger *slog.Logger, loc *time.Location) *Pipeline {
	if loc == nil {
		loc = time.UTC
	}
	return &Pipeline{
		analyzer: analyzer,
		synth:    synth,
		store:    st,
		logger:   logger,
		location: loc,
		now:      time.Now,
		newID:    func() string { return xid.New().String() },
	}
}

// Run processes one delivered batch. Per-vendor failures are recorded in the
// summary and never abort the run; a persist failure is returned to the
// caller so the delivery mechanism redelivers the batch. A cancelled context
// discards the run without persisting.
func (p *Pipeline) Run(ctx context.Context, batch Batch) (*RunSummary, error) {
	if len(batch.Documents) == 0 {
		return nil, ErrEmptyBatch
	}

	userKey := sanitize.Clean(batch.Documents[0].UserKey)
	if userKey == "" {
		return nil, fmt.Errorf("%w (document %s)", ErrMissingUserKey, batch.Documents[0].DocumentID)
	}

	agg, created, err := p.loadOrCreate(ctx, userKey)
	if err != nil {
		return nil, err
	}

	summary := &RunSummary{
		AggregateID: agg.ID,
		UserKey:     userKey,
		Created:     created,
	}

	for _, doc := range batch.Documents {
		docKey := sanitize.Clean(doc.UserKey)
		if docKey != userKey {
			p.logger.Warn("document user key differs from batch key, skipping document",
				"document_id", doc.DocumentID, "batch_key", userKey)
			continue
		}
		for _, entry := range doc.VendorEntries {
			if err := ctx.Err(); err != nil {
				// Discard the run; redelivery reprocesses the batch and the
				// idempotent merge makes that safe.
				return nil, err
			}
			summary.Outcomes = append(summary.Outcomes, p.processVendor(ctx, agg, doc.DocumentID, entry))
		}
	}

	agg.ComparisonNarrative = p.synth.Synthesize(ctx, agg.Vendors)

	if _, err := p.store.Upsert(ctx, agg); err != nil {
		return nil, fmt.Errorf("persisting aggregate %s: %w", agg.ID, err)
	}

	p.logger.Info("batch processed",
		"user_key", userKey,
		"aggregate_id", agg.ID,
		"created", created,
		"vendors_merged", summary.Merged(),
		"vendors_total", len(summary.Outcomes),
	)
	return summary, nil
}

func (p *Pipeline) loadOrCreate(ctx context.Context, userKey string) (*domain.VendorComparison, bool, error) {
	agg, err := p.store.GetLatestByUser(ctx, userKey)
	if err == nil {
		return agg, false, nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return domain.NewVendorComparison(p.newID(), userKey), true, nil
	}
	return nil, false, fmt.Errorf("loading aggregate for %s: %w", userKey, err)
}

// processVendor runs the sanitize→analyze→merge sequence for one entry.
// Failures are contained here: the outcome records them and the caller moves
// on to the next vendor.
func (p *Pipeline) processVendor(ctx context.Context, agg *domain.VendorComparison, docID string, entry VendorEntry) VendorOutcome {
	vendorEmail := sanitize.Clean(entry.VendorEmail)
	if vendorEmail == "" {
		p.logger.Warn("vendor entry has empty address, skipping",
			"document_id", docID)
		return VendorOutcome{
			DocumentID: docID,
			Status:     VendorSkipped,
			Reason:     "empty vendor address",
		}
	}

	outcome := VendorOutcome{DocumentID: docID, VendorEmail: vendorEmail}

	result, err := p.analyzer.Analyze(ctx, sanitize.Clean(entry.VendorMailText))
	if err != nil {
		p.logger.Error("vendor analysis failed, skipping vendor",
			"document_id", docID, "vendor", vendorEmail, "error", err)
		outcome.Status = VendorFailed
		outcome.Reason = err.Error()
		return outcome
	}

	if err := agg.Merge(vendorEmail, result, p.now().In(p.location)); err != nil {
		p.logger.Error("vendor merge failed, skipping vendor",
			"document_id", docID, "vendor", vendorEmail, "error", err)
		outcome.Status = VendorFailed
		outcome.Reason = err.Error()
		return outcome
	}

	outcome.Status = VendorMerged
	return outcome
}
