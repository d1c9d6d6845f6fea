// Package store defines the persistence boundary for aggregate documents.
package store

import (
	"context"
	"errors"

	"github.com/aoi-dev/vendormail/internal/domain"
)

// ErrNotFound is returned when no aggregate exists for a user key.
var ErrNotFound = errors.New("store: aggregate not found")

// AggregateStore is the idempotency boundary of the pipeline: every run loads
// the latest record for the user key before merging, and Upsert overwrites on
// the (id, userKey) pair rather than duplicating.
type AggregateStore interface {
	// GetLatestByUser returns the most recently written aggregate for the
	// user key, or ErrNotFound.
	GetLatestByUser(ctx context.Context, userKey string) (*domain.VendorComparison, error)

	// Upsert writes the aggregate atomically on (id, userKey) and returns
	// the stored document.
	Upsert(ctx context.Context, agg *domain.VendorComparison) (*domain.VendorComparison, error)
}
