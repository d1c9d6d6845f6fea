package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aoi-dev/vendormail/internal/domain"
	"github.com/aoi-dev/vendormail/internal/pipeline"
	"github.com/aoi-dev/vendormail/internal/store"
)

type stubRunner struct {
	summary *pipeline.RunSummary
	err     error
	got     pipeline.Batch
}

func (s *stubRunner) Run(_ context.Context, batch pipeline.Batch) (*pipeline.RunSummary, error) {
	s.got = batch
	if s.err != nil {
		return nil, s.err
	}
	return s.summary, nil
}

type stubReader struct {
	agg *domain.VendorComparison
	err error
}

func (s *stubReader) GetLatestByUser(_ context.Context, _ string) (*domain.VendorComparison, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.agg, nil
}

type stubPinger struct{ err error }

func (s *stubPinger) Ping(context.Context) error { return s.err }

func newTestServer(runner *stubRunner, reader *stubReader, storePing, providerPing *stubPinger) *Server {
	if runner == nil {
		runner = &stubRunner{}
	}
	if reader == nil {
		reader = &stubReader{err: store.ErrNotFound}
	}
	if storePing == nil {
		storePing = &stubPinger{}
	}
	if providerPing == nil {
		providerPing = &stubPinger{}
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(runner, reader, storePing, providerPing, logger)
}

func TestIngestBatch(t *testing.T) {
	runner := &stubRunner{summary: &pipeline.RunSummary{
		AggregateID: "agg-1",
		UserKey:     "user@example.com",
		Created:     true,
		Outcomes: []pipeline.VendorOutcome{
			{DocumentID: "doc-1", VendorEmail: "vendorA@example.com", Status: pipeline.VendorMerged},
			{DocumentID: "doc-1", Status: pipeline.VendorSkipped, Reason: "empty vendor address"},
		},
	}}
	srv := newTestServer(runner, nil, nil, nil)

	body := `{"documents":[{"documentId":"doc-1","userKey":"user@example.com","vendorEntries":[{"vendorEmail":"vendorA@example.com","vendorMailText":"料金は5000円です"}]}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/batches", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ingestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "agg-1", resp.AggregateID)
	assert.True(t, resp.Created)
	require.Len(t, resp.Vendors, 2)
	assert.Equal(t, "merged", resp.Vendors[0].Status)
	assert.Equal(t, "skipped", resp.Vendors[1].Status)

	require.Len(t, runner.got.Documents, 1)
	assert.Equal(t, "user@example.com", runner.got.Documents[0].UserKey)
}

func TestIngestBatchRejectsMalformedBody(t *testing.T) {
	srv := newTestServer(nil, nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/batches", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestIngestBatchValidationErrorsMapTo400(t *testing.T) {
	for _, err := range []error{pipeline.ErrEmptyBatch, pipeline.ErrMissingUserKey} {
		srv := newTestServer(&stubRunner{err: err}, nil, nil, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/batches", strings.NewReader(`{"documents":[]}`))
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, "error %v", err)
	}
}

func TestIngestBatchRunFailureMapsTo500(t *testing.T) {
	srv := newTestServer(&stubRunner{err: errors.New("persisting aggregate: disk full")}, nil, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/batches", strings.NewReader(`{"documents":[{"userKey":"u"}]}`))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetComparison(t *testing.T) {
	agg := domain.NewVendorComparison("agg-1", "user@example.com")
	require.NoError(t, agg.Merge("vendorA@example.com", domain.EmptyResult(),
		time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)))
	agg.ComparisonNarrative = "業者Aのみが候補です"

	srv := newTestServer(nil, &stubReader{agg: agg}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/vendor-comparisons/user@example.com", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.VendorComparison
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "agg-1", got.ID)
	assert.Equal(t, "user@example.com", got.UserEmailAddress)
	require.Len(t, got.Vendors, 1)
	assert.Equal(t, "業者Aのみが候補です", got.ComparisonNarrative)
}

func TestGetComparisonNotFound(t *testing.T) {
	srv := newTestServer(nil, &stubReader{err: store.ErrNotFound}, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/vendor-comparisons/nobody@example.com", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(nil, nil, &stubPinger{}, &stubPinger{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthzStoreDown(t *testing.T) {
	srv := newTestServer(nil, nil, &stubPinger{err: errors.New("closed")}, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthzProviderDown(t *testing.T) {
	srv := newTestServer(nil, nil, &stubPinger{}, &stubPinger{err: errors.New("connection refused")})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "llm provider")
}
