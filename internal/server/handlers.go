package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aoi-dev/vendormail/internal/pipeline"
	"github.com/aoi-dev/vendormail/internal/sanitize"
	"github.com/aoi-dev/vendormail/internal/store"
)

// ingestResponse is the API shape of a run summary.
type ingestResponse struct {
	AggregateID string          `json:"aggregateId"`
	UserKey     string          `json:"userKey"`
	Created     bool            `json:"created"`
	Vendors     []vendorOutcome `json:"vendors"`
}

type vendorOutcome struct {
	DocumentID  string `json:"documentId"`
	VendorEmail string `json:"vendorEmail,omitempty"`
	Status      string `json:"status"`
	Reason      string `json:"reason,omitempty"`
}

func (s *Server) handleIngestBatch(w http.ResponseWriter, r *http.Request) {
	var batch pipeline.Batch
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid batch payload: "+err.Error())
		return
	}

	summary, err := s.runner.Run(r.Context(), batch)
	switch {
	case err == nil:
	case errors.Is(err, pipeline.ErrEmptyBatch), errors.Is(err, pipeline.ErrMissingUserKey):
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	default:
		s.logger.Error("batch run failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, "batch processing failed")
		return
	}

	resp := ingestResponse{
		AggregateID: summary.AggregateID,
		UserKey:     summary.UserKey,
		Created:     summary.Created,
		Vendors:     make([]vendorOutcome, 0, len(summary.Outcomes)),
	}
	for _, o := range summary.Outcomes {
		resp.Vendors = append(resp.Vendors, vendorOutcome{
			DocumentID:  o.DocumentID,
			VendorEmail: o.VendorEmail,
			Status:      o.Status.String(),
			Reason:      o.Reason,
		})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetComparison(w http.ResponseWriter, r *http.Request) {
	userKey := sanitize.Clean(chi.URLParam(r, "userKey"))
	if userKey == "" {
		s.writeError(w, http.StatusBadRequest, "user key must not be empty")
		return
	}

	agg, err := s.reader.GetLatestByUser(r.Context(), userKey)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "no comparison for user")
		return
	}
	if err != nil {
		s.logger.Error("loading comparison", "user_key", userKey, "error", err)
		s.writeError(w, http.StatusInternalServerError, "loading comparison failed")
		return
	}
	s.writeJSON(w, http.StatusOK, agg)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "store unreachable")
		return
	}
	if err := s.provider.Ping(ctx); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "llm provider unreachable")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
