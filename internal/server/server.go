// Package server exposes the ingestion and read API over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aoi-dev/vendormail/internal/domain"
	"github.com/aoi-dev/vendormail/internal/pipeline"
)

// BatchRunner processes one delivered batch.
type BatchRunner interface {
	Run(ctx context.Context, batch pipeline.Batch) (*pipeline.RunSummary, error)
}

// ComparisonReader serves the read side of the API.
type ComparisonReader interface {
	GetLatestByUser(ctx context.Context, userKey string) (*domain.VendorComparison, error)
}

// Pinger reports reachability of a dependency for the health probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	runner   BatchRunner
	reader   ComparisonReader
	store    Pinger
	provider Pinger
	logger   *slog.Logger
}

func New(runner BatchRunner, reader ComparisonReader, store, provider Pinger, logger *slog.Logger) *Server {
	return &Server{
		runner:   runner,
		reader:   reader,
		store:    store,
		provider: provider,
		logger:   logger,
	}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Route("/api", func(r chi.Router) {
		r.Post("/batches", s.handleIngestBatch)
		r.Get("/vendor-comparisons/{userKey}", s.handleGetComparison)
	})
	return r
}
