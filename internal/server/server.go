// Package server is the HTTP front end: upload an estimate and a bill,
// compare them, download the result. The comparison core never sees any of
// this — the server only shuttles files in and results out.
package server

import (
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/nkmathur/partsrecon/internal/async"
	"github.com/nkmathur/partsrecon/internal/common"
	"github.com/nkmathur/partsrecon/internal/export"
	"github.com/nkmathur/partsrecon/internal/pipeline"
	"github.com/nkmathur/partsrecon/internal/runs"
)

type Server struct {
	cfg        common.ServerConfig
	logger     *slog.Logger
	comparator *pipeline.Comparator
	queue      *async.CompareQueue
	store      *runs.Store
	exporter   *export.Service
	limiter    *rate.Limiter
}

func NewServer(
	cfg common.ServerConfig,
	logger *slog.Logger,
	comparator *pipeline.Comparator,
	queue *async.CompareQueue,
	store *runs.Store,
	exporter *export.Service,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	perSec := cfg.RateLimitPerSec
	if perSec <= 0 {
		perSec = 10
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 30
	}
	return &Server{
		cfg:        cfg,
		logger:     logger,
		comparator: comparator,
		queue:      queue,
		store:      store,
		exporter:   exporter,
		limiter:    rate.NewLimiter(rate.Limit(perSec), burst),
	}
}

// Routes builds the handler tree with the middleware chain applied.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/compare", s.handleCompare)
	mux.HandleFunc("POST /api/compare/async", s.handleCompareAsync)
	mux.HandleFunc("GET /api/runs/{id}", s.handleGetRun)
	mux.HandleFunc("GET /api/runs/{id}/export", s.handleExportRun)

	var h http.Handler = mux
	h = s.loggingMiddleware(h)
	h = s.requestIDMiddleware(h)
	h = s.rateLimitMiddleware(h)
	return h
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
