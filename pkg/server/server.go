package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/elonfeng/trendpulse/internal/store"
	"github.com/elonfeng/trendpulse/pkg/analysis"
	"github.com/elonfeng/trendpulse/pkg/trend"
)

const buildCacheControl = "public, max-age=1800, must-revalidate"

// Builder produces the full trend batch.
type Builder interface {
	Build(ctx context.Context) ([]trend.Trend, error)
}

// Querier answers a single free-text trend query.
type Querier interface {
	Query(ctx context.Context, req trend.QueryRequest) (*trend.AggregatedQuery, error)
}

// Analyzer runs trend analyses.
type Analyzer interface {
	Analyze(ctx context.Context, req analysis.Request) (analysis.Result, error)
}

// Config wires the HTTP API. Cache is optional.
type Config struct {
	Port     int
	Builder  Builder
	Querier  Querier
	Analyzer Analyzer
	Cache    store.Cache
	Logger   zerolog.Logger
}

// Server provides the HTTP API.
type Server struct {
	builder  Builder
	querier  Querier
	analyzer Analyzer
	cache    store.Cache
	logger   zerolog.Logger
	router   *chi.Mux
	server   *http.Server
}

// New creates a new HTTP server.
func New(cfg Config) *Server {
	port := cfg.Port
	if port == 0 {
		port = 8080
	}
	s := &Server{
		builder:  cfg.Builder,
		querier:  cfg.Querier,
		analyzer: cfg.Analyzer,
		cache:    cfg.Cache,
		logger:   cfg.Logger,
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(cfg.Logger))
	router.Use(recoverer(cfg.Logger))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, envelope{"success": false, "message": "Not Found"})
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, envelope{"success": false, "message": "Method Not Allowed"})
	})

	router.Get("/health", s.handleHealth)
	router.Route("/api", func(r chi.Router) {
		r.Get("/trends-builder", s.handleBuild)
		r.Get("/fetch-trends", s.handleFetch)
		r.Route("/analyze-trend", func(r chi.Router) {
			r.Options("/", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			})
			r.Get("/", s.handleAnalyzeStatus)
			r.Post("/", s.handleAnalyze)
		})
	})

	s.router = router
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("trendpulse server listening")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

type envelope map[string]any

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	trends, err := s.latestTrends(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("build trends failed")
		writeJSON(w, http.StatusInternalServerError, envelope{
			"success": false,
			"error":   "Failed to build trends",
			"message": err.Error(),
		})
		return
	}

	if len(trends) == 0 {
		writeJSON(w, http.StatusOK, envelope{
			"success": true,
			"trends":  []trend.Trend{},
			"message": "No trends found from any source.",
		})
		return
	}

	w.Header().Set("Cache-Control", buildCacheControl)
	writeJSON(w, http.StatusOK, envelope{"success": true, "trends": trends})
}

// latestTrends serves a fresh cached build when one exists and otherwise
// builds, caching the result.
func (s *Server) latestTrends(ctx context.Context) ([]trend.Trend, error) {
	if s.cache != nil {
		b, err := s.cache.LatestBuild(ctx)
		switch {
		case err == nil:
			return b.Trends, nil
		case !errors.Is(err, store.ErrNotFound):
			s.logger.Warn().Err(err).Msg("read build cache failed")
		}
	}

	trends, err := s.builder.Build(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && len(trends) > 0 {
		if err := s.cache.SaveBuild(ctx, store.NewBuild(trends, time.Now())); err != nil {
			s.logger.Warn().Err(err).Msg("write build cache failed")
		}
	}
	return trends, nil
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := trend.QueryRequest{
		Term:      q.Get("searchTerm"),
		Timeframe: q.Get("timeframe"),
		Mode:      q.Get("mode"),
	}

	result, err := s.querier.Query(r.Context(), req)
	if errors.Is(err, trend.ErrEmptyTerm) {
		writeJSON(w, http.StatusBadRequest, envelope{"success": false, "message": "searchTerm is required."})
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Str("term", req.Term).Msg("fetch trends failed")
		writeJSON(w, http.StatusInternalServerError, envelope{"success": false, "message": err.Error()})
		return
	}

	if result == nil {
		writeJSON(w, http.StatusOK, envelope{"success": true, "trends": []*trend.AggregatedQuery{}})
		return
	}
	writeJSON(w, http.StatusOK, envelope{"success": true, "trends": []*trend.AggregatedQuery{result}})
}

func (s *Server) handleAnalyzeStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, envelope{"success": true, "message": "AI service is online."})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analysis.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{
			"success": false,
			"message": analysis.FailureMessage(req.Language, fmt.Errorf("invalid request body: %w", err)),
		})
		return
	}

	result, err := s.analyzer.Analyze(r.Context(), req)
	switch {
	case errors.Is(err, analysis.ErrMissingTrend):
		writeJSON(w, http.StatusBadRequest, envelope{"success": false, "message": analysis.MissingTrendMessage(req.Language)})
		return
	case errors.Is(err, analysis.ErrInvalidAnalysisType):
		writeJSON(w, http.StatusBadRequest, envelope{"success": false, "message": analysis.InvalidTypeMessage()})
		return
	case err != nil:
		s.logger.Error().Err(err).Str("type", req.AnalysisType).Msg("analysis failed")
		writeJSON(w, http.StatusInternalServerError, envelope{
			"success": false,
			"message": analysis.FailureMessage(req.Language, err),
		})
		return
	}

	writeJSON(w, http.StatusOK, envelope{"success": true, "data": result.Data()})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
