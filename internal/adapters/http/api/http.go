// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	repository "github.com/okian/playmatch/internal/adapters/repository"
	"github.com/okian/playmatch/internal/domain/types"
	"github.com/okian/playmatch/pkg/logger"
)

const defaultRoutePrefix = "/api/recommendations"

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Recommend ranks schools for a family and assigns a team.
	Recommend(ctx context.Context, familyID string) (Recommendation, error)
}

// Recommendation mirrors the result shape returned by the pipeline.
type Recommendation = types.Recommendation

// Server wires HTTP routes for the business API.
type Server struct {
	routePrefix string
	logger      logger.Logger

	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	recommendHandler *RecommendHandler
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithRoutePrefix sets the path mounted before /family/{family_id}.
func WithRoutePrefix(prefix string) Option {
	return func(s *Server) {
		prefix = strings.TrimRight(prefix, "/")
		if prefix != "" {
			s.routePrefix = prefix
		}
	}
}

// WithLogger sets a custom logger for the handlers.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{routePrefix: defaultRoutePrefix}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("http")
	}

	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.recommendHandler = NewRecommendHandler(deps, s.routePrefix+"/family/", s.logger)
	return s
}

// RoutePrefix returns the prefix the recommendation route is mounted under.
func (s *Server) RoutePrefix() string { return s.routePrefix }

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc(s.routePrefix+"/family/", RequestIDMiddleware(MetricsMiddleware(s.recommendHandler.HandleRecommend, "recommend")))
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Error: msg})
}

// isNotFound allows the API to translate upstream not-found errors to 404.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrFamilyNotFound) || errors.Is(err, ErrNotFound)
}
