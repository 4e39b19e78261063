// Package service runs the recommendation pipeline: it ranks candidate
// schools for a family, picks a team at the top school and records it.
package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	repository "github.com/okian/playmatch/internal/adapters/repository"
	"github.com/okian/playmatch/internal/domain/ranking"
	"github.com/okian/playmatch/pkg/logger"
)

const defaultOracleTimeout = 20 * time.Second

// Service implements the API dependencies for the recommendation endpoint.
type Service struct {
	mu sync.RWMutex

	// Core components
	store  repository.Store
	ranker ranking.Ranker

	// Configuration
	oracleTimeout time.Duration

	// State
	started bool

	// Counters reported by GetStats
	requests            atomic.Int64
	assignments         atomic.Int64
	fallbacks           atomic.Int64
	persistenceFailures atomic.Int64

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the data store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithRanker sets the ranking oracle. Without one every recommendation
// fails with ErrOracleNotConfigured.
func WithRanker(r ranking.Ranker) Option {
	return func(s *Service) {
		if r != nil {
			s.ranker = r
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithOracleTimeout bounds each oracle call.
func WithOracleTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.oracleTimeout = d
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		oracleTimeout: defaultOracleTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Named("recommender")
	}

	return s
}

// Start checks the wiring and marks the service ready.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.store == nil {
		return ErrNoStore
	}
	if s.ranker == nil {
		s.logger.Warn(ctx, "no ranking oracle configured; recommendations will fail until a key is set")
	}

	s.started = true
	s.logger.Info(ctx, "recommendation service started",
		logger.Bool("oracle", s.ranker != nil),
		logger.Duration("oracleTimeout", s.oracleTimeout),
	)
	return nil
}

// Stop releases the store when it owns resources.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	if closer, ok := s.store.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			s.logger.Warn(context.Background(), "failed to close store", logger.Error(err))
		}
	}

	s.started = false
	s.logger.Info(context.Background(), "recommendation service stopped")
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"started":             s.started,
		"oracleConfigured":    s.ranker != nil,
		"oracleTimeoutMs":     s.oracleTimeout.Milliseconds(),
		"requests":            s.requests.Load(),
		"assignments":         s.assignments.Load(),
		"fallbacks":           s.fallbacks.Load(),
		"persistenceFailures": s.persistenceFailures.Load(),
	}
}
