// Package server exposes learner stats, the leaderboard and the progress
// write path over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abhisek/spansk/internal/config"
	"github.com/abhisek/spansk/internal/logger"
	"github.com/abhisek/spansk/internal/metrics"
	"github.com/abhisek/spansk/internal/ratelimit"
	"github.com/abhisek/spansk/internal/stats"
	"github.com/abhisek/spansk/internal/store"
)

// purgeInterval is how often expired rate limit counters are deleted.
const purgeInterval = 5 * time.Minute

// Server wires the HTTP API to the store and the stats engine.
type Server struct {
	cfg      config.Config
	backend  store.Backend
	stats    *stats.Service
	ranker   *stats.Ranker
	limiter  *ratelimit.Limiter
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	now      func() time.Time
}

// New creates a Server. reg receives the service metrics and is served on
// /metrics; a nil reg disables metrics.
func New(cfg config.Config, backend store.Backend, reg *prometheus.Registry) *Server {
	s := &Server{
		cfg:     cfg,
		backend: backend,
		limiter: ratelimit.New(backend, cfg.RateLimit, cfg.RateWindow),
		now:     time.Now,
	}
	if reg != nil {
		s.metrics = metrics.New(reg)
		s.gatherer = reg
	}
	s.stats = stats.NewService(backend,
		stats.WithLocation(cfg.Location),
		stats.WithMetrics(s.metrics),
	)
	s.ranker = stats.NewRanker(s.stats, backend, cfg.FetchRate, s.metrics)
	return s
}

// Handler builds the router with every route and middleware attached.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		respondWithError(w, http.StatusNotFound, "Not found")
	})

	standard := r.PathPrefix("/").Subrouter()
	standard.Use(s.logRequests)
	standard.Use(s.monitor)

	if s.gatherer != nil {
		standard.Handle("/metrics", s.basicAuth(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))).Methods("GET")
	}
	standard.HandleFunc("/health", s.health).Methods("GET")

	api := standard.PathPrefix("/api/v1").Subrouter()
	api.Use(s.requireClientVersion)
	api.Use(s.identify)
	api.Use(s.rateLimit)

	api.HandleFunc("/leaderboard", s.getLeaderboard).Methods("GET")
	api.HandleFunc("/users/{userID}/stats", s.getUserStats).Methods("GET")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(s.requireUser)
	protected.HandleFunc("/me/stats", s.getMyStats).Methods("GET")
	protected.HandleFunc("/progress", s.postProgress).Methods("POST")

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(s.requireUser)
	admin.Use(s.requireAdmin)
	admin.HandleFunc("/users/{userID}/progress", s.getUserProgress).Methods("GET")
	admin.HandleFunc("/profiles/{userID}", s.putProfile).Methods("PUT")

	cors := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins(s.cfg.AllowedOrigins),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", userIDHeader, clientVersionHeader}),
		gorillaHandlers.ExposedHeaders([]string{"Content-Length", "Retry-After"}),
	)
	return cors(r)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go s.purgeCounters(ctx)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server on port %s", s.cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Success("Server shutdown complete")
	return nil
}

func (s *Server) purgeCounters(ctx context.Context) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.backend.PurgeExpired(ctx)
			if err != nil {
				logger.Warning("purge rate counters: %v", err)
				continue
			}
			if n > 0 {
				logger.Info("Purged %d expired rate counters", n)
			}
		}
	}
}
