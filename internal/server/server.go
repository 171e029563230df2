// Package server serves the trending dashboard over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/KaramelBytes/trendboard/internal/assets"
	"github.com/KaramelBytes/trendboard/internal/charts"
	"github.com/KaramelBytes/trendboard/internal/dataset"
	"github.com/KaramelBytes/trendboard/internal/insights"
)

// Config holds the dashboard settings.
type Config struct {
	Addr        string
	CORSOrigins []string
	Insights    insights.Options
	Charts      charts.Options
	LottieURL   string
	MaxUpload   int64
}

// Server holds the most recently uploaded dataset and serves views of it.
type Server struct {
	cfg    Config
	log    zerolog.Logger
	assets *assets.Fetcher
	router *chi.Mux
	page   *pageRenderer

	mu      sync.RWMutex
	current *dataset.Table
}

// New builds the router. fetcher may be nil, which disables the animation.
func New(cfg Config, fetcher *assets.Fetcher, log zerolog.Logger) *Server {
	if cfg.MaxUpload <= 0 {
		cfg.MaxUpload = 200 << 20
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	s := &Server{cfg: cfg, log: log, assets: fetcher, page: newPageRenderer()}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(log))
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/", s.handleIndex)
	router.Post("/upload", s.handleUpload)
	router.Get("/download", s.handleDownload)
	router.Get("/charts/{file}", s.handleChart)
	router.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/dataset", s.handleDataset)
		r.Get("/insights", s.handleInsights)
	})
	s.router = router
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// SetDataset replaces the current dataset.
func (s *Server) SetDataset(t *dataset.Table) {
	s.mu.Lock()
	s.current = t
	s.mu.Unlock()
}

// Dataset returns the current dataset, or nil.
func (s *Server) Dataset() *dataset.Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Msg("dashboard listening")
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
