// Package server exposes the generation pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/amishk599/verigen/internal/generator"
	"github.com/amishk599/verigen/internal/model"
	"github.com/amishk599/verigen/internal/session"
)

// Server serves the JSON API and /metrics.
type Server struct {
	gen      *generator.Generator
	sess     *session.Session
	results  model.ResultStore
	defaults model.Target
	metrics  *Metrics
	logger   *slog.Logger

	// generation requests can outlive the usual write timeout
	writeTimeout time.Duration
}

// New creates a Server. defaults fills in the provider and model when a
// generate request leaves them out.
func New(
	gen *generator.Generator,
	sess *session.Session,
	results model.ResultStore,
	defaults model.Target,
	generationTimeout time.Duration,
	logger *slog.Logger,
) *Server {
	return &Server{
		gen:          gen,
		sess:         sess,
		results:      results,
		defaults:     defaults,
		metrics:      NewMetrics(),
		logger:       logger,
		writeTimeout: generationTimeout + 30*time.Second,
	}
}

// Handler builds the gin engine with every route registered.
func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(s.logger))

	router.GET("/health", s.health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	{
		api.GET("/catalog", s.getCatalog)
		api.POST("/prompt", s.buildPrompt)
		api.POST("/extract", s.extractCode)
		api.POST("/generate", s.generate)

		api.GET("/results", s.listResults)
		api.GET("/results/latest", s.latestResult)
		api.GET("/results/:id", s.getResult)

		api.GET("/keys", s.listKeys)
		api.PUT("/keys/:provider", s.setKey)
		api.DELETE("/keys/:provider", s.deleteKey)

		api.GET("/draft", s.getDraft)
		api.PUT("/draft", s.saveDraft)
		api.DELETE("/draft", s.clearDraft)
	}

	return router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: s.writeTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
