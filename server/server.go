// Package server wires the HTTP surface: the JSON API, health, and metrics.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/reyharighy/cba/ai"
	"github.com/reyharighy/cba/internal/profile"
	apiv1 "github.com/reyharighy/cba/server/router/api/v1"
	"github.com/reyharighy/cba/store"
)

// Server is the main HTTP server.
type Server struct {
	e       *echo.Echo
	profile *profile.Profile
	store   *store.Store
	ai      *ai.Config
}

// NewServer creates the server and mounts all routes.
func NewServer(p *profile.Profile, st *store.Store, aiConfig *ai.Config) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			slog.Info("http request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
			)
			return nil
		},
	}))

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	apiService := apiv1.NewAPIV1Service(p, st, aiConfig)
	apiService.Register(e.Group("/api/v1"))

	return &Server{
		e:       e,
		profile: p,
		store:   st,
		ai:      aiConfig,
	}
}

// Start runs the server until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	if s.profile.IsAIEnabled() {
		// Warm the LLM connections in the background so the first chat
		// request does not pay the handshake cost.
		var g errgroup.Group
		g.Go(func() error {
			s.ai.LLM.Warmup(ctx)
			return nil
		})
		g.Go(func() error {
			s.ai.SummaryLLM.Warmup(ctx)
			return nil
		})
		go func() { _ = g.Wait() }()
	}

	addr := fmt.Sprintf("%s:%d", s.profile.Addr, s.profile.Port)
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.e.Start(addr)
	}()

	slog.Info("server started",
		"addr", addr,
		"mode", s.profile.Mode,
		"version", s.profile.Version,
	)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		return s.Shutdown()
	}
}

// Shutdown stops the HTTP server and closes the store.
func (s *Server) Shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shut down server", "error", err)
	}
	if err := s.store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}

	slog.Info("server stopped")
	return nil
}
