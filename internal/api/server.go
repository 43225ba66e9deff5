// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api serves outline conversion over HTTP. Requests are converted
// in memory; nothing is written to disk.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pdiddy/casemap/internal/logging"
	"github.com/pdiddy/casemap/pkg/types"
)

// Server is the HTTP surface of casemap.
type Server struct {
	router chi.Router
	cfg    types.Config
	log    *logging.Logger
	token  string
}

// NewServer builds the router for cfg. A non-empty token is required as a
// bearer credential on every /api route; /health stays open.
func NewServer(cfg types.Config, log *logging.Logger, token string) *Server {
	s := &Server{cfg: cfg, log: log, token: token}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		if s.token != "" {
			r.Use(Auth(s.token, s.log))
		}
		r.Post("/outline", s.handleOutline)
		r.Post("/inspect", s.handleInspect)
	})

	s.router = r
}

// ListenAndServe serves until ctx is cancelled, then shuts down within the
// configured timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Server.Addr,
		Handler: s,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	s.log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
