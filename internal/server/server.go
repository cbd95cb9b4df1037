// Package server is a reference query engine: it accepts the
// POST /query envelope and runs queries against a local adapter.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/leapstack-labs/leapquery/internal/audit"
	"github.com/leapstack-labs/leapquery/pkg/adapter"
	"github.com/leapstack-labs/leapquery/pkg/guard"
	"github.com/leapstack-labs/leapquery/pkg/ident"
	"golang.org/x/sync/errgroup"
)

// MaxBodyBytes bounds the size of a /query request body.
const MaxBodyBytes = 1 << 20

// Config holds configuration for the engine server.
type Config struct {
	Addr    string
	Adapter adapter.Adapter

	// Guard validates queries before they reach the adapter. Nil disables it.
	Guard *guard.Guard

	// Ident validates table names on the metadata route.
	Ident ident.Config

	// Audit records every /query request. Nil disables auditing.
	Audit audit.Recorder

	Logger *slog.Logger
}

// Server serves queries over HTTP.
type Server struct {
	addr    string
	adapter adapter.Adapter
	guard   *guard.Guard
	ident   ident.Config
	audit   audit.Recorder
	logger  *slog.Logger
}

// New creates a server. A nil logger discards output.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		addr:    cfg.Addr,
		adapter: cfg.Adapter,
		guard:   cfg.Guard,
		ident:   cfg.Ident,
		audit:   cfg.Audit,
		logger:  logger,
	}
}

// Handler returns the router with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		requestID,
		requestLogger(s.logger),
		middleware.Recoverer,
	)

	r.With(middleware.RequestSize(MaxBodyBytes)).Post("/query", s.handleQuery)
	r.Get("/healthz", s.handleHealth)
	r.Get("/tables/{table}", s.handleTable)

	return r
}

// Serve listens on the configured address and blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	s.logger.Info("starting query engine",
		"addr", ln.Addr().String(),
		"dialect", s.adapter.DialectName(),
		"guard", s.guard != nil)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down query engine...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
