package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/marmos91/idrecon/internal/logger"
	"github.com/marmos91/idrecon/pkg/reconciler"
)

// Server serves the reconciliation REST API.
type Server struct {
	server          *http.Server
	config          Config
	shutdownTimeout time.Duration
	shutdownOnce    sync.Once
	shutdownErr     error
}

// DefaultShutdownTimeout bounds the graceful shutdown started by Start.
const DefaultShutdownTimeout = 5 * time.Second

// NewServer creates a new API HTTP server in a stopped state. Call Start to
// begin serving requests.
//
// Defaults are applied here so a server built directly (e.g. in tests)
// behaves like one built from loaded configuration.
func NewServer(config Config, svc *reconciler.Service, opts RouterOptions) *Server {
	config.ApplyDefaults()
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = config.RequestTimeout
	}

	server := &http.Server{
		Addr:              config.Address(),
		Handler:           NewRouter(svc, opts),
		ReadTimeout:       config.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      config.WriteTimeout,
		IdleTimeout:       config.IdleTimeout,
	}

	return &Server{
		server:          server,
		config:          config,
		shutdownTimeout: DefaultShutdownTimeout,
	}
}

// WithShutdownTimeout sets how long Start waits for in-flight requests
// after ctx is cancelled.
func (s *Server) WithShutdownTimeout(d time.Duration) *Server {
	if d > 0 {
		s.shutdownTimeout = d
	}
	return s
}

// Start serves requests until ctx is cancelled or the listener fails.
// Cancellation triggers a graceful shutdown and Start returns its result.
func (s *Server) Start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("API server listening", logger.Component("api"), "address", s.server.Addr)

		if err := s.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("API server failed: %w", err)
		}
		return nil
	})

	// gctx ends on cancellation or when the listener fails; either way
	// drain in-flight requests on a fresh deadline.
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		return s.Stop(shutdownCtx)
	})

	return g.Wait()
}

// Stop gracefully shuts the server down. It is safe to call more than once
// and concurrently with Start.
func (s *Server) Stop(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		if err := s.server.Shutdown(ctx); err != nil {
			s.shutdownErr = fmt.Errorf("API server shutdown error: %w", err)
			logger.Error("API server shutdown error", logger.Err(err))
			return
		}
		logger.Info("API server stopped gracefully")
	})
	return s.shutdownErr
}

// Port returns the TCP port the server listens on.
func (s *Server) Port() int {
	return s.config.Port
}

// Handler returns the HTTP handler, for mounting in tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}
