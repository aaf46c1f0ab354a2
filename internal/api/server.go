// Package api exposes the escalation loop over HTTP.
//
// Endpoints:
//
//	POST /query   -> {"question": "..."} => {"generation": "..."}
//	GET  /health  -> liveness probe
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ppiankov/sibyl/internal/model"
)

const (
	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout guards against slow-header clients.
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout must cover a full escalation loop run.
	WriteTimeout = 5 * time.Minute

	// IdleTimeout for keep-alive connections.
	IdleTimeout = 120 * time.Second
)

// QueryService answers one question, typically an *answer.Engine
type QueryService interface {
	Ask(ctx context.Context, question string) (*model.Answer, error)
}

// Server is the HTTP server for sibyl's query API
type Server struct {
	mux    *http.ServeMux
	logger *slog.Logger
}

// NewServer creates a server with all routes registered
func NewServer(service QueryService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	s := &Server{mux: mux, logger: logger}

	mux.Handle("POST /query", &QueryHandler{service: service, logger: logger})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return s
}

// Handler returns the HTTP handler with middleware applied.
// Middleware order: recovery -> logging -> mux
func (s *Server) Handler() http.Handler {
	return chain(s.mux, recoveryMiddleware(s.logger), loggingMiddleware(s.logger))
}

// Run starts the server and blocks until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
