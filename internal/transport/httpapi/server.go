// Package httpapi is the HTTP surface: chat, streaming, session memory
// and health endpoints over net/http.
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/sandevgo/skylark/internal/config"
	"github.com/sandevgo/skylark/internal/service/agent"
	"github.com/sandevgo/skylark/pkg/log"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 30 * time.Second
	idleTimeout       = 120 * time.Second

	// No write timeout: /stream holds the connection open for the
	// whole turn, which includes upstream model calls.
	writeTimeout = 0
)

type Server struct {
	cfg   *config.ServerConfig
	agent *agent.Agent
	srv   *http.Server
}

func NewServer(cfg *config.ServerConfig, a *agent.Agent) *Server {
	return &Server{cfg: cfg, agent: a}
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /stream", s.handleStream)
	mux.HandleFunc("GET /memory", s.handleMemory)
	mux.HandleFunc("GET /new-session", s.handleNewSession)
	mux.HandleFunc("GET /health", s.handleHealth)

	return chain(mux, recoveryMiddleware, loggingMiddleware)
}

// Start runs the HTTP server until Shutdown or a listen error.
func (s *Server) Start(ctx context.Context) error {
	s.srv = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	log.FromCtx(ctx).Info().Str("addr", s.cfg.Addr).Msg("http server listening")

	if err := s.srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.FromCtx(ctx).Info().Msg("shutting down http server")
	return s.srv.Shutdown(shutdownCtx)
}
