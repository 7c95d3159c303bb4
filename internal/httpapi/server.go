// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

// Package httpapi exposes the blog service over HTTP. Handlers are thin:
// they decode requests, delegate to the auth and blog services, and map
// domain errors to statuses.
package httpapi

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/samber/oops"

	"github.com/inkwell/inkwell/internal/auth"
	"github.com/inkwell/inkwell/internal/blog"
	"github.com/inkwell/inkwell/internal/observability"
)

// Server serves the public API.
type Server struct {
	addr       string
	listener   net.Listener
	httpServer *http.Server
	handlers   *handlers
	logger     *slog.Logger
	running    atomic.Bool
}

// NewServer creates a new API server.
// addr: listen address in "host:port" format (e.g., ":8000").
func NewServer(addr string, authSvc *auth.Service, posts *blog.PostService, metrics *observability.Metrics, logger *slog.Logger) (*Server, error) {
	if authSvc == nil {
		return nil, oops.Errorf("auth service is required")
	}
	if posts == nil {
		return nil, oops.Errorf("post service is required")
	}
	if metrics == nil {
		return nil, oops.Errorf("metrics are required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		addr:   addr,
		logger: logger,
		handlers: &handlers{
			auth:    authSvc,
			posts:   posts,
			metrics: metrics,
			logger:  logger,
		},
	}, nil
}

// routes builds the request multiplexer. Method-qualified patterns make the
// mux reject mismatched methods with 405 on its own.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	handle := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, instrument(fn, pattern, s.handlers.metrics, s.logger))
	}

	handle("POST /login", s.handlers.handleLogin)
	handle("POST /users/registration", s.handlers.handleRegistration)
	handle("POST /users/details", s.handlers.handleDetails)
	handle("POST /password/request", s.handlers.handlePasswordResetRequest)
	handle("PUT /password/reset", s.handlers.handlePasswordReset)

	handle("POST /blog", s.handlers.handleCreatePost)
	handle("GET /blog", s.handlers.handleListPosts)
	handle("GET /blog/{id}", s.handlers.handleGetPost)
	handle("PUT /blog/{id}", s.handlers.handleUpdatePost)
	handle("DELETE /blog/{id}", s.handlers.handleDeletePost)

	return mux
}

// Start begins serving the API.
// It returns an error channel that will receive any errors from the HTTP
// server after it starts. The channel is closed when the server stops
// gracefully. Callers should monitor this channel to detect server failures.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("api server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("api server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("api server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the API server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			// Restore running state on failure so the server can be stopped again
			s.running.Store(true)
			return oops.With("operation", "shutdown_api_server").Wrap(err)
		}
	}

	s.logger.Info("api server stopped")
	return nil
}

// Addr returns the address the server is listening on.
// Returns empty string if not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
