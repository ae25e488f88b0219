// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuillNote Contributors

// Package web exposes the QuillNote services over a JSON HTTP API. It is a
// thin mapping from client actions to service calls; there is no rendering
// here.
package web

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/samber/oops"

	"github.com/quillnote/quillnote/internal/auth"
	"github.com/quillnote/quillnote/internal/notes"
	"github.com/quillnote/quillnote/internal/observability"
)

// SessionHeader carries the session id between client and server.
const SessionHeader = "X-Session-Id"

// RememberParam is the URL query parameter carrying the remember token.
const RememberParam = "remember"

// Server is the HTTP front end.
type Server struct {
	addr     string
	auth     *auth.Service
	accounts *auth.AccountService
	resets   *auth.PasswordResetService
	sessions *auth.Manager
	notes    notes.Repository
	metrics  *observability.Metrics
	logger   *slog.Logger

	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// Options bundles the server dependencies.
type Options struct {
	Addr     string
	Auth     *auth.Service
	Accounts *auth.AccountService
	Resets   *auth.PasswordResetService
	Sessions *auth.Manager
	Notes    notes.Repository
	// Metrics is optional; without it no counters are recorded.
	Metrics *observability.Metrics
	Logger  *slog.Logger
}

// NewServer creates the HTTP front end.
func NewServer(opts Options) (*Server, error) {
	if opts.Addr == "" {
		return nil, oops.Errorf("listen address is required")
	}
	if opts.Auth == nil || opts.Accounts == nil || opts.Resets == nil {
		return nil, oops.Errorf("auth, account, and reset services are required")
	}
	if opts.Sessions == nil {
		return nil, oops.Errorf("session manager is required")
	}
	if opts.Notes == nil {
		return nil, oops.Errorf("notes repository is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:     opts.Addr,
		auth:     opts.Auth,
		accounts: opts.Accounts,
		resets:   opts.Resets,
		sessions: opts.Sessions,
		notes:    opts.Notes,
		metrics:  opts.Metrics,
		logger:   logger,
	}, nil
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/signup", s.handleSignup)
	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.HandleFunc("POST /api/logout", s.handleLogout)
	mux.HandleFunc("POST /api/reset", s.handleReset)

	mux.HandleFunc("GET /api/notes", s.handleListNotes)
	mux.HandleFunc("POST /api/notes", s.handleCreateNote)
	mux.HandleFunc("PUT /api/notes/{id}", s.handleUpdateNote)
	mux.HandleFunc("DELETE /api/notes/{id}", s.handleDeleteNote)

	mux.HandleFunc("PUT /api/account/username", s.handleChangeUsername)
	mux.HandleFunc("PUT /api/account/email", s.handleChangeEmail)
	mux.HandleFunc("PUT /api/account/password", s.handleChangePassword)
	mux.HandleFunc("POST /api/account/delete", s.handleArmDelete)
	mux.HandleFunc("POST /api/account/delete/confirm", s.handleConfirmDelete)
	mux.HandleFunc("POST /api/account/delete/cancel", s.handleCancelDelete)

	return mux
}

// Start begins serving. It returns a channel that receives any error from
// the HTTP server after startup; the channel is closed on graceful stop.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("web server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.Code("WEB_LISTEN_FAILED").
			With("addr", s.addr).
			Wrap(err)
	}
	s.listener = listener

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- oops.Code("WEB_SERVE_FAILED").Wrap(err)
		}
	}()

	s.logger.Info("web server started", "addr", s.Addr())
	return errCh, nil
}

// Addr returns the bound listen address once the server has started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return oops.Code("WEB_SHUTDOWN_FAILED").Wrap(err)
	}
	return nil
}
