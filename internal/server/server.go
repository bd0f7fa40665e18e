// Package server exposes the document workflow over an HTTP JSON API.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"git.home.luguber.info/inful/docgen/internal/config"
	"git.home.luguber.info/inful/docgen/internal/store"
	"git.home.luguber.info/inful/docgen/internal/workflow"
)

// Options carries optional server dependencies.
type Options struct {
	// MetricsHandler serves GET /metrics when set and metrics are enabled.
	MetricsHandler http.Handler
}

// Server wires the workflow engine, the record store, and the renderer
// behind an HTTP API.
type Server struct {
	cfg   *config.Config
	wf    *workflow.Workflow
	store store.Store
	opts  Options

	httpSrv *http.Server
}

// New constructs a server. The workflow and store are owned by the
// caller; Stop does not close them.
func New(cfg *config.Config, wf *workflow.Workflow, st store.Store, opts Options) *Server {
	return &Server{cfg: cfg, wf: wf, store: st, opts: opts}
}

// Handler builds the full route table wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/document-workflow", s.handleCreateWorkflow)
	mux.HandleFunc("GET /api/document/{id}", s.handleGetDocument)
	mux.HandleFunc("GET /api/documents", s.handleListDocuments)
	mux.HandleFunc("DELETE /api/document/{id}", s.handleDeleteDocument)
	mux.HandleFunc("PUT /api/edit-workflow-title/{id}", s.handleEditTitle)
	mux.HandleFunc("PUT /api/edit-workflow-outline/{id}", s.handleEditOutline)
	mux.HandleFunc("POST /api/regenerate-content/{id}", s.handleRegenerateContent)
	mux.HandleFunc("POST /api/generate-document/{id}", s.handleGenerateDocument)

	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.cfg.Server.EnableMetrics && s.opts.MetricsHandler != nil {
		mux.Handle("GET /metrics", s.opts.MetricsHandler)
	}

	return chain(slog.Default(), mux)
}

// Start binds the configured address and serves until Stop. The listener
// is bound synchronously so address conflicts fail fast.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.cfg.Server.Listen)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", s.cfg.Server.Listen, err)
	}

	s.httpSrv = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	slog.Info("HTTP server started", "listen", s.cfg.Server.Listen)
	return nil
}

// Stop shuts the server down gracefully, honoring the context deadline.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// writeJSON encodes into a buffer first so serialization failures never
// produce a partial response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		slog.Error("failed encoding JSON response", "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("failed writing JSON response body", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}
