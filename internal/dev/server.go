package dev

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/wayfind-ui/wayfind/pkg/router"
)

// ServerOptions configures the development server.
type ServerOptions struct {
	// Addr is the listen address (default: ":5173").
	Addr string

	// Routes is the authored route table served for inspection.
	Routes []*router.Route

	// Manifest is the route manifest served at /_wayfind/manifest.
	// Optional.
	Manifest *router.Manifest

	// StaticDir is the directory served under /. Optional.
	StaticDir string

	// Shell is the app shell HTML served for every non-asset path.
	// The live-reload client script is injected before </body>.
	// Defaults to a minimal placeholder shell.
	Shell string

	// Logger is the structured logger. Defaults to slog.Default().
	Logger *slog.Logger

	// OnReload is called after browsers are told to reload.
	OnReload func(clients int)
}

// Server is the development server: it serves the app shell, exposes the
// compiled route table and manifest as JSON, and pushes live-reload events
// to connected browsers.
type Server struct {
	opts       ServerOptions
	log        *slog.Logger
	tree       *router.Tree
	reload     *ReloadServer
	httpServer *http.Server

	mu      sync.Mutex
	running bool
}

// routeInfo is one row of the /_wayfind/routes listing.
type routeInfo struct {
	ID       string   `json:"id"`
	Pattern  string   `json:"pattern"`
	Params   []string `json:"params,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Score    int      `json:"score,omitempty"`
	View     bool     `json:"view"`
	Layout   bool     `json:"layout"`
	Redirect bool     `json:"redirect"`
}

// NewServer creates a development server over an authored route table.
// The routes are compiled eagerly so authoring mistakes surface at startup.
func NewServer(opts ServerOptions) (*Server, error) {
	tree, err := router.Compile(opts.Routes)
	if err != nil {
		return nil, fmt.Errorf("dev: compile routes: %w", err)
	}
	if opts.Addr == "" {
		opts.Addr = ":5173"
	}
	if opts.Shell == "" {
		opts.Shell = defaultShell
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		opts:   opts,
		log:    log,
		tree:   tree,
		reload: NewReloadServer(),
	}, nil
}

// Tree returns the compiled route tree.
func (s *Server) Tree() *router.Tree {
	return s.tree
}

// Handler builds the chi router serving the dev endpoints.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.RequestID)

	r.Get("/_wayfind/reload", s.reload.HandleWebSocket)
	r.Get("/_wayfind/routes", s.handleRoutes)
	r.Get("/_wayfind/manifest", s.handleManifest)

	if s.opts.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.opts.StaticDir))
		r.Handle("/static/*", http.StripPrefix("/static/", fs))
	}

	r.NotFound(s.handleShell)
	return r
}

// Start runs the HTTP server until ctx is done or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.httpServer = &http.Server{
		Addr:    s.opts.Addr,
		Handler: s.Handler(),
	}
	s.mu.Unlock()

	s.log.Info("dev server running", "addr", s.opts.Addr)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		s.Stop()
		return nil
	case err := <-errCh:
		s.Stop()
		return err
	}
}

// Stop shuts the server down and closes all reload connections.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	s.reload.Close()

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
	}
}

// NotifyReload tells all connected browsers to reload.
func (s *Server) NotifyReload() {
	s.reload.NotifyReload()
	n := s.reload.ClientCount()
	if s.opts.OnReload != nil {
		s.opts.OnReload(n)
	}
	s.log.Info("reloaded browsers", "clients", n)
}

// NotifyCSS tells all connected browsers to re-fetch stylesheets.
func (s *Server) NotifyCSS(file string) {
	s.reload.NotifyCSS(file)
}

// NotifyError shows an error overlay in all connected browsers.
func (s *Server) NotifyError(msg string) {
	s.reload.NotifyError(msg)
}

// ClearError clears the error overlay in all connected browsers.
func (s *Server) ClearError() {
	s.reload.ClearError()
}

// handleRoutes serves the compiled route table as JSON, depth-first in
// priority order.
func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	var rows []routeInfo
	s.tree.Walk(func(cr *router.CompiledRoute) bool {
		row := routeInfo{
			ID:       cr.ID,
			Pattern:  cr.FullPath,
			Tags:     cr.Route.Tags,
			Score:    cr.Route.Score,
			View:     cr.Route.View != nil,
			Layout:   cr.Route.Layout != nil,
			Redirect: cr.Route.Redirect != nil,
		}
		for _, cap := range cr.Captures {
			row.Params = append(row.Params, cap.Name)
		}
		rows = append(rows, row)
		return true
	})

	writeJSON(w, rows)
}

// handleManifest serves the route manifest entries as JSON.
func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	if s.opts.Manifest == nil {
		writeJSON(w, []router.ManifestEntry{})
		return
	}
	writeJSON(w, s.opts.Manifest.Entries())
}

// handleShell serves the app shell with the reload client injected, letting
// the client-side matcher resolve the path.
func (s *Server) handleShell(w http.ResponseWriter, r *http.Request) {
	shell := s.opts.Shell
	if idx := strings.LastIndex(shell, "</body>"); idx != -1 {
		shell = shell[:idx] + ClientScript + shell[idx:]
	} else {
		shell += ClientScript
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, shell)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, "dev: encode response:", err)
	}
}

const defaultShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>wayfind dev</title>
</head>
<body>
<div id="app"></div>
</body>
</html>`
