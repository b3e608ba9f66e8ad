// Package dev provides the wayfind development server.
//
// This package implements:
//   - An app shell endpoint with the live-reload client injected
//   - The compiled route table as JSON for inspection
//   - The route manifest endpoint
//   - Static asset serving
//   - WebSocket-based browser refresh with an error overlay
//
// # Architecture
//
// The server does not watch the filesystem or run builds. The host build
// pipeline calls NotifyReload, NotifyCSS, and NotifyError when its own
// artifacts change, and connected browsers reload the page, re-fetch
// stylesheets, or show the error overlay.
//
// # Usage
//
//	srv, err := dev.NewServer(dev.ServerOptions{
//	    Addr:   ":5173",
//	    Routes: routes,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//
//	if err := srv.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Live Reload Protocol
//
// The browser connects to /_wayfind/reload via WebSocket.
// Messages are JSON-encoded:
//
//	{"type": "reload"}                // Triggers full page reload
//	{"type": "css"}                   // Triggers CSS-only reload
//	{"type": "error", "error": "..."} // Shows error overlay
//	{"type": "clear"}                 // Clears error overlay
package dev
