package dev

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wayfind-ui/wayfind/pkg/router"
)

func testRoutes() []*router.Route {
	return []*router.Route{
		{Path: "/", Layout: func(rc router.RenderContext, child router.View) router.View { return child },
			Children: []*router.Route{
				{Path: "users/:id", View: func(rc router.RenderContext) router.View { return "user" },
					Tags: []string{"users"}, Score: 5},
				{Path: "about", View: func(rc router.RenderContext) router.View { return "about" }},
			}},
	}
}

func newTestServer(t *testing.T, opts ServerOptions) *Server {
	t.Helper()
	if opts.Routes == nil {
		opts.Routes = testRoutes()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s, err := NewServer(opts)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	t.Cleanup(s.Stop)
	return s
}

func TestNewServerRejectsBadRoutes(t *testing.T) {
	_, err := NewServer(ServerOptions{
		Routes: []*router.Route{
			{Path: "/:"}, // empty parameter name
		},
	})
	if err == nil {
		t.Fatal("expected compile error for malformed route")
	}
}

func TestShellInjectsReloadClient(t *testing.T) {
	s := newTestServer(t, ServerOptions{
		Shell: "<!DOCTYPE html><html><body><div id=\"app\"></div></body></html>",
	})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/users/7")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	html := string(body)
	if !strings.Contains(html, `<div id="app">`) {
		t.Error("shell content missing")
	}
	if !strings.Contains(html, "/_wayfind/reload") {
		t.Error("reload client script not injected")
	}
	// The script must land before </body>.
	if strings.Index(html, "/_wayfind/reload") > strings.Index(html, "</body>") {
		t.Error("reload client injected after </body>")
	}
}

func TestRoutesEndpoint(t *testing.T) {
	s := newTestServer(t, ServerOptions{})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/_wayfind/routes")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var rows []routeInfo
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		t.Fatalf("decode: %v", err)
	}

	byPattern := make(map[string]routeInfo, len(rows))
	for _, row := range rows {
		byPattern[row.Pattern] = row
	}

	user, ok := byPattern["/users/:id"]
	if !ok {
		t.Fatalf("missing /users/:id in %v", rows)
	}
	if !user.View || user.Layout {
		t.Errorf("user row flags = %+v", user)
	}
	if len(user.Params) != 1 || user.Params[0] != "id" {
		t.Errorf("user params = %v, want [id]", user.Params)
	}
	if user.Score != 5 || len(user.Tags) != 1 || user.Tags[0] != "users" {
		t.Errorf("user metadata = %+v", user)
	}

	root, ok := byPattern["/"]
	if !ok || !root.Layout || root.View {
		t.Errorf("root row = %+v, %v", root, ok)
	}
}

func TestManifestEndpoint(t *testing.T) {
	manifest, err := router.NewManifest([]router.ManifestEntry{
		{Pattern: "/users/:id", Chunk: "users.js", Tags: []string{"users"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	s := newTestServer(t, ServerOptions{Manifest: manifest})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/_wayfind/manifest")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var entries []router.ManifestEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 1 || entries[0].Chunk != "users.js" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestManifestEndpointWithoutManifest(t *testing.T) {
	s := newTestServer(t, ServerOptions{})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/_wayfind/manifest")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var entries []router.ManifestEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("entries = %+v, want empty", entries)
	}
}

func TestLiveReloadBroadcast(t *testing.T) {
	var reported int
	s := newTestServer(t, ServerOptions{
		OnReload: func(clients int) { reported = clients },
	})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/_wayfind/reload"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Wait for the server to register the client.
	deadline := time.Now().Add(2 * time.Second)
	for s.reload.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	s.NotifyReload()
	if reported != 1 {
		t.Errorf("OnReload reported %d clients, want 1", reported)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg ReloadMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != ReloadTypeFull {
		t.Errorf("message type = %q, want %q", msg.Type, ReloadTypeFull)
	}

	s.NotifyError("boom")
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != ReloadTypeError || msg.Error != "boom" {
		t.Errorf("message = %+v, want error boom", msg)
	}
}

func TestStartStop(t *testing.T) {
	s := newTestServer(t, ServerOptions{Addr: "127.0.0.1:0"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	// Give the listener a moment, then shut down via context.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
