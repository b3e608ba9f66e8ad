package router

import (
	"net/url"
	"testing"
)

func TestBuildPath(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		params  Params
		want    string
		wantErr bool
	}{
		{
			name:    "static",
			pattern: "/users/new",
			want:    "/users/new",
		},
		{
			name:    "dynamic",
			pattern: "/users/:id",
			params:  Params{"id": ParamValue{Value: "42"}},
			want:    "/users/42",
		},
		{
			name:    "escapes segment",
			pattern: "/files/:name",
			params:  Params{"name": ParamValue{Value: "a b/c"}},
			want:    "/files/a%20b%2Fc",
		},
		{
			name:    "catch-all joins list",
			pattern: "/wiki/*page",
			params:  Params{"page": ParamValue{List: []string{"a", "b"}, CatchAll: true}},
			want:    "/wiki/a/b",
		},
		{
			name:    "optional catch-all present",
			pattern: "/docs/:slug*?",
			params:  Params{"slug": ParamValue{List: []string{"x", "y"}, CatchAll: true}},
			want:    "/docs/x/y",
		},
		{
			name:    "optional catch-all absent",
			pattern: "/docs/:slug*?",
			want:    "/docs",
		},
		{
			name:    "missing required param",
			pattern: "/users/:id",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildPath(tt.pattern, tt.params)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("BuildPath: %v", err)
			}
			if got != tt.want {
				t.Errorf("BuildPath = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildPathRoundTrip(t *testing.T) {
	tree := mustCompile(t, []*Route{
		{Path: "/users/:id", View: testView},
		{Path: "/files/:name", View: testView},
	})

	params := Params{"name": ParamValue{Value: "report 2024.pdf"}}
	path, err := BuildPath("/files/:name", params)
	if err != nil {
		t.Fatalf("BuildPath: %v", err)
	}

	m := tree.Resolve(path)
	if m.Kind != ExactMatch {
		t.Fatalf("kind = %v, want exact", m.Kind)
	}
	if got := m.Params().Get("name"); got != "report 2024.pdf" {
		t.Errorf("name = %q after round trip", got)
	}
}

func TestHref(t *testing.T) {
	got, err := Href("/users/:id",
		Params{"id": ParamValue{Value: "7"}},
		url.Values{"tab": {"posts"}},
		"top")
	if err != nil {
		t.Fatalf("Href: %v", err)
	}
	if want := "/users/7?tab=posts#top"; got != want {
		t.Errorf("Href = %q, want %q", got, want)
	}

	got, err = Href("/about", nil, nil, "")
	if err != nil {
		t.Fatalf("Href: %v", err)
	}
	if got != "/about" {
		t.Errorf("Href = %q, want /about", got)
	}
}
