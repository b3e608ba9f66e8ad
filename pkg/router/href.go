package router

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/wayfind-ui/wayfind/pkg/routepath"
)

// Declarative link attribute names recognized by DOM-binding layers.
// The engine itself never touches the DOM; these constants just fix the
// vocabulary shared with binders.
const (
	AttrLink     = "d-link"
	AttrParams   = "d-params"
	AttrQuery    = "d-query"
	AttrHash     = "d-hash"
	AttrPrefetch = "d-prefetch"
)

// BuildPath substitutes params into a path pattern and returns the concrete
// pathname. Dynamic values are percent-encoded per segment; catch-all values
// are encoded per piece and joined with "/". An optional catch-all with no
// value is omitted entirely.
//
// BuildPath round-trips with Tree.Resolve: for values without reserved
// characters, resolving the built path yields identical params.
func BuildPath(pattern string, params Params) (string, error) {
	normalized, err := routepath.Normalize(pattern)
	if err != nil {
		return "", err
	}

	segs, err := parseSegments(normalized)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, s := range segs {
		switch s.kind {
		case segLiteral:
			sb.WriteString("/")
			sb.WriteString(s.literal)

		case segDynamic:
			v, ok := params[s.name]
			if !ok || v.CatchAll {
				return "", fmt.Errorf("missing value for parameter %q", s.name)
			}
			sb.WriteString("/")
			sb.WriteString(url.PathEscape(v.Value))

		case segCatchAll, segOptionalCatchAll:
			v, ok := params[s.name]
			if !ok {
				if s.kind == segOptionalCatchAll {
					continue
				}
				return "", fmt.Errorf("missing value for catch-all %q", s.name)
			}
			pieces := v.List
			if !v.CatchAll {
				pieces = []string{v.Value}
			}
			if len(pieces) == 0 {
				if s.kind == segOptionalCatchAll {
					continue
				}
				return "", fmt.Errorf("empty value for catch-all %q", s.name)
			}
			for _, piece := range pieces {
				sb.WriteString("/")
				sb.WriteString(url.PathEscape(piece))
			}
		}
	}

	if sb.Len() == 0 {
		return "/", nil
	}
	return sb.String(), nil
}

// Href builds a full href from a pattern, params, query, and hash.
func Href(pattern string, params Params, query url.Values, hash string) (string, error) {
	path, err := BuildPath(pattern, params)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(path)
	if len(query) > 0 {
		sb.WriteByte('?')
		sb.WriteString(query.Encode())
	}
	if hash != "" {
		sb.WriteByte('#')
		sb.WriteString(hash)
	}
	return sb.String(), nil
}
