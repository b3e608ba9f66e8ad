package routepath

import "strings"

// Location is a parsed navigation target, derived from a raw URL or path
// string net of a configured base prefix.
type Location struct {
	// Pathname is the normalized path without query string or hash.
	Pathname string

	// Query is the raw query string (without leading "?").
	Query string

	// Hash is the fragment (without leading "#").
	Hash string

	// FullPath is Pathname plus query and hash, as re-assembled.
	FullPath string
}

// Parse splits a raw URL/path string into a Location. The basePath prefix,
// if non-empty, is stripped from the pathname before normalization; a
// pathname outside the base resolves as if base-relative.
func Parse(raw, basePath string) (Location, error) {
	// Fragment first: everything after "#" is the hash, including any "?".
	withoutHash, hash, _ := strings.Cut(raw, "#")
	pathname, query, _ := strings.Cut(withoutHash, "?")

	if basePath != "" && basePath != "/" {
		base := strings.TrimSuffix(basePath, "/")
		if pathname == base {
			pathname = "/"
		} else if strings.HasPrefix(pathname, base+"/") {
			pathname = pathname[len(base):]
		}
	}

	normalized, err := Normalize(pathname)
	if err != nil {
		return Location{}, err
	}

	full := normalized
	if query != "" {
		full += "?" + query
	}
	if hash != "" {
		full += "#" + hash
	}

	return Location{
		Pathname: normalized,
		Query:    query,
		Hash:     hash,
		FullPath: full,
	}, nil
}

// Key returns the location's cache key component: pathname plus the
// canonicalized query. Two locations that differ only in query parameter
// order produce the same key.
func (l Location) Key() string {
	q := CanonicalQuery(l.Query)
	if q == "" {
		return l.Pathname
	}
	return l.Pathname + "?" + q
}
