package routepath

import (
	"errors"
	"net/url"
	"sort"
	"strings"
)

// Path canonicalization errors.
var (
	ErrInvalidPath          = errors.New("invalid path")
	ErrBackslashInPath      = errors.New("path contains backslash")
	ErrNullByteInPath       = errors.New("path contains null byte")
	ErrInvalidPercentEscape = errors.New("invalid percent escape sequence")
	ErrPathEscapesRoot      = errors.New("path escapes root via ..")
)

// Normalize canonicalizes a bare pathname (no query, no hash):
//   - Ensure leading "/"
//   - Collapse multiple slashes (/blog//post -> /blog/post)
//   - Remove "." segments and resolve ".."
//   - Remove trailing slash (except for root "/")
//
// The following inputs are rejected with an error:
//   - Paths containing backslash (\)
//   - Paths containing NUL byte (%00)
//   - Invalid percent-escapes (e.g., %GG, %2)
//   - ".." that would escape root (e.g., /../secret)
func Normalize(path string) (string, error) {
	if path == "" {
		return "/", nil
	}

	// SECURITY: Reject backslash.
	if strings.Contains(path, "\\") {
		return "", ErrBackslashInPath
	}

	// SECURITY: Reject NUL byte (both literal and encoded).
	if strings.Contains(path, "\x00") || strings.Contains(strings.ToUpper(path), "%00") {
		return "", ErrNullByteInPath
	}

	// Validate percent-escapes if present.
	if strings.Contains(path, "%") {
		if err := validatePercentEscapes(path); err != nil {
			return "", err
		}
	}

	// Ensure path starts with "/".
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	// Collapse multiple slashes.
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}

	// Split into segments and normalize.
	segments := strings.Split(path, "/")
	var result []string

	for _, seg := range segments {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(result) > 0 {
				result = result[:len(result)-1]
			} else {
				// SECURITY: ".." escapes root.
				return "", ErrPathEscapesRoot
			}
		default:
			result = append(result, seg)
		}
	}

	path = "/" + strings.Join(result, "/")

	// Remove trailing slash (except for root).
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		path = strings.TrimSuffix(path, "/")
	}

	return path, nil
}

// Join joins a child path pattern against a parent prefix and normalizes
// the result. A child starting with "/" is root-absolute and ignores the
// parent prefix entirely.
func Join(parent, child string) string {
	if child == "" {
		p, err := Normalize(parent)
		if err != nil {
			return "/"
		}
		return p
	}

	if strings.HasPrefix(child, "/") {
		p, err := Normalize(child)
		if err != nil {
			return "/"
		}
		return p
	}

	joined := strings.TrimSuffix(parent, "/") + "/" + strings.TrimPrefix(child, "/")
	p, err := Normalize(joined)
	if err != nil {
		return "/"
	}
	return p
}

// validatePercentEscapes checks that all percent-escapes are valid.
// Valid escapes are %XX where X is a hex digit (0-9, a-f, A-F).
func validatePercentEscapes(path string) error {
	i := 0
	for i < len(path) {
		if path[i] == '%' {
			if i+2 >= len(path) {
				return ErrInvalidPercentEscape
			}
			if !isHexDigit(path[i+1]) || !isHexDigit(path[i+2]) {
				return ErrInvalidPercentEscape
			}
			i += 3
		} else {
			i++
		}
	}
	return nil
}

// isHexDigit returns true if c is a valid hex digit.
func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// DecodeSegment percent-decodes a single non-catch-all path segment.
func DecodeSegment(segment string) (string, error) {
	decoded, err := url.PathUnescape(segment)
	if err != nil {
		return "", ErrInvalidPercentEscape
	}
	return decoded, nil
}

// DecodeCatchAll decodes a catch-all capture: the raw capture is split on
// "/", empty segments are dropped, and each piece is percent-decoded
// individually, yielding an ordered list.
func DecodeCatchAll(capture string) ([]string, error) {
	if capture == "" {
		return []string{}, nil
	}

	parts := strings.Split(capture, "/")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			continue
		}
		decoded, err := url.PathUnescape(part)
		if err != nil {
			return nil, ErrInvalidPercentEscape
		}
		result = append(result, decoded)
	}
	return result, nil
}

// CanonicalQuery returns a canonical form of a raw query string: keys sorted,
// values kept in original relative order per key, re-encoded. Used for stable
// cache keys; an unparsable query is returned as-is.
func CanonicalQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}

	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return rawQuery
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		for _, v := range values[k] {
			if sb.Len() > 0 {
				sb.WriteByte('&')
			}
			sb.WriteString(url.QueryEscape(k))
			sb.WriteByte('=')
			sb.WriteString(url.QueryEscape(v))
		}
	}
	return sb.String()
}
