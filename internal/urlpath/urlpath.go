// Package urlpath resolves request paths against the mount point of a handler.
package urlpath

import (
	"path"
	"strings"
)

// Clean drops the query string and returns a rooted, cleaned path.
func Clean(raw string) string {
	if idx := strings.IndexByte(raw, '?'); idx >= 0 {
		raw = raw[:idx]
	}
	if raw == "" {
		return "/"
	}
	return path.Clean("/" + strings.TrimPrefix(raw, "/"))
}

// Relative returns raw relative to prefix. The mount point itself resolves to "".
// ok is false when raw lies outside prefix.
func Relative(prefix, raw string) (rel string, ok bool) {
	p, c := Clean(prefix), Clean(raw)
	switch {
	case c == p:
		return "", true
	case p == "/":
		return strings.TrimPrefix(c, "/"), true
	case strings.HasPrefix(c, p+"/"):
		return c[len(p)+1:], true
	}
	return "", false
}

// Nested reports whether target lies strictly below prefix.
func Nested(prefix, target string) bool {
	rel, ok := Relative(prefix, target)
	return ok && rel != ""
}

// Join appends name to base as a single path.
func Join(base, name string) string {
	return path.Join(Clean(base), name)
}
