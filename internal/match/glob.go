// Package match compiles rule glob patterns and tests base-relative paths
// against them. Patterns and paths are normalized to forward slashes so the
// same rule works with either separator convention.
package match

import (
	"strings"

	"github.com/gobwas/glob"
)

// Matcher tests relative paths against a compiled pattern.
// A nil *Matcher matches everything.
type Matcher struct {
	pattern string
	g       glob.Glob
	err     error
}

// Compile builds a Matcher for pattern. An empty pattern yields nil (no
// filter). A pattern that fails to compile yields a Matcher that accepts
// every path; Failed reports the compile error.
func Compile(pattern string) *Matcher {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil
	}

	norm := Normalize(pattern)
	g, err := glob.Compile(norm)
	return &Matcher{pattern: norm, g: g, err: err}
}

// Normalize converts backslashes to forward slashes.
func Normalize(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

// Match reports whether rel matches the pattern.
func (m *Matcher) Match(rel string) bool {
	if m == nil || m.g == nil {
		return true
	}
	return m.g.Match(Normalize(rel))
}

// Failed returns the compile error, if any.
func (m *Matcher) Failed() error {
	if m == nil {
		return nil
	}
	return m.err
}

// String returns the normalized pattern.
func (m *Matcher) String() string {
	if m == nil {
		return ""
	}
	return m.pattern
}
