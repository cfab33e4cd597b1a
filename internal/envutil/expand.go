// Package envutil resolves Windows-style %NAME% placeholders in configured
// paths. Expansion behaves the same on every platform so rule catalogs stay
// portable.
package envutil

import (
	"os"
	"strings"
)

// LookupEnv is the variable source used by ExpandWindowsEnv.
var LookupEnv = os.LookupEnv

// ExpandWindowsEnv replaces every %NAME% with the value of NAME.
//
// Unset variables are kept verbatim with their delimiters, "%%" collapses to
// a single '%', and an unterminated placeholder consumes the rest of the
// input as its name. Expansion is a single left-to-right pass; substituted
// values are never expanded again.
func ExpandWindowsEnv(s string) string {
	if !strings.Contains(s, "%") {
		return s
	}

	var out strings.Builder
	out.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			out.WriteByte(s[i])
			continue
		}

		end := strings.IndexByte(s[i+1:], '%')
		var name string
		if end < 0 {
			name = s[i+1:]
			i = len(s)
		} else {
			name = s[i+1 : i+1+end]
			i += end + 1
		}

		if name == "" {
			out.WriteByte('%')
			continue
		}
		if val, ok := LookupEnv(name); ok {
			out.WriteString(val)
			continue
		}
		out.WriteByte('%')
		out.WriteString(name)
		out.WriteByte('%')
	}

	return out.String()
}
