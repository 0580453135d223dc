// SPDX-License-Identifier: GPL-3.0-or-later
//
// Grounded on: original_source/tests/include/proxy_pool.hpp's commented-out
// replace_env_var (the ${VAR}/${VAR:-default} substitution this generalizes
// from a single-occurrence, first-match implementation to a full scan).

// Package envsubst expands ${VAR} and ${VAR:-default} placeholders in
// configuration strings before they are unmarshaled, the same shell-style
// substitution the original source's config loader applied ad hoc.
package envsubst

import (
	"os"
	"strings"
)

// Expand replaces every ${VAR} or ${VAR:-default} placeholder in s.
// Resolution order per placeholder: the OS environment, then extra, then
// the inline default. A placeholder that resolves to nothing (no env, no
// extra entry, no default) is left in the output unchanged.
func Expand(s string, extra map[string]string) string {
	var out strings.Builder
	i := 0
	for i < len(s) {
		start := strings.Index(s[i:], "${")
		if start < 0 {
			out.WriteString(s[i:])
			break
		}
		start += i
		out.WriteString(s[i:start])

		end := strings.IndexByte(s[start:], '}')
		if end < 0 {
			out.WriteString(s[start:])
			break
		}
		end += start

		placeholder := s[start+2 : end]
		name, def, hasDefault := splitDefault(placeholder)

		if v, ok := os.LookupEnv(name); ok {
			out.WriteString(v)
		} else if v, ok := extra[name]; ok {
			out.WriteString(v)
		} else if hasDefault {
			out.WriteString(def)
		} else {
			out.WriteString(s[start : end+1])
		}

		i = end + 1
	}
	return out.String()
}

func splitDefault(placeholder string) (name, def string, hasDefault bool) {
	if idx := strings.Index(placeholder, ":-"); idx >= 0 {
		return placeholder[:idx], placeholder[idx+2:], true
	}
	return placeholder, "", false
}
