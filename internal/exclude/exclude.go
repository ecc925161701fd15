// Package exclude matches user-configured "do not use for AI context"
// path patterns against project-relative paths.
//
// Patterns use a familiar ignore-file syntax: `*` matches within one path
// segment, `**` crosses segments, `?` matches one character, a trailing
// `/` matches a directory and everything under it, and a leading `/`
// anchors the pattern at the project root. Excluded paths are filtered at
// query time only; they are still indexed.
package exclude

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Matcher holds compiled exclusion patterns.
type Matcher struct {
	rules []rule
}

type rule struct {
	pattern  string
	regex    *regexp.Regexp
	dirOnly  bool
	anchored bool
}

// New compiles a matcher from pattern strings. Blank patterns and
// comment lines starting with '#' are skipped; malformed patterns are
// dropped rather than erroring, matching the best-effort contract of
// the rest of the filter pipeline.
func New(patterns []string) *Matcher {
	m := &Matcher{}
	for _, p := range patterns {
		m.add(p)
	}
	return m
}

func (m *Matcher) add(pattern string) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" || strings.HasPrefix(pattern, "#") {
		return
	}

	r := rule{pattern: pattern}

	if strings.HasSuffix(pattern, "/") {
		r.dirOnly = true
		pattern = strings.TrimSuffix(pattern, "/")
	}
	if strings.HasPrefix(pattern, "/") {
		r.anchored = true
		pattern = strings.TrimPrefix(pattern, "/")
	} else if strings.Contains(pattern, "/") {
		// A pattern with an internal slash applies from the root.
		r.anchored = true
	}

	re, err := regexp.Compile("^" + patternToRegex(pattern) + "$")
	if err != nil {
		return
	}
	r.regex = re
	m.rules = append(m.rules, r)
}

// Empty reports whether the matcher has no usable patterns.
func (m *Matcher) Empty() bool {
	return len(m.rules) == 0
}

// Match reports whether a project-relative path is excluded.
func (m *Matcher) Match(path string) bool {
	path = filepath.ToSlash(path)

	for _, r := range m.rules {
		if matchRule(path, r) {
			return true
		}
	}
	return false
}

func matchRule(path string, r rule) bool {
	parts := strings.Split(path, "/")

	if r.anchored {
		if r.regex.MatchString(path) {
			return true
		}
		// A directory pattern also covers everything beneath it.
		if r.dirOnly {
			for i := range parts[:len(parts)-1] {
				if r.regex.MatchString(strings.Join(parts[:i+1], "/")) {
					return true
				}
			}
		}
		return false
	}

	if r.dirOnly {
		// Any parent segment matching the pattern excludes the file.
		for _, part := range parts[:len(parts)-1] {
			if r.regex.MatchString(part) {
				return true
			}
		}
		return false
	}

	// Unanchored file pattern: match the basename or the full path.
	if r.regex.MatchString(parts[len(parts)-1]) {
		return true
	}
	return r.regex.MatchString(path)
}

// patternToRegex converts one exclusion pattern to a regular expression.
func patternToRegex(pattern string) string {
	var out strings.Builder

	i := 0
	for i < len(pattern) {
		c := pattern[i]
		switch c {
		case '*':
			if strings.HasPrefix(pattern[i:], "**/") {
				out.WriteString("(?:.*/)?")
				i += 3
				continue
			}
			if strings.HasPrefix(pattern[i:], "**") {
				out.WriteString(".*")
				i += 2
				continue
			}
			out.WriteString("[^/]*")
			i++
		case '?':
			out.WriteString("[^/]")
			i++
		default:
			out.WriteString(regexp.QuoteMeta(string(c)))
			i++
		}
	}

	return out.String()
}
