// Package filter matches walk candidates against include and exclude
// glob patterns. Patterns use doublestar syntax, so "**/*.go" crosses
// directory boundaries.
package filter

import (
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultInclude is applied when no include patterns are given.
var DefaultInclude = []string{"**/*.go"}

// Set is a validated include/exclude pattern pair. A nil *Set matches
// everything, so callers can thread an optional filter without checks.
type Set struct {
	include []string
	exclude []string
}

// New validates the patterns and builds a filter set. An empty include
// list falls back to DefaultInclude.
func New(include, exclude []string) (*Set, error) {
	if len(include) == 0 {
		include = DefaultInclude
	}
	for _, patterns := range [][]string{include, exclude} {
		for _, p := range patterns {
			if !doublestar.ValidatePattern(p) {
				return nil, fmt.Errorf("invalid glob pattern %q", p)
			}
		}
	}
	return &Set{include: include, exclude: exclude}, nil
}

// Match reports whether the relative path passes the filter: at least
// one include pattern must match and no exclude pattern may match.
func (s *Set) Match(rel string) bool {
	if s == nil {
		return true
	}
	rel = filepath.ToSlash(rel)

	included := false
	for _, p := range s.include {
		if ok, _ := doublestar.Match(p, rel); ok {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, p := range s.exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return false
		}
	}
	return true
}
