package watch

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ignoredDirs are directory names skipped regardless of configuration.
var ignoredDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"target":       true,
	".idea":        true,
}

// Filter decides which paths enter the pipeline. Paths are matched as
// slash-separated paths relative to the watch root. Exclude patterns win over
// include patterns; an empty include list admits everything.
type Filter struct {
	include []string
	exclude []string
}

// NewFilter validates the glob patterns and builds a filter.
func NewFilter(include, exclude []string) (*Filter, error) {
	for _, p := range append(append([]string{}, include...), exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid glob pattern %q", p)
		}
	}
	return &Filter{include: include, exclude: exclude}, nil
}

// Included reports whether rel (a root-relative path) should produce events.
func (f *Filter) Included(rel string) bool {
	rel = filepath.ToSlash(rel)

	for _, part := range strings.Split(path.Dir(rel), "/") {
		if ignoredDirs[part] {
			return false
		}
	}
	if transientFile(path.Base(rel)) {
		return false
	}

	for _, p := range f.exclude {
		if matchPattern(p, rel) {
			return false
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, p := range f.include {
		if matchPattern(p, rel) {
			return true
		}
	}
	return false
}

// ExcludedDir reports whether a root-relative directory is cut off by the
// builtin ignores or the exclude patterns, so its subtree need not be
// watched at all. Include patterns are not consulted: a file deep inside the
// directory may still match one. A trailing "/**" on an exclude pattern also
// excludes the directory itself.
func (f *Filter) ExcludedDir(rel string) bool {
	rel = filepath.ToSlash(rel)

	for _, part := range strings.Split(rel, "/") {
		if ignoredDirs[part] {
			return true
		}
	}
	for _, p := range f.exclude {
		if matchPattern(strings.TrimSuffix(p, "/**"), rel) {
			return true
		}
	}
	return false
}

// matchPattern matches pattern against the full relative path, falling back
// to the base name so a bare "*.go" works without a "**/" prefix.
func matchPattern(pattern, rel string) bool {
	if ok, _ := doublestar.Match(pattern, rel); ok {
		return true
	}
	if !strings.Contains(pattern, "/") {
		if ok, _ := doublestar.Match(pattern, path.Base(rel)); ok {
			return true
		}
	}
	return false
}

// transientFile reports editor and tooling scratch files that never represent
// a reviewable change.
func transientFile(base string) bool {
	switch {
	case strings.HasSuffix(base, ".tmp"),
		strings.HasSuffix(base, ".swp"),
		strings.HasSuffix(base, ".swo"),
		strings.HasSuffix(base, ".lock"),
		strings.HasSuffix(base, "~"),
		strings.HasPrefix(base, ".#"),
		base == ".DS_Store":
		return true
	}
	return false
}
