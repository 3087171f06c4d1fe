package review

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/colonyops/driftwatch/internal/core/change"
)

// Filter restricts navigation. All set fields must match; zero fields are
// ignored. A filter never decides hunks, it only hides them from Advance.
type Filter struct {
	// MaxConfidence keeps only files scored at or below the threshold, i.e.
	// the risky end of the range. Files without a score are excluded when
	// the threshold is set.
	MaxConfidence *float64 `json:"max_confidence,omitempty"`

	// Origins keeps only files whose change has one of these origins.
	Origins []change.Origin `json:"origins,omitempty"`

	// PathPattern is a doublestar glob matched against the file path. A
	// pattern without a slash also matches against the base name.
	PathPattern string `json:"path_pattern,omitempty"`

	// MinHunks and MaxHunks bound the file's hunk count. Zero means unset.
	MinHunks int `json:"min_hunks,omitempty"`
	MaxHunks int `json:"max_hunks,omitempty"`

	// Statuses keeps only hunks currently in one of these states.
	Statuses []Status `json:"statuses,omitempty"`
}

// IsZero reports whether the filter restricts anything.
func (f Filter) IsZero() bool {
	return f.MaxConfidence == nil &&
		len(f.Origins) == 0 &&
		f.PathPattern == "" &&
		f.MinHunks == 0 &&
		f.MaxHunks == 0 &&
		len(f.Statuses) == 0
}

// Validate checks the filter's pattern and bounds.
func (f Filter) Validate() error {
	if f.PathPattern != "" && !doublestar.ValidatePattern(f.PathPattern) {
		return fmt.Errorf("invalid path pattern %q", f.PathPattern)
	}
	if f.MaxConfidence != nil && (*f.MaxConfidence < 0 || *f.MaxConfidence > 1) {
		return fmt.Errorf("max confidence %v out of range [0,1]", *f.MaxConfidence)
	}
	if f.MaxHunks > 0 && f.MinHunks > f.MaxHunks {
		return fmt.Errorf("min hunks %d exceeds max hunks %d", f.MinHunks, f.MaxHunks)
	}
	return nil
}

// matchFile applies the file-level criteria.
func (f Filter) matchFile(file FileEntry) bool {
	if f.MaxConfidence != nil {
		if file.Event.Confidence == nil || file.Event.Confidence.Score > *f.MaxConfidence {
			return false
		}
	}
	if len(f.Origins) > 0 {
		found := false
		for _, o := range f.Origins {
			if file.Event.Origin == o {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.PathPattern != "" && !matchPath(f.PathPattern, file.Path()) {
		return false
	}
	hunks := 0
	if file.Result != nil {
		hunks = len(file.Result.Hunks)
	}
	if f.MinHunks > 0 && hunks < f.MinHunks {
		return false
	}
	if f.MaxHunks > 0 && hunks > f.MaxHunks {
		return false
	}
	return true
}

// matchStatus applies the hunk-level criterion.
func (f Filter) matchStatus(status Status) bool {
	if len(f.Statuses) == 0 {
		return true
	}
	for _, s := range f.Statuses {
		if s == status {
			return true
		}
	}
	return false
}

func matchPath(pattern, p string) bool {
	p = filepath.ToSlash(p)
	if ok, _ := doublestar.Match(pattern, p); ok {
		return true
	}
	if !strings.Contains(pattern, "/") {
		if ok, _ := doublestar.Match(pattern, path.Base(p)); ok {
			return true
		}
	}
	return false
}
