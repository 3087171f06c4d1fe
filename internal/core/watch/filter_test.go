package watch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterIncluded(t *testing.T) {
	tests := []struct {
		name    string
		include []string
		exclude []string
		path    string
		want    bool
	}{
		{
			name: "empty filter admits everything",
			path: "src/main.go",
			want: true,
		},
		{
			name: "git internals always ignored",
			path: ".git/objects/ab/cdef",
			want: false,
		},
		{
			name: "node_modules always ignored",
			path: "web/node_modules/left-pad/index.js",
			want: false,
		},
		{
			name: "editor swap file ignored",
			path: "src/.main.go.swp",
			want: false,
		},
		{
			name: "backup file ignored",
			path: "notes.txt~",
			want: false,
		},
		{
			name:    "bare extension include matches any depth",
			include: []string{"*.go"},
			path:    "internal/core/diff/engine.go",
			want:    true,
		},
		{
			name:    "include misses other extensions",
			include: []string{"*.go"},
			path:    "README.md",
			want:    false,
		},
		{
			name:    "doublestar include",
			include: []string{"src/**/*.rs"},
			path:    "src/diff/algorithms.rs",
			want:    true,
		},
		{
			name:    "exclude wins over include",
			include: []string{"*.go"},
			exclude: []string{"**/*_gen.go"},
			path:    "internal/api/types_gen.go",
			want:    false,
		},
		{
			name:    "exclude directory subtree",
			exclude: []string{"vendor/**"},
			path:    "vendor/github.com/pkg/errors/errors.go",
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFilter(tt.include, tt.exclude)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Included(tt.path))
		})
	}
}

func TestFilterExcludedDir(t *testing.T) {
	tests := []struct {
		name    string
		exclude []string
		dir     string
		want    bool
	}{
		{
			name: "plain directory admitted",
			dir:  "src",
			want: false,
		},
		{
			name: "builtin ignore at any depth",
			dir:  "web/node_modules",
			want: true,
		},
		{
			name:    "exclude pattern names the directory",
			exclude: []string{"build"},
			dir:     "build",
			want:    true,
		},
		{
			name:    "trailing globstar also cuts the directory itself",
			exclude: []string{"build/**"},
			dir:     "build",
			want:    true,
		},
		{
			name:    "globstar exclude cuts nested directories",
			exclude: []string{"build/**"},
			dir:     "build/debug",
			want:    true,
		},
		{
			name:    "file-extension exclude does not cut directories",
			exclude: []string{"*.log"},
			dir:     "logs",
			want:    false,
		},
		{
			name:    "include patterns are not consulted",
			exclude: nil,
			dir:     "docs",
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFilter([]string{"*.go"}, tt.exclude)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.ExcludedDir(tt.dir))
		})
	}
}

func TestNewFilterRejectsBadPattern(t *testing.T) {
	_, err := NewFilter([]string{"src/["}, nil)
	assert.Error(t, err)
}
