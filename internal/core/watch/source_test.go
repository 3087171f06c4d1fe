package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/driftwatch/internal/core/change"
)

func waitForPath(t *testing.T, events <-chan RawEvent, rel string) RawEvent {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Rel == rel {
				return ev
			}
		case <-timeout:
			t.Fatalf("timeout waiting for event on %s", rel)
			return RawEvent{}
		}
	}
}

func TestSourceEmitsCreateAndWrite(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	filter, err := NewFilter(nil, nil)
	require.NoError(t, err)

	src, err := NewSource(root, filter)
	require.NoError(t, err)
	defer src.Close() //nolint:errcheck

	path := filepath.Join(root, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello\n"), 0o644))

	ev := waitForPath(t, src.Events(), "a.txt")
	assert.Equal(t, path, ev.Path)
	assert.Equal(t, change.KindCreated, ev.Kind)
	assert.False(t, ev.Time.IsZero())
}

func TestSourceFiltersExcludedPaths(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	filter, err := NewFilter([]string{"*.go"}, nil)
	require.NoError(t, err)

	src, err := NewSource(root, filter)
	require.NoError(t, err)
	defer src.Close() //nolint:errcheck

	require.NoError(t, os.WriteFile(filepath.Join(root, "skip.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "keep.go"), []byte("package x\n"), 0o644))

	ev := waitForPath(t, src.Events(), "keep.go")
	assert.Equal(t, change.KindCreated, ev.Kind)
}

func TestSourceWatchesNewDirectories(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	filter, err := NewFilter(nil, nil)
	require.NoError(t, err)

	src, err := NewSource(root, filter)
	require.NoError(t, err)
	defer src.Close() //nolint:errcheck

	sub := filepath.Join(root, "pkg")
	require.NoError(t, os.Mkdir(sub, 0o755))

	// Give the watcher a beat to register the new directory.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "deep.txt"), []byte("x"), 0o644))

	ev := waitForPath(t, src.Events(), filepath.Join("pkg", "deep.txt"))
	assert.Equal(t, change.KindCreated, ev.Kind)
}

func TestSourceSkipsExcludedNewDirectories(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	filter, err := NewFilter(nil, []string{"build/**"})
	require.NoError(t, err)

	src, err := NewSource(root, filter)
	require.NoError(t, err)
	defer src.Close() //nolint:errcheck

	// A directory cut off by the exclude patterns must not be registered,
	// so writes inside it never surface.
	excluded := filepath.Join(root, "build")
	require.NoError(t, os.Mkdir(excluded, 0o755))
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(excluded, "out.txt"), []byte("x"), 0o644))

	// A sibling file still comes through, proving the watcher is alive.
	require.NoError(t, os.WriteFile(filepath.Join(root, "seen.txt"), []byte("x"), 0o644))

	ev := waitForPath(t, src.Events(), "seen.txt")
	assert.Equal(t, change.KindCreated, ev.Kind)

	select {
	case ev := <-src.Events():
		assert.NotEqual(t, filepath.Join("build", "out.txt"), ev.Rel)
	case <-time.After(200 * time.Millisecond):
	}
}
