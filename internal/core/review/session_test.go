package review

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/driftwatch/internal/core/change"
	"github.com/colonyops/driftwatch/internal/core/diff"
)

func entry(t *testing.T, path, oldContent, newContent string) FileEntry {
	t.Helper()
	res := diff.Compute(diff.AlgorithmMyers, oldContent, newContent, 3)
	require.True(t, res.Available())
	return FileEntry{
		Event:  change.Event{Path: path, Kind: change.KindModified, Origin: change.OriginUnknown},
		Result: res,
	}
}

// numbered builds n lines, then applies the given replacements (1-based line
// number to new text) to produce a changed copy.
func numbered(n int, repl map[int]string) string {
	var b strings.Builder
	for i := 1; i <= n; i++ {
		if text, ok := repl[i]; ok {
			fmt.Fprintln(&b, text)
			continue
		}
		fmt.Fprintf(&b, "line %d\n", i)
	}
	return b.String()
}

// twoHunkEntry has changes far enough apart to produce two hunks under three
// lines of context.
func twoHunkEntry(t *testing.T, path string) FileEntry {
	t.Helper()
	oldContent := numbered(20, nil)
	newContent := numbered(20, map[int]string{2: "line two", 15: "line fifteen"})
	e := entry(t, path, oldContent, newContent)
	require.Len(t, e.Result.Hunks, 2)
	return e
}

func oneHunkEntry(t *testing.T, path string) FileEntry {
	t.Helper()
	e := entry(t, path, "alpha\nbeta\n", "alpha\ngamma\n")
	require.Len(t, e.Result.Hunks, 1)
	return e
}

func TestSessionAdvanceByHunk(t *testing.T) {
	s := NewSession([]FileEntry{
		twoHunkEntry(t, "a.go"),
		oneHunkEntry(t, "b.go"),
	})

	assert.Equal(t, Cursor{File: 0, Hunk: 0}, s.Cursor())

	require.True(t, s.Advance(Forward, ByHunk))
	assert.Equal(t, Cursor{File: 0, Hunk: 1}, s.Cursor())

	require.True(t, s.Advance(Forward, ByHunk))
	assert.Equal(t, Cursor{File: 1, Hunk: 0}, s.Cursor())

	// End of the line: cursor stays put.
	assert.False(t, s.Advance(Forward, ByHunk))
	assert.Equal(t, Cursor{File: 1, Hunk: 0}, s.Cursor())

	require.True(t, s.Advance(Backward, ByHunk))
	assert.Equal(t, Cursor{File: 0, Hunk: 1}, s.Cursor())
}

func TestSessionAdvanceByFile(t *testing.T) {
	s := NewSession([]FileEntry{
		twoHunkEntry(t, "a.go"),
		oneHunkEntry(t, "b.go"),
		oneHunkEntry(t, "c.go"),
	})

	require.True(t, s.Advance(Forward, ByFile))
	assert.Equal(t, Cursor{File: 1, Hunk: 0}, s.Cursor())

	require.True(t, s.Advance(Forward, ByFile))
	assert.Equal(t, Cursor{File: 2, Hunk: 0}, s.Cursor())

	assert.False(t, s.Advance(Forward, ByFile))

	require.True(t, s.Advance(Backward, ByFile))
	assert.Equal(t, Cursor{File: 1, Hunk: 0}, s.Cursor())
}

func TestSessionSkipsEmptyFiles(t *testing.T) {
	empty := FileEntry{
		Event:  change.Event{Path: "empty.go", Kind: change.KindModified},
		Result: diff.Compute(diff.AlgorithmMyers, "same\n", "same\n", 3),
	}
	s := NewSession([]FileEntry{empty, oneHunkEntry(t, "b.go")})

	// Cursor starts on the first file that actually has hunks.
	assert.Equal(t, Cursor{File: 1, Hunk: 0}, s.Cursor())
}

func TestSessionDecideTransitions(t *testing.T) {
	s := NewSession([]FileEntry{oneHunkEntry(t, "a.go")})

	file, hunk, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, StatusPending, s.Status(file.Path(), hunk.ID))

	require.NoError(t, s.Decide(StatusSkipped))
	assert.Equal(t, StatusSkipped, s.Status(file.Path(), hunk.ID))

	// Skipped is re-enterable.
	require.NoError(t, s.Decide(StatusAccepted))
	assert.Equal(t, StatusAccepted, s.Status(file.Path(), hunk.ID))

	// Accepted is terminal.
	assert.ErrorIs(t, s.Decide(StatusRejected), ErrAlreadyDecided)

	// Until explicitly reset.
	require.NoError(t, s.ResetCurrent())
	assert.Equal(t, StatusPending, s.Status(file.Path(), hunk.ID))
	require.NoError(t, s.Decide(StatusRejected))
}

func TestSessionDecideInvalidOutcome(t *testing.T) {
	s := NewSession([]FileEntry{oneHunkEntry(t, "a.go")})
	assert.Error(t, s.Decide(StatusPending))
	assert.Error(t, s.Decide(Status("bogus")))
}

func TestSessionDecideFile(t *testing.T) {
	s := NewSession([]FileEntry{twoHunkEntry(t, "a.go")})

	// Pre-decide the first hunk; DecideFile must leave it alone.
	require.NoError(t, s.Decide(StatusRejected))

	decided, err := s.DecideFile(StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, 1, decided)

	file := s.Files()[0]
	assert.Equal(t, StatusRejected, s.Status(file.Path(), file.Result.Hunks[0].ID))
	assert.Equal(t, StatusAccepted, s.Status(file.Path(), file.Result.Hunks[1].ID))
}

func TestSessionFilterByStatus(t *testing.T) {
	s := NewSession([]FileEntry{
		twoHunkEntry(t, "a.go"),
		oneHunkEntry(t, "b.go"),
	})

	require.NoError(t, s.Decide(StatusAccepted)) // a.go hunk 0
	require.NoError(t, s.SetFilter(Filter{Statuses: []Status{StatusPending}}))

	// Forward skips nothing yet: hunk 1 is still pending.
	require.True(t, s.Advance(Forward, ByHunk))
	assert.Equal(t, Cursor{File: 0, Hunk: 1}, s.Cursor())

	// Backward finds nothing pending behind the cursor.
	assert.False(t, s.Advance(Backward, ByHunk))
	assert.Equal(t, Cursor{File: 0, Hunk: 1}, s.Cursor())
}

func TestSessionFilterByOriginAndConfidence(t *testing.T) {
	risky := oneHunkEntry(t, "risky.go")
	risky.Event.Origin = change.OriginAI
	risky.Event.Confidence = &change.Confidence{Score: 0.2, Level: change.LevelRisky}

	safe := oneHunkEntry(t, "safe.go")
	safe.Event.Origin = change.OriginHuman
	safe.Event.Confidence = &change.Confidence{Score: 0.9, Level: change.LevelSafe}

	s := NewSession([]FileEntry{safe, risky})

	threshold := 0.5
	require.NoError(t, s.SetFilter(Filter{
		MaxConfidence: &threshold,
		Origins:       []change.Origin{change.OriginAI},
	}))

	require.True(t, s.Advance(Forward, ByHunk))
	assert.Equal(t, Cursor{File: 1, Hunk: 0}, s.Cursor())

	// Nothing behind the cursor passes the filter.
	assert.False(t, s.Advance(Backward, ByHunk))
}

func TestSessionFilterByPathPattern(t *testing.T) {
	s := NewSession([]FileEntry{
		oneHunkEntry(t, "src/main.rs"),
		oneHunkEntry(t, "docs/readme.md"),
		oneHunkEntry(t, "src/lib.rs"),
	})

	require.NoError(t, s.SetFilter(Filter{PathPattern: "*.rs"}))

	require.True(t, s.Advance(Forward, ByHunk))
	assert.Equal(t, Cursor{File: 2, Hunk: 0}, s.Cursor())
}

func TestSessionFilterNeverDecides(t *testing.T) {
	s := NewSession([]FileEntry{twoHunkEntry(t, "a.go")})
	require.NoError(t, s.SetFilter(Filter{PathPattern: "*.rs"}))

	assert.Equal(t, 2, s.Stats().Pending)
	s.ClearFilter()
	assert.True(t, s.ActiveFilter().IsZero())
	assert.Equal(t, 2, s.Stats().Pending)
}

func TestSessionSetFilterValidation(t *testing.T) {
	s := NewSession([]FileEntry{oneHunkEntry(t, "a.go")})

	assert.Error(t, s.SetFilter(Filter{PathPattern: "["}))

	bad := 1.5
	assert.Error(t, s.SetFilter(Filter{MaxConfidence: &bad}))

	assert.Error(t, s.SetFilter(Filter{MinHunks: 5, MaxHunks: 2}))
}

func TestSessionJumpToFirst(t *testing.T) {
	risky := oneHunkEntry(t, "risky.go")
	risky.Event.Confidence = &change.Confidence{Score: 0.1, Level: change.LevelRisky}

	s := NewSession([]FileEntry{twoHunkEntry(t, "a.go"), risky})

	// Jump ignores the active filter.
	require.NoError(t, s.SetFilter(Filter{PathPattern: "*.md"}))

	found := s.JumpToFirst(func(file FileEntry, _ diff.Hunk, _ Status) bool {
		return file.Event.Confidence != nil && file.Event.Confidence.Level == change.LevelRisky
	})
	require.True(t, found)
	assert.Equal(t, Cursor{File: 1, Hunk: 0}, s.Cursor())

	found = s.JumpToFirst(func(FileEntry, diff.Hunk, Status) bool { return false })
	assert.False(t, found)
	assert.Equal(t, Cursor{File: 1, Hunk: 0}, s.Cursor())
}

func TestSessionStats(t *testing.T) {
	s := NewSession([]FileEntry{twoHunkEntry(t, "a.go"), oneHunkEntry(t, "b.go")})

	require.NoError(t, s.Decide(StatusAccepted))
	require.True(t, s.Advance(Forward, ByHunk))
	require.NoError(t, s.Decide(StatusSkipped))

	st := s.Stats()
	assert.Equal(t, Stats{Total: 3, Pending: 1, Accepted: 1, Skipped: 1}, st)
	assert.InDelta(t, 66.66, st.Percent(), 0.1)

	assert.Zero(t, Stats{}.Percent())
}

func TestSessionSaveLoadRoundTrip(t *testing.T) {
	files := []FileEntry{twoHunkEntry(t, "a.go"), oneHunkEntry(t, "b.go")}

	s := NewSession(files)
	require.NoError(t, s.Decide(StatusAccepted))
	require.True(t, s.Advance(Forward, ByHunk))
	require.NoError(t, s.Decide(StatusRejected))
	threshold := 0.6
	require.NoError(t, s.SetFilter(Filter{MaxConfidence: &threshold, PathPattern: "*.go"}))

	path := filepath.Join(t.TempDir(), "sessions", "current.json")
	require.NoError(t, s.Save(path))

	restored := NewSession(files)
	discarded, err := restored.Load(path)
	require.NoError(t, err)
	assert.Zero(t, discarded)

	assert.Equal(t, s.Cursor(), restored.Cursor())
	assert.Equal(t, s.ActiveFilter(), restored.ActiveFilter())
	for _, file := range files {
		for _, hunk := range file.Result.Hunks {
			assert.Equal(t, s.Status(file.Path(), hunk.ID), restored.Status(file.Path(), hunk.ID))
		}
	}
}

func TestSessionLoadDropsStaleDecisions(t *testing.T) {
	full := []FileEntry{twoHunkEntry(t, "a.go"), oneHunkEntry(t, "b.go")}

	s := NewSession(full)
	_, err := s.DecideFile(StatusAccepted)
	require.NoError(t, err)
	require.True(t, s.Advance(Forward, ByFile))
	require.NoError(t, s.Decide(StatusRejected))

	path := filepath.Join(t.TempDir(), "current.json")
	require.NoError(t, s.Save(path))

	// b.go is gone on reload; its decision must be dropped, a.go's kept.
	restored := NewSession(full[:1])
	discarded, err := restored.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, discarded)

	a := full[0]
	assert.Equal(t, StatusAccepted, restored.Status(a.Path(), a.Result.Hunks[0].ID))
	// Cursor pointed at b.go, which no longer exists.
	assert.Equal(t, Cursor{File: 0, Hunk: 0}, restored.Cursor())
}

func TestSessionLoadMalformed(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))

	s := NewSession([]FileEntry{oneHunkEntry(t, "a.go")})
	_, err := s.Load(bad)
	assert.Error(t, err)

	// Version mismatch is rejected, not reinterpreted.
	wrong := filepath.Join(dir, "wrong.json")
	require.NoError(t, os.WriteFile(wrong, []byte(`{"schema_version": 99}`), 0o644))
	_, err = s.Load(wrong)
	assert.Error(t, err)

	// A failed load leaves the session untouched.
	file, hunk, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, StatusPending, s.Status(file.Path(), hunk.ID))
}

func TestSessionLoadRejectsUnknownStatus(t *testing.T) {
	dir := t.TempDir()

	s := NewSession([]FileEntry{oneHunkEntry(t, "a.go")})
	file, hunk, ok := s.Current()
	require.True(t, ok)

	// Hand-edit a snapshot so a decision carries a status the session never
	// produces.
	doctored := filepath.Join(dir, "doctored.json")
	payload := fmt.Sprintf(`{
  "schema_version": 1,
  "cursor": {"file": 0, "hunk": 0},
  "filter": {},
  "decisions": {%q: {%q: "bogus"}}
}`, file.Path(), hunk.ID)
	require.NoError(t, os.WriteFile(doctored, []byte(payload), 0o644))

	_, err := s.Load(doctored)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid status")

	// Session is untouched; the hunk is still pending and decidable.
	assert.Equal(t, StatusPending, s.Status(file.Path(), hunk.ID))
	require.NoError(t, s.Decide(StatusAccepted))
}
