package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colonyops/driftwatch/internal/core/change"
	"github.com/colonyops/driftwatch/internal/core/diff"
	"github.com/colonyops/driftwatch/internal/core/review"
)

func modifiedEntry(t *testing.T, path, oldContent, newContent string) review.FileEntry {
	t.Helper()
	res := diff.Compute(diff.AlgorithmMyers, oldContent, newContent, 3)
	require.True(t, res.Available())
	return review.FileEntry{
		Event:  change.Event{Path: path, Kind: change.KindModified, Origin: change.OriginUnknown},
		Result: res,
	}
}

func TestAcceptedHunksFiltersUndecided(t *testing.T) {
	e := modifiedEntry(t, "main.go", "alpha\nbeta\n", "alpha\ngamma\n")
	sess := review.NewSession([]review.FileEntry{e})

	// Nothing accepted yet.
	assert.Empty(t, acceptedHunks(sess, e.Path(), e.Result.Hunks))

	require.NoError(t, sess.Decide(review.StatusAccepted))
	got := acceptedHunks(sess, e.Path(), e.Result.Hunks)
	require.Len(t, got, 1)
	assert.Equal(t, e.Result.Hunks[0].ID, got[0].ID)
}

func TestWritePatchSkipsRejectedHunks(t *testing.T) {
	accepted := modifiedEntry(t, "keep.go", "one\ntwo\n", "one\nTWO\n")
	rejected := modifiedEntry(t, "drop.go", "foo\nbar\n", "foo\nBAR\n")
	sess := review.NewSession([]review.FileEntry{accepted, rejected})

	require.NoError(t, sess.Decide(review.StatusAccepted))
	require.True(t, sess.Advance(review.Forward, review.ByFile))
	require.NoError(t, sess.Decide(review.StatusRejected))

	var buf bytes.Buffer
	cmd := &ExportCmd{}
	require.NoError(t, cmd.writePatch(&buf, []review.FileEntry{accepted, rejected}, sess))

	out := buf.String()
	assert.Contains(t, out, "--- a/keep.go")
	assert.Contains(t, out, "+TWO")
	assert.NotContains(t, out, "drop.go")
	assert.NotContains(t, out, "BAR")
}

func TestWritePatchWithoutSessionIncludesEverything(t *testing.T) {
	entries := []review.FileEntry{
		modifiedEntry(t, "a.go", "x\n", "y\n"),
		modifiedEntry(t, "b.go", "p\n", "q\n"),
	}

	var buf bytes.Buffer
	cmd := &ExportCmd{}
	require.NoError(t, cmd.writePatch(&buf, entries, nil))

	out := buf.String()
	assert.Contains(t, out, "--- a/a.go")
	assert.Contains(t, out, "--- a/b.go")
}

func TestWriteReportCountsAcceptedHunks(t *testing.T) {
	e := modifiedEntry(t, "main.go", "alpha\nbeta\n", "alpha\ngamma\n")
	sess := review.NewSession([]review.FileEntry{e})
	require.NoError(t, sess.Decide(review.StatusAccepted))

	var buf bytes.Buffer
	cmd := &ExportCmd{}
	require.NoError(t, cmd.writeReport(&buf, []review.FileEntry{e}, sess))

	out := buf.String()
	assert.Contains(t, out, `"hunks": 1`)
	assert.Contains(t, out, `"path": "main.go"`)
}

func TestExportSkipsUnavailableDiffs(t *testing.T) {
	good := modifiedEntry(t, "ok.go", "x\n", "y\n")
	binary := review.FileEntry{
		Event:  change.Event{Path: "blob.bin", Kind: change.KindModified, Origin: change.OriginUnknown},
		Result: &diff.Result{Algorithm: diff.AlgorithmMyers, Unavailable: diff.ReasonBinary},
	}

	cmd := &ExportCmd{}

	var patch bytes.Buffer
	require.NoError(t, cmd.writePatch(&patch, []review.FileEntry{good, binary}, nil))
	assert.Contains(t, patch.String(), "--- a/ok.go")
	assert.NotContains(t, patch.String(), "blob.bin")

	// The report still lists the file so the operator sees it, with zero
	// reviewable hunks.
	var report bytes.Buffer
	require.NoError(t, cmd.writeReport(&report, []review.FileEntry{good, binary}, nil))
	assert.Contains(t, report.String(), `"path": "blob.bin"`)
	assert.Contains(t, report.String(), `"hunks": 0`)
}

func TestPrintStatsFormat(t *testing.T) {
	var buf bytes.Buffer
	printStats(&buf, review.Stats{Total: 4, Accepted: 2, Rejected: 1, Pending: 1})
	line := buf.String()
	assert.True(t, strings.HasPrefix(line, "4 hunks: 2 accepted, 1 rejected, 0 skipped, 1 pending"), line)
}
