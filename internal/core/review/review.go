// Package review implements the resumable hunk-review state machine: an
// operator walks hunks across files, applies accept/reject/skip decisions,
// restricts navigation with a filter, and persists progress between runs.
package review

import (
	"errors"

	"github.com/colonyops/driftwatch/internal/core/change"
	"github.com/colonyops/driftwatch/internal/core/diff"
)

// Status is the review state of a single hunk.
type Status string

// Hunk review states. Accepted and Rejected are terminal unless the operator
// explicitly resets; Skipped hunks can be decided again.
const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	StatusSkipped  Status = "skipped"
)

// Decided reports whether the status is an operator decision rather than
// the pending default. Decision maps only ever hold decided statuses.
func (st Status) Decided() bool {
	switch st {
	case StatusAccepted, StatusRejected, StatusSkipped:
		return true
	}
	return false
}

// ErrAlreadyDecided is returned when deciding a hunk whose status is terminal.
var ErrAlreadyDecided = errors.New("hunk already accepted or rejected")

// ErrNoCurrent is returned when an operation needs a current hunk and the
// session has none.
var ErrNoCurrent = errors.New("no current hunk")

// Direction selects which way Advance moves.
type Direction int

// Advance directions.
const (
	Forward Direction = iota
	Backward
)

// Granularity selects how far Advance moves.
type Granularity int

// Advance granularities.
const (
	ByHunk Granularity = iota
	ByFile
)

// FileEntry is one reviewable file: the settled change event and its diff.
type FileEntry struct {
	Event  change.Event
	Result *diff.Result
}

// Path returns the file's path.
func (f FileEntry) Path() string { return f.Event.Path }

// Cursor addresses one hunk by position.
type Cursor struct {
	File int `json:"file_index"`
	Hunk int `json:"hunk_index"`
}

// Stats summarize review progress.
type Stats struct {
	Total    int
	Pending  int
	Accepted int
	Rejected int
	Skipped  int
}

// Percent reports how much of the session has been decided, in [0,100].
func (s Stats) Percent() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Total-s.Pending) / float64(s.Total) * 100
}
