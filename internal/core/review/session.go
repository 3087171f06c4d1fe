package review

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/colonyops/driftwatch/internal/core/diff"
	"github.com/colonyops/driftwatch/internal/core/logging"
)

// Session walks hunks across an ordered list of files. It has exactly one
// owner and is never mutated concurrently; all operations are synchronous.
type Session struct {
	files  []FileEntry
	cursor Cursor
	filter Filter

	// decisions maps path -> hunk identity -> status. Pending hunks carry
	// no entry.
	decisions map[string]map[string]Status

	log zerolog.Logger
}

// NewSession builds a session over files in the given order. The cursor
// starts on the first hunk; files whose diff produced no hunks are skipped
// during navigation.
func NewSession(files []FileEntry) *Session {
	s := &Session{
		files:     files,
		decisions: make(map[string]map[string]Status),
		log:       logging.Component("review"),
	}
	if c, ok := s.firstPosition(); ok {
		s.cursor = c
	}
	return s
}

// Files returns the session's file list in review order.
func (s *Session) Files() []FileEntry { return s.files }

// Cursor returns the current position.
func (s *Session) Cursor() Cursor { return s.cursor }

// ActiveFilter returns the filter currently restricting navigation.
func (s *Session) ActiveFilter() Filter { return s.filter }

// Current returns the file and hunk under the cursor. ok is false when the
// session holds no hunks at all.
func (s *Session) Current() (FileEntry, diff.Hunk, bool) {
	return s.hunkAt(s.cursor)
}

// Status reports the review status of a hunk by identity.
func (s *Session) Status(path, hunkID string) Status {
	if st, ok := s.decisions[path][hunkID]; ok {
		return st
	}
	return StatusPending
}

// Advance moves the cursor to the nearest hunk in the given direction that
// passes the active filter. With ByFile granularity it lands on the first
// passing hunk of a neighboring file. When nothing qualifies the cursor is
// unchanged and Advance returns false.
func (s *Session) Advance(dir Direction, gran Granularity) bool {
	switch gran {
	case ByFile:
		return s.advanceFile(dir)
	default:
		return s.advanceHunk(dir)
	}
}

func (s *Session) advanceHunk(dir Direction) bool {
	c := s.cursor
	for {
		next, ok := s.step(c, dir)
		if !ok {
			return false
		}
		c = next
		if s.passes(c) {
			s.cursor = c
			return true
		}
	}
}

func (s *Session) advanceFile(dir Direction) bool {
	delta := 1
	if dir == Backward {
		delta = -1
	}
	for f := s.cursor.File + delta; f >= 0 && f < len(s.files); f += delta {
		for h := 0; h < s.hunkCount(f); h++ {
			c := Cursor{File: f, Hunk: h}
			if s.passes(c) {
				s.cursor = c
				return true
			}
		}
	}
	return false
}

// Decide sets the current hunk's status. Accepted and Rejected are terminal:
// deciding such a hunk again returns ErrAlreadyDecided. Skipped hunks may be
// decided again.
func (s *Session) Decide(outcome Status) error {
	if !outcome.Decided() {
		return fmt.Errorf("invalid outcome %q", outcome)
	}
	file, hunk, ok := s.Current()
	if !ok {
		return ErrNoCurrent
	}
	current := s.Status(file.Path(), hunk.ID)
	if current == StatusAccepted || current == StatusRejected {
		return ErrAlreadyDecided
	}
	s.setStatus(file.Path(), hunk.ID, outcome)
	s.log.Debug().
		Str("path", file.Path()).
		Str("hunk", hunk.ID).
		Str("status", string(outcome)).
		Msg("hunk decided")
	return nil
}

// DecideFile applies outcome to every pending hunk of the current file,
// leaving already-decided hunks untouched. It returns how many hunks were
// decided.
func (s *Session) DecideFile(outcome Status) (int, error) {
	if !outcome.Decided() {
		return 0, fmt.Errorf("invalid outcome %q", outcome)
	}
	if s.cursor.File >= len(s.files) {
		return 0, ErrNoCurrent
	}
	file := s.files[s.cursor.File]
	if file.Result == nil {
		return 0, ErrNoCurrent
	}

	decided := 0
	for _, hunk := range file.Result.Hunks {
		if s.Status(file.Path(), hunk.ID) != StatusPending {
			continue
		}
		s.setStatus(file.Path(), hunk.ID, outcome)
		decided++
	}
	return decided, nil
}

// ResetCurrent returns the current hunk to pending, undoing a terminal
// decision.
func (s *Session) ResetCurrent() error {
	file, hunk, ok := s.Current()
	if !ok {
		return ErrNoCurrent
	}
	if byHunk, ok := s.decisions[file.Path()]; ok {
		delete(byHunk, hunk.ID)
		if len(byHunk) == 0 {
			delete(s.decisions, file.Path())
		}
	}
	return nil
}

// JumpToFirst scans files then hunks in order and moves the cursor to the
// first hunk matching pred, ignoring the active filter. It returns false and
// leaves the cursor unchanged when nothing matches.
func (s *Session) JumpToFirst(pred func(file FileEntry, hunk diff.Hunk, status Status) bool) bool {
	for f, file := range s.files {
		if file.Result == nil {
			continue
		}
		for h, hunk := range file.Result.Hunks {
			if pred(file, hunk, s.Status(file.Path(), hunk.ID)) {
				s.cursor = Cursor{File: f, Hunk: h}
				return true
			}
		}
	}
	return false
}

// SetFilter replaces the active filter. Existing decisions are untouched.
func (s *Session) SetFilter(f Filter) error {
	if err := f.Validate(); err != nil {
		return err
	}
	s.filter = f
	return nil
}

// ClearFilter removes all navigation restrictions.
func (s *Session) ClearFilter() {
	s.filter = Filter{}
}

// Stats counts hunks by review status across the whole session.
func (s *Session) Stats() Stats {
	var st Stats
	for _, file := range s.files {
		if file.Result == nil {
			continue
		}
		for _, hunk := range file.Result.Hunks {
			st.Total++
			switch s.Status(file.Path(), hunk.ID) {
			case StatusAccepted:
				st.Accepted++
			case StatusRejected:
				st.Rejected++
			case StatusSkipped:
				st.Skipped++
			default:
				st.Pending++
			}
		}
	}
	return st
}

func (s *Session) setStatus(path, hunkID string, status Status) {
	byHunk, ok := s.decisions[path]
	if !ok {
		byHunk = make(map[string]Status)
		s.decisions[path] = byHunk
	}
	byHunk[hunkID] = status
}

func (s *Session) hunkCount(file int) int {
	if file < 0 || file >= len(s.files) || s.files[file].Result == nil {
		return 0
	}
	return len(s.files[file].Result.Hunks)
}

func (s *Session) hunkAt(c Cursor) (FileEntry, diff.Hunk, bool) {
	if c.File < 0 || c.File >= len(s.files) {
		return FileEntry{}, diff.Hunk{}, false
	}
	file := s.files[c.File]
	if file.Result == nil || c.Hunk < 0 || c.Hunk >= len(file.Result.Hunks) {
		return FileEntry{}, diff.Hunk{}, false
	}
	return file, file.Result.Hunks[c.Hunk], true
}

// step moves one hunk in dir without consulting the filter.
func (s *Session) step(c Cursor, dir Direction) (Cursor, bool) {
	if dir == Forward {
		if c.Hunk+1 < s.hunkCount(c.File) {
			return Cursor{File: c.File, Hunk: c.Hunk + 1}, true
		}
		for f := c.File + 1; f < len(s.files); f++ {
			if s.hunkCount(f) > 0 {
				return Cursor{File: f, Hunk: 0}, true
			}
		}
		return Cursor{}, false
	}
	if c.Hunk > 0 {
		return Cursor{File: c.File, Hunk: c.Hunk - 1}, true
	}
	for f := c.File - 1; f >= 0; f-- {
		if n := s.hunkCount(f); n > 0 {
			return Cursor{File: f, Hunk: n - 1}, true
		}
	}
	return Cursor{}, false
}

// passes applies the active filter to the hunk at c.
func (s *Session) passes(c Cursor) bool {
	file, hunk, ok := s.hunkAt(c)
	if !ok {
		return false
	}
	return s.filter.matchFile(file) && s.filter.matchStatus(s.Status(file.Path(), hunk.ID))
}

func (s *Session) firstPosition() (Cursor, bool) {
	for f := range s.files {
		if s.hunkCount(f) > 0 {
			return Cursor{File: f, Hunk: 0}, true
		}
	}
	return Cursor{}, false
}
