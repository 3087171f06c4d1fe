package review

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SchemaVersion identifies the snapshot format. Snapshots with a different
// version are rejected rather than reinterpreted.
const SchemaVersion = 1

// snapshot is the serialized form of a session's progress. The file list
// itself is not persisted; a loaded snapshot is reconciled against the
// session's current files.
type snapshot struct {
	SchemaVersion int                          `json:"schema_version"`
	Cursor        Cursor                       `json:"cursor"`
	Filter        Filter                       `json:"filter"`
	Decisions     map[string]map[string]Status `json:"decisions"`
}

// Save writes the session's cursor, filter, and decisions to path
// atomically.
func (s *Session) Save(path string) error {
	snap := snapshot{
		SchemaVersion: SchemaVersion,
		Cursor:        s.cursor,
		Filter:        s.filter,
		Decisions:     s.decisions,
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write session: %w", err)
	}

	s.log.Debug().Str("path", path).Msg("session saved")
	return nil
}

// Load restores cursor, filter, and decisions from a snapshot at path.
// Decisions referencing files or hunks the session no longer tracks are
// dropped; discarded reports how many. A malformed or version-mismatched
// snapshot returns an error and leaves the session untouched, so the caller
// can warn and continue with a fresh session.
func (s *Session) Load(path string) (discarded int, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read session: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return 0, fmt.Errorf("parse session: %w", err)
	}
	if snap.SchemaVersion != SchemaVersion {
		return 0, fmt.Errorf("unsupported session schema version %d", snap.SchemaVersion)
	}
	if err := snap.Filter.Validate(); err != nil {
		return 0, fmt.Errorf("session filter: %w", err)
	}

	known := s.knownHunks()
	decisions := make(map[string]map[string]Status)
	for p, byHunk := range snap.Decisions {
		for id, status := range byHunk {
			if !status.Decided() {
				return 0, fmt.Errorf("session decision %s/%s: invalid status %q", p, id, status)
			}
			if !known[p][id] {
				discarded++
				continue
			}
			if decisions[p] == nil {
				decisions[p] = make(map[string]Status)
			}
			decisions[p][id] = status
		}
	}

	s.decisions = decisions
	s.filter = snap.Filter
	s.cursor = snap.Cursor
	if _, _, ok := s.hunkAt(s.cursor); !ok {
		// Cursor pointed at a hunk that no longer exists.
		if c, ok := s.firstPosition(); ok {
			s.cursor = c
		} else {
			s.cursor = Cursor{}
		}
	}

	if discarded > 0 {
		s.log.Warn().Int("discarded", discarded).Str("path", path).Msg("dropped stale session decisions")
	}
	return discarded, nil
}

// knownHunks indexes the hunk identities the session currently tracks.
func (s *Session) knownHunks() map[string]map[string]bool {
	known := make(map[string]map[string]bool, len(s.files))
	for _, file := range s.files {
		if file.Result == nil {
			continue
		}
		ids := make(map[string]bool, len(file.Result.Hunks))
		for _, hunk := range file.Result.Hunks {
			ids[hunk.ID] = true
		}
		known[file.Path()] = ids
	}
	return known
}
