package driftwatch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/colonyops/driftwatch/internal/core/pipeline"
	"github.com/colonyops/driftwatch/internal/core/review"
)

// captureSchemaVersion identifies the capture file format.
const captureSchemaVersion = 1

// Capture is the persisted output of one watch run: the finalized changes
// and their diffs, ready to be reviewed or exported.
type Capture struct {
	SchemaVersion int             `json:"schema_version"`
	Root          string          `json:"root"`
	CapturedAt    time.Time       `json:"captured_at"`
	Items         []pipeline.Item `json:"items"`
}

// SaveCapture writes items to path atomically.
func SaveCapture(path, root string, items []pipeline.Item) error {
	capture := Capture{
		SchemaVersion: captureSchemaVersion,
		Root:          root,
		CapturedAt:    time.Now(),
		Items:         items,
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create capture dir: %w", err)
	}
	data, err := json.MarshalIndent(capture, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal capture: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write capture: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write capture: %w", err)
	}
	return nil
}

// LoadCapture reads a capture file.
func LoadCapture(path string) (*Capture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read capture: %w", err)
	}
	var capture Capture
	if err := json.Unmarshal(data, &capture); err != nil {
		return nil, fmt.Errorf("parse capture: %w", err)
	}
	if capture.SchemaVersion != captureSchemaVersion {
		return nil, fmt.Errorf("unsupported capture schema version %d", capture.SchemaVersion)
	}
	return &capture, nil
}

// ReviewEntries converts captured items into review file entries. When a
// path appears more than once only the newest item survives, in first-seen
// order; items whose diff is unavailable are kept so the operator still sees
// them, but they carry no reviewable hunks.
func (c *Capture) ReviewEntries() []review.FileEntry {
	index := make(map[string]int)
	var entries []review.FileEntry
	for _, item := range c.Items {
		entry := review.FileEntry{Event: item.Event, Result: item.Diff}
		if i, seen := index[item.Event.Path]; seen {
			entries[i] = entry
			continue
		}
		index[item.Event.Path] = len(entries)
		entries = append(entries, entry)
	}
	return entries
}
