// Package diff computes structural line diffs between two content versions.
// Three algorithms are available behind a single closed Algorithm type, all
// producing identical hunk structures and satisfying the round-trip law:
// applying the hunks to the old content reproduces the new content exactly.
package diff

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Algorithm selects the diff strategy for a run.
type Algorithm string

// Supported algorithms. Myers is the default.
const (
	AlgorithmMyers    Algorithm = "myers"
	AlgorithmPatience Algorithm = "patience"
	AlgorithmLCS      Algorithm = "lcs"
)

// ParseAlgorithm validates and normalizes an algorithm name.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(s)) {
	case AlgorithmMyers:
		return AlgorithmMyers, nil
	case AlgorithmPatience:
		return AlgorithmPatience, nil
	case AlgorithmLCS:
		return AlgorithmLCS, nil
	default:
		return "", fmt.Errorf("unknown diff algorithm %q", s)
	}
}

// LineKind tags a line within a hunk.
type LineKind int

// Line kinds.
const (
	LineContext LineKind = iota
	LineAdded
	LineRemoved
)

// Line is a single line record inside a hunk. Text retains its trailing
// newline when the source line had one, so concatenating lines reproduces
// content byte for byte.
type Line struct {
	Kind   LineKind `json:"kind"`
	Text   string   `json:"text"`
	OldNum int      `json:"old_num,omitempty"` // 1-based line number in the old content, 0 for added lines
	NewNum int      `json:"new_num,omitempty"` // 1-based line number in the new content, 0 for removed lines
}

// Hunk is a contiguous block of change plus surrounding context lines.
//
// OldStart/NewStart follow the unified-diff convention: 1-based first line
// of the range, or the line before the insertion point when the range is
// empty (OldLines or NewLines == 0).
type Hunk struct {
	ID       string `json:"id"`
	OldStart int    `json:"old_start"`
	OldLines int    `json:"old_lines"`
	NewStart int    `json:"new_start"`
	NewLines int    `json:"new_lines"`
	Lines    []Line `json:"lines"`
}

// Stats summarizes a diff.
type Stats struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
}

// Reason codes for diffs that could not be computed.
type Reason string

// Unavailability reasons.
const (
	ReasonIOFailure Reason = "io_failure"
	ReasonBinary    Reason = "binary"
	ReasonTooLarge  Reason = "too_large"
)

// Result is an immutable diff between two content versions. When
// Unavailable is non-empty the diff was skipped and Hunks is nil.
type Result struct {
	Algorithm   Algorithm `json:"algorithm"`
	Hunks       []Hunk    `json:"hunks,omitempty"`
	Stats       Stats     `json:"stats"`
	Unavailable Reason    `json:"unavailable,omitempty"`
}

// Available reports whether the diff carries hunks rather than a
// skip reason.
func (r *Result) Available() bool {
	return r.Unavailable == ""
}

// hunkID derives a stable identity for a hunk from its position in the old
// content and a digest of its changed lines. Re-diffing the same fingerprint
// pair yields the same IDs, so review decisions survive reloads.
func hunkID(oldStart int, lines []Line) string {
	h := sha256.New()
	for _, l := range lines {
		if l.Kind == LineContext {
			continue
		}
		if l.Kind == LineAdded {
			h.Write([]byte{'+'})
		} else {
			h.Write([]byte{'-'})
		}
		h.Write([]byte(l.Text))
	}
	sum := h.Sum(nil)
	return fmt.Sprintf("%d:%s", oldStart, hex.EncodeToString(sum[:8]))
}

// splitLines splits content into lines that keep their trailing newline.
// Empty content yields no lines.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
