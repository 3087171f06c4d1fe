// Package export serializes finalized diffs for consumption outside the
// review loop, as unified patches or a JSON report.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/colonyops/driftwatch/internal/core/change"
	"github.com/colonyops/driftwatch/internal/core/diff"
)

// Entry pairs a change event with its diff for the JSON report.
type Entry struct {
	Event change.Event `json:"event"`
	Stats diff.Stats   `json:"stats"`
	Hunks int          `json:"hunks"`
}

// Patch writes hunks as a unified diff body under the given labels.
func Patch(w io.Writer, oldLabel, newLabel string, hunks []diff.Hunk) error {
	if _, err := fmt.Fprintf(w, "--- %s\n+++ %s\n", oldLabel, newLabel); err != nil {
		return fmt.Errorf("write patch header: %w", err)
	}
	for _, h := range hunks {
		if _, err := fmt.Fprintf(w, "@@ -%d,%d +%d,%d @@\n", h.OldStart, h.OldLines, h.NewStart, h.NewLines); err != nil {
			return fmt.Errorf("write hunk header: %w", err)
		}
		for _, line := range h.Lines {
			if err := writeLine(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}

// PatchFile writes a unified patch for one file, deriving labels from the
// change kind: created files diff from /dev/null, deleted files to it.
func PatchFile(w io.Writer, path string, kind change.Kind, hunks []diff.Hunk) error {
	oldLabel := "a/" + path
	newLabel := "b/" + path
	switch kind {
	case change.KindCreated:
		oldLabel = "/dev/null"
	case change.KindDeleted:
		newLabel = "/dev/null"
	}
	return Patch(w, oldLabel, newLabel, hunks)
}

// Report writes entries as an indented JSON document.
func Report(w io.Writer, entries []Entry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func writeLine(w io.Writer, line diff.Line) error {
	marker := byte(' ')
	switch line.Kind {
	case diff.LineAdded:
		marker = '+'
	case diff.LineRemoved:
		marker = '-'
	}
	text := line.Text
	missingNewline := !strings.HasSuffix(text, "\n")
	if missingNewline {
		text += "\n"
	}
	if _, err := fmt.Fprintf(w, "%c%s", marker, text); err != nil {
		return fmt.Errorf("write patch line: %w", err)
	}
	if missingNewline {
		if _, err := io.WriteString(w, "\\ No newline at end of file\n"); err != nil {
			return fmt.Errorf("write patch line: %w", err)
		}
	}
	return nil
}
