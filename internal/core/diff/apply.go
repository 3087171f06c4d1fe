package diff

import (
	"fmt"
	"strings"
)

// Apply reconstructs the new content by replaying hunks over the old
// content. Hunks must be in order and produced against the same old content;
// a context or removed line that does not match returns an error.
func Apply(oldContent string, hunks []Hunk) (string, error) {
	oldLines := splitLines(oldContent)

	var b strings.Builder
	pos := 0 // next unconsumed old line, 0-based
	for _, h := range hunks {
		start := h.OldStart - 1
		if h.OldLines == 0 {
			// Pure insertion: OldStart names the line before the
			// insertion point.
			start = h.OldStart
		}
		if start < pos || start > len(oldLines) {
			return "", fmt.Errorf("hunk %s: old range %d out of sequence", h.ID, h.OldStart)
		}

		for pos < start {
			b.WriteString(oldLines[pos])
			pos++
		}

		for _, l := range h.Lines {
			switch l.Kind {
			case LineContext:
				if pos >= len(oldLines) || oldLines[pos] != l.Text {
					return "", fmt.Errorf("hunk %s: context mismatch at old line %d", h.ID, pos+1)
				}
				b.WriteString(l.Text)
				pos++
			case LineRemoved:
				if pos >= len(oldLines) || oldLines[pos] != l.Text {
					return "", fmt.Errorf("hunk %s: removed line mismatch at old line %d", h.ID, pos+1)
				}
				pos++
			case LineAdded:
				b.WriteString(l.Text)
			}
		}
	}

	for pos < len(oldLines) {
		b.WriteString(oldLines[pos])
		pos++
	}

	return b.String(), nil
}
