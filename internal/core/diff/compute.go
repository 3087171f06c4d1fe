package diff

// Compute diffs two content versions under the chosen algorithm, grouping
// changes into hunks with the given number of surrounding context lines.
// Identical contents produce a Result with zero hunks.
func Compute(algorithm Algorithm, oldContent, newContent string, contextLines int) *Result {
	if contextLines < 0 {
		contextLines = 0
	}

	a := splitLines(oldContent)
	b := splitLines(newContent)

	var edits []edit
	switch algorithm {
	case AlgorithmPatience:
		edits = patienceDiff(a, b)
	case AlgorithmLCS:
		edits = lcsDiff(a, b)
	default:
		algorithm = AlgorithmMyers
		edits = myersDiff(a, b)
	}

	hunks, stats := buildHunks(edits, contextLines)
	return &Result{
		Algorithm: algorithm,
		Hunks:     hunks,
		Stats:     stats,
	}
}

// buildHunks numbers the edit script, groups nearby changes, and trims each
// group to its surrounding context lines. Two changed regions merge into one
// hunk when fewer than 2*context unchanged lines separate them.
func buildHunks(edits []edit, context int) ([]Hunk, Stats) {
	var stats Stats

	lines := make([]Line, 0, len(edits))
	oldBefore := make([]int, len(edits))
	newBefore := make([]int, len(edits))
	oldN, newN := 0, 0
	for i, e := range edits {
		oldBefore[i] = oldN
		newBefore[i] = newN
		switch e.op {
		case opEqual:
			oldN++
			newN++
			lines = append(lines, Line{Kind: LineContext, Text: e.text, OldNum: oldN, NewNum: newN})
		case opDelete:
			oldN++
			stats.Removed++
			lines = append(lines, Line{Kind: LineRemoved, Text: e.text, OldNum: oldN})
		case opInsert:
			newN++
			stats.Added++
			lines = append(lines, Line{Kind: LineAdded, Text: e.text, NewNum: newN})
		}
	}

	var changed []int
	for i, l := range lines {
		if l.Kind != LineContext {
			changed = append(changed, i)
		}
	}
	if len(changed) == 0 {
		return nil, stats
	}

	var hunks []Hunk
	groupStart := changed[0]
	groupEnd := changed[0]
	flush := func() {
		start := groupStart - context
		if start < 0 {
			start = 0
		}
		end := groupEnd + context
		if end > len(lines)-1 {
			end = len(lines) - 1
		}

		sub := make([]Line, end-start+1)
		copy(sub, lines[start:end+1])

		oldCount, newCount := 0, 0
		for _, l := range sub {
			if l.Kind != LineAdded {
				oldCount++
			}
			if l.Kind != LineRemoved {
				newCount++
			}
		}

		oldStart := oldBefore[start] + 1
		if oldCount == 0 {
			oldStart = oldBefore[start]
		}
		newStart := newBefore[start] + 1
		if newCount == 0 {
			newStart = newBefore[start]
		}

		hunks = append(hunks, Hunk{
			ID:       hunkID(oldStart, sub),
			OldStart: oldStart,
			OldLines: oldCount,
			NewStart: newStart,
			NewLines: newCount,
			Lines:    sub,
		})
	}

	for _, idx := range changed[1:] {
		if idx-groupEnd-1 > 2*context {
			flush()
			groupStart = idx
		}
		groupEnd = idx
	}
	flush()

	return hunks, stats
}
