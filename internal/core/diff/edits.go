package diff

// editOp is one step of an edit script over line sequences.
type editOp int

const (
	opEqual editOp = iota
	opDelete
	opInsert
)

// edit pairs an operation with the line it applies to.
type edit struct {
	op   editOp
	text string
}

func reverseEdits(edits []edit) {
	for i, j := 0, len(edits)-1; i < j; i, j = i+1, j-1 {
		edits[i], edits[j] = edits[j], edits[i]
	}
}

// allInserts returns an edit script inserting every line of b.
func allInserts(b []string) []edit {
	edits := make([]edit, len(b))
	for i, line := range b {
		edits[i] = edit{op: opInsert, text: line}
	}
	return edits
}

// allDeletes returns an edit script deleting every line of a.
func allDeletes(a []string) []edit {
	edits := make([]edit, len(a))
	for i, line := range a {
		edits[i] = edit{op: opDelete, text: line}
	}
	return edits
}
