package diff

import "sort"

// patienceDiff matches lines that are unique in both sequences, takes the
// longest increasing chain of those matches as anchors, and recursively
// diffs the regions between them. Regions with no unique anchors fall back
// to Myers. Better than plain Myers at isolating moved blocks.
func patienceDiff(a, b []string) []edit {
	var head []edit
	for len(a) > 0 && len(b) > 0 && a[0] == b[0] {
		head = append(head, edit{op: opEqual, text: a[0]})
		a, b = a[1:], b[1:]
	}

	var tail []edit // collected in reverse order
	for len(a) > 0 && len(b) > 0 && a[len(a)-1] == b[len(b)-1] {
		tail = append(tail, edit{op: opEqual, text: a[len(a)-1]})
		a, b = a[:len(a)-1], b[:len(b)-1]
	}

	var mid []edit
	switch {
	case len(a) == 0:
		mid = allInserts(b)
	case len(b) == 0:
		mid = allDeletes(a)
	default:
		anchors := patienceAnchors(a, b)
		if len(anchors) == 0 {
			mid = myersDiff(a, b)
		} else {
			ai, bi := 0, 0
			for _, an := range anchors {
				mid = append(mid, patienceDiff(a[ai:an.a], b[bi:an.b])...)
				mid = append(mid, edit{op: opEqual, text: a[an.a]})
				ai, bi = an.a+1, an.b+1
			}
			mid = append(mid, patienceDiff(a[ai:], b[bi:])...)
		}
	}

	edits := append(head, mid...)
	for i := len(tail) - 1; i >= 0; i-- {
		edits = append(edits, tail[i])
	}
	return edits
}

// anchor pairs the positions of a line unique to both sequences.
type anchor struct {
	a, b int
}

// patienceAnchors returns the longest chain of matches between lines that
// occur exactly once in each sequence, increasing in both positions.
func patienceAnchors(a, b []string) []anchor {
	countA := make(map[string]int, len(a))
	for _, s := range a {
		countA[s]++
	}
	countB := make(map[string]int, len(b))
	posB := make(map[string]int, len(b))
	for i, s := range b {
		countB[s]++
		posB[s] = i
	}

	var pairs []anchor // ordered by position in a
	for i, s := range a {
		if countA[s] == 1 && countB[s] == 1 {
			pairs = append(pairs, anchor{a: i, b: posB[s]})
		}
	}
	if len(pairs) == 0 {
		return nil
	}

	// Longest increasing subsequence over b positions, patience-sorting
	// style with back pointers.
	piles := make([]int, 0, len(pairs))
	back := make([]int, len(pairs))
	for i, p := range pairs {
		pile := sort.Search(len(piles), func(j int) bool {
			return pairs[piles[j]].b >= p.b
		})
		if pile > 0 {
			back[i] = piles[pile-1]
		} else {
			back[i] = -1
		}
		if pile == len(piles) {
			piles = append(piles, i)
		} else {
			piles[pile] = i
		}
	}

	chain := make([]anchor, 0, len(piles))
	for i := piles[len(piles)-1]; i >= 0; i = back[i] {
		chain = append(chain, pairs[i])
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}
