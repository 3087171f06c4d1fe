package diff

// myersDiff computes a shortest edit script between a and b using the
// classic O(N*D) diagonal search, where D is the edit distance. The full
// search trace is kept so the script can be recovered by backtracking.
func myersDiff(a, b []string) []edit {
	n, m := len(a), len(b)
	switch {
	case n == 0 && m == 0:
		return nil
	case n == 0:
		return allInserts(b)
	case m == 0:
		return allDeletes(a)
	}

	max := n + m
	offset := max
	v := make([]int, 2*max+1)
	var trace [][]int
	endD := 0

search:
	for d := 0; d <= max; d++ {
		snapshot := make([]int, len(v))
		copy(snapshot, v)
		trace = append(trace, snapshot)

		for k := -d; k <= d; k += 2 {
			var x int
			if k == -d || (k != d && v[offset+k-1] < v[offset+k+1]) {
				x = v[offset+k+1]
			} else {
				x = v[offset+k-1] + 1
			}
			y := x - k

			for x < n && y < m && a[x] == b[y] {
				x++
				y++
			}
			v[offset+k] = x

			if x >= n && y >= m {
				endD = d
				break search
			}
		}
	}

	// Backtrack from (n,m) through the snapshots. trace[d] holds the
	// furthest-reaching state before depth d was processed.
	var rev []edit
	x, y := n, m
	for d := endD; d >= 0 && (x > 0 || y > 0); d-- {
		vd := trace[d]
		k := x - y

		var prevK int
		if k == -d || (k != d && vd[offset+k-1] < vd[offset+k+1]) {
			prevK = k + 1
		} else {
			prevK = k - 1
		}
		prevX := vd[offset+prevK]
		prevY := prevX - prevK

		for x > prevX && y > prevY {
			rev = append(rev, edit{op: opEqual, text: a[x-1]})
			x--
			y--
		}

		if d > 0 {
			if x == prevX {
				rev = append(rev, edit{op: opInsert, text: b[prevY]})
			} else {
				rev = append(rev, edit{op: opDelete, text: a[prevX]})
			}
		}

		x, y = prevX, prevY
	}

	reverseEdits(rev)
	return rev
}
