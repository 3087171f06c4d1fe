package diff

// lcsDiff computes an edit script from the full longest-common-subsequence
// table in O(N*M) time and space. Guarantees a minimal diff regardless of
// cost; prefer Myers for large inputs.
func lcsDiff(a, b []string) []edit {
	n, m := len(a), len(b)
	switch {
	case n == 0 && m == 0:
		return nil
	case n == 0:
		return allInserts(b)
	case m == 0:
		return allDeletes(a)
	}

	dp := make([][]int, n+1)
	for i := range dp {
		dp[i] = make([]int, m+1)
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			if a[i-1] == b[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
			} else if dp[i-1][j] >= dp[i][j-1] {
				dp[i][j] = dp[i-1][j]
			} else {
				dp[i][j] = dp[i][j-1]
			}
		}
	}

	var rev []edit
	i, j := n, m
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && a[i-1] == b[j-1]:
			rev = append(rev, edit{op: opEqual, text: a[i-1]})
			i--
			j--
		case j > 0 && (i == 0 || dp[i][j-1] >= dp[i-1][j]):
			rev = append(rev, edit{op: opInsert, text: b[j-1]})
			j--
		default:
			rev = append(rev, edit{op: opDelete, text: a[i-1]})
			i--
		}
	}

	reverseEdits(rev)
	return rev
}
