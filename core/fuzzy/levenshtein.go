package fuzzy

// LevenshteinRatio scores value against query as
// 1 - distance / max(len(value), len(query)). An empty query matches
// everything and scores 1.
func LevenshteinRatio(value, query string) float64 {
	v, q := []rune(value), []rune(query)
	if len(q) == 0 {
		return 1
	}
	d := distance(v, q)
	return 1 - float64(d)/float64(max(len(v), len(q)))
}

// Distance returns the unit-cost edit distance (insertions, deletions,
// substitutions) between a and b, counted in runes.
func Distance(a, b string) int {
	return distance([]rune(a), []rune(b))
}

// distance fills the (len(a)+1) x (len(b)+1) grid one row at a time.
func distance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
