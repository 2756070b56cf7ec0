package fuzzy

const (
	winklerPrefixScale = 0.1
	winklerMaxPrefix   = 4
)

// JaroWinkler scores value against query with the Jaro similarity plus a
// bonus for a shared prefix of up to four runes:
// jaro + min(prefix, 4) * 0.1 * (1 - jaro).
func JaroWinkler(value, query string) float64 {
	a, b := []rune(value), []rune(query)
	j := jaro(a, b)
	prefix := commonPrefix(a, b, winklerMaxPrefix)
	return j + float64(prefix)*winklerPrefixScale*(1-j)
}

// Jaro returns the plain Jaro similarity of a and b.
func Jaro(a, b string) float64 {
	return jaro([]rune(a), []rune(b))
}

func jaro(a, b []rune) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	window := max(max(len(a), len(b))/2-1, 0)
	aMatched := make([]bool, len(a))
	bMatched := make([]bool, len(b))

	matches := 0
	for i := range a {
		start := max(0, i-window)
		end := min(i+window+1, len(b))
		for j := start; j < end; j++ {
			if bMatched[j] || a[i] != b[j] {
				continue
			}
			aMatched[i] = true
			bMatched[j] = true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0
	}

	transpositions := 0
	k := 0
	for i := range a {
		if !aMatched[i] {
			continue
		}
		for !bMatched[k] {
			k++
		}
		if a[i] != b[k] {
			transpositions++
		}
		k++
	}

	m := float64(matches)
	return (m/float64(len(a)) + m/float64(len(b)) + (m-float64(transpositions)/2)/m) / 3
}

func commonPrefix(a, b []rune, limit int) int {
	n := 0
	for n < limit && n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
