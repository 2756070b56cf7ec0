package fuzzy

// Bigram is the n=2 gram scorer.
var Bigram = NGram(2)

// NGram returns a scorer that compares the sets of n-rune grams of both
// strings: |A ∩ B| / max(|A|, |B|). Repeated grams count once, which keeps
// the score symmetric and inside [0, 1]. Strings too short to produce a gram
// score 1 when equal and 0 otherwise. n below 1 is treated as 1.
func NGram(n int) Scorer {
	if n < 1 {
		n = 1
	}
	return func(value, query string) float64 {
		a, b := gramSet(value, n), gramSet(query, n)
		if len(a) == 0 || len(b) == 0 {
			if len(a) == 0 && len(b) == 0 && value == query {
				return 1
			}
			return 0
		}

		small, large := a, b
		if len(small) > len(large) {
			small, large = large, small
		}
		shared := 0
		for g := range small {
			if _, ok := large[g]; ok {
				shared++
			}
		}
		return float64(shared) / float64(max(len(a), len(b)))
	}
}

func gramSet(s string, n int) map[string]struct{} {
	r := []rune(s)
	if len(r) < n {
		return nil
	}
	set := make(map[string]struct{}, len(r)-n+1)
	for i := 0; i+n <= len(r); i++ {
		set[string(r[i:i+n])] = struct{}{}
	}
	return set
}
