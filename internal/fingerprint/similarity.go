package fingerprint

// EditSimilarity returns the normalized Levenshtein similarity between a
// and b: 1 - distance/max(len(a), len(b)), in [0,1]. It is symmetric.
//
// Two empty strings are identical (1.0). When exactly one string is empty
// the distance equals the other's length, so the score is 0.0; the division
// by max length never sees a zero denominator.
func EditSimilarity(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if len(a) == 0 || len(b) == 0 {
		// Distance to an empty string is the other string's length.
		return 0.0
	}
	d := levenshtein(a, b)
	return 1.0 - float64(d)/float64(maxLen)
}

// levenshtein computes the classic dynamic-programming edit distance,
// keeping only two rows of the matrix.
func levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
