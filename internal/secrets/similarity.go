package secrets

// QuickRatio computes a bounded approximate sequence-similarity ratio in
// [0, 1]: twice the number of characters the two strings have in common
// (counting multiplicity) divided by their total length. It is symmetric
// and cheap, trading positional accuracy for constant-factor speed, which
// is all the too-similar policy needs.
func QuickRatio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}

	countsB := make(map[rune]int)
	lenB := 0
	for _, r := range b {
		countsB[r]++
		lenB++
	}

	matches := 0
	lenA := 0
	for _, r := range a {
		lenA++
		if countsB[r] > 0 {
			countsB[r]--
			matches++
		}
	}

	return 2.0 * float64(matches) / float64(lenA+lenB)
}
