package index

// IsFuzzyMatch reports whether candidate and token are at most one
// insertion, deletion or substitution apart. Lengths differing by more than
// one are rejected before any comparison.
func IsFuzzyMatch(candidate, token string) bool {
	lc, lt := len(candidate), len(token)
	diff := lc - lt
	if diff < -1 || diff > 1 {
		return false
	}

	i, j := 0, 0
	mismatches := 0
	for i < lc && j < lt {
		if candidate[i] == token[j] {
			i++
			j++
			continue
		}
		mismatches++
		if mismatches > 1 {
			return false
		}
		switch {
		case lc > lt:
			i++
		case lt > lc:
			j++
		default:
			i++
			j++
		}
	}

	// Unmatched tail on either side is one more edit.
	if i < lc || j < lt {
		mismatches++
	}
	return mismatches <= 1
}
