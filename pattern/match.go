package pattern

// Match returns the lowest index in data where p matches.
// An empty pattern never matches.
func Match(data []byte, p Pattern) (int, bool) {
	if len(p) == 0 || len(data) < len(p) {
		return 0, false
	}

	for i := 0; i <= len(data)-len(p); i++ {
		if matchAt(data[i:], p) {
			return i, true
		}
	}

	return 0, false
}

// MatchAll returns every index in data where p matches, in ascending order
func MatchAll(data []byte, p Pattern) []int {
	if len(p) == 0 || len(data) < len(p) {
		return nil
	}

	var matches []int
	for i := 0; i <= len(data)-len(p); i++ {
		if matchAt(data[i:], p) {
			matches = append(matches, i)
		}
	}

	return matches
}

// matchAt assumes len(data) >= len(p)
func matchAt(data []byte, p Pattern) bool {
	for j, t := range p {
		if !t.Wildcard && data[j] != t.Value {
			return false
		}
	}
	return true
}
