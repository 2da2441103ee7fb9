package common

// IsEmpty returns true if the slice is empty.
func IsEmpty[S ~[]E, E any](s S) bool {
	return len(s) == 0
}

// IndexOf returns a lookup of each element to its first position in s.
func IndexOf[S ~[]E, E comparable](s S) map[E]int {
	index := make(map[E]int, len(s))
	for i, e := range s {
		if _, ok := index[e]; !ok {
			index[e] = i
		}
	}

	return index
}
