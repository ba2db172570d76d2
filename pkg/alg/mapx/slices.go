package mapx

// CloneSlice returns a shallow copy of s.
// Returns nil for a nil slice.
func CloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}

	clone := make([]T, len(s))
	copy(clone, s)

	return clone
}

// UniqueBy returns the distinct keys of s in first-seen order.
// Returns nil for a nil slice.
func UniqueBy[T any, K comparable](s []T, key func(T) K) []K {
	if s == nil {
		return nil
	}

	seen := make(map[K]struct{}, len(s))
	result := make([]K, 0, len(s))

	for _, v := range s {
		k := key(v)
		if _, ok := seen[k]; ok {
			continue
		}

		seen[k] = struct{}{}
		result = append(result, k)
	}

	return result
}
