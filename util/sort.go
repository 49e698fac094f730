package util

import "sort"

// SortKeys returns the keys of m ordered by less, the way the teacher's
// util.SortKeys orders branch time slots and sequencer IDs for deterministic
// iteration over otherwise-unordered Go maps.
func SortKeys[K comparable, V any](m map[K]V, less func(a, b K) bool) []K {
	ret := make([]K, 0, len(m))
	for k := range m {
		ret = append(ret, k)
	}
	sort.Slice(ret, func(i, j int) bool {
		return less(ret[i], ret[j])
	})
	return ret
}
