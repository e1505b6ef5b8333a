package aggregate

// GroupByParent partitions children into one group per parent.
//
// The result has len(parents) groups in parent order. Children keep their
// relative order within a group. A parent without children gets an empty,
// non-nil group. A child whose key is absent (ok == false) or matches no
// parent is dropped. Parents sharing a key share the same group.
//
// Runs in O(len(parents) + len(children)).
func GroupByParent[P, C any, K comparable](
	parents []P,
	children []C,
	parentKey func(P) K,
	childKey func(C) (K, bool),
) [][]C {
	byKey := make(map[K][]C, len(parents))
	for _, c := range children {
		k, ok := childKey(c)
		if !ok {
			continue
		}
		byKey[k] = append(byKey[k], c)
	}

	groups := make([][]C, len(parents))
	for i, p := range parents {
		g := byKey[parentKey(p)]
		if g == nil {
			g = []C{}
		}
		groups[i] = g
	}
	return groups
}
