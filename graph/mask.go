package graph

// Mask lists, in request order, which parent indices an edge's evaluate
// phase actually needs values for. A Mapping or Grouping edge whose result
// is already memoized returns an empty Mask; a Product or Function edge
// always returns FullMask(arity) (spec.md §4.3's "Evaluation" column).
type Mask []int

// FullMask returns the mask [0, 1, ..., n-1].
func FullMask(n int) Mask {
	m := make(Mask, n)
	for i := range m {
		m[i] = i
	}
	return m
}
