// Package edges implements the built-in Edge catalog (spec.md §4.3, C3):
// Identity, Function, Product, Constant, Cache, Switch, Projection, Merge,
// MultiInputSwitch, Mapping, Grouping and HashMapping. Most fit the
// graph.MaskEdge shape and are adapted via graph.FromMaskEdge; only
// MultiInputSwitch needs a parent's concrete value before it can even
// decide which other parent to hash, so it implements graph.Edge directly.
package edges

import "fmt"

// IdentifierError reports a malformed reference into a composite value or
// hash: a Projection parent without exactly one non-Nothing slot, a Grouping id absent from its
// mapping, an id the Mapping subgraph never produced (spec.md §7).
type IdentifierError struct {
	Op  string
	Key any
}

func (e *IdentifierError) Error() string {
	return fmt.Sprintf("edges: %s: bad identifier %v", e.Op, e.Key)
}
