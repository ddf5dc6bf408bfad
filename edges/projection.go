package edges

import (
	"github.com/samokhinv/connectome-go/graph"
	"github.com/samokhinv/connectome-go/nodehash"
)

// Projection extracts the single surviving element of a composite parent
// whose other slots were filtered to Nothing upstream — the common
// downstream of a Switch/Merge pair that routed a Product tuple's slots
// through mutually exclusive branches. It scans rather than indexes: both
// structurally (the parent hash's children) and at evaluation time (the
// parent's evaluated slice), it picks the one child/value that is not
// Nothing. Anything other than exactly one survivor is an IdentifierError,
// never a silent pick of the first match or a zero value.
type Projection struct{}

func (Projection) Arity() int     { return 1 }
func (Projection) UsesHash() bool { return true }

func (Projection) PropagateHash(parentHashes []nodehash.Hash) nodehash.Hash {
	children := parentHashes[0].Children()
	var real nodehash.Hash
	found := 0
	for _, c := range children {
		if !c.IsNothing() {
			real = c
			found++
		}
	}
	if found != 1 {
		panic(&IdentifierError{Op: "projection", Key: found})
	}
	return real
}

func (Projection) ComputeMask(parentHashes []nodehash.Hash, output nodehash.Hash) graph.Mask {
	return graph.FullMask(1)
}

func (Projection) EvaluateMasked(args []any, mask graph.Mask, output nodehash.Hash) (any, error) {
	tuple, ok := args[0].([]any)
	if !ok {
		return nil, &IdentifierError{Op: "projection", Key: 0}
	}
	var real any
	found := 0
	for _, v := range tuple {
		if !graph.IsNothing(v) {
			real = v
			found++
		}
	}
	if found != 1 {
		return nil, &IdentifierError{Op: "projection", Key: found}
	}
	return real, nil
}

func (Projection) HashGraph(parentHashes []nodehash.Hash) nodehash.Hash {
	return nodehash.FromHashNodes(nodehash.KindFunction, parentHashes...)
}

// NewProjection wraps a Projection edge as a graph.Edge.
func NewProjection() graph.Edge {
	return graph.FromMaskEdge(Projection{})
}
