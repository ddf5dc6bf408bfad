package edges

import (
	"github.com/samokhinv/connectome-go/graph"
	"github.com/samokhinv/connectome-go/nodehash"
)

// Identity passes its single parent's hash and value through unchanged.
// It exists mostly as scaffolding — wiring a TreeNode between two points
// in a graph without transforming anything.
type Identity struct{}

func (Identity) Arity() int     { return 1 }
func (Identity) UsesHash() bool { return false }

func (Identity) PropagateHash(parentHashes []nodehash.Hash) nodehash.Hash {
	return parentHashes[0]
}

func (Identity) ComputeMask(parentHashes []nodehash.Hash, output nodehash.Hash) graph.Mask {
	return graph.FullMask(1)
}

func (Identity) EvaluateMasked(args []any, mask graph.Mask, output nodehash.Hash) (any, error) {
	return args[0], nil
}

func (Identity) HashGraph(parentHashes []nodehash.Hash) nodehash.Hash {
	return nodehash.FromHashNodes(nodehash.KindFunction, parentHashes...)
}

// NewIdentity wraps Identity as a graph.Edge.
func NewIdentity() graph.Edge { return graph.FromMaskEdge(Identity{}) }
