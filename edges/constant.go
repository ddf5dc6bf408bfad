package edges

import (
	"github.com/samokhinv/connectome-go/graph"
	"github.com/samokhinv/connectome-go/nodehash"
)

// Constant is a zero-arity edge: its hash and value are fixed at
// construction, independent of any graph input. It is how literal values
// enter a graph without being declared as inputs.
type Constant struct{ Value any }

func (Constant) Arity() int     { return 0 }
func (Constant) UsesHash() bool { return false }

func (c Constant) PropagateHash(parentHashes []nodehash.Hash) nodehash.Hash {
	return nodehash.FromLeaf(c.Value)
}

func (Constant) ComputeMask(parentHashes []nodehash.Hash, output nodehash.Hash) graph.Mask {
	return nil
}

func (c Constant) EvaluateMasked(args []any, mask graph.Mask, output nodehash.Hash) (any, error) {
	return c.Value, nil
}

func (c Constant) HashGraph(parentHashes []nodehash.Hash) nodehash.Hash {
	return nodehash.FromLeaf(c.Value)
}

// NewConstant wraps a Constant as a graph.Edge.
func NewConstant(value any) graph.Edge { return graph.FromMaskEdge(Constant{Value: value}) }
