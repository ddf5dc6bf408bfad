package edges

import (
	"github.com/samokhinv/connectome-go/graph"
	"github.com/samokhinv/connectome-go/nodehash"
)

// Product bundles its parents' values into an ordered tuple ([]any),
// preserving argument order (never commutative — spec.md §4.1's "structural
// equality never assumes commutativity").
type Product struct{ N int }

func (p Product) Arity() int     { return p.N }
func (Product) UsesHash() bool   { return false }

func (p Product) PropagateHash(parentHashes []nodehash.Hash) nodehash.Hash {
	return nodehash.FromHashNodes(nodehash.KindProduct, parentHashes...)
}

func (p Product) ComputeMask(parentHashes []nodehash.Hash, output nodehash.Hash) graph.Mask {
	return graph.FullMask(p.N)
}

func (p Product) EvaluateMasked(args []any, mask graph.Mask, output nodehash.Hash) (any, error) {
	tuple := make([]any, len(args))
	copy(tuple, args)
	return tuple, nil
}

func (p Product) HashGraph(parentHashes []nodehash.Hash) nodehash.Hash {
	return nodehash.FromHashNodes(nodehash.KindProduct, parentHashes...)
}

// NewProduct wraps a Product as a graph.Edge.
func NewProduct(arity int) graph.Edge { return graph.FromMaskEdge(Product{N: arity}) }
