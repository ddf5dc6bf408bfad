package edges

import (
	"github.com/samokhinv/connectome-go/graph"
	"github.com/samokhinv/connectome-go/nodehash"
)

// Function applies Fn to its parents' values. Its hash folds the
// function's own identity (hashed by code pointer, see nodehash.FromLeaf)
// together with every parent's hash, so two Function nodes with the same
// Fn and the same parent hashes are indistinguishable — the basic
// memoization unit the whole engine is built on (spec.md §4.3).
type Function struct {
	N  int
	Fn func(args []any) (any, error)
}

func (f Function) Arity() int     { return f.N }
func (Function) UsesHash() bool   { return false }

func (f Function) PropagateHash(parentHashes []nodehash.Hash) nodehash.Hash {
	children := append([]nodehash.Hash{nodehash.FromLeaf(f.Fn)}, parentHashes...)
	return nodehash.FromHashNodes(nodehash.KindFunction, children...)
}

func (f Function) ComputeMask(parentHashes []nodehash.Hash, output nodehash.Hash) graph.Mask {
	return graph.FullMask(f.N)
}

func (f Function) EvaluateMasked(args []any, mask graph.Mask, output nodehash.Hash) (any, error) {
	return f.Fn(args)
}

func (f Function) HashGraph(parentHashes []nodehash.Hash) nodehash.Hash {
	return nodehash.FromHashNodes(nodehash.KindFunction, parentHashes...)
}

// NewFunction wraps a Function as a graph.Edge.
func NewFunction(arity int, fn func(args []any) (any, error)) graph.Edge {
	return graph.FromMaskEdge(Function{N: arity, Fn: fn})
}
