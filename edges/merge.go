package edges

import (
	"github.com/samokhinv/connectome-go/graph"
	"github.com/samokhinv/connectome-go/nodehash"
)

// Merge is the union combinator a switching layer relies on implicitly: its
// hash is the MERGE of all branch hashes (spec.md §4.3), and at evaluation
// time it returns whichever single branch actually produced a non-Nothing
// value. Only branches whose hash is already known not to be Nothing are
// ever requested — a Switch upstream has already pruned the rest during the
// hash pass, so Merge never pays to evaluate a branch it will discard.
type Merge struct {
	N int
}

func (m Merge) Arity() int     { return m.N }
func (Merge) UsesHash() bool   { return true }

func (Merge) PropagateHash(parentHashes []nodehash.Hash) nodehash.Hash {
	return nodehash.Merge(parentHashes...)
}

func (Merge) ComputeMask(parentHashes []nodehash.Hash, output nodehash.Hash) graph.Mask {
	var mask graph.Mask
	for i, h := range parentHashes {
		if !h.IsNothing() {
			mask = append(mask, i)
		}
	}
	return mask
}

func (Merge) EvaluateMasked(args []any, mask graph.Mask, output nodehash.Hash) (any, error) {
	for _, v := range args {
		if !graph.IsNothing(v) {
			return v, nil
		}
	}
	return graph.Nothing, nil
}

func (Merge) HashGraph(parentHashes []nodehash.Hash) nodehash.Hash {
	return nodehash.FromHashNodes(nodehash.KindMerge, parentHashes...)
}

// NewMerge wraps a Merge edge over n branches as a graph.Edge.
func NewMerge(n int) graph.Edge {
	return graph.FromMaskEdge(Merge{N: n})
}
