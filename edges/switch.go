package edges

import (
	"github.com/samokhinv/connectome-go/graph"
	"github.com/samokhinv/connectome-go/nodehash"
)

// Switch replaces its parent's hash with the dedicated Nothing hash
// whenever Selector rejects the parent's leaf payload, filtering it out of
// the graph entirely downstream (spec.md §4.3's single-parent Switch,
// distinct from MultiInputSwitch's multi-branch routing). Selector receives
// the parent hash's Data(), which is nil for a composite hash, so a
// composite parent is kept or filtered by what Selector returns for nil.
type Switch struct {
	Selector func(data any) bool
}

func (Switch) Arity() int     { return 1 }
func (Switch) UsesHash() bool { return true }

func (s Switch) PropagateHash(parentHashes []nodehash.Hash) nodehash.Hash {
	h := parentHashes[0]
	if !s.Selector(h.Data()) {
		return nodehash.Nothing()
	}
	return h
}

func (Switch) ComputeMask(parentHashes []nodehash.Hash, output nodehash.Hash) graph.Mask {
	if output.IsNothing() {
		return nil
	}
	return graph.FullMask(1)
}

func (Switch) EvaluateMasked(args []any, mask graph.Mask, output nodehash.Hash) (any, error) {
	if len(args) == 0 {
		return graph.Nothing, nil
	}
	return args[0], nil
}

func (Switch) HashGraph(parentHashes []nodehash.Hash) nodehash.Hash {
	return nodehash.FromHashNodes(nodehash.KindSwitch, parentHashes...)
}

// NewSwitch wraps a Switch edge as a graph.Edge.
func NewSwitch(selector func(data any) bool) graph.Edge {
	return graph.FromMaskEdge(Switch{Selector: selector})
}
