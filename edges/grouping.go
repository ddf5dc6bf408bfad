package edges

import (
	"github.com/samokhinv/connectome-go/graph"
	"github.com/samokhinv/connectome-go/nodehash"
)

// Grouping is Mapping's consumer: given a new (post-grouping) id and the
// mapping produced by a Mapping edge — `{key -> sorted tuple of old ids}` —
// it looks up the class for new-id and evaluates the wrapped subgraph once
// per old-id in that class, returning the ordered slice of results
// (spec.md §4.3). Arity 2: parent 0 is the new-id, parent 1 is the mapping.
type Grouping struct {
	Subgraph *graph.Graph
}

func (Grouping) Arity() int     { return 2 }
func (Grouping) UsesHash() bool { return true }

func (g Grouping) PropagateHash(parentHashes []nodehash.Hash) nodehash.Hash {
	return nodehash.FromHashNodes(nodehash.KindGrouping, append(append([]nodehash.Hash{}, parentHashes...), g.Subgraph.Hash())...)
}

func (Grouping) ComputeMask(parentHashes []nodehash.Hash, output nodehash.Hash) graph.Mask {
	return graph.FullMask(2)
}

func (g Grouping) EvaluateMasked(args []any, mask graph.Mask, output nodehash.Hash) (any, error) {
	newID := args[0]
	mapping, ok := args[1].(map[any][]any)
	if !ok {
		return nil, &IdentifierError{Op: "grouping", Key: args[1]}
	}
	members, ok := mapping[newID]
	if !ok {
		return nil, &IdentifierError{Op: "grouping", Key: newID}
	}

	results := make([]any, 0, len(members))
	for _, oldID := range members {
		v, err := g.Subgraph.Call(oldID)
		if err != nil {
			return nil, err
		}
		results = append(results, v)
	}
	return results, nil
}

func (g Grouping) HashGraph(parentHashes []nodehash.Hash) nodehash.Hash {
	return nodehash.FromHashNodes(nodehash.KindGrouping, append(append([]nodehash.Hash{}, parentHashes...), g.Subgraph.Hash())...)
}

// NewGrouping wraps subgraph as a graph.Edge consuming (new-id, mapping).
func NewGrouping(subgraph *graph.Graph) graph.Edge {
	return graph.FromMaskEdge(Grouping{Subgraph: subgraph})
}
