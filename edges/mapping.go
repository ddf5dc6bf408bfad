package edges

import (
	"sort"
	"sync"

	"github.com/samokhinv/connectome-go/graph"
	"github.com/samokhinv/connectome-go/nodehash"
)

// Mapping groups a collection of identifiers by the value a wrapped
// subgraph produces for each of them, building `{subgraph(id) -> sorted
// tuple of ids}` (spec.md §4.3). It is stateful: once evaluated for a given
// output hash, the result is memoized on the edge itself and ComputeMask
// reports an empty mask thereafter, so a repeated call with the same ids
// and the same subgraph never re-evaluates the subgraph at all.
//
// The memo is keyed by output hash rather than by the raw id collection,
// matching PropagateHash folding the subgraph's own structural hash in:
// two different subgraphs never collide on the same memo entry even if
// given the same ids.
type Mapping struct {
	Subgraph *graph.Graph

	mu   sync.Mutex
	memo map[string]map[any][]any
}

// NewMapping wraps subgraph (a single-input id -> key graph) as a graph.Edge.
func NewMapping(subgraph *graph.Graph) graph.Edge {
	return graph.FromMaskEdge(&Mapping{Subgraph: subgraph, memo: map[string]map[any][]any{}})
}

func (*Mapping) Arity() int     { return 1 }
func (*Mapping) UsesHash() bool { return true }

func (m *Mapping) PropagateHash(parentHashes []nodehash.Hash) nodehash.Hash {
	return nodehash.FromHashNodes(nodehash.KindMapping, parentHashes[0], m.Subgraph.Hash())
}

func (m *Mapping) ComputeMask(parentHashes []nodehash.Hash, output nodehash.Hash) graph.Mask {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.memo[output.Hex()]; ok {
		return nil
	}
	return graph.FullMask(1)
}

func (m *Mapping) EvaluateMasked(args []any, mask graph.Mask, output nodehash.Hash) (any, error) {
	key := output.Hex()

	m.mu.Lock()
	if cached, ok := m.memo[key]; ok {
		m.mu.Unlock()
		return cached, nil
	}
	m.mu.Unlock()

	ids, ok := args[0].([]any)
	if !ok {
		return nil, &IdentifierError{Op: "mapping", Key: args[0]}
	}

	groups := map[any][]any{}
	for _, id := range ids {
		group, err := m.Subgraph.Call(id)
		if err != nil {
			return nil, err
		}
		groups[group] = append(groups[group], id)
	}
	for _, members := range groups {
		sortAny(members)
	}

	m.mu.Lock()
	m.memo[key] = groups
	m.mu.Unlock()
	return groups, nil
}

func (m *Mapping) HashGraph(parentHashes []nodehash.Hash) nodehash.Hash {
	return nodehash.FromHashNodes(nodehash.KindMapping, append(append([]nodehash.Hash{}, parentHashes...), m.Subgraph.Hash())...)
}

// sortAny orders a []any of comparable ids deterministically, falling back
// to a string-repr comparison for ids the cheap comparisons don't cover.
func sortAny(ids []any) {
	sort.Slice(ids, func(i, j int) bool {
		return lessAny(ids[i], ids[j])
	})
}

func lessAny(a, b any) bool {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return av < bv
		}
	case int:
		if bv, ok := b.(int); ok {
			return av < bv
		}
	case int64:
		if bv, ok := b.(int64); ok {
			return av < bv
		}
	}
	return nodehash.FromLeaf(a).Hex() < nodehash.FromLeaf(b).Hex()
}
