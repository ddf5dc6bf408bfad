package edges

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"github.com/samokhinv/connectome-go/graph"
	"github.com/samokhinv/connectome-go/nodehash"
)

// HashMapping is Mapping's counterpart for equivalence relations that
// aren't simply "equal subgraph output": two ids join the same class when
// every comparator agrees they're equivalent to the class's first member,
// rather than when a single derived value matches (spec.md §4.3). Since
// there's no single subgraph(id) output to key a class by, each class's key
// is synthesized by double-hashing the sorted digests of its members —
// sha256 twice, matching the original's reliance on a cryptographic hash
// for HashMapping keys rather than an arbitrary Go equality.
//
// Like Mapping, the result is memoized per output hash on the edge itself.
type HashMapping struct {
	Subgraph    *graph.Graph
	Comparators []func(a, b any) bool

	mu   sync.Mutex
	memo map[string]map[string][]any
}

// NewHashMapping wraps subgraph and comparators as a graph.Edge. Comparators
// must be symmetric; class membership is decided against each class's first
// member, so comparators need not be transitive for correctness, only for a
// grouping a caller would recognize as "one equivalence class".
func NewHashMapping(subgraph *graph.Graph, comparators ...func(a, b any) bool) graph.Edge {
	return graph.FromMaskEdge(&HashMapping{Subgraph: subgraph, Comparators: comparators, memo: map[string]map[string][]any{}})
}

func (*HashMapping) Arity() int     { return 1 }
func (*HashMapping) UsesHash() bool { return true }

func (h *HashMapping) PropagateHash(parentHashes []nodehash.Hash) nodehash.Hash {
	children := append([]nodehash.Hash{}, parentHashes...)
	children = append(children, h.Subgraph.Hash())
	for _, cmp := range h.Comparators {
		children = append(children, nodehash.FromLeaf(cmp))
	}
	return nodehash.FromHashNodes(nodehash.KindMultiMapping, children...)
}

func (h *HashMapping) ComputeMask(parentHashes []nodehash.Hash, output nodehash.Hash) graph.Mask {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.memo[output.Hex()]; ok {
		return nil
	}
	return graph.FullMask(1)
}

func (h *HashMapping) EvaluateMasked(args []any, mask graph.Mask, output nodehash.Hash) (any, error) {
	key := output.Hex()

	h.mu.Lock()
	if cached, ok := h.memo[key]; ok {
		h.mu.Unlock()
		return cached, nil
	}
	h.mu.Unlock()

	ids, ok := args[0].([]any)
	if !ok {
		return nil, &IdentifierError{Op: "hashmapping", Key: args[0]}
	}

	var classes [][]any
	for _, id := range ids {
		placed := false
		for i, class := range classes {
			if h.equivalent(class[0], id) {
				classes[i] = append(classes[i], id)
				placed = true
				break
			}
		}
		if !placed {
			classes = append(classes, []any{id})
		}
	}

	groups := map[string][]any{}
	for _, class := range classes {
		sortAny(class)
		groups[h.syntheticKey(class)] = class
	}

	h.mu.Lock()
	h.memo[key] = groups
	h.mu.Unlock()
	return groups, nil
}

func (h *HashMapping) equivalent(a, b any) bool {
	for _, cmp := range h.Comparators {
		if !cmp(a, b) {
			return false
		}
	}
	return true
}

// syntheticKey double-hashes the sorted member digests of a class.
func (h *HashMapping) syntheticKey(members []any) string {
	first := sha256.New()
	for _, m := range members {
		d := nodehash.FromLeaf(m).Digest()
		first.Write(d[:])
	}
	second := sha256.Sum256(first.Sum(nil))
	return hex.EncodeToString(second[:])
}

func (h *HashMapping) HashGraph(parentHashes []nodehash.Hash) nodehash.Hash {
	return h.PropagateHash(parentHashes)
}
