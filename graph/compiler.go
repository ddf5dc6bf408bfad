package graph

import (
	"sort"

	"github.com/samokhinv/connectome-go/nodehash"
)

// color marks a node during cycle detection: white (unvisited), gray (on
// the current DFS stack), black (fully processed) — spec.md §9's design
// note on validating the graph before compiling it.
type color uint8

const (
	white color = iota
	gray
	black
)

func validate(inputSet map[*TreeNode]bool, output *TreeNode) error {
	colors := make(map[*TreeNode]color)
	var visit func(n *TreeNode) error
	visit = func(n *TreeNode) error {
		if inputSet[n] {
			return nil
		}
		if n.IsLeaf() {
			return structuralf("leaf node %q is not among the declared inputs", n.name)
		}
		switch colors[n] {
		case gray:
			return structuralf("cycle detected at node %q", n.name)
		case black:
			return nil
		}
		colors[n] = gray
		if n.edge.Arity() != len(n.parents) {
			return structuralf("node %q: edge arity %d does not match %d parents", n.name, n.edge.Arity(), len(n.parents))
		}
		for _, p := range n.parents {
			if err := visit(p); err != nil {
				return err
			}
		}
		colors[n] = black
		return nil
	}
	return visit(output)
}

// countEntries returns, for every TreeNode reachable from output, one
// count for being the final requested output plus one per distinct
// parent-slot that references it, with each node's own subtree counted
// exactly once (memoized traversal). See DESIGN.md's resolution of the
// reference-counting open question for why this departs from a naive
// non-memoized traversal.
//
// The same counts are used to seed both the hash cache and the value
// cache. A node's hash entry is used up by its children's hash phases, so
// when its value is needed afterwards its hash phase runs again and the
// re-inserted entry can end the call with count outstanding. Some edges
// (a MultiInputSwitch's untaken branches, a CacheEdge's hit path) also
// never touch every statically reachable parent. Evaluator sweeps any
// such leftover entries at the end of a call so both caches still
// reliably drain to empty (Testable Property 4).
func countEntries(output *TreeNode) map[*TreeNode]int {
	counts := map[*TreeNode]int{output: 1}
	visited := map[*TreeNode]bool{}
	var visit func(n *TreeNode)
	visit = func(n *TreeNode) {
		if visited[n] {
			return
		}
		visited[n] = true
		if n.IsLeaf() {
			return
		}
		for _, p := range n.parents {
			counts[p]++
			visit(p)
		}
	}
	visit(output)
	return counts
}

// Graph is a compiled, ready-to-evaluate dependency graph (spec.md §4.4,
// C4). Construct with Compile.
type Graph struct {
	inputs  []*TreeNode
	output  *TreeNode
	counts  map[*TreeNode]int
	byName  map[string]int
	metrics Metrics
}

// Compile validates that every leaf reachable from output is listed in
// inputs and that the graph is acyclic, then computes reference counts and
// filters inputs down to those actually reachable (sorted by name, giving
// the graph a stable named-argument signature for Graph.Call).
func Compile(inputs []*TreeNode, output *TreeNode) (*Graph, error) {
	inputSet := make(map[*TreeNode]bool, len(inputs))
	for _, n := range inputs {
		inputSet[n] = true
	}
	if err := validate(inputSet, output); err != nil {
		return nil, err
	}

	counts := countEntries(output)

	filtered := make([]*TreeNode, 0, len(inputs))
	for _, n := range inputs {
		if counts[n] > 0 {
			filtered = append(filtered, n)
		}
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].name < filtered[j].name })

	byName := make(map[string]int, len(filtered))
	for i, n := range filtered {
		if _, dup := byName[n.name]; dup {
			return nil, structuralf("duplicate input name %q", n.name)
		}
		byName[n.name] = i
	}

	return &Graph{inputs: filtered, output: output, counts: counts, byName: byName, metrics: NoopMetrics{}}, nil
}

// Inputs returns the graph's filtered, name-sorted input list — the
// positional signature Graph.Call expects.
func (g *Graph) Inputs() []*TreeNode { return g.inputs }

// WithMetrics attaches a Metrics sink, replacing the default no-op one.
func (g *Graph) WithMetrics(m Metrics) *Graph {
	g.metrics = m
	return g
}

// graphPlaceholder is the single shared leaf used by Hash in place of every
// real input, so the resulting hash reflects only the graph's shape.
type graphPlaceholder struct{}

// Hash computes a structural, input-value-independent hash of the graph's
// shape: every leaf hashes to one shared placeholder, and every non-leaf's
// contribution comes from its edge's HashGraph (spec.md §4.4's "Graph
// shape hash"). Two graphs built from differently-named or
// differently-valued inputs but the same edge/arity structure hash equal.
func (g *Graph) Hash() nodehash.Hash {
	placeholder := nodehash.FromLeaf(graphPlaceholder{})
	memo := map[*TreeNode]nodehash.Hash{}
	var visit func(n *TreeNode) nodehash.Hash
	visit = func(n *TreeNode) nodehash.Hash {
		if h, ok := memo[n]; ok {
			return h
		}
		var h nodehash.Hash
		if n.IsLeaf() {
			h = placeholder
		} else {
			parentHashes := make([]nodehash.Hash, len(n.parents))
			for i, p := range n.parents {
				parentHashes[i] = visit(p)
			}
			h = n.edge.HashGraph(parentHashes)
		}
		memo[n] = h
		return h
	}
	shape := visit(g.output)
	return nodehash.FromHashNodes(nodehash.KindGraph, shape)
}
