package graph

import (
	"fmt"

	"github.com/samokhinv/connectome-go/evictcache"
	"github.com/samokhinv/connectome-go/nodehash"
)

// call is one evaluation of a Graph against a fixed set of input values. It
// owns the two reference-counted caches (C6) and the persistent payload
// side table a HashProgram's result must survive into the matching
// EvalProgram (spec.md §4.5, C5).
type call struct {
	g        *Graph
	args     map[*TreeNode]any
	hashes   *evictcache.Cache[*TreeNode, nodehash.Hash]
	values   *evictcache.Cache[*TreeNode, any]
	payloads map[*TreeNode]any
}

func newCall(g *Graph, args map[*TreeNode]any) *call {
	return &call{
		g:        g,
		args:     args,
		hashes:   evictcache.New[*TreeNode, nodehash.Hash](g.counts),
		values:   evictcache.New[*TreeNode, any](g.counts),
		payloads: map[*TreeNode]any{},
	}
}

// ensureHash computes (memoized) and returns node's output hash, consuming
// one unit of its reference count. The named returns exist so the deferred
// recover can surface an edge panic as the function's actual error even
// though control never reaches an explicit return statement in that case.
func (c *call) ensureHash(node *TreeNode) (result nodehash.Hash, err error) {
	if c.hashes.Contains(node) {
		return c.hashes.Get(node), nil
	}

	if node.IsLeaf() {
		v, ok := c.args[node]
		if !ok {
			return nodehash.Hash{}, fmt.Errorf("graph: no value supplied for input %q", node.name)
		}
		c.hashes.Insert(node, nodehash.FromLeaf(v))
		c.payloads[node] = v
		return c.hashes.Get(node), nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = &EvaluationError{Node: node.name, Cause: asError(r)}
		}
	}()

	prog := node.edge.ComputeHash()
	if _, derr := c.drive(node, prog.Begin, prog.Resume); derr != nil {
		return nodehash.Hash{}, derr
	}
	out, payload := prog.Result()
	c.hashes.Insert(node, out)
	c.payloads[node] = payload
	c.g.metrics.HashComputed(node.name)
	return c.hashes.Get(node), nil
}

// ensureValue computes (memoized) and returns node's value, consuming one
// unit of its reference count.
func (c *call) ensureValue(node *TreeNode) (result any, err error) {
	if c.values.Contains(node) {
		return c.values.Get(node), nil
	}

	if node.IsLeaf() {
		v, ok := c.args[node]
		if !ok {
			return nil, fmt.Errorf("graph: no value supplied for input %q", node.name)
		}
		c.values.Insert(node, v)
		return c.values.Get(node), nil
	}

	h, herr := c.ensureHash(node)
	if herr != nil {
		return nil, herr
	}
	payload := c.payloads[node]

	defer func() {
		if r := recover(); r != nil {
			err = &EvaluationError{Node: node.name, Cause: asError(r)}
		}
	}()

	prog := node.edge.Evaluate(h, payload)
	if _, derr := c.drive(node, prog.Begin, prog.Resume); derr != nil {
		return nil, derr
	}
	out := prog.Result()
	c.values.Insert(node, out)
	c.g.metrics.ValueComputed(node.name)
	return c.values.Get(node), nil
}

// drive pumps a Program to completion, satisfying each Request against
// node's parents via ensureHash/ensureValue. The return value is unused by
// callers (Result() is consulted separately) but keeping the signature
// uniform lets both ComputeHash's and Evaluate's programs share this loop.
func (c *call) drive(node *TreeNode, begin func() (Request, bool), resume func(Reply) (Request, bool)) (nodehash.Hash, error) {
	req, more := begin()
	for more {
		parent := node.parents[req.ParentIndex]
		var reply Reply
		switch req.Kind {
		case RequestHash:
			h, err := c.ensureHash(parent)
			if err != nil {
				return nodehash.Hash{}, err
			}
			reply = Reply{Hash: h}
		case RequestValue:
			v, err := c.ensureValue(parent)
			if err != nil {
				return nodehash.Hash{}, err
			}
			reply = Reply{Value: v}
		}
		req, more = resume(reply)
	}
	return nodehash.Hash{}, nil
}

func asError(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("%v", r)
}

// bind maps a graph's positional or named input values onto its filtered
// TreeNode input list.
func (g *Graph) bind(values []any) (map[*TreeNode]any, error) {
	if len(values) != len(g.inputs) {
		return nil, structuralf("graph expects %d input values, got %d", len(g.inputs), len(values))
	}
	args := make(map[*TreeNode]any, len(values))
	for i, n := range g.inputs {
		args[n] = values[i]
	}
	return args, nil
}

// bindNamed maps a name->value map onto the graph's inputs, requiring an
// exact match against the filtered, reachable input set.
func (g *Graph) bindNamed(values map[string]any) (map[*TreeNode]any, error) {
	if len(values) != len(g.inputs) {
		return nil, structuralf("graph expects %d named input values, got %d", len(g.inputs), len(values))
	}
	args := make(map[*TreeNode]any, len(values))
	for _, n := range g.inputs {
		v, ok := values[n.name]
		if !ok {
			return nil, structuralf("missing value for input %q", n.name)
		}
		args[n] = v
	}
	return args, nil
}

// Call evaluates the graph end to end against positional input values
// (ordered per Inputs()), returning the output's concrete value.
func (g *Graph) Call(values ...any) (any, error) {
	args, err := g.bind(values)
	if err != nil {
		return nil, err
	}
	return g.run(args)
}

// CallNamed evaluates the graph against named input values.
func (g *Graph) CallNamed(values map[string]any) (any, error) {
	args, err := g.bindNamed(values)
	if err != nil {
		return nil, err
	}
	return g.run(args)
}

// GetHash computes only the output's NodeHash, without evaluating it —
// the hash-only half of C5's two-pass protocol.
func (g *Graph) GetHash(values ...any) (nodehash.Hash, error) {
	args, err := g.bind(values)
	if err != nil {
		return nodehash.Hash{}, err
	}
	c := newCall(g, args)
	h, err := c.ensureHash(g.output)
	c.hashes.Clear()
	c.values.Clear()
	return h, err
}

func (g *Graph) run(args map[*TreeNode]any) (any, error) {
	c := newCall(g, args)
	v, err := c.ensureValue(g.output)
	// Sweep any leftover entries: dynamic branches (a MultiInputSwitch's
	// untaken arm, a cache hit) can leave the static upper-bound count on
	// a shared node undrained even though every real consultation
	// happened — see countEntries' doc comment and DESIGN.md.
	c.hashes.Clear()
	c.values.Clear()
	return v, err
}
