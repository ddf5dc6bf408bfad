// Package layer is a thin fluent surface over the graph engine — Build,
// Pipeline, Switch and GroupBy compose graph.TreeNodes the way a real
// caller would, without ever touching graph.TreeNode or edges directly.
// It is explicitly illustrative, not part of the core engine: the scenario
// tests are its only consumers.
package layer

import (
	"fmt"
	"reflect"
	"time"

	"github.com/samokhinv/connectome-go/backend"
	"github.com/samokhinv/connectome-go/edges"
	"github.com/samokhinv/connectome-go/graph"
	"github.com/samokhinv/connectome-go/nodehash"
)

// Layer is a named, composable unit of computation: Inputs lists the free
// input names it still needs, and mk builds its TreeNode given those
// inputs resolved, in the same order, to concrete parent TreeNodes.
//
// Go has no runtime access to a function's parameter names, unlike the
// Python `layer_builder.build_layer` fixture this is modeled on — Build
// infers arity from fn's reflected type but still takes names explicitly.
type Layer struct {
	Name   string
	Inputs []string
	mk     func(parents []*graph.TreeNode) *graph.TreeNode
}

// Build wraps fn (any func of N arguments returning (V) or (V, error)) as a
// single-node Layer named name, with inputs bound to fn's parameters in
// order by the given names.
func Build(name string, inputs []string, fn any) Layer {
	fv := reflect.ValueOf(fn)
	ft := fv.Type()
	if ft.Kind() != reflect.Func {
		panic(fmt.Sprintf("layer: Build(%q): fn is not a function", name))
	}
	if ft.NumIn() != len(inputs) {
		panic(fmt.Sprintf("layer: Build(%q): fn takes %d args, %d input names given", name, ft.NumIn(), len(inputs)))
	}

	call := func(args []any) (any, error) {
		in := make([]reflect.Value, len(args))
		for i, a := range args {
			in[i] = reflect.ValueOf(a).Convert(ft.In(i))
		}
		out := fv.Call(in)
		switch len(out) {
		case 1:
			return out[0].Interface(), nil
		case 2:
			if errv := out[1].Interface(); errv != nil {
				return out[0].Interface(), errv.(error)
			}
			return out[0].Interface(), nil
		default:
			panic(fmt.Sprintf("layer: Build(%q): fn must return (value) or (value, error)", name))
		}
	}

	return Layer{
		Name:   name,
		Inputs: append([]string{}, inputs...),
		mk: func(parents []*graph.TreeNode) *graph.TreeNode {
			return graph.NewTreeNode(name, edges.NewFunction(len(inputs), call), parents...)
		},
	}
}

// Pipeline chains layers in order: a later layer's input named after an
// earlier layer's Name is wired to that earlier layer's output rather than
// treated as a free input. Inputs never produced within the chain become
// the composite Layer's own Inputs, in first-seen order.
func Pipeline(layers ...Layer) Layer {
	free := freeInputs(layers)
	last := layers[len(layers)-1]
	return Layer{
		Name:   last.Name,
		Inputs: free,
		mk: func(parents []*graph.TreeNode) *graph.TreeNode {
			env := make(map[string]*graph.TreeNode, len(free))
			for i, n := range free {
				env[n] = parents[i]
			}
			var out *graph.TreeNode
			for _, l := range layers {
				pnodes := resolve(l, env)
				out = l.mk(pnodes)
				env[l.Name] = out
			}
			return out
		},
	}
}

// GroupBy wraps fn (id -> key) as a Mapping layer over a collection of
// ids: calling it with an []any of ids returns {key(id) -> sorted ids}
// (spec.md §8 S6).
func GroupBy(name string, fn func(id any) (any, error)) Layer {
	sub := Build(name, []string{"id"}, func(id any) (any, error) { return fn(id) }).Graph()
	return Layer{
		Name:   name,
		Inputs: []string{"ids"},
		mk: func(parents []*graph.TreeNode) *graph.TreeNode {
			return graph.NewTreeNode(name, edges.NewMapping(sub), parents[0])
		},
	}
}

// Switch routes a keyed input through one of layers, selected by
// idToIndex[key] (spec.md §8 S5). keysName names the key input; every
// branch layer's own free inputs are merged by name into the resulting
// Layer's Inputs, alongside keysName.
func Switch(idToIndex map[string]int, keysName string, layers ...Layer) Layer {
	indexMap := make(map[any]int, len(idToIndex))
	for k, v := range idToIndex {
		indexMap[k] = v
	}

	free := []string{keysName}
	seen := map[string]bool{keysName: true}
	for _, l := range layers {
		for _, n := range l.Inputs {
			if !seen[n] {
				seen[n] = true
				free = append(free, n)
			}
		}
	}

	return Layer{
		Name:   "switch",
		Inputs: free,
		mk: func(parents []*graph.TreeNode) *graph.TreeNode {
			env := make(map[string]*graph.TreeNode, len(free))
			for i, n := range free {
				env[n] = parents[i]
			}
			branchParents := make([]*graph.TreeNode, len(layers)+1)
			branchParents[0] = env[keysName]
			for i, l := range layers {
				branchParents[i+1] = l.mk(resolve(l, env))
			}
			return graph.NewTreeNode("switch", edges.NewMultiInputSwitch(len(layers), indexMap), branchParents...)
		},
	}
}

// Cached wraps inner with a Cache edge over store, named name: a second
// call with the same inputs hits store instead of re-running inner
// (spec.md §8 S2).
func Cached(name string, store backend.Store, inner Layer) Layer {
	return Layer{
		Name:   name,
		Inputs: inner.Inputs,
		mk: func(parents []*graph.TreeNode) *graph.TreeNode {
			return graph.NewTreeNode(name, edges.NewCache(store, nil), inner.mk(parents))
		},
	}
}

// CachedWithTTL is Cached plus a per-entry expiration, honored when store
// implements backend.TTLStore (e.g. *backend.Ram) and ignored otherwise.
func CachedWithTTL(name string, store backend.Store, ttl time.Duration, inner Layer) Layer {
	return Layer{
		Name:   name,
		Inputs: inner.Inputs,
		mk: func(parents []*graph.TreeNode) *graph.TreeNode {
			return graph.NewTreeNode(name, edges.NewCacheWithTTL(store, nil, ttl), inner.mk(parents))
		},
	}
}

// Graph compiles l standalone: each of l.Inputs becomes a fresh graph
// input, named identically. Recompiled on every call — cheap enough for
// the illustrative scale this package targets.
func (l Layer) Graph() *graph.Graph {
	leaves := make([]*graph.TreeNode, len(l.Inputs))
	for i, n := range l.Inputs {
		leaves[i] = graph.NewInput(n)
	}
	out := l.mk(leaves)
	g, err := graph.Compile(leaves, out)
	if err != nil {
		panic(err)
	}
	return g
}

// Call evaluates l against positional values, matching l.Inputs sorted by
// name (graph.Graph.Call's binding convention).
func (l Layer) Call(values ...any) (any, error) { return l.Graph().Call(values...) }

// CallNamed evaluates l against named values.
func (l Layer) CallNamed(values map[string]any) (any, error) { return l.Graph().CallNamed(values) }

// Hash returns l's output hash for the given positional values.
func (l Layer) Hash(values ...any) (nodehash.Hash, error) { return l.Graph().GetHash(values...) }

func resolve(l Layer, env map[string]*graph.TreeNode) []*graph.TreeNode {
	pnodes := make([]*graph.TreeNode, len(l.Inputs))
	for i, n := range l.Inputs {
		node, ok := env[n]
		if !ok {
			panic(fmt.Sprintf("layer: %q: unresolved input %q", l.Name, n))
		}
		pnodes[i] = node
	}
	return pnodes
}

func freeInputs(layers []Layer) []string {
	produced := map[string]bool{}
	seen := map[string]bool{}
	var free []string
	for _, l := range layers {
		for _, n := range l.Inputs {
			if !produced[n] && !seen[n] {
				seen[n] = true
				free = append(free, n)
			}
		}
		produced[l.Name] = true
	}
	return free
}
