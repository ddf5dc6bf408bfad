package graph

import "github.com/samokhinv/connectome-go/nodehash"

// Program is the re-expression of the edge generator protocol described in
// spec.md §9's design notes as an explicit state machine rather than a
// coroutine: Begin starts it, Resume feeds back the reply to the
// previously returned Request. Both return (Request, more); more == false
// means the Request is meaningless and the program is finished, so the
// driver should call Result instead of dispatching another request.
//
// A Program is single-threaded and single-use: drive it to completion
// before discarding it, and never call Begin twice.
type Program interface {
	Begin() (Request, bool)
	Resume(reply Reply) (Request, bool)
}

// HashProgram drives the hash phase of one TreeNode's evaluation. Its
// Result is the node's output hash plus an opaque payload the driver must
// hand back unchanged to Edge.Evaluate.
type HashProgram interface {
	Program
	Result() (nodehash.Hash, any)
}

// EvalProgram drives the evaluate phase of one TreeNode's evaluation,
// given the output hash and payload produced by the matching HashProgram.
type EvalProgram interface {
	Program
	Result() any
}

// Edge is the behavior bound to a TreeNode: how many parents it takes,
// whether its hash phase ever needs a parent's concrete value, how to fold
// parent hashes into an output hash, how to evaluate given that hash, and
// how to fold parent hashes into a pure graph-shape hash (spec.md §4.2,
// §4.3's per-edge table; C3).
type Edge interface {
	// Arity is the fixed number of parents this edge takes.
	Arity() int
	// UsesHash reports whether this edge's NodeHash is tagged as
	// structurally significant (distinguishes e.g. Mapping's MAPPING kind
	// from a plain FUNCTION kind) — purely descriptive; the evaluator and
	// the built-in edges never consult it.
	UsesHash() bool
	// ComputeHash returns a fresh HashProgram for one evaluation of this
	// edge's hash phase.
	ComputeHash() HashProgram
	// Evaluate returns a fresh EvalProgram for this edge's value phase,
	// given the (hash, payload) produced by a HashProgram run to
	// completion.
	Evaluate(output nodehash.Hash, payload any) EvalProgram
	// HashGraph folds parentHashes — which, for a graph-shape hash, are
	// shape hashes rather than value hashes — into this edge's
	// contribution to Graph.Hash.
	HashGraph(parentHashes []nodehash.Hash) nodehash.Hash
}
