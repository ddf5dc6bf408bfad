package graph

import "github.com/samokhinv/connectome-go/nodehash"

// MaskEdge is the shape shared by most built-in edges (spec.md §4.3):
// the hash phase always requests every parent's hash, folds them into an
// output hash, then decides — from that same information — which parent
// indices the evaluate phase will need values for. FromMaskEdge adapts a
// MaskEdge into a full Edge, handling the request/resume bookkeeping so
// individual edges only implement the three pure decision points.
//
// Edges whose hash phase needs a parent's concrete *value* before it can
// even decide which other parents to hash (edges.MultiInputSwitch) do not
// fit this shape and implement Edge directly.
type MaskEdge interface {
	Arity() int
	UsesHash() bool
	// PropagateHash folds all of this edge's parents' hashes, in order,
	// into the node's output hash.
	PropagateHash(parentHashes []nodehash.Hash) nodehash.Hash
	// ComputeMask decides, now that the output hash is known, which parent
	// indices need values fetched for EvaluateMasked.
	ComputeMask(parentHashes []nodehash.Hash, output nodehash.Hash) Mask
	// EvaluateMasked computes the node's value from the values of the
	// masked parents (args[i] is the value of parent mask[i]).
	EvaluateMasked(args []any, mask Mask, output nodehash.Hash) (any, error)
	HashGraph(parentHashes []nodehash.Hash) nodehash.Hash
}

// FromMaskEdge adapts me into an Edge.
func FromMaskEdge(me MaskEdge) Edge { return &maskEdgeAdapter{me: me} }

type maskEdgeAdapter struct{ me MaskEdge }

func (a *maskEdgeAdapter) Arity() int      { return a.me.Arity() }
func (a *maskEdgeAdapter) UsesHash() bool  { return a.me.UsesHash() }
func (a *maskEdgeAdapter) ComputeHash() HashProgram {
	return &maskHashProgram{me: a.me, arity: a.me.Arity()}
}
func (a *maskEdgeAdapter) Evaluate(output nodehash.Hash, payload any) EvalProgram {
	mask, _ := payload.(Mask)
	return &maskEvalProgram{me: a.me, output: output, mask: mask}
}
func (a *maskEdgeAdapter) HashGraph(parentHashes []nodehash.Hash) nodehash.Hash {
	return a.me.HashGraph(parentHashes)
}

type maskHashProgram struct {
	me      MaskEdge
	arity   int
	idx     int
	hashes  []nodehash.Hash
	result  nodehash.Hash
	payload any
}

func (p *maskHashProgram) Begin() (Request, bool) {
	if p.arity == 0 {
		p.finish()
		return Request{}, false
	}
	return Request{ParentIndex: 0, Kind: RequestHash}, true
}

func (p *maskHashProgram) Resume(reply Reply) (Request, bool) {
	p.hashes = append(p.hashes, reply.Hash)
	p.idx++
	if p.idx < p.arity {
		return Request{ParentIndex: p.idx, Kind: RequestHash}, true
	}
	p.finish()
	return Request{}, false
}

func (p *maskHashProgram) finish() {
	output := p.me.PropagateHash(p.hashes)
	mask := p.me.ComputeMask(p.hashes, output)
	p.result, p.payload = output, mask
}

func (p *maskHashProgram) Result() (nodehash.Hash, any) { return p.result, p.payload }

type maskEvalProgram struct {
	me     MaskEdge
	output nodehash.Hash
	mask   Mask
	idx    int
	args   []any
	result any
}

func (p *maskEvalProgram) Begin() (Request, bool) {
	if len(p.mask) == 0 {
		p.finish()
		return Request{}, false
	}
	return Request{ParentIndex: p.mask[0], Kind: RequestValue}, true
}

func (p *maskEvalProgram) Resume(reply Reply) (Request, bool) {
	p.args = append(p.args, reply.Value)
	p.idx++
	if p.idx < len(p.mask) {
		return Request{ParentIndex: p.mask[p.idx], Kind: RequestValue}, true
	}
	p.finish()
	return Request{}, false
}

func (p *maskEvalProgram) finish() {
	v, err := p.me.EvaluateMasked(p.args, p.mask, p.output)
	if err != nil {
		panic(err)
	}
	p.result = v
}

func (p *maskEvalProgram) Result() any { return p.result }
