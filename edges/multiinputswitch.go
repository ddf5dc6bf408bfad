package edges

import (
	"github.com/samokhinv/connectome-go/graph"
	"github.com/samokhinv/connectome-go/nodehash"
)

// MultiInputSwitch is the one built-in edge that cannot be expressed as a
// MaskEdge: it must see its key parent's concrete *value* before it even
// knows which other parent's *hash* to ask for next (spec.md §4.3's table:
// "first yields key value, looks up branch index i, then yields branch i's
// hash"). Every other built-in decides its mask from hashes alone.
//
// Parent 0 is the key; parents 1..N are the branches, selected by looking
// up the key's value in IndexMap.
type MultiInputSwitch struct {
	Branches int
	IndexMap map[any]int
}

// NewMultiInputSwitch wraps a MultiInputSwitch edge as a graph.Edge.
func NewMultiInputSwitch(branches int, indexMap map[any]int) graph.Edge {
	return &MultiInputSwitch{Branches: branches, IndexMap: indexMap}
}

func (s *MultiInputSwitch) Arity() int     { return s.Branches + 1 }
func (s *MultiInputSwitch) UsesHash() bool { return true }

func (s *MultiInputSwitch) branchIndex(key any) int {
	idx, ok := s.IndexMap[key]
	if !ok || idx < 0 || idx >= s.Branches {
		panic(&IdentifierError{Op: "multiinputswitch", Key: key})
	}
	return idx + 1
}

func (s *MultiInputSwitch) ComputeHash() graph.HashProgram {
	return &misHashProgram{s: s}
}

func (s *MultiInputSwitch) Evaluate(output nodehash.Hash, payload any) graph.EvalProgram {
	return &misEvalProgram{parentIndex: payload.(int)}
}

func (s *MultiInputSwitch) HashGraph(parentHashes []nodehash.Hash) nodehash.Hash {
	return nodehash.FromHashNodes(nodehash.KindSwitch, parentHashes...)
}

type misHashStep int

const (
	misAwaitKey misHashStep = iota
	misAwaitBranchHash
	misDone
)

// misHashProgram drives the hash phase: fetch the key's value, pick a
// branch by IndexMap, then fetch that branch's hash and pass it through.
type misHashProgram struct {
	s           *MultiInputSwitch
	step        misHashStep
	parentIndex int
	output      nodehash.Hash
}

func (p *misHashProgram) Begin() (graph.Request, bool) {
	p.step = misAwaitKey
	return graph.Request{ParentIndex: 0, Kind: graph.RequestValue}, true
}

func (p *misHashProgram) Resume(reply graph.Reply) (graph.Request, bool) {
	switch p.step {
	case misAwaitKey:
		p.parentIndex = p.s.branchIndex(reply.Value)
		p.step = misAwaitBranchHash
		return graph.Request{ParentIndex: p.parentIndex, Kind: graph.RequestHash}, true
	case misAwaitBranchHash:
		p.output = reply.Hash
		p.step = misDone
		return graph.Request{}, false
	default:
		return graph.Request{}, false
	}
}

func (p *misHashProgram) Result() (nodehash.Hash, any) {
	return p.output, p.parentIndex
}

// misEvalProgram drives the evaluate phase: the chosen branch's index was
// carried over as payload from the hash phase, so this only ever needs that
// one branch's value.
type misEvalProgram struct {
	parentIndex int
	done        bool
	value       any
}

func (p *misEvalProgram) Begin() (graph.Request, bool) {
	return graph.Request{ParentIndex: p.parentIndex, Kind: graph.RequestValue}, true
}

func (p *misEvalProgram) Resume(reply graph.Reply) (graph.Request, bool) {
	p.value = reply.Value
	p.done = true
	return graph.Request{}, false
}

func (p *misEvalProgram) Result() any {
	return p.value
}
