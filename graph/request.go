package graph

import "github.com/samokhinv/connectome-go/nodehash"

// RequestKind distinguishes the two things an edge's program can ask the
// driver to supply: a parent's structural hash, or a parent's concrete
// value (spec.md §3/§4.2).
type RequestKind uint8

const (
	// RequestHash asks the driver to ensure the given parent's NodeHash is
	// available and hand it back.
	RequestHash RequestKind = iota
	// RequestValue asks the driver to ensure the given parent's concrete
	// value is available and hand it back.
	RequestValue
)

func (k RequestKind) String() string {
	if k == RequestValue {
		return "VALUE"
	}
	return "HASH"
}

// Request is one suspension point of an edge's Program: "give me the hash
// or value of my parent at this index".
type Request struct {
	ParentIndex int
	Kind        RequestKind
}

// Reply carries whichever of Hash/Value the driver was asked for. Only the
// field matching the Request's Kind is populated.
type Reply struct {
	Hash  nodehash.Hash
	Value any
}
