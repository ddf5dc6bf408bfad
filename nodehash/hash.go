// Package nodehash implements the structural, content-addressed identifier
// algebra used throughout the graph engine (spec.md §4.1, C1).
//
// A Hash is an immutable tagged union: a Leaf wraps a concrete payload (an
// input value, a function object, or the Nothing sentinel); a Composite
// combines child Hashes under one of a closed set of Kind tags; a Merge is
// the union of alternative Hashes produced when switching between branches.
// Equality is purely structural and is implemented as a digest comparison:
// two Hashes are equal iff their kind, children (in order) and payload
// digests are equal. Commutativity is never assumed — child order matters.
package nodehash

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"fmt"
	"reflect"
)

// Kind tags the closed set of composite forms a Hash can take.
type Kind uint8

const (
	// KindLeaf marks a Hash built from a concrete payload via FromLeaf.
	KindLeaf Kind = iota
	// KindNothing marks the dedicated hash of the Nothing sentinel, rather
	// than modeling it as leaf(Nothing) (see DESIGN.md, Open Question 2),
	// so Hash.IsNothing is a tag compare.
	KindNothing
	// KindFunction combines leaf(f) with its argument hashes.
	KindFunction
	// KindProduct combines an ordered tuple of hashes.
	KindProduct
	// KindMapping combines the group-by subgraph's hash with its inputs.
	KindMapping
	// KindGrouping combines the per-group subgraph's hash with its inputs.
	KindGrouping
	// KindMultiMapping is KindMapping's multi-comparator counterpart (HashMapping).
	KindMultiMapping
	// KindSwitch marks a switched hash (possibly replaced by KindNothing).
	KindSwitch
	// KindMerge is the union of alternative hashes used by switching layers.
	KindMerge
	// KindGraph marks a graph-shape hash (inputs replaced by a shared placeholder).
	KindGraph
)

func (k Kind) String() string {
	switch k {
	case KindLeaf:
		return "LEAF"
	case KindNothing:
		return "NOTHING"
	case KindFunction:
		return "FUNCTION"
	case KindProduct:
		return "PRODUCT"
	case KindMapping:
		return "MAPPING"
	case KindGrouping:
		return "GROUPING"
	case KindMultiMapping:
		return "MULTI_MAPPING"
	case KindSwitch:
		return "SWITCH"
	case KindMerge:
		return "MERGE"
	case KindGraph:
		return "GRAPH"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Hash is a content-addressed, structural identifier for a node's value.
//
// Hash is an immutable value type: its digest is computed once, at
// construction, from its (already-digested) children and payload, so
// repeated calls to Digest/Equal never recompute anything — the "lazily
// computed, memoized digest" spec.md §4.1 calls for, specialized to Go's
// value semantics (a Hash carries its memo, not a pointer to one, so it can
// be copied and used as a map key freely).
type Hash struct {
	kind     Kind
	children []Hash
	data     any
	digest   [32]byte
}

// FromLeaf wraps a concrete payload (an input value, a function object, or
// a sentinel) as a leaf Hash.
func FromLeaf(payload any) Hash {
	d := leafDigest(payload)
	return Hash{kind: KindLeaf, data: payload, digest: sealDigest(KindLeaf, nil, d)}
}

// Nothing returns the dedicated Hash of the Nothing sentinel.
func Nothing() Hash {
	d := leafDigest(nothingMarker{})
	return Hash{kind: KindNothing, digest: sealDigest(KindNothing, nil, d)}
}

// FromHashNodes composes children under kind into a Composite Hash.
// Child order is preserved in the digest; it is never treated as commutative.
func FromHashNodes(kind Kind, children ...Hash) Hash {
	cs := append([]Hash(nil), children...)
	return Hash{kind: kind, children: cs, digest: sealDigest(kind, cs, [32]byte{})}
}

// Merge returns the union of alternative Hashes, used by switching layers to
// describe "one of these branches, which exact one decided elsewhere".
func Merge(children ...Hash) Hash {
	return FromHashNodes(KindMerge, children...)
}

// Kind reports the Hash's tag.
func (h Hash) Kind() Kind { return h.kind }

// Children returns the Hash's child sequence (nil/empty for leaves).
func (h Hash) Children() []Hash { return h.children }

// Data returns the leaf payload, or nil for composite hashes.
func (h Hash) Data() any { return h.data }

// Digest returns the opaque 32-byte content-addressed digest.
func (h Hash) Digest() [32]byte { return h.digest }

// Hex returns the digest as a lowercase hex string, suitable as a cache key.
func (h Hash) Hex() string { return fmt.Sprintf("%x", h.digest) }

// Equal reports whether two Hashes are structurally identical.
func (h Hash) Equal(other Hash) bool { return h.digest == other.digest }

// IsNothing reports whether h is the Nothing sentinel's hash.
func (h Hash) IsNothing() bool { return h.kind == KindNothing }

type nothingMarker struct{}

// sealDigest computes the digest of a composite/leaf node from its already
// memoized children digests and an (optional) leaf payload digest.
func sealDigest(kind Kind, children []Hash, leafPayload [32]byte) [32]byte {
	hasher := sha256.New()
	hasher.Write([]byte{byte(kind)})
	for _, c := range children {
		d := c.digest
		hasher.Write(d[:])
	}
	hasher.Write(leafPayload[:])
	var out [32]byte
	copy(out[:], hasher.Sum(nil))
	return out
}

// leafDigest computes a deterministic digest for an arbitrary leaf payload.
//
// Dispatch order: nil, raw bytes/strings (the common case for input values
// and identifiers), function values (hashed by code pointer, matching the
// "hash of a function object" semantics spec.md §3 calls for), fmt.Stringer,
// then a best-effort gob encoding for arbitrary Go values. See DESIGN.md,
// "Standard-library-only parts", for why gob (not a pack dependency) is used
// here.
func leafDigest(payload any) [32]byte {
	switch v := payload.(type) {
	case nil:
		return sha256.Sum256([]byte("connectome:nil"))
	case []byte:
		return sha256.Sum256(v)
	case string:
		return sha256.Sum256([]byte(v))
	}

	rv := reflect.ValueOf(payload)
	if rv.Kind() == reflect.Func {
		return sha256.Sum256([]byte(fmt.Sprintf("connectome:func:%d", rv.Pointer())))
	}
	if s, ok := payload.(fmt.Stringer); ok {
		return sha256.Sum256([]byte(s.String()))
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&payload); err == nil {
		return sha256.Sum256(buf.Bytes())
	}
	return sha256.Sum256([]byte(fmt.Sprintf("connectome:repr:%#v", payload)))
}
