// Package serializer implements the pluggable encodings a disk-backed
// cache.Store uses to turn arbitrary Go values into bytes and back
// (spec.md §4.9). There is no pack library covering "encode an arbitrary
// any value" for an unknown domain type, so both implementations are
// built on the standard library's own codecs — see DESIGN.md,
// "Standard-library-only parts".
package serializer

// Serializer encodes/decodes the values a Cache edge persists.
type Serializer interface {
	Encode(v any) ([]byte, error)
	// Decode must populate *out; out is always a non-nil pointer to any.
	Decode(data []byte, out *any) error
}
