package serializer

import (
	"bytes"
	"encoding/gob"
)

// Gob encodes values with encoding/gob, preserving concrete Go types
// exactly (at the cost of requiring gob.Register for interface-typed
// payloads the caller wants to round-trip). Preferred for in-process or
// same-binary disk caches where portability outside Go isn't a concern.
type Gob struct{}

func (Gob) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (Gob) Decode(data []byte, out *any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(out)
}
