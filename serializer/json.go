package serializer

import "encoding/json"

// JSON encodes values with encoding/json. It is human-inspectable and
// portable across processes/languages at the cost of losing Go-specific
// type information: decoded numbers come back as float64, maps as
// map[string]any, etc. Suitable for cache backends whose values are
// already plain JSON-ish data (the common case for Mapping/Grouping
// results keyed by string or numeric ids).
type JSON struct{}

func (JSON) Encode(v any) ([]byte, error) { return json.Marshal(v) }

func (JSON) Decode(data []byte, out *any) error {
	return json.Unmarshal(data, out)
}
