package graph

// nothingValue is the sentinel value edges produce/propagate in place of a
// skipped branch or filtered-out element — the evaluate-phase counterpart
// of nodehash.Nothing() (spec.md's GLOSSARY "Nothing"; DESIGN.md's
// resolution of the Nothing open question).
type nothingValue struct{}

// Nothing is the canonical sentinel value.
var Nothing any = nothingValue{}

// IsNothing reports whether v is the Nothing sentinel.
func IsNothing(v any) bool {
	_, ok := v.(nothingValue)
	return ok
}
