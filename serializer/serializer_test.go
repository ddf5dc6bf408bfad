package serializer

import (
	"encoding/gob"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONRoundTripsPlainValues(t *testing.T) {
	var s JSON

	data, err := s.Encode(map[string]any{"a": float64(1), "b": "two"})
	require.NoError(t, err)

	var out any
	require.NoError(t, s.Decode(data, &out))
	assert.Equal(t, map[string]any{"a": float64(1), "b": "two"}, out)
}

func TestJSONRoundTripsString(t *testing.T) {
	var s JSON

	data, err := s.Encode("hello")
	require.NoError(t, err)

	var out any
	require.NoError(t, s.Decode(data, &out))
	assert.Equal(t, "hello", out)
}

type gobPayload struct {
	Name  string
	Count int
}

func init() {
	gob.Register(gobPayload{})
}

func TestGobRoundTripsRegisteredType(t *testing.T) {
	var s Gob

	data, err := s.Encode(gobPayload{Name: "x", Count: 3})
	require.NoError(t, err)

	var out any
	require.NoError(t, s.Decode(data, &out))
	assert.Equal(t, gobPayload{Name: "x", Count: 3}, out)
}

func TestGobRoundTripsBuiltinScalar(t *testing.T) {
	var s Gob

	data, err := s.Encode(42)
	require.NoError(t, err)

	var out any
	require.NoError(t, s.Decode(data, &out))
	assert.Equal(t, 42, out)
}
