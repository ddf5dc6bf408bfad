package evictcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertGetDropsAtZero(t *testing.T) {
	c := New[string, int](map[string]int{"a": 2})
	c.Insert("a", 42)
	assert.True(t, c.Contains("a"))

	assert.Equal(t, 42, c.Get("a"))
	assert.True(t, c.Contains("a"), "one read remaining")

	assert.Equal(t, 42, c.Get("a"))
	assert.False(t, c.Contains("a"), "must drop at zero")
}

func TestZeroCountIsEvictableImmediately(t *testing.T) {
	c := New[string, int](map[string]int{})
	c.Insert("a", 1)
	assert.True(t, c.Contains("a"))
	assert.Equal(t, 1, c.Get("a"))
	assert.False(t, c.Contains("a"))
}

func TestEvictForcesDropRegardlessOfCount(t *testing.T) {
	c := New[string, int](map[string]int{"a": 10})
	c.Insert("a", 1)
	c.Evict("a")
	assert.False(t, c.Contains("a"))
}

func TestEvictAbsentKeyIsNoop(t *testing.T) {
	c := New[string, int](nil)
	assert.NotPanics(t, func() { c.Evict("missing") })
}

func TestGetOnAbsentKeyPanics(t *testing.T) {
	c := New[string, int](map[string]int{"a": 1})
	assert.Panics(t, func() { c.Get("missing") })
}

func TestSeedPrimesCounterFromCompileTimeCount(t *testing.T) {
	c := New[string, string](map[string]int{"x": 3})
	c.Seed("x", "v")
	require.True(t, c.Contains("x"))
	for i := 0; i < 2; i++ {
		assert.Equal(t, "v", c.Get("x"))
		assert.True(t, c.Contains("x"))
	}
	assert.Equal(t, "v", c.Get("x"))
	assert.False(t, c.Contains("x"))
}

func TestLenReflectsResidentEntries(t *testing.T) {
	c := New[string, int](map[string]int{"a": 1, "b": 1})
	assert.Equal(t, 0, c.Len())
	c.Insert("a", 1)
	c.Insert("b", 2)
	assert.Equal(t, 2, c.Len())
	c.Get("a")
	assert.Equal(t, 1, c.Len())
}
