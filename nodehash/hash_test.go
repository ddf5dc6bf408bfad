package nodehash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeafDeterministic(t *testing.T) {
	a := FromLeaf("hello")
	b := FromLeaf("hello")
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hex(), b.Hex())
}

func TestLeafDistinguishesValues(t *testing.T) {
	a := FromLeaf("hello")
	b := FromLeaf("world")
	assert.False(t, a.Equal(b))
}

func TestCompositeOrderMatters(t *testing.T) {
	a := FromHashNodes(KindProduct, FromLeaf(1), FromLeaf(2))
	b := FromHashNodes(KindProduct, FromLeaf(2), FromLeaf(1))
	assert.False(t, a.Equal(b), "child order must not be treated as commutative")
}

func TestCompositeKindMatters(t *testing.T) {
	a := FromHashNodes(KindProduct, FromLeaf(1))
	b := FromHashNodes(KindFunction, FromLeaf(1))
	assert.False(t, a.Equal(b))
}

func TestNothingIsDedicatedKind(t *testing.T) {
	n := Nothing()
	require.True(t, n.IsNothing())
	assert.Equal(t, KindNothing, n.Kind())
	assert.False(t, FromLeaf("anything").IsNothing())
}

func TestFunctionLeafIdentity(t *testing.T) {
	f := func(x int) int { return x + 1 }
	g := func(x int) int { return x + 2 }
	assert.True(t, FromLeaf(f).Equal(FromLeaf(f)))
	assert.False(t, FromLeaf(f).Equal(FromLeaf(g)))
}

func TestMergeIsCompositeOfKindMerge(t *testing.T) {
	m := Merge(FromLeaf(1), FromLeaf(2))
	assert.Equal(t, KindMerge, m.Kind())
	assert.Len(t, m.Children(), 2)
}

func TestChildrenExposedForTraversal(t *testing.T) {
	c1, c2 := FromLeaf(1), FromLeaf(2)
	composite := FromHashNodes(KindProduct, c1, c2)
	got := composite.Children()
	require.Len(t, got, 2)
	assert.True(t, got[0].Equal(c1))
	assert.True(t, got[1].Equal(c2))
}
