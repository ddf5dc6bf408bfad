package graph_test

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/samokhinv/connectome-go/backend"
	"github.com/samokhinv/connectome-go/cache"
	"github.com/samokhinv/connectome-go/edges"
	. "github.com/samokhinv/connectome-go/graph"
	"github.com/samokhinv/connectome-go/nodehash"
)

// randomSumDAG builds a layered DAG of width inputs and depth interior
// layers, each node summing a random subset of the previous layer (with
// wraparound so every width and fanin combination is legal), and returns
// the compiled graph plus the sorted input names Call expects values for.
func randomSumDAG(t *testing.T, r *rand.Rand, width, depth, fanin int, cacheEvery int, store backend.Store) (*Graph, []string) {
	t.Helper()

	leaves := make([]*TreeNode, width)
	inputNames := make([]string, width)
	prev := make([]*TreeNode, width)
	for i := 0; i < width; i++ {
		leaves[i] = NewInput(inputNameFor(i))
		inputNames[i] = leaves[i].Name()
		prev[i] = leaves[i]
	}

	for l := 0; l < depth; l++ {
		next := make([]*TreeNode, width)
		for i := 0; i < width; i++ {
			parents := make([]*TreeNode, fanin)
			offset := r.Intn(width)
			for j := 0; j < fanin; j++ {
				parents[j] = prev[(i+offset+j)%width]
			}
			node := NewTreeNode(nodeNameFor(l, i), edges.NewFunction(fanin, sumInts), parents...)
			if cacheEvery > 0 && (l*width+i)%cacheEvery == 0 {
				node = NewTreeNode(nodeNameFor(l, i)+"_cache", edges.NewCache(store, NoopMetrics{}), node)
			}
			next[i] = node
		}
		prev = next
	}

	output := NewTreeNode("reduce", edges.NewFunction(width, sumInts), prev...)
	g, err := Compile(leaves, output)
	require.NoError(t, err)
	return g, inputNames
}

func inputNameFor(i int) string { return "in_" + strconv.Itoa(i) }
func nodeNameFor(l, i int) string {
	return "l" + strconv.Itoa(l) + "_n" + strconv.Itoa(i)
}

func sumInts(args []any) (any, error) {
	total := 0
	for _, a := range args {
		total += a.(int)
	}
	return total, nil
}

// TestPropertyDeterminismAndHashStability covers spec.md's Testable
// Properties 1 and 2 across a batch of randomized layered DAGs and random
// inputs: repeated calls with the same inputs return equal values and
// equal hashes.
func TestPropertyDeterminismAndHashStability(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	for trial := 0; trial < 20; trial++ {
		width := 2 + r.Intn(4)
		depth := 1 + r.Intn(4)
		fanin := 1 + r.Intn(width)

		g, inputNames := randomSumDAG(t, r, width, depth, fanin, 0, nil)

		values := make([]any, len(inputNames))
		for i := range values {
			values[i] = r.Intn(100)
		}

		v1, err := g.Call(values...)
		require.NoError(t, err)
		v2, err := g.Call(values...)
		require.NoError(t, err)
		require.Equal(t, v1, v2, "trial %d: repeated call with the same inputs must agree", trial)

		h1, err := g.GetHash(values...)
		require.NoError(t, err)
		h2, err := g.GetHash(values...)
		require.NoError(t, err)
		require.True(t, h1.Equal(h2), "trial %d: repeated hash must agree", trial)
	}
}

// TestPropertyCacheTransparency covers Testable Property 3: inserting a
// transparent Cache edge at every other node of a randomized DAG never
// changes the output for any input, compared against the same DAG shape
// built without any Cache edges at all.
func TestPropertyCacheTransparency(t *testing.T) {
	r := rand.New(rand.NewSource(2))

	for trial := 0; trial < 20; trial++ {
		width := 2 + r.Intn(4)
		depth := 1 + r.Intn(4)
		fanin := 1 + r.Intn(width)

		seed := r.Int63()
		store := backend.NewRam(cache.Options[string, any]{})

		plain, inputNames := randomSumDAG(t, rand.New(rand.NewSource(seed)), width, depth, fanin, 0, nil)
		cached, _ := randomSumDAG(t, rand.New(rand.NewSource(seed)), width, depth, fanin, 2, store)

		values := make([]any, len(inputNames))
		for i := range values {
			values[i] = r.Intn(100)
		}

		want, err := plain.Call(values...)
		require.NoError(t, err)
		got, err := cached.Call(values...)
		require.NoError(t, err)
		require.Equal(t, want, got, "trial %d: caching must not change the output", trial)

		_ = store.Close()
	}
}

// TestPropertyGetHashIsStructural confirms a randomized DAG's hash depends
// only on its shape, not on any particular input values fed through Call
// beforehand — GetHash is computed independently each time from the
// supplied inputs (spec.md §4.2's "Hash" operation).
func TestPropertyGetHashIsStructural(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	g, inputNames := randomSumDAG(t, r, 3, 2, 2, 0, nil)

	values := make([]any, len(inputNames))
	for i := range values {
		values[i] = i
	}

	h1, err := g.GetHash(values...)
	require.NoError(t, err)

	_, err = g.Call(values...)
	require.NoError(t, err)

	h2, err := g.GetHash(values...)
	require.NoError(t, err)
	require.True(t, h1.Equal(h2))
	require.NotEqual(t, nodehash.Nothing().Hex(), h1.Hex())
}
