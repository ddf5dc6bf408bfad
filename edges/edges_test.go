package edges

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samokhinv/connectome-go/backend"
	"github.com/samokhinv/connectome-go/cache"
	"github.com/samokhinv/connectome-go/graph"
)

func input(name string) *graph.TreeNode { return graph.NewInput(name) }

func sumFn(args []any) (any, error) {
	total := 0
	for _, a := range args {
		total += a.(int)
	}
	return total, nil
}

func TestIdentityPassesThrough(t *testing.T) {
	x := input("x")
	out := graph.NewTreeNode("id", NewIdentity(), x)
	g, err := graph.Compile([]*graph.TreeNode{x}, out)
	require.NoError(t, err)

	v, err := g.Call(42)
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestFunctionAppliesFn(t *testing.T) {
	a, b := input("a"), input("b")
	out := graph.NewTreeNode("sum", NewFunction(2, sumFn), a, b)
	g, err := graph.Compile([]*graph.TreeNode{a, b}, out)
	require.NoError(t, err)

	v, err := g.CallNamed(map[string]any{"a": 2, "b": 3})
	require.NoError(t, err)
	assert.Equal(t, 5, v)
}

func TestProductBundlesTuple(t *testing.T) {
	a, b := input("a"), input("b")
	out := graph.NewTreeNode("tuple", NewProduct(2), a, b)
	g, err := graph.Compile([]*graph.TreeNode{a, b}, out)
	require.NoError(t, err)

	v, err := g.CallNamed(map[string]any{"a": "x", "b": "y"})
	require.NoError(t, err)
	assert.Equal(t, []any{"x", "y"}, v)
}

func TestConstantIgnoresInputs(t *testing.T) {
	out := graph.NewTreeNode("c", NewConstant(99))
	g, err := graph.Compile(nil, out)
	require.NoError(t, err)

	v, err := g.Call()
	require.NoError(t, err)
	assert.Equal(t, 99, v)
}

func TestCacheSkipsParentOnHit(t *testing.T) {
	store := backend.NewRam(cache.Options[string, any]{})
	defer store.Close()

	calls := 0
	a := input("a")
	expensive := graph.NewTreeNode("expensive", NewFunction(1, func(args []any) (any, error) {
		calls++
		return args[0], nil
	}), a)
	cached := graph.NewTreeNode("cached", NewCache(store, nil), expensive)
	g, err := graph.Compile([]*graph.TreeNode{a}, cached)
	require.NoError(t, err)

	v1, err := g.Call(7)
	require.NoError(t, err)
	assert.Equal(t, 7, v1)
	assert.Equal(t, 1, calls)

	v2, err := g.Call(7)
	require.NoError(t, err)
	assert.Equal(t, 7, v2)
	assert.Equal(t, 1, calls, "second call with the same hash must hit the cache, not recompute")
}

func TestCacheWithTTLRecomputesAfterExpiry(t *testing.T) {
	store := backend.NewRam(cache.Options[string, any]{})
	defer store.Close()

	calls := 0
	a := input("a")
	expensive := graph.NewTreeNode("expensive", NewFunction(1, func(args []any) (any, error) {
		calls++
		return args[0], nil
	}), a)
	cached := graph.NewTreeNode("cached", NewCacheWithTTL(store, nil, 50*time.Millisecond), expensive)
	g, err := graph.Compile([]*graph.TreeNode{a}, cached)
	require.NoError(t, err)

	_, err = g.Call(7)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	_, err = g.Call(7)
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "still within the TTL window, must hit the cache")

	time.Sleep(100 * time.Millisecond)

	_, err = g.Call(7)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "past the TTL window, the entry must have expired")
}

func TestSwitchFiltersByData(t *testing.T) {
	x := input("x")
	sw := graph.NewTreeNode("sw", NewSwitch(func(data any) bool {
		n, ok := data.(int)
		return ok && n > 0
	}), x)
	g, err := graph.Compile([]*graph.TreeNode{x}, sw)
	require.NoError(t, err)

	v, err := g.Call(5)
	require.NoError(t, err)
	assert.Equal(t, 5, v)

	v, err = g.Call(-1)
	require.NoError(t, err)
	assert.True(t, graph.IsNothing(v))
}

// projectionOverSwitchedTuple builds: two inputs, each routed through a
// Switch that lets through only even (left) or only odd (right) values,
// bundled into a Product, then extracted by Projection. The two gates are
// independent, so zero, one or both slots can survive for a given pair of
// inputs; Projection succeeds only when exactly one of them does.
func projectionOverSwitchedTuple(t *testing.T) (*graph.Graph, *graph.TreeNode, *graph.TreeNode) {
	t.Helper()
	a, b := input("a"), input("b")
	even := graph.NewTreeNode("even", NewSwitch(func(data any) bool {
		n, ok := data.(int)
		return ok && n%2 == 0
	}), a)
	odd := graph.NewTreeNode("odd", NewSwitch(func(data any) bool {
		n, ok := data.(int)
		return ok && n%2 != 0
	}), b)
	tuple := graph.NewTreeNode("tuple", NewProduct(2), even, odd)
	picked := graph.NewTreeNode("picked", NewProjection(), tuple)
	g, err := graph.Compile([]*graph.TreeNode{a, b}, picked)
	require.NoError(t, err)
	return g, a, b
}

func TestProjectionExtractsTheUniqueNonNothingSlot(t *testing.T) {
	g, _, _ := projectionOverSwitchedTuple(t)

	v, err := g.CallNamed(map[string]any{"a": 4, "b": 8})
	require.NoError(t, err)
	assert.Equal(t, 4, v, "a's even branch survives, b's odd Switch rejected b's value")

	v, err = g.CallNamed(map[string]any{"a": 5, "b": 7})
	require.NoError(t, err)
	assert.Equal(t, 7, v, "b's odd branch survives this time")
}

func TestProjectionErrorsWhenNoSlotSurvives(t *testing.T) {
	g, _, _ := projectionOverSwitchedTuple(t)

	// Neither Switch passes: a is odd (fails the even gate), b is even
	// (fails the odd gate), so both Product slots are Nothing.
	_, err := g.CallNamed(map[string]any{"a": 5, "b": 8})
	assert.Error(t, err)
}

func TestMergeReturnsTheNonNothingBranch(t *testing.T) {
	x := input("x")
	left := graph.NewTreeNode("left", NewSwitch(func(data any) bool {
		n, _ := data.(int)
		return n > 0
	}), x)
	right := graph.NewTreeNode("right", NewSwitch(func(data any) bool {
		n, _ := data.(int)
		return n <= 0
	}), x)
	merged := graph.NewTreeNode("merged", NewMerge(2), left, right)
	g, err := graph.Compile([]*graph.TreeNode{x}, merged)
	require.NoError(t, err)

	v, err := g.Call(5)
	require.NoError(t, err)
	assert.Equal(t, 5, v)

	v, err = g.Call(-5)
	require.NoError(t, err)
	assert.Equal(t, -5, v)
}

func TestMultiInputSwitchEvaluatesOnlyChosenBranch(t *testing.T) {
	key := input("key")
	a, b := input("a"), input("b")

	var branchACalls, branchBCalls int
	branchA := graph.NewTreeNode("branchA", NewFunction(1, func(args []any) (any, error) {
		branchACalls++
		return args[0], nil
	}), a)
	branchB := graph.NewTreeNode("branchB", NewFunction(1, func(args []any) (any, error) {
		branchBCalls++
		return args[0], nil
	}), b)

	sel := NewMultiInputSwitch(2, map[any]int{"a": 0, "b": 1})
	out := graph.NewTreeNode("mis", sel, key, branchA, branchB)
	g, err := graph.Compile([]*graph.TreeNode{key, a, b}, out)
	require.NoError(t, err)

	v, err := g.CallNamed(map[string]any{"key": "a", "a": 10, "b": 20})
	require.NoError(t, err)
	assert.Equal(t, 10, v)
	assert.Equal(t, 1, branchACalls)
	assert.Equal(t, 0, branchBCalls)
}

func TestMultiInputSwitchUnknownKeyErrors(t *testing.T) {
	key := input("key")
	a := input("a")
	branchA := graph.NewTreeNode("branchA", NewIdentity(), a)
	sel := NewMultiInputSwitch(1, map[any]int{"a": 0})
	out := graph.NewTreeNode("mis", sel, key, branchA)
	g, err := graph.Compile([]*graph.TreeNode{key, a}, out)
	require.NoError(t, err)

	_, err = g.CallNamed(map[string]any{"key": "nope", "a": 1})
	assert.Error(t, err)
}

// subgraph builds a tiny single-input "id -> id % mod" graph, used by the
// Mapping/Grouping/HashMapping tests below.
func subgraph(mod int) *graph.Graph {
	id := input("id")
	out := graph.NewTreeNode("mod", NewFunction(1, func(args []any) (any, error) {
		return args[0].(int) % mod, nil
	}), id)
	g, err := graph.Compile([]*graph.TreeNode{id}, out)
	if err != nil {
		panic(err)
	}
	return g
}

func TestMappingGroupsByKeyAndMemoizes(t *testing.T) {
	sub := subgraph(2)
	ids := input("ids")
	out := graph.NewTreeNode("mapping", NewMapping(sub), ids)
	g, err := graph.Compile([]*graph.TreeNode{ids}, out)
	require.NoError(t, err)

	v, err := g.Call([]any{1, 2, 3, 4})
	require.NoError(t, err)
	groups := v.(map[any][]any)
	assert.ElementsMatch(t, []any{1, 3}, groups[1])
	assert.ElementsMatch(t, []any{2, 4}, groups[0])

	v2, err := g.Call([]any{1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, v, v2)
}

func TestGroupingEvaluatesSubgraphPerMember(t *testing.T) {
	mappingSub := subgraph(2)
	evalSub := subgraph(100) // id -> id % 100 == id, for small ids

	ids := input("ids")
	newID := input("newID")
	mapping := graph.NewTreeNode("mapping", NewMapping(mappingSub), ids)
	grouped := graph.NewTreeNode("grouped", NewGrouping(evalSub), newID, mapping)
	g, err := graph.Compile([]*graph.TreeNode{ids, newID}, grouped)
	require.NoError(t, err)

	v, err := g.CallNamed(map[string]any{"ids": []any{1, 2, 3, 4}, "newID": 1})
	require.NoError(t, err)
	assert.ElementsMatch(t, []any{1, 3}, v)
}

func TestHashMappingGroupsByComparator(t *testing.T) {
	sub := subgraph(1) // unused result, HashMapping doesn't key by subgraph output
	sameParity := func(a, b any) bool { return a.(int)%2 == b.(int)%2 }

	ids := input("ids")
	out := graph.NewTreeNode("hm", NewHashMapping(sub, sameParity), ids)
	g, err := graph.Compile([]*graph.TreeNode{ids}, out)
	require.NoError(t, err)

	v, err := g.Call([]any{1, 2, 3, 4})
	require.NoError(t, err)
	groups := v.(map[string][]any)
	require.Len(t, groups, 2)

	var total int
	for _, members := range groups {
		total += len(members)
	}
	assert.Equal(t, 4, total)
}

// TestGroupRoundTripIdentityGrouping covers spec.md's Testable Property 6:
// a GroupLayer that groups by identity (mod far larger than every id, so
// id % mod == id and every id is its own class) gives, for any id, a grouped evaluation
// indistinguishable from evaluating the un-grouped subgraph on that id
// directly.
func TestGroupRoundTripIdentityGrouping(t *testing.T) {
	identitySub := subgraph(1 << 30) // mod large enough that id % mod == id
	evalSub := subgraph(1 << 30)

	ids := input("ids")
	newID := input("newID")
	mapping := graph.NewTreeNode("mapping", NewMapping(identitySub), ids)
	grouped := graph.NewTreeNode("grouped", NewGrouping(evalSub), newID, mapping)
	g, err := graph.Compile([]*graph.TreeNode{ids, newID}, grouped)
	require.NoError(t, err)

	allIDs := []any{10, 20, 30}
	for _, id := range allIDs {
		grouped, err := g.CallNamed(map[string]any{"ids": allIDs, "newID": id})
		require.NoError(t, err)

		ungrouped, err := evalSub.Call(id)
		require.NoError(t, err)

		assert.Equal(t, []any{ungrouped}, grouped, "grouped-by-identity result for id %v must match the ungrouped evaluation", id)
	}
}

func TestIdentifierErrorMessage(t *testing.T) {
	err := &IdentifierError{Op: "projection", Key: 3}
	assert.Contains(t, err.Error(), "projection")
	assert.Contains(t, err.Error(), "3")
}
