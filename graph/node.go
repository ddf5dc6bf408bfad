package graph

// TreeNode is a node in an uncompiled dependency tree: either a leaf (an
// input, supplied by the caller of a compiled Graph) or the application of
// an Edge to a fixed list of parent TreeNodes (spec.md §3, §4.4's "Node /
// TreeNode"). TreeNode identity is its pointer identity — two TreeNodes
// built separately are distinct even if they happen to describe the same
// computation; sharing a subexpression means sharing the *TreeNode value.
type TreeNode struct {
	name    string
	edge    Edge
	parents []*TreeNode
}

// NewInput declares a leaf TreeNode named name. Every leaf reachable from a
// Graph's output must appear in the inputs list passed to Compile, or
// compilation fails with a StructuralError.
func NewInput(name string) *TreeNode {
	return &TreeNode{name: name}
}

// NewTreeNode declares a non-leaf TreeNode: edge applied to parents, in
// order. len(parents) need not match edge.Arity() at construction time —
// that is validated by Compile.
func NewTreeNode(name string, edge Edge, parents ...*TreeNode) *TreeNode {
	return &TreeNode{name: name, edge: edge, parents: parents}
}

// Name returns the node's declared name, used only for diagnostics and for
// ordering a Graph's filtered input list.
func (t *TreeNode) Name() string { return t.name }

// IsLeaf reports whether t is an input (no edge).
func (t *TreeNode) IsLeaf() bool { return t.edge == nil }

// Edge returns t's edge, or nil if t is a leaf.
func (t *TreeNode) Edge() Edge { return t.edge }

// Parents returns t's parent TreeNodes, in edge-argument order.
func (t *TreeNode) Parents() []*TreeNode { return t.parents }
