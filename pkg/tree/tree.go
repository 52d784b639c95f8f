package tree

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrDuplicateID is returned by [Build] when two items carry the same
	// explicit ID. Generated IDs never collide.
	ErrDuplicateID = errors.New("duplicate node ID")

	// ErrUnknownNode is returned by [Tree.Remove] when the ID does not name a
	// node of the tree.
	ErrUnknownNode = errors.New("unknown node")

	// ErrRemoveRoot is returned by [Tree.Remove] for the root node. The root
	// anchors every layout pass and cannot be removed.
	ErrRemoveRoot = errors.New("cannot remove the root node")
)

// RootID is the ID of the virtual root created by [Build].
const RootID = "__root__"

// Metadata stores arbitrary key-value pairs attached to items and nodes.
// Metadata maps on nodes are never nil.
type Metadata map[string]any

// Item is the input description of one node. Value is optional: when it is
// nil (or NaN) and the item has children, the value is the sum of the
// children's values. Negative values are clamped to zero.
type Item struct {
	ID       string    `json:"id,omitempty" yaml:"id,omitempty"`
	Name     string    `json:"name" yaml:"name"`
	Value    *float64  `json:"value,omitempty" yaml:"value,omitempty"`
	Dims     []float64 `json:"dims,omitempty" yaml:"dims,omitempty"`
	Meta     Metadata  `json:"meta,omitempty" yaml:"meta,omitempty"`
	Children []Item    `json:"children,omitempty" yaml:"children,omitempty"`
}

// V returns a pointer to v, for building items inline.
func V(v float64) *float64 { return &v }

// Node is a vertex of a weighted tree.
//
// Index is the node's stable raw index: its position in a pre-order walk of
// the tree at build time. Layout scratch state is kept outside the node, in
// arrays indexed by Index.
type Node struct {
	ID    string
	Name  string
	Value float64
	Dims  []float64
	Meta  Metadata

	Index  int
	Depth  int // root = 0
	Height int // leaf = 1

	Parent   *Node
	Children []*Node

	removed bool
}

// Removed reports whether the node (or one of its ancestors) was removed with
// [Tree.Remove]. Removed nodes keep their identity but take no part in layout.
func (n *Node) Removed() bool { return n.removed }

// IsLeaf reports whether the node has no children in the model.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Dim returns the value of dimension d. Dimension 0 is the node's value;
// dimension k > 0 is Dims[k-1]. Missing dimensions are NaN.
func (n *Node) Dim(d int) float64 {
	if d <= 0 {
		return n.Value
	}
	if d-1 < len(n.Dims) {
		return n.Dims[d-1]
	}
	return math.NaN()
}

// PathToRoot returns the nodes from the root down to n, inclusive.
func (n *Node) PathToRoot() []*Node {
	var path []*Node
	for cur := n; cur != nil; cur = cur.Parent {
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Ancestors returns the nodes strictly above n, ordered root first.
func (n *Node) Ancestors() []*Node {
	path := n.PathToRoot()
	return path[:len(path)-1]
}

// IsAncestorOf reports whether n is a strict ancestor of m.
func (n *Node) IsAncestorOf(m *Node) bool {
	if m == nil {
		return false
	}
	for cur := m.Parent; cur != nil; cur = cur.Parent {
		if cur == n {
			return true
		}
	}
	return false
}

// Contains reports whether m is n or a descendant of n.
func (n *Node) Contains(m *Node) bool {
	return m == n || n.IsAncestorOf(m)
}

// String returns the node ID, for logging.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	return n.ID
}

// Tree is an n-ary tree of weighted nodes with an arena of nodes indexed by
// raw index. The zero value is not usable; use [Build].
//
// Tree is not safe for concurrent mutation.
type Tree struct {
	root   *Node
	nodes  []*Node
	byID   map[string]*Node
	byName map[string]*Node
}

// Build creates a tree whose virtual root (named rootName, ID [RootID]) has
// the given items as children. Values are completed bottom-up, raw indices
// follow a pre-order walk, and depths and heights are assigned.
//
// Items without an ID get one derived from the name path ("a/b/c"). Returns
// ErrDuplicateID if two items carry the same explicit ID.
func Build(rootName string, items []Item) (*Tree, error) {
	t := &Tree{
		byID:   make(map[string]*Node),
		byName: make(map[string]*Node),
	}
	root := &Node{ID: RootID, Name: rootName, Meta: Metadata{}, Value: math.NaN()}
	t.add(root)

	for i := range items {
		if _, err := t.build(&items[i], root, ""); err != nil {
			return nil, err
		}
	}

	t.root = root
	completeValue(root)
	updateDepthAndHeight(root, 0)
	return t, nil
}

func (t *Tree) build(it *Item, parent *Node, prefix string) (*Node, error) {
	n := &Node{
		ID:     it.ID,
		Name:   it.Name,
		Dims:   it.Dims,
		Meta:   it.Meta,
		Parent: parent,
		Value:  math.NaN(),
	}
	if it.Value != nil {
		n.Value = *it.Value
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}

	path := it.Name
	if prefix != "" {
		path = prefix + "/" + it.Name
	}
	if n.ID == "" {
		n.ID = path
		if _, taken := t.byID[n.ID]; taken || n.ID == "" {
			n.ID = fmt.Sprintf("%s#%d", path, len(t.nodes))
		}
	} else if _, taken := t.byID[n.ID]; taken {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, n.ID)
	}

	t.add(n)
	parent.Children = append(parent.Children, n)

	for i := range it.Children {
		if _, err := t.build(&it.Children[i], n, path); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (t *Tree) add(n *Node) {
	n.Index = len(t.nodes)
	t.nodes = append(t.nodes, n)
	t.byID[n.ID] = n
	if _, ok := t.byName[n.Name]; !ok {
		t.byName[n.Name] = n
	}
}

// completeValue fills missing values post-order with the sum of children.
func completeValue(n *Node) float64 {
	var sum float64
	for _, c := range n.Children {
		sum += completeValue(c)
	}
	if math.IsNaN(n.Value) {
		n.Value = sum
	}
	if n.Value < 0 {
		n.Value = 0
	}
	return n.Value
}

func updateDepthAndHeight(n *Node, depth int) int {
	n.Depth = depth
	height := 0
	for _, c := range n.Children {
		if h := updateDepthAndHeight(c, depth+1); h > height {
			height = h
		}
	}
	n.Height = height + 1
	return n.Height
}

// Root returns the virtual root.
func (t *Tree) Root() *Node { return t.root }

// Len returns the number of nodes, removed ones included. Raw indices are
// always in [0, Len()).
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns the node with the given raw index.
func (t *Tree) Node(index int) (*Node, bool) {
	if index < 0 || index >= len(t.nodes) {
		return nil, false
	}
	return t.nodes[index], true
}

// ByID returns the node with the given ID.
func (t *Tree) ByID(id string) (*Node, bool) {
	n, ok := t.byID[id]
	return n, ok
}

// ByName returns the first node in pre-order with the given name.
func (t *Tree) ByName(name string) (*Node, bool) {
	n, ok := t.byName[name]
	return n, ok
}

// Lookup resolves a reference by ID first and by name second. Removed nodes
// are not returned.
func (t *Tree) Lookup(ref string) (*Node, bool) {
	n, ok := t.ByID(ref)
	if !ok {
		n, ok = t.ByName(ref)
	}
	if !ok || n.Removed() {
		return nil, false
	}
	return n, true
}

// Nodes returns all nodes in raw-index order. The slice must not be modified.
func (t *Tree) Nodes() []*Node { return t.nodes }

// Remove marks the node with the given ID and its whole subtree as removed.
// Values of the remaining nodes are left untouched.
func (t *Tree) Remove(id string) error {
	n, ok := t.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, id)
	}
	if n == t.root {
		return ErrRemoveRoot
	}
	Walk(n, PreOrder, func(m *Node) bool {
		m.removed = true
		return true
	})
	return nil
}
