package tree

// Order selects the visiting order of [Walk].
type Order int

const (
	// PreOrder visits a node before its children.
	PreOrder Order = iota
	// PostOrder visits a node after its children.
	PostOrder
)

// Walk visits n and its descendants in the given order. In pre-order,
// returning false from fn skips the node's subtree; in post-order the return
// value is ignored.
func Walk(n *Node, order Order, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if order == PreOrder {
		if !fn(n) {
			return
		}
		for _, c := range n.Children {
			Walk(c, order, fn)
		}
		return
	}
	for _, c := range n.Children {
		Walk(c, order, fn)
	}
	fn(n)
}

// Walk visits every node of the tree from the root.
func (t *Tree) Walk(order Order, fn func(*Node) bool) {
	Walk(t.root, order, fn)
}
