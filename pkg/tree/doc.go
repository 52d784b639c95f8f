// Package tree provides the weighted n-ary tree consumed by the treemap
// layout engine.
//
// # Overview
//
// A [Tree] is built once from nested [Item] values. Building does three
// things the layout relies on:
//
//   - Value completion: a node without an explicit value gets the sum of its
//     children's values, computed post-order. Values never go negative.
//   - Raw indices: every node gets a stable [Node.Index] from a pre-order walk.
//     Layout scratch state lives in arrays indexed by it, never on the node.
//   - Depth and height: root depth is 0, leaf height is 1.
//
// A virtual root (ID [RootID]) holds the top-level items, so a forest of data
// items always has a single anchor.
//
// # Removal
//
// [Tree.Remove] marks a subtree as removed without changing its identity or
// the values of surviving nodes. Removed nodes are skipped by every layout and
// sizing computation.
//
// # Example
//
//	t, err := tree.Build("disk", []tree.Item{
//	    {Name: "src", Children: []tree.Item{
//	        {Name: "main.go", Value: tree.V(120)},
//	        {Name: "util.go", Value: tree.V(40)},
//	    }},
//	    {Name: "README.md", Value: tree.V(8)},
//	})
package tree
