// Package treemap lays out a weighted tree as nested rectangles whose areas
// are proportional to node values.
//
// # Overview
//
// An [Engine] owns a [tree.Tree] and a view root, and runs one layout pass
// per interaction ([Payload]). A pass:
//
//  1. resolves the container box against the viewport,
//  2. sizes the view root (the container, an explicit rectangle, or an
//     enlarged size estimated so that a zoom target fills a fraction of the
//     viewport),
//  3. packs children recursively with the squarified algorithm, after
//     filtering, sorting and thresholding them,
//  4. copies the view root's rectangle onto its ancestors, and
//  5. marks which nodes are in view and which are clipped.
//
// Panning ([Move]) skips packing and only repositions the root.
//
// # Records
//
// Layout state lives in a [Record] per node, held in an arena indexed by the
// node's raw index and replaced wholesale on every pass. A [Result] is an
// immutable snapshot of one pass. Record rectangles are relative to the
// parent's rectangle; use [Result.AbsoluteRect] for container coordinates.
//
// # Thresholding
//
// Children whose share of the content area falls below VisibleMin are
// dropped, but only when a sort order is active. With [Unordered] every
// unremoved child is packed.
//
// # Example
//
//	e := treemap.New(t, treemap.Options{Sort: treemap.Descending})
//	res := e.Apply(geom.Size{Width: 800, Height: 600}, treemap.InitPayload())
//	for _, n := range res.Visible() {
//	    r, _ := res.AbsoluteRect(n)
//	    fmt.Println(n.Name, r)
//	}
package treemap
