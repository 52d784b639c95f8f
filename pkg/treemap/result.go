package treemap

import (
	"github.com/matzehuels/treemap/pkg/geom"
	"github.com/matzehuels/treemap/pkg/tree"
)

// Result is the committed outcome of one layout pass. Results are snapshots:
// later passes never modify an earlier Result.
type Result struct {
	Kind Kind

	Viewport  geom.Size
	Container geom.Rect // resolved box inside the viewport

	RootSize     geom.Size  // size the view root was laid out at
	RootPosition geom.Point // tree root origin inside the container

	ViewRoot      *tree.Node
	ViewAbovePath []*tree.Node // root first, view root excluded

	Direction Direction  // set by RootToNode
	Target    *tree.Node // resolved payload target, if any

	// Reused is set when the payload was a no-op and the previous result
	// was returned unchanged.
	Reused bool

	arena arena
	tree  *tree.Tree
}

// Tree returns the tree the result was computed on.
func (r Result) Tree() *tree.Tree { return r.tree }

// Record returns the layout record of n. Nodes the pass never reached have
// a zero record with NaN extent.
func (r Result) Record(n *tree.Node) Record {
	if n == nil || n.Index >= len(r.arena.records) {
		return Record{}
	}
	return r.arena.records[n.Index]
}

// Records returns a copy of all records indexed by raw node index.
func (r Result) Records() []Record {
	out := make([]Record, len(r.arena.records))
	copy(out, r.arena.records)
	return out
}

// ViewChildren returns the children of n that were packed in this pass, in
// packing order. For nodes on the view-above path it is the next node down
// the path.
func (r Result) ViewChildren(n *tree.Node) []*tree.Node {
	if n == nil || n.Index >= len(r.arena.view) {
		return nil
	}
	return r.arena.view[n.Index]
}

// AbsoluteRect returns the rectangle of n in container coordinates.
func (r Result) AbsoluteRect(n *tree.Node) (geom.Rect, bool) {
	rec := r.Record(n)
	if !rec.Placed {
		return geom.Rect{}, false
	}
	abs := rec.Rect
	for p := n.Parent; p != nil; p = p.Parent {
		pr := r.Record(p)
		abs.X += pr.Rect.X
		abs.Y += pr.Rect.Y
	}
	return abs, true
}

// Visible returns the nodes a renderer should paint, parents before
// children: in-view nodes that are not clipped, walked from the tree root
// through view children.
func (r Result) Visible() []*tree.Node {
	if r.tree == nil {
		return nil
	}
	var out []*tree.Node
	var walk func(n *tree.Node)
	walk = func(n *tree.Node) {
		rec := r.Record(n)
		if !rec.IsInView {
			return
		}
		if !rec.Invisible {
			out = append(out, n)
		}
		for _, c := range r.ViewChildren(n) {
			walk(c)
		}
	}
	walk(r.tree.Root())
	return out
}

// Target is a hit-test result.
type Target struct {
	Node *tree.Node
	// OffsetX and OffsetY are the hit point relative to the node's origin.
	OffsetX float64
	OffsetY float64
}

// FindTarget returns the deepest painted node of the view root's subtree
// containing the container point (x, y). A painted node that misses the
// point hides its whole subtree from the search.
func (r Result) FindTarget(x, y float64) (Target, bool) {
	if r.ViewRoot == nil {
		return Target{}, false
	}
	var hit Target
	found := false
	var visit func(n *tree.Node)
	visit = func(n *tree.Node) {
		rec := r.Record(n)
		if rec.Rendered() {
			abs, _ := r.AbsoluteRect(n)
			lx, ly := x-abs.X, y-abs.Y
			if lx < 0 || ly < 0 || lx > abs.Width || ly > abs.Height {
				return
			}
			hit = Target{Node: n, OffsetX: lx, OffsetY: ly}
			found = true
		}
		for _, c := range r.ViewChildren(n) {
			visit(c)
		}
	}
	visit(r.ViewRoot)
	return hit, found
}

// Breadcrumb returns the path from the tree root down to n, inclusive. A nil
// n means the view root.
func (r Result) Breadcrumb(n *tree.Node) []*tree.Node {
	if n == nil {
		n = r.ViewRoot
	}
	if n == nil {
		return nil
	}
	return n.PathToRoot()
}

// FindTarget hit-tests the last committed result.
func (e *Engine) FindTarget(x, y float64) (Target, bool) {
	if !e.committed {
		return Target{}, false
	}
	return e.last.FindTarget(x, y)
}

// Breadcrumb returns the path from the tree root down to n, or down to the
// current view root when n is nil.
func (e *Engine) Breadcrumb(n *tree.Node) []*tree.Node {
	if n == nil {
		return e.ViewRoot().PathToRoot()
	}
	return n.PathToRoot()
}
