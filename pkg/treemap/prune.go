package treemap

import (
	"github.com/matzehuels/treemap/pkg/geom"
	"github.com/matzehuels/treemap/pkg/tree"
)

// prune marks which nodes are in view. It walks from the tree root along
// the view-above path and then through view children only; clip is in the
// coordinate frame of n's parent. Nodes off the path and outside the view
// root's subtree keep no marking at all.
func (p *pass) prune(n *tree.Node, clip geom.Rect, path []*tree.Node, viewRoot *tree.Node, depth int) {
	var entry *tree.Node
	if depth < len(path) {
		entry = path[depth]
	}
	above := entry != nil && entry == n

	if (entry != nil && !above) || (depth == len(path) && n != viewRoot) {
		return
	}

	rec := &p.records[n.Index]
	rec.IsInView = true
	rec.Invisible = !above && !clip.Intersects(rec.Rect)
	rec.IsAboveViewRoot = above

	inner := clip.Translate(-rec.Rect.X, -rec.Rect.Y)
	for _, c := range p.view[n.Index] {
		p.prune(c, inner, path, viewRoot, depth+1)
	}
}
