package treemap

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/treemap/pkg/geom"
	"github.com/matzehuels/treemap/pkg/tree"
)

// Engine lays out a tree, one interaction at a time. It keeps the view root
// and the last committed [Result] between calls.
//
// An Engine is not safe for concurrent use: Apply must not be called while
// another Apply on the same engine is running.
type Engine struct {
	tree   *tree.Tree
	opts   Options
	styles []Style
	logger *log.Logger

	viewRoot  *tree.Node
	last      Result
	committed bool
}

// EngineOption configures an [Engine].
type EngineOption func(*Engine)

// WithLogger sets the logger for per-pass debug lines and warnings.
func WithLogger(l *log.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an engine for t. Zero-valued options get their defaults. Node
// styles are resolved once, so options changes need a new engine.
func New(t *tree.Tree, opts Options, eopts ...EngineOption) *Engine {
	opts.SetDefaults()
	e := &Engine{
		tree:     t,
		opts:     opts,
		styles:   make([]Style, t.Len()),
		logger:   log.NewWithOptions(io.Discard, log.Options{}),
		viewRoot: t.Root(),
	}
	for _, n := range t.Nodes() {
		e.styles[n.Index] = opts.StyleOf(n)
	}
	for _, o := range eopts {
		o(e)
	}
	return e
}

// Tree returns the tree being laid out.
func (e *Engine) Tree() *tree.Tree { return e.tree }

// Options returns the options with defaults applied.
func (e *Engine) Options() Options { return e.opts }

// Style returns the resolved style of n.
func (e *Engine) Style(n *tree.Node) Style { return e.styles[n.Index] }

// ViewRoot returns the current view root.
func (e *Engine) ViewRoot() *tree.Node {
	e.resetViewRoot()
	return e.viewRoot
}

// Result returns the last committed result, if any.
func (e *Engine) Result() (Result, bool) { return e.last, e.committed }

// Apply runs one interaction against a viewport of the given size and
// commits the result.
//
// A payload whose target no longer resolves is a no-op: the last committed
// result is returned again with Reused set. Before anything is committed
// such a payload is laid out as [Init].
func (e *Engine) Apply(viewport geom.Size, p Payload) Result {
	e.resetViewRoot()
	container := geom.ResolveBox(e.opts.Box, viewport)

	var target *tree.Node
	if p.needsTarget() {
		n, ok := e.tree.Lookup(p.Target)
		if !ok {
			e.logger.Warn("treemap target not found", "kind", p.Kind, "target", p.Target)
			if e.committed {
				res := e.last
				res.Reused = true
				return res
			}
			p = InitPayload()
		} else {
			target = n
		}
	}

	if p.Kind == Move && p.RootRect != nil && e.committed {
		return e.commit(e.move(viewport, container, *p.RootRect))
	}

	direction := NoDirection
	if p.Kind == RootToNode {
		direction = DrillDown
		if target.IsAncestorOf(e.viewRoot) {
			direction = RollUp
		}
		e.viewRoot = target
	}

	res := e.layout(viewport, container, p, target)
	res.Direction = direction
	return e.commit(res)
}

func (e *Engine) commit(res Result) Result {
	e.last = res
	e.committed = true
	e.logger.Debug("treemap layout",
		"kind", res.Kind,
		"viewRoot", res.ViewRoot,
		"width", res.RootSize.Width,
		"height", res.RootSize.Height,
		"reused", res.Reused)
	return res
}

// resetViewRoot falls back to the tree root when the view root was removed.
func (e *Engine) resetViewRoot() {
	if e.viewRoot == nil || e.viewRoot.Removed() {
		e.viewRoot = e.tree.Root()
		return
	}
	if n, ok := e.tree.Node(e.viewRoot.Index); !ok || n != e.viewRoot {
		e.viewRoot = e.tree.Root()
	}
}

// pass is the state of one layout computation.
type pass struct {
	arena
	opts   Options
	styles []Style
}

func (e *Engine) layout(viewport geom.Size, container geom.Rect, p Payload, target *tree.Node) Result {
	viewRoot := e.viewRoot
	path := viewRoot.Ancestors()
	ps := &pass{arena: newArena(e.tree.Len()), opts: e.opts, styles: e.styles}

	var rootRect *geom.Rect
	if p.Kind == Move || p.Kind == Render || p.Kind == RootToNode {
		rootRect = p.RootRect
	}

	size := container.Size()
	switch {
	case p.Kind == ZoomToNode:
		size = estimateRootSize(target, viewRoot, size, e.opts.ZoomToNodeRatio, e.Style)
	case rootRect != nil:
		size = rootRect.Size()
	}

	ps.records[viewRoot.Index] = Record{
		Rect:       geom.Rect{Width: size.Width, Height: size.Height},
		Area:       size.Area(),
		DataExtent: ps.records[viewRoot.Index].DataExtent,
		Placed:     true,
	}
	ps.squarify(viewRoot, false, 0)
	ps.fillAbovePath(path, viewRoot)

	pos := ps.rootPosition(container, posRect(p), target)
	ps.place(e.tree.Root(), pos)
	ps.prune(e.tree.Root(), pruneClip(viewport, container), path, viewRoot, 0)

	return Result{
		Kind:          p.Kind,
		Viewport:      viewport,
		Container:     container,
		RootSize:      size,
		RootPosition:  pos,
		ViewRoot:      viewRoot,
		ViewAbovePath: path,
		Target:        target,
		arena:         ps.arena,
		tree:          e.tree,
	}
}

// move reuses the committed layout and only repositions the root.
func (e *Engine) move(viewport geom.Size, container geom.Rect, rect geom.Rect) Result {
	prev := e.last
	ps := &pass{arena: prev.arena.clone(), opts: e.opts, styles: e.styles}
	ps.resetVisibility()

	pos := geom.Point{X: rect.X, Y: rect.Y}
	ps.place(e.tree.Root(), pos)
	ps.prune(e.tree.Root(), pruneClip(viewport, container), prev.ViewAbovePath, prev.ViewRoot, 0)

	res := prev
	res.Kind = Move
	res.Viewport = viewport
	res.Container = container
	res.RootPosition = pos
	res.Direction = NoDirection
	res.Target = nil
	res.Reused = false
	res.arena = ps.arena
	return res
}

// posRect is the rectangle whose origin becomes the root position.
func posRect(p Payload) *geom.Rect {
	if p.Kind == Move || p.Kind == Render {
		return p.RootRect
	}
	return nil
}

// pruneClip is the viewport in the container's coordinate frame.
func pruneClip(viewport geom.Size, container geom.Rect) geom.Rect {
	return geom.Rect{X: -container.X, Y: -container.Y, Width: viewport.Width, Height: viewport.Height}
}

// squarify lays out the view children of n inside n's content rectangle and
// recurses. hide suppresses the children of nodes below a node whose content
// area fell under childrenVisibleMin.
func (p *pass) squarify(n *tree.Node, hide bool, depth int) {
	if n.Removed() {
		return
	}
	rec := &p.records[n.Index]
	st := p.styles[n.Index]

	halfGap := st.GapWidth / 2
	upper := st.UpperHeight()
	offset := st.BorderWidth - halfGap
	offsetUpper := upper - halfGap

	rec.BorderWidth = st.BorderWidth
	rec.UpperHeight = upper
	rec.UpperLabelHeight = st.LabelHeight()

	content := geom.Rect{
		X:      offset,
		Y:      offsetUpper,
		Width:  max(rec.Rect.Width-2*offset, 0),
		Height: max(rec.Rect.Height-offset-offsetUpper, 0),
	}
	total := content.Area()

	kids := p.selectChildren(n, st, total, hide, depth)
	if len(kids) == 0 {
		return
	}

	areas := make([]float64, len(kids))
	for i, c := range kids {
		areas[i] = p.records[c.Index].Area
	}
	for i, r := range squarify(areas, content, p.opts.SquareRatio, halfGap) {
		cr := &p.records[kids[i].Index]
		cr.Rect = r
		cr.Placed = true
	}

	if !hide && st.HasChildrenVisibleMin && total < st.ChildrenVisibleMin {
		hide = true
	}
	for _, c := range kids {
		p.squarify(c, hide, depth+1)
	}
}

// fillAbovePath gives every ancestor of the view root the view root's
// rectangle, with no insets and an extent pinned to the value of the next
// node down the path.
func (p *pass) fillAbovePath(path []*tree.Node, viewRoot *tree.Node) {
	vr := p.records[viewRoot.Index]
	for i, n := range path {
		next := viewRoot
		if i+1 < len(path) {
			next = path[i+1]
		}
		v := next.Value
		p.records[n.Index] = Record{
			Rect:       vr.Rect,
			Area:       vr.Area,
			DataExtent: [2]float64{v, v},
			Placed:     true,
		}
		p.view[n.Index] = []*tree.Node{next}
	}
}

// rootPosition returns where the tree root sits in the container: the origin
// of an explicit root rectangle, or the offset that centers target in the
// container, or the container origin.
func (p *pass) rootPosition(container geom.Rect, rootRect *geom.Rect, target *tree.Node) geom.Point {
	if rootRect != nil {
		return rootRect.Origin()
	}
	if target == nil || !p.records[target.Index].Placed {
		return geom.Point{}
	}

	rec := p.records[target.Index]
	cx, cy := rec.Rect.Width/2, rec.Rect.Height/2
	for n := target; n != nil; n = n.Parent {
		r := p.records[n.Index]
		cx += r.Rect.X
		cy += r.Rect.Y
	}
	return geom.Point{X: container.Width/2 - cx, Y: container.Height/2 - cy}
}

func (p *pass) place(root *tree.Node, pos geom.Point) {
	r := &p.records[root.Index]
	r.Rect.X = pos.X
	r.Rect.Y = pos.Y
}
