package treemap

import (
	"math"

	"github.com/matzehuels/treemap/pkg/geom"
	"github.com/matzehuels/treemap/pkg/tree"
)

// Layout defaults.
const (
	DefaultUpperLabelHeight = 20.0
	DefaultVisibleMin       = 10.0
	DefaultZoomToNodeRatio  = 0.32 * 0.32
)

// DefaultSquareRatio is the golden ratio, the aspect ratio rows aim for.
var DefaultSquareRatio = 0.5 * (1 + math.Sqrt(5))

// NodeStyle holds the per-node layout settings. Every field is optional so
// that styles can be layered: series defaults, then the level matching the
// node's depth, then the node itself. A nil field inherits.
type NodeStyle struct {
	BorderWidth        *float64 `json:"borderWidth,omitempty" yaml:"borderWidth,omitempty" toml:"border_width"`
	GapWidth           *float64 `json:"gapWidth,omitempty" yaml:"gapWidth,omitempty" toml:"gap_width"`
	UpperLabelShow     *bool    `json:"upperLabelShow,omitempty" yaml:"upperLabelShow,omitempty" toml:"upper_label_show"`
	UpperLabelHeight   *float64 `json:"upperLabelHeight,omitempty" yaml:"upperLabelHeight,omitempty" toml:"upper_label_height"`
	VisibleMin         *float64 `json:"visibleMin,omitempty" yaml:"visibleMin,omitempty" toml:"visible_min"`
	ChildrenVisibleMin *float64 `json:"childrenVisibleMin,omitempty" yaml:"childrenVisibleMin,omitempty" toml:"children_visible_min"`

	// VisualDimension selects what the data extent is computed over:
	// 0 is the node value, k > 0 is the node's k-th extra dimension.
	VisualDimension *int `json:"visualDimension,omitempty" yaml:"visualDimension,omitempty" toml:"visual_dimension"`
}

// Merge returns s with every field set in o overriding the one in s.
func (s NodeStyle) Merge(o NodeStyle) NodeStyle {
	if o.BorderWidth != nil {
		s.BorderWidth = o.BorderWidth
	}
	if o.GapWidth != nil {
		s.GapWidth = o.GapWidth
	}
	if o.UpperLabelShow != nil {
		s.UpperLabelShow = o.UpperLabelShow
	}
	if o.UpperLabelHeight != nil {
		s.UpperLabelHeight = o.UpperLabelHeight
	}
	if o.VisibleMin != nil {
		s.VisibleMin = o.VisibleMin
	}
	if o.ChildrenVisibleMin != nil {
		s.ChildrenVisibleMin = o.ChildrenVisibleMin
	}
	if o.VisualDimension != nil {
		s.VisualDimension = o.VisualDimension
	}
	return s
}

// IsZero reports whether no field is set.
func (s NodeStyle) IsZero() bool { return s == NodeStyle{} }

// Resolve fills unset fields with defaults.
func (s NodeStyle) Resolve() Style {
	st := Style{
		UpperLabelHeight: DefaultUpperLabelHeight,
		VisibleMin:       DefaultVisibleMin,
	}
	if s.BorderWidth != nil {
		st.BorderWidth = *s.BorderWidth
	}
	if s.GapWidth != nil {
		st.GapWidth = *s.GapWidth
	}
	if s.UpperLabelShow != nil {
		st.UpperLabelShow = *s.UpperLabelShow
	}
	if s.UpperLabelHeight != nil {
		st.UpperLabelHeight = *s.UpperLabelHeight
	}
	if s.VisibleMin != nil {
		st.VisibleMin = *s.VisibleMin
	}
	if s.ChildrenVisibleMin != nil {
		st.ChildrenVisibleMin = *s.ChildrenVisibleMin
		st.HasChildrenVisibleMin = true
	}
	if s.VisualDimension != nil {
		st.VisualDimension = *s.VisualDimension
	}
	return st
}

// Style is a fully resolved [NodeStyle].
type Style struct {
	BorderWidth           float64
	GapWidth              float64
	UpperLabelShow        bool
	UpperLabelHeight      float64
	VisibleMin            float64
	ChildrenVisibleMin    float64
	HasChildrenVisibleMin bool
	VisualDimension       int
}

// LabelHeight is the header band height: UpperLabelHeight when the upper
// label is shown, zero otherwise.
func (s Style) LabelHeight() float64 {
	if s.UpperLabelShow {
		return s.UpperLabelHeight
	}
	return 0
}

// UpperHeight is the top inset of the node: the larger of border width and
// label height.
func (s Style) UpperHeight() float64 {
	return math.Max(s.BorderWidth, s.LabelHeight())
}

// Options configures a layout [Engine].
//
// Options are not validated: a non-positive SquareRatio or a negative
// VisibleMin produce whatever layout the arithmetic yields.
type Options struct {
	// Sort orders children before packing. Thresholding by VisibleMin only
	// happens when a sort order is active.
	Sort Order `json:"sort" yaml:"sort" toml:"sort"`

	SquareRatio float64 `json:"squareRatio,omitempty" yaml:"squareRatio,omitempty" toml:"square_ratio"`

	// LeafDepth, when set, turns every node at this depth below the view
	// root into a leaf.
	LeafDepth *int `json:"leafDepth,omitempty" yaml:"leafDepth,omitempty" toml:"leaf_depth"`

	// ZoomToNodeRatio is the fraction of the viewport area a zoom target
	// should occupy after a zoom.
	ZoomToNodeRatio float64 `json:"zoomToNodeRatio,omitempty" yaml:"zoomToNodeRatio,omitempty" toml:"zoom_to_node_ratio"`

	Box geom.BoxParams `json:"box" yaml:"box" toml:"box"`

	Style  NodeStyle            `json:"style" yaml:"style" toml:"style"`
	Levels []NodeStyle          `json:"levels,omitempty" yaml:"levels,omitempty" toml:"levels"`
	Nodes  map[string]NodeStyle `json:"nodes,omitempty" yaml:"nodes,omitempty" toml:"nodes"`
}

// SetDefaults fills zero-valued fields with defaults.
func (o *Options) SetDefaults() {
	if o.SquareRatio == 0 {
		o.SquareRatio = DefaultSquareRatio
	}
	if o.ZoomToNodeRatio == 0 {
		o.ZoomToNodeRatio = DefaultZoomToNodeRatio
	}
	if o.Box.IsZero() {
		o.Box = geom.DefaultBox()
	}
}

// StyleOf resolves the style of n: series style, then Levels[n.Depth], then
// Nodes[n.ID].
func (o Options) StyleOf(n *tree.Node) Style {
	s := o.Style
	if n.Depth < len(o.Levels) {
		s = s.Merge(o.Levels[n.Depth])
	}
	if ns, ok := o.Nodes[n.ID]; ok {
		s = s.Merge(ns)
	}
	return s.Resolve()
}

// Float returns a pointer to v, for building styles inline.
func Float(v float64) *float64 { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
