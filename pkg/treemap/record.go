package treemap

import (
	"math"

	"github.com/matzehuels/treemap/pkg/geom"
	"github.com/matzehuels/treemap/pkg/tree"
)

// Record is the layout of one node in one pass. Rect is relative to the
// parent's rectangle; the tree root's X and Y hold the root position inside
// the container.
type Record struct {
	Rect geom.Rect
	Area float64

	BorderWidth      float64
	UpperHeight      float64
	UpperLabelHeight float64

	// DataExtent is the [min, max] of the visual dimension over the node's
	// unremoved children, before visibleMin trimming. NaN when unknown.
	DataExtent [2]float64

	IsLeafRoot      bool
	IsInView        bool
	Invisible       bool
	IsAboveViewRoot bool

	// Placed reports whether the pass assigned Rect.
	Placed bool
}

// Rendered reports whether a renderer should paint the node.
func (r Record) Rendered() bool { return r.IsInView && !r.Invisible }

// arena is the per-pass scratch state, indexed by raw node index. A new arena
// is allocated for every pass so that committed results stay immutable.
type arena struct {
	records []Record
	view    [][]*tree.Node
}

func newArena(n int) arena {
	a := arena{
		records: make([]Record, n),
		view:    make([][]*tree.Node, n),
	}
	for i := range a.records {
		a.records[i].DataExtent = [2]float64{math.NaN(), math.NaN()}
	}
	return a
}

// clone copies the records for a pass that only moves the root. View child
// lists are shared; they are never mutated once a pass has finished.
func (a arena) clone() arena {
	records := make([]Record, len(a.records))
	copy(records, a.records)
	return arena{records: records, view: a.view}
}

func (a arena) resetVisibility() {
	for i := range a.records {
		r := &a.records[i]
		r.IsInView = false
		r.Invisible = false
		r.IsAboveViewRoot = false
	}
}
