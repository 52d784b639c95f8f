package treemap

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/matzehuels/treemap/pkg/tree"
)

// selectChildren picks the children of n that will be packed into its
// content area of size total, assigns their areas, and records the data
// extent of n. Returns nil when nothing is to be packed.
func (p *pass) selectChildren(n *tree.Node, st Style, total float64, hide bool, depth int) []*tree.Node {
	overLeafDepth := p.opts.LeafDepth != nil && *p.opts.LeafDepth <= depth

	// leafDepth wins over childrenVisibleMin.
	if hide && !overLeafDepth {
		return nil
	}

	kids := make([]*tree.Node, 0, len(n.Children))
	for _, c := range n.Children {
		if !c.Removed() {
			kids = append(kids, c)
		}
	}
	rec := &p.records[n.Index]
	if overLeafDepth && len(kids) > 0 {
		rec.IsLeafRoot = true
	}

	order := p.opts.Sort
	order.sort(kids)

	sum, extent := statistic(kids, order, st.VisualDimension)
	if sum == 0 {
		return nil
	}

	sum, kids = filterByThreshold(kids, sum, total, st.VisibleMin, order)
	if sum == 0 {
		return nil
	}

	for _, c := range kids {
		p.records[c.Index].Area = c.Value / sum * total
	}

	if overLeafDepth {
		kids = nil
	}
	p.view[n.Index] = kids
	rec.DataExtent = extent
	return kids
}

// statistic returns the value sum of kids and the extent of the visual
// dimension over them. When the dimension is the value itself and the
// children are sorted by value, the extent is read off the ends.
func statistic(kids []*tree.Node, order Order, dim int) (float64, [2]float64) {
	values := make([]float64, len(kids))
	for i, c := range kids {
		values[i] = c.Value
	}
	sum := floats.Sum(values)

	if len(kids) == 0 {
		return sum, [2]float64{math.NaN(), math.NaN()}
	}

	if dim == 0 && (order.kind == orderAsc || order.kind == orderDesc) {
		first, last := kids[0].Value, kids[len(kids)-1].Value
		if order.IsAscending() {
			return sum, [2]float64{first, last}
		}
		return sum, [2]float64{last, first}
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, c := range kids {
		v := c.Dim(dim)
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo > hi {
		return sum, [2]float64{math.NaN(), math.NaN()}
	}
	return sum, [2]float64{lo, hi}
}

// filterByThreshold trims the low-value tail of sorted kids whose share of
// total would fall below visibleMin, and returns the reduced sum with the
// survivors. Unordered children are never trimmed.
//
// The scan always runs from the smallest value towards the largest and keeps
// going past the first survivor, so a child is dropped whenever its share of
// the running sum is too small.
func filterByThreshold(kids []*tree.Node, sum, total, visibleMin float64, order Order) (float64, []*tree.Node) {
	if !order.Active() {
		return sum, kids
	}

	n := len(kids)
	cut := n
	for i := n - 1; i >= 0; i-- {
		idx := i
		if order.IsAscending() {
			idx = n - i - 1
		}
		v := kids[idx].Value
		if v/sum*total < visibleMin {
			cut = i
			sum -= v
		}
	}

	if order.IsAscending() {
		return sum, kids[n-cut:]
	}
	return sum, kids[:cut]
}
