package treemap

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/matzehuels/treemap/pkg/geom"
	"github.com/matzehuels/treemap/pkg/tree"
)

// maxSafeArea caps the estimated area on deep trees.
const maxSafeArea = 1<<53 - 1

// estimateRootSize returns the root size at which target, once laid out,
// covers about zoomRatio of the container area. It walks from target up to
// the tree root, scaling the area by each node's share of its siblings and
// adding room for the parent's border and header. The container size is
// returned unchanged when there is no target, the target is the view root, or
// some node on the way up has value 0.
func estimateRootSize(target, viewRoot *tree.Node, container geom.Size, zoomRatio float64, styleOf func(*tree.Node) Style) geom.Size {
	if target == nil || target == viewRoot {
		return container
	}

	viewArea := container.Area()
	if viewArea == 0 {
		return container
	}
	area := viewArea * zoomRatio

	for cur := target; cur.Parent != nil; cur = cur.Parent {
		parent := cur.Parent
		if cur.Value == 0 {
			return container
		}
		area *= siblingSum(parent) / cur.Value

		st := styleOf(parent)
		bw := st.BorderWidth
		area += 4*bw*bw + (3*bw+st.UpperHeight())*math.Sqrt(area)
		area = math.Min(area, maxSafeArea)
	}

	area = math.Max(area, viewArea)
	scale := math.Sqrt(area / viewArea)
	return geom.Size{Width: container.Width * scale, Height: container.Height * scale}
}

func siblingSum(parent *tree.Node) float64 {
	values := make([]float64, 0, len(parent.Children))
	for _, c := range parent.Children {
		if !c.Removed() {
			values = append(values, c.Value)
		}
	}
	return floats.Sum(values)
}
