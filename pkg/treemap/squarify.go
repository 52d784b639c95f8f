package treemap

import (
	"math"

	"github.com/matzehuels/treemap/pkg/geom"
)

// squarify packs areas, in order, into rect using the squarified treemap
// algorithm of Bruls, Huizing and van Wijk. Rows grow while the worst aspect
// ratio improves; the last row is flushed to fill what remains of rect.
//
// The remaining rectangle is threaded through the fold as a value: each call
// to placeRow returns the rectangles of one row and the space left after it.
func squarify(areas []float64, rect geom.Rect, squareRatio, halfGap float64) []geom.Rect {
	out := make([]geom.Rect, 0, len(areas))
	fixed := math.Min(rect.Width, rect.Height)
	best := math.Inf(1)
	start := 0
	rowArea := 0.0

	for i := 0; i < len(areas); {
		rowArea += areas[i]
		score := worst(areas[start:i+1], rowArea, fixed, squareRatio)
		if score <= best {
			best = score
			i++
			continue
		}

		rowArea -= areas[i]
		var placed []geom.Rect
		placed, rect = placeRow(areas[start:i], rowArea, fixed, rect, halfGap, false)
		out = append(out, placed...)

		fixed = math.Min(rect.Width, rect.Height)
		start, rowArea, best = i, 0, math.Inf(1)
	}

	if start < len(areas) {
		placed, _ := placeRow(areas[start:], rowArea, fixed, rect, halfGap, true)
		out = append(out, placed...)
	}
	return out
}

// worst scores a row by its worst aspect ratio. Zero areas are ignored for
// the extremes; an empty row scores +Inf.
func worst(row []float64, rowArea, fixed, squareRatio float64) float64 {
	areaMax, areaMin := 0.0, math.Inf(1)
	for _, a := range row {
		if a == 0 {
			continue
		}
		areaMin = math.Min(areaMin, a)
		areaMax = math.Max(areaMax, a)
	}

	sq := rowArea * rowArea
	if sq == 0 {
		return math.Inf(1)
	}
	f := fixed * fixed * squareRatio
	return math.Max(f*areaMax/sq, sq/(f*areaMin))
}

// placeRow lays one row out along the side of rect whose length is fixed and
// returns the members' rectangles plus the rectangle left for later rows.
//
// The row is horizontal (members left to right) when fixed is rect's width.
// Its thickness is rowArea/fixed, clamped to the available depth when
// flushing or on overflow. The last member absorbs rounding so the row tiles
// exactly. Each slice is inset by halfGap on both axes, never below zero.
func placeRow(row []float64, rowArea, fixed float64, rect geom.Rect, halfGap float64, flush bool) ([]geom.Rect, geom.Rect) {
	horizontal := fixed == rect.Width

	along, length := rect.Y, rect.Height
	across, depth := rect.X, rect.Width
	if horizontal {
		along, length = rect.X, rect.Width
		across, depth = rect.Y, rect.Height
	}

	thickness := 0.0
	if fixed != 0 {
		thickness = rowArea / fixed
	}
	if flush || thickness > depth {
		thickness = depth
	}

	out := make([]geom.Rect, len(row))
	last := along
	inner := math.Max(thickness-2*halfGap, 0)
	for i, a := range row {
		step := 0.0
		if thickness != 0 {
			step = a / thickness
		}
		remain := along + length - last
		slice := step
		if i == len(row)-1 || remain < step {
			slice = remain
		}
		size := math.Max(slice-2*halfGap, 0)

		pos := last + math.Min(halfGap, size/2)
		off := across + math.Min(halfGap, inner/2)
		if horizontal {
			out[i] = geom.Rect{X: pos, Y: off, Width: size, Height: inner}
		} else {
			out[i] = geom.Rect{X: off, Y: pos, Width: inner, Height: size}
		}
		last += slice
	}

	if horizontal {
		rect.Y += thickness
		rect.Height -= thickness
	} else {
		rect.X += thickness
		rect.Width -= thickness
	}
	return out, rect
}
