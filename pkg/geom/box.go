package geom

import (
	"math"
	"strconv"
	"strings"
)

// BoxParams positions a box inside a container. Every field is either empty
// (unset), an absolute number ("120"), a percentage of the container ("80%"),
// or one of the keywords left/center/right (horizontal) and
// top/middle/bottom (vertical).
type BoxParams struct {
	Left   string `json:"left,omitempty" yaml:"left,omitempty" toml:"left"`
	Top    string `json:"top,omitempty" yaml:"top,omitempty" toml:"top"`
	Right  string `json:"right,omitempty" yaml:"right,omitempty" toml:"right"`
	Bottom string `json:"bottom,omitempty" yaml:"bottom,omitempty" toml:"bottom"`
	Width  string `json:"width,omitempty" yaml:"width,omitempty" toml:"width"`
	Height string `json:"height,omitempty" yaml:"height,omitempty" toml:"height"`
}

// DefaultBox centers a box covering 80% of the container on each axis.
func DefaultBox() BoxParams {
	return BoxParams{Left: "center", Top: "middle", Width: "80%", Height: "80%"}
}

// IsZero reports whether no field is set.
func (p BoxParams) IsZero() bool { return p == BoxParams{} }

// ParsePercent resolves a box parameter against the full extent all.
// Keywords map to 0%, 50% and 100%. It returns NaN for an empty or
// unparsable value.
func ParsePercent(v string, all float64) float64 {
	switch strings.TrimSpace(v) {
	case "center", "middle":
		v = "50%"
	case "left", "top":
		v = "0%"
	case "right", "bottom":
		v = "100%"
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return math.NaN()
	}
	if p, ok := strings.CutSuffix(v, "%"); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return math.NaN()
		}
		return f / 100 * all
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// ResolveBox computes the rectangle described by p inside a container of the
// given size.
//
// Width and height default to whatever the opposite anchors leave free. A
// left (or right) of "center" and a top (or bottom) of "middle" center the
// box on that axis; "right" and "bottom" flush it against the far edge.
func ResolveBox(p BoxParams, container Size) Rect {
	cw, ch := container.Width, container.Height

	left := ParsePercent(p.Left, cw)
	top := ParsePercent(p.Top, ch)
	right := ParsePercent(p.Right, cw)
	bottom := ParsePercent(p.Bottom, ch)
	width := ParsePercent(p.Width, cw)
	height := ParsePercent(p.Height, ch)

	if math.IsNaN(width) {
		width = cw - right - left
	}
	if math.IsNaN(height) {
		height = ch - bottom - top
	}
	if math.IsNaN(left) {
		left = cw - right - width
	}
	if math.IsNaN(top) {
		top = ch - bottom - height
	}

	switch firstSet(p.Left, p.Right) {
	case "center":
		left = cw/2 - width/2
	case "right":
		left = cw - width
	}
	switch firstSet(p.Top, p.Bottom) {
	case "middle", "center":
		top = ch/2 - height/2
	case "bottom":
		top = ch - height
	}

	left = orZero(left)
	top = orZero(top)
	if math.IsNaN(width) {
		width = cw - left - orZero(right)
	}
	if math.IsNaN(height) {
		height = ch - top - orZero(bottom)
	}

	return Rect{X: left, Y: top, Width: width, Height: height}
}

func firstSet(a, b string) string {
	if a != "" {
		return strings.TrimSpace(a)
	}
	return strings.TrimSpace(b)
}

func orZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
