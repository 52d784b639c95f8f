// Package geom provides the rectangle and box-layout primitives shared by the
// treemap engine and its renderers.
//
// All coordinates are in user units (typically pixels). Y grows downward, so a
// rectangle spans [X, X+Width] horizontally and [Y, Y+Height] vertically.
package geom

// Size is a width/height pair, typically a viewport or container size.
type Size struct {
	Width  float64 `json:"width" yaml:"width" toml:"width"`
	Height float64 `json:"height" yaml:"height" toml:"height"`
}

// Area returns Width*Height.
func (s Size) Area() float64 { return s.Width * s.Height }

// Point is a position in user units.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X      float64 `json:"x" yaml:"x"`
	Y      float64 `json:"y" yaml:"y"`
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Right returns the horizontal end of the rectangle.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the vertical end of the rectangle.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// CenterX returns the horizontal center point of the rectangle.
func (r Rect) CenterX() float64 { return r.X + r.Width/2 }

// CenterY returns the vertical center point of the rectangle.
func (r Rect) CenterY() float64 { return r.Y + r.Height/2 }

// Area returns Width*Height.
func (r Rect) Area() float64 { return r.Width * r.Height }

// Size returns the rectangle's dimensions.
func (r Rect) Size() Size { return Size{Width: r.Width, Height: r.Height} }

// Origin returns the top-left corner.
func (r Rect) Origin() Point { return Point{X: r.X, Y: r.Y} }

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Intersects reports whether r and o overlap. Rectangles that only share an
// edge are considered intersecting.
func (r Rect) Intersects(o Rect) bool {
	return !(r.Right() < o.X || o.Right() < r.X || r.Bottom() < o.Y || o.Bottom() < r.Y)
}

// Contains reports whether the point (x, y) lies inside r, edges included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.Right() && y >= r.Y && y <= r.Bottom()
}

// ContainsRect reports whether o lies entirely inside r, allowing tol of
// floating-point slack on every side.
func (r Rect) ContainsRect(o Rect, tol float64) bool {
	return o.X >= r.X-tol && o.Y >= r.Y-tol &&
		o.Right() <= r.Right()+tol && o.Bottom() <= r.Bottom()+tol
}
