package sink

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	svg "github.com/ajstarks/svgo"

	tio "github.com/matzehuels/treemap/pkg/io"
)

// RenderSVG draws the painted nodes of l as an SVG document the size of
// the viewport.
func RenderSVG(l tio.Layout, opts ...Option) []byte {
	o := newOptions(opts)
	w, h := int(math.Ceil(l.Viewport.Width)), int(math.Ceil(l.Viewport.Height))

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(w, h)
	canvas.Rect(0, 0, w, h, "fill:"+css(o.theme.Background))

	for _, n := range l.Painted() {
		n = shifted(l, n)
		canvas.Group(fmt.Sprintf(`class="node" data-id=%q`, n.ID))
		canvas.Title(n.Name)
		canvas.Rect(px(n.Rect.X), px(n.Rect.Y), px(n.Rect.Width), px(n.Rect.Height),
			fmt.Sprintf("fill:%s;stroke:%s;stroke-width:%g", css(o.theme.fill(n)), css(o.theme.Border), strokeWidth(n)))
		if o.labels {
			if x, y, lw, ok := labelBox(n); ok {
				if text := fitLabel(n.Name, lw); text != "" {
					canvas.Text(px(x+labelPad), px(y), text,
						fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace;dominant-baseline:middle", css(o.theme.Text)))
				}
			}
		}
		canvas.Gend()
	}
	canvas.End()
	return buf.Bytes()
}

func strokeWidth(n tio.Node) float64 {
	if n.BorderWidth > 0 {
		return n.BorderWidth
	}
	return 0.5
}

func px(v float64) int { return int(math.Round(v)) }

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
