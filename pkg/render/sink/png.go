package sink

import (
	"bytes"
	"fmt"
	"image/png"
	"math"

	"git.sr.ht/~sbinet/gg"
	"golang.org/x/image/font/basicfont"

	tio "github.com/matzehuels/treemap/pkg/io"
)

// RenderPNG rasterizes the painted nodes of l. The image is the viewport
// size times the scale set with [WithScale].
func RenderPNG(l tio.Layout, opts ...Option) ([]byte, error) {
	o := newOptions(opts)
	w := int(math.Ceil(l.Viewport.Width * o.scale))
	h := int(math.Ceil(l.Viewport.Height * o.scale))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("render png: empty viewport %vx%v", l.Viewport.Width, l.Viewport.Height)
	}

	dc := gg.NewContext(w, h)
	dc.SetColor(o.theme.Background)
	dc.Clear()
	dc.Scale(o.scale, o.scale)
	dc.SetFontFace(basicfont.Face7x13)

	for _, n := range l.Painted() {
		n = shifted(l, n)
		dc.SetColor(o.theme.fill(n))
		dc.DrawRectangle(n.Rect.X, n.Rect.Y, n.Rect.Width, n.Rect.Height)
		dc.Fill()

		dc.SetColor(o.theme.Border)
		dc.SetLineWidth(strokeWidth(n))
		dc.DrawRectangle(n.Rect.X, n.Rect.Y, n.Rect.Width, n.Rect.Height)
		dc.Stroke()

		if o.labels {
			if x, y, lw, ok := labelBox(n); ok {
				if text := fitLabel(n.Name, lw); text != "" {
					dc.SetColor(o.theme.Text)
					dc.DrawStringAnchored(text, x+labelPad, y, 0, 0.5)
				}
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dc.Image()); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
