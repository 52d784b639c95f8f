package sink

import (
	"context"
	"image/color"
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/treemap/pkg/errors"
	tio "github.com/matzehuels/treemap/pkg/io"
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// Formats lists every supported output format.
var Formats = []string{FormatSVG, FormatPNG, FormatDOT, FormatJSON}

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	switch format {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatDOT:
		return "text/vnd.graphviz"
	}
	return "application/json"
}

// Option configures a sink.
type Option func(*options)

type options struct {
	labels bool
	scale  float64
	theme  Theme
}

// WithLabels toggles node labels (default on).
func WithLabels(on bool) Option { return func(o *options) { o.labels = on } }

// WithScale sets the PNG scale factor (default 1).
func WithScale(s float64) Option {
	return func(o *options) {
		if s > 0 {
			o.scale = s
		}
	}
}

// WithTheme selects the color theme.
func WithTheme(t Theme) Option { return func(o *options) { o.theme = t } }

func newOptions(opts []Option) options {
	o := options{labels: true, scale: 1, theme: Light}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Render dispatches to the sink for format.
func Render(ctx context.Context, l tio.Layout, format string, opts ...Option) ([]byte, error) {
	if err := errors.ValidateFormat(format, Formats); err != nil {
		return nil, err
	}
	switch strings.ToLower(format) {
	case FormatSVG:
		return RenderSVG(l, opts...), nil
	case FormatPNG:
		return RenderPNG(l, opts...)
	case FormatDOT:
		return []byte(ToDOT(l)), nil
	default:
		return RenderJSON(l)
	}
}

// Theme is a color scheme: a background plus fills cycled by depth.
type Theme struct {
	Name       string
	Background color.RGBA
	Border     color.RGBA
	Text       color.RGBA
	Fills      []color.RGBA
}

var (
	// Light is the default theme.
	Light = Theme{
		Name:       "light",
		Background: color.RGBA{0xff, 0xff, 0xff, 0xff},
		Border:     color.RGBA{0xff, 0xff, 0xff, 0xff},
		Text:       color.RGBA{0x11, 0x11, 0x11, 0xff},
		Fills: []color.RGBA{
			{0x5b, 0x8f, 0xf9, 0xff},
			{0x5a, 0xd8, 0xa6, 0xff},
			{0xf6, 0xbd, 0x16, 0xff},
			{0xe8, 0x68, 0x4a, 0xff},
			{0x6d, 0xc8, 0xec, 0xff},
			{0x92, 0x70, 0xca, 0xff},
		},
	}
	// Dark suits dark backgrounds.
	Dark = Theme{
		Name:       "dark",
		Background: color.RGBA{0x1e, 0x1e, 0x24, 0xff},
		Border:     color.RGBA{0x1e, 0x1e, 0x24, 0xff},
		Text:       color.RGBA{0xee, 0xee, 0xee, 0xff},
		Fills: []color.RGBA{
			{0x3a, 0x5b, 0xa0, 0xff},
			{0x2f, 0x8a, 0x6a, 0xff},
			{0xa8, 0x7f, 0x10, 0xff},
			{0x9c, 0x43, 0x2f, 0xff},
			{0x3f, 0x86, 0xa2, 0xff},
			{0x5f, 0x47, 0x8a, 0xff},
		},
	}
)

// ParseTheme looks a theme up by name. The empty name is [Light].
func ParseTheme(name string) (Theme, error) {
	switch strings.ToLower(name) {
	case "", Light.Name:
		return Light, nil
	case Dark.Name:
		return Dark, nil
	}
	return Theme{}, errors.New(errors.ErrCodeInvalidOption, "unknown theme %q (must be light or dark)", name)
}

// fill picks a palette entry by depth.
func (t Theme) fill(n tio.Node) color.RGBA {
	if len(t.Fills) == 0 {
		return t.Background
	}
	return t.Fills[n.Depth%len(t.Fills)]
}

// Approximate glyph metrics of the 7x13 fixed font used for labels.
const (
	glyphWidth  = 7.0
	glyphHeight = 13.0
	labelPad    = 4.0
)

// fitLabel shortens name to fit width, or returns "" when nothing fits.
func fitLabel(name string, width float64) string {
	avail := int((width - 2*labelPad) / glyphWidth)
	if avail <= 0 {
		return ""
	}
	if utf8.RuneCountInString(name) <= avail {
		return name
	}
	if avail <= 1 {
		return ""
	}
	r := []rune(name)
	return string(r[:avail-1]) + "…"
}

// labelBox returns where a node's label goes: the upper band for parents
// that show one, the top-left corner for leaves.
func labelBox(n tio.Node) (x, y, w float64, ok bool) {
	switch {
	case n.UpperLabelHeight > 0 && len(n.Children) > 0:
		if n.UpperLabelHeight < glyphHeight {
			return 0, 0, 0, false
		}
		return n.Rect.X + n.BorderWidth, n.Rect.Y + n.BorderWidth + (n.UpperHeight-n.BorderWidth)/2, n.Rect.Width - 2*n.BorderWidth, true
	case len(n.Children) == 0:
		if n.Rect.Height < glyphHeight+2*labelPad {
			return 0, 0, 0, false
		}
		return n.Rect.X, n.Rect.Y + labelPad + glyphHeight/2, n.Rect.Width, true
	}
	return 0, 0, 0, false
}

// shifted returns the node rectangle in viewport coordinates.
func shifted(l tio.Layout, n tio.Node) tio.Node {
	n.Rect = n.Rect.Translate(l.Container.X, l.Container.Y)
	return n
}
