package sink

import (
	"bytes"
	"context"
	"image/png"
	"strings"
	"testing"

	"github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/geom"
	tio "github.com/matzehuels/treemap/pkg/io"
	"github.com/matzehuels/treemap/pkg/tree"
	"github.com/matzehuels/treemap/pkg/treemap"
)

func testLayout(t *testing.T, payloads ...treemap.Payload) tio.Layout {
	t.Helper()
	tr, err := tree.Build("disk", []tree.Item{
		{Name: "src", Children: []tree.Item{
			{Name: "main.go", Value: tree.V(60)},
			{Name: "util.go", Value: tree.V(20)},
		}},
		{Name: "docs", Value: tree.V(20)},
	})
	if err != nil {
		t.Fatal(err)
	}
	opts := treemap.Options{
		Sort: treemap.Descending,
		Box:  geom.BoxParams{Left: "10", Top: "10", Width: "380", Height: "280"},
		Style: treemap.NodeStyle{
			BorderWidth:    treemap.Float(2),
			GapWidth:       treemap.Float(2),
			UpperLabelShow: treemap.Bool(true),
		},
	}
	opts.SetDefaults()
	e := treemap.New(tr, opts)
	res := e.Apply(geom.Size{Width: 400, Height: 300}, treemap.InitPayload())
	for _, p := range payloads {
		res = e.Apply(geom.Size{Width: 400, Height: 300}, p)
	}
	return tio.NewLayout(res)
}

func TestRenderSVG(t *testing.T) {
	l := testLayout(t)
	out := string(RenderSVG(l))

	if !strings.HasPrefix(strings.TrimSpace(out), "<?xml") {
		t.Errorf("missing xml header: %.60s", out)
	}
	for _, want := range []string{`width="400"`, `height="300"`, "<title>main.go</title>", `data-id="src/util.go"`, ">src<"} {
		if !strings.Contains(out, want) {
			t.Errorf("svg missing %q", want)
		}
	}

	noLabels := string(RenderSVG(l, WithLabels(false)))
	if strings.Contains(noLabels, "<text") {
		t.Error("WithLabels(false) should omit text")
	}
}

func TestRenderSVGSkipsClippedNodes(t *testing.T) {
	// Moving the root far left pushes every node out of the viewport.
	l := testLayout(t, treemap.MoveTo(geom.Rect{X: -5000, Y: 0, Width: 380, Height: 280}))
	if len(l.Painted()) != 0 {
		t.Fatalf("expected nothing painted, got %d nodes", len(l.Painted()))
	}
	if strings.Contains(string(RenderSVG(l)), "<title>") {
		t.Error("clipped nodes should not be drawn")
	}
}

func TestRenderPNG(t *testing.T) {
	l := testLayout(t)
	data, err := RenderPNG(l, WithScale(2), WithTheme(Dark))
	if err != nil {
		t.Fatalf("RenderPNG() error: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 800 || b.Dy() != 600 {
		t.Errorf("image size = %dx%d, want 800x600", b.Dx(), b.Dy())
	}

	if _, err := RenderPNG(tio.Layout{}); err == nil {
		t.Error("empty viewport should fail")
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testLayout(t))
	for _, want := range []string{
		"digraph G {",
		`"__root__" -> "src";`,
		`"src" -> "src/main.go";`,
		`"__root__" [label="disk\n100", penwidth=2];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("dot missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTMarksAbovePath(t *testing.T) {
	dot := ToDOT(testLayout(t, treemap.RootTo("src")))
	if !strings.Contains(dot, `"__root__" [label="disk\n100", style="rounded,filled,dashed", fillcolor=lightgrey];`) {
		t.Errorf("root should be drawn as above the view root:\n%s", dot)
	}
	if !strings.Contains(dot, `"src" [label="src\n80", penwidth=2];`) {
		t.Errorf("src should be the view root:\n%s", dot)
	}
}

func TestRender(t *testing.T) {
	l := testLayout(t)
	ctx := context.Background()
	for _, format := range Formats {
		t.Run(format, func(t *testing.T) {
			data, err := Render(ctx, l, format)
			if err != nil {
				t.Fatalf("Render(%s) error: %v", format, err)
			}
			if len(data) == 0 {
				t.Error("empty output")
			}
		})
	}

	if _, err := Render(ctx, l, "pdf"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Render(pdf) error = %v, want INVALID_FORMAT", err)
	}
}

func TestRenderJSONRoundTrip(t *testing.T) {
	l := testLayout(t)
	data, err := RenderJSON(l)
	if err != nil {
		t.Fatal(err)
	}
	got, err := tio.UnmarshalLayout(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Nodes) != len(l.Nodes) || got.ViewRoot != l.ViewRoot {
		t.Errorf("round trip lost data: %d nodes, view root %q", len(got.Nodes), got.ViewRoot)
	}
}

func TestFitLabel(t *testing.T) {
	tests := []struct {
		name  string
		width float64
		want  string
	}{
		{"main.go", 200, "main.go"},
		{"main.go", 8 + 7*4, "mai…"},
		{"main.go", 10, ""},
		{"", 200, ""},
	}
	for _, tt := range tests {
		if got := fitLabel(tt.name, tt.width); got != tt.want {
			t.Errorf("fitLabel(%q, %v) = %q, want %q", tt.name, tt.width, got, tt.want)
		}
	}
}

func TestParseTheme(t *testing.T) {
	for _, name := range []string{"", "light", "DARK"} {
		if _, err := ParseTheme(name); err != nil {
			t.Errorf("ParseTheme(%q) error: %v", name, err)
		}
	}
	if _, err := ParseTheme("neon"); err == nil {
		t.Error("ParseTheme(neon) should fail")
	}
}

func TestContentType(t *testing.T) {
	if got := ContentType(FormatPNG); got != "image/png" {
		t.Errorf("ContentType(png) = %q", got)
	}
	if got := ContentType(FormatJSON); got != "application/json" {
		t.Errorf("ContentType(json) = %q", got)
	}
}
