package sink

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	tio "github.com/matzehuels/treemap/pkg/io"
)

// ToDOT converts the view subtree of l to Graphviz DOT: one box per painted
// node, labelled with its name and value, and an edge from every node to
// each painted view child.
func ToDOT(l tio.Layout) string {
	painted := make(map[string]bool)
	for _, n := range l.Painted() {
		painted[n.ID] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	buf.WriteString("\n")

	for _, n := range l.Nodes {
		if !painted[n.ID] {
			continue
		}
		attrs := []string{fmt.Sprintf("label=%q", fmt.Sprintf("%s\n%g", n.Name, n.Value))}
		if n.ID == l.ViewRoot {
			attrs = append(attrs, "penwidth=2")
		}
		if n.IsAboveViewRoot {
			attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
		}
		if n.IsLeafRoot {
			attrs = append(attrs, "peripheries=2")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, n := range l.Nodes {
		if !painted[n.ID] {
			continue
		}
		for _, c := range n.Children {
			if painted[c] {
				fmt.Fprintf(&buf, "  %q -> %q;\n", n.ID, c)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderDOTSVG lays out a DOT graph with Graphviz and returns SVG.
func RenderDOTSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
