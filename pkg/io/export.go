package io

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/goccy/go-json"

	"github.com/matzehuels/treemap/pkg/geom"
	"github.com/matzehuels/treemap/pkg/tree"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// Layout is the serialized form of a layout pass.
type Layout struct {
	Kind          string     `json:"kind"`
	Viewport      geom.Size  `json:"viewport"`
	Container     geom.Rect  `json:"container"`
	RootSize      geom.Size  `json:"root_size"`
	RootPosition  geom.Point `json:"root_position"`
	ViewRoot      string     `json:"view_root"`
	ViewAbovePath []string   `json:"view_above_path,omitempty"`
	Direction     string     `json:"direction,omitempty"`
	Target        string     `json:"target,omitempty"`
	Reused        bool       `json:"reused,omitempty"`
	Nodes         []Node     `json:"nodes"`
}

// Node is the layout of one in-view node. Rect is absolute, in container
// coordinates.
type Node struct {
	ID               string        `json:"id"`
	Name             string        `json:"name"`
	Parent           string        `json:"parent,omitempty"`
	Depth            int           `json:"depth"`
	Value            float64       `json:"value"`
	Rect             geom.Rect     `json:"rect"`
	Area             float64       `json:"area"`
	BorderWidth      float64       `json:"border_width,omitempty"`
	UpperHeight      float64       `json:"upper_height,omitempty"`
	UpperLabelHeight float64       `json:"upper_label_height,omitempty"`
	DataExtent       *[2]float64   `json:"data_extent,omitempty"`
	Children         []string      `json:"children,omitempty"`
	IsLeafRoot       bool          `json:"is_leaf_root,omitempty"`
	IsAboveViewRoot  bool          `json:"is_above_view_root,omitempty"`
	Invisible        bool          `json:"invisible,omitempty"`
	Meta             tree.Metadata `json:"meta,omitempty"`
}

// NewLayout converts a result into its serialized form. Nodes are listed
// parents first, following view children from the tree root.
func NewLayout(res treemap.Result) Layout {
	out := Layout{
		Kind:         res.Kind.String(),
		Viewport:     res.Viewport,
		Container:    res.Container,
		RootSize:     res.RootSize,
		RootPosition: res.RootPosition,
		Reused:       res.Reused,
		Nodes:        []Node{},
	}
	if res.ViewRoot != nil {
		out.ViewRoot = res.ViewRoot.ID
	}
	for _, n := range res.ViewAbovePath {
		out.ViewAbovePath = append(out.ViewAbovePath, n.ID)
	}
	if res.Direction != treemap.NoDirection {
		out.Direction = res.Direction.String()
	}
	if res.Target != nil {
		out.Target = res.Target.ID
	}

	t := res.Tree()
	if t == nil {
		return out
	}
	var walk func(n *tree.Node)
	walk = func(n *tree.Node) {
		rec := res.Record(n)
		if !rec.IsInView {
			return
		}
		out.Nodes = append(out.Nodes, newNode(res, n, rec))
		for _, c := range res.ViewChildren(n) {
			walk(c)
		}
	}
	walk(t.Root())
	return out
}

func newNode(res treemap.Result, n *tree.Node, rec treemap.Record) Node {
	abs, _ := res.AbsoluteRect(n)
	nd := Node{
		ID:               n.ID,
		Name:             n.Name,
		Depth:            n.Depth,
		Value:            n.Value,
		Rect:             abs,
		Area:             rec.Area,
		BorderWidth:      rec.BorderWidth,
		UpperHeight:      rec.UpperHeight,
		UpperLabelHeight: rec.UpperLabelHeight,
		IsLeafRoot:       rec.IsLeafRoot,
		IsAboveViewRoot:  rec.IsAboveViewRoot,
		Invisible:        rec.Invisible,
	}
	if len(n.Meta) > 0 {
		nd.Meta = n.Meta
	}
	if n.Parent != nil {
		nd.Parent = n.Parent.ID
	}
	if !math.IsNaN(rec.DataExtent[0]) && !math.IsNaN(rec.DataExtent[1]) {
		ext := rec.DataExtent
		nd.DataExtent = &ext
	}
	for _, c := range res.ViewChildren(n) {
		nd.Children = append(nd.Children, c.ID)
	}
	return nd
}

// WriteLayout encodes the result as indented JSON to w.
func WriteLayout(res treemap.Result, w io.Writer) error {
	return WriteLayoutDoc(NewLayout(res), w)
}

// WriteLayoutDoc encodes an already converted layout as indented JSON.
func WriteLayoutDoc(l Layout, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// MarshalLayout returns the compact JSON form of the result.
func MarshalLayout(res treemap.Result) ([]byte, error) {
	return json.Marshal(NewLayout(res))
}

// ExportLayout writes the result to a JSON file at path.
func ExportLayout(res treemap.Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteLayout(res, f)
}

// UnmarshalLayout decodes a layout document produced by [MarshalLayout] or
// [WriteLayout].
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("decode layout: %w", err)
	}
	return l, nil
}

// Painted returns the nodes a renderer should draw, parents first.
func (l Layout) Painted() []Node {
	out := make([]Node, 0, len(l.Nodes))
	for _, n := range l.Nodes {
		if !n.Invisible {
			out = append(out, n)
		}
	}
	return out
}
