package io

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/tree"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// Supported tree document formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// DefaultRootName names the virtual root when a document has none.
const DefaultRootName = "root"

// Document is the decoded form of a tree document.
type Document struct {
	Name     string           `json:"name,omitempty" yaml:"name,omitempty"`
	Options  *treemap.Options `json:"options,omitempty" yaml:"options,omitempty"`
	Children []Item           `json:"children" yaml:"children"`
}

// Item is one node of a tree document.
type Item struct {
	ID       string            `json:"id,omitempty" yaml:"id,omitempty"`
	Name     string            `json:"name" yaml:"name"`
	Value    *float64          `json:"value,omitempty" yaml:"value,omitempty"`
	Dims     []float64         `json:"dims,omitempty" yaml:"dims,omitempty"`
	Meta     tree.Metadata     `json:"meta,omitempty" yaml:"meta,omitempty"`
	Style    treemap.NodeStyle `json:"style,omitempty" yaml:"style,omitempty"`
	Children []Item            `json:"children,omitempty" yaml:"children,omitempty"`
}

// Loaded is a built tree with the options its document carried.
type Loaded struct {
	Tree    *tree.Tree
	Options treemap.Options
	// HasOptions reports whether the document had an options object.
	HasOptions bool
}

// FormatFromPath infers the document format from a file extension.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "cannot infer tree format from %q (use .json, .yaml or .yml)", path)
}

// ReadTree decodes a tree document in the given format from r and builds
// the tree. Per-item styles end up in the returned options, merged over any
// node styles the options object already had.
//
// ReadTree does not close r.
func ReadTree(r io.Reader, format string) (*Loaded, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read tree")
	}
	doc, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	return doc.Build()
}

// Decode parses a tree document without building it.
func Decode(data []byte, format string) (*Document, error) {
	var doc Document
	switch strings.ToLower(format) {
	case FormatJSON:
		if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
			if err := json.Unmarshal(trimmed, &doc.Children); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidTree, err, "decode json")
			}
			return &doc, nil
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidTree, err, "decode json")
		}
	case FormatYAML:
		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidTree, err, "decode yaml")
		}
		if len(node.Content) == 0 {
			return &doc, nil
		}
		var err error
		if top := node.Content[0]; top.Kind == yaml.SequenceNode {
			err = top.Decode(&doc.Children)
		} else {
			err = top.Decode(&doc)
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidTree, err, "decode yaml")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported tree format %q (must be json or yaml)", format)
	}
	return &doc, nil
}

// Build turns the document into a tree and engine options.
func (d *Document) Build() (*Loaded, error) {
	if err := validateItems(d.Children); err != nil {
		return nil, err
	}
	name := d.Name
	if name == "" {
		name = DefaultRootName
	}
	t, err := tree.Build(name, toTreeItems(d.Children))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidTree, err, "build tree")
	}

	out := &Loaded{Tree: t}
	if d.Options != nil {
		out.Options = *d.Options
		out.HasOptions = true
	}
	collectStyles(d.Children, t.Root().Children, &out.Options)
	out.Options.SetDefaults()
	return out, nil
}

// ImportTree reads the tree document at path, inferring the format from
// its extension.
func ImportTree(path string) (*Loaded, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "tree %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", path)
	}
	defer f.Close()
	loaded, err := ReadTree(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return loaded, nil
}

func validateItems(items []Item) error {
	for _, it := range items {
		if it.ID != "" {
			if err := errors.ValidateNodeID(it.ID); err != nil {
				return err
			}
		}
		if err := validateItems(it.Children); err != nil {
			return err
		}
	}
	return nil
}

func toTreeItems(items []Item) []tree.Item {
	if len(items) == 0 {
		return nil
	}
	out := make([]tree.Item, len(items))
	for i, it := range items {
		out[i] = tree.Item{
			ID:       it.ID,
			Name:     it.Name,
			Value:    it.Value,
			Dims:     it.Dims,
			Meta:     it.Meta,
			Children: toTreeItems(it.Children),
		}
	}
	return out
}

// collectStyles walks items alongside the nodes built from them. Build keeps
// item order, so the i-th item is the i-th child.
func collectStyles(items []Item, nodes []*tree.Node, opts *treemap.Options) {
	for i, it := range items {
		n := nodes[i]
		if !it.Style.IsZero() {
			if opts.Nodes == nil {
				opts.Nodes = make(map[string]treemap.NodeStyle)
			}
			opts.Nodes[n.ID] = opts.Nodes[n.ID].Merge(it.Style)
		}
		collectStyles(it.Children, n.Children, opts)
	}
}
