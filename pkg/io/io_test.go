package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/geom"
	"github.com/matzehuels/treemap/pkg/treemap"
)

const jsonDoc = `{
  "name": "disk",
  "options": {"sort": true, "leafDepth": 3},
  "children": [
    {"name": "src", "children": [
      {"name": "main.go", "value": 60},
      {"name": "util.go", "value": 20, "style": {"visibleMin": 0}}
    ]},
    {"id": "readme", "name": "README.md", "value": 20, "meta": {"owner": "docs"}}
  ]
}`

const yamlDoc = `
name: disk
options:
  sort: true
  leafDepth: 3
children:
  - name: src
    children:
      - {name: main.go, value: 60}
      - name: util.go
        value: 20
        style: {visibleMin: 0}
  - id: readme
    name: README.md
    value: 20
    meta: {owner: docs}
`

func TestReadTreeFormats(t *testing.T) {
	for _, tt := range []struct {
		format string
		doc    string
	}{
		{FormatJSON, jsonDoc},
		{FormatYAML, yamlDoc},
	} {
		t.Run(tt.format, func(t *testing.T) {
			got, err := ReadTree(strings.NewReader(tt.doc), tt.format)
			if err != nil {
				t.Fatalf("ReadTree() error: %v", err)
			}
			tr := got.Tree
			if tr.Root().Name != "disk" {
				t.Errorf("root name = %q, want disk", tr.Root().Name)
			}
			if tr.Root().Value != 100 {
				t.Errorf("root value = %v, want 100", tr.Root().Value)
			}
			src, ok := tr.ByID("src")
			if !ok || src.Value != 80 {
				t.Fatalf("src = %v, %v; want value 80", src, ok)
			}
			readme, ok := tr.ByID("readme")
			if !ok || readme.Meta["owner"] != "docs" {
				t.Errorf("readme meta = %v", readme)
			}

			if !got.HasOptions || got.Options.Sort.String() != "desc" {
				t.Errorf("sort = %v, want desc", got.Options.Sort)
			}
			if got.Options.LeafDepth == nil || *got.Options.LeafDepth != 3 {
				t.Errorf("leafDepth = %v, want 3", got.Options.LeafDepth)
			}
			st, ok := got.Options.Nodes["src/util.go"]
			if !ok || st.VisibleMin == nil || *st.VisibleMin != 0 {
				t.Errorf("style of src/util.go = %+v, %v", st, ok)
			}
			if got.Options.SquareRatio == 0 {
				t.Error("defaults should be applied")
			}
		})
	}
}

func TestReadTreeBareList(t *testing.T) {
	for _, tt := range []struct {
		format string
		doc    string
	}{
		{FormatJSON, `[{"name": "a", "value": 1}, {"name": "b", "value": 2}]`},
		{FormatYAML, "- {name: a, value: 1}\n- {name: b, value: 2}\n"},
	} {
		t.Run(tt.format, func(t *testing.T) {
			got, err := ReadTree(strings.NewReader(tt.doc), tt.format)
			if err != nil {
				t.Fatalf("ReadTree() error: %v", err)
			}
			if got.HasOptions {
				t.Error("bare list has no options")
			}
			if n := len(got.Tree.Root().Children); n != 2 {
				t.Errorf("root has %d children, want 2", n)
			}
			if got.Tree.Root().Name != DefaultRootName {
				t.Errorf("root name = %q", got.Tree.Root().Name)
			}
		})
	}
}

func TestReadTreeErrors(t *testing.T) {
	tests := []struct {
		name   string
		format string
		doc    string
		code   errors.Code
	}{
		{"bad json", FormatJSON, `{"children": [`, errors.ErrCodeInvalidTree},
		{"bad yaml", FormatYAML, "children: [", errors.ErrCodeInvalidTree},
		{"duplicate id", FormatJSON, `[{"id": "x", "name": "a"}, {"id": "x", "name": "b"}]`, errors.ErrCodeInvalidTree},
		{"bad id", FormatJSON, `[{"id": "a\u0001", "name": "a"}]`, errors.ErrCodeInvalidInput},
		{"bad sort", FormatJSON, `{"options": {"sort": "sideways"}, "children": []}`, errors.ErrCodeInvalidTree},
		{"unknown format", "xml", `<tree/>`, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTree(strings.NewReader(tt.doc), tt.format)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("error code = %s, want %s (%v)", errors.GetCode(err), tt.code, err)
			}
		})
	}
}

func TestImportTree(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tree.yml")
	if err := os.WriteFile(path, []byte(yamlDoc), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportTree(path); err != nil {
		t.Errorf("ImportTree() error: %v", err)
	}

	if _, err := ImportTree(filepath.Join(dir, "tree.txt")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("unknown extension error = %v", err)
	}
	if _, err := ImportTree(filepath.Join(dir, "missing.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v", err)
	}
}

func TestLayoutRoundTrip(t *testing.T) {
	loaded, err := ReadTree(strings.NewReader(jsonDoc), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	opts := loaded.Options
	opts.Box = geom.BoxParams{Left: "0", Top: "0", Width: "100%", Height: "100%"}
	res := treemap.New(loaded.Tree, opts).Apply(geom.Size{Width: 400, Height: 300}, treemap.InitPayload())

	var buf bytes.Buffer
	if err := WriteLayout(res, &buf); err != nil {
		t.Fatalf("WriteLayout() error: %v", err)
	}
	got, err := UnmarshalLayout(buf.Bytes())
	if err != nil {
		t.Fatalf("UnmarshalLayout() error: %v", err)
	}
	if diff := cmp.Diff(NewLayout(res), got); diff != "" {
		t.Errorf("layout round trip mismatch (-want +got):\n%s", diff)
	}

	if got.Kind != "init" || got.ViewRoot != "__root__" {
		t.Errorf("kind/view root = %s/%s", got.Kind, got.ViewRoot)
	}
	if len(got.Nodes) == 0 || got.Nodes[0].ID != "__root__" {
		t.Fatalf("first node should be the root: %+v", got.Nodes)
	}
	root := got.Nodes[0]
	if root.Rect != (geom.Rect{X: 0, Y: 0, Width: 400, Height: 300}) {
		t.Errorf("root rect = %+v", root.Rect)
	}
	if root.DataExtent == nil || root.DataExtent[0] != 20 || root.DataExtent[1] != 80 {
		t.Errorf("root extent = %v, want [20 80]", root.DataExtent)
	}
	if len(got.Painted()) != len(got.Nodes) {
		t.Errorf("nothing is clipped at init: painted %d of %d", len(got.Painted()), len(got.Nodes))
	}
}
