// Package io reads tree documents and writes layout documents.
//
// # Tree Documents
//
// A tree document is JSON or YAML. The top level is either an object with a
// root name, optional layout options and the top-level items, or a bare list
// of items:
//
//	{
//	  "name": "disk usage",
//	  "options": {"sort": "desc", "leafDepth": 2},
//	  "children": [
//	    {"name": "src", "children": [
//	      {"name": "main.go", "value": 1200},
//	      {"name": "util.go", "value": 300, "style": {"visibleMin": 0}}
//	    ]},
//	    {"name": "README.md", "value": 80}
//	  ]
//	}
//
// Item fields:
//   - name: display name (required for generated IDs)
//   - id: explicit unique ID; defaults to the name path ("src/main.go")
//   - value: weight; missing values are the sum of the children
//   - dims: extra numeric dimensions addressed by visualDimension 1, 2, ...
//   - meta: freeform key-value data carried to the layout output
//   - style: per-node overrides of the series style
//   - children: nested items
//
// Per-item styles are collected into [treemap.Options.Nodes] keyed by the
// final node ID.
//
// # Layout Documents
//
// [WriteLayout] encodes a [treemap.Result] as JSON: the pass metadata plus
// one entry per in-view node with its absolute rectangle in container
// coordinates, insets, flags and data extent. Unknown extents are omitted.
//
// # Usage
//
//	doc, err := io.ImportTree("usage.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	e := treemap.New(doc.Tree, doc.Options)
//	res := e.Apply(geom.Size{Width: 800, Height: 600}, treemap.InitPayload())
//	err = io.ExportLayout(res, "layout.json")
package io
