// Package pkg provides the core libraries for treemap layout and rendering.
//
// # Overview
//
// Treemap turns a weighted tree into nested rectangles whose areas follow
// node values, and replays the interactions of an interactive treemap
// (zoom, drill down, pan, resize) as successive layout passes. The pkg
// directory is organized into four main areas:
//
//  1. [tree], [geom] - Data model (nodes, values, rectangles, boxes)
//  2. [treemap] - The layout engine (squarify, thresholds, view roots)
//  3. [io], [render/sink] - Documents in and artifacts out
//  4. [pipeline], [cache], [config], [observability] - Orchestration
//
// # Architecture
//
// The typical data flow:
//
//	Tree document (JSON / YAML)
//	         ↓
//	    [io] package (decode + build tree, per-item styles)
//	         ↓
//	    [treemap] package (init pass + interaction replay)
//	         ↓
//	    [io] layout document
//	         ↓
//	    [render/sink] package (SVG / PNG / DOT / JSON)
//
// # Quick Start
//
//	loaded, _ := io.ImportTree("disk.yaml")
//	e := treemap.New(loaded.Tree, loaded.Options)
//	vp := geom.Size{Width: 800, Height: 600}
//	e.Apply(vp, treemap.InitPayload())
//	res := e.Apply(vp, treemap.ZoomTo("src"))
//	svg, _ := sink.Render(ctx, io.NewLayout(res), sink.FormatSVG)
//
// Or let [pipeline.Runner] do all of it, with caching:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	result, _ := runner.Execute(ctx, pipeline.Input{Data: data, Format: "yaml"},
//	    pipeline.Options{Interactions: []string{"zoom:src"}, Formats: []string{"svg"}})
//
// # Main Packages
//
// [tree] - Immutable tree of named, valued nodes with stable IDs and
// aggregated values.
//
// [geom] - Rectangles, sizes and the box model that places the container in
// the viewport.
//
// [treemap] - The engine: child selection, squarified row packing, root size
// estimation and visibility pruning behind one Apply call per interaction.
//
// [io] - Tree documents in, layout documents out.
//
// [render/sink] - Output formats rendered from layout documents.
//
// [pipeline] - Load, layout and render with cache lookups, used by both the
// CLI and the HTTP API.
//
// [cache] - File, Redis and no-op caches plus content-addressed keys.
//
// [config] - TOML configuration for the CLI and server.
//
// [observability] - Hooks for pipeline, cache and HTTP events.
//
// [errors] - Structured error codes shared by every package.
//
// # Testing
//
//	go test ./pkg/...                      # All tests
//	go test ./pkg/treemap/...              # Engine only
//	TREEMAP_TEST_REDIS_URL=redis://localhost:6379/15 go test ./pkg/cache
//
// [tree]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/tree
// [geom]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/geom
// [treemap]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/treemap
// [io]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/io
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/render/sink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/pipeline
// [pipeline.Runner]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/pipeline#Runner
// [cache]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/treemap/pkg/errors
package pkg
