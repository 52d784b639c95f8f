// Package sink renders layout documents to output formats.
//
// Every sink consumes an [io.Layout], the serialized form of a layout pass,
// so cached layouts render without rerunning the engine. Only painted nodes
// (in view and not clipped) are drawn, parents before children, at their
// absolute position in the viewport.
//
// # Formats
//
//   - svg: vector output via github.com/ajstarks/svgo
//   - png: raster output via git.sr.ht/~sbinet/gg
//   - dot: the view subtree as a Graphviz node-link graph
//   - json: the layout document itself
//
// [RenderDOTSVG] lays out a DOT graph with the embedded Graphviz runtime
// (github.com/goccy/go-graphviz).
//
// [io.Layout]: github.com/matzehuels/treemap/pkg/io.Layout
package sink
