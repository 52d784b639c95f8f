// Package pipeline runs the treemap pipeline for the CLI and the HTTP API.
//
// The pipeline has three stages:
//
//  1. Load: decode a JSON or YAML tree document and build the tree
//  2. Layout: replay an interaction sequence through one engine
//  3. Render: draw the final layout in one or more formats
//
// Layouts and artifacts are cached by content hash, so re-running the same
// document with the same options, viewport and interactions is free.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Input{Data: doc, Format: "json"}, pipeline.Options{
//	    Viewport:     geom.Size{Width: 1200, Height: 800},
//	    Interactions: []string{"zoom:src", "root:src/pkg"},
//	    Formats:      []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/treemap/pkg/cache"
	"github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/geom"
	tio "github.com/matzehuels/treemap/pkg/io"
	"github.com/matzehuels/treemap/pkg/render/sink"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default viewport width in pixels.
	DefaultWidth = 800.0

	// DefaultHeight is the default viewport height in pixels.
	DefaultHeight = 600.0

	// MaxInteractions bounds the interaction sequence of one run.
	MaxInteractions = 256
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Input is a raw tree document.
type Input struct {
	Data   []byte
	Format string // "json" or "yaml"
}

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Layout overrides the options carried by the document. Per-item styles
	// from the document still apply underneath Layout.Nodes.
	Layout *treemap.Options `json:"layout,omitempty"`

	// Sort and LeafDepth adjust the resolved options without replacing
	// them.
	Sort      string `json:"sort,omitempty"`
	LeafDepth *int   `json:"leaf_depth,omitempty"`

	Viewport     geom.Size `json:"viewport"`
	Interactions []string  `json:"interactions,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Labels  *bool    `json:"labels,omitempty"`
	Theme   string   `json:"theme,omitempty"`
	Scale   float64  `json:"scale,omitempty"`

	// Refresh bypasses cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger   `json:"-"`
	TTL    time.Duration `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Layout is the final layout document.
	Layout tio.Layout

	// TreeHash is the content hash of the input document.
	TreeHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount    int
	VisibleCount int
	LoadTime     time.Duration
	LayoutTime   time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool
}

// =============================================================================
// Options Methods
// =============================================================================

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Viewport.Width == 0 {
		o.Viewport.Width = DefaultWidth
	}
	if o.Viewport.Height == 0 {
		o.Viewport.Height = DefaultHeight
	}
	if o.TTL == 0 {
		o.TTL = cache.TTLLayout
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := errors.ValidateViewport(o.Viewport.Width, o.Viewport.Height); err != nil {
		return err
	}
	if o.Sort != "" {
		if _, err := treemap.ParseOrder(o.Sort); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidOption, err, "sort")
		}
	}
	if o.LeafDepth != nil && *o.LeafDepth < 0 {
		return errors.New(errors.ErrCodeInvalidOption, "leaf depth must be >= 0, got %d", *o.LeafDepth)
	}
	if len(o.Interactions) > MaxInteractions {
		return errors.New(errors.ErrCodeInvalidPayload, "too many interactions (max %d)", MaxInteractions)
	}
	_, err := ParseInteractions(o.Interactions)
	return err
}

// adjust applies Sort and LeafDepth to resolved layout options.
func (o *Options) adjust(opts *treemap.Options) {
	if o.Sort != "" {
		if order, err := treemap.ParseOrder(o.Sort); err == nil {
			opts.Sort = order
		}
	}
	if o.LeafDepth != nil {
		opts.LeafDepth = treemap.Int(*o.LeafDepth)
	}
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{sink.FormatSVG}
	}
	for i, f := range o.Formats {
		o.Formats[i] = strings.ToLower(f)
	}
	if o.Labels == nil {
		o.Labels = treemap.Bool(true)
	}
	if o.Scale == 0 {
		o.Scale = 1
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	for _, f := range o.Formats {
		if err := errors.ValidateFormat(f, sink.Formats); err != nil {
			return err
		}
	}
	if o.Scale < 0 || o.Scale > 8 {
		return errors.New(errors.ErrCodeInvalidOption, "scale must be in (0, 8], got %v", o.Scale)
	}
	_, err := sink.ParseTheme(o.Theme)
	return err
}

// SinkOptions converts the render options for [sink.Render].
func (o *Options) SinkOptions() []sink.Option {
	theme, _ := sink.ParseTheme(o.Theme)
	return []sink.Option{
		sink.WithLabels(o.Labels == nil || *o.Labels),
		sink.WithScale(o.Scale),
		sink.WithTheme(theme),
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts(optionsHash string) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		OptionsHash:  optionsHash,
		Width:        o.Viewport.Width,
		Height:       o.Viewport.Height,
		Interactions: o.Interactions,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Labels: o.Labels == nil || *o.Labels,
		Theme:  o.Theme,
		Scale:  o.Scale,
	}
}
