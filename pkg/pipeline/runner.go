package pipeline

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/treemap/pkg/cache"
	"github.com/matzehuels/treemap/pkg/errors"
	tio "github.com/matzehuels/treemap/pkg/io"
	"github.com/matzehuels/treemap/pkg/observability"
	"github.com/matzehuels/treemap/pkg/render/sink"
	"github.com/matzehuels/treemap/pkg/tree"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Every call
// builds its own tree and engine, so one Runner serves concurrent requests.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, in Input, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if err := opts.ValidateForRender(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{TreeHash: cache.Hash(in.Data)}

	layout, stats, hit, err := r.layout(ctx, in, opts)
	if err != nil {
		return nil, err
	}
	result.Layout = layout
	result.Stats = stats
	result.CacheInfo.LayoutHit = hit

	r.Logger.Info("computed layout",
		"nodes", len(layout.Nodes),
		"view_root", layout.ViewRoot,
		"duration", result.Stats.LayoutTime,
		"cached", hit)

	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, layout, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// LayoutWithCacheInfo runs the interaction sequence over the document and
// reports whether the layout came from the cache.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, in Input, opts Options) (tio.Layout, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return tio.Layout{}, false, err
	}
	l, _, hit, err := r.layout(ctx, in, opts)
	return l, hit, err
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, in Input, opts Options) (tio.Layout, error) {
	l, _, err := r.LayoutWithCacheInfo(ctx, in, opts)
	return l, err
}

func (r *Runner) layout(ctx context.Context, in Input, opts Options) (tio.Layout, Stats, bool, error) {
	var stats Stats

	loadStart := time.Now()
	loaded, err := r.Load(ctx, in)
	if err != nil {
		return tio.Layout{}, stats, false, fmt.Errorf("load: %w", err)
	}
	stats.LoadTime = time.Since(loadStart)
	stats.NodeCount = loaded.Tree.Len()

	layoutOpts := ResolveOptions(loaded, opts.Layout)
	opts.adjust(&layoutOpts)
	optionsHash, err := cache.HashValue(layoutOpts)
	if err != nil {
		return tio.Layout{}, stats, false, errors.Wrap(errors.ErrCodeInvalidOption, err, "hash layout options")
	}
	key := r.Keyer.LayoutKey(cache.Hash(in.Data), opts.LayoutKeyOpts(optionsHash))

	layoutStart := time.Now()
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if cached, err := tio.UnmarshalLayout(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "layout")
				stats.LayoutTime = time.Since(layoutStart)
				stats.VisibleCount = len(cached.Painted())
				return cached, stats, true, nil
			}
		} else if err != nil {
			opts.Logger.Warn("cache read failed", "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	payloads, err := ParseInteractions(opts.Interactions)
	if err != nil {
		return tio.Layout{}, stats, false, err
	}
	if err := checkTargets(loaded.Tree, payloads); err != nil {
		return tio.Layout{}, stats, false, err
	}

	res := Replay(ctx, loaded.Tree, layoutOpts, opts, payloads)
	layout := tio.NewLayout(res)
	stats.LayoutTime = time.Since(layoutStart)
	stats.VisibleCount = len(res.Visible())

	if data, err := tio.MarshalLayout(res); err == nil {
		if err := r.Cache.Set(ctx, key, data, opts.TTL); err != nil {
			opts.Logger.Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}
	return layout, stats, false, nil
}

// Load decodes and builds the tree document.
func (r *Runner) Load(ctx context.Context, in Input) (*tio.Loaded, error) {
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, in.Format)
	start := time.Now()

	doc, err := tio.Decode(in.Data, in.Format)
	var loaded *tio.Loaded
	if err == nil {
		loaded, err = doc.Build()
	}

	count := 0
	if loaded != nil {
		count = loaded.Tree.Len()
	}
	hooks.OnLoadComplete(ctx, in.Format, count, time.Since(start), err)
	return loaded, err
}

// Replay applies an init pass followed by payloads to a fresh engine and
// returns the final result.
func Replay(ctx context.Context, t *tree.Tree, layoutOpts treemap.Options, opts Options, payloads []treemap.Payload) treemap.Result {
	hooks := observability.Pipeline()
	e := treemap.New(t, layoutOpts, treemap.WithLogger(opts.Logger))

	run := func(p treemap.Payload) treemap.Result {
		hooks.OnLayoutStart(ctx, p.Kind.String(), t.Len())
		start := time.Now()
		res := e.Apply(opts.Viewport, p)
		hooks.OnLayoutComplete(ctx, p.Kind.String(), time.Since(start), nil)
		return res
	}

	res := run(treemap.InitPayload())
	for _, p := range payloads {
		res = run(p)
	}
	return res
}

// ResolveOptions picks the layout options for a run: override when set,
// otherwise the document's. Per-item styles from the document sit under
// the override's node styles.
func ResolveOptions(loaded *tio.Loaded, override *treemap.Options) treemap.Options {
	if override == nil {
		return loaded.Options
	}
	opts := *override
	nodes := make(map[string]treemap.NodeStyle, len(loaded.Options.Nodes)+len(override.Nodes))
	maps.Copy(nodes, loaded.Options.Nodes)
	for id, st := range override.Nodes {
		nodes[id] = nodes[id].Merge(st)
	}
	if len(nodes) > 0 {
		opts.Nodes = nodes
	}
	opts.SetDefaults()
	return opts
}

func checkTargets(t *tree.Tree, payloads []treemap.Payload) error {
	for _, p := range payloads {
		if p.Target == "" {
			continue
		}
		if _, ok := t.Lookup(p.Target); !ok {
			return errors.New(errors.ErrCodeNodeNotFound, "%s target %q not found", p.Kind, p.Target)
		}
	}
	return nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, layout tio.Layout, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	if opts.TTL == 0 {
		opts.TTL = cache.TTLArtifact
	}

	layoutHash, err := cache.HashValue(layout)
	if err != nil {
		return nil, false, fmt.Errorf("hash layout for cache key: %w", err)
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit && !opts.Refresh {
			observability.Cache().OnCacheHit(ctx, "artifact")
			artifacts[format] = data
			continue
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		return artifacts, true, nil
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, missing)
	start := time.Now()
	for _, format := range missing {
		data, err := sink.Render(ctx, layout, format, opts.SinkOptions()...)
		if err != nil {
			hooks.OnRenderComplete(ctx, missing, time.Since(start), err)
			return nil, false, fmt.Errorf("%s: %w", format, err)
		}
		artifacts[format] = data

		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, opts.TTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		}
	}
	hooks.OnRenderComplete(ctx, missing, time.Since(start), nil)
	return artifacts, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, layout tio.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, layout, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
