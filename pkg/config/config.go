// Package config loads treemap settings from TOML files.
//
// A config file has one table per concern. Every key is optional:
//
//	[layout]
//	sort = "desc"              # "asc", "desc", true (desc), false or "none"
//	square_ratio = 1.618
//	leaf_depth = 2
//	zoom_to_node_ratio = 0.1024
//
//	[layout.box]
//	left = "center"
//	top = "middle"
//	width = "80%"
//	height = "80%"
//
//	[layout.style]
//	border_width = 2
//	gap_width = 2
//	upper_label_show = true
//
//	[[layout.levels]]          # index = depth, root first
//	[[layout.levels]]
//	gap_width = 1
//
//	[layout.nodes."src/pkg"]   # keyed by node ID
//	children_visible_min = 400
//
//	[render]
//	formats = ["svg", "png"]
//	width = 1200
//	height = 800
//	labels = true
//
//	[cache]
//	dir = "~/.cache/treemap"
//	ttl = "168h"
//	redis_url = "redis://localhost:6379/0"
//
//	[server]
//	addr = ":8080"
//
// Command-line flags override file values.
package config

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/geom"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// Defaults for the render and server tables.
const (
	DefaultWidth  = 800.0
	DefaultHeight = 600.0
	DefaultAddr   = ":8080"
	DefaultTTL    = 7 * 24 * time.Hour
)

// Config is a decoded config file.
type Config struct {
	Layout Layout `toml:"layout"`
	Render Render `toml:"render"`
	Cache  Cache  `toml:"cache"`
	Server Server `toml:"server"`

	hasLayout bool
}

// Layout mirrors [treemap.Options]. Sort is kept raw because TOML allows
// either a string or a boolean.
type Layout struct {
	Sort            any                          `toml:"sort"`
	SquareRatio     float64                      `toml:"square_ratio"`
	LeafDepth       *int                         `toml:"leaf_depth"`
	ZoomToNodeRatio float64                      `toml:"zoom_to_node_ratio"`
	Box             geom.BoxParams               `toml:"box"`
	Style           treemap.NodeStyle            `toml:"style"`
	Levels          []treemap.NodeStyle          `toml:"levels"`
	Nodes           map[string]treemap.NodeStyle `toml:"nodes"`
}

// Render holds output settings.
type Render struct {
	Formats []string `toml:"formats"`
	Width   float64  `toml:"width"`
	Height  float64  `toml:"height"`
	Labels  *bool    `toml:"labels"`
}

// Cache selects and tunes the cache backend.
type Cache struct {
	Disabled bool   `toml:"disabled"`
	Dir      string `toml:"dir"`
	TTL      string `toml:"ttl"`
	RedisURL string `toml:"redis_url"`
	Prefix   string `toml:"prefix"`
}

// Server holds `treemap serve` settings.
type Server struct {
	Addr         string `toml:"addr"`
	MaxBodyBytes int64  `toml:"max_body_bytes"`
}

// Load reads and decodes the TOML file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open config %s", path)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a TOML config from r, validates it and applies defaults.
func Decode(r io.Reader) (*Config, error) {
	var c Config
	md, err := toml.NewDecoder(r).Decode(&c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidOption, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidOption, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if _, err := c.LayoutOptions(); err != nil {
		return nil, err
	}
	c.hasLayout = md.IsDefined("layout")
	if _, err := c.CacheTTL(); err != nil {
		return nil, err
	}
	c.SetDefaults()
	return &c, nil
}

// Default returns a config with every default applied.
func Default() *Config {
	c := &Config{}
	c.SetDefaults()
	return c
}

// SetDefaults fills unset render and server fields.
func (c *Config) SetDefaults() {
	if len(c.Render.Formats) == 0 {
		c.Render.Formats = []string{"svg"}
	}
	if c.Render.Width == 0 {
		c.Render.Width = DefaultWidth
	}
	if c.Render.Height == 0 {
		c.Render.Height = DefaultHeight
	}
	if c.Render.Labels == nil {
		c.Render.Labels = treemap.Bool(true)
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = 8 << 20
	}
}

// LayoutOptions converts the layout table into engine options with
// defaults applied.
func (c *Config) LayoutOptions() (treemap.Options, error) {
	order, err := parseSort(c.Layout.Sort)
	if err != nil {
		return treemap.Options{}, err
	}
	if c.Layout.LeafDepth != nil && *c.Layout.LeafDepth < 0 {
		return treemap.Options{}, errors.New(errors.ErrCodeInvalidOption, "leaf_depth must be >= 0, got %d", *c.Layout.LeafDepth)
	}
	if c.Layout.SquareRatio < 0 {
		return treemap.Options{}, errors.New(errors.ErrCodeInvalidOption, "square_ratio must be positive, got %v", c.Layout.SquareRatio)
	}
	opts := treemap.Options{
		Sort:            order,
		SquareRatio:     c.Layout.SquareRatio,
		LeafDepth:       c.Layout.LeafDepth,
		ZoomToNodeRatio: c.Layout.ZoomToNodeRatio,
		Box:             c.Layout.Box,
		Style:           c.Layout.Style,
		Levels:          c.Layout.Levels,
		Nodes:           c.Layout.Nodes,
	}
	opts.SetDefaults()
	return opts, nil
}

// HasLayout reports whether the decoded file carried a [layout] table.
// Only then should its options override those of a tree document.
func (c *Config) HasLayout() bool { return c.hasLayout }

// CacheTTL parses the cache ttl, defaulting to [DefaultTTL].
func (c *Config) CacheTTL() (time.Duration, error) {
	if c.Cache.TTL == "" {
		return DefaultTTL, nil
	}
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeInvalidOption, err, "cache ttl")
	}
	return d, nil
}

func parseSort(v any) (treemap.Order, error) {
	switch s := v.(type) {
	case nil:
		return treemap.Unordered, nil
	case bool:
		if s {
			return treemap.Descending, nil
		}
		return treemap.Unordered, nil
	case string:
		o, err := treemap.ParseOrder(s)
		if err != nil {
			return o, errors.Wrap(errors.ErrCodeInvalidOption, err, "layout.sort")
		}
		return o, nil
	}
	return treemap.Unordered, errors.New(errors.ErrCodeInvalidOption, "layout.sort must be a string or boolean, got %T", v)
}
