package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	tio "github.com/matzehuels/treemap/pkg/io"
	"github.com/matzehuels/treemap/pkg/pipeline"
)

// layoutFlags are the flags shared by every command that computes a layout.
type layoutFlags struct {
	width        float64
	height       float64
	interactions []string
	sort         string
	leafDepth    int
	noCache      bool
	refresh      bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.width, "width", pipeline.DefaultWidth, "viewport width")
	cmd.Flags().Float64Var(&f.height, "height", pipeline.DefaultHeight, "viewport height")
	cmd.Flags().StringArrayVarP(&f.interactions, "interaction", "i", nil, "interaction to replay after init (repeatable): zoom:<node>, root:<node>, move:x,y,w,h, render:x,y,w,h, resize")
	cmd.Flags().StringVar(&f.sort, "sort", "", "sibling order: desc, asc, none (default: from document)")
	cmd.Flags().IntVar(&f.leafDepth, "leaf-depth", 0, "collapse nodes this deep below the view root")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even when cached")
}

// apply copies explicitly set flags over config defaults.
func (f *layoutFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	if cmd.Flags().Changed("width") {
		opts.Viewport.Width = f.width
	}
	if cmd.Flags().Changed("height") {
		opts.Viewport.Height = f.height
	}
	if cmd.Flags().Changed("leaf-depth") {
		depth := f.leafDepth
		opts.LeafDepth = &depth
	}
	opts.Sort = f.sort
	opts.Interactions = f.interactions
	opts.Refresh = f.refresh
}

// readInput reads a tree document from path, or stdin for "-".
func readInput(path string) (pipeline.Input, error) {
	format := tio.FormatJSON
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		if format, err = tio.FormatFromPath(path); err != nil {
			return pipeline.Input{}, err
		}
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return pipeline.Input{}, fmt.Errorf("read %s: %w", path, err)
	}
	return pipeline.Input{Data: data, Format: format}, nil
}

// layoutCommand creates the layout command for computing treemap layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output string
		flags  layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [tree.json|tree.yaml]",
		Short: "Compute a treemap layout from a tree document",
		Long: `Compute a treemap layout from a tree document.

The layout command reads a JSON or YAML tree document, lays it out in the
viewport and replays any --interaction flags in order, for example

  treemap layout disk.yaml -i zoom:src -i root:src/pkg

The output is a layout.json file (same format as 'render -f json') that
can be rendered to SVG, PNG or DOT with the 'visualize' command.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts pipeline.Options
			if err := c.setCLIDefaults(&opts); err != nil {
				return err
			}
			flags.apply(cmd, &opts)
			return c.runLayout(cmd.Context(), args[0], opts, output, flags.noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout (default: <input>.layout.json)")
	flags.register(cmd)

	return cmd
}

// runLayout loads the tree, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	in, err := readInput(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	layout, cacheHit, err := runner.LayoutWithCacheInfo(ctx, in, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if output == "-" || (output == "" && input == "-") {
		return tio.WriteLayoutDoc(layout, os.Stdout)
	}
	outputPath := output
	if outputPath == "" {
		outputPath = basePath(input) + ".layout.json"
	}
	if err := writeLayoutFile(layout, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(len(layout.Nodes), len(layout.Painted()), cacheHit)
	printNewline()
	printNextStep("Render", appName+" visualize "+outputPath)

	return nil
}

func writeLayoutFile(l tio.Layout, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := tio.WriteLayoutDoc(l, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
