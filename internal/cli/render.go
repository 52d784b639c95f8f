package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/treemap/pkg/pipeline"
	"github.com/matzehuels/treemap/pkg/render/sink"
)

// renderFlags are the output flags shared by render and visualize.
type renderFlags struct {
	formats  string
	output   string
	theme    string
	scale    float64
	noLabels bool
	dotSVG   bool
}

func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), png, dot, json (comma-separated)")
	cmd.Flags().StringVar(&f.theme, "theme", "", "color theme: light (default), dark")
	cmd.Flags().Float64Var(&f.scale, "scale", 1, "pixel scale for png output")
	cmd.Flags().BoolVar(&f.noLabels, "no-labels", false, "omit node labels")
	cmd.Flags().BoolVar(&f.dotSVG, "dot-svg", false, "also lay out dot output with graphviz (<base>.dot.svg)")
}

func (f *renderFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	if cmd.Flags().Changed("format") {
		opts.Formats = parseFormats(f.formats)
	}
	if cmd.Flags().Changed("scale") {
		opts.Scale = f.scale
	}
	if f.noLabels {
		opts.Labels = new(bool)
	}
	opts.Theme = f.theme
	if f.dotSVG && !slices.Contains(opts.Formats, sink.FormatDOT) {
		opts.Formats = append(opts.Formats, sink.FormatDOT)
	}
}

// renderCommand creates the render command, a shortcut for layout followed
// by visualize.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		lf layoutFlags
		rf renderFlags
	)

	cmd := &cobra.Command{
		Use:   "render [tree.json|tree.yaml]",
		Short: "Render a tree document as a treemap",
		Long: `Render a tree document as a treemap.

The render command lays out the tree, replays any --interaction flags and
writes the requested formats. It is equivalent to 'layout' followed by
'visualize'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts pipeline.Options
			if err := c.setCLIDefaults(&opts); err != nil {
				return err
			}
			lf.apply(cmd, &opts)
			rf.apply(cmd, &opts)
			return c.runRender(cmd.Context(), args[0], opts, rf, lf.noCache)
		},
	}

	lf.register(cmd)
	rf.register(cmd)

	return cmd
}

// runRender runs the full pipeline and writes every artifact.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, rf renderFlags, noCache bool) error {
	in, err := readInput(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering treemap...")
	spinner.Start()

	result, err := runner.Execute(ctx, in, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.StopWithSuccess("Rendered treemap")

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if err := c.writeArtifacts(ctx, artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		input:     input,
		output:    rf.output,
		dotSVG:    rf.dotSVG,
	}); err != nil {
		return err
	}
	printStats(result.Stats.NodeCount, result.Stats.VisibleCount, result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	return nil
}

// artifactWriteParams describes where rendered outputs go.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
	dotSVG    bool
}

// writeArtifacts writes each artifact to <base>.<format>, or to output
// directly when a single format was requested. JSON goes to
// <base>.layout.json so it never replaces a JSON tree document.
func (c *CLI) writeArtifacts(ctx context.Context, p artifactWriteParams) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	base := outputBase(p.output, p.input)
	for _, format := range p.formats {
		path := base + "." + format
		if format == sink.FormatJSON {
			path = base + ".layout.json"
		}
		if len(p.formats) == 1 && p.output != "" {
			path = p.output
		}
		if err := writeOutput(path, p.artifacts[format]); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		logger.Debugf("Generated %s: %d bytes", path, len(p.artifacts[format]))
		printFile(path)

		if format == sink.FormatDOT && p.dotSVG {
			svg, err := sink.RenderDOTSVG(ctx, string(p.artifacts[format]))
			if err != nil {
				return fmt.Errorf("graphviz: %w", err)
			}
			path := base + ".dot.svg"
			if err := writeOutput(path, svg); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			printFile(path)
		}
	}
	prog.done(fmt.Sprintf("Wrote %d artifacts", len(p.formats)))
	return nil
}

// outputBase derives the base output path. A known format extension on
// output is stripped; without output the input path minus its extension is
// used.
func outputBase(output, input string) string {
	if output == "" {
		if input == "-" {
			return appName
		}
		return basePath(input)
	}
	ext := filepath.Ext(output)
	if slices.Contains(sink.Formats, strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

func writeOutput(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// openOutput opens path for writing; "-" means stdout.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
