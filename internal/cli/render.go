package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/SheepTester-forks/curricular-analytics-graph/pkg/errors"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/pipeline"
)

// stdoutPath as -o writes a single artifact to standard output.
const stdoutPath = "-"

// renderOpts holds the command-line flags for the render command. Empty
// values fall back to the config file.
type renderOpts struct {
	output    string  // output file (single format) or base path (multiple)
	kind      string  // plan or nodelink
	formats   string  // comma-separated output formats
	layout    string  // grid or graphviz, for plans
	metric    string  // nodelink label metric
	redundant string  // visible, dashed or hidden
	termNames string  // index, quarter or semester
	selectID  string  // course to bake in as selected
	width     float64 // frame width in pixels
	height    float64 // frame height in pixels
	scale     float64 // PNG scale factor
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var flags planFlags
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Draw a plan as SVG, PDF, PNG or DOT",
		Long: `Render draws a plan. The plan type is a term grid with requisite links;
--select bakes in a selected course with its requisite chains and longest
path. The nodelink type is a Graphviz diagram, also available as DOT.

PDF and PNG output need rsvg-convert on PATH.`,
		Example: `  curricula render plan.csv
  curricula render --select 12 -o plan.svg plan.csv
  curricula render --type nodelink --format svg,dot --metric blocking plan.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), args[0], &flags, &opts)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format), base path (multiple) or - for stdout")
	cmd.Flags().StringVarP(&opts.kind, "type", "t", pipeline.KindPlan, "drawing type: plan, nodelink")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): svg (default), pdf, png, dot, json (comma-separated)")
	cmd.Flags().StringVar(&opts.layout, "layout", "", "plan layout: grid, graphviz (default from config)")
	cmd.Flags().StringVar(&opts.metric, "metric", "", "nodelink label: complexity, blocking, delay, centrality")
	cmd.Flags().StringVar(&opts.redundant, "redundant", "", "redundant requisites: visible, dashed, hidden (default from config)")
	cmd.Flags().StringVar(&opts.termNames, "term-names", "", "term labels: index, quarter, semester (default from config)")
	cmd.Flags().StringVar(&opts.selectID, "select", "", "course id to show as selected")
	cmd.Flags().Float64Var(&opts.width, "width", 0, "frame width (default from config)")
	cmd.Flags().Float64Var(&opts.height, "height", 0, "frame height (default from config)")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "PNG scale factor (default from config)")

	return cmd
}

// pipelineOptions merges render flags over the plan options.
func (o *renderOpts) pipelineOptions(base pipeline.Options) (pipeline.Options, error) {
	opts := base
	opts.Kind = o.kind
	opts.Formats = parseFormats(o.formats)
	for _, f := range []struct {
		flag string
		dst  *string
	}{
		{o.layout, &opts.Layout},
		{o.metric, &opts.Metric},
		{o.redundant, &opts.Redundant},
		{o.termNames, &opts.TermNames},
	} {
		if f.flag != "" {
			*f.dst = f.flag
		}
	}
	if o.width > 0 {
		opts.Width = o.width
	}
	if o.height > 0 {
		opts.Height = o.height
	}
	if o.scale > 0 {
		opts.Scale = o.scale
	}
	if o.selectID != "" {
		id, err := errs.ParseCourseID(o.selectID)
		if err != nil {
			return opts, err
		}
		opts.Select = &id
	}
	if o.output == stdoutPath && len(opts.Formats) > 1 {
		return opts, errs.New(errs.ErrCodeInvalidInput, "-o - writes one format, got %d", len(opts.Formats))
	}
	return opts, nil
}

func (c *CLI) runRender(ctx context.Context, w io.Writer, input string, flags *planFlags, ro *renderOpts) error {
	base, err := c.options(flags)
	if err != nil {
		return err
	}
	opts, err := ro.pipelineOptions(base)
	if err != nil {
		return err
	}
	src, err := readSource(input)
	if err != nil {
		return err
	}

	var paths map[string]string
	if ro.output != stdoutPath {
		paths = outputPaths(ro.output, input, opts.Formats)
		for _, format := range opts.Formats {
			if filepath.Clean(paths[format]) == filepath.Clean(input) {
				return errs.New(errs.ErrCodeInvalidPath, "%s output would overwrite the input %s", format, input)
			}
		}
	}

	runner := c.newRunner(nil)
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinner(ctx, os.Stderr, "Rendering "+src.Name+"...")
	spinner.Start()
	result, err := runner.Execute(ctx, src, opts)
	spinner.Stop()
	if err != nil {
		return err
	}

	if ro.output == stdoutPath {
		_, err := w.Write(result.Artifacts[opts.Formats[0]])
		return err
	}

	for _, format := range opts.Formats {
		if err := os.WriteFile(paths[format], result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", paths[format], err)
		}
	}
	prog.done(fmt.Sprintf("Rendered %d file(s)", len(opts.Formats)))

	printSuccess(w, "Rendered %s", opts.Kind)
	printStats(w, result.Stats.Courses, result.Stats.Requisites, result.Stats.Terms, result.CacheHit)
	for _, format := range opts.Formats {
		printFile(w, paths[format])
	}
	return nil
}

// outputPaths names one file per format. A single format goes to output
// when it is set; otherwise files share a base path derived from output or
// the input name.
func outputPaths(output, input string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .pdf, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
