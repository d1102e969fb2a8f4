package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	errs "github.com/SheepTester-forks/curricular-analytics-graph/pkg/errors"
	pkgio "github.com/SheepTester-forks/curricular-analytics-graph/pkg/io"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/plan"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/view"
)

// scheduleCommand creates the schedule command.
func (c *CLI) scheduleCommand() *cobra.Command {
	var flags planFlags
	var format, termNames string

	cmd := &cobra.Command{
		Use:   "schedule <file>",
		Short: "Print the plan term by term",
		Long: `Schedule prints every term of a plan with its courses and units. Curricula
without terms are scheduled first, respecting requisites and a per-term unit
cap.`,
		Example: `  curricula schedule curriculum.csv
  curricula schedule --schedule levels --format json curriculum.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != outputTable && format != outputJSON {
				return errs.New(errs.ErrCodeInvalidFormat, "invalid output format: %q (must be one of: table, json)", format)
			}
			return c.runSchedule(cmd.Context(), cmd.OutOrStdout(), args[0], &flags, format, termNames)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", outputTable, "output format: table, json")
	cmd.Flags().StringVar(&termNames, "term-names", "", "term labels: index, quarter, semester (default from config)")
	return cmd
}

func (c *CLI) runSchedule(ctx context.Context, w io.Writer, path string, flags *planFlags, format, termNames string) error {
	opts, err := c.options(flags)
	if err != nil {
		return err
	}
	if termNames != "" {
		opts.TermNames = termNames
	}
	names, err := view.ParseTermNames(opts.TermNames)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid term names")
	}
	src, err := readSource(path)
	if err != nil {
		return err
	}

	runner := c.newRunner(nil)
	defer runner.Close()

	p, err := runner.Parse(ctx, src, opts)
	if err != nil {
		return err
	}

	if format == outputJSON {
		return pkgio.WriteJSON(w, p, nil)
	}
	printSchedule(w, src.Name, p, names)
	return nil
}

func printSchedule(w io.Writer, title string, p *plan.Plan, names view.TermNameFunc) {
	fmt.Fprintln(w, StyleTitle.Render(title))

	var total float64
	for i := range p.Terms {
		credits := p.TermCredits(i)
		total += credits

		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s %s\n",
			StyleHighlight.Render(names(nil, i)),
			StyleDim.Render(fmt.Sprintf("· %s units", formatNumber(credits))))
		for _, course := range p.TermCourses(i) {
			fmt.Fprintf(w, "  %-24s %s\n", p.Label(course.ID), StyleNumber.Render(formatNumber(course.Credits)))
		}
	}

	fmt.Fprintln(w)
	printInfo(w, "%d terms, %s units (%s)", len(p.Terms), formatNumber(total), p.Kind)
}
