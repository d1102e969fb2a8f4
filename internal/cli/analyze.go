package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/analytics"
	errs "github.com/SheepTester-forks/curricular-analytics-graph/pkg/errors"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/plan"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

// courseAnalysis is one row of the analyze output.
type courseAnalysis struct {
	ID             int     `json:"id" yaml:"id"`
	Name           string  `json:"name" yaml:"name"`
	Term           *int    `json:"term,omitempty" yaml:"term,omitempty"`
	Credits        float64 `json:"credits" yaml:"credits"`
	Placeholder    bool    `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Complexity     float64 `json:"complexity" yaml:"complexity"`
	BlockingFactor float64 `json:"blocking_factor" yaml:"blocking_factor"`
	DelayFactor    int     `json:"delay_factor" yaml:"delay_factor"`
	Centrality     int     `json:"centrality" yaml:"centrality"`
}

type redundantRequisite struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
	Type   string `json:"type" yaml:"type"`
}

// analysis is the machine-readable analyze output.
type analysis struct {
	Source     string               `json:"source" yaml:"source"`
	Kind       string               `json:"kind" yaml:"kind"`
	System     string               `json:"system" yaml:"system"`
	Complexity float64              `json:"complexity" yaml:"complexity"`
	Courses    []courseAnalysis     `json:"courses" yaml:"courses"`
	Redundant  []redundantRequisite `json:"redundant" yaml:"redundant"`
}

func newAnalysis(source string, p *plan.Plan, report *analytics.Report[int]) analysis {
	a := analysis{
		Source:     source,
		Kind:       string(p.Kind),
		System:     string(report.System),
		Complexity: report.Total(),
		Courses:    make([]courseAnalysis, 0, p.Len()),
		Redundant:  make([]redundantRequisite, 0, len(report.Redundant)),
	}
	for _, id := range p.Nodes() {
		c, ok := p.Course(id)
		if !ok {
			continue
		}
		m := report.Get(id)
		row := courseAnalysis{
			ID:             id,
			Name:           p.Label(id),
			Credits:        c.Credits,
			Placeholder:    c.Placeholder,
			Complexity:     m.Complexity,
			BlockingFactor: m.BlockingFactor,
			DelayFactor:    m.DelayFactor,
			Centrality:     m.Centrality,
		}
		if !c.Placeholder {
			term := c.Term
			row.Term = &term
		}
		a.Courses = append(a.Courses, row)
	}
	for _, e := range report.Redundant {
		t, _ := p.RequisiteType(e.Source, e.Target)
		a.Redundant = append(a.Redundant, redundantRequisite{
			Source: p.Label(e.Source),
			Target: p.Label(e.Target),
			Type:   string(t),
		})
	}
	return a
}

// analyzeCommand creates the analyze command.
func (c *CLI) analyzeCommand() *cobra.Command {
	var flags planFlags
	var format string

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Compute per-course complexity metrics",
		Long: `Analyze parses a plan, rejects requisite cycles and prints the complexity,
blocking factor, delay factor and centrality of every course. Requisites
implied by a longer chain are listed as redundant.`,
		Example: `  curricula analyze plan.csv
  curricula analyze --system quarter --format json curriculum.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case outputTable, outputJSON, outputYAML:
			default:
				return errs.New(errs.ErrCodeInvalidFormat, "invalid output format: %q (must be one of: table, json, yaml)", format)
			}
			return c.runAnalyze(cmd.Context(), cmd.OutOrStdout(), args[0], &flags, format)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", outputTable, "output format: table, json, yaml")
	return cmd
}

func (c *CLI) runAnalyze(ctx context.Context, w io.Writer, path string, flags *planFlags, format string) error {
	opts, err := c.options(flags)
	if err != nil {
		return err
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
	report, err := runner.Analyze(ctx, p, opts)
	if err != nil {
		return err
	}

	a := newAnalysis(src.Name, p, report)
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(a); err != nil {
			return err
		}
		return enc.Close()
	}
	printAnalysis(w, a)
	return nil
}

func printAnalysis(w io.Writer, a analysis) {
	rows := make([][]string, 0, len(a.Courses))
	for _, course := range a.Courses {
		term := "-"
		if course.Term != nil {
			term = strconv.Itoa(*course.Term + 1)
		}
		rows = append(rows, []string{
			term,
			course.Name,
			formatNumber(course.Credits),
			formatNumber(course.Complexity),
			formatNumber(course.BlockingFactor),
			strconv.Itoa(course.DelayFactor),
			strconv.Itoa(course.Centrality),
		})
	}

	fmt.Fprintln(w, StyleTitle.Render(a.Source))
	fmt.Fprintln(w, newTable(
		[]string{"Term", "Course", "Units", "Complexity", "Blocking", "Delay", "Centrality"},
		rows, 2, 3, 4, 5, 6,
	).Render())

	printKeyValue(w, "Kind", a.Kind)
	printKeyValue(w, "System", a.System)
	printKeyValue(w, "Complexity", StyleNumber.Render(formatNumber(a.Complexity)))

	if len(a.Redundant) == 0 {
		printSuccess(w, "No redundant requisites")
		return
	}
	printWarning(w, "%d redundant requisites", len(a.Redundant))
	for _, r := range a.Redundant {
		printDetail(w, "%s %s %s (%s)", r.Source, iconArrow, r.Target, r.Type)
	}
}
