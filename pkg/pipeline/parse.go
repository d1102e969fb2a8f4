package pipeline

import (
	"bytes"
	"context"
	"time"

	pkgio "github.com/SheepTester-forks/curricular-analytics-graph/pkg/io"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/observability"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/plan"
)

// Source is an input document.
type Source struct {
	// Name is a file name or label. A .json extension selects the JSON
	// format when Options.Input is empty.
	Name string
	Data []byte
}

// detectInput picks the input format: the explicit option, then the file
// extension, then the first non-space byte.
func detectInput(src Source, opts Options) string {
	if opts.Input != "" {
		return opts.Input
	}
	if pkgio.IsJSON(src.Name) {
		return InputJSON
	}
	if trimmed := bytes.TrimLeft(src.Data, " \t\r\n"); len(trimmed) > 0 && trimmed[0] == '{' {
		return InputJSON
	}
	return InputTabular
}

// Parse builds a plan from src.
func Parse(ctx context.Context, src Source, opts Options) (*plan.Plan, error) {
	if err := opts.ValidateForParse(); err != nil {
		return nil, err
	}
	input := detectInput(src, opts)

	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, input)
	start := time.Now()

	p, err := parse(src, input, opts)

	courses := 0
	if p != nil {
		courses = p.Len()
	}
	hooks.OnParseComplete(ctx, input, courses, time.Since(start), err)
	if err != nil {
		return nil, classify(err, "parse %s", sourceName(src))
	}
	return p, nil
}

func parse(src Source, input string, opts Options) (*plan.Plan, error) {
	r := bytes.NewReader(src.Data)
	if input == InputJSON {
		return pkgio.ReadJSON(r)
	}
	builderOpts := []plan.BuilderOption{plan.WithStrategy(plan.Strategy(opts.Schedule))}
	if opts.Separator != 0 {
		builderOpts = append(builderOpts, plan.WithSeparator(opts.Separator))
	}
	return plan.ParseReader(r, builderOpts...)
}

func sourceName(src Source) string {
	if src.Name == "" {
		return "input"
	}
	return src.Name
}
