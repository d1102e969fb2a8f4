package pipeline

import (
	"context"
	"time"

	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/analytics"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/observability"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/plan"
)

// Analyze rejects plans with requisite cycles and computes the metrics of
// every course, placeholders included.
func Analyze(ctx context.Context, p *plan.Plan, opts Options) (*analytics.Report[int], error) {
	if err := opts.ValidateForAnalyze(); err != nil {
		return nil, err
	}
	system := analytics.System(opts.System)

	hooks := observability.Pipeline()
	hooks.OnAnalyzeStart(ctx, opts.System, p.Len())
	start := time.Now()

	report, err := analyze(p, system)

	hooks.OnAnalyzeComplete(ctx, opts.System, time.Since(start), err)
	if err != nil {
		return nil, classify(err, "analyze plan")
	}
	return report, nil
}

func analyze(p *plan.Plan, system analytics.System) (*analytics.Report[int], error) {
	// Validate names the courses of a cycle; Compute only reports the first
	// back edge it meets.
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return analytics.Compute[int](p, p.TermNodes(), system)
}
