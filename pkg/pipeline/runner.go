package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/analytics"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/cache"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/plan"
)

// Runner runs the pipeline with logging and artifact caching. Both CLI and
// API use it.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching; a nil logger
// uses the default logger.
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Logger: logger}
}

// Execute runs parse → analyze → render. Rendered artifacts are cached
// under the hash of src.Data and the render options.
func (r *Runner) Execute(ctx context.Context, src Source, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{}

	parseStart := time.Now()
	p, err := r.Parse(ctx, src, opts)
	if err != nil {
		return nil, err
	}
	result.Plan = p
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.Courses = p.Len()
	result.Stats.Requisites = len(p.Requisites())
	result.Stats.Terms = len(p.Terms)

	analyzeStart := time.Now()
	report, err := r.Analyze(ctx, p, opts)
	if err != nil {
		return nil, err
	}
	result.Report = report
	result.Stats.AnalyzeTime = time.Since(analyzeStart)

	renderStart := time.Now()
	artifacts, hit, err := r.renderCached(ctx, cache.Hash(src.Data), p, report, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.CacheHit = hit
	result.Stats.RenderTime = time.Since(renderStart)

	r.Logger.Info("rendered plan",
		"kind", opts.Kind,
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Parse builds a plan and logs its size.
func (r *Runner) Parse(ctx context.Context, src Source, opts Options) (*plan.Plan, error) {
	start := time.Now()
	p, err := Parse(ctx, src, opts)
	if err != nil {
		return nil, err
	}
	r.Logger.Info("parsed plan",
		"source", sourceName(src),
		"kind", p.Kind,
		"courses", p.Len(),
		"edges", len(p.Requisites()),
		"terms", len(p.Terms),
		"duration", time.Since(start))
	return p, nil
}

// Analyze computes metrics and logs the plan totals.
func (r *Runner) Analyze(ctx context.Context, p *plan.Plan, opts Options) (*analytics.Report[int], error) {
	report, err := Analyze(ctx, p, opts)
	if err != nil {
		return nil, err
	}
	r.Logger.Debug("computed metrics",
		"system", report.System,
		"paths", len(report.Paths),
		"redundant", len(report.Redundant),
		"complexity", report.Total())
	return report, nil
}

// Render draws p without caching.
func (r *Runner) Render(ctx context.Context, p *plan.Plan, report *analytics.Report[int], opts Options) (map[string][]byte, error) {
	return Render(ctx, p, report, opts)
}

// renderCached returns cached artifacts when every format is cached, and
// renders and caches them otherwise.
func (r *Runner) renderCached(ctx context.Context, inputHash string, p *plan.Plan, report *analytics.Report[int], opts Options) (map[string][]byte, bool, error) {
	keys := make(map[string]string, len(opts.Formats))
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		keys[format] = cache.Key("artifact", append([]any{inputHash}, opts.cacheKey(format)...)...)
		if data, hit, err := r.Cache.Get(ctx, keys[format]); err == nil && hit {
			artifacts[format] = data
		}
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	rendered, err := Render(ctx, p, report, opts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		if err := r.Cache.Set(ctx, keys[format], data, cache.TTLArtifact); err != nil {
			r.Logger.Warn("cache artifact", "format", format, "error", err)
		}
	}
	return rendered, false, nil
}

// Close releases the cache.
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
