package server

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/observability"
)

var stageBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10}

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curricula_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "curricula_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: stageBuckets,
		},
		[]string{"method", "route"},
	)

	httpInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "curricula_http_requests_in_flight",
			Help: "Requests currently being served",
		},
	)

	stageTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "curricula_pipeline_stage_total",
			Help: "Pipeline stage runs by stage, variant and outcome",
		},
		[]string{"stage", "variant", "outcome"},
	)

	stageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "curricula_pipeline_stage_duration_seconds",
			Help:    "Duration of pipeline stages in seconds",
			Buckets: stageBuckets,
		},
		[]string{"stage", "variant"},
	)

	parsedCourses = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "curricula_parsed_courses",
			Help:    "Courses per parsed plan, placeholders included",
			Buckets: prometheus.ExponentialBuckets(8, 2, 8),
		},
	)
)

// Hooks records pipeline and request metrics in the default prometheus
// registry.
type Hooks struct{}

var (
	_ observability.PipelineHooks = Hooks{}
	_ observability.ServerHooks   = Hooks{}
)

// RegisterHooks installs [Hooks] as the process-wide observability hooks.
func RegisterHooks() {
	observability.SetPipelineHooks(Hooks{})
	observability.SetServerHooks(Hooks{})
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func observeStage(stage, variant string, d time.Duration, err error) {
	stageTotal.WithLabelValues(stage, variant, outcome(err)).Inc()
	stageDuration.WithLabelValues(stage, variant).Observe(d.Seconds())
}

func (Hooks) OnParseStart(context.Context, string) {}

func (Hooks) OnParseComplete(_ context.Context, format string, courses int, d time.Duration, err error) {
	observeStage("parse", format, d, err)
	if err == nil {
		parsedCourses.Observe(float64(courses))
	}
}

func (Hooks) OnAnalyzeStart(context.Context, string, int) {}

func (Hooks) OnAnalyzeComplete(_ context.Context, system string, d time.Duration, err error) {
	observeStage("analyze", system, d, err)
}

func (Hooks) OnRenderStart(context.Context, string, []string) {}

func (Hooks) OnRenderComplete(_ context.Context, kind string, _ []string, d time.Duration, err error) {
	observeStage("render", kind, d, err)
}

func (Hooks) OnRequest(context.Context, string, string) {
	httpInFlight.Inc()
}

func (Hooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	httpInFlight.Dec()
	httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
