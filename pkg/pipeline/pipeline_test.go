package pipeline

import (
	"context"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/cache"
	errs "github.com/SheepTester-forks/curricular-analytics-graph/pkg/errors"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/observability"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/view"
)

const header = "Course ID,Course Name,Prefix,Number,Prerequisites,Corequisites,Strict-Corequisites,Credit Hours,Institution,Canonical Name,Term\r\n"

const degreePlanCSV = "Curriculum,CS26\r\n" +
	"Degree Plan,Computer Science\r\n" +
	"Courses\r\n" +
	header +
	"1,CSE 11,CSE,11,,,,4,,,1\r\n" +
	"2,CSE 12,CSE,12,1,,,4,,,2\r\n" +
	"3,CSE 15L,CSE,15L,,,2,2,,,2\r\n" +
	"4,CSE 100,CSE,100,2;3,,,4,,,3\r\n"

const cyclicCSV = "Degree Plan,Loop\r\n" +
	"Courses\r\n" +
	header +
	"1,A,X,1,2,,,4,,,1\r\n" +
	"2,B,X,2,1,,,4,,,2\r\n"

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"dot", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateKindAndLayout(t *testing.T) {
	if err := ValidateKind("plan"); err != nil {
		t.Errorf("ValidateKind(plan) error = %v", err)
	}
	if err := ValidateKind("tower"); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("ValidateKind(tower) error = %v, want INVALID_INPUT", err)
	}
	if err := ValidateLayout("graphviz"); err != nil {
		t.Errorf("ValidateLayout(graphviz) error = %v", err)
	}
	if err := ValidateLayout("force"); err == nil {
		t.Error("ValidateLayout(force) should fail")
	}
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}
	if o.System != "semester" || o.Schedule != "greedy" || o.Kind != KindPlan || o.Layout != LayoutGrid {
		t.Errorf("defaults = %+v", o)
	}
	if o.Width != DefaultWidth || o.Height != DefaultHeight || len(o.Formats) != 1 || o.Formats[0] != FormatSVG {
		t.Errorf("render defaults = %+v", o)
	}
	if o.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errs.Code
	}{
		{"system", Options{System: "trimester"}, errs.ErrCodeInvalidSystem},
		{"schedule", Options{Schedule: "random"}, errs.ErrCodeInvalidInput},
		{"input", Options{Input: "xml"}, errs.ErrCodeInvalidFormat},
		{"redundant", Options{Redundant: "blinking"}, errs.ErrCodeInvalidInput},
		{"term names", Options{TermNames: "roman"}, errs.ErrCodeInvalidInput},
		{"metric", Options{Metric: "height"}, errs.ErrCodeInvalidInput},
		{"dot needs nodelink", Options{Formats: []string{"dot"}}, errs.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errs.Is(err, tt.code) {
				t.Errorf("ValidateAndSetDefaults() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestDetectInput(t *testing.T) {
	tests := []struct {
		src  Source
		opts Options
		want string
	}{
		{Source{Name: "plan.csv", Data: []byte("Courses")}, Options{}, InputTabular},
		{Source{Name: "plan.JSON"}, Options{}, InputJSON},
		{Source{Data: []byte("\n  {\"curriculum_terms\": []}")}, Options{}, InputJSON},
		{Source{Name: "plan.json"}, Options{Input: InputTabular}, InputTabular},
	}
	for _, tt := range tests {
		if got := detectInput(tt.src, tt.opts); got != tt.want {
			t.Errorf("detectInput(%q) = %q, want %q", tt.src.Name, got, tt.want)
		}
	}
}

func TestParseAndAnalyze(t *testing.T) {
	ctx := context.Background()
	p, err := Parse(ctx, Source{Name: "plan.csv", Data: []byte(degreePlanCSV)}, Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if p.Len() != 4 || len(p.Terms) != 3 {
		t.Fatalf("Parse() = %d courses in %d terms, want 4 in 3", p.Len(), len(p.Terms))
	}

	report, err := Analyze(ctx, p, Options{System: "Quarter"})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if report.System != "quarter" {
		t.Errorf("System = %q, want quarter", report.System)
	}
	if got := report.Get(1).BlockingFactor; got != 3 {
		t.Errorf("blocking factor of CSE 11 = %v, want 3", got)
	}
}

func TestAnalyzeMatchesView(t *testing.T) {
	// Course 1 is never defined, so it becomes a placeholder outside the terms.
	csv := "Degree Plan,Placeholder\r\nCourses\r\n" + header +
		"2,B,X,2,1,,,4,,,1\r\n" +
		"3,C,X,3,2,,,4,,,2\r\n"
	ctx := context.Background()
	p, err := Parse(ctx, Source{Name: "plan.csv", Data: []byte(csv)}, Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if c, ok := p.Course(1); !ok || !c.Placeholder {
		t.Fatalf("Course(1) = %+v, %v, want placeholder", c, ok)
	}

	report, err := Analyze(ctx, p, Options{})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	v := view.New(view.NewGridLayout(800, 600), view.DefaultOptions())
	if err := v.SetPlan(p); err != nil {
		t.Fatalf("SetPlan() error = %v", err)
	}

	if got, want := report.Nodes, []int{2, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("Nodes = %v, want %v", got, want)
	}
	if !reflect.DeepEqual(report.Paths, v.Report().Paths) {
		t.Errorf("Paths = %v, view has %v", report.Paths, v.Report().Paths)
	}
	for _, id := range []int{1, 2, 3} {
		if got, want := report.Get(id), v.Report().Get(id); got != want {
			t.Errorf("Get(%d) = %+v, view has %+v", id, got, want)
		}
	}
	if got := report.Get(2).BlockingFactor; got != 1 {
		t.Errorf("blocking factor of B = %v, want 1", got)
	}
}

func TestAnalyzeCycle(t *testing.T) {
	ctx := context.Background()
	p, err := Parse(ctx, Source{Data: []byte(cyclicCSV)}, Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	_, err = Analyze(ctx, p, Options{})
	if !errs.Is(err, errs.ErrCodeCycleDetected) {
		t.Fatalf("Analyze() error = %v, want CYCLE_DETECTED", err)
	}
	if msg := errs.UserMessage(err); !strings.Contains(msg, "A, B") {
		t.Errorf("UserMessage() = %q, want the cycle's courses", msg)
	}
}

func TestParseInvalidRequisiteType(t *testing.T) {
	doc := `{"name": "", "curriculum_terms": [{"name": "Term 1", "curriculum_items": [
	  {"id": 1, "name": "A", "credits": 4, "curriculum_requisites": [{"source_id": 2, "target_id": 1, "type": "antireq"}]}
	]}]}`
	_, err := Parse(context.Background(), Source{Data: []byte(doc)}, Options{})
	if !errs.Is(err, errs.ErrCodeInvalidRequisiteType) {
		t.Fatalf("Parse() error = %v, want INVALID_REQUISITE_TYPE", err)
	}
}

func TestRunnerExecute(t *testing.T) {
	ctx := context.Background()
	mem := cache.NewMemoryCache(0)
	r := NewRunner(mem, nil)
	defer r.Close()

	src := Source{Name: "plan.csv", Data: []byte(degreePlanCSV)}
	opts := Options{Formats: []string{FormatSVG, FormatJSON}}

	res, err := r.Execute(ctx, src, opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.CacheHit {
		t.Error("first Execute() should not hit the cache")
	}
	if res.Stats.Courses != 4 || res.Stats.Requisites != 4 || res.Stats.Terms != 3 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if svg := string(res.Artifacts[FormatSVG]); !strings.Contains(svg, `class="curriculum-graph`) {
		t.Errorf("svg artifact is not a plan view: %.80s", svg)
	}
	if js := string(res.Artifacts[FormatJSON]); !strings.Contains(js, `"curriculum_terms"`) {
		t.Errorf("json artifact = %.80s", js)
	}

	again, err := r.Execute(ctx, src, opts)
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if !again.CacheHit {
		t.Error("second Execute() should hit the cache")
	}
	if string(again.Artifacts[FormatSVG]) != string(res.Artifacts[FormatSVG]) {
		t.Error("cached svg differs")
	}
}

func TestRunnerCacheKeysSeparator(t *testing.T) {
	tabs := Options{Separator: '\t'}
	if cache.Key("artifact", tabs.cacheKey(FormatSVG)...) == cache.Key("artifact", (&Options{}).cacheKey(FormatSVG)...) {
		t.Fatal("cache key ignores the field separator")
	}

	ctx := context.Background()
	r := NewRunner(cache.NewMemoryCache(0), nil)
	defer r.Close()

	src := Source{Name: "plan.tsv", Data: []byte(strings.ReplaceAll(degreePlanCSV, ",", "\t"))}
	opts := Options{Formats: []string{FormatSVG}, Separator: '\t'}
	if _, err := r.Execute(ctx, src, opts); err != nil {
		t.Fatalf("Execute() with tab separator error = %v", err)
	}

	opts.Separator = 0
	again, err := r.Execute(ctx, src, opts)
	if err == nil && again.CacheHit {
		t.Error("Execute() with a different separator was served from the cache")
	}
}

func TestRunnerExecuteSelect(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil)
	src := Source{Data: []byte(degreePlanCSV)}

	sel := 2
	res, err := r.Execute(ctx, src, Options{Select: &sel})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(string(res.Artifacts[FormatSVG]), "course-selected") {
		t.Error("selection was not baked into the svg")
	}

	missing := 42
	_, err = r.Execute(ctx, src, Options{Select: &missing})
	if !errs.Is(err, errs.ErrCodeNotFound) {
		t.Errorf("Execute() with unknown selection error = %v, want NOT_FOUND", err)
	}
}

func TestRenderDOT(t *testing.T) {
	ctx := context.Background()
	p, err := Parse(ctx, Source{Data: []byte(degreePlanCSV)}, Options{})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	report, err := Analyze(ctx, p, Options{})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	out, err := Render(ctx, p, report, Options{Kind: KindNodelink, Formats: []string{FormatDOT}, Metric: "complexity"})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if dot := string(out[FormatDOT]); !strings.HasPrefix(dot, "digraph G {") {
		t.Errorf("dot artifact = %.40s", dot)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) record(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordingHooks) OnParseComplete(_ context.Context, format string, courses int, _ time.Duration, _ error) {
	h.record("parse " + format)
}

func (h *recordingHooks) OnAnalyzeComplete(_ context.Context, system string, _ time.Duration, _ error) {
	h.record("analyze " + system)
}

func (h *recordingHooks) OnRenderComplete(_ context.Context, kind string, _ []string, _ time.Duration, _ error) {
	h.record("render " + kind)
}

func TestExecuteEmitsHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	_, err := NewRunner(nil, nil).Execute(context.Background(), Source{Data: []byte(degreePlanCSV)}, Options{})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	want := []string{"parse tabular", "analyze semester", "render plan"}
	if strings.Join(hooks.events, "|") != strings.Join(want, "|") {
		t.Errorf("events = %v, want %v", hooks.events, want)
	}
}
