// Package pipeline runs the parse → analyze → render pipeline shared by
// the CLI and the HTTP server.
//
// # Stages
//
//  1. Parse: build a plan from the tabular export or structured JSON,
//     synthesizing terms for curricula
//  2. Analyze: reject requisite cycles and compute per-course metrics
//  3. Render: draw the plan grid or a Graphviz node-link diagram and
//     convert it to the requested formats
//
// Each stage can be run on its own. Errors are returned as coded errors
// from package errors so callers can map them to exit codes or HTTP
// statuses.
//
// # Usage
//
//	runner := pipeline.NewRunner(nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Source{Name: "plan.csv", Data: data}, pipeline.Options{
//	    System:  "quarter",
//	    Formats: []string{"svg"},
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/analytics"
	errs "github.com/SheepTester-forks/curricular-analytics-graph/pkg/errors"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/plan"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/render/nodelink"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/view"
)

const (
	// DefaultWidth is the default frame width in pixels.
	DefaultWidth = 1200.0

	// DefaultHeight is the default frame height in pixels.
	DefaultHeight = 800.0

	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0

	DefaultSystem    = string(analytics.Semester)
	DefaultSchedule  = string(plan.StrategyGreedy)
	DefaultRedundant = string(view.RedundantDashed)
	DefaultTermNames = "index"
	DefaultKind      = KindPlan
	DefaultLayout    = LayoutGrid
)

// Input formats.
const (
	InputTabular = "tabular"
	InputJSON    = "json"
)

// Render kinds.
const (
	KindPlan     = "plan"
	KindNodelink = "nodelink"
)

// Plan layouts.
const (
	LayoutGrid     = "grid"
	LayoutGraphviz = "graphviz"
)

// Output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// ValidKinds is the set of supported render kinds.
var ValidKinds = map[string]bool{
	KindPlan:     true,
	KindNodelink: true,
}

// ValidLayouts is the set of supported plan layouts.
var ValidLayouts = map[string]bool{
	LayoutGrid:     true,
	LayoutGraphviz: true,
}

// Options configures every pipeline stage. Zero values take defaults.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Parse options
	Input     string `json:"input,omitempty"`    // tabular or json; empty detects
	Schedule  string `json:"schedule,omitempty"` // greedy or levels, for curricula
	Separator rune   `json:"-"`

	// Analyze options
	System string `json:"system,omitempty"`

	// Render options
	Kind      string   `json:"kind,omitempty"`
	Layout    string   `json:"layout,omitempty"`
	Width     float64  `json:"width,omitempty"`
	Height    float64  `json:"height,omitempty"`
	Redundant string   `json:"redundant,omitempty"`
	TermNames string   `json:"term_names,omitempty"`
	Metric    string   `json:"metric,omitempty"` // nodelink node label
	Select    *int     `json:"select,omitempty"` // course to highlight
	Formats   []string `json:"formats,omitempty"`
	Scale     float64  `json:"scale,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Plan      *plan.Plan
	Report    *analytics.Report[int]
	Artifacts map[string][]byte
	Stats     Stats
	// CacheHit is set when the artifacts came from the runner's cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Courses     int
	Requisites  int
	Terms       int
	ParseTime   time.Duration
	AnalyzeTime time.Duration
	RenderTime  time.Duration
}

func joinKeys(m map[string]bool) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return strings.Join(keys, ", ")
}

func invalid(what, value string, valid map[string]bool) error {
	return errs.New(errs.ErrCodeInvalidInput, "invalid %s: %q (must be one of: %s)", what, value, joinKeys(valid))
}

// ValidateFormat checks that a format is valid. Formats are case-sensitive.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return invalid("format", format, ValidFormats)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateKind checks that a render kind is valid.
func ValidateKind(kind string) error {
	if !ValidKinds[kind] {
		return invalid("kind", kind, ValidKinds)
	}
	return nil
}

// ValidateLayout checks that a plan layout is valid.
func ValidateLayout(layout string) error {
	if !ValidLayouts[layout] {
		return invalid("layout", layout, ValidLayouts)
	}
	return nil
}

// ValidateAndSetDefaults checks every field and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	if err := o.ValidateForAnalyze(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks and defaults the parse options.
func (o *Options) ValidateForParse() error {
	if o.Schedule == "" {
		o.Schedule = DefaultSchedule
	}
	switch plan.Strategy(o.Schedule) {
	case plan.StrategyGreedy, plan.StrategyLevels:
	default:
		return errs.New(errs.ErrCodeInvalidInput, "invalid schedule: %q (must be one of: greedy, levels)", o.Schedule)
	}
	switch o.Input {
	case "", InputTabular, InputJSON:
	default:
		return errs.New(errs.ErrCodeInvalidFormat, "invalid input format: %q (must be one of: tabular, json)", o.Input)
	}
	o.setLogger()
	return nil
}

// ValidateForAnalyze checks and defaults the analyze options.
func (o *Options) ValidateForAnalyze() error {
	if o.System == "" {
		o.System = DefaultSystem
	}
	s, err := analytics.ParseSystem(o.System)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidSystem, err, "invalid system")
	}
	o.System = string(s)
	o.setLogger()
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if o.Kind == "" {
		o.Kind = DefaultKind
	}
	if o.Layout == "" {
		o.Layout = DefaultLayout
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Redundant == "" {
		o.Redundant = DefaultRedundant
	}
	if o.TermNames == "" {
		o.TermNames = DefaultTermNames
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateKind(o.Kind); err != nil {
		return err
	}
	if err := ValidateLayout(o.Layout); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	for _, f := range o.Formats {
		if f == FormatDOT && o.Kind != KindNodelink {
			return errs.New(errs.ErrCodeInvalidInput, "dot output requires kind %q", KindNodelink)
		}
	}
	if _, err := view.ParseRedundantMode(o.Redundant); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid redundant mode")
	}
	if _, err := view.ParseTermNames(o.TermNames); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid term names")
	}
	if _, err := nodelink.ParseMetric(o.Metric); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "invalid metric")
	}
	return nil
}

// IsNodelink returns true if this renders a node-link diagram.
func (o *Options) IsNodelink() bool {
	return o.Kind == KindNodelink
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ViewOptions returns the view options for the render settings. Call it
// after ValidateForRender.
func (o *Options) ViewOptions() view.Options {
	vo := view.DefaultOptions()
	vo.System = analytics.System(o.System)
	if vo.System == "" {
		vo.System = analytics.Semester
	}
	if m, err := view.ParseRedundantMode(o.Redundant); err == nil {
		vo.Redundant = m
	}
	if names, err := view.ParseTermNames(o.TermNames); err == nil {
		vo.TermName = names
	}
	return vo
}

// NodelinkOptions returns the node-link options for the render settings.
func (o *Options) NodelinkOptions() nodelink.Options {
	vo := o.ViewOptions()
	metric, _ := nodelink.ParseMetric(o.Metric)
	return nodelink.Options{
		Metric:    metric,
		Redundant: vo.Redundant,
		TermName:  vo.TermName,
	}
}

// cacheKey lists the options that change render output.
func (o *Options) cacheKey(format string) []any {
	sel := "none"
	if o.Select != nil {
		sel = fmt.Sprint(*o.Select)
	}
	return []any{
		format, o.Input, string(o.Separator), o.Schedule, o.System, o.Kind, o.Layout,
		o.Width, o.Height, o.Redundant, o.TermNames, o.Metric, sel, o.Scale,
	}
}
