package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/analytics"
	errs "github.com/SheepTester-forks/curricular-analytics-graph/pkg/errors"
	pkgio "github.com/SheepTester-forks/curricular-analytics-graph/pkg/io"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/observability"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/plan"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/render"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/render/nodelink"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/view"
)

// NewLayout returns the layout named by opts.Layout. The Graphviz layout
// runs Graphviz on p to find course positions.
func NewLayout(ctx context.Context, p *plan.Plan, opts Options) (view.Layout, error) {
	if opts.Layout != LayoutGraphviz {
		return view.NewGridLayout(opts.Width, opts.Height), nil
	}
	dot := nodelink.ToDOT(p, nil, nodelink.Options{TermName: opts.ViewOptions().TermName})
	svg, err := nodelink.RenderSVG(ctx, dot)
	if err != nil {
		return nil, fmt.Errorf("graphviz layout: %w", err)
	}
	l, err := nodelink.NewMeasuredLayout(p, svg)
	if err != nil {
		return nil, fmt.Errorf("graphviz layout: %w", err)
	}
	l.Resize(opts.Width, opts.Height)
	return l, nil
}

// NewView builds an interactive view of p and selects opts.Select, if set.
func NewView(ctx context.Context, p *plan.Plan, opts Options) (*view.View, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	layout, err := NewLayout(ctx, p, opts)
	if err != nil {
		return nil, classify(err, "layout")
	}
	v := view.New(layout, opts.ViewOptions())
	if err := v.SetPlan(p); err != nil {
		return nil, classify(err, "build view")
	}
	if opts.Select != nil {
		if err := v.Select(*opts.Select); err != nil {
			return nil, classify(err, "select course %d", *opts.Select)
		}
	}
	return v, nil
}

// Render draws p and returns one artifact per requested format.
func Render(ctx context.Context, p *plan.Plan, report *analytics.Report[int], opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Kind, opts.Formats)
	start := time.Now()

	artifacts, err := renderAll(ctx, p, report, opts)

	hooks.OnRenderComplete(ctx, opts.Kind, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, classify(err, "render %s", opts.Kind)
	}
	return artifacts, nil
}

func renderAll(ctx context.Context, p *plan.Plan, report *analytics.Report[int], opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	var dot string
	var svg []byte
	drawing := func() ([]byte, error) {
		if svg != nil {
			return svg, nil
		}
		var err error
		if opts.IsNodelink() {
			svg, err = nodelink.RenderSVG(ctx, dot)
		} else {
			svg, err = renderPlanSVG(ctx, p, opts)
		}
		return svg, err
	}
	if opts.IsNodelink() {
		dot = nodelink.ToDOT(p, report, opts.NodelinkOptions())
	}

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatDOT:
			data = []byte(dot)
		case FormatJSON:
			var buf bytes.Buffer
			err = pkgio.WriteJSON(&buf, p, report)
			data = buf.Bytes()
		case FormatSVG, FormatPDF, FormatPNG:
			data, err = drawing()
			if err == nil {
				data, err = render.Convert(ctx, data, render.Format(format), opts.Scale)
			}
		default:
			return nil, errs.New(errs.ErrCodeUnsupported, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderPlanSVG(ctx context.Context, p *plan.Plan, opts Options) ([]byte, error) {
	v, err := NewView(ctx, p, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := v.WriteSVG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
