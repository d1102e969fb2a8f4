package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/analytics"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/plan"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/view"
)

// Metric selects the number shown inside each course node.
type Metric string

const (
	MetricNone           Metric = ""
	MetricComplexity     Metric = "complexity"
	MetricBlockingFactor Metric = "blocking"
	MetricDelayFactor    Metric = "delay"
	MetricCentrality     Metric = "centrality"
)

// ParseMetric parses a metric name. The empty string shows no metric.
func ParseMetric(s string) (Metric, error) {
	switch m := Metric(s); m {
	case MetricNone, MetricComplexity, MetricBlockingFactor, MetricDelayFactor, MetricCentrality:
		return m, nil
	}
	return "", fmt.Errorf("%w: metric %q", view.ErrInvalidOption, s)
}

// Options configures node-link diagram rendering.
type Options struct {
	// Metric is shown under the course name. Ignored without a report.
	Metric Metric
	// Redundant controls how redundant requisites are drawn.
	Redundant view.RedundantMode
	// TermName labels each term rank. Nil uses "Term N".
	TermName view.TermNameFunc
}

// NodeID is the DOT node name of a course.
func NodeID(id int) string { return "c" + strconv.Itoa(id) }

func termID(i int) string { return "term" + strconv.Itoa(i) }

// ToDOT converts a plan to Graphviz DOT. Terms run left to right, one rank
// per term, with courses stacked in term order. Courses that are not in
// any term are left out.
func ToDOT(p *plan.Plan, report *analytics.Report[int], opts Options) string {
	termName := opts.TermName
	if termName == nil {
		termName = view.IndexTermNames
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  newrank=true;\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fixedsize=true, width=0.9, fontsize=11];\n")
	buf.WriteString("  ranksep=1.2;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	placed := make(map[int]bool)
	for i := range p.Terms {
		fmt.Fprintf(&buf, "  %q [shape=plaintext, fillcolor=transparent, fixedsize=false, fontsize=14, label=%q];\n",
			termID(i), termName(nil, i))
	}
	for i := 1; i < len(p.Terms); i++ {
		fmt.Fprintf(&buf, "  %q -> %q [style=invis];\n", termID(i-1), termID(i))
	}

	for i := range p.Terms {
		buf.WriteString("\n  { rank=same;")
		fmt.Fprintf(&buf, " %q;", termID(i))
		for _, id := range p.Terms[i] {
			fmt.Fprintf(&buf, " %q;", NodeID(id))
		}
		buf.WriteString(" }\n")
		for _, c := range p.TermCourses(i) {
			placed[c.ID] = true
			fmt.Fprintf(&buf, "  %q [%s];\n", NodeID(c.ID), strings.Join(fmtAttrs(c, report, opts.Metric), ", "))
		}
		// Keep the course order inside a term.
		prev := termID(i)
		for _, id := range p.Terms[i] {
			fmt.Fprintf(&buf, "  %q -> %q [style=invis];\n", prev, NodeID(id))
			prev = NodeID(id)
		}
	}

	redundant := make(map[plan.Edge]bool)
	if report != nil {
		for _, e := range report.Redundant {
			redundant[plan.Edge{Source: e.Source, Target: e.Target}] = true
		}
	}

	buf.WriteString("\n")
	for _, r := range p.Requisites() {
		if !placed[r.Source] || !placed[r.Target] {
			continue
		}
		attrs := edgeAttrs(r, redundant[r.Edge], opts.Redundant)
		if attrs == nil {
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", NodeID(r.Source), NodeID(r.Target), strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(c *plan.Course, report *analytics.Report[int], metric Metric) []string {
	label := c.Name
	if label == "" {
		label = "#" + strconv.Itoa(c.ID)
	}
	if report != nil && metric != MetricNone {
		m := report.Get(c.ID)
		var value string
		switch metric {
		case MetricComplexity:
			value = strconv.FormatFloat(m.Complexity, 'f', -1, 64)
		case MetricBlockingFactor:
			value = strconv.FormatFloat(m.BlockingFactor, 'f', -1, 64)
		case MetricDelayFactor:
			value = strconv.Itoa(m.DelayFactor)
		case MetricCentrality:
			value = strconv.Itoa(m.Centrality)
		}
		label += "\n" + value
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if c.Placeholder {
		attrs = append(attrs, "style=\"filled,dashed\"", "fillcolor=lightgrey")
	}
	return attrs
}

// edgeAttrs styles a requisite edge. It returns nil for edges that should
// not be drawn.
func edgeAttrs(r plan.Requisite, redundant bool, mode view.RedundantMode) []string {
	var attrs []string
	switch r.Type {
	case plan.Coreq:
		attrs = append(attrs, "style=dashed")
	case plan.StrictCoreq:
		attrs = append(attrs, "style=\"dashed,bold\"")
	}
	if redundant {
		switch mode {
		case view.RedundantHidden:
			return nil
		case view.RedundantDashed:
			attrs = append(attrs, "style=dotted")
		}
		attrs = append(attrs, "color=\"#dd7777\"")
	}
	return append(attrs, fmt.Sprintf("class=%q", string(r.Type)))
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root tag so the drawing scales from a
// 0 0 origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
