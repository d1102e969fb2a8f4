// Package nodelink renders plans as Graphviz node-link diagrams.
//
// [ToDOT] writes one rank per term, left to right, with each course as a
// circle labelled with its name and optionally a metric. Requisite edges
// are styled by type; redundant ones are highlighted, dotted or dropped
// depending on [Options].Redundant.
//
//	dot := nodelink.ToDOT(p, report, nodelink.Options{Metric: nodelink.MetricComplexity})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Graphviz decides where every course goes. [ParseDrawing] reads those
// positions back out of the SVG, and [MeasuredLayout] hands them to a
// view so the interactive grid can follow the Graphviz arrangement:
//
//	layout, err := nodelink.NewMeasuredLayout(p, svg)
//	v := view.New(layout, view.DefaultOptions())
//
// SVG rendering runs Graphviz in-process through
// [github.com/goccy/go-graphviz]; the SVG is read with
// [github.com/PuerkitoBio/goquery].
package nodelink
