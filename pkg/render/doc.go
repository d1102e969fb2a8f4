// Package render converts rendered plans between output formats.
//
// The plan grid is drawn by package view and the node-link diagram by the
// [nodelink] subpackage; both produce SVG. [ToPDF] and [ToPNG] convert that
// SVG with the external rsvg-convert tool (from librsvg).
//
//	svg, err := nodelink.RenderSVG(ctx, nodelink.ToDOT(p, report, nodelink.Options{}))
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// [nodelink]: github.com/SheepTester-forks/curricular-analytics-graph/pkg/render/nodelink
package render
