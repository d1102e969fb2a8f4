package view

import "github.com/SheepTester-forks/curricular-analytics-graph/pkg/scene"

const graphCSS = `
    .term-background { fill: #f6f7f9; stroke: #e3e5e8; }
    .term-heading { font: bold 14px sans-serif; text-anchor: middle; }
    .term-footer { font: 12px sans-serif; text-anchor: middle; fill: #555; }
    .course-ball { fill: #fff; stroke: #333; stroke-width: 2; }
    .course-label { font: bold 13px sans-serif; text-anchor: middle; dominant-baseline: central; }
    .course-name { font: 11px sans-serif; text-anchor: middle; }
    .links path { fill: none; stroke: #999; stroke-width: 1.5; marker-end: url(#arrow); }
    .links path.coreq, .links path.strict-coreq { stroke-dasharray: 4 3; }
    .links path.redundant { stroke: #d77; }
    .redundant-dashed .links path.redundant { stroke-dasharray: 2 2; }
    .redundant-hidden .links path.redundant { display: none; }
    .arrow { fill: #999; }
    .course-selected .course:not(.highlighted) { opacity: 0.3; }
    .course-selected .all-links { opacity: 0.15; }
    .course.selected .course-ball { stroke: #06c; stroke-width: 4; }
    .course.direct .course-ball { stroke: #06c; }
    .highlighted-links path { stroke: #06c; }
    .highlighted-links path.longest-path { stroke: #fc0; stroke-width: 8; opacity: 0.5; marker-end: none; }
    .tooltip-hidden { display: none; }
    .tooltip rect { fill: #fff; stroke: #333; }
    .tooltip text { font: 12px sans-serif; }
    .tooltip .tooltip-title { font-weight: bold; }`

func newStyle() *scene.Node {
	style := scene.New("style")
	style.Text = graphCSS
	return style
}

// newArrowDefs defines the arrowhead marker links end with.
func newArrowDefs() *scene.Node {
	arrow := scene.New("path").AddClass("arrow").Set("d", "M 0 0 L 10 5 L 0 10 z")

	marker := scene.New("marker")
	marker.ID = "arrow"
	marker.Set("viewBox", "0 0 10 10").
		Set("refX", "8").
		Set("refY", "5").
		Set("markerWidth", "8").
		Set("markerHeight", "8").
		Set("markerUnits", "userSpaceOnUse").
		Set("orient", "auto-start-reverse")
	marker.Append(arrow)

	defs := scene.New("defs")
	defs.Append(marker)
	return defs
}
