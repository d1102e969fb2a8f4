package view

import (
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/plan"
)

// Tooltip padding from the window edges.
const (
	TooltipPaddingX = 10
	TooltipPaddingY = 25
)

// Size is a width and height.
type Size struct {
	Width, Height float64
}

// Placement is where a tooltip goes relative to the window.
//
// When Below is true the tooltip's top edge sits at Top; otherwise its
// bottom edge sits Bottom units above the window's bottom edge. Arrow is
// the horizontal offset of the course centre from the tooltip's left edge.
type Placement struct {
	Left   float64
	Top    float64
	Bottom float64
	Arrow  float64
	Below  bool
}

// PlaceTooltip positions a tooltip of the given size for a course. The
// tooltip is centred on the course and clamped horizontally inside the
// window. It goes below the course unless that would overflow the bottom
// of the window, in which case it flips above.
func PlaceTooltip(course Position, tooltip, window Size) Placement {
	left := min(
		max(course.X-tooltip.Width/2, TooltipPaddingX),
		window.Width-tooltip.Width-TooltipPaddingX,
	)
	p := Placement{Left: left, Arrow: course.X - left}
	if course.Y+course.Radius+tooltip.Height <= window.Height-TooltipPaddingY {
		p.Below = true
		p.Top = course.Y + course.Radius
	} else {
		p.Bottom = window.Height - (course.Y - course.Radius)
	}
	return p
}

// TooltipRequisite is one requisite listed in a tooltip.
type TooltipRequisite struct {
	Source    *CourseNode
	Type      plan.RequisiteType
	Redundant bool
}

// Tooltip is the state of the selected course's tooltip.
type Tooltip struct {
	Visible    bool
	Course     *CourseNode
	Title      string
	Rows       [][2]string
	Requisites []TooltipRequisite
	Size       Size
	Placement  Placement
}

// Tooltip text metrics used to estimate its size.
const (
	tooltipWidth      = 260
	tooltipLineHeight = 18
	tooltipPadding    = 12
)

func (t *Tooltip) measure() {
	lines := 1 + len(t.Rows)
	if len(t.Requisites) > 0 {
		lines += 1 + len(t.Requisites)
	}
	t.Size = Size{
		Width:  tooltipWidth,
		Height: float64(lines)*tooltipLineHeight + 2*tooltipPadding,
	}
}
