package view

import (
	"strconv"

	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/analytics"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/join"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/plan"
)

// Position is a measured course centre relative to the graph frame.
type Position struct {
	X, Y   float64
	Radius float64
}

// CourseNode is a course as placed in the view: its term column, its row
// within the term, its metrics and its last measured position.
type CourseNode struct {
	ID       int
	Course   *plan.Course
	Term     int
	Index    int
	Metrics  analytics.Metrics
	Position Position
}

// Name returns the course name, or "#id" for unnamed courses.
func (n *CourseNode) Name() string {
	if n.Course != nil && n.Course.Name != "" {
		return n.Course.Name
	}
	return "#" + strconv.Itoa(n.ID)
}

// Layout decides where grid items go. Frame is the box every position is
// measured against; Column is a term's column; Bounds is a course's ball.
type Layout interface {
	Frame() join.Rect
	Column(term int) join.Rect
	Bounds(n *CourseNode) join.Rect
}

// Resizer is implemented by layouts that follow the view size.
type Resizer interface {
	Resize(width, height float64)
}

// Shaper is implemented by layouts that depend on the number of terms and
// the length of the longest term.
type Shaper interface {
	SetShape(terms, rows int)
}

// Grid geometry defaults.
const (
	DefaultHeaderHeight = 40
	DefaultFooterHeight = 40
	DefaultMaxRadius    = 24
)

// GridLayout places terms in equal-width columns and courses in equal-height
// rows, one course per row, below a header row and above a footer row.
type GridLayout struct {
	Width, Height float64
	HeaderHeight  float64
	FooterHeight  float64
	MaxRadius     float64

	terms, rows int
}

// NewGridLayout returns a grid layout for a width x height frame.
func NewGridLayout(width, height float64) *GridLayout {
	return &GridLayout{
		Width:        width,
		Height:       height,
		HeaderHeight: DefaultHeaderHeight,
		FooterHeight: DefaultFooterHeight,
		MaxRadius:    DefaultMaxRadius,
		terms:        1,
		rows:         1,
	}
}

func (g *GridLayout) Resize(width, height float64) { g.Width, g.Height = width, height }

func (g *GridLayout) SetShape(terms, rows int) {
	g.terms, g.rows = max(terms, 1), max(rows, 1)
}

func (g *GridLayout) Frame() join.Rect {
	return join.Rect{Width: g.Width, Height: g.Height}
}

func (g *GridLayout) columnWidth() float64 { return g.Width / float64(g.terms) }

func (g *GridLayout) rowHeight() float64 {
	return max(g.Height-g.HeaderHeight-g.FooterHeight, 0) / float64(g.rows)
}

func (g *GridLayout) Column(term int) join.Rect {
	w := g.columnWidth()
	return join.Rect{X: float64(term) * w, Y: 0, Width: w, Height: g.Height}
}

// Bounds returns the square holding a course's ball, centred in its cell.
func (g *GridLayout) Bounds(n *CourseNode) join.Rect {
	w, h := g.columnWidth(), g.rowHeight()
	// Leave room for the course name under the ball.
	r := min(w/4, h/3, g.MaxRadius)
	cx := (float64(n.Term) + 0.5) * w
	cy := g.HeaderHeight + (float64(n.Index)+0.4)*h
	return join.Rect{X: cx - r, Y: cy - r, Width: 2 * r, Height: 2 * r}
}

// measure turns bounds into a position relative to frame.
func measure(b, frame join.Rect) Position {
	return Position{
		X:      b.X + b.Width/2 - frame.X,
		Y:      b.Y + b.Height/2 - frame.Y,
		Radius: b.Width / 2,
	}
}
