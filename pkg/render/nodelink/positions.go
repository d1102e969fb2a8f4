package nodelink

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/join"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/plan"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/view"
)

// ErrNoDrawing is returned when an SVG has no Graphviz graph group.
var ErrNoDrawing = errors.New("nodelink: no graph in SVG")

var translateRe = regexp.MustCompile(`translate\(\s*(-?[0-9.]+)[\s,]+(-?[0-9.]+)\s*\)`)

// Drawing holds what a Graphviz SVG says about where things went. All
// coordinates are in the SVG's user space.
type Drawing struct {
	Width, Height float64
	Courses       map[int]view.Position
	Terms         map[int]view.Position
}

// Positions reads the centre and radius of every course node in a Graphviz
// SVG produced from [ToDOT].
func Positions(svg []byte) (map[int]view.Position, error) {
	d, err := ParseDrawing(svg)
	if err != nil {
		return nil, err
	}
	return d.Courses, nil
}

// ParseDrawing reads course and term anchor positions and the drawing size
// from a Graphviz SVG.
func ParseDrawing(svg []byte) (*Drawing, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(svg))
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}

	root := doc.Find("svg").First()
	graph := root.Find("g.graph").First()
	if graph.Length() == 0 {
		return nil, ErrNoDrawing
	}

	d := &Drawing{
		Courses: make(map[int]view.Position),
		Terms:   make(map[int]view.Position),
	}
	viewBox, ok := root.Attr("viewBox")
	if !ok {
		// The HTML parser may keep the lowercased name.
		viewBox, ok = root.Attr("viewbox")
	}
	if ok {
		if f := strings.Fields(viewBox); len(f) == 4 {
			d.Width, _ = strconv.ParseFloat(f[2], 64)
			d.Height, _ = strconv.ParseFloat(f[3], 64)
		}
	}

	var tx, ty float64
	if transform, ok := graph.Attr("transform"); ok {
		if m := translateRe.FindStringSubmatch(transform); m != nil {
			tx, _ = strconv.ParseFloat(m[1], 64)
			ty, _ = strconv.ParseFloat(m[2], 64)
		}
	}

	var parseErr error
	graph.Find("g.node").EachWithBreak(func(_ int, node *goquery.Selection) bool {
		name := strings.TrimSpace(node.ChildrenFiltered("title").Text())
		switch {
		case strings.HasPrefix(name, "c"):
			id, err := strconv.Atoi(name[1:])
			if err != nil {
				return true
			}
			pos, err := ellipseCentre(node.Find("ellipse").First())
			if err != nil {
				parseErr = fmt.Errorf("course %d: %w", id, err)
				return false
			}
			pos.X += tx
			pos.Y += ty
			d.Courses[id] = pos
		case strings.HasPrefix(name, "term"):
			i, err := strconv.Atoi(name[len("term"):])
			if err != nil {
				return true
			}
			text := node.Find("text").First()
			x, _ := strconv.ParseFloat(text.AttrOr("x", "0"), 64)
			y, _ := strconv.ParseFloat(text.AttrOr("y", "0"), 64)
			d.Terms[i] = view.Position{X: x + tx, Y: y + ty}
		}
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return d, nil
}

func ellipseCentre(e *goquery.Selection) (view.Position, error) {
	if e.Length() == 0 {
		return view.Position{}, errors.New("no ellipse")
	}
	var pos view.Position
	for _, attr := range []struct {
		name string
		dst  *float64
	}{{"cx", &pos.X}, {"cy", &pos.Y}, {"rx", &pos.Radius}} {
		v, ok := e.Attr(attr.name)
		if !ok {
			return view.Position{}, fmt.Errorf("missing %s", attr.name)
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return view.Position{}, fmt.Errorf("%s: %w", attr.name, err)
		}
		*attr.dst = f
	}
	return pos, nil
}

// MeasuredLayout places courses where Graphviz put them. It implements
// [view.Layout] and [view.Resizer]; resizing scales the drawing.
type MeasuredLayout struct {
	drawing *Drawing
	columns []float64 // term centres, left to right
	sx, sy  float64
	footer  float64
}

var (
	_ view.Layout  = (*MeasuredLayout)(nil)
	_ view.Resizer = (*MeasuredLayout)(nil)
)

// NewMeasuredLayout lays p out with Graphviz and reads the result back.
// The SVG must come from rendering [ToDOT] of the same plan.
func NewMeasuredLayout(p *plan.Plan, svg []byte) (*MeasuredLayout, error) {
	d, err := ParseDrawing(svg)
	if err != nil {
		return nil, err
	}
	l := &MeasuredLayout{drawing: d, sx: 1, sy: 1, footer: view.DefaultFooterHeight}
	l.columns = make([]float64, len(p.Terms))
	for i := range p.Terms {
		if t, ok := d.Terms[i]; ok {
			l.columns[i] = t.X
			continue
		}
		l.columns[i] = l.meanX(p.Terms[i], i)
	}
	return l, nil
}

// meanX guesses a term's centre from its courses, or spaces terms evenly
// when none were drawn.
func (l *MeasuredLayout) meanX(ids []int, term int) float64 {
	var sum float64
	var n int
	for _, id := range ids {
		if pos, ok := l.drawing.Courses[id]; ok {
			sum += pos.X
			n++
		}
	}
	if n == 0 {
		return (float64(term) + 0.5) * l.drawing.Width / float64(max(len(l.columns), 1))
	}
	return sum / float64(n)
}

func (l *MeasuredLayout) Resize(width, height float64) {
	if l.drawing.Width > 0 {
		l.sx = width / l.drawing.Width
	}
	if h := l.drawing.Height + l.footer; h > 0 {
		l.sy = height / h
	}
}

func (l *MeasuredLayout) Frame() join.Rect {
	return join.Rect{Width: l.drawing.Width * l.sx, Height: (l.drawing.Height + l.footer) * l.sy}
}

// Column spans halfway to each neighbouring term.
func (l *MeasuredLayout) Column(term int) join.Rect {
	frame := l.Frame()
	if term < 0 || term >= len(l.columns) {
		return join.Rect{Height: frame.Height}
	}
	xs := append([]float64(nil), l.columns...)
	sort.Float64s(xs)
	x := l.columns[term]
	i := sort.SearchFloat64s(xs, x)

	left, right := 0.0, l.drawing.Width
	if i > 0 {
		left = (xs[i-1] + x) / 2
	}
	if i < len(xs)-1 {
		right = (x + xs[i+1]) / 2
	}
	return join.Rect{X: left * l.sx, Width: (right - left) * l.sx, Height: frame.Height}
}

// Bounds returns the square around a course's circle. Courses Graphviz did
// not draw collapse to a point at the top of their column.
func (l *MeasuredLayout) Bounds(n *view.CourseNode) join.Rect {
	pos, ok := l.drawing.Courses[n.ID]
	if !ok {
		col := l.Column(n.Term)
		return join.Rect{X: col.X + col.Width/2, Y: view.DefaultHeaderHeight * l.sy}
	}
	r := pos.Radius * min(l.sx, l.sy)
	return join.Rect{X: pos.X*l.sx - r, Y: pos.Y*l.sy - r, Width: 2 * r, Height: 2 * r}
}
