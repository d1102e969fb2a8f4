package view

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/analytics"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/plan"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/scene"
)

// samplePlan has three terms:
//
//	term 1: CSE 11 (1), MATH 20A (5)
//	term 2: CSE 12 (2), CSE 15L (3)
//	term 3: CSE 100 (4)
//
// with 1->2, 2=>3 (strict corequisite), 2->4, 3->4 and the redundant 1->4.
func samplePlan() *plan.Plan {
	p := plan.New(plan.KindDegreePlan)
	for id, name := range map[int]string{1: "CSE 11", 2: "CSE 12", 3: "CSE 15L", 4: "CSE 100", 5: "MATH 20A"} {
		p.Put(plan.Course{ID: id, Name: name, Credits: 4})
	}
	p.Link(1, 2, plan.Prereq)
	p.Link(2, 3, plan.StrictCoreq)
	p.Link(2, 4, plan.Prereq)
	p.Link(3, 4, plan.Prereq)
	p.Link(1, 4, plan.Prereq)
	p.SetTerms([][]int{{1, 5}, {2, 3}, {4}})
	return p
}

func newView(t *testing.T) *View {
	t.Helper()
	v := New(NewGridLayout(1200, 800), DefaultOptions())
	require.NoError(t, v.SetPlan(samplePlan()))
	return v
}

func ids(nodes []*CourseNode) []int {
	out := make([]int, len(nodes))
	for i, n := range nodes {
		out[i] = n.ID
	}
	return out
}

func TestSetPlan(t *testing.T) {
	v := newView(t)

	require.Len(t, v.Terms(), 3)
	assert.Equal(t, []int{1, 5}, ids(v.Terms()[0]))
	assert.Equal(t, []int{2, 3}, ids(v.Terms()[1]))
	assert.Len(t, v.Links(), 5)

	redundant := map[plan.Edge]bool{}
	for _, l := range v.Links() {
		if l.Redundant {
			redundant[l.key()] = true
		}
	}
	assert.Equal(t, map[plan.Edge]bool{{Source: 1, Target: 4}: true, {Source: 2, Target: 4}: true}, redundant)

	n, ok := v.Course(1)
	require.True(t, ok)
	assert.Equal(t, analytics.Metrics{Complexity: 7, Centrality: 0, DelayFactor: 4, BlockingFactor: 3}, n.Metrics)
	assert.NotZero(t, n.Position.Radius)

	assert.Equal(t, "3", v.Root().Attr("data-term-count"))
	assert.Equal(t, "2", v.Root().Attr("data-longest-term-length"))
}

func TestSetPlanCycle(t *testing.T) {
	p := plan.New(plan.KindDegreePlan)
	p.Link(1, 2, plan.Prereq)
	p.Link(2, 1, plan.Prereq)
	p.SetTerms([][]int{{1}, {2}})

	v := New(nil, DefaultOptions())
	assert.ErrorIs(t, v.SetPlan(p), analytics.ErrCycleDetected)
	assert.ErrorIs(t, v.SetPlan(nil), ErrNoPlan)
}

func TestSelect(t *testing.T) {
	v := newView(t)
	require.NoError(t, v.Select(3))

	assert.Equal(t, []int{3, 2, 1, 4}, v.Highlighted())
	assert.Equal(t, []int{1, 2, 3, 4}, v.LongestPath())
	assert.Len(t, v.HighlightedLinks(), 5)
	assert.True(t, v.Root().HasClass("course-selected"))

	el3, err := v.Element(3)
	require.NoError(t, err)
	assert.True(t, el3.HasClass("selected"))
	assert.True(t, el3.HasClass("selected-course"))

	el2, _ := v.Element(2)
	assert.True(t, el2.HasClass("highlighted"))
	assert.True(t, el2.HasClass("backwards"))
	assert.True(t, el2.HasClass("direct"))
	assert.True(t, el2.HasClass(string(plan.StrictCoreq)))

	el1, _ := v.Element(1)
	assert.True(t, el1.HasClass("backwards"))
	assert.False(t, el1.HasClass("direct"))

	el5, _ := v.Element(5)
	assert.False(t, el5.HasClass("highlighted"))

	tip := v.Tooltip()
	assert.True(t, tip.Visible)
	assert.Equal(t, "CSE 15L", tip.Title)
	require.Len(t, tip.Requisites, 1)
	assert.Equal(t, 2, tip.Requisites[0].Source.ID)
	assert.Equal(t, plan.StrictCoreq, tip.Requisites[0].Type)
}

func TestHoverIgnoredWhileSelected(t *testing.T) {
	v := newView(t)
	require.NoError(t, v.Select(3))
	require.NoError(t, v.Hover(5))
	v.Leave()

	assert.Equal(t, []int{3, 2, 1, 4}, v.Highlighted())
}

func TestHoverAndLeave(t *testing.T) {
	v := newView(t)
	require.NoError(t, v.Hover(5))

	assert.Equal(t, []int{5}, v.Highlighted())
	assert.Equal(t, []int{5}, v.LongestPath())
	assert.Empty(t, v.HighlightedLinks())
	assert.False(t, v.Tooltip().Visible)

	v.Leave()
	assert.Empty(t, v.Highlighted())
	assert.False(t, v.Root().HasClass("course-selected"))
}

func TestClear(t *testing.T) {
	v := newView(t)
	require.NoError(t, v.Select(2))
	v.Clear()

	assert.Empty(t, v.Highlighted())
	assert.Nil(t, v.LongestPath())
	assert.Empty(t, v.HighlightedLinks())
	assert.False(t, v.Tooltip().Visible)
	assert.True(t, v.Root().Find(scene.ByClass("tooltip")).HasClass("tooltip-hidden"))

	el2, _ := v.Element(2)
	assert.False(t, el2.HasClass("selected"))
	assert.False(t, el2.HasClass("selected-course"))
}

func TestUnknownCourse(t *testing.T) {
	v := newView(t)
	assert.ErrorIs(t, v.Select(42), ErrUnknownCourse)
	assert.ErrorIs(t, v.Hover(42), ErrUnknownCourse)
	_, err := v.Element(42)
	assert.ErrorIs(t, err, ErrUnknownCourse)
}

func TestSetPlanKeepsElementsAndSelection(t *testing.T) {
	v := newView(t)
	require.NoError(t, v.Select(2))
	el1, _ := v.Element(1)

	p := samplePlan()
	p.Put(plan.Course{ID: 6, Name: "MATH 20B", Credits: 4})
	p.SetTerms([][]int{{1}, {2, 3, 6}, {4}})
	require.NoError(t, v.SetPlan(p))

	again, err := v.Element(1)
	require.NoError(t, err)
	assert.Same(t, el1, again)

	_, err = v.Element(5)
	assert.ErrorIs(t, err, ErrUnknownCourse)

	sel, ok := v.Selected()
	require.True(t, ok)
	assert.Equal(t, 2, sel.ID)
	assert.Equal(t, 2, v.Highlighted()[0])
	assert.True(t, v.Tooltip().Visible)
}

func TestResize(t *testing.T) {
	v := newView(t)
	require.NoError(t, v.Select(4))
	before, _ := v.Course(4)
	x := before.Position.X

	require.NoError(t, v.Resize(600, 400))

	after, _ := v.Course(4)
	assert.Less(t, after.Position.X, x)
	assert.Equal(t, "600", v.Root().Attr("width"))
	assert.Equal(t, "0 0 600 400", v.Root().Attr("viewBox"))

	path := v.Root().Find(scene.ByClass("longest-path"))
	assert.Equal(t, PathThrough([]*CourseNode{
		mustCourse(t, v, 1), mustCourse(t, v, 2), mustCourse(t, v, 3), mustCourse(t, v, 4),
	}), path.Attr("d"))
}

func mustCourse(t *testing.T, v *View, id int) *CourseNode {
	t.Helper()
	n, ok := v.Course(id)
	require.True(t, ok)
	return n
}

func TestSetOptions(t *testing.T) {
	v := newView(t)
	assert.True(t, v.Root().HasClass("redundant-dashed"))

	opts := DefaultOptions()
	opts.Redundant = RedundantHidden
	opts.System = analytics.Quarter
	opts.TermName = QuarterTermNames
	require.NoError(t, v.SetOptions(opts))

	assert.True(t, v.Root().HasClass("redundant-hidden"))
	assert.False(t, v.Root().HasClass("redundant-dashed"))
	assert.Equal(t, 4.7, mustCourse(t, v, 1).Metrics.Complexity)

	heading := v.Root().Find(func(n *scene.Node) bool { return n.ID == "term-heading-1" })
	require.NotNil(t, heading)
	assert.Equal(t, "Winter 1", heading.Text)
}

func TestWriteSVG(t *testing.T) {
	v := newView(t)
	var buf bytes.Buffer
	require.NoError(t, v.WriteSVG(&buf))

	out := buf.String()
	assert.Contains(t, out, `<svg class="curriculum-graph redundant-dashed"`)
	assert.Contains(t, out, `id="course-3"`)
	assert.Contains(t, out, `>CSE 15L</text>`)
	assert.Contains(t, out, `>Units: 8, Complexity: `)
	assert.Contains(t, out, `class="prereq redundant"`)
}

func TestLinkPath(t *testing.T) {
	node := func(term, index int, x, y float64) *CourseNode {
		return &CourseNode{Term: term, Index: index, Position: Position{X: x, Y: y, Radius: 5}}
	}
	src := node(0, 0, 10, 10)

	tests := []struct {
		name   string
		target *CourseNode
		want   string
	}{
		{"same term adjacent", node(0, 1, 10, 50), "M 10 15 L 10 45"},
		{"same term apart", node(0, 2, 10, 90), "M 10 15 Q -40 50 10 85"},
		{"same row apart", node(2, 0, 110, 10), "M 15 10 Q 60 60 105 10"},
		{"diagonal", node(1, 1, 60, 50), "M 15 10 C 35 10 35 50 55 50"},
		{"self", src, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LinkPath(src, tt.target))
		})
	}
}

func TestPlaceTooltip(t *testing.T) {
	window := Size{Width: 800, Height: 600}
	size := Size{Width: 200, Height: 100}

	tests := []struct {
		name   string
		course Position
		want   Placement
	}{
		{"centred below", Position{X: 400, Y: 100, Radius: 20}, Placement{Left: 300, Top: 120, Arrow: 100, Below: true}},
		{"clamped left", Position{X: 50, Y: 100, Radius: 20}, Placement{Left: 10, Top: 120, Arrow: 40, Below: true}},
		{"clamped right", Position{X: 790, Y: 100, Radius: 20}, Placement{Left: 590, Top: 120, Arrow: 200, Below: true}},
		{"flipped above", Position{X: 400, Y: 500, Radius: 20}, Placement{Left: 300, Bottom: 120, Arrow: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlaceTooltip(tt.course, size, window))
		})
	}
}

func TestGridLayout(t *testing.T) {
	g := NewGridLayout(1200, 800)
	g.SetShape(3, 2)

	assert.Equal(t, 400.0, g.Column(1).X)
	b := g.Bounds(&CourseNode{Term: 1, Index: 0})
	assert.InDelta(t, 576, b.X, 1e-9)
	assert.InDelta(t, 160, b.Y, 1e-9)
	assert.InDelta(t, 48, b.Width, 1e-9)
}

func TestTermNames(t *testing.T) {
	assert.Equal(t, "Term 3", IndexTermNames(nil, 2))
	assert.Equal(t, "Winter 2", QuarterTermNames(nil, 4))
	assert.Equal(t, "Spring 2", SemesterTermNames(nil, 3))

	f, err := ParseTermNames("quarter")
	require.NoError(t, err)
	assert.Equal(t, "Fall 1", f(nil, 0))

	_, err = ParseTermNames("trimester")
	assert.ErrorIs(t, err, ErrInvalidOption)
	_, err = ParseRedundantMode("faded")
	assert.ErrorIs(t, err, ErrInvalidOption)
}
