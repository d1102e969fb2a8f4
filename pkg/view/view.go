// Package view lays out a degree plan as an interactive SVG graph.
//
// A [View] places each term in a column with a header and a footer, draws
// each course as a ball in its term, and connects courses with requisite
// links. Hovering or selecting a course highlights everything it requires
// and everything it unlocks, the links among them and the longest
// requisite chain through the course.
//
// The view keeps a retained [scene.Node] tree and updates it with keyed
// joins, so calling [View.SetPlan] again with an edited plan keeps the
// elements of unchanged courses. [View.WriteSVG] serializes the current
// state.
package view

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/analytics"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/join"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/plan"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/scene"
)

var (
	// ErrUnknownCourse is returned for course ids the view has not placed.
	ErrUnknownCourse = errors.New("unknown course")
	// ErrNoPlan is returned by SetPlan when given a nil plan.
	ErrNoPlan = errors.New("no plan")
)

type itemKind int

const (
	itemHeader itemKind = iota
	itemBackground
	itemCourse
	itemFooter
)

// gridItem is one child of the graph: a term header, background or
// footer, or a course.
type gridItem struct {
	kind  itemKind
	index int // term index, or grid row for courses
	node  *CourseNode
	term  []*CourseNode
}

type gridKey struct {
	kind itemKind
	id   int
}

func (it *gridItem) key() gridKey {
	if it.kind == itemCourse {
		return gridKey{itemCourse, it.node.ID}
	}
	return gridKey{it.kind, it.index}
}

type (
	gridJoin = join.Join[*gridItem, gridKey, *scene.Node]
	linkJoin = join.Join[Link, plan.Edge, *scene.Node]
)

// View renders one plan.
type View struct {
	opts   Options
	layout Layout

	plan      *plan.Plan
	report    *analytics.Report[int]
	nodes     map[int]*CourseNode
	terms     [][]*CourseNode
	links     []Link
	redundant map[plan.Edge]bool

	root             *scene.Node
	graph            *scene.Node
	grid             *gridJoin
	allLinks         *linkJoin
	highlightedLinks *linkJoin
	longestPathEl    *scene.Node

	highlighted    []*CourseNode
	highlightedSet map[int]bool
	selected       *CourseNode
	longestPath    []*CourseNode

	tooltip      Tooltip
	tooltipEl    *scene.Node
	tooltipBox   *scene.Node
	tooltipTitle *scene.Node
	tooltipReqs  *scene.Node
	rows         *join.Join[[2]string, string, *scene.Node]
	reqs         *join.Join[TooltipRequisite, int, *scene.Node]
}

// New returns an empty view. A nil layout uses a 1200 x 800 [GridLayout].
func New(layout Layout, opts Options) *View {
	if layout == nil {
		layout = NewGridLayout(1200, 800)
	}
	v := &View{
		opts:           opts,
		layout:         layout,
		nodes:          make(map[int]*CourseNode),
		redundant:      make(map[plan.Edge]bool),
		highlightedSet: make(map[int]bool),
	}

	v.root = scene.New("svg").Set("xmlns", "http://www.w3.org/2000/svg")
	v.root.AddClass("curriculum-graph")
	v.graph = scene.New("g").AddClass("graph")

	allLinksGroup := scene.New("g").AddClass("links", "all-links")
	highlightedGroup := scene.New("g").AddClass("links", "highlighted-links")
	v.longestPathEl = scene.New("path").AddClass("longest-path")
	highlightedGroup.Append(v.longestPathEl)

	v.allLinks = v.newLinkJoin(allLinksGroup)
	v.highlightedLinks = v.newLinkJoin(highlightedGroup)
	v.grid = join.New(join.Options[*gridItem, gridKey, *scene.Node]{
		Container: v.graph,
		Key:       (*gridItem).key,
		Enter:     v.enterItem,
		Update:    v.updateItem,
		Frame:     v.layout.Frame,
		Measure:   v.measureItem,
	})

	// Grid items are appended after these, so links draw under courses.
	v.graph.Append(allLinksGroup)
	v.graph.Append(highlightedGroup)

	v.newTooltip()

	v.root.Append(newStyle())
	v.root.Append(newArrowDefs())
	v.root.Append(v.graph)
	v.root.Append(v.tooltipEl)

	frame := layout.Frame()
	v.setSize(frame.Width, frame.Height)
	v.applyRedundantMode()
	return v
}

func (v *View) newLinkJoin(group *scene.Node) *linkJoin {
	return join.New(join.Options[Link, plan.Edge, *scene.Node]{
		Container: group,
		Key:       Link.key,
		Enter: func(Link) *scene.Node {
			return scene.New("path")
		},
		Update: func(l Link, el *scene.Node, _ *Link) {
			el.Set("d", LinkPath(l.Source, l.Target))
			el.Set("data-source", strconv.Itoa(l.Source.ID))
			el.Set("data-target", strconv.Itoa(l.Target.ID))
			if v.opts.StyleLink != nil {
				v.opts.StyleLink(l, el)
			}
		},
	})
}

func (v *View) newTooltip() {
	v.tooltipEl = scene.New("g").AddClass("tooltip", "tooltip-hidden")
	v.tooltipBox = scene.New("rect").Set("rx", "6")
	v.tooltipTitle = scene.New("text").AddClass("tooltip-title")
	table := scene.New("g").AddClass("tooltip-table")
	heading := scene.New("text").AddClass("tooltip-req-heading")
	heading.Text = "Requisites"
	v.tooltipReqs = scene.New("g").AddClass("tooltip-reqs")
	for _, el := range []*scene.Node{v.tooltipBox, v.tooltipTitle, table, heading, v.tooltipReqs} {
		v.tooltipEl.Append(el)
	}

	v.rows = join.New(join.Options[[2]string, string, *scene.Node]{
		Container: table,
		Key:       func(row [2]string) string { return row[0] },
		Enter: func(row [2]string) *scene.Node {
			el := scene.New("g").AddClass("tooltip-row")
			key := scene.New("text").AddClass("tooltip-key")
			key.Text = row[0]
			el.Append(key)
			el.Append(scene.New("text").AddClass("tooltip-value").Set("x", "130"))
			return el
		},
		Update: func(row [2]string, el *scene.Node, _ *[2]string) {
			el.Children()[1].Text = row[1]
		},
	})
	v.reqs = join.New(join.Options[TooltipRequisite, int, *scene.Node]{
		Container: v.tooltipReqs,
		Key:       func(r TooltipRequisite) int { return r.Source.ID },
		Enter: func(TooltipRequisite) *scene.Node {
			return scene.New("text").AddClass("tooltip-req")
		},
		Update: func(r TooltipRequisite, el *scene.Node, _ *TooltipRequisite) {
			if v.opts.TooltipRequisite != nil {
				v.opts.TooltipRequisite(r, el)
			}
		},
	})
}

// SetPlan computes metrics for p and shows it. Courses keep their elements
// across calls. A selection survives if the selected course is still in
// the plan.
func (v *View) SetPlan(p *plan.Plan) error {
	if p == nil {
		return ErrNoPlan
	}

	report, err := analytics.Compute[int](p, p.TermNodes(), v.system())
	if err != nil {
		return fmt.Errorf("analyze plan: %w", err)
	}

	focused := v.focusedID()
	wasSelected := v.selected != nil
	v.unfocus()

	v.plan = p
	v.report = report
	v.redundant = make(map[plan.Edge]bool, len(report.Redundant))
	for _, e := range report.Redundant {
		v.redundant[plan.Edge{Source: e.Source, Target: e.Target}] = true
	}

	v.nodes = make(map[int]*CourseNode, len(p.TermNodes()))
	v.terms = make([][]*CourseNode, len(p.Terms))
	longest := 1
	var items []*gridItem
	for i, term := range p.Terms {
		nodes := make([]*CourseNode, 0, len(term))
		items = append(items, &gridItem{kind: itemHeader, index: i})
		items = append(items, &gridItem{kind: itemBackground, index: i})
		for j, id := range term {
			c, _ := p.Course(id)
			n := &CourseNode{ID: id, Course: c, Term: i, Index: j, Metrics: report.Get(id)}
			nodes = append(nodes, n)
			v.nodes[id] = n
			items = append(items, &gridItem{kind: itemCourse, index: j + 1, node: n})
		}
		items = append(items, &gridItem{kind: itemFooter, index: i})
		v.terms[i] = nodes
		longest = max(longest, len(term))
	}
	for _, it := range items {
		if it.kind == itemHeader || it.kind == itemFooter {
			it.term = v.terms[it.index]
		}
	}

	v.links = nil
	for _, it := range items {
		if it.kind != itemCourse {
			continue
		}
		for _, target := range p.Forwards(it.node.ID) {
			t, ok := v.nodes[target]
			if !ok {
				continue
			}
			e := plan.Edge{Source: it.node.ID, Target: target}
			typ, _ := p.RequisiteType(e.Source, e.Target)
			v.links = append(v.links, Link{Source: it.node, Target: t, Type: typ, Redundant: v.redundant[e]})
		}
	}

	if s, ok := v.layout.(Shaper); ok {
		s.SetShape(len(p.Terms), longest)
	}
	v.root.Set("data-term-count", strconv.Itoa(len(p.Terms)))
	v.root.Set("data-longest-term-length", strconv.Itoa(longest))

	if err := v.grid.Join(items); err != nil {
		return err
	}
	if err := v.grid.Measure(); err != nil {
		return err
	}
	if err := v.allLinks.Join(v.links); err != nil {
		return err
	}

	if n, ok := v.nodes[focused]; ok {
		if wasSelected {
			v.selected = n
			v.focus(n)
			v.showTooltip(n)
		} else {
			v.focus(n)
		}
	} else {
		v.selected = nil
		v.hideTooltip()
	}
	return nil
}

func (v *View) system() analytics.System {
	if v.opts.System == "" {
		return analytics.Semester
	}
	return v.opts.System
}

func (v *View) focusedID() int {
	if len(v.highlighted) == 0 {
		return 0
	}
	return v.highlighted[0].ID
}

// SetOptions replaces the options and restyles every element. Changing
// the system recomputes metrics.
func (v *View) SetOptions(opts Options) error {
	recompute := opts.System != v.opts.System && v.plan != nil
	v.opts = opts
	v.applyRedundantMode()
	if recompute {
		return v.SetPlan(v.plan)
	}
	if err := v.forceUpdate(); err != nil {
		return err
	}
	if v.selected != nil {
		v.showTooltip(v.selected)
	}
	return nil
}

func (v *View) forceUpdate() error {
	for _, j := range []interface{ ForceUpdate() error }{v.grid, v.allLinks, v.highlightedLinks} {
		if err := j.ForceUpdate(); err != nil {
			return err
		}
	}
	return nil
}

func (v *View) applyRedundantMode() {
	for _, m := range []RedundantMode{RedundantDashed, RedundantHidden} {
		v.root.Toggle("redundant-"+string(m), v.opts.Redundant == m)
	}
}

func (v *View) setSize(width, height float64) {
	w, h := formatNumber(width), formatNumber(height)
	v.root.Set("width", w).Set("height", h).Set("viewBox", "0 0 "+w+" "+h)
}

// Resize changes the frame size. Course positions are measured again
// before any link is redrawn.
func (v *View) Resize(width, height float64) error {
	if r, ok := v.layout.(Resizer); ok {
		r.Resize(width, height)
	}
	v.setSize(width, height)

	if err := v.grid.ForceUpdate(); err != nil {
		return err
	}
	if err := v.grid.Measure(); err != nil {
		return err
	}
	if err := v.allLinks.ForceUpdate(); err != nil {
		return err
	}
	if err := v.highlightedLinks.ForceUpdate(); err != nil {
		return err
	}
	if len(v.longestPath) > 0 {
		v.renderLongestPath()
	}
	v.positionTooltip()
	return nil
}

func (v *View) enterItem(it *gridItem) *scene.Node {
	switch it.kind {
	case itemHeader:
		el := scene.New("text").AddClass("term-heading").Set("role", "columnheader")
		el.ID = "term-heading-" + strconv.Itoa(it.index)
		return el
	case itemFooter:
		return scene.New("text").AddClass("term-footer").
			Set("aria-describedby", "term-heading-"+strconv.Itoa(it.index))
	case itemBackground:
		return scene.New("rect").AddClass("term-background")
	}

	el := scene.New("g").AddClass("course")
	el.ID = "course-" + strconv.Itoa(it.node.ID)
	el.Append(scene.New("circle").AddClass("course-ball"))
	el.Append(scene.New("text").AddClass("course-label"))
	el.Append(scene.New("text").AddClass("course-name"))
	return el
}

// Term header and footer baselines from the column edges.
const (
	headerBaseline = 24
	footerBaseline = 16
	nameOffset     = 14
)

func (v *View) updateItem(it *gridItem, el *scene.Node, _ **gridItem) {
	switch it.kind {
	case itemHeader:
		col := v.layout.Column(it.index)
		el.Set("x", formatNumber(col.X+col.Width/2)).Set("y", formatNumber(col.Y+headerBaseline))
		el.Text = "Term " + strconv.Itoa(it.index+1)
		if v.opts.TermName != nil {
			el.Text = v.opts.TermName(it.term, it.index)
		}
	case itemFooter:
		col := v.layout.Column(it.index)
		el.Set("x", formatNumber(col.X+col.Width/2)).Set("y", formatNumber(col.Y+col.Height-footerBaseline))
		el.Text = ""
		if v.opts.TermSummary != nil {
			el.Text = v.opts.TermSummary(it.term, it.index)
		}
	case itemBackground:
		col := v.layout.Column(it.index)
		el.Set("x", formatNumber(col.X)).Set("y", formatNumber(col.Y)).
			Set("width", formatNumber(col.Width)).Set("height", formatNumber(col.Height))
	case itemCourse:
		v.updateCourse(it, el)
	}
}

func (v *View) updateCourse(it *gridItem, el *scene.Node) {
	n := it.node
	el.Data = n
	el.Set("data-term", strconv.Itoa(n.Term+1))
	el.Set("data-row", strconv.Itoa(it.index))
	el.Set("aria-describedby", "term-heading-"+strconv.Itoa(n.Term))

	b := v.layout.Bounds(n)
	cx, cy, r := formatNumber(b.X+b.Width/2), formatNumber(b.Y+b.Height/2), b.Width/2
	parts := el.Children()
	ball, label, name := parts[0], parts[1], parts[2]
	ball.Set("cx", cx).Set("cy", cy).Set("r", formatNumber(r))
	label.Set("x", cx).Set("y", cy)
	name.Set("x", cx).Set("y", formatNumber(b.Y+b.Height+nameOffset))

	label.Text, name.Text = "", ""
	if v.opts.CourseLabel != nil {
		label.Text = v.opts.CourseLabel(n)
	}
	if v.opts.CourseName != nil {
		name.Text = v.opts.CourseName(n)
	}
	if v.opts.StyleNode != nil {
		v.opts.StyleNode(n, el)
	}
}

func (v *View) measureItem(it *gridItem, _ *scene.Node, frame join.Rect) {
	if it.kind == itemCourse {
		it.node.Position = measure(v.layout.Bounds(it.node), frame)
	}
}

func (v *View) courseElement(id int) *scene.Node {
	el, err := v.grid.Element(gridKey{itemCourse, id})
	if err != nil {
		return nil
	}
	return el
}

func (v *View) lookup(id int) (*CourseNode, error) {
	n, ok := v.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCourse, id)
	}
	return n, nil
}

// Hover highlights a course unless one is selected.
func (v *View) Hover(id int) error {
	n, err := v.lookup(id)
	if err != nil {
		return err
	}
	if v.selected == nil {
		v.focus(n)
	}
	return nil
}

// Leave ends a hover. It does nothing while a course is selected.
func (v *View) Leave() {
	if v.selected == nil {
		v.unfocus()
	}
}

// Select highlights a course and shows its tooltip until [View.Clear].
func (v *View) Select(id int) error {
	n, err := v.lookup(id)
	if err != nil {
		return err
	}
	v.selected = n
	v.focus(n)
	v.showTooltip(n)
	return nil
}

// Clear drops the selection and any highlight.
func (v *View) Clear() {
	v.selected = nil
	v.unfocus()
	v.hideTooltip()
}

// Selected returns the selected course, if any.
func (v *View) Selected() (*CourseNode, bool) {
	return v.selected, v.selected != nil
}

func (v *View) styleLinked(n *CourseNode, el *scene.Node, rel *Relation) {
	if v.opts.StyleLinkedNode != nil && el != nil {
		v.opts.StyleLinkedNode(n, el, rel)
	}
}

func (v *View) unfocus() {
	for _, n := range v.highlighted {
		if el := v.courseElement(n.ID); el != nil {
			el.Toggle("highlighted", false).Toggle("selected", false)
			v.styleLinked(n, el, nil)
		}
	}
	v.highlighted = nil
	clear(v.highlightedSet)
	v.root.Toggle("course-selected", false)
	v.longestPath = nil
	v.renderLongestPath()
	// Only fails when re-entered, which unfocus never is.
	_ = v.highlightedLinks.Join(nil)
}

func (v *View) mark(n *CourseNode) {
	if !v.highlightedSet[n.ID] {
		v.highlightedSet[n.ID] = true
		v.highlighted = append(v.highlighted, n)
	}
	if el := v.courseElement(n.ID); el != nil {
		el.AddClass("highlighted")
	}
}

// focus highlights n, everything it reaches in either direction and the
// links among them, then finds the longest path through n.
func (v *View) focus(n *CourseNode) {
	v.unfocus()
	v.root.Toggle("course-selected", true)

	v.mark(n)
	el := v.courseElement(n.ID)
	if el != nil {
		el.AddClass("selected")
	}
	v.styleLinked(n, el, &Relation{Kind: RelationSelected})

	for _, dir := range []analytics.Direction{analytics.Backward, analytics.Forward} {
		visited := map[int]bool{n.ID: true}
		for _, m := range v.neighbors(n, dir) {
			if m != n {
				v.reach(n, m, dir, true, visited)
			}
		}
	}

	var links []Link
	for _, l := range v.links {
		if v.highlightedSet[l.Source.ID] && v.highlightedSet[l.Target.ID] {
			links = append(links, l)
		}
	}
	_ = v.highlightedLinks.Join(links)

	v.longestPath = nil
	if ids, err := analytics.ThroughPath[int](v.plan, n.ID); err == nil {
		for _, id := range ids {
			if m, ok := v.nodes[id]; ok {
				v.longestPath = append(v.longestPath, m)
			}
		}
	}
	v.renderLongestPath()
}

// reach highlights n, reached from `from` along dir, and continues past it
// the first time n is seen.
func (v *View) reach(from, n *CourseNode, dir analytics.Direction, direct bool, visited map[int]bool) {
	kind := RelationForwards
	src, dst := from.ID, n.ID
	if dir == analytics.Backward {
		kind = RelationBackwards
		src, dst = n.ID, from.ID
	}
	typ, _ := v.plan.RequisiteType(src, dst)

	v.mark(n)
	v.styleLinked(n, v.courseElement(n.ID), &Relation{Kind: kind, Direct: direct, From: from, Type: typ})

	if visited[n.ID] {
		return
	}
	visited[n.ID] = true
	for _, m := range v.neighbors(n, dir) {
		if m != v.highlighted[0] {
			v.reach(n, m, dir, false, visited)
		}
	}
}

func (v *View) neighbors(n *CourseNode, dir analytics.Direction) []*CourseNode {
	ids := v.plan.Forwards(n.ID)
	if dir == analytics.Backward {
		ids = v.plan.Backwards(n.ID)
	}
	out := make([]*CourseNode, 0, len(ids))
	for _, id := range ids {
		if m, ok := v.nodes[id]; ok {
			out = append(out, m)
		}
	}
	return out
}

func (v *View) renderLongestPath() {
	v.longestPathEl.Set("d", PathThrough(v.longestPath))
}

func (v *View) showTooltip(n *CourseNode) {
	t := Tooltip{Visible: true, Course: n}
	if v.opts.TooltipTitle != nil {
		t.Title = v.opts.TooltipTitle(n)
	}
	if v.opts.TooltipContent != nil {
		t.Rows = v.opts.TooltipContent(n)
	}
	for _, src := range v.neighbors(n, analytics.Backward) {
		e := plan.Edge{Source: src.ID, Target: n.ID}
		typ, _ := v.plan.RequisiteType(e.Source, e.Target)
		t.Requisites = append(t.Requisites, TooltipRequisite{Source: src, Type: typ, Redundant: v.redundant[e]})
	}
	t.measure()
	v.tooltip = t

	v.tooltipTitle.Text = t.Title
	_ = v.rows.Join(t.Rows)
	_ = v.reqs.Join(t.Requisites)
	v.tooltipEl.Toggle("tooltip-hidden", false)
	v.positionTooltip()
}

func (v *View) hideTooltip() {
	v.tooltip = Tooltip{}
	v.tooltipEl.Toggle("tooltip-hidden", true)
}

// positionTooltip places the tooltip and lays out its lines.
func (v *View) positionTooltip() {
	t := &v.tooltip
	if !t.Visible {
		return
	}
	frame := v.layout.Frame()
	t.Placement = PlaceTooltip(t.Course.Position, t.Size, Size{Width: frame.Width, Height: frame.Height})

	top := t.Placement.Top
	if !t.Placement.Below {
		top = frame.Height - t.Placement.Bottom - t.Size.Height
	}
	v.tooltipEl.Set("transform", fmt.Sprintf("translate(%s %s)", formatNumber(t.Placement.Left), formatNumber(top)))
	v.tooltipEl.Set("data-arrow", formatNumber(t.Placement.Arrow))
	v.tooltipEl.Toggle("tooltip-top", t.Placement.Below)
	v.tooltipEl.Toggle("tooltip-bottom", !t.Placement.Below)
	v.tooltipBox.Set("width", formatNumber(t.Size.Width)).Set("height", formatNumber(t.Size.Height))

	line := func(i int) string {
		return formatNumber(tooltipPadding + float64(i+1)*tooltipLineHeight)
	}
	v.tooltipTitle.Set("x", strconv.Itoa(tooltipPadding)).Set("y", line(0))
	i := 1
	for _, el := range v.rows.Elements() {
		el.Set("transform", fmt.Sprintf("translate(%d %s)", tooltipPadding, line(i)))
		i++
	}
	if len(t.Requisites) > 0 {
		heading := v.tooltipEl.Find(scene.ByClass("tooltip-req-heading"))
		heading.Set("x", strconv.Itoa(tooltipPadding)).Set("y", line(i))
		i++
	}
	for _, el := range v.reqs.Elements() {
		el.Set("x", strconv.Itoa(tooltipPadding)).Set("y", line(i))
		i++
	}
}

// Course returns a placed course.
func (v *View) Course(id int) (*CourseNode, bool) {
	n, ok := v.nodes[id]
	return n, ok
}

// Terms returns the placed courses by term.
func (v *View) Terms() [][]*CourseNode { return v.terms }

// Links returns every drawn link.
func (v *View) Links() []Link { return v.links }

// Report returns the metrics of the current plan.
func (v *View) Report() *analytics.Report[int] { return v.report }

// Highlighted returns the ids of highlighted courses, the focused course
// first.
func (v *View) Highlighted() []int {
	ids := make([]int, len(v.highlighted))
	for i, n := range v.highlighted {
		ids[i] = n.ID
	}
	return ids
}

// HighlightedLinks returns the links drawn between highlighted courses.
func (v *View) HighlightedLinks() []Link { return v.highlightedLinks.Items() }

// LongestPath returns the ids on the longest requisite chain through the
// focused course, or nil if nothing is focused or the chain has a cycle.
func (v *View) LongestPath() []int {
	if len(v.longestPath) == 0 {
		return nil
	}
	ids := make([]int, len(v.longestPath))
	for i, n := range v.longestPath {
		ids[i] = n.ID
	}
	return ids
}

// Tooltip returns the tooltip state.
func (v *View) Tooltip() Tooltip { return v.tooltip }

// Root returns the scene root.
func (v *View) Root() *scene.Node { return v.root }

// Element returns the scene element of a placed course.
func (v *View) Element(id int) (*scene.Node, error) {
	if _, err := v.lookup(id); err != nil {
		return nil, err
	}
	return v.grid.Element(gridKey{itemCourse, id})
}

// WriteSVG writes the scene as a standalone SVG document.
func (v *View) WriteSVG(w io.Writer) error {
	return v.root.WriteSVG(w)
}
