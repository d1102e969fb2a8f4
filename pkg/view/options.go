package view

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/analytics"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/plan"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/scene"
)

// RelationKind says how a highlighted course relates to the focused one.
type RelationKind int

const (
	RelationSelected RelationKind = iota
	RelationBackwards
	RelationForwards
)

func (k RelationKind) String() string {
	switch k {
	case RelationBackwards:
		return "backwards"
	case RelationForwards:
		return "forwards"
	default:
		return "selected"
	}
}

// Relation describes why a course is highlighted. For backwards and
// forwards relations, From is the course it was reached from, Type is the
// requisite type of that edge and Direct reports whether From is the
// focused course.
type Relation struct {
	Kind   RelationKind
	Direct bool
	From   *CourseNode
	Type   plan.RequisiteType
}

// RedundantMode controls how redundant requisite links are drawn.
type RedundantMode string

const (
	RedundantVisible RedundantMode = "visible"
	RedundantDashed  RedundantMode = "dashed"
	RedundantHidden  RedundantMode = "hidden"
)

// ErrInvalidOption is returned when parsing an unknown option value.
var ErrInvalidOption = errors.New("invalid option")

// ParseRedundantMode parses "visible", "dashed" or "hidden".
func ParseRedundantMode(s string) (RedundantMode, error) {
	switch m := RedundantMode(s); m {
	case RedundantVisible, RedundantDashed, RedundantHidden:
		return m, nil
	}
	return "", fmt.Errorf("%w: redundant mode %q", ErrInvalidOption, s)
}

// TermNameFunc names or summarizes a term column.
type TermNameFunc func(term []*CourseNode, index int) string

// Options customizes how a [View] labels and styles its elements. Nil
// functions fall back to plain defaults.
type Options struct {
	System    analytics.System
	Redundant RedundantMode

	// TermName is shown at the top of each term column.
	TermName TermNameFunc
	// TermSummary is shown at the bottom of each term column.
	TermSummary TermNameFunc
	// CourseName is shown under each course ball.
	CourseName func(n *CourseNode) string
	// CourseLabel is shown inside each course ball.
	CourseLabel func(n *CourseNode) string

	StyleNode func(n *CourseNode, el *scene.Node)
	StyleLink func(l Link, el *scene.Node)
	// StyleLinkedNode is called with a nil relation when a course stops
	// being highlighted.
	StyleLinkedNode func(n *CourseNode, el *scene.Node, rel *Relation)

	TooltipTitle   func(n *CourseNode) string
	TooltipContent func(n *CourseNode) [][2]string
	// TooltipRequisite fills in one entry of the tooltip's requisite list.
	TooltipRequisite func(r TooltipRequisite, el *scene.Node)
}

// DefaultOptions returns the options used by the CLI and HTTP server.
func DefaultOptions() Options {
	return Options{
		System:          analytics.Semester,
		Redundant:       RedundantDashed,
		TermName:        IndexTermNames,
		TermSummary:     ComplexitySummary,
		CourseName:      func(n *CourseNode) string { return n.Name() },
		CourseLabel:     func(n *CourseNode) string { return formatNumber(n.Metrics.Complexity) },
		StyleLink:       StyleRequisiteLink,
		StyleLinkedNode: StyleRelation,
		TooltipTitle:    func(n *CourseNode) string { return n.Name() },
		TooltipContent:  MetricRows,
		TooltipRequisite: func(r TooltipRequisite, el *scene.Node) {
			el.Text = RequisiteText(r)
		},
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// IndexTermNames names terms "Term 1", "Term 2", and so on.
func IndexTermNames(_ []*CourseNode, index int) string {
	return "Term " + strconv.Itoa(index+1)
}

// QuarterTermNames names terms "Fall 1", "Winter 1", "Spring 1", "Fall 2".
func QuarterTermNames(_ []*CourseNode, index int) string {
	return fmt.Sprintf("%s %d", [...]string{"Fall", "Winter", "Spring"}[index%3], index/3+1)
}

// SemesterTermNames names terms "Fall 1", "Spring 1", "Fall 2".
func SemesterTermNames(_ []*CourseNode, index int) string {
	return fmt.Sprintf("%s %d", [...]string{"Fall", "Spring"}[index%2], index/2+1)
}

// ParseTermNames maps "index", "quarter" or "semester" to a naming
// function.
func ParseTermNames(s string) (TermNameFunc, error) {
	switch s {
	case "index", "":
		return IndexTermNames, nil
	case "quarter":
		return QuarterTermNames, nil
	case "semester":
		return SemesterTermNames, nil
	}
	return nil, fmt.Errorf("%w: term names %q", ErrInvalidOption, s)
}

// ComplexitySummary reports a term's total units and complexity.
func ComplexitySummary(term []*CourseNode, _ int) string {
	var units, complexity float64
	for _, n := range term {
		if n.Course != nil {
			units += n.Course.Credits
		}
		complexity += n.Metrics.Complexity
	}
	return fmt.Sprintf("Units: %s, Complexity: %s", formatNumber(units), formatNumber(complexity))
}

// MetricRows lists a course's units and metrics.
func MetricRows(n *CourseNode) [][2]string {
	var units float64
	if n.Course != nil {
		units = n.Course.Credits
	}
	return [][2]string{
		{"Units", formatNumber(units)},
		{"Complexity", formatNumber(n.Metrics.Complexity)},
		{"Centrality", strconv.Itoa(n.Metrics.Centrality)},
		{"Blocking factor", formatNumber(n.Metrics.BlockingFactor)},
		{"Delay factor", strconv.Itoa(n.Metrics.DelayFactor)},
	}
}

// StyleRequisiteLink classes a link by requisite type and marks redundant
// links.
func StyleRequisiteLink(l Link, el *scene.Node) {
	for _, t := range []plan.RequisiteType{plan.Prereq, plan.Coreq, plan.StrictCoreq} {
		el.Toggle(string(t), l.Type == t)
	}
	el.Toggle("redundant", l.Redundant)
}

// Relation classes applied by [StyleRelation].
var relationClasses = []string{
	"selected-course", "backwards", "forwards", "direct",
	string(plan.Prereq), string(plan.Coreq), string(plan.StrictCoreq),
}

// StyleRelation classes a highlighted course by its relation and, for
// direct requisites, by the requisite type of the edge.
func StyleRelation(_ *CourseNode, el *scene.Node, rel *Relation) {
	for _, c := range relationClasses {
		el.Toggle(c, false)
	}
	if rel == nil {
		return
	}
	if rel.Kind == RelationSelected {
		el.AddClass("selected-course")
		return
	}
	el.AddClass(rel.Kind.String())
	if rel.Direct {
		el.AddClass("direct", string(rel.Type))
	}
}

var requisiteNames = map[plan.RequisiteType]string{
	plan.Prereq:      "prerequisite",
	plan.Coreq:       "corequisite",
	plan.StrictCoreq: "strict corequisite",
}

// RequisiteText describes a requisite as "CSE 12 (prerequisite)", noting
// redundant ones.
func RequisiteText(r TooltipRequisite) string {
	text := fmt.Sprintf("%s (%s)", r.Source.Name(), requisiteNames[r.Type])
	if r.Redundant {
		text += ", redundant"
	}
	return text
}
