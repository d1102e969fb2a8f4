// Package plan models curricula and degree plans as a requisite graph.
//
// A [Plan] is an arena of [Course] records keyed by integer id. Requisite
// relations live in an edge map keyed by [Edge]; the forwards (courses a
// course unlocks) and backwards (a course's requisites) adjacency lists are
// index views derived from it, so courses never point at each other.
//
// Plans are built from the tabular export format by [Builder], or from the
// structured JSON format by package io. A plan built from a bare curriculum
// has its terms synthesized by [Schedule] or [Levels].
package plan

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/tidwall/btree"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Kind reports whether a plan came with explicit terms.
type Kind string

const (
	// KindCurriculum is an unordered course set whose terms were synthesized.
	KindCurriculum Kind = "curriculum"
	// KindDegreePlan carries an explicit term for every course.
	KindDegreePlan Kind = "degree-plan"
)

// Plan is a term-partitioned requisite graph.
//
// Terms holds course ids per 0-indexed term. Every course defined by the
// input appears in exactly one term; placeholders for requisites that were
// referenced but never defined appear in none.
type Plan struct {
	Kind  Kind
	Terms [][]int

	courses   btree.Map[int, *Course]
	forwards  map[int][]int
	backwards map[int][]int
	reqTypes  map[Edge]RequisiteType
	edges     []Edge
}

// New returns an empty plan of the given kind.
func New(kind Kind) *Plan {
	return &Plan{
		Kind:      kind,
		forwards:  make(map[int][]int),
		backwards: make(map[int][]int),
		reqTypes:  make(map[Edge]RequisiteType),
	}
}

// Len returns the number of courses, placeholders included.
func (p *Plan) Len() int { return p.courses.Len() }

// Course returns the course with the given id.
func (p *Plan) Course(id int) (*Course, bool) {
	return p.courses.Get(id)
}

// Courses returns every course in ascending id order.
func (p *Plan) Courses() []*Course {
	out := make([]*Course, 0, p.courses.Len())
	p.courses.Scan(func(_ int, c *Course) bool {
		out = append(out, c)
		return true
	})
	return out
}

// TermNodes returns the ids of courses placed in a term, in term order.
// Metrics are computed over this list so every consumer agrees on them;
// placeholders still shape the graph through their edges.
func (p *Plan) TermNodes() []int {
	seen := make(map[int]bool, p.courses.Len())
	out := make([]int, 0, p.courses.Len())
	for _, term := range p.Terms {
		for _, id := range term {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}

// Nodes returns [Plan.TermNodes] followed by any course that is in no term,
// in id order.
func (p *Plan) Nodes() []int {
	out := p.TermNodes()
	seen := make(map[int]bool, len(out))
	for _, id := range out {
		seen[id] = true
	}
	p.courses.Scan(func(id int, _ *Course) bool {
		if !seen[id] {
			out = append(out, id)
		}
		return true
	})
	return out
}

// Put inserts c, replacing any course with the same id, and returns the
// stored record.
func (p *Plan) Put(c Course) *Course {
	stored := &c
	p.courses.Set(c.ID, stored)
	return stored
}

// ensure returns the course with id, creating an empty placeholder if it
// does not exist yet.
func (p *Plan) ensure(id int) *Course {
	if c, ok := p.courses.Get(id); ok {
		return c
	}
	c := &Course{ID: id, Placeholder: true}
	p.courses.Set(id, c)
	return c
}

// Link records that source is a requisite of target. Both ends are created
// as placeholders if needed. Linking the same pair again only replaces the
// type.
func (p *Plan) Link(source, target int, t RequisiteType) {
	p.ensure(source)
	p.ensure(target)
	e := Edge{Source: source, Target: target}
	if _, ok := p.reqTypes[e]; !ok {
		p.forwards[source] = append(p.forwards[source], target)
		p.backwards[target] = append(p.backwards[target], source)
		p.edges = append(p.edges, e)
	}
	p.reqTypes[e] = t
}

// Forwards returns the courses that list id as a requisite.
func (p *Plan) Forwards(id int) []int { return p.forwards[id] }

// Backwards returns the requisites of id.
func (p *Plan) Backwards(id int) []int { return p.backwards[id] }

// RequisiteType returns the type of the source->target edge.
func (p *Plan) RequisiteType(source, target int) (RequisiteType, bool) {
	t, ok := p.reqTypes[Edge{Source: source, Target: target}]
	return t, ok
}

// Requisites returns every edge in the order it was first linked.
func (p *Plan) Requisites() []Requisite {
	out := make([]Requisite, len(p.edges))
	for i, e := range p.edges {
		out[i] = Requisite{Edge: e, Type: p.reqTypes[e]}
	}
	return out
}

// TermCourses returns the courses of term i.
func (p *Plan) TermCourses(i int) []*Course {
	if i < 0 || i >= len(p.Terms) {
		return nil
	}
	out := make([]*Course, 0, len(p.Terms[i]))
	for _, id := range p.Terms[i] {
		if c, ok := p.courses.Get(id); ok {
			out = append(out, c)
		}
	}
	return out
}

// TermCredits sums the credits of term i.
func (p *Plan) TermCredits(i int) float64 {
	var total float64
	for _, c := range p.TermCourses(i) {
		total += c.Credits
	}
	return total
}

// SetTerms replaces the term partition, updates each course's term, year
// and quarter, and sorts every term.
func (p *Plan) SetTerms(terms [][]int) {
	p.Terms = terms
	for i, term := range terms {
		for _, id := range term {
			if c, ok := p.courses.Get(id); ok {
				c.setTerm(i)
			}
		}
	}
	p.sortTerms()
}

// sortTerms orders each term by descending out-degree, then descending
// in-degree. The sort is stable so ties keep input order.
func (p *Plan) sortTerms() {
	for _, term := range p.Terms {
		slices.SortStableFunc(term, func(a, b int) int {
			if c := cmp.Compare(len(p.forwards[b]), len(p.forwards[a])); c != 0 {
				return c
			}
			return cmp.Compare(len(p.backwards[b]), len(p.backwards[a]))
		})
	}
}

// Validate reports requisite cycles. The error wraps [ErrCycle] and names
// the courses of the first cycle found.
func (p *Plan) Validate() error {
	g := simple.NewDirectedGraph()
	p.courses.Scan(func(id int, _ *Course) bool {
		g.AddNode(simple.Node(int64(id)))
		return true
	})
	for _, e := range p.edges {
		if e.Source == e.Target {
			return fmt.Errorf("%w: %s", ErrCycle, p.Label(e.Source))
		}
		g.SetEdge(g.NewEdge(simple.Node(int64(e.Source)), simple.Node(int64(e.Target))))
	}

	if _, err := topo.Sort(g); err != nil {
		unorderable, ok := err.(topo.Unorderable)
		if !ok || len(unorderable) == 0 {
			return fmt.Errorf("%w: %v", ErrCycle, err)
		}
		cycle := unorderable[0]
		names := make([]string, len(cycle))
		for i, n := range cycle {
			names[i] = p.Label(int(n.ID()))
		}
		slices.Sort(names)
		return fmt.Errorf("%w: %s", ErrCycle, strings.Join(names, ", "))
	}
	return nil
}

// Label returns the course name, or "#id" for unnamed courses.
func (p *Plan) Label(id int) string {
	if c, ok := p.courses.Get(id); ok && c.Name != "" {
		return c.Name
	}
	return "#" + strconv.Itoa(id)
}
