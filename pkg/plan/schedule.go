package plan

import (
	"fmt"
	"slices"
	"strings"
)

// UnitCap returns the per-term unit limit for a curriculum of n courses.
// It grows by three units per step, stepping every eight courses for small
// curricula and every forty for large ones.
func UnitCap(n int) int {
	return min(15+ceilDiv(n+8, 40)*3, 6+ceilDiv(n, 8)*3)
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// Schedule spreads courses over terms.
//
// Courses are considered in natural catalog-number order. Each round picks
// the first remaining course that has no declared prerequisite in the
// current term and no remaining course among its transitive requisites.
// It joins the current term if its units fit under [UnitCap], or opens a new
// term otherwise. Its strict corequisites follow it into the same term
// regardless of the cap. A round with no eligible course closes the current
// term.
//
// Schedule returns [ErrScheduleDeadlock] if no course can be placed in an
// empty term, which only happens when requisites form a cycle.
//
// The transitive check runs a depth-first search per candidate per round,
// which is cubic in the worst case. Curricula have at most a few hundred
// courses.
func Schedule(p *Plan, courses []int) ([][]int, error) {
	limit := UnitCap(len(courses))
	pending := slices.Clone(courses)
	slices.SortStableFunc(pending, func(a, b int) int {
		return NaturalCompare(p.sortKey(a), p.sortKey(b))
	})

	s := scheduler{plan: p, pending: pending, current: make(map[int]bool)}
	terms := [][]int{nil}
	var units float64

	maxRounds := 2*len(courses) + 2
	for round := 0; len(s.pending) > 0; round++ {
		if round > maxRounds {
			return nil, fmt.Errorf("%w: no progress after %d rounds", ErrScheduleDeadlock, round)
		}
		last := len(terms) - 1

		i := s.nextEligible()
		if i < 0 {
			if len(terms[last]) == 0 {
				return nil, fmt.Errorf("%w: %d courses left, none eligible: %s",
					ErrScheduleDeadlock, len(s.pending), s.describePending())
			}
			terms = append(terms, nil)
			units = 0
			clear(s.current)
			continue
		}

		id := s.take(i)
		credits := p.credits(id)
		if len(terms[last]) > 0 && units+credits > float64(limit) {
			terms = append(terms, nil)
			last++
			units = 0
			clear(s.current)
		}

		group := append([]int{id}, s.strictPartners(id)...)
		for _, c := range group {
			terms[last] = append(terms[last], c)
			s.current[c] = true
		}
		for _, c := range group {
			units += p.credits(c)
		}
	}

	if len(terms[len(terms)-1]) == 0 {
		terms = terms[:len(terms)-1]
	}
	return terms, nil
}

type scheduler struct {
	plan    *Plan
	pending []int
	current map[int]bool
}

func (s *scheduler) take(i int) int {
	id := s.pending[i]
	s.pending = slices.Delete(s.pending, i, i+1)
	return id
}

func (s *scheduler) nextEligible() int {
	for i, target := range s.pending {
		if s.eligible(target) {
			return i
		}
	}
	return -1
}

func (s *scheduler) eligible(target int) bool {
	for _, req := range s.plan.Backwards(target) {
		if t, _ := s.plan.RequisiteType(req, target); t == Prereq && s.current[req] {
			return false
		}
	}
	for _, other := range s.pending {
		if other != target && s.reaches(other, target) {
			return false
		}
	}
	return true
}

// reaches reports whether a forwards path leads from src to dst. Running
// into a cycle counts as no path.
func (s *scheduler) reaches(src, dst int) bool {
	const (
		white = iota
		gray
		black
	)
	color := make(map[int]int)
	cycle := false

	var dfs func(n int) bool
	dfs = func(n int) bool {
		color[n] = gray
		for _, next := range s.plan.Forwards(n) {
			if next == dst {
				return true
			}
			switch color[next] {
			case white:
				if dfs(next) {
					return true
				}
				if cycle {
					return false
				}
			case gray:
				cycle = true
				return false
			}
		}
		color[n] = black
		return false
	}
	return dfs(src) && !cycle
}

// strictPartners removes and returns pending courses joined to id by
// strict corequisite edges, following chains of them.
func (s *scheduler) strictPartners(id int) []int {
	var out []int
	queue := []int{id}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		var partners []int
		for _, f := range s.plan.Forwards(n) {
			if t, _ := s.plan.RequisiteType(n, f); t == StrictCoreq {
				partners = append(partners, f)
			}
		}
		for _, b := range s.plan.Backwards(n) {
			if t, _ := s.plan.RequisiteType(b, n); t == StrictCoreq {
				partners = append(partners, b)
			}
		}
		for _, partner := range partners {
			if i := slices.Index(s.pending, partner); i >= 0 {
				s.take(i)
				out = append(out, partner)
				queue = append(queue, partner)
			}
		}
	}
	return out
}

func (s *scheduler) describePending() string {
	names := make([]string, 0, len(s.pending))
	for _, id := range s.pending {
		names = append(names, s.plan.Label(id))
	}
	return strings.Join(names, ", ")
}

func (p *Plan) sortKey(id int) string {
	if c, ok := p.Course(id); ok {
		return c.SortKey()
	}
	return ""
}

func (p *Plan) credits(id int) float64 {
	if c, ok := p.Course(id); ok {
		return c.Credits
	}
	return 0
}

// Levels assigns each course to the term after its latest requisite among
// courses. Requisites outside courses count as already satisfied. Courses
// with no requisites and no dependents at all go in a final term of their
// own.
//
// Levels returns [ErrScheduleDeadlock] when the remaining courses require
// each other in a cycle.
func Levels(p *Plan, courses []int) ([][]int, error) {
	inSet := make(map[int]bool, len(courses))
	for _, id := range courses {
		inSet[id] = true
	}

	var solo, rest []int
	for _, id := range courses {
		if len(p.Forwards(id)) == 0 && len(p.Backwards(id)) == 0 {
			solo = append(solo, id)
		} else {
			rest = append(rest, id)
		}
	}

	satisfied := make(map[int]bool, len(courses))
	var terms [][]int
	for len(rest) > 0 {
		var term, next []int
		for _, id := range rest {
			ready := true
			for _, req := range p.Backwards(id) {
				if inSet[req] && !satisfied[req] {
					ready = false
					break
				}
			}
			if ready {
				term = append(term, id)
			} else {
				next = append(next, id)
			}
		}
		if len(term) == 0 {
			names := make([]string, len(next))
			for i, id := range next {
				names[i] = p.Label(id)
			}
			return nil, fmt.Errorf("%w: cyclic requisites among %s", ErrScheduleDeadlock, strings.Join(names, ", "))
		}
		for _, id := range term {
			satisfied[id] = true
		}
		terms = append(terms, term)
		rest = next
	}
	if len(solo) > 0 {
		terms = append(terms, solo)
	}
	return terms, nil
}
