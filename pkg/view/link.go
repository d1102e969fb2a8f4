package view

import (
	"strconv"
	"strings"

	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/plan"
)

// Link is a requisite edge between two placed courses.
type Link struct {
	Source    *CourseNode
	Target    *CourseNode
	Type      plan.RequisiteType
	Redundant bool
}

func (l Link) key() plan.Edge {
	return plan.Edge{Source: l.Source.ID, Target: l.Target.ID}
}

// sign returns 1 when a < b and -1 otherwise.
func sign(a, b float64) float64 {
	if a < b {
		return 1
	}
	return -1
}

// LinkPath returns SVG path data for a link from source to target. Both
// ends stop at the edge of the course balls.
//
//   - Courses in the same term are joined by a straight line, or by a
//     quadratic curve bowing sideways when other courses sit between them.
//   - Courses in the same row more than one term apart are joined by a
//     quadratic curve bowing downwards so it clears the courses between.
//   - Anything else gets a horizontal cubic S-curve.
func LinkPath(source, target *CourseNode) string {
	if source == target {
		return ""
	}
	s, t := source.Position, target.Position

	if source.Term == target.Term {
		diff := abs(source.Index - target.Index)
		sy := s.Y + s.Radius*sign(s.Y, t.Y)
		ty := t.Y + t.Radius*sign(t.Y, s.Y)
		if diff > 1 {
			bow := (float64(diff)*10 + 30) * -sign(s.Y, t.Y)
			return pathData("M", s.X, sy, "Q", s.X+bow, (s.Y+t.Y)/2, t.X, ty)
		}
		return pathData("M", s.X, sy, "L", t.X, ty)
	}

	mid := (s.X + t.X) / 2
	sx := s.X + s.Radius*sign(s.X, t.X)
	tx := t.X + t.Radius*sign(t.X, s.X)

	diff := abs(source.Term - target.Term)
	if source.Index == target.Index && diff > 1 {
		return pathData("M", sx, s.Y, "Q", mid, s.Y+float64(diff)*10+30, tx, t.Y)
	}
	return pathData("M", sx, s.Y, "C", mid, s.Y, mid, t.Y, tx, t.Y)
}

// PathThrough joins the link paths between consecutive courses.
func PathThrough(nodes []*CourseNode) string {
	var b strings.Builder
	for i := 1; i < len(nodes); i++ {
		b.WriteString(LinkPath(nodes[i-1], nodes[i]))
	}
	return b.String()
}

func pathData(parts ...any) string {
	fields := make([]string, len(parts))
	for i, p := range parts {
		switch v := p.(type) {
		case string:
			fields[i] = v
		case float64:
			fields[i] = strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return strings.Join(fields, " ")
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
