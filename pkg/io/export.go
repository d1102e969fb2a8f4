package io

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/analytics"
	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/plan"
)

// FromPlan converts a plan to the structured JSON document. Terms are
// named "Term N". With a report, every item carries its metrics.
func FromPlan(p *plan.Plan, report *analytics.Report[int]) *Curriculum {
	c := &Curriculum{Terms: make([]Term, len(p.Terms))}
	for i := range p.Terms {
		t := Term{ID: i + 1, Name: "Term " + strconv.Itoa(i+1)}
		t.Items = make([]Item, 0, len(p.Terms[i]))
		for _, course := range p.TermCourses(i) {
			item := Item{
				ID:         course.ID,
				Name:       course.Name,
				Credits:    course.Credits,
				Requisites: []Requisite{},
			}
			for _, src := range p.Backwards(course.ID) {
				typ, _ := p.RequisiteType(src, course.ID)
				item.Requisites = append(item.Requisites, Requisite{
					SourceID: src,
					TargetID: course.ID,
					Type:     string(typ),
				})
			}
			if report != nil {
				m := report.Get(course.ID)
				item.Metrics = &ItemMetrics{
					Complexity:     &m.Complexity,
					Centrality:     &m.Centrality,
					DelayFactor:    &m.DelayFactor,
					BlockingFactor: &m.BlockingFactor,
				}
			}
			t.Items = append(t.Items, item)
		}
		c.Terms[i] = t
	}
	return c
}

// WriteJSON encodes a plan, and its metrics if report is not nil, as a
// structured JSON curriculum. The output can be read back with [ReadJSON].
func WriteJSON(w io.Writer, p *plan.Plan, report *analytics.Report[int]) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromPlan(p, report)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
