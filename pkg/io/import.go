package io

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/plan"
)

// Decode reads a structured JSON curriculum from r without interpreting
// it.
func Decode(r io.Reader) (*Curriculum, error) {
	var c Curriculum
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &c, nil
}

// Plan converts the curriculum to a degree plan. Terms are taken from
// position, not from Term.ID.
//
// A requisite with an unrecognized type tag fails with an error wrapping
// [plan.ErrInvalidRequisiteType]. Requisites on courses that no term
// defines become placeholders. When two items share an id, the first one
// keeps it and is the one requisites point at; later ones get fresh ids
// above every id in the document.
func (c *Curriculum) Plan() (*plan.Plan, error) {
	p := plan.New(plan.KindDegreePlan)

	next := 0
	for _, t := range c.Terms {
		for _, item := range t.Items {
			next = max(next, item.ID)
			for _, r := range item.Requisites {
				next = max(next, r.SourceID)
			}
		}
	}

	terms := make([][]int, len(c.Terms))
	owners := make([][]int, len(c.Terms))
	for i, t := range c.Terms {
		terms[i] = make([]int, 0, len(t.Items))
		owners[i] = make([]int, len(t.Items))
		for j, item := range t.Items {
			id := item.ID
			if existing, ok := p.Course(id); ok && !existing.Placeholder {
				next++
				id = next
			}
			p.Put(plan.Course{
				ID:      id,
				Name:    item.Name,
				Credits: item.Credits,
			})
			terms[i] = append(terms[i], id)
			owners[i][j] = id
		}
	}

	for i, t := range c.Terms {
		for j, item := range t.Items {
			target := owners[i][j]
			for _, r := range item.Requisites {
				typ, err := plan.ParseRequisiteType(r.Type)
				if err != nil {
					return nil, fmt.Errorf("course %d requisite %d: %w", item.ID, r.SourceID, err)
				}
				p.Link(r.SourceID, target, typ)
			}
		}
	}

	p.SetTerms(terms)
	return p, nil
}

// ReadJSON decodes a structured JSON curriculum from r into a degree plan.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*plan.Plan, error) {
	c, err := Decode(r)
	if err != nil {
		return nil, err
	}
	return c.Plan()
}

// IsJSON reports whether path names a structured JSON curriculum.
func IsJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
