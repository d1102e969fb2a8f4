package plan

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrInvalidRequisiteType is returned when a requisite tag is neither a
	// short tag (prereq, coreq, strict-coreq) nor one of the long
	// Curriculum* tags.
	ErrInvalidRequisiteType = errors.New("invalid requisite type")

	// ErrScheduleDeadlock is returned when the curriculum scheduler cannot
	// place any remaining course in an empty term. This only happens when
	// the requisite graph contains a cycle.
	ErrScheduleDeadlock = errors.New("schedule deadlock")

	// ErrCycle is returned by [Plan.Validate] when requisites form a cycle.
	ErrCycle = errors.New("requisite cycle")
)

// Quarter is the position of a term within an academic year.
type Quarter int

const (
	Fall Quarter = iota
	Winter
	Spring
)

// QuartersPerYear is the number of terms grouped into one year.
const QuartersPerYear = 3

var quarterTags = [...]string{"FA", "WI", "SP"}

// String returns the two-letter tag (FA, WI, SP).
func (q Quarter) String() string {
	if q < 0 || int(q) >= len(quarterTags) {
		return "Quarter(" + strconv.Itoa(int(q)) + ")"
	}
	return quarterTags[q]
}

// Course is a node of the requisite graph. Requisite links are not stored on
// the course; ask the owning [Plan] for them.
type Course struct {
	ID      int
	Name    string
	Prefix  string
	Number  string
	Credits float64

	// Term is the 0-indexed term slot. Year and Quarter are derived from it.
	Term    int
	Year    int
	Quarter Quarter

	// Placeholder is set for courses only ever referenced as a requisite.
	Placeholder bool
}

func (c *Course) setTerm(term int) {
	c.Term = term
	c.Year = term / QuartersPerYear
	c.Quarter = Quarter(term % QuartersPerYear)
}

// SortKey returns the catalog number, falling back to the name.
func (c *Course) SortKey() string {
	if c.Number != "" {
		return c.Number
	}
	return c.Name
}

// RequisiteType tags a requisite edge.
type RequisiteType string

const (
	Prereq      RequisiteType = "prereq"
	Coreq       RequisiteType = "coreq"
	StrictCoreq RequisiteType = "strict-coreq"
)

var requisiteTags = map[string]RequisiteType{
	"prereq":                      Prereq,
	"coreq":                       Coreq,
	"strict-coreq":                StrictCoreq,
	"CurriculumPrerequisite":      Prereq,
	"CurriculumCorequisite":       Coreq,
	"CurriculumStrictCorequisite": StrictCoreq,
}

// ParseRequisiteType normalizes a short or long requisite tag.
func ParseRequisiteType(s string) (RequisiteType, error) {
	if t, ok := requisiteTags[s]; ok {
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRequisiteType, s)
}

// LongName returns the Curriculum* tag used by the JSON format.
func (t RequisiteType) LongName() string {
	switch t {
	case Coreq:
		return "CurriculumCorequisite"
	case StrictCoreq:
		return "CurriculumStrictCorequisite"
	default:
		return "CurriculumPrerequisite"
	}
}

// Edge is a directed requisite relation from Source (the requisite) to
// Target (the course requiring it).
type Edge struct {
	Source int
	Target int
}

// String formats the edge as "source->target".
func (e Edge) String() string {
	return strconv.Itoa(e.Source) + "->" + strconv.Itoa(e.Target)
}

// Requisite is an edge with its type.
type Requisite struct {
	Edge
	Type RequisiteType
}
