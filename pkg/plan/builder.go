package plan

import (
	"io"
	"strconv"
	"strings"

	"github.com/SheepTester-forks/curricular-analytics-graph/pkg/csvstream"
)

// Section markers recognized in the first column.
const (
	markerCourses           = "Courses"
	markerAdditionalCourses = "Additional Courses"
	markerDegreePlan        = "Degree Plan"
)

// Column positions of a course row.
const (
	colID = iota
	colName
	colPrefix
	colNumber
	colPrereqs
	colCoreqs
	colStrictCoreqs
	colUnits
	colInstitution
	colCanonicalName
	colTerm
)

// phase is the row-processing state of a [Builder].
type phase int

const (
	// phaseMetadata skips rows until the Courses marker.
	phaseMetadata phase = iota
	// phaseCoursesHeader skips exactly one column header row.
	phaseCoursesHeader
	// phaseData turns rows into courses.
	phaseData
)

// Strategy selects how a curriculum is spread over terms.
type Strategy string

const (
	// StrategyGreedy packs courses under a per-term unit cap. See [Schedule].
	StrategyGreedy Strategy = "greedy"
	// StrategyLevels places each course one term after its last requisite.
	// See [Levels].
	StrategyLevels Strategy = "levels"
)

// BuilderOption configures a [Builder].
type BuilderOption func(*Builder)

// WithStrategy selects the curriculum scheduling strategy.
func WithStrategy(s Strategy) BuilderOption {
	return func(b *Builder) { b.strategy = s }
}

// WithSeparator sets the field separator of the tabular input.
func WithSeparator(sep rune) BuilderOption {
	return func(b *Builder) { b.csvOpts = append(b.csvOpts, csvstream.WithSeparator(sep)) }
}

// Builder turns the tabular plan export into a [Plan]. Feed it text with
// Accept in as many chunks as convenient, then call Finish once.
//
// Input starts with metadata rows. A "Degree Plan" row there marks the
// input as a degree plan whose rows carry a 1-indexed term in the last
// column; without it every course lands in one unordered term and Finish
// synthesizes the terms. A "Courses" row ends the metadata, the following
// row is a column header, and every row after that is a course. An
// "Additional Courses" row starts another header-plus-courses block.
type Builder struct {
	csvOpts  []csvstream.Option
	strategy Strategy

	parser *csvstream.Parser
	phase  phase
	kind   Kind
	plan   *Plan

	ids       map[string]int
	synthetic int
	slots     [][]int
	slotOf    map[int]int
}

// NewBuilder returns a builder in the metadata phase.
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		strategy: StrategyGreedy,
		kind:     KindCurriculum,
		plan:     New(KindCurriculum),
		ids:      make(map[string]int),
		slotOf:   make(map[int]int),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.parser = csvstream.New(b.csvOpts...)
	return b
}

// Accept parses chunk and processes every row it completes.
func (b *Builder) Accept(chunk string) {
	for row := range b.parser.Accept(chunk) {
		b.handleRow(row)
	}
}

// Finish processes the trailing row and returns the plan. Curricula are
// scheduled with the configured strategy; the only error is a scheduling
// failure caused by a requisite cycle.
func (b *Builder) Finish() (*Plan, error) {
	for row := range b.parser.Finish() {
		b.handleRow(row)
	}

	p := b.plan
	p.Kind = b.kind
	terms := make([][]int, 0, len(b.slots))
	for _, slot := range b.slots {
		terms = append(terms, append([]int(nil), slot...))
	}

	if b.kind == KindCurriculum {
		var courses []int
		if len(terms) > 0 {
			courses = terms[0]
		}
		var err error
		switch b.strategy {
		case StrategyLevels:
			terms, err = Levels(p, courses)
		default:
			terms, err = Schedule(p, courses)
		}
		if err != nil {
			return nil, err
		}
	}

	p.SetTerms(terms)
	return p, nil
}

// Kind returns the plan kind detected so far.
func (b *Builder) Kind() Kind { return b.kind }

func (b *Builder) handleRow(row []string) {
	switch b.phase {
	case phaseMetadata:
		switch field(row, colID) {
		case markerCourses:
			b.phase = phaseCoursesHeader
		case markerDegreePlan:
			b.kind = KindDegreePlan
		}
		return
	case phaseCoursesHeader:
		b.phase = phaseData
		return
	}

	if field(row, colID) == markerAdditionalCourses {
		b.phase = phaseCoursesHeader
		return
	}
	b.addCourse(row)
}

func (b *Builder) addCourse(row []string) {
	id := b.resolve(field(row, colID))
	c, ok := b.plan.Course(id)
	if !ok {
		c = b.plan.Put(Course{ID: id})
	}
	c.Placeholder = false
	mergeString(&c.Name, field(row, colName))
	mergeString(&c.Prefix, field(row, colPrefix))
	mergeString(&c.Number, field(row, colNumber))
	if units := strings.TrimSpace(field(row, colUnits)); units != "" {
		c.Credits = parseCredits(units)
	}

	slot := 0
	if b.kind == KindDegreePlan {
		slot = parseTerm(field(row, colTerm)) - 1
	}
	b.place(id, slot)

	reqs := [...]struct {
		col int
		typ RequisiteType
	}{
		{colPrereqs, Prereq},
		{colCoreqs, Coreq},
		{colStrictCoreqs, StrictCoreq},
	}
	for _, r := range reqs {
		for _, ref := range strings.Split(field(row, r.col), ";") {
			ref = strings.TrimSpace(ref)
			if ref == "" {
				continue
			}
			b.plan.Link(b.resolve(ref), id, r.typ)
		}
	}
}

// place moves id into slot, removing it from any slot it occupied before.
func (b *Builder) place(id, slot int) {
	if prev, ok := b.slotOf[id]; ok {
		old := b.slots[prev]
		for i, other := range old {
			if other == id {
				b.slots[prev] = append(old[:i], old[i+1:]...)
				break
			}
		}
	}
	for len(b.slots) <= slot {
		b.slots = append(b.slots, nil)
	}
	b.slots[slot] = append(b.slots[slot], id)
	b.slotOf[id] = slot
}

// resolve maps an id field to a course id. Positive integers are used
// as-is. Anything else, including "0" and the empty string, gets a
// negative synthetic id that is stable for the same text.
func (b *Builder) resolve(raw string) int {
	raw = strings.TrimSpace(raw)
	if id, ok := b.ids[raw]; ok {
		return id
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		b.synthetic--
		id = b.synthetic
	}
	b.ids[raw] = id
	return id
}

func field(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func parseCredits(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// parseTerm returns the 1-indexed term of a row, defaulting to 1.
func parseTerm(s string) int {
	t, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || t < 1 {
		return 1
	}
	return t
}

// ParseString builds a plan from a complete document.
func ParseString(s string, opts ...BuilderOption) (*Plan, error) {
	b := NewBuilder(opts...)
	b.Accept(s)
	return b.Finish()
}

// ParseReader builds a plan from r, feeding the builder one chunk at a
// time.
func ParseReader(r io.Reader, opts ...BuilderOption) (*Plan, error) {
	b := NewBuilder(opts...)
	chunks := csvstream.NewChunkReader(r, 4096)
	for {
		chunk, err := chunks.Next()
		b.Accept(chunk)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return b.Finish()
}
