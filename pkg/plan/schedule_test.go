package plan

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"testing"
)

// newCurriculum builds a plan with n courses numbered 1..n, each worth
// credits units.
func newCurriculum(n int, credits float64) (*Plan, []int) {
	p := New(KindCurriculum)
	ids := make([]int, n)
	for i := range ids {
		id := i + 1
		p.Put(Course{ID: id, Name: "C" + strconv.Itoa(id), Number: strconv.Itoa(id), Credits: credits})
		ids[i] = id
	}
	return p, ids
}

func TestUnitCap(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 6},
		{1, 9},
		{8, 9},
		{9, 12},
		{16, 12},
		{24, 15},
		{32, 18},
		{33, 21},
		{40, 21},
		{72, 21},
		{73, 24},
		{200, 33},
	}

	for _, tt := range tests {
		if got := UnitCap(tt.n); got != tt.want {
			t.Errorf("UnitCap(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestScheduleUnitCapPacking(t *testing.T) {
	for _, n := range []int{1, 4, 8, 16, 24, 32, 33, 72} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			p, ids := newCurriculum(n, 4)
			terms, err := Schedule(p, ids)
			if err != nil {
				t.Fatalf("Schedule: %v", err)
			}

			// Whole courses only: a term holds floor(cap/4) four-unit courses.
			limit := UnitCap(n)
			perTerm := limit / 4
			want := (n + perTerm - 1) / perTerm
			if len(terms) != want {
				t.Errorf("len(terms) = %d, want ceil(%d/%d) = %d", len(terms), n, perTerm, want)
			}

			placed := 0
			for i, term := range terms {
				if units := len(term) * 4; units > limit {
					t.Errorf("term %d has %d units, cap %d", i, units, limit)
				}
				placed += len(term)
			}
			if placed != n {
				t.Errorf("placed %d courses, want %d", placed, n)
			}
		})
	}
}

func TestScheduleOversizedCourseGetsOwnTerm(t *testing.T) {
	p, ids := newCurriculum(3, 4)
	big, _ := p.Course(2)
	big.Credits = 20

	terms, err := Schedule(p, ids)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	want := [][]int{{1}, {2}, {3}}
	if !reflect.DeepEqual(terms, want) {
		t.Errorf("terms = %v, want %v", terms, want)
	}
}

func TestScheduleNaturalOrder(t *testing.T) {
	p := New(KindCurriculum)
	p.Put(Course{ID: 1, Number: "100", Credits: 1})
	p.Put(Course{ID: 2, Number: "20B", Credits: 1})
	p.Put(Course{ID: 3, Number: "20A", Credits: 1})
	p.Put(Course{ID: 4, Name: "10", Credits: 1})

	terms, err := Schedule(p, []int{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	want := [][]int{{4, 3, 2, 1}}
	if !reflect.DeepEqual(terms, want) {
		t.Errorf("terms = %v, want %v", terms, want)
	}
}

func TestSchedulePrerequisiteChain(t *testing.T) {
	p, ids := newCurriculum(4, 1)
	// 3 -> 2 -> 1 so catalog order is the reverse of requisite order.
	p.Link(3, 2, Prereq)
	p.Link(2, 1, Prereq)

	terms, err := Schedule(p, ids)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	want := [][]int{{3, 4}, {2}, {1}}
	if !reflect.DeepEqual(terms, want) {
		t.Errorf("terms = %v, want %v", terms, want)
	}
}

func TestScheduleCoreqSharesTerm(t *testing.T) {
	p, ids := newCurriculum(2, 1)
	p.Link(1, 2, Coreq)

	terms, err := Schedule(p, ids)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	want := [][]int{{1, 2}}
	if !reflect.DeepEqual(terms, want) {
		t.Errorf("terms = %v, want %v", terms, want)
	}
}

func TestScheduleStrictCoreqIgnoresCap(t *testing.T) {
	// Two courses with a cap of 9: 8 + 8 would overflow, but strict
	// corequisites travel together.
	p, ids := newCurriculum(2, 8)
	p.Link(2, 1, StrictCoreq)

	terms, err := Schedule(p, ids)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	want := [][]int{{2, 1}}
	if !reflect.DeepEqual(terms, want) {
		t.Errorf("terms = %v, want %v", terms, want)
	}
}

func TestScheduleCycle(t *testing.T) {
	p, ids := newCurriculum(3, 4)
	p.Link(1, 2, Prereq)
	p.Link(2, 1, Prereq)

	_, err := Schedule(p, ids)
	if !errors.Is(err, ErrScheduleDeadlock) {
		t.Fatalf("Schedule error = %v, want %v", err, ErrScheduleDeadlock)
	}
}

func TestSchedulerReachesTreatsCycleAsNoPath(t *testing.T) {
	p, _ := newCurriculum(4, 1)
	p.Link(1, 2, Prereq)
	p.Link(2, 3, Prereq)
	p.Link(3, 2, Prereq)
	p.Link(3, 4, Prereq)

	s := scheduler{plan: p}
	if s.reaches(1, 4) {
		t.Error("reaches(1, 4) = true through a cycle, want false")
	}
	if !s.reaches(1, 3) {
		t.Error("reaches(1, 3) = false, want true")
	}
}

func TestLevels(t *testing.T) {
	p, ids := newCurriculum(5, 4)
	p.Link(1, 2, Prereq)
	p.Link(2, 3, Prereq)
	p.Link(1, 4, Prereq)
	p.Link(99, 4, Prereq) // requisite outside the course set

	terms, err := Levels(p, ids)
	if err != nil {
		t.Fatalf("Levels: %v", err)
	}
	want := [][]int{{1}, {2, 4}, {3}, {5}}
	if !reflect.DeepEqual(terms, want) {
		t.Errorf("terms = %v, want %v", terms, want)
	}
}

func TestLevelsCycle(t *testing.T) {
	p, ids := newCurriculum(2, 4)
	p.Link(1, 2, Prereq)
	p.Link(2, 1, Prereq)

	if _, err := Levels(p, ids); !errors.Is(err, ErrScheduleDeadlock) {
		t.Errorf("Levels error = %v, want %v", err, ErrScheduleDeadlock)
	}
}

func TestNaturalCompare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"20A", "20B", -1},
		{"20B", "100", -1},
		{"100", "20A", 1},
		{"2", "10", -1},
		{"007", "7", 0},
		{"15L", "15", 1},
		{"", "1", -1},
		{"abc", "abc", 0},
		{"MATH 20A", "MATH 3C", 1},
	}

	for _, tt := range tests {
		if got := NaturalCompare(tt.a, tt.b); got != tt.want {
			t.Errorf("NaturalCompare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}

	keys := []string{"100", "20B", "3", "20A", "1A"}
	slices.SortFunc(keys, NaturalCompare)
	if want := []string{"1A", "3", "20A", "20B", "100"}; !reflect.DeepEqual(keys, want) {
		t.Errorf("sorted = %v, want %v", keys, want)
	}
}
