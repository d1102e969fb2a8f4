package analytics

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
)

// adj is a test graph built from an edge list. Adjacency order follows
// edge order.
type adj struct {
	fwd  map[int][]int
	back map[int][]int
}

func graph(edges ...[2]int) adj {
	g := adj{fwd: map[int][]int{}, back: map[int][]int{}}
	for _, e := range edges {
		g.fwd[e[0]] = append(g.fwd[e[0]], e[1])
		g.back[e[1]] = append(g.back[e[1]], e[0])
	}
	return g
}

func (g adj) Forwards(n int) []int  { return g.fwd[n] }
func (g adj) Backwards(n int) []int { return g.back[n] }

// sample is 1->2->3 plus 1->4.
var sample = graph([2]int{1, 2}, [2]int{2, 3}, [2]int{1, 4})

var sampleNodes = []int{1, 2, 3, 4}

func TestReachable(t *testing.T) {
	tests := []struct {
		node int
		want []int
	}{
		{1, []int{2, 4, 3}},
		{2, []int{3}},
		{3, nil},
	}

	for _, tt := range tests {
		if got := Reachable[int](sample, tt.node); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Reachable(%d) = %v, want %v", tt.node, got, tt.want)
		}
	}
}

func TestReachableTerminatesOnCycle(t *testing.T) {
	g := graph([2]int{1, 2}, [2]int{2, 1})
	if got := Reachable[int](g, 1); !reflect.DeepEqual(got, []int{2}) {
		t.Errorf("Reachable(1) = %v, want [2]", got)
	}
}

func TestBlockingFactor(t *testing.T) {
	want := map[int]float64{1: 3, 2: 1, 3: 0, 4: 0}
	if got := BlockingFactors[int](sample, sampleNodes, nil); !reflect.DeepEqual(got, want) {
		t.Errorf("BlockingFactors = %v, want %v", got, want)
	}

	credits := func(n int) float64 { return float64(n) }
	if got := BlockingFactor[int](sample, 1, credits); got != 9 {
		t.Errorf("weighted BlockingFactor(1) = %v, want 9", got)
	}
}

func TestAllPaths(t *testing.T) {
	paths, err := AllPaths[int](sample, sampleNodes)
	if err != nil {
		t.Fatalf("AllPaths: %v", err)
	}
	want := [][]int{{1, 2, 3}, {1, 4}}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("AllPaths = %v, want %v", paths, want)
	}
}

func TestAllPathsSkipsIsolated(t *testing.T) {
	paths, err := AllPaths[int](sample, []int{5, 1, 2, 3, 4})
	if err != nil {
		t.Fatalf("AllPaths: %v", err)
	}
	for _, p := range paths {
		for _, n := range p {
			if n == 5 {
				t.Errorf("isolated node in path %v", p)
			}
		}
	}
}

func TestCycleDetected(t *testing.T) {
	g := graph([2]int{1, 2}, [2]int{2, 1})

	if _, err := AllPaths[int](g, []int{1, 2}); !errors.Is(err, ErrCycleDetected) {
		t.Errorf("AllPaths error = %v, want %v", err, ErrCycleDetected)
	}
	for _, dir := range []Direction{Forward, Backward} {
		path, err := LongestPathFrom[int](g, 1, dir)
		if !errors.Is(err, ErrCycleDetected) {
			t.Errorf("LongestPathFrom(1, %v) error = %v, want %v", dir, err, ErrCycleDetected)
		}
		if path != nil {
			t.Errorf("LongestPathFrom(1, %v) = %v, want no path", dir, path)
		}
	}
	if _, err := Compute[int](g, []int{1, 2}, Semester); !errors.Is(err, ErrCycleDetected) {
		t.Errorf("Compute error = %v, want %v", err, ErrCycleDetected)
	}
}

func TestDelayFactors(t *testing.T) {
	paths, _ := AllPaths[int](sample, sampleNodes)

	want := map[int]int{1: 3, 2: 3, 3: 3, 4: 2}
	if got := DelayFactors(paths); !reflect.DeepEqual(got, want) {
		t.Errorf("DelayFactors = %v, want %v", got, want)
	}
	for n, df := range want {
		if got := DelayFactor(paths, n); got != df {
			t.Errorf("DelayFactor(%d) = %d, want %d", n, got, df)
		}
	}
	if got := DelayFactor(paths, 42); got != 1 {
		t.Errorf("DelayFactor(42) = %d, want 1", got)
	}
}

func TestComplexity(t *testing.T) {
	tests := []struct {
		bf   float64
		df   int
		sys  System
		want float64
	}{
		{3, 3, Semester, 6},
		{3, 3, Quarter, 4},
		{1, 3, Quarter, 2.7},
		{0, 2, Quarter, 1.3},
		{0, 1, Semester, 1},
	}

	for _, tt := range tests {
		if got := Complexity(tt.bf, tt.df, tt.sys); got != tt.want {
			t.Errorf("Complexity(%v, %d, %s) = %v, want %v", tt.bf, tt.df, tt.sys, got, tt.want)
		}
	}
}

func TestComplexitiesDefaults(t *testing.T) {
	got := Complexities(map[int]float64{1: 2}, map[int]int{2: 4}, Semester)
	want := map[int]float64{1: 3, 2: 4}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Complexities = %v, want %v", got, want)
	}
}

func TestCentrality(t *testing.T) {
	paths, _ := AllPaths[int](sample, sampleNodes)

	want := map[int]int{1: 0, 2: 3, 3: 0, 4: 0}
	for n, c := range want {
		if got := Centrality(paths, n); got != c {
			t.Errorf("Centrality(%d) = %d, want %d", n, got, c)
		}
	}
}

func TestRedundantRequisites(t *testing.T) {
	tests := []struct {
		name  string
		edges [][2]int
		nodes []int
		want  []Edge[int]
	}{
		{
			name:  "shortcut",
			edges: [][2]int{{1, 2}, {2, 3}, {1, 3}},
			nodes: []int{1, 2, 3},
			want:  []Edge[int]{{1, 3}},
		},
		{
			name:  "none",
			edges: [][2]int{{1, 2}, {2, 3}, {1, 4}},
			nodes: sampleNodes,
			want:  nil,
		},
		{
			name:  "long chain",
			edges: [][2]int{{1, 2}, {2, 3}, {3, 4}, {1, 4}, {2, 4}},
			nodes: []int{1, 2, 3, 4},
			want:  []Edge[int]{{1, 4}, {2, 4}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RedundantRequisites[int](graph(tt.edges...), tt.nodes)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("RedundantRequisites = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLongestPathFrom(t *testing.T) {
	tests := []struct {
		node int
		dir  Direction
		want []int
	}{
		{1, Forward, []int{1, 2, 3}},
		{4, Forward, []int{4}},
		{3, Backward, []int{3, 2, 1}},
		{4, Backward, []int{4, 1}},
	}

	for _, tt := range tests {
		got, err := LongestPathFrom[int](sample, tt.node, tt.dir)
		if err != nil {
			t.Fatalf("LongestPathFrom(%d, %v): %v", tt.node, tt.dir, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("LongestPathFrom(%d, %v) = %v, want %v", tt.node, tt.dir, got, tt.want)
		}
	}
}

func TestLongestPathFromTieKeepsFirst(t *testing.T) {
	g := graph([2]int{1, 3}, [2]int{1, 2})
	got, _ := LongestPathFrom[int](g, 1, Forward)
	if !reflect.DeepEqual(got, []int{1, 3}) {
		t.Errorf("LongestPathFrom = %v, want [1 3]", got)
	}
}

func TestThroughPath(t *testing.T) {
	got, err := ThroughPath[int](sample, 2)
	if err != nil {
		t.Fatalf("ThroughPath: %v", err)
	}
	if want := []int{1, 2, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("ThroughPath(2) = %v, want %v", got, want)
	}
}

func TestParseSystem(t *testing.T) {
	for _, s := range []string{"semester", "Quarter", " quarter "} {
		if _, err := ParseSystem(s); err != nil {
			t.Errorf("ParseSystem(%q): %v", s, err)
		}
	}
	if _, err := ParseSystem("trimester"); !errors.Is(err, ErrInvalidSystem) {
		t.Errorf("ParseSystem(trimester) error = %v, want %v", err, ErrInvalidSystem)
	}
}

func TestCompute(t *testing.T) {
	r, err := Compute[int](sample, sampleNodes, Semester)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	want := Metrics{Complexity: 6, Centrality: 0, DelayFactor: 3, BlockingFactor: 3}
	if got := r.Get(1); got != want {
		t.Errorf("Get(1) = %+v, want %+v", got, want)
	}
	if got := r.Get(99); got.DelayFactor != 1 || got.Complexity != 1 {
		t.Errorf("Get(99) = %+v, want isolated defaults", got)
	}
	// 6 + 4 + 3 + 2
	if got := r.Total(); got != 15 {
		t.Errorf("Total() = %v, want 15", got)
	}
}

func ExampleCompute() {
	g := graph([2]int{1, 2}, [2]int{2, 3}, [2]int{1, 4})
	r, err := Compute[int](g, []int{1, 2, 3, 4}, Semester)
	if err != nil {
		panic(err)
	}
	for _, n := range r.Nodes {
		m := r.Get(n)
		fmt.Printf("%d: bf=%v df=%d complexity=%v\n", n, m.BlockingFactor, m.DelayFactor, m.Complexity)
	}
	// Output:
	// 1: bf=3 df=3 complexity=6
	// 2: bf=1 df=3 complexity=4
	// 3: bf=0 df=3 complexity=3
	// 4: bf=0 df=2 complexity=2
}
