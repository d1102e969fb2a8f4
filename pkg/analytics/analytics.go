// Package analytics computes structural metrics over requisite graphs.
//
// Every function is pure and works on any [Graph] whose nodes are
// comparable values. The graph is expected to be acyclic; functions that
// would loop or return a wrong answer on a cycle return [ErrCycleDetected]
// instead.
//
// # Metrics
//
//   - Blocking factor: how many courses are blocked (transitively) by a
//     course. See [BlockingFactor].
//   - Delay factor: the number of courses in the longest full requisite
//     chain through a course, at least 1. See [DelayFactors].
//   - Complexity: blocking factor plus delay factor, scaled by 2/3 and
//     rounded to one decimal for quarter systems. See [Complexity].
//   - Centrality: the summed length of full chains passing through a course
//     as an interior node. See [Centrality].
//   - Redundant requisites: declared edges already implied by a longer
//     chain. See [RedundantRequisites].
package analytics

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrCycleDetected is returned when a traversal revisits a node that is
// still being explored.
var ErrCycleDetected = errors.New("cycle detected")

// Graph exposes ordered adjacency lists. Forwards lists the nodes a node
// unlocks; Backwards lists its requisites.
type Graph[N comparable] interface {
	Forwards(n N) []N
	Backwards(n N) []N
}

// Direction selects which adjacency list a traversal follows.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backwards"
	}
	return "forwards"
}

func neighbors[N comparable](g Graph[N], n N, dir Direction) []N {
	if dir == Backward {
		return g.Backwards(n)
	}
	return g.Forwards(n)
}

// Edge is a directed requisite edge.
type Edge[N comparable] struct {
	Source N
	Target N
}

func (e Edge[N]) String() string {
	return fmt.Sprintf("%v->%v", e.Source, e.Target)
}

// Reachable returns every node reachable from n along forwards edges,
// excluding n itself, in depth-first discovery order.
func Reachable[N comparable](g Graph[N], n N) []N {
	seen := map[N]bool{n: true}
	var out []N
	stack := []N{n}
	for len(stack) > 0 {
		next := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, m := range g.Forwards(next) {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
				stack = append(stack, m)
			}
		}
	}
	return out
}

// BlockingFactor sums weight over the nodes reachable from n. A nil
// weight counts every node as 1.
func BlockingFactor[N comparable](g Graph[N], n N, weight func(N) float64) float64 {
	var total float64
	for _, m := range Reachable(g, n) {
		if weight == nil {
			total++
		} else {
			total += weight(m)
		}
	}
	return total
}

// BlockingFactors computes [BlockingFactor] for every node.
func BlockingFactors[N comparable](g Graph[N], nodes []N, weight func(N) float64) map[N]float64 {
	out := make(map[N]float64, len(nodes))
	for _, n := range nodes {
		out[n] = BlockingFactor(g, n, weight)
	}
	return out
}

// CheckAcyclic returns an error wrapping [ErrCycleDetected] if any cycle is
// reachable from nodes.
func CheckAcyclic[N comparable](g Graph[N], nodes []N) error {
	const (
		white = iota
		gray
		black
	)
	color := make(map[N]int)
	var stack []N

	var visit func(n N) error
	visit = func(n N) error {
		color[n] = gray
		stack = append(stack, n)
		for _, m := range g.Forwards(n) {
			switch color[m] {
			case white:
				if err := visit(m); err != nil {
					return err
				}
			case gray:
				return cycleError(stack, m)
			}
		}
		stack = stack[:len(stack)-1]
		color[n] = black
		return nil
	}

	for _, n := range nodes {
		if color[n] == white {
			if err := visit(n); err != nil {
				return err
			}
		}
	}
	return nil
}

// cycleError formats the cycle closing at m from the current DFS stack.
func cycleError[N comparable](stack []N, m N) error {
	start := 0
	for i, n := range stack {
		if n == m {
			start = i
			break
		}
	}
	parts := make([]string, 0, len(stack)-start+1)
	for _, n := range stack[start:] {
		parts = append(parts, fmt.Sprint(n))
	}
	parts = append(parts, fmt.Sprint(m))
	return fmt.Errorf("%w: %s", ErrCycleDetected, strings.Join(parts, " -> "))
}

// AllPaths enumerates every full path: one that starts at a source (a node
// with forwards but no backwards) and follows forwards edges until it ends
// at a sink (a node with no forwards). Isolated nodes start no path.
//
// Paths are listed by source in nodes order, then depth-first in forwards
// order. The number of paths can grow exponentially with graph size.
func AllPaths[N comparable](g Graph[N], nodes []N) ([][]N, error) {
	if err := CheckAcyclic(g, nodes); err != nil {
		return nil, err
	}

	var paths [][]N
	var path []N
	var walk func(n N)
	walk = func(n N) {
		path = append(path, n)
		next := g.Forwards(n)
		if len(next) == 0 {
			paths = append(paths, append([]N(nil), path...))
		}
		for _, m := range next {
			walk(m)
		}
		path = path[:len(path)-1]
	}

	for _, n := range nodes {
		if len(g.Forwards(n)) == 0 || len(g.Backwards(n)) > 0 {
			continue
		}
		walk(n)
	}
	return paths, nil
}

// DelayFactors maps every node on some full path to the length, in nodes,
// of the longest full path through it. Nodes on no path are absent; their
// delay factor is 1.
func DelayFactors[N comparable](paths [][]N) map[N]int {
	out := make(map[N]int)
	for _, path := range paths {
		for _, n := range path {
			out[n] = max(out[n], len(path), 1)
		}
	}
	return out
}

// DelayFactor returns the delay factor of n, at least 1.
func DelayFactor[N comparable](paths [][]N, n N) int {
	df := 1
	for _, path := range paths {
		if len(path) > df && contains(path, n) {
			df = len(path)
		}
	}
	return df
}

// Centrality sums the lengths of full paths longer than two nodes that pass
// through n without starting or ending there.
func Centrality[N comparable](paths [][]N, n N) int {
	total := 0
	for _, path := range paths {
		if len(path) <= 2 || path[0] == n || path[len(path)-1] == n {
			continue
		}
		if contains(path, n) {
			total += len(path)
		}
	}
	return total
}

func contains[N comparable](path []N, n N) bool {
	for _, m := range path {
		if m == n {
			return true
		}
	}
	return false
}

// System is the academic calendar a plan uses.
type System string

const (
	Semester System = "semester"
	Quarter  System = "quarter"
)

// ErrInvalidSystem is returned by [ParseSystem] for unknown names.
var ErrInvalidSystem = errors.New("invalid system")

// ParseSystem parses "semester" or "quarter".
func ParseSystem(s string) (System, error) {
	switch System(strings.ToLower(strings.TrimSpace(s))) {
	case Semester:
		return Semester, nil
	case Quarter:
		return Quarter, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSystem, s)
}

// Complexity combines a blocking and delay factor. Quarter systems scale
// the sum by 2/3 and round to one decimal place.
func Complexity(blocking float64, delay int, s System) float64 {
	sum := blocking + float64(delay)
	if s == Quarter {
		return math.Round(sum*2/3*10) / 10
	}
	return sum
}

// Complexities computes [Complexity] for every node present in either map.
// Missing blocking factors count as 0 and missing delay factors as 1.
func Complexities[N comparable](blocking map[N]float64, delay map[N]int, s System) map[N]float64 {
	out := make(map[N]float64, len(blocking))
	for n, bf := range blocking {
		df, ok := delay[n]
		if !ok {
			df = 1
		}
		out[n] = Complexity(bf, df, s)
	}
	for n, df := range delay {
		if _, ok := blocking[n]; !ok {
			out[n] = Complexity(0, df, s)
		}
	}
	return out
}
