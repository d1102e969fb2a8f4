package analytics

import "fmt"

// RedundantRequisites finds declared edges that a longer chain already
// implies: source->target is redundant when source can also be reached
// from another requisite of target by walking backwards. Every edge type
// counts the same, corequisites included.
//
// Edges are listed by target in nodes order, then by source in backwards
// order, without duplicates.
func RedundantRequisites[N comparable](g Graph[N], nodes []N) []Edge[N] {
	var out []Edge[N]
	seen := make(map[Edge[N]]bool)
	for _, target := range nodes {
		direct := g.Backwards(target)
		if len(direct) == 0 {
			continue
		}

		// Everything strictly behind a direct requisite.
		implied := make(map[N]bool)
		var stack []N
		for _, req := range direct {
			stack = append(stack, g.Backwards(req)...)
		}
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if implied[n] {
				continue
			}
			implied[n] = true
			stack = append(stack, g.Backwards(n)...)
		}

		for _, req := range direct {
			e := Edge[N]{Source: req, Target: target}
			if implied[req] && !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
		}
	}
	return out
}

// LongestPathFrom returns the longest path that starts at n and follows
// dir, n included. Ties keep the neighbor listed first.
//
// A node seen again while its own search is still in progress means the
// graph has a cycle; LongestPathFrom then returns an error wrapping
// [ErrCycleDetected] and no path.
func LongestPathFrom[N comparable](g Graph[N], n N, dir Direction) ([]N, error) {
	memo := make(map[N][]N)
	inProgress := make(map[N]bool)

	var search func(n N) ([]N, error)
	search = func(n N) ([]N, error) {
		if path, ok := memo[n]; ok {
			return path, nil
		}
		if inProgress[n] {
			return nil, cycleAt(n, dir)
		}
		inProgress[n] = true

		var best []N
		for _, m := range neighbors(g, n, dir) {
			path, err := search(m)
			if err != nil {
				return nil, err
			}
			if len(path) > len(best) {
				best = path
			}
		}

		path := make([]N, 0, len(best)+1)
		path = append(path, n)
		path = append(path, best...)
		delete(inProgress, n)
		memo[n] = path
		return path, nil
	}
	return search(n)
}

func cycleAt[N comparable](n N, dir Direction) error {
	return fmt.Errorf("%w at %v following %s", ErrCycleDetected, n, dir)
}

// ThroughPath returns the longest path running through n: the longest
// backwards path reversed, then the longest forwards path without n
// repeated.
func ThroughPath[N comparable](g Graph[N], n N) ([]N, error) {
	back, err := LongestPathFrom(g, n, Backward)
	if err != nil {
		return nil, err
	}
	fwd, err := LongestPathFrom(g, n, Forward)
	if err != nil {
		return nil, err
	}
	path := make([]N, 0, len(back)+len(fwd)-1)
	for i := len(back) - 1; i >= 0; i-- {
		path = append(path, back[i])
	}
	return append(path, fwd[1:]...), nil
}
