package analytics

// Metrics holds every per-node metric.
type Metrics struct {
	Complexity     float64 `json:"complexity"`
	Centrality     int     `json:"centrality"`
	DelayFactor    int     `json:"delay factor"`
	BlockingFactor float64 `json:"blocking factor"`
}

// Report is the result of [Compute].
type Report[N comparable] struct {
	System    System
	Nodes     []N
	Paths     [][]N
	Metrics   map[N]Metrics
	Redundant []Edge[N]
}

// Get returns the metrics of n. Nodes outside the report get the metrics
// of an isolated node.
func (r *Report[N]) Get(n N) Metrics {
	if m, ok := r.Metrics[n]; ok {
		return m
	}
	return Metrics{Complexity: Complexity(0, 1, r.System), DelayFactor: 1}
}

// Total sums the complexity of every node.
func (r *Report[N]) Total() float64 {
	var total float64
	for _, n := range r.Nodes {
		total += r.Metrics[n].Complexity
	}
	return total
}

// Compute runs every metric over nodes. Full paths are enumerated once and
// shared between delay factor and centrality.
func Compute[N comparable](g Graph[N], nodes []N, s System) (*Report[N], error) {
	paths, err := AllPaths(g, nodes)
	if err != nil {
		return nil, err
	}

	blocking := BlockingFactors(g, nodes, nil)
	delay := DelayFactors(paths)
	complexity := Complexities(blocking, delay, s)

	metrics := make(map[N]Metrics, len(nodes))
	for _, n := range nodes {
		df := delay[n]
		if df == 0 {
			df = 1
		}
		metrics[n] = Metrics{
			Complexity:     complexity[n],
			Centrality:     Centrality(paths, n),
			DelayFactor:    df,
			BlockingFactor: blocking[n],
		}
	}

	return &Report[N]{
		System:    s,
		Nodes:     nodes,
		Paths:     paths,
		Metrics:   metrics,
		Redundant: RedundantRequisites(g, nodes),
	}, nil
}
