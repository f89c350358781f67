package analysis

import (
	"github.com/soundprediction/cogito/pkg/types"
)

// NodeMetrics carries per-node structural measures.
type NodeMetrics struct {
	ID               string                 `json:"id" yaml:"id"`
	InDegree         int                    `json:"in_degree" yaml:"in_degree"`
	OutDegree        int                    `json:"out_degree" yaml:"out_degree"`
	Degree           int                    `json:"degree" yaml:"degree"`
	DegreeCentrality float64                `json:"degree_centrality" yaml:"degree_centrality"`
	DegreeByKind     map[types.EdgeKind]int `json:"degree_by_kind,omitempty" yaml:"degree_by_kind,omitempty"`
}

// ComputeMetrics returns metrics for every node in ascending id order.
// Degree centrality is the degree normalized by the number of other nodes;
// it is zero for a single-node graph.
func ComputeMetrics(g *types.Graph) []NodeMetrics {
	n := g.NodeCount()
	out := make([]NodeMetrics, 0, n)
	for _, id := range g.NodeIDs() {
		in := g.InEdges(id)
		outgoing := g.OutEdges(id)

		byKind := make(map[types.EdgeKind]int)
		for _, e := range in {
			byKind[e.Kind]++
		}
		for _, e := range outgoing {
			byKind[e.Kind]++
		}
		if len(byKind) == 0 {
			byKind = nil
		}

		m := NodeMetrics{
			ID:           id,
			InDegree:     len(in),
			OutDegree:    len(outgoing),
			Degree:       len(in) + len(outgoing),
			DegreeByKind: byKind,
		}
		if n > 1 {
			m.DegreeCentrality = float64(m.Degree) / float64(n-1)
		}
		out = append(out, m)
	}
	return out
}
