package analysis

import (
	"sort"

	"github.com/soundprediction/cogito/pkg/types"
)

// ConnectivityResult describes the fragmentation structure of a snapshot
// treated as an undirected graph. Components are each sorted ascending and
// ordered by their smallest member; articulation points are nodes whose
// removal would split a component.
type ConnectivityResult struct {
	Components         [][]string `json:"components" yaml:"components"`
	ArticulationPoints []string   `json:"articulation_points" yaml:"articulation_points"`
}

// AnalyzeConnectivity computes connected components by breadth-first
// search and articulation points by a single discovery/low-link
// depth-first search, both visiting neighbors in ascending id order.
func AnalyzeConnectivity(g *types.Graph) ConnectivityResult {
	var result ConnectivityResult

	visited := make(map[string]struct{}, g.NodeCount())
	for _, start := range g.NodeIDs() {
		if _, done := visited[start]; done {
			continue
		}
		var members []string
		queue := []string{start}
		visited[start] = struct{}{}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			members = append(members, cur)
			for _, next := range g.Neighbors(cur) {
				if _, done := visited[next]; done {
					continue
				}
				visited[next] = struct{}{}
				queue = append(queue, next)
			}
		}
		sort.Strings(members)
		result.Components = append(result.Components, members)
	}

	result.ArticulationPoints = articulationPoints(g)
	return result
}

// articulationPoints runs the discovery/low-link DFS. A non-root node is an
// articulation point when some child subtree cannot reach above it; a root
// is one when it has two or more DFS children.
func articulationPoints(g *types.Graph) []string {
	discovery := make(map[string]int, g.NodeCount())
	low := make(map[string]int, g.NodeCount())
	cut := make(map[string]struct{})
	counter := 0

	var visit func(id, parent string)
	visit = func(id, parent string) {
		counter++
		discovery[id] = counter
		low[id] = counter
		children := 0

		for _, next := range g.Neighbors(id) {
			if next == parent {
				continue
			}
			if d, seen := discovery[next]; seen {
				if d < low[id] {
					low[id] = d
				}
				continue
			}
			children++
			visit(next, id)
			if low[next] < low[id] {
				low[id] = low[next]
			}
			if parent != "" && low[next] >= discovery[id] {
				cut[id] = struct{}{}
			}
		}

		if parent == "" && children >= 2 {
			cut[id] = struct{}{}
		}
	}

	for _, id := range g.NodeIDs() {
		if _, seen := discovery[id]; !seen {
			visit(id, "")
		}
	}

	out := make([]string, 0, len(cut))
	for id := range cut {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
