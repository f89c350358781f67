package analysis

import (
	"sort"

	"github.com/soundprediction/cogito/pkg/types"
	"github.com/soundprediction/cogito/pkg/validation"
)

// ConflictPair is a canonical conflicting node pair, A < B.
type ConflictPair struct {
	A string `json:"a" yaml:"a"`
	B string `json:"b" yaml:"b"`
}

// ConflictCluster groups the conflicts of one connected component of the
// conflict graph. Cover is a greedy approximate hitting set: removing the
// covered nodes resolves every conflict in the cluster. The cover is not
// guaranteed globally minimum.
type ConflictCluster struct {
	NodeIDs   []string       `json:"node_ids" yaml:"node_ids"`
	Conflicts []ConflictPair `json:"conflicts" yaml:"conflicts"`
	Cover     []string       `json:"cover" yaml:"cover"`
}

// ContradictionDetector builds a conflict graph from belief conflicts and
// partitions it into clusters.
type ContradictionDetector struct{}

// NewContradictionDetector creates a ContradictionDetector.
func NewContradictionDetector() *ContradictionDetector {
	return &ContradictionDetector{}
}

// Detect finds conflict clusters. When violations is non-nil, its
// BeliefConflict entries are reused; otherwise the epistemic validator runs
// first. Clusters come back ordered by their smallest node id.
func (d *ContradictionDetector) Detect(g *types.Graph, violations []types.Violation) []ConflictCluster {
	if violations == nil {
		violations = validation.NewEpistemicValidator().Validate(g)
	}

	pairs := conflictPairsFrom(violations)
	if len(pairs) == 0 {
		return nil
	}

	components := conflictComponents(pairs)
	clusters := make([]ConflictCluster, 0, len(components))
	for _, members := range components {
		inComponent := make(map[string]struct{}, len(members))
		for _, id := range members {
			inComponent[id] = struct{}{}
		}
		var conflicts []ConflictPair
		for _, p := range pairs {
			if _, ok := inComponent[p.A]; ok {
				conflicts = append(conflicts, p)
			}
		}
		clusters = append(clusters, ConflictCluster{
			NodeIDs:   members,
			Conflicts: conflicts,
			Cover:     greedyCover(conflicts),
		})
	}
	return clusters
}

func conflictPairsFrom(violations []types.Violation) []ConflictPair {
	seen := make(map[ConflictPair]struct{})
	var pairs []ConflictPair
	for _, v := range violations {
		if v.Kind != types.BeliefConflict || len(v.NodeIDs) != 2 {
			continue
		}
		a, b := v.NodeIDs[0], v.NodeIDs[1]
		if b < a {
			a, b = b, a
		}
		p := ConflictPair{A: a, B: b}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
	return pairs
}

// conflictComponents groups the pairs into connected components of the
// conflict graph, each sorted ascending, components ordered by smallest
// member.
func conflictComponents(pairs []ConflictPair) [][]string {
	adjacent := make(map[string][]string)
	for _, p := range pairs {
		adjacent[p.A] = append(adjacent[p.A], p.B)
		adjacent[p.B] = append(adjacent[p.B], p.A)
	}

	ids := make([]string, 0, len(adjacent))
	for id := range adjacent {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	visited := make(map[string]struct{})
	var components [][]string
	for _, start := range ids {
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
			for _, next := range types.SortIDs(adjacent[cur]) {
				if _, done := visited[next]; done {
					continue
				}
				visited[next] = struct{}{}
				queue = append(queue, next)
			}
		}
		sort.Strings(members)
		components = append(components, members)
	}
	return components
}

// greedyCover picks cover nodes by descending conflict degree, ties broken
// by ascending id, until every conflict has a covered endpoint. The result
// is in pick order.
func greedyCover(conflicts []ConflictPair) []string {
	remaining := append([]ConflictPair(nil), conflicts...)
	var cover []string
	for len(remaining) > 0 {
		degree := make(map[string]int)
		for _, p := range remaining {
			degree[p.A]++
			degree[p.B]++
		}
		best := ""
		for id, d := range degree {
			if best == "" || d > degree[best] || (d == degree[best] && id < best) {
				best = id
			}
		}
		cover = append(cover, best)

		kept := remaining[:0]
		for _, p := range remaining {
			if p.A != best && p.B != best {
				kept = append(kept, p)
			}
		}
		remaining = kept
	}
	return cover
}
