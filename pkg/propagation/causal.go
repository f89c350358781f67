package propagation

import (
	"errors"
	"sort"

	"github.com/soundprediction/cogito/pkg/types"
)

// ErrCyclicCausalPropagation is returned when the causal subgraph under
// propagation contains a cycle. The topological pass assumes a DAG;
// continuing would never terminate, so the call fails instead.
var ErrCyclicCausalPropagation = errors.New("causal subgraph contains a cycle")

// Causal propagates activation along causal edges in one deterministic
// topological pass. Ready nodes are processed smallest id first, and each
// node's incoming contributions are folded by the configured Combiner.
type Causal struct {
	config Config
}

// NewCausal creates a causal propagator.
func NewCausal(config Config) *Causal {
	return &Causal{config: config.WithDefaults()}
}

// Propagate derives a new snapshot with updated activation for every node
// reachable from starting over causal edges. An empty starting set covers
// the whole graph. Nodes without incoming causal edges keep their
// activation; they are the stimulus the pass spreads downstream.
func (p *Causal) Propagate(g *types.Graph, starting []string) (*Result, error) {
	for _, id := range starting {
		if !g.HasNode(id) {
			return nil, &types.MalformedGraphError{Reason: types.ErrNodeNotFound, Subject: id}
		}
	}

	reachable := p.reachable(g, starting)
	if len(reachable) == 0 {
		return &Result{Graph: g, Converged: true}, nil
	}
	inSet := make(map[string]struct{}, len(reachable))
	for _, id := range reachable {
		inSet[id] = struct{}{}
	}

	order, err := topoOrder(g, reachable, inSet)
	if err != nil {
		return nil, err
	}

	activation := make(map[string]float64, len(reachable))
	for _, id := range reachable {
		n, _ := g.Node(id)
		activation[id] = n.Activation
	}

	for _, id := range order {
		incoming := sortBySource(g.InEdges(id, types.CausalEdge))
		var contributions []float64
		for _, e := range incoming {
			src, ok := activation[e.Source]
			if !ok {
				n, _ := g.Node(e.Source)
				src = n.Activation
			}
			contributions = append(contributions, e.Polarity.Sign()*e.EffectiveWeight()*src)
		}
		if len(contributions) == 0 {
			continue
		}
		activation[id] = clip01(p.config.Combine(contributions))
	}

	replacements := make(map[string]types.Node, len(reachable))
	for _, id := range reachable {
		n, _ := g.Node(id)
		n.Activation = activation[id]
		replacements[id] = n
	}
	derived, err := g.WithNodes(replacements)
	if err != nil {
		return nil, err
	}

	return &Result{
		Graph:      derived,
		Affected:   reachable,
		Iterations: 1,
		Converged:  true,
	}, nil
}

// reachable returns the directed causal closure of starting, ascending.
// An empty starting set returns every node.
func (p *Causal) reachable(g *types.Graph, starting []string) []string {
	if len(starting) == 0 {
		return g.NodeIDs()
	}

	seen := make(map[string]struct{})
	queue := types.SortIDs(starting)
	for _, id := range queue {
		seen[id] = struct{}{}
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range g.OutEdges(cur, types.CausalEdge) {
			if _, ok := seen[e.Target]; ok {
				continue
			}
			seen[e.Target] = struct{}{}
			queue = append(queue, e.Target)
		}
	}

	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// topoOrder runs Kahn's algorithm over the causal edges within the set,
// always taking the smallest ready id. A non-empty remainder means a cycle.
func topoOrder(g *types.Graph, ids []string, inSet map[string]struct{}) ([]string, error) {
	indegree := make(map[string]int, len(ids))
	for _, id := range ids {
		indegree[id] = 0
	}
	for _, id := range ids {
		for _, e := range g.OutEdges(id, types.CausalEdge) {
			if _, ok := inSet[e.Target]; ok {
				indegree[e.Target]++
			}
		}
	}

	var ready []string
	for _, id := range ids {
		if indegree[id] == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(ids))
	for len(ready) > 0 {
		cur := ready[0]
		ready = ready[1:]
		order = append(order, cur)
		for _, e := range g.OutEdges(cur, types.CausalEdge) {
			if _, ok := inSet[e.Target]; !ok {
				continue
			}
			indegree[e.Target]--
			if indegree[e.Target] == 0 {
				ready = insertSorted(ready, e.Target)
			}
		}
	}
	if len(order) != len(ids) {
		return nil, ErrCyclicCausalPropagation
	}
	return order, nil
}

func insertSorted(ids []string, id string) []string {
	i := sort.SearchStrings(ids, id)
	ids = append(ids, "")
	copy(ids[i+1:], ids[i:])
	ids[i] = id
	return ids
}
