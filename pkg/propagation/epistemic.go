package propagation

import (
	"math"
	"sort"

	"github.com/soundprediction/cogito/pkg/types"
)

// Result carries the outcome of a propagation call. Graph is the derived
// snapshot; the input snapshot is never modified. Converged is false when
// the epistemic fixed point hit the iteration cap, which is a warning, not
// an error: Graph still holds the best-effort values.
type Result struct {
	Graph      *types.Graph
	Affected   []string
	Iterations int
	Converged  bool
	MaxDelta   float64
}

// Epistemic propagates confidence over support, contradiction, and
// dependency edges to a fixed point.
//
// Each affected node keeps its pre-propagation confidence as a prior, and
// every sweep recomputes confidence from that prior, so re-running on a
// converged snapshot changes nothing. Nodes are updated in ascending id
// order, applying support, then contradiction, then dependency edges, each
// group in ascending source id order.
type Epistemic struct {
	config Config
}

// NewEpistemic creates an epistemic propagator.
func NewEpistemic(config Config) *Epistemic {
	return &Epistemic{config: config.WithDefaults()}
}

// Propagate derives a new snapshot with updated confidence for every node
// reachable from starting over epistemic edges, treating reachability as
// undirected. An empty starting set affects the whole graph.
func (p *Epistemic) Propagate(g *types.Graph, starting []string) (*Result, error) {
	for _, id := range starting {
		if !g.HasNode(id) {
			return nil, &types.MalformedGraphError{Reason: types.ErrNodeNotFound, Subject: id}
		}
	}

	affected := p.closure(g, starting)
	if len(affected) == 0 {
		return &Result{Graph: g, Converged: true}, nil
	}

	base := make(map[string]float64, len(affected))
	conf := make(map[string]float64, len(affected))
	for _, id := range affected {
		n, _ := g.Node(id)
		base[id] = n.PriorOr(0)
		conf[id] = n.ConfidenceOr(0)
	}

	iterations := 0
	maxDelta := math.Inf(1)
	for iterations < p.config.MaxIterations && maxDelta >= p.config.Epsilon {
		maxDelta = 0
		for _, id := range affected {
			next := p.recompute(g, id, base[id], conf)
			if delta := math.Abs(next - conf[id]); delta > maxDelta {
				maxDelta = delta
			}
			conf[id] = next
		}
		iterations++
	}
	converged := maxDelta < p.config.Epsilon

	replacements := make(map[string]types.Node, len(affected))
	for _, id := range affected {
		n, _ := g.Node(id)
		n.Prior = types.Float64(base[id])
		n.Confidence = types.Float64(conf[id])
		replacements[id] = n
	}
	derived, err := g.WithNodes(replacements)
	if err != nil {
		return nil, err
	}

	if !converged {
		p.config.Logger.Warn("epistemic propagation did not converge",
			"iterations", iterations,
			"max_delta", maxDelta,
			"epsilon", p.config.Epsilon)
	}
	return &Result{
		Graph:      derived,
		Affected:   affected,
		Iterations: iterations,
		Converged:  converged,
		MaxDelta:   maxDelta,
	}, nil
}

// recompute rebuilds one node's confidence from its prior and the current
// confidence of its epistemic neighbors.
func (p *Epistemic) recompute(g *types.Graph, id string, prior float64, conf map[string]float64) float64 {
	c := prior
	for _, e := range sortBySource(g.InEdges(id, types.SupportEdge)) {
		c = clip01(c + (1-c)*sourceConf(g, e.Source, conf)*e.EffectiveWeight())
	}
	for _, e := range sortBySource(g.InEdges(id, types.ContradictionEdge)) {
		c = clip01(c * (1 - sourceConf(g, e.Source, conf)*e.EffectiveWeight()))
	}
	for _, e := range sortBySource(g.InEdges(id, types.DependencyEdge)) {
		src := sourceConf(g, e.Source, conf)
		if src >= p.config.DependencyThreshold {
			c = clip01(c + (1-c)*src*e.EffectiveWeight())
		}
	}
	return c
}

func sourceConf(g *types.Graph, id string, conf map[string]float64) float64 {
	if c, ok := conf[id]; ok {
		return c
	}
	n, _ := g.Node(id)
	return n.ConfidenceOr(0)
}

func sortBySource(edges []types.Edge) []types.Edge {
	sort.Slice(edges, func(i, j int) bool { return edges[i].Source < edges[j].Source })
	return edges
}

// closure returns the nodes reachable from starting over epistemic edges in
// either direction, ascending. An empty starting set returns every node.
func (p *Epistemic) closure(g *types.Graph, starting []string) []string {
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
		for _, next := range g.Neighbors(cur, types.EpistemicKinds...) {
			if _, ok := seen[next]; ok {
				continue
			}
			seen[next] = struct{}{}
			queue = append(queue, next)
		}
	}

	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
