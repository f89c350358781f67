package types

import (
	"sort"
	"time"
)

// Graph is an immutable snapshot of the reasoning graph: a node set, an
// ordered edge collection, and per-kind adjacency indexes built once at
// assembly. Snapshots are safe for concurrent read access and are never
// mutated; transformations produce a new snapshot with Version+1.
type Graph struct {
	version   int
	createdAt time.Time

	nodes map[string]Node
	ids   []string // ascending, the canonical traversal order

	edges []Edge // insertion order, preserved across derived snapshots
	byKey map[edgeKey]int

	out map[string][]int // edge indexes by source, sorted by (target, kind)
	in  map[string][]int // edge indexes by target, sorted by (source, kind)
}

// NewGraph assembles a snapshot from nodes and edges, enforcing the model
// invariants: unique node ids, unique (source, target, kind) triples, no
// dangling references, confidence and weight domains. Any breach fails with
// a *MalformedGraphError; nothing is silently repaired.
func NewGraph(nodes []Node, edges []Edge) (*Graph, error) {
	g := &Graph{
		version:   0,
		createdAt: time.Now().UTC(),
		nodes:     make(map[string]Node, len(nodes)),
		byKey:     make(map[edgeKey]int, len(edges)),
		out:       make(map[string][]int),
		in:        make(map[string][]int),
	}

	for i := range nodes {
		n := nodes[i]
		if err := n.Validate(); err != nil {
			return nil, err
		}
		if _, exists := g.nodes[n.ID]; exists {
			return nil, malformed(ErrDuplicateNode, n.ID)
		}
		g.nodes[n.ID] = n.Clone()
		g.ids = append(g.ids, n.ID)
	}
	sort.Strings(g.ids)

	for i := range edges {
		e := edges[i]
		if err := e.Validate(); err != nil {
			return nil, err
		}
		if _, ok := g.nodes[e.Source]; !ok {
			return nil, malformed(ErrDanglingEdge, e.ID())
		}
		if _, ok := g.nodes[e.Target]; !ok {
			return nil, malformed(ErrDanglingEdge, e.ID())
		}
		if _, dup := g.byKey[e.key()]; dup {
			return nil, malformed(ErrDuplicateEdge, e.ID())
		}
		idx := len(g.edges)
		g.edges = append(g.edges, e)
		g.byKey[e.key()] = idx
		g.out[e.Source] = append(g.out[e.Source], idx)
		g.in[e.Target] = append(g.in[e.Target], idx)
	}

	g.sortAdjacency()
	return g, nil
}

func (g *Graph) sortAdjacency() {
	for _, idxs := range g.out {
		sort.Slice(idxs, func(a, b int) bool {
			ea, eb := g.edges[idxs[a]], g.edges[idxs[b]]
			if ea.Target != eb.Target {
				return ea.Target < eb.Target
			}
			return ea.Kind < eb.Kind
		})
	}
	for _, idxs := range g.in {
		sort.Slice(idxs, func(a, b int) bool {
			ea, eb := g.edges[idxs[a]], g.edges[idxs[b]]
			if ea.Source != eb.Source {
				return ea.Source < eb.Source
			}
			return ea.Kind < eb.Kind
		})
	}
}

// Version is the snapshot's position in its derivation chain, starting at 0.
func (g *Graph) Version() int { return g.version }

// CreatedAt is when this snapshot was assembled.
func (g *Graph) CreatedAt() time.Time { return g.createdAt }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// IsEmpty reports whether the snapshot has no nodes.
func (g *Graph) IsEmpty() bool { return len(g.nodes) == 0 }

// HasNode reports whether a node exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Node returns a copy of the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return n.Clone(), true
}

// NodeIDs returns all node ids in ascending order.
func (g *Graph) NodeIDs() []string {
	return append([]string(nil), g.ids...)
}

// Nodes returns copies of all nodes in ascending id order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.ids))
	for _, id := range g.ids {
		n := g.nodes[id]
		out = append(out, n.Clone())
	}
	return out
}

// Edges returns copies of all edges in insertion order.
func (g *Graph) Edges() []Edge {
	return append([]Edge(nil), g.edges...)
}

// Edge looks up an edge by its identity triple.
func (g *Graph) Edge(source, target string, kind EdgeKind) (Edge, bool) {
	idx, ok := g.byKey[edgeKey{source: source, target: target, kind: kind}]
	if !ok {
		return Edge{}, false
	}
	return g.edges[idx], true
}

// EdgesByKind returns all edges of the given kinds, in insertion order.
func (g *Graph) EdgesByKind(kinds ...EdgeKind) []Edge {
	var out []Edge
	for _, e := range g.edges {
		if matchKind(e.Kind, kinds) {
			out = append(out, e)
		}
	}
	return out
}

// OutEdges returns the node's outgoing edges, optionally restricted to the
// given kinds, sorted by (target, kind).
func (g *Graph) OutEdges(id string, kinds ...EdgeKind) []Edge {
	return g.selectEdges(g.out[id], kinds)
}

// InEdges returns the node's incoming edges, optionally restricted to the
// given kinds, sorted by (source, kind).
func (g *Graph) InEdges(id string, kinds ...EdgeKind) []Edge {
	return g.selectEdges(g.in[id], kinds)
}

func (g *Graph) selectEdges(idxs []int, kinds []EdgeKind) []Edge {
	var out []Edge
	for _, i := range idxs {
		if matchKind(g.edges[i].Kind, kinds) {
			out = append(out, g.edges[i])
		}
	}
	return out
}

// Neighbors returns the ids of nodes adjacent to id in either direction,
// optionally restricted to edge kinds, ascending and deduplicated.
func (g *Graph) Neighbors(id string, kinds ...EdgeKind) []string {
	seen := make(map[string]struct{})
	for _, i := range g.out[id] {
		if matchKind(g.edges[i].Kind, kinds) {
			seen[g.edges[i].Target] = struct{}{}
		}
	}
	for _, i := range g.in[id] {
		if matchKind(g.edges[i].Kind, kinds) {
			seen[g.edges[i].Source] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func matchKind(k EdgeKind, kinds []EdgeKind) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

// WithNodes derives a new snapshot with the given nodes replaced. This is
// the copy-on-write transformation used by propagators: edges and untouched
// nodes carry over, the version increments, and the receiver is unchanged.
// Replacement nodes must already exist; a replacement may not change the id.
func (g *Graph) WithNodes(replacements map[string]Node) (*Graph, error) {
	next := &Graph{
		version:   g.version + 1,
		createdAt: time.Now().UTC(),
		nodes:     make(map[string]Node, len(g.nodes)),
		ids:       g.ids,
		edges:     g.edges,
		byKey:     g.byKey,
		out:       g.out,
		in:        g.in,
	}
	for id, n := range g.nodes {
		next.nodes[id] = n
	}
	for id, n := range replacements {
		if _, ok := g.nodes[id]; !ok {
			return nil, malformed(ErrNodeNotFound, id)
		}
		if n.ID != id {
			return nil, malformed(ErrDuplicateNode, n.ID)
		}
		if err := n.Validate(); err != nil {
			return nil, err
		}
		next.nodes[id] = n.Clone()
	}
	return next, nil
}
