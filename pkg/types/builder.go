package types

// Builder accumulates incremental edits and assembles them into a snapshot.
// It is the only mutable surface of the model; Build hands the accumulated
// state to NewGraph so every snapshot passes through the same validation.
// A Builder is not safe for concurrent use.
type Builder struct {
	nodes map[string]Node
	order []string // node insertion order
	edges []Edge
	byKey map[edgeKey]int
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		nodes: make(map[string]Node),
		byKey: make(map[edgeKey]int),
	}
}

// NewBuilderFrom seeds a Builder with the contents of an existing snapshot.
func NewBuilderFrom(g *Graph) *Builder {
	b := NewBuilder()
	for _, n := range g.Nodes() {
		b.nodes[n.ID] = n
		b.order = append(b.order, n.ID)
	}
	for _, e := range g.Edges() {
		b.byKey[e.key()] = len(b.edges)
		b.edges = append(b.edges, e)
	}
	return b
}

// AddNode registers a node. Adding an id twice is an error.
func (b *Builder) AddNode(n Node) error {
	if err := n.Validate(); err != nil {
		return err
	}
	if _, exists := b.nodes[n.ID]; exists {
		return malformed(ErrDuplicateNode, n.ID)
	}
	b.nodes[n.ID] = n.Clone()
	b.order = append(b.order, n.ID)
	return nil
}

// AddEdge registers an edge between nodes already added. Duplicate
// (source, target, kind) triples are rejected.
func (b *Builder) AddEdge(e Edge) error {
	if err := e.Validate(); err != nil {
		return err
	}
	if _, ok := b.nodes[e.Source]; !ok {
		return malformed(ErrDanglingEdge, e.ID())
	}
	if _, ok := b.nodes[e.Target]; !ok {
		return malformed(ErrDanglingEdge, e.ID())
	}
	if _, dup := b.byKey[e.key()]; dup {
		return malformed(ErrDuplicateEdge, e.ID())
	}
	b.byKey[e.key()] = len(b.edges)
	b.edges = append(b.edges, e)
	return nil
}

// RemoveNode drops a node together with every edge incident to it.
func (b *Builder) RemoveNode(id string) error {
	if _, ok := b.nodes[id]; !ok {
		return malformed(ErrNodeNotFound, id)
	}
	delete(b.nodes, id)
	for i, nid := range b.order {
		if nid == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
	kept := b.edges[:0]
	for _, e := range b.edges {
		if e.Source == id || e.Target == id {
			continue
		}
		kept = append(kept, e)
	}
	b.edges = kept
	b.reindex()
	return nil
}

// RemoveEdge drops the edge identified by (source, target, kind).
func (b *Builder) RemoveEdge(source, target string, kind EdgeKind) error {
	k := edgeKey{source: source, target: target, kind: kind}
	idx, ok := b.byKey[k]
	if !ok {
		return malformed(ErrEdgeNotFound, source+"->"+target+"#"+string(kind))
	}
	b.edges = append(b.edges[:idx], b.edges[idx+1:]...)
	b.reindex()
	return nil
}

// UpdateConfidence sets a node's confidence and clears any recorded prior,
// so the next propagation starts from the fresh assertion.
func (b *Builder) UpdateConfidence(id string, confidence float64) error {
	n, ok := b.nodes[id]
	if !ok {
		return malformed(ErrNodeNotFound, id)
	}
	if confidence < 0 || confidence > 1 {
		return malformed(ErrConfidenceDomain, id)
	}
	n.Confidence = Float64(confidence)
	n.Prior = nil
	b.nodes[id] = n
	return nil
}

func (b *Builder) reindex() {
	b.byKey = make(map[edgeKey]int, len(b.edges))
	for i, e := range b.edges {
		b.byKey[e.key()] = i
	}
}

// Build assembles the accumulated nodes and edges into a fresh snapshot.
// The Builder remains usable afterwards.
func (b *Builder) Build() (*Graph, error) {
	nodes := make([]Node, 0, len(b.order))
	for _, id := range b.order {
		nodes = append(nodes, b.nodes[id])
	}
	return NewGraph(nodes, b.edges)
}
