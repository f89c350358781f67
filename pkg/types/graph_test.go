package types

import (
	"errors"
	"reflect"
	"testing"
)

func node(id string, kind NodeKind, conf ...float64) Node {
	n := Node{ID: id, Kind: kind}
	if len(conf) > 0 {
		n.Confidence = Float64(conf[0])
	}
	return n
}

func TestNewGraphRejectsMalformed(t *testing.T) {
	tests := []struct {
		name    string
		nodes   []Node
		edges   []Edge
		wantErr error
	}{
		{
			name:    "duplicate node id",
			nodes:   []Node{node("a", ConceptNode), node("a", FactNode)},
			wantErr: ErrDuplicateNode,
		},
		{
			name:    "dangling edge target",
			nodes:   []Node{node("a", ConceptNode)},
			edges:   []Edge{{Source: "a", Target: "ghost", Kind: CausalEdge}},
			wantErr: ErrDanglingEdge,
		},
		{
			name:  "duplicate edge triple",
			nodes: []Node{node("a", ConceptNode), node("b", ConceptNode)},
			edges: []Edge{
				{Source: "a", Target: "b", Kind: SupportEdge, Weight: Float64(0.2)},
				{Source: "a", Target: "b", Kind: SupportEdge, Weight: Float64(0.9)},
			},
			wantErr: ErrDuplicateEdge,
		},
		{
			name:    "node confidence out of range",
			nodes:   []Node{node("a", FactNode, 1.5)},
			wantErr: ErrConfidenceDomain,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGraph(tt.nodes, tt.edges)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewGraph() error = %v, wantErr %v", err, tt.wantErr)
			}
			var mg *MalformedGraphError
			if !errors.As(err, &mg) {
				t.Fatalf("NewGraph() error type = %T, want *MalformedGraphError", err)
			}
		})
	}
}

func TestGraphAllowsParallelEdgesOfDifferentKinds(t *testing.T) {
	g, err := NewGraph(
		[]Node{node("a", ConceptNode), node("b", ConceptNode)},
		[]Edge{
			{Source: "a", Target: "b", Kind: SupportEdge},
			{Source: "a", Target: "b", Kind: CausalEdge},
		},
	)
	if err != nil {
		t.Fatalf("NewGraph() error = %v", err)
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
	}
}

func TestGraphDeterministicAccessors(t *testing.T) {
	g, err := NewGraph(
		[]Node{node("c", ConceptNode), node("a", ConceptNode), node("b", ConceptNode)},
		[]Edge{
			{Source: "c", Target: "a", Kind: SupportEdge},
			{Source: "c", Target: "b", Kind: SupportEdge},
			{Source: "a", Target: "b", Kind: CausalEdge},
		},
	)
	if err != nil {
		t.Fatalf("NewGraph() error = %v", err)
	}

	wantIDs := []string{"a", "b", "c"}
	if got := g.NodeIDs(); !reflect.DeepEqual(got, wantIDs) {
		t.Errorf("NodeIDs() = %v, want %v", got, wantIDs)
	}

	out := g.OutEdges("c")
	if len(out) != 2 || out[0].Target != "a" || out[1].Target != "b" {
		t.Errorf("OutEdges(c) order = %v, want targets [a b]", out)
	}

	in := g.InEdges("b")
	if len(in) != 2 || in[0].Source != "a" || in[1].Source != "c" {
		t.Errorf("InEdges(b) order = %v, want sources [a c]", in)
	}

	if got := g.Neighbors("b"); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("Neighbors(b) = %v, want [a c]", got)
	}
	if got := g.Neighbors("b", CausalEdge); !reflect.DeepEqual(got, []string{"a"}) {
		t.Errorf("Neighbors(b, causal) = %v, want [a]", got)
	}
}

func TestGraphWithNodesCopyOnWrite(t *testing.T) {
	g, err := NewGraph(
		[]Node{node("a", HypothesisNode, 0.5), node("b", HypothesisNode, 0.5)},
		[]Edge{{Source: "a", Target: "b", Kind: SupportEdge}},
	)
	if err != nil {
		t.Fatalf("NewGraph() error = %v", err)
	}

	updated := node("a", HypothesisNode, 0.9)
	next, err := g.WithNodes(map[string]Node{"a": updated})
	if err != nil {
		t.Fatalf("WithNodes() error = %v", err)
	}

	if next.Version() != g.Version()+1 {
		t.Errorf("derived Version() = %d, want %d", next.Version(), g.Version()+1)
	}
	orig, _ := g.Node("a")
	if orig.ConfidenceOr(0) != 0.5 {
		t.Errorf("original snapshot mutated: confidence = %v", orig.ConfidenceOr(0))
	}
	got, _ := next.Node("a")
	if got.ConfidenceOr(0) != 0.9 {
		t.Errorf("derived confidence = %v, want 0.9", got.ConfidenceOr(0))
	}
	if next.EdgeCount() != 1 {
		t.Errorf("derived EdgeCount() = %d, want 1", next.EdgeCount())
	}

	if _, err := g.WithNodes(map[string]Node{"ghost": node("ghost", FactNode)}); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("WithNodes(unknown) error = %v, want ErrNodeNotFound", err)
	}
}

func TestGraphNodeReturnsCopy(t *testing.T) {
	g, err := NewGraph([]Node{{ID: "a", Kind: ConceptNode, Meta: map[string]any{"k": "v"}}}, nil)
	if err != nil {
		t.Fatalf("NewGraph() error = %v", err)
	}
	n, _ := g.Node("a")
	n.Meta["k"] = "changed"
	again, _ := g.Node("a")
	if again.Meta["k"] != "v" {
		t.Errorf("snapshot metadata mutated through accessor copy")
	}
}

func TestBuilderLifecycle(t *testing.T) {
	b := NewBuilder()
	if err := b.AddNode(node("a", HypothesisNode, 0.5)); err != nil {
		t.Fatalf("AddNode(a) error = %v", err)
	}
	if err := b.AddNode(node("b", FactNode, 0.9)); err != nil {
		t.Fatalf("AddNode(b) error = %v", err)
	}
	if err := b.AddNode(node("a", ConceptNode)); !errors.Is(err, ErrDuplicateNode) {
		t.Errorf("AddNode(duplicate) error = %v, want ErrDuplicateNode", err)
	}
	if err := b.AddEdge(Edge{Source: "b", Target: "a", Kind: SupportEdge, Weight: Float64(0.8)}); err != nil {
		t.Fatalf("AddEdge() error = %v", err)
	}
	if err := b.AddEdge(Edge{Source: "b", Target: "ghost", Kind: SupportEdge}); !errors.Is(err, ErrDanglingEdge) {
		t.Errorf("AddEdge(dangling) error = %v, want ErrDanglingEdge", err)
	}

	if err := b.UpdateConfidence("a", 0.2); err != nil {
		t.Fatalf("UpdateConfidence() error = %v", err)
	}
	if err := b.UpdateConfidence("a", 1.2); !errors.Is(err, ErrConfidenceDomain) {
		t.Errorf("UpdateConfidence(1.2) error = %v, want ErrConfidenceDomain", err)
	}

	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	a, _ := g.Node("a")
	if a.ConfidenceOr(0) != 0.2 {
		t.Errorf("rebuilt confidence = %v, want 0.2", a.ConfidenceOr(0))
	}

	if err := b.RemoveNode("b"); err != nil {
		t.Fatalf("RemoveNode() error = %v", err)
	}
	g2, err := b.Build()
	if err != nil {
		t.Fatalf("Build() after remove error = %v", err)
	}
	if g2.EdgeCount() != 0 {
		t.Errorf("edges incident to removed node survived: %d", g2.EdgeCount())
	}
	if err := b.RemoveEdge("b", "a", SupportEdge); !errors.Is(err, ErrEdgeNotFound) {
		t.Errorf("RemoveEdge(gone) error = %v, want ErrEdgeNotFound", err)
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	g, err := NewGraph(
		[]Node{node("a", HypothesisNode, 0.5), node("b", FactNode, 0.9)},
		[]Edge{{Source: "b", Target: "a", Kind: SupportEdge, Weight: Float64(0.8), Justification: "observed"}},
	)
	if err != nil {
		t.Fatalf("NewGraph() error = %v", err)
	}

	data, err := DocumentFromGraph(g).JSON()
	if err != nil {
		t.Fatalf("JSON() error = %v", err)
	}
	back, err := ParseJSON(data)
	if err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}
	if back.NodeCount() != 2 || back.EdgeCount() != 1 {
		t.Errorf("round trip lost elements: %d nodes, %d edges", back.NodeCount(), back.EdgeCount())
	}
	e, ok := back.Edge("b", "a", SupportEdge)
	if !ok || e.EffectiveWeight() != 0.8 || e.Justification != "observed" {
		t.Errorf("round trip edge = %+v, ok = %v", e, ok)
	}

	ydata, err := DocumentFromGraph(g).YAML()
	if err != nil {
		t.Fatalf("YAML() error = %v", err)
	}
	yback, err := ParseYAML(ydata)
	if err != nil {
		t.Fatalf("ParseYAML() error = %v", err)
	}
	if yback.NodeCount() != 2 {
		t.Errorf("yaml round trip lost nodes: %d", yback.NodeCount())
	}
}
