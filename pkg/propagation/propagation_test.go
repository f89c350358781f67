package propagation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/cogito/pkg/types"
	"github.com/soundprediction/cogito/pkg/validation"
)

func mustGraph(t *testing.T, nodes []types.Node, edges []types.Edge) *types.Graph {
	t.Helper()
	g, err := types.NewGraph(nodes, edges)
	require.NoError(t, err)
	return g
}

func confOf(t *testing.T, g *types.Graph, id string) float64 {
	t.Helper()
	n, ok := g.Node(id)
	require.True(t, ok)
	require.NotNil(t, n.Confidence)
	return *n.Confidence
}

func TestEpistemicSupportNoisyOR(t *testing.T) {
	g := mustGraph(t,
		[]types.Node{
			{ID: "x", Kind: types.FactNode, Confidence: types.Float64(0.8)},
			{ID: "y", Kind: types.HypothesisNode},
		},
		[]types.Edge{{Source: "x", Target: "y", Kind: types.SupportEdge, Weight: types.Float64(0.5)}},
	)

	result, err := NewEpistemic(Config{}).Propagate(g, []string{"x"})
	require.NoError(t, err)
	assert.True(t, result.Converged)
	assert.InDelta(t, 0.4, confOf(t, result.Graph, "y"), 1e-9)
	assert.InDelta(t, 0.8, confOf(t, result.Graph, "x"), 1e-9)

	orig, _ := g.Node("y")
	assert.Nil(t, orig.Confidence, "input snapshot must stay untouched")
}

func TestEpistemicZeroWeightSupportHasNoInfluence(t *testing.T) {
	g := mustGraph(t,
		[]types.Node{
			{ID: "x", Kind: types.FactNode, Confidence: types.Float64(0.8)},
			{ID: "y", Kind: types.HypothesisNode},
		},
		[]types.Edge{{Source: "x", Target: "y", Kind: types.SupportEdge, Weight: types.Float64(0)}},
	)

	result, err := NewEpistemic(Config{}).Propagate(g, []string{"x"})
	require.NoError(t, err)
	assert.True(t, result.Converged)
	assert.InDelta(t, 0, confOf(t, result.Graph, "y"), 1e-9)
}

func TestEpistemicNonConvergenceReported(t *testing.T) {
	g := mustGraph(t,
		[]types.Node{
			{ID: "x", Kind: types.FactNode, Confidence: types.Float64(0.8)},
			{ID: "y", Kind: types.HypothesisNode},
			{ID: "z", Kind: types.HypothesisNode},
		},
		[]types.Edge{
			{Source: "x", Target: "y", Kind: types.SupportEdge, Weight: types.Float64(0.6)},
			{Source: "y", Target: "z", Kind: types.SupportEdge, Weight: types.Float64(0.6)},
		},
	)

	cfg := Config{MaxIterations: 1}
	result, err := NewEpistemic(cfg).Propagate(g, []string{"x"})
	require.NoError(t, err)
	assert.False(t, result.Converged)
	assert.Equal(t, 1, result.Iterations)
	assert.GreaterOrEqual(t, result.MaxDelta, 1e-6)

	// The truncated run still hands back a usable snapshot.
	require.NotNil(t, result.Graph)
	for _, n := range result.Graph.Nodes() {
		if n.Confidence != nil {
			assert.GreaterOrEqual(t, *n.Confidence, 0.0)
			assert.LessOrEqual(t, *n.Confidence, 1.0)
		}
	}
}

func TestEpistemicMultipleSupportsCompoundSubLinearly(t *testing.T) {
	g := mustGraph(t,
		[]types.Node{
			{ID: "a", Kind: types.FactNode, Confidence: types.Float64(1)},
			{ID: "b", Kind: types.FactNode, Confidence: types.Float64(1)},
			{ID: "y", Kind: types.HypothesisNode},
		},
		[]types.Edge{
			{Source: "a", Target: "y", Kind: types.SupportEdge, Weight: types.Float64(0.5)},
			{Source: "b", Target: "y", Kind: types.SupportEdge, Weight: types.Float64(0.5)},
		},
	)

	result, err := NewEpistemic(Config{}).Propagate(g, nil)
	require.NoError(t, err)
	// 0 + 0.5, then 0.5 + 0.5*0.5
	assert.InDelta(t, 0.75, confOf(t, result.Graph, "y"), 1e-9)
}

func TestEpistemicContradictionDamps(t *testing.T) {
	g := mustGraph(t,
		[]types.Node{
			{ID: "against", Kind: types.FactNode, Confidence: types.Float64(0.6)},
			{ID: "claim", Kind: types.HypothesisNode, Confidence: types.Float64(0.9)},
		},
		[]types.Edge{{Source: "against", Target: "claim", Kind: types.ContradictionEdge, Weight: types.Float64(1)}},
	)

	result, err := NewEpistemic(Config{}).Propagate(g, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.9*(1-0.6), confOf(t, result.Graph, "claim"), 1e-9)
}

func TestEpistemicDependencyGate(t *testing.T) {
	build := func(srcConf float64) *types.Graph {
		return mustGraph(t,
			[]types.Node{
				{ID: "premise", Kind: types.FactNode, Confidence: types.Float64(srcConf)},
				{ID: "conclusion", Kind: types.HypothesisNode, Confidence: types.Float64(0.2)},
			},
			[]types.Edge{{Source: "premise", Target: "conclusion", Kind: types.DependencyEdge, Weight: types.Float64(1)}},
		)
	}

	t.Run("below threshold has no effect", func(t *testing.T) {
		result, err := NewEpistemic(Config{}).Propagate(build(0.4), nil)
		require.NoError(t, err)
		assert.InDelta(t, 0.2, confOf(t, result.Graph, "conclusion"), 1e-9)
	})

	t.Run("at threshold acts as support", func(t *testing.T) {
		result, err := NewEpistemic(Config{}).Propagate(build(0.5), nil)
		require.NoError(t, err)
		assert.InDelta(t, 0.2+0.8*0.5, confOf(t, result.Graph, "conclusion"), 1e-9)
	})
}

func TestEpistemicIdempotence(t *testing.T) {
	g := mustGraph(t,
		[]types.Node{
			{ID: "x", Kind: types.FactNode, Confidence: types.Float64(0.8)},
			{ID: "y", Kind: types.HypothesisNode},
			{ID: "z", Kind: types.HypothesisNode, Confidence: types.Float64(0.3)},
		},
		[]types.Edge{
			{Source: "x", Target: "y", Kind: types.SupportEdge, Weight: types.Float64(0.5)},
			{Source: "y", Target: "z", Kind: types.SupportEdge, Weight: types.Float64(0.7)},
		},
	)

	p := NewEpistemic(Config{})
	once, err := p.Propagate(g, []string{"x"})
	require.NoError(t, err)
	twice, err := p.Propagate(once.Graph, []string{"x"})
	require.NoError(t, err)

	for _, id := range []string{"x", "y", "z"} {
		assert.InDelta(t, confOf(t, once.Graph, id), confOf(t, twice.Graph, id), 1e-6, "node %s", id)
	}
}

func TestEpistemicConfidenceBounds(t *testing.T) {
	g := mustGraph(t,
		[]types.Node{
			{ID: "s1", Kind: types.FactNode, Confidence: types.Float64(1)},
			{ID: "s2", Kind: types.FactNode, Confidence: types.Float64(1)},
			{ID: "s3", Kind: types.FactNode, Confidence: types.Float64(1)},
			{ID: "y", Kind: types.HypothesisNode, Confidence: types.Float64(0.9)},
		},
		[]types.Edge{
			{Source: "s1", Target: "y", Kind: types.SupportEdge, Weight: types.Float64(1)},
			{Source: "s2", Target: "y", Kind: types.SupportEdge, Weight: types.Float64(1)},
			{Source: "s3", Target: "y", Kind: types.SupportEdge, Weight: types.Float64(1)},
		},
	)

	result, err := NewEpistemic(Config{}).Propagate(g, nil)
	require.NoError(t, err)
	for _, n := range result.Graph.Nodes() {
		c := n.ConfidenceOr(0)
		assert.GreaterOrEqual(t, c, 0.0)
		assert.LessOrEqual(t, c, 1.0)
	}
}

func TestEpistemicCycleStillConverges(t *testing.T) {
	g := mustGraph(t,
		[]types.Node{
			{ID: "a", Kind: types.HypothesisNode, Confidence: types.Float64(0.5)},
			{ID: "b", Kind: types.HypothesisNode, Confidence: types.Float64(0.5)},
		},
		[]types.Edge{
			{Source: "a", Target: "b", Kind: types.SupportEdge, Weight: types.Float64(0.9)},
			{Source: "b", Target: "a", Kind: types.SupportEdge, Weight: types.Float64(0.9)},
		},
	)

	result, err := NewEpistemic(Config{}).Propagate(g, nil)
	require.NoError(t, err)
	assert.True(t, result.Converged)
	assert.LessOrEqual(t, confOf(t, result.Graph, "a"), 1.0)
}

func TestEpistemicDeterminism(t *testing.T) {
	g := mustGraph(t,
		[]types.Node{
			{ID: "a", Kind: types.FactNode, Confidence: types.Float64(0.7)},
			{ID: "b", Kind: types.HypothesisNode, Confidence: types.Float64(0.4)},
			{ID: "c", Kind: types.HypothesisNode},
			{ID: "d", Kind: types.HypothesisNode, Confidence: types.Float64(0.9)},
		},
		[]types.Edge{
			{Source: "a", Target: "c", Kind: types.SupportEdge, Weight: types.Float64(0.8)},
			{Source: "b", Target: "c", Kind: types.ContradictionEdge, Weight: types.Float64(0.6)},
			{Source: "d", Target: "c", Kind: types.DependencyEdge, Weight: types.Float64(0.5)},
			{Source: "a", Target: "b", Kind: types.SupportEdge, Weight: types.Float64(0.3)},
		},
	)

	p := NewEpistemic(Config{})
	first, err := p.Propagate(g, nil)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := p.Propagate(g, nil)
		require.NoError(t, err)
		for _, id := range g.NodeIDs() {
			assert.Equal(t, confOf(t, first.Graph, id), confOf(t, again.Graph, id))
		}
	}
}

func TestEpistemicRejectsUnknownStartingNode(t *testing.T) {
	g := mustGraph(t, []types.Node{{ID: "a", Kind: types.FactNode}}, nil)
	_, err := NewEpistemic(Config{}).Propagate(g, []string{"ghost"})
	require.Error(t, err)
	var mg *types.MalformedGraphError
	assert.ErrorAs(t, err, &mg)
}

func TestCausalPropagation(t *testing.T) {
	g := mustGraph(t,
		[]types.Node{
			{ID: "cause", Kind: types.StateNode, Activation: 1},
			{ID: "damper", Kind: types.StateNode, Activation: 0.5},
			{ID: "effect", Kind: types.StateNode},
		},
		[]types.Edge{
			{Source: "cause", Target: "effect", Kind: types.CausalEdge, Weight: types.Float64(0.8)},
			{Source: "damper", Target: "effect", Kind: types.CausalEdge, Weight: types.Float64(0.4), Polarity: types.NegativePolarity},
		},
	)

	result, err := NewCausal(Config{}).Propagate(g, nil)
	require.NoError(t, err)
	effect, _ := result.Graph.Node("effect")
	// 0.8*1 - 0.4*0.5
	assert.InDelta(t, 0.6, effect.Activation, 1e-9)

	orig, _ := g.Node("effect")
	assert.Zero(t, orig.Activation, "input snapshot must stay untouched")
}

func TestCausalChainsThroughTopologicalOrder(t *testing.T) {
	g := mustGraph(t,
		[]types.Node{
			{ID: "a", Kind: types.StateNode, Activation: 1},
			{ID: "b", Kind: types.StateNode},
			{ID: "c", Kind: types.StateNode},
		},
		[]types.Edge{
			{Source: "a", Target: "b", Kind: types.CausalEdge, Weight: types.Float64(0.5)},
			{Source: "b", Target: "c", Kind: types.CausalEdge, Weight: types.Float64(0.5)},
		},
	)

	result, err := NewCausal(Config{}).Propagate(g, []string{"a"})
	require.NoError(t, err)
	b, _ := result.Graph.Node("b")
	c, _ := result.Graph.Node("c")
	assert.InDelta(t, 0.5, b.Activation, 1e-9)
	assert.InDelta(t, 0.25, c.Activation, 1e-9)
}

func TestCausalFailsOnCycle(t *testing.T) {
	g := mustGraph(t,
		[]types.Node{
			{ID: "a", Kind: types.StateNode, Activation: 1},
			{ID: "b", Kind: types.StateNode},
		},
		[]types.Edge{
			{Source: "a", Target: "b", Kind: types.CausalEdge},
			{Source: "b", Target: "a", Kind: types.CausalEdge},
		},
	)

	_, err := NewCausal(Config{}).Propagate(g, nil)
	assert.ErrorIs(t, err, ErrCyclicCausalPropagation)
}

func TestCausalCustomCombiner(t *testing.T) {
	max := func(contributions []float64) float64 {
		best := 0.0
		for _, c := range contributions {
			if c > best {
				best = c
			}
		}
		return best
	}

	g := mustGraph(t,
		[]types.Node{
			{ID: "a", Kind: types.StateNode, Activation: 0.9},
			{ID: "b", Kind: types.StateNode, Activation: 0.7},
			{ID: "y", Kind: types.StateNode},
		},
		[]types.Edge{
			{Source: "a", Target: "y", Kind: types.CausalEdge, Weight: types.Float64(0.5)},
			{Source: "b", Target: "y", Kind: types.CausalEdge, Weight: types.Float64(1)},
		},
	)

	result, err := NewCausal(Config{Combine: max}).Propagate(g, nil)
	require.NoError(t, err)
	y, _ := result.Graph.Node("y")
	assert.InDelta(t, 0.7, y.Activation, 1e-9)
}

func TestServicePropagateAll(t *testing.T) {
	g := mustGraph(t,
		[]types.Node{
			{ID: "evidence", Kind: types.FactNode, Confidence: types.Float64(0.8), Activation: 1},
			{ID: "outcome", Kind: types.StateNode},
		},
		[]types.Edge{
			{Source: "evidence", Target: "outcome", Kind: types.SupportEdge, Weight: types.Float64(0.5)},
			{Source: "evidence", Target: "outcome", Kind: types.CausalEdge, Weight: types.Float64(0.6)},
		},
	)

	result, err := NewService(Config{}).PropagateAll(g, []string{"evidence"})
	require.NoError(t, err)
	assert.True(t, result.Converged)

	outcome, _ := result.Graph.Node("outcome")
	assert.InDelta(t, 0.4, outcome.ConfidenceOr(0), 1e-9)
	assert.InDelta(t, 0.6, outcome.Activation, 1e-9)
	assert.Equal(t, []string{"evidence", "outcome"}, result.Affected)
	assert.Equal(t, 2, result.Graph.Version())
}

func TestServiceSnapshotVersioning(t *testing.T) {
	g := mustGraph(t,
		[]types.Node{
			{ID: "x", Kind: types.FactNode, Confidence: types.Float64(0.8)},
			{ID: "y", Kind: types.HypothesisNode},
		},
		[]types.Edge{{Source: "x", Target: "y", Kind: types.SupportEdge, Weight: types.Float64(0.5)}},
	)

	result, err := NewService(Config{}).PropagateEpistemic(g, []string{"x"})
	require.NoError(t, err)
	assert.Equal(t, 0, g.Version())
	assert.Equal(t, 1, result.Graph.Version())
}

func TestPropagateAfterValidationPasses(t *testing.T) {
	g := mustGraph(t,
		[]types.Node{
			{ID: "a", Kind: types.StateNode, Activation: 1},
			{ID: "b", Kind: types.StateNode},
		},
		[]types.Edge{{Source: "a", Target: "b", Kind: types.CausalEdge, Weight: types.Float64(1)}},
	)

	report, err := validation.NewValidator(validation.Config{}).Validate(context.Background(), g)
	require.NoError(t, err)
	require.True(t, report.Passing())

	result, err := NewService(Config{}).PropagateCausal(g, []string{"a"})
	require.NoError(t, err)
	b, _ := result.Graph.Node("b")
	assert.InDelta(t, 1, b.Activation, 1e-9)
}
