package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/cogito/pkg/types"
)

func mustGraph(t *testing.T, nodes []types.Node, edges []types.Edge) *types.Graph {
	t.Helper()
	g, err := types.NewGraph(nodes, edges)
	require.NoError(t, err)
	return g
}

func concept(id string) types.Node {
	return types.Node{ID: id, Kind: types.ConceptNode}
}

func TestContradictionDetectorSinglePair(t *testing.T) {
	g := mustGraph(t,
		[]types.Node{
			{ID: "wet", Kind: types.HypothesisNode, EpistemicContext: "weather"},
			{ID: "dry", Kind: types.HypothesisNode, EpistemicContext: "weather"},
		},
		[]types.Edge{{Source: "wet", Target: "dry", Kind: types.ContradictionEdge}},
	)

	clusters := NewContradictionDetector().Detect(g, nil)
	require.Len(t, clusters, 1)
	assert.Equal(t, []string{"dry", "wet"}, clusters[0].NodeIDs)
	assert.Equal(t, []ConflictPair{{A: "dry", B: "wet"}}, clusters[0].Conflicts)
	assert.Len(t, clusters[0].Cover, 1)
}

func TestContradictionDetectorClustersAndCover(t *testing.T) {
	// hub conflicts with a, b, c; separate pair d-e.
	g := mustGraph(t,
		[]types.Node{
			concept("hub"), concept("a"), concept("b"), concept("c"),
			concept("d"), concept("e"),
		},
		[]types.Edge{
			{Source: "hub", Target: "a", Kind: types.ContradictionEdge},
			{Source: "hub", Target: "b", Kind: types.ContradictionEdge},
			{Source: "hub", Target: "c", Kind: types.ContradictionEdge},
			{Source: "d", Target: "e", Kind: types.ContradictionEdge},
		},
	)

	clusters := NewContradictionDetector().Detect(g, nil)
	require.Len(t, clusters, 2)

	assert.Equal(t, []string{"a", "b", "c", "hub"}, clusters[0].NodeIDs)
	assert.Equal(t, []string{"hub"}, clusters[0].Cover, "highest degree node covers all conflicts")

	assert.Equal(t, []string{"d", "e"}, clusters[1].NodeIDs)
	assert.Equal(t, []string{"d"}, clusters[1].Cover, "degree tie breaks to ascending id")
}

func TestContradictionDetectorReusesViolations(t *testing.T) {
	g := mustGraph(t, []types.Node{concept("a"), concept("b")}, nil)
	violations := []types.Violation{
		{Kind: types.BeliefConflict, Severity: types.SeverityWarning, NodeIDs: []string{"a", "b"}},
		{Kind: types.CausalCycle, Severity: types.SeverityError, NodeIDs: []string{"a", "b"}},
	}

	clusters := NewContradictionDetector().Detect(g, violations)
	require.Len(t, clusters, 1)
	assert.Equal(t, []string{"a", "b"}, clusters[0].NodeIDs)
}

func TestContradictionDetectorEmptyWithoutConflicts(t *testing.T) {
	g := mustGraph(t,
		[]types.Node{concept("a"), concept("b")},
		[]types.Edge{{Source: "a", Target: "b", Kind: types.SupportEdge}},
	)
	assert.Empty(t, NewContradictionDetector().Detect(g, nil))
}

func TestConnectivityTwoComponents(t *testing.T) {
	g := mustGraph(t,
		[]types.Node{
			concept("a1"), concept("a2"), concept("a3"),
			concept("b1"), concept("b2"),
		},
		[]types.Edge{
			{Source: "a1", Target: "a2", Kind: types.SupportEdge},
			{Source: "a2", Target: "a3", Kind: types.CausalEdge},
			{Source: "b1", Target: "b2", Kind: types.SupportEdge},
		},
	)

	result := AnalyzeConnectivity(g)
	require.Len(t, result.Components, 2)
	assert.Equal(t, []string{"a1", "a2", "a3"}, result.Components[0])
	assert.Equal(t, []string{"b1", "b2"}, result.Components[1])
	assert.Equal(t, []string{"a2"}, result.ArticulationPoints)
}

func TestConnectivityNoArticulationInCycle(t *testing.T) {
	g := mustGraph(t,
		[]types.Node{concept("a"), concept("b"), concept("c")},
		[]types.Edge{
			{Source: "a", Target: "b", Kind: types.SupportEdge},
			{Source: "b", Target: "c", Kind: types.SupportEdge},
			{Source: "c", Target: "a", Kind: types.SupportEdge},
		},
	)

	result := AnalyzeConnectivity(g)
	require.Len(t, result.Components, 1)
	assert.Empty(t, result.ArticulationPoints)
}

func TestCriticalPathsRanking(t *testing.T) {
	g := mustGraph(t,
		[]types.Node{
			{ID: "strong", Kind: types.FactNode, Confidence: types.Float64(0.9)},
			{ID: "weak", Kind: types.FactNode, Confidence: types.Float64(0.3)},
			{ID: "mid", Kind: types.HypothesisNode, Confidence: types.Float64(0.8)},
			{ID: "goal", Kind: types.HypothesisNode},
		},
		[]types.Edge{
			{Source: "strong", Target: "goal", Kind: types.SupportEdge, Weight: types.Float64(0.9)},
			{Source: "weak", Target: "goal", Kind: types.SupportEdge, Weight: types.Float64(0.9)},
			{Source: "strong", Target: "mid", Kind: types.SupportEdge, Weight: types.Float64(1)},
			{Source: "mid", Target: "goal", Kind: types.DependencyEdge, Weight: types.Float64(0.5)},
		},
	)

	result, err := CriticalPaths(g, "goal", PathConfig{TopK: 2})
	require.NoError(t, err)
	require.Len(t, result.Paths, 2)
	assert.False(t, result.Truncated)

	// strong->goal: 0.9*0.9 = 0.81, mid->goal: 0.8*0.5 = 0.4,
	// weak->goal: 0.3*0.9 = 0.27
	assert.Equal(t, []string{"strong", "goal"}, result.Paths[0].NodeIDs)
	assert.InDelta(t, 0.81, result.Paths[0].Score, 1e-9)
	assert.Equal(t, []string{"mid", "goal"}, result.Paths[1].NodeIDs)
	assert.InDelta(t, 0.4, result.Paths[1].Score, 1e-9)
}

func TestCriticalPathsTiesPreferShorterThenLexicographic(t *testing.T) {
	g := mustGraph(t,
		[]types.Node{concept("a"), concept("b"), concept("t")},
		[]types.Edge{
			{Source: "a", Target: "t", Kind: types.SupportEdge, Weight: types.Float64(1)},
			{Source: "b", Target: "t", Kind: types.SupportEdge, Weight: types.Float64(1)},
			{Source: "a", Target: "b", Kind: types.SupportEdge, Weight: types.Float64(1)},
		},
	)

	result, err := CriticalPaths(g, "t", PathConfig{TopK: 3})
	require.NoError(t, err)
	require.Len(t, result.Paths, 3)
	assert.Equal(t, []string{"a", "t"}, result.Paths[0].NodeIDs)
	assert.Equal(t, []string{"b", "t"}, result.Paths[1].NodeIDs)
	assert.Equal(t, []string{"a", "b", "t"}, result.Paths[2].NodeIDs)
}

func TestCriticalPathsSimplePathsOnly(t *testing.T) {
	g := mustGraph(t,
		[]types.Node{concept("a"), concept("b")},
		[]types.Edge{
			{Source: "a", Target: "b", Kind: types.SupportEdge},
			{Source: "b", Target: "a", Kind: types.SupportEdge},
		},
	)

	result, err := CriticalPaths(g, "a", PathConfig{TopK: 10})
	require.NoError(t, err)
	require.Len(t, result.Paths, 1)
	assert.Equal(t, []string{"b", "a"}, result.Paths[0].NodeIDs)
}

func TestCriticalPathsTruncation(t *testing.T) {
	nodes := []types.Node{concept("t")}
	var edges []types.Edge
	for _, id := range []string{"s1", "s2", "s3", "s4", "s5"} {
		nodes = append(nodes, concept(id))
		edges = append(edges, types.Edge{Source: id, Target: "t", Kind: types.SupportEdge})
	}
	g := mustGraph(t, nodes, edges)

	result, err := CriticalPaths(g, "t", PathConfig{TopK: 5, MaxPathsExplored: 3})
	require.NoError(t, err)
	assert.True(t, result.Truncated)
	assert.Less(t, len(result.Paths), 5)
}

func TestCriticalPathsUnknownTarget(t *testing.T) {
	g := mustGraph(t, []types.Node{concept("a")}, nil)
	_, err := CriticalPaths(g, "ghost", PathConfig{})
	var mg *types.MalformedGraphError
	assert.ErrorAs(t, err, &mg)
}

func TestComputeMetrics(t *testing.T) {
	g := mustGraph(t,
		[]types.Node{concept("a"), concept("b"), concept("c")},
		[]types.Edge{
			{Source: "a", Target: "b", Kind: types.SupportEdge},
			{Source: "a", Target: "c", Kind: types.CausalEdge},
			{Source: "b", Target: "c", Kind: types.SupportEdge},
		},
	)

	metrics := ComputeMetrics(g)
	require.Len(t, metrics, 3)

	assert.Equal(t, "a", metrics[0].ID)
	assert.Equal(t, 2, metrics[0].OutDegree)
	assert.Equal(t, 0, metrics[0].InDegree)
	assert.InDelta(t, 1.0, metrics[0].DegreeCentrality, 1e-9)

	assert.Equal(t, "c", metrics[2].ID)
	assert.Equal(t, 2, metrics[2].InDegree)
	assert.Equal(t, 1, metrics[2].DegreeByKind[types.SupportEdge])
	assert.Equal(t, 1, metrics[2].DegreeByKind[types.CausalEdge])
}
