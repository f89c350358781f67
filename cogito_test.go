package cogito

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/cogito/pkg/driver"
	"github.com/soundprediction/cogito/pkg/history"
	"github.com/soundprediction/cogito/pkg/types"
)

func mustGraph(t *testing.T, nodes []types.Node, edges []types.Edge) *types.Graph {
	t.Helper()
	g, err := types.NewGraph(nodes, edges)
	require.NoError(t, err)
	return g
}

func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	client := NewClient(nil, opts...)
	t.Cleanup(func() { _ = client.Close(context.Background()) })
	return client
}

func TestClientValidateReportsCausalCycle(t *testing.T) {
	client := newTestClient(t)
	g := mustGraph(t,
		[]types.Node{
			{ID: "a", Kind: types.HypothesisNode},
			{ID: "b", Kind: types.HypothesisNode},
			{ID: "c", Kind: types.HypothesisNode},
		},
		[]types.Edge{
			{Source: "a", Target: "b", Kind: types.CausalEdge},
			{Source: "b", Target: "c", Kind: types.CausalEdge},
			{Source: "c", Target: "a", Kind: types.CausalEdge},
		},
	)

	report, err := client.Validate(context.Background(), g)
	require.NoError(t, err)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, types.CausalCycle, report.Violations[0].Kind)
	assert.Equal(t, []string{"a", "b", "c"}, report.Violations[0].NodeIDs)
	assert.False(t, report.Passing())
}

func TestClientPropagateEpistemic(t *testing.T) {
	client := newTestClient(t)
	g := mustGraph(t,
		[]types.Node{
			{ID: "x", Kind: types.FactNode, Confidence: types.Float64(0.8)},
			{ID: "y", Kind: types.HypothesisNode},
		},
		[]types.Edge{{Source: "x", Target: "y", Kind: types.SupportEdge, Weight: types.Float64(0.5)}},
	)

	result, err := client.PropagateEpistemic(context.Background(), g, []string{"x"})
	require.NoError(t, err)
	y, _ := result.Graph.Node("y")
	assert.InDelta(t, 0.4, y.ConfidenceOr(0), 1e-9)
}

func TestClientValidateAndPropagateArchivesChain(t *testing.T) {
	store, err := history.Open(history.InMemoryConfig())
	require.NoError(t, err)
	client := newTestClient(t, WithHistory(store))
	ctx := context.Background()

	g := mustGraph(t,
		[]types.Node{
			{ID: "x", Kind: types.FactNode, Confidence: types.Float64(0.8), Activation: 1},
			{ID: "y", Kind: types.HypothesisNode},
		},
		[]types.Edge{
			{Source: "x", Target: "y", Kind: types.SupportEdge, Weight: types.Float64(0.5)},
			{Source: "x", Target: "y", Kind: types.CausalEdge, Weight: types.Float64(0.9)},
		},
	)

	result, err := client.ValidateAndPropagate(ctx, "g1", g, []string{"x"})
	require.NoError(t, err)
	assert.True(t, result.Report.Passing())
	assert.False(t, result.CausalSkipped)

	y, _ := result.Propagation.Graph.Node("y")
	assert.InDelta(t, 0.4, y.ConfidenceOr(0), 1e-9)
	assert.InDelta(t, 0.9, y.Activation, 1e-9)

	versions, err := client.SnapshotVersions(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, versions)

	latest, err := client.LatestSnapshot(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, result.Propagation.Graph.Version(), latest.Version())
}

func TestClientValidateAndPropagateSkipsCausalOnCycle(t *testing.T) {
	client := newTestClient(t)
	g := mustGraph(t,
		[]types.Node{
			{ID: "a", Kind: types.StateNode, Activation: 1},
			{ID: "b", Kind: types.StateNode},
			{ID: "src", Kind: types.FactNode, Confidence: types.Float64(0.6)},
		},
		[]types.Edge{
			{Source: "a", Target: "b", Kind: types.CausalEdge},
			{Source: "b", Target: "a", Kind: types.CausalEdge},
			{Source: "src", Target: "a", Kind: types.SupportEdge, Weight: types.Float64(1)},
		},
	)

	result, err := client.ValidateAndPropagate(context.Background(), "g1", g, nil)
	require.NoError(t, err)
	assert.True(t, result.CausalSkipped)
	assert.False(t, result.Report.Passing())

	// Epistemic influence still flows.
	a, _ := result.Propagation.Graph.Node("a")
	assert.InDelta(t, 0.6, a.ConfidenceOr(0), 1e-9)
	// Causal activation stays untouched.
	b, _ := result.Propagation.Graph.Node("b")
	assert.Zero(t, b.Activation)
}

func TestClientEmitsGraphUpdated(t *testing.T) {
	var events []types.Event
	client := newTestClient(t, WithEventHandler(func(e types.Event) { events = append(events, e) }))

	g := mustGraph(t,
		[]types.Node{
			{ID: "x", Kind: types.FactNode, Confidence: types.Float64(0.8)},
			{ID: "y", Kind: types.HypothesisNode},
		},
		[]types.Edge{{Source: "x", Target: "y", Kind: types.SupportEdge, Weight: types.Float64(0.5)}},
	)

	_, err := client.PropagateEpistemic(context.Background(), g, []string{"x"})
	require.NoError(t, err)

	require.NotEmpty(t, events)
	updated, ok := events[len(events)-1].(types.GraphUpdatedEvent)
	require.True(t, ok)
	assert.Equal(t, 0, updated.FromVersion)
	assert.Equal(t, 1, updated.ToVersion)
}

func TestClientAnalysis(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	g := mustGraph(t,
		[]types.Node{
			{ID: "a1", Kind: types.ConceptNode},
			{ID: "a2", Kind: types.ConceptNode},
			{ID: "a3", Kind: types.ConceptNode},
			{ID: "b1", Kind: types.ConceptNode},
			{ID: "b2", Kind: types.ConceptNode},
		},
		[]types.Edge{
			{Source: "a1", Target: "a2", Kind: types.SupportEdge},
			{Source: "a2", Target: "a3", Kind: types.SupportEdge},
			{Source: "b1", Target: "b2", Kind: types.ContradictionEdge},
		},
	)

	connectivity, err := client.AnalyzeConnectivity(ctx, g)
	require.NoError(t, err)
	require.Len(t, connectivity.Components, 2)
	assert.Len(t, connectivity.Components[0], 3)
	assert.Len(t, connectivity.Components[1], 2)

	clusters, err := client.DetectContradictions(ctx, g)
	require.NoError(t, err)
	require.Len(t, clusters, 1)
	assert.Equal(t, []string{"b1", "b2"}, clusters[0].NodeIDs)

	paths, err := client.CriticalPaths(ctx, g, "a3")
	require.NoError(t, err)
	require.NotEmpty(t, paths.Paths)
	assert.Equal(t, []string{"a2", "a3"}, paths.Paths[0].NodeIDs)

	metrics, err := client.Metrics(ctx, g)
	require.NoError(t, err)
	assert.Len(t, metrics, 5)
}

func TestClientSnapshotOperationsRequireHistory(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	g := mustGraph(t, []types.Node{{ID: "a", Kind: types.ConceptNode}}, nil)

	assert.ErrorIs(t, client.SaveSnapshot(ctx, "g1", g), ErrNoHistory)
	_, err := client.LoadSnapshot(ctx, "g1", 0)
	assert.ErrorIs(t, err, ErrNoHistory)
	_, err = client.SnapshotVersions(ctx, "g1")
	assert.ErrorIs(t, err, ErrNoHistory)
}

// memoryGraphStore is an in-memory driver.GraphStore used to exercise the
// whole-graph persistence path without a database.
type memoryGraphStore struct {
	graphs map[string]*types.Graph
	closed bool
}

func newMemoryGraphStore() *memoryGraphStore {
	return &memoryGraphStore{graphs: make(map[string]*types.Graph)}
}

func (s *memoryGraphStore) SaveGraph(_ context.Context, graphID string, g *types.Graph) error {
	s.graphs[graphID] = g
	return nil
}

func (s *memoryGraphStore) LoadGraph(_ context.Context, graphID string) (*types.Graph, error) {
	g, ok := s.graphs[graphID]
	if !ok {
		return nil, driver.ErrGraphNotFound
	}
	return g, nil
}

func (s *memoryGraphStore) DeleteGraph(_ context.Context, graphID string) error {
	delete(s.graphs, graphID)
	return nil
}

func (s *memoryGraphStore) Close(_ context.Context) error {
	s.closed = true
	return nil
}

var _ driver.GraphStore = (*memoryGraphStore)(nil)

func TestClientGraphStoreRoundTrip(t *testing.T) {
	store := newMemoryGraphStore()
	client := newTestClient(t, WithGraphStore(store))
	ctx := context.Background()
	g := mustGraph(t,
		[]types.Node{
			{ID: "a", Kind: types.FactNode, Confidence: types.Float64(0.7)},
			{ID: "b", Kind: types.HypothesisNode},
		},
		[]types.Edge{{Source: "a", Target: "b", Kind: types.SupportEdge, Weight: types.Float64(0.5)}},
	)

	require.NoError(t, client.PersistGraph(ctx, "g1", g))

	loaded, err := client.FetchGraph(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.NodeCount())
	assert.Equal(t, 1, loaded.EdgeCount())

	require.NoError(t, client.DeleteGraph(ctx, "g1"))
	_, err = client.FetchGraph(ctx, "g1")
	assert.Error(t, err)
}

func TestClientGraphStoreOperationsRequireStore(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	g := mustGraph(t, []types.Node{{ID: "a", Kind: types.ConceptNode}}, nil)

	assert.ErrorIs(t, client.PersistGraph(ctx, "g1", g), ErrNoGraphStore)
	_, err := client.FetchGraph(ctx, "g1")
	assert.ErrorIs(t, err, ErrNoGraphStore)
	assert.ErrorIs(t, client.DeleteGraph(ctx, "g1"), ErrNoGraphStore)
}

func TestClientCloseReleasesGraphStore(t *testing.T) {
	store := newMemoryGraphStore()
	client := NewClient(nil, WithGraphStore(store))
	require.NoError(t, client.Close(context.Background()))
	assert.True(t, store.closed)
}
