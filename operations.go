package cogito

import (
	"context"
	"errors"

	"github.com/soundprediction/cogito/pkg/analysis"
	"github.com/soundprediction/cogito/pkg/history"
	"github.com/soundprediction/cogito/pkg/propagation"
	"github.com/soundprediction/cogito/pkg/types"
)

// ErrNoHistory is returned by snapshot operations when the Client was
// built without a history store.
var ErrNoHistory = errors.New("no history store configured")

// ErrNoGraphStore is returned by graph store operations when the Client
// was built without an external graph database.
var ErrNoGraphStore = errors.New("no graph store configured")

// Validate implements Engine.
func (c *Client) Validate(ctx context.Context, g *types.Graph) (types.ValidationReport, error) {
	report, err := c.validator.Validate(ctx, g)
	if err != nil {
		return types.ValidationReport{}, err
	}
	c.logger.Info("graph validated",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"violations", len(report.Violations),
		"passing", report.Passing())
	return report, nil
}

// PropagateEpistemic implements Engine.
func (c *Client) PropagateEpistemic(ctx context.Context, g *types.Graph, starting []string) (*propagation.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result, err := c.propagator.PropagateEpistemic(g, starting)
	if err != nil {
		return nil, err
	}
	c.afterPropagation(g, result, "epistemic")
	return result, nil
}

// PropagateCausal implements Engine.
func (c *Client) PropagateCausal(ctx context.Context, g *types.Graph, starting []string) (*propagation.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result, err := c.propagator.PropagateCausal(g, starting)
	if err != nil {
		return nil, err
	}
	c.afterPropagation(g, result, "causal")
	return result, nil
}

// PropagateAll implements Engine.
func (c *Client) PropagateAll(ctx context.Context, g *types.Graph, starting []string) (*propagation.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result, err := c.propagator.PropagateAll(g, starting)
	if err != nil {
		return nil, err
	}
	c.afterPropagation(g, result, "all")
	return result, nil
}

func (c *Client) afterPropagation(before *types.Graph, result *propagation.Result, change string) {
	if result.Graph != before {
		c.emit(types.NewGraphUpdated("", before.Version(), result.Graph.Version(), change))
	}
	c.logger.Info("propagation finished",
		"change", change,
		"affected", len(result.Affected),
		"iterations", result.Iterations,
		"converged", result.Converged)
}

// ValidateAndPropagate implements Engine. The snapshot chain is archived
// in the history store when one is attached: the input snapshot first,
// then the propagated one.
func (c *Client) ValidateAndPropagate(ctx context.Context, graphID string, g *types.Graph, starting []string) (*ValidateAndPropagateResult, error) {
	report, err := c.validator.Validate(ctx, g)
	if err != nil {
		return nil, err
	}

	causalBlocked := len(report.ByKind(types.CausalCycle)) > 0

	var result *propagation.Result
	if causalBlocked {
		c.logger.Warn("causal pass skipped", "graph_id", graphID, "reason", "causal cycle reported")
		result, err = c.propagator.PropagateEpistemic(g, starting)
	} else {
		result, err = c.propagator.PropagateAll(g, starting)
	}
	if err != nil {
		return nil, err
	}

	if c.history != nil {
		if err := c.history.Append(ctx, graphID, g); err != nil {
			return nil, err
		}
		if err := c.history.Append(ctx, graphID, result.Graph); err != nil {
			return nil, err
		}
	}
	if result.Graph != g {
		c.emit(types.NewGraphUpdated(graphID, g.Version(), result.Graph.Version(), "validate_and_propagate"))
	}

	return &ValidateAndPropagateResult{
		Report:        report,
		Propagation:   result,
		CausalSkipped: causalBlocked,
	}, nil
}

// DetectContradictions implements Engine. The epistemic validator runs
// first so clusters and report stay consistent.
func (c *Client) DetectContradictions(ctx context.Context, g *types.Graph) ([]analysis.ConflictCluster, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.detector.Detect(g, nil), nil
}

// AnalyzeConnectivity implements Engine.
func (c *Client) AnalyzeConnectivity(ctx context.Context, g *types.Graph) (analysis.ConnectivityResult, error) {
	if err := ctx.Err(); err != nil {
		return analysis.ConnectivityResult{}, err
	}
	return analysis.AnalyzeConnectivity(g), nil
}

// CriticalPaths implements Engine.
func (c *Client) CriticalPaths(ctx context.Context, g *types.Graph, target string) (analysis.PathsResult, error) {
	if err := ctx.Err(); err != nil {
		return analysis.PathsResult{}, err
	}
	return analysis.CriticalPaths(g, target, c.pathConfig())
}

// Metrics implements Engine.
func (c *Client) Metrics(ctx context.Context, g *types.Graph) ([]analysis.NodeMetrics, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return analysis.ComputeMetrics(g), nil
}

// SaveSnapshot implements Engine.
func (c *Client) SaveSnapshot(ctx context.Context, graphID string, g *types.Graph) error {
	if c.history == nil {
		return ErrNoHistory
	}
	return c.history.Append(ctx, graphID, g)
}

// LoadSnapshot implements Engine.
func (c *Client) LoadSnapshot(ctx context.Context, graphID string, version int) (*types.Graph, error) {
	if c.history == nil {
		return nil, ErrNoHistory
	}
	return c.history.Get(ctx, graphID, version)
}

// LatestSnapshot loads the newest archived version of a graph.
func (c *Client) LatestSnapshot(ctx context.Context, graphID string) (*types.Graph, error) {
	if c.history == nil {
		return nil, ErrNoHistory
	}
	return c.history.Latest(ctx, graphID)
}

// SnapshotVersions implements Engine.
func (c *Client) SnapshotVersions(ctx context.Context, graphID string) ([]int, error) {
	if c.history == nil {
		return nil, ErrNoHistory
	}
	return c.history.Versions(ctx, graphID)
}

// History exposes the attached snapshot store, or nil.
func (c *Client) History() *history.Store {
	return c.history
}

// PersistGraph implements Engine.
func (c *Client) PersistGraph(ctx context.Context, graphID string, g *types.Graph) error {
	if c.store == nil {
		return ErrNoGraphStore
	}
	if err := c.store.SaveGraph(ctx, graphID, g); err != nil {
		return err
	}
	c.logger.Info("graph persisted",
		"graph_id", graphID,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount())
	return nil
}

// FetchGraph implements Engine.
func (c *Client) FetchGraph(ctx context.Context, graphID string) (*types.Graph, error) {
	if c.store == nil {
		return nil, ErrNoGraphStore
	}
	return c.store.LoadGraph(ctx, graphID)
}

// DeleteGraph implements Engine.
func (c *Client) DeleteGraph(ctx context.Context, graphID string) error {
	if c.store == nil {
		return ErrNoGraphStore
	}
	if err := c.store.DeleteGraph(ctx, graphID); err != nil {
		return err
	}
	c.logger.Info("graph deleted", "graph_id", graphID)
	return nil
}
