package cogito

import (
	"context"
	"log/slog"

	"github.com/soundprediction/cogito/pkg/analysis"
	"github.com/soundprediction/cogito/pkg/config"
	"github.com/soundprediction/cogito/pkg/driver"
	"github.com/soundprediction/cogito/pkg/history"
	"github.com/soundprediction/cogito/pkg/propagation"
	"github.com/soundprediction/cogito/pkg/types"
	"github.com/soundprediction/cogito/pkg/validation"
)

// Engine is the main interface for working with reasoning graphs. It
// validates snapshots, propagates derived attributes, and analyzes
// structure; snapshot persistence is optional and configured on the
// Client.
type Engine interface {
	// Validate runs every validator and returns the merged report.
	// Violations are data; the call fails only on malformed input.
	Validate(ctx context.Context, g *types.Graph) (types.ValidationReport, error)

	// PropagateEpistemic iterates confidence over support, contradiction,
	// and dependency edges to a fixed point.
	PropagateEpistemic(ctx context.Context, g *types.Graph, starting []string) (*propagation.Result, error)

	// PropagateCausal spreads activation along the causal DAG in one
	// topological pass.
	PropagateCausal(ctx context.Context, g *types.Graph, starting []string) (*propagation.Result, error)

	// PropagateAll runs the epistemic pass and feeds its snapshot into the
	// causal pass.
	PropagateAll(ctx context.Context, g *types.Graph, starting []string) (*propagation.Result, error)

	// ValidateAndPropagate validates first and then propagates as far as
	// the report allows: with a causal cycle in the report the causal pass
	// is skipped and only epistemic runs.
	ValidateAndPropagate(ctx context.Context, graphID string, g *types.Graph, starting []string) (*ValidateAndPropagateResult, error)

	// DetectContradictions clusters belief conflicts.
	DetectContradictions(ctx context.Context, g *types.Graph) ([]analysis.ConflictCluster, error)

	// AnalyzeConnectivity computes components and articulation points.
	AnalyzeConnectivity(ctx context.Context, g *types.Graph) (analysis.ConnectivityResult, error)

	// CriticalPaths ranks the justification chains ending at target.
	CriticalPaths(ctx context.Context, g *types.Graph, target string) (analysis.PathsResult, error)

	// Metrics returns per-node structural measures.
	Metrics(ctx context.Context, g *types.Graph) ([]analysis.NodeMetrics, error)

	// SaveSnapshot archives a snapshot in the history store.
	SaveSnapshot(ctx context.Context, graphID string, g *types.Graph) error

	// LoadSnapshot loads one archived version.
	LoadSnapshot(ctx context.Context, graphID string, version int) (*types.Graph, error)

	// SnapshotVersions lists the archived versions of a graph.
	SnapshotVersions(ctx context.Context, graphID string) ([]int, error)

	// PersistGraph writes the snapshot to the external graph store.
	PersistGraph(ctx context.Context, graphID string, g *types.Graph) error

	// FetchGraph rebuilds the stored copy of a graph from the external
	// graph store.
	FetchGraph(ctx context.Context, graphID string) (*types.Graph, error)

	// DeleteGraph removes the stored copy of a graph from the external
	// graph store.
	DeleteGraph(ctx context.Context, graphID string) error

	// Close releases held resources.
	Close(ctx context.Context) error
}

// ValidateAndPropagateResult carries the validation report together with
// the propagation outcome of one ValidateAndPropagate call.
type ValidateAndPropagateResult struct {
	Report        types.ValidationReport
	Propagation   *propagation.Result
	CausalSkipped bool
}

// Config holds configuration for the Client.
type Config struct {
	// Epsilon is the epistemic convergence tolerance.
	Epsilon float64
	// MaxIterations caps the epistemic fixed-point loop.
	MaxIterations int
	// DependencyThreshold gates dependency edge influence.
	DependencyThreshold float64
	// Combine folds causal contributions. Nil means weighted sum.
	Combine propagation.Combiner
	// TopKPaths is how many critical paths to return.
	TopKPaths int
	// MaxPathLength caps critical path length in nodes.
	MaxPathLength int
	// MaxPathsExplored caps the critical path search.
	MaxPathsExplored int
	// MaxConcurrency bounds validator fan-out.
	MaxConcurrency int
}

// ConfigFromEngine maps the file-level engine section onto a Config.
func ConfigFromEngine(ec config.EngineConfig) *Config {
	return &Config{
		Epsilon:             ec.Epsilon,
		MaxIterations:       ec.MaxIterations,
		DependencyThreshold: ec.DependencyThreshold,
		TopKPaths:           ec.TopKPaths,
		MaxPathLength:       ec.MaxPathLength,
		MaxPathsExplored:    ec.MaxPathsExplored,
		MaxConcurrency:      ec.MaxConcurrency,
	}
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithHistory attaches an embedded snapshot archive. The Client takes
// ownership and closes it on Close.
func WithHistory(store *history.Store) Option {
	return func(c *Client) { c.history = store }
}

// WithGraphStore attaches an external graph database for whole-graph
// persistence.
func WithGraphStore(store driver.GraphStore) Option {
	return func(c *Client) { c.store = store }
}

// WithEventHandler registers a handler for domain events.
func WithEventHandler(handler types.EventHandler) Option {
	return func(c *Client) { c.events = handler }
}

// Client is the main implementation of the Engine interface.
type Client struct {
	config     *Config
	validator  *validation.Validator
	propagator *propagation.Service
	detector   *analysis.ContradictionDetector
	history    *history.Store
	store      driver.GraphStore
	events     types.EventHandler
	logger     *slog.Logger
}

var _ Engine = (*Client)(nil)

// NewClient creates a Client with the provided configuration. A nil config
// uses defaults everywhere.
func NewClient(cfg *Config, opts ...Option) *Client {
	if cfg == nil {
		cfg = &Config{}
	}

	c := &Client{
		config:   cfg,
		detector: analysis.NewContradictionDetector(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.validator = validation.NewValidator(validation.Config{
		MaxConcurrency: cfg.MaxConcurrency,
		Events:         c.events,
		Logger:         c.logger,
	})
	c.propagator = propagation.NewService(propagation.Config{
		Epsilon:             cfg.Epsilon,
		MaxIterations:       cfg.MaxIterations,
		DependencyThreshold: cfg.DependencyThreshold,
		Combine:             cfg.Combine,
		Logger:              c.logger,
	})
	return c
}

// Close releases the history store and the graph store, when attached.
func (c *Client) Close(ctx context.Context) error {
	var first error
	if c.history != nil {
		if err := c.history.Close(); err != nil {
			first = err
		}
	}
	if c.store != nil {
		if err := c.store.Close(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (c *Client) emit(e types.Event) {
	if c.events != nil {
		c.events(e)
	}
}

func (c *Client) pathConfig() analysis.PathConfig {
	return analysis.PathConfig{
		TopK:             c.config.TopKPaths,
		MaxPathLength:    c.config.MaxPathLength,
		MaxPathsExplored: c.config.MaxPathsExplored,
	}
}
