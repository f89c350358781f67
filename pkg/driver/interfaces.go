package driver

import (
	"context"
	"errors"

	"github.com/soundprediction/cogito/pkg/types"
)

// ErrGraphNotFound is returned by LoadGraph when the store holds no copy
// of the requested graph.
var ErrGraphNotFound = errors.New("graph not found")

// GraphStore persists whole snapshots in an external graph database. It is
// the optional durability layer behind the engine; the engine itself only
// ever works on in-memory snapshots.
type GraphStore interface {
	// SaveGraph replaces the stored copy of the graph with the snapshot.
	SaveGraph(ctx context.Context, graphID string, g *types.Graph) error
	// LoadGraph rebuilds a snapshot from the stored copy.
	LoadGraph(ctx context.Context, graphID string) (*types.Graph, error)
	// DeleteGraph removes every stored node and edge of the graph.
	DeleteGraph(ctx context.Context, graphID string) error
	// Close releases the underlying connection.
	Close(ctx context.Context) error
}

var (
	_ GraphStore = (*Neo4jDriver)(nil)
	_ GraphStore = (*CircuitBreakerStore)(nil)
)
