package dto

import (
	"github.com/soundprediction/cogito/pkg/analysis"
	"github.com/soundprediction/cogito/pkg/types"
)

// ValidateRequest represents a request to validate a graph
type ValidateRequest struct {
	GraphPayload
}

// ValidateResponse carries the validation report for a graph
type ValidateResponse struct {
	Passing    bool              `json:"passing"`
	Violations []types.Violation `json:"violations"`
}

// PropagateRequest represents a request to propagate confidence or activation
type PropagateRequest struct {
	GraphPayload
	Starting []string `json:"starting,omitempty"`
}

// PropagateResponse carries the derived snapshot and convergence data
type PropagateResponse struct {
	Graph      types.Document `json:"graph"`
	Affected   []string       `json:"affected"`
	Iterations int            `json:"iterations"`
	Converged  bool           `json:"converged"`
	MaxDelta   float64        `json:"max_delta"`
}

// ReviseRequest represents a request to validate and propagate in one pass
type ReviseRequest struct {
	GraphPayload
	GraphID  string   `json:"graph_id" binding:"required"`
	Starting []string `json:"starting,omitempty"`
}

// Validate performs validation on ReviseRequest
func (r *ReviseRequest) Validate() error {
	if err := ValidateGraphID(r.GraphID); err != nil {
		return err
	}
	return r.GraphPayload.Validate()
}

// ReviseResponse carries the combined validation and propagation outcome
type ReviseResponse struct {
	Report        ValidateResponse  `json:"report"`
	Propagation   PropagateResponse `json:"propagation"`
	CausalSkipped bool              `json:"causal_skipped"`
}

// ContradictionsResponse carries the conflict clusters found in a graph
type ContradictionsResponse struct {
	Clusters []analysis.ConflictCluster `json:"clusters"`
}

// ConnectivityResponse carries components and articulation points
type ConnectivityResponse struct {
	Components         [][]string `json:"components"`
	ArticulationPoints []string   `json:"articulation_points"`
}

// PathsRequest represents a request for the critical paths into a node
type PathsRequest struct {
	GraphPayload
	Target string `json:"target" binding:"required"`
}

// Validate performs validation on PathsRequest
func (r *PathsRequest) Validate() error {
	if r.Target == "" {
		return ErrEmptyTarget
	}
	return r.GraphPayload.Validate()
}

// PathsResponse carries the ranked paths
type PathsResponse struct {
	Paths     []analysis.Path `json:"paths"`
	Truncated bool            `json:"truncated"`
}

// MetricsResponse carries per-node structural measures
type MetricsResponse struct {
	Nodes []analysis.NodeMetrics `json:"nodes"`
}

// SnapshotRequest represents a request to archive a graph snapshot
type SnapshotRequest struct {
	GraphPayload
}

// SnapshotResponse confirms an archived snapshot
type SnapshotResponse struct {
	GraphID string `json:"graph_id"`
	Version int    `json:"version"`
}

// SnapshotVersionsResponse lists the archived versions of a graph
type SnapshotVersionsResponse struct {
	GraphID  string `json:"graph_id"`
	Versions []int  `json:"versions"`
}

// PersistGraphRequest represents a request to write a graph to the
// external graph store
type PersistGraphRequest struct {
	GraphPayload
}

// PersistGraphResponse confirms an externally stored graph
type PersistGraphResponse struct {
	GraphID string `json:"graph_id"`
	Nodes   int    `json:"nodes"`
	Edges   int    `json:"edges"`
}
