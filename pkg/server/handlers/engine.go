package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	jsonrepair "github.com/kaptinlin/jsonrepair"

	"github.com/soundprediction/cogito"
	"github.com/soundprediction/cogito/pkg/driver"
	"github.com/soundprediction/cogito/pkg/history"
	"github.com/soundprediction/cogito/pkg/propagation"
	"github.com/soundprediction/cogito/pkg/server/dto"
	"github.com/soundprediction/cogito/pkg/types"
)

// EngineHandler handles graph validation, propagation and analysis requests
type EngineHandler struct {
	engine cogito.Engine
}

// NewEngineHandler creates a new engine handler
func NewEngineHandler(e cogito.Engine) *EngineHandler {
	return &EngineHandler{
		engine: e,
	}
}

// bindRequest decodes a JSON request body into target. Bodies produced by
// upstream tooling are often slightly malformed, so the raw bytes run
// through a repair pass before unmarshalling.
func bindRequest(c *gin.Context, target interface{}) error {
	body, err := c.GetRawData()
	if err != nil {
		return err
	}
	content := string(body)
	content, _ = jsonrepair.JSONRepair(content)
	return json.Unmarshal([]byte(content), target)
}

// respondError maps engine errors onto HTTP statuses
func respondError(c *gin.Context, err error) {
	var malformed *types.MalformedGraphError
	switch {
	case errors.As(err, &malformed):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "malformed_graph",
			Message: err.Error(),
			Code:    http.StatusBadRequest,
		})
	case errors.Is(err, propagation.ErrCyclicCausalPropagation):
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{
			Error:   "cyclic_causal_propagation",
			Message: err.Error(),
			Code:    http.StatusUnprocessableEntity,
		})
	case errors.Is(err, history.ErrSnapshotNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "snapshot_not_found",
			Message: err.Error(),
			Code:    http.StatusNotFound,
		})
	case errors.Is(err, driver.ErrGraphNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{
			Error:   "graph_not_found",
			Message: err.Error(),
			Code:    http.StatusNotFound,
		})
	case errors.Is(err, cogito.ErrNoHistory):
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{
			Error:   "history_disabled",
			Message: err.Error(),
			Code:    http.StatusServiceUnavailable,
		})
	case errors.Is(err, cogito.ErrNoGraphStore):
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{
			Error:   "graph_store_disabled",
			Message: err.Error(),
			Code:    http.StatusServiceUnavailable,
		})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
			Code:    http.StatusInternalServerError,
		})
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error:   "invalid_request",
		Message: err.Error(),
		Code:    http.StatusBadRequest,
	})
}

// graphFromPayload assembles the snapshot carried in a request body
func graphFromPayload(c *gin.Context, p *dto.GraphPayload) (*types.Graph, bool) {
	if err := p.Validate(); err != nil {
		badRequest(c, err)
		return nil, false
	}
	g, err := p.Graph.Graph()
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return g, true
}

func propagateResponse(result *propagation.Result) dto.PropagateResponse {
	return dto.PropagateResponse{
		Graph:      types.DocumentFromGraph(result.Graph),
		Affected:   result.Affected,
		Iterations: result.Iterations,
		Converged:  result.Converged,
		MaxDelta:   result.MaxDelta,
	}
}

// Validate handles POST /api/v1/validate
func (h *EngineHandler) Validate(c *gin.Context) {
	var req dto.ValidateRequest
	if err := bindRequest(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	g, ok := graphFromPayload(c, &req.GraphPayload)
	if !ok {
		return
	}

	report, err := h.engine.Validate(c.Request.Context(), g)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ValidateResponse{
		Passing:    report.Passing(),
		Violations: report.Violations,
	})
}

type propagateFunc func(*dto.PropagateRequest, *types.Graph) (*propagation.Result, error)

func (h *EngineHandler) propagate(c *gin.Context, run propagateFunc) {
	var req dto.PropagateRequest
	if err := bindRequest(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	g, ok := graphFromPayload(c, &req.GraphPayload)
	if !ok {
		return
	}

	result, err := run(&req, g)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, propagateResponse(result))
}

// Propagate handles POST /api/v1/propagate - epistemic then causal
func (h *EngineHandler) Propagate(c *gin.Context) {
	h.propagate(c, func(req *dto.PropagateRequest, g *types.Graph) (*propagation.Result, error) {
		return h.engine.PropagateAll(c.Request.Context(), g, req.Starting)
	})
}

// PropagateEpistemic handles POST /api/v1/propagate/epistemic
func (h *EngineHandler) PropagateEpistemic(c *gin.Context) {
	h.propagate(c, func(req *dto.PropagateRequest, g *types.Graph) (*propagation.Result, error) {
		return h.engine.PropagateEpistemic(c.Request.Context(), g, req.Starting)
	})
}

// PropagateCausal handles POST /api/v1/propagate/causal
func (h *EngineHandler) PropagateCausal(c *gin.Context) {
	h.propagate(c, func(req *dto.PropagateRequest, g *types.Graph) (*propagation.Result, error) {
		return h.engine.PropagateCausal(c.Request.Context(), g, req.Starting)
	})
}

// Revise handles POST /api/v1/revise - validate then propagate one graph
func (h *EngineHandler) Revise(c *gin.Context) {
	var req dto.ReviseRequest
	if err := bindRequest(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err)
		return
	}
	g, err := req.Graph.Graph()
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.engine.ValidateAndPropagate(c.Request.Context(), req.GraphID, g, req.Starting)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ReviseResponse{
		Report: dto.ValidateResponse{
			Passing:    result.Report.Passing(),
			Violations: result.Report.Violations,
		},
		Propagation:   propagateResponse(result.Propagation),
		CausalSkipped: result.CausalSkipped,
	})
}

// Contradictions handles POST /api/v1/analyze/contradictions
func (h *EngineHandler) Contradictions(c *gin.Context) {
	var req dto.ValidateRequest
	if err := bindRequest(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	g, ok := graphFromPayload(c, &req.GraphPayload)
	if !ok {
		return
	}

	clusters, err := h.engine.DetectContradictions(c.Request.Context(), g)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ContradictionsResponse{Clusters: clusters})
}

// Connectivity handles POST /api/v1/analyze/connectivity
func (h *EngineHandler) Connectivity(c *gin.Context) {
	var req dto.ValidateRequest
	if err := bindRequest(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	g, ok := graphFromPayload(c, &req.GraphPayload)
	if !ok {
		return
	}

	result, err := h.engine.AnalyzeConnectivity(c.Request.Context(), g)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ConnectivityResponse{
		Components:         result.Components,
		ArticulationPoints: result.ArticulationPoints,
	})
}

// Paths handles POST /api/v1/analyze/paths
func (h *EngineHandler) Paths(c *gin.Context) {
	var req dto.PathsRequest
	if err := bindRequest(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		badRequest(c, err)
		return
	}
	g, err := req.Graph.Graph()
	if err != nil {
		respondError(c, err)
		return
	}

	result, err := h.engine.CriticalPaths(c.Request.Context(), g, req.Target)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PathsResponse{
		Paths:     result.Paths,
		Truncated: result.Truncated,
	})
}

// Metrics handles POST /api/v1/analyze/metrics
func (h *EngineHandler) Metrics(c *gin.Context) {
	var req dto.ValidateRequest
	if err := bindRequest(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	g, ok := graphFromPayload(c, &req.GraphPayload)
	if !ok {
		return
	}

	metrics, err := h.engine.Metrics(c.Request.Context(), g)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MetricsResponse{Nodes: metrics})
}

// SaveSnapshot handles POST /api/v1/snapshots/:graph_id
func (h *EngineHandler) SaveSnapshot(c *gin.Context) {
	graphID := c.Param("graph_id")
	if err := dto.ValidateGraphID(graphID); err != nil {
		badRequest(c, err)
		return
	}

	var req dto.SnapshotRequest
	if err := bindRequest(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	g, ok := graphFromPayload(c, &req.GraphPayload)
	if !ok {
		return
	}

	if err := h.engine.SaveSnapshot(c.Request.Context(), graphID, g); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.SnapshotResponse{
		GraphID: graphID,
		Version: g.Version(),
	})
}

// ListSnapshotVersions handles GET /api/v1/snapshots/:graph_id
func (h *EngineHandler) ListSnapshotVersions(c *gin.Context) {
	graphID := c.Param("graph_id")
	if err := dto.ValidateGraphID(graphID); err != nil {
		badRequest(c, err)
		return
	}

	versions, err := h.engine.SnapshotVersions(c.Request.Context(), graphID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.SnapshotVersionsResponse{
		GraphID:  graphID,
		Versions: versions,
	})
}

// GetSnapshot handles GET /api/v1/snapshots/:graph_id/:version
func (h *EngineHandler) GetSnapshot(c *gin.Context) {
	graphID := c.Param("graph_id")
	if err := dto.ValidateGraphID(graphID); err != nil {
		badRequest(c, err)
		return
	}

	version, err := strconv.Atoi(c.Param("version"))
	if err != nil {
		badRequest(c, errors.New("version must be an integer"))
		return
	}

	g, err := h.engine.LoadSnapshot(c.Request.Context(), graphID, version)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.DocumentFromGraph(g))
}

// PersistGraph handles PUT /api/v1/graphs/:graph_id
func (h *EngineHandler) PersistGraph(c *gin.Context) {
	graphID := c.Param("graph_id")
	if err := dto.ValidateGraphID(graphID); err != nil {
		badRequest(c, err)
		return
	}

	var req dto.PersistGraphRequest
	if err := bindRequest(c, &req); err != nil {
		badRequest(c, err)
		return
	}
	g, ok := graphFromPayload(c, &req.GraphPayload)
	if !ok {
		return
	}

	if err := h.engine.PersistGraph(c.Request.Context(), graphID, g); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PersistGraphResponse{
		GraphID: graphID,
		Nodes:   g.NodeCount(),
		Edges:   g.EdgeCount(),
	})
}

// FetchGraph handles GET /api/v1/graphs/:graph_id
func (h *EngineHandler) FetchGraph(c *gin.Context) {
	graphID := c.Param("graph_id")
	if err := dto.ValidateGraphID(graphID); err != nil {
		badRequest(c, err)
		return
	}

	g, err := h.engine.FetchGraph(c.Request.Context(), graphID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.DocumentFromGraph(g))
}

// DeleteGraph handles DELETE /api/v1/graphs/:graph_id
func (h *EngineHandler) DeleteGraph(c *gin.Context) {
	graphID := c.Param("graph_id")
	if err := dto.ValidateGraphID(graphID); err != nil {
		badRequest(c, err)
		return
	}

	if err := h.engine.DeleteGraph(c.Request.Context(), graphID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
