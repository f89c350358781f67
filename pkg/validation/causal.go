package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/soundprediction/cogito/pkg/types"
)

// CausalValidator checks the causal subgraph for cycles and temporal
// incoherence. Causal edges must form a DAG and may not point backwards in
// time when both endpoints carry timestamps.
type CausalValidator struct{}

// NewCausalValidator creates a CausalValidator.
func NewCausalValidator() *CausalValidator {
	return &CausalValidator{}
}

// Name identifies the validator in logs and reports.
func (v *CausalValidator) Name() string { return "causal" }

// Validate reports one CausalCycle violation per cycle found in the causal
// subgraph and one TemporalIncoherence violation per causal edge whose
// source timestamp is after its target timestamp.
func (v *CausalValidator) Validate(g *types.Graph) []types.Violation {
	var violations []types.Violation

	for _, cycle := range findCycles(g, types.CausalEdge) {
		violations = append(violations, types.Violation{
			Kind:         types.CausalCycle,
			Severity:     types.SeverityError,
			NodeIDs:      cycle,
			EdgeIDs:      cycleEdgeIDs(cycle, types.CausalEdge),
			Message:      fmt.Sprintf("causal cycle: %s", strings.Join(cycle, " -> ")),
			SuggestedFix: "remove or reverse one causal edge in the cycle",
		})
	}

	for _, e := range g.EdgesByKind(types.CausalEdge) {
		src, _ := g.Node(e.Source)
		tgt, _ := g.Node(e.Target)
		if src.Timestamp == nil || tgt.Timestamp == nil {
			continue
		}
		if src.Timestamp.After(*tgt.Timestamp) {
			violations = append(violations, types.Violation{
				Kind:     types.TemporalIncoherence,
				Severity: types.SeverityError,
				NodeIDs:  []string{e.Source, e.Target},
				EdgeIDs:  []string{e.ID()},
				Message: fmt.Sprintf("causal edge %s points backwards in time: %s after %s",
					e.ID(), src.Timestamp.Format(time.RFC3339), tgt.Timestamp.Format(time.RFC3339)),
				SuggestedFix: "check the timestamps or the edge direction",
			})
		}
	}

	return violations
}

func cycleEdgeIDs(cycle []string, kind types.EdgeKind) []string {
	ids := make([]string, 0, len(cycle))
	for i, src := range cycle {
		tgt := cycle[(i+1)%len(cycle)]
		ids = append(ids, types.Edge{Source: src, Target: tgt, Kind: kind}.ID())
	}
	return ids
}
