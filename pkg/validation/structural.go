package validation

import (
	"fmt"
	"strings"

	"github.com/soundprediction/cogito/pkg/types"
)

// StructuralValidator checks the refinement hierarchy. Refinement must be
// acyclic, and an explicit refinement edge may not run against the
// direction implied by a transitive refinement chain.
type StructuralValidator struct{}

// NewStructuralValidator creates a StructuralValidator.
func NewStructuralValidator() *StructuralValidator {
	return &StructuralValidator{}
}

// Name identifies the validator in logs and reports.
func (v *StructuralValidator) Name() string { return "structural" }

// Validate reports one RefinementCycle violation per cycle in the
// refinement subgraph and a TransitivityContradiction for every explicit
// refinement edge that contradicts a two-or-more-hop refinement chain.
func (v *StructuralValidator) Validate(g *types.Graph) []types.Violation {
	var violations []types.Violation

	for _, cycle := range findCycles(g, types.RefinementEdge) {
		violations = append(violations, types.Violation{
			Kind:         types.RefinementCycle,
			Severity:     types.SeverityError,
			NodeIDs:      cycle,
			EdgeIDs:      cycleEdgeIDs(cycle, types.RefinementEdge),
			Message:      fmt.Sprintf("refinement cycle: %s", strings.Join(cycle, " -> ")),
			SuggestedFix: "a refinement hierarchy must be acyclic",
		})
	}

	reach := refinementReach(g)
	for _, id := range g.NodeIDs() {
		for _, e := range g.OutEdges(id, types.RefinementEdge) {
			// Explicit target->...->source chain of length >= 2 means the
			// edge runs against the implied direction.
			if steps, ok := reach[pairKey(e.Target, e.Source)]; ok && steps >= 2 {
				violations = append(violations, types.Violation{
					Kind:     types.TransitivityContradiction,
					Severity: types.SeverityError,
					NodeIDs:  []string{e.Source, e.Target},
					EdgeIDs:  []string{e.ID()},
					Message: fmt.Sprintf("edge %s contradicts the transitive refinement chain from %s to %s",
						e.ID(), e.Target, e.Source),
				})
			}
		}
	}

	return violations
}

func pairKey(a, b string) string { return a + "\x00" + b }

// refinementReach maps (from, to) pairs to the minimum number of refinement
// hops between them, computed by BFS from every node in ascending order.
func refinementReach(g *types.Graph) map[string]int {
	reach := make(map[string]int)
	for _, start := range g.NodeIDs() {
		dist := map[string]int{start: 0}
		queue := []string{start}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, e := range g.OutEdges(cur, types.RefinementEdge) {
				if _, seen := dist[e.Target]; seen {
					continue
				}
				dist[e.Target] = dist[cur] + 1
				reach[pairKey(start, e.Target)] = dist[e.Target]
				queue = append(queue, e.Target)
			}
		}
	}
	return reach
}
