package validation

import (
	"fmt"
	"sort"

	"github.com/soundprediction/cogito/pkg/types"
)

// EpistemicValidator checks belief coherence. Nodes are grouped by
// epistemic context (the empty context is one shared frame) and compared
// for conflicts within each group; incompatibility declarations must be
// symmetric; nodes sharing a source must not contradict each other.
type EpistemicValidator struct{}

// NewEpistemicValidator creates an EpistemicValidator.
func NewEpistemicValidator() *EpistemicValidator {
	return &EpistemicValidator{}
}

// Name identifies the validator in logs and reports.
func (v *EpistemicValidator) Name() string { return "epistemic" }

type conflictPair struct {
	a, b    string // canonical, a < b
	context string
	edgeID  string // set when the conflict comes from a contradiction edge
}

// Validate reports confidence domain breaches, asymmetric incompatibility
// declarations, one BeliefConflict per conflicting pair, and a
// SourceSelfContradiction for each conflicting pair sharing a source.
func (v *EpistemicValidator) Validate(g *types.Graph) []types.Violation {
	var violations []types.Violation

	for _, id := range g.NodeIDs() {
		n, _ := g.Node(id)
		if n.Confidence != nil && (*n.Confidence < 0 || *n.Confidence > 1) {
			violations = append(violations, types.Violation{
				Kind:     types.ConfidenceOutOfRange,
				Severity: types.SeverityError,
				NodeIDs:  []string{id},
				Message:  fmt.Sprintf("node %s has confidence %v outside [0,1]", id, *n.Confidence),
			})
		}
	}

	violations = append(violations, v.checkIncompatibilitySymmetry(g)...)

	pairs := v.conflictPairs(g)
	for _, p := range pairs {
		violation := types.Violation{
			Kind:     types.BeliefConflict,
			Severity: types.SeverityWarning,
			NodeIDs:  []string{p.a, p.b},
			Message:  fmt.Sprintf("nodes %s and %s hold conflicting beliefs in context %q", p.a, p.b, p.context),
		}
		if p.edgeID != "" {
			violation.EdgeIDs = []string{p.edgeID}
		}
		violations = append(violations, violation)
	}

	for _, p := range pairs {
		na, _ := g.Node(p.a)
		nb, _ := g.Node(p.b)
		if na.Source != "" && na.Source == nb.Source {
			violations = append(violations, types.Violation{
				Kind:     types.SourceSelfContradiction,
				Severity: types.SeverityError,
				NodeIDs:  []string{p.a, p.b},
				Message:  fmt.Sprintf("source %q contradicts itself through nodes %s and %s", na.Source, p.a, p.b),
			})
		}
	}

	return violations
}

// conflictPairs collects the canonical conflicting pairs per context, from
// contradiction edges and from symmetric incompatibility declarations,
// deduplicated and sorted.
func (v *EpistemicValidator) conflictPairs(g *types.Graph) []conflictPair {
	byContext := func(id string) string {
		n, _ := g.Node(id)
		return n.EpistemicContext
	}

	seen := make(map[[2]string]conflictPair)
	record := func(a, b, edgeID string) {
		if b < a {
			a, b = b, a
		}
		key := [2]string{a, b}
		if existing, ok := seen[key]; ok {
			if existing.edgeID == "" && edgeID != "" {
				existing.edgeID = edgeID
				seen[key] = existing
			}
			return
		}
		seen[key] = conflictPair{a: a, b: b, context: byContext(a), edgeID: edgeID}
	}

	for _, e := range g.EdgesByKind(types.ContradictionEdge) {
		if byContext(e.Source) != byContext(e.Target) {
			continue
		}
		record(e.Source, e.Target, e.ID())
	}

	for _, id := range g.NodeIDs() {
		n, _ := g.Node(id)
		for _, other := range n.IncompatibleWith {
			peer, ok := g.Node(other)
			if !ok || peer.EpistemicContext != n.EpistemicContext {
				continue
			}
			if peer.IncompatibleWithID(id) {
				record(id, other, "")
			}
		}
	}

	pairs := make([]conflictPair, 0, len(seen))
	for _, p := range seen {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].a != pairs[j].a {
			return pairs[i].a < pairs[j].a
		}
		return pairs[i].b < pairs[j].b
	})
	return pairs
}

func (v *EpistemicValidator) checkIncompatibilitySymmetry(g *types.Graph) []types.Violation {
	var violations []types.Violation
	for _, id := range g.NodeIDs() {
		n, _ := g.Node(id)
		for _, other := range types.SortIDs(n.IncompatibleWith) {
			peer, ok := g.Node(other)
			if !ok {
				continue
			}
			if !peer.IncompatibleWithID(id) {
				violations = append(violations, types.Violation{
					Kind:         types.AsymmetricIncompatibility,
					Severity:     types.SeverityError,
					NodeIDs:      []string{id, other},
					Message:      fmt.Sprintf("node %s declares %s incompatible but not vice versa", id, other),
					SuggestedFix: fmt.Sprintf("declare %s incompatible with %s as well", other, id),
				})
			}
		}
	}
	return violations
}
