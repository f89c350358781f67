package types

import "fmt"

// Severity classifies a violation's impact on downstream processing.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ViolationKind identifies the rule a violation breaches.
type ViolationKind string

const (
	CausalCycle               ViolationKind = "causal_cycle"
	TemporalIncoherence       ViolationKind = "temporal_incoherence"
	BeliefConflict            ViolationKind = "belief_conflict"
	AsymmetricIncompatibility ViolationKind = "asymmetric_incompatibility"
	SourceSelfContradiction   ViolationKind = "source_self_contradiction"
	ConfidenceOutOfRange      ViolationKind = "confidence_out_of_range"
	RefinementCycle           ViolationKind = "refinement_cycle"
	TransitivityContradiction ViolationKind = "transitivity_contradiction"
)

// Violation records a single breach of a consistency rule. NodeIDs and
// EdgeIDs name the offending elements; both are kept in the deterministic
// order the producing validator emits.
type Violation struct {
	Kind         ViolationKind `json:"kind" yaml:"kind"`
	Severity     Severity      `json:"severity" yaml:"severity"`
	NodeIDs      []string      `json:"node_ids,omitempty" yaml:"node_ids,omitempty"`
	EdgeIDs      []string      `json:"edge_ids,omitempty" yaml:"edge_ids,omitempty"`
	Message      string        `json:"message" yaml:"message"`
	SuggestedFix string        `json:"suggested_fix,omitempty" yaml:"suggested_fix,omitempty"`
}

func (v Violation) String() string {
	return fmt.Sprintf("[%s] %s: %s", v.Severity, v.Kind, v.Message)
}

// ValidationReport aggregates the violations found in one validation pass.
type ValidationReport struct {
	Violations []Violation `json:"violations" yaml:"violations"`
}

// Passing reports whether no error-severity violation was found. Warnings
// and infos do not fail a graph.
func (r ValidationReport) Passing() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityError {
			return false
		}
	}
	return true
}

// Errors returns only the error-severity violations.
func (r ValidationReport) Errors() []Violation {
	return r.filter(SeverityError)
}

// Warnings returns only the warning-severity violations.
func (r ValidationReport) Warnings() []Violation {
	return r.filter(SeverityWarning)
}

func (r ValidationReport) filter(s Severity) []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Severity == s {
			out = append(out, v)
		}
	}
	return out
}

// ByKind returns the violations of one kind, preserving report order.
func (r ValidationReport) ByKind(kind ViolationKind) []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Kind == kind {
			out = append(out, v)
		}
	}
	return out
}

// Merge appends another report's violations after this report's own.
func (r ValidationReport) Merge(other ValidationReport) ValidationReport {
	merged := make([]Violation, 0, len(r.Violations)+len(other.Violations))
	merged = append(merged, r.Violations...)
	merged = append(merged, other.Violations...)
	return ValidationReport{Violations: merged}
}
