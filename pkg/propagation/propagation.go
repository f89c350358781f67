package propagation

import (
	"github.com/soundprediction/cogito/pkg/types"
)

// Service sequences the two propagators. Each call consumes one snapshot
// and returns a new one; re-running a call on its own output with the same
// starting set leaves the values unchanged within Epsilon.
type Service struct {
	config    Config
	epistemic *Epistemic
	causal    *Causal
}

// NewService creates a propagation Service.
func NewService(config Config) *Service {
	config = config.WithDefaults()
	return &Service{
		config:    config,
		epistemic: NewEpistemic(config),
		causal:    NewCausal(config),
	}
}

// PropagateEpistemic runs the epistemic fixed point from starting.
func (s *Service) PropagateEpistemic(g *types.Graph, starting []string) (*Result, error) {
	return s.epistemic.Propagate(g, starting)
}

// PropagateCausal runs the causal topological pass from starting.
func (s *Service) PropagateCausal(g *types.Graph, starting []string) (*Result, error) {
	return s.causal.Propagate(g, starting)
}

// PropagateAll runs the epistemic pass and feeds its snapshot into the
// causal pass, since confidence often gates activation. The returned
// Result carries the final snapshot and the epistemic convergence state.
func (s *Service) PropagateAll(g *types.Graph, starting []string) (*Result, error) {
	epistemicResult, err := s.epistemic.Propagate(g, starting)
	if err != nil {
		return nil, err
	}
	causalResult, err := s.causal.Propagate(epistemicResult.Graph, starting)
	if err != nil {
		return nil, err
	}

	affected := mergeIDs(epistemicResult.Affected, causalResult.Affected)
	return &Result{
		Graph:      causalResult.Graph,
		Affected:   affected,
		Iterations: epistemicResult.Iterations,
		Converged:  epistemicResult.Converged,
		MaxDelta:   epistemicResult.MaxDelta,
	}, nil
}

func mergeIDs(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, id := range a {
		seen[id] = struct{}{}
	}
	for _, id := range b {
		seen[id] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	return types.SortIDs(out)
}
