package validation

import (
	"context"
	"log/slog"

	"github.com/soundprediction/cogito/pkg/types"
	"github.com/soundprediction/cogito/pkg/utils"
)

// GraphValidator is the contract shared by the concrete validators.
type GraphValidator interface {
	Name() string
	Validate(g *types.Graph) []types.Violation
}

var (
	_ GraphValidator = (*CausalValidator)(nil)
	_ GraphValidator = (*EpistemicValidator)(nil)
	_ GraphValidator = (*StructuralValidator)(nil)
)

// Config holds orchestrator options.
type Config struct {
	// MaxConcurrency bounds how many validators run at once. Zero or
	// negative means one goroutine per validator.
	MaxConcurrency int
	// Events receives CycleDetected and ContradictionDetected events as
	// violations are found. Nil disables dispatch.
	Events types.EventHandler
	Logger *slog.Logger
}

// WithDefaults fills unset fields with defaults.
func (c Config) WithDefaults() Config {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Validator runs the causal, epistemic, and structural validators against a
// snapshot and merges their findings into one report. The validators share
// no state, so they run concurrently; the merged order is fixed regardless
// of completion order.
type Validator struct {
	config     Config
	validators []GraphValidator
}

// NewValidator creates a Validator with the full validator set.
func NewValidator(config Config) *Validator {
	return &Validator{
		config: config.WithDefaults(),
		validators: []GraphValidator{
			NewCausalValidator(),
			NewEpistemicValidator(),
			NewStructuralValidator(),
		},
	}
}

// Validate runs every validator and returns the merged report, causal
// first, then epistemic, then structural. Violations are data; Validate
// fails only when a validator panics or the context is cancelled.
func (v *Validator) Validate(ctx context.Context, g *types.Graph) (types.ValidationReport, error) {
	functions := make([]func() ([]types.Violation, error), len(v.validators))
	for i, gv := range v.validators {
		gv := gv
		functions[i] = func() ([]types.Violation, error) {
			return gv.Validate(g), nil
		}
	}

	limit := v.config.MaxConcurrency
	if limit <= 0 {
		limit = len(v.validators)
	}
	results, errs := utils.ExecuteWithResults(ctx, limit, functions...)
	for _, err := range errs {
		if err != nil {
			return types.ValidationReport{}, err
		}
	}

	var report types.ValidationReport
	for i, violations := range results {
		v.config.Logger.Debug("validator finished",
			"validator", v.validators[i].Name(),
			"violations", len(violations))
		report.Violations = append(report.Violations, violations...)
	}

	v.dispatch(report)
	return report, nil
}

func (v *Validator) dispatch(report types.ValidationReport) {
	if v.config.Events == nil {
		return
	}
	for _, violation := range report.Violations {
		switch violation.Kind {
		case types.CausalCycle:
			v.config.Events(types.NewCycleDetected("", types.CausalEdge, violation.NodeIDs))
		case types.RefinementCycle:
			v.config.Events(types.NewCycleDetected("", types.RefinementEdge, violation.NodeIDs))
		case types.BeliefConflict:
			if len(violation.NodeIDs) == 2 {
				v.config.Events(types.NewContradictionDetected("", violation.NodeIDs[0], violation.NodeIDs[1]))
			}
		}
	}
}
