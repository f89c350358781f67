package propagation

import "log/slog"

// Combiner folds incoming causal contributions into one activation value.
// Contributions arrive in ascending source id order, already signed by
// polarity and scaled by edge weight.
type Combiner func(contributions []float64) float64

// WeightedSum is the default Combiner: the sum of contributions clipped
// to [0,1].
func WeightedSum(contributions []float64) float64 {
	var sum float64
	for _, c := range contributions {
		sum += c
	}
	return clip01(sum)
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Config holds the numeric knobs for both propagators.
type Config struct {
	// Epsilon is the convergence tolerance for the epistemic fixed point.
	Epsilon float64
	// MaxIterations caps the epistemic fixed-point loop.
	MaxIterations int
	// DependencyThreshold gates dependency edges: influence flows only when
	// the source confidence reaches it.
	DependencyThreshold float64
	// Combine folds causal contributions. Nil means WeightedSum.
	Combine Combiner
	Logger  *slog.Logger
}

// WithDefaults fills unset fields with defaults.
func (c Config) WithDefaults() Config {
	if c.Epsilon <= 0 {
		c.Epsilon = 1e-6
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = 100
	}
	if c.DependencyThreshold <= 0 {
		c.DependencyThreshold = 0.5
	}
	if c.Combine == nil {
		c.Combine = WeightedSum
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}
