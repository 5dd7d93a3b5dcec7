// SPDX-License-Identifier: MIT
package solvers

import (
	"math"

	"github.com/katalvlaran/lvnum/fault"
	"github.com/katalvlaran/lvnum/linalg"
	"github.com/katalvlaran/lvnum/numeric"
)

const (
	opIterationCountCriterion = "NewIterationCountCriterion"
	opResidualCriterion       = "NewResidualCriterion"
	opDivergenceCriterion     = "NewDivergenceCriterion"
)

// Criterion defaults.
const (
	// DefaultDivergenceWindow is the number of consecutive growing residuals
	// that count as divergence.
	DefaultDivergenceWindow = 10

	// DefaultMaximumRelativeIncrease is the per-iteration relative growth a
	// residual must exceed, in every step of the window, to count as divergence.
	DefaultMaximumRelativeIncrease = 0.08
)

// StopCriterion inspects one iteration and votes on the status.
//
// Criteria may keep state across iterations. A repeated call for the same
// iteration must re-evaluate that iteration, replacing the previous vote.
type StopCriterion[T numeric.Element] interface {
	// DetermineStatus returns Running or the terminal status this criterion
	// detects.
	DetermineStatus(iteration int, solution, source, residual *linalg.Vector[T]) Status
	// Reset forgets all state.
	Reset()
}

// ---------- IterationCountCriterion ----------

// IterationCountCriterion stops once iteration reaches its budget.
type IterationCountCriterion[T numeric.Element] struct {
	maximum int
}

// NewIterationCountCriterion returns a criterion allowing maximum iterations.
func NewIterationCountCriterion[T numeric.Element](maximum int) (*IterationCountCriterion[T], error) {
	if maximum < 0 {
		return nil, fault.Wrapf(opIterationCountCriterion, fault.ErrInvalidParameter, "maximum %d", maximum)
	}

	return &IterationCountCriterion[T]{maximum: maximum}, nil
}

// Maximum returns the budget.
func (c *IterationCountCriterion[T]) Maximum() int { return c.maximum }

// DetermineStatus implements StopCriterion.
func (c *IterationCountCriterion[T]) DetermineStatus(iteration int, _, _, _ *linalg.Vector[T]) Status {
	if iteration >= c.maximum {
		return MaxIterationsReached
	}

	return Running
}

// Reset implements StopCriterion.
func (c *IterationCountCriterion[T]) Reset() {}

// ---------- ResidualCriterion ----------

// ResidualOption configures a ResidualCriterion.
type ResidualOption func(*residualConfig)

type residualConfig struct {
	minimumBelow int
}

// WithMinimumIterationsBelowTolerance requires the residual to stay below
// tolerance for n further iterations before reporting Converged. Negative n
// is rejected by NewResidualCriterion.
func WithMinimumIterationsBelowTolerance(n int) ResidualOption {
	return func(c *residualConfig) { c.minimumBelow = n }
}

// ResidualCriterion converges when ‖r‖∞ ≤ tolerance·‖b‖∞, or ‖r‖∞ ≤
// tolerance when b is zero.
type ResidualCriterion[T numeric.Element] struct {
	tolerance    float64
	minimumBelow int

	belowSince int // first iteration of the current run below tolerance, -1 if none
}

// NewResidualCriterion returns a relative residual criterion.
func NewResidualCriterion[T numeric.Element](tolerance float64, opts ...ResidualOption) (*ResidualCriterion[T], error) {
	if math.IsNaN(tolerance) || tolerance < 0 {
		return nil, fault.Wrapf(opResidualCriterion, fault.ErrInvalidParameter, "tolerance %g", tolerance)
	}
	cfg := residualConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.minimumBelow < 0 {
		return nil, fault.Wrapf(opResidualCriterion, fault.ErrInvalidParameter, "minimum iterations below tolerance %d", cfg.minimumBelow)
	}

	return &ResidualCriterion[T]{tolerance: tolerance, minimumBelow: cfg.minimumBelow, belowSince: -1}, nil
}

// Tolerance returns the relative tolerance.
func (c *ResidualCriterion[T]) Tolerance() float64 { return c.tolerance }

// DetermineStatus implements StopCriterion.
func (c *ResidualCriterion[T]) DetermineStatus(iteration int, _, source, residual *linalg.Vector[T]) Status {
	limit := c.tolerance
	if bn := source.NormInf(); bn > 0 {
		limit *= bn
	}
	if !(residual.NormInf() <= limit) {
		c.belowSince = -1
		return Running
	}
	if c.belowSince < 0 || c.belowSince > iteration {
		c.belowSince = iteration
	}
	if iteration-c.belowSince >= c.minimumBelow {
		return Converged
	}

	return Running
}

// Reset implements StopCriterion.
func (c *ResidualCriterion[T]) Reset() { c.belowSince = -1 }

// ---------- DivergenceCriterion ----------

// DivergenceOption configures a DivergenceCriterion.
type DivergenceOption func(*divergenceConfig)

type divergenceConfig struct {
	window   int
	increase float64
}

// WithDivergenceWindow sets the number of consecutive growth steps that
// count as divergence (≥ 1).
func WithDivergenceWindow(n int) DivergenceOption {
	return func(c *divergenceConfig) { c.window = n }
}

// WithMaximumRelativeIncrease sets the relative growth per step (> 0).
func WithMaximumRelativeIncrease(f float64) DivergenceOption {
	return func(c *divergenceConfig) { c.increase = f }
}

// DivergenceCriterion reports DivergedNumerically when the residual 2-norm
// grew by more than the relative increase in each of the last window
// iterations.
type DivergenceCriterion[T numeric.Element] struct {
	window   int
	increase float64

	iterations []int
	norms      []float64 // last window+1 residual norms, oldest first
}

// NewDivergenceCriterion returns a divergence detector.
func NewDivergenceCriterion[T numeric.Element](opts ...DivergenceOption) (*DivergenceCriterion[T], error) {
	cfg := divergenceConfig{window: DefaultDivergenceWindow, increase: DefaultMaximumRelativeIncrease}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.window < 1 {
		return nil, fault.Wrapf(opDivergenceCriterion, fault.ErrInvalidParameter, "window %d", cfg.window)
	}
	if !(cfg.increase > 0) || math.IsInf(cfg.increase, 0) {
		return nil, fault.Wrapf(opDivergenceCriterion, fault.ErrInvalidParameter, "relative increase %g", cfg.increase)
	}

	return &DivergenceCriterion[T]{window: cfg.window, increase: cfg.increase}, nil
}

// DetermineStatus implements StopCriterion.
func (c *DivergenceCriterion[T]) DetermineStatus(iteration int, _, _, residual *linalg.Vector[T]) Status {
	norm := residual.Norm2()
	if math.IsNaN(norm) || math.IsInf(norm, 0) {
		return DivergedNumerically
	}
	last := len(c.iterations) - 1
	switch {
	case last >= 0 && c.iterations[last] == iteration:
		c.norms[last] = norm
	case last >= 0 && c.iterations[last] > iteration:
		c.Reset()
		fallthrough
	default:
		c.iterations = append(c.iterations, iteration)
		c.norms = append(c.norms, norm)
		if len(c.norms) > c.window+1 {
			c.iterations = c.iterations[1:]
			c.norms = c.norms[1:]
		}
	}
	if len(c.norms) <= c.window {
		return Running
	}
	for i := 1; i < len(c.norms); i++ {
		if c.norms[i] <= c.norms[i-1]*(1+c.increase) {
			return Running
		}
	}

	return DivergedNumerically
}

// Reset implements StopCriterion.
func (c *DivergenceCriterion[T]) Reset() {
	c.iterations = c.iterations[:0]
	c.norms = c.norms[:0]
}

// ---------- FailureCriterion ----------

// FailureCriterion reports DivergedNumerically as soon as the solution or
// the residual holds NaN or ±Inf.
type FailureCriterion[T numeric.Element] struct{}

// NewFailureCriterion returns the NaN/Inf detector.
func NewFailureCriterion[T numeric.Element]() *FailureCriterion[T] { return &FailureCriterion[T]{} }

// DetermineStatus implements StopCriterion.
func (FailureCriterion[T]) DetermineStatus(_ int, solution, _, residual *linalg.Vector[T]) Status {
	if residual.HasNonFinite() || solution.HasNonFinite() {
		return DivergedNumerically
	}

	return Running
}

// Reset implements StopCriterion.
func (FailureCriterion[T]) Reset() {}
