// SPDX-License-Identifier: MIT
package solvers_test

import (
	"math"
	"sync"
	"testing"

	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvnum/fault"
	"github.com/katalvlaran/lvnum/linalg"
	"github.com/katalvlaran/lvnum/solvers"
)

func vec(xs ...float64) *linalg.Vector[float64] { return linalg.NewVectorFromSlice(xs) }

func TestIterationCountCriterion(t *testing.T) {
	c := must.M1(solvers.NewIterationCountCriterion[float64](3))
	assert.Equal(t, 3, c.Maximum())
	assert.Equal(t, solvers.Running, c.DetermineStatus(2, nil, nil, nil))
	assert.Equal(t, solvers.MaxIterationsReached, c.DetermineStatus(3, nil, nil, nil))

	zero := must.M1(solvers.NewIterationCountCriterion[float64](0))
	assert.Equal(t, solvers.MaxIterationsReached, zero.DetermineStatus(0, nil, nil, nil))

	_, err := solvers.NewIterationCountCriterion[float64](-1)
	assert.ErrorIs(t, err, fault.ErrInvalidParameter)
}

func TestResidualCriterion(t *testing.T) {
	c := must.M1(solvers.NewResidualCriterion[float64](1e-3))
	assert.Equal(t, 1e-3, c.Tolerance())
	b := vec(10, -4)
	assert.Equal(t, solvers.Converged, c.DetermineStatus(0, nil, b, vec(0.005, 0.01)))
	assert.Equal(t, solvers.Running, c.DetermineStatus(1, nil, b, vec(0.02, 0)))
	assert.Equal(t, solvers.Running, c.DetermineStatus(2, nil, b, vec(math.NaN(), 0)))

	// A zero right-hand side makes the tolerance absolute.
	assert.Equal(t, solvers.Converged, c.DetermineStatus(3, nil, vec(0, 0), vec(1e-4, 0)))
	assert.Equal(t, solvers.Running, c.DetermineStatus(4, nil, vec(0, 0), vec(1e-2, 0)))

	for _, bad := range []float64{-1, math.NaN()} {
		_, err := solvers.NewResidualCriterion[float64](bad)
		assert.ErrorIs(t, err, fault.ErrInvalidParameter)
	}
	_, err := solvers.NewResidualCriterion[float64](1e-3, solvers.WithMinimumIterationsBelowTolerance(-1))
	assert.ErrorIs(t, err, fault.ErrInvalidParameter)
}

func TestResidualCriterionMinimumBelow(t *testing.T) {
	c := must.M1(solvers.NewResidualCriterion[float64](1e-3, solvers.WithMinimumIterationsBelowTolerance(2)))
	b, low, high := vec(1), vec(1e-4), vec(1)

	assert.Equal(t, solvers.Running, c.DetermineStatus(0, nil, b, low))
	assert.Equal(t, solvers.Running, c.DetermineStatus(1, nil, b, low))
	assert.Equal(t, solvers.Running, c.DetermineStatus(2, nil, b, high), "a high residual restarts the run")
	assert.Equal(t, solvers.Running, c.DetermineStatus(3, nil, b, low))
	assert.Equal(t, solvers.Running, c.DetermineStatus(4, nil, b, low))
	assert.Equal(t, solvers.Converged, c.DetermineStatus(5, nil, b, low))

	c.Reset()
	assert.Equal(t, solvers.Running, c.DetermineStatus(6, nil, b, low))
}

func TestDivergenceCriterion(t *testing.T) {
	newC := func() *solvers.DivergenceCriterion[float64] {
		return must.M1(solvers.NewDivergenceCriterion[float64](
			solvers.WithDivergenceWindow(2), solvers.WithMaximumRelativeIncrease(0.5)))
	}

	c := newC()
	assert.Equal(t, solvers.Running, c.DetermineStatus(0, nil, nil, vec(1)))
	assert.Equal(t, solvers.Running, c.DetermineStatus(1, nil, nil, vec(2)))
	assert.Equal(t, solvers.DivergedNumerically, c.DetermineStatus(2, nil, nil, vec(4)))
	// Re-evaluating iteration 2 replaces its norm.
	assert.Equal(t, solvers.Running, c.DetermineStatus(2, nil, nil, vec(2.5)))

	c = newC()
	for i, n := range []float64{1, 2, 2.5, 5} {
		assert.Equal(t, solvers.Running, c.DetermineStatus(i, nil, nil, vec(n)), "iteration %d", i)
	}
	assert.Equal(t, solvers.DivergedNumerically, c.DetermineStatus(4, nil, nil, vec(10)))

	c = newC()
	assert.Equal(t, solvers.DivergedNumerically, c.DetermineStatus(0, nil, nil, vec(math.Inf(1))))
	assert.Equal(t, solvers.DivergedNumerically, c.DetermineStatus(0, nil, nil, vec(math.NaN())))

	_, err := solvers.NewDivergenceCriterion[float64](solvers.WithDivergenceWindow(0))
	assert.ErrorIs(t, err, fault.ErrInvalidParameter)
	_, err = solvers.NewDivergenceCriterion[float64](solvers.WithMaximumRelativeIncrease(0))
	assert.ErrorIs(t, err, fault.ErrInvalidParameter)
}

func TestFailureCriterion(t *testing.T) {
	c := solvers.NewFailureCriterion[complex128]()
	ok := linalg.NewVectorFromSlice([]complex128{1, 2i})
	bad := linalg.NewVectorFromSlice([]complex128{complex(math.Inf(-1), 0)})
	assert.Equal(t, solvers.Running, c.DetermineStatus(0, ok, ok, ok))
	assert.Equal(t, solvers.DivergedNumerically, c.DetermineStatus(0, bad, ok, ok))
	assert.Equal(t, solvers.DivergedNumerically, c.DetermineStatus(0, ok, ok, bad))
}

func TestNewIterator(t *testing.T) {
	_, err := solvers.NewIterator[float64]()
	assert.ErrorIs(t, err, fault.ErrInvalidParameter)
	_, err = solvers.NewIterator[float64](solvers.NewFailureCriterion[float64](), nil)
	assert.ErrorIs(t, err, fault.ErrNilBuffer)
	_, err = solvers.DefaultIterator[float64](-1, 1e-6)
	assert.ErrorIs(t, err, fault.ErrInvalidParameter)
	_, err = solvers.DefaultIterator[float64](10, -1)
	assert.ErrorIs(t, err, fault.ErrInvalidParameter)
}

func TestIteratorFirstTerminalWins(t *testing.T) {
	b, r := vec(1), vec(0)
	residual := must.M1(solvers.NewResidualCriterion[float64](1e-6))
	count := must.M1(solvers.NewIterationCountCriterion[float64](3))

	first := must.M1(solvers.NewIterator[float64](residual, count))
	assert.Equal(t, solvers.Converged, first.DetermineStatus(3, nil, b, r))

	second := must.M1(solvers.NewIterator[float64](count, residual))
	assert.Equal(t, solvers.MaxIterationsReached, second.DetermineStatus(3, nil, b, r))
}

func TestIteratorStickiness(t *testing.T) {
	it := must.M1(solvers.DefaultIterator[float64](100, 1e-6))
	b, low, high := vec(1), vec(1e-9), vec(1)

	require.Equal(t, solvers.Running, it.DetermineStatus(0, vec(0), b, high))
	require.Equal(t, solvers.Converged, it.DetermineStatus(1, vec(0), b, low))
	assert.Equal(t, solvers.Converged, it.DetermineStatus(2, vec(0), b, high), "later iterations keep the terminal status")
	assert.Equal(t, solvers.Converged, it.Status())
	assert.Equal(t, 2, it.Iterations())

	// The iteration that decided is re-evaluated.
	assert.Equal(t, solvers.Running, it.DetermineStatus(1, vec(0), b, high))
	assert.Equal(t, solvers.Running, it.Status())

	it.Reset()
	assert.Equal(t, solvers.Running, it.Status())
	assert.Equal(t, 0, it.Iterations())
}

func TestIteratorCancel(t *testing.T) {
	it := must.M1(solvers.DefaultIterator[float64](10, 1e-6))
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			it.Cancel()
		}()
	}
	wg.Wait()
	assert.True(t, it.IterationCancelled())
	assert.Equal(t, solvers.Cancelled, it.DetermineStatus(0, vec(0), vec(1), vec(1e-12)))
	assert.Equal(t, solvers.Cancelled, it.Status())

	it.Reset()
	assert.False(t, it.IterationCancelled())
	assert.Equal(t, solvers.Converged, it.DetermineStatus(0, vec(0), vec(1), vec(1e-12)))
}

func TestStatusAndBreakdownStrings(t *testing.T) {
	for s, want := range map[solvers.Status]string{
		solvers.Running:              "Running",
		solvers.Converged:            "Converged",
		solvers.DivergedNumerically:  "DivergedNumerically",
		solvers.MaxIterationsReached: "MaxIterationsReached",
		solvers.Cancelled:            "Cancelled",
	} {
		assert.Equal(t, want, s.String())
		assert.Equal(t, s != solvers.Running, s.Terminal())
	}
	assert.Equal(t, "rho", solvers.RhoBreakdown.String())
	assert.Equal(t, "omega", solvers.OmegaBreakdown.String())
	err := &solvers.BreakdownError{Kind: solvers.OmegaBreakdown, Iteration: 7}
	assert.EqualError(t, err, "lvnum: omega breakdown at iteration 7")
	assert.ErrorIs(t, err, fault.ErrBreakdown)
}
