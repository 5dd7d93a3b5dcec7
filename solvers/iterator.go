// SPDX-License-Identifier: MIT
package solvers

import (
	"sync/atomic"

	"github.com/katalvlaran/lvnum/fault"
	"github.com/katalvlaran/lvnum/linalg"
	"github.com/katalvlaran/lvnum/numeric"
)

const (
	opNewIterator     = "NewIterator"
	opDefaultIterator = "DefaultIterator"
)

// Iterator decides when an iterative solve stops.
type Iterator[T numeric.Element] interface {
	// DetermineStatus evaluates iteration with the current solution,
	// right-hand side and residual, and returns the resulting status.
	DetermineStatus(iteration int, solution, source, residual *linalg.Vector[T]) Status
	// Status returns the last status.
	Status() Status
	// Cancel requests the solve to stop; safe from any goroutine.
	Cancel()
	// IterationCancelled reports whether Cancel was called since the last Reset.
	IterationCancelled() bool
	// Reset returns to Running and resets every criterion.
	Reset()
}

// CriterionIterator evaluates stop criteria in order; the first one that
// votes for a terminal status wins.
type CriterionIterator[T numeric.Element] struct {
	criteria []StopCriterion[T]

	status    atomic.Int32
	cancelled atomic.Bool
	decidedAt int // iteration at which the terminal status was reached
	last      int
}

var _ Iterator[float64] = (*CriterionIterator[float64])(nil)

// NewIterator composes criteria into an Iterator. At least one is required.
func NewIterator[T numeric.Element](criteria ...StopCriterion[T]) (*CriterionIterator[T], error) {
	if len(criteria) == 0 {
		return nil, fault.Wrapf(opNewIterator, fault.ErrInvalidParameter, "no stop criteria")
	}
	for i, c := range criteria {
		if c == nil {
			return nil, fault.Wrapf(opNewIterator, fault.ErrNilBuffer, "criterion %d", i)
		}
	}
	it := &CriterionIterator[T]{criteria: append([]StopCriterion[T](nil), criteria...)}
	it.Reset()

	return it, nil
}

// DefaultIterator stops on NaN/Inf, on divergence, on ‖r‖∞ ≤ tolerance·‖b‖∞,
// or after maxIterations iterations, checked in that order.
func DefaultIterator[T numeric.Element](maxIterations int, tolerance float64) (*CriterionIterator[T], error) {
	count, err := NewIterationCountCriterion[T](maxIterations)
	if err != nil {
		return nil, fault.Wrap(opDefaultIterator, err)
	}
	residual, err := NewResidualCriterion[T](tolerance)
	if err != nil {
		return nil, fault.Wrap(opDefaultIterator, err)
	}
	divergence, err := NewDivergenceCriterion[T]()
	if err != nil {
		return nil, fault.Wrap(opDefaultIterator, err)
	}

	return NewIterator[T](NewFailureCriterion[T](), divergence, residual, count)
}

// DetermineStatus implements Iterator.
func (it *CriterionIterator[T]) DetermineStatus(iteration int, solution, source, residual *linalg.Vector[T]) Status {
	it.last = iteration
	if it.cancelled.Load() {
		it.status.Store(int32(Cancelled))
		return Cancelled
	}
	if cur := Status(it.status.Load()); cur.Terminal() && iteration > it.decidedAt {
		return cur
	}
	status := Running
	for _, c := range it.criteria {
		if s := c.DetermineStatus(iteration, solution, source, residual); s.Terminal() {
			status = s
			break
		}
	}
	if status.Terminal() {
		it.decidedAt = iteration
	}
	it.status.Store(int32(status))

	return status
}

// Status implements Iterator.
func (it *CriterionIterator[T]) Status() Status { return Status(it.status.Load()) }

// Cancel implements Iterator.
func (it *CriterionIterator[T]) Cancel() { it.cancelled.Store(true) }

// IterationCancelled implements Iterator.
func (it *CriterionIterator[T]) IterationCancelled() bool { return it.cancelled.Load() }

// Iterations returns the iteration number of the last evaluation, which for
// the solvers in this package equals the number of completed iterations.
func (it *CriterionIterator[T]) Iterations() int { return it.last }

// Reset implements Iterator.
func (it *CriterionIterator[T]) Reset() {
	it.status.Store(int32(Running))
	it.cancelled.Store(false)
	it.decidedAt = -1
	it.last = 0
	for _, c := range it.criteria {
		c.Reset()
	}
}
