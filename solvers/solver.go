// SPDX-License-Identifier: MIT
package solvers

import (
	"context"

	"k8s.io/klog/v2"

	"github.com/katalvlaran/lvnum/fault"
	"github.com/katalvlaran/lvnum/linalg"
	"github.com/katalvlaran/lvnum/numeric"
)

const (
	opSolveVector = "SolveVector"
	opSolveMatrix = "SolveMatrix"
)

// Solver solves A·x = b iteratively.
type Solver[T numeric.Element] interface {
	// Solve improves x in place; x holds the initial guess on entry.
	// The iterator decides when to stop; a nil preconditioner means
	// UnitPreconditioner. The preconditioner is initialized with a.
	Solve(ctx context.Context, a linalg.Matrix[T], b, x *linalg.Vector[T], iterator Iterator[T], preconditioner Preconditioner[T]) error
}

var (
	_ Solver[float64]    = (*BiCgStab[float64])(nil)
	_ Solver[complex128] = (*GPBiCG[complex128])(nil)
)

// SolveVector solves A·x = b from a zero initial guess into a fresh vector.
func SolveVector[T numeric.Element](ctx context.Context, solver Solver[T], a linalg.Matrix[T], b *linalg.Vector[T],
	iterator Iterator[T], preconditioner Preconditioner[T]) (*linalg.Vector[T], error) {
	if solver == nil || b == nil {
		return nil, fault.Wrap(opSolveVector, fault.ErrNilBuffer)
	}
	x, err := linalg.NewVector[T](b.Len())
	if err != nil {
		return nil, fault.Wrap(opSolveVector, err)
	}
	if err = solver.Solve(ctx, a, b, x, iterator, preconditioner); err != nil {
		return nil, err
	}

	return x, nil
}

// SolveMatrix solves A·X = B column by column. X holds the initial guesses
// and receives the solutions. The iterator is reset before every column and
// the preconditioner is initialized once. The batch stops at the first
// column that does not converge; that column's status stays readable
// through the iterator and the columns after it keep their initial guess.
func SolveMatrix[T numeric.Element](ctx context.Context, solver Solver[T], a linalg.Matrix[T], b, x *linalg.Dense[T],
	iterator Iterator[T], preconditioner Preconditioner[T]) error {
	if solver == nil || a == nil || b == nil || x == nil || iterator == nil {
		return fault.Wrap(opSolveMatrix, fault.ErrNilBuffer)
	}
	if a.Rows() != a.Cols() {
		return fault.Wrapf(opSolveMatrix, fault.ErrNonSquare, "%dx%d", a.Rows(), a.Cols())
	}
	if b.Rows() != a.Rows() || x.Rows() != a.Cols() || b.Cols() != x.Cols() {
		return fault.Wrapf(opSolveMatrix, fault.ErrDimensionMismatch,
			"A %dx%d, B %dx%d, X %dx%d", a.Rows(), a.Cols(), b.Rows(), b.Cols(), x.Rows(), x.Cols())
	}
	if preconditioner == nil {
		preconditioner = NewUnitPreconditioner[T]()
	}
	if err := preconditioner.Initialize(a); err != nil {
		return fault.Wrap(opSolveMatrix, err)
	}
	once := prepared[T]{preconditioner}

	for j := 0; j < b.Cols(); j++ {
		bj, _ := b.Column(j)
		xj, _ := x.Column(j)
		iterator.Reset()
		if err := solver.Solve(ctx, a, bj, xj, iterator, once); err != nil {
			return fault.Wrapf(opSolveMatrix, err, "column %d", j)
		}
		if s := iterator.Status(); s != Converged {
			klog.V(2).Infof("lvnum: batch solve stopped at column %d of %d: %v", j, b.Cols(), s)
			return nil
		}
	}

	return nil
}

// prepared skips re-initialization of an already initialized preconditioner.
type prepared[T numeric.Element] struct{ Preconditioner[T] }

func (prepared[T]) Initialize(linalg.Matrix[T]) error { return nil }

// system is the validated input of one solve.
type system[T numeric.Element] struct {
	a    linalg.Matrix[T]
	b, x *linalg.Vector[T]
	it   Iterator[T]
	m    Preconditioner[T]
	n    int
}

func newSystem[T numeric.Element](op string, a linalg.Matrix[T], b, x *linalg.Vector[T],
	iterator Iterator[T], preconditioner Preconditioner[T]) (*system[T], error) {
	if a == nil || b == nil || x == nil || iterator == nil {
		return nil, fault.Wrap(op, fault.ErrNilBuffer)
	}
	if a.Rows() != a.Cols() {
		return nil, fault.Wrapf(op, fault.ErrNonSquare, "%dx%d", a.Rows(), a.Cols())
	}
	n := a.Rows()
	if b.Len() != n || x.Len() != n {
		return nil, fault.Wrapf(op, fault.ErrDimensionMismatch, "order %d, len(b)=%d, len(x)=%d", n, b.Len(), x.Len())
	}
	if preconditioner == nil {
		preconditioner = NewUnitPreconditioner[T]()
	}
	if err := preconditioner.Initialize(a); err != nil {
		return nil, fault.Wrap(op, err)
	}

	return &system[T]{a: a, b: b, x: x, it: iterator, m: preconditioner, n: n}, nil
}

// vector allocates a work vector of the system order.
func (s *system[T]) vector() *linalg.Vector[T] {
	return linalg.NewVectorView(make([]T, s.n))
}

// residual writes r = b − A·x.
func (s *system[T]) residual(x, r *linalg.Vector[T]) error {
	if err := s.a.MulVecTo(r, x); err != nil {
		return err
	}
	if err := r.Scale(-1); err != nil {
		return err
	}

	return r.AddScaled(1, s.b)
}

// cancelled forwards context cancellation to the iterator.
func (s *system[T]) cancelled(ctx context.Context) bool {
	if ctx.Err() != nil {
		s.it.Cancel()
	}

	return s.it.IterationCancelled()
}

// tiny is the smallest positive normal number of T's precision; scalars at
// or below it are treated as zero.
func tiny[T numeric.Element]() float64 {
	if numeric.IsSingle[T]() {
		return 0x1p-126
	}

	return 0x1p-1022
}

func nearZero[T numeric.Element](v T) bool { return numeric.Abs(v) <= tiny[T]() }
