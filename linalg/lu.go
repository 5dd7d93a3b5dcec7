// SPDX-License-Identifier: MIT
package linalg

import (
	"github.com/katalvlaran/lvnum/fault"
	"github.com/katalvlaran/lvnum/numeric"
)

const (
	opFactorizeLU = "FactorizeLU"
	opLUSolve     = "LU.Solve"
	opLUSolveVec  = "LU.SolveVec"
	opLUInverse   = "LU.Inverse"
)

// LU holds the packed factors of P·A = L·U for a square matrix.
// The factorization is immutable; every method may be called concurrently.
type LU[T numeric.Element] struct {
	order   int
	factors []T // column-major; unit L below the diagonal, U on and above
	ipiv    []int
}

// FactorizeLU factors a copy of m with partial pivoting.
//
// Implementation:
//   - Stage 1: Densify m (a Dense input is copied, never modified).
//   - Stage 2: Run the bound provider's LUFactor in place on the copy.
//
// Errors:
//   - fault.ErrNonSquare if m is not square.
//   - A singular m is NOT reported here: Solve, SolveVec and Inverse return
//     fault.ErrSingular when U has an exactly zero diagonal entry, and
//     Determinant returns zero.
//
// Complexity:
//   - Time O(n³), Space O(n²).
func FactorizeLU[T numeric.Element](m Matrix[T]) (*LU[T], error) {
	if err := checkNotNil(opFactorizeLU, m); err != nil {
		return nil, err
	}
	if m.Rows() != m.Cols() {
		return nil, fault.Wrapf(opFactorizeLU, fault.ErrNonSquare, "%dx%d", m.Rows(), m.Cols())
	}
	n := m.Rows()
	lu := &LU[T]{order: n, factors: m.ToDense().buf.Data, ipiv: make([]int, n)}
	if err := ProviderFor[T]().LUFactor(lu.factors, n, lu.ipiv); err != nil {
		return nil, fault.Wrap(opFactorizeLU, err)
	}

	return lu, nil
}

// Order returns the matrix order n.
func (lu *LU[T]) Order() int { return lu.order }

// Pivots returns a copy of the 0-based interchange vector.
func (lu *LU[T]) Pivots() []int {
	out := make([]int, len(lu.ipiv))
	copy(out, lu.ipiv)

	return out
}

// L returns the unit lower-triangular factor.
func (lu *LU[T]) L() *Dense[T] {
	n := lu.order
	out := &Dense[T]{}
	out.buf.Rows, out.buf.Cols = n, n
	out.buf.Data = make([]T, n*n)
	for j := 0; j < n; j++ {
		out.buf.Data[j*n+j] = 1
		for i := j + 1; i < n; i++ {
			out.buf.Data[j*n+i] = lu.factors[j*n+i]
		}
	}

	return out
}

// U returns the upper-triangular factor.
func (lu *LU[T]) U() *Dense[T] {
	n := lu.order
	out := &Dense[T]{}
	out.buf.Rows, out.buf.Cols = n, n
	out.buf.Data = make([]T, n*n)
	for j := 0; j < n; j++ {
		copy(out.buf.Data[j*n:j*n+j+1], lu.factors[j*n:j*n+j+1])
	}

	return out
}

// Solve returns X with A·X = B. b is not modified.
func (lu *LU[T]) Solve(b *Dense[T]) (*Dense[T], error) {
	if b == nil {
		return nil, fault.Wrap(opLUSolve, fault.ErrNilBuffer)
	}
	if b.buf.Rows != lu.order {
		return nil, fault.Wrapf(opLUSolve, fault.ErrDimensionMismatch, "order %d, b has %d rows", lu.order, b.buf.Rows)
	}
	x := b.Clone()
	if err := ProviderFor[T]().LUSolveFactored(x.buf.Cols, lu.factors, lu.order, lu.ipiv, x.buf.Data); err != nil {
		return nil, fault.Wrap(opLUSolve, err)
	}

	return x, nil
}

// SolveVec returns x with A·x = b.
func (lu *LU[T]) SolveVec(b *Vector[T]) (*Vector[T], error) {
	if b == nil {
		return nil, fault.Wrap(opLUSolveVec, fault.ErrNilBuffer)
	}
	if b.Len() != lu.order {
		return nil, fault.Wrapf(opLUSolveVec, fault.ErrDimensionMismatch, "order %d, len(b)=%d", lu.order, b.Len())
	}
	x := b.Clone()
	if err := ProviderFor[T]().LUSolveFactored(1, lu.factors, lu.order, lu.ipiv, x.data); err != nil {
		return nil, fault.Wrap(opLUSolveVec, err)
	}

	return x, nil
}

// Inverse returns A⁻¹.
func (lu *LU[T]) Inverse() (*Dense[T], error) {
	n := lu.order
	inv := &Dense[T]{}
	inv.buf.Rows, inv.buf.Cols = n, n
	inv.buf.Data = make([]T, n*n)
	copy(inv.buf.Data, lu.factors)
	if err := ProviderFor[T]().LUInverseFactored(inv.buf.Data, n, lu.ipiv); err != nil {
		return nil, fault.Wrap(opLUInverse, err)
	}

	return inv, nil
}

// Determinant returns det(A): the product of U's diagonal, negated once per
// row interchange. The 0×0 determinant is 1.
func (lu *LU[T]) Determinant() T {
	det := T(1)
	n := lu.order
	for i := 0; i < n; i++ {
		det *= lu.factors[i*n+i]
		if lu.ipiv[i] != i {
			det = -det
		}
	}

	return det
}

// Inverse returns the inverse of the square matrix m.
func Inverse[T numeric.Element](m Matrix[T]) (*Dense[T], error) {
	lu, err := FactorizeLU(m)
	if err != nil {
		return nil, err
	}

	return lu.Inverse()
}

// Determinant returns det(m) through an LU factorization.
func Determinant[T numeric.Element](m Matrix[T]) (T, error) {
	lu, err := FactorizeLU(m)
	if err != nil {
		var zero T
		return zero, err
	}

	return lu.Determinant(), nil
}
