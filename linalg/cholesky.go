// SPDX-License-Identifier: MIT
package linalg

import (
	"github.com/katalvlaran/lvnum/fault"
	"github.com/katalvlaran/lvnum/numeric"
)

const (
	opFactorizeCholesky = "FactorizeCholesky"
	opCholeskySolve     = "Cholesky.Solve"
	opCholeskySolveVec  = "Cholesky.SolveVec"
)

// symmetryTolerance scales the element type's epsilon for the Hermitian check.
const symmetryTolerance = 64

// Cholesky holds the lower factor of A = L·Lᴴ.
type Cholesky[T numeric.Element] struct {
	order int
	l     []T // column-major, strict upper triangle zero
}

// FactorizeCholesky factors a copy of the Hermitian positive-definite m.
//
// Errors:
//   - fault.ErrNonSquare if m is not square.
//   - fault.ErrNotSymmetric if m(i,j) differs from conj(m(j,i)) beyond a few
//     ulps, or a diagonal entry of a complex m has a non-zero imaginary part.
//   - fault.ErrNotPositiveDefinite from the kernel.
func FactorizeCholesky[T numeric.Element](m Matrix[T]) (*Cholesky[T], error) {
	if err := checkNotNil(opFactorizeCholesky, m); err != nil {
		return nil, err
	}
	if m.Rows() != m.Cols() {
		return nil, fault.Wrapf(opFactorizeCholesky, fault.ErrNonSquare, "%dx%d", m.Rows(), m.Cols())
	}
	d := m.ToDense()
	if err := checkHermitian(d); err != nil {
		return nil, fault.Wrap(opFactorizeCholesky, err)
	}
	n := d.buf.Rows
	if err := ProviderFor[T]().CholeskyFactor(d.buf.Data, n); err != nil {
		return nil, fault.Wrap(opFactorizeCholesky, err)
	}

	return &Cholesky[T]{order: n, l: d.buf.Data}, nil
}

func checkHermitian[T numeric.Element](d *Dense[T]) error {
	n := d.buf.Rows
	tol := symmetryTolerance * numeric.Epsilon[T]()
	for j := 0; j < n; j++ {
		if numeric.ImagPart(d.buf.Data[j*n+j]) != 0 {
			return fault.Wrapf("hermitian", fault.ErrNotSymmetric, "diagonal (%d,%d) is not real", j, j)
		}
		for i := j + 1; i < n; i++ {
			if !numeric.AlmostEqual(d.buf.Data[j*n+i], numeric.Conj(d.buf.Data[i*n+j]), tol) {
				return fault.Wrapf("hermitian", fault.ErrNotSymmetric, "(%d,%d) vs (%d,%d)", i, j, j, i)
			}
		}
	}

	return nil
}

// Order returns n.
func (c *Cholesky[T]) Order() int { return c.order }

// L returns the lower factor.
func (c *Cholesky[T]) L() *Dense[T] {
	out := &Dense[T]{}
	out.buf.Rows, out.buf.Cols = c.order, c.order
	out.buf.Data = make([]T, len(c.l))
	copy(out.buf.Data, c.l)

	return out
}

// Solve returns X with A·X = B. b is not modified.
func (c *Cholesky[T]) Solve(b *Dense[T]) (*Dense[T], error) {
	if b == nil {
		return nil, fault.Wrap(opCholeskySolve, fault.ErrNilBuffer)
	}
	if b.buf.Rows != c.order {
		return nil, fault.Wrapf(opCholeskySolve, fault.ErrDimensionMismatch, "order %d, b has %d rows", c.order, b.buf.Rows)
	}
	x := b.Clone()
	if err := ProviderFor[T]().CholeskySolveFactored(c.l, c.order, x.buf.Data, x.buf.Cols); err != nil {
		return nil, fault.Wrap(opCholeskySolve, err)
	}

	return x, nil
}

// SolveVec returns x with A·x = b.
func (c *Cholesky[T]) SolveVec(b *Vector[T]) (*Vector[T], error) {
	if b == nil {
		return nil, fault.Wrap(opCholeskySolveVec, fault.ErrNilBuffer)
	}
	if b.Len() != c.order {
		return nil, fault.Wrapf(opCholeskySolveVec, fault.ErrDimensionMismatch, "order %d, len(b)=%d", c.order, b.Len())
	}
	x := b.Clone()
	if err := ProviderFor[T]().CholeskySolveFactored(c.l, c.order, x.data, 1); err != nil {
		return nil, fault.Wrap(opCholeskySolveVec, err)
	}

	return x, nil
}

// Determinant returns det(A) = Π lᵢᵢ², which is real and positive.
func (c *Cholesky[T]) Determinant() float64 {
	det := 1.0
	n := c.order
	for i := 0; i < n; i++ {
		d := numeric.RealPart(c.l[i*n+i])
		det *= d * d
	}

	return det
}
