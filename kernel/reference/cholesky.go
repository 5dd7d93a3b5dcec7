// SPDX-License-Identifier: MIT
package reference

import (
	"math"
	"slices"

	"github.com/katalvlaran/lvnum/fault"
	"github.com/katalvlaran/lvnum/kernel"
	"github.com/katalvlaran/lvnum/numeric"
)

const (
	opCholeskyFactor        = "CholeskyFactor"
	opCholeskySolve         = "CholeskySolve"
	opCholeskySolveFactored = "CholeskySolveFactored"
)

// CholeskyFactor computes the lower factor L of A = L·Lᴴ.
//
// Only the lower triangle of a is read. On success the lower triangle holds L
// and the strict upper triangle is zero. A pivot that is not a finite positive
// real yields fault.ErrNotPositiveDefinite and leaves a untouched.
//
// Complexity: O(n³/3) time, O(n²) scratch.
func (p *Provider[T]) CholeskyFactor(a []T, order int) error {
	if err := kernel.CheckSquare(opCholeskyFactor, "a", a, order); err != nil {
		return err
	}
	work := slices.Clone(a)
	if err := choleskyFactor(work, order); err != nil {
		return fault.Wrap(opCholeskyFactor, err)
	}
	copy(a, work)

	return nil
}

// CholeskySolve solves A·X = B for a Hermitian positive-definite A.
// a is not modified; b is overwritten with X and must not overlap a.
func (p *Provider[T]) CholeskySolve(a []T, order int, b []T, columnsOfB int) error {
	if err := kernel.CheckSolve(opCholeskySolve, a, order, b, columnsOfB); err != nil {
		return err
	}
	work := slices.Clone(a)
	if err := choleskyFactor(work, order); err != nil {
		return fault.Wrap(opCholeskySolve, err)
	}
	choleskySolve(work, order, b, columnsOfB)

	return nil
}

// CholeskySolveFactored solves A·X = B given the CholeskyFactor output in a.
func (p *Provider[T]) CholeskySolveFactored(a []T, order int, b []T, columnsOfB int) error {
	if err := kernel.CheckSolve(opCholeskySolveFactored, a, order, b, columnsOfB); err != nil {
		return err
	}
	for i := 0; i < order; i++ {
		if !(numeric.RealPart(a[i*order+i]) > 0) {
			return fault.Wrapf(opCholeskySolveFactored, fault.ErrNotPositiveDefinite, "L(%d,%d)", i, i)
		}
	}
	choleskySolve(a, order, b, columnsOfB)

	return nil
}

// choleskyFactor is the column-oriented Cholesky–Crout loop over the lower triangle.
func choleskyFactor[T numeric.Element](a []T, n int) error {
	var i, j, k int
	for j = 0; j < n; j++ {
		// d = A(j,j) − Σ |L(j,k)|²; only the real part of A(j,j) is used.
		d := numeric.RealPart(a[j*n+j])
		for k = 0; k < j; k++ {
			d -= numeric.AbsSquared(a[k*n+j])
		}
		if !(d > 0) || math.IsInf(d, 1) {
			return fault.Wrapf("pivot", fault.ErrNotPositiveDefinite, "column %d", j)
		}
		ljj := math.Sqrt(d)
		a[j*n+j] = numeric.FromFloat[T](ljj)
		scale := numeric.FromFloat[T](1 / ljj)

		// L(i,j) = (A(i,j) − Σ L(i,k)·conj(L(j,k))) / L(j,j)
		colJ := a[j*n : (j+1)*n]
		for k = 0; k < j; k++ {
			f := numeric.Conj(a[k*n+j])
			if f == 0 {
				continue
			}
			colK := a[k*n : (k+1)*n]
			for i = j + 1; i < n; i++ {
				colJ[i] -= colK[i] * f
			}
		}
		for i = j + 1; i < n; i++ {
			colJ[i] *= scale
		}
	}

	// Zero the strict upper triangle.
	for j = 1; j < n; j++ {
		clear(a[j*n : j*n+j])
	}

	return nil
}

// choleskySolve solves L·Lᴴ·X = B in place.
func choleskySolve[T numeric.Element](l []T, n int, b []T, nrhs int) {
	var i, j int
	for c := 0; c < nrhs; c++ {
		x := b[c*n : (c+1)*n]

		// L·y = b
		for j = 0; j < n; j++ {
			colJ := l[j*n : (j+1)*n]
			x[j] /= colJ[j]
			for i = j + 1; i < n; i++ {
				x[i] -= colJ[i] * x[j]
			}
		}

		// Lᴴ·x = y, row j of Lᴴ is conj of column j of L.
		for j = n - 1; j >= 0; j-- {
			colJ := l[j*n : (j+1)*n]
			sum := x[j]
			for i = j + 1; i < n; i++ {
				sum -= numeric.Conj(colJ[i]) * x[i]
			}
			x[j] = sum / colJ[j]
		}
	}
}
