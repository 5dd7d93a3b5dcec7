// SPDX-License-Identifier: MIT
package reference

import (
	"slices"

	"github.com/katalvlaran/lvnum/fault"
	"github.com/katalvlaran/lvnum/kernel"
	"github.com/katalvlaran/lvnum/numeric"
)

const (
	opLUFactor          = "LUFactor"
	opLUInverse         = "LUInverse"
	opLUInverseFactored = "LUInverseFactored"
	opLUSolve           = "LUSolve"
	opLUSolveFactored   = "LUSolveFactored"
)

// LUFactor factors a in place as P·A = L·U (Doolittle, partial pivoting).
//
// Behavior highlights:
//   - ipiv[j] is the row swapped with row j at step j (0-based).
//   - The pivot is the first entry of maximal magnitude in the column.
//   - A zero pivot column is skipped; singularity surfaces at solve time.
//
// Complexity: O(n³) time, O(1) extra space.
func (p *Provider[T]) LUFactor(a []T, order int, ipiv []int) error {
	if err := kernel.CheckSquare(opLUFactor, "a", a, order); err != nil {
		return err
	}
	if len(ipiv) != order {
		return fault.Wrapf(opLUFactor, fault.ErrDimensionMismatch, "len(ipiv)=%d, want %d", len(ipiv), order)
	}
	luFactor(a, order, ipiv)

	return nil
}

// LUInverse replaces a with A⁻¹; a is left untouched when A is singular.
func (p *Provider[T]) LUInverse(a []T, order int) error {
	if err := kernel.CheckSquare(opLUInverse, "a", a, order); err != nil {
		return err
	}
	work := slices.Clone(a)
	ipiv := make([]int, order)
	luFactor(work, order, ipiv)
	if luSingular(work, order) {
		return fault.Wrap(opLUInverse, fault.ErrSingular)
	}
	luInvertInto(work, order, ipiv, a)

	return nil
}

// LUInverseFactored replaces the factored a with A⁻¹.
func (p *Provider[T]) LUInverseFactored(a []T, order int, ipiv []int) error {
	if err := kernel.CheckSquare(opLUInverseFactored, "a", a, order); err != nil {
		return err
	}
	if err := kernel.CheckPivots(opLUInverseFactored, ipiv, order); err != nil {
		return err
	}
	if luSingular(a, order) {
		return fault.Wrap(opLUInverseFactored, fault.ErrSingular)
	}
	luInvertInto(a, order, ipiv, a)

	return nil
}

// LUSolve overwrites b with the solution of A·X = B, factoring a private copy of a.
func (p *Provider[T]) LUSolve(columnsOfB int, a []T, order int, b []T) error {
	if err := kernel.CheckSolve(opLUSolve, a, order, b, columnsOfB); err != nil {
		return err
	}
	work := slices.Clone(a)
	ipiv := make([]int, order)
	luFactor(work, order, ipiv)
	if luSingular(work, order) {
		return fault.Wrap(opLUSolve, fault.ErrSingular)
	}
	luSolve(work, order, ipiv, b, columnsOfB)

	return nil
}

// LUSolveFactored overwrites b with the solution of A·X = B given LUFactor output.
func (p *Provider[T]) LUSolveFactored(columnsOfB int, a []T, order int, ipiv []int, b []T) error {
	if err := kernel.CheckSolve(opLUSolveFactored, a, order, b, columnsOfB); err != nil {
		return err
	}
	if err := kernel.CheckPivots(opLUSolveFactored, ipiv, order); err != nil {
		return err
	}
	if luSingular(a, order) {
		return fault.Wrap(opLUSolveFactored, fault.ErrSingular)
	}
	luSolve(a, order, ipiv, b, columnsOfB)

	return nil
}

func luFactor[T numeric.Element](a []T, n int, ipiv []int) {
	var (
		i, j, c, piv int
		best, mag    float64
	)
	for j = 0; j < n; j++ {
		// Pivot search in column j.
		piv, best = j, numeric.Abs(a[j*n+j])
		for i = j + 1; i < n; i++ {
			if mag = numeric.Abs(a[j*n+i]); mag > best {
				piv, best = i, mag
			}
		}
		ipiv[j] = piv

		// Interchange full rows j and piv.
		if piv != j {
			for c = 0; c < n; c++ {
				a[c*n+j], a[c*n+piv] = a[c*n+piv], a[c*n+j]
			}
		}

		pivot := a[j*n+j]
		if pivot == 0 {
			continue
		}

		// Multipliers below the pivot.
		inv := 1 / pivot
		colJ := a[j*n : (j+1)*n]
		for i = j + 1; i < n; i++ {
			colJ[i] *= inv
		}

		// Rank-1 update of the trailing block.
		for c = j + 1; c < n; c++ {
			colC := a[c*n : (c+1)*n]
			f := colC[j]
			if f == 0 {
				continue
			}
			for i = j + 1; i < n; i++ {
				colC[i] -= colJ[i] * f
			}
		}
	}
}

// luSingular reports an exactly zero U diagonal entry.
func luSingular[T numeric.Element](a []T, n int) bool {
	for i := 0; i < n; i++ {
		if a[i*n+i] == 0 {
			return true
		}
	}

	return false
}

// luSolve overwrites the n×nrhs buffer b with X, given packed L\U and ipiv.
func luSolve[T numeric.Element](lu []T, n int, ipiv []int, b []T, nrhs int) {
	var i, j int
	for c := 0; c < nrhs; c++ {
		x := b[c*n : (c+1)*n]

		// Apply P in factorization order.
		for i = 0; i < n; i++ {
			if ipiv[i] != i {
				x[i], x[ipiv[i]] = x[ipiv[i]], x[i]
			}
		}

		// L·y = P·b (unit diagonal).
		for j = 0; j < n; j++ {
			if x[j] == 0 {
				continue
			}
			colJ := lu[j*n : (j+1)*n]
			for i = j + 1; i < n; i++ {
				x[i] -= colJ[i] * x[j]
			}
		}

		// U·x = y.
		for j = n - 1; j >= 0; j-- {
			colJ := lu[j*n : (j+1)*n]
			x[j] /= colJ[j]
			if x[j] == 0 {
				continue
			}
			for i = 0; i < j; i++ {
				x[i] -= colJ[i] * x[j]
			}
		}
	}
}

// luInvertInto writes A⁻¹ into dst by solving against I. dst may be lu.
func luInvertInto[T numeric.Element](lu []T, n int, ipiv []int, dst []T) {
	inv := make([]T, n*n)
	identity(inv, n)
	luSolve(lu, n, ipiv, inv, n)
	copy(dst, inv)
}
