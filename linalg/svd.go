// SPDX-License-Identifier: MIT
package linalg

import (
	"math"

	"github.com/katalvlaran/lvnum/fault"
	"github.com/katalvlaran/lvnum/numeric"
)

const opFactorizeSVD = "FactorizeSVD"

// SVD holds A = U·Σ·Vᴴ with singular values in ascending order.
type SVD[T numeric.Element] struct {
	rows, cols int
	values     []float64
	u, vt      *Dense[T] // nil unless vectors were requested
}

// FactorizeSVD decomposes a copy of m. With computeVectors false only the
// singular values are formed and U/VT return nil.
//
// Errors:
//   - fault.ErrNoConvergence if the iteration does not converge.
func FactorizeSVD[T numeric.Element](m Matrix[T], computeVectors bool) (*SVD[T], error) {
	if err := checkNotNil(opFactorizeSVD, m); err != nil {
		return nil, err
	}
	rows, cols := m.Rows(), m.Cols()
	work := m.ToDense()
	s := make([]T, min(rows, cols))
	f := &SVD[T]{rows: rows, cols: cols}
	var u, vt []T
	if computeVectors {
		f.u, _ = NewDense[T](rows, rows)
		f.vt, _ = NewDense[T](cols, cols)
		u, vt = f.u.buf.Data, f.vt.buf.Data
	}
	if err := ProviderFor[T]().SingularValueDecomposition(computeVectors, work.buf.Data, rows, cols, s, u, vt); err != nil {
		return nil, fault.Wrap(opFactorizeSVD, err)
	}
	f.values = make([]float64, len(s))
	for i, v := range s {
		f.values[i] = numeric.RealPart(v)
	}

	return f, nil
}

// Values returns a copy of the singular values, ascending.
func (f *SVD[T]) Values() []float64 {
	out := make([]float64, len(f.values))
	copy(out, f.values)

	return out
}

// U returns a copy of the left singular vectors, or nil.
func (f *SVD[T]) U() *Dense[T] {
	if f.u == nil {
		return nil
	}

	return f.u.Clone()
}

// VT returns a copy of Vᴴ, or nil.
func (f *SVD[T]) VT() *Dense[T] {
	if f.vt == nil {
		return nil
	}

	return f.vt.Clone()
}

// Norm2 returns the spectral norm, the largest singular value.
func (f *SVD[T]) Norm2() float64 {
	if len(f.values) == 0 {
		return 0
	}

	return f.values[len(f.values)-1]
}

// ConditionNumber returns σmax/σmin; +Inf when σmin is zero and 0 for an
// empty matrix.
func (f *SVD[T]) ConditionNumber() float64 {
	if len(f.values) == 0 {
		return 0
	}
	if f.values[0] == 0 {
		return math.Inf(1)
	}

	return f.values[len(f.values)-1] / f.values[0]
}

// Rank counts singular values above tol. A negative tol selects
// max(rows, cols)·ε·σmax.
func (f *SVD[T]) Rank(tol float64) int {
	if tol < 0 {
		tol = float64(max(f.rows, f.cols)) * numeric.Epsilon[T]() * f.Norm2()
	}
	rank := 0
	for _, s := range f.values {
		if s > tol {
			rank++
		}
	}

	return rank
}
