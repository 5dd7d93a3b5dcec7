// SPDX-License-Identifier: MIT
package solvers

import (
	"slices"

	"github.com/katalvlaran/lvnum/fault"
	"github.com/katalvlaran/lvnum/linalg"
	"github.com/katalvlaran/lvnum/numeric"
	"github.com/katalvlaran/lvnum/storage"
)

const (
	opUnitApproximate     = "UnitPreconditioner.Approximate"
	opDiagonalInitialize  = "DiagonalPreconditioner.Initialize"
	opDiagonalApproximate = "DiagonalPreconditioner.Approximate"
	opILU0Initialize      = "ILU0Preconditioner.Initialize"
	opILU0Approximate     = "ILU0Preconditioner.Approximate"
)

// Preconditioner approximates the action of A⁻¹.
type Preconditioner[T numeric.Element] interface {
	// Initialize prepares the preconditioner for the square matrix a.
	Initialize(a linalg.Matrix[T]) error
	// Approximate writes an approximate solution of M·out = in into out.
	// in and out must have the matrix order; they may be the same vector
	// unless the implementation says otherwise.
	Approximate(in, out *linalg.Vector[T]) error
}

var (
	_ Preconditioner[float64]    = (*UnitPreconditioner[float64])(nil)
	_ Preconditioner[complex128] = (*DiagonalPreconditioner[complex128])(nil)
	_ Preconditioner[float32]    = (*ILU0Preconditioner[float32])(nil)
)

func checkSquare[T numeric.Element](op string, a linalg.Matrix[T]) error {
	if a == nil {
		return fault.Wrap(op, fault.ErrNilBuffer)
	}
	if a.Rows() != a.Cols() {
		return fault.Wrapf(op, fault.ErrNonSquare, "%dx%d", a.Rows(), a.Cols())
	}

	return nil
}

func checkApproximate[T numeric.Element](op string, order int, in, out *linalg.Vector[T]) error {
	if in == nil || out == nil {
		return fault.Wrap(op, fault.ErrNilBuffer)
	}
	if order < 0 {
		return fault.Wrapf(op, fault.ErrInvalidParameter, "not initialized")
	}
	if in.Len() != order || out.Len() != order {
		return fault.Wrapf(op, fault.ErrDimensionMismatch, "order %d, len(in)=%d, len(out)=%d", order, in.Len(), out.Len())
	}

	return nil
}

// ---------- Unit ----------

// UnitPreconditioner is M = I. It needs no initialization: any matrix is
// accepted and Approximate only requires equal lengths.
type UnitPreconditioner[T numeric.Element] struct{}

// NewUnitPreconditioner returns M = I.
func NewUnitPreconditioner[T numeric.Element]() *UnitPreconditioner[T] { return &UnitPreconditioner[T]{} }

// Initialize implements Preconditioner.
func (UnitPreconditioner[T]) Initialize(linalg.Matrix[T]) error { return nil }

// Approximate implements Preconditioner by copying in to out.
func (UnitPreconditioner[T]) Approximate(in, out *linalg.Vector[T]) error {
	if in == nil || out == nil {
		return fault.Wrap(opUnitApproximate, fault.ErrNilBuffer)
	}
	if err := out.CopyFrom(in); err != nil {
		return fault.Wrap(opUnitApproximate, err)
	}

	return nil
}

// ---------- Diagonal ----------

// DiagonalPreconditioner is Jacobi scaling, M = diag(A).
type DiagonalPreconditioner[T numeric.Element] struct {
	inverse []T
}

// NewDiagonalPreconditioner returns an uninitialized Jacobi preconditioner.
func NewDiagonalPreconditioner[T numeric.Element]() *DiagonalPreconditioner[T] {
	return &DiagonalPreconditioner[T]{}
}

// Initialize implements Preconditioner. A zero diagonal entry is
// fault.ErrSingular.
func (p *DiagonalPreconditioner[T]) Initialize(a linalg.Matrix[T]) error {
	if err := checkSquare(opDiagonalInitialize, a); err != nil {
		return err
	}
	n := a.Rows()
	inverse := make([]T, n)
	var zero T
	for i := 0; i < n; i++ {
		d, err := a.At(i, i)
		if err != nil {
			return fault.Wrap(opDiagonalInitialize, err)
		}
		if d == zero {
			return fault.Wrapf(opDiagonalInitialize, fault.ErrSingular, "zero diagonal at %d", i)
		}
		inverse[i] = 1 / d
	}
	p.inverse = inverse

	return nil
}

// Approximate implements Preconditioner.
func (p *DiagonalPreconditioner[T]) Approximate(in, out *linalg.Vector[T]) error {
	order := -1
	if p.inverse != nil {
		order = len(p.inverse)
	}
	if err := checkApproximate(opDiagonalApproximate, order, in, out); err != nil {
		return err
	}
	src, dst := in.Raw(), out.Raw()
	for i, d := range p.inverse {
		dst[i] = src[i] * d
	}

	return nil
}

// ---------- ILU(0) ----------

// ILU0Preconditioner is the incomplete LU factorization with zero fill-in:
// L and U keep exactly the sparsity pattern of A.
type ILU0Preconditioner[T numeric.Element] struct {
	factors *storage.CSR[T] // unit L strictly below, U on and above the diagonal
	diag    []int           // position of the diagonal entry in each row
}

// NewILU0Preconditioner returns an uninitialized ILU(0) preconditioner.
func NewILU0Preconditioner[T numeric.Element]() *ILU0Preconditioner[T] {
	return &ILU0Preconditioner[T]{}
}

// Initialize implements Preconditioner.
//
// Implementation:
//   - Stage 1: take a canonical CSR copy of a (dense inputs are compressed).
//   - Stage 2: IKJ elimination restricted to the pattern of a; fill outside
//     the pattern is dropped.
//
// Errors:
//   - fault.ErrSingular if a row has no stored diagonal or a pivot is zero.
//
// Complexity:
//   - Time O(Σ_i nnz(row i)·nnz(row k)) for the visited rows k, Space O(nnz).
func (p *ILU0Preconditioner[T]) Initialize(a linalg.Matrix[T]) error {
	if err := checkSquare(opILU0Initialize, a); err != nil {
		return err
	}
	var lu *storage.CSR[T]
	if s, ok := a.(*linalg.Sparse[T]); ok {
		lu = s.CSR()
	} else {
		lu = linalg.NewSparseFromDense(a.ToDense()).CSR()
	}
	n := lu.Rows
	diag := make([]int, n)
	for i := 0; i < n; i++ {
		lo, hi := lu.RowPointers[i], lu.RowPointers[i+1]
		k, found := slices.BinarySearch(lu.ColumnIndices[lo:hi], i)
		if !found {
			return fault.Wrapf(opILU0Initialize, fault.ErrSingular, "no diagonal entry in row %d", i)
		}
		diag[i] = lo + k
	}

	var zero T
	position := make([]int, n) // column → slot in the current row, -1 if absent
	for i := range position {
		position[i] = -1
	}
	for i := 0; i < n; i++ {
		lo, hi := lu.RowPointers[i], lu.RowPointers[i+1]
		for k := lo; k < hi; k++ {
			position[lu.ColumnIndices[k]] = k
		}
		for k := lo; k < diag[i]; k++ {
			col := lu.ColumnIndices[k]
			lu.Values[k] /= lu.Values[diag[col]]
			factor := lu.Values[k]
			for j := diag[col] + 1; j < lu.RowPointers[col+1]; j++ {
				if slot := position[lu.ColumnIndices[j]]; slot >= 0 {
					lu.Values[slot] -= factor * lu.Values[j]
				}
			}
		}
		if lu.Values[diag[i]] == zero {
			return fault.Wrapf(opILU0Initialize, fault.ErrSingular, "zero pivot in row %d", i)
		}
		for k := lo; k < hi; k++ {
			position[lu.ColumnIndices[k]] = -1
		}
	}
	p.factors, p.diag = lu, diag

	return nil
}

// Approximate implements Preconditioner with a forward (unit L) and a
// backward (U) triangular solve; in may alias out.
func (p *ILU0Preconditioner[T]) Approximate(in, out *linalg.Vector[T]) error {
	order := -1
	if p.factors != nil {
		order = p.factors.Rows
	}
	if err := checkApproximate(opILU0Approximate, order, in, out); err != nil {
		return err
	}
	lu := p.factors
	x := out.Raw()
	copy(x, in.Raw())
	for i := 0; i < order; i++ {
		sum := x[i]
		for k := lu.RowPointers[i]; k < p.diag[i]; k++ {
			sum -= lu.Values[k] * x[lu.ColumnIndices[k]]
		}
		x[i] = sum
	}
	for i := order - 1; i >= 0; i-- {
		sum := x[i]
		for k := p.diag[i] + 1; k < lu.RowPointers[i+1]; k++ {
			sum -= lu.Values[k] * x[lu.ColumnIndices[k]]
		}
		x[i] = sum / lu.Values[p.diag[i]]
	}

	return nil
}
