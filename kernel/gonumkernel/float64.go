// SPDX-License-Identifier: MIT
package gonumkernel

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/lapack"
	"gonum.org/v1/gonum/lapack/lapack64"

	"github.com/katalvlaran/lvnum/fault"
	"github.com/katalvlaran/lvnum/kernel"
	"github.com/katalvlaran/lvnum/kernel/reference"
)

const (
	opAdd                   = "Add"
	opSubtract              = "Subtract"
	opPointwiseMultiply     = "PointwiseMultiply"
	opPointwiseDivide       = "PointwiseDivide"
	opMatrixNorm            = "MatrixNorm"
	opLUFactor              = "LUFactor"
	opLUInverse             = "LUInverse"
	opLUInverseFactored     = "LUInverseFactored"
	opLUSolve               = "LUSolve"
	opLUSolveFactored       = "LUSolveFactored"
	opCholeskyFactor        = "CholeskyFactor"
	opCholeskySolve         = "CholeskySolve"
	opCholeskySolveFactored = "CholeskySolveFactored"
)

// Float64 is the float64 provider: BLAS through Provider, plus gonum/floats
// element-wise kernels and lapack64 factorizations.
type Float64 struct {
	*Provider[float64]
}

// NewFloat64 returns a provider backed by blas64 and lapack64.
func NewFloat64() *Float64 {
	impl := blas64.Implementation()

	return &Float64{Provider: &Provider[float64]{
		Provider: reference.New[float64](),
		blas: routines[float64]{
			dotu: impl.Ddot,
			dotc: impl.Ddot,
			axpy: impl.Daxpy,
			scal: impl.Dscal,
			gemm: func(tA, tB blas.Transpose, m, n, k int, alpha float64, a []float64, lda int, b []float64, ldb int,
				beta float64, c []float64, ldc int) {
				impl.Dgemm(realTranspose(tA), realTranspose(tB), m, n, k, alpha, a, lda, b, ldb, beta, c, ldc)
			},
		},
	}}
}

// Add computes result = x + y.
func (p *Float64) Add(x, y, result []float64) error {
	if err := kernel.CheckVectors(opAdd, x, y, result); err != nil {
		return err
	}
	floats.AddTo(result, x, y)

	return nil
}

// Subtract computes result = x − y.
func (p *Float64) Subtract(x, y, result []float64) error {
	if err := kernel.CheckVectors(opSubtract, x, y, result); err != nil {
		return err
	}
	floats.SubTo(result, x, y)

	return nil
}

// PointwiseMultiply computes resultᵢ = xᵢ·yᵢ.
func (p *Float64) PointwiseMultiply(x, y, result []float64) error {
	if err := kernel.CheckVectors(opPointwiseMultiply, x, y, result); err != nil {
		return err
	}
	floats.MulTo(result, x, y)

	return nil
}

// PointwiseDivide computes resultᵢ = xᵢ/yᵢ.
func (p *Float64) PointwiseDivide(x, y, result []float64) error {
	if err := kernel.CheckVectors(opPointwiseDivide, x, y, result); err != nil {
		return err
	}
	floats.DivTo(result, x, y)

	return nil
}

// MatrixNorm evaluates the norm with Dlange on the row-major view Aᵀ, so
// the one and infinity norms swap roles.
func (p *Float64) MatrixNorm(norm kernel.Norm, rows, cols int, a []float64) (float64, error) {
	if err := kernel.CheckNorm(opMatrixNorm, norm); err != nil {
		return 0, err
	}
	if err := kernel.CheckShape(opMatrixNorm, rows, cols); err != nil {
		return 0, err
	}
	if err := kernel.CheckBuffer(opMatrixNorm, "a", a, rows, cols); err != nil {
		return 0, err
	}
	if rows == 0 || cols == 0 {
		return 0, nil
	}

	var kind lapack.MatrixNorm
	switch norm {
	case kernel.OneNorm:
		kind = lapack.MaxRowSum
	case kernel.InfinityNorm:
		kind = lapack.MaxColumnSum
	case kernel.FrobeniusNorm:
		kind = lapack.Frobenius
	default:
		kind = lapack.MaxAbs
	}

	return lapack64.Lange(kind, general(cols, rows, a), make([]float64, rows)), nil
}

// LUFactor factors a in place as P·A = L·U with Dgetrf.
// The packed factors and ipiv use the same conventions as the reference
// provider, so either provider can consume the other's output.
func (p *Float64) LUFactor(a []float64, order int, ipiv []int) error {
	if err := kernel.CheckSquare(opLUFactor, "a", a, order); err != nil {
		return err
	}
	if len(ipiv) != order {
		return fault.Wrapf(opLUFactor, fault.ErrDimensionMismatch, "len(ipiv)=%d, want %d", len(ipiv), order)
	}
	getrf(a, order, ipiv)

	return nil
}

// LUInverse replaces a with A⁻¹ via Dgetrf and Dgetri; a is left untouched
// when A is singular.
func (p *Float64) LUInverse(a []float64, order int) error {
	if err := kernel.CheckSquare(opLUInverse, "a", a, order); err != nil {
		return err
	}
	work := slices.Clone(a)
	ipiv := make([]int, order)
	getrf(work, order, ipiv)
	if singular(work, order) {
		return fault.Wrap(opLUInverse, fault.ErrSingular)
	}
	getri(work, order, ipiv)
	copy(a, work)

	return nil
}

// LUInverseFactored replaces the LUFactor output in a with A⁻¹.
func (p *Float64) LUInverseFactored(a []float64, order int, ipiv []int) error {
	if err := kernel.CheckSquare(opLUInverseFactored, "a", a, order); err != nil {
		return err
	}
	if err := kernel.CheckPivots(opLUInverseFactored, ipiv, order); err != nil {
		return err
	}
	if singular(a, order) {
		return fault.Wrap(opLUInverseFactored, fault.ErrSingular)
	}
	getri(a, order, ipiv)

	return nil
}

// LUSolve overwrites b with the solution of A·X = B; a is not modified.
func (p *Float64) LUSolve(columnsOfB int, a []float64, order int, b []float64) error {
	if err := kernel.CheckSolve(opLUSolve, a, order, b, columnsOfB); err != nil {
		return err
	}
	work := slices.Clone(a)
	ipiv := make([]int, order)
	getrf(work, order, ipiv)
	if singular(work, order) {
		return fault.Wrap(opLUSolve, fault.ErrSingular)
	}
	luSolve(work, order, ipiv, b, columnsOfB)

	return nil
}

// LUSolveFactored overwrites b with the solution of A·X = B given LUFactor output.
func (p *Float64) LUSolveFactored(columnsOfB int, a []float64, order int, ipiv []int, b []float64) error {
	if err := kernel.CheckSolve(opLUSolveFactored, a, order, b, columnsOfB); err != nil {
		return err
	}
	if err := kernel.CheckPivots(opLUSolveFactored, ipiv, order); err != nil {
		return err
	}
	if singular(a, order) {
		return fault.Wrap(opLUSolveFactored, fault.ErrSingular)
	}
	luSolve(a, order, ipiv, b, columnsOfB)

	return nil
}

// CholeskyFactor computes the lower factor of A = L·Lᵀ with Dpotrf.
// Only the lower triangle of a is read; a is untouched on failure.
func (p *Float64) CholeskyFactor(a []float64, order int) error {
	if err := kernel.CheckSquare(opCholeskyFactor, "a", a, order); err != nil {
		return err
	}
	work := slices.Clone(a)
	if err := potrf(work, order); err != nil {
		return fault.Wrap(opCholeskyFactor, err)
	}
	copy(a, work)

	return nil
}

// CholeskySolve solves A·X = B for a symmetric positive-definite A.
func (p *Float64) CholeskySolve(a []float64, order int, b []float64, columnsOfB int) error {
	if err := kernel.CheckSolve(opCholeskySolve, a, order, b, columnsOfB); err != nil {
		return err
	}
	work := slices.Clone(a)
	if err := potrf(work, order); err != nil {
		return fault.Wrap(opCholeskySolve, err)
	}
	choleskySolve(work, order, b, columnsOfB)

	return nil
}

// CholeskySolveFactored solves A·X = B given the CholeskyFactor output in a.
func (p *Float64) CholeskySolveFactored(a []float64, order int, b []float64, columnsOfB int) error {
	if err := kernel.CheckSolve(opCholeskySolveFactored, a, order, b, columnsOfB); err != nil {
		return err
	}
	for i := 0; i < order; i++ {
		if !(a[i*order+i] > 0) {
			return fault.Wrapf(opCholeskySolveFactored, fault.ErrNotPositiveDefinite, "L(%d,%d)", i, i)
		}
	}
	choleskySolve(a, order, b, columnsOfB)

	return nil
}

// getrf runs Dgetrf on the row-major copy of A and restores column-major
// order. Row interchanges in ipiv refer to rows of A.
func getrf(a []float64, n int, ipiv []int) {
	if n == 0 {
		return
	}
	transposeSquare(a, n)
	lapack64.Getrf(general(n, n, a), ipiv)
	transposeSquare(a, n)
}

// getri inverts factored column-major L\U in place.
func getri(lu []float64, n int, ipiv []int) {
	if n == 0 {
		return
	}
	transposeSquare(lu, n)
	g := general(n, n, lu)
	work := make([]float64, 1)
	lapack64.Getri(g, ipiv, work, -1)
	work = make([]float64, max(n, int(work[0])))
	lapack64.Getri(g, ipiv, work, len(work))
	transposeSquare(lu, n)
}

// singular reports an exactly zero U diagonal entry.
func singular(lu []float64, n int) bool {
	for i := 0; i < n; i++ {
		if lu[i*n+i] == 0 {
			return true
		}
	}

	return false
}

// luSolve applies the row interchanges to b and then solves with the
// triangular factors. Read row-major, b is Bᵀ (nrhs×n) and the packed
// buffer is Uᵀ below its diagonal and Lᵀ above, so L·U·X = P·B becomes
// Xᵀ·Uᵀ·Lᵀ = (P·B)ᵀ: two right-side solves.
func luSolve(lu []float64, n int, ipiv []int, b []float64, nrhs int) {
	if n == 0 || nrhs == 0 {
		return
	}
	for c := 0; c < nrhs; c++ {
		x := b[c*n : (c+1)*n]
		for i, piv := range ipiv {
			if piv != i {
				x[i], x[piv] = x[piv], x[i]
			}
		}
	}
	bt := general(nrhs, n, b)
	blas64.Trsm(blas.Right, blas.NoTrans, 1,
		blas64.Triangular{Uplo: blas.Upper, Diag: blas.Unit, N: n, Data: lu, Stride: n}, bt)
	blas64.Trsm(blas.Right, blas.NoTrans, 1,
		blas64.Triangular{Uplo: blas.Lower, Diag: blas.NonUnit, N: n, Data: lu, Stride: n}, bt)
}

// potrf factors a in place. The row-major view of the lower triangle of A
// is an upper triangle, which Dpotrf factors as Uᵀ·U with U = Lᵀ.
func potrf(a []float64, n int) error {
	if n == 0 {
		return nil
	}
	if _, ok := lapack64.Potrf(blas64.Symmetric{Uplo: blas.Upper, N: n, Data: a, Stride: n}); !ok {
		return fault.Wrapf("pivot", fault.ErrNotPositiveDefinite, "dpotrf failed")
	}
	for j := 0; j < n; j++ {
		if d := a[j*n+j]; math.IsInf(d, 0) || math.IsNaN(d) {
			return fault.Wrapf("pivot", fault.ErrNotPositiveDefinite, "column %d", j)
		}
		clear(a[j*n : j*n+j])
	}

	return nil
}

// choleskySolve solves L·Lᵀ·X = B. Read row-major, b is Bᵀ and the factor
// is Lᵀ in its upper triangle, so Xᵀ·L·Lᵀ = Bᵀ.
func choleskySolve(l []float64, n int, b []float64, nrhs int) {
	if n == 0 || nrhs == 0 {
		return
	}
	bt := general(nrhs, n, b)
	lt := blas64.Triangular{Uplo: blas.Upper, Diag: blas.NonUnit, N: n, Data: l, Stride: n}
	blas64.Trsm(blas.Right, blas.NoTrans, 1, lt, bt)
	blas64.Trsm(blas.Right, blas.Trans, 1, lt, bt)
}
