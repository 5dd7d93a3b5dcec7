// SPDX-License-Identifier: MIT
package gonumkernel

import (
	"github.com/katalvlaran/lvnum/fault"
	"github.com/katalvlaran/lvnum/kernel"
)

const (
	opDotProduct               = "DotProduct"
	opConjugateDotProduct      = "ConjugateDotProduct"
	opScale                    = "Scale"
	opAddVectorToScaledVector  = "AddVectorToScaledVector"
	opMatrixMultiply           = "MatrixMultiply"
	opMatrixMultiplyWithUpdate = "MatrixMultiplyWithUpdate"
)

// DotProduct returns Σ xᵢ·yᵢ.
func (p *Provider[T]) DotProduct(x, y []T) (T, error) {
	if err := kernel.CheckSameLength(opDotProduct, x, y); err != nil {
		var zero T
		return zero, err
	}

	return p.blas.dotu(len(x), x, 1, y, 1), nil
}

// ConjugateDotProduct returns Σ conj(xᵢ)·yᵢ.
func (p *Provider[T]) ConjugateDotProduct(x, y []T) (T, error) {
	if err := kernel.CheckSameLength(opConjugateDotProduct, x, y); err != nil {
		var zero T
		return zero, err
	}

	return p.blas.dotc(len(x), x, 1, y, 1), nil
}

// Scale computes result = alpha·x. result may be x.
func (p *Provider[T]) Scale(alpha T, x, result []T) error {
	if len(result) != len(x) {
		return fault.Wrapf(opScale, fault.ErrDimensionMismatch, "len(result)=%d, want %d", len(result), len(x))
	}
	if alpha == 0 {
		clear(result)
		return nil
	}
	copy(result, x)
	if alpha != 1 && len(result) > 0 {
		p.blas.scal(len(result), alpha, result, 1)
	}

	return nil
}

// AddVectorToScaledVector computes result = y + alpha·x. result may be x or y.
func (p *Provider[T]) AddVectorToScaledVector(y []T, alpha T, x, result []T) error {
	if err := kernel.CheckVectors(opAddVectorToScaledVector, x, y, result); err != nil {
		return err
	}
	n := len(x)
	switch {
	case n == 0:
	case alpha == 0:
		copy(result, y)
	case sameSlice(result, y):
		p.blas.axpy(n, alpha, x, 1, result, 1)
	case sameSlice(result, x):
		// result = alpha·x, then result += y.
		p.blas.scal(n, alpha, result, 1)
		p.blas.axpy(n, 1, y, 1, result, 1)
	case kernel.Overlap(result, x):
		return p.Provider.AddVectorToScaledVector(y, alpha, x, result)
	default:
		copy(result, y)
		p.blas.axpy(n, alpha, x, 1, result, 1)
	}

	return nil
}

// MatrixMultiply computes C = A·B.
func (p *Provider[T]) MatrixMultiply(a []T, rowsA, colsA int, b []T, rowsB, colsB int, c []T) error {
	m, n, k, err := kernel.CheckMultiply(opMatrixMultiply, kernel.NoTrans, kernel.NoTrans, a, rowsA, colsA, b, rowsB, colsB, c)
	if err != nil {
		return err
	}
	p.gemm(kernel.NoTrans, kernel.NoTrans, 1, a, rowsA, b, rowsB, 0, c, m, n, k)

	return nil
}

// MatrixMultiplyWithUpdate computes C = alpha·op(A)·op(B) + beta·C.
//
// Implementation:
//   - Stage 1: validate through kernel.CheckMultiply.
//   - Stage 2: degenerate shapes never reach gonum, whose stride checks
//     reject zero leading dimensions; an empty inner dimension only scales C.
//   - Stage 3: column-major C = op(A)·op(B) is row-major Cᵀ = op(B)ᵀ·op(A)ᵀ,
//     so gonum is called with the operands swapped and the flags unchanged.
func (p *Provider[T]) MatrixMultiplyWithUpdate(transA, transB kernel.Transpose, alpha T, a []T, rowsA, colsA int,
	b []T, rowsB, colsB int, beta T, c []T) error {
	m, n, k, err := kernel.CheckMultiply(opMatrixMultiplyWithUpdate, transA, transB, a, rowsA, colsA, b, rowsB, colsB, c)
	if err != nil {
		return err
	}
	p.gemm(transA, transB, alpha, a, rowsA, b, rowsB, beta, c, m, n, k)

	return nil
}

func (p *Provider[T]) gemm(transA, transB kernel.Transpose, alpha T, a []T, lda int, b []T, ldb int,
	beta T, c []T, m, n, k int) {
	if m == 0 || n == 0 {
		return
	}
	if k == 0 || alpha == 0 {
		if beta == 0 {
			clear(c)
		} else if beta != 1 {
			p.blas.scal(len(c), beta, c, 1)
		}
		return
	}

	out := c
	aliased := kernel.Overlap(c, a) || kernel.Overlap(c, b)
	if aliased {
		out = make([]T, len(c))
		if beta != 0 {
			copy(out, c)
		}
	}
	p.blas.gemm(toBLAS(transB), toBLAS(transA), n, m, k, alpha, b, ldb, a, lda, beta, out, m)
	if aliased {
		copy(c, out)
	}
}
