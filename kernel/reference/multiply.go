// SPDX-License-Identifier: MIT
package reference

import (
	"github.com/katalvlaran/lvnum/kernel"
	"github.com/katalvlaran/lvnum/numeric"
)

const (
	opMatrixMultiply           = "MatrixMultiply"
	opMatrixMultiplyWithUpdate = "MatrixMultiplyWithUpdate"
)

// MatrixMultiply computes C = A·B.
func (p *Provider[T]) MatrixMultiply(a []T, rowsA, colsA int, b []T, rowsB, colsB int, c []T) error {
	m, n, k, err := kernel.CheckMultiply(opMatrixMultiply, kernel.NoTrans, kernel.NoTrans, a, rowsA, colsA, b, rowsB, colsB, c)
	if err != nil {
		return err
	}
	gemm(kernel.NoTrans, kernel.NoTrans, 1, a, rowsA, b, rowsB, 0, c, m, n, k)

	return nil
}

// MatrixMultiplyWithUpdate computes C = alpha·op(A)·op(B) + beta·C.
//
// Implementation:
//   - Stage 1: validate transposes, buffers and the product shape.
//   - Stage 2: if C overlaps A or B, compute into scratch and copy back.
//   - Stage 3: fast path for NoTrans×NoTrans (column axpy form), otherwise a
//     plain triple loop reading op(A)/op(B) through index helpers.
//
// Complexity: O(m·n·k) time, O(m·n) extra space only when aliased.
func (p *Provider[T]) MatrixMultiplyWithUpdate(transA, transB kernel.Transpose, alpha T, a []T, rowsA, colsA int,
	b []T, rowsB, colsB int, beta T, c []T) error {
	m, n, k, err := kernel.CheckMultiply(opMatrixMultiplyWithUpdate, transA, transB, a, rowsA, colsA, b, rowsB, colsB, c)
	if err != nil {
		return err
	}
	gemm(transA, transB, alpha, a, rowsA, b, rowsB, beta, c, m, n, k)

	return nil
}

// gemm assumes validated arguments. lda/ldb are the stored row counts.
func gemm[T numeric.Element](transA, transB kernel.Transpose, alpha T, a []T, lda int, b []T, ldb int,
	beta T, c []T, m, n, k int) {
	out := c
	aliased := kernel.Overlap(c, a) || kernel.Overlap(c, b)
	if aliased {
		out = make([]T, len(c))
		if beta != 0 {
			copy(out, c)
		}
	}

	// Apply beta first; beta == 0 never reads C.
	if beta == 0 {
		clear(out)
	} else if beta != 1 {
		for i := range out {
			out[i] *= beta
		}
	}

	var i, j, l int
	if transA == kernel.NoTrans && transB == kernel.NoTrans {
		// C(:,j) += alpha·B(l,j)·A(:,l)
		for j = 0; j < n; j++ {
			col := out[j*m : (j+1)*m]
			for l = 0; l < k; l++ {
				f := alpha * b[j*ldb+l]
				if f == 0 {
					continue
				}
				colA := a[l*lda : l*lda+m]
				for i = 0; i < m; i++ {
					col[i] += f * colA[i]
				}
			}
		}
	} else {
		opA := accessor(transA, a, lda)
		opB := accessor(transB, b, ldb)
		for j = 0; j < n; j++ {
			for i = 0; i < m; i++ {
				var sum T
				for l = 0; l < k; l++ {
					sum += opA(i, l) * opB(l, j)
				}
				out[j*m+i] += alpha * sum
			}
		}
	}

	if aliased {
		copy(c, out)
	}
}

// accessor returns op(X)(i,j) for a column-major X with ld stored rows.
func accessor[T numeric.Element](t kernel.Transpose, x []T, ld int) func(i, j int) T {
	switch t {
	case kernel.Trans:
		return func(i, j int) T { return x[i*ld+j] }
	case kernel.ConjTrans:
		return func(i, j int) T { return numeric.Conj(x[i*ld+j]) }
	default:
		return func(i, j int) T { return x[j*ld+i] }
	}
}
