// SPDX-License-Identifier: MIT

// Package gonumkernel is the accelerated kernel backend. It delegates to the
// gonum BLAS and LAPACK implementations, so installing a cgo BLAS through
// blas64.Use (and friends) speeds it up without code changes.
//
// Coverage:
//   - Every element type uses gonum BLAS for dot products, scaling, axpy
//     and general matrix multiplication.
//   - float64 additionally delegates element-wise arithmetic to
//     gonum/floats, norms to Dlange, and the LU, Cholesky, QR and SVD
//     factorizations to lapack64.
//   - Whatever gonum does not cover for a type falls through to the
//     embedded reference provider.
//
// Layout:
//   - lvnum buffers are column-major and gonum is row-major. A column-major
//     rows×cols buffer is read by gonum as its cols×rows transpose; the
//     kernels below either exploit that identity or transpose explicitly.
//
// Importing the package registers it under the name "gonum".
package gonumkernel

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/blas/cblas128"
	"gonum.org/v1/gonum/blas/cblas64"

	"github.com/katalvlaran/lvnum/fault"
	"github.com/katalvlaran/lvnum/kernel"
	"github.com/katalvlaran/lvnum/kernel/reference"
	"github.com/katalvlaran/lvnum/numeric"
)

// Name is the registry name of this backend.
const Name = "gonum"

func init() {
	kernel.Register(Name, func(config string) (kernel.Backend, error) {
		if config != "" {
			return nil, errors.Wrapf(fault.ErrInvalidParameter, "backend %q takes no configuration, got %q", Name, config)
		}

		return NewBackend(), nil
	})
}

// routines are the BLAS entry points a Provider needs for one element type.
type routines[T numeric.Element] struct {
	dotu func(n int, x []T, incX int, y []T, incY int) T
	dotc func(n int, x []T, incX int, y []T, incY int) T
	axpy func(n int, alpha T, x []T, incX int, y []T, incY int)
	scal func(n int, alpha T, x []T, incX int)
	gemm func(tA, tB blas.Transpose, m, n, k int, alpha T, a []T, lda int, b []T, ldb int, beta T, c []T, ldc int)
}

// Provider implements kernel.Provider[T] on gonum BLAS, inheriting the
// operations gonum does not cover from reference.Provider.
type Provider[T numeric.Element] struct {
	*reference.Provider[T]
	blas routines[T]
}

var (
	_ kernel.Provider[float32]    = (*Provider[float32])(nil)
	_ kernel.Provider[complex64]  = (*Provider[complex64])(nil)
	_ kernel.Provider[complex128] = (*Provider[complex128])(nil)
	_ kernel.Provider[float64]    = (*Float64)(nil)
)

// NewFloat32 returns a provider backed by blas32.Implementation().
func NewFloat32() *Provider[float32] {
	impl := blas32.Implementation()

	return &Provider[float32]{
		Provider: reference.New[float32](),
		blas: routines[float32]{
			dotu: impl.Sdot,
			dotc: impl.Sdot,
			axpy: impl.Saxpy,
			scal: impl.Sscal,
			gemm: func(tA, tB blas.Transpose, m, n, k int, alpha float32, a []float32, lda int, b []float32, ldb int,
				beta float32, c []float32, ldc int) {
				impl.Sgemm(realTranspose(tA), realTranspose(tB), m, n, k, alpha, a, lda, b, ldb, beta, c, ldc)
			},
		},
	}
}

// NewComplex64 returns a provider backed by cblas64.Implementation().
func NewComplex64() *Provider[complex64] {
	impl := cblas64.Implementation()

	return &Provider[complex64]{
		Provider: reference.New[complex64](),
		blas: routines[complex64]{
			dotu: impl.Cdotu,
			dotc: impl.Cdotc,
			axpy: impl.Caxpy,
			scal: impl.Cscal,
			gemm: impl.Cgemm,
		},
	}
}

// NewComplex128 returns a provider backed by cblas128.Implementation().
func NewComplex128() *Provider[complex128] {
	impl := cblas128.Implementation()

	return &Provider[complex128]{
		Provider: reference.New[complex128](),
		blas: routines[complex128]{
			dotu: impl.Zdotu,
			dotc: impl.Zdotc,
			axpy: impl.Zaxpy,
			scal: impl.Zscal,
			gemm: impl.Zgemm,
		},
	}
}

// Backend bundles the four gonum providers.
type Backend struct {
	f32  *Provider[float32]
	f64  *Float64
	c64  *Provider[complex64]
	c128 *Provider[complex128]
}

// NewBackend returns the gonum backend.
func NewBackend() *Backend {
	return &Backend{
		f32:  NewFloat32(),
		f64:  NewFloat64(),
		c64:  NewComplex64(),
		c128: NewComplex128(),
	}
}

// Name implements kernel.Backend.
func (b *Backend) Name() string { return Name }

// Description implements kernel.Backend.
func (b *Backend) Description() string { return "gonum BLAS/LAPACK" }

// Float32 implements kernel.Backend.
func (b *Backend) Float32() kernel.Provider[float32] { return b.f32 }

// Float64 implements kernel.Backend.
func (b *Backend) Float64() kernel.Provider[float64] { return b.f64 }

// Complex64 implements kernel.Backend.
func (b *Backend) Complex64() kernel.Provider[complex64] { return b.c64 }

// Complex128 implements kernel.Backend.
func (b *Backend) Complex128() kernel.Provider[complex128] { return b.c128 }

// toBLAS maps a kernel transpose flag onto gonum's.
func toBLAS(t kernel.Transpose) blas.Transpose {
	switch t {
	case kernel.Trans:
		return blas.Trans
	case kernel.ConjTrans:
		return blas.ConjTrans
	default:
		return blas.NoTrans
	}
}

// realTranspose folds ConjTrans into Trans for real routines.
func realTranspose(t blas.Transpose) blas.Transpose {
	if t == blas.ConjTrans {
		return blas.Trans
	}

	return t
}

// sameSlice reports whether x and y start at the same element and have the
// same length.
func sameSlice[T numeric.Element](x, y []T) bool {
	return len(x) == len(y) && (len(x) == 0 || &x[0] == &y[0])
}

// toRowMajor copies the rows×cols column-major src into dst in row-major order.
func toRowMajor[T numeric.Element](dst, src []T, rows, cols int) {
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			dst[i*cols+j] = src[j*rows+i]
		}
	}
}

// fromRowMajor copies the rows×cols row-major src into dst in column-major order.
func fromRowMajor[T numeric.Element](dst, src []T, rows, cols int) {
	toRowMajor(dst, src, cols, rows)
}

// transposeSquare transposes an order×order buffer in place.
func transposeSquare[T numeric.Element](a []T, order int) {
	for j := 0; j < order; j++ {
		for i := j + 1; i < order; i++ {
			a[j*order+i], a[i*order+j] = a[i*order+j], a[j*order+i]
		}
	}
}

// general wraps a row-major rows×cols buffer for the lapack64 API.
func general(rows, cols int, data []float64) blas64.General {
	return blas64.General{Rows: rows, Cols: cols, Data: data, Stride: max(1, cols)}
}
