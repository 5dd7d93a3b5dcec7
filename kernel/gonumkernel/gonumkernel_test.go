// SPDX-License-Identifier: MIT
package gonumkernel_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvnum/kernel"
	"github.com/katalvlaran/lvnum/kernel/gonumkernel"
	"github.com/katalvlaran/lvnum/kernel/kerneltest"
	"github.com/katalvlaran/lvnum/kernel/reference"
	"github.com/katalvlaran/lvnum/numeric"
)

func TestConformanceFloat64(t *testing.T)    { kerneltest.Run[float64](t, gonumkernel.NewFloat64()) }
func TestConformanceFloat32(t *testing.T)    { kerneltest.Run[float32](t, gonumkernel.NewFloat32()) }
func TestConformanceComplex128(t *testing.T) { kerneltest.Run[complex128](t, gonumkernel.NewComplex128()) }
func TestConformanceComplex64(t *testing.T)  { kerneltest.Run[complex64](t, gonumkernel.NewComplex64()) }

func TestRegistered(t *testing.T) {
	b, err := kernel.NewWithConfig(gonumkernel.Name)
	require.NoError(t, err)
	require.Equal(t, gonumkernel.Name, b.Name())
	require.IsType(t, &gonumkernel.Float64{}, b.Float64())
	require.Contains(t, kernel.Registered(), reference.Name)
}

// agreement compares the gonum and reference providers on random inputs.
func agreement[T numeric.Element](t *testing.T, fast kernel.Provider[T]) {
	ref := reference.New[T]()
	rng := kerneltest.NewRand()
	tol := kerneltest.Tolerance[T]()

	t.Run("Gemm", func(t *testing.T) {
		for _, tr := range []kernel.Transpose{kernel.NoTrans, kernel.Trans, kernel.ConjTrans} {
			rowsA, colsA := 4, 3
			if tr == kernel.NoTrans {
				rowsA, colsA = 3, 4
			}
			a := kerneltest.Random[T](rng, rowsA, colsA)
			b := kerneltest.Random[T](rng, 4, 5)
			c0 := kerneltest.Random[T](rng, 3, 5)
			want, got := slices.Clone(c0), slices.Clone(c0)
			require.NoError(t, ref.MatrixMultiplyWithUpdate(tr, kernel.NoTrans, 2, a, rowsA, colsA, b, 4, 5, 3, want))
			require.NoError(t, fast.MatrixMultiplyWithUpdate(tr, kernel.NoTrans, 2, a, rowsA, colsA, b, 4, 5, 3, got))
			kerneltest.RequireClose(t, want, got, tol, tr.String())
		}
	})

	t.Run("Norms", func(t *testing.T) {
		a := kerneltest.Random[T](rng, 5, 3)
		for _, norm := range []kernel.Norm{kernel.OneNorm, kernel.InfinityNorm, kernel.FrobeniusNorm, kernel.MaxAbsNorm} {
			want, err := ref.MatrixNorm(norm, 5, 3, a)
			require.NoError(t, err)
			got, err := fast.MatrixNorm(norm, 5, 3, a)
			require.NoError(t, err)
			require.InDelta(t, want, got, tol*(1+want))
		}
	})

	t.Run("LU", func(t *testing.T) {
		const n = 6
		a := kerneltest.Random[T](rng, n, n)
		luRef, luFast := slices.Clone(a), slices.Clone(a)
		pivRef, pivFast := make([]int, n), make([]int, n)
		require.NoError(t, ref.LUFactor(luRef, n, pivRef))
		require.NoError(t, fast.LUFactor(luFast, n, pivFast))
		require.Equal(t, pivRef, pivFast)
		kerneltest.RequireClose(t, luRef, luFast, tol)

		// Factors are interchangeable between providers.
		b := kerneltest.Random[T](rng, n, 2)
		x1, x2 := slices.Clone(b), slices.Clone(b)
		require.NoError(t, ref.LUSolveFactored(2, luFast, n, pivFast, x1))
		require.NoError(t, fast.LUSolveFactored(2, luRef, n, pivRef, x2))
		kerneltest.RequireClose(t, x1, x2, tol)

		invRef, invFast := slices.Clone(a), slices.Clone(a)
		require.NoError(t, ref.LUInverse(invRef, n))
		require.NoError(t, fast.LUInverse(invFast, n))
		kerneltest.RequireClose(t, invRef, invFast, tol*10)
	})

	t.Run("Cholesky", func(t *testing.T) {
		const n = 5
		a := kerneltest.HermitianPositiveDefinite[T](rng, n)
		lRef, lFast := slices.Clone(a), slices.Clone(a)
		require.NoError(t, ref.CholeskyFactor(lRef, n))
		require.NoError(t, fast.CholeskyFactor(lFast, n))
		kerneltest.RequireClose(t, lRef, lFast, tol)
	})

	t.Run("QR", func(t *testing.T) {
		const rows, cols = 6, 4
		a := kerneltest.Random[T](rng, rows, cols)
		b := kerneltest.Random[T](rng, rows, 2)
		xRef, xFast := make([]T, cols*2), make([]T, cols*2)
		require.NoError(t, ref.QRSolve(a, rows, cols, b, 2, xRef, kernel.FullQR))
		require.NoError(t, fast.QRSolve(a, rows, cols, b, 2, xFast, kernel.FullQR))
		kerneltest.RequireClose(t, xRef, xFast, tol*10)

		rRef, rFast := slices.Clone(a), slices.Clone(a)
		qRef, qFast := make([]T, rows*rows), make([]T, rows*rows)
		tauRef, tauFast := make([]T, cols), make([]T, cols)
		require.NoError(t, ref.QRFactor(rRef, rows, cols, qRef, tauRef))
		require.NoError(t, fast.QRFactor(rFast, rows, cols, qFast, tauFast))
		kerneltest.RequireClose(t, rRef, rFast, tol*10)
		kerneltest.RequireClose(t, tauRef, tauFast, tol*10)
	})

	t.Run("SVD", func(t *testing.T) {
		for _, shape := range [][2]int{{5, 3}, {3, 5}, {4, 4}} {
			rows, cols := shape[0], shape[1]
			a := kerneltest.Random[T](rng, rows, cols)
			p := min(rows, cols)
			sRef, sFast := make([]T, p), make([]T, p)
			require.NoError(t, ref.SingularValueDecomposition(false, slices.Clone(a), rows, cols, sRef, nil, nil))
			require.NoError(t, fast.SingularValueDecomposition(false, slices.Clone(a), rows, cols, sFast, nil, nil))
			kerneltest.RequireClose(t, sRef, sFast, tol*10, "shape %v", shape)
		}
	})
}

func TestAgreementFloat64(t *testing.T)    { agreement[float64](t, gonumkernel.NewFloat64()) }
func TestAgreementFloat32(t *testing.T)    { agreement[float32](t, gonumkernel.NewFloat32()) }
func TestAgreementComplex128(t *testing.T) { agreement[complex128](t, gonumkernel.NewComplex128()) }

func TestAddVectorToScaledVectorIntoX(t *testing.T) {
	p := gonumkernel.NewFloat64()
	x := []float64{1, 2, 3}
	y := []float64{10, 20, 30}
	require.NoError(t, p.AddVectorToScaledVector(y, 2, x, x))
	require.Equal(t, []float64{12, 24, 36}, x)
	require.Equal(t, []float64{10, 20, 30}, y)
}

func BenchmarkGemm(b *testing.B) {
	const n = 64
	rng := kerneltest.NewRand()
	x := kerneltest.Random[float64](rng, n, n)
	y := kerneltest.Random[float64](rng, n, n)
	c := make([]float64, n*n)
	providers := map[string]kernel.Provider[float64]{
		"reference": reference.New[float64](),
		"gonum":     gonumkernel.NewFloat64(),
	}
	for name, p := range providers {
		b.Run(name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_ = p.MatrixMultiply(x, n, n, y, n, n, c)
			}
		})
	}
}

func BenchmarkLUSolve(b *testing.B) {
	const n = 64
	rng := kerneltest.NewRand()
	a := kerneltest.DiagonallyDominant[float64](rng, n)
	rhs := kerneltest.Random[float64](rng, n, 1)
	providers := map[string]kernel.Provider[float64]{
		"reference": reference.New[float64](),
		"gonum":     gonumkernel.NewFloat64(),
	}
	for name, p := range providers {
		b.Run(name, func(b *testing.B) {
			x := make([]float64, n)
			for i := 0; i < b.N; i++ {
				copy(x, rhs)
				_ = p.LUSolve(1, a, n, x)
			}
		})
	}
}
