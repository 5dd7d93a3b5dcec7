// SPDX-License-Identifier: MIT

// Package kerneltest is the conformance suite every kernel.Provider must pass.
//
// Backends call Run from their own tests:
//
//	func TestConformance(t *testing.T) {
//		kerneltest.Run[float64](t, mybackend.New[float64]())
//	}
//
// Tolerances scale with the element precision: Tolerance[T] is 1e-10 for
// double based elements and 1e-3 for single based ones.
package kerneltest

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvnum/numeric"
)

// Tolerance is the element-wise agreement tolerance used by the suite.
func Tolerance[T numeric.Element]() float64 {
	if numeric.IsSingle[T]() {
		return 1e-3
	}

	return 1e-10
}

// NewRand returns the deterministic generator used by the suite.
func NewRand() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }

// Random returns a rows×cols column-major buffer with entries in [-1,1]
// (both parts for complex elements).
func Random[T numeric.Element](rng *rand.Rand, rows, cols int) []T {
	out := make([]T, rows*cols)
	for i := range out {
		out[i] = numeric.FromComplex[T](complex(2*rng.Float64()-1, 2*rng.Float64()-1))
	}

	return out
}

// DiagonallyDominant returns a random n×n matrix with |a_ii| > Σ_j≠i |a_ij|.
func DiagonallyDominant[T numeric.Element](rng *rand.Rand, n int) []T {
	a := Random[T](rng, n, n)
	for i := 0; i < n; i++ {
		var sum float64
		for j := 0; j < n; j++ {
			if j != i {
				sum += numeric.Abs(a[j*n+i])
			}
		}
		a[i*n+i] = numeric.FromFloat[T](sum + 1 + rng.Float64())
	}

	return a
}

// HermitianPositiveDefinite returns B·Bᴴ + n·I for a random n×n B.
func HermitianPositiveDefinite[T numeric.Element](rng *rand.Rand, n int) []T {
	b := Random[T](rng, n, n)
	a := Mul(b, n, n, ConjugateTranspose(b, n, n), n)
	for i := 0; i < n; i++ {
		a[i*n+i] += numeric.FromFloat[T](float64(n))
	}

	return a
}

// Identity returns the n×n identity.
func Identity[T numeric.Element](n int) []T {
	out := make([]T, n*n)
	for i := 0; i < n; i++ {
		out[i*n+i] = 1
	}

	return out
}

// Mul is the naive product of the m×k buffer a and the k×n buffer b.
func Mul[T numeric.Element](a []T, m, k int, b []T, n int) []T {
	c := make([]T, m*n)
	for j := 0; j < n; j++ {
		for l := 0; l < k; l++ {
			f := b[j*k+l]
			for i := 0; i < m; i++ {
				c[j*m+i] += a[l*m+i] * f
			}
		}
	}

	return c
}

// ConjugateTranspose returns the cols×rows buffer Aᴴ.
func ConjugateTranspose[T numeric.Element](a []T, rows, cols int) []T {
	out := make([]T, rows*cols)
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			out[i*cols+j] = numeric.Conj(a[j*rows+i])
		}
	}

	return out
}

// Transpose returns the cols×rows buffer Aᵀ.
func Transpose[T numeric.Element](a []T, rows, cols int) []T {
	out := make([]T, rows*cols)
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			out[i*cols+j] = a[j*rows+i]
		}
	}

	return out
}

// RequireClose fails unless |want_i − got_i| ≤ tol·(1 + |want_i|) for every i.
func RequireClose[T numeric.Element](t testing.TB, want, got []T, tol float64, msgAndArgs ...any) {
	t.Helper()
	require.Len(t, got, len(want), msgAndArgs...)
	for i := range want {
		diff := numeric.Abs(want[i] - got[i])
		if !(diff <= tol*(1+numeric.Abs(want[i]))) {
			require.Failf(t, "buffers differ", "index %d: want %v, got %v (|Δ|=%g, tol %g) %v",
				i, want[i], got[i], diff, tol, msgAndArgs)
		}
	}
}

// MaxAbsDiff returns max_i |a_i − b_i|.
func MaxAbsDiff[T numeric.Element](a, b []T) float64 {
	var d float64
	for i := range a {
		d = math.Max(d, numeric.Abs(a[i]-b[i]))
	}

	return d
}

// FromReal converts float64 literals into T.
func FromReal[T numeric.Element](xs ...float64) []T {
	out := make([]T, len(xs))
	for i, x := range xs {
		out[i] = numeric.FromFloat[T](x)
	}

	return out
}
