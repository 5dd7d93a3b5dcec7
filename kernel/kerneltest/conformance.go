// SPDX-License-Identifier: MIT
package kerneltest

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvnum/fault"
	"github.com/katalvlaran/lvnum/kernel"
	"github.com/katalvlaran/lvnum/numeric"
)

// Run executes the whole conformance suite against p.
func Run[T numeric.Element](t *testing.T, p kernel.Provider[T]) {
	t.Run("VectorOps", func(t *testing.T) { vectorOps(t, p) })
	t.Run("Norms", func(t *testing.T) { norms(t, p) })
	t.Run("Multiply", func(t *testing.T) { multiply(t, p) })
	t.Run("LU", func(t *testing.T) { lu(t, p) })
	t.Run("Cholesky", func(t *testing.T) { cholesky(t, p) })
	t.Run("QR", func(t *testing.T) { qr(t, p) })
	t.Run("SVD", func(t *testing.T) { svd(t, p) })
}

func vectorOps[T numeric.Element](t *testing.T, p kernel.Provider[T]) {
	tol := Tolerance[T]()
	x, y := FromReal[T](1, 2, 3), FromReal[T](4, 5, 6)

	d, err := p.DotProduct(x, y)
	require.NoError(t, err)
	require.InDelta(t, 32, numeric.RealPart(d), tol)

	_, err = p.DotProduct(x, y[:2])
	require.ErrorIs(t, err, fault.ErrDimensionMismatch)
	_, err = p.ConjugateDotProduct(x[:1], y)
	require.ErrorIs(t, err, fault.ErrDimensionMismatch)

	if numeric.IsComplex[T]() {
		z := []T{numeric.FromComplex[T](1i)}
		plain, err := p.DotProduct(z, z)
		require.NoError(t, err)
		conj, err := p.ConjugateDotProduct(z, z)
		require.NoError(t, err)
		require.InDelta(t, -1, numeric.RealPart(plain), tol)
		require.InDelta(t, 1, numeric.RealPart(conj), tol)
	}

	// result aliases x
	work := slices.Clone(x)
	require.NoError(t, p.Scale(2, work, work))
	RequireClose(t, FromReal[T](2, 4, 6), work, tol)
	require.NoError(t, p.Scale(0, x, work))
	RequireClose(t, FromReal[T](0, 0, 0), work, tol)
	require.ErrorIs(t, p.Scale(2, x, work[:2]), fault.ErrDimensionMismatch)

	// y + alpha·x with result aliasing y, then x
	work = slices.Clone(y)
	require.NoError(t, p.AddVectorToScaledVector(work, 2, x, work))
	RequireClose(t, FromReal[T](6, 9, 12), work, tol)
	work = slices.Clone(x)
	require.NoError(t, p.AddVectorToScaledVector(y, -1, work, work))
	RequireClose(t, FromReal[T](3, 3, 3), work, tol)
	work = slices.Clone(y)
	require.NoError(t, p.AddVectorToScaledVector(y, 1, x, work))
	RequireClose(t, FromReal[T](5, 7, 9), work, tol)
	require.NoError(t, p.AddVectorToScaledVector(y, 0, x, work))
	RequireClose(t, y, work, tol)

	out := make([]T, 3)
	require.NoError(t, p.Add(x, y, out))
	RequireClose(t, FromReal[T](5, 7, 9), out, tol)
	require.NoError(t, p.Subtract(x, y, out))
	RequireClose(t, FromReal[T](-3, -3, -3), out, tol)
	require.NoError(t, p.PointwiseMultiply(x, y, out))
	RequireClose(t, FromReal[T](4, 10, 18), out, tol)
	require.NoError(t, p.PointwiseDivide(y, x, out))
	RequireClose(t, FromReal[T](4, 2.5, 2), out, tol)
	require.NoError(t, p.PointwisePower(x, FromReal[T](2, 2, 0.5), out))
	RequireClose(t, FromReal[T](1, 4, math.Sqrt(3)), out, tol)

	sentinel := FromReal[T](7, 7)
	require.ErrorIs(t, p.Add(x, y, sentinel), fault.ErrDimensionMismatch)
	require.Equal(t, FromReal[T](7, 7), sentinel)
}

func norms[T numeric.Element](t *testing.T, p kernel.Provider[T]) {
	tol := Tolerance[T]()
	// [[1,-2],[3,4]]
	a := FromReal[T](1, 3, -2, 4)
	for _, tc := range []struct {
		norm kernel.Norm
		want float64
	}{
		{kernel.OneNorm, 6},
		{kernel.InfinityNorm, 7},
		{kernel.FrobeniusNorm, math.Sqrt(30)},
		{kernel.MaxAbsNorm, 4},
	} {
		got, err := p.MatrixNorm(tc.norm, 2, 2, a)
		require.NoError(t, err)
		require.InDelta(t, tc.want, got, tol*tc.want, "norm %d", tc.norm)
	}

	_, err := p.MatrixNorm(kernel.Norm(42), 2, 2, a)
	require.ErrorIs(t, err, fault.ErrInvalidParameter)
	_, err = p.MatrixNorm(kernel.OneNorm, 3, 2, a)
	require.ErrorIs(t, err, fault.ErrDimensionMismatch)

	empty, err := p.MatrixNorm(kernel.FrobeniusNorm, 0, 3, nil)
	require.NoError(t, err)
	require.Zero(t, empty)
}

func multiply[T numeric.Element](t *testing.T, p kernel.Provider[T]) {
	tol := Tolerance[T]()
	rng := NewRand()

	// 3×4 · 4×2
	a := Random[T](rng, 3, 4)
	b := Random[T](rng, 4, 2)
	c := make([]T, 6)
	require.NoError(t, p.MatrixMultiply(a, 3, 4, b, 4, 2, c))
	RequireClose(t, Mul(a, 3, 4, b, 2), c, tol)

	ops := []kernel.Transpose{kernel.NoTrans, kernel.Trans, kernel.ConjTrans}
	apply := func(tr kernel.Transpose, x []T, rows, cols int) []T {
		switch tr {
		case kernel.Trans:
			return Transpose(x, rows, cols)
		case kernel.ConjTrans:
			return ConjugateTranspose(x, rows, cols)
		default:
			return slices.Clone(x)
		}
	}
	alpha, beta := numeric.FromComplex[T](complex(1.5, -0.5)), numeric.FromComplex[T](complex(-0.25, 1))
	for _, ta := range ops {
		for _, tb := range ops {
			// op(A) is 3×4, op(B) is 4×2.
			rowsA, colsA := 3, 4
			if ta != kernel.NoTrans {
				rowsA, colsA = 4, 3
			}
			rowsB, colsB := 4, 2
			if tb != kernel.NoTrans {
				rowsB, colsB = 2, 4
			}
			a := Random[T](rng, rowsA, colsA)
			b := Random[T](rng, rowsB, colsB)
			c := Random[T](rng, 3, 2)

			want := Mul(apply(ta, a, rowsA, colsA), 3, 4, apply(tb, b, rowsB, colsB), 2)
			for i := range want {
				want[i] = alpha*want[i] + beta*c[i]
			}
			require.NoError(t, p.MatrixMultiplyWithUpdate(ta, tb, alpha, a, rowsA, colsA, b, rowsB, colsB, beta, c))
			RequireClose(t, want, c, tol, "op(A)=%v op(B)=%v", ta, tb)
		}
	}

	// beta == 0 ignores NaN in C.
	c = []T{numeric.FromFloat[T](math.NaN()), numeric.FromFloat[T](math.NaN()), 0, 0, 0, 0}
	require.NoError(t, p.MatrixMultiplyWithUpdate(kernel.NoTrans, kernel.NoTrans, 1, a, 3, 4, b, 4, 2, 0, c))
	RequireClose(t, Mul(a, 3, 4, b, 2), c, tol)

	// C aliasing A: square in-place product.
	sq := Random[T](rng, 3, 3)
	want := Mul(sq, 3, 3, sq, 3)
	require.NoError(t, p.MatrixMultiplyWithUpdate(kernel.NoTrans, kernel.NoTrans, 1, sq, 3, 3, sq, 3, 3, 0, sq))
	RequireClose(t, want, sq, tol)

	// Mismatched inner dimensions never touch C.
	guard := FromReal[T](9, 9, 9, 9, 9, 9)
	require.ErrorIs(t, p.MatrixMultiply(a, 3, 4, b[:6], 3, 2, guard), fault.ErrDimensionMismatch)
	require.ErrorIs(t, p.MatrixMultiplyWithUpdate(kernel.Trans, kernel.NoTrans, 1, a, 3, 4, b, 4, 2, 0, guard),
		fault.ErrDimensionMismatch)
	require.ErrorIs(t, p.MatrixMultiply(a, 3, 4, b, 4, 2, guard[:5]), fault.ErrDimensionMismatch)
	require.Equal(t, FromReal[T](9, 9, 9, 9, 9, 9), guard)
	require.ErrorIs(t, p.MatrixMultiplyWithUpdate(kernel.Transpose(7), kernel.NoTrans, 1, a, 3, 4, b, 4, 2, 0, guard),
		fault.ErrInvalidParameter)

	// Empty inner dimension scales C by beta.
	c = FromReal[T](1, 2)
	require.NoError(t, p.MatrixMultiplyWithUpdate(kernel.NoTrans, kernel.NoTrans, 1, nil, 2, 0, nil, 0, 1, 2, c))
	RequireClose(t, FromReal[T](2, 4), c, tol)
}

func lu[T numeric.Element](t *testing.T, p kernel.Provider[T]) {
	tol := Tolerance[T]()

	// [[4,1],[1,3]]·x = [1,2] ⇒ x = [1/11, 7/11]
	a := FromReal[T](4, 1, 1, 3)
	b := FromReal[T](1, 2)
	require.NoError(t, p.LUSolve(1, a, 2, b))
	RequireClose(t, FromReal[T](1.0/11, 7.0/11), b, tol)
	require.Equal(t, FromReal[T](4, 1, 1, 3), a, "LUSolve must not modify a")

	// Pivoting: [[0,1],[1,0]] needs a row swap.
	perm := FromReal[T](0, 1, 1, 0)
	ipiv := make([]int, 2)
	require.NoError(t, p.LUFactor(perm, 2, ipiv))
	require.Equal(t, []int{1, 1}, ipiv)

	rng := NewRand()
	for _, n := range []int{1, 4, 9} {
		a := DiagonallyDominant[T](rng, n)
		want := Random[T](rng, n, 2)
		b := Mul(a, n, n, want, 2)

		factored := slices.Clone(a)
		ipiv := make([]int, n)
		require.NoError(t, p.LUFactor(factored, n, ipiv))
		x := slices.Clone(b)
		require.NoError(t, p.LUSolveFactored(2, factored, n, ipiv, x))
		RequireClose(t, want, x, tol*float64(n))

		inv := slices.Clone(a)
		require.NoError(t, p.LUInverse(inv, n))
		RequireClose(t, Identity[T](n), Mul(a, n, n, inv, n), tol*float64(n))

		require.NoError(t, p.LUInverseFactored(factored, n, ipiv))
		RequireClose(t, inv, factored, tol*float64(n))
	}

	// Singular: inverse fails and leaves the input untouched.
	sing := FromReal[T](1, 2, 2, 4)
	require.ErrorIs(t, p.LUInverse(sing, 2), fault.ErrSingular)
	require.Equal(t, FromReal[T](1, 2, 2, 4), sing)
	rhs := FromReal[T](1, 1)
	require.ErrorIs(t, p.LUSolve(1, sing, 2, rhs), fault.ErrSingular)
	require.True(t, fault.IsDomain(p.LUSolve(1, sing, 2, rhs)))

	// Argument errors.
	require.ErrorIs(t, p.LUFactor(a[:3], 2, ipiv), fault.ErrDimensionMismatch)
	require.ErrorIs(t, p.LUFactor(a, -1, ipiv), fault.ErrInvalidParameter)
	require.ErrorIs(t, p.LUSolve(1, a, 2, b[:1]), fault.ErrDimensionMismatch)
	require.ErrorIs(t, p.LUSolveFactored(1, a, 2, []int{0, 5}, b), fault.ErrInvalidParameter)
	shared := FromReal[T](4, 1, 1, 3, 1, 2)
	require.ErrorIs(t, p.LUSolve(1, shared[:4], 2, shared[2:4]), fault.ErrAliasing)
}

func cholesky[T numeric.Element](t *testing.T, p kernel.Provider[T]) {
	tol := Tolerance[T]()
	rng := NewRand()

	for _, n := range []int{1, 3, 7} {
		a := HermitianPositiveDefinite[T](rng, n)
		l := slices.Clone(a)
		require.NoError(t, p.CholeskyFactor(l, n))
		for j := 1; j < n; j++ {
			for i := 0; i < j; i++ {
				require.Zero(t, numeric.Abs(l[j*n+i]), "upper triangle must be zero")
			}
		}
		RequireClose(t, a, Mul(l, n, n, ConjugateTranspose(l, n, n), n), tol*float64(n))

		want := Random[T](rng, n, 3)
		b := Mul(a, n, n, want, 3)
		x := slices.Clone(b)
		require.NoError(t, p.CholeskySolve(a, n, x, 3))
		RequireClose(t, want, x, tol*float64(n))
		x = slices.Clone(b)
		require.NoError(t, p.CholeskySolveFactored(l, n, x, 3))
		RequireClose(t, want, x, tol*float64(n))
	}

	// Only the lower triangle is read.
	a := FromReal[T](4, 1, 999, 3)
	require.NoError(t, p.CholeskyFactor(a, 2))
	require.InDelta(t, 2, numeric.RealPart(a[0]), tol)
	require.InDelta(t, 0.5, numeric.RealPart(a[1]), tol)
	require.Zero(t, numeric.Abs(a[2]))

	indefinite := FromReal[T](1, 2, 2, 1)
	require.ErrorIs(t, p.CholeskyFactor(indefinite, 2), fault.ErrNotPositiveDefinite)
	require.Equal(t, FromReal[T](1, 2, 2, 1), indefinite)
	nan := FromReal[T](math.NaN(), 0, 0, 1)
	require.ErrorIs(t, p.CholeskyFactor(nan, 2), fault.ErrNotPositiveDefinite)
	require.ErrorIs(t, p.CholeskySolve(indefinite, 2, FromReal[T](1, 1), 1), fault.ErrNotPositiveDefinite)
	require.ErrorIs(t, p.CholeskySolve(indefinite, 2, FromReal[T](1), 1), fault.ErrDimensionMismatch)
}

func qr[T numeric.Element](t *testing.T, p kernel.Provider[T]) {
	tol := Tolerance[T]()
	rng := NewRand()

	for _, shape := range [][2]int{{5, 3}, {3, 3}, {3, 5}, {1, 1}} {
		rows, cols := shape[0], shape[1]
		a := Random[T](rng, rows, cols)

		// Full.
		r := slices.Clone(a)
		q := make([]T, rows*rows)
		tau := make([]T, min(rows, cols))
		require.NoError(t, p.QRFactor(r, rows, cols, q, tau))
		RequireClose(t, Identity[T](rows), Mul(ConjugateTranspose(q, rows, rows), rows, rows, q, rows), tol, "QᴴQ %v", shape)
		RequireClose(t, a, Mul(q, rows, rows, r, cols), tol, "QR %v", shape)
		for j := 0; j < cols; j++ {
			for i := j + 1; i < rows; i++ {
				require.Zero(t, numeric.Abs(r[j*rows+i]), "R must be upper trapezoidal")
			}
		}

		// Thin.
		if rows < cols {
			require.ErrorIs(t, p.ThinQRFactor(slices.Clone(a), rows, cols, make([]T, cols*cols), make([]T, cols)),
				fault.ErrInvalidParameter)
			continue
		}
		qt := slices.Clone(a)
		rt := make([]T, cols*cols)
		require.NoError(t, p.ThinQRFactor(qt, rows, cols, rt, make([]T, cols)))
		RequireClose(t, Identity[T](cols), Mul(ConjugateTranspose(qt, rows, cols), cols, rows, qt, cols), tol, "thin QᴴQ %v", shape)
		RequireClose(t, a, Mul(qt, rows, cols, rt, cols), tol, "thin QR %v", shape)
	}

	// [[4,1],[1,3]]·x = [1,2]
	a := FromReal[T](4, 1, 1, 3)
	b := FromReal[T](1, 2)
	want := FromReal[T](1.0/11, 7.0/11)
	for _, method := range []kernel.QRMethod{kernel.FullQR, kernel.ThinQR} {
		x := make([]T, 2)
		require.NoError(t, p.QRSolve(a, 2, 2, b, 1, x, method))
		RequireClose(t, want, x, tol)
	}
	qt, rt, tau := slices.Clone(a), make([]T, 4), make([]T, 2)
	require.NoError(t, p.ThinQRFactor(qt, 2, 2, rt, tau))
	x := make([]T, 2)
	require.NoError(t, p.QRSolveFactored(qt, rt, 2, 2, tau, b, 1, x, kernel.ThinQR))
	RequireClose(t, want, x, tol)

	// Least squares on a tall system matches the normal equations.
	tall := Random[T](rng, 6, 3)
	rhs := Random[T](rng, 6, 1)
	ls := make([]T, 3)
	require.NoError(t, p.QRSolve(tall, 6, 3, rhs, 1, ls, kernel.FullQR))
	ah := ConjugateTranspose(tall, 6, 3)
	RequireClose(t, Mul(ah, 3, 6, rhs, 1), Mul(Mul(ah, 3, 6, tall, 3), 3, 3, ls, 1), tol*10)

	rf, qf, tf := slices.Clone(tall), make([]T, 36), make([]T, 3)
	require.NoError(t, p.QRFactor(rf, 6, 3, qf, tf))
	lsf := make([]T, 3)
	require.NoError(t, p.QRSolveFactored(qf, rf, 6, 3, tf, rhs, 1, lsf, kernel.FullQR))
	RequireClose(t, ls, lsf, tol*10)

	// Rank deficiency.
	deficient := FromReal[T](1, 2, 3, 2, 4, 6)
	require.ErrorIs(t, p.QRSolve(deficient, 3, 2, FromReal[T](1, 1, 1), 1, make([]T, 2), kernel.ThinQR),
		fault.ErrRankDeficient)
	require.ErrorIs(t, p.QRSolve(a, 2, 2, b, 1, make([]T, 2), kernel.QRMethod(9)), fault.ErrInvalidParameter)
	require.ErrorIs(t, p.QRSolve(Random[T](rng, 2, 3), 2, 3, b, 1, make([]T, 3), kernel.FullQR), fault.ErrInvalidParameter)
	require.ErrorIs(t, p.QRFactor(a, 2, 2, make([]T, 3), make([]T, 2)), fault.ErrDimensionMismatch)
}

func svd[T numeric.Element](t *testing.T, p kernel.Provider[T]) {
	tol := Tolerance[T]()
	rng := NewRand()

	for _, shape := range [][2]int{{4, 3}, {3, 3}, {2, 5}, {1, 3}, {3, 1}} {
		rows, cols := shape[0], shape[1]
		a := Random[T](rng, rows, cols)
		k := min(rows, cols)
		s := make([]T, k)
		u := make([]T, rows*rows)
		vt := make([]T, cols*cols)
		require.NoError(t, p.SingularValueDecomposition(true, slices.Clone(a), rows, cols, s, u, vt))

		for i := 0; i < k; i++ {
			require.GreaterOrEqual(t, numeric.RealPart(s[i]), 0.0)
			require.Zero(t, numeric.ImagPart(s[i]))
			if i > 0 {
				require.LessOrEqual(t, numeric.RealPart(s[i-1]), numeric.RealPart(s[i]), "ascending %v", shape)
			}
		}
		sigma := make([]T, rows*cols)
		for i := 0; i < k; i++ {
			sigma[i*rows+i] = s[i]
		}
		RequireClose(t, a, Mul(Mul(u, rows, rows, sigma, cols), rows, cols, vt, cols), tol, "UΣVᴴ %v", shape)
		RequireClose(t, Identity[T](rows), Mul(ConjugateTranspose(u, rows, rows), rows, rows, u, rows), tol, "UᴴU %v", shape)
		RequireClose(t, Identity[T](cols), Mul(vt, cols, cols, ConjugateTranspose(vt, cols, cols), cols), tol, "VᴴV %v", shape)

		valuesOnly := make([]T, k)
		require.NoError(t, p.SingularValueDecomposition(false, slices.Clone(a), rows, cols, valuesOnly, nil, nil))
		RequireClose(t, s, valuesOnly, tol)
	}

	// diag(3, -1) has singular values 1, 3.
	s := make([]T, 2)
	require.NoError(t, p.SingularValueDecomposition(false, FromReal[T](3, 0, 0, -1), 2, 2, s, nil, nil))
	RequireClose(t, FromReal[T](1, 3), s, tol)

	// Rank one: one zero singular value, vectors still unitary.
	rank1 := FromReal[T](1, 2, 2, 4)
	u, vt := make([]T, 4), make([]T, 4)
	require.NoError(t, p.SingularValueDecomposition(true, slices.Clone(rank1), 2, 2, s, u, vt))
	require.InDelta(t, 0, numeric.Abs(s[0]), tol)
	require.InDelta(t, 5, numeric.RealPart(s[1]), tol*5)
	RequireClose(t, Identity[T](2), Mul(ConjugateTranspose(u, 2, 2), 2, 2, u, 2), tol)

	require.ErrorIs(t, p.SingularValueDecomposition(true, rank1, 2, 2, s, u[:3], vt), fault.ErrDimensionMismatch)
	require.ErrorIs(t, p.SingularValueDecomposition(false, rank1, 2, 2, s[:1], nil, nil), fault.ErrDimensionMismatch)
}
