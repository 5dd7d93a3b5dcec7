// SPDX-License-Identifier: MIT
package linalg_test

import (
	"math"
	"slices"
	"testing"

	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/lvnum/fault"
	"github.com/katalvlaran/lvnum/kernel"
	"github.com/katalvlaran/lvnum/kernel/kerneltest"
	"github.com/katalvlaran/lvnum/linalg"
)

var (
	scenarioA = [][]float64{{4, 1}, {1, 3}}
	scenarioB = []float64{1, 2}
	scenarioX = []float64{1.0 / 11, 7.0 / 11}
)

// oracle copies a column-major float64 matrix into a gonum mat.Dense.
func oracle(m *linalg.Dense[float64]) *mat.Dense {
	return mat.NewDense(m.Rows(), m.Cols(), m.RowMajor())
}

func TestScenarioViaLUAndThinQR(t *testing.T) {
	a := must.M1(linalg.NewDenseFromRows(scenarioA))
	b := linalg.NewVectorFromSlice(scenarioB)

	lu := must.M1(linalg.FactorizeLU[float64](a))
	x := must.M1(lu.SolveVec(b))
	assert.InDeltaSlice(t, scenarioX, x.Raw(), 1e-10)

	qr := must.M1(linalg.FactorizeQR[float64](a, kernel.ThinQR))
	x = must.M1(qr.SolveVec(b))
	assert.InDeltaSlice(t, scenarioX, x.Raw(), 1e-10)

	assert.Equal(t, scenarioB, b.Raw(), "right-hand side is not modified")
}

func TestLU(t *testing.T) {
	rng := kerneltest.NewRand()
	const n = 6
	a := must.M1(linalg.NewDenseFromColumnMajor(n, n, kerneltest.DiagonallyDominant[float64](rng, n)))
	b := must.M1(linalg.NewDenseFromColumnMajor(n, 2, kerneltest.Random[float64](rng, n, 2)))
	lu := must.M1(linalg.FactorizeLU[float64](a))

	t.Run("solve matches gonum", func(t *testing.T) {
		x := must.M1(lu.Solve(b))
		var want mat.Dense
		require.NoError(t, want.Solve(oracle(a), oracle(b)))
		assert.True(t, floats.EqualApprox(want.RawMatrix().Data, x.RowMajor(), 1e-10))
	})

	t.Run("factors reproduce PA", func(t *testing.T) {
		l, u := lu.L(), lu.U()
		pa := a.Clone()
		raw := pa.RawColumnMajor()
		for i, p := range lu.Pivots() {
			for j := 0; j < n; j++ {
				raw[j*n+i], raw[j*n+p] = raw[j*n+p], raw[j*n+i]
			}
		}
		lu2 := must.M1(linalg.Mul[float64](l, u))
		kerneltest.RequireClose(t, pa.RawColumnMajor(), lu2.RawColumnMajor(), 1e-12)
	})

	t.Run("determinant matches gonum", func(t *testing.T) {
		want := mat.Det(oracle(a))
		assert.InDelta(t, want, lu.Determinant(), 1e-9*math.Abs(want))
	})

	t.Run("inverse", func(t *testing.T) {
		inv := must.M1(lu.Inverse())
		prod := must.M1(linalg.Mul[float64](a, inv))
		kerneltest.RequireClose(t, kerneltest.Identity[float64](n), prod.RawColumnMajor(), 1e-12)
	})

	t.Run("permutation determinant", func(t *testing.T) {
		swap := must.M1(linalg.NewDenseFromRows([][]float64{{0, 1}, {1, 0}}))
		assert.Equal(t, -1.0, must.M1(linalg.Determinant[float64](swap)))
	})
}

func TestLUSingularAndShapes(t *testing.T) {
	singular := must.M1(linalg.NewDenseFromRows([][]float64{{1, 2}, {2, 4}}))
	lu := must.M1(linalg.FactorizeLU[float64](singular))
	assert.Equal(t, 0.0, lu.Determinant())

	_, err := lu.SolveVec(linalg.NewVectorFromSlice([]float64{1, 1}))
	require.ErrorIs(t, err, fault.ErrSingular)
	require.True(t, fault.IsDomain(err))
	_, err = linalg.Inverse[float64](singular)
	require.ErrorIs(t, err, fault.ErrSingular)

	_, err = lu.SolveVec(linalg.NewVectorFromSlice([]float64{1}))
	require.ErrorIs(t, err, fault.ErrDimensionMismatch)

	_, err = linalg.FactorizeLU[float64](must.M1(linalg.NewDense[float64](2, 3)))
	require.ErrorIs(t, err, fault.ErrNonSquare)

	empty := must.M1(linalg.FactorizeLU[float64](must.M1(linalg.NewDense[float64](0, 0))))
	assert.Equal(t, 1.0, empty.Determinant())
}

func TestLUComplexSparse(t *testing.T) {
	rng := kerneltest.NewRand()
	const n = 5
	a := must.M1(linalg.NewDenseFromColumnMajor(n, n, kerneltest.DiagonallyDominant[complex128](rng, n)))
	sparse := linalg.NewSparseFromDense(a)
	want := kerneltest.Random[complex128](rng, n, 1)
	b := must.M1(linalg.MulVec[complex128](sparse, linalg.NewVectorFromSlice(want)))

	lu := must.M1(linalg.FactorizeLU[complex128](sparse))
	x := must.M1(lu.SolveVec(b))
	kerneltest.RequireClose(t, want, x.Raw(), 1e-10)
}

func TestCholesky(t *testing.T) {
	rng := kerneltest.NewRand()
	const n = 4
	a := must.M1(linalg.NewDenseFromColumnMajor(n, n, kerneltest.HermitianPositiveDefinite[complex128](rng, n)))
	c := must.M1(linalg.FactorizeCholesky[complex128](a))

	l := c.L()
	lh := must.M1(linalg.ConjugateTranspose[complex128](l))
	llh := must.M1(linalg.Mul[complex128](l, lh))
	kerneltest.RequireClose(t, a.RawColumnMajor(), llh.RawColumnMajor(), 1e-10)
	for j := 1; j < n; j++ {
		assert.Equal(t, complex128(0), must.M1(l.At(0, j)), "strict upper triangle is zero")
	}

	want := kerneltest.Random[complex128](rng, n, 1)
	b := must.M1(linalg.MulVec[complex128](a, linalg.NewVectorFromSlice(want)))
	x := must.M1(c.SolveVec(b))
	kerneltest.RequireClose(t, want, x.Raw(), 1e-10)

	bm := must.M1(linalg.NewDenseFromColumnMajor(n, 1, b.Raw()))
	xm := must.M1(c.Solve(bm))
	kerneltest.RequireClose(t, want, xm.RawColumnMajor(), 1e-10)

	det := must.M1(linalg.Determinant[complex128](a))
	assert.InDelta(t, real(det), c.Determinant(), 1e-9*real(det))
}

func TestCholeskyRejects(t *testing.T) {
	_, err := linalg.FactorizeCholesky[float64](must.M1(linalg.NewDenseFromRows([][]float64{{2, 1}, {0, 2}})))
	require.ErrorIs(t, err, fault.ErrNotSymmetric)

	_, err = linalg.FactorizeCholesky[float64](must.M1(linalg.NewDenseFromRows([][]float64{{1, 2}, {2, 1}})))
	require.ErrorIs(t, err, fault.ErrNotPositiveDefinite)

	_, err = linalg.FactorizeCholesky[complex128](must.M1(linalg.NewDiagonal(2, 2, []complex128{1i, 1})))
	require.ErrorIs(t, err, fault.ErrNotSymmetric)

	_, err = linalg.FactorizeCholesky[float64](must.M1(linalg.NewDense[float64](3, 2)))
	require.ErrorIs(t, err, fault.ErrNonSquare)
}

func TestQR(t *testing.T) {
	rng := kerneltest.NewRand()
	const rows, cols = 5, 3
	a := must.M1(linalg.NewDenseFromColumnMajor(rows, cols, kerneltest.Random[float64](rng, rows, cols)))
	b := linalg.NewVectorFromSlice(kerneltest.Random[float64](rng, rows, 1))

	var want mat.Dense
	require.NoError(t, want.Solve(oracle(a), mat.NewDense(rows, 1, b.Raw())))

	for _, method := range []kernel.QRMethod{kernel.FullQR, kernel.ThinQR} {
		qr := must.M1(linalg.FactorizeQR[float64](a, method))
		q, r := qr.Q(), qr.R()
		qCols := rows
		if method == kernel.ThinQR {
			qCols = cols
		}
		require.Equal(t, qCols, q.Cols())

		qt := must.M1(linalg.Transpose[float64](q))
		qtq := must.M1(linalg.Mul[float64](qt, q))
		kerneltest.RequireClose(t, kerneltest.Identity[float64](qCols), qtq.RawColumnMajor(), 1e-12, method)

		qrProd := must.M1(linalg.Mul[float64](q, r))
		kerneltest.RequireClose(t, a.RawColumnMajor(), qrProd.RawColumnMajor(), 1e-12, method)

		x := must.M1(qr.SolveVec(b))
		assert.True(t, floats.EqualApprox(want.RawMatrix().Data, x.Raw(), 1e-10), method)
	}
}

func TestQRRejects(t *testing.T) {
	wide := must.M1(linalg.NewDense[float64](2, 3))
	_, err := linalg.FactorizeQR[float64](wide, kernel.ThinQR)
	require.ErrorIs(t, err, fault.ErrInvalidParameter)

	full := must.M1(linalg.FactorizeQR[float64](wide, kernel.FullQR))
	_, err = full.SolveVec(linalg.NewVectorFromSlice([]float64{1, 2}))
	require.ErrorIs(t, err, fault.ErrInvalidParameter)

	deficient := must.M1(linalg.NewDenseFromRows([][]float64{{1, 2}, {2, 4}, {3, 6}}))
	qr := must.M1(linalg.FactorizeQR[float64](deficient, kernel.ThinQR))
	_, err = qr.SolveVec(linalg.NewVectorFromSlice([]float64{1, 2, 3}))
	require.ErrorIs(t, err, fault.ErrRankDeficient)

	_, err = linalg.FactorizeQR[float64](wide, kernel.QRMethod(7))
	require.ErrorIs(t, err, fault.ErrInvalidParameter)
}

func TestSVD(t *testing.T) {
	rng := kerneltest.NewRand()
	for _, shape := range [][2]int{{4, 3}, {3, 4}, {3, 3}} {
		rows, cols := shape[0], shape[1]
		a := must.M1(linalg.NewDenseFromColumnMajor(rows, cols, kerneltest.Random[float64](rng, rows, cols)))
		f := must.M1(linalg.FactorizeSVD[float64](a, true))
		s := f.Values()
		require.True(t, slices.IsSorted(s), "ascending: %v", s)

		var ref mat.SVD
		require.True(t, ref.Factorize(oracle(a), mat.SVDNone))
		want := ref.Values(nil)
		slices.Reverse(want)
		assert.True(t, floats.EqualApprox(want, s, 1e-10), "%v vs %v", want, s)

		// U·Σ·Vᵀ ≈ A.
		sigma := must.M1(linalg.NewDense[float64](rows, cols))
		for i, v := range s {
			must.M(sigma.Set(i, i, v))
		}
		us := must.M1(linalg.Mul[float64](f.U(), sigma))
		usv := must.M1(linalg.Mul[float64](us, f.VT()))
		kerneltest.RequireClose(t, a.RawColumnMajor(), usv.RawColumnMajor(), 1e-10, shape)

		assert.InDelta(t, s[len(s)-1], f.Norm2(), 0)
		assert.InDelta(t, ref.Cond(), f.ConditionNumber(), 1e-8*ref.Cond())
	}
}

func TestSVDDerived(t *testing.T) {
	d := must.M1(linalg.NewDiagonal(3, 3, []float32{4, -1, 2}))
	f := must.M1(linalg.FactorizeSVD[float32](d, false))
	assert.InDeltaSlice(t, []float64{1, 2, 4}, f.Values(), 1e-6)
	assert.Nil(t, f.U())
	assert.Nil(t, f.VT())
	assert.InDelta(t, 4, f.ConditionNumber(), 1e-5)
	assert.Equal(t, 3, f.Rank(-1))
	assert.Equal(t, 2, f.Rank(1.5))

	rankOne := must.M1(linalg.NewDenseFromRows([][]complex128{{1, 2i}, {2, 4i}}))
	g := must.M1(linalg.FactorizeSVD[complex128](rankOne, false))
	assert.Equal(t, 1, g.Rank(-1))
	assert.LessOrEqual(t, g.Values()[0], 1e-12)
	assert.Greater(t, g.ConditionNumber(), 1e12)

	for _, v := range g.Values() {
		assert.GreaterOrEqual(t, v, 0.0)
	}
	assert.InDelta(t, 5, g.Norm2(), 1e-12)
}
