// SPDX-License-Identifier: MIT
package linalg_test

import (
	"testing"

	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvnum/fault"
	"github.com/katalvlaran/lvnum/kernel"
	"github.com/katalvlaran/lvnum/linalg"
	"github.com/katalvlaran/lvnum/storage"
)

func TestDenseConstructors(t *testing.T) {
	rowMajor := []float64{1, 2, 3, 4, 5, 6}
	a := must.M1(linalg.NewDenseFromRowMajor(2, 3, rowMajor))
	assert.Equal(t, 2, a.Rows())
	assert.Equal(t, 3, a.Cols())
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, a.RawColumnMajor())
	assert.Equal(t, rowMajor, a.RowMajor())

	b := must.M1(linalg.NewDenseFromRows([][]float64{{1, 2, 3}, {4, 5, 6}}))
	assert.Equal(t, a.RawColumnMajor(), b.RawColumnMajor())

	_, err := linalg.NewDenseFromRows([][]float64{{1, 2}, {3}})
	require.ErrorIs(t, err, fault.ErrDimensionMismatch)
	_, err = linalg.NewDense[float64](-1, 2)
	require.ErrorIs(t, err, fault.ErrInvalidParameter)
	_, err = linalg.NewDenseFromRowMajor(2, 2, []float64{1, 2, 3})
	require.ErrorIs(t, err, fault.ErrDimensionMismatch)

	id := must.M1(linalg.NewIdentity[complex128](3))
	assert.Equal(t, complex128(1), must.M1(id.At(2, 2)))
	assert.Equal(t, complex128(0), must.M1(id.At(0, 2)))
}

func TestDenseCopiesAndViews(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	owned := must.M1(linalg.NewDenseFromColumnMajor(2, 2, data))
	view := must.M1(linalg.NewDenseView(2, 2, data))

	data[0] = 9
	assert.Equal(t, 1.0, must.M1(owned.At(0, 0)))
	assert.Equal(t, 9.0, must.M1(view.At(0, 0)))

	col := must.M1(view.Column(1))
	must.M(col.Set(0, 7))
	assert.Equal(t, 7.0, data[2])
	_, err := view.Column(2)
	require.ErrorIs(t, err, fault.ErrOutOfRange)

	c := owned.Clone()
	must.M(c.Set(1, 1, -1))
	assert.Equal(t, 4.0, must.M1(owned.At(1, 1)))
}

func TestDenseBoundsAreErrors(t *testing.T) {
	a := must.M1(linalg.NewDense[float32](2, 2))
	_, err := a.At(2, 0)
	require.ErrorIs(t, err, fault.ErrOutOfRange)
	require.ErrorIs(t, a.Set(0, -1, 1), fault.ErrOutOfRange)
	require.True(t, fault.IsArgument(a.Set(5, 5, 1)))
}

func TestEachOrderAndEarlyStop(t *testing.T) {
	a := must.M1(linalg.NewDenseFromRows([][]float64{{1, 2}, {3, 4}}))
	var seen []float64
	a.Each(func(_, _ int, v float64) bool {
		seen = append(seen, v)
		return true
	})
	assert.Equal(t, []float64{1, 3, 2, 4}, seen)

	count := 0
	a.Each(func(_, _ int, _ float64) bool {
		count++
		return count < 2
	})
	assert.Equal(t, 2, count)
}

func TestSparse(t *testing.T) {
	s := must.M1(linalg.NewSparseFromTriplets(3, 3, []storage.Triplet[float64]{
		{Row: 0, Col: 0, Value: 4},
		{Row: 2, Col: 1, Value: 2},
		{Row: 0, Col: 0, Value: 1},
		{Row: 1, Col: 2, Value: -1},
	}))
	assert.Equal(t, 3, s.NonZeros())
	assert.Equal(t, 5.0, must.M1(s.At(0, 0)))
	assert.Equal(t, 0.0, must.M1(s.At(1, 1)))

	t.Run("set", func(t *testing.T) {
		c := s.Clone()
		must.M(c.Set(1, 1, 3))
		must.M(c.Set(1, 0, 0))
		assert.Equal(t, 4, c.NonZeros())
		assert.Equal(t, 3.0, must.M1(c.At(1, 1)))
		assert.Equal(t, -1.0, must.M1(c.At(1, 2)))
		assert.Equal(t, 2.0, must.M1(c.At(2, 1)))
		require.NoError(t, c.CSR().Validate())
		assert.True(t, c.CSR().IsCanonical())
		assert.Equal(t, 3, s.NonZeros(), "clone must not share the pattern")
		require.ErrorIs(t, c.Set(3, 0, 1), fault.ErrOutOfRange)
	})

	t.Run("each", func(t *testing.T) {
		type entry struct {
			i, j int
			v    float64
		}
		var got []entry
		s.Each(func(i, j int, v float64) bool {
			got = append(got, entry{i, j, v})
			return true
		})
		assert.Equal(t, []entry{{0, 0, 5}, {1, 2, -1}, {2, 1, 2}}, got)
	})

	t.Run("matvec", func(t *testing.T) {
		x := linalg.NewVectorFromSlice([]float64{1, 2, 3})
		y := must.M1(linalg.MulVec[float64](s, x))
		assert.Equal(t, []float64{5, -3, 4}, y.Raw())

		// In place: x is read before being overwritten.
		must.M(s.MulVecTo(x, x))
		assert.Equal(t, []float64{5, -3, 4}, x.Raw())

		short := linalg.NewVectorFromSlice([]float64{1})
		require.ErrorIs(t, s.MulVecTo(y, short), fault.ErrDimensionMismatch)
	})

	t.Run("dense round trip", func(t *testing.T) {
		d := s.ToDense()
		back := linalg.NewSparseFromDense(d)
		assert.Equal(t, s.CSR(), back.CSR())
		assert.Equal(t, []float64{5, 0, 0}, s.Diagonal())
	})

	t.Run("from csr", func(t *testing.T) {
		raw := &storage.CSR[float64]{
			Rows: 2, Cols: 2,
			RowPointers:   []int{0, 2, 3},
			ColumnIndices: []int{1, 1, 0},
			Values:        []float64{1, 2, 3},
		}
		m := must.M1(linalg.NewSparseFromCSR(raw))
		assert.Equal(t, 3.0, must.M1(m.At(0, 1)))
		assert.Equal(t, 2, m.NonZeros())
		assert.Equal(t, []int{1, 1, 0}, raw.ColumnIndices, "input is left as is")

		raw.RowPointers = []int{0, 4, 3}
		_, err := linalg.NewSparseFromCSR(raw)
		require.ErrorIs(t, err, fault.ErrMalformed)
	})
}

func TestDiagonalMatrix(t *testing.T) {
	d := must.M1(linalg.NewDiagonal(3, 2, []float32{2, 3}))
	assert.Equal(t, float32(3), must.M1(d.At(1, 1)))
	assert.Equal(t, float32(0), must.M1(d.At(2, 0)))

	require.NoError(t, d.Set(0, 1, 0))
	require.ErrorIs(t, d.Set(0, 1, 1), fault.ErrInvalidParameter)
	require.ErrorIs(t, d.Set(3, 0, 0), fault.ErrOutOfRange)
	must.M(d.Set(0, 0, 5))
	assert.Equal(t, []float32{5, 3}, d.Values())

	dst := linalg.NewVectorFromSlice([]float32{9, 9, 9})
	must.M(d.MulVecTo(dst, linalg.NewVectorFromSlice([]float32{1, 2})))
	assert.Equal(t, []float32{5, 6, 0}, dst.Raw())

	assert.Equal(t, []float32{5, 0, 0, 0, 3, 0}, d.ToDense().RawColumnMajor())

	_, err := linalg.NewDiagonal(2, 2, []float32{1})
	require.ErrorIs(t, err, fault.ErrDimensionMismatch)
}

func TestVector(t *testing.T) {
	v := linalg.NewVectorFromSlice([]complex128{1 + 1i, 2})
	w := linalg.NewVectorFromSlice([]complex128{1i, 1})

	dot := must.M1(v.Dot(w))
	assert.Equal(t, complex(3, 1), dot) // conj(1+i)·i + 2

	must.M(v.AddScaled(2, w))
	assert.Equal(t, []complex128{1 + 3i, 4}, v.Raw())
	must.M(v.Scale(-1))
	assert.Equal(t, []complex128{-1 - 3i, -4}, v.Raw())

	assert.InDelta(t, 4, v.NormInf(), 1e-15)
	assert.InDelta(t, 5.0990195135927845, v.Norm2(), 1e-12)
	assert.False(t, v.HasNonFinite())

	_, err := v.At(2)
	require.ErrorIs(t, err, fault.ErrOutOfRange)
	require.ErrorIs(t, v.CopyFrom(linalg.NewVectorFromSlice([]complex128{1})), fault.ErrDimensionMismatch)
	_, err = linalg.NewVector[float64](-1)
	require.ErrorIs(t, err, fault.ErrInvalidParameter)
	_, err = v.Dot(linalg.NewVectorFromSlice([]complex128{1}))
	require.ErrorIs(t, err, fault.ErrDimensionMismatch)

	c := v.Clone()
	c.Zero()
	assert.Equal(t, -4.0, real(v.Raw()[1]))
}

func TestOps(t *testing.T) {
	a := must.M1(linalg.NewDenseFromRows([][]float64{{1, 2}, {3, 4}, {5, 6}}))
	b := must.M1(linalg.NewDenseFromRows([][]float64{{1, 0, -1}, {2, 1, 0}}))

	p := must.M1(linalg.Mul[float64](a, b))
	assert.Equal(t, []float64{5, 2, -1, 11, 4, -3, 17, 6, -5}, p.RowMajor())

	_, err := linalg.Mul[float64](a, a)
	require.ErrorIs(t, err, fault.ErrDimensionMismatch)

	at := must.M1(linalg.Transpose[float64](a))
	assert.Equal(t, []float64{1, 3, 5, 2, 4, 6}, at.RowMajor())

	sum := must.M1(linalg.Add[float64](a, a))
	assert.Equal(t, []float64{2, 4, 6, 8, 10, 12}, sum.RowMajor())
	diff := must.M1(linalg.Sub[float64](sum, a))
	assert.Equal(t, a.RowMajor(), diff.RowMajor())
	_, err = linalg.Add[float64](a, b)
	require.ErrorIs(t, err, fault.ErrDimensionMismatch)

	scaled := must.M1(linalg.Scale[float64](0.5, a))
	assert.Equal(t, []float64{0.5, 1, 1.5, 2, 2.5, 3}, scaled.RowMajor())
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, a.RowMajor(), "inputs are not modified")

	one := must.M1(linalg.Norm[float64](a, kernel.OneNorm))
	inf := must.M1(linalg.Norm[float64](a, kernel.InfinityNorm))
	assert.InDelta(t, 12, one, 1e-12)
	assert.InDelta(t, 11, inf, 1e-12)

	_, err = linalg.Mul[float64](nil, a)
	require.ErrorIs(t, err, fault.ErrNilBuffer)
}

func TestOpsMixStorage(t *testing.T) {
	d := must.M1(linalg.NewDiagonal(2, 2, []complex128{1i, 2}))
	s := must.M1(linalg.NewSparseFromTriplets(2, 2, []storage.Triplet[complex128]{{Row: 0, Col: 1, Value: 1 + 1i}}))

	sum := must.M1(linalg.Add[complex128](d, s))
	assert.Equal(t, []complex128{1i, 1 + 1i, 0, 2}, sum.RowMajor())

	h := must.M1(linalg.ConjugateTranspose[complex128](sum))
	assert.Equal(t, []complex128{-1i, 0, 1 - 1i, 2}, h.RowMajor())

	prod := must.M1(linalg.Mul[complex128](d, s))
	assert.Equal(t, []complex128{0, -1 + 1i, 0, 0}, prod.RowMajor())
}
