// SPDX-License-Identifier: MIT
package linalg

import (
	"github.com/katalvlaran/lvnum/fault"
	"github.com/katalvlaran/lvnum/numeric"
	"github.com/katalvlaran/lvnum/storage"
)

const (
	opNewDense           = "NewDense"
	opNewDenseRowMajor   = "NewDenseFromRowMajor"
	opNewDenseColMajor   = "NewDenseFromColumnMajor"
	opNewDenseView       = "NewDenseView"
	opDenseAt            = "Dense.At"
	opDenseSet           = "Dense.Set"
	opDenseMulVecTo      = "Dense.MulVecTo"
	opDenseColumn        = "Dense.Column"
	opNewIdentity        = "NewIdentity"
	opDenseFromSliceRows = "NewDenseFromRows"
)

// Dense is a column-major dense matrix.
type Dense[T numeric.Element] struct {
	buf storage.Dense[T]
}

// NewDense returns a zero rows×cols matrix.
func NewDense[T numeric.Element](rows, cols int) (*Dense[T], error) {
	buf, err := storage.NewDense[T](rows, cols)
	if err != nil {
		return nil, fault.Wrap(opNewDense, err)
	}

	return &Dense[T]{buf: *buf}, nil
}

// NewDenseFromRowMajor copies a row-major buffer.
func NewDenseFromRowMajor[T numeric.Element](rows, cols int, data []T) (*Dense[T], error) {
	buf, err := storage.DenseFromRowMajor(rows, cols, data)
	if err != nil {
		return nil, fault.Wrap(opNewDenseRowMajor, err)
	}

	return &Dense[T]{buf: *buf}, nil
}

// NewDenseFromColumnMajor copies a column-major buffer.
func NewDenseFromColumnMajor[T numeric.Element](rows, cols int, data []T) (*Dense[T], error) {
	own := make([]T, len(data))
	copy(own, data)
	buf, err := storage.DenseFromColumnMajor(rows, cols, own)
	if err != nil {
		return nil, fault.Wrap(opNewDenseColMajor, err)
	}

	return &Dense[T]{buf: *buf}, nil
}

// NewDenseView wraps a column-major buffer without copying; the matrix and
// the caller share data.
func NewDenseView[T numeric.Element](rows, cols int, data []T) (*Dense[T], error) {
	buf, err := storage.DenseFromColumnMajor(rows, cols, data)
	if err != nil {
		return nil, fault.Wrap(opNewDenseView, err)
	}

	return &Dense[T]{buf: *buf}, nil
}

// NewDenseFromRows builds a matrix from row slices of equal length.
func NewDenseFromRows[T numeric.Element](rows [][]T) (*Dense[T], error) {
	if len(rows) == 0 {
		return NewDense[T](0, 0)
	}
	cols := len(rows[0])
	flat := make([]T, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fault.Wrapf(opDenseFromSliceRows, fault.ErrDimensionMismatch, "row %d has %d entries, want %d", i, len(row), cols)
		}
		flat = append(flat, row...)
	}

	return NewDenseFromRowMajor(len(rows), cols, flat)
}

// NewIdentity returns the n×n identity.
func NewIdentity[T numeric.Element](n int) (*Dense[T], error) {
	d, err := NewDense[T](n, n)
	if err != nil {
		return nil, fault.Wrap(opNewIdentity, err)
	}
	for i := 0; i < n; i++ {
		d.buf.Data[i*n+i] = 1
	}

	return d, nil
}

// Rows implements Matrix.
func (m *Dense[T]) Rows() int { return m.buf.Rows }

// Cols implements Matrix.
func (m *Dense[T]) Cols() int { return m.buf.Cols }

// At implements Matrix.
func (m *Dense[T]) At(i, j int) (T, error) {
	if !m.buf.InBounds(i, j) {
		var zero T
		return zero, fault.Wrapf(opDenseAt, fault.ErrOutOfRange, "(%d,%d) in %dx%d", i, j, m.buf.Rows, m.buf.Cols)
	}

	return m.buf.Data[m.buf.Index(i, j)], nil
}

// Set implements Matrix.
func (m *Dense[T]) Set(i, j int, v T) error {
	if !m.buf.InBounds(i, j) {
		return fault.Wrapf(opDenseSet, fault.ErrOutOfRange, "(%d,%d) in %dx%d", i, j, m.buf.Rows, m.buf.Cols)
	}
	m.buf.Data[m.buf.Index(i, j)] = v

	return nil
}

// Each visits every element, column by column.
func (m *Dense[T]) Each(fn func(i, j int, v T) bool) {
	rows := m.buf.Rows
	for k, v := range m.buf.Data {
		if !fn(k%rows, k/rows, v) {
			return
		}
	}
}

// MulVecTo computes dst = A·x through the bound provider.
func (m *Dense[T]) MulVecTo(dst, x *Vector[T]) error {
	if x.Len() != m.buf.Cols || dst.Len() != m.buf.Rows {
		return fault.Wrapf(opDenseMulVecTo, fault.ErrDimensionMismatch,
			"%dx%d · len %d into len %d", m.buf.Rows, m.buf.Cols, x.Len(), dst.Len())
	}
	err := ProviderFor[T]().MatrixMultiply(m.buf.Data, m.buf.Rows, m.buf.Cols, x.data, x.Len(), 1, dst.data)

	return fault.Wrap(opDenseMulVecTo, err)
}

// ToDense returns a deep copy.
func (m *Dense[T]) ToDense() *Dense[T] { return m.Clone() }

// Clone returns a deep copy with its own buffer.
func (m *Dense[T]) Clone() *Dense[T] { return &Dense[T]{buf: *m.buf.Clone()} }

// RawColumnMajor exposes the column-major backing buffer.
func (m *Dense[T]) RawColumnMajor() []T { return m.buf.Data }

// RowMajor returns a fresh row-major copy of the elements.
func (m *Dense[T]) RowMajor() []T { return m.buf.RowMajor() }

// Column returns a vector view of column j.
func (m *Dense[T]) Column(j int) (*Vector[T], error) {
	if j < 0 || j >= m.buf.Cols {
		return nil, fault.Wrapf(opDenseColumn, fault.ErrOutOfRange, "column %d of %d", j, m.buf.Cols)
	}
	r := m.buf.Rows

	return NewVectorView(m.buf.Data[j*r : (j+1)*r : (j+1)*r]), nil
}

// IsSquare reports Rows() == Cols().
func (m *Dense[T]) IsSquare() bool { return m.buf.Rows == m.buf.Cols }
