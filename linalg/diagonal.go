// SPDX-License-Identifier: MIT
package linalg

import (
	"github.com/katalvlaran/lvnum/fault"
	"github.com/katalvlaran/lvnum/numeric"
	"github.com/katalvlaran/lvnum/storage"
)

const (
	opNewDiagonal      = "NewDiagonal"
	opDiagonalAt       = "Diagonal.At"
	opDiagonalSet      = "Diagonal.Set"
	opDiagonalMulVecTo = "Diagonal.MulVecTo"
)

// Diagonal is a rows×cols matrix with only its main diagonal stored.
type Diagonal[T numeric.Element] struct {
	buf storage.Diagonal[T]
}

// NewDiagonal copies values onto the diagonal of a rows×cols matrix.
// A nil values gives the zero matrix.
func NewDiagonal[T numeric.Element](rows, cols int, values []T) (*Diagonal[T], error) {
	var own []T
	if values != nil {
		own = make([]T, len(values))
		copy(own, values)
	}
	buf, err := storage.NewDiagonal(rows, cols, own)
	if err != nil {
		return nil, fault.Wrap(opNewDiagonal, err)
	}

	return &Diagonal[T]{buf: *buf}, nil
}

// Rows implements Matrix.
func (d *Diagonal[T]) Rows() int { return d.buf.Rows }

// Cols implements Matrix.
func (d *Diagonal[T]) Cols() int { return d.buf.Cols }

// At implements Matrix.
func (d *Diagonal[T]) At(i, j int) (T, error) {
	v, err := d.buf.At(i, j)
	if err != nil {
		return v, fault.Wrap(opDiagonalAt, err)
	}

	return v, nil
}

// Set implements Matrix. Off the diagonal only zero can be written.
func (d *Diagonal[T]) Set(i, j int, v T) error {
	if i < 0 || i >= d.buf.Rows || j < 0 || j >= d.buf.Cols {
		return fault.Wrapf(opDiagonalSet, fault.ErrOutOfRange, "(%d,%d) in %dx%d", i, j, d.buf.Rows, d.buf.Cols)
	}
	if i == j {
		d.buf.Data[i] = v
		return nil
	}
	var zero T
	if v != zero {
		return fault.Wrapf(opDiagonalSet, fault.ErrInvalidParameter, "off-diagonal (%d,%d)", i, j)
	}

	return nil
}

// Each visits the diagonal, including zeros on it.
func (d *Diagonal[T]) Each(fn func(i, j int, v T) bool) {
	for i, v := range d.buf.Data {
		if !fn(i, i, v) {
			return
		}
	}
}

// MulVecTo computes dst = D·x; x may alias dst.
func (d *Diagonal[T]) MulVecTo(dst, x *Vector[T]) error {
	if x.Len() != d.buf.Cols || dst.Len() != d.buf.Rows {
		return fault.Wrapf(opDiagonalMulVecTo, fault.ErrDimensionMismatch,
			"%dx%d · len %d into len %d", d.buf.Rows, d.buf.Cols, x.Len(), dst.Len())
	}
	n := len(d.buf.Data)
	for i := 0; i < n; i++ {
		dst.data[i] = d.buf.Data[i] * x.data[i]
	}
	clear(dst.data[n:])

	return nil
}

// ToDense implements Matrix.
func (d *Diagonal[T]) ToDense() *Dense[T] { return &Dense[T]{buf: *d.buf.ToDense()} }

// Values returns a copy of the diagonal.
func (d *Diagonal[T]) Values() []T {
	out := make([]T, len(d.buf.Data))
	copy(out, d.buf.Data)

	return out
}
