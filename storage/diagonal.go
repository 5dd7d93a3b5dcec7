// SPDX-License-Identifier: MIT
package storage

import (
	"github.com/katalvlaran/lvnum/fault"
	"github.com/katalvlaran/lvnum/numeric"
)

const (
	opNewDiagonal = "NewDiagonal"
	opDiagonalAt  = "Diagonal.At"
)

// Diagonal stores only the main diagonal of a rows×cols matrix.
type Diagonal[T numeric.Element] struct {
	Rows int
	Cols int
	Data []T // len == min(Rows, Cols)
}

// NewDiagonal builds a diagonal buffer. A nil data allocates zeros;
// otherwise data is adopted and must have min(rows, cols) entries.
func NewDiagonal[T numeric.Element](rows, cols int, data []T) (*Diagonal[T], error) {
	if err := ValidateShape(rows, cols); err != nil {
		return nil, fault.Wrap(opNewDiagonal, err)
	}
	n := min(rows, cols)
	if data == nil {
		data = make([]T, n)
	}
	if len(data) != n {
		return nil, fault.Wrapf(opNewDiagonal, fault.ErrDimensionMismatch, "len(data)=%d, want %d", len(data), n)
	}

	return &Diagonal[T]{Rows: rows, Cols: cols, Data: data}, nil
}

// At returns (i,j); off-diagonal reads are zero.
func (d *Diagonal[T]) At(i, j int) (T, error) {
	var zero T
	if i < 0 || i >= d.Rows || j < 0 || j >= d.Cols {
		return zero, fault.Wrapf(opDiagonalAt, fault.ErrOutOfRange, "(%d,%d) in %dx%d", i, j, d.Rows, d.Cols)
	}
	if i != j {
		return zero, nil
	}

	return d.Data[i], nil
}

// ToDense expands d into a fresh dense buffer.
func (d *Diagonal[T]) ToDense() *Dense[T] {
	out := &Dense[T]{Rows: d.Rows, Cols: d.Cols, Data: make([]T, d.Rows*d.Cols)}
	for i, v := range d.Data {
		out.Data[i*d.Rows+i] = v
	}

	return out
}

// Clone returns a deep copy.
func (d *Diagonal[T]) Clone() *Diagonal[T] {
	data := make([]T, len(d.Data))
	copy(data, d.Data)

	return &Diagonal[T]{Rows: d.Rows, Cols: d.Cols, Data: data}
}
