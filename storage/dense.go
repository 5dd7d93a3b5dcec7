// SPDX-License-Identifier: MIT
package storage

import (
	"github.com/katalvlaran/lvnum/fault"
	"github.com/katalvlaran/lvnum/numeric"
)

const (
	opNewDense           = "NewDense"
	opDenseFromColMajor  = "DenseFromColumnMajor"
	opDenseFromRowMajor  = "DenseFromRowMajor"
	opDenseValidate      = "Dense.Validate"
	opValidateShapeInput = "ValidateShape"
)

// Dense is a column-major rows×cols buffer.
type Dense[T numeric.Element] struct {
	Rows int
	Cols int
	Data []T // len(Data) == Rows*Cols
}

// ValidateShape rejects negative dimensions.
func ValidateShape(rows, cols int) error {
	if rows < 0 || cols < 0 {
		return fault.Wrapf(opValidateShapeInput, fault.ErrInvalidParameter, "shape %dx%d", rows, cols)
	}

	return nil
}

// NewDense allocates a zero-filled rows×cols buffer.
func NewDense[T numeric.Element](rows, cols int) (*Dense[T], error) {
	if err := ValidateShape(rows, cols); err != nil {
		return nil, fault.Wrap(opNewDense, err)
	}

	return &Dense[T]{Rows: rows, Cols: cols, Data: make([]T, rows*cols)}, nil
}

// DenseFromColumnMajor adopts data as a rows×cols column-major buffer.
// The caller must not retain data unless it intends to share the storage.
func DenseFromColumnMajor[T numeric.Element](rows, cols int, data []T) (*Dense[T], error) {
	if err := ValidateShape(rows, cols); err != nil {
		return nil, fault.Wrap(opDenseFromColMajor, err)
	}
	if len(data) != rows*cols {
		return nil, fault.Wrapf(opDenseFromColMajor, fault.ErrDimensionMismatch,
			"len(data)=%d, want %d", len(data), rows*cols)
	}

	return &Dense[T]{Rows: rows, Cols: cols, Data: data}, nil
}

// DenseFromRowMajor copies a row-major buffer into a fresh column-major one.
func DenseFromRowMajor[T numeric.Element](rows, cols int, data []T) (*Dense[T], error) {
	if err := ValidateShape(rows, cols); err != nil {
		return nil, fault.Wrap(opDenseFromRowMajor, err)
	}
	if len(data) != rows*cols {
		return nil, fault.Wrapf(opDenseFromRowMajor, fault.ErrDimensionMismatch,
			"len(data)=%d, want %d", len(data), rows*cols)
	}

	out := make([]T, rows*cols)
	var i, j int
	for i = 0; i < rows; i++ {
		for j = 0; j < cols; j++ {
			out[j*rows+i] = data[i*cols+j]
		}
	}

	return &Dense[T]{Rows: rows, Cols: cols, Data: out}, nil
}

// Index returns the flat offset of (i,j). No bounds check.
func (d *Dense[T]) Index(i, j int) int { return j*d.Rows + i }

// InBounds reports whether (i,j) addresses an element of d.
func (d *Dense[T]) InBounds(i, j int) bool {
	return i >= 0 && i < d.Rows && j >= 0 && j < d.Cols
}

// Validate checks the shape/buffer invariant.
func (d *Dense[T]) Validate() error {
	if d == nil {
		return fault.Wrap(opDenseValidate, fault.ErrNilBuffer)
	}
	if err := ValidateShape(d.Rows, d.Cols); err != nil {
		return fault.Wrap(opDenseValidate, err)
	}
	if len(d.Data) != d.Rows*d.Cols {
		return fault.Wrapf(opDenseValidate, fault.ErrDimensionMismatch,
			"len(data)=%d, want %d", len(d.Data), d.Rows*d.Cols)
	}

	return nil
}

// Clone returns a deep copy with its own buffer.
func (d *Dense[T]) Clone() *Dense[T] {
	data := make([]T, len(d.Data))
	copy(data, d.Data)

	return &Dense[T]{Rows: d.Rows, Cols: d.Cols, Data: data}
}

// RowMajor returns a fresh row-major copy of the elements.
func (d *Dense[T]) RowMajor() []T {
	out := make([]T, len(d.Data))
	var i, j int
	for j = 0; j < d.Cols; j++ {
		for i = 0; i < d.Rows; i++ {
			out[i*d.Cols+j] = d.Data[j*d.Rows+i]
		}
	}

	return out
}
