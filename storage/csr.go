// SPDX-License-Identifier: MIT
package storage

import (
	"slices"

	"github.com/katalvlaran/lvnum/fault"
	"github.com/katalvlaran/lvnum/numeric"
)

const (
	opNewCSR       = "NewCSR"
	opCSRValidate  = "CSR.Validate"
	opCSRAt        = "CSR.At"
	opFromTriplets = "FromTriplets"
)

// CSR is a compressed-sparse-row buffer.
//
// Row i owns the half-open range [RowPointers[i], RowPointers[i+1]) of
// ColumnIndices and Values.
type CSR[T numeric.Element] struct {
	Rows          int
	Cols          int
	RowPointers   []int // len == Rows+1
	ColumnIndices []int // len == nnz
	Values        []T   // len == nnz
}

// NewCSR returns an empty (all-zero) rows×cols CSR buffer.
func NewCSR[T numeric.Element](rows, cols int) (*CSR[T], error) {
	if err := ValidateShape(rows, cols); err != nil {
		return nil, fault.Wrap(opNewCSR, err)
	}

	return &CSR[T]{
		Rows:          rows,
		Cols:          cols,
		RowPointers:   make([]int, rows+1),
		ColumnIndices: []int{},
		Values:        []T{},
	}, nil
}

// NonZeros returns the number of stored entries (explicit zeros included).
func (c *CSR[T]) NonZeros() int { return len(c.Values) }

// Validate checks the structural invariants. It does not require canonical form.
func (c *CSR[T]) Validate() error {
	if c == nil {
		return fault.Wrap(opCSRValidate, fault.ErrNilBuffer)
	}
	if err := ValidateShape(c.Rows, c.Cols); err != nil {
		return fault.Wrap(opCSRValidate, err)
	}
	if len(c.RowPointers) != c.Rows+1 {
		return fault.Wrapf(opCSRValidate, fault.ErrMalformed,
			"len(rowPointers)=%d, want %d", len(c.RowPointers), c.Rows+1)
	}
	if len(c.ColumnIndices) != len(c.Values) {
		return fault.Wrapf(opCSRValidate, fault.ErrMalformed,
			"len(columnIndices)=%d != len(values)=%d", len(c.ColumnIndices), len(c.Values))
	}
	if c.RowPointers[0] != 0 || c.RowPointers[c.Rows] != len(c.Values) {
		return fault.Wrapf(opCSRValidate, fault.ErrMalformed,
			"rowPointers must span [0,%d]", len(c.Values))
	}

	// Row pointers must be non-decreasing.
	var i int
	for i = 0; i < c.Rows; i++ {
		if c.RowPointers[i] > c.RowPointers[i+1] {
			return fault.Wrapf(opCSRValidate, fault.ErrMalformed, "rowPointers decrease at row %d", i)
		}
	}
	// Every column index lies inside the shape.
	for i = range c.ColumnIndices {
		if c.ColumnIndices[i] < 0 || c.ColumnIndices[i] >= c.Cols {
			return fault.Wrapf(opCSRValidate, fault.ErrMalformed,
				"column index %d at position %d outside [0,%d)", c.ColumnIndices[i], i, c.Cols)
		}
	}

	return nil
}

// IsCanonical reports whether every row has strictly increasing column indices.
// Assumes Validate succeeded.
func (c *CSR[T]) IsCanonical() bool {
	var row, k int
	for row = 0; row < c.Rows; row++ {
		for k = c.RowPointers[row] + 1; k < c.RowPointers[row+1]; k++ {
			if c.ColumnIndices[k-1] >= c.ColumnIndices[k] {
				return false
			}
		}
	}

	return true
}

// Canonicalize sorts each row by column and sums duplicate entries in place.
// Assumes Validate succeeded.
func (c *CSR[T]) Canonicalize() {
	if c.IsCanonical() {
		return
	}

	type entry struct {
		col int
		val T
	}

	var (
		write   int
		scratch []entry
		row, k  int
	)
	pointers := make([]int, c.Rows+1)
	for row = 0; row < c.Rows; row++ {
		// Gather and sort this row.
		scratch = scratch[:0]
		for k = c.RowPointers[row]; k < c.RowPointers[row+1]; k++ {
			scratch = append(scratch, entry{col: c.ColumnIndices[k], val: c.Values[k]})
		}
		slices.SortStableFunc(scratch, func(a, b entry) int { return a.col - b.col })

		// Compact, summing runs of equal columns. write never overtakes the
		// read cursor because compaction only shrinks rows.
		pointers[row] = write
		for k = 0; k < len(scratch); k++ {
			if write > pointers[row] && c.ColumnIndices[write-1] == scratch[k].col {
				c.Values[write-1] += scratch[k].val
				continue
			}
			c.ColumnIndices[write] = scratch[k].col
			c.Values[write] = scratch[k].val
			write++
		}
	}
	pointers[c.Rows] = write

	c.RowPointers = pointers
	c.ColumnIndices = c.ColumnIndices[:write]
	c.Values = c.Values[:write]
}

// At returns element (i,j), summing duplicates if the buffer is not canonical.
func (c *CSR[T]) At(i, j int) (T, error) {
	var sum T
	if i < 0 || i >= c.Rows || j < 0 || j >= c.Cols {
		return sum, fault.Wrapf(opCSRAt, fault.ErrOutOfRange, "(%d,%d) in %dx%d", i, j, c.Rows, c.Cols)
	}
	for k := c.RowPointers[i]; k < c.RowPointers[i+1]; k++ {
		if c.ColumnIndices[k] == j {
			sum += c.Values[k]
		}
	}

	return sum, nil
}

// Clone returns a deep copy.
func (c *CSR[T]) Clone() *CSR[T] {
	return &CSR[T]{
		Rows:          c.Rows,
		Cols:          c.Cols,
		RowPointers:   slices.Clone(c.RowPointers),
		ColumnIndices: slices.Clone(c.ColumnIndices),
		Values:        slices.Clone(c.Values),
	}
}

// ToDense expands c into a fresh dense buffer.
func (c *CSR[T]) ToDense() *Dense[T] {
	d := &Dense[T]{Rows: c.Rows, Cols: c.Cols, Data: make([]T, c.Rows*c.Cols)}
	var row, k int
	for row = 0; row < c.Rows; row++ {
		for k = c.RowPointers[row]; k < c.RowPointers[row+1]; k++ {
			d.Data[c.ColumnIndices[k]*c.Rows+row] += c.Values[k]
		}
	}

	return d
}

// CSRFromDense compresses d, dropping exact zeros. The result is canonical.
func CSRFromDense[T numeric.Element](d *Dense[T]) *CSR[T] {
	var zero T
	c := &CSR[T]{Rows: d.Rows, Cols: d.Cols, RowPointers: make([]int, d.Rows+1)}
	var i, j int
	for i = 0; i < d.Rows; i++ {
		for j = 0; j < d.Cols; j++ {
			if v := d.Data[j*d.Rows+i]; v != zero {
				c.ColumnIndices = append(c.ColumnIndices, j)
				c.Values = append(c.Values, v)
			}
		}
		c.RowPointers[i+1] = len(c.Values)
	}
	if c.Values == nil {
		c.ColumnIndices, c.Values = []int{}, []T{}
	}

	return c
}

// Triplet is one coordinate-format entry.
type Triplet[T numeric.Element] struct {
	Row   int
	Col   int
	Value T
}

// FromTriplets assembles a canonical CSR buffer; duplicate coordinates are summed.
func FromTriplets[T numeric.Element](rows, cols int, entries []Triplet[T]) (*CSR[T], error) {
	if err := ValidateShape(rows, cols); err != nil {
		return nil, fault.Wrap(opFromTriplets, err)
	}
	for n, e := range entries {
		if e.Row < 0 || e.Row >= rows || e.Col < 0 || e.Col >= cols {
			return nil, fault.Wrapf(opFromTriplets, fault.ErrOutOfRange,
				"entry %d at (%d,%d) in %dx%d", n, e.Row, e.Col, rows, cols)
		}
	}

	// Counting sort by row.
	c := &CSR[T]{
		Rows:          rows,
		Cols:          cols,
		RowPointers:   make([]int, rows+1),
		ColumnIndices: make([]int, len(entries)),
		Values:        make([]T, len(entries)),
	}
	for _, e := range entries {
		c.RowPointers[e.Row+1]++
	}
	for i := 0; i < rows; i++ {
		c.RowPointers[i+1] += c.RowPointers[i]
	}
	next := slices.Clone(c.RowPointers[:rows])
	for _, e := range entries {
		c.ColumnIndices[next[e.Row]] = e.Col
		c.Values[next[e.Row]] = e.Value
		next[e.Row]++
	}
	c.Canonicalize()

	return c, nil
}
