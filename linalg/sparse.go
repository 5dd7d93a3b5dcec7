// SPDX-License-Identifier: MIT
package linalg

import (
	"slices"

	"github.com/katalvlaran/lvnum/fault"
	"github.com/katalvlaran/lvnum/kernel"
	"github.com/katalvlaran/lvnum/numeric"
	"github.com/katalvlaran/lvnum/storage"
)

const (
	opNewSparseTriplets = "NewSparseFromTriplets"
	opNewSparseCSR      = "NewSparseFromCSR"
	opSparseAt          = "Sparse.At"
	opSparseSet         = "Sparse.Set"
	opSparseMulVecTo    = "Sparse.MulVecTo"
)

// Sparse is a CSR matrix kept in canonical form (sorted, duplicate-free rows).
type Sparse[T numeric.Element] struct {
	csr storage.CSR[T]
}

// NewSparseFromTriplets assembles a sparse matrix; duplicates are summed.
func NewSparseFromTriplets[T numeric.Element](rows, cols int, entries []storage.Triplet[T]) (*Sparse[T], error) {
	csr, err := storage.FromTriplets(rows, cols, entries)
	if err != nil {
		return nil, fault.Wrap(opNewSparseTriplets, err)
	}

	return &Sparse[T]{csr: *csr}, nil
}

// NewSparseFromCSR validates and copies csr, canonicalizing the copy.
func NewSparseFromCSR[T numeric.Element](csr *storage.CSR[T]) (*Sparse[T], error) {
	if err := csr.Validate(); err != nil {
		return nil, fault.Wrap(opNewSparseCSR, err)
	}
	own := csr.Clone()
	own.Canonicalize()

	return &Sparse[T]{csr: *own}, nil
}

// NewSparseFromDense compresses d, dropping exact zeros.
func NewSparseFromDense[T numeric.Element](d *Dense[T]) *Sparse[T] {
	return &Sparse[T]{csr: *storage.CSRFromDense(&d.buf)}
}

// Rows implements Matrix.
func (s *Sparse[T]) Rows() int { return s.csr.Rows }

// Cols implements Matrix.
func (s *Sparse[T]) Cols() int { return s.csr.Cols }

// NonZeros returns the number of stored entries.
func (s *Sparse[T]) NonZeros() int { return s.csr.NonZeros() }

// At implements Matrix.
func (s *Sparse[T]) At(i, j int) (T, error) {
	v, err := s.csr.At(i, j)
	if err != nil {
		return v, fault.Wrap(opSparseAt, err)
	}

	return v, nil
}

// Set implements Matrix. Writing into an unstored position inserts it,
// which costs O(nnz).
func (s *Sparse[T]) Set(i, j int, v T) error {
	c := &s.csr
	if i < 0 || i >= c.Rows || j < 0 || j >= c.Cols {
		return fault.Wrapf(opSparseSet, fault.ErrOutOfRange, "(%d,%d) in %dx%d", i, j, c.Rows, c.Cols)
	}
	lo, hi := c.RowPointers[i], c.RowPointers[i+1]
	k, found := slices.BinarySearch(c.ColumnIndices[lo:hi], j)
	if found {
		c.Values[lo+k] = v
		return nil
	}
	var zero T
	if v == zero {
		return nil
	}
	c.ColumnIndices = slices.Insert(c.ColumnIndices, lo+k, j)
	c.Values = slices.Insert(c.Values, lo+k, v)
	for r := i + 1; r <= c.Rows; r++ {
		c.RowPointers[r]++
	}

	return nil
}

// Each visits stored entries row by row, in column order.
func (s *Sparse[T]) Each(fn func(i, j int, v T) bool) {
	c := &s.csr
	for i := 0; i < c.Rows; i++ {
		for k := c.RowPointers[i]; k < c.RowPointers[i+1]; k++ {
			if !fn(i, c.ColumnIndices[k], c.Values[k]) {
				return
			}
		}
	}
}

// MulVecTo computes dst = A·x by row dot products; x may alias dst.
func (s *Sparse[T]) MulVecTo(dst, x *Vector[T]) error {
	c := &s.csr
	if x.Len() != c.Cols || dst.Len() != c.Rows {
		return fault.Wrapf(opSparseMulVecTo, fault.ErrDimensionMismatch,
			"%dx%d · len %d into len %d", c.Rows, c.Cols, x.Len(), dst.Len())
	}
	in := x.data
	if kernel.Overlap(dst.data, x.data) {
		in = slices.Clone(x.data)
	}
	for i := 0; i < c.Rows; i++ {
		var sum T
		for k := c.RowPointers[i]; k < c.RowPointers[i+1]; k++ {
			sum += c.Values[k] * in[c.ColumnIndices[k]]
		}
		dst.data[i] = sum
	}

	return nil
}

// ToDense implements Matrix.
func (s *Sparse[T]) ToDense() *Dense[T] { return &Dense[T]{buf: *s.csr.ToDense()} }

// CSR returns a deep copy of the canonical CSR buffer.
func (s *Sparse[T]) CSR() *storage.CSR[T] { return s.csr.Clone() }

// Diagonal returns a copy of the main diagonal.
func (s *Sparse[T]) Diagonal() []T {
	c := &s.csr
	out := make([]T, min(c.Rows, c.Cols))
	for i := range out {
		lo, hi := c.RowPointers[i], c.RowPointers[i+1]
		if k, found := slices.BinarySearch(c.ColumnIndices[lo:hi], i); found {
			out[i] = c.Values[lo+k]
		}
	}

	return out
}

// Clone returns a deep copy.
func (s *Sparse[T]) Clone() *Sparse[T] { return &Sparse[T]{csr: *s.csr.Clone()} }
