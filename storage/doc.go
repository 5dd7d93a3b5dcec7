// SPDX-License-Identifier: MIT

// Package storage defines the element layouts lvnum matrices are backed by.
//
// Purpose:
//   - Pure data: layouts know their invariants and how to check or restore
//     them, but carry no arithmetic. Kernels and the linalg facade own the math.
//
// Layouts:
//   - Dense: one contiguous column-major buffer, element (i,j) at j*Rows+i.
//   - CSR: compressed sparse rows. RowPointers has Rows+1 non-decreasing
//     entries from 0 to nnz; ColumnIndices lie in [0,Cols). Canonical form
//     additionally requires strictly increasing column indices within a row.
//   - Diagonal: Data has min(Rows,Cols) entries; every off-diagonal read is 0.
//   - Triplet: coordinate (row, col, value) entries, the exchange format used
//     by readers. Duplicates are summed when assembled into CSR.
//
// Errors:
//   - Constructors and Validate report fault.ErrInvalidParameter for negative
//     shapes, fault.ErrDimensionMismatch for buffers of the wrong length,
//     fault.ErrOutOfRange for indices outside the shape and fault.ErrMalformed
//     for broken CSR structure.
package storage
