// SPDX-License-Identifier: MIT

// Package linalg is the matrix and vector facade over the kernel providers.
//
// Purpose:
//   - Matrix[T] is the common surface of Dense, Sparse and Diagonal; the
//     iterative solvers need nothing beyond it.
//   - Factorization objects (LU, Cholesky, QR, SVD) take a snapshot of a
//     matrix and answer solves, inverses and derived quantities.
//   - Every arithmetic kernel runs on the process-wide backend chosen with
//     UseBackend/UseNamed/UseDefault (reference by default).
//
// Contract:
//   - Shapes are fixed at construction; At/Set bounds-check and return
//     fault.ErrOutOfRange, they never panic.
//   - A matrix owns its buffer unless it was created as a view
//     (NewDenseView, NewVectorView).
//   - Read-only use from several goroutines is safe; mutation is not
//     synchronized.
package linalg

import "github.com/katalvlaran/lvnum/numeric"

// Matrix is a rows×cols matrix over T.
type Matrix[T numeric.Element] interface {
	// Rows returns the row count.
	Rows() int
	// Cols returns the column count.
	Cols() int
	// At returns element (i,j).
	At(i, j int) (T, error)
	// Set assigns element (i,j).
	Set(i, j int, v T) error
	// Each calls fn for stored elements in a deterministic order until fn
	// returns false. Dense visits every element column by column; Sparse
	// and Diagonal visit their stored entries only.
	Each(fn func(i, j int, v T) bool)
	// MulVecTo computes dst = A·x.
	MulVecTo(dst, x *Vector[T]) error
	// ToDense returns a dense copy.
	ToDense() *Dense[T]
}

var (
	_ Matrix[float64]    = (*Dense[float64])(nil)
	_ Matrix[complex128] = (*Sparse[complex128])(nil)
	_ Matrix[float32]    = (*Diagonal[float32])(nil)
)
