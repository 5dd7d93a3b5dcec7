// SPDX-License-Identifier: MIT
// Package: lvnum/builder
//
// api.go - public entry points for the builder package.
//
// Design contract:
//   - One orchestrator: BuildSparse(order, bopts, cons...). It resolves the
//     config, runs every constructor in order over a shared Assembly, and
//     compresses the result into a canonical linalg.Sparse.
//   - Constructors only append entries; duplicates are summed, so stencils,
//     shifts and perturbations compose.
//   - Determinism: same order, options, seed and constructor order give the
//     same matrix.

package builder

import (
	"fmt"

	"github.com/katalvlaran/lvnum/linalg"
	"github.com/katalvlaran/lvnum/numeric"
	"github.com/katalvlaran/lvnum/storage"
)

const (
	methodBuildSparse = "BuildSparse"
	methodAdd         = "Assembly.Add"
	minOrder          = 1
)

// Assembly accumulates coordinate entries of an order×order matrix.
type Assembly[T numeric.Element] struct {
	order   int
	entries []storage.Triplet[T]
}

// Order returns the matrix order.
func (a *Assembly[T]) Order() int { return a.order }

// Add appends v at (i,j); entries at the same position are summed.
// Out-of-range positions are ErrConstructFailed.
func (a *Assembly[T]) Add(i, j int, v T) error {
	if i < 0 || i >= a.order || j < 0 || j >= a.order {
		return fmt.Errorf("%s: (%d,%d) outside %dx%d: %w", methodAdd, i, j, a.order, a.order, ErrConstructFailed)
	}
	a.entries = append(a.entries, storage.Triplet[T]{Row: i, Col: j, Value: v})

	return nil
}

// RowAbsSums returns Σ_j |a_ij| over j ≠ i for the entries added so far,
// with duplicates summed first.
func (a *Assembly[T]) RowAbsSums() []float64 {
	csr, err := storage.FromTriplets(a.order, a.order, a.entries)
	sums := make([]float64, a.order)
	if err != nil {
		return sums
	}
	for i := 0; i < a.order; i++ {
		for k := csr.RowPointers[i]; k < csr.RowPointers[i+1]; k++ {
			if csr.ColumnIndices[k] != i {
				sums[i] += numeric.Abs(csr.Values[k])
			}
		}
	}

	return sums
}

// Constructor appends entries to an Assembly using the resolved config.
// Constructors validate their parameters first and return sentinel errors;
// they never panic.
type Constructor[T numeric.Element] func(a *Assembly[T], cfg builderConfig) error

// BuildSparse assembles an order×order sparse matrix by applying cons in
// order. Any constructor error is wrapped with "BuildSparse: %w" and
// returned immediately.
//
// Errors:
//   - ErrTooSmall if order < 1.
//   - ErrConstructFailed for a nil constructor.
//   - Whatever a constructor returns.
//
// Complexity:
//   - Σ cost of the constructors, plus O(nnz·log nnz) for compression.
func BuildSparse[T numeric.Element](order int, bopts []BuilderOption, cons ...Constructor[T]) (*linalg.Sparse[T], error) {
	if order < minOrder {
		return nil, fmt.Errorf("%s: order=%d < min=%d: %w", methodBuildSparse, order, minOrder, ErrTooSmall)
	}
	cfg := newBuilderConfig(bopts...)
	a := &Assembly[T]{order: order}
	for i, fn := range cons {
		if fn == nil {
			return nil, fmt.Errorf("%s: nil constructor at index %d: %w", methodBuildSparse, i, ErrConstructFailed)
		}
		if err := fn(a, cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", methodBuildSparse, err)
		}
	}

	return linalg.NewSparseFromTriplets(order, order, a.entries)
}
