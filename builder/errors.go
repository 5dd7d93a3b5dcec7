// SPDX-License-Identifier: MIT
// Package: lvnum/builder
//
// errors.go - sentinel errors for the builder package.
//
// Error policy:
//   - Only package-level sentinels are exposed; callers branch with errors.Is.
//   - Every sentinel also matches its fault category (fault.ErrInvalidParameter,
//     fault.ErrDimensionMismatch, fault.ErrOutOfRange), so generic callers
//     can classify builder failures with fault.IsArgument.
//   - Constructors attach context with %w; validation panics are confined to
//     option constructors (WithX...).

package builder

import (
	"fmt"

	"github.com/katalvlaran/lvnum/fault"
)

// ErrTooSmall indicates that a size parameter (order, rows, cols) is below
// the constructor's minimum.
var ErrTooSmall = fmt.Errorf("builder: parameter too small: %w", fault.ErrInvalidParameter)

// ErrBadSize indicates that a constructor's shape does not match the order of
// the matrix being assembled (e.g. Grid(rows, cols) with rows·cols ≠ order).
var ErrBadSize = fmt.Errorf("builder: size does not match order: %w", fault.ErrDimensionMismatch)

// ErrInvalidProbability indicates a probability outside [0,1].
var ErrInvalidProbability = fmt.Errorf("builder: probability out of range: %w", fault.ErrInvalidParameter)

// ErrNeedRandSource indicates that a stochastic constructor ran without
// WithSeed/WithRand.
var ErrNeedRandSource = fmt.Errorf("builder: rng is required: %w", fault.ErrInvalidParameter)

// ErrConstructFailed indicates a nil constructor or an entry outside the
// matrix.
var ErrConstructFailed = fmt.Errorf("builder: construction failed: %w", fault.ErrOutOfRange)
