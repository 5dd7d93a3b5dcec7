// SPDX-License-Identifier: MIT

// Package builder assembles sparse test matrices from composable,
// functional-options-style constructors: differential stencils over paths
// and grids, random sparse patterns, shifts and diagonal dominance.
//
// Components:
//
//   - BuildSparse(order, bopts, cons...): the orchestrator. Constructors run
//     in order over one Assembly and duplicates are summed.
//   - Constructors: Path (three-point stencil), Grid (five-point stencil),
//     RandomSparse (density p), Shift (σ·I), DiagonallyDominant.
//   - Options: WithSeed / WithRand for randomness, WithConvection for
//     non-symmetric stencils, WithValueRange for random magnitudes.
//
// Guarantees:
//
//   - Deterministic for fixed options, seed and constructor order.
//   - Option constructors panic on meaningless values; constructors return
//     sentinel errors (ErrTooSmall, ErrBadSize, ErrInvalidProbability,
//     ErrNeedRandSource, ErrConstructFailed), each of which also matches a
//     fault argument category.
//
// Example:
//
//	a, err := builder.BuildSparse[float64](64, []builder.BuilderOption{builder.WithConvection(0.3)},
//		builder.Grid[float64](8, 8))
package builder
