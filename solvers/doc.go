// SPDX-License-Identifier: MIT

// Package solvers provides preconditioned Krylov-subspace solvers for
// A·x = b over any linalg.Matrix.
//
// Purpose:
//   - BiCgStab and GPBiCG, both right-preconditioned and honouring the
//     caller's initial guess.
//   - Stop criteria composed into an Iterator that owns every stopping
//     decision; a solver only reports breakdowns.
//   - Unit, Diagonal (Jacobi) and ILU0 preconditioners.
//
// Contract:
//   - Non-convergence is a Status, not an error. Errors are argument errors
//     (shapes, nil inputs), preconditioner failures, and *BreakdownError,
//     which matches fault.ErrBreakdown.
//   - Cancellation is cooperative: Iterator.Cancel or a cancelled context is
//     observed once per iteration and ends the solve with status Cancelled and
//     a nil error.
//   - Terminal statuses are sticky: once the iterator reports one for
//     iteration k, every call for a later iteration returns it. A repeated
//     call for the same iteration re-evaluates the criteria, which is how
//     the solvers confirm a converged recurrence against the true residual.
//
// Concurrency:
//   - A solver value is stateless and may be shared. Each concurrent solve
//     needs its own vectors, Iterator and Preconditioner; the matrix may be
//     shared if nobody mutates it.
//
// Example:
//
//	it, _ := solvers.DefaultIterator[float64](1000, 1e-10)
//	x, err := solvers.SolveVector(ctx, solvers.NewBiCgStab[float64](), a, b, it, nil)
//	if err == nil && it.Status() == solvers.Converged { ... }
package solvers
