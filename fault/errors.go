// SPDX-License-Identifier: MIT

// Package fault defines the error taxonomy shared by every lvnum layer.
//
// Purpose:
//   - One source of truth for sentinel errors, so storage, kernels, the facade
//     and the solvers all report the same condition with the same value.
//   - Three categories that callers can test without knowing the concrete cause:
//   - ErrArgument: the caller passed malformed shapes, buffers or parameters.
//     Detected before any arithmetic; outputs are never partially mutated.
//   - ErrDomain: the input is well-formed but lacks the mathematical property
//     the algorithm needs (singular, not positive definite, rank deficient...).
//   - ErrIterative: an iterative method broke down.
//
// Every concrete sentinel matches its own category through errors.Is:
//
//	errors.Is(fault.ErrDimensionMismatch, fault.ErrArgument) == true
//	errors.Is(fault.ErrSingular, fault.ErrDomain)            == true
//
// Wrapping:
//   - Return sentinels directly from the detection site, or wrap them with
//     Wrap(op, err) to attach an operation tag. errors.Is keeps working.
package fault

import (
	"errors"
	"fmt"
)

// Category sentinels. They are never returned on their own; they exist so that
// callers can classify a failure with errors.Is.
var (
	// ErrArgument classifies shape, buffer and parameter errors.
	ErrArgument = errors.New("lvnum: invalid argument")

	// ErrDomain classifies numerical-domain errors.
	ErrDomain = errors.New("lvnum: numerical domain error")

	// ErrIterative classifies iterative-method breakdowns.
	ErrIterative = errors.New("lvnum: iterative breakdown")
)

// kindError is a sentinel that also matches its category.
type kindError struct {
	msg      string
	category error
}

func (e *kindError) Error() string { return e.msg }

// Is reports whether target is this sentinel's category.
func (e *kindError) Is(target error) bool { return target == e.category }

func argument(msg string) error  { return &kindError{msg: msg, category: ErrArgument} }
func domain(msg string) error    { return &kindError{msg: msg, category: ErrDomain} }
func iterative(msg string) error { return &kindError{msg: msg, category: ErrIterative} }

// Argument errors.
var (
	// ErrNilBuffer is returned when a required buffer, matrix or vector is nil.
	ErrNilBuffer = argument("lvnum: nil buffer")

	// ErrDimensionMismatch indicates incompatible lengths or shapes between operands.
	ErrDimensionMismatch = argument("lvnum: dimension mismatch")

	// ErrNonSquare signals that a square matrix was required.
	ErrNonSquare = argument("lvnum: matrix is not square")

	// ErrInvalidParameter covers negative orders, negative step counts,
	// unknown enum values and thin QR on a wide matrix.
	ErrInvalidParameter = argument("lvnum: invalid parameter")

	// ErrOutOfRange indicates an element index outside the valid bounds.
	ErrOutOfRange = argument("lvnum: index out of range")

	// ErrAliasing is returned when two buffers that must be distinct overlap.
	ErrAliasing = argument("lvnum: buffers must not alias")

	// ErrMalformed reports a storage layout that violates its structural invariants.
	ErrMalformed = argument("lvnum: malformed storage")
)

// Numerical-domain errors.
var (
	// ErrSingular is returned when an exactly zero pivot is met at solve or inverse time.
	ErrSingular = domain("lvnum: matrix is singular")

	// ErrNotPositiveDefinite is returned when a Cholesky pivot is not positive.
	ErrNotPositiveDefinite = domain("lvnum: matrix is not positive definite")

	// ErrNotSymmetric is returned when a (conjugate-)symmetric matrix was required.
	ErrNotSymmetric = domain("lvnum: matrix is not symmetric")

	// ErrRankDeficient is returned by QR-based solves when R has a numerically zero diagonal.
	ErrRankDeficient = domain("lvnum: matrix is rank deficient")

	// ErrNoConvergence is returned when an inner iteration (SVD sweeps) hits its bound.
	ErrNoConvergence = domain("lvnum: algorithm did not converge")
)

// ErrBreakdown is matched by every Krylov breakdown error.
var ErrBreakdown = iterative("lvnum: krylov breakdown")

// Wrap attaches an operation tag to err, preserving it for errors.Is/As.
// Wrap(op, nil) returns nil so that call sites can wrap unconditionally.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %w", op, err)
}

// Wrapf is Wrap with a formatted detail between the tag and the cause.
func Wrapf(op string, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s: %s: %w", op, fmt.Sprintf(format, args...), err)
}

// IsArgument reports whether err is an argument/shape error.
func IsArgument(err error) bool { return errors.Is(err, ErrArgument) }

// IsDomain reports whether err is a numerical-domain error.
func IsDomain(err error) bool { return errors.Is(err, ErrDomain) }

// IsIterative reports whether err is an iterative breakdown.
func IsIterative(err error) bool { return errors.Is(err, ErrIterative) }
