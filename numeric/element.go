// SPDX-License-Identifier: MIT

// Package numeric is the element abstraction every lvnum kernel is generic over.
//
// Purpose:
//   - Define the Element constraint: float32, float64, complex64, complex128.
//   - Provide the few scalar capabilities the kernels need beyond + - * /:
//     conjugation, magnitude, square root, power, finiteness and "almost equal".
//
// Determinism & Performance:
//   - Every helper resolves through a type switch on the concrete element;
//     the compiler specialises the generic call sites, so the switch is a
//     constant branch per instantiation.
//   - All magnitudes are reported as float64 regardless of element precision.
//
// Notes:
//   - The constraint deliberately lists exact types (no ~) so that the type
//     switches below are exhaustive.
package numeric

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/cmplxs/cscalar"
	"gonum.org/v1/gonum/floats/scalar"
)

// Element is the set of supported numeric element types.
type Element interface {
	float32 | float64 | complex64 | complex128
}

// Real is the subset of Element without an imaginary part.
type Real interface {
	float32 | float64
}

// Unit roundoff per precision (2^-24 and 2^-53).
const (
	SinglePrecision = 1.0 / (1 << 24)
	DoublePrecision = 1.0 / (1 << 53)
)

// IsComplex reports whether T carries an imaginary part.
func IsComplex[T Element]() bool {
	var zero T
	switch any(zero).(type) {
	case complex64, complex128:
		return true
	default:
		return false
	}
}

// IsSingle reports whether T is a 32-bit based element (float32 or complex64).
func IsSingle[T Element]() bool {
	var zero T
	switch any(zero).(type) {
	case float32, complex64:
		return true
	default:
		return false
	}
}

// Epsilon returns the unit roundoff of T's underlying real precision.
func Epsilon[T Element]() float64 {
	if IsSingle[T]() {
		return SinglePrecision
	}

	return DoublePrecision
}

// Conj returns the complex conjugate of v; real values are returned unchanged.
func Conj[T Element](v T) T {
	switch x := any(v).(type) {
	case complex64:
		return any(complex(real(x), -imag(x))).(T)
	case complex128:
		return any(cmplx.Conj(x)).(T)
	default:
		return v
	}
}

// Abs returns |v| as float64.
func Abs[T Element](v T) float64 {
	switch x := any(v).(type) {
	case float32:
		return math.Abs(float64(x))
	case float64:
		return math.Abs(x)
	case complex64:
		return cmplx.Abs(complex128(x))
	case complex128:
		return cmplx.Abs(x)
	}

	return math.NaN()
}

// AbsSquared returns |v|² without the square root.
func AbsSquared[T Element](v T) float64 {
	switch x := any(v).(type) {
	case float32:
		return float64(x) * float64(x)
	case float64:
		return x * x
	case complex64:
		re, im := float64(real(x)), float64(imag(x))
		return re*re + im*im
	case complex128:
		re, im := real(x), imag(x)
		return re*re + im*im
	}

	return math.NaN()
}

// RealPart returns the real component of v.
func RealPart[T Element](v T) float64 {
	switch x := any(v).(type) {
	case float32:
		return float64(x)
	case float64:
		return x
	case complex64:
		return float64(real(x))
	case complex128:
		return real(x)
	}

	return math.NaN()
}

// ImagPart returns the imaginary component of v (0 for real elements).
func ImagPart[T Element](v T) float64 {
	switch x := any(v).(type) {
	case complex64:
		return float64(imag(x))
	case complex128:
		return imag(x)
	}

	return 0
}

// FromFloat converts a real float64 into T.
func FromFloat[T Element](f float64) T {
	var zero T
	switch any(zero).(type) {
	case float32:
		return any(float32(f)).(T)
	case float64:
		return any(f).(T)
	case complex64:
		return any(complex(float32(f), 0)).(T)
	case complex128:
		return any(complex(f, 0)).(T)
	}

	return zero
}

// FromComplex converts c into T. Real element types keep only real(c).
func FromComplex[T Element](c complex128) T {
	var zero T
	switch any(zero).(type) {
	case float32:
		return any(float32(real(c))).(T)
	case float64:
		return any(real(c)).(T)
	case complex64:
		return any(complex64(c)).(T)
	case complex128:
		return any(c).(T)
	}

	return zero
}

// ToComplex widens v to complex128.
func ToComplex[T Element](v T) complex128 {
	return complex(RealPart(v), ImagPart(v))
}

// Sqrt returns the principal square root. Negative reals yield NaN.
func Sqrt[T Element](v T) T {
	switch x := any(v).(type) {
	case float32:
		return any(float32(math.Sqrt(float64(x)))).(T)
	case float64:
		return any(math.Sqrt(x)).(T)
	case complex64:
		return any(complex64(cmplx.Sqrt(complex128(x)))).(T)
	case complex128:
		return any(cmplx.Sqrt(x)).(T)
	}

	return v
}

// Pow returns v raised to p.
func Pow[T Element](v, p T) T {
	switch x := any(v).(type) {
	case float32:
		return any(float32(math.Pow(float64(x), float64(any(p).(float32))))).(T)
	case float64:
		return any(math.Pow(x, any(p).(float64))).(T)
	case complex64:
		return any(complex64(cmplx.Pow(complex128(x), complex128(any(p).(complex64))))).(T)
	case complex128:
		return any(cmplx.Pow(x, any(p).(complex128))).(T)
	}

	return v
}

// Phase returns v/|v|, the unit-modulus factor of v. Phase(0) is 1.
func Phase[T Element](v T) T {
	m := Abs(v)
	if m == 0 {
		return T(1)
	}

	return v / FromFloat[T](m)
}

// IsFinite reports whether every component of v is neither NaN nor ±Inf.
func IsFinite[T Element](v T) bool {
	re, im := RealPart(v), ImagPart(v)

	return !math.IsNaN(re) && !math.IsInf(re, 0) && !math.IsNaN(im) && !math.IsInf(im, 0)
}

// AlmostEqual reports whether a and b agree within tol, either absolutely or
// relative to the larger magnitude.
func AlmostEqual[T Element](a, b T, tol float64) bool {
	switch x := any(a).(type) {
	case float32:
		return scalar.EqualWithinAbsOrRel(float64(x), float64(any(b).(float32)), tol, tol)
	case float64:
		return scalar.EqualWithinAbsOrRel(x, any(b).(float64), tol, tol)
	case complex64:
		return cscalar.EqualWithinAbsOrRel(complex128(x), complex128(any(b).(complex64)), tol, tol)
	case complex128:
		return cscalar.EqualWithinAbsOrRel(x, any(b).(complex128), tol, tol)
	}

	return false
}

// AlmostZero reports whether |v| ≤ tol.
func AlmostZero[T Element](v T, tol float64) bool {
	return Abs(v) <= tol
}
