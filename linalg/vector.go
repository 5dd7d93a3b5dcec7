// SPDX-License-Identifier: MIT
package linalg

import (
	"math"

	"github.com/katalvlaran/lvnum/fault"
	"github.com/katalvlaran/lvnum/kernel"
	"github.com/katalvlaran/lvnum/numeric"
)

const (
	opNewVector   = "NewVector"
	opVectorAt    = "Vector.At"
	opVectorSet   = "Vector.Set"
	opVectorCopy  = "Vector.CopyFrom"
	opVectorDot   = "Vector.Dot"
	opVectorAxpy  = "Vector.AddScaled"
	opVectorScale = "Vector.Scale"
)

// Vector is a fixed-length sequence of elements.
// A Vector owns its buffer unless it was created by NewVectorView.
type Vector[T numeric.Element] struct {
	data []T
}

// NewVector returns a zero vector of length n.
func NewVector[T numeric.Element](n int) (*Vector[T], error) {
	if n < 0 {
		return nil, fault.Wrapf(opNewVector, fault.ErrInvalidParameter, "length %d", n)
	}

	return &Vector[T]{data: make([]T, n)}, nil
}

// NewVectorFromSlice returns a vector holding a copy of data.
func NewVectorFromSlice[T numeric.Element](data []T) *Vector[T] {
	out := make([]T, len(data))
	copy(out, data)

	return &Vector[T]{data: out}
}

// NewVectorView returns a vector sharing data; writes go through to the slice.
func NewVectorView[T numeric.Element](data []T) *Vector[T] {
	return &Vector[T]{data: data}
}

// Len returns the vector length.
func (v *Vector[T]) Len() int { return len(v.data) }

// At returns element i.
func (v *Vector[T]) At(i int) (T, error) {
	if i < 0 || i >= len(v.data) {
		var zero T
		return zero, fault.Wrapf(opVectorAt, fault.ErrOutOfRange, "index %d, length %d", i, len(v.data))
	}

	return v.data[i], nil
}

// Set assigns element i.
func (v *Vector[T]) Set(i int, x T) error {
	if i < 0 || i >= len(v.data) {
		return fault.Wrapf(opVectorSet, fault.ErrOutOfRange, "index %d, length %d", i, len(v.data))
	}
	v.data[i] = x

	return nil
}

// Raw exposes the backing slice.
func (v *Vector[T]) Raw() []T { return v.data }

// Clone returns a deep copy.
func (v *Vector[T]) Clone() *Vector[T] { return NewVectorFromSlice(v.data) }

// CopyFrom overwrites v with src; lengths must match.
func (v *Vector[T]) CopyFrom(src *Vector[T]) error {
	if len(src.data) != len(v.data) {
		return fault.Wrapf(opVectorCopy, fault.ErrDimensionMismatch, "length %d into %d", len(src.data), len(v.data))
	}
	copy(v.data, src.data)

	return nil
}

// Zero clears every element.
func (v *Vector[T]) Zero() { clear(v.data) }

// Dot returns the conjugate inner product vᴴ·w.
func (v *Vector[T]) Dot(w *Vector[T]) (T, error) {
	d, err := ProviderFor[T]().ConjugateDotProduct(v.data, w.data)
	if err != nil {
		return d, fault.Wrap(opVectorDot, err)
	}

	return d, nil
}

// AddScaled computes v = v + alpha·x in place.
func (v *Vector[T]) AddScaled(alpha T, x *Vector[T]) error {
	if err := ProviderFor[T]().AddVectorToScaledVector(v.data, alpha, x.data, v.data); err != nil {
		return fault.Wrap(opVectorAxpy, err)
	}

	return nil
}

// Scale multiplies v by alpha in place.
func (v *Vector[T]) Scale(alpha T) error {
	if err := ProviderFor[T]().Scale(alpha, v.data, v.data); err != nil {
		return fault.Wrap(opVectorScale, err)
	}

	return nil
}

// Norm2 returns the Euclidean norm, scaled against overflow.
func (v *Vector[T]) Norm2() float64 {
	norm, _ := ProviderFor[T]().MatrixNorm(kernel.FrobeniusNorm, len(v.data), 1, v.data)

	return norm
}

// NormInf returns max |vᵢ|.
func (v *Vector[T]) NormInf() float64 {
	var m float64
	for _, x := range v.data {
		m = math.Max(m, numeric.Abs(x))
	}

	return m
}

// HasNonFinite reports whether any element is NaN or ±Inf.
func (v *Vector[T]) HasNonFinite() bool {
	for _, x := range v.data {
		if !numeric.IsFinite(x) {
			return true
		}
	}

	return false
}
