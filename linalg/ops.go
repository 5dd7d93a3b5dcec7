// SPDX-License-Identifier: MIT
package linalg

import (
	"github.com/katalvlaran/lvnum/fault"
	"github.com/katalvlaran/lvnum/kernel"
	"github.com/katalvlaran/lvnum/numeric"
)

const (
	opMul       = "Mul"
	opMulVec    = "MulVec"
	opAdd       = "Add"
	opSub       = "Sub"
	opScale     = "Scale"
	opNorm      = "Norm"
	opTranspose = "Transpose"
)

// dense returns m as *Dense without copying when it already is one.
// Callers must treat the result as read-only.
func dense[T numeric.Element](m Matrix[T]) *Dense[T] {
	if d, ok := m.(*Dense[T]); ok {
		return d
	}

	return m.ToDense()
}

func checkNotNil[T numeric.Element](op string, ms ...Matrix[T]) error {
	for _, m := range ms {
		if m == nil {
			return fault.Wrap(op, fault.ErrNilBuffer)
		}
	}

	return nil
}

// Mul returns a·b as a new dense matrix.
func Mul[T numeric.Element](a, b Matrix[T]) (*Dense[T], error) {
	if err := checkNotNil(opMul, a, b); err != nil {
		return nil, err
	}
	if a.Cols() != b.Rows() {
		return nil, fault.Wrapf(opMul, fault.ErrDimensionMismatch, "%dx%d · %dx%d", a.Rows(), a.Cols(), b.Rows(), b.Cols())
	}
	da, db := dense(a), dense(b)
	out, err := NewDense[T](a.Rows(), b.Cols())
	if err != nil {
		return nil, fault.Wrap(opMul, err)
	}
	err = ProviderFor[T]().MatrixMultiply(da.buf.Data, da.buf.Rows, da.buf.Cols, db.buf.Data, db.buf.Rows, db.buf.Cols, out.buf.Data)
	if err != nil {
		return nil, fault.Wrap(opMul, err)
	}

	return out, nil
}

// MulVec returns a·x as a new vector.
func MulVec[T numeric.Element](a Matrix[T], x *Vector[T]) (*Vector[T], error) {
	if err := checkNotNil(opMulVec, a); err != nil {
		return nil, err
	}
	out := &Vector[T]{data: make([]T, a.Rows())}
	if err := a.MulVecTo(out, x); err != nil {
		return nil, fault.Wrap(opMulVec, err)
	}

	return out, nil
}

// Add returns a + b.
func Add[T numeric.Element](a, b Matrix[T]) (*Dense[T], error) {
	return elementwise(opAdd, a, b, ProviderFor[T]().Add)
}

// Sub returns a − b.
func Sub[T numeric.Element](a, b Matrix[T]) (*Dense[T], error) {
	return elementwise(opSub, a, b, ProviderFor[T]().Subtract)
}

func elementwise[T numeric.Element](op string, a, b Matrix[T], kern func(x, y, result []T) error) (*Dense[T], error) {
	if err := checkNotNil(op, a, b); err != nil {
		return nil, err
	}
	if a.Rows() != b.Rows() || a.Cols() != b.Cols() {
		return nil, fault.Wrapf(op, fault.ErrDimensionMismatch, "%dx%d vs %dx%d", a.Rows(), a.Cols(), b.Rows(), b.Cols())
	}
	out := a.ToDense()
	if err := kern(out.buf.Data, dense(b).buf.Data, out.buf.Data); err != nil {
		return nil, fault.Wrap(op, err)
	}

	return out, nil
}

// Scale returns alpha·m.
func Scale[T numeric.Element](alpha T, m Matrix[T]) (*Dense[T], error) {
	if err := checkNotNil(opScale, m); err != nil {
		return nil, err
	}
	out := m.ToDense()
	if err := ProviderFor[T]().Scale(alpha, out.buf.Data, out.buf.Data); err != nil {
		return nil, fault.Wrap(opScale, err)
	}

	return out, nil
}

// Transpose returns mᵀ.
func Transpose[T numeric.Element](m Matrix[T]) (*Dense[T], error) {
	return transpose(m, false)
}

// ConjugateTranspose returns mᴴ; for real T it equals Transpose.
func ConjugateTranspose[T numeric.Element](m Matrix[T]) (*Dense[T], error) {
	return transpose(m, numeric.IsComplex[T]())
}

func transpose[T numeric.Element](m Matrix[T], conj bool) (*Dense[T], error) {
	if err := checkNotNil(opTranspose, m); err != nil {
		return nil, err
	}
	out, err := NewDense[T](m.Cols(), m.Rows())
	if err != nil {
		return nil, fault.Wrap(opTranspose, err)
	}
	rows := out.buf.Rows
	m.Each(func(i, j int, v T) bool {
		if conj {
			v = numeric.Conj(v)
		}
		out.buf.Data[i*rows+j] = v
		return true
	})

	return out, nil
}

// Norm returns the requested matrix norm of m.
func Norm[T numeric.Element](m Matrix[T], norm kernel.Norm) (float64, error) {
	if err := checkNotNil(opNorm, m); err != nil {
		return 0, err
	}
	d := dense(m)
	v, err := ProviderFor[T]().MatrixNorm(norm, d.buf.Rows, d.buf.Cols, d.buf.Data)
	if err != nil {
		return 0, fault.Wrap(opNorm, err)
	}

	return v, nil
}
