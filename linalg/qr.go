// SPDX-License-Identifier: MIT
package linalg

import (
	"github.com/katalvlaran/lvnum/fault"
	"github.com/katalvlaran/lvnum/kernel"
	"github.com/katalvlaran/lvnum/numeric"
)

const (
	opFactorizeQR = "FactorizeQR"
	opQRSolveM    = "QR.Solve"
	opQRSolveVec  = "QR.SolveVec"
)

// QR holds explicit Householder QR factors of a rows×cols matrix.
// With kernel.FullQR, Q is rows×rows and R rows×cols; with kernel.ThinQR
// (rows ≥ cols), Q is rows×cols and R cols×cols.
type QR[T numeric.Element] struct {
	method     kernel.QRMethod
	rows, cols int
	q, r       *Dense[T]
	tau        []T
}

// FactorizeQR factors a copy of m. m is not modified.
func FactorizeQR[T numeric.Element](m Matrix[T], method kernel.QRMethod) (*QR[T], error) {
	if err := checkNotNil(opFactorizeQR, m); err != nil {
		return nil, err
	}
	if err := kernel.CheckQRMethod(opFactorizeQR, method); err != nil {
		return nil, err
	}
	rows, cols := m.Rows(), m.Cols()
	f := &QR[T]{method: method, rows: rows, cols: cols, tau: make([]T, min(rows, cols))}
	work := m.ToDense()
	prov := ProviderFor[T]()

	switch method {
	case kernel.ThinQR:
		if rows < cols {
			return nil, fault.Wrapf(opFactorizeQR, fault.ErrInvalidParameter, "thin QR of %dx%d", rows, cols)
		}
		r, _ := NewDense[T](cols, cols)
		if err := prov.ThinQRFactor(work.buf.Data, rows, cols, r.buf.Data, f.tau); err != nil {
			return nil, fault.Wrap(opFactorizeQR, err)
		}
		f.q, f.r = work, r
	default:
		q, _ := NewDense[T](rows, rows)
		if err := prov.QRFactor(work.buf.Data, rows, cols, q.buf.Data, f.tau); err != nil {
			return nil, fault.Wrap(opFactorizeQR, err)
		}
		f.q, f.r = q, work
	}

	return f, nil
}

// Method reports which factor shapes are held.
func (f *QR[T]) Method() kernel.QRMethod { return f.method }

// Q returns a copy of the orthonormal factor.
func (f *QR[T]) Q() *Dense[T] { return f.q.Clone() }

// R returns a copy of the upper-triangular factor.
func (f *QR[T]) R() *Dense[T] { return f.r.Clone() }

// Solve returns the least-squares X minimizing ‖A·X − B‖. Requires
// rows ≥ cols; a numerically zero R diagonal yields fault.ErrRankDeficient.
func (f *QR[T]) Solve(b *Dense[T]) (*Dense[T], error) {
	if b == nil {
		return nil, fault.Wrap(opQRSolveM, fault.ErrNilBuffer)
	}
	if b.buf.Rows != f.rows {
		return nil, fault.Wrapf(opQRSolveM, fault.ErrDimensionMismatch, "%d rows, b has %d", f.rows, b.buf.Rows)
	}
	x := &Dense[T]{}
	x.buf.Rows, x.buf.Cols = f.cols, b.buf.Cols
	x.buf.Data = make([]T, f.cols*b.buf.Cols)
	if err := f.solve(b.buf.Data, b.buf.Cols, x.buf.Data); err != nil {
		return nil, fault.Wrap(opQRSolveM, err)
	}

	return x, nil
}

// SolveVec returns the least-squares x minimizing ‖A·x − b‖.
func (f *QR[T]) SolveVec(b *Vector[T]) (*Vector[T], error) {
	if b == nil {
		return nil, fault.Wrap(opQRSolveVec, fault.ErrNilBuffer)
	}
	if b.Len() != f.rows {
		return nil, fault.Wrapf(opQRSolveVec, fault.ErrDimensionMismatch, "%d rows, len(b)=%d", f.rows, b.Len())
	}
	x := &Vector[T]{data: make([]T, f.cols)}
	if err := f.solve(b.data, 1, x.data); err != nil {
		return nil, fault.Wrap(opQRSolveVec, err)
	}

	return x, nil
}

func (f *QR[T]) solve(b []T, nrhs int, x []T) error {
	return ProviderFor[T]().QRSolveFactored(f.q.buf.Data, f.r.buf.Data, f.rows, f.cols, f.tau, b, nrhs, x, f.method)
}
