// SPDX-License-Identifier: MIT
package kernel

import (
	"math"
	"unsafe"

	"github.com/katalvlaran/lvnum/fault"
	"github.com/katalvlaran/lvnum/numeric"
)

// The helpers below are the single source of truth for argument checks and
// are shared by every provider. They return wrapped fault sentinels tagged
// with the caller's op name and never touch buffer contents.

// CheckSameLength requires len(x) == len(y).
func CheckSameLength[T numeric.Element](op string, x, y []T) error {
	if len(x) != len(y) {
		return fault.Wrapf(op, fault.ErrDimensionMismatch, "len(x)=%d != len(y)=%d", len(x), len(y))
	}

	return nil
}

// CheckVectors requires x, y and result to share one length.
func CheckVectors[T numeric.Element](op string, x, y, result []T) error {
	if err := CheckSameLength(op, x, y); err != nil {
		return err
	}
	if len(result) != len(x) {
		return fault.Wrapf(op, fault.ErrDimensionMismatch, "len(result)=%d, want %d", len(result), len(x))
	}

	return nil
}

// CheckShape rejects negative dimensions.
func CheckShape(op string, rows, cols int) error {
	if rows < 0 || cols < 0 {
		return fault.Wrapf(op, fault.ErrInvalidParameter, "shape %dx%d", rows, cols)
	}

	return nil
}

// CheckBuffer requires a non-nil buffer of exactly rows*cols elements.
// A nil buffer is accepted for an empty shape.
func CheckBuffer[T numeric.Element](op, name string, buf []T, rows, cols int) error {
	if buf == nil && rows*cols > 0 {
		return fault.Wrapf(op, fault.ErrNilBuffer, "%s", name)
	}
	if len(buf) != rows*cols {
		return fault.Wrapf(op, fault.ErrDimensionMismatch, "len(%s)=%d, want %d", name, len(buf), rows*cols)
	}

	return nil
}

// CheckSquare validates order and an order×order buffer.
func CheckSquare[T numeric.Element](op, name string, buf []T, order int) error {
	if order < 0 {
		return fault.Wrapf(op, fault.ErrInvalidParameter, "order %d", order)
	}

	return CheckBuffer(op, name, buf, order, order)
}

// CheckPivots requires len(ipiv) == order and every entry in [0, order).
func CheckPivots(op string, ipiv []int, order int) error {
	if len(ipiv) != order {
		return fault.Wrapf(op, fault.ErrDimensionMismatch, "len(ipiv)=%d, want %d", len(ipiv), order)
	}
	for i, p := range ipiv {
		if p < 0 || p >= order {
			return fault.Wrapf(op, fault.ErrInvalidParameter, "ipiv[%d]=%d outside [0,%d)", i, p, order)
		}
	}

	return nil
}

// CheckTranspose rejects unknown Transpose values.
func CheckTranspose(op string, t Transpose) error {
	if t != NoTrans && t != Trans && t != ConjTrans {
		return fault.Wrapf(op, fault.ErrInvalidParameter, "transpose %d", int(t))
	}

	return nil
}

// CheckMultiply validates C = op(A)·op(B) and returns the product shape
// m×n with inner dimension k.
func CheckMultiply[T numeric.Element](op string, transA, transB Transpose, a []T, rowsA, colsA int,
	b []T, rowsB, colsB int, c []T) (m, n, k int, err error) {
	if err = CheckTranspose(op, transA); err != nil {
		return
	}
	if err = CheckTranspose(op, transB); err != nil {
		return
	}
	if err = CheckShape(op, rowsA, colsA); err != nil {
		return
	}
	if err = CheckShape(op, rowsB, colsB); err != nil {
		return
	}
	if err = CheckBuffer(op, "a", a, rowsA, colsA); err != nil {
		return
	}
	if err = CheckBuffer(op, "b", b, rowsB, colsB); err != nil {
		return
	}

	m, k = rowsA, colsA
	if transA != NoTrans {
		m, k = colsA, rowsA
	}
	kB, nB := rowsB, colsB
	if transB != NoTrans {
		kB, nB = colsB, rowsB
	}
	if k != kB {
		err = fault.Wrapf(op, fault.ErrDimensionMismatch, "inner dimensions %d != %d", k, kB)
		return
	}
	n = nB
	if err = CheckBuffer(op, "c", c, m, n); err != nil {
		return
	}

	return m, n, k, nil
}

// CheckQRMethod rejects unknown QRMethod values.
func CheckQRMethod(op string, method QRMethod) error {
	if method != FullQR && method != ThinQR {
		return fault.Wrapf(op, fault.ErrInvalidParameter, "QR method %d", int(method))
	}

	return nil
}

// CheckNorm rejects unknown Norm values.
func CheckNorm(op string, norm Norm) error {
	switch norm {
	case OneNorm, InfinityNorm, FrobeniusNorm, MaxAbsNorm:
		return nil
	default:
		return fault.Wrapf(op, fault.ErrInvalidParameter, "norm %d", int(norm))
	}
}

// Overlap reports whether the backing memory of x and y intersects.
func Overlap[T numeric.Element](x, y []T) bool {
	if len(x) == 0 || len(y) == 0 {
		return false
	}
	var zero T
	size := unsafe.Sizeof(zero)
	x0 := uintptr(unsafe.Pointer(unsafe.SliceData(x)))
	y0 := uintptr(unsafe.Pointer(unsafe.SliceData(y)))
	x1 := x0 + uintptr(len(x))*size
	y1 := y0 + uintptr(len(y))*size

	return x0 < y1 && y0 < x1
}

// CheckDisjoint returns fault.ErrAliasing when x and y overlap.
func CheckDisjoint[T numeric.Element](op, nameX, nameY string, x, y []T) error {
	if Overlap(x, y) {
		return fault.Wrapf(op, fault.ErrAliasing, "%s and %s", nameX, nameY)
	}

	return nil
}

// CheckFullRank inspects the diagonal of the leading cols×cols block of R
// (leading dimension ldr) and returns fault.ErrRankDeficient when an entry is
// at most 10·max(rows,cols)·ε relative to the largest one.
func CheckFullRank[T numeric.Element](op string, r []T, ldr, rows, cols int) error {
	var maxDiag float64
	for i := 0; i < cols; i++ {
		maxDiag = math.Max(maxDiag, numeric.Abs(r[i*ldr+i]))
	}
	tol := maxDiag * 10 * float64(max(rows, cols)) * numeric.Epsilon[T]()
	for i := 0; i < cols; i++ {
		if d := numeric.Abs(r[i*ldr+i]); d <= tol || math.IsNaN(d) {
			return fault.Wrapf(op, fault.ErrRankDeficient, "|R(%d,%d)|=%g ≤ %g", i, i, d, tol)
		}
	}

	return nil
}

// CheckSolve validates the square solves A·X = B: an order×order a, an
// order×columnsOfB b, and no overlap between them.
func CheckSolve[T numeric.Element](op string, a []T, order int, b []T, columnsOfB int) error {
	if err := CheckSquare(op, "a", a, order); err != nil {
		return err
	}
	if columnsOfB < 0 {
		return fault.Wrapf(op, fault.ErrInvalidParameter, "columnsOfB %d", columnsOfB)
	}
	if err := CheckBuffer(op, "b", b, order, columnsOfB); err != nil {
		return err
	}

	return CheckDisjoint(op, "a", "b", a, b)
}

// CheckLeastSquares validates the right-hand side and solution buffers of
// min ‖A·X − B‖ for a rows×cols A with rows ≥ cols.
func CheckLeastSquares[T numeric.Element](op string, rows, cols int, b []T, columnsOfB int, x []T, method QRMethod) error {
	if err := CheckQRMethod(op, method); err != nil {
		return err
	}
	if err := CheckShape(op, rows, cols); err != nil {
		return err
	}
	if rows < cols {
		return fault.Wrapf(op, fault.ErrInvalidParameter, "least squares needs rows ≥ cols, got %dx%d", rows, cols)
	}
	if columnsOfB < 0 {
		return fault.Wrapf(op, fault.ErrInvalidParameter, "columnsOfB %d", columnsOfB)
	}
	if err := CheckBuffer(op, "b", b, rows, columnsOfB); err != nil {
		return err
	}

	return CheckBuffer(op, "x", x, cols, columnsOfB)
}
