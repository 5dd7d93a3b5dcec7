// SPDX-License-Identifier: MIT
package gonumkernel

import (
	"slices"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/lapack"
	"gonum.org/v1/gonum/lapack/lapack64"

	"github.com/katalvlaran/lvnum/fault"
	"github.com/katalvlaran/lvnum/kernel"
)

const (
	opQRFactor                   = "QRFactor"
	opThinQRFactor               = "ThinQRFactor"
	opQRSolve                    = "QRSolve"
	opSingularValueDecomposition = "SingularValueDecomposition"
)

// QRFactor computes the full QR of the rows×cols matrix in r with Dgeqrf,
// forming Q by applying the reflectors to the identity with Dormqr.
// Dgeqrf and the reference provider share the reflector convention, so R
// and tau agree with it up to rounding.
func (p *Float64) QRFactor(r []float64, rows, cols int, q, tau []float64) error {
	if err := kernel.CheckShape(opQRFactor, rows, cols); err != nil {
		return err
	}
	if err := kernel.CheckBuffer(opQRFactor, "r", r, rows, cols); err != nil {
		return err
	}
	if err := kernel.CheckBuffer(opQRFactor, "q", q, rows, rows); err != nil {
		return err
	}
	if err := kernel.CheckBuffer(opQRFactor, "tau", tau, min(rows, cols), 1); err != nil {
		return err
	}
	if err := kernel.CheckDisjoint(opQRFactor, "r", "q", r, q); err != nil {
		return err
	}
	if rows == 0 || cols == 0 {
		return p.Provider.QRFactor(r, rows, cols, q, tau)
	}

	work := make([]float64, rows*cols)
	toRowMajor(work, r, rows, cols)
	geqrf(work, rows, cols, tau)
	extractR(r, work, rows, cols)

	qt := make([]float64, rows*rows)
	for i := 0; i < rows; i++ {
		qt[i*rows+i] = 1
	}
	ormqr(blas.NoTrans, work, rows, cols, tau, general(rows, rows, qt))
	fromRowMajor(q, qt, rows, rows)

	return nil
}

// ThinQRFactor computes the economy QR of a (rows ≥ cols): a receives Q and
// r the cols×cols R.
func (p *Float64) ThinQRFactor(a []float64, rows, cols int, r, tau []float64) error {
	if err := kernel.CheckShape(opThinQRFactor, rows, cols); err != nil {
		return err
	}
	if rows < cols {
		return fault.Wrapf(opThinQRFactor, fault.ErrInvalidParameter, "thin QR needs rows ≥ cols, got %dx%d", rows, cols)
	}
	if err := kernel.CheckBuffer(opThinQRFactor, "a", a, rows, cols); err != nil {
		return err
	}
	if err := kernel.CheckBuffer(opThinQRFactor, "r", r, cols, cols); err != nil {
		return err
	}
	if err := kernel.CheckBuffer(opThinQRFactor, "tau", tau, cols, 1); err != nil {
		return err
	}
	if err := kernel.CheckDisjoint(opThinQRFactor, "a", "r", a, r); err != nil {
		return err
	}
	if cols == 0 {
		return nil
	}

	work := make([]float64, rows*cols)
	toRowMajor(work, a, rows, cols)
	geqrf(work, rows, cols, tau)
	extractR(r, work, cols, cols)

	qt := make([]float64, rows*cols)
	for i := 0; i < cols; i++ {
		qt[i*cols+i] = 1
	}
	ormqr(blas.NoTrans, work, rows, cols, tau, general(rows, cols, qt))
	fromRowMajor(a, qt, rows, cols)

	return nil
}

// QRSolve solves min ‖A·X − B‖ for rows ≥ cols with Dgeqrf, Dormqr and a
// triangular solve. a and b are not modified.
func (p *Float64) QRSolve(a []float64, rows, cols int, b []float64, columnsOfB int, x []float64, method kernel.QRMethod) error {
	if err := kernel.CheckLeastSquares(opQRSolve, rows, cols, b, columnsOfB, x, method); err != nil {
		return err
	}
	if err := kernel.CheckBuffer(opQRSolve, "a", a, rows, cols); err != nil {
		return err
	}
	if cols == 0 || columnsOfB == 0 {
		return nil
	}

	work := make([]float64, rows*cols)
	toRowMajor(work, a, rows, cols)
	tau := make([]float64, cols)
	geqrf(work, rows, cols, tau)
	if err := kernel.CheckFullRank(opQRSolve, work, cols, rows, cols); err != nil {
		return err
	}

	y := make([]float64, rows*columnsOfB)
	toRowMajor(y, b, rows, columnsOfB)
	ormqr(blas.Trans, work, rows, cols, tau, general(rows, columnsOfB, y))
	head := y[:cols*columnsOfB]
	blas64.Trsm(blas.Left, blas.NoTrans, 1,
		blas64.Triangular{Uplo: blas.Upper, Diag: blas.NonUnit, N: cols, Data: work, Stride: cols},
		general(cols, columnsOfB, head))
	fromRowMajor(x, head, cols, columnsOfB)

	return nil
}

// SingularValueDecomposition computes A = U·Σ·Vᵀ with Dgesvd.
//
// Dgesvd sees the column-major A as the row-major Aᵀ = V·Σ·Uᵀ. Its left
// vectors V, stored row-major, are exactly the column-major Vᵀ, and its
// right vectors Uᵀ, stored row-major, are the column-major U, so both
// outputs are written in place. The descending order of Dgesvd is then
// reversed to ascending.
func (p *Float64) SingularValueDecomposition(computeVectors bool, a []float64, rows, cols int, s, u, vt []float64) error {
	if err := kernel.CheckShape(opSingularValueDecomposition, rows, cols); err != nil {
		return err
	}
	if err := kernel.CheckBuffer(opSingularValueDecomposition, "a", a, rows, cols); err != nil {
		return err
	}
	if err := kernel.CheckBuffer(opSingularValueDecomposition, "s", s, min(rows, cols), 1); err != nil {
		return err
	}
	if computeVectors {
		if err := kernel.CheckBuffer(opSingularValueDecomposition, "u", u, rows, rows); err != nil {
			return err
		}
		if err := kernel.CheckBuffer(opSingularValueDecomposition, "vt", vt, cols, cols); err != nil {
			return err
		}
		if err := kernel.CheckDisjoint(opSingularValueDecomposition, "u", "vt", u, vt); err != nil {
			return err
		}
	}
	if rows == 0 || cols == 0 {
		return p.Provider.SingularValueDecomposition(computeVectors, a, rows, cols, s, u, vt)
	}

	job := lapack.SVDNone
	var left, right blas64.General
	if computeVectors {
		job = lapack.SVDAll
		left = general(cols, cols, vt)
		right = general(rows, rows, u)
	} else {
		left = blas64.General{Stride: 1}
		right = blas64.General{Stride: 1}
	}
	work := slices.Clone(a)
	view := general(cols, rows, work)
	p0 := min(rows, cols)
	sigma := make([]float64, p0)
	query := make([]float64, 1)
	lapack64.Gesvd(job, job, view, left, right, sigma, query, -1)
	lwork := make([]float64, int(query[0]))
	if ok := lapack64.Gesvd(job, job, view, left, right, sigma, lwork, len(lwork)); !ok {
		return fault.Wrap(opSingularValueDecomposition, fault.ErrNoConvergence)
	}

	for i := range sigma {
		s[i] = sigma[p0-1-i]
	}
	if computeVectors {
		for lo, hi := 0, p0-1; lo < hi; lo, hi = lo+1, hi-1 {
			// Columns of U.
			for i := 0; i < rows; i++ {
				u[lo*rows+i], u[hi*rows+i] = u[hi*rows+i], u[lo*rows+i]
			}
			// Rows of Vᵀ.
			for j := 0; j < cols; j++ {
				vt[j*cols+lo], vt[j*cols+hi] = vt[j*cols+hi], vt[j*cols+lo]
			}
		}
	}
	clear(a)

	return nil
}

// geqrf runs Dgeqrf on the row-major rows×cols buffer a.
func geqrf(a []float64, rows, cols int, tau []float64) {
	g := general(rows, cols, a)
	query := make([]float64, 1)
	lapack64.Geqrf(g, tau, query, -1)
	work := make([]float64, max(cols, int(query[0])))
	lapack64.Geqrf(g, tau, work, len(work))
}

// ormqr applies Q (or Qᵀ) from the Dgeqrf output in a to c from the left.
func ormqr(trans blas.Transpose, a []float64, rows, cols int, tau []float64, c blas64.General) {
	k := min(rows, cols)
	reflectors := blas64.General{Rows: rows, Cols: k, Data: a, Stride: cols}
	query := make([]float64, 1)
	lapack64.Ormqr(blas.Left, trans, reflectors, tau[:k], c, query, -1)
	work := make([]float64, max(c.Cols, int(query[0])))
	lapack64.Ormqr(blas.Left, trans, reflectors, tau[:k], c, work, len(work))
}

// extractR writes the upper trapezoid of the row-major Dgeqrf output into
// the column-major ldr×cols r, zeroing below the diagonal.
func extractR(r, work []float64, ldr, cols int) {
	for j := 0; j < cols; j++ {
		for i := 0; i < ldr; i++ {
			if i <= j {
				r[j*ldr+i] = work[i*cols+j]
			} else {
				r[j*ldr+i] = 0
			}
		}
	}
}
