// SPDX-License-Identifier: MIT
package reference

import (
	"math"
	"slices"

	"github.com/katalvlaran/lvnum/fault"
	"github.com/katalvlaran/lvnum/kernel"
	"github.com/katalvlaran/lvnum/numeric"
)

const (
	opQRFactor        = "QRFactor"
	opThinQRFactor    = "ThinQRFactor"
	opQRSolve         = "QRSolve"
	opQRSolveFactored = "QRSolveFactored"
)

// QRFactor computes the full Householder QR of the rows×cols matrix in r.
//
// Implementation:
//   - Stage 1: reflect column by column, H_k = I − τ_k·v_k·v_kᴴ with v_k(0) = 1
//     and real τ_k, so every H_k is Hermitian and unitary.
//   - Stage 2: accumulate Q = H_0·H_1·…·H_{p−1} into q (rows×rows).
//   - Stage 3: clear the reflector storage below the diagonal of r.
//
// Returns: R in r (upper trapezoidal), Q in q, τ in tau.
// Errors: argument errors only; every shape is accepted.
// Complexity: O(rows²·cols) time.
func (p *Provider[T]) QRFactor(r []T, rows, cols int, q, tau []T) error {
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

	householderQR(r, rows, cols, tau)
	formQ(r, rows, tau, q, rows)
	var i, j int
	for j = 0; j < cols; j++ {
		for i = j + 1; i < rows; i++ {
			r[j*rows+i] = 0
		}
	}

	return nil
}

// ThinQRFactor computes the economy QR of a (rows ≥ cols): a receives the
// rows×cols orthonormal Q and r the cols×cols upper-triangular R.
func (p *Provider[T]) ThinQRFactor(a []T, rows, cols int, r, tau []T) error {
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

	householderQR(a, rows, cols, tau)
	var i, j int
	for j = 0; j < cols; j++ {
		for i = 0; i < cols; i++ {
			if i <= j {
				r[j*cols+i] = a[j*rows+i]
			} else {
				r[j*cols+i] = 0
			}
		}
	}
	q := make([]T, rows*cols)
	formQ(a, rows, tau, q, cols)
	copy(a, q)

	return nil
}

// QRSolve solves the least-squares problem min ‖A·X − B‖ for rows ≥ cols.
// a and b are not modified. A numerically zero R diagonal yields
// fault.ErrRankDeficient. method is validated; both methods produce the
// same solution.
func (p *Provider[T]) QRSolve(a []T, rows, cols int, b []T, columnsOfB int, x []T, method kernel.QRMethod) error {
	if err := kernel.CheckLeastSquares(opQRSolve, rows, cols, b, columnsOfB, x, method); err != nil {
		return err
	}
	if err := kernel.CheckBuffer(opQRSolve, "a", a, rows, cols); err != nil {
		return err
	}

	work := slices.Clone(a)
	tau := make([]T, cols)
	householderQR(work, rows, cols, tau)
	if err := kernel.CheckFullRank(opQRSolve, work, rows, rows, cols); err != nil {
		return err
	}

	// Qᴴ·B via the reflectors, then back substitution on R.
	y := slices.Clone(b)
	applyReflectors(work, rows, cols, tau, y, columnsOfB)
	backSubstitute(work, rows, cols, y, rows, columnsOfB, x)

	return nil
}

// QRSolveFactored solves min ‖A·X − B‖ from explicit Q and R factors.
// The layouts of q and r follow method: FullQR takes q rows×rows and r
// rows×cols, ThinQR takes q rows×cols and r cols×cols.
func (p *Provider[T]) QRSolveFactored(q, r []T, rows, cols int, tau, b []T, columnsOfB int, x []T, method kernel.QRMethod) error {
	if err := kernel.CheckLeastSquares(opQRSolveFactored, rows, cols, b, columnsOfB, x, method); err != nil {
		return err
	}
	qCols, ldr := rows, rows
	if method == kernel.ThinQR {
		qCols, ldr = cols, cols
	}
	if err := kernel.CheckBuffer(opQRSolveFactored, "q", q, rows, qCols); err != nil {
		return err
	}
	if err := kernel.CheckBuffer(opQRSolveFactored, "r", r, ldr, cols); err != nil {
		return err
	}
	if err := kernel.CheckBuffer(opQRSolveFactored, "tau", tau, cols, 1); err != nil {
		return err
	}
	if err := kernel.CheckFullRank(opQRSolveFactored, r, ldr, rows, cols); err != nil {
		return err
	}

	// y = Q(:,0:cols)ᴴ·B
	y := make([]T, cols*columnsOfB)
	for c := 0; c < columnsOfB; c++ {
		bc := b[c*rows : (c+1)*rows]
		for i := 0; i < cols; i++ {
			y[c*cols+i] = conjDot(q[i*rows:(i+1)*rows], bc)
		}
	}
	backSubstitute(r, ldr, cols, y, cols, columnsOfB, x)

	return nil
}

// householder turns x into its reflector: x[0] receives β with H·x = β·e₀,
// x[1:] receives the tail of v (v[0] = 1 implicit). Returns τ.
func householder[T numeric.Element](x []T) T {
	tail := sumSquares(x[1:])
	if tail == 0 {
		return 0
	}
	alpha := x[0]
	norm := math.Sqrt(numeric.AbsSquared(alpha) + tail)
	beta := -numeric.Phase(alpha) * numeric.FromFloat[T](norm)
	v0 := alpha - beta
	inv := 1 / v0
	for i := 1; i < len(x); i++ {
		x[i] *= inv
	}
	x[0] = beta

	return numeric.FromFloat[T](2 / (1 + tail/numeric.AbsSquared(v0)))
}

// applyHouseholder computes C ← (I − τ·v·vᴴ)·C on a segment of each column.
// v[0] is taken as 1 regardless of its stored value.
func applyHouseholder[T numeric.Element](v []T, tau T, c []T, ldc, offset, ncols int) {
	if tau == 0 {
		return
	}
	m := len(v)
	for j := 0; j < ncols; j++ {
		seg := c[j*ldc+offset : j*ldc+offset+m]
		w := seg[0]
		for i := 1; i < m; i++ {
			w += numeric.Conj(v[i]) * seg[i]
		}
		if w == 0 {
			continue
		}
		w *= tau
		seg[0] -= w
		for i := 1; i < m; i++ {
			seg[i] -= v[i] * w
		}
	}
}

// householderQR reduces the rows×cols buffer a in place; R occupies the upper
// triangle, reflector tails are stored below the diagonal.
func householderQR[T numeric.Element](a []T, rows, cols int, tau []T) {
	for k := 0; k < min(rows, cols); k++ {
		v := a[k*rows+k : (k+1)*rows]
		tau[k] = householder(v)
		if k+1 < cols {
			// Trailing columns k+1..cols-1, rows k..rows-1.
			applyHouseholder(v, tau[k], a[(k+1)*rows:], rows, k, cols-k-1)
		}
	}
}

// formQ writes the first qCols columns of Q = H_0·…·H_{p−1} into q.
func formQ[T numeric.Element](a []T, rows int, tau []T, q []T, qCols int) {
	clear(q)
	for i := 0; i < min(rows, qCols); i++ {
		q[i*rows+i] = 1
	}
	for k := len(tau) - 1; k >= 0; k-- {
		applyHouseholder(a[k*rows+k:(k+1)*rows], tau[k], q, rows, k, qCols)
	}
}

// applyReflectors computes Qᴴ·B = H_{p−1}·…·H_0·B in place.
func applyReflectors[T numeric.Element](a []T, rows, cols int, tau []T, b []T, nrhs int) {
	for k := 0; k < min(rows, cols); k++ {
		applyHouseholder(a[k*rows+k:(k+1)*rows], tau[k], b, rows, k, nrhs)
	}
}

// backSubstitute solves R(0:n,0:n)·X = Y(0:n,:) and writes X (n×nrhs) into x.
func backSubstitute[T numeric.Element](r []T, ldr, n int, y []T, ldy, nrhs int, x []T) {
	var i, j int
	for c := 0; c < nrhs; c++ {
		sol := x[c*n : (c+1)*n]
		copy(sol, y[c*ldy:c*ldy+n])
		for j = n - 1; j >= 0; j-- {
			sol[j] /= r[j*ldr+j]
			for i = 0; i < j; i++ {
				sol[i] -= r[j*ldr+i] * sol[j]
			}
		}
	}
}
