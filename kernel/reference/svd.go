// SPDX-License-Identifier: MIT
package reference

import (
	"math"
	"slices"

	"github.com/katalvlaran/lvnum/fault"
	"github.com/katalvlaran/lvnum/kernel"
	"github.com/katalvlaran/lvnum/numeric"
)

const opSingularValueDecomposition = "SingularValueDecomposition"

// MaxSweeps bounds the Jacobi sweeps before the SVD reports non-convergence.
const MaxSweeps = 75

// SingularValueDecomposition computes A = U·Σ·Vᴴ by one-sided Jacobi.
//
// Implementation:
//   - Stage 1: work on W = A, or W = Aᴴ when rows < cols, so W is tall.
//   - Stage 2: sweep all column pairs (p,q) with a unitary plane rotation
//     that zeroes w_pᴴ·w_q, until no pair exceeds the orthogonality
//     threshold. V accumulates the same rotations.
//   - Stage 3: σ_j = ‖w_j‖, sorted ascending; U columns are w_j/σ_j, and any
//     column the data cannot supply (σ_j = 0, or rows beyond cols) is
//     completed by Gram–Schmidt against the standard basis.
//   - Stage 4: undo the transpose of Stage 1 when needed.
//
// Errors: fault.ErrNoConvergence after MaxSweeps sweeps.
// Complexity: O(sweeps·rows·cols²) time.
func (p *Provider[T]) SingularValueDecomposition(computeVectors bool, a []T, rows, cols int, s, u, vt []T) error {
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

	// Stage 1: tall working copy m×n, m ≥ n.
	transposed := rows < cols
	m, n := rows, cols
	var w []T
	if transposed {
		m, n = cols, rows
		w = make([]T, m*n)
		for j := 0; j < cols; j++ {
			for i := 0; i < rows; i++ {
				w[i*m+j] = numeric.Conj(a[j*rows+i])
			}
		}
	} else {
		w = slices.Clone(a)
	}
	var v []T
	if computeVectors {
		v = make([]T, n*n)
		identity(v, n)
	}

	// Stage 2.
	if err := jacobiSweeps(w, m, n, v); err != nil {
		return fault.Wrap(opSingularValueDecomposition, err)
	}

	// Stage 3.
	sigma := make([]float64, n)
	for j := range sigma {
		sigma[j] = euclidean(w[j*m : (j+1)*m])
	}
	order := make([]int, n)
	for j := range order {
		order[j] = j
	}
	slices.SortStableFunc(order, func(x, y int) int {
		switch {
		case sigma[x] < sigma[y]:
			return -1
		case sigma[x] > sigma[y]:
			return 1
		default:
			return 0
		}
	})
	for idx, j := range order {
		s[idx] = numeric.FromFloat[T](sigma[j])
	}
	clear(a)
	if !computeVectors {
		return nil
	}

	var sigmaMax float64
	if n > 0 {
		sigmaMax = sigma[order[n-1]]
	}
	eps := numeric.Epsilon[T]()
	left := make([]T, m*m)
	have := make([]bool, m)
	for idx, j := range order {
		if sigma[j] == 0 || sigma[j] <= sigmaMax*eps*eps {
			continue
		}
		inv := numeric.FromFloat[T](1 / sigma[j])
		dst := left[idx*m : (idx+1)*m]
		for i, x := range w[j*m : (j+1)*m] {
			dst[i] = x * inv
		}
		have[idx] = true
	}
	completeBasis(left, m, have)

	right := make([]T, n*n)
	for idx, j := range order {
		copy(right[idx*n:(idx+1)*n], v[j*n:(j+1)*n])
	}

	// Stage 4: A = left·Σ·rightᴴ, or A = right·Σᵀ·leftᴴ when transposed.
	if transposed {
		copy(u, right)
		conjugateTransposeInto(left, m, vt)
	} else {
		copy(u, left)
		conjugateTransposeInto(right, n, vt)
	}

	return nil
}

// jacobiSweeps orthogonalizes the columns of the m×n buffer w in place,
// applying the same rotations to v (n×n) when v is non-nil.
func jacobiSweeps[T numeric.Element](w []T, m, n int, v []T) error {
	threshold := float64(max(m, 1)) * numeric.Epsilon[T]()
	for sweep := 0; sweep < MaxSweeps; sweep++ {
		rotated := false
		for p := 0; p < n-1; p++ {
			colP := w[p*m : (p+1)*m]
			for q := p + 1; q < n; q++ {
				colQ := w[q*m : (q+1)*m]
				alpha, beta := sumSquares(colP), sumSquares(colQ)
				gamma := wideConjDot(colP, colQ)
				g := numeric.Abs(gamma)
				if g == 0 || g <= threshold*math.Sqrt(alpha)*math.Sqrt(beta) {
					continue
				}
				rotated = true

				// Rotation that zeroes the (p,q) inner product.
				zeta := (beta - alpha) / (2 * g)
				var t float64
				if math.Abs(zeta) > 1e150 {
					t = 1 / (2 * zeta)
				} else {
					t = 1 / (math.Abs(zeta) + math.Sqrt(1+zeta*zeta))
					if zeta < 0 {
						t = -t
					}
				}
				c := 1 / math.Sqrt(1+t*t)
				phase := numeric.FromComplex[T](numeric.Conj(numeric.Phase(gamma)))
				rotate(colP, colQ, numeric.FromFloat[T](c), numeric.FromFloat[T](c*t), phase)
				if v != nil {
					rotate(v[p*n:(p+1)*n], v[q*n:(q+1)*n], numeric.FromFloat[T](c), numeric.FromFloat[T](c*t), phase)
				}
			}
		}
		if !rotated {
			return nil
		}
	}

	return fault.Wrapf("jacobi", fault.ErrNoConvergence, "%d sweeps", MaxSweeps)
}

// wideConjDot accumulates Σ conj(xᵢ)·yᵢ in complex128 so that single
// precision sweeps can reach the same relative threshold.
func wideConjDot[T numeric.Element](x, y []T) complex128 {
	var sum complex128
	for i := range x {
		sum += numeric.ToComplex(numeric.Conj(x[i])) * numeric.ToComplex(y[i])
	}

	return sum
}

// rotate applies x' = c·x − s·φ·y, y' = s·x + c·φ·y.
func rotate[T numeric.Element](x, y []T, c, s, phase T) {
	for i := range x {
		xi, yi := x[i], phase*y[i]
		x[i] = c*xi - s*yi
		y[i] = s*xi + c*yi
	}
}

// completeBasis fills every column of the m×m buffer u with have[j] false so
// that u becomes unitary. Candidates are standard basis vectors orthogonalized
// twice against the columns already present; the largest residual wins.
func completeBasis[T numeric.Element](u []T, m int, have []bool) {
	candidate := make([]T, m)
	best := make([]T, m)
	for col := 0; col < m; col++ {
		if have[col] {
			continue
		}
		bestNorm := -1.0
		for e := 0; e < m; e++ {
			clear(candidate)
			candidate[e] = 1
			for pass := 0; pass < 2; pass++ {
				for h := 0; h < m; h++ {
					if !have[h] {
						continue
					}
					basis := u[h*m : (h+1)*m]
					coef := conjDot(basis, candidate)
					for i := range candidate {
						candidate[i] -= coef * basis[i]
					}
				}
			}
			if nrm := euclidean(candidate); nrm > bestNorm {
				bestNorm = nrm
				copy(best, candidate)
			}
		}
		inv := numeric.FromFloat[T](1 / bestNorm)
		dst := u[col*m : (col+1)*m]
		for i := range best {
			dst[i] = best[i] * inv
		}
		have[col] = true
	}
}

// conjugateTransposeInto writes the n×n conjugate transpose of src into dst.
func conjugateTransposeInto[T numeric.Element](src []T, n int, dst []T) {
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			dst[i*n+j] = numeric.Conj(src[j*n+i])
		}
	}
}
