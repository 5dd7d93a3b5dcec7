// SPDX-License-Identifier: MIT

// Package kernel defines the provider contract every lvnum numeric backend
// implements, and the registry through which backends are selected.
//
// Purpose:
//   - Provider[T] is a BLAS/LAPACK-shaped capability set over raw []T buffers
//     plus explicit shape parameters. Nothing here knows about matrices as
//     objects; shapes are always stated, never inferred.
//   - Backend bundles one Provider per element type under a name.
//   - Register/New/NewWithConfig select a backend by configuration string,
//     "<name>[:<config>]", optionally taken from the LVNUM_PROVIDER
//     environment variable.
//
// Layout:
//   - Every matrix buffer is column-major: element (i,j) of a rows×cols
//     buffer lives at j*rows+i.
//
// Contract (uniform across providers):
//   - All buffer lengths are validated against rows/cols/order BEFORE any
//     arithmetic; a failed check never mutates an output.
//   - Vector operations may write result into x or y (identical slices).
//   - MatrixMultiplyWithUpdate detects C overlapping A or B and computes into
//     scratch first.
//   - LU/Cholesky solves require a and b to be disjoint (fault.ErrAliasing).
//   - Results of different providers agree within precision-appropriate
//     tolerance; bit-for-bit equality is not promised.
package kernel

import "github.com/katalvlaran/lvnum/numeric"

// Transpose selects op(X) in the multiply kernels.
type Transpose int

const (
	// NoTrans uses X as is.
	NoTrans Transpose = iota
	// Trans uses Xᵀ.
	Trans
	// ConjTrans uses Xᴴ (equal to Xᵀ for real elements).
	ConjTrans
)

// String implements fmt.Stringer.
func (t Transpose) String() string {
	switch t {
	case NoTrans:
		return "NoTrans"
	case Trans:
		return "Trans"
	case ConjTrans:
		return "ConjTrans"
	default:
		return "Transpose(?)"
	}
}

// Norm selects the matrix norm computed by MatrixNorm.
type Norm int

const (
	// OneNorm is the maximum absolute column sum.
	OneNorm Norm = iota
	// InfinityNorm is the maximum absolute row sum.
	InfinityNorm
	// FrobeniusNorm is the square root of the summed squared magnitudes.
	FrobeniusNorm
	// MaxAbsNorm is the largest element magnitude.
	MaxAbsNorm
)

// QRMethod selects the shape of the stored Q/R factors.
type QRMethod int

const (
	// FullQR stores Q as rows×rows and R as rows×cols.
	FullQR QRMethod = iota
	// ThinQR stores Q as rows×cols and R as cols×cols; requires rows ≥ cols.
	ThinQR
)

// Provider is the kernel contract for one element type.
//
// Errors are fault sentinels (possibly wrapped): argument errors for shapes,
// buffers and parameters; domain errors for singular, indefinite or
// rank-deficient input and for SVD non-convergence.
type Provider[T numeric.Element] interface {
	// DotProduct returns Σ xᵢ·yᵢ.
	DotProduct(x, y []T) (T, error)
	// ConjugateDotProduct returns Σ conj(xᵢ)·yᵢ.
	ConjugateDotProduct(x, y []T) (T, error)
	// Scale computes result = alpha·x.
	Scale(alpha T, x, result []T) error
	// AddVectorToScaledVector computes result = y + alpha·x.
	AddVectorToScaledVector(y []T, alpha T, x, result []T) error
	// Add computes result = x + y.
	Add(x, y, result []T) error
	// Subtract computes result = x − y.
	Subtract(x, y, result []T) error
	// PointwiseMultiply computes resultᵢ = xᵢ·yᵢ.
	PointwiseMultiply(x, y, result []T) error
	// PointwiseDivide computes resultᵢ = xᵢ/yᵢ.
	PointwiseDivide(x, y, result []T) error
	// PointwisePower computes resultᵢ = xᵢ^yᵢ.
	PointwisePower(x, y, result []T) error

	// MatrixNorm returns the requested norm of the rows×cols buffer a.
	MatrixNorm(norm Norm, rows, cols int, a []T) (float64, error)
	// MatrixMultiply computes C = A·B.
	MatrixMultiply(a []T, rowsA, colsA int, b []T, rowsB, colsB int, c []T) error
	// MatrixMultiplyWithUpdate computes C = alpha·op(A)·op(B) + beta·C.
	// rowsX/colsX describe the stored buffers, before op is applied.
	// When beta is zero, C is not read.
	MatrixMultiplyWithUpdate(transA, transB Transpose, alpha T, a []T, rowsA, colsA int,
		b []T, rowsB, colsB int, beta T, c []T) error

	// LUFactor factors a in place as P·A = L·U with partial pivoting.
	// ipiv[i] (0-based) is the row interchanged with row i at step i.
	// A zero pivot is not reported here.
	LUFactor(a []T, order int, ipiv []int) error
	// LUInverse replaces a with its inverse. a is untouched on ErrSingular.
	LUInverse(a []T, order int) error
	// LUInverseFactored replaces the LUFactor output a with the inverse.
	LUInverseFactored(a []T, order int, ipiv []int) error
	// LUSolve overwrites the order×columnsOfB buffer b with X solving A·X = B.
	// a is not modified.
	LUSolve(columnsOfB int, a []T, order int, b []T) error
	// LUSolveFactored is LUSolve over an LUFactor output.
	LUSolveFactored(columnsOfB int, a []T, order int, ipiv []int, b []T) error

	// CholeskyFactor replaces the lower triangle of a with L, A = L·Lᴴ, and
	// zeroes the strict upper triangle. Only the lower triangle is read.
	// a is untouched on ErrNotPositiveDefinite.
	CholeskyFactor(a []T, order int) error
	// CholeskySolve overwrites b with X solving A·X = B; a is not modified.
	CholeskySolve(a []T, order int, b []T, columnsOfB int) error
	// CholeskySolveFactored is CholeskySolve over a CholeskyFactor output.
	CholeskySolveFactored(a []T, order int, b []T, columnsOfB int) error

	// QRFactor overwrites the rows×cols buffer r (holding A) with R and
	// writes the rows×rows orthogonal factor into q. len(tau) == min(rows, cols).
	QRFactor(r []T, rows, cols int, q, tau []T) error
	// ThinQRFactor overwrites a (rows×cols, rows ≥ cols) with the thin Q and
	// writes the cols×cols upper triangle into r.
	ThinQRFactor(a []T, rows, cols int, r, tau []T) error
	// QRSolve writes the least-squares solution of A·X = B into the
	// cols×columnsOfB buffer x. Requires rows ≥ cols; a and b are not modified.
	QRSolve(a []T, rows, cols int, b []T, columnsOfB int, x []T, method QRMethod) error
	// QRSolveFactored is QRSolve over QRFactor/ThinQRFactor outputs; the
	// shapes of q and r follow method.
	QRSolveFactored(q, r []T, rows, cols int, tau, b []T, columnsOfB int, x []T, method QRMethod) error

	// SingularValueDecomposition computes A = U·Σ·Vᴴ. a is overwritten.
	// s receives the min(rows, cols) singular values in ascending order.
	// When computeVectors is true, u receives U (rows×rows) and vt receives
	// Vᴴ (cols×cols); otherwise both are ignored and may be nil.
	SingularValueDecomposition(computeVectors bool, a []T, rows, cols int, s, u, vt []T) error
}

// Backend bundles the per-element providers of one implementation.
type Backend interface {
	// Name is the short registry name, e.g. "reference".
	Name() string
	// Description is a human readable summary.
	Description() string

	Float32() Provider[float32]
	Float64() Provider[float64]
	Complex64() Provider[complex64]
	Complex128() Provider[complex128]
}

// ProviderOf returns b's provider for element type T.
func ProviderOf[T numeric.Element](b Backend) Provider[T] {
	var zero T
	switch any(zero).(type) {
	case float32:
		return any(b.Float32()).(Provider[T])
	case float64:
		return any(b.Float64()).(Provider[T])
	case complex64:
		return any(b.Complex64()).(Provider[T])
	default:
		return any(b.Complex128()).(Provider[T])
	}
}
