// SPDX-License-Identifier: MIT

// Package reference is the portable kernel backend: straightforward generic
// Go over every element type, used as the correctness baseline and as the
// fallback the accelerated backends embed.
//
// Importing the package registers it under the name "reference".
//
// Determinism & Performance:
//   - Loops run in a fixed order, so results are reproducible across runs.
//   - Matrix loops walk columns innermost where the layout allows it.
//   - No goroutines, no global state besides the registry entry.
package reference

import (
	"math"

	"github.com/pkg/errors"

	"github.com/katalvlaran/lvnum/fault"
	"github.com/katalvlaran/lvnum/kernel"
	"github.com/katalvlaran/lvnum/numeric"
)

// Name is the registry name of this backend.
const Name = "reference"

const (
	opDotProduct              = "DotProduct"
	opConjugateDotProduct     = "ConjugateDotProduct"
	opScale                   = "Scale"
	opAddVectorToScaledVector = "AddVectorToScaledVector"
	opAdd                     = "Add"
	opSubtract                = "Subtract"
	opPointwiseMultiply       = "PointwiseMultiply"
	opPointwiseDivide         = "PointwiseDivide"
	opPointwisePower          = "PointwisePower"
	opMatrixNorm              = "MatrixNorm"
)

func init() {
	kernel.Register(Name, func(config string) (kernel.Backend, error) {
		if config != "" {
			return nil, errors.Wrapf(fault.ErrInvalidParameter, "backend %q takes no configuration, got %q", Name, config)
		}

		return NewBackend(), nil
	})
}

// Provider implements kernel.Provider[T] in portable Go.
type Provider[T numeric.Element] struct{}

// New returns a reference provider for T.
func New[T numeric.Element]() *Provider[T] { return &Provider[T]{} }

var _ kernel.Provider[complex128] = (*Provider[complex128])(nil)

// Backend bundles the four reference providers.
type Backend struct {
	f32  *Provider[float32]
	f64  *Provider[float64]
	c64  *Provider[complex64]
	c128 *Provider[complex128]
}

// NewBackend returns the reference backend.
func NewBackend() *Backend {
	return &Backend{
		f32:  New[float32](),
		f64:  New[float64](),
		c64:  New[complex64](),
		c128: New[complex128](),
	}
}

// Name implements kernel.Backend.
func (b *Backend) Name() string { return Name }

// Description implements kernel.Backend.
func (b *Backend) Description() string { return "portable generic Go kernels" }

// Float32 implements kernel.Backend.
func (b *Backend) Float32() kernel.Provider[float32] { return b.f32 }

// Float64 implements kernel.Backend.
func (b *Backend) Float64() kernel.Provider[float64] { return b.f64 }

// Complex64 implements kernel.Backend.
func (b *Backend) Complex64() kernel.Provider[complex64] { return b.c64 }

// Complex128 implements kernel.Backend.
func (b *Backend) Complex128() kernel.Provider[complex128] { return b.c128 }

// DotProduct returns Σ xᵢ·yᵢ.
func (p *Provider[T]) DotProduct(x, y []T) (T, error) {
	var sum T
	if err := kernel.CheckSameLength(opDotProduct, x, y); err != nil {
		return sum, err
	}
	for i := range x {
		sum += x[i] * y[i]
	}

	return sum, nil
}

// ConjugateDotProduct returns Σ conj(xᵢ)·yᵢ.
func (p *Provider[T]) ConjugateDotProduct(x, y []T) (T, error) {
	var sum T
	if err := kernel.CheckSameLength(opConjugateDotProduct, x, y); err != nil {
		return sum, err
	}
	for i := range x {
		sum += numeric.Conj(x[i]) * y[i]
	}

	return sum, nil
}

// Scale computes result = alpha·x. result may be x.
func (p *Provider[T]) Scale(alpha T, x, result []T) error {
	if len(result) != len(x) {
		return fault.Wrapf(opScale, fault.ErrDimensionMismatch, "len(result)=%d, want %d", len(result), len(x))
	}
	switch alpha {
	case 0:
		clear(result)
	case 1:
		copy(result, x)
	default:
		for i := range x {
			result[i] = alpha * x[i]
		}
	}

	return nil
}

// AddVectorToScaledVector computes result = y + alpha·x. result may be x or y.
func (p *Provider[T]) AddVectorToScaledVector(y []T, alpha T, x, result []T) error {
	if err := kernel.CheckVectors(opAddVectorToScaledVector, x, y, result); err != nil {
		return err
	}
	switch alpha {
	case 0:
		copy(result, y)
	case 1:
		for i := range x {
			result[i] = y[i] + x[i]
		}
	default:
		for i := range x {
			result[i] = y[i] + alpha*x[i]
		}
	}

	return nil
}

// Add computes result = x + y.
func (p *Provider[T]) Add(x, y, result []T) error {
	if err := kernel.CheckVectors(opAdd, x, y, result); err != nil {
		return err
	}
	for i := range x {
		result[i] = x[i] + y[i]
	}

	return nil
}

// Subtract computes result = x − y.
func (p *Provider[T]) Subtract(x, y, result []T) error {
	if err := kernel.CheckVectors(opSubtract, x, y, result); err != nil {
		return err
	}
	for i := range x {
		result[i] = x[i] - y[i]
	}

	return nil
}

// PointwiseMultiply computes resultᵢ = xᵢ·yᵢ.
func (p *Provider[T]) PointwiseMultiply(x, y, result []T) error {
	if err := kernel.CheckVectors(opPointwiseMultiply, x, y, result); err != nil {
		return err
	}
	for i := range x {
		result[i] = x[i] * y[i]
	}

	return nil
}

// PointwiseDivide computes resultᵢ = xᵢ/yᵢ. Division by zero follows IEEE 754.
func (p *Provider[T]) PointwiseDivide(x, y, result []T) error {
	if err := kernel.CheckVectors(opPointwiseDivide, x, y, result); err != nil {
		return err
	}
	for i := range x {
		result[i] = x[i] / y[i]
	}

	return nil
}

// PointwisePower computes resultᵢ = xᵢ^yᵢ.
func (p *Provider[T]) PointwisePower(x, y, result []T) error {
	if err := kernel.CheckVectors(opPointwisePower, x, y, result); err != nil {
		return err
	}
	for i := range x {
		result[i] = numeric.Pow(x[i], y[i])
	}

	return nil
}

// MatrixNorm returns the requested norm of a rows×cols buffer.
func (p *Provider[T]) MatrixNorm(norm kernel.Norm, rows, cols int, a []T) (float64, error) {
	if err := kernel.CheckNorm(opMatrixNorm, norm); err != nil {
		return 0, err
	}
	if err := kernel.CheckShape(opMatrixNorm, rows, cols); err != nil {
		return 0, err
	}
	if err := kernel.CheckBuffer(opMatrixNorm, "a", a, rows, cols); err != nil {
		return 0, err
	}

	return matrixNorm(norm, rows, cols, a), nil
}

func matrixNorm[T numeric.Element](norm kernel.Norm, rows, cols int, a []T) float64 {
	var (
		result float64
		i, j   int
	)
	switch norm {
	case kernel.OneNorm:
		for j = 0; j < cols; j++ {
			var sum float64
			for _, v := range a[j*rows : (j+1)*rows] {
				sum += numeric.Abs(v)
			}
			result = math.Max(result, sum)
		}
	case kernel.InfinityNorm:
		sums := make([]float64, rows)
		for j = 0; j < cols; j++ {
			for i = 0; i < rows; i++ {
				sums[i] += numeric.Abs(a[j*rows+i])
			}
		}
		for _, sum := range sums {
			result = math.Max(result, sum)
		}
	case kernel.FrobeniusNorm:
		result = euclidean(a)
	case kernel.MaxAbsNorm:
		for _, v := range a {
			result = math.Max(result, numeric.Abs(v))
		}
	}

	return result
}

// euclidean returns ‖x‖₂ with scaling against overflow.
func euclidean[T numeric.Element](x []T) float64 {
	var scale, ssq float64 = 0, 1
	for _, v := range x {
		for _, part := range [2]float64{numeric.RealPart(v), numeric.ImagPart(v)} {
			if part == 0 {
				continue
			}
			absPart := math.Abs(part)
			if scale < absPart {
				ssq = 1 + ssq*(scale/absPart)*(scale/absPart)
				scale = absPart
			} else {
				ssq += (absPart / scale) * (absPart / scale)
			}
		}
	}

	return scale * math.Sqrt(ssq)
}

// sumSquares returns Σ|xᵢ|².
func sumSquares[T numeric.Element](x []T) float64 {
	var sum float64
	for _, v := range x {
		sum += numeric.AbsSquared(v)
	}

	return sum
}

// conjDot returns Σ conj(xᵢ)·yᵢ without validation.
func conjDot[T numeric.Element](x, y []T) T {
	var sum T
	for i := range x {
		sum += numeric.Conj(x[i]) * y[i]
	}

	return sum
}

// identity fills an order×order buffer with I.
func identity[T numeric.Element](buf []T, order int) {
	clear(buf)
	for i := 0; i < order; i++ {
		buf[i*order+i] = 1
	}
}
