// SPDX-License-Identifier: MIT
// Package: lvnum/builder
//
// impl_random_sparse.go - Erdős–Rényi-like random off-diagonal pattern.
//
// Canonical model:
//   - Every off-diagonal position (i,j), i ≠ j, is included independently
//     with probability p; its value is uniform in [-m,m] (both parts for
//     complex elements), m = cfg.valueRange.
//
// Contract:
//   - 0 ≤ p ≤ 1 (else ErrInvalidProbability).
//   - cfg.rng must be non-nil when 0 < p < 1 (else ErrNeedRandSource).
//
// Determinism:
//   - Trial order is i asc, then j asc; fixed seed gives a fixed matrix.
//
// Complexity:
//   - Time O(n²) Bernoulli trials.

package builder

import (
	"github.com/katalvlaran/lvnum/numeric"
)

const (
	methodRandomSparse = "RandomSparse"
	probMin            = 0.0
	probMax            = 1.0
)

// RandomSparse returns a Constructor adding a random off-diagonal pattern
// with density p.
func RandomSparse[T numeric.Element](p float64) Constructor[T] {
	return func(a *Assembly[T], cfg builderConfig) error {
		if !(p >= probMin && p <= probMax) {
			return wrapf(methodRandomSparse, ErrInvalidProbability, "p=%.6f not in [%.1f,%.1f]", p, probMin, probMax)
		}
		rng := cfg.rng
		if rng == nil && p > probMin && p < probMax {
			return wrapf(methodRandomSparse, ErrNeedRandSource, "p=%.6f", p)
		}
		if p == probMin {
			return nil
		}

		draw := func() float64 {
			if rng == nil {
				return cfg.valueRange
			}
			return cfg.valueRange * (2*rng.Float64() - 1)
		}
		n := a.Order()
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				if i == j {
					continue
				}
				if rng != nil && rng.Float64() > p {
					continue
				}
				v := numeric.FromFloat[T](draw())
				if numeric.IsComplex[T]() {
					v = numeric.FromComplex[T](complex(numeric.RealPart(v), draw()))
				}
				if err := a.Add(i, j, v); err != nil {
					return wrapf(methodRandomSparse, err, "(%d,%d)", i, j)
				}
			}
		}

		return nil
	}
}
