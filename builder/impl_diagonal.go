// SPDX-License-Identifier: MIT
// Package: lvnum/builder
//
// impl_diagonal.go - diagonal constructors: Shift and DiagonallyDominant.
//
// Both act on what earlier constructors added, so they belong at the end of
// the constructor list.

package builder

import (
	"math"

	"github.com/katalvlaran/lvnum/numeric"
)

const (
	methodShift    = "Shift"
	methodDominant = "DiagonallyDominant"
)

// Shift returns a Constructor adding sigma·I.
func Shift[T numeric.Element](sigma T) Constructor[T] {
	return func(a *Assembly[T], _ builderConfig) error {
		for i := 0; i < a.Order(); i++ {
			if err := a.Add(i, i, sigma); err != nil {
				return wrapf(methodShift, err, "diagonal %d", i)
			}
		}

		return nil
	}
}

// DiagonallyDominant returns a Constructor adding Σ_j≠i |a_ij| + margin to
// every diagonal entry. Rows whose diagonal had a non-negative real part
// become strictly diagonally dominant. margin must be positive.
func DiagonallyDominant[T numeric.Element](margin float64) Constructor[T] {
	return func(a *Assembly[T], _ builderConfig) error {
		if !(margin > 0) || math.IsInf(margin, 0) {
			return wrapf(methodDominant, ErrTooSmall, "margin=%g must be positive", margin)
		}
		for i, s := range a.RowAbsSums() {
			if err := a.Add(i, i, numeric.FromFloat[T](s+margin)); err != nil {
				return wrapf(methodDominant, err, "diagonal %d", i)
			}
		}

		return nil
	}
}
