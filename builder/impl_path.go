// SPDX-License-Identifier: MIT
// Package: lvnum/builder
//
// impl_path.go - the 1-D three-point stencil over a path of unknowns.
//
// Canonical model:
//   - Unknown i couples to i-1 and i+1 where they exist (a path graph).
//   - Row i gets 2 on the diagonal, -(1+c) on the left neighbour and -(1-c)
//     on the right one, c = cfg.convection. c = 0 is the symmetric positive
//     definite 1-D Laplacian with Dirichlet ends.
//
// Complexity:
//   - Time O(n), 3n-2 entries.

package builder

import (
	"github.com/katalvlaran/lvnum/numeric"
)

const (
	methodPath   = "Path"
	minPathNodes = 2
)

// Path returns a Constructor adding the three-point stencil over all
// order unknowns.
func Path[T numeric.Element]() Constructor[T] {
	return func(a *Assembly[T], cfg builderConfig) error {
		n := a.Order()
		if n < minPathNodes {
			return wrapf(methodPath, ErrTooSmall, "order=%d < min=%d", n, minPathNodes)
		}
		left := numeric.FromFloat[T](-(1 + cfg.convection))
		right := numeric.FromFloat[T](-(1 - cfg.convection))
		for i := 0; i < n; i++ {
			if err := a.Add(i, i, 2); err != nil {
				return wrapf(methodPath, err, "diagonal %d", i)
			}
			if i > 0 {
				if err := a.Add(i, i-1, left); err != nil {
					return wrapf(methodPath, err, "left of %d", i)
				}
			}
			if i+1 < n {
				if err := a.Add(i, i+1, right); err != nil {
					return wrapf(methodPath, err, "right of %d", i)
				}
			}
		}

		return nil
	}
}
