// SPDX-License-Identifier: MIT
// Package: lvnum/builder
//
// impl_grid.go - the 2-D five-point stencil over a rows×cols grid.
//
// Canonical model:
//   - Cell (r,c) is unknown r*cols+c (row-major).
//   - 4-neighbourhood: left, right, up and down where they exist.
//   - Diagonal 4; the west and north neighbours get -(1+k), east and south
//     -(1-k), k = cfg.convection. k = 0 is the Dirichlet Poisson matrix.
//
// Contract:
//   - rows ≥ 1, cols ≥ 1 (else ErrTooSmall) and rows·cols == order (else
//     ErrBadSize).
//
// Complexity:
//   - Time O(rows·cols), at most 5·rows·cols entries.

package builder

import (
	"github.com/katalvlaran/lvnum/numeric"
)

const (
	methodGrid = "Grid"
	minGridDim = 1
)

// Grid returns a Constructor adding the five-point stencil of a rows×cols
// grid.
func Grid[T numeric.Element](rows, cols int) Constructor[T] {
	return func(a *Assembly[T], cfg builderConfig) error {
		if rows < minGridDim || cols < minGridDim {
			return wrapf(methodGrid, ErrTooSmall, "rows=%d, cols=%d (each must be ≥ %d)", rows, cols, minGridDim)
		}
		if rows*cols != a.Order() {
			return wrapf(methodGrid, ErrBadSize, "%dx%d grid for order %d", rows, cols, a.Order())
		}

		upwind := numeric.FromFloat[T](-(1 + cfg.convection))
		downwind := numeric.FromFloat[T](-(1 - cfg.convection))
		type neighbour struct {
			dr, dc int
			v      T
		}
		stencil := [...]neighbour{{0, -1, upwind}, {-1, 0, upwind}, {0, 1, downwind}, {1, 0, downwind}}

		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				u := r*cols + c
				if err := a.Add(u, u, 4); err != nil {
					return wrapf(methodGrid, err, "cell (%d,%d)", r, c)
				}
				for _, nb := range stencil {
					nr, nc := r+nb.dr, c+nb.dc
					if nr < 0 || nr >= rows || nc < 0 || nc >= cols {
						continue
					}
					if err := a.Add(u, nr*cols+nc, nb.v); err != nil {
						return wrapf(methodGrid, err, "cell (%d,%d)→(%d,%d)", r, c, nr, nc)
					}
				}
			}
		}

		return nil
	}
}
