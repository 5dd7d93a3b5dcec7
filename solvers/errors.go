// SPDX-License-Identifier: MIT
package solvers

import (
	"fmt"

	"github.com/katalvlaran/lvnum/fault"
)

// BreakdownKind names the scalar that vanished.
type BreakdownKind int

const (
	// RhoBreakdown: the shadow residual became orthogonal to the residual.
	RhoBreakdown BreakdownKind = iota
	// OmegaBreakdown: the stabilizing step length vanished.
	OmegaBreakdown
)

// String implements fmt.Stringer.
func (k BreakdownKind) String() string {
	switch k {
	case RhoBreakdown:
		return "rho"
	case OmegaBreakdown:
		return "omega"
	default:
		return "unknown"
	}
}

// BreakdownError reports a fatal Krylov breakdown. It matches
// fault.ErrBreakdown (and fault.ErrIterative) under errors.Is.
type BreakdownError struct {
	Kind      BreakdownKind
	Iteration int
}

func (e *BreakdownError) Error() string {
	return fmt.Sprintf("lvnum: %s breakdown at iteration %d", e.Kind, e.Iteration)
}

// Unwrap returns fault.ErrBreakdown.
func (e *BreakdownError) Unwrap() error { return fault.ErrBreakdown }
