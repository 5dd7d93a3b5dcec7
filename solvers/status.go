// SPDX-License-Identifier: MIT
package solvers

// Status is the state of an iterative solve.
type Status int32

const (
	// Running means no criterion has fired yet.
	Running Status = iota
	// Converged means the residual met the tolerance.
	Converged
	// DivergedNumerically means NaN/Inf appeared or the residual kept growing.
	DivergedNumerically
	// MaxIterationsReached means the iteration budget is exhausted.
	MaxIterationsReached
	// Cancelled means Iterator.Cancel was called or the context ended.
	Cancelled
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case Running:
		return "Running"
	case Converged:
		return "Converged"
	case DivergedNumerically:
		return "DivergedNumerically"
	case MaxIterationsReached:
		return "MaxIterationsReached"
	case Cancelled:
		return "Cancelled"
	default:
		return "Status(?)"
	}
}

// Terminal reports whether s ends a solve.
func (s Status) Terminal() bool { return s != Running }
