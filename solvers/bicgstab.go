// SPDX-License-Identifier: MIT
package solvers

import (
	"context"

	"k8s.io/klog/v2"

	"github.com/katalvlaran/lvnum/fault"
	"github.com/katalvlaran/lvnum/linalg"
	"github.com/katalvlaran/lvnum/numeric"
)

const opBiCgStab = "BiCgStab.Solve"

// BiCgStab is the right-preconditioned stabilized bi-conjugate gradient
// method for general non-singular systems.
type BiCgStab[T numeric.Element] struct{}

// NewBiCgStab returns the solver.
func NewBiCgStab[T numeric.Element]() *BiCgStab[T] { return &BiCgStab[T]{} }

// Solve implements Solver.
//
// Implementation:
//   - Stage 1: r = b − A·x and the fixed shadow residual r̃ = r.
//   - Stage 2: per iteration ρ = r̃ᴴ·r, p = r + β·(p − ω·ν), ν = A·M⁻¹p,
//     α = ρ/(r̃ᴴ·ν) and s = r − α·ν.
//   - Stage 3: the half step x + α·p̂ is tested with residual s; when the
//     iterator accepts it, x is committed and re-tested against its true
//     residual.
//   - Stage 4: otherwise t = A·M⁻¹s, ω = (tᴴ·s)/(tᴴ·t), x += α·p̂ + ω·ŝ and
//     r = s − ω·t.
//
// Errors:
//   - argument errors before any work, preconditioner errors, and
//     *BreakdownError when ρ or ω vanishes; x then holds the last iterate.
func (*BiCgStab[T]) Solve(ctx context.Context, a linalg.Matrix[T], b, x *linalg.Vector[T],
	iterator Iterator[T], preconditioner Preconditioner[T]) error {
	sys, err := newSystem(opBiCgStab, a, b, x, iterator, preconditioner)
	if err != nil {
		return err
	}
	if err = sys.bicgstab(ctx); err != nil {
		return fault.Wrap(opBiCgStab, err)
	}

	return nil
}

func (s *system[T]) bicgstab(ctx context.Context) error {
	r, rt := s.vector(), s.vector()
	p, phat, v := s.vector(), s.vector(), s.vector()
	shat, t, trial := s.vector(), s.vector(), s.vector()
	if err := s.residual(s.x, r); err != nil {
		return err
	}
	_ = rt.CopyFrom(r)

	var rho, rhoPrev, alpha, omega T
	restart := true // p = r on the next iteration
	fresh := true   // r is the true residual of x
	k := 0
	for ; ; k++ {
		s.cancelled(ctx)
		status := s.it.DetermineStatus(k, s.x, s.b, r)
		if status == Converged && !fresh {
			if err := s.residual(s.x, r); err != nil {
				return err
			}
			fresh = true
			status = s.it.DetermineStatus(k, s.x, s.b, r)
		}
		if status == DivergedNumerically {
			klog.Warningf("lvnum: bicgstab n=%d diverged at iteration %d, ‖r‖∞=%g", s.n, k, r.NormInf())
		}
		if status.Terminal() {
			klog.V(2).Infof("lvnum: bicgstab n=%d: %v after %d iterations, ‖r‖∞=%g", s.n, status, k, r.NormInf())
			return nil
		}
		klog.V(3).Infof("lvnum: bicgstab iteration %d ‖r‖∞=%g", k, r.NormInf())

		var err error
		if rho, err = rt.Dot(r); err != nil {
			return err
		}
		if nearZero(rho) {
			return &BreakdownError{Kind: RhoBreakdown, Iteration: k}
		}
		if restart {
			_ = p.CopyFrom(r)
			restart = false
		} else {
			beta := (rho / rhoPrev) * (alpha / omega)
			if err = p.AddScaled(-omega, v); err != nil {
				return err
			}
			if err = p.Scale(beta); err != nil {
				return err
			}
			if err = p.AddScaled(1, r); err != nil {
				return err
			}
		}
		if err = s.m.Approximate(p, phat); err != nil {
			return err
		}
		if err = s.a.MulVecTo(v, phat); err != nil {
			return err
		}
		rtv, err := rt.Dot(v)
		if err != nil {
			return err
		}
		alpha = rho / rtv

		// s is kept in r: r ← r − α·ν.
		if err = r.AddScaled(-alpha, v); err != nil {
			return err
		}
		fresh = false
		_ = trial.CopyFrom(s.x)
		if err = trial.AddScaled(alpha, phat); err != nil {
			return err
		}
		if s.it.DetermineStatus(k+1, trial, s.b, r) == Converged {
			_ = s.x.CopyFrom(trial)
			if err = s.residual(s.x, r); err != nil {
				return err
			}
			fresh = true
			restart = true
			continue
		}

		if err = s.m.Approximate(r, shat); err != nil {
			return err
		}
		if err = s.a.MulVecTo(t, shat); err != nil {
			return err
		}
		ts, err := t.Dot(r)
		if err != nil {
			return err
		}
		tt, err := t.Dot(t)
		if err != nil {
			return err
		}
		omega = ts / tt
		if nearZero(omega) {
			return &BreakdownError{Kind: OmegaBreakdown, Iteration: k}
		}
		if err = s.x.AddScaled(alpha, phat); err != nil {
			return err
		}
		if err = s.x.AddScaled(omega, shat); err != nil {
			return err
		}
		if err = r.AddScaled(-omega, t); err != nil {
			return err
		}
		rhoPrev = rho
	}
}
