// SPDX-License-Identifier: MIT
package solvers

import (
	"context"

	"k8s.io/klog/v2"

	"github.com/katalvlaran/lvnum/fault"
	"github.com/katalvlaran/lvnum/linalg"
	"github.com/katalvlaran/lvnum/numeric"
)

const (
	opNewGPBiCG = "NewGPBiCG"
	opGPBiCG    = "GPBiCG.Solve"
)

// GPBiCG is the generalized product-type bi-conjugate gradient method.
// Each cycle runs BiCgStabSteps one-parameter steps followed by GpBiCgSteps
// two-parameter steps that minimize the residual over a 2-D subspace.
type GPBiCG[T numeric.Element] struct {
	bicgstabSteps int
	gpbicgSteps   int
}

// NewGPBiCG returns the solver; negative step counts are
// fault.ErrInvalidParameter.
func NewGPBiCG[T numeric.Element](opts ...GPBiCGOption) (*GPBiCG[T], error) {
	cfg := defaultGPBiCGConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.bicgstabSteps < 0 || cfg.gpbicgSteps < 0 {
		return nil, fault.Wrapf(opNewGPBiCG, fault.ErrInvalidParameter,
			"step counts %d/%d must be non-negative", cfg.bicgstabSteps, cfg.gpbicgSteps)
	}

	return &GPBiCG[T]{bicgstabSteps: cfg.bicgstabSteps, gpbicgSteps: cfg.gpbicgSteps}, nil
}

// BiCgStabSteps returns the one-parameter step count per cycle.
func (g *GPBiCG[T]) BiCgStabSteps() int { return g.bicgstabSteps }

// GpBiCgSteps returns the two-parameter step count per cycle.
func (g *GPBiCG[T]) GpBiCgSteps() int { return g.gpbicgSteps }

// bicgstabStep reports whether iteration k uses the one-parameter update.
// The first iteration always does; y and w carry no history yet.
func (g *GPBiCG[T]) bicgstabStep(k int) bool {
	if k == 0 && g.bicgstabSteps == 0 {
		return true
	}
	cycle := g.bicgstabSteps + g.gpbicgSteps
	if cycle == 0 {
		return false
	}

	return k%cycle < g.bicgstabSteps
}

// Solve implements Solver. The iteration runs on the preconditioned
// correction x̃ with x = x₀ + M⁻¹·x̃, so the caller's initial guess x₀ is
// kept. A vanishing cᴴc, yᴴy or 2×2 determinant is replaced by 1 (logged as
// a warning); a vanishing σ resets β to zero.
func (g *GPBiCG[T]) Solve(ctx context.Context, a linalg.Matrix[T], b, x *linalg.Vector[T],
	iterator Iterator[T], preconditioner Preconditioner[T]) error {
	sys, err := newSystem(opGPBiCG, a, b, x, iterator, preconditioner)
	if err != nil {
		return err
	}
	if err = g.iterate(ctx, sys); err != nil {
		return fault.Wrap(opGPBiCG, err)
	}

	return nil
}

// gpbicgState holds the recurrence vectors of one solve.
type gpbicgState[T numeric.Element] struct {
	r, rt, p, s, t, t0, u, w, y, z, c *linalg.Vector[T]
	correction, x0, tmp             *linalg.Vector[T]
}

func (g *GPBiCG[T]) iterate(ctx context.Context, sys *system[T]) error {
	v := gpbicgState[T]{
		r: sys.vector(), rt: sys.vector(), p: sys.vector(), s: sys.vector(),
		t: sys.vector(), t0: sys.vector(), u: sys.vector(), w: sys.vector(),
		y: sys.vector(), z: sys.vector(), c: sys.vector(),
		correction: sys.vector(), x0: sys.x.Clone(), tmp: sys.vector(),
	}
	if err := sys.residual(sys.x, v.r); err != nil {
		return err
	}
	_ = v.rt.CopyFrom(v.r)

	var beta T
	fresh := true
	for k := 0; ; k++ {
		sys.cancelled(ctx)
		status := sys.it.DetermineStatus(k, sys.x, sys.b, v.r)
		if status == Converged && !fresh {
			if err := sys.residual(sys.x, v.r); err != nil {
				return err
			}
			fresh = true
			status = sys.it.DetermineStatus(k, sys.x, sys.b, v.r)
		}
		if status == DivergedNumerically {
			klog.Warningf("lvnum: gpbicg n=%d diverged at iteration %d, ‖r‖∞=%g", sys.n, k, v.r.NormInf())
		}
		if status.Terminal() {
			klog.V(2).Infof("lvnum: gpbicg n=%d: %v after %d iterations, ‖r‖∞=%g", sys.n, status, k, v.r.NormInf())
			return nil
		}
		klog.V(3).Infof("lvnum: gpbicg iteration %d ‖r‖∞=%g", k, v.r.NormInf())

		next, err := g.step(sys, &v, k, beta)
		if err != nil {
			return err
		}
		beta = next
		fresh = false
	}
}

// step performs iteration k and returns the next β.
func (g *GPBiCG[T]) step(sys *system[T], v *gpbicgState[T], k int, beta T) (T, error) {
	var zero T
	var err error
	dot := func(a, b *linalg.Vector[T]) T {
		d, e := a.Dot(b)
		if e != nil && err == nil {
			err = e
		}
		return d
	}
	axpy := func(dst *linalg.Vector[T], alpha T, src *linalg.Vector[T]) {
		if e := dst.AddScaled(alpha, src); e != nil && err == nil {
			err = e
		}
	}
	scale := func(dst *linalg.Vector[T], alpha T) {
		if e := dst.Scale(alpha); e != nil && err == nil {
			err = e
		}
	}
	// apply computes dst = A·M⁻¹·src.
	apply := func(dst, src *linalg.Vector[T]) {
		if err != nil {
			return
		}
		if err = sys.m.Approximate(src, v.tmp); err == nil {
			err = sys.a.MulVecTo(dst, v.tmp)
		}
	}

	// p = r + β·(p − u); s = A·M⁻¹p
	axpy(v.p, -1, v.u)
	scale(v.p, beta)
	axpy(v.p, 1, v.r)
	apply(v.s, v.p)
	rho := dot(v.rt, v.r)
	if err != nil {
		return zero, err
	}
	if nearZero(rho) {
		return zero, &BreakdownError{Kind: RhoBreakdown, Iteration: k}
	}
	alpha := rho / dot(v.rt, v.s)

	// y = t − r − α·w + α·s, computed before t is replaced.
	_ = v.y.CopyFrom(v.t)
	axpy(v.y, -1, v.r)
	axpy(v.y, -alpha, v.w)
	axpy(v.y, alpha, v.s)
	_ = v.t0.CopyFrom(v.t)

	// t = r − α·s; c = A·M⁻¹t
	_ = v.t.CopyFrom(v.r)
	axpy(v.t, -alpha, v.s)
	apply(v.c, v.t)
	if err != nil {
		return zero, err
	}

	cc := dot(v.c, v.c)
	if nearZero(cc) {
		klog.Warningf("lvnum: gpbicg iteration %d: cᴴc vanished, using 1", k)
		cc = 1
	}
	ct := dot(v.c, v.t)
	var sigma, eta T
	if g.bicgstabStep(k) {
		sigma = ct / cc
	} else {
		yy := dot(v.y, v.y)
		if nearZero(yy) {
			klog.Warningf("lvnum: gpbicg iteration %d: yᴴy vanished, using 1", k)
			yy = 1
		}
		yt, cy, yc := dot(v.y, v.t), dot(v.c, v.y), dot(v.y, v.c)
		det := cc*yy - cy*yc
		if nearZero(det) {
			klog.Warningf("lvnum: gpbicg iteration %d: 2x2 determinant vanished, using 1", k)
			det = 1
		}
		sigma = (yy*ct - cy*yt) / det
		eta = (cc*yt - yc*ct) / det
	}

	// u = σ·s + η·(t₀ − r + β·u)
	scale(v.u, beta)
	axpy(v.u, 1, v.t0)
	axpy(v.u, -1, v.r)
	scale(v.u, eta)
	axpy(v.u, sigma, v.s)
	// z = σ·r + η·z − α·u
	scale(v.z, eta)
	axpy(v.z, -alpha, v.u)
	axpy(v.z, sigma, v.r)
	// x̃ += α·p + z
	axpy(v.correction, alpha, v.p)
	axpy(v.correction, 1, v.z)
	// r = t − η·y − σ·c
	_ = v.r.CopyFrom(v.t)
	axpy(v.r, -eta, v.y)
	axpy(v.r, -sigma, v.c)

	var next T
	if !nearZero(sigma) {
		next = alpha / sigma * dot(v.rt, v.r) / rho
	}
	// w = c + β·s
	_ = v.w.CopyFrom(v.c)
	axpy(v.w, next, v.s)

	// x = x₀ + M⁻¹·x̃
	if err == nil {
		err = sys.m.Approximate(v.correction, v.tmp)
	}
	_ = sys.x.CopyFrom(v.x0)
	axpy(sys.x, 1, v.tmp)

	return next, err
}
