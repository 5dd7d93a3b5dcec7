// SPDX-License-Identifier: MIT
package solvers_test

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/lvnum/builder"
	"github.com/katalvlaran/lvnum/fault"
	"github.com/katalvlaran/lvnum/kernel/kerneltest"
	"github.com/katalvlaran/lvnum/linalg"
	"github.com/katalvlaran/lvnum/numeric"
	"github.com/katalvlaran/lvnum/solvers"
	"github.com/katalvlaran/lvnum/storage"
)

// tridiagonal returns the n×n sparse matrix with the given bands.
func tridiagonal[T numeric.Element](n int, lower, diag, upper T) *linalg.Sparse[T] {
	entries := make([]storage.Triplet[T], 0, 3*n)
	for i := 0; i < n; i++ {
		entries = append(entries, storage.Triplet[T]{Row: i, Col: i, Value: diag})
		if i > 0 {
			entries = append(entries, storage.Triplet[T]{Row: i, Col: i - 1, Value: lower})
		}
		if i+1 < n {
			entries = append(entries, storage.Triplet[T]{Row: i, Col: i + 1, Value: upper})
		}
	}

	return must.M1(linalg.NewSparseFromTriplets(n, n, entries))
}

// system returns a, a known solution and b = a·solution.
func system[T numeric.Element](a linalg.Matrix[T]) (want, b *linalg.Vector[T]) {
	n := a.Rows()
	want = linalg.NewVectorView(kerneltest.Random[T](kerneltest.NewRand(), n, 1))
	b = must.M1(linalg.NewVector[T](n))
	must.M(a.MulVecTo(b, want))

	return want, b
}

// trueResidual returns ‖b − A·x‖∞ / ‖b‖∞.
func trueResidual[T numeric.Element](a linalg.Matrix[T], b, x *linalg.Vector[T]) float64 {
	r := must.M1(linalg.NewVector[T](b.Len()))
	must.M(a.MulVecTo(r, x))
	must.M(r.AddScaled(-1, b))

	return r.NormInf() / b.NormInf()
}

type solverCase[T numeric.Element] struct {
	name   string
	solver solvers.Solver[T]
}

func solverCases[T numeric.Element](t *testing.T) []solverCase[T] {
	t.Helper()
	pureGP, err := solvers.NewGPBiCG[T](solvers.WithBiCgStabSteps(0))
	require.NoError(t, err)
	pureStab, err := solvers.NewGPBiCG[T](solvers.WithGpBiCgSteps(0))
	require.NoError(t, err)

	return []solverCase[T]{
		{"bicgstab", solvers.NewBiCgStab[T]()},
		{"gpbicg", must.M1(solvers.NewGPBiCG[T]())},
		{"gpbicg/gp-only", pureGP},
		{"gpbicg/stab-only", pureStab},
	}
}

func preconditioners[T numeric.Element]() map[string]func() solvers.Preconditioner[T] {
	return map[string]func() solvers.Preconditioner[T]{
		"nil":      func() solvers.Preconditioner[T] { return nil },
		"unit":     func() solvers.Preconditioner[T] { return solvers.NewUnitPreconditioner[T]() },
		"diagonal": func() solvers.Preconditioner[T] { return solvers.NewDiagonalPreconditioner[T]() },
		"ilu0":     func() solvers.Preconditioner[T] { return solvers.NewILU0Preconditioner[T]() },
	}
}

func TestScenarioTwoByTwo(t *testing.T) {
	a := must.M1(linalg.NewDenseFromRows([][]float64{{4, 1}, {1, 3}}))
	b := linalg.NewVectorFromSlice([]float64{1, 2})
	for _, tc := range solverCases[float64](t) {
		t.Run(tc.name, func(t *testing.T) {
			it := must.M1(solvers.DefaultIterator[float64](100, 1e-12))
			x, err := solvers.SolveVector(context.Background(), tc.solver, a, b, it, nil)
			require.NoError(t, err)
			require.Equal(t, solvers.Converged, it.Status())
			assert.InDelta(t, 1.0/11, x.Raw()[0], 1e-10)
			assert.InDelta(t, 7.0/11, x.Raw()[1], 1e-10)
		})
	}
}

func TestConvergesWithEveryPreconditioner(t *testing.T) {
	a := tridiagonal(100, -1.0, 4.0, -0.5)
	want, b := system[float64](a)
	for _, tc := range solverCases[float64](t) {
		for name, newM := range preconditioners[float64]() {
			t.Run(tc.name+"/"+name, func(t *testing.T) {
				it := must.M1(solvers.DefaultIterator[float64](500, 1e-12))
				x, err := solvers.SolveVector(context.Background(), tc.solver, a, b, it, newM())
				require.NoError(t, err)
				require.Equal(t, solvers.Converged, it.Status())
				assert.Less(t, trueResidual[float64](a, b, x), 1e-11)
				kerneltest.RequireClose(t, want.Raw(), x.Raw(), 1e-9)
			})
		}
	}
}

func TestConvergesOnDenseComplex(t *testing.T) {
	const n = 30
	a := must.M1(linalg.NewDenseFromColumnMajor(n, n, kerneltest.DiagonallyDominant[complex128](kerneltest.NewRand(), n)))
	want, b := system[complex128](a)
	for _, tc := range solverCases[complex128](t) {
		t.Run(tc.name, func(t *testing.T) {
			it := must.M1(solvers.DefaultIterator[complex128](500, 1e-12))
			x, err := solvers.SolveVector(context.Background(), tc.solver, a, b, it, solvers.NewDiagonalPreconditioner[complex128]())
			require.NoError(t, err)
			require.Equal(t, solvers.Converged, it.Status())
			kerneltest.RequireClose(t, want.Raw(), x.Raw(), 1e-9)
		})
	}
}

func TestConvergesInSinglePrecision(t *testing.T) {
	a := tridiagonal[float32](20, -1, 4, -0.5)
	want, b := system[float32](a)
	for _, tc := range solverCases[float32](t) {
		t.Run(tc.name, func(t *testing.T) {
			it := must.M1(solvers.DefaultIterator[float32](200, 1e-5))
			x, err := solvers.SolveVector(context.Background(), tc.solver, a, b, it, solvers.NewILU0Preconditioner[float32]())
			require.NoError(t, err)
			require.Equal(t, solvers.Converged, it.Status())
			kerneltest.RequireClose(t, want.Raw(), x.Raw(), 1e-3)
		})
	}
}

func TestInitialGuessIsHonoured(t *testing.T) {
	a := tridiagonal(40, -1.0, 4.0, -0.5)
	want, b := system[float64](a)
	for _, tc := range solverCases[float64](t) {
		t.Run(tc.name+"/exact", func(t *testing.T) {
			it := must.M1(solvers.DefaultIterator[float64](100, 1e-12))
			x := want.Clone()
			require.NoError(t, tc.solver.Solve(context.Background(), a, b, x, it, nil))
			assert.Equal(t, solvers.Converged, it.Status())
			assert.Equal(t, 0, it.Iterations())
			assert.Equal(t, want.Raw(), x.Raw())
		})
		t.Run(tc.name+"/ones", func(t *testing.T) {
			it := must.M1(solvers.DefaultIterator[float64](100, 1e-12))
			x := must.M1(linalg.NewVector[float64](40))
			for i := range x.Raw() {
				x.Raw()[i] = 1
			}
			require.NoError(t, tc.solver.Solve(context.Background(), a, b, x, it, solvers.NewDiagonalPreconditioner[float64]()))
			require.Equal(t, solvers.Converged, it.Status())
			kerneltest.RequireClose(t, want.Raw(), x.Raw(), 1e-9)
		})
	}
}

// TestUnitPreconditionerIsIdentity checks that an explicit unit
// preconditioner follows exactly the unpreconditioned trajectory.
func TestUnitPreconditionerIsIdentity(t *testing.T) {
	a := tridiagonal(60, -1.0, 3.0, -1.5)
	_, b := system[float64](a)
	for _, tc := range solverCases[float64](t) {
		t.Run(tc.name, func(t *testing.T) {
			it1 := must.M1(solvers.DefaultIterator[float64](200, 1e-10))
			x1 := must.M1(solvers.SolveVector(context.Background(), tc.solver, a, b, it1, nil))
			it2 := must.M1(solvers.DefaultIterator[float64](200, 1e-10))
			x2 := must.M1(solvers.SolveVector(context.Background(), tc.solver, a, b, it2, solvers.NewUnitPreconditioner[float64]()))
			assert.Equal(t, it1.Iterations(), it2.Iterations())
			assert.Equal(t, x1.Raw(), x2.Raw())
		})
	}
}

// textbookBiCGSTAB is the unpreconditioned recurrence with no early exit,
// run for a fixed number of iterations.
func textbookBiCGSTAB(a linalg.Matrix[float64], b []float64, iterations int) []float64 {
	n := len(b)
	dot := func(x, y []float64) (s float64) {
		for i := range x {
			s += x[i] * y[i]
		}
		return s
	}
	mul := func(x []float64) []float64 {
		out := linalg.NewVectorView(make([]float64, n))
		must.M(a.MulVecTo(out, linalg.NewVectorView(x)))
		return out.Raw()
	}
	x := make([]float64, n)
	r := append([]float64(nil), b...)
	rt := append([]float64(nil), b...)
	p, v := make([]float64, n), make([]float64, n)
	rhoPrev, alpha, omega := 1.0, 1.0, 1.0
	for k := 0; k < iterations; k++ {
		rho := dot(rt, r)
		beta := rho / rhoPrev * alpha / omega
		for i := range p {
			p[i] = r[i] + beta*(p[i]-omega*v[i])
		}
		v = mul(p)
		alpha = rho / dot(rt, v)
		s := make([]float64, n)
		for i := range s {
			s[i] = r[i] - alpha*v[i]
		}
		t := mul(s)
		omega = dot(t, s) / dot(t, t)
		for i := range x {
			x[i] += alpha*p[i] + omega*s[i]
			r[i] = s[i] - omega*t[i]
		}
		rhoPrev = rho
	}

	return x
}

func TestBiCgStabFollowsTextbookRecurrence(t *testing.T) {
	a := tridiagonal(50, -1.0, 3.0, -1.5)
	_, b := system[float64](a)
	const steps = 5
	count := must.M1(solvers.NewIterationCountCriterion[float64](steps))
	it := must.M1(solvers.NewIterator[float64](count))
	x := must.M1(solvers.SolveVector(context.Background(), solvers.NewBiCgStab[float64](), a, b, it, nil))
	require.Equal(t, solvers.MaxIterationsReached, it.Status())
	require.Equal(t, steps, it.Iterations())
	kerneltest.RequireClose(t, textbookBiCGSTAB(a, b.Raw(), steps), x.Raw(), 1e-12)
}

// breakdownSystem gives ρ = 3, α = 1 and then s ⟂ A·s at the first step.
func breakdownSystem(t *testing.T) (*linalg.Diagonal[float64], *linalg.Vector[float64]) {
	t.Helper()
	a, err := linalg.NewDiagonal(3, 3, []float64{2, -1, 2})
	require.NoError(t, err)

	return a, linalg.NewVectorFromSlice([]float64{1, 1, 1})
}

func TestBiCgStabOmegaBreakdown(t *testing.T) {
	a, b := breakdownSystem(t)
	x := must.M1(linalg.NewVector[float64](3))
	it := must.M1(solvers.DefaultIterator[float64](100, 1e-10))
	err := solvers.NewBiCgStab[float64]().Solve(context.Background(), a, b, x, it, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, fault.ErrBreakdown)
	assert.True(t, fault.IsIterative(err))
	var be *solvers.BreakdownError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, solvers.OmegaBreakdown, be.Kind)
	assert.Equal(t, 0, be.Iteration)
	assert.Equal(t, []float64{0, 0, 0}, x.Raw())
}

func TestGPBiCGRhoBreakdown(t *testing.T) {
	// σ = 0 at the first step leaves r = (−1, 2, −1), orthogonal to r̃ = b.
	a, b := breakdownSystem(t)
	x := must.M1(linalg.NewVector[float64](3))
	it := must.M1(solvers.DefaultIterator[float64](100, 1e-10))
	err := must.M1(solvers.NewGPBiCG[float64]()).Solve(context.Background(), a, b, x, it, nil)
	var be *solvers.BreakdownError
	require.True(t, errors.As(err, &be), "got %v", err)
	assert.Equal(t, solvers.RhoBreakdown, be.Kind)
	assert.Equal(t, 1, be.Iteration)
	assert.Equal(t, "lvnum: rho breakdown at iteration 1", be.Error())
	assert.Equal(t, []float64{1, 1, 1}, x.Raw())
}

// cancelAt cancels a context when it sees the given iteration.
type cancelAt struct {
	at     int
	cancel context.CancelFunc
}

func (c cancelAt) DetermineStatus(iteration int, _, _, _ *linalg.Vector[float64]) solvers.Status {
	if iteration >= c.at {
		c.cancel()
	}
	return solvers.Running
}

func (cancelAt) Reset() {}

func TestCancellation(t *testing.T) {
	a := tridiagonal(100, -1.0, 4.0, -0.5)
	_, b := system[float64](a)
	for _, tc := range solverCases[float64](t) {
		t.Run(tc.name+"/iterator", func(t *testing.T) {
			it := must.M1(solvers.DefaultIterator[float64](100, 1e-12))
			it.Cancel()
			x := must.M1(linalg.NewVector[float64](b.Len()))
			require.NoError(t, tc.solver.Solve(context.Background(), a, b, x, it, nil))
			assert.Equal(t, solvers.Cancelled, it.Status())
			assert.True(t, it.IterationCancelled())
			assert.Zero(t, x.NormInf())
		})
		t.Run(tc.name+"/context", func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			it := must.M1(solvers.DefaultIterator[float64](100, 1e-12))
			_, err := solvers.SolveVector(ctx, tc.solver, a, b, it, nil)
			require.NoError(t, err)
			assert.Equal(t, solvers.Cancelled, it.Status())
		})
		t.Run(tc.name+"/midway", func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			residual := must.M1(solvers.NewResidualCriterion[float64](1e-14))
			it := must.M1(solvers.NewIterator[float64](cancelAt{at: 3, cancel: cancel}, residual))
			_, err := solvers.SolveVector(ctx, tc.solver, a, b, it, nil)
			require.NoError(t, err)
			assert.Equal(t, solvers.Cancelled, it.Status())
			assert.Equal(t, 4, it.Iterations())
		})
	}
}

func TestStatusOutcomes(t *testing.T) {
	a := tridiagonal(100, -1.0, 4.0, -0.5)
	_, b := system[float64](a)
	for _, tc := range solverCases[float64](t) {
		t.Run(tc.name+"/budget", func(t *testing.T) {
			it := must.M1(solvers.DefaultIterator[float64](2, 1e-14))
			_, err := solvers.SolveVector(context.Background(), tc.solver, a, b, it, nil)
			require.NoError(t, err)
			assert.Equal(t, solvers.MaxIterationsReached, it.Status())
			assert.Equal(t, 2, it.Iterations())
		})
		t.Run(tc.name+"/nan", func(t *testing.T) {
			bad := must.M1(linalg.NewDiagonal(3, 3, []float64{math.NaN(), 1, 1}))
			it := must.M1(solvers.DefaultIterator[float64](10, 1e-10))
			_, err := solvers.SolveVector(context.Background(), tc.solver, bad, linalg.NewVectorFromSlice([]float64{1, 1, 1}), it, nil)
			require.NoError(t, err)
			assert.Equal(t, solvers.DivergedNumerically, it.Status())
			assert.Equal(t, 0, it.Iterations())
		})
	}
}

func TestArgumentErrors(t *testing.T) {
	ctx := context.Background()
	solver := solvers.NewBiCgStab[float64]()
	it := must.M1(solvers.DefaultIterator[float64](10, 1e-10))
	square := tridiagonal(3, -1.0, 4.0, -1.0)
	wide := must.M1(linalg.NewDense[float64](2, 3))
	b3 := must.M1(linalg.NewVector[float64](3))
	b2 := must.M1(linalg.NewVector[float64](2))

	err := solver.Solve(ctx, wide, b2, b3, it, nil)
	assert.ErrorIs(t, err, fault.ErrNonSquare)
	err = solver.Solve(ctx, square, b2, b3.Clone(), it, nil)
	assert.ErrorIs(t, err, fault.ErrDimensionMismatch)
	err = solver.Solve(ctx, square, b3, b3.Clone(), nil, nil)
	assert.ErrorIs(t, err, fault.ErrNilBuffer)
	assert.True(t, fault.IsArgument(err))
	_, err = solvers.SolveVector[float64](ctx, nil, square, b3, it, nil)
	assert.ErrorIs(t, err, fault.ErrNilBuffer)

	zeroDiag := must.M1(linalg.NewDenseFromRows([][]float64{{0, 1}, {1, 0}}))
	err = solver.Solve(ctx, zeroDiag, b2, b2.Clone(), it, solvers.NewDiagonalPreconditioner[float64]())
	assert.ErrorIs(t, err, fault.ErrSingular)
	assert.True(t, fault.IsDomain(err))
}

func TestConcurrentSolvesShareMatrix(t *testing.T) {
	a := tridiagonal(200, -1.0, 4.0, -0.5)
	solver := must.M1(solvers.NewGPBiCG[float64]())
	var g errgroup.Group
	results := make([]*linalg.Vector[float64], 8)
	wants := make([]*linalg.Vector[float64], len(results))
	for w := range results {
		want := must.M1(linalg.NewVector[float64](a.Rows()))
		for i := range want.Raw() {
			want.Raw()[i] = float64(w + 1)
		}
		b := must.M1(linalg.NewVector[float64](a.Rows()))
		must.M(a.MulVecTo(b, want))
		wants[w] = want
		g.Go(func() error {
			it, err := solvers.DefaultIterator[float64](500, 1e-12)
			if err != nil {
				return err
			}
			x, err := solvers.SolveVector(context.Background(), solver, a, b, it, solvers.NewILU0Preconditioner[float64]())
			if err != nil {
				return err
			}
			if it.Status() != solvers.Converged {
				return fmt.Errorf("worker %d: %v", w, it.Status())
			}
			results[w] = x
			return nil
		})
	}
	require.NoError(t, g.Wait())
	for w := range results {
		kerneltest.RequireClose(t, wants[w].Raw(), results[w].Raw(), 1e-9, "worker %d", w)
	}
}

func TestSolveMatrix(t *testing.T) {
	const n, k = 50, 3
	a := tridiagonal(n, -1.0, 4.0, -0.5)
	want := must.M1(linalg.NewDenseFromColumnMajor(n, k, kerneltest.Random[float64](kerneltest.NewRand(), n, k)))
	b := must.M1(linalg.NewDense[float64](n, k))
	for j := 0; j < k; j++ {
		must.M(a.MulVecTo(must.M1(b.Column(j)), must.M1(want.Column(j))))
	}
	ctx := context.Background()

	t.Run("converges", func(t *testing.T) {
		x := must.M1(linalg.NewDense[float64](n, k))
		it := must.M1(solvers.DefaultIterator[float64](200, 1e-12))
		require.NoError(t, solvers.SolveMatrix(ctx, solvers.NewBiCgStab[float64](), a, b, x, it, solvers.NewILU0Preconditioner[float64]()))
		assert.Equal(t, solvers.Converged, it.Status())
		kerneltest.RequireClose(t, want.RawColumnMajor(), x.RawColumnMajor(), 1e-9)
	})
	t.Run("stops at first failure", func(t *testing.T) {
		x := must.M1(linalg.NewDense[float64](n, k))
		it := must.M1(solvers.DefaultIterator[float64](1, 1e-14))
		require.NoError(t, solvers.SolveMatrix[float64](ctx, solvers.NewBiCgStab[float64](), a, b, x, it, nil))
		assert.Equal(t, solvers.MaxIterationsReached, it.Status())
		assert.NotZero(t, must.M1(x.Column(0)).NormInf())
		assert.Zero(t, must.M1(x.Column(1)).NormInf())
		assert.Zero(t, must.M1(x.Column(2)).NormInf())
	})
	t.Run("shapes", func(t *testing.T) {
		x := must.M1(linalg.NewDense[float64](n, k+1))
		it := must.M1(solvers.DefaultIterator[float64](10, 1e-10))
		err := solvers.SolveMatrix[float64](ctx, solvers.NewBiCgStab[float64](), a, b, x, it, nil)
		assert.ErrorIs(t, err, fault.ErrDimensionMismatch)
	})
}

func TestNewGPBiCGOptions(t *testing.T) {
	g := must.M1(solvers.NewGPBiCG[float64]())
	assert.Equal(t, solvers.DefaultBiCgStabSteps, g.BiCgStabSteps())
	assert.Equal(t, solvers.DefaultGpBiCgSteps, g.GpBiCgSteps())

	g = must.M1(solvers.NewGPBiCG[float64](solvers.WithBiCgStabSteps(2), solvers.WithGpBiCgSteps(0)))
	assert.Equal(t, 2, g.BiCgStabSteps())
	assert.Equal(t, 0, g.GpBiCgSteps())

	_, err := solvers.NewGPBiCG[float64](solvers.WithBiCgStabSteps(-1))
	assert.ErrorIs(t, err, fault.ErrInvalidParameter)
	_, err = solvers.NewGPBiCG[float64](solvers.WithGpBiCgSteps(-3))
	assert.ErrorIs(t, err, fault.ErrInvalidParameter)
}

func TestConvergesOnConvectionDiffusionGrid(t *testing.T) {
	const side = 16
	a, err := builder.BuildSparse[float64](side*side, []builder.BuilderOption{builder.WithConvection(0.4)},
		builder.Grid[float64](side, side))
	require.NoError(t, err)
	want, b := system[float64](a)
	for _, tc := range solverCases[float64](t) {
		t.Run(tc.name, func(t *testing.T) {
			it := must.M1(solvers.DefaultIterator[float64](1000, 1e-11))
			x, err := solvers.SolveVector(context.Background(), tc.solver, a, b, it, solvers.NewILU0Preconditioner[float64]())
			require.NoError(t, err)
			require.Equal(t, solvers.Converged, it.Status())
			kerneltest.RequireClose(t, want.Raw(), x.Raw(), 1e-7)
		})
	}
}

func TestConvergesOnRandomSparseComplex(t *testing.T) {
	a, err := builder.BuildSparse[complex128](80, []builder.BuilderOption{builder.WithSeed(11)},
		builder.RandomSparse[complex128](0.05), builder.DiagonallyDominant[complex128](1))
	require.NoError(t, err)
	want, b := system[complex128](a)
	for _, tc := range solverCases[complex128](t) {
		t.Run(tc.name, func(t *testing.T) {
			it := must.M1(solvers.DefaultIterator[complex128](500, 1e-12))
			x, err := solvers.SolveVector(context.Background(), tc.solver, a, b, it, solvers.NewILU0Preconditioner[complex128]())
			require.NoError(t, err)
			require.Equal(t, solvers.Converged, it.Status())
			kerneltest.RequireClose(t, want.Raw(), x.Raw(), 1e-9)
		})
	}
}
