// SPDX-License-Identifier: MIT

// Package lvnum is a generic numerical linear-algebra toolkit: dense, sparse
// and diagonal matrices over float32, float64, complex64 and complex128,
// direct factorizations behind a pluggable kernel provider, and
// preconditioned Krylov solvers.
//
// What is inside:
//
//	fault/               error taxonomy: argument, numerical-domain and iterative errors
//	numeric/             the Element constraint and per-precision scalar helpers
//	storage/             column-major dense, CSR and diagonal buffers, triplets
//	kernel/              Provider contract, Backend bundles, named registry
//	kernel/reference/    portable generic Go provider
//	kernel/gonumkernel/  provider delegating to gonum BLAS/LAPACK
//	linalg/              Matrix/Vector facade, LU, Cholesky, QR and SVD
//	solvers/             BiCgStab, GPBiCG, stop criteria, preconditioners
//	solvers/convergence/ residual history recorder and PNG plots
//
// Choosing a provider:
//
//	linalg.UseNamed("gonum")      // explicit
//	LVNUM_PROVIDER=gonum ./app    // read by linalg.UseDefault
//
// The reference provider is used until something else is installed.
//
// Quick example:
//
//	a, _ := linalg.NewDenseFromRows([][]float64{{4, 1}, {1, 3}})
//	lu, _ := linalg.FactorizeLU[float64](a)
//	x, _ := lu.SolveVec(linalg.NewVectorFromSlice([]float64{1, 2}))
//	// x ≈ [1/11, 7/11]
//
//	go get github.com/katalvlaran/lvnum
package lvnum
