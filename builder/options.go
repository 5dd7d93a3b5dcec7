// SPDX-License-Identifier: MIT
// Package: lvnum/builder
//
// options.go - functional options for the builder package.
//
// Contract:
//   - Options are functional (type BuilderOption func(*builderConfig)).
//   - Option constructors validate and PANIC on meaningless inputs; the
//     constructors themselves never panic and return sentinel errors.
//   - Determinism is explicit: randomness only comes from WithSeed or WithRand.

package builder

import (
	"math"
	"math/rand/v2"
)

// BuilderOption customizes an assembly by mutating a builderConfig before
// any constructor runs.
type BuilderOption func(*builderConfig)

// WithRand provides an explicit RNG for stochastic constructors.
// Panics on nil; prefer WithSeed for reproducible fixtures.
func WithRand(r *rand.Rand) BuilderOption {
	if r == nil {
		panic("builder: WithRand(nil)")
	}
	return func(c *builderConfig) {
		c.rng = r
	}
}

// WithSeed installs a PCG generator seeded with seed.
func WithSeed(seed uint64) BuilderOption {
	return func(c *builderConfig) {
		c.rng = rand.New(rand.NewPCG(seed, seed^pcgStream))
	}
}

// WithConvection sets the first-order (upwind) coefficient added to the
// stencils of Path and Grid. c = 0 keeps them symmetric; |c| > 0 makes
// them non-symmetric. Panics on NaN or ±Inf.
func WithConvection(c float64) BuilderOption {
	if math.IsNaN(c) || math.IsInf(c, 0) {
		panic("builder: WithConvection(non-finite)")
	}
	return func(cfg *builderConfig) {
		cfg.convection = c
	}
}

// WithValueRange sets the magnitude bound for RandomSparse entries: real
// and imaginary parts are drawn from [-m, m]. Panics if m <= 0.
func WithValueRange(m float64) BuilderOption {
	if !(m > 0) || math.IsInf(m, 0) {
		panic("builder: WithValueRange(m<=0)")
	}
	return func(c *builderConfig) {
		c.valueRange = m
	}
}
