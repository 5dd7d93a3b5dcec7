// SPDX-License-Identifier: MIT
// Package: lvnum/builder
//
// config.go - internal configuration and deterministic defaults.
//
// Deterministic defaults:
//   - rng        = nil  (pure/deterministic unless seeded)
//   - convection = 0    (symmetric stencils)
//   - valueRange = 1    (RandomSparse draws from [-1,1])

package builder

import "math/rand/v2"

// builderConfig aggregates all knobs used by constructors.
// It is passed by VALUE to constructors.
type builderConfig struct {
	// RNG for stochastic constructors; nil means "no randomness".
	rng *rand.Rand
	// Upwind coefficient for differential stencils.
	convection float64
	// Magnitude bound of random entries.
	valueRange float64
}

const (
	defaultConvection = 0.0
	defaultValueRange = 1.0

	// pcgStream decorrelates the two PCG words derived from one seed.
	pcgStream = 0x9e3779b97f4a7c15
)

// newBuilderConfig returns the defaults with opts applied in order
// (later options override earlier ones).
func newBuilderConfig(opts ...BuilderOption) builderConfig {
	cfg := builderConfig{
		convection: defaultConvection,
		valueRange: defaultValueRange,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}
