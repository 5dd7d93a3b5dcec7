// SPDX-License-Identifier: MIT
package solvers

// GPBiCG defaults.
const (
	// DefaultBiCgStabSteps is the number of BiCgStab-style steps per cycle.
	DefaultBiCgStabSteps = 1

	// DefaultGpBiCgSteps is the number of two-parameter steps per cycle.
	DefaultGpBiCgSteps = 4
)

// GPBiCGOption configures NewGPBiCG. Values are validated by NewGPBiCG.
type GPBiCGOption func(*gpbicgConfig)

type gpbicgConfig struct {
	bicgstabSteps int
	gpbicgSteps   int
}

func defaultGPBiCGConfig() gpbicgConfig {
	return gpbicgConfig{bicgstabSteps: DefaultBiCgStabSteps, gpbicgSteps: DefaultGpBiCgSteps}
}

// WithBiCgStabSteps sets how many leading steps of each cycle use the
// one-parameter update. n must be ≥ 0.
func WithBiCgStabSteps(n int) GPBiCGOption {
	return func(c *gpbicgConfig) { c.bicgstabSteps = n }
}

// WithGpBiCgSteps sets how many trailing steps of each cycle use the
// two-parameter update. n must be ≥ 0.
func WithGpBiCgSteps(n int) GPBiCGOption {
	return func(c *gpbicgConfig) { c.gpbicgSteps = n }
}
