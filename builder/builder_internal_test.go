// SPDX-License-Identifier: MIT
package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/katalvlaran/lvnum/fault"
)

func TestAssemblyBounds(t *testing.T) {
	outside := Constructor[float64](func(a *Assembly[float64], _ builderConfig) error {
		return a.Add(a.Order(), 0, 1)
	})
	_, err := BuildSparse[float64](3, nil, outside)
	assert.ErrorIs(t, err, ErrConstructFailed)
	assert.ErrorIs(t, err, fault.ErrOutOfRange)
}

func TestAssemblyRowAbsSums(t *testing.T) {
	a := &Assembly[complex128]{order: 2}
	assert.NoError(t, a.Add(0, 1, 3+4i))
	assert.NoError(t, a.Add(0, 1, -3))
	assert.NoError(t, a.Add(0, 0, 100))
	assert.NoError(t, a.Add(1, 0, -2))
	assert.Equal(t, []float64{4, 2}, a.RowAbsSums())
}

func TestConfigDefaults(t *testing.T) {
	cfg := newBuilderConfig()
	assert.Nil(t, cfg.rng)
	assert.Equal(t, defaultConvection, cfg.convection)
	assert.Equal(t, defaultValueRange, cfg.valueRange)

	cfg = newBuilderConfig(WithConvection(0.2), WithConvection(0.4), WithSeed(3))
	assert.Equal(t, 0.4, cfg.convection, "last option wins")
	assert.NotNil(t, cfg.rng)
}
