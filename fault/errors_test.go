// SPDX-License-Identifier: MIT
package fault_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lvnum/fault"
)

func TestCategories(t *testing.T) {
	for _, tc := range []struct {
		name     string
		err      error
		category error
	}{
		{"nil buffer", fault.ErrNilBuffer, fault.ErrArgument},
		{"dimension", fault.ErrDimensionMismatch, fault.ErrArgument},
		{"non-square", fault.ErrNonSquare, fault.ErrArgument},
		{"parameter", fault.ErrInvalidParameter, fault.ErrArgument},
		{"range", fault.ErrOutOfRange, fault.ErrArgument},
		{"aliasing", fault.ErrAliasing, fault.ErrArgument},
		{"malformed", fault.ErrMalformed, fault.ErrArgument},
		{"singular", fault.ErrSingular, fault.ErrDomain},
		{"spd", fault.ErrNotPositiveDefinite, fault.ErrDomain},
		{"symmetric", fault.ErrNotSymmetric, fault.ErrDomain},
		{"rank", fault.ErrRankDeficient, fault.ErrDomain},
		{"convergence", fault.ErrNoConvergence, fault.ErrDomain},
		{"breakdown", fault.ErrBreakdown, fault.ErrIterative},
	} {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, tc.err, tc.category)
			wrapped := fault.Wrap("Op", tc.err)
			require.ErrorIs(t, wrapped, tc.err)
			require.ErrorIs(t, wrapped, tc.category)
		})
	}
}

func TestCategoriesAreDisjoint(t *testing.T) {
	require.False(t, fault.IsDomain(fault.ErrDimensionMismatch))
	require.False(t, fault.IsArgument(fault.ErrSingular))
	require.False(t, fault.IsIterative(fault.ErrRankDeficient))
	require.True(t, fault.IsIterative(fmt.Errorf("solve: %w", fault.ErrBreakdown)))
}

func TestWrapNil(t *testing.T) {
	require.NoError(t, fault.Wrap("Op", nil))
	require.NoError(t, fault.Wrapf("Op", nil, "row %d", 3))
}

func TestWrapfFormatsDetail(t *testing.T) {
	err := fault.Wrapf("LUSolve", fault.ErrDimensionMismatch, "len(b)=%d, want %d", 3, 4)
	require.EqualError(t, err, "LUSolve: len(b)=3, want 4: lvnum: dimension mismatch")
	require.True(t, errors.Is(err, fault.ErrArgument))
}
