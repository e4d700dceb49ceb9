// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cycle

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStepControllerAcceptsSmallError(t *testing.T) {
	c := newStepController("P", 4, 1e-6, 1e-3, 1e3, "L2_absolute")
	dtNext, accept := c.next(1.0, 1e-9)
	require.True(t, accept)
	require.Greater(t, dtNext, 1.0)
}

func TestStepControllerRejectsLargeError(t *testing.T) {
	c := newStepController("P", 4, 1e-6, 1e-3, 1e3, "L2_absolute")
	dtNext, accept := c.next(1.0, 1.0)
	require.False(t, accept)
	require.Less(t, dtNext, 1.0)
}

func TestStepControllerClampsToMinMax(t *testing.T) {
	c := newStepController("P", 4, 1e-6, 0.5, 2.0, "L2_absolute")
	dtNext, _ := c.next(1.0, 1e-20)
	require.LessOrEqual(t, dtNext, 2.0)

	dtNext, _ = c.next(1.0, 1e20)
	require.GreaterOrEqual(t, dtNext, 0.5)
}

func TestStepControllerNormVariants(t *testing.T) {
	c := newStepController("P", 4, 1.0, 1e-3, 1e3, "L2_absolute")
	errVec := Vec{"slip": {3, 4}}
	y := Vec{"slip": {1, 1}}
	require.InDelta(t, 3.5355339, c.norm(errVec, y, []string{"slip"}), 1e-6)

	c.normType = "Linf_absolute"
	require.InDelta(t, 4.0, c.norm(errVec, y, []string{"slip"}), 1e-9)

	c.normType = "L2_relative"
	require.Greater(t, c.norm(errVec, y, []string{"slip"}), 0.0)

	c.normType = "Linf_relative"
	require.Greater(t, c.norm(errVec, y, []string{"slip"}), 0.0)
}

// TestStepControllerPIDUsesPrevError checks that the PID branch reads back
// prevErr only after the first accepted step has recorded one.
func TestStepControllerPIDUsesPrevError(t *testing.T) {
	c := newStepController("PID", 4, 1e-6, 1e-3, 1e3, "L2_absolute")
	require.False(t, c.haveErr)
	_, accept := c.next(1.0, 1e-9)
	require.True(t, accept)
	require.True(t, c.haveErr)
	dtNext, accept2 := c.next(1.0, 1e-9)
	require.True(t, accept2)
	require.Greater(t, dtNext, 0.0)
}
