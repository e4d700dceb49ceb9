// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cycle

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestTableauForDispatch checks the timeIntegrator-string-to-tableau mapping,
// including the "_WBE" implicit-heat marker.
func TestTableauForDispatch(t *testing.T) {
	tb, err := tableauFor("RK43")
	require.NoError(t, err)
	require.Equal(t, "RK43", tb.name)
	require.False(t, tb.implicitHeat)

	tb, err = tableauFor("RK32_WBE")
	require.NoError(t, err)
	require.Equal(t, "RK32", tb.name)
	require.True(t, tb.implicitHeat)

	_, err = tableauFor("bogus")
	require.Error(t, err)
}

// TestRkStepExactOnLinearODE checks that rkStep integrates dy/dt = c (a
// constant rate) exactly regardless of tableau, since every consistent
// Runge-Kutta method reproduces a polynomial of degree <= order exactly.
func TestRkStepExactOnLinearODE(t *testing.T) {
	f := func(t float64, y Vec) (Vec, error) {
		return Vec{"x": {2.0}}, nil
	}
	for _, tb := range []tableau{feuler, rk32, rk43} {
		y0 := Vec{"x": {1.0}}
		y1, errVec, err := rkStep(tb, f, 0, y0, 0.1)
		require.NoError(t, err)
		require.InDelta(t, 1.2, y1["x"][0], 1e-10, tb.name)
		require.InDelta(t, 0.0, errVec["x"][0], 1e-9, tb.name)
	}
}

// TestRkStepPropagatesError checks that an error from the rate function
// aborts the step.
func TestRkStepPropagatesError(t *testing.T) {
	f := func(t float64, y Vec) (Vec, error) {
		return nil, errBoom
	}
	_, _, err := rkStep(rk43, f, 0, Vec{"x": {1.0}}, 0.1)
	require.Error(t, err)
}

// TestVecCloneIsDeep checks that mutating a clone never perturbs the source.
func TestVecCloneIsDeep(t *testing.T) {
	v := Vec{"x": {1, 2, 3}}
	c := v.clone()
	c["x"][0] = 999
	require.Equal(t, 1.0, v["x"][0])
}

// TestAxpyAccumulates checks the in-place a*src + dst update used by rkStep.
func TestAxpyAccumulates(t *testing.T) {
	dst := Vec{"x": {1, 1}}
	src := Vec{"x": {2, 3}}
	axpy(dst, 0.5, src)
	require.Equal(t, []float64{2, 2.5}, dst["x"])
}

type errString string

func (e errString) Error() string { return string(e) }

var errBoom = errString("boom")

// TestFEulerHasZeroErrorEstimate checks the trivial FEuler tableau's b==bHat
// property (never triggers a step shrink).
func TestFEulerHasZeroErrorEstimate(t *testing.T) {
	require.Equal(t, feuler.b, feuler.bHat)
}

// TestRk43OrderIsFour is a sanity check on the embedded pair's metadata used
// by the step controller's exponent.
func TestRk43OrderIsFour(t *testing.T) {
	require.Equal(t, 4, rk43.order)
	var sumB float64
	for _, b := range rk43.b {
		sumB += b
	}
	require.InDelta(t, 1.0, sumB, 1e-12)
}
