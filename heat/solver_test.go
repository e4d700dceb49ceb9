// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package heat

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xinzhou1006/scycle/sbp"
)

func testHeatSolver() (*Solver, *sbp.Kit) {
	cfg := sbp.Config{Axes: sbp.AxisYZ, BC: [4]sbp.BcKind{sbp.Neumann, sbp.Dirichlet, sbp.Dirichlet, sbp.Dirichlet}}
	kit := sbp.NewKit(6, 6, 1.0, 1.0, 2, cfg)
	rhoC := make([]float64, kit.Ny*kit.Nz)
	for i := range rhoC {
		rhoC[i] = 2.5e6
	}
	return NewSolver(kit, rhoC, Transient), kit
}

// TestQradZeroWhenDisabled checks the opt-in gating of the radioactive
// heat-generation source.
func TestQradZeroWhenDisabled(t *testing.T) {
	s, kit := testHeatSolver()
	q := s.Qrad()
	require.Len(t, q, kit.Ny*kit.Nz)
	for _, v := range q {
		require.Equal(t, 0.0, v)
	}
}

// TestQradDecaysWithDepth checks A0*exp(-z/Lrad) decreases monotonically
// with z once enabled.
func TestQradDecaysWithDepth(t *testing.T) {
	s, kit := testHeatSolver()
	s.WithRadioHeatGen = true
	s.Lrad = 0.3
	s.A0 = make([]float64, kit.Ny*kit.Nz)
	for i := range s.A0 {
		s.A0[i] = 1e-6
	}
	q := s.Qrad()
	var prev float64 = 1e30
	for iz := 0; iz < kit.Nz; iz++ {
		v := q[kit.Index(0, iz)]
		require.LessOrEqual(t, v, prev)
		prev = v
	}
}

// TestBoundaryFluxOnlyWhenNoShearZoneWidth checks the dispatch between the
// boundary-flux and volumetric frictional-heating deposition modes.
func TestBoundaryFluxOnlyWhenNoShearZoneWidth(t *testing.T) {
	s, kit := testHeatSolver()
	s.WithFrictionalHeating = true
	tau := make([]float64, kit.Nz)
	V := make([]float64, kit.Nz)
	for i := range tau {
		tau[i], V[i] = 1e6, 1e-3
	}
	bcL := s.BoundaryFlux(tau, V)
	for i, v := range bcL {
		require.InDelta(t, tau[i]*V[i], v, 1e-9)
	}

	s.ShearZoneWidth = make([]float64, kit.Nz)
	for i := range s.ShearZoneWidth {
		s.ShearZoneWidth[i] = 0.05
	}
	bcL2 := s.BoundaryFlux(tau, V)
	for _, v := range bcL2 {
		require.Equal(t, 0.0, v)
	}
	vol := s.FrictionalHeating(tau, V)
	var sum float64
	for _, v := range vol {
		sum += v
	}
	require.Greater(t, sum, 0.0)
}

// TestStepTransientAndExplicitRateAgreeToFirstOrder checks that one
// backward-Euler step and one forward-Euler step (using ExplicitRate)
// starting from the same state, with zero source, zero Neumann data on the
// left and Dirichlet data 500 on the other three sides, agree to within
// 1e-3 for a small dt — the two entry points the
// "_WBE"/plain RK tableaux selection in cycle.Coordinator.advanceAuxFields
// switches between.
func TestStepTransientAndExplicitRateAgreeToFirstOrder(t *testing.T) {
	s, kit := testHeatSolver()
	n := kit.Ny * kit.Nz
	T := make([]float64, n)
	for iy := 0; iy < kit.Ny; iy++ {
		for iz := 0; iz < kit.Nz; iz++ {
			T[kit.Index(iy, iz)] = 500 + float64(iy)
		}
	}
	Q := make([]float64, n)
	bcL := make([]float64, kit.Nz)
	bcR := make([]float64, kit.Nz)
	bcT := make([]float64, kit.Ny)
	bcB := make([]float64, kit.Ny)
	for i := range bcR {
		bcR[i] = 500
	}
	for i := range bcT {
		bcT[i], bcB[i] = 500, 500
	}

	dt := 1e-6
	Timp, err := s.StepTransient(append([]float64(nil), T...), dt, Q, bcL, bcR, bcT, bcB)
	require.NoError(t, err)

	rate := s.ExplicitRate(T, Q, bcL, bcR, bcT, bcB)
	Texp := make([]float64, n)
	for i := range T {
		Texp[i] = T[i] + dt*rate[i]
	}

	for i := range Timp {
		require.InDelta(t, Texp[i], Timp[i], 1e-3, "node %d", i)
	}
}

// TestStepSteadyZeroSourceRecoversBoundary checks that a steady solve with
// zero volumetric source and a uniform Dirichlet load on all four sides
// reproduces that uniform value at every node (no internal source to curve it),
// mirroring TestSolveConstantBCGivesConstantField in package bulk.
func TestStepSteadyZeroSourceRecoversBoundary(t *testing.T) {
	cfg := sbp.Config{Axes: sbp.AxisYZ, BC: [4]sbp.BcKind{sbp.Dirichlet, sbp.Dirichlet, sbp.Dirichlet, sbp.Dirichlet}}
	kit := sbp.NewKit(6, 6, 1.0, 1.0, 2, cfg)
	rhoC := make([]float64, kit.Ny*kit.Nz)
	for i := range rhoC {
		rhoC[i] = 1
	}
	s := NewSolver(kit, rhoC, SteadyState)
	n := kit.Ny * kit.Nz
	Q := make([]float64, n)
	const want = 400.0
	bcL := make([]float64, kit.Nz)
	bcR := make([]float64, kit.Nz)
	bcT := make([]float64, kit.Ny)
	bcB := make([]float64, kit.Ny)
	for i := range bcL {
		bcL[i], bcR[i] = want, want
	}
	for i := range bcT {
		bcT[i], bcB[i] = want, want
	}
	T, err := s.StepSteady(Q, bcL, bcR, bcT, bcB)
	require.NoError(t, err)
	for i, v := range T {
		require.InDelta(t, want, v, 1e-6, "node %d", i)
	}
}
