// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cycle

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xinzhou1006/scycle/bulk"
	"github.com/xinzhou1006/scycle/fault"
	"github.com/xinzhou1006/scycle/inp"
	"github.com/xinzhou1006/scycle/material"
	"github.com/xinzhou1006/scycle/sbp"
)

// testCoordinator builds a small symmFault/remoteLoading Coordinator with a
// fixed-step Euler tableau, so two independently-built instances driven
// through identical step sequences are directly comparable.
func testCoordinator(t *testing.T) *Coordinator {
	g := material.NewGrid(4, 4, 1.0, 1.0)
	fld := material.NewField(g)
	for i := range fld.Mu {
		fld.Mu[i] = 3e10
		fld.Rho[i] = 2700
	}
	fld.DeriveCs()
	cfg := sbp.Config{Axes: sbp.AxisYZ, BC: [4]sbp.BcKind{sbp.Neumann, sbp.Dirichlet, sbp.Neumann, sbp.Neumann}}
	kit := sbp.NewKit(g.Ny, g.Nz, g.Ly, g.Lz, 2, cfg)
	kind, err := bulk.ParseLinSolverKind("direct-LU")
	require.NoError(t, err)
	solver := bulk.NewSolver(kit, fld, nil, kind, 0)

	z := make([]float64, kit.Nz)
	tau := make([]float64, kit.Nz)
	for i := range z {
		z[i] = fld.Mu[0] / fld.Cs[0]
	}
	symm := &fault.Symmetric{Z: z, TauQS: tau}
	params := &fault.Params{
		A: make([]float64, kit.Nz), B: make([]float64, kit.Nz),
		Dc: make([]float64, kit.Nz), Sigma0: make([]float64, kit.Nz),
		F0: 0.6, V0: 1e-6,
	}
	for i := range params.A {
		params.A[i] = 0.015
		params.B[i] = 0.02
		params.Dc[i] = 0.02
		params.Sigma0[i] = 50e6
	}
	qd := &QDIntegrand{
		G: g, Kit: kit, Bulk: solver,
		FaultParams: params, Variant: symm, Symm: symm,
		VL: 1e-9, BcL: SymmFault, BcR: RemoteLoading,
	}

	dyn := &DynamicIntegrand{
		G: g, Kit: kit, Bulk: solver,
		FaultParams: params, Variant: symm, Symm: symm,
		CFL: 0.9,
	}

	cfgC := &inp.Config{
		TimeIntegrator: "FEuler", TimeControlType: "PID", NormType: "L2_absolute",
		MaxTime: 1e12, MaxStepCount: 100, InitDeltaT: 1e4, MinDeltaT: 1, MaxDeltaT: 1e6,
		TriggerQd2D: 1e10, TriggerD2Qd: 1e-10, LimitQd: 1e10, LimitDyn: 1e-10,
	}
	y0 := Vec{"psi": make([]float64, kit.Nz), "slip": make([]float64, kit.Nz)}
	for i := range y0["psi"] {
		y0["psi"][i] = 0.6
	}
	c, err := NewCoordinator(cfgC, qd, dyn, y0)
	require.NoError(t, err)
	return c
}

// TestSwitchRoundTripPreservesState checks that a quasi-dynamic step followed
// by a forced dyn->qd switch (with no intervening dynamic step) and a second
// quasi-dynamic step produces the same psi/slip as two consecutive
// quasi-dynamic steps — the switch handoff's copy semantics introduce no
// additional error on their own, which must hold before the truncation
// introduced by an actual dynamic excursion can be bounded.
func TestSwitchRoundTripPreservesState(t *testing.T) {
	cNoSwitch := testCoordinator(t)
	require.NoError(t, cNoSwitch.qdPhase())
	require.NoError(t, cNoSwitch.qdPhase())

	cSwitch := testCoordinator(t)
	require.NoError(t, cSwitch.qdPhase())
	cSwitch.switchToDynamic()
	require.True(t, cSwitch.inDynamic)
	cSwitch.switchToQuasiDynamic()
	require.False(t, cSwitch.inDynamic)
	require.NoError(t, cSwitch.qdPhase())

	for i, want := range cNoSwitch.Y["psi"] {
		require.InDelta(t, want, cSwitch.Y["psi"][i], 1e-9, "psi[%d]", i)
	}
	for i, want := range cNoSwitch.Y["slip"] {
		require.InDelta(t, want, cSwitch.Y["slip"][i], 1e-9, "slip[%d]", i)
	}
}

// TestSwitchToDynamicSeedsUPrevFromSlipVelocity checks the u_{n-1} = u_n -
// dt*v_n seeding spec.md §4.6 requires for the qd->dyn handoff, where v_n is
// the slip velocity on the fault column (the first Nz nodes) and zero
// elsewhere.
func TestSwitchToDynamicSeedsUPrevFromSlipVelocity(t *testing.T) {
	c := testCoordinator(t)
	require.NoError(t, c.qdPhase())
	c.switchToDynamic()
	dt := c.Dyn.MaxStableDt()
	for i, u := range c.QD.LastU {
		v := 0.0
		if i < len(c.lastV) {
			v = c.lastV[i]
		}
		want := u - dt*v
		require.InDelta(t, want, c.dynUPrev[i], 1e-9, "dynUPrev[%d]", i)
	}
	require.Equal(t, c.QD.LastU, c.dynU)
}

// TestSwitchLatchesAllowedFalse checks both switch directions disarm the
// latch, matching the hysteresis state machine of spec.md §4.6.
func TestSwitchLatchesAllowedFalse(t *testing.T) {
	c := testCoordinator(t)
	require.NoError(t, c.qdPhase())
	c.allowed = true
	c.switchToDynamic()
	require.False(t, c.allowed)

	c.allowed = true
	c.switchToQuasiDynamic()
	require.False(t, c.allowed)
}
