// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cycle

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xinzhou1006/scycle/bulk"
	"github.com/xinzhou1006/scycle/fault"
	"github.com/xinzhou1006/scycle/material"
	"github.com/xinzhou1006/scycle/sbp"
)

func testDynamicIntegrand(t *testing.T) (*DynamicIntegrand, *material.Grid) {
	g := material.NewGrid(5, 5, 1.0, 1.0)
	fld := material.NewField(g)
	for i := range fld.Mu {
		fld.Mu[i] = 3e10
		fld.Rho[i] = 2700
	}
	fld.DeriveCs()
	cfg := sbp.Config{Axes: sbp.AxisYZ, BC: [4]sbp.BcKind{sbp.Neumann, sbp.Neumann, sbp.Neumann, sbp.Neumann}}
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
	return &DynamicIntegrand{
		G: g, Kit: kit, Bulk: solver,
		FaultParams: params, Variant: symm, Symm: symm,
		CFL: 0.9,
	}, g
}

// TestMaxStableDtIsCFLBound checks MaxStableDt computes 0.5*CFL*min(dy,dz)/cs.
func TestMaxStableDtIsCFLBound(t *testing.T) {
	d, g := testDynamicIntegrand(t)
	dt := d.MaxStableDt()
	want := 0.5 * d.CFL * (g.Ly / float64(g.Ny-1)) / d.Bulk.Field.Cs[0]
	require.InDelta(t, want, dt, 1e-12)
}

// TestDynamicStepProducesFiniteState checks one leap-frog step from rest
// produces a finite displacement at every node and an Nz-length
// slip-velocity read-back, exercising the fault-rootfinding/state-update/
// wave-update ordering of DynamicIntegrand.Step.
func TestDynamicStepProducesFiniteState(t *testing.T) {
	d, g := testDynamicIntegrand(t)
	n := g.N()
	uPrev := make([]float64, n)
	uCur := make([]float64, n)
	st := &fault.State{Psi: make([]float64, d.Kit.Nz), Slip: make([]float64, d.Kit.Nz), SlipVel: make([]float64, d.Kit.Nz)}
	for i := range st.Psi {
		st.Psi[i] = 0.6
	}
	dt := d.MaxStableDt()
	uNext, V, err := d.Step(uPrev, uCur, st, dt)
	require.NoError(t, err)
	require.Len(t, uNext, n)
	require.Len(t, V, d.Kit.Nz)
	for i, v := range uNext {
		require.False(t, math.IsNaN(v) || math.IsInf(v, 0), "non-finite value at node %d", i)
	}
}
