// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cycle

import (
	"math"

	"github.com/xinzhou1006/scycle/bulk"
	"github.com/xinzhou1006/scycle/fault"
	"github.com/xinzhou1006/scycle/material"
	"github.com/xinzhou1006/scycle/sbp"
)

// DynamicIntegrand advances the elastodynamic wave equation explicitly
// under a CFL constraint (spec.md §4.6):
//
//	u_{n+1} = [2u_n - (1-alpha*dt/2)*u_{n-1} + dt^2*(A*u_n + forcing)] / (1+alpha*dt/2)
//
// where A = rho^-1 * (D2y(mu) + D2z(mu)) (the non-negated Laplacian of
// sbp.Kit.ApplyLaplacian), forcing is rho^-1 times the SAT boundary data
// from Bulk.SetRhs, all four sides Neumann, the fault
// traction entering through the left SAT term.
type DynamicIntegrand struct {
	G    *material.Grid
	Kit  *sbp.Kit
	Bulk *bulk.Solver

	FaultParams *fault.Params
	Variant     fault.Variant
	Symm        *fault.Symmetric
	Asym        *fault.Asymmetric

	Alpha []float64 // absorbing-boundary damping, zero in the interior/non-absorbing sides

	CFL float64

	StateLaw         fault.StateLaw
	VwFlash, FwFlash []float64
}

// MaxStableDt returns the CFL-limited step size 0.5*CFL*min(dy/cs, dz/cs).
func (d *DynamicIntegrand) MaxStableDt() float64 {
	minRatio := math.Inf(1)
	for i, cs := range d.Bulk.Field.Cs {
		if cs <= 0 {
			continue
		}
		_ = i
		ry := d.Kit.Dy / cs
		rz := d.Kit.Dz / cs
		if ry < minRatio {
			minRatio = ry
		}
		if rz < minRatio {
			minRatio = rz
		}
	}
	return 0.5 * d.CFL * minRatio
}

// Step advances (uPrev, uCur) by one leap-frog step of size dt and updates
// the fault state (psi, slip) from the trial displacement, per spec.md's
// "Per dynamic step" data-flow description.
func (d *DynamicIntegrand) Step(uPrev, uCur []float64, st *fault.State, dt float64) (uNext []float64, slipVel []float64, err error) {
	n := len(uCur)
	sigmaXY, _, _ := d.Bulk.Stresses(uCur)
	tauQS := d.Bulk.ShearOnFault(sigmaXY)
	if d.Symm != nil {
		d.Symm.TauQS = tauQS
	}
	if d.Asym != nil {
		d.Asym.TauQSp = tauQS
		for i := range tauQS {
			d.Asym.TauQSm[i] = -tauQS[i]
		}
	}
	V, err := fault.SolveAll(d.FaultParams, st, d.Variant)
	if err != nil {
		return nil, nil, err
	}
	for i, v := range V {
		st.Slip[i] += v * dt
		st.SlipVel[i] = v
	}
	dpsi, err := fault.EvolveState(d.StateLaw, d.FaultParams, st, V, d.VwFlash, d.FwFlash)
	if err != nil {
		return nil, nil, err
	}
	for i := range st.Psi {
		st.Psi[i] += dpsi[i] * dt
	}

	bcL := make([]float64, d.Kit.Nz)
	for i := range bcL {
		bcL[i] = st.Slip[i] / 2
	}
	bcR := make([]float64, d.Kit.Nz)
	bcT := make([]float64, d.Kit.Ny)
	bcB := make([]float64, d.Kit.Ny)
	forcingBC := d.Bulk.SetRhs(bcL, bcR, bcT, bcB, nil)
	lap := d.Kit.ApplyLaplacian(d.Bulk.Field.Mu, uCur)

	uNext = make([]float64, n)
	for i := 0; i < n; i++ {
		alpha := 0.0
		if d.Alpha != nil {
			alpha = d.Alpha[i]
		}
		rho := d.Bulk.Field.Rho[i]
		accel := (lap[i] + forcingBC[i]) / rho
		num := 2*uCur[i] - (1-alpha*dt/2)*uPrev[i] + dt*dt*accel
		uNext[i] = num / (1 + alpha*dt/2)
	}
	return uNext, V, nil
}
