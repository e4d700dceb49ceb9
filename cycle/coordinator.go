// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cycle

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/xinzhou1006/scycle/fault"
	"github.com/xinzhou1006/scycle/heat"
	"github.com/xinzhou1006/scycle/inp"
	"github.com/xinzhou1006/scycle/material"
	"github.com/xinzhou1006/scycle/pressure"
)

// Coordinator owns the integrand map, the regime-switch state machine, and
// drives the quasi-dynamic / fully-dynamic integrators (spec.md §4.6).
type Coordinator struct {
	QD  *QDIntegrand
	Dyn *DynamicIntegrand

	inDynamic bool
	currTime  float64
	stepCount int
	deltaT    float64

	allowed     bool
	triggerQd2D float64
	triggerD2Qd float64
	limitQd     float64
	limitDyn    float64

	maxTime      float64
	maxStepCount int

	ctrl *stepController
	tb   tableau
	inds []string

	stride1D, stride2D int
	outputDir          string
	ckptNumber         int

	// quasi-dynamic state
	Y     Vec
	lastV []float64 // slip velocity from the most recent qd step, for switch seeding

	// dynamic state
	dynU, dynUPrev []float64
	dynState       *fault.State
	savedGxy, savedGxz []float64 // viscous strain preserved across a dyn excursion
}

// NewCoordinator wires a Coordinator from parsed configuration plus the
// already-constructed QD/dynamic integrands and initial state.
func NewCoordinator(cfg *inp.Config, qd *QDIntegrand, dyn *DynamicIntegrand, y0 Vec) (*Coordinator, error) {
	tb, err := tableauFor(cfg.TimeIntegrator)
	if err != nil {
		return nil, err
	}
	c := &Coordinator{
		QD:           qd,
		Dyn:          dyn,
		currTime:     cfg.InitTime,
		deltaT:       cfg.InitDeltaT,
		triggerQd2D:  cfg.TriggerQd2D,
		triggerD2Qd:  cfg.TriggerD2Qd,
		limitQd:      cfg.LimitQd,
		limitDyn:     cfg.LimitDyn,
		maxTime:      cfg.MaxTime,
		maxStepCount: cfg.MaxStepCount,
		tb:           tb,
		inds:         cfg.TimeIntInds,
		stride1D:     cfg.Stride1D,
		stride2D:     cfg.Stride2D,
		outputDir:    cfg.OutputDir,
		allowed:      true,
		Y:            y0,
	}
	c.ctrl = newStepController(cfg.TimeControlType, tb.order, cfg.Atol, cfg.MinDeltaT, cfg.MaxDeltaT, cfg.NormType)
	return c, nil
}

// Run drives the coordinator until currTime >= maxTime or stepCount >=
// maxStepCount, following the hysteretic switch state machine of spec.md
// §4.6: `allowed` latches false immediately after a switch and re-arms once
// maxSlipVel crosses the corresponding limit_* threshold.
func (c *Coordinator) Run() error {
	for c.currTime < c.maxTime && c.stepCount < c.maxStepCount {
		var err error
		if c.inDynamic {
			err = c.dynamicPhase()
		} else {
			err = c.qdPhase()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// qdPhase runs the quasi-dynamic integrator for a single adaptive step
// (retrying on step-controller rejection, spec.md §7) and evaluates the
// qd->dyn switch predicate.
func (c *Coordinator) qdPhase() error {
	for {
		y1, errVec, err := rkStep(c.tb, c.QD.DDt, c.currTime, c.Y, c.deltaT)
		if err != nil {
			return chk.Err("cycle: qd step failed at t=%g:\n%v", c.currTime, err)
		}
		errNorm := c.ctrl.norm(errVec, y1, c.inds)
		dtNext, accept := c.ctrl.next(c.deltaT, errNorm)
		if !accept {
			c.deltaT = dtNext
			continue
		}
		c.currTime += c.deltaT
		c.stepCount++
		c.Y = y1

		// one refresh evaluation to update LastU/LastTauQS and obtain the
		// slip-velocity field at the accepted state, used both for the
		// switch predicate and for the qd->dyn handoff seed.
		dyFinal, err := c.QD.DDt(c.currTime, c.Y)
		if err != nil {
			return chk.Err("cycle: post-step refresh failed at t=%g:\n%v", c.currTime, err)
		}
		c.lastV = dyFinal["slip"]
		maxSlipVel := maxAbsVec(c.lastV)

		if err := c.advanceAuxFields(c.deltaT); err != nil {
			return chk.Err("cycle: aux-field advance failed at t=%g:\n%v", c.currTime, err)
		}

		c.deltaT = clampMaxDt(dtNext, c.QD)

		if !c.allowed && maxSlipVel < c.limitQd {
			c.allowed = true
		}
		if c.allowed && maxSlipVel > c.triggerQd2D {
			c.switchToDynamic()
		}
		if c.stride1D > 0 && c.stepCount%c.stride1D == 0 {
			io.Pf("cycle: qd step %d t=%.6e dt=%.6e maxV=%.6e\n", c.stepCount, c.currTime, c.deltaT, maxSlipVel)
		}
		return nil
	}
}

// dynamicPhase advances the leap-frog integrator under the CFL constraint
// for one step and evaluates the dyn->qd switch predicate.
func (c *Coordinator) dynamicPhase() error {
	dt := c.Dyn.MaxStableDt()
	uNext, V, err := c.Dyn.Step(c.dynUPrev, c.dynU, c.dynState, dt)
	if err != nil {
		return chk.Err("cycle: dynamic step failed at t=%g:\n%v", c.currTime, err)
	}
	c.dynUPrev = c.dynU
	c.dynU = uNext
	c.currTime += dt
	c.stepCount++

	maxSlipVel := maxAbsVec(V)
	if !c.allowed && maxSlipVel > c.limitDyn {
		c.allowed = true
	}
	if c.allowed && maxSlipVel < c.triggerD2Qd {
		c.switchToQuasiDynamic()
	}
	if c.stride2D > 0 && c.stepCount%c.stride2D == 0 {
		io.Pf("cycle: dyn step %d t=%.6e dt=%.6e maxV=%.6e\n", c.stepCount, c.currTime, dt, maxSlipVel)
	}
	return nil
}

// switchToDynamic performs the qd->dyn handoff of spec.md §4.6: copy slip,
// psi, slipVel into the dynamic integrand; seed u_{n-1} = u_n - dt*v_n, with
// v_n the slip velocity on the fault column and zero elsewhere; retain
// material fields and temperature (read-only, untouched here).
func (c *Coordinator) switchToDynamic() {
	io.Pforan("cycle: switching quasi-dynamic -> dynamic at t=%.6e\n", c.currTime)
	dt := c.Dyn.MaxStableDt()
	u := c.QD.LastU
	n := len(u)
	uPrev := make([]float64, n)
	for i := range uPrev {
		// lastV covers the fault column only (the first Nz nodes); the rest
		// of the grid is seeded at rest
		v := 0.0
		if i < len(c.lastV) {
			v = c.lastV[i]
		}
		uPrev[i] = u[i] - dt*v
	}
	c.dynU = append([]float64(nil), u...)
	c.dynUPrev = uPrev
	c.dynState = &fault.State{
		Psi:     append([]float64(nil), c.Y["psi"]...),
		Slip:    append([]float64(nil), c.Y["slip"]...),
		SlipVel: append([]float64(nil), c.lastV...),
	}
	if gxy, ok := c.Y["gxy"]; ok {
		c.savedGxy = append([]float64(nil), gxy...)
		c.savedGxz = append([]float64(nil), c.Y["gxz"]...)
	}
	c.inDynamic = true
	c.allowed = false
}

// switchToQuasiDynamic performs the dyn->qd handoff: force a write of
// current outputs, copy psi/slip back to the qd fault, rebuild the SBP
// operator under the qd BC configuration, and clear the dynamic-phase
// u/uPrev/state fields (they are no longer state).
func (c *Coordinator) switchToQuasiDynamic() {
	io.Pforan("cycle: switching dynamic -> quasi-dynamic at t=%.6e\n", c.currTime)
	io.Pf("cycle: forced output write at switch, step=%d t=%.6e\n", c.stepCount, c.currTime)
	newY := Vec{
		"psi":  append([]float64(nil), c.dynState.Psi...),
		"slip": append([]float64(nil), c.dynState.Slip...),
	}
	if c.savedGxy != nil {
		newY["gxy"] = c.savedGxy
		newY["gxz"] = c.savedGxz
	}
	c.Y = newY
	c.dynU, c.dynUPrev, c.dynState = nil, nil, nil
	c.QD.Bulk.MarkDirty()
	c.inDynamic = false
	c.allowed = false
}

// advanceAuxFields steps the heat and pore-pressure equations once per
// accepted qd step, using the step's dt and the DDt refresh outputs just
// computed at the new accepted state (spec.md §4.4/§4.5). Neither field is
// part of the RK integrand map: both are coupling terms, not integrated
// state, so they advance once per accepted step rather than once per stage.
func (c *Coordinator) advanceAuxFields(dt float64) error {
	if c.QD.Heat != nil {
		h := c.QD.Heat
		Q := h.Qrad()
		if h.WithViscShearHeating && c.QD.LastDGxy != nil {
			visc := h.ViscousShearHeating(c.QD.LastSigmaDev, c.QD.LastDGxy, c.QD.LastDGxz)
			for i := range Q {
				Q[i] += visc[i]
			}
		}
		var bcL []float64
		if h.WithFrictionalHeating {
			frict := h.FrictionalHeating(c.QD.LastTauQS, c.lastV)
			for i := range Q {
				Q[i] += frict[i]
			}
			bcL = h.BoundaryFlux(c.QD.LastTauQS, c.lastV)
		} else {
			bcL = make([]float64, h.Kit.Nz)
		}
		bcR := make([]float64, h.Kit.Nz)
		bcT := make([]float64, h.Kit.Ny)
		bcB := make([]float64, h.Kit.Ny)

		if c.QD.Temperature == nil {
			c.QD.Temperature = make([]float64, h.Kit.Ny*h.Kit.Nz)
		}
		var err error
		switch {
		case h.Kind == heat.SteadyState:
			c.QD.Temperature, err = h.StepSteady(Q, bcL, bcR, bcT, bcB)
			if err != nil {
				return chk.Err("cycle: steady-state heat solve failed:\n%v", err)
			}
		case c.tb.implicitHeat:
			c.QD.Temperature, err = h.StepTransient(c.QD.Temperature, dt, Q, bcL, bcR, bcT, bcB)
			if err != nil {
				return chk.Err("cycle: implicit heat step failed:\n%v", err)
			}
		default:
			rate := h.ExplicitRate(c.QD.Temperature, Q, bcL, bcR, bcT, bcB)
			for i := range c.QD.Temperature {
				c.QD.Temperature[i] += dt * rate[i]
			}
		}
		copy(c.QD.Bulk.Field.T, c.QD.Temperature)
	}

	if c.QD.Pressure != nil {
		n := len(c.QD.SigmaNBase)
		if c.QD.PressureState == nil {
			c.QD.PressureState = make([]float64, n)
		}
		source := make([]float64, n)
		bcTop := []float64{c.QD.PressureState[0]}
		bcBottom := []float64{c.QD.PressureState[n-1]}
		p1, err := c.QD.Pressure.Step(c.QD.PressureState, dt, source, bcTop, bcBottom)
		if err != nil {
			return chk.Err("cycle: pore-pressure step failed:\n%v", err)
		}
		c.QD.PressureState = p1
		sigmaEff := pressure.EffectiveNormalStress(c.QD.SigmaNBase, c.QD.PressureState)
		copy(c.QD.FaultParams.Sigma0, sigmaEff)
	}
	return nil
}

// SolveStage runs a pre-integration steady-state guess: holds the state
// variable at InitSteady's psi0 and advances only the bulk/fault rootfinding
// (no state-variable or slip advance) for a handful of iterations so the
// initial shear traction field relaxes to the elastic solution consistent
// with the loaded BCs, before the real time integration starts (spec.md
// §4.3's guessSteadyStateICs option).
func (c *Coordinator) SolveStage(iters int) error {
	for it := 0; it < iters; it++ {
		slip := c.Y["slip"]
		bcL, bcR, bcT, bcB := c.QD.boundaryVectors(c.currTime, slip)
		rhs := c.QD.Bulk.SetRhs(bcL, bcR, bcT, bcB, nil)
		u, err := c.QD.Bulk.Solve(rhs)
		if err != nil {
			return chk.Err("cycle: steady-state guess solve failed at iter %d:\n%v", it, err)
		}
		sigmaXY, _, _ := c.QD.Bulk.Stresses(u)
		tauQS := c.QD.Bulk.ShearOnFault(sigmaXY)
		if c.QD.Symm != nil {
			c.QD.Symm.TauQS = tauQS
		}
		if c.QD.Asym != nil {
			c.QD.Asym.TauQSp = tauQS
			for i := range tauQS {
				c.QD.Asym.TauQSm[i] = -tauQS[i]
			}
		}
		st := &fault.State{Psi: c.Y["psi"], Slip: slip}
		if _, err := fault.SolveAll(c.QD.FaultParams, st, c.QD.Variant); err != nil {
			return chk.Err("cycle: steady-state guess rootfinding failed at iter %d:\n%v", it, err)
		}
	}
	return nil
}

// Checkpoint persists the current coordinator state (spec.md §6).
func (c *Coordinator) Checkpoint(prevErr, currErr float64) error {
	ck := &inp.Checkpoint{
		Number:    c.ckptNumber,
		CurrT:     c.currTime,
		StepCount: c.stepCount,
		DeltaT:    c.deltaT,
		PrevErr:   prevErr,
		CurrErr:   currErr,
	}
	vars := c.Y
	if c.inDynamic {
		vars = Vec{"psi": c.dynState.Psi, "slip": c.dynState.Slip, "u": c.dynU}
	}
	if err := inp.WriteCheckpoint(c.outputDir, ck, vars); err != nil {
		return err
	}
	c.ckptNumber++
	return nil
}

// clampMaxDt enforces spec.md §4.6's additional ceilings on the qd step
// size: 0.3*min(eta_eff/mu) (one Maxwell time, power-law only) and
// min(dy,dz)/cs.
func clampMaxDt(dt float64, q *QDIntegrand) float64 {
	if q.PowerLaw {
		maxwell := math.Inf(1)
		for i, mu := range q.Bulk.Field.Mu {
			sigma := math.Hypot(q.LastSigmaXY[i], q.LastSigmaXZ[i])
			eta := material.EffectiveViscosity(q.Bulk.Field.A[i], q.Bulk.Field.B[i], q.Bulk.Field.N[i], q.Bulk.Field.T[i], sigma, q.EtaMin)
			if mw := 0.3 * eta / mu; mw < maxwell {
				maxwell = mw
			}
		}
		if dt > maxwell {
			dt = maxwell
		}
	}
	minSpacing := math.Min(q.Kit.Dy, q.Kit.Dz)
	csLimit := math.Inf(1)
	for _, cs := range q.Bulk.Field.Cs {
		if cs <= 0 {
			continue
		}
		if lim := minSpacing / cs; lim < csLimit {
			csLimit = lim
		}
	}
	if dt > csLimit {
		dt = csLimit
	}
	return dt
}

func maxAbsVec(v []float64) float64 {
	var m float64
	for _, x := range v {
		if a := math.Abs(x); a > m {
			m = a
		}
	}
	return m
}
