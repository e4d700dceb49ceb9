// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cycle

import (
	"math"

	"github.com/cpmech/gosl/chk"

	"github.com/xinzhou1006/scycle/bulk"
	"github.com/xinzhou1006/scycle/fault"
	"github.com/xinzhou1006/scycle/heat"
	"github.com/xinzhou1006/scycle/material"
	"github.com/xinzhou1006/scycle/pressure"
	"github.com/xinzhou1006/scycle/sbp"
)

// BCKind mirrors the per-side momBal_bc*_qd enum of spec.md §6.
type BCKind string

const (
	SymmFault              BCKind = "symmFault"
	RigidFault             BCKind = "rigidFault"
	RemoteLoading          BCKind = "remoteLoading"
	FreeSurface            BCKind = "freeSurface"
	OutGoingCharacteristics BCKind = "outGoingCharacteristics"
)

// QDIntegrand is the quasi-dynamic d_dt contract of spec.md §9: a common
// integrand interface shared (with differing bodies) by the LinearElastic
// and PowerLaw bulk variants.
type QDIntegrand struct {
	G    *material.Grid
	Kit  *sbp.Kit
	Bulk *bulk.Solver

	FaultParams *fault.Params
	Variant     fault.Variant
	Symm        *fault.Symmetric  // non-nil in the symmetric case; Variant aliases it
	Asym        *fault.Asymmetric // non-nil in the asymmetric case; Variant aliases it

	Heat     *heat.Solver     // nil when the heat equation is disabled
	Pressure *pressure.Solver // nil when pore-pressure diffusion is disabled

	VL                 float64
	BcL, BcR, BcT, BcB BCKind
	PowerLaw           bool
	EtaMin             float64

	StateLaw fault.StateLaw // AgingLaw (default) or FlashHeatingLaw
	VwFlash, FwFlash []float64 // per-node flash-heating parameters, used only under FlashHeatingLaw

	// Temperature is the coordinator-advanced thermal state (grid-sized),
	// copied into Bulk.Field.T for the power-law EffectiveViscosity read.
	Temperature []float64

	// SigmaNBase is the reference (pressure-independent) fault-normal
	// stress; FaultParams.Sigma0 is overwritten with the pressure-coupled
	// effective value each time the coordinator advances PressureState.
	SigmaNBase   []float64
	PressureState []float64

	// last-step outputs, exposed for the coordinator's switch predicate and
	// heat/pressure coupling
	LastU, LastSigmaXY, LastSigmaXZ, LastSigmaDev, LastTauQS []float64
	LastDGxy, LastDGxz                                       []float64 // viscous-strain rates, power-law only
}

// boundaryVectors builds bcL, bcR (length Nz) and bcT, bcB (length Ny) from
// the current slip state and plate loading rate, per the BC-kind enum.
func (q *QDIntegrand) boundaryVectors(t float64, slip []float64) (bcL, bcR, bcT, bcB []float64) {
	nz, ny := q.Kit.Nz, q.Kit.Ny
	bcL = make([]float64, nz)
	bcR = make([]float64, nz)
	bcT = make([]float64, ny)
	bcB = make([]float64, ny)

	switch q.BcL {
	case SymmFault:
		for i := range bcL {
			bcL[i] = slip[i] / 2
		}
	case RigidFault:
		copy(bcL, slip)
	}
	switch q.BcR {
	case RemoteLoading:
		for i := range bcR {
			bcR[i] = q.VL * t
		}
	}
	// top/bottom default to freeSurface -> Neumann zero flux; bcT/bcB stay zero
	return
}

// DDt implements the explicit quasi-dynamic rate function of spec.md §4.6's
// ordering guarantee: (1) BCs from stage state, (2) bulk solve, (3) stress
// extraction, (4) fault rootfinding, (5) state-variable rate.
func (q *QDIntegrand) DDt(t float64, y Vec) (dy Vec, err error) {
	slip := y["slip"]
	bcL, bcR, bcT, bcB := q.boundaryVectors(t, slip)

	var src []float64
	if q.PowerLaw {
		src = q.Bulk.ViscousBodyForce()
	}
	rhs := q.Bulk.SetRhs(bcL, bcR, bcT, bcB, src)
	u, err := q.Bulk.Solve(rhs)
	if err != nil {
		return nil, err
	}
	sigmaXY, sigmaXZ, sigmaDev := q.Bulk.Stresses(u)
	tauQS := q.Bulk.ShearOnFault(sigmaXY)
	q.LastU, q.LastSigmaXY, q.LastSigmaXZ, q.LastSigmaDev, q.LastTauQS = u, sigmaXY, sigmaXZ, sigmaDev, tauQS

	if q.Symm != nil {
		q.Symm.TauQS = tauQS
	}
	if q.Asym != nil {
		q.Asym.TauQSp = tauQS
		for i := range tauQS {
			q.Asym.TauQSm[i] = -tauQS[i]
		}
	}

	st := &fault.State{Psi: y["psi"], Slip: slip}
	V, err := fault.SolveAll(q.FaultParams, st, q.Variant)
	if err != nil {
		return nil, err
	}
	dpsi, err := fault.EvolveState(q.StateLaw, q.FaultParams, st, V, q.VwFlash, q.FwFlash)
	if err != nil {
		return nil, err
	}

	dy = Vec{"psi": dpsi, "slip": V}

	if q.PowerLaw {
		n := q.G.N()
		dgxy := make([]float64, n)
		dgxz := make([]float64, n)
		for i := 0; i < n; i++ {
			sigma := math.Hypot(sigmaXY[i], sigmaXZ[i])
			eta := material.EffectiveViscosity(fieldAt(q, "A", i), fieldAt(q, "B", i), fieldAt(q, "N", i), fieldAt(q, "T", i), sigma, q.EtaMin)
			dgxy[i] = sigmaXY[i] / (2 * eta)
			dgxz[i] = sigmaXZ[i] / (2 * eta)
		}
		dy["gxy"] = dgxy
		dy["gxz"] = dgxz
		q.LastDGxy, q.LastDGxz = dgxy, dgxz
	}
	return dy, nil
}

func fieldAt(q *QDIntegrand, which string, i int) float64 {
	switch which {
	case "A":
		return q.Bulk.Field.A[i]
	case "B":
		return q.Bulk.Field.B[i]
	case "N":
		return q.Bulk.Field.N[i]
	case "T":
		return q.Bulk.Field.T[i]
	}
	chk.Panic("cycle: unknown field %q", which)
	return 0
}
