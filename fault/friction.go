// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package fault implements the rate-and-state friction closure along the
// fault line: the bisection rootfinder for slip velocity, the aging-law
// state evolution, and the symmetric/asymmetric impedance variants
// (spec.md §4.3).
package fault

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

const (
	rootTol    = 1e-9
	maxRootIts = 100
	minBracket = 1e-14
)

// Params holds the per-node, depth-dependent rate-and-state parameters.
type Params struct {
	A, B, Dc, Sigma0 []float64 // a, b, Dc, sigma_n (reference, before pressure coupling)
	F0, V0           float64
}

// Variant is the capability set shared by the symmetric and asymmetric
// fault closures (spec.md §4.3 / §10 redesign note): residual evaluation,
// impedance, and stress extraction differ only in how the +/- sides combine.
type Variant interface {
	// Impedance returns eta_i, the effective radiation-damping impedance.
	Impedance(i int) float64
	// EffectiveShear returns the combined quasi-static shear traction at node i.
	EffectiveShear(i int) float64
}

// Symmetric models a fault with only the y>=0 half-space resolved; the
// y<0 side is the mirror image, so slip = 2*bcL and eta = Z/2.
type Symmetric struct {
	Z       []float64 // shear impedance mu/cs on the + side
	TauQS   []float64 // shear traction extracted from the + side bulk solve
}

func (s *Symmetric) Impedance(i int) float64      { return s.Z[i] / 2 }
func (s *Symmetric) EffectiveShear(i int) float64 { return s.TauQS[i] }

// Asymmetric models a fault with both sides resolved independently.
type Asymmetric struct {
	Zp, Zm       []float64 // shear impedance on the + and - sides
	TauQSp, TauQSm []float64
}

func (s *Asymmetric) Impedance(i int) float64 {
	zp, zm := s.Zp[i], s.Zm[i]
	return zp * zm / (zp + zm)
}

func (s *Asymmetric) EffectiveShear(i int) float64 {
	zp, zm := s.Zp[i], s.Zm[i]
	return (zm*s.TauQSp[i] + zp*s.TauQSm[i]) / (zp + zm)
}

// State holds the per-node rate-and-state variables integrated by the
// coordinator.
type State struct {
	Psi     []float64 // state variable psi (theta encoded in log form, f0-referenced)
	Slip    []float64
	SlipVel []float64
}

// NewState allocates a zeroed state of length n.
func NewState(n int) *State {
	return &State{Psi: make([]float64, n), Slip: make([]float64, n), SlipVel: make([]float64, n)}
}

// InitSteady fills Psi with f0 and returns the remote-loading steady-state
// shear traction estimate tau_qs_0 = sigma_n*a*asinh(vL/(2*v0)*exp(f0/a)),
// per spec.md §4.3 "Initial state".
func InitSteady(p *Params, vL float64) (psi0 []float64, tauQS0 []float64) {
	n := len(p.A)
	psi0 = make([]float64, n)
	tauQS0 = make([]float64, n)
	for i := 0; i < n; i++ {
		psi0[i] = p.F0
		tauQS0[i] = p.Sigma0[i] * p.A[i] * math.Asinh(0.5*vL/p.V0*math.Exp(p.F0/p.A[i]))
	}
	return
}

// strength is the rate-and-state frictional strength at slip velocity V.
func strength(a, sigman, psi, v0, V float64) float64 {
	return a * sigman * math.Asinh(V/(2*v0)*math.Exp(psi/a))
}

// Residual evaluates strength(V) - stress(V) at node i, where
// stress(V) = tauQSeff - eta*V.
func Residual(a, sigman, psi, v0, tauQSeff, eta, V float64) float64 {
	return strength(a, sigman, psi, v0, V) - (tauQSeff - eta*V)
}

// SolveNode bisects for the slip velocity at a single fault node, strictly
// bisection (no Newton) because strength(V) is monotone increasing in V and
// stress(V) is monotone decreasing, guaranteeing a sign change across the
// bracket [0, tauQSeff/eta] (reversed if tauQSeff < 0).
func SolveNode(a, b, sigman, psi, v0, tauQSeff, eta float64) (V float64, err error) {
	if eta <= 0 {
		return 0, chk.Err("fault: non-positive impedance eta=%g", eta)
	}
	lo, hi := 0.0, tauQSeff/eta
	if hi < lo {
		lo, hi = hi, lo
	}
	fLo := Residual(a, sigman, psi, v0, tauQSeff, eta, lo)
	fHi := Residual(a, sigman, psi, v0, tauQSeff, eta, hi)
	if fLo == 0 {
		return lo, nil
	}
	if fHi == 0 {
		return hi, nil
	}
	if sameSign(fLo, fHi) {
		return 0, chk.Err("fault: rootfinding bracket does not change sign: f(lo)=%g f(hi)=%g", fLo, fHi)
	}
	for it := 0; it < maxRootIts; it++ {
		if hi-lo < minBracket {
			return lo, nil
		}
		mid := 0.5 * (lo + hi)
		fMid := Residual(a, sigman, psi, v0, tauQSeff, eta, mid)
		if math.IsNaN(fMid) || math.IsInf(fMid, 0) {
			return 0, chk.Err("fault: non-finite residual during rootfinding at V=%g", mid)
		}
		if math.Abs(fMid) < rootTol {
			return mid, nil
		}
		if sameSign(fMid, fLo) {
			lo, fLo = mid, fMid
		} else {
			hi, fHi = mid, fMid
		}
	}
	return 0.5 * (lo + hi), nil
}

func sameSign(a, b float64) bool { return (a >= 0) == (b >= 0) }

// SolveAll solves the rootfinding problem at every node, given the current
// state and the variant's impedance/effective-shear composition.
func SolveAll(p *Params, st *State, variant Variant) (V []float64, err error) {
	n := len(p.A)
	V = make([]float64, n)
	for i := 0; i < n; i++ {
		eta := variant.Impedance(i)
		tauQSeff := variant.EffectiveShear(i)
		V[i], err = SolveNode(p.A[i], p.B[i], p.Sigma0[i], st.Psi[i], p.V0, tauQSeff, eta)
		if err != nil {
			return nil, chk.Err("fault: node %d: psi=%g a=%g sigman=%g tauQS=%g eta=%g:\n%v",
				i, st.Psi[i], p.A[i], p.Sigma0[i], tauQSeff, eta, err)
		}
	}
	return V, nil
}

// DPsiDt computes the aging-law state-variable rate:
//
//	dpsi/dt = (b*v0/Dc) * ( exp((f0-psi)/b) - |V|/v0 )
//
// with the regularization that b<=1e-3 or an overflowing exp term forces
// dpsi/dt = 0 (spec.md §4.3).
func DPsiDt(p *Params, st *State, V []float64) (dpsi []float64, err error) {
	n := len(p.A)
	dpsi = make([]float64, n)
	for i := 0; i < n; i++ {
		b := p.B[i]
		if b <= 1e-3 {
			continue
		}
		e := math.Exp((p.F0 - st.Psi[i]) / b)
		if math.IsInf(e, 0) {
			continue
		}
		dpsi[i] = (b * p.V0 / p.Dc[i]) * (e - math.Abs(V[i])/p.V0)
		if math.IsNaN(dpsi[i]) || math.IsInf(dpsi[i], 0) {
			return nil, chk.Err("fault: non-finite dpsi/dt at node %d: psi=%g a=%g b=%g V=%g", i, st.Psi[i], p.A[i], b, V[i])
		}
	}
	return dpsi, nil
}

// StateLaw selects the per-node state-variable evolution law (spec.md §4.3,
// expanded by SPEC_FULL.md §4.3 to add flash heating as a second
// implementation of the same dpsi/dt contract, gated by the run's
// thermalCoupling setting).
type StateLaw int

const (
	AgingLaw StateLaw = iota
	FlashHeatingLaw
)

// EvolveState dispatches to the configured state law; Vw/Fw are ignored
// under AgingLaw.
func EvolveState(law StateLaw, p *Params, st *State, V, Vw, Fw []float64) (dpsi []float64, err error) {
	if law == FlashHeatingLaw {
		return FlashHeatingPsi(p, Vw, Fw, st, V)
	}
	return DPsiDt(p, st, V)
}

// FlashHeatingPsi is the supplemented flash-heating state-evolution
// variant (SPEC_FULL.md supplement from original_source/): the steady-state
// strength is weakened once slip velocity exceeds a weakening velocity Vw,
//
//	f_ss(V) = fw + (f0 - fw) * Vw / (Vw + |V|)
//	dpsi/dt = (|V|/Dc) * (f_ss(V) - psi)
//
// selected as an alternative to the aging law when a node's flash-heating
// parameters (Vw, fw) are configured.
func FlashHeatingPsi(p *Params, Vw, fw []float64, st *State, V []float64) (dpsi []float64, err error) {
	n := len(p.A)
	dpsi = make([]float64, n)
	for i := 0; i < n; i++ {
		if Vw[i] <= 0 {
			continue
		}
		absV := math.Abs(V[i])
		fss := fw[i] + (p.F0-fw[i])*Vw[i]/(Vw[i]+absV)
		dpsi[i] = (absV / p.Dc[i]) * (fss - st.Psi[i])
		if math.IsNaN(dpsi[i]) || math.IsInf(dpsi[i], 0) {
			return nil, chk.Err("fault: non-finite flash-heating dpsi/dt at node %d", i)
		}
	}
	return dpsi, nil
}
