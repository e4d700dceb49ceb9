// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package pressure implements the optional pore-pressure diffusion
// equation along the fault line (spec.md §4.5): implicit backward-Euler on
// a 1-D SBP operator with Dirichlet end rows, sharing the bulk/heat
// solve-and-reuse discipline.
package pressure

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"

	"github.com/xinzhou1006/scycle/sbp"
)

// Solver owns the 1-D pore-pressure diffusion operator along the fault
// (z-axis only, Nz nodes).
type Solver struct {
	Oz *sbp.Ops1D

	NP, BetaP []float64 // porosity, compressibility
	KP, EtaP  []float64 // permeability, fluid viscosity
	RhoF      float64
	G         float64 // gravitational acceleration

	A        *la.Triplet
	linsol   la.LinSol
	factored bool
	dt       float64
}

// NewSolver builds a pressure solver over Nz fault nodes.
func NewSolver(oz *sbp.Ops1D, nP, betaP, kP, etaP []float64, rhoF, g float64) *Solver {
	return &Solver{Oz: oz, NP: nP, BetaP: betaP, KP: kP, EtaP: etaP, RhoF: rhoF, G: g}
}

// diffusivity returns k_p/eta_p, the node-wise coefficient entering the 1-D
// diffusion operator; the capacity n_p*beta_p is applied separately.
func (s *Solver) diffusivity() []float64 {
	n := len(s.NP)
	d := make([]float64, n)
	for i := 0; i < n; i++ {
		d[i] = s.KP[i] / s.EtaP[i]
	}
	return d
}

func (s *Solver) capacity() []float64 {
	n := len(s.NP)
	c := make([]float64, n)
	for i := 0; i < n; i++ {
		c[i] = s.NP[i] * s.BetaP[i]
	}
	return c
}

// Step advances pressure by one backward-Euler step:
//
//	n_p*beta_p*(p_{n+1}-p_n)/dt = d_z(k_p/eta_p*(d_z p_{n+1} - rho_f*g)) + source
func (s *Solver) Step(pn []float64, dt float64, source, bcTop, bcBottom []float64) (pn1 []float64, err error) {
	n := len(pn)
	if s.A == nil || dt != s.dt {
		invCap := make([]float64, n)
		cap := s.capacity()
		for i := range invCap {
			invCap[i] = 1.0 / cap[i]
		}
		s.A = s.build1DImplicit(s.diffusivity(), invCap, dt)
		s.dt = dt
		s.factored = false
	}
	diff := s.diffusivity()
	dDiff := applyD1(s.Oz, diff)
	rhs := make([]float64, n)
	cap := s.capacity()
	for i := 0; i < n; i++ {
		rhs[i] = pn[i] + dt/cap[i]*(source[i]-s.RhoF*s.G*dDiff[i])
	}
	rhs[0] = bcTop[0]
	rhs[n-1] = bcBottom[0]
	return s.solve(rhs)
}

func applyD1(o *sbp.Ops1D, v []float64) []float64 {
	n := len(v)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var s float64
		for j := 0; j < n; j++ {
			if o.D1[i][j] != 0 {
				s += o.D1[i][j] * v[j]
			}
		}
		out[i] = s
	}
	return out
}

// build1DImplicit assembles I - dt*diag(invCap)*D2(diffusivity) as a dense
// 1-D system, wrapped as a Triplet for la.LinSol. The first and last rows
// are identity rows, so the values Step writes into rhs[0] and rhs[n-1] are
// imposed as Dirichlet data.
func (s *Solver) build1DImplicit(diffusivity, invCap []float64, dt float64) *la.Triplet {
	n := len(diffusivity)
	D2 := s.Oz.D2(diffusivity)
	A := new(la.Triplet)
	A.Init(n, n, n*n)
	for i := 0; i < n; i++ {
		if i == 0 || i == n-1 {
			A.Put(i, i, 1)
			continue
		}
		for j := 0; j < n; j++ {
			v := -dt * invCap[i] * D2[i][j]
			if i == j {
				v += 1
			}
			if v != 0 {
				A.Put(i, j, v)
			}
		}
	}
	return A
}

func (s *Solver) solve(rhs []float64) (p []float64, err error) {
	if !s.factored {
		if s.linsol == nil {
			s.linsol = la.GetSolver("umfpack")
		}
		if err = s.linsol.InitR(s.A, false, false, false); err != nil {
			return nil, chk.Err("pressure: cannot initialize linear solver:\n%v", err)
		}
		if err = s.linsol.Fact(); err != nil {
			return nil, chk.Err("pressure: factorization failed:\n%v", err)
		}
		s.factored = true
	}
	p = make([]float64, len(rhs))
	if err = s.linsol.SolveR(p, rhs, false); err != nil {
		return nil, chk.Err("pressure: solve failed (numerical divergence):\n%v", err)
	}
	return p, nil
}

// EffectiveNormalStress computes sigma_n_eff = sigma_n - p, the coupling
// into the fault closure (spec.md §4.5).
func EffectiveNormalStress(sigmaN, p []float64) []float64 {
	out := make([]float64, len(sigmaN))
	for i := range out {
		out[i] = sigmaN[i] - p[i]
	}
	return out
}
