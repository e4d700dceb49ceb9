// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package heat implements the transient and steady-state temperature
// solvers of spec.md §4.4: radioactive heat generation, viscous shear
// heating, and frictional shear heating (boundary flux or Gaussian
// volumetric source), sharing the bulk package's SAT-closed SBP operator.
package heat

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"

	"github.com/xinzhou1006/scycle/sbp"
)

// Kind selects the transient or steady-state variant.
type Kind int

const (
	Transient Kind = iota
	SteadyState
)

// Solver owns the heat-equation operator and source-term configuration.
type Solver struct {
	Kit    *sbp.Kit
	RhoC   []float64 // rho*c, heat capacity per unit volume
	Kind   Kind
	// LinKind is a gosl la.GetSolver registry name ("umfpack", "mumps");
	// empty defaults to umfpack.
	LinKind string
	KspTol float64

	WithViscShearHeating  bool
	WithFrictionalHeating bool
	WithRadioHeatGen      bool

	A0   []float64 // radioactive heat generation prefactor, depth profile
	Lrad float64   // radioactive decay length scale

	ShearZoneWidth []float64 // w(z); nil/zero means boundary-flux deposition

	A       *la.Triplet
	linsol  la.LinSol
	factored bool
	dt      float64 // dt baked into A for the transient operator; 0 forces rebuild
}

// NewSolver builds a heat solver sharing the grid's SBP kit. The kit's BC
// configuration must already encode Dirichlet top/bottom/right, Neumann
// left, per spec.md §4.4.
func NewSolver(kit *sbp.Kit, rhoC []float64, kind Kind) *Solver {
	return &Solver{Kit: kit, RhoC: rhoC, Kind: kind}
}

// Qrad computes the radioactive heat generation source A0*exp(-z/Lrad).
func (s *Solver) Qrad() []float64 {
	n := s.Kit.Ny * s.Kit.Nz
	out := make([]float64, n)
	if !s.WithRadioHeatGen || s.Lrad <= 0 {
		return out
	}
	for iy := 0; iy < s.Kit.Ny; iy++ {
		for iz := 0; iz < s.Kit.Nz; iz++ {
			idx := s.Kit.Index(iy, iz)
			z := float64(iz) * s.Kit.Dz
			out[idx] = s.A0[idx] * math.Exp(-z/s.Lrad)
		}
	}
	return out
}

// ViscousShearHeating computes sigmaDev * sqrt(dgxy^2 + dgxz^2), the
// power-law viscous dissipation rate, given the viscous-strain rates.
func (s *Solver) ViscousShearHeating(sigmaDev, dgxy, dgxz []float64) []float64 {
	n := len(sigmaDev)
	out := make([]float64, n)
	if !s.WithViscShearHeating {
		return out
	}
	for i := 0; i < n; i++ {
		out[i] = sigmaDev[i] * math.Sqrt(dgxy[i]*dgxy[i]+dgxz[i]*dgxz[i])
	}
	return out
}

// gaussianWidth returns exp(-y^2/(2w^2)) / (sqrt(2*pi)*w).
func gaussianWidth(y, w float64) float64 {
	if w <= 0 {
		return 0
	}
	return math.Exp(-y*y/(2*w*w)) / (math.Sqrt(2*math.Pi) * w)
}

// FrictionalHeating deposits tau*V as a volumetric source when a finite
// shear-zone width is configured, or returns an all-zero volumetric source (the
// boundary-flux variant is instead folded into the left SAT term by the
// caller via BoundaryFlux).
func (s *Solver) FrictionalHeating(tau, V []float64) []float64 {
	n := s.Kit.Ny * s.Kit.Nz
	out := make([]float64, n)
	if !s.WithFrictionalHeating || s.ShearZoneWidth == nil {
		return out
	}
	for iz := 0; iz < s.Kit.Nz; iz++ {
		w := s.ShearZoneWidth[iz]
		if w <= 0 {
			continue
		}
		q := tau[iz] * V[iz]
		for iy := 0; iy < s.Kit.Ny; iy++ {
			y := float64(iy) * s.Kit.Dy
			out[s.Kit.Index(iy, iz)] = q * gaussianWidth(y, w)
		}
	}
	return out
}

// BoundaryFlux returns the left-edge Neumann flux bcL (length Nz) for the
// zero-shear-zone-width frictional heating deposition, active only when
// WithFrictionalHeating is set and no ShearZoneWidth profile is configured.
func (s *Solver) BoundaryFlux(tau, V []float64) []float64 {
	bcL := make([]float64, s.Kit.Nz)
	if !s.WithFrictionalHeating || s.ShearZoneWidth != nil {
		return bcL
	}
	for iz := 0; iz < s.Kit.Nz; iz++ {
		bcL[iz] = tau[iz] * V[iz]
	}
	return bcL
}

// StepTransient advances T by one backward-Euler step:
//
//	(I - dt*(rhoC)^-1*(D2 - SAT))*T_{n+1} = T_n + dt*(rhoC)^-1*(Q + SAT(bc))
//
// The implicit operator is rebuilt (and refactored) whenever dt changes.
func (s *Solver) StepTransient(Tn []float64, dt float64, Q []float64, bcL, bcR, bcT, bcB []float64) (Tn1 []float64, err error) {
	n := len(Tn)
	if s.A == nil || dt != s.dt {
		s.buildTransientA(dt)
		s.dt = dt
		s.factored = false
	}
	rhs := s.Kit.BuildRHS(bcL, bcR, bcT, bcB)
	for i := 0; i < n; i++ {
		rhs[i] = Tn[i] + dt*(Q[i]+rhs[i])/s.RhoC[i]
	}
	return s.solve(rhs)
}

// buildTransientA assembles I + dt*(rhoC)^-1*A_diffusion (A_diffusion being
// the SAT-closed -D2 operator of sbp.Kit.BuildA) via the shared
// sbp.Kit.BuildImplicit helper (unit thermal diffusivity; rhoC supplies the
// per-node heat-capacity scaling).
func (s *Solver) buildTransientA(dt float64) {
	n := s.Kit.Ny * s.Kit.Nz
	invCap := make([]float64, n)
	for i := range invCap {
		invCap[i] = 1.0 / s.RhoC[i]
	}
	s.A = s.Kit.BuildImplicit(ones(n), invCap, dt)
}

// ExplicitRate computes dT/dt = (D2*T + Q)/rhoC using the same unit-
// diffusivity operator as the implicit path, for the coordinator's
// forward-Euler heat update under the plain (non-"_WBE") RK tableaux
// (spec.md §4.6). bcL/bcR/bcT/bcB supply the same boundary data StepTransient
// would use; their SAT contribution is added before scaling by rhoC.
func (s *Solver) ExplicitRate(T, Q, bcL, bcR, bcT, bcB []float64) []float64 {
	n := len(T)
	lap := s.Kit.ApplyLaplacian(ones(n), T)
	sat := s.Kit.BuildRHS(bcL, bcR, bcT, bcB)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = (lap[i] + sat[i] + Q[i]) / s.RhoC[i]
	}
	return out
}

// StepSteady solves -D2*T = Q + SAT(bc) once.
func (s *Solver) StepSteady(Q []float64, bcL, bcR, bcT, bcB []float64) (T []float64, err error) {
	n := len(Q)
	if s.A == nil {
		s.A = s.Kit.BuildA(ones(n))
		s.factored = false
	}
	rhs := s.Kit.BuildRHS(bcL, bcR, bcT, bcB)
	for i := range rhs {
		rhs[i] += Q[i]
	}
	return s.solve(rhs)
}

func (s *Solver) solve(rhs []float64) (T []float64, err error) {
	if !s.factored {
		name := s.LinKind
		if name == "" {
			name = "umfpack"
		}
		s.linsol = la.GetSolver(name)
		if err = s.linsol.InitR(s.A, false, false, false); err != nil {
			s.linsol = la.GetSolver("umfpack")
			if err = s.linsol.InitR(s.A, false, false, false); err != nil {
				return nil, chk.Err("heat: cannot initialize linear solver:\n%v", err)
			}
		}
		if err = s.linsol.Fact(); err != nil {
			return nil, chk.Err("heat: factorization failed:\n%v", err)
		}
		s.factored = true
	}
	T = make([]float64, len(rhs))
	if err = s.linsol.SolveR(T, rhs, false); err != nil {
		return nil, chk.Err("heat: solve failed (numerical divergence):\n%v", err)
	}
	return T, nil
}

func ones(n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = 1
	}
	return v
}
