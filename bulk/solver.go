// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package bulk assembles and solves the SBP-SAT momentum-balance operator
// over the 2-D grid: construction of A, the boundary-conditioned linear
// solve, stress extraction, and fault-traction read-back (spec.md §4.2).
// The solve itself is grounded on fem/s_linimp.go's InitR/Fact/SolveR
// factorization-reuse discipline.
package bulk

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"

	"github.com/xinzhou1006/scycle/material"
	"github.com/xinzhou1006/scycle/sbp"
)

// LinSolverKind selects the linear-solver backend, per spec.md §4.2.
type LinSolverKind int

const (
	AlgebraicMultigrid LinSolverKind = iota
	ConjugateGradient
	DirectLU
	DirectCholesky
)

// ParseLinSolverKind maps an input-file string to a LinSolverKind.
func ParseLinSolverKind(s string) (LinSolverKind, error) {
	switch s {
	case "algebraic-multigrid", "":
		return AlgebraicMultigrid, nil
	case "conjugate-gradient":
		return ConjugateGradient, nil
	case "direct-LU":
		return DirectLU, nil
	case "direct-Cholesky":
		return DirectCholesky, nil
	}
	return AlgebraicMultigrid, chk.Err("bulk: unrecognized linSolver kind %q", s)
}

// SolverName maps a LinSolverKind onto the la.GetSolver registry name: the
// two direct kinds map to "umfpack" and the two iterative kinds to "mumps"
// (a direct, parallel backend); no iterative Krylov solver is selected.
func (k LinSolverKind) SolverName() string {
	switch k {
	case DirectLU, DirectCholesky:
		return "umfpack"
	default:
		return "mumps"
	}
}

// Solver owns the SBP-SAT momentum-balance operator, its factorization, and
// the material/viscous-strain fields it reads stress from.
type Solver struct {
	Kit   *sbp.Kit
	Field *material.Field
	Visc  *material.ViscousStrain
	Kind  LinSolverKind
	KspTol float64

	A       *la.Triplet
	linsol  la.LinSol
	factored bool
}

// NewSolver builds the system matrix A for the current material field and
// boundary configuration; the factorization itself is deferred to the first
// Solve call (reuse discipline of spec.md §4.2).
func NewSolver(kit *sbp.Kit, fld *material.Field, visc *material.ViscousStrain, kind LinSolverKind, kspTol float64) *Solver {
	s := &Solver{Kit: kit, Field: fld, Visc: visc, Kind: kind, KspTol: kspTol}
	s.A = kit.BuildA(fld.Mu)
	s.linsol = la.GetSolver(kind.SolverName())
	return s
}

// MarkDirty forces the next Solve to refactorize A, e.g. after a viscosity
// update (steady-state heat feedback) or a BC-configuration rebuild.
func (s *Solver) MarkDirty() {
	s.factored = false
	s.A = s.Kit.BuildA(s.Field.Mu)
}

// SetRhs composes the SAT boundary contributions into a right-hand-side
// vector, optionally adding a body-force source (e.g. viscous-strain
// back-reaction div(µ*gxy, µ*gxz)); src may be nil.
func (s *Solver) SetRhs(bcL, bcR, bcT, bcB, src []float64) []float64 {
	rhs := s.Kit.BuildRHS(bcL, bcR, bcT, bcB)
	if src != nil {
		for i := range rhs {
			rhs[i] += src[i]
		}
	}
	return rhs
}

// ViscousBodyForce computes the right-hand-side contribution of the
// viscous-strain back-reaction, div(µ*gxy, µ*gxz) = ∂y(µ*gxy) + ∂z(µ*gxz),
// present only for the power-law bulk variant.
func (s *Solver) ViscousBodyForce() []float64 {
	n := s.Kit.Ny * s.Kit.Nz
	out := make([]float64, n)
	if !s.Field.PowerLaw || s.Visc == nil {
		return out
	}
	mgxy := make([]float64, n)
	mgxz := make([]float64, n)
	for i := 0; i < n; i++ {
		mgxy[i] = s.Field.Mu[i] * s.Visc.Gxy[i]
		mgxz[i] = s.Field.Mu[i] * s.Visc.Gxz[i]
	}
	dy := s.Kit.ApplyD1y(mgxy)
	dz := s.Kit.ApplyD1z(mgxz)
	for i := 0; i < n; i++ {
		out[i] = dy[i] + dz[i]
	}
	return out
}

// Solve solves A*u = rhs, reusing the factorization across calls until
// MarkDirty is called (spec.md §4.2 reuse discipline).
func (s *Solver) Solve(rhs []float64) (u []float64, err error) {
	n := len(rhs)
	if !s.factored {
		if err = s.linsol.InitR(s.A, false, false, false); err != nil {
			return nil, chk.Err("bulk: cannot initialize linear solver:\n%v", err)
		}
		if err = s.linsol.Fact(); err != nil {
			return nil, chk.Err("bulk: factorization failed:\n%v", err)
		}
		s.factored = true
	}
	u = make([]float64, n)
	if err = s.linsol.SolveR(u, rhs, false); err != nil {
		return nil, chk.Err("bulk: solve failed (numerical divergence):\n%v", err)
	}
	for i, v := range u {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			chk.Panic("bulk: non-finite displacement at node %d", i)
		}
	}
	return u, nil
}

// Stresses computes σxy = µ*D1y*u - µ*gxy, σxz = µ*D1z*u - µ*gxz, and the
// deviatoric magnitude σdev = sqrt(σxy^2 + σxz^2).
func (s *Solver) Stresses(u []float64) (sigmaXY, sigmaXZ, sigmaDev []float64) {
	n := len(u)
	duy := s.Kit.ApplyD1y(u)
	duz := s.Kit.ApplyD1z(u)
	sigmaXY = make([]float64, n)
	sigmaXZ = make([]float64, n)
	sigmaDev = make([]float64, n)
	for i := 0; i < n; i++ {
		sigmaXY[i] = s.Field.Mu[i] * duy[i]
		sigmaXZ[i] = s.Field.Mu[i] * duz[i]
		if s.Field.PowerLaw && s.Visc != nil {
			sigmaXY[i] -= s.Field.Mu[i] * s.Visc.Gxy[i]
			sigmaXZ[i] -= s.Field.Mu[i] * s.Visc.Gxz[i]
		}
		sigmaDev[i] = math.Sqrt(sigmaXY[i]*sigmaXY[i] + sigmaXZ[i]*sigmaXZ[i])
	}
	return
}

// ShearOnFault extracts the first Nz entries of sigmaXY, the fault-line
// quasi-static shear traction (spec.md §4.2).
func (s *Solver) ShearOnFault(sigmaXY []float64) []float64 {
	tau := make([]float64, s.Kit.Nz)
	copy(tau, sigmaXY[:s.Kit.Nz])
	return tau
}
