// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package material holds the persistent, grid-sized physical fields of the
// bulk (shear modulus, density, shear-wave speed, power-law rheology
// parameters) and the viscous-strain tensor used by the power-law
// constitutive law.
package material

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// Grid describes the rectangular (y,z) domain and its node ordering.
// Ordering is column-major in z within each y-column, so fault nodes
// (y=0) are the first Nz entries of any grid-sized vector.
type Grid struct {
	Ny, Nz int     // number of nodes in y and z
	Ly, Lz float64 // domain size
	Dy, Dz float64 // uniform grid spacing
}

// NewGrid builds a uniformly spaced grid
func NewGrid(ny, nz int, ly, lz float64) (o *Grid) {
	if ny < 2 || nz < 2 {
		chk.Panic("grid requires Ny,Nz >= 2; got Ny=%d Nz=%d", ny, nz)
	}
	o = &Grid{Ny: ny, Nz: nz, Ly: ly, Lz: lz}
	o.Dy = ly / float64(ny-1)
	o.Dz = lz / float64(nz-1)
	return
}

// N returns the total number of grid nodes
func (o *Grid) N() int { return o.Ny * o.Nz }

// Index returns the column-major index of node (iy,iz)
func (o *Grid) Index(iy, iz int) int { return iy*o.Nz + iz }

// Y returns the y-coordinate of column iy
func (o *Grid) Y(iy int) float64 { return float64(iy) * o.Dy }

// Z returns the z-coordinate of row iz
func (o *Grid) Z(iz int) float64 { return float64(iz) * o.Dz }

// Field holds the cell-centered bulk material data, persistent for the run.
type Field struct {
	G      *Grid
	Mu     []float64 // shear modulus µ(y,z)
	Rho    []float64 // density ρ(y,z)
	Cs     []float64 // shear-wave speed cs = sqrt(µ/ρ)
	PowerLaw bool
	A, B, N  []float64 // Arrhenius pre-factor, activation, stress exponent
	T        []float64 // temperature (aliased to heat.Solver's T once thermal coupling is on)
}

// NewField allocates a material field over the grid; Mu and Rho must be
// filled in by the caller (from a DepthProfile or a loaded vector) before
// DeriveCs is called.
func NewField(g *Grid) *Field {
	n := g.N()
	return &Field{
		G:   g,
		Mu:  make([]float64, n),
		Rho: make([]float64, n),
		Cs:  make([]float64, n),
	}
}

// DeriveCs computes cs = sqrt(µ/ρ) at every node; panics (invariant
// violation) if µ or ρ are non-positive anywhere.
func (o *Field) DeriveCs() {
	for i := range o.Cs {
		if o.Mu[i] <= 0 || o.Rho[i] <= 0 {
			chk.Panic("material invariant violated: mu=%g rho=%g must be > 0 at node %d", o.Mu[i], o.Rho[i], i)
		}
		o.Cs[i] = math.Sqrt(o.Mu[i] / o.Rho[i])
	}
}

// EnablePowerLaw allocates the Arrhenius/stress-exponent/temperature fields
func (o *Field) EnablePowerLaw() {
	n := o.G.N()
	o.PowerLaw = true
	o.A = make([]float64, n)
	o.B = make([]float64, n)
	o.N = make([]float64, n)
	o.T = make([]float64, n)
}

// ViscousStrain holds the power-law integrated scalar viscous strain
// components that enter the momentum balance as a body force.
type ViscousStrain struct {
	Gxy, Gxz []float64
}

// NewViscousStrain allocates zeroed viscous-strain fields
func NewViscousStrain(g *Grid) *ViscousStrain {
	n := g.N()
	return &ViscousStrain{Gxy: make([]float64, n), Gxz: make([]float64, n)}
}

// EffectiveViscosity computes the power-law effective viscosity
// eta_eff = (1/A) * exp(B/T) * sigma^(1-n), floored at etaMin so it is
// never returned as +Inf when n>1 and stress is zero.
func EffectiveViscosity(A, B, n, T, sigma, etaMin float64) float64 {
	if sigma == 0 {
		return etaMin
	}
	eta := (1.0 / A) * math.Exp(B/T) * math.Pow(sigma, 1.0-n)
	if eta < etaMin || math.IsInf(eta, 0) || math.IsNaN(eta) {
		return etaMin
	}
	return eta
}
