// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sbp

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// Side identifies one of the four domain edges.
type Side int

const (
	Left Side = iota
	Right
	Top
	Bottom
)

// BcKind is the per-side boundary condition kind the SAT term imposes.
type BcKind int

const (
	Dirichlet BcKind = iota
	Neumann
)

// Axes selects which axes participate in the operator (spec.md §4.1).
type Axes int

const (
	AxisY Axes = iota
	AxisZ
	AxisYZ
)

// participates reports whether the y and z second-derivative terms (and
// their corresponding SAT edges) are active under this axis selection.
func (a Axes) participates() (wantY, wantZ bool) {
	switch a {
	case AxisY:
		return true, false
	case AxisZ:
		return false, true
	default:
		return true, true
	}
}

// Config selects the axes and per-side BC kind. PremultiplyH is carried
// along but not read by any Kit builder; no operator is pre-multiplied by H.
type Config struct {
	Axes        Axes
	BC          [4]BcKind // indexed by Side
	PremultiplyH bool
}

// Kit builds and holds the 2-D SBP-SAT operators over a uniform Ny x Nz grid.
type Kit struct {
	Ny, Nz int
	Dy, Dz float64
	Order  int
	Oy, Oz *Ops1D
	Cfg    Config

	// coordinate transform (mfc_coordTrans); nil when not in use
	Qy, Rz []float64 // diagonal Jacobian entries dy/dq, dz/dr per node-column/row
}

// Index is the column-major node index: fault nodes (iy=0) are the first Nz
// entries, matching spec.md §3.
func (o *Kit) Index(iy, iz int) int { return iy*o.Nz + iz }

// NewKit builds the 1-D operator pair for a uniform grid.
func NewKit(ny, nz int, ly, lz float64, order int, cfg Config) (o *Kit) {
	o = &Kit{Ny: ny, Nz: nz, Order: order, Cfg: cfg}
	o.Dy = ly / float64(ny-1)
	o.Dz = lz / float64(nz-1)
	o.Oy = NewOps1D(ny, o.Dy, order)
	o.Oz = NewOps1D(nz, o.Dz, order)
	return
}

// SetCoordTrans stores per-node Jacobians qy(y), rz(z) of a smooth
// coordinate transform (spec.md §3) in the Kit's fields. No operator built
// by the Kit reads them: every operator assumes uniform spacing.
func (o *Kit) SetCoordTrans(qy, rz []float64) {
	if len(qy) != o.Ny || len(rz) != o.Nz {
		chk.Panic("sbp: coordinate transform length mismatch")
	}
	o.Qy, o.Rz = qy, rz
}

// ApplyD1y computes (D1y kron Iz) u.
func (o *Kit) ApplyD1y(u []float64) []float64 {
	out := make([]float64, o.Ny*o.Nz)
	for iy := 0; iy < o.Ny; iy++ {
		for jy := 0; jy < o.Ny; jy++ {
			d := o.Oy.D1[iy][jy]
			if d == 0 {
				continue
			}
			for iz := 0; iz < o.Nz; iz++ {
				out[o.Index(iy, iz)] += d * u[o.Index(jy, iz)]
			}
		}
	}
	return out
}

// ApplyD1z computes (Iy kron D1z) u.
func (o *Kit) ApplyD1z(u []float64) []float64 {
	out := make([]float64, o.Ny*o.Nz)
	for iy := 0; iy < o.Ny; iy++ {
		base := iy * o.Nz
		for iz := 0; iz < o.Nz; iz++ {
			var s float64
			row := o.Oz.D1[iz]
			for jz := 0; jz < o.Nz; jz++ {
				if row[jz] != 0 {
					s += row[jz] * u[base+jz]
				}
			}
			out[base+iz] = s
		}
	}
	return out
}

// Hy2D and Hz2D return the diagonal of (Hy kron Iz) and (Iy kron Hz)
// respectively, as plain vectors (the norm matrices are diagonal).
func (o *Kit) Hy2D() []float64 {
	out := make([]float64, o.Ny*o.Nz)
	for iy := 0; iy < o.Ny; iy++ {
		for iz := 0; iz < o.Nz; iz++ {
			out[o.Index(iy, iz)] = o.Oy.Hmat[iy]
		}
	}
	return out
}

func (o *Kit) Hz2D() []float64 {
	out := make([]float64, o.Ny*o.Nz)
	for iy := 0; iy < o.Ny; iy++ {
		for iz := 0; iz < o.Nz; iz++ {
			out[o.Index(iy, iz)] = o.Oz.Hmat[iz]
		}
	}
	return out
}

// D2yAlong and D2zAlong return the variable-coefficient second-derivative
// operators along a single 1-D slice, used when assembling the 2-D Kronecker
// operator. muCol is µ sampled along the relevant 1-D line.
func (o *Kit) D2yAlong(muColumn []float64) [][]float64 { return o.Oy.D2(muColumn) }
func (o *Kit) D2zAlong(muRow []float64) [][]float64    { return o.Oz.D2(muRow) }

// ApplyLaplacian computes (D2y(mu) + D2z(mu))·u directly as a matvec,
// without negation or SAT boundary terms (the "A" of the leap-frog update
// in spec.md §4.6, where the fault-traction SAT forcing is added
// separately via BuildRHS).
func (o *Kit) ApplyLaplacian(mu, u []float64) []float64 {
	out := make([]float64, o.Ny*o.Nz)
	wantY, wantZ := o.Cfg.Axes.participates()
	if wantY {
		for iz := 0; iz < o.Nz; iz++ {
			muCol := make([]float64, o.Ny)
			for iy := 0; iy < o.Ny; iy++ {
				muCol[iy] = mu[o.Index(iy, iz)]
			}
			D2y := o.Oy.D2(muCol)
			for iy := 0; iy < o.Ny; iy++ {
				var s float64
				row := D2y[iy]
				for jy := 0; jy < o.Ny; jy++ {
					if row[jy] != 0 {
						s += row[jy] * u[o.Index(jy, iz)]
					}
				}
				out[o.Index(iy, iz)] += s
			}
		}
	}
	if wantZ {
		for iy := 0; iy < o.Ny; iy++ {
			muRow := make([]float64, o.Nz)
			for iz := 0; iz < o.Nz; iz++ {
				muRow[iz] = mu[o.Index(iy, iz)]
			}
			D2z := o.Oz.D2(muRow)
			for iz := 0; iz < o.Nz; iz++ {
				var s float64
				row := D2z[iz]
				for jz := 0; jz < o.Nz; jz++ {
					if row[jz] != 0 {
						s += row[jz] * u[o.Index(iy, jz)]
					}
				}
				out[o.Index(iy, iz)] += s
			}
		}
	}
	return out
}

// BuildA assembles the full SAT-closed system matrix
//
//	A = -(D2y(mu) + D2z(mu)) + SAT boundary terms
//
// as a sparse la.Triplet ready for la.LinSol, following spec.md §4.2. mu is
// the grid-sized (Ny*Nz) material shear modulus.
func (o *Kit) BuildA(mu []float64) (A *la.Triplet) {
	n := o.Ny * o.Nz
	A = new(la.Triplet)
	// generous nnz estimate: 2D variable-coefficient operator bandwidth
	// plus SAT boundary corrections
	nnzEstimate := n * (2*o.Order + 4)
	A.Init(n, n, nnzEstimate)
	wantY, wantZ := o.Cfg.Axes.participates()

	// -(D2y kron Iz): for every fixed iz, build a 1-D D2y(mu along that row)
	if wantY {
		for iz := 0; iz < o.Nz; iz++ {
			muCol := make([]float64, o.Ny)
			for iy := 0; iy < o.Ny; iy++ {
				muCol[iy] = mu[o.Index(iy, iz)]
			}
			D2y := o.Oy.D2(muCol)
			for iy := 0; iy < o.Ny; iy++ {
				row := o.Index(iy, iz)
				for jy := 0; jy < o.Ny; jy++ {
					v := D2y[iy][jy]
					if v != 0 {
						A.Put(row, o.Index(jy, iz), -v)
					}
				}
			}
		}
	}

	// -(Iy kron D2z): for every fixed iy, build a 1-D D2z(mu along that column)
	if wantZ {
		for iy := 0; iy < o.Ny; iy++ {
			muRow := make([]float64, o.Nz)
			for iz := 0; iz < o.Nz; iz++ {
				muRow[iz] = mu[o.Index(iy, iz)]
			}
			D2z := o.Oz.D2(muRow)
			for iz := 0; iz < o.Nz; iz++ {
				row := o.Index(iy, iz)
				for jz := 0; jz < o.Nz; jz++ {
					v := D2z[iz][jz]
					if v != 0 {
						A.Put(row, o.Index(iy, jz), -v)
					}
				}
			}
		}
	}

	o.addSAT(A, mu)
	return
}

// BuildImplicit assembles I + dt*diag(invCap)*A(diffusivity), with A the
// SAT-closed -(D2y + D2z) operator of BuildA, i.e. the backward-Euler
// operator I - dt*diag(invCap)*(D2y + D2z - SAT) used by the transient heat
// solver (spec.md §4.4). diffusivity
// plays the role of mu in BuildA (here, thermal conductivity/unit diffusivity);
// invCap is 1/(rho*c) per node.
func (o *Kit) BuildImplicit(diffusivity, invCap []float64, dt float64) (A *la.Triplet) {
	n := o.Ny * o.Nz
	A = new(la.Triplet)
	nnzEstimate := n * (2*o.Order + 5)
	A.Init(n, n, nnzEstimate)
	for i := 0; i < n; i++ {
		A.Put(i, i, 1.0)
	}
	wantY, wantZ := o.Cfg.Axes.participates()

	if wantY {
		for iz := 0; iz < o.Nz; iz++ {
			dCol := make([]float64, o.Ny)
			for iy := 0; iy < o.Ny; iy++ {
				dCol[iy] = diffusivity[o.Index(iy, iz)]
			}
			D2y := o.Oy.D2(dCol)
			for iy := 0; iy < o.Ny; iy++ {
				row := o.Index(iy, iz)
				scale := dt * invCap[row]
				for jy := 0; jy < o.Ny; jy++ {
					v := D2y[iy][jy]
					if v != 0 {
						A.Put(row, o.Index(jy, iz), scale*(-v))
					}
				}
			}
		}
	}
	if wantZ {
		for iy := 0; iy < o.Ny; iy++ {
			dRow := make([]float64, o.Nz)
			for iz := 0; iz < o.Nz; iz++ {
				dRow[iz] = diffusivity[o.Index(iy, iz)]
			}
			D2z := o.Oz.D2(dRow)
			for iz := 0; iz < o.Nz; iz++ {
				row := o.Index(iy, iz)
				scale := dt * invCap[row]
				for jz := 0; jz < o.Nz; jz++ {
					v := D2z[iz][jz]
					if v != 0 {
						A.Put(row, o.Index(iy, jz), scale*(-v))
					}
				}
			}
		}
	}

	o.addSATScaled(A, diffusivity, func(row int) float64 { return dt * invCap[row] })
	return
}

// addSAT adds the simultaneous-approximation-term penalties that weakly
// enforce the four boundary conditions into the system matrix, following
// the alphaD/alphaT penalty scaling of spec.md §4.1.
func (o *Kit) addSAT(A *la.Triplet, mu []float64) {
	o.addSATScaled(A, mu, func(int) float64 { return 1 })
}

// addSATScaled is addSAT generalized with a per-row scale factor, used by
// BuildImplicit to fold the SAT penalties into the backward-Euler operator
// without needing to read back a Triplet's stored entries (no such
// accessor is available in the observed gosl surface).
func (o *Kit) addSATScaled(A *la.Triplet, mu []float64, scale func(row int) float64) {
	alphaD_y := PenaltyD(o.Order, o.Dy)
	alphaD_z := PenaltyD(o.Order, o.Dz)
	alphaT := PenaltyT()
	wantY, wantZ := o.Cfg.Axes.participates()

	// left/right edges (iy = 0 / Ny-1), varying iz; only meaningful when the
	// y second-derivative term is itself active.
	if wantY {
		for iz := 0; iz < o.Nz; iz++ {
			muL := mu[o.Index(0, iz)]
			muR := mu[o.Index(o.Ny-1, iz)]
			switch o.Cfg.BC[Left] {
			case Dirichlet:
				row := o.Index(0, iz)
				A.Put(row, row, scale(row)*alphaD_y*o.Oy.Hinv[0]*o.Oy.Hmat[0])
			case Neumann:
				row := o.Index(0, iz)
				s := scale(row)
				for jy := 0; jy < o.Ny; jy++ {
					d := o.Oy.D1[0][jy]
					if d != 0 {
						A.Put(row, o.Index(jy, iz), s*alphaT*o.Oy.Hinv[0]*muL*d)
					}
				}
			}
			switch o.Cfg.BC[Right] {
			case Dirichlet:
				row := o.Index(o.Ny-1, iz)
				A.Put(row, row, scale(row)*alphaD_y*o.Oy.Hinv[o.Ny-1]*o.Oy.Hmat[o.Ny-1])
			case Neumann:
				row := o.Index(o.Ny-1, iz)
				s := scale(row)
				for jy := 0; jy < o.Ny; jy++ {
					d := o.Oy.D1[o.Ny-1][jy]
					if d != 0 {
						A.Put(row, o.Index(jy, iz), s*alphaT*o.Oy.Hinv[o.Ny-1]*muR*d)
					}
				}
			}
		}
	}

	// top/bottom edges (iz = 0 / Nz-1), varying iy; only meaningful when the
	// z second-derivative term is itself active.
	if !wantZ {
		return
	}
	for iy := 0; iy < o.Ny; iy++ {
		muT := mu[o.Index(iy, 0)]
		muB := mu[o.Index(iy, o.Nz-1)]
		switch o.Cfg.BC[Top] {
		case Dirichlet:
			row := o.Index(iy, 0)
			A.Put(row, row, scale(row)*alphaD_z*o.Oz.Hinv[0]*o.Oz.Hmat[0])
		case Neumann:
			row := o.Index(iy, 0)
			s := scale(row)
			for jz := 0; jz < o.Nz; jz++ {
				d := o.Oz.D1[0][jz]
				if d != 0 {
					A.Put(row, o.Index(iy, jz), s*alphaT*o.Oz.Hinv[0]*muT*d)
				}
			}
		}
		switch o.Cfg.BC[Bottom] {
		case Dirichlet:
			row := o.Index(iy, o.Nz-1)
			A.Put(row, row, scale(row)*alphaD_z*o.Oz.Hinv[o.Nz-1]*o.Oz.Hmat[o.Nz-1])
		case Neumann:
			row := o.Index(iy, o.Nz-1)
			s := scale(row)
			for jz := 0; jz < o.Nz; jz++ {
				d := o.Oz.D1[o.Nz-1][jz]
				if d != 0 {
					A.Put(row, o.Index(iy, jz), s*alphaT*o.Oz.Hinv[o.Nz-1]*muB*d)
				}
			}
		}
	}
}

// BuildRHS composes the SAT contributions of the four boundary vectors into
// a right-hand-side vector, matching the sign convention used by addSAT so
// that A*u = rhs recovers the imposed boundary data. bcL,bcR have length Nz;
// bcT,bcB have length Ny.
func (o *Kit) BuildRHS(bcL, bcR, bcT, bcB []float64) (rhs []float64) {
	n := o.Ny * o.Nz
	rhs = make([]float64, n)
	alphaD_y := PenaltyD(o.Order, o.Dy)
	alphaD_z := PenaltyD(o.Order, o.Dz)
	wantY, wantZ := o.Cfg.Axes.participates()

	if wantY {
		if o.Cfg.BC[Left] == Dirichlet {
			for iz := 0; iz < o.Nz; iz++ {
				rhs[o.Index(0, iz)] += alphaD_y * o.Oy.Hinv[0] * o.Oy.Hmat[0] * bcL[iz]
			}
		} else {
			for iz := 0; iz < o.Nz; iz++ {
				rhs[o.Index(0, iz)] += PenaltyT() * o.Oy.Hinv[0] * bcL[iz]
			}
		}
		if o.Cfg.BC[Right] == Dirichlet {
			for iz := 0; iz < o.Nz; iz++ {
				rhs[o.Index(o.Ny-1, iz)] += alphaD_y * o.Oy.Hinv[o.Ny-1] * o.Oy.Hmat[o.Ny-1] * bcR[iz]
			}
		} else {
			for iz := 0; iz < o.Nz; iz++ {
				rhs[o.Index(o.Ny-1, iz)] += PenaltyT() * o.Oy.Hinv[o.Ny-1] * bcR[iz]
			}
		}
	}
	if wantZ {
		if o.Cfg.BC[Top] == Dirichlet {
			for iy := 0; iy < o.Ny; iy++ {
				rhs[o.Index(iy, 0)] += alphaD_z * o.Oz.Hinv[0] * o.Oz.Hmat[0] * bcT[iy]
			}
		} else {
			for iy := 0; iy < o.Ny; iy++ {
				rhs[o.Index(iy, 0)] += PenaltyT() * o.Oz.Hinv[0] * bcT[iy]
			}
		}
		if o.Cfg.BC[Bottom] == Dirichlet {
			for iy := 0; iy < o.Ny; iy++ {
				rhs[o.Index(iy, o.Nz-1)] += alphaD_z * o.Oz.Hinv[o.Nz-1] * o.Oz.Hmat[o.Nz-1] * bcB[iy]
			}
		} else {
			for iy := 0; iy < o.Ny; iy++ {
				rhs[o.Index(iy, o.Nz-1)] += PenaltyT() * o.Oz.Hinv[o.Nz-1] * bcB[iy]
			}
		}
	}
	return
}
