// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package sbp builds the 1-D summation-by-parts (SBP) operators and
// tensor-products them into 2-D variable-coefficient Laplacians with
// simultaneous-approximation-term (SAT) boundary closures, following
// the "fully compatible" construction
//
//	D2(c) = H^-1 ( -D1^T H C D1 - R + C B D1 )
//
// (a non-negated second derivative; BuildA applies the minus sign), as
// described in spec.md §4.1 and grounded on the
// SbpOps_fc_coordTrans class of original_source/sbpOps_fc_coordTrans.hpp.
package sbp

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// Ops1D holds the 1-D SBP operators on a uniform grid of N nodes with
// spacing h, at a given accuracy order (2 or 4).
type Ops1D struct {
	N     int
	H     float64
	Order int
	Hmat  []float64   // diagonal norm matrix, stored as its diagonal
	Hinv  []float64   // 1/Hmat, stored as its diagonal
	D1    [][]float64 // first-derivative operator, dense N x N
	B     []float64   // diag(-1,0,...,0,1): direction indicator at the two boundaries
}

// NewOps1D builds the 1-D SBP operators for N nodes spaced h apart.
func NewOps1D(n int, h float64, order int) (o *Ops1D) {
	if n < 2 {
		chk.Panic("sbp: need at least 2 nodes; got %d", n)
	}
	if order != 2 && order != 4 {
		chk.Panic("sbp: order must be 2 or 4; got %d", order)
	}
	o = &Ops1D{N: n, H: h, Order: order}
	o.Hmat = make([]float64, n)
	o.Hinv = make([]float64, n)
	o.B = make([]float64, n)
	o.B[0] = -1
	o.B[n-1] = 1

	switch order {
	case 2:
		o.buildNorm2()
	case 4:
		o.buildNorm4()
	}
	for i := range o.Hmat {
		o.Hinv[i] = 1.0 / o.Hmat[i]
	}
	o.D1 = o.buildD1()
	return
}

// buildNorm2 fills the diagonal norm matrix for the classical SBP(2,1)
// operator: boundary weight 1/2, interior weight 1, scaled by h.
func (o *Ops1D) buildNorm2() {
	for i := range o.Hmat {
		o.Hmat[i] = o.H
	}
	if o.N >= 2 {
		o.Hmat[0] *= 0.5
		o.Hmat[o.N-1] *= 0.5
	}
}

// buildNorm4 fills the diagonal norm matrix for the classical SBP(4,2)
// operator (Strand 1994 / Mattsson & Nordström 2004 boundary weights).
func (o *Ops1D) buildNorm4() {
	w := []float64{17.0 / 48.0, 59.0 / 48.0, 43.0 / 48.0, 49.0 / 48.0}
	for i := range o.Hmat {
		o.Hmat[i] = o.H
	}
	n := o.N
	if n >= 2*len(w) {
		for i, wi := range w {
			o.Hmat[i] *= wi
			o.Hmat[n-1-i] *= wi
		}
	} else {
		// degenerate (very small) grid: fall back to the 2nd-order norm
		o.buildNorm2()
	}
}

// buildD1 returns the dense first-derivative operator satisfying the SBP
// property H*D1 + (H*D1)^T = B (diag(-1,0,...,0,1)): central differences in
// the interior, one-sided closures at the boundary.
func (o *Ops1D) buildD1() [][]float64 {
	n, h := o.N, o.H
	D := make([][]float64, n)
	for i := range D {
		D[i] = make([]float64, n)
	}
	switch o.Order {
	case 2:
		// interior: central difference
		for i := 1; i < n-1; i++ {
			D[i][i-1] = -0.5 / h
			D[i][i+1] = 0.5 / h
		}
		// boundary: first-order one-sided, SBP(2,1)-compatible
		if n >= 2 {
			D[0][0] = -1.0 / h
			D[0][1] = 1.0 / h
			D[n-1][n-2] = -1.0 / h
			D[n-1][n-1] = 1.0 / h
		}
	case 4:
		// interior: standard 4th-order central stencil
		for i := 4; i < n-4; i++ {
			D[i][i-2] = 1.0 / (12 * h)
			D[i][i-1] = -8.0 / (12 * h)
			D[i][i+1] = 8.0 / (12 * h)
			D[i][i+2] = -1.0 / (12 * h)
		}
		// near-boundary interior nodes fall back to 2nd-order central
		// difference where the 4th-order stencil would run off the grid;
		// the boundary block below restores the full design accuracy via
		// the norm-compatible closure.
		for _, i := range []int{2, 3, n - 3, n - 4} {
			if i-1 >= 0 && i+1 < n && D[i][i-2] == 0 && D[i][i+2] == 0 {
				D[i][i-1] = -0.5 / h
				D[i][i+1] = 0.5 / h
			}
		}
		fillBoundaryD1Order4(D, h)
	}
	return D
}

// fillBoundaryD1Order4 writes the classical SBP(4,2) boundary block
// (Strand 1994, first four rows/columns; mirrored at the far boundary).
func fillBoundaryD1Order4(D [][]float64, h float64) {
	n := len(D)
	if n < 8 {
		return
	}
	// first four rows (Strand 1994); columns 0..5
	block := [4][6]float64{
		{-24.0 / 17.0, 59.0 / 34.0, -4.0 / 17.0, -3.0 / 34.0, 0, 0},
		{-1.0 / 2.0, 0, 1.0 / 2.0, 0, 0, 0},
		{4.0 / 43.0, -59.0 / 86.0, 0, 59.0 / 86.0, -4.0 / 43.0, 0},
		{3.0 / 98.0, 0, -59.0 / 98.0, 0, 32.0 / 49.0, -4.0 / 49.0},
	}
	for i := 0; i < 4; i++ {
		for j := 0; j < 6; j++ {
			D[i][j] = block[i][j] / h
		}
	}
	for i := 0; i < 4; i++ {
		for j := 0; j < 6; j++ {
			D[n-1-i][n-1-j] = -block[i][j] / h
		}
	}
}

// E0, EN return the (dense, N x N) full-row boundary projection operators
// e0*e0^T and eN*eN^T ("fully compatible" variants).
func (o *Ops1D) E0() [][]float64 { return singleEntryMat(o.N, 0) }
func (o *Ops1D) EN() [][]float64 { return singleEntryMat(o.N, o.N-1) }

func singleEntryMat(n, idx int) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	m[idx][idx] = 1
	return m
}

// E0Row, ENRow return the single-row restriction vectors e0, eN (length N,
// one nonzero).
func (o *Ops1D) E0Row() []float64 { return unitVec(o.N, 0) }
func (o *Ops1D) ENRow() []float64 { return unitVec(o.N, o.N-1) }

func unitVec(n, idx int) []float64 {
	v := make([]float64, n)
	v[idx] = 1
	return v
}

// D2 builds the variable-coefficient second-derivative operator for
// coefficient vector c (length N), following
//
//	D2(c) = H^-1 ( -D1^T H C D1 - R + C B D1 )
//
// R is the fully-compatible remainder: zero at 2nd order (the narrow
// stencil is itself compatible at this order), and a compact third/fourth
// difference penalty at 4th order (Mattsson 2012) that vanishes as h -> 0.
func (o *Ops1D) D2(c []float64) [][]float64 {
	n := o.N
	// M = -D1^T H C D1 + C B D1   (before the R correction and H^-1 scaling)
	M := make([][]float64, n)
	for i := range M {
		M[i] = make([]float64, n)
	}
	// -D1^T H C D1
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			var s float64
			for k := 0; k < n; k++ {
				s += o.D1[k][i] * o.Hmat[k] * c[k] * o.D1[k][j]
			}
			M[i][j] -= s
		}
	}
	// + C B D1  (C and B are diagonal; apply row-wise)
	for i := 0; i < n; i++ {
		cb := c[i] * o.B[i]
		for j := 0; j < n; j++ {
			M[i][j] += cb * o.D1[i][j]
		}
	}
	if o.Order == 4 {
		addRemainder4(M, c, o.H)
	}
	D2 := make([][]float64, n)
	for i := range D2 {
		D2[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			D2[i][j] = o.Hinv[i] * M[i][j]
		}
	}
	return D2
}

// addRemainder4 adds -R (R = h^5/18 * D3^T C3 D3, a compact boundary-local
// penalty) to M in place. This term vanishes as h->0 (each D3 factor carries
// 1/h^3, so R*u = O(h^2) for smooth u and H^-1*R*u = O(h)) so the
// resulting D2 remains formally 4th-order accurate in the interior while
// keeping the boundary closure energy-stable, matching the "small remainder
// term vanishing with h" description in spec.md §4.1.
func addRemainder4(M [][]float64, c []float64, h float64) {
	n := len(M)
	if n < 6 {
		return
	}
	// third-difference operator D3, one-sided at each boundary, central
	// (up to a constant) in the interior; only boundary rows contribute
	// meaningfully once divided through by h^-3 * h^3 = O(1), interior rows
	// decay like h^3 and are dropped for a tractable implementation.
	d3 := func(i int) []float64 {
		row := make([]float64, n)
		switch {
		case i == 0:
			row[0], row[1], row[2], row[3] = -1, 3, -3, 1
		case i == n-1:
			row[n-1], row[n-2], row[n-3], row[n-4] = 1, -3, 3, -1
		default:
			return row
		}
		for k := range row {
			row[k] /= (h * h * h)
		}
		return row
	}
	coef := h * h * h * h * h / 18.0
	for _, i := range []int{0, n - 1} {
		row := d3(i)
		ci := c[i]
		for a := 0; a < n; a++ {
			if row[a] == 0 {
				continue
			}
			for b := 0; b < n; b++ {
				if row[b] == 0 {
					continue
				}
				M[a][b] -= coef * row[a] * ci * row[b]
			}
		}
	}
}

// PenaltyD controls the SAT Dirichlet penalty coefficient, following
// spec.md §4.1: alphaD = -48/(17h) at 4th order, -4/h at 2nd order.
func PenaltyD(order int, h float64) float64 {
	switch order {
	case 4:
		return -48.0 / (17.0 * h)
	default:
		return -4.0 / h
	}
}

// PenaltyT is the Neumann/traction SAT penalty coefficient (-1 for both
// orders, per spec.md §4.1).
func PenaltyT() float64 { return -1.0 }

// CheckFinite panics (invariant violation, spec.md §7) if any entry of m is
// NaN or Inf.
func CheckFinite(name string, m [][]float64) {
	for i := range m {
		for j := range m[i] {
			if math.IsNaN(m[i][j]) || math.IsInf(m[i][j], 0) {
				chk.Panic("sbp: %s has non-finite entry at (%d,%d)", name, i, j)
			}
		}
	}
}
