// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fault

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func testParams(n int) *Params {
	p := &Params{
		A: make([]float64, n), B: make([]float64, n),
		Dc: make([]float64, n), Sigma0: make([]float64, n),
		F0: 0.6, V0: 1e-6,
	}
	for i := 0; i < n; i++ {
		p.A[i] = 0.015
		p.B[i] = 0.02
		p.Dc[i] = 0.02
		p.Sigma0[i] = 50e6
	}
	return p
}

// TestSolveNodeResidualZero checks that SolveNode's returned slip velocity
// makes Residual vanish, the fixed-point condition spec.md §4.3 defines the
// rootfinder by.
func TestSolveNodeResidualZero(t *testing.T) {
	p := testParams(1)
	psi := p.F0
	eta := 1e10
	tauQSeff := 40e6
	V, err := SolveNode(p.A[0], p.B[0], p.Sigma0[0], psi, p.V0, tauQSeff, eta)
	require.NoError(t, err)
	res := Residual(p.A[0], p.Sigma0[0], psi, p.V0, tauQSeff, eta, V)
	require.InDelta(t, 0.0, res, 1e-3)
}

// TestSolveNodeZeroImpedanceErrors checks that a non-positive impedance is
// rejected rather than dividing by zero.
func TestSolveNodeZeroImpedanceErrors(t *testing.T) {
	_, err := SolveNode(0.015, 0.02, 50e6, 0.6, 1e-6, 40e6, 0)
	require.Error(t, err)
}

// TestSolveAllMatchesInitSteady checks that the rootfinder recovers the
// loading velocity vL when started at InitSteady's psi0/tauQS0, i.e. the
// initial condition is self-consistent with the rootfinder it feeds.
func TestSolveAllMatchesInitSteady(t *testing.T) {
	n := 4
	p := testParams(n)
	vL := 1e-9
	psi0, tauQS0 := InitSteady(p, vL)
	st := &State{Psi: psi0, Slip: make([]float64, n)}
	z := make([]float64, n)
	for i := range z {
		z[i] = 3e10 / 3000 // mu/cs
	}
	symm := &Symmetric{Z: z, TauQS: tauQS0}
	V, err := SolveAll(p, st, symm)
	require.NoError(t, err)
	for i, v := range V {
		require.InDelta(t, vL, v, vL*0.2, "node %d", i)
	}
}

// TestSymmetricImpedanceIsHalved checks Symmetric's eta = Z/2 mirror-image
// convention.
func TestSymmetricImpedanceIsHalved(t *testing.T) {
	s := &Symmetric{Z: []float64{10}, TauQS: []float64{5}}
	require.InDelta(t, 5.0, s.Impedance(0), 1e-12)
	require.InDelta(t, 5.0, s.EffectiveShear(0), 1e-12)
}

// TestAsymmetricReducesToSymmetricWhenMirrored checks that an Asymmetric
// closure built as a half-space mirror (Zp=Zm, TauQSm=-TauQSp) reproduces
// the Symmetric closure's impedance and effective shear — the equivalence
// the Asymmetric wiring in cmd/scycle relies on.
func TestAsymmetricReducesToSymmetricWhenMirrored(t *testing.T) {
	z, tau := 10.0, 5.0
	a := &Asymmetric{Zp: []float64{z}, Zm: []float64{z}, TauQSp: []float64{tau}, TauQSm: []float64{-tau}}
	s := &Symmetric{Z: []float64{z}, TauQS: []float64{tau}}
	require.InDelta(t, s.Impedance(0), a.Impedance(0), 1e-12)
	require.InDelta(t, s.EffectiveShear(0), a.EffectiveShear(0), 1e-12)
}

// TestDPsiDtZeroAtSteadyState checks that the aging law's steady state
// (psi = f0 - b*ln(V/v0), DPsiDt fixed point) gives dpsi/dt = 0.
func TestDPsiDtZeroAtSteadyState(t *testing.T) {
	p := testParams(1)
	V := 1e-9
	psiSS := p.F0 - p.B[0]*math.Log(V/p.V0)
	st := &State{Psi: []float64{psiSS}}
	dpsi, err := DPsiDt(p, st, []float64{V})
	require.NoError(t, err)
	require.InDelta(t, 0.0, dpsi[0], 1e-12)
}

// TestDPsiDtRegularizesSmallB checks the b<=1e-3 short-circuit.
func TestDPsiDtRegularizesSmallB(t *testing.T) {
	p := testParams(1)
	p.B[0] = 1e-4
	st := &State{Psi: []float64{0.6}}
	dpsi, err := DPsiDt(p, st, []float64{1e-6})
	require.NoError(t, err)
	require.Equal(t, 0.0, dpsi[0])
}

// TestEvolveStateDispatch checks EvolveState routes to FlashHeatingPsi only
// under FlashHeatingLaw, and to DPsiDt otherwise.
func TestEvolveStateDispatch(t *testing.T) {
	p := testParams(1)
	st := &State{Psi: []float64{0.6}}
	V := []float64{1e-6}
	Vw := []float64{1.0}
	Fw := []float64{0.2}

	dAging, err := EvolveState(AgingLaw, p, st, V, Vw, Fw)
	require.NoError(t, err)
	dAgingDirect, err := DPsiDt(p, st, V)
	require.NoError(t, err)
	require.Equal(t, dAgingDirect, dAging)

	dFlash, err := EvolveState(FlashHeatingLaw, p, st, V, Vw, Fw)
	require.NoError(t, err)
	dFlashDirect, err := FlashHeatingPsi(p, Vw, Fw, st, V)
	require.NoError(t, err)
	require.Equal(t, dFlashDirect, dFlash)
	require.NotEqual(t, dAging, dFlash)
}

// TestFlashHeatingPsiSkipsUnconfiguredNodes checks the Vw<=0 short-circuit
// that lets flash heating be selectively enabled per node.
func TestFlashHeatingPsiSkipsUnconfiguredNodes(t *testing.T) {
	p := testParams(1)
	st := &State{Psi: []float64{0.6}}
	dpsi, err := FlashHeatingPsi(p, []float64{0}, []float64{0.2}, st, []float64{1e-6})
	require.NoError(t, err)
	require.Equal(t, 0.0, dpsi[0])
}
