// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package cycle implements the earthquake-cycle coordinator: the adaptive
// embedded Runge-Kutta / IMEX integrator for quasi-dynamic periods, the
// explicit leap-frog integrator for dynamic periods, the regime-switch
// predicate, and the integrand handoff between the two (spec.md §4.6).
//
// The coordinator hand-rolls its own embedded-RK stepper rather than
// reaching for gosl/ode: spec.md requires an error norm restricted to a
// user-chosen subset of integrated variables (timeIntInds) and a tightly
// interleaved synchronous call sequence (bulk solve, stress extraction,
// fault rootfinding, state-rate) within every stage, neither of which
// ode.Solver's Fcn-callback model exposes; see DESIGN.md.
package cycle

import "github.com/cpmech/gosl/chk"

// tableau is a Butcher tableau for an embedded Runge-Kutta pair: b is the
// higher-order solution weights, bHat the lower-order (error-estimate)
// weights, both normalized to the same stage count.
type tableau struct {
	name    string
	c       []float64
	a       [][]float64
	b, bHat []float64
	order   int // order of the b (advancing) solution

	// implicitHeat marks the "_WBE" IMEX variants: the heat equation is
	// advanced by the coordinator via heat.Solver.StepTransient's
	// backward-Euler solve instead of the explicit forward-Euler estimate
	// used by the plain RK tableaux (spec.md §4.6).
	implicitHeat bool
}

// rk32 is the Bogacki-Shampine 3(2) pair.
var rk32 = tableau{
	name: "RK32",
	c:    []float64{0, 0.5, 0.75, 1},
	a: [][]float64{
		{},
		{0.5},
		{0, 0.75},
		{2.0 / 9.0, 1.0 / 3.0, 4.0 / 9.0},
	},
	b:     []float64{2.0 / 9.0, 1.0 / 3.0, 4.0 / 9.0, 0},
	bHat:  []float64{7.0 / 24.0, 1.0 / 4.0, 1.0 / 3.0, 1.0 / 8.0},
	order: 3,
}

// rk43 is a Runge-Kutta-Fehlberg-style 4(3) embedded pair.
var rk43 = tableau{
	name: "RK43",
	c:    []float64{0, 0.5, 0.5, 1, 1},
	a: [][]float64{
		{},
		{0.5},
		{0, 0.5},
		{0, 0, 1},
		{1.0 / 6.0, 1.0 / 3.0, 1.0 / 3.0, 1.0 / 6.0},
	},
	b:     []float64{1.0 / 6.0, 1.0 / 3.0, 1.0 / 3.0, 1.0 / 6.0, 0},
	bHat:  []float64{1.0 / 6.0, 1.0 / 3.0, 1.0 / 3.0, 0, 1.0 / 6.0},
	order: 4,
}

// feuler is the trivial first-order (non-embedded) method: bHat==b so the
// error estimate is always zero and the step controller never shrinks.
var feuler = tableau{
	name:  "FEuler",
	c:     []float64{0},
	a:     [][]float64{{}},
	b:     []float64{1},
	bHat:  []float64{1},
	order: 1,
}

// tableauFor maps a timeIntegrator config string to a Butcher tableau. The
// "_WBE" IMEX suffix selects the same explicit mechanical tableau but marks
// implicitHeat so the coordinator advances the heat equation with the
// backward-Euler sub-solve of §4.4 instead of an explicit estimate
// (spec.md §4.6).
func tableauFor(name string) (tableau, error) {
	switch name {
	case "FEuler":
		return feuler, nil
	case "RK32":
		return rk32, nil
	case "RK32_WBE":
		tb := rk32
		tb.implicitHeat = true
		return tb, nil
	case "RK43", "":
		return rk43, nil
	case "RK43_WBE":
		tb := rk43
		tb.implicitHeat = true
		return tb, nil
	}
	return tableau{}, chk.Err("cycle: unrecognized timeIntegrator %q", name)
}

// Vec is a named bundle of equal-length state vectors, the "integrand map"
// of spec.md §3/§9.
type Vec map[string][]float64

// DDtFunc computes the rate-of-change of every state vector at time t.
type DDtFunc func(t float64, y Vec) (dy Vec, err error)

// clone deep-copies a Vec.
func (v Vec) clone() Vec {
	out := make(Vec, len(v))
	for k, x := range v {
		c := make([]float64, len(x))
		copy(c, x)
		out[k] = c
	}
	return out
}

func axpy(dst Vec, a float64, src Vec) {
	for k, x := range src {
		d := dst[k]
		for i := range x {
			d[i] += a * x[i]
		}
	}
}

func scaleCopy(src Vec, a float64) Vec {
	out := make(Vec, len(src))
	for k, x := range src {
		c := make([]float64, len(x))
		for i := range x {
			c[i] = a * x[i]
		}
		out[k] = c
	}
	return out
}

// rkStep advances y by one embedded-RK step of size dt, returning the
// advancing (b-weighted) solution and the error estimate (b - bHat weights)
// for every variable; stepController.norm restricts the estimate to
// timeIntInds.
func rkStep(tb tableau, f DDtFunc, t0 float64, y0 Vec, dt float64) (y1 Vec, errVec Vec, err error) {
	ns := len(tb.c)
	k := make([]Vec, ns)
	for s := 0; s < ns; s++ {
		stage := y0.clone()
		for j := 0; j < s; j++ {
			if tb.a[s][j] != 0 {
				axpy(stage, dt*tb.a[s][j], k[j])
			}
		}
		k[s], err = f(t0+tb.c[s]*dt, stage)
		if err != nil {
			return nil, nil, err
		}
	}
	y1 = y0.clone()
	yHat := y0.clone()
	for s := 0; s < ns; s++ {
		if tb.b[s] != 0 {
			axpy(y1, dt*tb.b[s], k[s])
		}
		if tb.bHat[s] != 0 {
			axpy(yHat, dt*tb.bHat[s], k[s])
		}
	}
	errVec = make(Vec, len(y1))
	for name, v := range y1 {
		e := make([]float64, len(v))
		vh := yHat[name]
		for i := range v {
			e[i] = v[i] - vh[i]
		}
		errVec[name] = e
	}
	return y1, errVec, nil
}
