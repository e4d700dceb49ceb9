// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cycle

import "math"

// stepController implements the P and PI(D) adaptive step-size rules of
// spec.md §4.6: new step is dt*(tol/err)^(1/p), clamped to
// [minDeltaT, maxDeltaT].
type stepController struct {
	kind      string // "P" or "PID"
	order     int
	atol      float64
	minDeltaT float64
	maxDeltaT float64
	normType  string // "L2_absolute" or "L2_relative" (also "Linf_absolute"/"Linf_relative")
	prevErr   float64
	haveErr   bool
}

func newStepController(kind string, order int, atol, minDt, maxDt float64, normType string) *stepController {
	return &stepController{kind: kind, order: order, atol: atol, minDeltaT: minDt, maxDeltaT: maxDt, normType: normType, prevErr: 1}
}

// norm computes the requested error norm of errVec restricted to inds,
// relative to the reference solution y (only used by the *_relative
// variants).
func (c *stepController) norm(errVec, y Vec, inds []string) float64 {
	switch c.normType {
	case "Linf_absolute":
		var m float64
		for _, name := range inds {
			for _, e := range errVec[name] {
				if a := math.Abs(e); a > m {
					m = a
				}
			}
		}
		return m
	case "Linf_relative":
		var m float64
		for _, name := range inds {
			yv := y[name]
			for i, e := range errVec[name] {
				denom := math.Max(math.Abs(yv[i]), c.atol)
				if a := math.Abs(e) / denom; a > m {
					m = a
				}
			}
		}
		return m
	case "L2_relative":
		var s float64
		var n int
		for _, name := range inds {
			yv := y[name]
			for i, e := range errVec[name] {
				denom := math.Max(math.Abs(yv[i]), c.atol)
				r := e / denom
				s += r * r
				n++
			}
		}
		if n == 0 {
			return 0
		}
		return math.Sqrt(s / float64(n))
	default: // L2_absolute
		var s float64
		var n int
		for _, name := range inds {
			for _, e := range errVec[name] {
				s += e * e
				n++
			}
		}
		if n == 0 {
			return 0
		}
		return math.Sqrt(s / float64(n))
	}
}

// next computes the next step size given the current error norm (scaled by
// atol) and whether the step is accepted.
func (c *stepController) next(dt, errNorm float64) (dtNext float64, accept bool) {
	scaled := errNorm / c.atol
	if errNorm == 0 || scaled == 0 {
		scaled = 1e-12
	}
	p := float64(c.order)
	var factor float64
	switch c.kind {
	case "PID":
		if !c.haveErr {
			factor = math.Pow(1.0/scaled, 1.0/p)
		} else {
			// PI-controller blending current and previous error estimates
			factor = math.Pow(1.0/scaled, 0.3/p) * math.Pow(c.prevErr/scaled, 0.2/p)
		}
	default: // "P"
		factor = math.Pow(1.0/scaled, 1.0/p)
	}
	const safety = 0.9
	factor *= safety
	if factor < 0.2 {
		factor = 0.2
	}
	if factor > 5.0 {
		factor = 5.0
	}
	dtNext = dt * factor
	if dtNext < c.minDeltaT {
		dtNext = c.minDeltaT
	}
	if dtNext > c.maxDeltaT {
		dtNext = c.maxDeltaT
	}
	accept = scaled <= 1.0
	if accept {
		c.prevErr = scaled
		c.haveErr = true
	}
	return
}
