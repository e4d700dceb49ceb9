// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sbp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSBPEnergyConsistency checks the defining SBP identity
// H*D1 + (H*D1)^T = B = diag(-1,0,...,0,1), the property spec.md §4.1
// names as the source of the scheme's energy estimate.
func TestSBPEnergyConsistency(t *testing.T) {
	for _, order := range []int{2, 4} {
		o := NewOps1D(12, 0.3, order)
		for i := 0; i < o.N; i++ {
			for j := 0; j < o.N; j++ {
				hd1 := o.Hmat[i] * o.D1[i][j]
				hd1T := o.Hmat[j] * o.D1[j][i]
				var want float64
				if i == j {
					want = o.B[i]
				}
				require.InDelta(t, want, hd1+hd1T, 1e-9,
					"order=%d i=%d j=%d", order, i, j)
			}
		}
	}
}

// TestD1ExactOnLinear checks that D1 differentiates a linear function
// exactly, interior and boundary alike, at both orders.
func TestD1ExactOnLinear(t *testing.T) {
	for _, order := range []int{2, 4} {
		o := NewOps1D(16, 0.25, order)
		u := make([]float64, o.N)
		for i := range u {
			x := float64(i) * o.H
			u[i] = 2*x + 1
		}
		for i := 0; i < o.N; i++ {
			var du float64
			for j := 0; j < o.N; j++ {
				du += o.D1[i][j] * u[j]
			}
			require.InDelta(t, 2.0, du, 1e-8, "order=%d node=%d", order, i)
		}
	}
}

// TestD2ZeroOnConstant checks that the fully-compatible D2(c) operator
// annihilates a constant field, at both orders.
func TestD2ZeroOnConstant(t *testing.T) {
	for _, order := range []int{2, 4} {
		o := NewOps1D(14, 0.2, order)
		c := make([]float64, o.N)
		u := make([]float64, o.N)
		for i := range c {
			c[i] = 1
			u[i] = 3.5
		}
		D2 := o.D2(c)
		for i := 0; i < o.N; i++ {
			var lap float64
			for j := 0; j < o.N; j++ {
				lap += D2[i][j] * u[j]
			}
			require.InDelta(t, 0.0, lap, 1e-8, "order=%d node=%d", order, i)
		}
	}
}

func TestPenaltyDSignAndOrder(t *testing.T) {
	require.Less(t, PenaltyD(2, 0.1), 0.0)
	require.Less(t, PenaltyD(4, 0.1), 0.0)
	require.InDelta(t, -1.0, PenaltyT(), 1e-12)
}

func TestCheckFiniteDetectsNaN(t *testing.T) {
	require.NotPanics(t, func() {
		CheckFinite("ok", [][]float64{{1, 2}, {3, 4}})
	})
	require.Panics(t, func() {
		CheckFinite("bad", [][]float64{{1, math.NaN()}})
	})
}
