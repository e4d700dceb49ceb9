// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const minimalInput = `# minimal test input
order = 2
Ny = 11
Nz = 21
Ly = 1000
Lz = 2000
sbpType = mfc
AVals = 0.01,0.015
ADepths = 0,2000
`

func writeInput(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "in.dat")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestReadConfigParsesScalarsAndProfiles(t *testing.T) {
	path := writeInput(t, minimalInput)
	cfg, err := ReadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 2, cfg.Order)
	require.Equal(t, 11, cfg.Ny)
	require.Equal(t, 21, cfg.Nz)
	require.InDelta(t, 1000, cfg.Ly, 1e-9)
	require.InDelta(t, 2000, cfg.Lz, 1e-9)
	require.Contains(t, cfg.Profiles, "A")
	require.Equal(t, []float64{0.01, 0.015}, cfg.Profiles["A"].Vals)
	require.Equal(t, []float64{0, 2000}, cfg.Profiles["A"].Depths)
}

func TestValidateFillsDefaults(t *testing.T) {
	path := writeInput(t, minimalInput)
	cfg, err := ReadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.Equal(t, "RK43", cfg.TimeIntegrator)
	require.Equal(t, "PID", cfg.TimeControlType)
	require.Equal(t, "linearElastic", cfg.Rheology)
	require.Equal(t, "symmetric", cfg.FaultMode)
	require.Equal(t, "no", cfg.ThermalCoupling)
	require.Equal(t, 1000.0, cfg.RhoFluid)
	require.InDelta(t, 9.8, cfg.GravityAccel, 1e-9)
}

func TestValidateRejectsBadRheology(t *testing.T) {
	path := writeInput(t, minimalInput+"rheology = viscoelasticGarbage\n")
	cfg, err := ReadConfig(path)
	require.NoError(t, err)
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsBadFaultMode(t *testing.T) {
	path := writeInput(t, minimalInput+"faultMode = triple\n")
	cfg, err := ReadConfig(path)
	require.NoError(t, err)
	require.Error(t, cfg.Validate())
}

func TestValidateMomBalFallsBackToHeatEqSolver(t *testing.T) {
	path := writeInput(t, minimalInput+"linSolver_heateq = direct-LU\nkspTol_heateq = 1e-10\n")
	cfg, err := ReadConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.Equal(t, "direct-LU", cfg.LinSolverMomBal)
	require.InDelta(t, 1e-10, cfg.KspTolMomBal, 1e-20)
}

func TestValidateRejectsMissingGrid(t *testing.T) {
	path := writeInput(t, "order = 2\n")
	cfg, err := ReadConfig(path)
	require.NoError(t, err)
	require.Error(t, cfg.Validate())
}

func TestDepthProfileValueInterpolatesAndClamps(t *testing.T) {
	p := &DepthProfile{Vals: []float64{10, 20, 40}, Depths: []float64{0, 10, 20}}
	require.InDelta(t, 10, p.Value(-5), 1e-9)
	require.InDelta(t, 15, p.Value(5), 1e-9)
	require.InDelta(t, 20, p.Value(10), 1e-9)
	require.InDelta(t, 40, p.Value(100), 1e-9)
}

func TestDepthProfileValueEmptyReturnsZero(t *testing.T) {
	p := &DepthProfile{}
	require.Equal(t, 0.0, p.Value(5))
}
