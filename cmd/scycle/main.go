// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/mpi"

	"github.com/xinzhou1006/scycle/bulk"
	"github.com/xinzhou1006/scycle/cycle"
	"github.com/xinzhou1006/scycle/fault"
	"github.com/xinzhou1006/scycle/heat"
	"github.com/xinzhou1006/scycle/inp"
	"github.com/xinzhou1006/scycle/material"
	"github.com/xinzhou1006/scycle/pressure"
	"github.com/xinzhou1006/scycle/sbp"
)

func main() {
	exitCode := 0
	defer func() {
		if err := recover(); err != nil {
			if mpi.Rank() == 0 {
				chk.Verbose = true
				io.PfRed("ERROR: %v\n", err)
			}
			exitCode = 1
		}
		mpi.Stop(false)
		os.Exit(exitCode)
	}()
	mpi.Start(false)

	if mpi.Rank() == 0 {
		io.PfWhite("\nscycle -- earthquake-cycle simulator\n\n")
	}

	if len(os.Args) < 2 {
		chk.Panic("usage: scycle <input-file>")
	}
	cfg, err := inp.ReadConfig(os.Args[1])
	if err != nil {
		chk.Panic("%v", err)
	}
	if err = cfg.Validate(); err != nil {
		chk.Panic("%v", err)
	}

	coord, err := build(cfg)
	if err != nil {
		chk.Panic("%v", err)
	}
	if err = coord.Run(); err != nil {
		chk.Panic("%v", err)
	}

	if mpi.Rank() == 0 {
		io.Pf("\nscycle: finished successfully\n")
	}
}

// build wires a Coordinator from a validated Config, grounded on
// fem/domain.go's construction sequence (grid -> fields -> operators ->
// solvers -> time loop).
func build(cfg *inp.Config) (*cycle.Coordinator, error) {
	g := material.NewGrid(cfg.Ny, cfg.Nz, cfg.Ly, cfg.Lz)
	fld := material.NewField(g)

	muProfile := cfg.Profiles["mu"]
	rhoProfile := cfg.Profiles["rho"]
	for iy := 0; iy < g.Ny; iy++ {
		for iz := 0; iz < g.Nz; iz++ {
			idx := g.Index(iy, iz)
			z := g.Z(iz)
			if muProfile != nil {
				fld.Mu[idx] = muProfile.Value(z)
			}
			if rhoProfile != nil {
				fld.Rho[idx] = rhoProfile.Value(z)
			}
		}
	}
	fld.DeriveCs()

	bcCfg := sbp.Config{
		Axes: sbp.AxisYZ,
		BC: [4]sbp.BcKind{
			bcKindOf(cfg.BcL),
			bcKindOf(cfg.BcR),
			bcKindOf(cfg.BcT),
			bcKindOf(cfg.BcB),
		},
	}
	kit := sbp.NewKit(cfg.Ny, cfg.Nz, cfg.Ly, cfg.Lz, cfg.Order, bcCfg)

	// the dynamic-regime operator shares the grid geometry but runs under
	// all-Neumann boundaries (spec.md §4.6): traction, not displacement, is
	// imposed at every side during a seismic event.
	dynCfg := sbp.Config{
		Axes: sbp.AxisYZ,
		BC:   [4]sbp.BcKind{sbp.Neumann, sbp.Neumann, sbp.Neumann, sbp.Neumann},
	}
	dynKit := sbp.NewKit(cfg.Ny, cfg.Nz, cfg.Ly, cfg.Lz, cfg.Order, dynCfg)

	linKind, err := bulk.ParseLinSolverKind(cfg.LinSolverMomBal)
	if err != nil {
		return nil, err
	}

	var visc *material.ViscousStrain
	if cfg.Rheology == "powerLaw" {
		fld.EnablePowerLaw()
		aProfile, bProfile, nProfile := cfg.Profiles["A"], cfg.Profiles["B"], cfg.Profiles["n"]
		for iy := 0; iy < g.Ny; iy++ {
			for iz := 0; iz < g.Nz; iz++ {
				idx := g.Index(iy, iz)
				z := g.Z(iz)
				if aProfile != nil {
					fld.A[idx] = aProfile.Value(z)
				}
				if bProfile != nil {
					fld.B[idx] = bProfile.Value(z)
				}
				if nProfile != nil {
					fld.N[idx] = nProfile.Value(z)
				}
			}
		}
		visc = material.NewViscousStrain(g)
	}
	bulkSolver := bulk.NewSolver(kit, fld, visc, linKind, cfg.KspTolMomBal)
	dynBulkSolver := bulk.NewSolver(dynKit, fld, visc, linKind, cfg.KspTolMomBal)

	aProfile, bProfile, sigmaProfile, dcProfile := cfg.Profiles["a"], cfg.Profiles["b"], cfg.Profiles["sigmaN"], cfg.Profiles["Dc"]
	params := &fault.Params{
		A: make([]float64, g.Nz), B: make([]float64, g.Nz),
		Dc: make([]float64, g.Nz), Sigma0: make([]float64, g.Nz),
		F0: 0.6, V0: 1e-6,
	}
	for iz := 0; iz < g.Nz; iz++ {
		z := g.Z(iz)
		if aProfile != nil {
			params.A[iz] = aProfile.Value(z)
		}
		if bProfile != nil {
			params.B[iz] = bProfile.Value(z)
		}
		if sigmaProfile != nil {
			params.Sigma0[iz] = sigmaProfile.Value(z)
		}
		if dcProfile != nil {
			params.Dc[iz] = dcProfile.Value(z)
		}
	}

	psi0, tauQS0 := fault.InitSteady(params, cfg.VL)

	var variant fault.Variant
	var symm *fault.Symmetric
	var asym *fault.Asymmetric
	if cfg.FaultMode == "asymmetric" {
		z := zAtFault(fld, g)
		tauQSm := make([]float64, g.Nz)
		for i := range tauQSm {
			tauQSm[i] = -tauQS0[i]
		}
		asym = &fault.Asymmetric{Zp: z, Zm: append([]float64(nil), z...), TauQSp: tauQS0, TauQSm: tauQSm}
		variant = asym
	} else {
		symm = &fault.Symmetric{Z: zAtFault(fld, g), TauQS: tauQS0}
		variant = symm
	}

	var vwFlash, fwFlash []float64
	if cfg.ThermalCoupling == "flashHeating" {
		vwFlash = make([]float64, g.Nz)
		fwFlash = make([]float64, g.Nz)
		for i := range vwFlash {
			vwFlash[i] = cfg.VwFlash
			fwFlash[i] = cfg.FwFlash
		}
	}
	stateLaw := fault.AgingLaw
	if cfg.ThermalCoupling == "flashHeating" {
		stateLaw = fault.FlashHeatingLaw
	}

	var heatSolver *heat.Solver
	if cfg.WithViscShearHeating || cfg.WithFrictionalHeating || cfg.WithRadioHeatGen {
		heatCfg := sbp.Config{
			Axes: sbp.AxisYZ,
			BC:   [4]sbp.BcKind{sbp.Neumann, sbp.Dirichlet, sbp.Dirichlet, sbp.Dirichlet},
		}
		heatKit := sbp.NewKit(cfg.Ny, cfg.Nz, cfg.Ly, cfg.Lz, cfg.Order, heatCfg)
		rhoC := make([]float64, g.N())
		for i := range rhoC {
			rhoC[i] = 1 // overridden below if a depth profile is configured
		}
		if rhoCProfile := cfg.Profiles["rhoC"]; rhoCProfile != nil {
			for iy := 0; iy < g.Ny; iy++ {
				for iz := 0; iz < g.Nz; iz++ {
					rhoC[g.Index(iy, iz)] = rhoCProfile.Value(g.Z(iz))
				}
			}
		}
		kind := heat.Transient
		if cfg.HeatEquationType == "steadyState" {
			kind = heat.SteadyState
		}
		heatSolver = heat.NewSolver(heatKit, rhoC, kind)
		heatLinKind, err := bulk.ParseLinSolverKind(cfg.LinSolverHeatEq)
		if err != nil {
			return nil, err
		}
		heatSolver.LinKind = heatLinKind.SolverName()
		heatSolver.KspTol = cfg.KspTolHeatEq
		heatSolver.WithViscShearHeating = cfg.WithViscShearHeating
		heatSolver.WithFrictionalHeating = cfg.WithFrictionalHeating
		heatSolver.WithRadioHeatGen = cfg.WithRadioHeatGen
		heatSolver.Lrad = cfg.HeLrad
		if a0Profile := cfg.Profiles["he_A0"]; a0Profile != nil {
			a0 := make([]float64, g.N())
			for iy := 0; iy < g.Ny; iy++ {
				for iz := 0; iz < g.Nz; iz++ {
					a0[g.Index(iy, iz)] = a0Profile.Value(g.Z(iz))
				}
			}
			heatSolver.A0 = a0
		}
		if wProfile := cfg.Profiles["w"]; wProfile != nil {
			w := make([]float64, g.Nz)
			for iz := 0; iz < g.Nz; iz++ {
				w[iz] = wProfile.Value(g.Z(iz))
			}
			heatSolver.ShearZoneWidth = w
		}
	}

	var pressureSolver *pressure.Solver
	var sigmaNBase []float64
	if cfg.WithPorePressure {
		nP, betaP, kP, etaP := make([]float64, g.Nz), make([]float64, g.Nz), make([]float64, g.Nz), make([]float64, g.Nz)
		nPProfile, betaPProfile, kPProfile, etaPProfile := cfg.Profiles["nP"], cfg.Profiles["betaP"], cfg.Profiles["kP"], cfg.Profiles["etaP"]
		for iz := 0; iz < g.Nz; iz++ {
			z := g.Z(iz)
			if nPProfile != nil {
				nP[iz] = nPProfile.Value(z)
			}
			if betaPProfile != nil {
				betaP[iz] = betaPProfile.Value(z)
			}
			if kPProfile != nil {
				kP[iz] = kPProfile.Value(z)
			}
			if etaPProfile != nil {
				etaP[iz] = etaPProfile.Value(z)
			}
		}
		pressureSolver = pressure.NewSolver(kit.Oz, nP, betaP, kP, etaP, cfg.RhoFluid, cfg.GravityAccel)
		sigmaNBase = append([]float64(nil), params.Sigma0...)
	}

	qd := &cycle.QDIntegrand{
		G: g, Kit: kit, Bulk: bulkSolver,
		FaultParams: params, Variant: variant, Symm: symm, Asym: asym,
		Heat: heatSolver, Pressure: pressureSolver,
		VL:   cfg.VL,
		BcL: cycle.BCKind(cfg.BcL), BcR: cycle.BCKind(cfg.BcR),
		BcT: cycle.BCKind(cfg.BcT), BcB: cycle.BCKind(cfg.BcB),
		PowerLaw: cfg.Rheology == "powerLaw",
		EtaMin:   1e16,
		StateLaw: stateLaw, VwFlash: vwFlash, FwFlash: fwFlash,
		SigmaNBase: sigmaNBase,
	}

	dyn := &cycle.DynamicIntegrand{
		G: g, Kit: dynKit, Bulk: dynBulkSolver,
		FaultParams: params, Variant: variant, Symm: symm, Asym: asym,
		CFL:      cfg.CFL,
		StateLaw: stateLaw, VwFlash: vwFlash, FwFlash: fwFlash,
	}

	y0 := cycle.Vec{"psi": psi0, "slip": make([]float64, g.Nz)}
	coord, err := cycle.NewCoordinator(cfg, qd, dyn, y0)
	if err != nil {
		return nil, err
	}
	if cfg.GuessSteadyStateICs {
		if err := coord.SolveStage(5); err != nil {
			return nil, err
		}
	}
	return coord, nil
}

func bcKindOf(s string) sbp.BcKind {
	switch s {
	case "symmFault", "rigidFault", "remoteLoading":
		return sbp.Dirichlet
	default:
		return sbp.Neumann
	}
}

func zAtFault(fld *material.Field, g *material.Grid) []float64 {
	z := make([]float64, g.Nz)
	for iz := 0; iz < g.Nz; iz++ {
		idx := g.Index(0, iz)
		z[iz] = fld.Mu[idx] / fld.Cs[idx]
	}
	return z
}
