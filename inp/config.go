// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package inp reads the line-oriented "key = value" input file that
// drives a simulation, and persists/reloads checkpoints.
package inp

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/cpmech/gosl/chk"
)

// Config holds every recognized key from the input file. Fields are left at
// their Go zero value when the key is absent; Validate fills in defaults and
// checks the required ones.
type Config struct {
	// delimiter separating key from value on each line; default " = "
	Delim string

	// SBP / grid
	Order  int // 2 or 4
	Ny, Nz int
	Ly, Lz float64
	SbpType string // "mc", "mfc", "mfc_coordTrans"

	// momentum-balance boundary conditions (quasi-dynamic)
	BcR, BcT, BcL, BcB string

	// time integration
	TimeIntegrator  string // FEuler, RK32, RK43, RK32_WBE, RK43_WBE
	TimeControlType string // P, PID
	Stride1D        int
	Stride2D        int
	MaxStepCount    int
	InitTime        float64
	MaxTime         float64
	MinDeltaT       float64
	MaxDeltaT       float64
	InitDeltaT      float64
	Atol            float64
	TimeIntInds     []string
	NormType        string

	VL         float64
	BodyForce  float64

	// depth profiles: name -> (vals, depths)
	Profiles map[string]*DepthProfile

	// bulk constitutive law
	Rheology string // "linearElastic" (default) or "powerLaw"

	// fault mode (spec.md §4.3)
	FaultMode string // "symmetric" (default) or "asymmetric"

	// thermal coupling selects the friction state law: "no" (default) and
	// "slipLaw" use the aging law, "flashHeating" the flash-heating law; the
	// heat solver is switched on by the with* heating toggles, not by this key
	ThermalCoupling string
	FwFlash         float64 // weakened friction coefficient for flash heating
	VwFlash         float64 // weakening velocity scale for flash heating

	// linear-solver selection: momentum balance and heat equation are
	// distinct solves and may use distinct backends
	LinSolverMomBal string
	KspTolMomBal    float64

	// heat equation
	LinSolverHeatEq       string
	KspTolHeatEq          float64
	HeatEquationType      string // transient, steadyState
	WithViscShearHeating  bool
	WithFrictionalHeating bool
	WithRadioHeatGen      bool
	HeLrad                float64

	// pore-pressure diffusion (spec.md §4.5)
	WithPorePressure bool
	RhoFluid         float64
	GravityAccel     float64

	GuessSteadyStateICs bool

	// switch thresholds
	TriggerQd2D float64
	TriggerD2Qd float64
	LimitQd     float64
	LimitDyn    float64
	CFL         float64
	DeltaT      float64

	// paths
	OutputDir string
	InputDir  string

	raw map[string]string
}

// DepthProfile is a piecewise-linear-in-depth scalar field definition.
type DepthProfile struct {
	Vals   []float64
	Depths []float64
}

// Value linearly interpolates the profile at depth z; values outside the
// range of Depths are clamped to the nearest endpoint.
func (o *DepthProfile) Value(z float64) float64 {
	n := len(o.Depths)
	if n == 0 {
		return 0
	}
	if n == 1 || z <= o.Depths[0] {
		return o.Vals[0]
	}
	if z >= o.Depths[n-1] {
		return o.Vals[n-1]
	}
	for i := 0; i < n-1; i++ {
		z0, z1 := o.Depths[i], o.Depths[i+1]
		if z >= z0 && z <= z1 {
			v0, v1 := o.Vals[i], o.Vals[i+1]
			if z1 == z0 {
				return v0
			}
			return (v1-v0)/(z1-z0)*(z-z0) + v0
		}
	}
	return o.Vals[n-1]
}

// ReadConfig parses a key=value input file. The delimiter defaults to " = "
// but may be overridden by a "delim = X" line appearing before its use.
func ReadConfig(path string) (o *Config, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, chk.Err("cannot open input file %q:\n%v", path, err)
	}
	defer f.Close()

	o = &Config{
		Delim:    " = ",
		Profiles: make(map[string]*DepthProfile),
		raw:      make(map[string]string),
	}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		pos := strings.Index(line, o.Delim)
		if pos < 0 {
			continue
		}
		key := strings.TrimSpace(line[:pos])
		rest := line[pos+len(o.Delim):]
		// everything after the first space is treated as a comment
		if sp := strings.Index(rest, " "); sp >= 0 {
			rest = rest[:sp]
		}
		val := strings.TrimSpace(rest)
		o.raw[key] = val
		if err = o.apply(key, val); err != nil {
			return nil, err
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, chk.Err("error reading input file %q:\n%v", path, err)
	}
	return o, nil
}

func (o *Config) apply(key, val string) (err error) {
	switch {
	case key == "delim":
		o.Delim = val
	case key == "order":
		o.Order, err = atoi(val)
	case key == "Ny":
		o.Ny, err = atoi(val)
	case key == "Nz":
		o.Nz, err = atoi(val)
	case key == "Ly":
		o.Ly, err = atof(val)
	case key == "Lz":
		o.Lz, err = atof(val)
	case key == "sbpType":
		o.SbpType = val
	case key == "momBal_bcR_qd":
		o.BcR = val
	case key == "momBal_bcT_qd":
		o.BcT = val
	case key == "momBal_bcL_qd":
		o.BcL = val
	case key == "momBal_bcB_qd":
		o.BcB = val
	case key == "timeIntegrator":
		o.TimeIntegrator = val
	case key == "timeControlType":
		o.TimeControlType = val
	case key == "stride1D":
		o.Stride1D, err = atoi(val)
	case key == "stride2D":
		o.Stride2D, err = atoi(val)
	case key == "maxStepCount":
		o.MaxStepCount, err = atoi(val)
	case key == "initTime":
		o.InitTime, err = atof(val)
	case key == "maxTime":
		o.MaxTime, err = atof(val)
	case key == "minDeltaT":
		o.MinDeltaT, err = atof(val)
	case key == "maxDeltaT":
		o.MaxDeltaT, err = atof(val)
	case key == "initDeltaT":
		o.InitDeltaT, err = atof(val)
	case key == "atol":
		o.Atol, err = atof(val)
	case key == "timeIntInds":
		o.TimeIntInds = splitList(val)
	case key == "normType":
		o.NormType = val
	case key == "vL":
		o.VL, err = atof(val)
	case key == "bodyForce":
		o.BodyForce, err = atof(val)
	case key == "rheology":
		o.Rheology = val
	case key == "faultMode":
		o.FaultMode = val
	case key == "thermalCoupling":
		o.ThermalCoupling = val
	case key == "fw_flash":
		o.FwFlash, err = atof(val)
	case key == "Vw_flash":
		o.VwFlash, err = atof(val)
	case key == "linSolver_mombal":
		o.LinSolverMomBal = val
	case key == "kspTol_mombal":
		o.KspTolMomBal, err = atof(val)
	case key == "withPorePressure":
		o.WithPorePressure = val == "yes"
	case key == "rho_f":
		o.RhoFluid, err = atof(val)
	case key == "g":
		o.GravityAccel, err = atof(val)
	case key == "linSolver_heateq":
		o.LinSolverHeatEq = val
	case key == "kspTol_heateq":
		o.KspTolHeatEq, err = atof(val)
	case key == "heatEquationType":
		o.HeatEquationType = val
	case key == "withViscShearHeating":
		o.WithViscShearHeating = val == "yes"
	case key == "withFrictionalHeating":
		o.WithFrictionalHeating = val == "yes"
	case key == "withRadioHeatGeneration":
		o.WithRadioHeatGen = val == "yes"
	case key == "he_Lrad":
		o.HeLrad, err = atof(val)
	case key == "guessSteadyStateICs":
		o.GuessSteadyStateICs = val == "1"
	case key == "triggerqd2d":
		o.TriggerQd2D, err = atof(val)
	case key == "triggerd2qd":
		o.TriggerD2Qd, err = atof(val)
	case key == "limit_qd":
		o.LimitQd, err = atof(val)
	case key == "limit_dyn":
		o.LimitDyn, err = atof(val)
	case key == "CFL":
		o.CFL, err = atof(val)
	case key == "deltaT":
		o.DeltaT, err = atof(val)
	case key == "outputDir":
		o.OutputDir = val
	case key == "inputDir":
		o.InputDir = val
	case strings.HasSuffix(key, "Vals"):
		name := strings.TrimSuffix(key, "Vals")
		o.profile(name).Vals = splitFloats(val)
	case strings.HasSuffix(key, "Depths"):
		name := strings.TrimSuffix(key, "Depths")
		o.profile(name).Depths = splitFloats(val)
	}
	if err != nil {
		return chk.Err("invalid value %q for key %q:\n%v", val, key, err)
	}
	return nil
}

func (o *Config) profile(name string) *DepthProfile {
	p, ok := o.Profiles[name]
	if !ok {
		p = &DepthProfile{}
		o.Profiles[name] = p
	}
	return p
}

// Validate fills in defaults and checks required/mutually-exclusive options.
// Configuration errors are fatal (spec.md §7): the caller is expected to
// chk.Panic on a non-nil return from the top level.
func (o *Config) Validate() error {
	if o.Order != 2 && o.Order != 4 {
		return chk.Err("order must be 2 or 4; got %d", o.Order)
	}
	if o.Ny < 2 || o.Nz < 2 {
		return chk.Err("Ny and Nz are required and must be >= 2; got Ny=%d Nz=%d", o.Ny, o.Nz)
	}
	if o.Ly <= 0 || o.Lz <= 0 {
		return chk.Err("Ly and Lz are required and must be > 0")
	}
	if o.SbpType == "" {
		o.SbpType = "mfc"
	}
	if o.SbpType != "mc" && o.SbpType != "mfc" && o.SbpType != "mfc_coordTrans" {
		return chk.Err("sbpType %q not recognized", o.SbpType)
	}
	for _, bc := range []string{o.BcR, o.BcT, o.BcL, o.BcB} {
		switch bc {
		case "symmFault", "rigidFault", "remoteLoading", "freeSurface", "outGoingCharacteristics", "":
		default:
			return chk.Err("boundary condition type %q not recognized", bc)
		}
	}
	if o.TimeIntegrator == "" {
		o.TimeIntegrator = "RK43"
	}
	switch o.TimeIntegrator {
	case "FEuler", "RK32", "RK43", "RK32_WBE", "RK43_WBE":
	default:
		return chk.Err("timeIntegrator %q not recognized", o.TimeIntegrator)
	}
	if o.TimeControlType == "" {
		o.TimeControlType = "PID"
	}
	if o.TimeControlType != "P" && o.TimeControlType != "PID" {
		return chk.Err("timeControlType %q not recognized", o.TimeControlType)
	}
	if o.MaxTime < o.InitTime {
		return chk.Err("maxTime (%g) must be >= initTime (%g)", o.MaxTime, o.InitTime)
	}
	if o.MaxDeltaT <= 0 {
		o.MaxDeltaT = 1e10
	}
	if o.InitDeltaT <= 0 || o.InitDeltaT < o.MinDeltaT {
		o.InitDeltaT = o.MinDeltaT
	}
	if len(o.TimeIntInds) == 0 {
		o.TimeIntInds = []string{"psi", "slip"}
	}
	if o.NormType == "" {
		o.NormType = "L2_absolute"
	}
	if o.HeatEquationType == "" {
		o.HeatEquationType = "transient"
	}
	if o.HeatEquationType != "transient" && o.HeatEquationType != "steadyState" {
		return chk.Err("heatEquationType %q not recognized", o.HeatEquationType)
	}
	if o.CFL <= 0 {
		o.CFL = 1.0
	}
	if o.Rheology == "" {
		o.Rheology = "linearElastic"
	}
	if o.Rheology != "linearElastic" && o.Rheology != "powerLaw" {
		return chk.Err("rheology %q not recognized", o.Rheology)
	}
	if o.FaultMode == "" {
		o.FaultMode = "symmetric"
	}
	if o.FaultMode != "symmetric" && o.FaultMode != "asymmetric" {
		return chk.Err("faultMode %q not recognized", o.FaultMode)
	}
	if o.ThermalCoupling == "" {
		o.ThermalCoupling = "no"
	}
	switch o.ThermalCoupling {
	case "no", "slipLaw", "flashHeating":
	default:
		return chk.Err("thermalCoupling %q not recognized", o.ThermalCoupling)
	}
	if o.LinSolverMomBal == "" {
		o.LinSolverMomBal = o.LinSolverHeatEq
	}
	if o.KspTolMomBal <= 0 {
		o.KspTolMomBal = o.KspTolHeatEq
	}
	if o.RhoFluid <= 0 {
		o.RhoFluid = 1000
	}
	if o.GravityAccel <= 0 {
		o.GravityAccel = 9.8
	}
	return nil
}

func atoi(s string) (int, error)     { return strconv.Atoi(s) }
func atof(s string) (float64, error) { return strconv.ParseFloat(s, 64) }

func splitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, strings.TrimSpace(f))
	}
	return out
}

func splitFloats(s string) []float64 {
	parts := splitList(s)
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err == nil {
			out = append(out, v)
		}
	}
	return out
}
