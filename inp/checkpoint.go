// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cpmech/gosl/chk"
)

// Checkpoint mirrors strikeSlip_linearElastic_qd.cpp's writeCheckpoint: one
// binary file per named integrand vector plus a short text file holding the
// scalar bookkeeping the PI(D) controller needs to resume as if uninterrupted.
type Checkpoint struct {
	Number     int
	CurrT      float64
	StepCount  int
	DeltaT     float64
	PrevErr    float64
	CurrErr    float64
}

// WriteVector writes a single []float64 to path in little-endian binary
// format (whatever the host byte order), one vector per file, as required by
// spec.md §6.
func WriteVector(path string, v []float64) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return chk.Err("cannot create vector file %q:\n%v", path, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	defer w.Flush()
	for _, x := range v {
		if err = binary.Write(w, binary.LittleEndian, x); err != nil {
			return chk.Err("cannot write vector file %q:\n%v", path, err)
		}
	}
	return nil
}

// ReadVector reads a binary vector file written by WriteVector. A missing
// file is fatal per spec.md §7 (File I/O errors).
func ReadVector(path string, n int) (v []float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, chk.Err("missing required vector file %q:\n%v", path, err)
	}
	defer f.Close()
	v = make([]float64, n)
	r := bufio.NewReader(f)
	for i := range v {
		var x float64
		if err = binary.Read(r, binary.LittleEndian, &x); err != nil {
			return nil, chk.Err("cannot read vector file %q at index %d:\n%v", path, i, err)
		}
		v[i] = x
	}
	return v, nil
}

// WriteScalarSeries appends one ASCII line "time dt\n" to path; used for the
// time/dt stride writers described in spec.md §6.
func WriteScalarSeries(path string, time, dt float64) (err error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return chk.Err("cannot open scalar series file %q:\n%v", path, err)
	}
	defer f.Close()
	_, err = fmt.Fprintf(f, "%.15e %.15e\n", time, dt)
	if err != nil {
		return chk.Err("cannot write scalar series file %q:\n%v", path, err)
	}
	return nil
}

// WriteCheckpoint writes the checkpoint text file plus one vector file per
// entry of vars.
func WriteCheckpoint(dir string, ckpt *Checkpoint, vars map[string][]float64) (err error) {
	if err = os.MkdirAll(dir, 0755); err != nil {
		return chk.Err("cannot create checkpoint directory %q:\n%v", dir, err)
	}
	lines := []string{
		fmt.Sprintf("ckptNumber = %d", ckpt.Number),
		fmt.Sprintf("currT = %.15e", ckpt.CurrT),
		fmt.Sprintf("stepCount = %d", ckpt.StepCount),
		fmt.Sprintf("deltaT = %.15e", ckpt.DeltaT),
		fmt.Sprintf("prevErr = %.15e", ckpt.PrevErr),
		fmt.Sprintf("currErr = %.15e", ckpt.CurrErr),
	}
	txt := strings.Join(lines, "\n") + "\n"
	if err = os.WriteFile(filepath.Join(dir, "checkpoint.txt"), []byte(txt), 0644); err != nil {
		return chk.Err("cannot write checkpoint text file:\n%v", err)
	}
	for name, v := range vars {
		if err = WriteVector(filepath.Join(dir, "ckpt_"+name), v); err != nil {
			return err
		}
	}
	return nil
}

// LoadCheckpoint reads back a checkpoint written by WriteCheckpoint. sizes
// gives the expected length of each named vector.
func LoadCheckpoint(dir string, sizes map[string]int) (ckpt *Checkpoint, vars map[string][]float64, err error) {
	b, err := os.ReadFile(filepath.Join(dir, "checkpoint.txt"))
	if err != nil {
		return nil, nil, chk.Err("missing checkpoint text file in %q:\n%v", dir, err)
	}
	ckpt = &Checkpoint{}
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " = ", 2)
		if len(parts) != 2 {
			continue
		}
		key, val := parts[0], parts[1]
		switch key {
		case "ckptNumber":
			ckpt.Number, _ = strconv.Atoi(val)
		case "currT":
			ckpt.CurrT, _ = strconv.ParseFloat(val, 64)
		case "stepCount":
			ckpt.StepCount, _ = strconv.Atoi(val)
		case "deltaT":
			ckpt.DeltaT, _ = strconv.ParseFloat(val, 64)
		case "prevErr":
			ckpt.PrevErr, _ = strconv.ParseFloat(val, 64)
		case "currErr":
			ckpt.CurrErr, _ = strconv.ParseFloat(val, 64)
		}
	}
	vars = make(map[string][]float64, len(sizes))
	for name, n := range sizes {
		v, e := ReadVector(filepath.Join(dir, "ckpt_"+name), n)
		if e != nil {
			return nil, nil, e
		}
		vars[name] = v
	}
	return ckpt, vars, nil
}

// sanity helper kept for callers that need to guard against NaN/Inf creeping
// into a checkpoint (spec.md §3 invariants)
func finite(x float64) bool { return !math.IsNaN(x) && !math.IsInf(x, 0) }
