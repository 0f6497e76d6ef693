package main

import "github.com/pthm-cable/cellsand/config"

// ParamSpec defines one optimizable solver constant, the same flat
// name/path/bounds/default shape as pthm-soup/cmd/optimize's ParamSpec.
type ParamSpec struct {
	Name    string
	Min     float64
	Max     float64
	Default float64
}

// ParamVector holds the set of solver constants cmd/tune searches
// (config.Solver, spec.md §6).
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector returns the five air-solver constants as the optimizable
// vector. Stacking thresholds are left fixed: they're integer cadence
// knobs, not continuous physical constants, and tuning them by CMA-ES
// would mostly just trade sweep frequency for sweep cost rather than
// change solver stability.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Defaults mirror fields.AirVadv/AirPLoss/AirTStepP/AirVLoss/AirTStepV.
			{Name: "air_vadv", Min: 0.05, Max: 0.9, Default: 0.3},
			{Name: "air_ploss", Min: 0.95, Max: 0.99999, Default: 0.9999},
			{Name: "air_tstepp", Min: 0.05, Max: 0.9, Default: 0.3},
			{Name: "air_vloss", Min: 0.9, Max: 0.99999, Default: 0.999},
			{Name: "air_tstepv", Min: 0.05, Max: 0.9, Default: 0.4},
		},
	}
}

func (pv *ParamVector) Dim() int { return len(pv.Specs) }

func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, s := range pv.Specs {
		v[i] = s.Default
	}
	return v
}

func (pv *ParamVector) Normalize(raw []float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, s := range pv.Specs {
		out[i] = (raw[i] - s.Min) / (s.Max - s.Min)
	}
	return out
}

func (pv *ParamVector) Denormalize(norm []float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, s := range pv.Specs {
		out[i] = s.Min + norm[i]*(s.Max-s.Min)
	}
	return out
}

func (pv *ParamVector) Clamp(v []float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, s := range pv.Specs {
		val := v[i]
		if val < s.Min {
			val = s.Min
		}
		if val > s.Max {
			val = s.Max
		}
		out[i] = val
	}
	return out
}

// ApplyToSolver writes a (clamped) parameter vector into a config.Solver,
// leaving its integer cadence fields untouched.
func (pv *ParamVector) ApplyToSolver(s *config.Solver, values []float64) {
	c := pv.Clamp(values)
	s.AirVadv = float32(c[0])
	s.AirPLoss = float32(c[1])
	s.AirTStepP = float32(c[2])
	s.AirVLoss = float32(c[3])
	s.AirTStepV = float32(c[4])
}
