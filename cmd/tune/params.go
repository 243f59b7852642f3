// Package main provides CMA-ES tuning of flock steering weights.
package main

import (
	"math"

	"github.com/pthm-cable/flock/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all tunable parameters. Values apply to every
// configured flock.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Steering weights
			{Name: "separation", Path: "flocks[*].params.separation", Min: 0, Max: 5, Default: 1},
			{Name: "cohesion", Path: "flocks[*].params.cohesion", Min: 0, Max: 5, Default: 1},
			{Name: "alignment", Path: "flocks[*].params.alignment", Min: 0, Max: 1, Default: 0.12},
			// Perception
			{Name: "blind_angle", Path: "flocks[*].params.blind_angle", Min: 0, Max: math.Pi, Default: math.Pi / 2},
			// Propulsion
			{Name: "relaxation_time", Path: "flocks[*].params.relaxation_time", Min: 0.01, Max: 0.5, Default: 0.05},
			{Name: "spring_coefficient", Path: "flocks[*].params.spring_coefficient", Min: 0, Max: 1, Default: 0.1},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = math.Min(math.Max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes parameter values into every flock of cfg.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	for k := range cfg.Flocks {
		p := &cfg.Flocks[k].Params
		p.Separation = clamped[0]
		p.Cohesion = clamped[1]
		p.Alignment = clamped[2]
		p.BlindAngle = clamped[3]
		p.RelaxationTime = clamped[4]
		p.SpringCoefficient = clamped[5]
	}
}

// ExtractFromConfig reads the current values from the first flock of cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	if len(cfg.Flocks) == 0 {
		return pv.DefaultVector()
	}
	p := cfg.Flocks[0].Params
	return []float64{
		p.Separation,
		p.Cohesion,
		p.Alignment,
		p.BlindAngle,
		p.RelaxationTime,
		p.SpringCoefficient,
	}
}
