package flock

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Params holds the interaction parameters of one ensemble.
// A copy is taken at the start of every step; edits made while a step is
// running only take effect on the next one.
type Params struct {
	Separation float64 // wS
	Cohesion   float64 // wC
	Alignment  float64 // wA

	InteractionRadius float64 // r; enlarged radius is 2r
	BoidRadius        float64 // rh; cohesion ignores neighbors closer than this
	BlindAngle        float64 // β in [0, π], full width of the cone behind the heading

	RelaxationTime    float64 // τ
	TargetSpeed       float64 // v0
	Sigma             float64 // density kernel width (telemetry only)
	Mass              float64 // m
	SpringCoefficient float64 // k

	Target r2.Vec // p0
}

// DefaultParams returns the reference parameter set.
func DefaultParams() Params {
	return Params{
		Separation:        1,
		Cohesion:          1,
		Alignment:         0.12,
		InteractionRadius: 5,
		BoidRadius:        0.2,
		BlindAngle:        math.Pi / 2,
		RelaxationTime:    0.05,
		TargetSpeed:       10,
		Sigma:             1.37,
		Mass:              0.08,
		SpringCoefficient: 0.1,
	}
}

// RadiusSq returns r².
func (p *Params) RadiusSq() float64 {
	return p.InteractionRadius * p.InteractionRadius
}

// EnlargedRadiusSq returns (2r)².
func (p *Params) EnlargedRadiusSq() float64 {
	return 4 * p.InteractionRadius * p.InteractionRadius
}

// VisibleArg is the largest bearing (exclusive) at which a neighbor is
// still outside the blind cone.
func (p *Params) VisibleArg() float64 {
	return math.Pi - p.BlindAngle/2
}
