package main

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/flock"
	"github.com/pthm-cable/flock/systems"
)

// Probe evaluates the pair force a single neighbor exerts on an agent at the
// origin facing +x. Relaxation and the target spring are switched off so
// only the neighbor terms remain.
type Probe struct {
	f       *flock.Flock
	scratch []int
}

// NewProbe creates a two-agent probe ensemble.
func NewProbe() *Probe {
	f := flock.New("probe", 2, flock.DefaultParams())
	f.SetIndex(systems.BruteForce{})
	return &Probe{f: f}
}

// ForceAt returns the force on the probe agent when its neighbor sits at
// offset with the given heading.
func (pr *Probe) ForceAt(params flock.Params, offset r2.Vec, neighborHeading complex128) r2.Vec {
	params.RelaxationTime = 0
	params.SpringCoefficient = 0

	pos := pr.f.Positions()
	vel := pr.f.Velocities()
	h := pr.f.Headings()

	pos[0] = r2.Vec{}
	h[0] = 1
	vel[0] = r2.Vec{X: params.TargetSpeed}

	pos[1] = offset
	h[1] = flock.Unit(neighborHeading)
	vel[1] = r2.Scale(params.TargetSpeed, flock.ToVec(h[1]))

	pr.scratch = systems.Classify(pr.f, pr.f.Index(), &params, systems.ExtentEnlarged, 0, pr.scratch)
	return systems.ComputeForce(pr.f, &params, 0)
}

// Field holds force magnitude and direction sampled on a size x size grid
// covering the enlarged box [-2r, 2r]². Row 0 is the top (+y).
type Field struct {
	Size      int
	Magnitude []float64
	Direction []float64 // radians
	Max       float64
}

// NewField allocates a field of size x size samples.
func NewField(size int) *Field {
	return &Field{
		Size:      size,
		Magnitude: make([]float64, size*size),
		Direction: make([]float64, size*size),
	}
}

// Sample fills the field for params and neighbor heading.
func (fd *Field) Sample(pr *Probe, params flock.Params, neighborHeading complex128) {
	extent := 2 * params.InteractionRadius
	step := 2 * extent / float64(fd.Size)
	fd.Max = 0
	for row := 0; row < fd.Size; row++ {
		y := extent - (float64(row)+0.5)*step
		for col := 0; col < fd.Size; col++ {
			x := -extent + (float64(col)+0.5)*step
			force := pr.ForceAt(params, r2.Vec{X: x, Y: y}, neighborHeading)
			m := r2.Norm(force)
			k := row*fd.Size + col
			fd.Magnitude[k] = m
			fd.Direction[k] = math.Atan2(force.Y, force.X)
			fd.Max = math.Max(fd.Max, m)
		}
	}
}

// Close releases the probe ensemble.
func (pr *Probe) Close() {
	pr.f.Close()
}
