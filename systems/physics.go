package systems

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/flock"
)

// IntegrateVelocity applies the force on agent i for one time step.
// A massless agent keeps its velocity.
func IntegrateVelocity(f *flock.Flock, p *flock.Params, dt float64, i int) {
	if p.Mass == 0 {
		return
	}
	vel := f.Velocities()
	vel[i] = r2.Add(vel[i], r2.Scale(dt/p.Mass, f.Forces()[i]))
}

// IntegratePosition moves agent i along its velocity for one time step.
func IntegratePosition(f *flock.Flock, dt float64, i int) {
	pos := f.Positions()
	pos[i] = r2.Add(pos[i], r2.Scale(dt, f.Velocities()[i]))
}

// IntegrateHeading turns agent i towards its velocity by at most maxTurn
// radians.
func IntegrateHeading(f *flock.Flock, maxTurn float64, i int) {
	h := f.Headings()
	h[i] = TurnToward(f.Velocities()[i], h[i], maxTurn)
}

// TurnToward rotates heading h towards the direction of v by at most
// maxTurn radians. A non-positive maxTurn aligns instantly. A zero or
// non-finite v leaves h unchanged. The result has unit modulus.
func TurnToward(v r2.Vec, h complex128, maxTurn float64) complex128 {
	dir := flock.NormalizeSafe(v)
	if dir == (r2.Vec{}) {
		return h
	}
	target := flock.ToComplex(dir)
	if maxTurn <= 0 {
		return target
	}

	h = flock.Unit(h)
	delta := cmplx.Phase(target * cmplx.Conj(h))
	if math.Abs(delta) <= maxTurn {
		return target
	}
	return flock.Unit(h * cmplx.Rect(1, math.Copysign(maxTurn, delta)))
}
