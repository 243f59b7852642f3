package systems

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/flock"
)

// Separation pushes agent i away from its neighbors within r.
func Separation(f *flock.Flock, p *flock.Params, i int) r2.Vec {
	nl := f.Neighbors(i)
	n := nl.Len()
	if n == 0 {
		return r2.Vec{}
	}
	pos := f.Positions()
	pi := pos[i]

	var sum r2.Vec
	for k := 0; k < n; k++ {
		sum = r2.Add(sum, flock.NormalizeSafe(r2.Sub(pos[nl.At(k)], pi)))
	}
	return r2.Scale(-p.Separation/float64(n), sum)
}

// Density returns the local density factor C_i: the length of the mean
// direction towards the enlarged neighbors. It is near 1 at the edge of a
// group and near 0 in its interior.
func Density(f *flock.Flock, i int) float64 {
	en := f.EnlargedNeighbors(i)
	nG := en.Len()
	if nG == 0 {
		return 0
	}
	pos := f.Positions()
	pi := pos[i]

	var sum r2.Vec
	for k := 0; k < nG; k++ {
		sum = r2.Add(sum, flock.NormalizeSafe(r2.Sub(pos[en.At(k)], pi)))
	}
	return r2.Norm(sum) / float64(nG)
}

// Cohesion pulls agent i towards its visible neighbors, scaled by the local
// density factor. Neighbors already touching (closer than rh) are ignored.
func Cohesion(f *flock.Flock, p *flock.Params, i int) r2.Vec {
	rn := f.ReducedNeighbors(i)
	n := rn.Len()
	if n == 0 {
		return r2.Vec{}
	}
	pos := f.Positions()
	pi := pos[i]
	touchSq := p.BoidRadius * p.BoidRadius

	var sum r2.Vec
	for k := 0; k < n; k++ {
		d := r2.Sub(pos[rn.At(k)], pi)
		if r2.Norm2(d) <= touchSq {
			continue
		}
		sum = r2.Add(sum, flock.NormalizeSafe(d))
	}
	return r2.Scale(Density(f, i)*p.Cohesion/float64(n), sum)
}

// Alignment turns agent i towards the mean heading of its visible neighbors.
func Alignment(f *flock.Flock, p *flock.Params, i int) r2.Vec {
	rn := f.ReducedNeighbors(i)
	n := rn.Len()
	if n == 0 {
		return r2.Vec{}
	}
	h := f.Headings()
	hi := h[i]

	var sum complex128
	for k := 0; k < n; k++ {
		sum += h[rn.At(k)] - hi
	}
	return r2.Scale(p.Alignment, flock.NormalizeSafe(flock.ToVec(sum)))
}

// Relaxation drives the speed of agent i towards the target speed along
// its heading. A zero relaxation time disables the term.
func Relaxation(f *flock.Flock, p *flock.Params, i int) r2.Vec {
	if p.RelaxationTime == 0 {
		return r2.Vec{}
	}
	speed := r2.Norm(f.Velocities()[i])
	s := p.Mass * (p.TargetSpeed - speed) / p.RelaxationTime
	return r2.Scale(s, flock.ToVec(f.Headings()[i]))
}

// Spring attracts agent i linearly towards the shared target point.
func Spring(f *flock.Flock, p *flock.Params, i int) r2.Vec {
	return r2.Scale(-p.SpringCoefficient, r2.Sub(f.Positions()[i], p.Target))
}

// ComputeForce returns the total force on agent i. The neighbor lists of i
// must be current.
func ComputeForce(f *flock.Flock, p *flock.Params, i int) r2.Vec {
	force := Separation(f, p, i)
	force = r2.Add(force, Cohesion(f, p, i))
	force = r2.Add(force, Alignment(f, p, i))
	force = r2.Add(force, Relaxation(f, p, i))
	return r2.Add(force, Spring(f, p, i))
}
