package flock

import (
	"math/rand"

	"gonum.org/v1/gonum/spatial/r2"
)

// SpawnDisc places the agents uniformly inside a disc of the given radius
// around center by rejection sampling from the bounding square. All agents
// face +y and are at rest, except agent 0 which starts moving along +x so the
// initial state is not perfectly symmetric.
func (f *Flock) SpawnDisc(center r2.Vec, radius float64, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	for i := range f.positions {
		var p r2.Vec
		for {
			p = r2.Vec{X: 2*rng.Float64() - 1, Y: 2*rng.Float64() - 1}
			if r2.Norm2(p) <= 1 {
				break
			}
		}
		f.positions[i] = r2.Add(center, r2.Scale(radius, p))
		f.velocities[i] = r2.Vec{}
		f.headings[i] = complex(0, 1)
		f.forces[i] = r2.Vec{}
	}
	if f.n > 0 {
		f.velocities[0] = r2.Vec{X: 1}
	}
}
