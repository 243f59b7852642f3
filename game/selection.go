package game

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// selection identifies one agent shown by the debug overlay.
type selection struct {
	flock int
	agent int
}

var noSelection = selection{flock: -1, agent: -1}

func (s selection) valid() bool {
	return s.flock >= 0 && s.agent >= 0
}

// pickRadiusPx is the maximum click distance to an agent in pixels.
const pickRadiusPx = 12

// findAgentAt returns the agent closest to the world point p within
// maxDist world units.
func (g *Game) findAgentAt(p r2.Vec, maxDist float64) (selection, bool) {
	best := noSelection
	bestD2 := maxDist * maxDist
	for k, f := range g.flocks {
		for i, q := range f.Positions() {
			if d2 := r2.Norm2(r2.Sub(q, p)); d2 <= bestD2 {
				bestD2 = d2
				best = selection{flock: k, agent: i}
			}
		}
	}
	return best, best.valid()
}
