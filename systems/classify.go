package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/flock"
)

// Classify rebuilds the three neighbor lists of agent i from the candidates
// returned by idx. scratch is reused for the query result and returned for
// the next call. Classification stops as soon as the enlarged list is full.
func Classify(f *flock.Flock, idx flock.SpatialIndex, p *flock.Params, extent QueryExtent, i int, scratch []int) []int {
	pos := f.Positions()
	pi := pos[i]
	heading := f.Headings()[i]

	n := f.Neighbors(i)
	rn := f.ReducedNeighbors(i)
	en := f.EnlargedNeighbors(i)
	n.Reset()
	rn.Reset()
	en.Reset()

	scratch = idx.QueryRange(scratch[:0], pi, extent.HalfExtent(p.InteractionRadius), pos)

	rSq := p.RadiusSq()
	enlargedSq := p.EnlargedRadiusSq()
	visible := p.VisibleArg()

	for _, j := range scratch {
		if j == i {
			continue
		}
		d := r2.Sub(pos[j], pi)
		d2 := r2.Norm2(d)

		if d2 < rSq {
			n.Add(j)
			if math.Abs(flock.Bearing(d, heading)) < visible {
				rn.Add(j)
			}
		}

		if d2 < enlargedSq {
			en.Add(j)
			if en.Full() {
				break
			}
		}
	}
	return scratch
}
