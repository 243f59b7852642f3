package components

import "gonum.org/v1/gonum/spatial/r2"

// Spawn records how an ensemble was placed, so it can be placed again.
type Spawn struct {
	Center r2.Vec
	Radius float64
	Seed   int64
}
