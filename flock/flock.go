// Package flock holds the per-agent state of a boid ensemble.
package flock

import (
	"errors"
	"fmt"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"
)

// ErrSizeMismatch is returned by Check when an array no longer matches the
// ensemble size fixed at construction.
var ErrSizeMismatch = errors.New("flock: array size mismatch")

// SpatialIndex answers axis-aligned range queries over agent positions.
// Queries never mutate the index and may run concurrently.
type SpatialIndex interface {
	// NeedsRebuild reports whether the index must be rebuilt before the
	// queries of the given step.
	NeedsRebuild(step int) bool

	// Rebuild replaces the index structure with one built from positions.
	Rebuild(positions []r2.Vec)

	// QueryRange appends to dst every agent whose current position lies in
	// the box center±halfExtent. Order is unspecified and the result may
	// include the agent at center.
	QueryRange(dst []int, center r2.Vec, halfExtent float64, positions []r2.Vec) []int
}

// Flock is a fixed-size ensemble of agents stored as parallel arrays.
type Flock struct {
	name string
	n    int

	positions  []r2.Vec
	velocities []r2.Vec
	headings   []complex128
	forces     []r2.Vec

	neighbors         []NeighborList
	reducedNeighbors  []NeighborList
	enlargedNeighbors []NeighborList

	index SpatialIndex

	mu     sync.Mutex
	params Params

	closeOnce sync.Once
}

// New allocates an ensemble of n agents, all at the origin, at rest and
// facing +y.
func New(name string, n int, params Params) *Flock {
	f := &Flock{
		name:              name,
		n:                 n,
		positions:         make([]r2.Vec, n),
		velocities:        make([]r2.Vec, n),
		headings:          make([]complex128, n),
		forces:            make([]r2.Vec, n),
		neighbors:         make([]NeighborList, n),
		reducedNeighbors:  make([]NeighborList, n),
		enlargedNeighbors: make([]NeighborList, n),
		params:            params,
	}
	for i := range f.headings {
		f.headings[i] = complex(0, 1)
	}
	return f
}

// Name returns the ensemble name.
func (f *Flock) Name() string { return f.name }

// Len returns the number of agents.
func (f *Flock) Len() int { return f.n }

// Positions returns the position array.
func (f *Flock) Positions() []r2.Vec { return f.positions }

// Velocities returns the velocity array.
func (f *Flock) Velocities() []r2.Vec { return f.velocities }

// Headings returns the heading array.
func (f *Flock) Headings() []complex128 { return f.headings }

// Forces returns the force array.
func (f *Flock) Forces() []r2.Vec { return f.forces }

// Neighbors returns the agents within r of agent i.
func (f *Flock) Neighbors(i int) *NeighborList { return &f.neighbors[i] }

// ReducedNeighbors returns the agents within r of agent i outside its blind cone.
func (f *Flock) ReducedNeighbors(i int) *NeighborList { return &f.reducedNeighbors[i] }

// EnlargedNeighbors returns the agents within 2r of agent i.
func (f *Flock) EnlargedNeighbors(i int) *NeighborList { return &f.enlargedNeighbors[i] }

// Params returns a copy of the current parameters.
func (f *Flock) Params() Params {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.params
}

// UpdateParams applies fn to the parameters under the lock.
func (f *Flock) UpdateParams(fn func(*Params)) {
	f.mu.Lock()
	fn(&f.params)
	f.mu.Unlock()
}

// Index borrows the spatial index owned by the flock. It is nil until SetIndex.
func (f *Flock) Index() SpatialIndex { return f.index }

// SetIndex hands ownership of idx to the flock.
func (f *Flock) SetIndex(idx SpatialIndex) { f.index = idx }

// Check verifies that every array still has the length fixed at
// construction. A mismatch means the ensemble was resized, which the
// pipeline cannot tolerate.
func (f *Flock) Check() error {
	sizes := []struct {
		name string
		n    int
	}{
		{"positions", len(f.positions)},
		{"velocities", len(f.velocities)},
		{"headings", len(f.headings)},
		{"forces", len(f.forces)},
		{"neighbors", len(f.neighbors)},
		{"reduced_neighbors", len(f.reducedNeighbors)},
		{"enlarged_neighbors", len(f.enlargedNeighbors)},
	}
	for _, s := range sizes {
		if s.n != f.n {
			return fmt.Errorf("%w: %s %s has %d entries, ensemble has %d", ErrSizeMismatch, f.name, s.name, s.n, f.n)
		}
	}
	return nil
}

// Close releases the arrays and the owned index. It is safe to call more
// than once.
func (f *Flock) Close() {
	f.closeOnce.Do(func() {
		f.positions = nil
		f.velocities = nil
		f.headings = nil
		f.forces = nil
		f.neighbors = nil
		f.reducedNeighbors = nil
		f.enlargedNeighbors = nil
		f.index = nil
		f.n = 0
	})
}
