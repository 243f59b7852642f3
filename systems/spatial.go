// Package systems implements the phases of the flocking pipeline: spatial
// indexing, neighbor classification, force computation and integration.
package systems

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/flock"
)

// Strategy names a spatial index implementation.
type Strategy string

const (
	StrategyBrute Strategy = "brute"
	StrategyTree  Strategy = "tree"
)

// DefaultRebuildEvery is the tree rebuild cadence in steps.
const DefaultRebuildEvery = 8

// QueryExtent selects the half-extent of the classification range box.
type QueryExtent string

const (
	// ExtentEnlarged queries boxes of half-extent 2r, which covers the
	// enlarged tier, so every strategy sees the same candidates. It is the
	// default even though the classifier only needs boxes of half-extent r
	// for the neighbor and reduced tiers; ExtentInteraction keeps that
	// narrower query.
	ExtentEnlarged QueryExtent = "enlarged"
	// ExtentInteraction queries boxes of half-extent r. Enlarged neighbors
	// beyond the box are then only found by the brute-force strategy.
	ExtentInteraction QueryExtent = "interaction"
)

// HalfExtent returns the box half-extent for interaction radius r.
func (e QueryExtent) HalfExtent(r float64) float64 {
	if e == ExtentInteraction {
		return r
	}
	return 2 * r
}

// NewIndex creates the index for a strategy.
func NewIndex(s Strategy, rebuildEvery int) (flock.SpatialIndex, error) {
	switch s {
	case StrategyBrute:
		return BruteForce{}, nil
	case StrategyTree, "":
		return NewTreeIndex(rebuildEvery), nil
	default:
		return nil, fmt.Errorf("unknown spatial index strategy %q", s)
	}
}

// BruteForce is the index-free strategy: every query returns every agent.
type BruteForce struct{}

// NeedsRebuild is always false; there is nothing to rebuild.
func (BruteForce) NeedsRebuild(int) bool { return false }

// Rebuild is a no-op.
func (BruteForce) Rebuild([]r2.Vec) {}

// QueryRange appends all indices. The caller's distance tests do the filtering.
func (BruteForce) QueryRange(dst []int, _ r2.Vec, _ float64, positions []r2.Vec) []int {
	for j := range positions {
		dst = append(dst, j)
	}
	return dst
}

// inBox reports whether p lies in the closed box center±h.
func inBox(p, center r2.Vec, h float64) bool {
	return p.X >= center.X-h && p.X <= center.X+h &&
		p.Y >= center.Y-h && p.Y <= center.Y+h
}
