package game

import (
	"fmt"
	"slices"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/flock"
	"github.com/pthm-cable/flock/systems"
)

// Mismatch locates the first neighbor set that differs between strategies.
type Mismatch struct {
	Step  int
	Flock string
	Agent int
	Tier  string
}

// CompareReport summarizes a strategy comparison run.
type CompareReport struct {
	Steps    int
	Compared int // agent classifications compared
	Capped   int // skipped because an enlarged list was at capacity
	Mismatch *Mismatch
}

// CompareStrategies steps a brute-force game and a tree game rebuilt every
// step in lockstep. Before each step the tree game receives the brute-force
// state, so both classify identical positions and their neighbor sets must
// agree. Agents whose enlarged list is full are skipped: which members are
// kept at capacity depends on query order.
func CompareStrategies(cfg *config.Config, steps int, opts Options) (CompareReport, error) {
	opts.Headless = true
	opts.OutputDir = ""

	refOpts := opts
	refOpts.Strategy = string(systems.StrategyBrute)
	ref, err := New(cfg, refOpts)
	if err != nil {
		return CompareReport{}, err
	}
	defer ref.Unload()

	candOpts := opts
	candOpts.Strategy = string(systems.StrategyTree)
	candOpts.RebuildEvery = 1
	cand, err := New(cfg, candOpts)
	if err != nil {
		return CompareReport{}, err
	}
	defer cand.Unload()

	var rep CompareReport
	for s := 0; s < steps; s++ {
		for k, f := range ref.flocks {
			copyState(cand.flocks[k], f)
		}
		if err := ref.Step(); err != nil {
			return rep, fmt.Errorf("brute: %w", err)
		}
		if err := cand.Step(); err != nil {
			return rep, fmt.Errorf("tree: %w", err)
		}
		rep.Steps++

		for k, f := range ref.flocks {
			if m := rep.compareFlock(s, f, cand.flocks[k]); m != nil {
				rep.Mismatch = m
				return rep, nil
			}
		}
	}
	return rep, nil
}

func (rep *CompareReport) compareFlock(step int, a, b *flock.Flock) *Mismatch {
	for i := 0; i < a.Len(); i++ {
		if a.EnlargedNeighbors(i).Full() || b.EnlargedNeighbors(i).Full() {
			rep.Capped++
			continue
		}
		rep.Compared++
		tiers := []struct {
			name string
			a, b *flock.NeighborList
		}{
			{"neighbors", a.Neighbors(i), b.Neighbors(i)},
			{"reduced", a.ReducedNeighbors(i), b.ReducedNeighbors(i)},
			{"enlarged", a.EnlargedNeighbors(i), b.EnlargedNeighbors(i)},
		}
		for _, t := range tiers {
			if !sameSet(t.a, t.b) {
				return &Mismatch{Step: step, Flock: a.Name(), Agent: i, Tier: t.name}
			}
		}
	}
	return nil
}

func copyState(dst, src *flock.Flock) {
	copy(dst.Positions(), src.Positions())
	copy(dst.Velocities(), src.Velocities())
	copy(dst.Headings(), src.Headings())
}

func sameSet(a, b *flock.NeighborList) bool {
	if a.Len() != b.Len() {
		return false
	}
	x := slices.Clone(a.Items())
	y := slices.Clone(b.Items())
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(x, y)
}
