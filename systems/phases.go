package systems

import (
	"github.com/pthm-cable/flock/flock"
	"github.com/pthm-cable/flock/scheduler"
)

// Phase identifiers, also used as perf keys.
const (
	PhaseReindex  = "reindex"
	PhaseClassify = "classify"
	PhaseForces   = "forces"
	PhaseVelocity = "integrate.velocity"
	PhasePosition = "integrate.position"
	PhaseHeading  = "integrate.heading"
)

// Phase priorities. Lower runs first.
const (
	PriorityReindex  = 0
	PriorityClassify = 10
	PriorityForces   = 20
	PriorityVelocity = 30
	PriorityPosition = 40
	PriorityHeading  = 50
)

// PipelineOptions configures DefaultPhases.
type PipelineOptions struct {
	Extent QueryExtent
	// MaxTurnRate bounds heading rotation in rad/s. Zero aligns instantly.
	MaxTurnRate float64
}

// DefaultPhases returns the full per-step pipeline.
func DefaultPhases(opts PipelineOptions) []scheduler.Phase {
	return []scheduler.Phase{
		ReindexPhase{},
		ClassifyPhase{Extent: opts.Extent},
		ForcePhase{},
		VelocityPhase{},
		PositionPhase{},
		HeadingPhase{MaxTurnRate: opts.MaxTurnRate},
	}
}

// forEachEnsemble schedules one chain per ensemble and joins them.
func forEachEnsemble(s *scheduler.Step, dep scheduler.Handle, fn func(k int, f *flock.Flock) scheduler.Handle) scheduler.Handle {
	hs := make([]scheduler.Handle, len(s.Ensembles))
	for k, f := range s.Ensembles {
		hs[k] = fn(k, f)
	}
	return scheduler.Combine(hs...)
}

// indexOf returns the index owned by f, falling back to brute force.
func indexOf(f *flock.Flock) flock.SpatialIndex {
	if idx := f.Index(); idx != nil {
		return idx
	}
	return BruteForce{}
}

// ReindexPhase rebuilds each ensemble's spatial index when its cadence asks
// for it. It runs before classification, so the index is built from the
// positions committed by the previous step.
type ReindexPhase struct{}

func (ReindexPhase) Name() string  { return PhaseReindex }
func (ReindexPhase) Priority() int { return PriorityReindex }

func (ReindexPhase) Schedule(s *scheduler.Step, dep scheduler.Handle) scheduler.Handle {
	return forEachEnsemble(s, dep, func(_ int, f *flock.Flock) scheduler.Handle {
		return s.Single(PhaseReindex, dep, func() {
			idx := indexOf(f)
			if idx.NeedsRebuild(s.Number) {
				idx.Rebuild(f.Positions())
			}
		})
	})
}

// ClassifyPhase fills the three neighbor lists of every agent.
type ClassifyPhase struct {
	Extent QueryExtent
}

func (ClassifyPhase) Name() string  { return PhaseClassify }
func (ClassifyPhase) Priority() int { return PriorityClassify }

func (c ClassifyPhase) Schedule(s *scheduler.Step, dep scheduler.Handle) scheduler.Handle {
	return forEachEnsemble(s, dep, func(k int, f *flock.Flock) scheduler.Handle {
		p := &s.Params[k]
		return s.ParallelFor(PhaseClassify, f.Len(), dep, func(start, end int) {
			idx := indexOf(f)
			var scratch []int
			for i := start; i < end; i++ {
				scratch = Classify(f, idx, p, c.Extent, i, scratch)
			}
		})
	})
}

// ForcePhase computes the total force on every agent.
type ForcePhase struct{}

func (ForcePhase) Name() string  { return PhaseForces }
func (ForcePhase) Priority() int { return PriorityForces }

func (ForcePhase) Schedule(s *scheduler.Step, dep scheduler.Handle) scheduler.Handle {
	return forEachEnsemble(s, dep, func(k int, f *flock.Flock) scheduler.Handle {
		p := &s.Params[k]
		return s.ParallelFor(PhaseForces, f.Len(), dep, func(start, end int) {
			forces := f.Forces()
			for i := start; i < end; i++ {
				forces[i] = ComputeForce(f, p, i)
			}
		})
	})
}

// VelocityPhase integrates forces into velocities.
type VelocityPhase struct{}

func (VelocityPhase) Name() string  { return PhaseVelocity }
func (VelocityPhase) Priority() int { return PriorityVelocity }

func (VelocityPhase) Schedule(s *scheduler.Step, dep scheduler.Handle) scheduler.Handle {
	return forEachEnsemble(s, dep, func(k int, f *flock.Flock) scheduler.Handle {
		p := &s.Params[k]
		return s.ParallelFor(PhaseVelocity, f.Len(), dep, func(start, end int) {
			for i := start; i < end; i++ {
				IntegrateVelocity(f, p, s.DT, i)
			}
		})
	})
}

// PositionPhase integrates velocities into positions.
type PositionPhase struct{}

func (PositionPhase) Name() string  { return PhasePosition }
func (PositionPhase) Priority() int { return PriorityPosition }

func (PositionPhase) Schedule(s *scheduler.Step, dep scheduler.Handle) scheduler.Handle {
	return forEachEnsemble(s, dep, func(_ int, f *flock.Flock) scheduler.Handle {
		return s.ParallelFor(PhasePosition, f.Len(), dep, func(start, end int) {
			for i := start; i < end; i++ {
				IntegratePosition(f, s.DT, i)
			}
		})
	})
}

// HeadingPhase turns headings towards the new velocities.
type HeadingPhase struct {
	MaxTurnRate float64
}

func (HeadingPhase) Name() string  { return PhaseHeading }
func (HeadingPhase) Priority() int { return PriorityHeading }

func (h HeadingPhase) Schedule(s *scheduler.Step, dep scheduler.Handle) scheduler.Handle {
	maxTurn := h.MaxTurnRate * s.DT
	return forEachEnsemble(s, dep, func(_ int, f *flock.Flock) scheduler.Handle {
		return s.ParallelFor(PhaseHeading, f.Len(), dep, func(start, end int) {
			for i := start; i < end; i++ {
				IntegrateHeading(f, maxTurn, i)
			}
		})
	})
}
