// Package scheduler runs a simulation step as a priority-ordered chain of
// data-parallel phases.
package scheduler

import (
	"fmt"
	"sort"
	"sync"

	"github.com/pthm-cable/flock/flock"
)

// Phase is one stage of the per-step pipeline.
type Phase interface {
	Name() string
	// Priority orders phases; lower runs first, ties keep insertion order.
	Priority() int
	// Schedule enqueues the phase's work to start after dep and returns the
	// handle the next phase must wait on.
	Schedule(s *Step, dep Handle) Handle
}

// Options configures a Scheduler.
type Options struct {
	DT        float64
	BatchSize int
}

// Scheduler folds a dependency handle through its phases once per step.
type Scheduler struct {
	pool      *Pool
	phases    []Phase
	ensembles []*flock.Flock

	// mu is held for the whole duration of a step.
	mu       sync.Mutex
	dt       float64
	batch    int
	step     int
	observer Observer
}

// New creates a scheduler over an explicit phase list and ensemble list.
// Phases are stably sorted by priority.
func New(pool *Pool, phases []Phase, ensembles []*flock.Flock, opts Options) *Scheduler {
	sorted := make([]Phase, len(phases))
	copy(sorted, phases)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() < sorted[j].Priority()
	})

	batch := opts.BatchSize
	if batch < 1 {
		batch = 64
	}

	return &Scheduler{
		pool:      pool,
		phases:    sorted,
		ensembles: ensembles,
		dt:        opts.DT,
		batch:     batch,
	}
}

// SetObserver installs a timing observer for subsequent steps.
func (s *Scheduler) SetObserver(o Observer) {
	s.mu.Lock()
	s.observer = o
	s.mu.Unlock()
}

// SetDT changes the time step for subsequent steps.
func (s *Scheduler) SetDT(dt float64) {
	s.mu.Lock()
	s.dt = dt
	s.mu.Unlock()
}

// DT returns the current time step.
func (s *Scheduler) DT() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dt
}

// StepCount returns the number of completed steps.
func (s *Scheduler) StepCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Phases returns the phase names in execution order.
func (s *Scheduler) Phases() []string {
	names := make([]string, len(s.phases))
	for i, p := range s.phases {
		names[i] = p.Name()
	}
	return names
}

// Ensembles returns the ensembles stepped by the scheduler.
func (s *Scheduler) Ensembles() []*flock.Flock {
	return s.ensembles
}

// Configure edits the parameters of ensemble k. It waits for a running
// step to finish, so no step observes a partial edit.
func (s *Scheduler) Configure(k int, fn func(*flock.Params)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensembles[k].UpdateParams(fn)
}

// Close waits for a running step and stops the worker pool.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pool.Close()
}

// Step runs every phase once and blocks until all scheduled work
// completed. A size mismatch or a failed task aborts the step with an
// error; the step counter only advances on success.
func (s *Scheduler) Step() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := &Step{
		Number:    s.step,
		DT:        s.dt,
		Ensembles: s.ensembles,
		Params:    make([]flock.Params, len(s.ensembles)),
		pool:      s.pool,
		batch:     s.batch,
		observer:  s.observer,
	}
	for k, f := range s.ensembles {
		if err := f.Check(); err != nil {
			return fmt.Errorf("step %d: %w", s.step, err)
		}
		st.Params[k] = f.Params()
	}

	var dep Handle
	for _, p := range s.phases {
		dep = p.Schedule(st, dep)
	}
	if err := dep.Complete(); err != nil {
		return fmt.Errorf("step %d: %w", s.step, err)
	}

	s.step++
	return nil
}
